package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"expenseledger/internal/log"
	"expenseledger/internal/session"
	"expenseledger/internal/tools"

	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"
)

type catalogResponse struct {
	Instructions string                `json:"instructions"`
	Tools        []llmtoolsgoSpec.Tool `json:"tools"`
}

type healthResponse struct {
	Status    string          `json:"status"`
	Uptime    string          `json:"uptime"`
	RateLimit rateLimitHealth `json:"rate_limit"`
}

type rateLimitHealth struct {
	Rejected int64 `json:"rejected"`
	Clients  int64 `json:"clients"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.rateLimiter.GetMetrics()
	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.startedAt).Round(time.Second).String(),
		RateLimit: rateLimitHealth{
			Rejected: m.Rejected,
			Clients:  m.ClientCount,
		},
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.backend.Ready(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Readiness check failed", log.FieldError, err)
		writeError(w, r, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Instructions: tools.Instructions,
		Tools:        s.dispatcher.Tools(),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := session.NewID()
	s.logger.InfoContext(r.Context(), "Session created", log.FieldSessionID, id)
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: id})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !validSessionID(id) {
		writeError(w, r, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := s.backend.DeleteSession(r.Context(), id); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to delete session",
			log.FieldSessionID, id,
			log.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToolCall(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	name := r.PathValue("name")
	if !validSessionID(sessionID) {
		writeError(w, r, http.StatusBadRequest, "invalid session id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := s.dispatcher.Call(r.Context(), sessionID, name, json.RawMessage(body))
	if err != nil {
		var argErr *tools.ArgumentError
		switch {
		case errors.Is(err, tools.ErrUnknownTool):
			writeError(w, r, http.StatusNotFound, err.Error())
		case errors.As(err, &argErr):
			writeError(w, r, http.StatusUnprocessableEntity, argErr.Error())
		default:
			s.access.LogError(r.Context(), "Tool call failed", err, log.ComponentHTTP, log.OpCall,
				log.NewFields().WithToolCall(sessionID, name))
			writeError(w, r, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.access.LogToolCall(r.Context(), sessionID, name, tools.Summary(result))
	writeJSON(w, http.StatusOK, result)
}
