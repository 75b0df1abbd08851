package backend

import (
	"context"
	"fmt"

	"expenseledger/internal/amqp"
	"expenseledger/internal/cache"
	"expenseledger/internal/log"
	"expenseledger/internal/services"
	"expenseledger/internal/session"
	"expenseledger/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentBackend)
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	svc := services.NewLedgerService(repo, f.publisher(ctx, config))

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		"db_path", config.SQLiteDBPath,
		"amqp_enabled", config.AMQPURL != "")

	return &BackendResult{
		Service: svc,
		Cleanup: svc.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) (*BackendResult, error) {
	store := session.NewMemoryStore(config.SessionMax, config.SessionTTL)

	manager := cache.NewManager()
	manager.Register(store.Cleaner())
	interval := config.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	}
	manager.StartCleanup(interval)

	svc := services.NewLedgerService(store, f.publisher(ctx, config))

	f.logger.InfoContext(ctx, "Initialized memory backend",
		"session_ttl", config.SessionTTL.String(),
		"session_max", config.SessionMax,
		"amqp_enabled", config.AMQPURL != "")

	return &BackendResult{
		Service: svc,
		Cleanup: func() error {
			manager.Stop()
			return svc.Close()
		},
	}, nil
}

// publisher returns nil when AMQP is disabled or unreachable; the service
// then runs without events.
func (f *DefaultFactory) publisher(ctx context.Context, config Config) services.EventPublisher {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

// Close runs cleanup when it is set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}
