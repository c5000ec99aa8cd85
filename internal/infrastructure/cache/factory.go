package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/markethub/backend/internal/domain/dropship"
	"github.com/markethub/backend/internal/infrastructure/config"
)

// ForwardGuardFactory creates forward guards based on configuration
type ForwardGuardFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ForwardGuardFactoryOption is a functional option for configuring the factory
type ForwardGuardFactoryOption func(*ForwardGuardFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ForwardGuardFactoryOption {
	return func(f *ForwardGuardFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to an in-memory guard when Redis is unavailable
// Default is true (allow fallback)
func WithInMemoryFallback(allow bool) ForwardGuardFactoryOption {
	return func(f *ForwardGuardFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewForwardGuardFactory creates a new factory
func NewForwardGuardFactory(cfg config.RedisConfig, opts ...ForwardGuardFactoryOption) *ForwardGuardFactory {
	f := &ForwardGuardFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisGuard creates a Redis-based forward guard
func (f *ForwardGuardFactory) CreateRedisGuard() (dropship.ForwardGuard, error) {
	guard, err := NewRedisForwardGuard(f.redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis forward guard: %w", err)
	}

	return guard, nil
}

// CreateInMemoryGuard creates an in-memory forward guard
// This is suitable for single-instance deployments and testing
// WARNING: In-memory guards do not share state across process instances,
// which can let two instances forward the same order item concurrently.
// The database uniqueness check still catches the duplicate, but only
// after an adapter call may already be in flight.
func (f *ForwardGuardFactory) CreateInMemoryGuard() dropship.ForwardGuard {
	return NewInMemoryForwardGuard()
}

// CreateGuard creates a forward guard based on whether Redis is available
// It tries Redis first and falls back to in-memory when Redis is not
// available and the fallback is allowed
func (f *ForwardGuardFactory) CreateGuard() (dropship.ForwardGuard, error) {
	guard, err := f.CreateRedisGuard()
	if err == nil {
		f.logger.Info("using Redis forward guard")
		return guard, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for forward guard but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory forward guard. "+
		"Concurrent instances may race on the same order item.",
		zap.Error(err),
	)
	return f.CreateInMemoryGuard(), nil
}
