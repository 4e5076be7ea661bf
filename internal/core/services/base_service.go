package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/middleware"
	"github.com/shopspring/decimal"
)

// LedgerConfig carries the tunables shared by the ledger services.
type LedgerConfig struct {
	// Epsilon is the tolerance for debit/credit equality and drift detection.
	Epsilon decimal.Decimal
	// AgingWorkers bounds how many shards ComputeAging reduces concurrently.
	AgingWorkers int
	// Now is the clock used for audit fields; nil means time.Now.
	Now func() time.Time
}

func (c LedgerConfig) withDefaults() LedgerConfig {
	if !c.Epsilon.IsPositive() {
		c.Epsilon = domain.DefaultEpsilon
	}
	if c.AgingWorkers < 1 {
		c.AgingWorkers = 1
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

// BaseService provides common functionality for all services
type BaseService struct {
	cfg LedgerConfig
}

func newBaseService(cfg LedgerConfig) BaseService {
	return BaseService{cfg: cfg.withDefaults()}
}

func (s *BaseService) now() time.Time {
	return s.cfg.Now().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}
