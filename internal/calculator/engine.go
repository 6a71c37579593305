// Package calculator is the allocation-and-settlement engine.
//
// It turns receipts into exact per-person shares, folds the shares of an
// outing into net balances, and collapses the balances into a short list of
// payer-to-payee transactions. Every operation is a deterministic function of
// its inputs: no I/O, no clocks, no identifiers are generated here. Callers
// persist results and assign IDs.
//
// Pipeline:
//
//	Receipt --ComputeAllocations--> []PersonShare
//	Outing  --ComputeBalances-----> []Balance        (sum is exactly zero)
//	Balance --ComputeSettlements--> []SettlementTransaction
//
// All amounts are integer cents (money.Money); every division uses the
// largest-remainder policy of money.Distribute so no cent is lost or created.
package calculator

import (
	"log/slog"

	"github.com/mmynk/outlate/internal/metrics"
	"github.com/mmynk/outlate/internal/money"
)

// Engine runs the pipeline. The zero value is not usable; call New.
// An Engine holds no mutable state and may be shared across goroutines.
type Engine struct {
	validator Validator
	logger    *slog.Logger
	metrics   *metrics.Engine
}

// Option configures an Engine.
type Option func(*Engine)

// WithTolerance accepts receipts whose subtotal+tax+tip differs from the total
// by at most tol. The difference is allocated as an adjustment.
func WithTolerance(tol money.Money) Option {
	return func(e *Engine) { e.validator.Tolerance = tol.Abs() }
}

// WithLogger sets the logger used for internal consistency failures.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Engine) Option {
	return func(e *Engine) { e.metrics = m }
}

// New returns an Engine with exact-total validation and the default logger.
func New(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validator exposes the engine's validator for callers that check input
// ahead of a computation (for example before persisting a receipt).
func (e *Engine) Validator() Validator { return e.validator }

// validation records and returns a validation failure.
func (e *Engine) validation(err error) error {
	if ve, ok := err.(*ValidationError); ok {
		e.metrics.ValidationFailed(ve.Field)
	}
	return err
}

// defect logs and returns an internal consistency failure.
func (e *Engine) defect(check, detail string, args ...any) error {
	err := &InternalConsistencyError{Check: check, Detail: detail}
	e.metrics.ConsistencyFailed(check)
	e.logger.Error("Internal consistency check failed", append([]any{"check", check, "detail", detail}, args...)...)
	return err
}
