package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/halcyon-pay/authengine-go/internal/audit"
	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/scatter"
)

// DegradedCardDesc marks audit events for a card stage that answered with
// a fallback value, so the trail never claims a validation that did not run.
const DegradedCardDesc = "Card validation degraded; gate skipped"

// Backends is the slice of the backend delegate the pipelines call.
type Backends interface {
	ValidateCard(ctx context.Context, q backend.CardQuery) (backend.Result[backend.CardResult], error)
	AnalyzeFraud(ctx context.Context, q backend.FraudQuery) (backend.Result[backend.FraudResult], error)
	SaveFraudTransaction(ctx context.Context, q backend.FraudQuery) (backend.Result[backend.FraudSaveAck], error)
	LookupAccount(ctx context.Context, accountID string) (backend.Result[backend.AccountRecord], error)
	LookupMember(ctx context.Context, memberID string) (backend.Result[backend.MemberRecord], error)
	AdjudicateBasket(ctx context.Context, req backend.BasketRequest) (backend.Result[backend.BasketResult], error)
	PostLedger(ctx context.Context, req backend.LedgerRequest) (backend.Result[backend.LedgerResult], error)
}

// Config wires one engine instance.
type Config struct {
	Backends Backends
	Pool     *scatter.Pool
	Audit    audit.Publisher
	Logger   *slog.Logger
	Source   string
	Version  string
}

// Engine owns the two pipeline variants. Instances are safe for concurrent
// use; the breaker registry inside the backend delegate is the only state
// shared across requests.
type Engine struct {
	backends Backends
	pool     *scatter.Pool
	audit    audit.Publisher
	logger   *slog.Logger
	source   string
	version  string

	detached sync.WaitGroup
}

func New(cfg Config) *Engine {
	publisher := cfg.Audit
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool := cfg.Pool
	if pool == nil {
		pool = scatter.NewPool(0)
	}
	return &Engine{
		backends: cfg.Backends,
		pool:     pool,
		audit:    publisher,
		logger:   logger,
		source:   cfg.Source,
		version:  cfg.Version,
	}
}

// Drain blocks until detached fire-and-forget work finishes. Called on
// shutdown, and by tests.
func (e *Engine) Drain() {
	e.detached.Wait()
}

func scatterCall[T any](ctx context.Context, e *Engine, fn func(context.Context) (T, error)) *scatter.Future[T] {
	return scatter.Go(ctx, e.pool, fn)
}

func (e *Engine) header(txn Transaction) audit.Header {
	return audit.Header{
		CorrelationID: txn.CorrelationID,
		TransactionID: txn.ID,
		LocalTime:     txn.LocalTime,
		UTCTime:       txn.UTCTime,
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		PANHash:       txn.PANHash,
		MCCCode:       txn.MCCCode,
		Source:        e.source,
		Version:       e.version,
	}
}

func (e *Engine) publish(ctx context.Context, header audit.Header, name, description string, payload any) {
	event := audit.Event{
		Name:        name,
		Description: description,
		OccurredAt:  time.Now().UTC(),
		Payload:     payload,
	}
	if err := e.audit.Publish(ctx, header, event); err != nil {
		e.logger.Error("audit publish failed",
			"correlation_id", header.CorrelationID,
			"event", name,
			"error", err.Error(),
		)
	}
}

// saveForVelocity notifies the fraud service to persist the transaction
// for future velocity scoring. Runs detached; the response has already
// been decided when this fires, so failures are logged only.
func (e *Engine) saveForVelocity(ctx context.Context, header audit.Header, txn Transaction) {
	detachedCtx := context.WithoutCancel(ctx)
	e.detached.Add(1)
	go func() {
		defer e.detached.Done()
		ctx, cancel := context.WithTimeout(detachedCtx, 5*time.Second)
		defer cancel()
		res, err := e.backends.SaveFraudTransaction(ctx, txn.fraudQuery())
		if err != nil {
			e.logger.Warn("velocity save failed",
				"transaction_id", txn.ID,
				"error", err.Error(),
			)
			return
		}
		if res.Degraded {
			e.logger.Warn("velocity save degraded", "transaction_id", txn.ID)
			return
		}
		e.publish(ctx, header, audit.EventAuthVelocitySaved, "transaction persisted for velocity checks", nil)
	}()
}
