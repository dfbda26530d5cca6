package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/halcyon-pay/authengine-go/internal/config"
	"github.com/halcyon-pay/authengine-go/internal/resilience"
)

// Result wraps a backend response with its degradation marker. Degraded is
// true when the value came from a fallback rather than the remote service.
type Result[T any] struct {
	Value    T
	Degraded bool
}

// Delegate is the resilient client for all backend dependencies. Every
// method runs under the breaker, retry, and fallback policy configured for
// its dependency.
type Delegate struct {
	caller *resilience.Caller
	client *http.Client
	deps   map[string]config.Dependency
}

// NewDelegate builds the client and pre-configures one breaker per
// dependency in the caller's registry.
func NewDelegate(caller *resilience.Caller, client *http.Client, spec config.Spec) *Delegate {
	if client == nil {
		client = http.DefaultClient
	}
	for name, dep := range spec.Dependencies {
		caller.Registry.Configure(name, resilience.BreakerConfig{
			Window:               dep.Breaker.Window,
			FailureRateThreshold: dep.Breaker.FailureRateThreshold,
			OpenWait:             dep.Breaker.OpenWait.Std(),
		})
	}
	return &Delegate{caller: caller, client: client, deps: spec.Dependencies}
}

func (d *Delegate) options(name string) resilience.Options {
	dep := d.deps[name]
	return resilience.Options{
		Deadline: dep.Deadline.Std(),
		Retry: resilience.RetryPolicy{
			MaxAttempts: dep.Retry.MaxAttempts,
			Wait:        dep.Retry.Wait.Std(),
		},
	}
}

func (d *Delegate) endpoint(name, path string) string {
	base := d.deps[name].BaseURL
	joined, err := url.JoinPath(base, path)
	if err != nil {
		return base + path
	}
	return joined
}

// ValidateCard resolves the card status and account linkage for a PAN hash.
func (d *Delegate) ValidateCard(ctx context.Context, q CardQuery) (Result[CardResult], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepCard, d.options(config.DepCard),
		func(ctx context.Context) (CardResult, error) {
			return doJSON[CardResult](ctx, d.client, http.MethodPost, d.endpoint(config.DepCard, "/cards/validate"), q)
		}, fallbackCard)
	return Result[CardResult]{Value: value, Degraded: degraded}, err
}

// AnalyzeFraud scores the transaction against the fraud analyzer.
func (d *Delegate) AnalyzeFraud(ctx context.Context, q FraudQuery) (Result[FraudResult], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepFraud, d.options(config.DepFraud),
		func(ctx context.Context) (FraudResult, error) {
			return doJSON[FraudResult](ctx, d.client, http.MethodPost, d.endpoint(config.DepFraud, "/fraud/analyze"), q)
		}, fallbackFraud)
	return Result[FraudResult]{Value: value, Degraded: degraded}, err
}

// SaveFraudTransaction persists an approved transaction for future velocity
// checks. Best effort; callers run it detached from the response path.
func (d *Delegate) SaveFraudTransaction(ctx context.Context, q FraudQuery) (Result[FraudSaveAck], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepFraud, d.options(config.DepFraud),
		func(ctx context.Context) (FraudSaveAck, error) {
			return doJSON[FraudSaveAck](ctx, d.client, http.MethodPost, d.endpoint(config.DepFraud, "/fraud/transactions"), q)
		}, fallbackSave)
	return Result[FraudSaveAck]{Value: value, Degraded: degraded}, err
}

// LookupAccount fetches the member account record by account id.
func (d *Delegate) LookupAccount(ctx context.Context, accountID string) (Result[AccountRecord], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepAccount, d.options(config.DepAccount),
		func(ctx context.Context) (AccountRecord, error) {
			return doJSON[AccountRecord](ctx, d.client, http.MethodGet, d.endpoint(config.DepAccount, "/accounts/"+url.PathEscape(accountID)), nil)
		}, fallbackAccount)
	return Result[AccountRecord]{Value: value, Degraded: degraded}, err
}

// LookupMember fetches the member record by member id.
func (d *Delegate) LookupMember(ctx context.Context, memberID string) (Result[MemberRecord], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepMember, d.options(config.DepMember),
		func(ctx context.Context) (MemberRecord, error) {
			return doJSON[MemberRecord](ctx, d.client, http.MethodGet, d.endpoint(config.DepMember, "/members/"+url.PathEscape(memberID)), nil)
		}, fallbackMember)
	return Result[MemberRecord]{Value: value, Degraded: degraded}, err
}

// AdjudicateBasket submits the basket for benefit adjudication.
func (d *Delegate) AdjudicateBasket(ctx context.Context, req BasketRequest) (Result[BasketResult], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepBasket, d.options(config.DepBasket),
		func(ctx context.Context) (BasketResult, error) {
			return doJSON[BasketResult](ctx, d.client, http.MethodPost, d.endpoint(config.DepBasket, "/baskets/adjudicate"), req)
		}, fallbackBasket)
	return Result[BasketResult]{Value: value, Degraded: degraded}, err
}

// PostLedger posts the adjudicated transaction to the ledger.
func (d *Delegate) PostLedger(ctx context.Context, req LedgerRequest) (Result[LedgerResult], error) {
	value, degraded, err := resilience.Invoke(ctx, d.caller, config.DepLedger, d.options(config.DepLedger),
		func(ctx context.Context) (LedgerResult, error) {
			return doJSON[LedgerResult](ctx, d.client, http.MethodPost, d.endpoint(config.DepLedger, "/ledger/transactions"), req)
		}, fallbackLedger)
	return Result[LedgerResult]{Value: value, Degraded: degraded}, err
}
