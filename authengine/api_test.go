package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyon-pay/authengine-go/internal/audit"
	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/engine"
	"github.com/halcyon-pay/authengine-go/internal/replay"
	"github.com/halcyon-pay/authengine-go/internal/scatter"
)

type stubBackends struct {
	mu         sync.Mutex
	authorized int
	cardStatus backend.CardStatus
	cardErr    error
	basketCode string
	ledgerCode string
}

func (s *stubBackends) ValidateCard(context.Context, backend.CardQuery) (backend.Result[backend.CardResult], error) {
	s.mu.Lock()
	s.authorized++
	err := s.cardErr
	s.mu.Unlock()
	if err != nil {
		return backend.Result[backend.CardResult]{}, err
	}
	return backend.Result[backend.CardResult]{Value: backend.CardResult{Status: s.cardStatus, AccountID: "acct-1"}}, nil
}

func (s *stubBackends) setCardErr(err error) {
	s.mu.Lock()
	s.cardErr = err
	s.mu.Unlock()
}

func (s *stubBackends) AnalyzeFraud(context.Context, backend.FraudQuery) (backend.Result[backend.FraudResult], error) {
	return backend.Result[backend.FraudResult]{Value: backend.FraudResult{Code: backend.FraudAllow}}, nil
}

func (s *stubBackends) SaveFraudTransaction(context.Context, backend.FraudQuery) (backend.Result[backend.FraudSaveAck], error) {
	return backend.Result[backend.FraudSaveAck]{Value: backend.FraudSaveAck{Saved: true}}, nil
}

func (s *stubBackends) LookupAccount(context.Context, string) (backend.Result[backend.AccountRecord], error) {
	return backend.Result[backend.AccountRecord]{Value: backend.AccountRecord{AccountID: "acct-1", MemberID: "m-1"}}, nil
}

func (s *stubBackends) LookupMember(context.Context, string) (backend.Result[backend.MemberRecord], error) {
	return backend.Result[backend.MemberRecord]{Value: backend.MemberRecord{MemberID: "m-1"}}, nil
}

func (s *stubBackends) AdjudicateBasket(context.Context, backend.BasketRequest) (backend.Result[backend.BasketResult], error) {
	return backend.Result[backend.BasketResult]{Value: backend.BasketResult{
		StatusCode:       s.basketCode,
		AuthorizedAmount: decimal.RequireFromString("25.00"),
		GeneratedID:      "bas-1",
	}}, nil
}

func (s *stubBackends) PostLedger(context.Context, backend.LedgerRequest) (backend.Result[backend.LedgerResult], error) {
	return backend.Result[backend.LedgerResult]{Value: backend.LedgerResult{StatusCode: s.ledgerCode}}, nil
}

type memoryReplayStore struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (m *memoryReplayStore) Reserve(_ context.Context, key string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func (m *memoryReplayStore) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, key)
	return nil
}

func newTestAPI(t *testing.T) (*authEngineAPI, *stubBackends, *http.ServeMux) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backends := &stubBackends{
		cardStatus: backend.CardStatusSuccess,
		basketCode: backend.BasketAllow,
		ledgerCode: backend.LedgerPosted,
	}
	eng := engine.New(engine.Config{
		Backends: backends,
		Pool:     scatter.NewPool(4),
		Audit:    audit.NopPublisher{},
		Logger:   logger,
		Source:   serviceName,
		Version:  "test",
	})
	guard := replay.NewGuard(&memoryReplayStore{}, time.Minute, logger)
	api := newAuthEngineAPI(logger, eng, guard, audit.NopPublisher{}, nil)
	mux := http.NewServeMux()
	api.register(mux)
	return api, backends, mux
}

const validBody = `{
	"transaction_id": "txn-1",
	"message_type": "0100",
	"pan_hash": "abc123",
	"amount": "25.00",
	"currency": "usd",
	"merchant_id": "mch-1",
	"mcc_code": "5411",
	"products": [{"sku": "sku-1", "quantity": 1, "amount": "25.00"}]
}`

func TestAuthorizeEndpointAllows(t *testing.T) {
	_, _, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(validBody)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp engine.AuthorizationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.StatusCode != "AUTH_ALLOW" {
		t.Fatalf("StatusCode = %q", resp.StatusCode)
	}
	if resp.Transaction.Currency != "USD" {
		t.Fatalf("currency not normalized: %q", resp.Transaction.Currency)
	}
}

func TestAuthorizeEndpointRejectsBadJSON(t *testing.T) {
	_, _, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader("{oops")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_json") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestAuthorizeEndpointValidatesFields(t *testing.T) {
	_, backends, mux := newTestAPI(t)

	body := `{"pan_hash": "abc123", "amount": "10.00", "currency": "USD", "merchant_id": "mch-1"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(body)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_transaction") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if backends.authorized != 0 {
		t.Fatalf("invalid request reached the backends")
	}
}

func TestAuthorizeEndpointRejectsReplay(t *testing.T) {
	_, backends, mux := newTestAPI(t)

	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(validBody)))
	if first.Code != http.StatusOK {
		t.Fatalf("first request status = %d", first.Code)
	}
	calls := backends.authorized

	second := httptest.NewRecorder()
	mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(validBody)))
	if second.Code != http.StatusConflict {
		t.Fatalf("replay status = %d, want 409", second.Code)
	}
	if !strings.Contains(second.Body.String(), "duplicate_transaction") {
		t.Fatalf("body = %s", second.Body.String())
	}
	if backends.authorized != calls {
		t.Fatalf("replayed request reached the backends")
	}
}

func TestAuthorizeEndpointAbortReleasesReplayGuard(t *testing.T) {
	_, backends, mux := newTestAPI(t)

	// A transient abort must not burn the transaction id for the whole
	// dedup window; the switch retransmits and expects a decision.
	backends.setCardErr(errors.New("card service down"))
	first := httptest.NewRecorder()
	mux.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(validBody)))
	if first.Code != http.StatusInternalServerError {
		t.Fatalf("aborted request status = %d, want 500", first.Code)
	}

	backends.setCardErr(nil)
	second := httptest.NewRecorder()
	mux.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(validBody)))
	if second.Code != http.StatusOK {
		t.Fatalf("retransmit status = %d, body %s", second.Code, second.Body.String())
	}
	var resp engine.AuthorizationResponse
	if err := json.Unmarshal(second.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.StatusCode != "AUTH_ALLOW" {
		t.Fatalf("StatusCode = %q", resp.StatusCode)
	}
}

func TestAdjudicateEndpoint(t *testing.T) {
	_, _, mux := newTestAPI(t)

	rec := httptest.NewRecorder()
	body := strings.Replace(validBody, "txn-1", "txn-adj", 1)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/adjudicate", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp engine.AdjudicationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.StatusCode != backend.BasketAllow {
		t.Fatalf("StatusCode = %q", resp.StatusCode)
	}
	if resp.GeneratedID != "bas-1" {
		t.Fatalf("GeneratedID = %q", resp.GeneratedID)
	}
}

func TestAuthorizeEndpointSurfacesDecline(t *testing.T) {
	_, backends, mux := newTestAPI(t)
	backends.cardStatus = backend.CardStatusLocked

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/authorize", strings.NewReader(validBody)))

	if rec.Code != http.StatusOK {
		t.Fatalf("decline must still be a 200 decision, got %d", rec.Code)
	}
	var resp engine.AuthorizationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.StatusCode != "AUTH_CARD_LOCKED" {
		t.Fatalf("StatusCode = %q", resp.StatusCode)
	}
}
