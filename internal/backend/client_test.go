package backend

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/halcyon-pay/authengine-go/internal/config"
	"github.com/halcyon-pay/authengine-go/internal/resilience"
)

func testDelegate(t *testing.T, hosts map[string]string) *Delegate {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	caller := &resilience.Caller{
		Registry: resilience.NewRegistry(resilience.BreakerConfig{Window: 100, FailureRateThreshold: 0.99, OpenWait: time.Second}),
		Diag:     resilience.NewDiagnosticHandler(logger),
		Logger:   logger,
	}
	deps := make(map[string]config.Dependency)
	for _, name := range []string{config.DepCard, config.DepFraud, config.DepMember, config.DepAccount, config.DepBasket, config.DepLedger} {
		base, ok := hosts[name]
		if !ok {
			base = "http://127.0.0.1:1" // unused dependency
		}
		deps[name] = config.Dependency{
			BaseURL:  base,
			Deadline: config.Duration(200 * time.Millisecond),
			Retry:    config.Retry{MaxAttempts: 2, Wait: config.Duration(time.Millisecond)},
			Breaker:  config.Breaker{Window: 100, FailureRateThreshold: 0.99, OpenWait: config.Duration(time.Second)},
		}
	}
	spec := config.Spec{Schema: config.SpecSchemaV1, PoolSize: 4, Dependencies: deps}
	return NewDelegate(caller, nil, spec)
}

func TestValidateCardDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cards/validate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var q CardQuery
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("decode query: %v", err)
		}
		if q.PANHash != "abc123" {
			t.Errorf("PANHash = %q, want abc123", q.PANHash)
		}
		json.NewEncoder(w).Encode(CardResult{Status: CardStatusSuccess, AccountID: "acct-9"})
	}))
	defer srv.Close()

	d := testDelegate(t, map[string]string{config.DepCard: srv.URL})
	got, err := d.ValidateCard(context.Background(), CardQuery{PANHash: "abc123"})
	if err != nil {
		t.Fatalf("ValidateCard: %v", err)
	}
	if got.Degraded {
		t.Fatalf("healthy call reported degraded")
	}
	if got.Value.Status != CardStatusSuccess || got.Value.AccountID != "acct-9" {
		t.Fatalf("got %+v", got.Value)
	}
}

func TestUnavailableBackendFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := testDelegate(t, map[string]string{config.DepFraud: srv.URL})
	got, err := d.AnalyzeFraud(context.Background(), FraudQuery{PANHash: "abc123"})
	if err != nil {
		t.Fatalf("AnalyzeFraud: %v", err)
	}
	if !got.Degraded {
		t.Fatalf("unavailable backend did not degrade")
	}
	if got.Value.Code != "" {
		t.Fatalf("fallback Code = %q, want empty", got.Value.Code)
	}
}

func TestMalformedBodyPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "{not json")
	}))
	defer srv.Close()

	d := testDelegate(t, map[string]string{config.DepMember: srv.URL})
	_, err := d.LookupMember(context.Background(), "m-1")
	if err == nil {
		t.Fatalf("malformed body did not surface an error")
	}
	if _, transport := resilience.AsFailure(err); transport {
		t.Fatalf("malformed body classified as transport failure: %v", err)
	}
	if !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestLookupAccountEscapesPath(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.EscapedPath()
		json.NewEncoder(w).Encode(AccountRecord{AccountID: "a/b", MemberID: "m-1"})
	}))
	defer srv.Close()

	d := testDelegate(t, map[string]string{config.DepAccount: srv.URL})
	got, err := d.LookupAccount(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("LookupAccount: %v", err)
	}
	if got.Value.MemberID != "m-1" {
		t.Fatalf("MemberID = %q, want m-1", got.Value.MemberID)
	}
	if seen != "/accounts/a%2Fb" {
		t.Fatalf("request path = %q", seen)
	}
}

func TestCategoryForStatus(t *testing.T) {
	cases := []struct {
		status int
		want   resilience.Category
	}{
		{http.StatusServiceUnavailable, resilience.CategoryUnavailable},
		{http.StatusGatewayTimeout, resilience.CategoryDeadlineExceeded},
		{http.StatusNotFound, resilience.CategoryNotFound},
		{http.StatusForbidden, resilience.CategoryPermissionDenied},
		{http.StatusTooManyRequests, resilience.CategoryResourceExhausted},
		{http.StatusNotImplemented, resilience.CategoryUnimplemented},
		{http.StatusInsufficientStorage, resilience.CategoryDataLoss},
		{http.StatusInternalServerError, resilience.CategoryInternal},
		{http.StatusBadGateway, resilience.CategoryInternal},
	}
	for _, tc := range cases {
		if got := categoryForStatus(tc.status); got != tc.want {
			t.Errorf("categoryForStatus(%d) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestDeadlineMapsToFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	d := testDelegate(t, map[string]string{config.DepBasket: srv.URL})
	got, err := d.AdjudicateBasket(context.Background(), BasketRequest{TransactionID: "t-1"})
	if err != nil {
		t.Fatalf("AdjudicateBasket: %v", err)
	}
	if !got.Degraded {
		t.Fatalf("slow backend did not degrade")
	}
}
