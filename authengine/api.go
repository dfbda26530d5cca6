package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/halcyon-pay/authengine-go/internal/audit"
	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/engine"
	"github.com/halcyon-pay/authengine-go/internal/platform/httpserver"
	"github.com/halcyon-pay/authengine-go/internal/replay"
)

type authEngineAPI struct {
	logger   *slog.Logger
	engine   *engine.Engine
	guard    *replay.Guard
	audit    audit.Publisher
	exporter *audit.Exporter
}

func newAuthEngineAPI(logger *slog.Logger, eng *engine.Engine, guard *replay.Guard, publisher audit.Publisher, exporter *audit.Exporter) *authEngineAPI {
	if publisher == nil {
		publisher = audit.NopPublisher{}
	}
	return &authEngineAPI{
		logger:   logger,
		engine:   eng,
		guard:    guard,
		audit:    publisher,
		exporter: exporter,
	}
}

func (api *authEngineAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /authorize", api.handleAuthorize)
	mux.HandleFunc("POST /adjudicate", api.handleAdjudicate)
	if api.exporter != nil {
		mux.HandleFunc("POST /audit/export", api.handleAuditExport)
	}
}

type productRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Amount   string `json:"amount"`
}

type transactionRequest struct {
	TransactionID string           `json:"transaction_id"`
	MessageType   string           `json:"message_type"`
	PANHash       string           `json:"pan_hash"`
	EncryptedPIN  string           `json:"encrypted_pin"`
	EncryptedCVV  string           `json:"encrypted_cvv"`
	Amount        string           `json:"amount"`
	Currency      string           `json:"currency"`
	MerchantID    string           `json:"merchant_id"`
	MCCCode       string           `json:"mcc_code"`
	LocalTime     string           `json:"local_time"`
	Products      []productRequest `json:"products"`
}

func (req transactionRequest) toTransaction(correlationID string) (engine.Transaction, error) {
	if strings.TrimSpace(req.TransactionID) == "" {
		return engine.Transaction{}, errors.New("transaction_id is required")
	}
	if strings.TrimSpace(req.PANHash) == "" {
		return engine.Transaction{}, errors.New("pan_hash is required")
	}
	if strings.TrimSpace(req.MerchantID) == "" {
		return engine.Transaction{}, errors.New("merchant_id is required")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return engine.Transaction{}, errors.New("amount must be a decimal string")
	}
	if amount.IsNegative() {
		return engine.Transaction{}, errors.New("amount must not be negative")
	}
	if strings.TrimSpace(req.Currency) == "" {
		return engine.Transaction{}, errors.New("currency is required")
	}

	localTime := time.Now()
	if strings.TrimSpace(req.LocalTime) != "" {
		parsed, err := time.Parse(time.RFC3339, req.LocalTime)
		if err != nil {
			return engine.Transaction{}, errors.New("local_time must be RFC3339")
		}
		localTime = parsed
	}

	products := make([]backend.BasketProduct, 0, len(req.Products))
	for _, p := range req.Products {
		itemAmount := decimal.Zero
		if strings.TrimSpace(p.Amount) != "" {
			parsed, err := decimal.NewFromString(strings.TrimSpace(p.Amount))
			if err != nil {
				return engine.Transaction{}, errors.New("product amount must be a decimal string")
			}
			itemAmount = parsed
		}
		products = append(products, backend.BasketProduct{
			SKU:      p.SKU,
			Quantity: p.Quantity,
			Amount:   itemAmount,
		})
	}

	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	return engine.Transaction{
		ID:            strings.TrimSpace(req.TransactionID),
		CorrelationID: correlationID,
		MessageType:   strings.TrimSpace(req.MessageType),
		PANHash:       strings.TrimSpace(req.PANHash),
		EncryptedPIN:  req.EncryptedPIN,
		EncryptedCVV:  req.EncryptedCVV,
		Amount:        amount,
		Currency:      strings.ToUpper(strings.TrimSpace(req.Currency)),
		MerchantID:    strings.TrimSpace(req.MerchantID),
		MCCCode:       strings.TrimSpace(req.MCCCode),
		LocalTime:     localTime,
		UTCTime:       time.Now().UTC(),
		Products:      products,
	}, nil
}

func (api *authEngineAPI) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	txn, ok := api.decodeTransaction(w, r)
	if !ok {
		return
	}
	if api.rejectReplay(w, r, txn) {
		return
	}

	response, err := api.engine.Authorize(r.Context(), txn)
	if err != nil {
		api.logger.Error("authorization aborted",
			"transaction_id", txn.ID,
			"error", err.Error(),
		)
		// No decision was delivered, so a retransmit must be processed.
		api.guard.Forget(context.WithoutCancel(r.Context()), txn.ID)
		api.writeError(w, r, http.StatusInternalServerError, "authorization_failed")
		return
	}
	api.writeJSON(w, http.StatusOK, response)
}

func (api *authEngineAPI) handleAdjudicate(w http.ResponseWriter, r *http.Request) {
	txn, ok := api.decodeTransaction(w, r)
	if !ok {
		return
	}
	if api.rejectReplay(w, r, txn) {
		return
	}

	response, err := api.engine.Adjudicate(r.Context(), txn)
	if err != nil {
		api.logger.Error("adjudication aborted",
			"transaction_id", txn.ID,
			"error", err.Error(),
		)
		api.guard.Forget(context.WithoutCancel(r.Context()), txn.ID)
		api.writeError(w, r, http.StatusInternalServerError, "adjudication_failed")
		return
	}
	api.writeJSON(w, http.StatusOK, response)
}

func (api *authEngineAPI) decodeTransaction(w http.ResponseWriter, r *http.Request) (engine.Transaction, bool) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_json")
		return engine.Transaction{}, false
	}
	requestID, _ := httpserver.RequestIDFromContext(r.Context())
	txn, err := req.toTransaction(requestID)
	if err != nil {
		api.logger.Warn("rejected transaction", "error", err.Error())
		api.writeError(w, r, http.StatusBadRequest, "invalid_transaction")
		return engine.Transaction{}, false
	}
	return txn, true
}

// rejectReplay answers a retransmitted transaction id without touching any
// backend, so the switch never sees two decisions for one transaction.
func (api *authEngineAPI) rejectReplay(w http.ResponseWriter, r *http.Request, txn engine.Transaction) bool {
	if !api.guard.Seen(r.Context(), txn.ID) {
		return false
	}
	api.logger.Warn("duplicate transaction rejected", "transaction_id", txn.ID)
	_ = api.audit.Publish(r.Context(), audit.Header{
		CorrelationID: txn.CorrelationID,
		TransactionID: txn.ID,
		UTCTime:       time.Now().UTC(),
		Amount:        txn.Amount,
		Currency:      txn.Currency,
		PANHash:       txn.PANHash,
		MCCCode:       txn.MCCCode,
	}, audit.Event{
		Name:       audit.EventReplayRejected,
		OccurredAt: time.Now().UTC(),
	})
	api.writeError(w, r, http.StatusConflict, "duplicate_transaction")
	return true
}

type auditExportRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (api *authEngineAPI) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	var req auditExportRequest
	if err := decodeJSON(r, &req); err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_json")
		return
	}
	from, err := time.Parse(time.RFC3339, req.From)
	if err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_from")
		return
	}
	to, err := time.Parse(time.RFC3339, req.To)
	if err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_to")
		return
	}
	if !from.Before(to) {
		api.writeError(w, r, http.StatusBadRequest, "empty_window")
		return
	}

	key, err := api.exporter.Export(r.Context(), from, to)
	if err != nil {
		api.logger.Error("audit export failed", "error", err.Error())
		api.writeError(w, r, http.StatusInternalServerError, "export_failed")
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]string{"object_key": key})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("multiple JSON values")
	}
	return nil
}

func (api *authEngineAPI) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func (api *authEngineAPI) writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	api.writeJSON(w, status, map[string]any{
		"error":      code,
		"request_id": r.Header.Get("X-Request-Id"),
	})
}
