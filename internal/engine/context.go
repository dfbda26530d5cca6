// Package engine runs the authorization and adjudication pipelines: it
// scatters the independent backend lookups, gathers them, walks the
// decision gates in order, and assembles exactly one terminal response per
// request.
package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/halcyon-pay/authengine-go/internal/backend"
)

// Transaction is the immutable per-request context. It is built once at
// the transport boundary and only ever copied afterwards; no pipeline
// stage mutates it.
type Transaction struct {
	ID            string
	CorrelationID string
	MessageType   string
	PANHash       string
	EncryptedPIN  string
	EncryptedCVV  string
	Amount        decimal.Decimal
	Currency      string
	MerchantID    string
	MCCCode       string
	LocalTime     time.Time
	UTCTime       time.Time
	Products      []backend.BasketProduct
}

func (t Transaction) cardQuery() backend.CardQuery {
	return backend.CardQuery{
		PANHash:      t.PANHash,
		EncryptedPIN: t.EncryptedPIN,
		EncryptedCVV: t.EncryptedCVV,
	}
}

func (t Transaction) fraudQuery() backend.FraudQuery {
	return backend.FraudQuery{
		PANHash:       t.PANHash,
		TransactionID: t.ID,
		Amount:        t.Amount,
		Currency:      t.Currency,
		MerchantID:    t.MerchantID,
		MCCCode:       t.MCCCode,
		LocalTime:     t.LocalTime.Format(time.RFC3339),
	}
}

func (t Transaction) basketRequest(member backend.MemberRecord, account backend.AccountRecord) backend.BasketRequest {
	return backend.BasketRequest{
		TransactionID: t.ID,
		PANHash:       t.PANHash,
		MemberID:      member.MemberID,
		AccountID:     account.AccountID,
		MerchantID:    t.MerchantID,
		MCCCode:       t.MCCCode,
		Amount:        t.Amount,
		Currency:      t.Currency,
		Products:      t.Products,
	}
}

func (t Transaction) ledgerRequest(account backend.AccountRecord, basket backend.BasketResult) backend.LedgerRequest {
	return backend.LedgerRequest{
		TransactionID: t.ID,
		AccountID:     account.AccountID,
		Amount:        basket.AuthorizedAmount,
		Currency:      t.Currency,
		Purses:        basket.Purses,
	}
}
