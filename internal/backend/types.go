// Package backend holds the wire contracts of the downstream services the
// engine orchestrates, plus the resilient HTTP client that calls them.
// Status codes and message strings here are network constants shared with
// the backends; they must never be reworded.
package backend

import "github.com/shopspring/decimal"

// CardStatus is the card service's validation outcome.
type CardStatus string

const (
	CardStatusSuccess              CardStatus = "SUCCESS"
	CardStatusNumberInvalid        CardStatus = "CARD_NUMBER_INVALID"
	CardStatusNotActivated         CardStatus = "CARD_NOT_ACTIVATED"
	CardStatusLocked               CardStatus = "LOCKED"
	CardStatusExpired              CardStatus = "CARD_EXPIRED"
	CardStatusAuthenticationFailed CardStatus = "CARD_AUTHENTICATION_FAILED"
	CardStatusCVVMismatch          CardStatus = "CVV_MISMATCH"
	CardStatusPINFailure           CardStatus = "PIN_VALIDATION_FAILURE"
)

// CardQuery asks the card service to validate a card by its PAN hash.
type CardQuery struct {
	PANHash      string `json:"pan_hash"`
	EncryptedPIN string `json:"encrypted_pin,omitempty"`
	EncryptedCVV string `json:"encrypted_cvv,omitempty"`
}

// CardResult carries the validation status and the account linkage used by
// the rest of the pipeline.
type CardResult struct {
	Status    CardStatus `json:"status"`
	AccountID string     `json:"account_id"`
}

// FraudCode is the fraud analyzer's verdict code.
type FraudCode string

const (
	FraudAllow   FraudCode = "TXNFRAUD_ALLOW"
	FraudSuspect FraudCode = "TXNFRAUD_SUSPECT"
)

// FraudQuery carries the card and transaction data scored by the fraud
// analyzer. The same shape is replayed to the velocity store after an
// approved authorization.
type FraudQuery struct {
	PANHash       string          `json:"pan_hash"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	MerchantID    string          `json:"merchant_id"`
	MCCCode       string          `json:"mcc_code"`
	LocalTime     string          `json:"local_time"`
}

type FraudResult struct {
	Code FraudCode `json:"code"`
}

// FraudSaveAck acknowledges a save-for-velocity request.
type FraudSaveAck struct {
	Saved bool `json:"saved"`
}

type MemberRecord struct {
	MemberID string `json:"member_id"`
	Status   string `json:"status"`
}

// AccountRecord links a member account to its owning member.
type AccountRecord struct {
	AccountID string          `json:"account_id"`
	MemberID  string          `json:"member_id"`
	Status    string          `json:"status"`
	Balance   decimal.Decimal `json:"balance"`
}

// Basket adjudication status codes.
const (
	BasketAllow                = "000"
	BasketPartialAllow         = "100"
	BasketProductsDeclined     = "200"
	BasketLimitExceeded        = "203"
	BasketUnauthorizedLocation = "205"
	BasketMerchantInvalid      = "206"
	BasketInsufficientFunds    = "123"
)

// BasketProduct is one purchased line item submitted for adjudication.
type BasketProduct struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	Amount   decimal.Decimal `json:"amount"`
}

// BasketRequest submits the full transaction context for benefit
// adjudication.
type BasketRequest struct {
	TransactionID string          `json:"transaction_id"`
	PANHash       string          `json:"pan_hash"`
	MemberID      string          `json:"member_id"`
	AccountID     string          `json:"account_id"`
	MerchantID    string          `json:"merchant_id"`
	MCCCode       string          `json:"mcc_code"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Products      []BasketProduct `json:"products"`
}

// ProductResult is the adjudicated outcome of one line item. Code uses the
// basket status code space; an empty code means the item was not assessed.
type ProductResult struct {
	SKU    string          `json:"sku"`
	Code   string          `json:"code"`
	Amount decimal.Decimal `json:"amount"`
}

// PurseAllocation is a per-benefit-category fund bucket debited when the
// basket is posted.
type PurseAllocation struct {
	PurseID string          `json:"purse_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type BasketResult struct {
	StatusCode       string            `json:"status_code"`
	AuthorizedAmount decimal.Decimal   `json:"authorized_amount"`
	GeneratedID      string            `json:"generated_id"`
	Products         []ProductResult   `json:"products"`
	Purses           []PurseAllocation `json:"purses"`
}

// Ledger posting status codes. The ledger service reports status as full
// message strings; they are matched verbatim.
const (
	LedgerInsufficientFunds = "Ledger Validation Failed: Insufficient Funds"
	LedgerAccountNotFound   = "Ledger Validation Failed: Account Not Found"
	LedgerPosted            = "Ledger Posting Successful."
)

type LedgerRequest struct {
	TransactionID string            `json:"transaction_id"`
	AccountID     string            `json:"account_id"`
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	Purses        []PurseAllocation `json:"purses"`
}

type LedgerResult struct {
	StatusCode string `json:"status_code"`
	Message    string `json:"message"`
}
