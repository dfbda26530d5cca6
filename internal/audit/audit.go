// Package audit records the decision trail of every transaction: one
// header describing the transaction plus a stream of named events, one per
// pipeline stage boundary.
package audit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Stage boundary event names.
const (
	EventAuthReceived        = "authorization.received"
	EventAuthCardValidated   = "authorization.card_validated"
	EventAuthCardDeclined    = "authorization.card_declined"
	EventAuthAccountResolved = "authorization.account_resolved"
	EventAuthMemberResolved  = "authorization.member_resolved"
	EventAuthFraudDeclined   = "authorization.fraud_declined"
	EventAuthBasketApproved  = "authorization.basket_approved"
	EventAuthBasketDeclined  = "authorization.basket_declined"
	EventAuthLedgerPosted    = "authorization.ledger_posted"
	EventAuthLedgerDeclined  = "authorization.ledger_declined"
	EventAuthResponseSent    = "authorization.response_sent"
	EventAuthVelocitySaved   = "authorization.velocity_saved"
	EventAuthAborted         = "authorization.aborted"

	EventAdjReceived       = "adjudication.received"
	EventAdjCardValidated  = "adjudication.card_validated"
	EventAdjCardDeclined   = "adjudication.card_declined"
	EventAdjFraudDeclined  = "adjudication.fraud_declined"
	EventAdjCompleted      = "adjudication.completed"
	EventAdjBasketDeclined = "adjudication.basket_declined"
	EventAdjAborted        = "adjudication.aborted"

	EventReplayRejected = "ingress.replay_rejected"
)

// Header identifies the transaction an event stream belongs to. One header
// is built per request and reused for every event of that request.
type Header struct {
	CorrelationID string
	TransactionID string
	LocalTime     time.Time
	UTCTime       time.Time
	Amount        decimal.Decimal
	Currency      string
	PANHash       string
	MCCCode       string
	Source        string
	Version       string
}

// Event is one stage boundary observation.
type Event struct {
	Name        string
	Description string
	OccurredAt  time.Time
	Payload     any
}

// Publisher delivers events to a sink. Implementations must tolerate
// concurrent calls.
type Publisher interface {
	Publish(ctx context.Context, header Header, events ...Event) error
}

// NopPublisher discards everything. Used when no sink is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Header, ...Event) error { return nil }
