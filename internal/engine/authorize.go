package engine

import (
	"context"
	"fmt"

	"github.com/halcyon-pay/authengine-go/internal/audit"
	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/engine/decision"
)

// Authorize runs the full authorization pipeline and returns exactly one
// terminal response, or an error when the request aborts with no response
// (gather failure or cancellation).
func (e *Engine) Authorize(ctx context.Context, txn Transaction) (AuthorizationResponse, error) {
	header := e.header(txn)
	e.publish(ctx, header, audit.EventAuthReceived, "authorization request received", map[string]any{
		"merchant_id":  txn.MerchantID,
		"mcc_code":     txn.MCCCode,
		"message_type": txn.MessageType,
	})

	// Scatter the two independent lookups; nothing is inspected until
	// both have gathered.
	cardFuture := scatterCall(ctx, e, func(ctx context.Context) (backend.Result[backend.CardResult], error) {
		return e.backends.ValidateCard(ctx, txn.cardQuery())
	})
	fraudFuture := scatterCall(ctx, e, func(ctx context.Context) (backend.Result[backend.FraudResult], error) {
		return e.backends.AnalyzeFraud(ctx, txn.fraudQuery())
	})

	card, err := cardFuture.Wait(ctx)
	if err != nil {
		return e.abortAuthorization(ctx, header, "card validation", err)
	}
	fraud, err := fraudFuture.Wait(ctx)
	if err != nil {
		return e.abortAuthorization(ctx, header, "fraud analysis", err)
	}

	// Card gate. A degraded stage carries a fallback value, not a real
	// card status; it never declines on its own.
	if card.Degraded {
		e.logger.Warn("card validation degraded, gate skipped", "transaction_id", txn.ID)
		e.publish(ctx, header, audit.EventAuthCardValidated, DegradedCardDesc, map[string]any{"degraded": true})
	} else {
		if verdict := decision.CardAuthorization(card.Value.Status); verdict.Terminal() {
			e.publish(ctx, header, audit.EventAuthCardDeclined, verdict.Description, map[string]any{"card_status": string(card.Value.Status)})
			return e.respondAuthorization(ctx, header, txn, verdict.Code, verdict.Description), nil
		}
		if card.Value.Status != backend.CardStatusSuccess {
			e.logger.Warn("unrecognized card status treated as success",
				"transaction_id", txn.ID,
				"card_status", string(card.Value.Status),
			)
		}
		e.publish(ctx, header, audit.EventAuthCardValidated, decision.CardSuccessDesc, nil)
	}

	// Account then member: a true data dependency, so sequential.
	account, err := e.backends.LookupAccount(ctx, card.Value.AccountID)
	if err != nil {
		return e.abortAuthorization(ctx, header, "account lookup", err)
	}
	e.publish(ctx, header, audit.EventAuthAccountResolved, "member account resolved", map[string]any{"account_id": account.Value.AccountID})

	member, err := e.backends.LookupMember(ctx, account.Value.MemberID)
	if err != nil {
		return e.abortAuthorization(ctx, header, "member lookup", err)
	}
	e.publish(ctx, header, audit.EventAuthMemberResolved, "member resolved", map[string]any{"member_id": member.Value.MemberID})

	// Fraud gate, strictly after the card gate even though the call
	// completed long ago.
	if fraud.Degraded {
		e.logger.Warn("fraud analysis degraded, gate skipped", "transaction_id", txn.ID)
	} else if verdict := decision.FraudAuthorization(fraud.Value.Code); verdict.Terminal() {
		e.publish(ctx, header, audit.EventAuthFraudDeclined, verdict.Description, map[string]any{"fraud_code": string(fraud.Value.Code)})
		return e.respondAuthorization(ctx, header, txn, verdict.Code, verdict.Description), nil
	}

	basket, err := e.backends.AdjudicateBasket(ctx, txn.basketRequest(member.Value, account.Value))
	if err != nil {
		return e.abortAuthorization(ctx, header, "basket adjudication", err)
	}
	if basket.Degraded {
		e.logger.Warn("basket adjudication degraded, gate skipped", "transaction_id", txn.ID)
	} else if verdict := decision.BasketAuthorization(basket.Value.StatusCode); verdict.Terminal() {
		e.publish(ctx, header, audit.EventAuthBasketDeclined, verdict.Description, map[string]any{"basket_status": basket.Value.StatusCode})
		return e.respondAuthorization(ctx, header, txn, verdict.Code, verdict.Description), nil
	}
	e.publish(ctx, header, audit.EventAuthBasketApproved, decision.BasketAuthSuccessDesc, map[string]any{"basket_status": basket.Value.StatusCode})

	ledger, err := e.backends.PostLedger(ctx, txn.ledgerRequest(account.Value, basket.Value))
	if err != nil {
		return e.abortAuthorization(ctx, header, "ledger posting", err)
	}
	if ledger.Degraded {
		e.logger.Warn("ledger posting degraded, gate skipped", "transaction_id", txn.ID)
	} else if verdict := decision.Ledger(ledger.Value); verdict.Terminal() {
		e.publish(ctx, header, audit.EventAuthLedgerDeclined, verdict.Description, map[string]any{"ledger_status": ledger.Value.StatusCode})
		return e.respondAuthorization(ctx, header, txn, verdict.Code, verdict.Description), nil
	}
	e.publish(ctx, header, audit.EventAuthLedgerPosted, backend.LedgerPosted, nil)

	response := e.respondAuthorization(ctx, header, txn, decision.AuthAllow, decision.AuthAllow)
	e.saveForVelocity(ctx, header, txn)
	return response, nil
}

func (e *Engine) respondAuthorization(ctx context.Context, header audit.Header, txn Transaction, code, description string) AuthorizationResponse {
	response := assembleAuthorization(txn, code, description)
	e.publish(ctx, header, audit.EventAuthResponseSent, description, map[string]any{"status_code": code})
	return response
}

func (e *Engine) abortAuthorization(ctx context.Context, header audit.Header, stage string, err error) (AuthorizationResponse, error) {
	e.publish(ctx, header, audit.EventAuthAborted, stage, map[string]any{"error": err.Error()})
	return AuthorizationResponse{}, fmt.Errorf("%s: %w", stage, err)
}
