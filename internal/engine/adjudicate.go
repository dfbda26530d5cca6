package engine

import (
	"context"
	"fmt"

	"github.com/halcyon-pay/authengine-go/internal/audit"
	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/engine/decision"
)

// Adjudicate runs the pre-authorization pipeline: the same gates as
// authorization up to the basket, no ledger posting, and a detailed
// per-product response on completion.
func (e *Engine) Adjudicate(ctx context.Context, txn Transaction) (AdjudicationResponse, error) {
	header := e.header(txn)
	e.publish(ctx, header, audit.EventAdjReceived, "adjudication request received", map[string]any{
		"merchant_id":  txn.MerchantID,
		"mcc_code":     txn.MCCCode,
		"message_type": txn.MessageType,
	})

	cardFuture := scatterCall(ctx, e, func(ctx context.Context) (backend.Result[backend.CardResult], error) {
		return e.backends.ValidateCard(ctx, txn.cardQuery())
	})
	fraudFuture := scatterCall(ctx, e, func(ctx context.Context) (backend.Result[backend.FraudResult], error) {
		return e.backends.AnalyzeFraud(ctx, txn.fraudQuery())
	})

	card, err := cardFuture.Wait(ctx)
	if err != nil {
		return e.abortAdjudication(ctx, header, "card validation", err)
	}
	fraud, err := fraudFuture.Wait(ctx)
	if err != nil {
		return e.abortAdjudication(ctx, header, "fraud analysis", err)
	}

	if card.Degraded {
		e.logger.Warn("card validation degraded, gate skipped", "transaction_id", txn.ID)
		e.publish(ctx, header, audit.EventAdjCardValidated, DegradedCardDesc, map[string]any{"degraded": true})
	} else {
		if verdict := decision.CardAdjudication(card.Value.Status); verdict.Terminal() {
			e.publish(ctx, header, audit.EventAdjCardDeclined, verdict.Description, map[string]any{"card_status": string(card.Value.Status)})
			// A card decline carries no basket detail.
			return assembleAdjudication(txn, verdict.Code, verdict.Description, backend.BasketResult{}), nil
		}
		e.publish(ctx, header, audit.EventAdjCardValidated, decision.CardSuccessDesc, nil)
	}

	account, err := e.backends.LookupAccount(ctx, card.Value.AccountID)
	if err != nil {
		return e.abortAdjudication(ctx, header, "account lookup", err)
	}
	member, err := e.backends.LookupMember(ctx, account.Value.MemberID)
	if err != nil {
		return e.abortAdjudication(ctx, header, "member lookup", err)
	}

	if fraud.Degraded {
		e.logger.Warn("fraud analysis degraded, gate skipped", "transaction_id", txn.ID)
	} else if verdict := decision.FraudAdjudication(fraud.Value.Code); verdict.Terminal() {
		e.publish(ctx, header, audit.EventAdjFraudDeclined, verdict.Description, map[string]any{"fraud_code": string(fraud.Value.Code)})
		return assembleAdjudication(txn, verdict.Code, verdict.Description, backend.BasketResult{}), nil
	}

	basket, err := e.backends.AdjudicateBasket(ctx, txn.basketRequest(member.Value, account.Value))
	if err != nil {
		return e.abortAdjudication(ctx, header, "basket adjudication", err)
	}
	if basket.Degraded {
		e.logger.Warn("basket adjudication degraded", "transaction_id", txn.ID)
		response := assembleAdjudication(txn, backend.BasketAllow, decision.BasketAdjSuccessDesc, basket.Value)
		e.publish(ctx, header, audit.EventAdjCompleted, decision.BasketAdjSuccessDesc, map[string]any{"status_code": response.StatusCode})
		return response, nil
	}

	verdict := decision.BasketAdjudication(basket.Value.StatusCode)
	if verdict.Kind == decision.KindDecline {
		e.publish(ctx, header, audit.EventAdjBasketDeclined, verdict.Description, map[string]any{"basket_status": basket.Value.StatusCode})
		// Basket declines keep the basket detail so the caller sees every
		// line item outcome.
		return assembleAdjudication(txn, verdict.Code, verdict.Description, basket.Value), nil
	}

	code, description := basket.Value.StatusCode, decision.BasketPartialAllowDesc
	if verdict.Kind == decision.KindContinue {
		code, description = backend.BasketAllow, decision.BasketSuccessDesc
	}
	response := assembleAdjudication(txn, code, description, basket.Value)
	e.publish(ctx, header, audit.EventAdjCompleted, description, map[string]any{"status_code": code})
	return response, nil
}

func (e *Engine) abortAdjudication(ctx context.Context, header audit.Header, stage string, err error) (AdjudicationResponse, error) {
	e.publish(ctx, header, audit.EventAdjAborted, stage, map[string]any{"error": err.Error()})
	return AdjudicationResponse{}, fmt.Errorf("%s: %w", stage, err)
}
