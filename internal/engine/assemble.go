package engine

import (
	"github.com/shopspring/decimal"

	"github.com/halcyon-pay/authengine-go/internal/backend"
	"github.com/halcyon-pay/authengine-go/internal/engine/decision"
)

// AuthorizationResponse is the terminal answer of the authorization
// pipeline.
type AuthorizationResponse struct {
	StatusCode  string      `json:"status_code"`
	Description string      `json:"description"`
	Transaction Transaction `json:"transaction"`
}

// ProductDecision is one adjudicated line item with its outward
// approved/declined label.
type ProductDecision struct {
	SKU    string          `json:"sku"`
	Code   string          `json:"code"`
	Result string          `json:"result"`
	Amount decimal.Decimal `json:"amount"`
}

// AdjudicationResponse is the terminal answer of the adjudication
// pipeline, itemized per product.
type AdjudicationResponse struct {
	StatusCode       string                    `json:"status_code"`
	Description      string                    `json:"description"`
	AuthorizedAmount decimal.Decimal           `json:"authorized_amount"`
	GeneratedID      string                    `json:"generated_id"`
	Products         []ProductDecision         `json:"products"`
	Purses           []backend.PurseAllocation `json:"purses"`
	Transaction      Transaction               `json:"transaction"`
}

// assembleAuthorization builds the single outward authorization response.
func assembleAuthorization(txn Transaction, code, description string) AuthorizationResponse {
	return AuthorizationResponse{
		StatusCode:  code,
		Description: description,
		Transaction: txn,
	}
}

// assembleAdjudication builds the single outward adjudication response,
// carrying the basket detail when the basket was actually assessed.
func assembleAdjudication(txn Transaction, code, description string, basket backend.BasketResult) AdjudicationResponse {
	return AdjudicationResponse{
		StatusCode:       code,
		Description:      description,
		AuthorizedAmount: basket.AuthorizedAmount,
		GeneratedID:      basket.GeneratedID,
		Products:         productDecisions(basket.Products),
		Purses:           basket.Purses,
		Transaction:      txn,
	}
}

func productDecisions(products []backend.ProductResult) []ProductDecision {
	if len(products) == 0 {
		return nil
	}
	out := make([]ProductDecision, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDecision{
			SKU:    p.SKU,
			Code:   p.Code,
			Result: productResult(p.Code),
			Amount: p.Amount,
		})
	}
	return out
}

// productResult labels a line item by its adjudication code: the partial
// approval code is approved, any other non-empty code is declined, and an
// unassessed (empty) code stays empty.
func productResult(code string) string {
	if code == "" {
		return ""
	}
	if code == backend.BasketPartialAllow {
		return decision.ApprovedResponse
	}
	return decision.DeclinedResponse
}
