package decision

import "github.com/halcyon-pay/authengine-go/internal/backend"

// BasketAuthorization classifies a basket adjudication status for the
// authorization pipeline. A partial approval is terminal; the line item
// detail goes out with the response and no ledger posting happens.
func BasketAuthorization(statusCode string) Verdict {
	switch statusCode {
	case backend.BasketAllow:
		return Continue()
	case backend.BasketPartialAllow:
		return PartialAllow(AuthPartialAllow, BasketPartialAllowDesc)
	case backend.BasketMerchantInvalid:
		return Decline(AuthInvalidMerchant, BasketInvalidMerchantDesc)
	case backend.BasketLimitExceeded:
		return Decline(AuthExceededTransactionLimit, BasketTransactionLimitDesc)
	case backend.BasketProductsDeclined:
		return Decline(AuthDeny, BasketProductDeclinedDesc)
	case backend.BasketInsufficientFunds:
		return Decline(AuthInsufficientFunds, BasketInsufficientFundDesc)
	case backend.BasketUnauthorizedLocation:
		return Decline(AuthInvalidMerchant, BasketUnauthorizedLocationDesc)
	default:
		return Decline(AuthDeny, DeclinedResponse)
	}
}

// BasketAdjudication echoes the basket status codes outward instead of
// translating them.
func BasketAdjudication(statusCode string) Verdict {
	switch statusCode {
	case backend.BasketAllow:
		return Continue()
	case backend.BasketPartialAllow:
		return PartialAllow(backend.BasketPartialAllow, BasketPartialAllowDesc)
	case backend.BasketMerchantInvalid:
		return Decline(backend.BasketMerchantInvalid, BasketInvalidMerchantDesc)
	case backend.BasketLimitExceeded:
		return Decline(backend.BasketLimitExceeded, BasketTransactionLimitDesc)
	case backend.BasketProductsDeclined:
		return Decline(backend.BasketProductsDeclined, BasketProductDeclinedDesc)
	case backend.BasketInsufficientFunds:
		return Decline(backend.BasketInsufficientFunds, BasketInsufficientFundDesc)
	case backend.BasketUnauthorizedLocation:
		return Decline(backend.BasketUnauthorizedLocation, BasketUnauthorizedLocationDesc)
	default:
		return Decline(DeclinedResponse, BasketTransactionDeclinedDesc)
	}
}
