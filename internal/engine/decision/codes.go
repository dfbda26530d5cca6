package decision

// Outward authorization response codes.
const (
	AuthAllow                    = "AUTH_ALLOW"
	AuthDeny                     = "AUTH_DENY"
	AuthCardNumberInvalid        = "AUTH_CARD_NUMBER_INVALID"
	AuthCardNotActivated         = "AUTH_CARD_NOT_ACTIVATED"
	AuthCardLocked               = "AUTH_CARD_LOCKED"
	AuthCardExpired              = "AUTH_CARD_EXPIRED"
	AuthCardAuthenticationFailed = "AUTH_CARD_AUTHENTICATION_FAILED"
	AuthCVVMismatch              = "AUTH_CVV_MISMATCH"
	AuthPINValidationFailure     = "AUTH_PIN_VALIDATION_FAILURE"
	AuthInvalidMerchant          = "AUTH_INVALID_MERCHANT"
	AuthExceededTransactionLimit = "AUTH_EXCEEDED_TRANSACTION_LIMIT"
	AuthPartialAllow             = "AUTH_PARTIAL_ALLOW"
	AuthInsufficientFunds        = "AUTH_INSUFFICIENT_FUNDS"
	AuthAccountNotFound          = "AUTH_ACCOUNT_NOT_FOUND"
	AuthTransactionError         = "AUTH_TRANSACTION_ERROR"
)

// Card adjudication decline codes, shared with the switch network.
const (
	CardNumberInvalidCode        = "14"
	CardNotActivatedCode         = "78"
	CardLockedCode               = "38"
	CardAuthenticationFailedCode = "82"
	CardCVVMismatchCode          = "82"
	CardPINValidationFailureCode = "55"
	CardExpiredCode              = "54"
)

const FraudSuspectCode = "206"

// Terminal response labels.
const (
	DeclinedResponse = "DECLINED"
	ApprovedResponse = "APPROVED"
)

// Fixed verdict descriptions.
const (
	CardNumberInvalidDesc        = "Card data is not found for the PAN Hash"
	CardNotActivatedDesc         = "Card is found but Status is Inactive"
	CardLockedDesc               = "Card is in locked status"
	CardExpiredDesc              = "Card is found but expired"
	CardAuthenticationFailedDesc = "Card found and card type is NOT debit but card status is active"
	CardCVVMismatchDesc          = "Card found and Status is active but PIN didn't match"
	CardPINValidationFailureDesc = "Card found and Status is active but PIN didn't match"
	CardSuccessDesc              = "Card authorization successful"

	FraudSuspectDesc = "Transaction entirely declined due to suspected fraud"

	BasketInvalidMerchantDesc      = "Merchant is invalid"
	BasketTransactionLimitDesc     = "Transaction entirely declined due to transaction limit exceeded"
	BasketAuthSuccessDesc          = "BAS Authorization successful"
	BasketSuccessDesc              = "Transaction fully approved; more details at line items"
	BasketAdjSuccessDesc           = "BAS Adjudication successful"
	BasketPartialAllowDesc         = "Transaction partially approved; more details at line items"
	BasketProductDeclinedDesc      = "Transaction entirely declined due to unauthorized products in the basket"
	BasketInsufficientFundDesc     = "Transaction entirely declined due to no funds in the purses"
	BasketUnauthorizedLocationDesc = "Transaction entirely declined due to purchase at an unauthorized store location or online retailer or country"
	BasketTransactionDeclinedDesc  = "Transaction declined"
)
