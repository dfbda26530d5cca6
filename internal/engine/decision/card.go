package decision

import "github.com/halcyon-pay/authengine-go/internal/backend"

// CardAuthorization classifies a card validation result for the
// authorization pipeline. Any status not explicitly listed passes; the
// caller logs unrecognized codes.
func CardAuthorization(status backend.CardStatus) Verdict {
	switch status {
	case backend.CardStatusNumberInvalid:
		return Decline(AuthCardNumberInvalid, CardNumberInvalidDesc)
	case backend.CardStatusNotActivated:
		return Decline(AuthCardNotActivated, CardNotActivatedDesc)
	case backend.CardStatusLocked:
		return Decline(AuthCardLocked, CardLockedDesc)
	case backend.CardStatusExpired:
		return Decline(AuthCardExpired, CardExpiredDesc)
	case backend.CardStatusAuthenticationFailed:
		return Decline(AuthCardAuthenticationFailed, CardAuthenticationFailedDesc)
	case backend.CardStatusCVVMismatch:
		return Decline(AuthCVVMismatch, CardCVVMismatchDesc)
	case backend.CardStatusPINFailure:
		return Decline(AuthPINValidationFailure, CardPINValidationFailureDesc)
	default:
		return Continue()
	}
}

// CardAdjudication is the adjudication variant; declines carry the network
// code space instead of the outward authorization codes.
func CardAdjudication(status backend.CardStatus) Verdict {
	switch status {
	case backend.CardStatusNumberInvalid:
		return Decline(CardNumberInvalidCode, CardNumberInvalidDesc)
	case backend.CardStatusNotActivated:
		return Decline(CardNotActivatedCode, CardNotActivatedDesc)
	case backend.CardStatusLocked:
		return Decline(CardLockedCode, CardLockedDesc)
	case backend.CardStatusExpired:
		return Decline(CardExpiredCode, CardExpiredDesc)
	case backend.CardStatusAuthenticationFailed:
		return Decline(CardAuthenticationFailedCode, CardAuthenticationFailedDesc)
	case backend.CardStatusCVVMismatch:
		return Decline(CardCVVMismatchCode, CardCVVMismatchDesc)
	case backend.CardStatusPINFailure:
		return Decline(CardPINValidationFailureCode, CardPINValidationFailureDesc)
	default:
		return Continue()
	}
}
