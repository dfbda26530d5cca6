package decision

import "github.com/halcyon-pay/authengine-go/internal/backend"

// Ledger classifies a ledger posting result. Unlike the other tables, the
// decline description forwards the ledger's own message text.
func Ledger(result backend.LedgerResult) Verdict {
	switch result.StatusCode {
	case backend.LedgerPosted:
		return Continue()
	case backend.LedgerInsufficientFunds:
		return Decline(AuthInsufficientFunds, result.Message)
	case backend.LedgerAccountNotFound:
		return Decline(AuthAccountNotFound, result.Message)
	default:
		return Decline(AuthTransactionError, result.Message)
	}
}
