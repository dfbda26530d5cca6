package decision

import "github.com/halcyon-pay/authengine-go/internal/backend"

// FraudAuthorization passes only the explicit allow code; every other
// fraud verdict declines the transaction as suspected fraud.
func FraudAuthorization(code backend.FraudCode) Verdict {
	if code == backend.FraudAllow {
		return Continue()
	}
	return Decline(AuthDeny, FraudSuspectDesc)
}

// FraudAdjudication is the adjudication variant; the decline carries the
// network suspect code.
func FraudAdjudication(code backend.FraudCode) Verdict {
	if code == backend.FraudAllow {
		return Continue()
	}
	return Decline(FraudSuspectCode, FraudSuspectDesc)
}
