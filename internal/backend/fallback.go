package backend

// Fallback responses returned when a dependency is unreachable after
// retries or its breaker is open. They are structurally valid and
// semantically empty; the decision tables treat degraded stages as
// non-blocking, so an empty fallback never declines a transaction by
// itself.

func fallbackCard() CardResult { return CardResult{} }

func fallbackFraud() FraudResult { return FraudResult{} }

func fallbackSave() FraudSaveAck { return FraudSaveAck{} }

func fallbackMember() MemberRecord { return MemberRecord{} }

func fallbackAccount() AccountRecord { return AccountRecord{} }

func fallbackBasket() BasketResult { return BasketResult{} }

func fallbackLedger() LedgerResult { return LedgerResult{} }
