// Package decision maps backend status codes to pipeline verdicts. Every
// table is a pure function: total over its code space, deterministic, and
// free of side effects, so the same response always classifies the same
// way.
package decision

// Kind discriminates the verdict variants.
type Kind int

const (
	// KindContinue lets the pipeline advance to its next stage.
	KindContinue Kind = iota
	// KindDecline terminates the pipeline with a decline response.
	KindDecline
	// KindPartialAllow terminates the pipeline with a partial approval;
	// line item detail tells the caller which products went through.
	KindPartialAllow
)

// Verdict is the outcome of classifying one backend response. Declines are
// values, never errors; a terminal verdict stops all further gated backend
// calls for the request.
type Verdict struct {
	Kind        Kind
	Code        string
	Description string
}

func Continue() Verdict { return Verdict{Kind: KindContinue} }

func Decline(code, description string) Verdict {
	return Verdict{Kind: KindDecline, Code: code, Description: description}
}

func PartialAllow(code, description string) Verdict {
	return Verdict{Kind: KindPartialAllow, Code: code, Description: description}
}

// Terminal reports whether the verdict ends the pipeline.
func (v Verdict) Terminal() bool { return v.Kind != KindContinue }
