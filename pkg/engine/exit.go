package engine

import "github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"

// Exit reasons recorded on terminal sessions, checked in priority order.
const (
	ExitCallbackReady = "callback_ready"
	ExitConfidence    = "confidence_threshold"
	ExitTurnLimit     = "turn_limit"
)

// ExitRules decides when an engagement ends. Evaluation is a pure function
// of session state, so re-evaluating a terminal session is harmless.
type ExitRules struct {
	// ConfidenceCeiling ends the engagement once confidence reaches it.
	ConfidenceCeiling float64
	// TurnCeiling ends the engagement after this many scammer turns.
	TurnCeiling int
}

// Evaluate returns the exit reason for the session, or "" to continue.
// The ready flag wins over the score, the score over the turn cap.
func (r ExitRules) Evaluate(s *session.Session) string {
	switch {
	case s.Flags.ReadyForCallback:
		return ExitCallbackReady
	case s.Confidence >= r.ConfidenceCeiling:
		return ExitConfidence
	case s.TurnCount >= r.TurnCeiling:
		return ExitTurnLimit
	default:
		return ""
	}
}
