package engine

import (
	"testing"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

func TestExitRulesEvaluate(t *testing.T) {
	rules := ExitRules{ConfidenceCeiling: 0.95, TurnCeiling: 12}

	tests := []struct {
		name       string
		turnCount  int
		confidence float64
		ready      bool
		want       string
	}{
		{"fresh session continues", 1, 0.1, false, ""},
		{"ready flag wins", 2, 0.1, true, ExitCallbackReady},
		{"confidence at ceiling", 5, 0.95, false, ExitConfidence},
		{"confidence above ceiling", 5, 0.99, false, ExitConfidence},
		{"turn cap", 12, 0.3, false, ExitTurnLimit},
		{"turn cap beyond", 20, 0.3, false, ExitTurnLimit},
		{"ready outranks confidence and turns", 20, 0.99, true, ExitCallbackReady},
		{"confidence outranks turns", 15, 0.96, false, ExitConfidence},
		{"just below both limits", 11, 0.949, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := session.New("exit-test")
			sess.TurnCount = tt.turnCount
			sess.Confidence = tt.confidence
			sess.Flags.ReadyForCallback = tt.ready

			if got := rules.Evaluate(sess); got != tt.want {
				t.Errorf("Evaluate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitRulesIdempotent(t *testing.T) {
	rules := ExitRules{ConfidenceCeiling: 0.95, TurnCeiling: 12}

	sess := session.New("exit-idem")
	sess.TurnCount = 12

	first := rules.Evaluate(sess)
	for i := 0; i < 3; i++ {
		if got := rules.Evaluate(sess); got != first {
			t.Fatalf("evaluation %d = %q, first = %q", i, got, first)
		}
	}
}
