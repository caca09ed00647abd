package persona

import (
	"strings"
	"testing"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
)

func TestStageForTurn(t *testing.T) {
	tests := []struct {
		turn int
		want Stage
	}{
		{0, StageEarly},
		{1, StageEarly},
		{3, StageEarly},
		{4, StageMiddle},
		{7, StageMiddle},
		{8, StageLate},
		{20, StageLate},
	}
	for _, tt := range tests {
		if got := StageForTurn(tt.turn); got != tt.want {
			t.Errorf("StageForTurn(%d) = %s, want %s", tt.turn, got, tt.want)
		}
	}
}

func TestCharacterByScamType(t *testing.T) {
	if c := Character(intel.TypeBankingFraud); !strings.Contains(c, "Priya") {
		t.Errorf("banking character = %q", c)
	}
	if c := Character("something-unknown"); !strings.Contains(c, "Rajesh") {
		t.Errorf("default character = %q", c)
	}
}

func TestInstructionsIncludeStageAndHints(t *testing.T) {
	rc := ReplyContext{
		Stage:    StageLate,
		ScamType: intel.TypeUPIFraud,
		WantUPI:  true,
		WantBank: true,
	}

	got := rc.Instructions()
	for _, want := range []string{
		"deeply engaged",
		"UPI IDs or payment addresses",
		"bank account numbers",
		"NEVER mention being an AI",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q", want)
		}
	}
	if strings.Contains(got, "verification links") {
		t.Error("instructions hint at links that were not requested")
	}
}

func TestScriptedReplyDeterministic(t *testing.T) {
	for turn := 0; turn <= 10; turn++ {
		first := ScriptedReply(turn, "please verify your details")
		for i := 0; i < 3; i++ {
			if got := ScriptedReply(turn, "please verify your details"); got != first {
				t.Fatalf("turn %d: reply varied across calls", turn)
			}
		}
	}
}

func TestScriptedReplyKeywordRouting(t *testing.T) {
	tests := []struct {
		name   string
		turn   int
		latest string
		want   string
	}{
		{"first contact", 1, "anything at all", "who's this"},
		{"kyc steers to bank reply", 2, "complete your KYC now", "bank account is at risk"},
		{"prize steers to lottery reply", 3, "you win a big prize", "Did I really win"},
		{"upi steers to payment reply", 4, "send to x@ybl via UPI", "didn't work"},
		{"fallback rotates by turn", 5, "nothing matches here", "explain that again"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScriptedReply(tt.turn, tt.latest)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ScriptedReply(%d, %q) = %q, want substring %q", tt.turn, tt.latest, got, tt.want)
			}
		})
	}
}
