package intel

import "testing"

func TestScoreBounds(t *testing.T) {
	empty := NewIntelligence()

	if got := Score(0, &empty, Classification{}); got != 0 {
		t.Errorf("Score(0, empty) = %f, want 0", got)
	}
	if got := Score(-5, &empty, Classification{}); got != 0 {
		t.Errorf("negative turn count = %f, want 0", got)
	}

	// Saturate everything; score stays within [0, 1].
	full := NewIntelligence()
	full.BankAccounts.Add("123456789012")
	full.UPIIDs.Add("a@ybl")
	full.PhishingLinks.Add("http://x.yz")
	full.PhoneNumbers.Add("+919876543210")
	full.SuspiciousKeywords.Add("otp")
	got := Score(1000, &full, Classification{Sophistication: SophisticationHigh})
	if got < 0 || got > 1 {
		t.Errorf("saturated score = %f, out of [0,1]", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	cum := NewIntelligence()
	cum.UPIIDs.Add("fraud@ybl")
	cum.SuspiciousKeywords.Add("kyc")
	cls := Classification{Type: TypeUPIFraud, Sophistication: SophisticationMedium}

	first := Score(4, &cum, cls)
	for i := 0; i < 10; i++ {
		if got := Score(4, &cum, cls); got != first {
			t.Fatalf("score varied across calls: %f != %f", got, first)
		}
	}
}

func TestScoreMonotoneInState(t *testing.T) {
	cum := NewIntelligence()
	prev := Score(1, &cum, Classification{})

	// More turns never lowers the score.
	for turn := 2; turn <= 12; turn++ {
		got := Score(turn, &cum, Classification{})
		if got < prev {
			t.Fatalf("score decreased with turns: %f -> %f at turn %d", prev, got, turn)
		}
		prev = got
	}

	// Each new identifier class never lowers the score.
	adds := []func(){
		func() { cum.UPIIDs.Add("a@ybl") },
		func() { cum.BankAccounts.Add("123456789012") },
		func() { cum.PhoneNumbers.Add("+919876543210") },
		func() { cum.PhishingLinks.Add("http://x.yz") },
		func() { cum.SuspiciousKeywords.Add("otp") },
	}
	for i, add := range adds {
		add()
		got := Score(12, &cum, Classification{})
		if got < prev {
			t.Fatalf("score decreased after adding class %d: %f -> %f", i, prev, got)
		}
		prev = got
	}
}

func TestScoreTurnsAloneStayBelowThreshold(t *testing.T) {
	// Engagement length without any extracted intelligence must not reach
	// the default exit threshold on its own.
	empty := NewIntelligence()
	if got := Score(100, &empty, Classification{}); got >= 0.95 {
		t.Errorf("turn-only score = %f, crosses exit threshold", got)
	}
}

func TestScoreRichSessionCrossesThreshold(t *testing.T) {
	full := NewIntelligence()
	full.BankAccounts.Add("123456789012")
	full.UPIIDs.Add("a@ybl")
	full.PhishingLinks.Add("http://x.yz")
	full.PhoneNumbers.Add("+919876543210")
	full.SuspiciousKeywords.Add("otp")

	got := Score(8, &full, Classification{Sophistication: SophisticationHigh})
	if got < 0.95 {
		t.Errorf("fully saturated session at turn 8 = %f, want >= 0.95", got)
	}
}
