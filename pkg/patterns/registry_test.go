package patterns

import (
	"testing"
)

func values(matches []Match) []string {
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Value)
	}
	return out
}

func TestRegistryInitialization(t *testing.T) {
	reg := Get()

	if reg.TotalRules() == 0 {
		t.Fatal("registry has no rules")
	}
	for _, cat := range []Category{
		CategoryPhoneNumber, CategoryUPIID, CategoryBankAccount, CategoryPhishingLink,
		CategorySuspiciousKeyword, CategoryTacticPattern,
		CategoryImpersonationClaim, CategoryOrganizationalClue,
	} {
		if reg.CategoryCount(cat) == 0 {
			t.Errorf("category %s has no rules", cat)
		}
	}

	// Singleton
	if Get() != reg {
		t.Error("Get() returned a different registry instance")
	}
}

func TestPhoneNormalization(t *testing.T) {
	reg := Get()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"prefixed with dash", "Call me at +91-9876543210", []string{"+919876543210"}},
		{"bare local number", "Call me at 9876543210", []string{"+919876543210"}},
		{"same number twice in different formats", "Call +91-9876543210 or 9876543210 now", []string{"+919876543210"}},
		{"prefixed with space", "reach us on +91 9876543210", []string{"+919876543210"}},
		{"no phone", "there is no number here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(reg.Extract(tt.text, CategoryPhoneNumber))
			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Extract(%q)[%d] = %q, want %q", tt.text, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestUPIHandleVsEmail(t *testing.T) {
	reg := Get()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"dotless provider is UPI", "pay scammer.fraud@fakebank today", []string{"scammer.fraud@fakebank"}},
		{"known payment suffix with dot", "send to merchant@okhdfcbank", []string{"merchant@okhdfcbank"}},
		{"email domain rejected", "contact john.doe@gmail.com", nil},
		{"uppercase is lowered", "Pay FRAUD@YBL", []string{"fraud@ybl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(reg.Extract(tt.text, CategoryUPIID))
			if len(got) != len(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %q, want %q", got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBankAccountExtraction(t *testing.T) {
	reg := Get()

	// Grouped card-style number collapses to digits.
	got := values(reg.Extract("transfer to 1234-5678-9012-3456 now", CategoryBankAccount))
	if len(got) != 1 || got[0] != "1234567890123456" {
		t.Errorf("grouped account: got %v", got)
	}

	// Phone-shaped 10-digit runs are not accounts.
	got = values(reg.Extract("my number is 9876543210", CategoryBankAccount))
	if len(got) != 0 {
		t.Errorf("phone-shaped run extracted as account: %v", got)
	}

	// A 12-digit run is account-shaped.
	got = values(reg.Extract("account 123456789012 is flagged", CategoryBankAccount))
	if len(got) != 1 || got[0] != "123456789012" {
		t.Errorf("12-digit account: got %v", got)
	}
}

func TestPhishingLinkAllowList(t *testing.T) {
	reg := Get()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"phishing domain reported", "verify at http://secure-bank-verify.xyz/login", 1},
		{"allow-listed domain skipped", "see https://www.google.com/search", 0},
		{"gov subdomain skipped", "official portal https://incometax.gov.in/", 0},
		{"trailing punctuation trimmed", "click https://fakebank.in/kyc.", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := values(reg.Extract(tt.text, CategoryPhishingLink))
			if len(got) != tt.want {
				t.Errorf("Extract(%q) = %v, want %d links", tt.text, got, tt.want)
			}
		})
	}
}

func TestPhishingLinkKeepsPathCase(t *testing.T) {
	reg := Get()

	got := values(reg.Extract("login at http://Secure-SBI-Verify.xyz/Account/Reset?Token=AbC123", CategoryPhishingLink))
	want := "http://secure-sbi-verify.xyz/Account/Reset?Token=AbC123"
	if len(got) != 1 || got[0] != want {
		t.Errorf("Extract = %v, want [%s]", got, want)
	}

	// Host case never defeats the allow-list.
	got = values(reg.Extract("portal http://IncomeTax.GOV.in/Refund", CategoryPhishingLink))
	if len(got) != 0 {
		t.Errorf("allow-listed host reported: %v", got)
	}
}

func TestKeywordAndTacticSignals(t *testing.T) {
	reg := Get()

	text := "URGENT: your account will be blocked, verify immediately with OTP"

	kws := values(reg.Extract(text, CategorySuspiciousKeyword))
	for _, want := range []string{"urgent", "block", "otp", "verify", "verify immediately", "account"} {
		found := false
		for _, k := range kws {
			if k == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("keyword %q not extracted from %q (got %v)", want, text, kws)
		}
	}

	tactics := values(reg.Extract(text, CategoryTacticPattern))
	hasUrgency, hasThreat := false, false
	for _, tac := range tactics {
		if tac == "high_urgency_tactics" {
			hasUrgency = true
		}
		if tac == "threat_based_coercion" {
			hasThreat = true
		}
	}
	if !hasUrgency || !hasThreat {
		t.Errorf("tactics = %v, want urgency and coercion", tactics)
	}
}

func TestImpersonationAndOrgClues(t *testing.T) {
	reg := Get()

	text := "I am calling from SBI fraud prevention, my senior manager will confirm, employee ID: 4521"

	imps := values(reg.Extract(text, CategoryImpersonationClaim))
	if len(imps) == 0 || imps[0] != "bank_official" {
		t.Errorf("impersonation = %v, want bank_official first", imps)
	}

	tactics := values(reg.Extract(text, CategoryTacticPattern))
	found := false
	for _, tac := range tactics {
		if tac == "authority_impersonation" {
			found = true
		}
	}
	if !found {
		t.Errorf("tactics = %v, want authority_impersonation", tactics)
	}

	orgs := values(reg.Extract(text, CategoryOrganizationalClue))
	wantOrg := map[string]bool{"mentioned_senior": false, "mentioned_manager": false}
	for _, o := range orgs {
		if _, ok := wantOrg[o]; ok {
			wantOrg[o] = true
		}
	}
	for k, seen := range wantOrg {
		if !seen {
			t.Errorf("organizational clue %s missing from %v", k, orgs)
		}
	}
}

func TestExtractDeterminism(t *testing.T) {
	reg := Get()
	text := "URGENT: pay scammer@ybl or call +91-9876543210, account 123456789012 blocked, visit http://fake.xyz"

	first := values(reg.Extract(text,
		CategoryPhoneNumber, CategoryUPIID, CategoryBankAccount, CategoryPhishingLink,
		CategorySuspiciousKeyword, CategoryTacticPattern))
	for i := 0; i < 5; i++ {
		again := values(reg.Extract(text,
			CategoryPhoneNumber, CategoryUPIID, CategoryBankAccount, CategoryPhishingLink,
			CategorySuspiciousKeyword, CategoryTacticPattern))
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d != %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d: order diverged at %d: %q != %q", i, j, again[j], first[j])
			}
		}
	}
}

func TestMatchAny(t *testing.T) {
	reg := Get()

	if rule := reg.MatchAny("completely ordinary text about weather", CategoryTacticPattern); rule != nil {
		t.Errorf("benign text matched tactic rule %s", rule.Name)
	}
	if rule := reg.MatchAny("act now or face legal action", CategoryTacticPattern); rule == nil {
		t.Error("threatening text matched no tactic rule")
	}
}
