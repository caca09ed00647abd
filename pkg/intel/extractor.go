package intel

import (
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/patterns"
)

// Extract scans a single message and returns the partial intelligence record
// for that turn. It is stateless and total over any string input: empty or
// non-matching text yields an empty record, never an error.
//
// Cross-rule precedence: a digit run claimed by the phone rules is excluded
// from the bank-account set even when its shape also satisfies the account
// rule, so "+91-9876543210" never shows up as a 10-digit "account".
func Extract(text string) *Intelligence {
	out := NewIntelligence()
	if text == "" {
		return &out
	}

	normalized := NormalizeText(text)
	reg := patterns.Get()

	matches := reg.Extract(normalized,
		patterns.CategoryPhoneNumber,
		patterns.CategoryUPIID,
		patterns.CategoryBankAccount,
		patterns.CategoryPhishingLink,
		patterns.CategorySuspiciousKeyword,
		patterns.CategoryTacticPattern,
		patterns.CategoryImpersonationClaim,
		patterns.CategoryOrganizationalClue,
	)

	// Phone digit runs, both full (+91xxxxxxxxxx) and national, used to veto
	// bank-account candidates below.
	phoneDigits := make(map[string]struct{})

	for _, m := range matches {
		if m.Rule.Category == patterns.CategoryPhoneNumber {
			out.PhoneNumbers.Add(m.Value)
			d := m.Value[1:] // strip leading '+'
			phoneDigits[d] = struct{}{}
			if len(d) > 10 {
				phoneDigits[d[len(d)-10:]] = struct{}{}
			}
		}
	}

	for _, m := range matches {
		switch m.Rule.Category {
		case patterns.CategoryUPIID:
			out.UPIIDs.Add(m.Value)
		case patterns.CategoryBankAccount:
			if _, isPhone := phoneDigits[m.Value]; !isPhone {
				out.BankAccounts.Add(m.Value)
			}
		case patterns.CategoryPhishingLink:
			out.PhishingLinks.Add(m.Value)
		case patterns.CategorySuspiciousKeyword:
			out.SuspiciousKeywords.Add(m.Value)
		case patterns.CategoryTacticPattern:
			out.TacticPatterns.Add(m.Value)
		case patterns.CategoryImpersonationClaim:
			out.ImpersonationClaims.Add(m.Value)
		case patterns.CategoryOrganizationalClue:
			out.OrganizationalClues.Add(m.Value)
		}
	}

	return &out
}
