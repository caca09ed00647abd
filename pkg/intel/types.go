// Package intel implements the pure analysis stages of the engagement
// pipeline: identifier extraction, scam classification and confidence
// scoring. Everything in this package is a deterministic function of its
// inputs; replaying a transcript from empty state reproduces the same
// intelligence bit for bit.
package intel

// StringSet is a deduplicated, insertion-ordered collection of normalized
// strings. Insertion order is deterministic for a given transcript, which
// keeps persisted sessions and callback payloads reproducible. JSON-encodes
// as a plain array.
type StringSet []string

// Add appends v unless already present. Reports whether the set grew.
// Empty values are ignored.
func (s *StringSet) Add(v string) bool {
	if v == "" || s.Contains(v) {
		return false
	}
	*s = append(*s, v)
	return true
}

// Contains reports whether v is in the set.
func (s StringSet) Contains(v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}

// Clone returns an independent copy.
func (s StringSet) Clone() StringSet {
	if s == nil {
		return nil
	}
	out := make(StringSet, len(s))
	copy(out, s)
	return out
}

// Intelligence is the cumulative extraction record of one session. Sets only
// grow (monotone union); re-seeing an identifier is a no-op.
type Intelligence struct {
	BankAccounts        StringSet `json:"bankAccounts"`
	UPIIDs              StringSet `json:"upiIds"`
	PhishingLinks       StringSet `json:"phishingLinks"`
	PhoneNumbers        StringSet `json:"phoneNumbers"`
	SuspiciousKeywords  StringSet `json:"suspiciousKeywords"`
	TacticPatterns      StringSet `json:"tacticPatterns"`
	ImpersonationClaims StringSet `json:"impersonationClaims"`
	OrganizationalClues StringSet `json:"organizationalClues"`
}

// NewIntelligence returns an Intelligence with all sets initialized so the
// JSON encoding carries empty arrays rather than nulls.
func NewIntelligence() Intelligence {
	return Intelligence{
		BankAccounts:        StringSet{},
		UPIIDs:              StringSet{},
		PhishingLinks:       StringSet{},
		PhoneNumbers:        StringSet{},
		SuspiciousKeywords:  StringSet{},
		TacticPatterns:      StringSet{},
		ImpersonationClaims: StringSet{},
		OrganizationalClues: StringSet{},
	}
}

// Merge unions other into i. Sets never shrink.
func (i *Intelligence) Merge(other *Intelligence) {
	if other == nil {
		return
	}
	for _, v := range other.BankAccounts {
		i.BankAccounts.Add(v)
	}
	for _, v := range other.UPIIDs {
		i.UPIIDs.Add(v)
	}
	for _, v := range other.PhishingLinks {
		i.PhishingLinks.Add(v)
	}
	for _, v := range other.PhoneNumbers {
		i.PhoneNumbers.Add(v)
	}
	for _, v := range other.SuspiciousKeywords {
		i.SuspiciousKeywords.Add(v)
	}
	for _, v := range other.TacticPatterns {
		i.TacticPatterns.Add(v)
	}
	for _, v := range other.ImpersonationClaims {
		i.ImpersonationClaims.Add(v)
	}
	for _, v := range other.OrganizationalClues {
		i.OrganizationalClues.Add(v)
	}
}

// Clone returns a deep copy.
func (i *Intelligence) Clone() Intelligence {
	return Intelligence{
		BankAccounts:        i.BankAccounts.Clone(),
		UPIIDs:              i.UPIIDs.Clone(),
		PhishingLinks:       i.PhishingLinks.Clone(),
		PhoneNumbers:        i.PhoneNumbers.Clone(),
		SuspiciousKeywords:  i.SuspiciousKeywords.Clone(),
		TacticPatterns:      i.TacticPatterns.Clone(),
		ImpersonationClaims: i.ImpersonationClaims.Clone(),
		OrganizationalClues: i.OrganizationalClues.Clone(),
	}
}

// IdentifierClassCount returns how many of the five identifier classes
// (bank accounts, UPI ids, phishing links, phone numbers, keywords) have at
// least one entry. Used by the confidence scorer.
func (i *Intelligence) IdentifierClassCount() int {
	n := 0
	for _, set := range []StringSet{
		i.BankAccounts, i.UPIIDs, i.PhishingLinks, i.PhoneNumbers, i.SuspiciousKeywords,
	} {
		if len(set) > 0 {
			n++
		}
	}
	return n
}

// TotalIdentifiers counts extracted concrete identifiers (excluding keyword
// and tactic signals). Used for engagement heuristics and agent notes.
func (i *Intelligence) TotalIdentifiers() int {
	return len(i.BankAccounts) + len(i.UPIIDs) + len(i.PhishingLinks) + len(i.PhoneNumbers)
}

// Sophistication is the three-tier ordinal of scam technique complexity.
type Sophistication string

const (
	SophisticationLow    Sophistication = "low"
	SophisticationMedium Sophistication = "medium"
	SophisticationHigh   Sophistication = "high"
)

// Scam types in classifier priority order.
const (
	TypeUPIFraud     = "UPI_fraud"
	TypeBankingFraud = "banking_fraud"
	TypeLotteryScam  = "lottery_scam"
	TypeOTPFraud     = "OTP_fraud"
	TypePhishing     = "phishing"
	TypeUnclassified = "unclassified"
)

// Classification is the per-turn scam verdict. Recomputed every turn; the
// last value wins.
type Classification struct {
	Type           string         `json:"type"`
	Sophistication Sophistication `json:"sophistication"`
}
