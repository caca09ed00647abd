package patterns

import (
	"net/url"
	"strings"
)

// ============================================================================
// IDENTIFIER RULES
// ============================================================================
// Financial identifiers dropped by scammers mid-conversation: payment handles,
// account numbers, callback phone numbers and phishing URLs. Values are
// canonicalized so the same identifier seen across turns collapses to one
// set entry regardless of formatting.

// knownUPISuffixes are payment-handle providers that may legitimately carry a
// dot. A dotless suffix is always treated as a UPI provider, because real
// e-mail domains always contain a TLD dot.
var knownUPISuffixes = map[string]struct{}{
	"ybl":        {},
	"oksbi":      {},
	"okaxis":     {},
	"okicici":    {},
	"okhdfcbank": {},
	"paytm":      {},
	"apl":        {},
	"ibl":        {},
	"axl":        {},
	"upi":        {},
	"barodampay": {},
}

// allowedLinkDomains are domains never reported as phishing links.
var allowedLinkDomains = []string{
	"google.com",
	"gmail.com",
	"whatsapp.com",
	"rbi.org.in",
	"npci.org.in",
	"gov.in",
	"nic.in",
}

func (r *Registry) registerIdentifierRules() {
	r.register(Rule{
		Name:        "intl_phone",
		Category:    CategoryPhoneNumber,
		Severity:    10,
		Description: "International phone number with country prefix",
		Canon:       CanonPhone,
	}, `\+\d{1,3}[-.\s]?\d{9,10}\b`)

	r.register(Rule{
		Name:        "local_phone",
		Category:    CategoryPhoneNumber,
		Severity:    10,
		Description: "Bare 10-digit Indian mobile number",
		Canon:       CanonPhone,
	}, `\b[6-9]\d{9}\b`)

	r.register(Rule{
		Name:        "upi_handle",
		Category:    CategoryUPIID,
		Severity:    30,
		Description: "UPI virtual payment address (handle@provider)",
		Canon:       CanonUPI,
	}, `\b[a-zA-Z0-9][a-zA-Z0-9._-]{1,255}@[a-zA-Z][a-zA-Z0-9.]{1,63}\b`)

	r.register(Rule{
		Name:        "account_digits",
		Category:    CategoryBankAccount,
		Severity:    20,
		Description: "Bank-account-shaped digit run (9-18 digits)",
		Canon:       CanonAccount,
	}, `\b\d{9,18}\b`)

	r.register(Rule{
		Name:        "account_grouped",
		Category:    CategoryBankAccount,
		Severity:    20,
		Description: "16-digit account number grouped with dashes",
		Canon:       canonDigitsOnly,
	}, `\b\d{4}-\d{4}-\d{4}-\d{4}\b`)

	r.register(Rule{
		Name:        "http_url",
		Category:    CategoryPhishingLink,
		Severity:    30,
		Description: "URL whose domain is not on the allow-list",
		Canon:       CanonLink,
	}, `https?://[^\s<>"']+`)
}

// CanonPhone reduces a phone match to +<country><digits>. Bare 10-digit
// numbers are assumed Indian (the honeypot's locale) and gain a +91 prefix,
// which makes "+91-9876543210" and "9876543210" the same set entry.
func CanonPhone(raw string) string {
	digits := digitsOf(raw)
	switch {
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) >= 11 && len(digits) <= 13:
		return "+" + digits
	default:
		return ""
	}
}

// CanonUPI lower-cases a handle@provider token and rejects generic e-mail
// addresses: a provider suffix containing a dot is an e-mail domain unless it
// is a known payment suffix.
func CanonUPI(raw string) string {
	v := strings.ToLower(raw)
	at := strings.LastIndex(v, "@")
	if at <= 0 || at == len(v)-1 {
		return ""
	}
	suffix := strings.TrimRight(v[at+1:], ".")
	if strings.Contains(suffix, ".") {
		if _, ok := knownUPISuffixes[suffix]; !ok {
			return ""
		}
	}
	return v[:at+1] + suffix
}

// CanonAccount keeps a digit run unless it is phone-shaped (10 digits
// starting 6-9), which the phone rules already claim.
func CanonAccount(raw string) string {
	digits := digitsOf(raw)
	if len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9' {
		return ""
	}
	return digits
}

// CanonLink trims trailing punctuation, lower-cases the scheme and host and
// rejects allow-listed domains. Path and query keep their case: phishing
// paths are often case-significant and must be reported as sent.
func CanonLink(raw string) string {
	v := strings.TrimRight(raw, ".,;:!?)\"'")
	u, err := url.Parse(v)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range allowedLinkDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return ""
		}
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	return u.String()
}

func canonDigitsOnly(raw string) string { return digitsOf(raw) }

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ============================================================================
// KEYWORD RULES
// ============================================================================
// Fixed scam vocabulary. Severity mirrors how strongly a term correlates with
// fraud scripts (lottery/OTP terms rank above generic banking words).

type keywordRule struct {
	keyword  string
	pattern  string
	severity int
}

var keywordRules = []keywordRule{
	{"kyc", `(?i)\bkyc\b`, 40},
	{"lottery", `(?i)\blottery\b`, 50},
	{"urgent", `(?i)\burgent`, 30},
	{"block", `(?i)\bblock`, 30},
	{"win", `(?i)\b(win|won|winner)\b`, 40},
	{"otp", `(?i)\botp\b`, 50},
	{"verify", `(?i)\bverify`, 30},
	{"verify immediately", `(?i)\bverify\s+immediately\b`, 50},
	{"account", `(?i)\baccount\b`, 20},
	{"suspend", `(?i)\bsuspend`, 40},
	{"prize", `(?i)\bprize\b`, 50},
	{"congratulations", `(?i)\bcongratulation`, 40},
	{"tax", `(?i)\btax\b`, 30},
	{"refund", `(?i)\brefund\b`, 40},
	{"legal", `(?i)\blegal\b`, 30},
	{"court", `(?i)\bcourt\b`, 40},
}

func (r *Registry) registerKeywordRules() {
	for _, kw := range keywordRules {
		r.register(Rule{
			Name:        "kw_" + strings.ReplaceAll(kw.keyword, " ", "_"),
			Category:    CategorySuspiciousKeyword,
			Severity:    kw.severity,
			Description: "Scam vocabulary hit: " + kw.keyword,
			Output:      kw.keyword,
		}, kw.pattern)
	}
}

// ============================================================================
// TACTIC RULES
// ============================================================================
// Composite behavioral signals. Each rule emits a fixed tactic label; the
// classifier derives sophistication from how many distinct labels accumulate.

func (r *Registry) registerTacticRules() {
	r.register(Rule{
		Name:        "high_urgency",
		Category:    CategoryTacticPattern,
		Severity:    40,
		Description: "Time-pressure phrasing forcing an immediate decision",
		Output:      "high_urgency_tactics",
	}, `(?i)\b(urgent(ly)?|immediately|right\s+now|today\s+only|act\s+now|within\s+(the\s+next\s+)?\d+\s*(minutes?|seconds?|hours?)|within\s+24)\b`)

	r.register(Rule{
		Name:        "legal_threat",
		Category:    CategoryTacticPattern,
		Severity:    50,
		Description: "Legal intimidation (arrest, court, police)",
		Output:      "legal_threat_tactics",
	}, `(?i)\b(legal\s+action|arrest(ed)?|court|police|lawsuit|fir\s+(has\s+been\s+)?filed)\b`)

	r.register(Rule{
		Name:        "authority_impersonation",
		Category:    CategoryTacticPattern,
		Severity:    50,
		Description: "Claimed institutional identity or employee-ID-shaped token",
		Output:      "authority_impersonation",
	}, `(?i)(i\s+am\s+calling\s+from|calling\s+from\s+(the\s+)?[a-z]+\s+bank|reserve\s+bank|fraud\s+prevention|bank\s+official|(security|fraud|verification)\s+officer|official\s+(notice|representative|communication)|employee\s+(id|number)\s*[:#]?\s*\d+|government\s+department)`)

	r.register(Rule{
		Name:        "threat_based_coercion",
		Category:    CategoryTacticPattern,
		Severity:    40,
		Description: "Threats of account loss (blocked, suspended, frozen)",
		Output:      "threat_based_coercion",
	}, `(?i)\b(blocked|locked|suspended|frozen|freeze|deactivat\w*|terminated)\b`)

	r.register(Rule{
		Name:        "information_gathering",
		Category:    CategoryTacticPattern,
		Severity:    40,
		Description: "Direct solicitation of credentials or personal data",
		Output:      "information_gathering",
	}, `(?i)\b(share|send|forward|provide|confirm|enter)\b.{0,40}\b(otp|pin|cvv|password|account|aadhaar|pan|card|details)\b`)
}

// ============================================================================
// IMPERSONATION AND ORGANIZATIONAL RULES
// ============================================================================

func (r *Registry) registerImpersonationRules() {
	r.register(Rule{
		Name:        "bank_official",
		Category:    CategoryImpersonationClaim,
		Severity:    40,
		Description: "Claims to represent a bank",
		Output:      "bank_official",
	}, `(?i)\b(sbi|hdfc|icici|axis\s+bank|bank\s+of\s+[a-z]+|reserve\s+bank)\b`)

	r.register(Rule{
		Name:        "government_official",
		Category:    CategoryImpersonationClaim,
		Severity:    40,
		Description: "Claims to represent a government body",
		Output:      "government_official",
	}, `(?i)\b(income\s+tax|gst|government|ministry|customs|rbi)\b`)

	r.register(Rule{
		Name:        "lottery_organizer",
		Category:    CategoryImpersonationClaim,
		Severity:    40,
		Description: "Claims to run a lottery or prize draw",
		Output:      "lottery_organizer",
	}, `(?i)\b(lottery|lucky\s+draw|prize\s+(committee|department))\b`)
}

var organizationalKeywords = []string{
	"team", "senior", "manager", "department", "colleague", "supervisor", "head office",
}

func (r *Registry) registerOrganizationalRules() {
	for _, kw := range organizationalKeywords {
		label := "mentioned_" + strings.ReplaceAll(kw, " ", "_")
		r.register(Rule{
			Name:        "org_" + strings.ReplaceAll(kw, " ", "_"),
			Category:    CategoryOrganizationalClue,
			Severity:    10,
			Description: "Reference to scammer org structure: " + kw,
			Output:      label,
		}, `(?i)\b`+strings.ReplaceAll(kw, " ", `\s+`)+`\b`)
	}
}
