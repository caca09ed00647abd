package intel

import "strings"

// Keyword triggers for type classification when no hard identifier decides.
// Checked against the latest message in priority order.
var (
	upiWords     = []string{"upi", "vpa", "paytm", "phonepe", "gpay", "google pay"}
	bankingWords = []string{"kyc", "account", "bank", "net banking", "debit card", "credit card"}
	lotteryWords = []string{"lottery", "prize", "won", "winner", "lucky draw", "congratulations"}
	otpWords     = []string{"otp", "verification code", "one time password", "one-time password"}
)

// Classify derives the scam type and sophistication tier from the session's
// cumulative intelligence plus the latest message text. Type is chosen by
// priority over signal presence; ambiguity resolves toward the earlier
// (stronger) type, never toward an error.
func Classify(cum *Intelligence, latest string) Classification {
	return Classification{
		Type:           classifyType(cum, strings.ToLower(NormalizeText(latest))),
		Sophistication: classifySophistication(cum),
	}
}

func classifyType(cum *Intelligence, lower string) string {
	switch {
	case len(cum.UPIIDs) > 0 || containsAny(lower, upiWords):
		return TypeUPIFraud
	case len(cum.BankAccounts) > 0 || containsAny(lower, bankingWords):
		return TypeBankingFraud
	case containsAny(lower, lotteryWords):
		return TypeLotteryScam
	case containsAny(lower, otpWords):
		return TypeOTPFraud
	case len(cum.PhishingLinks) > 0:
		return TypePhishing
	default:
		return TypeUnclassified
	}
}

// classifySophistication maps tactic diversity onto the three tiers:
// 0-1 distinct tactics -> low, 2 -> medium, >=3 -> high. The explicit
// authority-impersonation + urgency combination is treated as high even at
// two tactics; ties break toward the higher tier since the consumer uses
// this for evaluation, not blocking.
func classifySophistication(cum *Intelligence) Sophistication {
	tactics := cum.TacticPatterns
	combined := tactics.Contains("authority_impersonation") && tactics.Contains("high_urgency_tactics")

	switch {
	case len(tactics) >= 3 || combined:
		return SophisticationHigh
	case len(tactics) == 2:
		return SophisticationMedium
	default:
		return SophisticationLow
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
