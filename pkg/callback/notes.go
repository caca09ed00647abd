package callback

import (
	"fmt"
	"strings"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

// BuildAgentNotes renders a one-line analyst summary of the engagement for
// the final report. Deterministic for a given session state.
func BuildAgentNotes(s *session.Session) string {
	var parts []string

	tactics := s.ExtractedIntel.TacticPatterns
	if tactics.Contains("high_urgency_tactics") {
		parts = append(parts, "employed high-pressure urgency tactics")
	}
	if tactics.Contains("legal_threat_tactics") {
		parts = append(parts, "used legal intimidation")
	}
	if tactics.Contains("authority_impersonation") {
		parts = append(parts, "impersonated authority figure")
	}
	if tactics.Contains("threat_based_coercion") {
		parts = append(parts, "relied on threat-based coercion")
	}

	if claims := s.ExtractedIntel.ImpersonationClaims; len(claims) > 0 {
		parts = append(parts, "claimed to be: "+strings.Join(claims, ", "))
	}

	if cls := s.ScamClassification; cls != nil && cls.Type != intel.TypeUnclassified {
		parts = append(parts, "classified as "+cls.Type)
	}

	infoCount := s.ExtractedIntel.TotalIdentifiers() + len(s.ExtractedIntel.SuspiciousKeywords)
	parts = append(parts, fmt.Sprintf("extracted %d intelligence pieces", infoCount))

	switch {
	case s.TurnCount >= 10:
		parts = append(parts, "sustained extended engagement")
	case s.TurnCount >= 6:
		parts = append(parts, "achieved moderate engagement depth")
	}

	if cls := s.ScamClassification; cls != nil && cls.Sophistication != "" {
		parts = append(parts, "scammer sophistication: "+string(cls.Sophistication))
	}

	if len(parts) == 0 {
		return "Automated agentic engagement completed"
	}

	note := strings.Join(parts, "; ")
	return strings.ToUpper(note[:1]) + note[1:] + "."
}
