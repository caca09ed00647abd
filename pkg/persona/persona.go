// Package persona defines the believable-victim character the honeypot
// presents to a scammer: engagement stages, per-stage instructions for LLM
// reply generation, and a deterministic scripted reply used as fallback.
package persona

import (
	"strings"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
)

// Stage is how deep the engagement has progressed. It only depends on the
// turn count, so replays land in the same stage.
type Stage string

const (
	// StageEarly covers the first turns: curiosity and mild concern.
	StageEarly Stage = "early"
	// StageMiddle is active engagement, steering toward specifics.
	StageMiddle Stage = "middle"
	// StageLate is deep engagement, pressing for exact identifiers.
	StageLate Stage = "late"
)

// StageForTurn maps a turn count onto an engagement stage.
func StageForTurn(turn int) Stage {
	switch {
	case turn <= 3:
		return StageEarly
	case turn <= 7:
		return StageMiddle
	default:
		return StageLate
	}
}

// ReplyContext is everything a reply generator needs about the session,
// without giving it the session itself.
type ReplyContext struct {
	SessionID  string
	Stage      Stage
	TurnCount  int
	ScamType   string
	Confidence float64
	Terminal   bool

	// IdentifierCount is the number of concrete identifiers extracted so
	// far (accounts, UPI ids, links, phones).
	IdentifierCount int

	// Missing identifier classes the reply should try to elicit.
	WantUPI   bool
	WantBank  bool
	WantLink  bool
	WantPhone bool
}

// Character profiles, picked by scam type so the victim stays consistent
// within a conversation once the classification settles.
var characters = map[string]string{
	intel.TypeBankingFraud: "Priya Sharma, a 34-year-old working professional, busy but concerned about financial matters",
	intel.TypeUPIFraud:     "Priya Sharma, a 34-year-old working professional, busy but concerned about financial matters",
	intel.TypeLotteryScam:  "Amit Patel, a 45-year-old small business owner, limited tech knowledge but eager to protect assets",
	intel.TypeOTPFraud:     "Rajesh Kumar, a 62-year-old retired government employee, not very tech-savvy but careful with money",
	intel.TypePhishing:     "Rohit Singh, a 22-year-old college student, somewhat tech-aware but inexperienced with scams",
}

const defaultCharacter = "Rajesh Kumar, a 62-year-old retired government employee, not very tech-savvy but careful with money"

// Character returns the victim profile for a scam type.
func Character(scamType string) string {
	if c, ok := characters[scamType]; ok {
		return c
	}
	return defaultCharacter
}

var stageInstructions = map[Stage]string{
	StageEarly: `You just received a suspicious message. You're a bit worried but also curious.
- Ask clarifying questions naturally
- Show concern about your account or money
- Don't immediately dismiss the message
- Keep responses SHORT (1-2 sentences max)`,
	StageMiddle: `You're now engaged in the conversation and want to understand more.
- Ask specific questions to learn more details
- Gradually ask for specifics (account numbers, links, phone numbers)
- Seem like you might comply, but need more information first
- Keep responses SHORT (1-2 sentences max)`,
	StageLate: `You're deeply engaged now and seriously considering their request.
- Ask very specific questions about process, accounts, payment methods
- Request exact details (UPI IDs, bank accounts, verification links)
- Show you're almost ready to comply but need final clarification
- Keep responses SHORT (1-2 sentences max)`,
}

// Instructions renders the system prompt for LLM reply generation from the
// context. Deterministic; the only variation comes from the context fields.
func (rc ReplyContext) Instructions() string {
	var hints []string
	if rc.WantUPI {
		hints = append(hints, "- Try to get them to mention UPI IDs or payment addresses")
	}
	if rc.WantBank {
		hints = append(hints, "- Ask about bank account numbers if relevant")
	}
	if rc.WantLink {
		hints = append(hints, "- Request verification links or websites")
	}
	if rc.WantPhone {
		hints = append(hints, "- Ask for phone numbers for verification")
	}

	var b strings.Builder
	b.WriteString("You are ")
	b.WriteString(Character(rc.ScamType))
	b.WriteString(".\n\nYOUR GOAL:\nStay in the conversation as long as possible. Be a believable victim.\n")
	b.WriteString(stageInstructions[rc.Stage])
	if len(hints) > 0 {
		b.WriteString("\n\nGently ask about these if they aren't provided:\n")
		b.WriteString(strings.Join(hints, "\n"))
	}
	b.WriteString(`

RULES:
- NEVER use asterisks or describe your emotions.
- STICK TO 1-2 SHORT SENTENCES (max 25 words).
- Be slightly confused or tech-illiterate; use natural informal language.
- If they ask for an OTP, ask where to find it rather than refusing.
- NEVER mention being an AI, bot, or honeypot.`)
	return b.String()
}

// Scripted fallback replies cycled by turn when no keyword matches.
var fallbackReplies = []string{
	"Are you still there? I'm trying to follow but I'm a bit slow with this.",
	"Can you explain that again? I want to make sure I don't do anything wrong.",
	"Should I tell my brother about this? He handles my finances usually.",
	"I'm really worried about my account. Please tell me what to do next.",
}

// ScriptedReply produces a deterministic human-like reply from the turn
// count and the latest scammer message. Used when no LLM provider is
// configured and as the fallback when one fails.
func ScriptedReply(turn int, latest string) string {
	if turn <= 1 {
		return "Hi, who's this? I'm in the middle of a lighting setup for a show."
	}

	lower := strings.ToLower(latest)
	switch {
	case strings.Contains(lower, "kyc") || strings.Contains(lower, "bank"):
		return "Wait, my bank account is at risk? I don't really understand these technical things. Can you help me step by step?"
	case strings.Contains(lower, "money") || strings.Contains(lower, "win") || strings.Contains(lower, "prize"):
		return "Did I really win? That would be amazing! How do I claim it?"
	case strings.Contains(lower, "@") || strings.Contains(lower, "upi"):
		return "I tried the ID you sent but it didn't work. Is there a specific app I should use?"
	}

	return fallbackReplies[turn%len(fallbackReplies)]
}

// ClosingReply is returned once a session has gone terminal.
const ClosingReply = "I need to step out for a bit, my nephew is calling me. Can we talk later?"
