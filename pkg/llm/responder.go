// Package llm generates the honeypot's conversational replies. The Client
// speaks the OpenAI chat-completions wire format against OpenRouter, Groq,
// Ollama or any compatible endpoint; Scripted is the deterministic fallback
// used when no provider is configured or a provider call fails.
package llm

import (
	"context"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/persona"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

// Reply is a generated response plus the generator's signal that enough
// intelligence has been gathered to finish the engagement.
type Reply struct {
	Text        string
	SignalReady bool
}

// Responder produces the honeypot's reply to the latest scammer message.
type Responder interface {
	GenerateReply(ctx context.Context, rc persona.ReplyContext, history []session.Message, latest string) (Reply, error)
}

// readyToFinish is the shared heuristic for raising the callback signal:
// either enough concrete identifiers are in hand or the conversation has
// run long enough to be worth reporting.
func readyToFinish(rc persona.ReplyContext) bool {
	return rc.IdentifierCount >= 3 || rc.TurnCount >= 5
}

// Scripted replies from the persona script without any external calls.
type Scripted struct{}

// GenerateReply never fails; it exists to satisfy Responder.
func (Scripted) GenerateReply(_ context.Context, rc persona.ReplyContext, _ []session.Message, latest string) (Reply, error) {
	if rc.Terminal {
		return Reply{Text: persona.ClosingReply}, nil
	}
	return Reply{
		Text:        persona.ScriptedReply(rc.TurnCount, latest),
		SignalReady: readyToFinish(rc),
	}, nil
}
