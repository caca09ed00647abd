// Package session owns per-conversation state: the Session record itself,
// the Store abstraction over in-memory/Redis/Postgres backends, and the
// per-key locking that serializes all mutations of a single session while
// letting unrelated sessions proceed concurrently.
package session

import (
	"time"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
)

// Sender labels for conversation history entries.
const (
	SenderScammer = "scammer"
	SenderUser    = "user"
)

// Message is one entry of a conversation transcript. Timestamp is epoch
// milliseconds, matching the inbound wire contract.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// Flags carries externally raised signals the engine must respect.
type Flags struct {
	// ReadyForCallback is set true at most once, by an external signal
	// (the reply generator deciding enough intelligence was gathered).
	// Never reset.
	ReadyForCallback bool `json:"readyForCallback"`
}

// Session is the complete state of one scam-engagement conversation, keyed
// by an opaque identifier. Created lazily on first sight of a sessionId and
// mutated once per accepted message, always under the per-key lock.
type Session struct {
	SessionID           string                `json:"sessionId"`
	TurnCount           int                   `json:"turnCount"`
	ConversationHistory []Message             `json:"conversationHistory"`
	ExtractedIntel      intel.Intelligence    `json:"extractedIntelligence"`
	ScamClassification  *intel.Classification `json:"scamClassification,omitempty"`
	Confidence          float64               `json:"confidence"`
	Flags               Flags                 `json:"flags"`

	// Terminal latches true when an exit rule fires; a terminal session
	// accepts no further state-mutating extraction.
	Terminal   bool   `json:"terminal"`
	ExitReason string `json:"exitReason,omitempty"`

	// CallbackDispatched guards the at-most-once dispatch. Distinct from
	// Flags.ReadyForCallback so idempotent exit re-evaluation cannot
	// re-trigger the callback.
	CallbackDispatched bool `json:"callbackDispatched"`

	CreatedAt  time.Time `json:"createdAt"`
	LastTurnAt time.Time `json:"lastTurnAt"`
}

// New returns a zeroed session for the given id with initialized sets.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		SessionID:           id,
		ConversationHistory: []Message{},
		ExtractedIntel:      intel.NewIntelligence(),
		CreatedAt:           now,
		LastTurnAt:          now,
	}
}

// Append adds a message to the transcript (append-only, any sender).
func (s *Session) Append(m Message) {
	s.ConversationHistory = append(s.ConversationHistory, m)
	s.LastTurnAt = time.Now().UTC()
}

// Clone returns a deep copy safe to hand to goroutines outside the per-key
// lock (snapshot for callback dispatch, outcome for the transport layer).
func (s *Session) Clone() *Session {
	out := *s
	out.ConversationHistory = make([]Message, len(s.ConversationHistory))
	copy(out.ConversationHistory, s.ConversationHistory)
	out.ExtractedIntel = s.ExtractedIntel.Clone()
	if s.ScamClassification != nil {
		cls := *s.ScamClassification
		out.ScamClassification = &cls
	}
	return &out
}
