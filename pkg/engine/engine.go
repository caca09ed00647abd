// Package engine is the per-session engagement state machine. It serializes
// all mutations of a session behind a per-key lock, runs the extraction,
// classification and scoring pipeline on every accepted scammer message,
// applies the exit rules, and hands terminal sessions to the report
// dispatcher exactly once, outside the lock.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/httputil"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/persona"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

// ReportDispatcher delivers the final intelligence report for a terminal
// session snapshot. Implementations must tolerate concurrent calls for
// different sessions.
type ReportDispatcher interface {
	Dispatch(ctx context.Context, snap *session.Session) error
}

// Inbound is one scammer message plus optional context from the caller.
type Inbound struct {
	SessionID string
	Message   session.Message
	// History seeds a previously unseen session with an existing
	// transcript. Ignored once the session exists.
	History []session.Message
	// SignalReady raises the external finish signal alongside the message.
	SignalReady bool
}

// Outcome is what a caller needs to respond to the scammer: a snapshot of
// the session after processing and the context for reply generation.
type Outcome struct {
	Session  *session.Session
	ReplyCtx persona.ReplyContext

	Terminal   bool
	ExitReason string
	// ExitTriggered is true only on the call that transitioned the
	// session to terminal.
	ExitTriggered bool
}

const dispatchTimeout = 30 * time.Second

// Engine coordinates stores, locks, analysis and dispatch.
type Engine struct {
	store      session.Store
	locks      *session.KeyLock
	dispatcher ReportDispatcher
	rules      ExitRules
	sem        *httputil.Semaphore
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// New builds an engine. dispatcher may be nil, in which case terminal
// sessions are latched but no report leaves the process.
func New(store session.Store, dispatcher ReportDispatcher, rules ExitRules, log zerolog.Logger) *Engine {
	return &Engine{
		store:      store,
		locks:      session.NewKeyLock(),
		dispatcher: dispatcher,
		rules:      rules,
		sem:        httputil.NewSemaphore(64),
		log:        log.With().Str("component", "engine").Logger(),
	}
}

// ProcessMessage runs one scammer message through the pipeline. Safe for
// concurrent use; messages for the same session are serialized, different
// sessions proceed in parallel.
func (e *Engine) ProcessMessage(ctx context.Context, in Inbound) (*Outcome, error) {
	if in.SessionID == "" {
		return nil, fmt.Errorf("sessionId is required")
	}

	unlock := e.locks.Lock(in.SessionID)

	sess, err := e.store.Get(ctx, in.SessionID)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("load session %s: %w", in.SessionID, err)
	}
	if sess == nil {
		sess = session.New(in.SessionID)
		e.seedHistory(sess, in.History, in.Message)
		e.log.Info().Str("session_id", in.SessionID).Msg("session created")
	}

	if sess.Terminal {
		// Terminal sessions keep a transcript for audit but run no
		// extraction and never re-dispatch.
		sess.Append(in.Message)
		if err := e.store.Save(ctx, sess); err != nil {
			unlock()
			return nil, fmt.Errorf("save session %s: %w", in.SessionID, err)
		}
		out := e.outcome(sess, false)
		unlock()
		return out, nil
	}

	sess.Append(in.Message)
	sess.TurnCount++
	e.analyze(sess, in.Message.Text)
	if in.SignalReady {
		sess.Flags.ReadyForCallback = true
	}

	dispatch := e.applyExitRules(sess)

	if err := e.store.Save(ctx, sess); err != nil {
		unlock()
		return nil, fmt.Errorf("save session %s: %w", in.SessionID, err)
	}

	out := e.outcome(sess, dispatch)
	unlock()

	if dispatch {
		e.dispatchAsync(out.Session.Clone())
	}
	return out, nil
}

// RecordReply appends the honeypot's own reply to the transcript. Replies
// never advance the turn count or feed extraction.
func (e *Engine) RecordReply(ctx context.Context, sessionID, text string) error {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess == nil {
		return fmt.Errorf("session %s not found", sessionID)
	}

	sess.Append(session.Message{
		Sender:    session.SenderUser,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	})
	if err := e.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}
	return nil
}

// SignalReady raises the external finish signal for a session and applies
// the exit rules immediately. A no-op on terminal or unknown sessions.
func (e *Engine) SignalReady(ctx context.Context, sessionID string) error {
	unlock := e.locks.Lock(sessionID)

	sess, err := e.store.Get(ctx, sessionID)
	if err != nil {
		unlock()
		return fmt.Errorf("load session %s: %w", sessionID, err)
	}
	if sess == nil || sess.Terminal {
		unlock()
		return nil
	}

	sess.Flags.ReadyForCallback = true
	dispatch := e.applyExitRules(sess)

	if err := e.store.Save(ctx, sess); err != nil {
		unlock()
		return fmt.Errorf("save session %s: %w", sessionID, err)
	}

	var snap *session.Session
	if dispatch {
		snap = sess.Clone()
	}
	unlock()

	if dispatch {
		e.dispatchAsync(snap)
	}
	return nil
}

// Close waits for in-flight report dispatches to finish.
func (e *Engine) Close() {
	e.wg.Wait()
}

// seedHistory replays a caller-provided transcript into a fresh session so
// redelivered conversations land in the same state they left. Some callers
// echo the message being delivered as the final transcript entry; that copy
// is dropped so the turn is not counted and extracted twice.
func (e *Engine) seedHistory(sess *session.Session, history []session.Message, current session.Message) {
	if n := len(history); n > 0 {
		last := history[n-1]
		if last.Sender == current.Sender && last.Text == current.Text {
			history = history[:n-1]
		}
	}
	for _, m := range history {
		sess.Append(m)
		if m.Sender == session.SenderScammer {
			sess.TurnCount++
			e.analyze(sess, m.Text)
		}
	}
}

// analyze runs extraction, classification and scoring for one message.
// Must hold the session lock.
func (e *Engine) analyze(sess *session.Session, text string) {
	ext := intel.Extract(text)
	sess.ExtractedIntel.Merge(ext)

	cls := intel.Classify(&sess.ExtractedIntel, text)
	sess.ScamClassification = &cls

	sess.Confidence = intel.Score(sess.TurnCount, &sess.ExtractedIntel, cls)
}

// applyExitRules evaluates the rules and latches the terminal and dispatch
// state. Returns whether this call won the right to dispatch the report.
// Must hold the session lock.
func (e *Engine) applyExitRules(sess *session.Session) bool {
	reason := e.rules.Evaluate(sess)
	if reason == "" {
		return false
	}

	sess.Terminal = true
	sess.ExitReason = reason

	if sess.CallbackDispatched {
		return false
	}
	sess.CallbackDispatched = true

	e.log.Info().
		Str("session_id", sess.SessionID).
		Str("exit_reason", reason).
		Int("turns", sess.TurnCount).
		Float64("confidence", sess.Confidence).
		Msg("session terminal")
	return e.dispatcher != nil
}

// dispatchAsync fires the final report outside any lock. snap must be a
// deep copy owned by the goroutine.
func (e *Engine) dispatchAsync(snap *session.Session) {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := e.sem.Acquire(ctx); err != nil {
			e.log.Error().Err(err).Str("session_id", snap.SessionID).Msg("dispatch slot unavailable")
			return
		}
		defer e.sem.Release()

		if err := e.dispatcher.Dispatch(ctx, snap); err != nil {
			e.log.Error().Err(err).Str("session_id", snap.SessionID).Msg("final report lost")
		}
	}()
}

// outcome builds the caller-facing snapshot and reply context.
func (e *Engine) outcome(sess *session.Session, exitTriggered bool) *Outcome {
	snap := sess.Clone()
	rc := persona.ReplyContext{
		SessionID:       snap.SessionID,
		Stage:           persona.StageForTurn(snap.TurnCount),
		TurnCount:       snap.TurnCount,
		Confidence:      snap.Confidence,
		Terminal:        snap.Terminal,
		IdentifierCount: snap.ExtractedIntel.TotalIdentifiers(),
		WantUPI:         len(snap.ExtractedIntel.UPIIDs) == 0,
		WantBank:        len(snap.ExtractedIntel.BankAccounts) == 0,
		WantLink:        len(snap.ExtractedIntel.PhishingLinks) == 0,
		WantPhone:       len(snap.ExtractedIntel.PhoneNumbers) == 0,
	}
	if snap.ScamClassification != nil {
		rc.ScamType = snap.ScamClassification.Type
	}
	return &Outcome{
		Session:       snap,
		ReplyCtx:      rc,
		Terminal:      snap.Terminal,
		ExitReason:    snap.ExitReason,
		ExitTriggered: exitTriggered,
	}
}
