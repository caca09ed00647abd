// Package callback delivers the final intelligence report for a terminal
// session to the configured collection endpoint. Delivery is at most once
// per session and failures are logged, never propagated back into the
// engagement pipeline.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/httputil"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

// Payload is the final report wire format.
type Payload struct {
	ReportID               string                `json:"reportId"`
	SessionID              string                `json:"sessionId"`
	ScamDetected           bool                  `json:"scamDetected"`
	TotalMessagesExchanged int                   `json:"totalMessagesExchanged"`
	ExtractedIntelligence  intel.Intelligence    `json:"extractedIntelligence"`
	ScamClassification     *intel.Classification `json:"scamClassification,omitempty"`
	Confidence             float64               `json:"confidence"`
	ConversationHistory    []session.Message     `json:"conversationHistory"`
	AgentNotes             string                `json:"agentNotes"`
	ExitReason             string                `json:"exitReason,omitempty"`
}

// Dispatcher posts final reports. One retry on any failure, then give up.
type Dispatcher struct {
	url    string
	client *http.Client
	log    zerolog.Logger
}

// NewDispatcher builds a dispatcher for the given endpoint. A zero timeout
// falls back to the report tier default.
func NewDispatcher(url string, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	client := httputil.Client(httputil.TierReport)
	if timeout > 0 {
		client = httputil.ClientWithTimeout(timeout)
	}
	return &Dispatcher{
		url:    url,
		client: client,
		log:    log.With().Str("component", "callback").Logger(),
	}
}

// BuildPayload assembles the report for a session snapshot.
func BuildPayload(snap *session.Session) Payload {
	return Payload{
		ReportID:               uuid.NewString(),
		SessionID:              snap.SessionID,
		ScamDetected:           true,
		TotalMessagesExchanged: snap.TurnCount,
		ExtractedIntelligence:  snap.ExtractedIntel,
		ScamClassification:     snap.ScamClassification,
		Confidence:             snap.Confidence,
		ConversationHistory:    snap.ConversationHistory,
		AgentNotes:             BuildAgentNotes(snap),
		ExitReason:             snap.ExitReason,
	}
}

// Dispatch sends the final report for snap. The snapshot must be a deep copy
// taken under the session lock; Dispatch itself runs outside any lock.
// Returns the delivery error after the retry budget is spent, for tests and
// logging only. Callers never fail the session over it.
func (d *Dispatcher) Dispatch(ctx context.Context, snap *session.Session) error {
	payload := BuildPayload(snap)
	body, err := json.Marshal(payload)
	if err != nil {
		d.log.Error().Err(err).Str("session_id", snap.SessionID).Msg("encode final report")
		return fmt.Errorf("encode final report: %w", err)
	}

	const attempts = 2
	for attempt := 1; attempt <= attempts; attempt++ {
		err = d.post(ctx, body)
		if err == nil {
			d.log.Info().
				Str("session_id", snap.SessionID).
				Str("report_id", payload.ReportID).
				Int("turns", snap.TurnCount).
				Int("attempt", attempt).
				Msg("final report delivered")
			return nil
		}
		d.log.Warn().Err(err).
			Str("session_id", snap.SessionID).
			Int("attempt", attempt).
			Msg("final report delivery failed")
	}
	return fmt.Errorf("deliver final report: %w", err)
}

func (d *Dispatcher) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post report: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := httputil.ReadErrorBody(resp.Body)
		return fmt.Errorf("report endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
