package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/config"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/httputil"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/persona"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

// DefaultTemperature keeps replies varied enough to read human.
const DefaultTemperature = 0.8

const maxReplyTokens = 200

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client generates replies through an OpenAI-compatible chat endpoint.
type Client struct {
	client   *http.Client
	provider config.LLMProvider
	baseURL  string
	apiKey   string
	model    string
	log      zerolog.Logger
}

// NewClient builds a client from configuration. Returns an error when the
// provider needs an API key and none is set.
func NewClient(cfg *config.Config, log zerolog.Logger) (*Client, error) {
	baseURL := cfg.LLMBaseURL
	if baseURL == "" {
		switch cfg.LLMProvider {
		case config.ProviderOllama:
			baseURL = "http://localhost:11434/v1"
		case config.ProviderGroq:
			baseURL = "https://api.groq.com/openai/v1"
		case config.ProviderCustom:
			return nil, fmt.Errorf("custom provider requires HONEYPOT_LLM_BASE_URL")
		default:
			baseURL = "https://openrouter.ai/api/v1"
		}
	}

	if cfg.LLMProvider != config.ProviderOllama && cfg.LLMAPIKey == "" {
		return nil, fmt.Errorf("provider %s requires an API key", cfg.LLMProvider)
	}

	client := httputil.Client(httputil.TierModel)
	if cfg.LLMTimeout > 0 {
		client = httputil.ClientWithTimeout(cfg.LLMTimeout)
	}

	return &Client{
		client:   client,
		provider: cfg.LLMProvider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   cfg.LLMAPIKey,
		model:    cfg.LLMModel,
		log:      log.With().Str("component", "llm").Logger(),
	}, nil
}

// GenerateReply asks the model for the next victim reply. The ready signal
// stays heuristic rather than model-driven so terminal behavior is
// reproducible regardless of provider mood.
func (c *Client) GenerateReply(ctx context.Context, rc persona.ReplyContext, history []session.Message, latest string) (Reply, error) {
	if rc.Terminal {
		return Reply{Text: persona.ClosingReply}, nil
	}

	msgs := buildMessages(rc.Instructions(), history, latest)

	start := time.Now()
	text, err := c.complete(ctx, chatRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: DefaultTemperature,
		MaxTokens:   maxReplyTokens,
	})
	if err != nil {
		return Reply{}, err
	}

	text = strings.TrimSpace(text)
	if len(text) < 5 {
		return Reply{}, fmt.Errorf("model returned unusable reply (%d chars)", len(text))
	}

	c.log.Debug().
		Str("session_id", rc.SessionID).
		Int("turn", rc.TurnCount).
		Dur("latency", time.Since(start)).
		Msg("reply generated")

	return Reply{Text: text, SignalReady: readyToFinish(rc)}, nil
}

// buildMessages maps the transcript onto chat roles: scammer messages are
// the user turns, our own replies are assistant turns.
func buildMessages(system string, history []session.Message, latest string) []chatMessage {
	msgs := make([]chatMessage, 0, len(history)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: system})
	for _, m := range history {
		role := "assistant"
		if m.Sender == session.SenderScammer {
			role = "user"
		}
		msgs = append(msgs, chatMessage{Role: role, Content: m.Text})
	}
	if len(history) == 0 || history[len(history)-1].Text != latest || history[len(history)-1].Sender != session.SenderScammer {
		msgs = append(msgs, chatMessage{Role: "user", Content: latest})
	}
	return msgs
}

func (c *Client) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call provider: %w", err)
	}
	defer httputil.DrainAndClose(resp.Body)

	body, err := httputil.ReadResponseBody(resp.Body, 2*1024*1024)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("provider returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}
