package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/config"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/persona"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		LLMProvider: config.ProviderCustom,
		LLMAPIKey:   "test-key",
		LLMModel:    "test-model",
		LLMBaseURL:  baseURL,
		LLMTimeout:  2 * time.Second,
	}
}

func TestClientGenerateReply(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "Wait, which bank is this about?"}},
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(testConfig(srv.URL), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	rc := persona.ReplyContext{
		SessionID: "llm-1",
		Stage:     persona.StageEarly,
		TurnCount: 1,
		WantBank:  true,
	}
	history := []session.Message{
		{Sender: session.SenderScammer, Text: "your account is blocked"},
	}

	reply, err := client.GenerateReply(context.Background(), rc, history, "your account is blocked")
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	if reply.Text != "Wait, which bank is this about?" {
		t.Errorf("reply = %q", reply.Text)
	}

	if gotReq.Model != "test-model" {
		t.Errorf("model = %s", gotReq.Model)
	}
	if len(gotReq.Messages) == 0 || gotReq.Messages[0].Role != "system" {
		t.Fatal("system prompt missing")
	}
	if !strings.Contains(gotReq.Messages[0].Content, "bank account numbers") {
		t.Error("extraction hint missing from system prompt")
	}
}

func TestClientMapsHistoryRoles(t *testing.T) {
	history := []session.Message{
		{Sender: session.SenderScammer, Text: "pay now"},
		{Sender: session.SenderUser, Text: "how do I pay?"},
		{Sender: session.SenderScammer, Text: "use this UPI"},
	}

	msgs := buildMessages("SYSTEM", history, "use this UPI")

	want := []struct{ role, content string }{
		{"system", "SYSTEM"},
		{"user", "pay now"},
		{"assistant", "how do I pay?"},
		{"user", "use this UPI"},
	}
	if len(msgs) != len(want) {
		t.Fatalf("message count = %d, want %d (%+v)", len(msgs), len(want), msgs)
	}
	for i, w := range want {
		if msgs[i].Role != w.role || msgs[i].Content != w.content {
			t.Errorf("msgs[%d] = %s/%q, want %s/%q", i, msgs[i].Role, msgs[i].Content, w.role, w.content)
		}
	}
}

func TestClientAppendsLatestWhenAbsent(t *testing.T) {
	msgs := buildMessages("SYSTEM", nil, "first contact")
	if len(msgs) != 2 || msgs[1].Role != "user" || msgs[1].Content != "first contact" {
		t.Errorf("msgs = %+v", msgs)
	}
}

func TestClientErrorPaths(t *testing.T) {
	t.Run("provider error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client, err := NewClient(testConfig(srv.URL), zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := client.GenerateReply(context.Background(), persona.ReplyContext{TurnCount: 1}, nil, "hi"); err == nil {
			t.Error("429 response did not error")
		}
	})

	t.Run("empty completion", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(chatResponse{})
		}))
		defer srv.Close()

		client, err := NewClient(testConfig(srv.URL), zerolog.Nop())
		if err != nil {
			t.Fatal(err)
		}
		if _, err := client.GenerateReply(context.Background(), persona.ReplyContext{TurnCount: 1}, nil, "hi"); err == nil {
			t.Error("empty choices did not error")
		}
	})
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(&config.Config{LLMProvider: config.ProviderCustom}, zerolog.Nop()); err == nil {
		t.Error("custom provider without base URL accepted")
	}
	if _, err := NewClient(&config.Config{LLMProvider: config.ProviderOpenRouter}, zerolog.Nop()); err == nil {
		t.Error("openrouter without API key accepted")
	}
}

func TestScriptedResponder(t *testing.T) {
	s := Scripted{}

	reply, err := s.GenerateReply(context.Background(), persona.ReplyContext{TurnCount: 1}, nil, "hello")
	if err != nil {
		t.Fatalf("GenerateReply: %v", err)
	}
	if reply.Text == "" {
		t.Error("empty scripted reply")
	}
	if reply.SignalReady {
		t.Error("fresh conversation signalled ready")
	}

	// Enough identifiers raises the finish signal.
	reply, _ = s.GenerateReply(context.Background(), persona.ReplyContext{TurnCount: 2, IdentifierCount: 3}, nil, "hello")
	if !reply.SignalReady {
		t.Error("3 identifiers did not signal ready")
	}

	// Long conversations raise it too.
	reply, _ = s.GenerateReply(context.Background(), persona.ReplyContext{TurnCount: 5}, nil, "hello")
	if !reply.SignalReady {
		t.Error("turn 5 did not signal ready")
	}

	// Terminal sessions get the closing line.
	reply, _ = s.GenerateReply(context.Background(), persona.ReplyContext{TurnCount: 13, Terminal: true}, nil, "hello")
	if reply.Text != persona.ClosingReply {
		t.Errorf("terminal reply = %q", reply.Text)
	}
}
