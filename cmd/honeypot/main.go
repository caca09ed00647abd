package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/callback"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/config"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/engine"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/intel"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/llm"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/persona"
	"github.com/Vigneshwar-bala/guvi-honeypot-2.0/pkg/session"
)

const Version = "2.0.0"

// messageRequest is the inbound wire format for scammer messages.
type messageRequest struct {
	SessionID           string            `json:"sessionId"`
	Message             session.Message   `json:"message"`
	ConversationHistory []session.Message `json:"conversationHistory"`
	Metadata            map[string]string `json:"metadata"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := "8080"
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runServer(port)
	case "analyze":
		if len(os.Args) < 3 {
			fmt.Println("Usage: honeypot analyze <text>")
			os.Exit(1)
		}
		runAnalyze(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("GUVI Honeypot v%s\n", Version)
		fmt.Println("Agentic scam engagement engine")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("GUVI Honeypot v%s - Agentic scam engagement engine\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  honeypot serve [port]     Start HTTP server (default: 8080)")
	fmt.Println("  honeypot analyze <text>   Run extraction and classification on text")
	fmt.Println("  honeypot version          Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  HONEYPOT_API_KEY          Inbound API key (X-API-Key header)")
	fmt.Println("  HONEYPOT_STORE            Session store: memory, redis, postgres")
	fmt.Println("  HONEYPOT_CALLBACK_URL     Final report endpoint")
	fmt.Println("  HONEYPOT_LLM_PROVIDER     Reply generation: none, openrouter, ollama, groq, custom")
	fmt.Println("  HONEYPOT_CONFIG_FILE      Optional YAML config overlay")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func loadConfig(log zerolog.Logger) *config.Config {
	cfg := config.NewDefaultConfig()
	if path := os.Getenv("HONEYPOT_CONFIG_FILE"); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("load config file")
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	return cfg
}

func newStore(cfg *config.Config, log zerolog.Logger) session.Store {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("using redis session store")
		return session.NewRedisStore(client, cfg.SessionTTL)
	case config.StorePostgres:
		pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres pool")
		}
		store := session.NewPostgresStore(pool)
		if err := store.Init(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("postgres schema")
		}
		log.Info().Msg("using postgres session store")
		return store
	default:
		log.Info().Dur("ttl", cfg.SessionTTL).Msg("using in-memory session store")
		return session.NewMemoryStore(session.WithMaxAge(cfg.SessionTTL))
	}
}

func newResponder(cfg *config.Config, log zerolog.Logger) llm.Responder {
	if cfg.LLMProvider == config.ProviderNone {
		log.Info().Msg("reply generation: scripted persona")
		return llm.Scripted{}
	}
	client, err := llm.NewClient(cfg, log)
	if err != nil {
		log.Warn().Err(err).Msg("LLM reply generation unavailable, falling back to scripted persona")
		return llm.Scripted{}
	}
	log.Info().Str("provider", string(cfg.LLMProvider)).Str("model", cfg.LLMModel).Msg("reply generation: LLM")
	return client
}

func runServer(port string) {
	log := newLogger(config.GetEnv("HONEYPOT_LOG_LEVEL", "info"))
	cfg := loadConfig(log)

	store := newStore(cfg, log)
	defer store.Close()

	dispatcher := callback.NewDispatcher(cfg.CallbackURL, cfg.CallbackTimeout, log)
	eng := engine.New(store, dispatcher, engine.ExitRules{
		ConfidenceCeiling: cfg.ConfidenceCeiling,
		TurnCeiling:       cfg.TurnCeiling,
	}, log)
	defer eng.Close()

	responder := newResponder(cfg, log)
	scripted := llm.Scripted{}

	app := fiber.New(fiber.Config{
		AppName: "GUVI Honeypot",
	})

	app.Get("/", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "honeypot",
			"version": Version,
		})
	})

	app.Get("/stats", func(c fiber.Ctx) error {
		lister, ok := store.(session.Lister)
		if !ok {
			return c.JSON(fiber.Map{"sessionStats": "unavailable for this store backend"})
		}
		sessions, err := lister.All(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": "stats unavailable"})
		}

		active, terminal, turns, identifiers := 0, 0, 0, 0
		for _, s := range sessions {
			if s.Terminal {
				terminal++
			} else {
				active++
			}
			turns += s.TurnCount
			identifiers += s.ExtractedIntel.TotalIdentifiers()
		}
		return c.JSON(fiber.Map{
			"activeSessions":       active,
			"terminalSessions":     terminal,
			"totalTurns":           turns,
			"extractedIdentifiers": identifiers,
		})
	})

	app.Post("/honeypot/message", func(c fiber.Ctx) error {
		if c.Get("X-API-Key") != cfg.APIKey {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "error": "invalid API key"})
		}

		var req messageRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": "invalid request body"})
		}
		if req.SessionID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "error": "sessionId is required"})
		}
		if req.Message.Sender == "" {
			req.Message.Sender = session.SenderScammer
		}

		out, err := eng.ProcessMessage(c.Context(), engine.Inbound{
			SessionID: req.SessionID,
			Message:   req.Message,
			History:   req.ConversationHistory,
		})
		if err != nil {
			log.Error().Err(err).Str("session_id", req.SessionID).Msg("process message")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "error": "processing failed"})
		}

		reply, rerr := responder.GenerateReply(c.Context(), out.ReplyCtx, out.Session.ConversationHistory, req.Message.Text)
		if rerr != nil {
			log.Warn().Err(rerr).Str("session_id", req.SessionID).Msg("LLM reply failed, using scripted fallback")
			reply, _ = scripted.GenerateReply(c.Context(), out.ReplyCtx, nil, req.Message.Text)
		}

		if err := eng.RecordReply(c.Context(), req.SessionID, reply.Text); err != nil {
			log.Warn().Err(err).Str("session_id", req.SessionID).Msg("record reply")
		}
		if reply.SignalReady && !out.Terminal {
			if err := eng.SignalReady(c.Context(), req.SessionID); err != nil {
				log.Warn().Err(err).Str("session_id", req.SessionID).Msg("signal ready")
			}
		}

		return c.JSON(fiber.Map{
			"status": "success",
			"reply":  reply.Text,
		})
	})

	log.Info().Str("port", port).Msg("honeypot server starting")
	if err := app.Listen(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// runAnalyze prints the extraction pipeline result for a single message,
// useful for tuning patterns against captured scam texts.
func runAnalyze(text string) {
	ext := intel.Extract(text)
	cls := intel.Classify(ext, text)
	result := struct {
		Intelligence   *intel.Intelligence  `json:"extractedIntelligence"`
		Classification intel.Classification `json:"classification"`
		Confidence     float64              `json:"confidence"`
		ScriptedReply  string               `json:"scriptedReply"`
	}{
		Intelligence:   ext,
		Classification: cls,
		Confidence:     intel.Score(1, ext, cls),
		ScriptedReply:  persona.ScriptedReply(1, text),
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
}
