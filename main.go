// Command lingua-bot is the main entrypoint for the chat translation bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects to Postgres, runs idempotent migrations and seeds defaults.
//   - Starts the Twitch chat surface and a quota-counter cleanup job.
//   - Exposes a minimal HTTP server with /healthz, /readyz, /status and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/onnwee/lingua-bot/chat"
	"github.com/onnwee/lingua-bot/config"
	"github.com/onnwee/lingua-bot/db"
	"github.com/onnwee/lingua-bot/detect"
	"github.com/onnwee/lingua-bot/llm"
	"github.com/onnwee/lingua-bot/quota"
	"github.com/onnwee/lingua-bot/server"
	"github.com/onnwee/lingua-bot/telemetry"
	"github.com/onnwee/lingua-bot/translate"
	"github.com/onnwee/lingua-bot/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("lingua-bot", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// DB
	database, err := db.Connect()
	if err != nil {
		slog.Error("failed to open db", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("failed to close database", slog.Any("err", err))
		}
	}()

	migrationCtx := context.Background()
	slog.Info("running database migrations", slog.String("component", "db_migrate"))
	if err := db.Migrate(migrationCtx, database); err != nil {
		slog.Error("failed to migrate db", slog.Any("err", err))
		os.Exit(1)
	}
	if err := db.EnsureSeeded(migrationCtx, database); err != nil {
		slog.Error("failed to seed defaults", slog.Any("err", err))
		os.Exit(1)
	}

	// Quota limits are read once at startup; changing them via botctl requires
	// a restart to take effect.
	botCfg, err := db.LoadBotConfig(migrationCtx, database)
	if err != nil {
		slog.Error("failed to load bot configuration", slog.Any("err", err))
		os.Exit(1)
	}
	tracker := quota.NewTracker(&db.QuotaStore{DB: database}, botCfg.Limits)

	client := llm.NewClient(cfg.LLMAPIKey)
	if cfg.LLMBaseURL != "" {
		client.BaseURL = cfg.LLMBaseURL
	}
	client.HTTPClient = &http.Client{Timeout: cfg.LLMTimeout}

	orch := &translate.Orchestrator{
		Completer: client,
		Detector:  detect.New(client, cfg.LLMModelCheap),
		Quota:     tracker,
		Models: map[string]string{
			translate.TierCheap:  cfg.LLMModelCheap,
			translate.TierStrong: cfg.LLMModelStrong,
		},
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var users chat.UserDirectory
	if cfg.TwitchClientID != "" && cfg.TwitchClientSecret != "" {
		users = twitchapi.NewHelixClient(ctx, cfg.TwitchClientID, cfg.TwitchClientSecret)
	} else {
		slog.Info("helix lookups disabled (missing client id/secret)")
	}

	bot := &chat.Bot{DB: database, Cfg: cfg, Orch: orch, Users: users}
	if err := cfg.ValidateChatReady(); err != nil {
		slog.Info("chat surface disabled", slog.Any("err", err))
	} else {
		go func() {
			if err := bot.Start(ctx); err != nil {
				slog.Error("chat surface exited with error", slog.Any("err", err))
			}
		}()
	}

	// Expired minute counters accumulate unless purged.
	go func() {
		store := &db.QuotaStore{DB: database}
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := store.PurgeExpired(ctx); err != nil {
					slog.Warn("quota purge failed", slog.Any("err", err))
				} else if n > 0 {
					slog.Debug("purged expired quota counters", slog.Int64("rows", n))
				}
			}
		}
	}()

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/status/metrics)
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	go func() {
		if err := server.Start(ctx, database, addr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
