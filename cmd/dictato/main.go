// Command dictato is the dictation dictionary server. It rewrites
// speech-to-text output using a user-maintained rule dictionary and exposes
// the engine over an HTTP API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/mkarren/dictato/internal/config"
	"github.com/mkarren/dictato/internal/dictionary"
	"github.com/mkarren/dictato/internal/observe"
	"github.com/mkarren/dictato/internal/rulestore"
	"github.com/mkarren/dictato/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "dictato: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "dictato: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("dictato starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"store", cfg.Store.Kind,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownOTel, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "dictato",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Rule store ────────────────────────────────────────────────────────────
	store, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialise rule store", "err", err)
		return 1
	}
	defer closeStore()

	srv := server.New(store, metrics)

	// ── Initial rules ─────────────────────────────────────────────────────────
	// Invalid stored rules must not prevent startup: every problem is logged
	// and the server starts with an empty dictionary instead.
	text, err := store.Load(ctx)
	if err != nil {
		slog.Error("failed to load rules", "err", err)
		return 1
	}
	installRules(ctx, srv, metrics, text, "startup")

	// ── Rules file watcher ────────────────────────────────────────────────────
	if cfg.Store.Kind == config.StoreFile && cfg.Rules.WatchInterval.Std() > 0 {
		watcher, err := rulestore.NewWatcher(cfg.Store.Path,
			func(text string) { installRules(ctx, srv, metrics, text, "watcher") },
			rulestore.WithInterval(cfg.Rules.WatchInterval.Std()),
		)
		if err != nil {
			slog.Error("failed to start rules watcher", "err", err)
			return 1
		}
		defer watcher.Stop()
		slog.Info("watching rules file",
			"path", cfg.Store.Path,
			"interval", cfg.Rules.WatchInterval,
		)
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(gctx, cfg.Server.ListenAddr) })

	slog.Info("server ready — press Ctrl+C to shut down")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// buildStore creates the configured rule store. The returned close function
// releases backend resources and is safe to call exactly once.
func buildStore(ctx context.Context, cfg *config.Config) (rulestore.Store, func(), error) {
	switch cfg.Store.Kind {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		st := rulestore.NewPostgresStore(pool, rulestore.DefaultDictionary)
		if err := st.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate rules table: %w", err)
		}
		return st, pool.Close, nil
	default:
		return rulestore.NewFileStore(cfg.Store.Path), func() {}, nil
	}
}

// installRules parses and validates rule text and, when clean, swaps it in
// as the active set. On any problem the previous set stays active and every
// problem is logged individually so dictionary authors can fix them all in
// one pass.
func installRules(ctx context.Context, srv *server.Server, metrics *observe.Metrics, text, trigger string) {
	rules, parseErrs := dictionary.ParseRules(text)
	problems := append([]string(nil), parseErrs...)
	if err := dictionary.ValidateRules(rules); err != nil {
		problems = append(problems, strings.Split(err.Error(), "\n")...)
	}

	if len(problems) > 0 {
		for _, p := range problems {
			slog.Error("rule problem", "trigger", trigger, "problem", p)
		}
		metrics.RecordRuleError(ctx, trigger)
		slog.Warn("rule text rejected, keeping previous rule set",
			"trigger", trigger,
			"problems", len(problems),
		)
		return
	}

	srv.SetRules(ctx, rules, trigger)
	slog.Info("rules loaded", "trigger", trigger, "rules", len(srv.Rules()))
}

// newLogger builds the process-wide slog logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
