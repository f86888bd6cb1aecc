package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/cliparse"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/db"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/event"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/middleware"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/router"
	"github.com/gdg-busan/2026-Build-with-AI-Hackaton-in-Busan-sub000/seed"
)

const programName = "hackvote"

func newLogger(cfg cliparse.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: cfg.Debug,
		Level:     level,
	}))
	slog.SetDefault(logger)
	return logger
}

// openStore connects and creates the schema
func openStore(ctx context.Context, cfg cliparse.Config, logger *slog.Logger) (*db.Store, error) {
	store, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := store.CreateSchema(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("schema creation failed: %w", err)
	}
	logger.Info("Database schema ready", "dialect", store.Dialect())
	return store, nil
}

// applySeed loads the roster file and prints the login codes it assigned
func applySeed(ctx context.Context, path string, store *db.Store, events *event.Service, logger *slog.Logger) error {
	roster, err := seed.LoadFile(path)
	if err != nil {
		return err
	}
	users, err := seed.Apply(ctx, store, events, roster, logger)
	if err != nil {
		return err
	}
	for _, u := range users {
		fmt.Printf("%-10s %-12s %s\n", u.ID, u.Role, u.Name)
	}
	return nil
}

func serveRun(cfg cliparse.Config) error {
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := router.NewServices(store, logger, reg)

	if cfg.SeedFile != "" {
		if err := applySeed(ctx, cfg.SeedFile, store, svc.Events, logger); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
	}

	if cfg.AutoAdvanceInterval > 0 {
		go svc.Events.Run(ctx, cfg.AutoAdvanceInterval)
	}

	mux := router.NewRouter(store, cfg, svc, reg)
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("Server closed")
	return nil
}

func seedRun(cfg cliparse.Config) error {
	if cfg.SeedFile == "" {
		return errors.New("roster file required (use --seed or SEED_FILE env)")
	}
	logger := newLogger(cfg)
	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	events := event.NewService(event.Config{Store: store, Logger: logger})
	return applySeed(ctx, cfg.SeedFile, store, events, logger)
}

// withConfig hands the raw arguments to cliparse so flags, environment and
// .env resolve the same way for every subcommand
func withConfig(run func(cliparse.Config) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := cliparse.ParseFlags(args)
		if err != nil {
			return err
		}
		return run(cfg)
	}
}

// newRootCmd builds the command tree. The root command serves, so flags
// may come without a subcommand in any order.
func newRootCmd(serve, seed func(cliparse.Config) error) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:                programName,
		Short:              "Hackathon voting and scoring server",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		RunE:               withConfig(serve),
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:                "serve",
			Short:              "Run the HTTP API (default)",
			DisableFlagParsing: true,
			SilenceUsage:       true,
			RunE:               withConfig(serve),
		},
		&cobra.Command{
			Use:                "seed",
			Short:              "Load a YAML roster and print login codes",
			DisableFlagParsing: true,
			SilenceUsage:       true,
			RunE:               withConfig(seed),
		},
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(serveRun, seedRun).Execute(); err != nil {
		slog.Error("Exiting", "error", err)
		os.Exit(1)
	}
}
