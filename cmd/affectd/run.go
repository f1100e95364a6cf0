package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alex/affect/internal/affect"
	"github.com/alex/affect/internal/config"
	"github.com/alex/affect/internal/host"
	"github.com/alex/affect/internal/metrics"
	"github.com/alex/affect/internal/presenter"
	"github.com/alex/affect/internal/server"
	"github.com/alex/affect/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine with persistence and the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Component("main")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	engine, err := newEngine(ctx, cfg, st, logger.Component("engine"))
	if err != nil {
		return err
	}

	hub := presenter.NewHub(logger.Component("presenter"))
	defer hub.Close()
	collector := metrics.New()

	runner := host.New(engine, host.Config{
		TickInterval: cfg.Runtime.TickInterval,
		QueueSize:    cfg.Runtime.QueueSize,
		SubmitRate:   cfg.Runtime.SubmitRate,
		SubmitBurst:  cfg.Runtime.SubmitBurst,
	}, logger.Component("host"), st, hub, collector)

	err = config.Watch(ctx, path, logger.Component("config"), func(next *config.Config) {
		applyFlags(next)
		reload(ctx, runner, next, log)
	})
	if err != nil {
		log.Warn().Err(err).Msg("config hot reload disabled")
	}

	if cfg.Server.Enabled {
		srv := server.NewServer(cfg.Server.Addr, runner, server.Options{
			Store:   st,
			Hub:     hub,
			Metrics: collector,
			Log:     logger.Component("server"),
		})
		go func() {
			if err := srv.Start(ctx); err != nil {
				log.Error().Err(err).Msg("http server failed")
				stop()
			}
		}()
	}

	log.Info().
		Str("mood", string(engine.Mood().Category)).
		Float64("time_scale", cfg.TimeScale()).
		Msg("affectd started")

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("runner stopped")
	}

	// The runner has exited, so the engine is ours again.
	t := engine.ExportTemperament()
	if err := st.SaveTemperament(context.Background(), t); err != nil {
		log.Error().Err(err).Msg("failed to save temperament")
	} else {
		log.Info().Float64("valence", t.Valence).Float64("arousal", t.Arousal).Msg("temperament saved")
	}
	return nil
}

// newEngine builds the engine from config, then restores the persisted
// temperament and user events. Stored events win over configured ones.
func newEngine(ctx context.Context, cfg *config.Config, st store.Store, log zerolog.Logger) (*affect.Engine, error) {
	engine, err := affect.New(cfg.EngineConfig(), affect.WithLogger(log))
	if err != nil {
		return nil, err
	}

	t, ok, err := st.LoadTemperament(ctx)
	if err != nil {
		return nil, fmt.Errorf("load temperament: %w", err)
	}
	if ok {
		engine.ImportTemperament(t)
	}

	stored, err := st.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	for _, p := range append(cfg.EventProfiles(), stored...) {
		if _, err := engine.RegisterEvent(p); err != nil {
			log.Warn().Err(err).Str("keyword", p.Keyword).Msg("skipping event")
		}
	}
	return engine, nil
}

// reload applies an edited config file. Temperament is left alone.
func reload(ctx context.Context, runner *host.Runner, cfg *config.Config, log zerolog.Logger) {
	if _, err := runner.Query(ctx, host.ApplyConfig(cfg.EngineConfig())); err != nil {
		log.Warn().Err(err).Msg("config reload rejected")
		return
	}
	for _, p := range cfg.EventProfiles() {
		if _, err := runner.Query(ctx, host.Register(p)); err != nil {
			log.Warn().Err(err).Str("keyword", p.Keyword).Msg("skipping event")
		}
	}
	log.Info().Int("events", len(cfg.Events)).Msg("config applied")
}
