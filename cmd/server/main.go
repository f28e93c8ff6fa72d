package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/activity"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/catalog"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/config"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/eventbus"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/payload"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/server"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/service"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/session"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.Development() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := catalog.Default()
	if cfg.SchemaFile != "" {
		if reg, err = catalog.LoadCUEFile(cfg.SchemaFile); err != nil {
			log.Fatal().Err(err).Str("schema_file", cfg.SchemaFile).Msg("loading attribute schema")
		}
		log.Info().Str("schema_file", cfg.SchemaFile).Msg("attribute schema loaded")
	}

	st, err := store.OpenSQLite(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("running variant migration")
	}
	history := activity.NewSQLStore(st.Driver())
	if err := history.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("running activity migration")
	}
	log.Info().Msg("database migrated successfully")

	bus := eventbus.New(cfg.EventBuffer)
	bus.Subscribe("log", eventbus.NewLogConsumer(log.Logger))
	bus.Subscribe("drift", eventbus.NewDriftConsumer(reg, log.Logger))
	bus.Subscribe("activity", activity.NewIndexer(history, log.Logger))
	// The bus outlives the request context so queued events are still
	// written after shutdown begins.
	bus.Start(context.Background())
	defer bus.Stop()

	sessions := session.NewManager(cfg.SessionMaxAge, cfg.SessionIdleTimeout)
	go sessions.Run(ctx, cfg.SessionIdleTimeout/2)

	svc := service.New(st, bus)
	builder := payload.NewBuilder(reg, attributes.Normalizer{Casing: cfg.SpecKeyCasing})

	log.Info().
		Int("port", cfg.Port).
		Str("spec_key_casing", string(cfg.SpecKeyCasing)).
		Int("spec_fields", len(reg.SpecFields())).
		Msg("starting variant service")

	if err := server.Run(ctx, server.Config{
		Port:     cfg.Port,
		Service:  svc,
		Builder:  builder,
		Sessions: sessions,
		Activity: history,
	}); err != nil {
		log.Error().Err(err).Msg("server error")
	}
}
