package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/config"
	"github.com/adilevin/donna/internal/dialogue"
	"github.com/adilevin/donna/internal/extract"
	"github.com/adilevin/donna/internal/gcal"
	"github.com/adilevin/donna/internal/semantic"
	"github.com/adilevin/donna/internal/server"
	"github.com/adilevin/donna/internal/skill"
	"github.com/adilevin/donna/internal/store"
)

func main() {
	cfg := config.LoadFromEnv()
	logger := initLogger(cfg)

	db, err := store.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	ctx := context.Background()

	extractor := initExtractor(cfg, logger)
	resolver, index, indexer := initSemantic(ctx, cfg, logger)
	gcalClient := initGCal(cfg, logger)

	go rebuildIndex(ctx, db, indexer, logger)

	registry := registerSkills(skill.Deps{
		Store:    db,
		Index:    index,
		Calendar: gcalClient,
		Logger:   logger,
	})

	controller := dialogue.NewController(extractor, resolver, registry, db, logger)

	srv := server.New(server.ServerConfig{
		DB:         db,
		Controller: controller,
		GCalClient: gcalClient,
		Logger:     logger,
		Port:       cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	waitForShutdown(srv, logger)
}

func initLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if cfg.DevMode {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}

func initExtractor(cfg *config.Config, logger zerolog.Logger) *extract.Extractor {
	if cfg.AnthropicAPIKey == "" {
		logger.Warn().Msg("ANTHROPIC_API_KEY not set, intent extraction disabled")
	}
	return extract.New(extract.Config{
		APIKey:      cfg.AnthropicAPIKey,
		Model:       cfg.ClaudeModel,
		Temperature: cfg.ClaudeTemperature,
		Logger:      logger,
	})
}

func initSemantic(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*semantic.Disambiguator, semantic.Index, *semantic.Indexer) {
	if cfg.OpenAIAPIKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set, event search will fail until configured")
	}

	embedder := semantic.NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)

	index, err := semantic.NewQdrantIndex(ctx, cfg.QdrantHost, cfg.QdrantPort, cfg.QdrantCollection, logger)
	if err != nil {
		fatal("connecting to qdrant", err)
	}

	return semantic.NewDisambiguator(embedder, index, logger), index, semantic.NewIndexer(embedder, index, logger)
}

// rebuildIndex re-embeds every user's events from the past and coming year
// so the vector index survives a wiped or fresh Qdrant instance.
func rebuildIndex(ctx context.Context, db *store.DB, indexer *semantic.Indexer, logger zerolog.Logger) {
	users, err := db.ListUsers()
	if err != nil {
		logger.Error().Err(err).Msg("index rebuild: failed to list users")
		return
	}

	now := time.Now()
	for _, user := range users {
		events, err := db.EventsInRange(user.ID, now.AddDate(-1, 0, 0), now.AddDate(1, 0, 0))
		if err != nil {
			logger.Error().Err(err).Int64("user_id", user.ID).Msg("index rebuild: failed to list events")
			continue
		}

		indexed := make([]semantic.IndexedEvent, 0, len(events))
		for _, event := range events {
			indexed = append(indexed, semantic.IndexedEvent{
				ID:        event.ID,
				UserID:    event.UserID,
				Title:     event.Title,
				StartUnix: event.StartTime.Unix(),
			})
		}
		if err := indexer.Reindex(ctx, indexed); err != nil {
			logger.Warn().Err(err).Int64("user_id", user.ID).Msg("index rebuild incomplete")
		}
	}
}

func initGCal(cfg *config.Config, logger zerolog.Logger) *gcal.Client {
	client, err := gcal.NewClient(cfg.GoogleCredentialsFile, cfg.GoogleTokenFile)
	if err != nil {
		logger.Warn().Err(err).Msg("Google Calendar not configured, remote sync disabled")
		return nil
	}
	return client
}

func registerSkills(deps skill.Deps) *skill.Registry {
	registry := skill.NewRegistry()
	registry.MustRegister(skill.NewDeleteEvent(deps))
	registry.MustRegister(skill.NewDeleteTask(deps))
	registry.MustRegister(skill.NewUpdatePriority(deps))
	registry.MustRegister(skill.NewDeletePriority(deps))
	registry.MustRegister(skill.NewAddPreferredTime(deps))
	registry.MustRegister(skill.NewRemovePreferredTime(deps))
	registry.MustRegister(skill.NewQueryNextEvent(deps))
	return registry
}

func fatal(context string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", context, err)
	os.Exit(1)
}

func waitForShutdown(srv *server.Server, logger zerolog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
}
