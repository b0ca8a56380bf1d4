package semantic

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Indexer keeps the vector index in sync with the event store: events are
// upserted when they appear and removed when they are deleted.
type Indexer struct {
	embedder Embedder
	index    Index
	logger   zerolog.Logger
}

func NewIndexer(embedder Embedder, index Index, logger zerolog.Logger) *Indexer {
	return &Indexer{embedder: embedder, index: index, logger: logger}
}

// IndexEvent embeds an event's title and upserts its point. Re-indexing the
// same event overwrites the previous point.
func (ix *Indexer) IndexEvent(ctx context.Context, event IndexedEvent) error {
	if event.Title == "" {
		return fmt.Errorf("event %d has no title to index", event.ID)
	}

	vector, err := ix.embedder.Embed(ctx, event.Title)
	if err != nil {
		return fmt.Errorf("failed to embed event %d: %w", event.ID, err)
	}
	if err := ix.index.Upsert(ctx, event, vector); err != nil {
		return fmt.Errorf("failed to index event %d: %w", event.ID, err)
	}
	return nil
}

// RemoveEvent drops an event's point from the index.
func (ix *Indexer) RemoveEvent(ctx context.Context, eventID int64) error {
	return ix.index.Delete(ctx, eventID)
}

// Reindex upserts a batch of events, continuing past individual failures.
// Used on startup to rebuild the index from the store.
func (ix *Indexer) Reindex(ctx context.Context, events []IndexedEvent) error {
	var failed int
	for _, event := range events {
		if err := ix.IndexEvent(ctx, event); err != nil {
			ix.logger.Warn().Err(err).Int64("event_id", event.ID).Msg("skipping event during reindex")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("reindex skipped %d of %d events", failed, len(events))
	}

	ix.logger.Info().Int("events", len(events)).Msg("index rebuilt")
	return nil
}
