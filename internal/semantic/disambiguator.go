package semantic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/temporal"
)

// ErrEventNotFound marks a disambiguation that produced no candidate. It is
// an expected outcome, not a failure: the controller turns it into an
// event_not_found reply and nothing is retried.
var ErrEventNotFound = errors.New("no matching event found")

// Disambiguator maps a fuzzy text reference ("the budget meeting") to at
// most one stored event id, scoped to one user and one search boundary.
type Disambiguator struct {
	embedder Embedder
	index    Index
	logger   zerolog.Logger
}

// NewDisambiguator wires an embedder and an index together.
func NewDisambiguator(embedder Embedder, index Index, logger zerolog.Logger) *Disambiguator {
	return &Disambiguator{embedder: embedder, index: index, logger: logger}
}

// ResolveEvent returns the single nearest event id for the title fragment.
//
// An empty fragment short-circuits to ErrEventNotFound without touching the
// store: an unscoped search is never issued. Ranking is exactly the store's
// nearest-neighbor order; there is no secondary re-ranking, and only the
// single nearest candidate is considered.
func (d *Disambiguator) ResolveEvent(ctx context.Context, userID int64, titleFragment string, boundary temporal.Boundary) (int64, error) {
	titleFragment = strings.TrimSpace(titleFragment)
	if titleFragment == "" {
		return 0, ErrEventNotFound
	}

	vector, err := d.embedder.Embed(ctx, titleFragment)
	if err != nil {
		return 0, fmt.Errorf("failed to embed event reference: %w", err)
	}

	matches, err := d.index.Search(ctx, userID, vector, boundary, 1)
	if err != nil {
		return 0, fmt.Errorf("event search failed: %w", err)
	}
	if len(matches) == 0 {
		return 0, ErrEventNotFound
	}

	best := matches[0]
	d.logger.Debug().
		Int64("event_id", best.EventID).
		Str("title", best.Title).
		Float32("score", best.Score).
		Msg("event disambiguated")

	return best.EventID, nil
}
