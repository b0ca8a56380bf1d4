package semantic

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingIndex struct {
	fakeIndex
	upserts []IndexedEvent
	deletes []int64
}

func (r *recordingIndex) Upsert(_ context.Context, event IndexedEvent, _ []float32) error {
	r.upserts = append(r.upserts, event)
	return nil
}

func (r *recordingIndex) Delete(_ context.Context, eventID int64) error {
	r.deletes = append(r.deletes, eventID)
	return nil
}

func TestIndexEvent(t *testing.T) {
	embedder := &fakeEmbedder{}
	index := &recordingIndex{}
	ix := NewIndexer(embedder, index, zerolog.Nop())

	err := ix.IndexEvent(context.Background(), IndexedEvent{ID: 1, UserID: 7, Title: "Budget sync", StartUnix: 1700000000})
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)
	require.Len(t, index.upserts, 1)
	assert.Equal(t, int64(1), index.upserts[0].ID)
}

func TestIndexEventRequiresTitle(t *testing.T) {
	embedder := &fakeEmbedder{}
	ix := NewIndexer(embedder, &recordingIndex{}, zerolog.Nop())

	err := ix.IndexEvent(context.Background(), IndexedEvent{ID: 1, UserID: 7})
	require.Error(t, err)
	assert.Zero(t, embedder.calls)
}

func TestRemoveEvent(t *testing.T) {
	index := &recordingIndex{}
	ix := NewIndexer(&fakeEmbedder{}, index, zerolog.Nop())

	require.NoError(t, ix.RemoveEvent(context.Background(), 42))
	assert.Equal(t, []int64{42}, index.deletes)
}

func TestReindexContinuesPastFailures(t *testing.T) {
	index := &recordingIndex{}
	ix := NewIndexer(&fakeEmbedder{}, index, zerolog.Nop())

	err := ix.Reindex(context.Background(), []IndexedEvent{
		{ID: 1, UserID: 7, Title: "Budget sync"},
		{ID: 2, UserID: 7}, // untitled, skipped
		{ID: 3, UserID: 7, Title: "Dentist"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")
	assert.Len(t, index.upserts, 2)
}
