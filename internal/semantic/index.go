package semantic

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"github.com/adilevin/donna/internal/temporal"
)

// pointNamespace makes event point ids deterministic so re-indexing an event
// overwrites its previous point instead of duplicating it.
var pointNamespace = uuid.MustParse("a2fb7f9e-5b88-4c2e-9f43-30f1f7f2a9d1")

// Match is one nearest-neighbor hit from the index.
type Match struct {
	EventID int64
	Title   string
	Score   float32
}

// IndexedEvent is the slice of an event the index stores.
type IndexedEvent struct {
	ID        int64
	UserID    int64
	Title     string
	StartUnix int64
}

// Index is the time-bounded, user-scoped nearest-neighbor store for events.
type Index interface {
	Search(ctx context.Context, userID int64, vector []float32, boundary temporal.Boundary, limit int) ([]Match, error)
	Upsert(ctx context.Context, event IndexedEvent, vector []float32) error
	Delete(ctx context.Context, eventID int64) error
}

// QdrantIndex stores event vectors in a Qdrant collection.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	logger     zerolog.Logger
}

// NewQdrantIndex connects to Qdrant and ensures the events collection exists.
func NewQdrantIndex(ctx context.Context, host string, port int, collection string, logger zerolog.Logger) (*QdrantIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	exists, err := client.CollectionExists(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to check qdrant collection: %w", err)
	}

	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     EmbeddingDim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create qdrant collection: %w", err)
		}
		logger.Info().Str("collection", collection).Msg("created qdrant collection")
	}

	return &QdrantIndex{client: client, collection: collection, logger: logger}, nil
}

func eventPointID(eventID int64) *qdrant.PointId {
	id := uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("event-%d", eventID)))
	return qdrant.NewIDUUID(id.String())
}

// Search returns up to limit events nearest to vector, restricted to one
// user and to start times inside the boundary, in the store's ranking order.
func (q *QdrantIndex) Search(ctx context.Context, userID int64, vector []float32, boundary temporal.Boundary, limit int) ([]Match, error) {
	gte := float64(boundary.Start.Unix())
	lte := float64(boundary.End.Unix())

	filter := &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key: "user_id",
						Match: &qdrant.Match{
							MatchValue: &qdrant.Match_Integer{Integer: userID},
						},
					},
				},
			},
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   "start_time",
						Range: &qdrant.Range{Gte: &gte, Lte: &lte},
					},
				},
			},
		},
	}

	lim := uint64(limit)
	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          &lim,
		Filter:         filter,
		WithPayload:    qdrant.NewWithPayloadInclude("event_id", "title"),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	var matches []Match
	for _, point := range points {
		m := Match{Score: point.Score}
		if payload := point.Payload; payload != nil {
			if v, ok := payload["event_id"]; ok {
				m.EventID = v.GetIntegerValue()
			}
			if v, ok := payload["title"]; ok {
				m.Title = v.GetStringValue()
			}
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Upsert writes one event's vector and payload.
func (q *QdrantIndex) Upsert(ctx context.Context, event IndexedEvent, vector []float32) error {
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      eventPointID(event.ID),
				Vectors: qdrant.NewVectorsDense(vector),
				Payload: map[string]*qdrant.Value{
					"event_id":   {Kind: &qdrant.Value_IntegerValue{IntegerValue: event.ID}},
					"user_id":    {Kind: &qdrant.Value_IntegerValue{IntegerValue: event.UserID}},
					"title":      {Kind: &qdrant.Value_StringValue{StringValue: event.Title}},
					"start_time": {Kind: &qdrant.Value_IntegerValue{IntegerValue: event.StartUnix}},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// Delete removes one event's point.
func (q *QdrantIndex) Delete(ctx context.Context, eventID int64) error {
	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.collection,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{eventPointID(eventID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}
