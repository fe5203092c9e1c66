package weaviate

import (
	"context"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"ragtube/internal/ingest"
	"ragtube/internal/retrieval"
	"ragtube/internal/vector"
)

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

// Upsert writes a whole video's chunks in one batch call.
func (s *Store) Upsert(ctx context.Context, records []ingest.Record) error {
	batcher := s.client.Batch().ObjectsBatcher()
	for _, r := range records {
		batcher.WithObjects(&models.Object{
			Class: vector.ClassTranscriptChunk,
			ID:    strfmt.UUID(r.ID),
			Properties: map[string]interface{}{
				"url":        r.URL,
				"chunk":      r.Chunk,
				"chunkIndex": r.ChunkIndex,
			},
			Vector: models.C11yVector(r.Vector),
		})
	}

	resp, err := batcher.Do(ctx)
	if err != nil {
		return err
	}
	for _, obj := range resp {
		if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
			return fmt.Errorf("batch object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
		}
	}
	return nil
}

// Query returns the IDs and distances of the nearest chunks. Payloads are
// fetched separately via Fetch.
func (s *Store) Query(ctx context.Context, vec []float32, limit int) ([]retrieval.Match, error) {
	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vec)

	fields := []graphql.Field{
		{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
	}

	res, err := s.client.GraphQL().Get().
		WithClassName(vector.ClassTranscriptChunk).
		WithNearVector(nearVector).
		WithLimit(limit).
		WithFields(fields...).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %v", res.Errors)
	}

	var matches []retrieval.Match
	if data, ok := res.Data["Get"].(map[string]interface{}); ok {
		if chunks, ok := data[vector.ClassTranscriptChunk].([]interface{}); ok {
			for _, c := range chunks {
				props, ok := c.(map[string]interface{})
				if !ok {
					continue
				}
				additional, ok := props["_additional"].(map[string]interface{})
				if !ok {
					continue
				}
				match := retrieval.Match{}
				if id, ok := additional["id"].(string); ok {
					match.ID = id
				}
				if distance, ok := additional["distance"].(float64); ok {
					match.Distance = float32(distance)
				}
				matches = append(matches, match)
			}
		}
	}
	return matches, nil
}

// Fetch resolves chunk IDs to their stored payloads, one object read per ID.
func (s *Store) Fetch(ctx context.Context, ids []string) ([]retrieval.Record, error) {
	records := make([]retrieval.Record, 0, len(ids))
	for _, id := range ids {
		objects, err := s.client.Data().ObjectsGetter().
			WithClassName(vector.ClassTranscriptChunk).
			WithID(id).
			Do(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", id, err)
		}
		for _, obj := range objects {
			props, ok := obj.Properties.(map[string]interface{})
			if !ok {
				continue
			}
			rec := retrieval.Record{ID: id}
			if url, ok := props["url"].(string); ok {
				rec.URL = url
			}
			if chunk, ok := props["chunk"].(string); ok {
				rec.Chunk = chunk
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// CountByURL reports how many chunks are indexed for a video.
func (s *Store) CountByURL(ctx context.Context, url string) (int, error) {
	where := filters.Where().
		WithPath([]string{"url"}).
		WithOperator(filters.Equal).
		WithValueString(url)

	res, err := s.client.GraphQL().Aggregate().
		WithClassName(vector.ClassTranscriptChunk).
		WithWhere(where).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if groups, ok := data[vector.ClassTranscriptChunk].([]interface{}); ok && len(groups) > 0 {
			if group, ok := groups[0].(map[string]interface{}); ok {
				if meta, ok := group["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}

// DeleteByURL removes every chunk indexed for a video. Re-ingesting a URL
// mints fresh record IDs, so this is the only way to clear stale records.
func (s *Store) DeleteByURL(ctx context.Context, url string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(vector.ClassTranscriptChunk).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"url"}).
			WithOperator(filters.Equal).
			WithValueString(url)).
		Do(ctx)
	return err
}
