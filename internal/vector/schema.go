package vector

import (
	"context"

	"github.com/weaviate/weaviate/entities/models"
)

// ClassTranscriptChunk is the Weaviate class holding indexed transcript
// chunks. Vectors are supplied by the embedding pipeline, never by Weaviate.
const ClassTranscriptChunk = "TranscriptChunk"

// SchemaClient defines the interface for Weaviate schema operations
type SchemaClient interface {
	ClassExists(ctx context.Context, className string) (bool, error)
	CreateClass(ctx context.Context, class *models.Class) error
	GetClass(ctx context.Context, className string) (*models.Class, error)
	AddProperty(ctx context.Context, className string, property *models.Property) error
}

// EnsureSchema checks if the required class exists and creates it if not
func EnsureSchema(ctx context.Context, client SchemaClient) error {
	exists, err := client.ClassExists(ctx, ClassTranscriptChunk)
	if err != nil {
		return err
	}

	properties := []*models.Property{
		{
			Name:     "url",
			DataType: []string{"string"}, // URL as string (exact match)
		},
		{
			Name:     "chunk",
			DataType: []string{"text"},
		},
		{
			Name:     "chunkIndex",
			DataType: []string{"int"},
		},
	}

	if !exists {
		class := &models.Class{
			Class:       ClassTranscriptChunk,
			Description: "A chunk of a video transcript",
			Vectorizer:  "none",
			Properties:  properties,
		}
		return client.CreateClass(ctx, class)
	}

	// Class exists, check for missing properties
	class, err := client.GetClass(ctx, ClassTranscriptChunk)
	if err != nil {
		return err
	}

	existingProps := make(map[string]bool)
	for _, p := range class.Properties {
		existingProps[p.Name] = true
	}

	for _, p := range properties {
		if !existingProps[p.Name] {
			if err := client.AddProperty(ctx, ClassTranscriptChunk, p); err != nil {
				return err
			}
		}
	}

	return nil
}
