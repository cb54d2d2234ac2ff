package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// KnowledgeService stores interview prep material (past questions, topic
// notes) in a qdrant collection and retrieves the most relevant chunks for a
// resume so the question generator can ground its output.
type KnowledgeService interface {
	InitCollection() error
	UpsertChunk(ctx context.Context, docID string, topic string, text string, embedding []float32) error
	SearchSimilar(ctx context.Context, queryEmbedding []float32, topic string, limit int) ([]SearchResult, error)
	RetrieveContext(ctx context.Context, queryText string, limit int) (string, error)
}

type SearchResult struct {
	ID    string
	Score float32
	Text  string
	Topic string
}

type knowledgeService struct {
	client         *qdrant.Client
	gemini         GeminiService
	collectionName string
	vectorSize     uint64
}

func NewKnowledgeService(urlStr, apiKey, collectionName string, gemini GeminiService) (KnowledgeService, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// For gRPC client, use port 6334 by default (gRPC port)
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &knowledgeService{
		client:         client,
		gemini:         gemini,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 size
	}, nil
}

// InitCollection implements KnowledgeService.
func (k *knowledgeService) InitCollection() error {
	ctx := context.Background()

	exists, err := k.client.CollectionExists(ctx, k.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		return nil
	}

	err = k.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: k.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     k.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", k.collectionName)
	return nil
}

// UpsertChunk implements KnowledgeService.
func (k *knowledgeService) UpsertChunk(ctx context.Context, docID string, topic string, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"doc_id": docID,
			"topic":  topic,
			"text":   text,
		}),
	}

	_, err := k.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: k.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// SearchSimilar implements KnowledgeService.
func (k *knowledgeService) SearchSimilar(ctx context.Context, queryEmbedding []float32, topic string, limit int) ([]SearchResult, error) {
	var filter *qdrant.Filter
	if topic != "" {
		filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("topic", topic),
			},
		}
	}

	searchResult, err := k.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: k.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var results []SearchResult
	for _, point := range searchResult {
		payload := point.Payload

		result := SearchResult{
			Score: point.Score,
		}

		if docID, ok := payload["doc_id"]; ok {
			if val, ok := docID.GetKind().(*qdrant.Value_StringValue); ok {
				result.ID = val.StringValue
			}
		}

		if text, ok := payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				result.Text = val.StringValue
			}
		}

		if topic, ok := payload["topic"]; ok {
			if val, ok := topic.GetKind().(*qdrant.Value_StringValue); ok {
				result.Topic = val.StringValue
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// RetrieveContext embeds the query text and returns formatted context from
// the closest knowledge chunks. Retrieval failures degrade to empty context
// rather than failing question generation.
func (k *knowledgeService) RetrieveContext(ctx context.Context, queryText string, limit int) (string, error) {
	embedding, err := k.gemini.GenerateEmbedding(ctx, queryText)
	if err != nil {
		return "", fmt.Errorf("failed to generate query embedding: %w", err)
	}

	results, err := k.SearchSimilar(ctx, embedding, "", limit)
	if err != nil {
		return "", fmt.Errorf("failed to search knowledge base: %w", err)
	}

	return FormatKnowledgeContext(results), nil
}
