package vectorstore

import (
	"context"
	"testing"

	"github.com/RAj5517/Clustro/internal/model"
)

func TestMemoryStoreUpsertReplacesChunkSet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	idx0, idx1 := 0, 1
	first := []model.EmbeddingRecord{
		{EmbID: "f:c0", FileID: "f", ChunkIndex: &idx0, Embedding: []float32{1, 0}},
		{EmbID: "f:c1", FileID: "f", ChunkIndex: &idx1, Embedding: []float32{0, 1}},
	}
	if err := s.Upsert(ctx, "f", first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second := []model.EmbeddingRecord{
		{EmbID: "f", FileID: "f", Embedding: []float32{1, 1}},
	}
	if err := s.Upsert(ctx, "f", second); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if len(s.rows) != 1 {
		t.Fatalf("expected stale chunk rows removed, got %d rows", len(s.rows))
	}
}

func TestMemoryStoreQueryRanksBySimilarity(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_ = s.Upsert(ctx, "a", []model.EmbeddingRecord{{EmbID: "a", FileID: "a", Embedding: []float32{1, 0}}})
	_ = s.Upsert(ctx, "b", []model.EmbeddingRecord{{EmbID: "b", FileID: "b", Embedding: []float32{0, 1}}})

	results, err := s.Query(ctx, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Record.FileID != "a" {
		t.Fatalf("expected a to rank first, got %s", results[0].Record.FileID)
	}
}
