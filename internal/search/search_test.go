package search

import (
	"context"
	"testing"
	"time"

	"github.com/RAj5517/Clustro/internal/docstore"
	"github.com/RAj5517/Clustro/internal/encode"
	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/vectorstore"
)

func seedDocs(t *testing.T, docs *docstore.MemoryStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Now()
	_ = docs.Upsert(ctx, model.FileRecord{
		FileID: "a", OriginalName: "coffee.txt", StorageURI: "text/documents/coffee.txt",
		Modality: model.ModalityText, DescriptiveText: "a short note about brewing coffee",
		CreatedAt: now, UpdatedAt: now,
	})
	_ = docs.Upsert(ctx, model.FileRecord{
		FileID: "b", OriginalName: "tea.txt", StorageURI: "text/documents/tea.txt",
		Modality: model.ModalityText, DescriptiveText: "a short note about brewing tea",
		CreatedAt: now, UpdatedAt: now,
	})
}

func TestSearchStaysSemanticWhenVectorStoreAvailable(t *testing.T) {
	docs := docstore.NewMemoryStore()
	seedDocs(t, docs)
	vecs := vectorstore.NewMemoryStore() // Available()==true but empty: the semantic path returns zero hits, and fallback runs only on failure

	e := New(encode.NewLocalEncoder(false), docs, vecs)
	resp, err := e.Search(context.Background(), "coffee", 5, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Source != "semantic" {
		t.Fatalf("expected semantic source since vector store reports available, got %s", resp.Source)
	}
}

func TestMetadataFallbackSearchNoVectorStore(t *testing.T) {
	docs := docstore.NewMemoryStore()
	seedDocs(t, docs)

	e := New(encode.NewLocalEncoder(false), docs, nil)
	resp, err := e.Search(context.Background(), "coffee brewing", 5, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if resp.Source != "metadata" {
		t.Fatalf("expected metadata source, got %s", resp.Source)
	}
	if len(resp.Results) == 0 || resp.Results[0].ID != "a" {
		t.Fatalf("expected coffee.txt to rank first, got %+v", resp.Results)
	}
}

func TestSearchStableTieBreakByFileID(t *testing.T) {
	hits := []model.SearchHit{
		{ID: "z", Similarity: 0.5},
		{ID: "a", Similarity: 0.5},
		{ID: "m", Similarity: 0.9},
	}
	sortHits(hits)
	if hits[0].ID != "m" || hits[1].ID != "a" || hits[2].ID != "z" {
		t.Fatalf("unexpected tie-break order: %+v", hits)
	}
}
