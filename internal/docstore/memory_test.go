package docstore

import (
	"context"
	"testing"
	"time"

	"github.com/RAj5517/Clustro/internal/model"
)

func TestMemoryStoreUpsertIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := model.FileRecord{
		FileID:          "abc",
		OriginalName:    "paper.pdf",
		SizeBytes:       100,
		DescriptiveText: "first",
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	first, _, _ := store.FindByFileID(ctx, "abc")

	time.Sleep(time.Millisecond)
	rec.DescriptiveText = "second"
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, found, _ := store.FindByFileID(ctx, "abc")
	if !found {
		t.Fatal("expected record to exist")
	}
	if second.DescriptiveText != "second" {
		t.Fatalf("descriptive text not updated: %q", second.DescriptiveText)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatal("created_at must not change on upsert")
	}
	if second.SizeBytes != 100 {
		t.Fatal("size_bytes must not change on upsert")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) && !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatal("updated_at must not move backwards")
	}

	all, _ := store.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one record after re-ingest, got %d", len(all))
	}
}

func TestMemoryStoreFindBySubstring(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	_ = store.Upsert(ctx, model.FileRecord{FileID: "1", DescriptiveText: "We propose a new caching scheme."})
	_ = store.Upsert(ctx, model.FileRecord{FileID: "2", DescriptiveText: "Unrelated content about gardening."})

	results, err := store.FindBySubstring(ctx, []string{"caching"}, 10)
	if err != nil {
		t.Fatalf("FindBySubstring: %v", err)
	}
	if len(results) != 1 || results[0].FileID != "1" {
		t.Fatalf("got %+v", results)
	}
}
