package ingest

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/RAj5517/Clustro/internal/docstore"
	"github.com/RAj5517/Clustro/internal/encode"
	"github.com/RAj5517/Clustro/internal/pipeline"
	"github.com/RAj5517/Clustro/internal/storage"
	"github.com/RAj5517/Clustro/internal/vectorstore"
)

func newTestCoordinator(t *testing.T) (*Coordinator, *docstore.MemoryStore, *vectorstore.MemoryStore) {
	t.Helper()
	st, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	docs := docstore.NewMemoryStore()
	vecs := vectorstore.NewMemoryStore()
	pl := pipeline.New(encode.NewLocalEncoder(true))
	return New(pl, st, docs, vecs, nil), docs, vecs
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestProcessBatchTextFile(t *testing.T) {
	c, docs, vecs := newTestCoordinator(t)
	ctx := context.Background()

	report := c.ProcessBatch(ctx, []InputFile{
		{Name: "notes.txt", Data: []byte("hello world, this is a plain text note about coffee brewing.")},
	})

	if report.TotalFiles != 1 || report.TextCount != 1 {
		t.Fatalf("unexpected counts: %+v", report)
	}
	res := report.Results[0]
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.EmbeddingCount == 0 {
		t.Fatalf("expected at least one embedding row")
	}

	rec, ok, err := docs.FindByFileID(ctx, res.FileID)
	if err != nil || !ok {
		t.Fatalf("expected metadata record, ok=%v err=%v", ok, err)
	}
	if rec.OriginalName != "notes.txt" {
		t.Fatalf("unexpected original name %q", rec.OriginalName)
	}

	results, err := vecs.Query(ctx, nil, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one embedding row for the text file")
	}
}

func TestProcessBatchImageFile(t *testing.T) {
	c, docs, vecs := newTestCoordinator(t)
	ctx := context.Background()

	report := c.ProcessBatch(ctx, []InputFile{
		{Name: "cat.jpg", Data: jpegBytes(t)},
	})

	res := report.Results[0]
	if res.Modality != "image" {
		t.Fatalf("expected image modality, got %s", res.Modality)
	}
	if res.Collection != "media_assets" {
		t.Fatalf("expected media_assets collection, got %s", res.Collection)
	}
	if res.StorageURI == "" {
		t.Fatalf("expected a storage uri")
	}

	rec, ok, err := docs.FindByFileID(ctx, res.FileID)
	if err != nil || !ok {
		t.Fatalf("expected metadata record, ok=%v err=%v", ok, err)
	}
	if clip, _ := rec.Extra["clip_generated"].(bool); !clip {
		t.Fatalf("expected clip_generated=true in extra")
	}

	results, err := vecs.Query(ctx, nil, 10)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected an embedding row for the image")
	}
}

func TestProcessBatchIdempotentReingest(t *testing.T) {
	c, docs, _ := newTestCoordinator(t)
	ctx := context.Background()

	file := InputFile{Name: "notes.txt", Data: []byte("a short repeatable note about tea.")}

	first := c.ProcessBatch(ctx, []InputFile{file})
	second := c.ProcessBatch(ctx, []InputFile{file})

	if first.Results[0].FileID != second.Results[0].FileID {
		t.Fatalf("expected stable file_id across re-ingest")
	}

	all, err := docs.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one metadata record after re-ingest, got %d", len(all))
	}
}
