package pipeline

import (
	"strings"
	"testing"
)

func TestChunkTextShortReturnsSingleChunk(t *testing.T) {
	chunks := ChunkText("one two three", 512, 64)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "one two three" {
		t.Fatalf("got %q", chunks[0])
	}
}

func TestChunkTextOverlap(t *testing.T) {
	words := make([]string, 20)
	for i := range words {
		words[i] = "w"
	}
	text := strings.Join(words, " ")
	chunks := ChunkText(text, 10, 5)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if len(strings.Fields(c)) > 10 {
			t.Fatalf("chunk exceeds chunkTokens: %q", c)
		}
	}
}

func TestChunkTextEmpty(t *testing.T) {
	if chunks := ChunkText("", 512, 64); chunks != nil {
		t.Fatalf("expected nil for empty text, got %v", chunks)
	}
}
