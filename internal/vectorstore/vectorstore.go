// Package vectorstore implements the embedding writer against a
// generic "collection -> {id, embedding, text, metadata}" contract.
// Every backend follows the same Available()-guarded degradation
// shape: a writer that cannot reach its backing store never aborts
// ingestion, it just reports unavailable.
package vectorstore

import (
	"context"
	"strconv"

	"github.com/RAj5517/Clustro/internal/model"
)

// Store is the vector-store contract.
type Store interface {
	Available() bool
	// Upsert deletes every existing row for fileID, then inserts
	// entries, guaranteeing chunk-set atomicity
	Upsert(ctx context.Context, fileID string, entries []model.EmbeddingRecord) error
	// Query runs an approximate-nearest-neighbor search and returns
	// the topK closest rows by cosine similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]ScoredEmbedding, error)
}

// ScoredEmbedding pairs an embedding row with its similarity to the
// query vector.
type ScoredEmbedding struct {
	Record     model.EmbeddingRecord
	Similarity float64
}

// EmbID computes the vector-store row id for a canonical or chunk
// entry,
func EmbID(fileID string, chunkIndex *int) string {
	if chunkIndex == nil {
		return fileID
	}
	return fileID + ":c" + strconv.Itoa(*chunkIndex)
}

func dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
