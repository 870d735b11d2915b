package vectorstore

import (
	"context"
	"sort"
	"sync"

	"github.com/RAj5517/Clustro/internal/model"
)

// MemoryStore is the brute-force cosine-similarity fallback, grounded
// on kxddry's internal/vectorstore/memory.Storage, used when the
// Chroma store cannot be opened or VECTOR_STORE_BACKEND names neither
// "chroma" nor "postgres".
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]model.EmbeddingRecord
}

// NewMemoryStore builds an empty in-memory vector store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]model.EmbeddingRecord)}
}

func (s *MemoryStore) Available() bool { return true }

func (s *MemoryStore) Upsert(_ context.Context, fileID string, entries []model.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.rows {
		if rec.FileID == fileID {
			delete(s.rows, id)
		}
	}
	for _, e := range entries {
		s.rows[e.EmbID] = e
	}
	return nil
}

func (s *MemoryStore) Query(_ context.Context, vector []float32, topK int) ([]ScoredEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scored := make([]ScoredEmbedding, 0, len(s.rows))
	for _, rec := range s.rows {
		scored = append(scored, ScoredEmbedding{Record: rec, Similarity: dot(vector, rec.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Record.FileID < scored[j].Record.FileID
	})
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
