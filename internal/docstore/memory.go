package docstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RAj5517/Clustro/internal/model"
)

// MemoryStore is the mutex-guarded map fallback used when MONGO_URI
// is unset, grounded on the in-memory storage shape used across the
// pack (e.g. kxddry's vectorstore/memory.Storage) adapted to the
// document-store contract here.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.FileRecord
}

// NewMemoryStore builds an empty in-memory document store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.FileRecord)}
}

func (m *MemoryStore) Available() bool { return true }

func (m *MemoryStore) Upsert(_ context.Context, rec model.FileRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.records[rec.FileID]; ok {
		rec = mergeRecord(existing, rec)
	} else {
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = time.Now()
		}
		rec.UpdatedAt = rec.CreatedAt
	}
	m.records[rec.FileID] = rec
	return nil
}

func (m *MemoryStore) FindByFileID(_ context.Context, fileID string) (model.FileRecord, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[fileID]
	return rec, ok, nil
}

func (m *MemoryStore) FindBySubstring(_ context.Context, terms []string, limit int) ([]model.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		rec   model.FileRecord
		score int
	}
	var matches []scored
	for _, rec := range m.records {
		haystack := strings.ToLower(rec.DescriptiveText + " " + rec.SummaryPreview + " " + rec.OriginalName)
		score := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, scored{rec, score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].rec.FileID < matches[j].rec.FileID
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]model.FileRecord, len(matches))
	for i, s := range matches {
		out[i] = s.rec
	}
	return out, nil
}

func (m *MemoryStore) All(_ context.Context) ([]model.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.FileRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileID < out[j].FileID })
	return out, nil
}
