// Package docstore implements the metadata writer against a generic
// collection-of-documents contract: insert/update, find by key, find
// by substring. Store is the interface every backend implements;
// MongoStore and MemoryStore are the two concrete backends.
package docstore

import (
	"context"
	"time"

	"github.com/RAj5517/Clustro/internal/model"
)

// Store is the document-store contract. Backends that cannot reach
// their underlying system report Available()=false so the coordinator
// can degrade instead of aborting.
type Store interface {
	Available() bool
	// Upsert merges extra, replaces descriptive_text/summary_preview,
	// and bumps updated_at; file_id, original_name, size_bytes and
	// created_at are never overwritten once set.
	Upsert(ctx context.Context, rec model.FileRecord) error
	FindByFileID(ctx context.Context, fileID string) (model.FileRecord, bool, error)
	// FindBySubstring scans descriptive_text, summary_preview and
	// original_name for every term, used by the metadata fallback
	// search path.
	FindBySubstring(ctx context.Context, terms []string, limit int) ([]model.FileRecord, error)
	All(ctx context.Context) ([]model.FileRecord, error)
}

// mergeRecord applies upsert semantics onto an existing record,
// keeping its immutable fields.
func mergeRecord(existing, incoming model.FileRecord) model.FileRecord {
	merged := incoming
	merged.FileID = existing.FileID
	merged.OriginalName = existing.OriginalName
	merged.SizeBytes = existing.SizeBytes
	merged.CreatedAt = existing.CreatedAt
	merged.UpdatedAt = time.Now()

	if merged.Extra == nil {
		merged.Extra = map[string]any{}
	}
	for k, v := range existing.Extra {
		if _, ok := merged.Extra[k]; !ok {
			merged.Extra[k] = v
		}
	}
	return merged
}
