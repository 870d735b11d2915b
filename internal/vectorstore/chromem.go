package vectorstore

import (
	"context"
	"fmt"

	"github.com/RAj5517/Clustro/internal/model"
	"github.com/philippgille/chromem-go"
)

// ChromaStore is the embedded Chroma-shaped backend named by
// CHROMA_PERSIST_PATH/CHROMA_NOSQL_COLLECTION .
type ChromaStore struct {
	collection *chromem.Collection
}

// OpenChroma opens (creating if needed) a persistent chromem-go
// database at persistPath and the named collection.
func OpenChroma(persistPath, collectionName string) (*ChromaStore, error) {
	db, err := chromem.NewPersistentDB(persistPath, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get or create collection: %w", err)
	}
	return &ChromaStore{collection: collection}, nil
}

func (s *ChromaStore) Available() bool { return s.collection != nil }

func (s *ChromaStore) Upsert(ctx context.Context, fileID string, entries []model.EmbeddingRecord) error {
	if err := s.deleteByFileID(ctx, fileID); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		docs[i] = chromem.Document{
			ID:        e.EmbID,
			Content:   e.Text,
			Embedding: e.Embedding,
			Metadata:  flattenMetadata(e),
		}
	}
	return s.collection.AddDocuments(ctx, docs, 1)
}

func (s *ChromaStore) deleteByFileID(ctx context.Context, fileID string) error {
	return s.collection.Delete(ctx, map[string]string{"file_id": fileID}, nil)
}

func (s *ChromaStore) Query(ctx context.Context, vector []float32, topK int) ([]ScoredEmbedding, error) {
	results, err := s.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, err
	}
	out := make([]ScoredEmbedding, len(results))
	for i, r := range results {
		out[i] = ScoredEmbedding{
			Record:     unflattenMetadata(r.ID, r.Content, r.Embedding, r.Metadata),
			Similarity: float64(r.Similarity),
		}
	}
	return out, nil
}

func flattenMetadata(e model.EmbeddingRecord) map[string]string {
	md := map[string]string{
		"file_id":    e.FileID,
		"modality":   string(e.Modality),
		"collection": e.Collection,
		"type":       string(e.Type),
	}
	if e.ChunkIndex != nil {
		md["chunk_index"] = fmt.Sprintf("%d", *e.ChunkIndex)
	}
	for k, v := range e.Metadata {
		md["extra_"+k] = fmt.Sprintf("%v", v)
	}
	return md
}

func unflattenMetadata(id, content string, embedding []float32, md map[string]string) model.EmbeddingRecord {
	rec := model.EmbeddingRecord{
		EmbID:      id,
		Text:       content,
		Embedding:  embedding,
		FileID:     md["file_id"],
		Modality:   model.Modality(md["modality"]),
		Collection: md["collection"],
		Type:       model.EmbeddingEntryType(md["type"]),
	}
	if v, ok := md["chunk_index"]; ok {
		var idx int
		if _, err := fmt.Sscanf(v, "%d", &idx); err == nil {
			rec.ChunkIndex = &idx
		}
	}
	return rec
}
