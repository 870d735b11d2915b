package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/zlog"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// embeddingRow is the gorm-mapped table backing PostgresStore: a
// pgvector column plus an HNSW index over the embedding-record shape.
type embeddingRow struct {
	EmbID        string          `gorm:"primaryKey;column:emb_id"`
	FileID       string          `gorm:"column:file_id;index"`
	ChunkIndex   *int            `gorm:"column:chunk_index"`
	Modality     string          `gorm:"column:modality"`
	Collection   string          `gorm:"column:collection"`
	Text         string          `gorm:"column:text"`
	Vector       pgvector.Vector `gorm:"type:vector(512);column:vector"`
	Type         string          `gorm:"column:type"`
	MetadataJSON string          `gorm:"column:metadata_json;type:jsonb"`
}

func (embeddingRow) TableName() string { return "embedding_records" }

const (
	pgMaxDegree      = 16
	pgEFConstruction = 200
)

// PostgresStore is the HNSW-indexed backend selected by POSTGRE_*,
// built on gorm + pgvector (internal/sqlaudit migrates its own table
// the same way, for the classification audit trail).
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects, migrates the embedding_records table, and
// builds the HNSW index.
func OpenPostgres(user, password, dbname, host, port string) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, user, password, dbname, port)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("create vector extension: %w", err)
	}
	if err := db.AutoMigrate(&embeddingRow{}); err != nil {
		return nil, fmt.Errorf("migrate embedding_records: %w", err)
	}
	indexSQL := fmt.Sprintf(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_indexes
        WHERE schemaname = 'public'
          AND tablename = 'embedding_records'
          AND indexname = 'idx_embedding_records_vector_hnsw'
    ) THEN
        CREATE INDEX idx_embedding_records_vector_hnsw
        ON embedding_records USING hnsw (vector vector_cosine_ops)
        WITH (m = %d, ef_construction = %d);
    END IF;
END$$;
`, pgMaxDegree, pgEFConstruction)
	if err := db.Exec(indexSQL).Error; err != nil {
		return nil, fmt.Errorf("create hnsw index: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Available() bool { return s.db != nil }

func (s *PostgresStore) Upsert(ctx context.Context, fileID string, entries []model.EmbeddingRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id = ?", fileID).Delete(&embeddingRow{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]embeddingRow, len(entries))
		for i, e := range entries {
			metaJSON, err := json.Marshal(e.Metadata)
			if err != nil {
				return err
			}
			rows[i] = embeddingRow{
				EmbID:        e.EmbID,
				FileID:       e.FileID,
				ChunkIndex:   e.ChunkIndex,
				Modality:     string(e.Modality),
				Collection:   e.Collection,
				Text:         e.Text,
				Vector:       pgvector.NewVector(e.Embedding),
				Type:         string(e.Type),
				MetadataJSON: string(metaJSON),
			}
		}
		return tx.Create(&rows).Error
	})
}

func (s *PostgresStore) Query(ctx context.Context, vector []float32, topK int) ([]ScoredEmbedding, error) {
	var rows []embeddingRow
	err := s.db.WithContext(ctx).Raw(`
        SELECT *, 1 - (vector <=> ?) AS similarity
        FROM embedding_records
        ORDER BY vector <=> ?
        LIMIT ?
    `, pgvector.NewVector(vector), pgvector.NewVector(vector), topK).Scan(&rows).Error
	if err != nil {
		zlog.L().Error("postgres vector query failed", zap.Error(err))
		return nil, err
	}

	out := make([]ScoredEmbedding, 0, len(rows))
	for _, r := range rows {
		var meta map[string]any
		_ = json.Unmarshal([]byte(r.MetadataJSON), &meta)
		rec := model.EmbeddingRecord{
			EmbID:      r.EmbID,
			FileID:     r.FileID,
			ChunkIndex: r.ChunkIndex,
			Modality:   model.Modality(r.Modality),
			Collection: r.Collection,
			Text:       r.Text,
			Embedding:  r.Vector.Slice(),
			Type:       model.EmbeddingEntryType(r.Type),
			Metadata:   meta,
		}
		out = append(out, ScoredEmbedding{Record: rec, Similarity: dot(vector, rec.Embedding)})
	}
	return out, nil
}
