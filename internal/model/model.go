// Package model defines the data shapes persisted by the ingestion
// core: file records, embedding records, and classification reports.
package model

import "time"

// Modality is the routing tag assigned during triage.
type Modality string

const (
	ModalityImage   Modality = "image"
	ModalityVideo   Modality = "video"
	ModalityAudio   Modality = "audio"
	ModalityText    Modality = "text"
	ModalityUnknown Modality = "unknown"
)

// EmbeddingDim is the fixed dimension of the shared multimodal space.
// Every vector produced by internal/encode has exactly this length.
const EmbeddingDim = 512

// FileRecord is the metadata document persisted in the document
// store, keyed by FileID. "File record".
type FileRecord struct {
	FileID          string         `bson:"file_id" json:"file_id"`
	OriginalName    string         `bson:"original_name" json:"original_name"`
	StorageURI      string         `bson:"storage_uri" json:"storage_uri"`
	Modality        Modality       `bson:"modality" json:"modality"`
	Collection      string         `bson:"collection" json:"collection"`
	DescriptiveText string         `bson:"descriptive_text" json:"descriptive_text"`
	SummaryPreview  string         `bson:"summary_preview" json:"summary_preview"`
	SizeBytes       int64          `bson:"size_bytes" json:"size_bytes"`
	Extra           map[string]any `bson:"extra" json:"extra"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updated_at"`
}

// SummaryPreviewMaxChars bounds FileRecord.SummaryPreview.
const SummaryPreviewMaxChars = 500

// DescriptiveTextMaxBytes is the size limit for
// FileRecord.DescriptiveText. Nothing in the ingestion path applies
// it: a caption or transcript longer than this is stored as is.
const DescriptiveTextMaxBytes = 8 * 1024

// EmbeddingEntryType distinguishes the canonical per-file vector from
// a chunk-level vector.
type EmbeddingEntryType string

const (
	EmbeddingTypeFile  EmbeddingEntryType = "file"
	EmbeddingTypeChunk EmbeddingEntryType = "chunk"
)

// EmbeddingRecord is a single row in the vector store.
type EmbeddingRecord struct {
	EmbID      string             `json:"emb_id"`
	FileID     string             `json:"file_id"`
	ChunkIndex *int               `json:"chunk_index,omitempty"`
	Modality   Modality           `json:"modality"`
	Collection string             `json:"collection"`
	Text       string             `json:"text"`
	Embedding  []float32          `json:"embedding"`
	Type       EmbeddingEntryType `json:"type"`
	Metadata   map[string]any     `json:"metadata"`
}

// ClassificationReport is the output of the two-stage classifier:
// whether the file is media, and — for non-media
// files — the weighted SQL/NoSQL scoring with a per-signal reason
// trail. The SQL branch is reported but never routed to downstream of
// the classifier; every non-media file is ingested as NoSQL/text.
type ClassificationReport struct {
	IsMedia        bool     `json:"is_media"`
	Modality       Modality `json:"modality,omitempty"`
	SQLScore       int      `json:"sql_score"`
	NoSQLScore     int      `json:"nosql_score"`
	Classification string   `json:"classification,omitempty"` // "SQL" | "NoSQL"
	Confidence     float64  `json:"confidence,omitempty"`
	Reasons        []string `json:"reasons,omitempty"`
}

// FileResult is the per-file outcome emitted by the ingestion
// coordinator.
type FileResult struct {
	FileID         string   `json:"file_id"`
	Modality       Modality `json:"modality"`
	Collection     string   `json:"collection"`
	DescriptiveText string  `json:"descriptive_text"`
	StorageURI     string   `json:"storage_uri"`
	EmbeddingCount int      `json:"embedding_count"`
	Errors         []string `json:"errors"`
}

// BatchReport is the aggregate result of process_batch .
type BatchReport struct {
	TotalFiles int          `json:"total_files"`
	MediaCount int          `json:"media_count"`
	TextCount  int          `json:"text_count"`
	Results    []FileResult `json:"results"`
	Errors     []string     `json:"errors"`
}

// SearchHit is a single ranked result from semantic search .
type SearchHit struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Path        string         `json:"path"`
	Modality    Modality       `json:"modality"`
	Similarity  float64        `json:"similarity"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	IsChunk     bool           `json:"isChunk"`
}

// SearchResponse wraps ranked hits with their provenance.
type SearchResponse struct {
	Results []SearchHit `json:"results"`
	Source  string      `json:"source"` // "semantic" | "metadata"
}
