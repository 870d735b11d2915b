// Package ingest implements the ingestion coordinator: process_batch
// classifies, extracts, encodes, stores and indexes each file in a
// batch, producing a per-file result and an aggregate report.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/RAj5517/Clustro/internal/classify"
	"github.com/RAj5517/Clustro/internal/docstore"
	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/pipeline"
	"github.com/RAj5517/Clustro/internal/sqlaudit"
	"github.com/RAj5517/Clustro/internal/storage"
	"github.com/RAj5517/Clustro/internal/util"
	"github.com/RAj5517/Clustro/internal/vectorstore"
	"github.com/RAj5517/Clustro/internal/xerr"
	"github.com/RAj5517/Clustro/internal/zlog"
	"go.uber.org/zap"
)

// InputFile is one element of a process_batch call.
type InputFile struct {
	Name string
	Data []byte
}

const (
	mediaTimeout = 120 * time.Second
	textTimeout  = 30 * time.Second

	mediaCollection = "media_assets"

	firstMiB = 1 << 20
)

// Coordinator runs process_batch against a fixed set of backends. It
// is not safe to share across concurrent batches unless Pipeline's
// encoder handle is itself safe for concurrent use: one Coordinator
// should drive one batch at a time.
type Coordinator struct {
	Classifier *classify.Classifier
	Pipeline   *pipeline.Pipeline
	Storage    *storage.Store
	Docs       docstore.Store
	Vectors    vectorstore.Store
	Audit      *sqlaudit.Log
}

// fileLocks is shared by every Coordinator in the process, so that
// batches running on different coordinators still serialize on the
// same file_id.
var fileLocks keyedMutex

// New builds a Coordinator from its wired backends.
func New(pl *pipeline.Pipeline, st *storage.Store, docs docstore.Store, vecs vectorstore.Store, audit *sqlaudit.Log) *Coordinator {
	return &Coordinator{
		Classifier: classify.New(),
		Pipeline:   pl,
		Storage:    st,
		Docs:       docs,
		Vectors:    vecs,
		Audit:      audit,
	}
}

// ProcessBatch runs every file through classify -> route -> extract ->
// encode -> store -> index, checking for cancellation between files
// but never mid-file.
func (c *Coordinator) ProcessBatch(ctx context.Context, files []InputFile) model.BatchReport {
	report := model.BatchReport{
		Results: make([]model.FileResult, 0, len(files)),
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("batch cancelled before %q: %v", f.Name, err))
			break
		}

		result := c.processOne(ctx, f)
		report.TotalFiles++
		if result.Modality == model.ModalityText {
			report.TextCount++
		} else if result.Modality != "" {
			report.MediaCount++
		}
		report.Results = append(report.Results, result)
	}

	return report
}

func (c *Coordinator) processOne(ctx context.Context, f InputFile) model.FileResult {
	result := model.FileResult{DescriptiveText: f.Name}
	var errs []string

	report := c.Classifier.Classify(f.Name, f.Data)
	fileID := computeFileID(f.Name, f.Data)
	result.FileID = fileID

	timeout := textTimeout
	if report.IsMedia {
		timeout = mediaTimeout
	}
	fctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tmpPath, cleanup, tmpErr := materializeTemp(f.Name, f.Data)
	if tmpErr != nil {
		errs = append(errs, xerr.Newf(xerr.ExtractFailed, "materialize temp file: %v", tmpErr).Error())
		result.Modality = modalityOf(report)
		result.Errors = errs
		return result
	}
	defer cleanup()

	encoded, encErr := c.Pipeline.EncodePath(fctx, tmpPath, f.Name, f.Data)
	if encErr != nil {
		errs = append(errs, encErr.Error())
		zlog.L().Warn("pipeline encode failed, degrading to name-only record",
			zap.String("file", f.Name), zap.Error(encErr))
		encoded = pipeline.Result{
			Modality:        modalityOf(report),
			DescriptiveText: f.Name,
			Extra:           map[string]any{},
		}
	}
	result.Modality = encoded.Modality

	collection := mediaCollection
	if !report.IsMedia {
		collection = util.DeriveCollection(encoded.DescriptiveText)
	}
	result.Collection = collection

	storageURI, storeErr := c.Storage.CopyInto(encoded.Modality, collection, f.Name, f.Data)
	if storeErr != nil {
		errs = append(errs, storeErr.Error())
	}
	result.StorageURI = storageURI

	if !report.IsMedia && c.Audit != nil {
		if err := c.Audit.Record(ctx, fileID, f.Name, report); err != nil {
			zlog.L().Warn("classification audit write failed", zap.Error(err))
		}
	}

	now := time.Now()
	rec := model.FileRecord{
		FileID:          fileID,
		OriginalName:    f.Name,
		StorageURI:      storageURI,
		Modality:        encoded.Modality,
		Collection:      collection,
		DescriptiveText: encoded.DescriptiveText,
		SummaryPreview:  previewOf(encoded.DescriptiveText),
		SizeBytes:       int64(len(f.Data)),
		Extra:           mergeExtra(encoded.Extra, encoded.Modality),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if c.Docs == nil || !c.Docs.Available() {
		errs = append(errs, xerr.New(xerr.MetadataWriteFailed, "document store unavailable").Error())
	} else if err := c.Docs.Upsert(ctx, rec); err != nil {
		errs = append(errs, xerr.Newf(xerr.MetadataWriteFailed, "upsert metadata: %v", err).Error())
	}

	embeddingCount := 0
	if encErr == nil {
		embeddingCount, errs = c.upsertEmbeddings(ctx, fileID, collection, encoded, storageURI, f.Name, errs)
	}
	result.EmbeddingCount = embeddingCount
	result.Errors = errs
	return result
}

// upsertEmbeddings builds the canonical + chunk rows, tagging both
// with the same modality and collection as the file record, and
// serializes the delete-then-insert against concurrent re-ingest of
// the same file_id.
func (c *Coordinator) upsertEmbeddings(ctx context.Context, fileID, collection string, encoded pipeline.Result, storageURI, originalName string, errs []string) (int, []string) {
	if c.Vectors == nil || !c.Vectors.Available() {
		return 0, append(errs, xerr.New(xerr.VectorWriteFailed, "vector store unavailable").Error())
	}

	entries := make([]model.EmbeddingRecord, 0, len(encoded.Chunks)+1)
	entries = append(entries, model.EmbeddingRecord{
		EmbID:      fileID,
		FileID:     fileID,
		Modality:   encoded.Modality,
		Collection: collection,
		Text:       encoded.DescriptiveText,
		Embedding:  encoded.Embedding,
		Type:       model.EmbeddingTypeFile,
		Metadata: map[string]any{
			"original_name": originalName,
			"storage_uri":   storageURI,
		},
	})
	for _, ch := range encoded.Chunks {
		idx := ch.ChunkIndex
		entries = append(entries, model.EmbeddingRecord{
			EmbID:      vectorstore.EmbID(fileID, &idx),
			FileID:     fileID,
			ChunkIndex: &idx,
			Modality:   encoded.Modality,
			Collection: collection,
			Text:       ch.Text,
			Embedding:  ch.Embedding,
			Type:       model.EmbeddingTypeChunk,
			Metadata: map[string]any{
				"original_name": originalName,
				"storage_uri":   storageURI,
			},
		})
	}

	unlock := fileLocks.lock(fileID)
	defer unlock()

	if err := c.Vectors.Upsert(ctx, fileID, entries); err != nil {
		return 0, append(errs, xerr.Newf(xerr.VectorWriteFailed, "upsert embeddings: %v", err).Error())
	}
	return len(entries), errs
}

// modalityOf derives the best-effort modality for a file whose
// encode step failed outright, so the degraded record still carries
// a routing tag instead of an empty string.
func modalityOf(report model.ClassificationReport) model.Modality {
	if report.IsMedia {
		return report.Modality
	}
	return model.ModalityText
}

func previewOf(text string) string {
	if len(text) <= model.SummaryPreviewMaxChars {
		return text
	}
	return text[:model.SummaryPreviewMaxChars]
}

func mergeExtra(extra map[string]any, modality model.Modality) map[string]any {
	if extra == nil {
		extra = map[string]any{}
	}
	if modality == model.ModalityImage || modality == model.ModalityAudio {
		extra["clip_generated"] = true
	}
	return extra
}

// materializeTemp writes the uploaded bytes to a temp file so
// extractors that require a real path (PDF, DOCX, ffmpeg/ffprobe for
// video and audio) can open it; image and plain-text branches ignore
// the path and read from the in-memory bytes directly.
func materializeTemp(name string, data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "ingest_*"+filepath.Ext(name))
	if err != nil {
		return "", nil, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, err
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	return path, func() { os.Remove(path) }, nil
}

// computeFileID is the deterministic content hash:
// SHA-256 of (original_name || size_bytes || first 1 MiB of content).
func computeFileID(name string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte(fmt.Sprintf("%d", len(data))))
	if len(data) > firstMiB {
		h.Write(data[:firstMiB])
	} else {
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// keyedMutex grants one lock per key, used to serialize the
// embedding writer's delete-then-insert sequence per file_id across
// concurrent batches.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
