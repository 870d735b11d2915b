// Package search implements a semantic path over the vector store
// with metadata-substring fallback when no vector store is
// available.
package search

import (
	"context"
	"sort"
	"strings"

	"github.com/RAj5517/Clustro/internal/docstore"
	"github.com/RAj5517/Clustro/internal/encode"
	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/util"
	"github.com/RAj5517/Clustro/internal/vectorstore"
)

// candidateFanout is the over-fetch multiplier applied to k before
// querying the vector store, giving room to dedupe by file_id down
// to k hits.
const candidateFanout = 3

// Engine runs semantic search with a metadata-substring fallback.
type Engine struct {
	Encoder encode.Encoder
	Docs    docstore.Store
	Vectors vectorstore.Store
}

// New builds a search Engine against the wired backends.
func New(enc encode.Encoder, docs docstore.Store, vecs vectorstore.Store) *Engine {
	return &Engine{Encoder: enc, Docs: docs, Vectors: vecs}
}

// Search runs the query and returns ranked hits. modalityFilter, if
// non-empty, restricts results to that modality.
func (e *Engine) Search(ctx context.Context, query string, k int, modalityFilter model.Modality) (model.SearchResponse, error) {
	if e.Vectors != nil && e.Vectors.Available() {
		resp, err := e.semanticSearch(ctx, query, k, modalityFilter)
		if err == nil {
			return resp, nil
		}
	}
	return e.metadataSearch(ctx, query, k, modalityFilter)
}

func (e *Engine) semanticSearch(ctx context.Context, query string, k int, modalityFilter model.Modality) (model.SearchResponse, error) {
	queryVec, err := e.Encoder.EncodeText(query)
	if err != nil {
		return model.SearchResponse{}, err
	}

	candidates, err := e.Vectors.Query(ctx, queryVec, k*candidateFanout)
	if err != nil {
		return model.SearchResponse{}, err
	}

	bestByFile := make(map[string]vectorstore.ScoredEmbedding, len(candidates))
	for _, c := range candidates {
		if modalityFilter != "" && c.Record.Modality != modalityFilter {
			continue
		}
		existing, ok := bestByFile[c.Record.FileID]
		if !ok || c.Similarity > existing.Similarity {
			bestByFile[c.Record.FileID] = c
		}
	}

	hits := make([]model.SearchHit, 0, len(bestByFile))
	for fileID, best := range bestByFile {
		hit := model.SearchHit{
			ID:          fileID,
			Similarity:  best.Similarity,
			Description: best.Record.Text,
			Metadata:    best.Record.Metadata,
			IsChunk:     best.Record.Type == model.EmbeddingTypeChunk,
			Modality:    best.Record.Modality,
		}
		if e.Docs != nil && e.Docs.Available() {
			if rec, ok, err := e.Docs.FindByFileID(ctx, fileID); err == nil && ok {
				hit.Name = rec.OriginalName
				hit.Path = rec.StorageURI
				hit.Description = rec.DescriptiveText
				hit.Modality = rec.Modality
			}
		}
		hits = append(hits, hit)
	}

	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return model.SearchResponse{Results: hits, Source: "semantic"}, nil
}

func (e *Engine) metadataSearch(ctx context.Context, query string, k int, modalityFilter model.Modality) (model.SearchResponse, error) {
	terms := util.TokenizeWords(query)
	if e.Docs == nil || !e.Docs.Available() {
		return model.SearchResponse{Results: nil, Source: "metadata"}, nil
	}

	records, err := e.Docs.FindBySubstring(ctx, terms, 0)
	if err != nil {
		return model.SearchResponse{}, err
	}

	hits := make([]model.SearchHit, 0, len(records))
	for _, rec := range records {
		if modalityFilter != "" && rec.Modality != modalityFilter {
			continue
		}
		hits = append(hits, model.SearchHit{
			ID:          rec.FileID,
			Name:        rec.OriginalName,
			Path:        rec.StorageURI,
			Modality:    rec.Modality,
			Similarity:  termOverlap(terms, rec),
			Description: rec.DescriptiveText,
			Metadata:    rec.Extra,
			IsChunk:     false,
		})
	}

	sortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return model.SearchResponse{Results: hits, Source: "metadata"}, nil
}

// termOverlap normalizes the raw term-match count into [0,1] so
// fallback similarity lives on the same scale as cosine similarity.
func termOverlap(terms []string, rec model.FileRecord) float64 {
	if len(terms) == 0 {
		return 0
	}
	haystack := strings.ToLower(rec.DescriptiveText + " " + rec.SummaryPreview + " " + rec.OriginalName)
	matched := 0
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// sortHits ranks by similarity descending, breaking ties by file_id
// ascending for a deterministic order.
func sortHits(hits []model.SearchHit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ID < hits[j].ID
	})
}
