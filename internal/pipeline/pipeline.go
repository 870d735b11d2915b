// Package pipeline implements the multimodal orchestration: one
// operation, EncodePath, dispatches on modality as a tagged union
// with one handler per case and returns the same record shape
// regardless of branch.
package pipeline

import (
	"context"
	"fmt"

	"github.com/RAj5517/Clustro/internal/encode"
	"github.com/RAj5517/Clustro/internal/extract"
	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/util"
	"github.com/RAj5517/Clustro/internal/xerr"
)

// Chunk is one passage/frame-level embedding tied to a parent file.
type Chunk struct {
	Text       string
	Embedding  []float32
	ChunkIndex int
}

// Result is the shared output shape of EncodePath across every
// modality branch.
type Result struct {
	Modality        model.Modality
	DescriptiveText string
	Embedding       []float32
	Chunks          []Chunk
	Extra           map[string]any
}

// Pipeline orchestrates extraction + encoding for one file.
type Pipeline struct {
	Encoder      encode.Encoder
	VideoOpts    extract.VideoSampleOptions
	ChunkTokens  int
	ChunkOverlap int
}

// New builds a Pipeline with the chunking defaults
// (512 tokens, 64 overlap) and default video sampling.
func New(enc encode.Encoder) *Pipeline {
	return &Pipeline{
		Encoder:      enc,
		VideoOpts:    extract.DefaultVideoSampleOptions(),
		ChunkTokens:  512,
		ChunkOverlap: 64,
	}
}

// EncodePath dispatches on the extension-derived modality and runs
// the corresponding extract+encode branch.
func (p *Pipeline) EncodePath(ctx context.Context, path, name string, data []byte) (Result, error) {
	ext := util.GetFileExt(name)
	switch {
	case util.IsImage(ext):
		return p.encodeImage(data, ext)
	case util.IsVideo(ext):
		return p.encodeVideo(ctx, path)
	case util.IsAudio(ext):
		return p.encodeAudio(ctx, path)
	default:
		return p.encodeText(ctx, path, ext, data)
	}
}

func (p *Pipeline) encodeImage(data []byte, ext string) (Result, error) {
	img, err := extract.DecodeImage(data, ext)
	if err != nil {
		return Result{}, xerr.Newf(xerr.ExtractFailed, "decode image: %v", err)
	}

	caption, err := p.Encoder.CaptionImage(img)
	if err != nil || caption == "" {
		caption = encode.FallbackCaption(img.Width, img.Height)
	}

	modelInput := p.Encoder.PreprocessImage(img)
	vec, err := p.Encoder.EncodeImage(modelInput)
	if err != nil {
		return Result{}, xerr.Newf(xerr.EncodeFailed, "encode image: %v", err)
	}

	return Result{
		Modality:        model.ModalityImage,
		DescriptiveText: caption,
		Embedding:       vec,
		Extra: map[string]any{
			"width":  img.Width,
			"height": img.Height,
		},
	}, nil
}

func (p *Pipeline) encodeVideo(ctx context.Context, path string) (Result, error) {
	video, err := extract.ExtractVideoFrames(ctx, path, p.VideoOpts)
	if err != nil {
		return Result{}, xerr.Newf(xerr.ExtractFailed, "extract video frames: %v", err)
	}
	if len(video.Frames) == 0 {
		return Result{}, xerr.New(xerr.ExtractFailed, "no frames sampled from video")
	}

	captions := make([]string, len(video.Frames))
	uniqueCaptions := make([]string, 0, len(video.Frames))
	seen := map[string]struct{}{}
	frameVectors := make([][]float32, len(video.Frames))
	chunks := make([]Chunk, len(video.Frames))

	for i, frame := range video.Frames {
		caption, err := p.Encoder.CaptionImage(frame)
		if err != nil || caption == "" {
			caption = encode.FallbackCaption(frame.Width, frame.Height)
		}
		captions[i] = caption
		if _, dup := seen[caption]; !dup {
			seen[caption] = struct{}{}
			uniqueCaptions = append(uniqueCaptions, caption)
		}

		modelInput := p.Encoder.PreprocessImage(frame)
		vec, err := p.Encoder.EncodeImage(modelInput)
		if err != nil {
			return Result{}, xerr.Newf(xerr.EncodeFailed, "encode video frame %d: %v", i, err)
		}
		frameVectors[i] = vec
		chunks[i] = Chunk{Text: caption, Embedding: vec, ChunkIndex: i}
	}

	middle := len(captions) / 2
	descriptiveText := fmt.Sprintf("video; %s", captions[middle])

	return Result{
		Modality:        model.ModalityVideo,
		DescriptiveText: descriptiveText,
		Embedding:       encode.MeanPool(frameVectors),
		Chunks:          chunks,
		Extra: map[string]any{
			"duration_s":          video.DurationSeconds,
			"frame_count_sampled": video.FramesSampled,
			"frame_captions":      uniqueCaptions,
		},
	}, nil
}

func (p *Pipeline) encodeAudio(ctx context.Context, path string) (Result, error) {
	transcript, err := p.Encoder.TranscribeAudio(ctx, path)
	if err != nil {
		transcript = ""
	}

	probe := extract.ProbeAudio(ctx, path)

	descriptiveText := transcript
	if descriptiveText == "" {
		descriptiveText = fallbackAudioDescription(probe.DurationSeconds)
	}

	vec, err := p.Encoder.EncodeText(descriptiveText)
	if err != nil {
		return Result{}, xerr.Newf(xerr.EncodeFailed, "encode audio transcript: %v", err)
	}

	return Result{
		Modality:        model.ModalityAudio,
		DescriptiveText: descriptiveText,
		Embedding:       vec,
		Extra: map[string]any{
			"duration_s": probe.DurationSeconds,
		},
	}, nil
}

func (p *Pipeline) encodeText(ctx context.Context, path, ext string, data []byte) (Result, error) {
	raw, err := extract.ExtractText(path, ext, data)
	if err != nil {
		return Result{}, xerr.Newf(xerr.ExtractFailed, "extract text: %v", err)
	}

	summary := util.BuildSummary(raw, model.SummaryPreviewMaxChars)
	vec, err := p.Encoder.EncodeText(summary)
	if err != nil {
		return Result{}, xerr.Newf(xerr.EncodeFailed, "encode text: %v", err)
	}

	result := Result{
		Modality:        model.ModalityText,
		DescriptiveText: summary,
		Embedding:       vec,
		Extra:           map[string]any{},
	}

	chunks := ChunkText(raw, p.ChunkTokens, p.ChunkOverlap)
	if len(chunks) > 1 {
		result.Chunks = make([]Chunk, 0, len(chunks))
		for i, c := range chunks {
			cvec, err := p.Encoder.EncodeText(c)
			if err != nil {
				continue
			}
			result.Chunks = append(result.Chunks, Chunk{Text: c, Embedding: cvec, ChunkIndex: i})
		}
		result.Extra["chunk_count"] = len(result.Chunks)
	}

	return result, nil
}

// fallbackAudioDescription stands in for DescriptiveText when
// transcription comes back empty, mirroring encodeImage's use of
// encode.FallbackCaption so no audio file is ever recorded with an
// empty description.
func fallbackAudioDescription(durationSeconds float64) string {
	if durationSeconds > 0 {
		return fmt.Sprintf("audio file, %.0fs", durationSeconds)
	}
	return "audio file"
}
