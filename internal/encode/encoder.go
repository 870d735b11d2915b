// Package encode implements the shared multimodal embedding space:
// preprocess_image, encode_image, encode_text, caption_image,
// transcribe_audio. Every vector returned by an Encoder has
// EmbeddingDim entries and is L2-unit-normalized.
package encode

import (
	"context"
	"fmt"
	"math"

	"github.com/RAj5517/Clustro/internal/extract"
	"github.com/RAj5517/Clustro/internal/model"
)

// EmbeddingDim is the dimension of the shared multimodal space.
const EmbeddingDim = model.EmbeddingDim

// ModelInput is the preprocessed representation handed from
// PreprocessImage to EncodeImage — normalized pixel values in [0, 1],
// laid out the same way as extract.ImageResult.Tensor.
type ModelInput struct {
	Data   []float32
	Width  int
	Height int
}

// Encoder is the contract required by the multimodal pipeline.
// Captioner and transcriber implementations may be stubs: a caption
// fallback of "image (WxH)" and a transcript fallback of "" must
// still let the rest of the pipeline succeed.
type Encoder interface {
	PreprocessImage(img extract.ImageResult) ModelInput
	EncodeImage(input ModelInput) ([]float32, error)
	EncodeText(text string) ([]float32, error)
	CaptionImage(img extract.ImageResult) (string, error)
	TranscribeAudio(ctx context.Context, path string) (string, error)
	Available() bool
}

// FallbackCaption is the degraded caption used when a real captioner
// is unavailable or errors,
func FallbackCaption(width, height int) string {
	return fmt.Sprintf("image (%dx%d)", width, height)
}

// normalizeImage converts a decoded image tensor into a ModelInput
// with channel values scaled to [0, 1]. Shared by every Encoder
// implementation so preprocessing stays consistent across backends.
func normalizeImage(img extract.ImageResult) ModelInput {
	raw := img.Tensor.Data().([]float32)
	data := make([]float32, len(raw))
	for i, v := range raw {
		data[i] = v / 255.0
	}
	return ModelInput{Data: data, Width: img.Width, Height: img.Height}
}

// l2Normalize rescales v to unit length in place and returns it. A
// zero vector is left as-is (there is no direction to normalize to).
func l2Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	inv := float32(1.0 / norm)
	for i := range v {
		v[i] *= inv
	}
	return v
}

// MeanPool averages a set of equal-length vectors and re-normalizes
// the result,C's video-embedding rule: "re-normalization
// after averaging is mandatory."
func MeanPool(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return make([]float32, EmbeddingDim)
	}
	out := make([]float32, len(vectors[0]))
	for _, v := range vectors {
		for i, x := range v {
			out[i] += x
		}
	}
	n := float32(len(vectors))
	for i := range out {
		out[i] /= n
	}
	return l2Normalize(out)
}
