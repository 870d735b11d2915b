package encode

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/RAj5517/Clustro/internal/extract"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// gridSize is the side length of the fixed-size spatial pool images
// are reduced to before projection into the shared embedding space.
const gridSize = 8

// poolFeatureDim is the length of the pooled feature vector handed to
// the projection graph: a gridSize x gridSize grid, 3 channels.
const poolFeatureDim = gridSize * gridSize * 3

// LocalEncoder is the deterministic, model-free fallback described in
// SPEC_FULL.md's DOMAIN STACK: no trained weights are loaded, but
// every image embedding is computed by a real tensor graph (grid-pool
// the image into a fixed feature vector, then project it into the
// shared space with a fixed, hash-seeded matrix) and every text
// embedding by feature hashing (see hashEmbed), so that encoders stay
// swappable behind the Encoder interface without special-casing a
// "no model available" branch throughout the pipeline.
type LocalEncoder struct {
	enableAudio bool

	mu         sync.Mutex
	projection *tensor.Dense // shape (poolFeatureDim, EmbeddingDim), built once, reused across calls
}

// NewLocalEncoder builds a LocalEncoder. enableAudio mirrors the
// ENABLE_AUDIO config flag ; when false, TranscribeAudio
// always returns the "" fallback without probing the file.
func NewLocalEncoder(enableAudio bool) *LocalEncoder {
	return &LocalEncoder{enableAudio: enableAudio}
}

// Available always reports true: the local encoder has no external
// dependency that can be down.
func (e *LocalEncoder) Available() bool { return true }

func (e *LocalEncoder) PreprocessImage(img extract.ImageResult) ModelInput {
	return normalizeImage(img)
}

func (e *LocalEncoder) EncodeImage(input ModelInput) ([]float32, error) {
	pooled := gridPool(input, gridSize)
	vec, err := e.project(pooled)
	if err != nil {
		return nil, err
	}
	return l2Normalize(vec), nil
}

func (e *LocalEncoder) EncodeText(text string) ([]float32, error) {
	return l2Normalize(hashEmbed(text, EmbeddingDim)), nil
}

func (e *LocalEncoder) CaptionImage(img extract.ImageResult) (string, error) {
	return FallbackCaption(img.Width, img.Height), nil
}

func (e *LocalEncoder) TranscribeAudio(ctx context.Context, path string) (string, error) {
	if !e.enableAudio {
		return "", nil
	}
	res := extract.ProbeAudio(ctx, path)
	if res.DurationSeconds <= 0 {
		return "", nil
	}
	return "", nil
}

// gridPool reduces an arbitrary-size image to a fixed gridSize x
// gridSize x 3 feature vector by averaging pixel values per cell.
func gridPool(input ModelInput, grid int) []float32 {
	out := make([]float32, grid*grid*3)
	counts := make([]int, grid*grid)
	if input.Width == 0 || input.Height == 0 {
		return out
	}
	for y := 0; y < input.Height; y++ {
		cellY := y * grid / input.Height
		for x := 0; x < input.Width; x++ {
			cellX := x * grid / input.Width
			cell := cellY*grid + cellX
			base := (y*input.Width + x) * 3
			outBase := cell * 3
			out[outBase] += input.Data[base]
			out[outBase+1] += input.Data[base+1]
			out[outBase+2] += input.Data[base+2]
			counts[cell]++
		}
	}
	for cell, n := range counts {
		if n == 0 {
			continue
		}
		base := cell * 3
		out[base] /= float32(n)
		out[base+1] /= float32(n)
		out[base+2] /= float32(n)
	}
	return out
}

// project runs the pooled feature vector through a gorgonia graph
// that multiplies it by the fixed projection matrix, producing a
// vector of length EmbeddingDim.
func (e *LocalEncoder) project(pooled []float32) ([]float32, error) {
	e.mu.Lock()
	if e.projection == nil {
		e.projection = buildProjectionMatrix(poolFeatureDim, EmbeddingDim)
	}
	projection := e.projection
	e.mu.Unlock()

	g := gorgonia.NewGraph()
	input := gorgonia.NewTensor(g, tensor.Float32, 2,
		gorgonia.WithShape(1, poolFeatureDim),
		gorgonia.WithValue(tensor.New(tensor.WithBacking(pooled), tensor.WithShape(1, poolFeatureDim))),
		gorgonia.WithName("input"))
	weights := gorgonia.NewTensor(g, tensor.Float32, 2,
		gorgonia.WithShape(poolFeatureDim, EmbeddingDim),
		gorgonia.WithValue(projection),
		gorgonia.WithName("weights"))

	out := gorgonia.Must(gorgonia.Mul(input, weights))

	machine := gorgonia.NewTapeMachine(g)
	defer machine.Close()
	if err := machine.RunAll(); err != nil {
		return nil, err
	}
	data := out.Value().Data().([]float32)
	result := make([]float32, len(data))
	copy(result, data)
	return result, nil
}

// buildProjectionMatrix deterministically seeds a (rows, cols) matrix
// from sha256 so repeated runs of the process produce identical
// embeddings for identical inputs (P4 idempotency relies on this).
func buildProjectionMatrix(rows, cols int) *tensor.Dense {
	backing := make([]float32, rows*cols)
	for i := range backing {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		sum := sha256.Sum256(buf[:])
		// map the first 4 bytes of the digest to [-1, 1]
		v := int32(binary.LittleEndian.Uint32(sum[:4]))
		backing[i] = float32(v) / float32(1<<31)
	}
	return tensor.New(tensor.WithBacking(backing), tensor.WithShape(rows, cols))
}

// hashEmbed implements the feature-hashing trick: each token votes on
// one dimension of the output vector, with sign determined by a
// second hash so collisions partially cancel instead of compounding.
func hashEmbed(text string, dim int) []float32 {
	out := make([]float32, dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		idx := int(sum % uint32(dim))
		h2 := fnv.New64a()
		_, _ = h2.Write([]byte(tok))
		sign := float32(1)
		if h2.Sum64()>>63 == 1 {
			sign = -1
		}
		out[idx] += sign
	}
	return out
}
