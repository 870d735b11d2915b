package encode

import (
	"math"
	"testing"

	"github.com/RAj5517/Clustro/internal/extract"
	"gorgonia.org/tensor"
)

func unitNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func makeImage(w, h int) extract.ImageResult {
	backing := make([]float32, w*h*3)
	for i := range backing {
		backing[i] = float32(i % 255)
	}
	return extract.ImageResult{
		Tensor: tensor.New(tensor.WithBacking(backing), tensor.WithShape(h, w, 3)),
		Width:  w,
		Height: h,
	}
}

func TestLocalEncoderImageIsUnitNorm(t *testing.T) {
	enc := NewLocalEncoder(true)
	img := makeImage(32, 16)
	vec, err := enc.EncodeImage(enc.PreprocessImage(img))
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if len(vec) != EmbeddingDim {
		t.Fatalf("got dim %d, want %d", len(vec), EmbeddingDim)
	}
	if n := unitNorm(vec); math.Abs(n-1) > 1e-4 {
		t.Fatalf("norm = %f, want ~1", n)
	}
}

func TestLocalEncoderImageDeterministic(t *testing.T) {
	enc := NewLocalEncoder(true)
	img := makeImage(32, 16)
	v1, err := enc.EncodeImage(enc.PreprocessImage(img))
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	v2, err := enc.EncodeImage(enc.PreprocessImage(img))
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("encoder is not deterministic at index %d: %f != %f", i, v1[i], v2[i])
		}
	}
}

func TestLocalEncoderTextIsUnitNorm(t *testing.T) {
	enc := NewLocalEncoder(true)
	vec, err := enc.EncodeText("a caching scheme for distributed systems")
	if err != nil {
		t.Fatalf("EncodeText: %v", err)
	}
	if n := unitNorm(vec); math.Abs(n-1) > 1e-4 {
		t.Fatalf("norm = %f, want ~1", n)
	}
}

func TestMeanPoolRenormalizes(t *testing.T) {
	a := make([]float32, EmbeddingDim)
	b := make([]float32, EmbeddingDim)
	a[0] = 1
	b[1] = 1
	pooled := MeanPool([][]float32{a, b})
	if n := unitNorm(pooled); math.Abs(n-1) > 1e-4 {
		t.Fatalf("mean pool not renormalized: norm=%f", n)
	}
}

func TestCaptionFallback(t *testing.T) {
	enc := NewLocalEncoder(true)
	caption, err := enc.CaptionImage(makeImage(640, 480))
	if err != nil {
		t.Fatalf("CaptionImage: %v", err)
	}
	if caption != "image (640x480)" {
		t.Fatalf("got %q", caption)
	}
}
