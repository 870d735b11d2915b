// Package extract implements the per-modality extractors:
// given raw bytes, produce raw text or raw tensors without raising
// across the component boundary — every exported function returns an
// error instead.
package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/jdeng/goheif"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
	"gorgonia.org/tensor"
)

// ImageResult is the extractor output for the image branch.
type ImageResult struct {
	Tensor *tensor.Dense // shape (height, width, 3), float32, channel values in [0, 255]
	Width  int
	Height int
}

// DecodeImage decodes arbitrary image bytes into an RGB tensor. ext
// drives HEIC and Apple Live Photo (.livp) handling, which the
// stdlib/x/image codecs registered below do not cover.
func DecodeImage(data []byte, ext string) (ImageResult, error) {
	img, err := decodeToImage(data, strings.ToLower(ext))
	if err != nil {
		return ImageResult{}, fmt.Errorf("decode image: %w", err)
	}
	return toTensor(img), nil
}

func decodeToImage(data []byte, ext string) (image.Image, error) {
	switch ext {
	case ".heic":
		return goheif.Decode(bytes.NewReader(data))
	case ".livp":
		return decodeLivp(data)
	case ".bmp":
		return bmp.Decode(bytes.NewReader(data))
	case ".webp":
		return webp.Decode(bytes.NewReader(data))
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		return img, err
	}
}

// decodeLivp unwraps Apple's Live Photo zip container and decodes the
// first still image found inside (jpeg/png/gif/heic).
func decodeLivp(data []byte) (image.Image, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	for _, f := range r.File {
		lower := strings.ToLower(f.Name)
		ext := filepath.Ext(lower)
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".gif" && ext != ".heic" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			continue
		}
		return decodeToImage(content, ext)
	}
	return nil, fmt.Errorf("no still image found inside livp container")
}

func toTensor(img image.Image) ImageResult {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	backing := make([]float32, height*width*3)
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			backing[idx] = float32(r >> 8)
			backing[idx+1] = float32(g >> 8)
			backing[idx+2] = float32(b >> 8)
			idx += 3
		}
	}
	return ImageResult{
		Tensor: tensor.New(tensor.WithBacking(backing), tensor.WithShape(height, width, 3)),
		Width:  width,
		Height: height,
	}
}
