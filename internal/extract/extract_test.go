package extract

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func encodeTestJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test jpeg: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeImageDimensions(t *testing.T) {
	data := encodeTestJPEG(t, 16, 8)
	res, err := DecodeImage(data, ".jpg")
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if res.Width != 16 || res.Height != 8 {
		t.Fatalf("got %dx%d, want 16x8", res.Width, res.Height)
	}
	shape := res.Tensor.Shape()
	if shape[0] != 8 || shape[1] != 16 || shape[2] != 3 {
		t.Fatalf("unexpected tensor shape %v", shape)
	}
}

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("", ".txt", []byte("hello world"))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("got %q", text)
	}
}
