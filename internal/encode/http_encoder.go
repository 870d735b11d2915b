package encode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/RAj5517/Clustro/internal/extract"
	"github.com/RAj5517/Clustro/internal/zlog"
	"go.uber.org/zap"
)

// HTTPEncoder calls out to a remote model service with a POST
// (form-encoded for text and audio, a raw JPEG body for images) and
// reads a JSON response. Every operation falls
// back to fallback on error so that a down model service degrades
// the system rather than failing it.
type HTTPEncoder struct {
	URL      string
	Client   *http.Client
	fallback Encoder
}

// NewHTTPEncoder builds an HTTPEncoder backed by fallback for every
// operation that the remote service cannot serve.
func NewHTTPEncoder(url string, fallback Encoder) *HTTPEncoder {
	return &HTTPEncoder{
		URL:      url,
		Client:   &http.Client{Timeout: 30 * time.Second},
		fallback: fallback,
	}
}

// Available reports whether a model service URL is configured at
// all; it does not probe the service (that would add a suspension
// point to every call site that doesn't need one).
func (e *HTTPEncoder) Available() bool { return e.URL != "" }

func (e *HTTPEncoder) PreprocessImage(img extract.ImageResult) ModelInput {
	return normalizeImage(img)
}

func (e *HTTPEncoder) EncodeImage(input ModelInput) ([]float32, error) {
	if !e.Available() {
		return e.fallback.EncodeImage(input)
	}
	jpegBytes, err := encodeModelInputJPEG(input)
	if err != nil {
		return e.fallback.EncodeImage(input)
	}
	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := e.postImage("/encode_image", jpegBytes, &result); err != nil {
		zlog.L().Warn("model service encode_image failed, using local fallback", zap.Error(err))
		return e.fallback.EncodeImage(input)
	}
	if len(result.Embedding) != EmbeddingDim {
		return e.fallback.EncodeImage(input)
	}
	return l2Normalize(result.Embedding), nil
}

func (e *HTTPEncoder) EncodeText(text string) ([]float32, error) {
	if !e.Available() {
		return e.fallback.EncodeText(text)
	}
	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := e.postForm("/encode_text", url.Values{"text": {text}}, &result); err != nil {
		zlog.L().Warn("model service encode_text failed, using local fallback", zap.Error(err))
		return e.fallback.EncodeText(text)
	}
	if len(result.Embedding) != EmbeddingDim {
		return e.fallback.EncodeText(text)
	}
	return l2Normalize(result.Embedding), nil
}

func (e *HTTPEncoder) CaptionImage(img extract.ImageResult) (string, error) {
	if !e.Available() {
		return e.fallback.CaptionImage(img)
	}
	jpegBytes, err := encodeModelInputJPEG(normalizeImage(img))
	if err != nil {
		return FallbackCaption(img.Width, img.Height), nil
	}
	var result struct {
		Caption string `json:"caption"`
	}
	if err := e.postImage("/caption_image", jpegBytes, &result); err != nil {
		zlog.L().Warn("model service caption_image failed, using fallback caption", zap.Error(err))
		return FallbackCaption(img.Width, img.Height), nil
	}
	if result.Caption == "" {
		return FallbackCaption(img.Width, img.Height), nil
	}
	return result.Caption, nil
}

func (e *HTTPEncoder) TranscribeAudio(ctx context.Context, path string) (string, error) {
	if !e.Available() {
		return e.fallback.TranscribeAudio(ctx, path)
	}
	var result struct {
		Transcript string `json:"transcript"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/transcribe_audio", e.URL),
		bytes.NewReader([]byte(url.Values{"path": {path}}.Encode())))
	if err != nil {
		return e.fallback.TranscribeAudio(ctx, path)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := e.Client.Do(req)
	if err != nil {
		zlog.L().Warn("model service transcribe_audio failed, falling back", zap.Error(err))
		return e.fallback.TranscribeAudio(ctx, path)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return e.fallback.TranscribeAudio(ctx, path)
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &result); err != nil {
		return e.fallback.TranscribeAudio(ctx, path)
	}
	return result.Transcript, nil
}

func (e *HTTPEncoder) postForm(endpoint string, form url.Values, out any) error {
	resp, err := e.Client.PostForm(e.URL+endpoint, form)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service %s: %s", endpoint, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (e *HTTPEncoder) postImage(endpoint string, jpegBytes []byte, out any) error {
	var buf bytes.Buffer
	buf.Write(jpegBytes)
	req, err := http.NewRequest(http.MethodPost, e.URL+endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "image/jpeg")
	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model service %s: %s", endpoint, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func encodeModelInputJPEG(input ModelInput) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, input.Width, input.Height))
	for y := 0; y < input.Height; y++ {
		for x := 0; x < input.Width; x++ {
			base := (y*input.Width + x) * 3
			r := uint8(input.Data[base] * 255)
			g := uint8(input.Data[base+1] * 255)
			b := uint8(input.Data[base+2] * 255)
			img.Set(x, y, colorRGBA{r, g, b, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type colorRGBA struct{ R, G, B, A uint8 }

func (c colorRGBA) RGBA() (r, g, b, a uint32) {
	return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, uint32(c.A) * 0x101
}
