package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/RAj5517/Clustro/internal/util"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// ExtractText dispatches to the parser named by ext and returns a
// Unicode string. PDFs use the text layer only; a missing or
// empty text layer yields an empty string rather than an error, since
// the caller (the multimodal pipeline) must handle that case anyway.
func ExtractText(path string, ext string, raw []byte) (string, error) {
	switch strings.ToLower(ext) {
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	default:
		return util.DecodeText(raw), nil
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	reader, err := r.GetPlainText()
	if err != nil {
		// Missing text layer is not an extractor failure; return empty.
		return "", nil
	}
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(path string) (string, error) {
	f, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()
	return f.Editable().GetContent(), nil
}
