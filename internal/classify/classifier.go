// Package classify implements the two-stage file triage: media-vs-text
// by extension, then a weighted SQL/NoSQL structural scoring pass
// over non-media files. The SQL branch is scored and reported but
// never routed to a SQL pipeline downstream — every non-media file is
// ingested through the NoSQL/document path regardless of its
// classification (see DESIGN.md).
package classify

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"regexp"
	"strings"

	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/util"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// Classifier scores files for media-vs-text and SQL-vs-NoSQL structure.
type Classifier struct{}

// New builds a Classifier. Stateless; safe for concurrent use.
func New() *Classifier { return &Classifier{} }

// Classify runs the two-stage triage against raw file bytes. name is
// used only to read the extension.
func (c *Classifier) Classify(name string, data []byte) model.ClassificationReport {
	ext := util.GetFileExt(name)

	report := model.ClassificationReport{}

	switch {
	case util.IsImage(ext):
		report.IsMedia = true
		report.Modality = model.ModalityImage
		return report
	case util.IsVideo(ext):
		report.IsMedia = true
		report.Modality = model.ModalityVideo
		return report
	case util.IsAudio(ext):
		report.IsMedia = true
		report.Modality = model.ModalityAudio
		return report
	}

	// Stage 2: SQL vs NoSQL structural scoring on non-media files.
	sql, nosql, reasons := c.score(ext, data)
	report.SQLScore = sql
	report.NoSQLScore = nosql
	report.Reasons = reasons
	if sql >= nosql {
		report.Classification = "SQL"
	} else {
		report.Classification = "NoSQL"
	}
	denom := sql
	if nosql > denom {
		denom = nosql
	}
	if denom < 1 {
		denom = 1
	}
	diff := sql - nosql
	if diff < 0 {
		diff = -diff
	}
	report.Confidence = float64(diff) / float64(denom)
	return report
}

type scorer struct {
	sql, nosql int
	reasons    []string
}

func (s *scorer) addSQL(n int, reason string) {
	s.sql += n
	s.reasons = append(s.reasons, reason)
}

func (s *scorer) addNoSQL(n int, reason string) {
	s.nosql += n
	s.reasons = append(s.reasons, reason)
}

func (c *Classifier) score(ext string, data []byte) (sql, nosql int, reasons []string) {
	s := &scorer{}
	text := util.DecodeText(data)

	switch ext {
	case ".csv":
		scoreCSV(s, text)
	case ".json":
		scoreJSON(s, data)
	case ".xml":
		scoreXML(s, data)
	case ".html", ".htm":
		scoreHTML(s, data)
	case ".yaml", ".yml":
		scoreYAML(s, data)
	case ".txt", ".md", ".log":
		scorePlainText(s, text)
	case ".pdf", ".docx":
		scoreDocumentBody(s, text)
	case ".ini", ".cfg", ".conf":
		scoreINI(s, text)
	default:
		s.addNoSQL(2, "unknown file type - defaulting to NoSQL (unstructured)")
		if looksTabular(text) {
			s.addSQL(3, "unknown file contains tabular patterns (CSV-like) - +3 SQL")
		}
	}

	if hasLargeFreeTextField(text) {
		s.addNoSQL(2, "contains large free-text fields (>= 200 chars) - +2 NoSQL")
	}
	return s.sql, s.nosql, s.reasons
}

var idFieldRe = regexp.MustCompile(`(?i)"[a-z0-9_]*_id"\s*:`)

func hasIDFields(text string) bool { return idFieldRe.MatchString(text) }

func hasLargeFreeTextField(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if len(line) >= 200 {
			return true
		}
	}
	return false
}

func looksTabular(text string) bool {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return false
	}
	first := strings.Count(lines[0], ",")
	if first == 0 {
		return false
	}
	matches := 0
	for _, l := range lines[1:] {
		if strings.Count(l, ",") == first {
			matches++
		}
	}
	return matches >= len(lines)-2
}

func scoreCSV(s *scorer, text string) {
	s.addSQL(5, "file type is CSV (tabular) - +5 SQL")
	r := csv.NewReader(strings.NewReader(text))
	rows, err := r.ReadAll()
	if err == nil && consistentColumnCounts(rows) {
		s.addSQL(2, "schema is consistent and predictable - +2 SQL")
	}
	if hasIDFields(text) {
		s.addSQL(1, "fields named *_id - +1 SQL")
	}
}

func consistentColumnCounts(rows [][]string) bool {
	if len(rows) < 2 {
		return true
	}
	n := len(rows[0])
	for _, r := range rows[1:] {
		if len(r) != n {
			return false
		}
	}
	return true
}

func scoreJSON(s *scorer, data []byte) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		s.addNoSQL(3, "unparsable JSON treated as free text - +3 NoSQL")
		return
	}
	switch t := v.(type) {
	case []any:
		scoreJSONArray(s, t)
	case map[string]any:
		scoreJSONObject(s, t)
	default:
		s.addSQL(4, "flat JSON scalar - +4 SQL")
	}
	if hasIDFields(string(data)) {
		s.addSQL(1, "fields named *_id - +1 SQL")
	}
	if mostlyPrimitive(v) {
		s.addSQL(1, "mostly primitive fields - +1 SQL")
	}
}

func scoreJSONObject(s *scorer, obj map[string]any) {
	depth := maxDepth(obj, 0)
	if depth <= 1 {
		s.addSQL(4, "JSON is flat (no nested object/array values) - +4 SQL")
	} else {
		s.addNoSQL(4, "JSON has nested objects - +4 NoSQL")
	}
}

func scoreJSONArray(s *scorer, arr []any) {
	if len(arr) == 0 {
		s.addSQL(4, "empty JSON array treated as flat - +4 SQL")
		return
	}
	flat := true
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			if maxDepth(m, 0) > 1 {
				flat = false
				break
			}
		}
	}
	if flat && sameKeySets(arr) {
		s.addSQL(4, "JSON array whose elements share identical key sets - +4 SQL")
		s.addSQL(2, "schema is consistent across records - +2 SQL")
	} else if !sameKeySets(arr) {
		s.addNoSQL(3, "JSON array with inconsistent element shapes - +3 NoSQL")
		s.addNoSQL(2, "keys vary per record - +2 NoSQL")
	} else {
		s.addNoSQL(4, "JSON array elements contain nested objects - +4 NoSQL")
	}
}

func sameKeySets(arr []any) bool {
	var first map[string]struct{}
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			return false
		}
		keys := make(map[string]struct{}, len(m))
		for k := range m {
			keys[k] = struct{}{}
		}
		if first == nil {
			first = keys
			continue
		}
		if len(first) != len(keys) {
			return false
		}
		for k := range keys {
			if _, ok := first[k]; !ok {
				return false
			}
		}
	}
	return true
}

func maxDepth(v any, cur int) int {
	switch t := v.(type) {
	case map[string]any:
		best := cur
		for _, val := range t {
			if d := maxDepth(val, cur+1); d > best {
				best = d
			}
		}
		return best
	case []any:
		best := cur
		for _, val := range t {
			if d := maxDepth(val, cur+1); d > best {
				best = d
			}
		}
		return best
	default:
		return cur
	}
}

func mostlyPrimitive(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return true
	}
	if len(obj) == 0 {
		return true
	}
	primitive := 0
	for _, val := range obj {
		switch val.(type) {
		case map[string]any, []any:
		default:
			primitive++
		}
	}
	return float64(primitive)/float64(len(obj)) >= 0.6
}

func scoreXML(s *scorer, data []byte) {
	depth, repeating := analyzeXML(data)
	if depth > 2 {
		s.addNoSQL(3, "XML depth > 2 - +3 NoSQL")
	}
	if repeating {
		s.addSQL(3, "XML with repeating same-shape records - +3 SQL")
	}
}

func analyzeXML(data []byte) (maxDepth int, repeating bool) {
	dec := xml.NewDecoder(strings.NewReader(string(data)))
	depth := 0
	siblingCounts := map[string]int{}
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
			siblingCounts[t.Name.Local]++
		case xml.EndElement:
			depth--
		}
	}
	for _, n := range siblingCounts {
		if n >= 2 {
			repeating = true
			break
		}
	}
	return maxDepth, repeating
}

func scoreHTML(s *scorer, data []byte) {
	tables, hasContent := analyzeHTML(data)
	if tables > 0 {
		s.addSQL(3, "well-formed HTML <table> present - +3 SQL")
	} else if hasContent {
		s.addNoSQL(1, "HTML without tables - +1 NoSQL")
	}
}

func analyzeHTML(data []byte) (tables int, hasContent bool) {
	doc, err := html.Parse(strings.NewReader(string(data)))
	if err != nil {
		return 0, true
	}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			tables++
		}
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) != "" {
			hasContent = true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return tables, hasContent
}

func scoreYAML(s *scorer, data []byte) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		s.addNoSQL(3, "unparsable YAML treated as free text - +3 NoSQL")
		return
	}
	depth := maxDepth(normalizeYAML(v), 0)
	if depth <= 1 {
		s.addSQL(4, "YAML is flat (no nested objects) - +4 SQL")
	} else {
		s.addNoSQL(4, "YAML contains nested objects - +4 NoSQL")
	}
}

// normalizeYAML converts map[any]any (yaml.v3 default for untyped
// maps) into map[string]any so maxDepth can walk it uniformly.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[toString(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func scorePlainText(s *scorer, text string) {
	s.addNoSQL(3, "pure text (.txt/.md/.log) - +3 NoSQL")
	if looksTabular(text) {
		s.addSQL(3, "text contains tabular patterns (CSV-like) - +3 SQL")
	}
}

func scoreDocumentBody(s *scorer, text string) {
	s.addNoSQL(3, "document body (PDF/DOCX extracted text) - +3 NoSQL")
	_ = text
}

func scoreINI(s *scorer, text string) {
	sections := strings.Count(text, "[")
	if sections <= 1 {
		s.addSQL(2, "single-section config is flat - +2 SQL")
	} else {
		s.addNoSQL(2, "multi-section config varies per record - +2 NoSQL")
	}
}
