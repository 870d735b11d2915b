package classify

import (
	"strings"
	"testing"

	"github.com/RAj5517/Clustro/internal/model"
)

func TestClassifyMediaByExtension(t *testing.T) {
	c := New()
	cases := []struct {
		name     string
		modality model.Modality
	}{
		{"photo.jpg", model.ModalityImage},
		{"clip.mp4", model.ModalityVideo},
		{"track.mp3", model.ModalityAudio},
	}
	for _, tc := range cases {
		r := c.Classify(tc.name, []byte("irrelevant"))
		if !r.IsMedia {
			t.Fatalf("%s: expected IsMedia=true", tc.name)
		}
		if r.Modality != tc.modality {
			t.Fatalf("%s: expected modality %s, got %s", tc.name, tc.modality, r.Modality)
		}
	}
}

func TestClassifyFlatJSONLeansSQL(t *testing.T) {
	c := New()
	data := []byte(`{"user_id": 1, "name": "Ada", "age": 36}`)
	r := c.Classify("record.json", data)
	if r.IsMedia {
		t.Fatal("json should not be media")
	}
	if r.Classification != "SQL" {
		t.Fatalf("expected SQL classification for flat JSON, got %s (reasons=%v)", r.Classification, r.Reasons)
	}
	if r.SQLScore <= r.NoSQLScore {
		t.Fatalf("expected sql score to dominate: sql=%d nosql=%d", r.SQLScore, r.NoSQLScore)
	}
}

func TestClassifyNestedJSONLeansNoSQL(t *testing.T) {
	c := New()
	data := []byte(`{"user": {"id": 1, "address": {"city": "NYC", "zip": "10001"}}}`)
	r := c.Classify("record.json", data)
	if r.Classification != "NoSQL" {
		t.Fatalf("expected NoSQL classification for nested JSON, got %s (reasons=%v)", r.Classification, r.Reasons)
	}
}

func TestClassifyCSVLeansSQL(t *testing.T) {
	c := New()
	data := []byte("id,name,age\n1,Ada,36\n2,Grace,85\n")
	r := c.Classify("data.csv", data)
	if r.Classification != "SQL" {
		t.Fatalf("expected SQL classification for CSV, got %s (reasons=%v)", r.Classification, r.Reasons)
	}
}

func TestClassifyTieBreaksToSQL(t *testing.T) {
	c := New()
	// Nested repeating <item> elements push depth past 2 (+3 NoSQL)
	// while the repeated sibling tag also scores as a repeating
	// same-shape record (+3 SQL), producing an exact 3-3 tie.
	data := []byte(`<root>
		<item><sub><leaf>1</leaf></sub></item>
		<item><sub><leaf>2</leaf></sub></item>
	</root>`)
	r := c.Classify("data.xml", data)
	if r.SQLScore != r.NoSQLScore {
		t.Fatalf("expected a tie, got sql=%d nosql=%d (reasons=%v)", r.SQLScore, r.NoSQLScore, r.Reasons)
	}
	if r.Classification != "SQL" {
		t.Fatalf("ties must resolve to SQL, got %s", r.Classification)
	}
}

func TestClassifyPlainTextLeansNoSQL(t *testing.T) {
	c := New()
	data := []byte(strings.Repeat("This is a long free-form paragraph describing something in detail. ", 5))
	r := c.Classify("notes.txt", data)
	if r.Classification != "NoSQL" {
		t.Fatalf("expected NoSQL classification for prose text, got %s (reasons=%v)", r.Classification, r.Reasons)
	}
}

func TestClassifyReasonsArePopulated(t *testing.T) {
	c := New()
	r := c.Classify("data.csv", []byte("a,b\n1,2\n"))
	if len(r.Reasons) == 0 {
		t.Fatal("expected non-empty reasons trail for non-media classification")
	}
}

func TestClassifyConfidenceFormula(t *testing.T) {
	c := New()
	r := c.Classify("data.csv", []byte("a,b\n1,2\n3,4\n"))
	diff := r.SQLScore - r.NoSQLScore
	if diff < 0 {
		diff = -diff
	}
	denom := r.SQLScore
	if r.NoSQLScore > denom {
		denom = r.NoSQLScore
	}
	if denom < 1 {
		denom = 1
	}
	want := float64(diff) / float64(denom)
	if r.Confidence != want {
		t.Fatalf("confidence mismatch: got %f want %f", r.Confidence, want)
	}
}
