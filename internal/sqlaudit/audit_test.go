package sqlaudit

import (
	"context"
	"testing"

	"github.com/RAj5517/Clustro/internal/model"
)

func TestRecordNilLogIsNoOp(t *testing.T) {
	var l *Log
	err := l.Record(context.Background(), "abc", "file.txt", model.ClassificationReport{
		Classification: "nosql",
	})
	if err != nil {
		t.Fatalf("Record on nil *Log returned error: %v", err)
	}
}

func TestRecordUnconnectedLogIsNoOp(t *testing.T) {
	l := &Log{}
	err := l.Record(context.Background(), "abc", "file.txt", model.ClassificationReport{})
	if err != nil {
		t.Fatalf("Record on unconnected *Log returned error: %v", err)
	}
}

func TestJoinReasons(t *testing.T) {
	cases := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"one"}, "one"},
		{[]string{"one", "two", "three"}, "one; two; three"},
	}
	for _, c := range cases {
		if got := joinReasons(c.in); got != c.want {
			t.Errorf("joinReasons(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
