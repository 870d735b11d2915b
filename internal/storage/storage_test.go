package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RAj5517/Clustro/internal/model"
)

func TestCopyIntoCreatesLayout(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rel, err := store.CopyInto(model.ModalityImage, "media_assets", "cat.jpg", []byte("data"))
	if err != nil {
		t.Fatalf("CopyInto: %v", err)
	}
	if rel != "image/media_assets/cat.jpg" {
		t.Fatalf("got %q", rel)
	}
	if _, err := os.Stat(filepath.Join(store.Root, rel)); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestCopyIntoCollision(t *testing.T) {
	root := t.TempDir()
	store, _ := New(root)

	rel1, err := store.CopyInto(model.ModalityImage, "media_assets", "cat.jpg", []byte("one"))
	if err != nil {
		t.Fatalf("CopyInto: %v", err)
	}
	rel2, err := store.CopyInto(model.ModalityImage, "media_assets", "cat.jpg", []byte("two"))
	if err != nil {
		t.Fatalf("CopyInto: %v", err)
	}
	if rel1 == rel2 {
		t.Fatalf("expected distinct paths, got %q twice", rel1)
	}
	if rel2 != "image/media_assets/cat_1.jpg" {
		t.Fatalf("got %q", rel2)
	}
}

func TestAbsolutePathRejectsEscape(t *testing.T) {
	store, _ := New(t.TempDir())
	if _, err := store.AbsolutePath("../../etc/passwd"); err == nil {
		t.Fatal("expected error for path escaping root")
	}
}

// TestAbsolutePathRejectsSamePrefixSibling guards against a
// boundary check that only compares path prefixes: a sibling
// directory whose name starts with the root's own name (e.g. root
// "storage", sibling "storageEvil") must not be treated as "under
// root" just because the strings share a prefix.
func TestAbsolutePathRejectsSamePrefixSibling(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "storage")
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir root: %v", err)
	}
	sibling := filepath.Join(parent, "storageEvil")
	if err := os.MkdirAll(sibling, 0o755); err != nil {
		t.Fatalf("mkdir sibling: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sibling, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	store, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := store.AbsolutePath("../storageEvil/secret.txt"); err == nil {
		t.Fatal("expected error for same-prefix sibling escape")
	}
}
