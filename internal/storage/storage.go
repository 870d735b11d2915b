// Package storage implements the content-addressed copy-into-storage
// layer: resolve under a configured root, create missing
// directories, write bytes, return the stored path.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/RAj5517/Clustro/internal/model"
	"github.com/RAj5517/Clustro/internal/util"
	"github.com/RAj5517/Clustro/internal/xerr"
)

// Store copies files into <root>/<modality>/<collection>/<name>.
type Store struct {
	Root string
}

// New resolves root to an absolute path and creates it if missing.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, xerr.Newf(xerr.StorageWriteFailed, "resolve storage root: %v", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, xerr.Newf(xerr.StorageWriteFailed, "create storage root: %v", err)
	}
	return &Store{Root: abs}, nil
}

// CopyInto writes data under <root>/<modality>/<collection>/<name>,
// appending "_1", "_2", ... before the extension on collision, and
// returns the path relative to root with forward slashes.
func (s *Store) CopyInto(modality model.Modality, collection, desiredName string, data []byte) (string, error) {
	name := util.SanitizeName(desiredName)
	dir := filepath.Join(s.Root, string(modality), collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", xerr.Newf(xerr.StorageWriteFailed, "create storage dir: %v", err)
	}

	finalName, err := uniqueName(dir, name)
	if err != nil {
		return "", xerr.Newf(xerr.StorageWriteFailed, "resolve unique name: %v", err)
	}

	fullPath := filepath.Join(dir, finalName)
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", xerr.Newf(xerr.StorageWriteFailed, "write file: %v", err)
	}

	rel := filepath.ToSlash(filepath.Join(string(modality), collection, finalName))
	return rel, nil
}

// uniqueName returns name unchanged if it doesn't exist in dir yet;
// otherwise it appends _1, _2, ... before the extension until free.
func uniqueName(dir, name string) (string, error) {
	candidate := name
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; ; i++ {
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		_, err := os.Stat(filepath.Join(dir, candidate))
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", err
		}
	}
}

// AbsolutePath joins a storage-relative URI under root after
// validating it with util.IsPathSafe, rejecting any path that would
// escape root.
func (s *Store) AbsolutePath(relURI string) (string, error) {
	full, ok := util.ResolveUnderRoot(s.Root, relURI)
	if !ok {
		return "", xerr.New(xerr.InvalidPath, "path escapes storage root")
	}
	return full, nil
}
