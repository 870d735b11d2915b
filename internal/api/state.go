package api

import (
	"context"
	"io/fs"
	"mime"
	"path/filepath"
	"sort"

	"github.com/RAj5517/Clustro/internal/docstore"
	"github.com/RAj5517/Clustro/internal/storage"
)

// DatabaseState is the shape returned by both POST /api/upload and
// GET /api/database/state : "all three arrays always
// present." The SQL branch is reported by the classifier but never
// routed anywhere, so Tables is always empty — its presence documents
// that the decision exists, not that a table was created.
type DatabaseState struct {
	Tables           []string `json:"tables"`
	Collections      []string `json:"collections"`
	MediaDirectories []string `json:"mediaDirectories"`
}

// VisualizationNode is one entry of the recursive folder tree served
// by GET /api/visualization.
type VisualizationNode struct {
	Name        string              `json:"name"`
	Type        string              `json:"type"` // "folder" | "file"
	Children    []VisualizationNode `json:"children,omitempty"`
	Size        int64               `json:"size,omitempty"`
	MimeType    string              `json:"mimeType,omitempty"`
	StoragePath string              `json:"storagePath,omitempty"`
}

// StateReader answers database-state and visualization queries
// against the document store, falling back to the physical storage
// tree when the document store has nothing recorded.
type StateReader struct {
	Docs    docstore.Store
	Storage *storage.Store
}

// NewStateReader builds a StateReader over the wired backends.
func NewStateReader(docs docstore.Store, st *storage.Store) *StateReader {
	return &StateReader{Docs: docs, Storage: st}
}

// DatabaseState reports the tables/collections/mediaDirectories
// triple
func (s *StateReader) DatabaseState(ctx context.Context) (DatabaseState, error) {
	state := DatabaseState{Tables: []string{}, Collections: []string{}, MediaDirectories: []string{}}
	if s.Docs == nil || !s.Docs.Available() {
		return state, nil
	}

	records, err := s.Docs.All(ctx)
	if err != nil {
		return state, err
	}

	collections := map[string]struct{}{}
	media := map[string]struct{}{}
	for _, rec := range records {
		collections[rec.Collection] = struct{}{}
		if rec.Modality == "image" || rec.Modality == "video" || rec.Modality == "audio" {
			media[rec.StorageURI] = struct{}{}
		}
	}
	state.Collections = sortedKeys(collections)
	state.MediaDirectories = sortedKeys(media)
	return state, nil
}

// VisualizationTree builds the recursive folder view:
// buckets by collection when the document store has records,
// otherwise walks the physical storage root.
func (s *StateReader) VisualizationTree(ctx context.Context) (VisualizationNode, error) {
	root := VisualizationNode{Name: "root", Type: "folder"}

	if s.Docs != nil && s.Docs.Available() {
		records, err := s.Docs.All(ctx)
		if err != nil {
			return root, err
		}
		if len(records) > 0 {
			buckets := map[string][]VisualizationNode{}
			for _, rec := range records {
				buckets[rec.Collection] = append(buckets[rec.Collection], VisualizationNode{
					Name:        rec.OriginalName,
					Type:        "file",
					Size:        rec.SizeBytes,
					MimeType:    mime.TypeByExtension(filepath.Ext(rec.OriginalName)),
					StoragePath: rec.StorageURI,
				})
			}
			bucketNames := make([]string, 0, len(buckets))
			for name := range buckets {
				bucketNames = append(bucketNames, name)
			}
			sort.Strings(bucketNames)
			for _, bucket := range bucketNames {
				root.Children = append(root.Children, VisualizationNode{
					Name:     bucket,
					Type:     "folder",
					Children: buckets[bucket],
				})
			}
			return root, nil
		}
	}

	return s.physicalTree()
}

// treeBuilder mirrors VisualizationNode but keeps Children as
// pointers, so a directory's entry in dirsByPath stays valid no
// matter how many later siblings get appended to its parent.
type treeBuilder struct {
	node     VisualizationNode
	children []*treeBuilder
}

func (b *treeBuilder) toNode() VisualizationNode {
	out := b.node
	for _, c := range b.children {
		out.Children = append(out.Children, c.toNode())
	}
	return out
}

// physicalTree is the fallback path "falling back to
// the physical storage tree if MongoDB has no records."
func (s *StateReader) physicalTree() (VisualizationNode, error) {
	root := &treeBuilder{node: VisualizationNode{Name: "root", Type: "folder"}}
	if s.Storage == nil {
		return root.toNode(), nil
	}

	dirsByPath := map[string]*treeBuilder{".": root}

	err := filepath.WalkDir(s.Storage.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == s.Storage.Root {
			return err
		}
		rel, relErr := filepath.Rel(s.Storage.Root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		parentKey := filepath.ToSlash(filepath.Dir(rel))
		parent, ok := dirsByPath[parentKey]
		if !ok {
			parent = root
		}

		if d.IsDir() {
			dirNode := &treeBuilder{node: VisualizationNode{Name: d.Name(), Type: "folder"}}
			parent.children = append(parent.children, dirNode)
			dirsByPath[rel] = dirNode
			return nil
		}

		info, infoErr := d.Info()
		var size int64
		if infoErr == nil {
			size = info.Size()
		}
		parent.children = append(parent.children, &treeBuilder{node: VisualizationNode{
			Name:        d.Name(),
			Type:        "file",
			Size:        size,
			MimeType:    mime.TypeByExtension(filepath.Ext(d.Name())),
			StoragePath: rel,
		}})
		return nil
	})
	return root.toNode(), err
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

