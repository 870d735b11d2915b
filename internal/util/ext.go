// Package util holds small, dependency-free helpers shared across the
// ingestion core: extension tables, path safety, and text shaping.
package util

import (
	"path/filepath"
	"strings"
)

var imageExtSet = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".bmp": {}, ".gif": {}, ".webp": {},
	".heic": {}, ".livp": {}, ".apng": {},
}

var videoExtSet = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".avi": {}, ".mkv": {}, ".webm": {},
}

var audioExtSet = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".flac": {}, ".ogg": {}, ".m4a": {},
}

var documentExtSet = map[string]struct{}{
	".pdf": {}, ".docx": {}, ".txt": {}, ".md": {}, ".log": {}, ".json": {},
	".csv": {}, ".xml": {}, ".yaml": {}, ".yml": {}, ".html": {}, ".htm": {},
	".ini": {}, ".cfg": {}, ".conf": {},
}

// GetFileExt returns the lowercase extension (with leading dot) of a
// file name.
func GetFileExt(fileName string) string {
	return strings.ToLower(filepath.Ext(fileName))
}

// IsImage reports whether ext is a recognized image extension.
func IsImage(ext string) bool { _, ok := imageExtSet[ext]; return ok }

// IsVideo reports whether ext is a recognized video extension.
func IsVideo(ext string) bool { _, ok := videoExtSet[ext]; return ok }

// IsAudio reports whether ext is a recognized audio extension.
func IsAudio(ext string) bool { _, ok := audioExtSet[ext]; return ok }

// IsDocument reports whether ext is a recognized text/document
// extension. Unknown extensions fall back to "text" in the
// classifier's first stage, so this is informational, not exhaustive.
func IsDocument(ext string) bool { _, ok := documentExtSet[ext]; return ok }

// IsMedia reports whether ext routes to the media branch of the
// classifier's first stage.
func IsMedia(ext string) bool {
	return IsImage(ext) || IsVideo(ext) || IsAudio(ext)
}
