// Package config centralizes every environment-driven setting the
// ingestion core reads, using plain os.Getenv calls rather than a
// config-file format: every knob here is a literal environment
// variable (see main.go for how they're wired).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds every runtime knob. Zero value is never used directly;
// call Load to apply defaults.
type Config struct {
	// Storage layer (4.E)
	LocalRootRepo string

	// Document store (4.F)
	MongoURI string
	MongoDB  string

	// Vector store (4.G)
	ChromaPersistPath    string
	ChromaNoSQLCollection string
	VectorStoreBackend   string // "chroma" | "postgres" | "" (auto)

	// Encoders (4.B)
	EnableAudio      bool
	ClipModelName    string
	ClipPretrained   string
	ModelServiceURL  string

	// Classification audit (SQL branch, disabled downstream but reported)
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// HTTP surface
	BackendHost string
	BackendPort string
	BackendURL  string
	FrontendURL string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load reads the process environment and applies defaults.
func Load() *Config {
	root := getenv("LOCAL_ROOT_REPO", "../storage")
	if !filepath.IsAbs(root) {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}

	chromaPath := getenv("CHROMA_PERSIST_PATH", "./chroma_db")
	if !filepath.IsAbs(chromaPath) {
		if abs, err := filepath.Abs(chromaPath); err == nil {
			chromaPath = abs
		}
	}

	return &Config{
		LocalRootRepo: root,

		MongoURI: getenv("MONGO_URI", ""),
		MongoDB:  getenv("MONGO_DB", "clustro"),

		ChromaPersistPath:     chromaPath,
		ChromaNoSQLCollection: getenv("CHROMA_NOSQL_COLLECTION", "nosql_graph_embeddings"),
		VectorStoreBackend:    strings.ToLower(getenv("VECTOR_STORE_BACKEND", "")),

		EnableAudio:     getbool("ENABLE_AUDIO", true),
		ClipModelName:   getenv("CLIP_MODEL_NAME", "ViT-B-32"),
		ClipPretrained:  getenv("CLIP_PRETRAINED", "openai"),
		ModelServiceURL: getenv("MODEL_SERVICE_URL", ""),

		PostgresHost:     getenv("POSTGRE_HOST", ""),
		PostgresPort:     getenv("POSTGRE_PORT", "5432"),
		PostgresUser:     getenv("POSTGRE_USER", ""),
		PostgresPassword: getenv("POSTGRE_PASSWORD", ""),
		PostgresDB:       getenv("POSTGRE_DB", ""),

		BackendHost: getenv("BACKEND_HOST", "0.0.0.0"),
		BackendPort: getenv("BACKEND_PORT", "8080"),
		BackendURL:  getenv("BACKEND_URL", "http://localhost:8080"),
		FrontendURL: getenv("FRONTEND_URL", "*"),
	}
}

// PostgresConfigured reports whether enough Postgres settings were
// supplied to attempt a connection.
func (c *Config) PostgresConfigured() bool {
	return c.PostgresHost != "" && c.PostgresUser != "" && c.PostgresDB != ""
}
