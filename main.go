package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/RAj5517/Clustro/internal/api"
	"github.com/RAj5517/Clustro/internal/api/search"
	"github.com/RAj5517/Clustro/internal/config"
	"github.com/RAj5517/Clustro/internal/docstore"
	"github.com/RAj5517/Clustro/internal/encode"
	"github.com/RAj5517/Clustro/internal/ingest"
	"github.com/RAj5517/Clustro/internal/pipeline"
	searchcore "github.com/RAj5517/Clustro/internal/search"
	"github.com/RAj5517/Clustro/internal/service"
	"github.com/RAj5517/Clustro/internal/sqlaudit"
	"github.com/RAj5517/Clustro/internal/storage"
	"github.com/RAj5517/Clustro/internal/vectorstore"
	"github.com/RAj5517/Clustro/internal/zlog"

	"github.com/RAj5517/Clustro/internal/queue"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ingestWorkerCount is the number of distinct Coordinator instances
// run behind the ingest queue, each with its own single-concurrency
// consumer so two batches never share one coordinator/encoder pair.
const ingestWorkerCount = 3

func main() {
	production := os.Getenv("GO_ENV") == "production"
	zlog.Init(production)
	defer zlog.Sync()

	if !production {
		if err := godotenv.Load(); err != nil {
			zlog.L().Warn("no .env file loaded", zap.Error(err))
		}
		if os.Getenv("USE_CGO") == "1" {
			go func() {
				zlog.L().Info("pprof listening on localhost:6060")
				log.Println(http.ListenAndServe("localhost:6060", nil))
			}()
		}
	}

	cfg := config.Load()

	st, err := storage.New(cfg.LocalRootRepo)
	if err != nil {
		zlog.L().Fatal("failed to initialize storage root", zap.Error(err))
	}

	docs := openDocStore(cfg)
	vecs := openVectorStore(cfg)
	audit := openAudit(cfg)

	baseEncoder := encode.NewLocalEncoder(cfg.EnableAudio)
	var enc encode.Encoder = baseEncoder
	if cfg.ModelServiceURL != "" {
		enc = encode.NewHTTPEncoder(cfg.ModelServiceURL, baseEncoder)
	}

	service.RegisterAvailabilityHeartbeat("document store", docs, 30*time.Second)
	service.RegisterAvailabilityHeartbeat("vector store", vecs, 30*time.Second)

	coordinators := make([]*ingest.Coordinator, ingestWorkerCount)
	for i := range coordinators {
		coordinators[i] = ingest.New(pipeline.New(enc), st, docs, vecs, audit)
	}
	ingestQueue := queue.NewQueue()
	queue.ConsumeIngestBatches(ingestQueue, coordinators)

	searchEngine := searchcore.New(enc, docs, vecs)
	state := api.NewStateReader(docs, st)

	app := fiber.New(fiber.Config{
		BodyLimit: 100 * 1024 * 1024, // 100 MB
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowMethods: "*",
		AllowHeaders: "*",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Clustro ingestion core")
	})

	api.RegisterUploadRoutes(app, ingestQueue, state)
	api.RegisterStateRoutes(app, state)
	api.RegisterDownloadRoute(app, st)
	search.RegisterSearchRoutes(app, searchEngine)

	log.Fatal(app.Listen(fmt.Sprintf(":%s", cfg.BackendPort)))
}

// openDocStore connects to Mongo when MONGO_URI is set, falling back
// to the in-memory storeF's degrade-don't-fail contract.
func openDocStore(cfg *config.Config) docstore.Store {
	if cfg.MongoURI == "" {
		zlog.L().Info("MONGO_URI not set, using in-memory document store")
		return docstore.NewMemoryStore()
	}
	store, err := docstore.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB, "file_records")
	if err != nil {
		zlog.L().Warn("failed to connect to mongo, falling back to in-memory document store", zap.Error(err))
		return docstore.NewMemoryStore()
	}
	return store
}

// openVectorStore honors VECTOR_STORE_BACKEND when set; otherwise it
// prefers Postgres when POSTGRE_* is fully configured, then Chroma,
// then the in-memory fallback.
func openVectorStore(cfg *config.Config) vectorstore.Store {
	backend := cfg.VectorStoreBackend
	if backend == "" {
		switch {
		case cfg.PostgresConfigured():
			backend = "postgres"
		default:
			backend = "chroma"
		}
	}

	switch backend {
	case "postgres":
		store, err := vectorstore.OpenPostgres(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort)
		if err != nil {
			zlog.L().Warn("failed to open postgres vector store, falling back to chroma", zap.Error(err))
			return openChroma(cfg)
		}
		return store
	case "chroma":
		return openChroma(cfg)
	default:
		zlog.L().Info("using in-memory vector store", zap.String("backend", backend))
		return vectorstore.NewMemoryStore()
	}
}

func openChroma(cfg *config.Config) vectorstore.Store {
	store, err := vectorstore.OpenChroma(cfg.ChromaPersistPath, cfg.ChromaNoSQLCollection)
	if err != nil {
		zlog.L().Warn("failed to open chroma vector store, falling back to in-memory", zap.Error(err))
		return vectorstore.NewMemoryStore()
	}
	return store
}

// openAudit connects the classification audit trail to Postgres when
// configured; nil is a valid, no-op Log (the SQL/NoSQL
// decision is documentation, never a gating dependency).
func openAudit(cfg *config.Config) *sqlaudit.Log {
	if !cfg.PostgresConfigured() {
		return nil
	}
	audit, err := sqlaudit.Open(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort)
	if err != nil {
		zlog.L().Warn("failed to open classification audit log", zap.Error(err))
		return nil
	}
	return audit
}
