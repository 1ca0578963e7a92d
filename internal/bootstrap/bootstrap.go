package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anishkhadka/vaultflex/internal/config"
	"github.com/anishkhadka/vaultflex/internal/core/ports"
	"github.com/anishkhadka/vaultflex/internal/core/usecase"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/chunking"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/extractor"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/graph/neo4j"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/ledger/jsonfile"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/llm/ollama"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/queue/nats"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/repository/postgres"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/resilience"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/storage/localfs"
	"github.com/anishkhadka/vaultflex/internal/infrastructure/vector/qdrant"
)

// App wires every adapter behind the inbound ports. Both binaries share this
// composition; the api serves HTTP, the worker consumes the queue.
type App struct {
	Config config.Config
	Log    *slog.Logger

	Queue ports.MessageQueue

	ScopeUC    ports.ScopeManager
	IngestUC   ports.DocumentIngestor
	ProcessUC  ports.DocumentProcessor
	Documents  ports.DocumentReader
	RetrieveUC ports.EvidenceRetriever

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	scopeRepo := postgres.NewScopeRepository(db)
	docRepo := postgres.NewDocumentRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	ledger, err := jsonfile.New(cfg.LedgerPath, log)
	if err != nil {
		return nil, fmt.Errorf("init hash ledger: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		Logger:             log,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, executor)
	embedder := ollama.NewEmbedder(ollamaClient)
	tripleExtractor := ollama.NewTripleExtractor(ollamaClient)
	entityRecognizer := ollama.NewEntityRecognizer(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorIndex := qdrant.New(cfg.QdrantURL, cfg.QdrantCollectionPrefix)

	graphIndex, err := neo4j.New(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return nil, fmt.Errorf("init graph index: %w", err)
	}

	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	textExtractor := extractor.New()

	locks := usecase.NewScopeLocks()

	scopeUC := usecase.NewScopeUseCase(scopeRepo, docRepo, ledger, storage, storage, vectorIndex, graphIndex, locks, log)
	ingestUC := usecase.NewIngestDocumentUseCase(scopeRepo, docRepo, ledger, storage, queue, locks, log)
	processUC := usecase.NewProcessDocumentUseCase(
		docRepo, storage, storage, textExtractor, chunker,
		embedder, vectorIndex, tripleExtractor, graphIndex, locks, log,
	)
	retrieveUC := usecase.NewRetrieveUseCase(
		scopeRepo, embedder, entityRecognizer, vectorIndex, graphIndex, generator, locks,
		usecase.FusionConfig{
			VectorK:       cfg.RetrievalVectorK,
			MaxHops:       cfg.RetrievalMaxHops,
			MaxEvidence:   cfg.RetrievalMaxEvidence,
			SourceTimeout: time.Duration(cfg.RetrievalSourceTimeoutSeconds) * time.Second,
		},
		log,
	)

	return &App{
		Config: cfg,
		Log:    log,

		Queue: queue,

		ScopeUC:    scopeUC,
		IngestUC:   ingestUC,
		ProcessUC:  processUC,
		Documents:  usecase.NewDocumentReadUseCase(docRepo),
		RetrieveUC: retrieveUC,

		closeFn: func() {
			queue.Close()
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = graphIndex.Close(closeCtx)
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
