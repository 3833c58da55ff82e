package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Pavankumar06T/justice-legal-chatbot/internal/config"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core"
	db "github.com/Pavankumar06T/justice-legal-chatbot/internal/core/database"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/ingestion_engine"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/llm"
	objectclient "github.com/Pavankumar06T/justice-legal-chatbot/internal/core/object-client"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/prompt"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/core/retriever"
	"github.com/Pavankumar06T/justice-legal-chatbot/internal/services"
)

// App holds the wired service graph. Every collaborator is constructed here
// and injected; nothing reaches for process-global state.
type App struct {
	DBClient core.DbClient
	Ingestor ingestion_engine.Ingestor
	Server   *Server

	log *zap.SugaredLogger
}

func NewApp(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("object client initialized and ready")

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the embedder: %w", err)
	}

	generator, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the generator: %w", err)
	}

	translator, err := llm.NewGeminiTranslator(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the translator: %w", err)
	}

	ingCfg := &ingestion_engine.IngestConfig{
		TargetTokens:  500,
		OverlapTokens: 50,
		BatchSize:     16,
	}
	extractor := ingestion_engine.NewDocconvExtractor(false)
	ingestor := ingestion_engine.NewCorpusIngestor(dbClient, objClient, embedder, extractor, ingCfg, log)
	ingestor.Start(ctx, 2)

	authService := services.NewAuthService(dbClient, cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	chatService := services.NewChatService(
		dbClient,
		retriever.NewPgvectorRetriever(dbClient, embedder),
		prompt.NewComposer(),
		generator,
		translator,
		cfg.RetrieveK,
		log,
	)

	server := NewServer(cfg, authService, chatService, dbClient, objClient, ingestor, log)

	return &App{
		DBClient: dbClient,
		Ingestor: ingestor,
		Server:   server,
		log:      log,
	}, nil
}

func (a *App) Close() {
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
