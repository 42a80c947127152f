package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"

	"github.com/AndriiEagle/eaa-chatbot-sub002/config"
	"github.com/AndriiEagle/eaa-chatbot-sub002/db"
	"github.com/AndriiEagle/eaa-chatbot-sub002/handlers"
	"github.com/AndriiEagle/eaa-chatbot-sub002/logging"
	"github.com/AndriiEagle/eaa-chatbot-sub002/server"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/agent_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/chat_store"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/composer"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/embedding_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/llm_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/orchestrator"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/rag_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/result_cache"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/search_service"
	"github.com/AndriiEagle/eaa-chatbot-sub002/services/transcription_service"
)

func main() {
	cfg := config.Load()

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Process-wide caches and provider clients, constructed once and passed
	// by reference.
	embeddingCache := result_cache.New(cfg.EmbeddingCacheSize, cfg.CacheTTL)
	searchCache := result_cache.New(cfg.SearchCacheSize, cfg.CacheTTL)

	chatService := llm_service.NewOpenAIService(logger, cfg.OpenAIAPIKey, cfg.ChatModel)
	embedder := embedding_service.New(logger, cfg.OpenAIAPIKey, cfg.EmbeddingModel, embeddingCache)
	searcher := search_service.New(search_service.NewPgMatcher(pool, logger), searchCache, logger)
	answerComposer := composer.New(chatService, logger)

	store := chat_store.New(pool, logger)
	orch := orchestrator.New(embedder, searcher, answerComposer, store, logger)

	suggester := agent_service.NewSuggestionService(chatService, logger)
	factExtractor := agent_service.NewFactExtractor(chatService, store, logger)
	explainer := agent_service.NewTermExplainer(chatService, logger)

	var notifier agent_service.Notifier
	if cfg.TwilioAccountSID != "" && cfg.EscalationPhone != "" {
		notifier = agent_service.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber, cfg.EscalationPhone, logger)
	}
	detector := agent_service.NewFrustrationDetector(chatService, notifier, cfg.FrustrationCutoff, logger)

	transcriber := transcription_service.New(logger, cfg.OpenAIAPIKey, cfg.WhisperModel)

	processor := rag_service.NewProcessor(pool, embedder, logger)
	indexManager := rag_service.NewIndexManager(pool, logger)
	fetcher := rag_service.NewWebPageFetcher(logger)

	defaults := handlers.AskDefaults{
		DatasetID:           cfg.DefaultDatasetID,
		SimilarityThreshold: cfg.SimilarityThreshold,
		MaxChunks:           cfg.MaxChunks,
	}

	r := server.SetupRoutes(server.Handlers{
		Ask: handlers.NewAskHandler(orch, store, factExtractor, suggester, defaults, logger),
		Config: handlers.NewConfigHandler(handlers.ConfigInfo{
			Environment:         cfg.Environment,
			ChatModel:           cfg.ChatModel,
			EmbeddingModel:      cfg.EmbeddingModel,
			WhisperModel:        cfg.WhisperModel,
			DefaultDatasetID:    cfg.DefaultDatasetID,
			SimilarityThreshold: cfg.SimilarityThreshold,
			MaxChunks:           cfg.MaxChunks,
		}),
		Welcome:    handlers.NewWelcomeHandler(store, suggester, logger),
		Whisper:    handlers.NewWhisperHandler(transcriber, logger),
		Session:    handlers.NewSessionHandler(store, logger),
		Agent:      handlers.NewAgentHandler(detector, explainer, store, logger),
		Suggestion: handlers.NewSuggestionHandler(suggester, store, logger),
		Upload:     handlers.NewUploadHandler(processor, indexManager, fetcher, cfg.DefaultDatasetID, logger),
	})
	n := setupNegroni(r)

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg.Domains, "certs")
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 180 * time.Second,
		}
		logger.Info("Starting development server",
			slog.String("addr", srv.Addr))
		server.ServeDevelopment(srv)
	}
}

func setupNegroni(r *mux.Router) *negroni.Negroni {
	n := negroni.New()

	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())

	n.UseHandler(r)
	return n
}

func initLogger(cfg config.Config) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Environment == "development" {
		level = slog.LevelDebug
	}

	handler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{Level: level})
	if err != nil {
		return nil, err
	}
	return slog.New(handler), nil
}
