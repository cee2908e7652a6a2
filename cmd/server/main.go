package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	mstream "github.com/haowjy/meridian-stream-go"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"fundscope/internal/auth"
	"fundscope/internal/config"
	"fundscope/internal/handler"
	"fundscope/internal/handler/sse"
	"fundscope/internal/middleware"
	"fundscope/internal/prompts"
	"fundscope/internal/repository/postgres"
	postgresChat "fundscope/internal/repository/postgres/chat"
	chatSvc "fundscope/internal/service/chat"
	"fundscope/internal/service/chat/streaming"
	serviceLLM "fundscope/internal/service/llm"
	"fundscope/internal/service/llm/providers/anthropic"
	"fundscope/internal/service/llm/providers/lorem"
	subjectSvc "fundscope/internal/service/subject"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging. With LOG_DIR set, logs also go to a
	// timestamped file with old files pruned.
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, config.MaxLogFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier for Supabase authentication
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	subjectRepo := postgres.NewSubjectRepository(repoConfig)
	documentRepo := postgres.NewDocumentRepository(repoConfig)
	orgRepo := postgres.NewOrganizationRepository(repoConfig)
	chatRepo := postgresChat.NewChatRepository(repoConfig)
	messageRepo := postgresChat.NewMessageRepository(repoConfig)
	streamRepo := postgresChat.NewStreamRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Load custom analysis templates and build the prompt catalog
	templates, err := config.LoadAnalysisTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load analysis templates: %v", err)
	}
	catalog := prompts.NewCatalog(templates)
	if len(templates) > 0 {
		logger.Info("custom analysis templates loaded", "count", len(templates))
	}

	// Setup LLM providers. The lorem provider is always registered so
	// dev environments work without an API key.
	providerRegistry := serviceLLM.NewProviderRegistry()
	if cfg.AnthropicAPIKey != "" {
		anthropicProvider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			log.Fatalf("Failed to setup Anthropic provider: %v", err)
		}
		providerRegistry.Register(anthropicProvider)
		logger.Info("anthropic provider registered")
	} else {
		logger.Warn("ANTHROPIC_API_KEY not set, claude models unavailable")
	}
	providerRegistry.Register(lorem.NewProvider())
	if err := providerRegistry.Validate(); err != nil {
		log.Fatalf("Failed to setup LLM providers: %v", err)
	}

	// Resumable stream registry with background cleanup of finished streams
	streamRegistry := mstream.NewRegistry()
	go streamRegistry.StartCleanup(ctx)

	// Create services
	injector := chatSvc.NewDocumentContextInjector(subjectRepo, documentRepo)
	quota := chatSvc.NewTrialQuotaChecker(orgRepo, chatRepo)
	queryService := chatSvc.NewQueryService(subjectRepo, chatRepo, messageRepo, logger)
	streamingService := streaming.NewService(
		subjectRepo,
		chatRepo,
		messageRepo,
		streamRepo,
		injector,
		quota,
		catalog,
		providerRegistry,
		streamRegistry,
		cfg,
		logger,
	)
	subjectService := subjectSvc.NewService(subjectRepo, documentRepo, txManager, logger)

	// Create handlers
	sseConfig := sse.DefaultConfig()
	chatHandler := handler.NewChatHandler(streamingService, queryService, streamRegistry, sseConfig, logger)
	subjectHandler := handler.NewSubjectHandler(subjectService, logger)
	documentHandler := handler.NewDocumentHandler(subjectService, logger)
	healthHandler := handler.NewHealthHandler(pool, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", healthHandler.Check)

	// Subject routes
	mux.HandleFunc("GET /api/subjects", subjectHandler.ListSubjects)
	mux.HandleFunc("POST /api/subjects", subjectHandler.CreateSubject)
	mux.HandleFunc("GET /api/subjects/{subjectId}", subjectHandler.GetSubject)
	mux.HandleFunc("PATCH /api/subjects/{subjectId}", subjectHandler.UpdateSubject)
	mux.HandleFunc("POST /api/subjects/{subjectId}/archive", subjectHandler.ArchiveSubject)

	// Document routes
	mux.HandleFunc("GET /api/subjects/{subjectId}/documents", documentHandler.ListDocuments)
	mux.HandleFunc("POST /api/subjects/{subjectId}/documents", documentHandler.CreateDocument)

	// Chat routes
	mux.HandleFunc("POST /api/subjects/{subjectId}/chat", chatHandler.StreamChat) // SSE response
	mux.HandleFunc("GET /api/subjects/{subjectId}/chats", chatHandler.ListChats)
	mux.HandleFunc("GET /api/chats/{chatId}", chatHandler.GetChat)
	mux.HandleFunc("GET /api/chats/{chatId}/messages", chatHandler.ListMessages)

	// Streaming routes
	mux.HandleFunc("GET /api/chats/{chatId}/stream", chatHandler.ResumeStream)      // SSE resume endpoint
	mux.HandleFunc("POST /api/chats/{chatId}/interrupt", chatHandler.InterruptChat) // Cancel in-flight stream

	// Build middleware chain
	var httpHandler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	httpHandler = middleware.Auth(jwtVerifier, logger)(httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
