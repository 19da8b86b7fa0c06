package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/meeting-copilot/pkg/validator"

	_ "github.com/johnquangdev/meeting-copilot/docs"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/handler"
	"github.com/johnquangdev/meeting-copilot/internal/adapter/repository"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/cache"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/calendar"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/external/oauth"
	httpmw "github.com/johnquangdev/meeting-copilot/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/media"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/observability"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/search"
	"github.com/johnquangdev/meeting-copilot/internal/infrastructure/storage"
	aiuse "github.com/johnquangdev/meeting-copilot/internal/usecase/ai"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/auth"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/invitation"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/meeting"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/memories"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/notes"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/recording"
	"github.com/johnquangdev/meeting-copilot/internal/usecase/transcript"
	pkgai "github.com/johnquangdev/meeting-copilot/pkg/ai"
	"github.com/johnquangdev/meeting-copilot/pkg/config"
	"github.com/johnquangdev/meeting-copilot/pkg/jwt"
)

// @title           Meeting Copilot API
// @version         1.0
// @description     Calendar sync, meeting capture, live transcripts and AI summaries for video meetings

// @contact.name   API Support
// @contact.email  support@infoquang.id.vn

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Set-Cookie", "Cookie"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")
	clk := clock.New()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run AutoMigrate only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Running GORM AutoMigrate (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run AutoMigrate: %v", err)
		}
	} else {
		log.Println("🔄 Skipping GORM AutoMigrate; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize Redis
	log.Println("📦 Connecting to Redis...")
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	redisStore := cache.NewRedisStore(redisClient)
	hub := cache.NewRedisHub(redisClient, logger)
	defer hub.Close()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	transcriptRepo := repository.NewTranscriptRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)
	chatRepo := repository.NewChatRepository(db)
	noteRepo := repository.NewNoteRepository(db)

	// Initialize OAuth provider
	log.Println("🔐 Initializing OAuth provider...")
	googleProvider := oauth.NewGoogleProvider(
		cfg.OAuth.Google.ClientID,
		cfg.OAuth.Google.ClientSecret,
		cfg.OAuth.Google.RedirectURL,
	)

	// Initialize state manager with Redis for CSRF protection
	log.Println("🔒 Initializing state manager...")
	stateManager := oauth.NewStateManager(redisStore)

	// Initialize JWT manager
	log.Println("🔑 Initializing JWT manager...")
	jwtManager := jwt.NewManager(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	log.Println("✨ Initializing OAuth service...")
	oauthService := auth.NewOAuthService(
		userRepo,
		sessionRepo,
		googleProvider,
		stateManager,
		jwtManager,
		logger,
	)

	// Calendar, meetings, invitations, notes
	log.Println("📅 Initializing meeting services...")
	meetingService := meeting.NewService(
		meetingRepo,
		invitationRepo,
		userRepo,
		calendar.NewClient("", logger),
		googleProvider,
		clk,
		logger,
	)
	invitationService := invitation.NewService(invitationRepo, meetingRepo, logger)
	noteService := notes.NewService(noteRepo, clk, logger)

	// Memories index
	log.Println("🔎 Opening memories index...")
	index, err := search.NewIndex(cfg.Search.IndexPath)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()
	memoryService := memories.NewService(index, meetingRepo, transcriptRepo, summaryRepo, cfg.Search.MaxHits, logger)

	// Object storage is optional; exports and chunk archiving need it
	log.Println("🗄️  Connecting to object storage...")
	var objectStore *storage.MinIOClient
	if cfg.Storage.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		objectStore, err = storage.NewMinIOClient(ctx, &cfg.Storage)
		if err == nil {
			err = objectStore.Ping(ctx)
		}
		cancel()
		if err != nil {
			logger.Warn("⚠️ Object storage unavailable, exports disabled", zap.Error(err))
			objectStore = nil
		}
	}

	// AI components
	log.Println("🤖 Initializing AI components...")
	var generator pkgai.TextGenerator
	var transcriber pkgai.Transcriber
	if cfg.AI.Enabled {
		if generator, err = pkgai.NewTextGenerator(&cfg.AI); err != nil {
			logger.Warn("⚠️ Text generation disabled", zap.Error(err))
			generator = nil
		}
		if transcriber, err = pkgai.NewTranscriber(&cfg.AI, logger); err != nil {
			logger.Warn("⚠️ Transcription disabled", zap.Error(err))
			transcriber = nil
		}
	} else {
		log.Println("⚠️  AI disabled by configuration")
	}

	aiService := aiuse.NewAIService(
		generator,
		transcriptRepo,
		summaryRepo,
		chatRepo,
		cache.NewLocker(redisStore),
		logger,
		metrics,
	)
	aiService.SetIndexer(memoryService)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if aiService.Enabled() {
		if err := aiService.StartWorkerPool(workerCtx, cfg.AI.SummaryWorkers); err != nil {
			log.Fatalf("Failed to start summary workers: %v", err)
		}
	}

	transcriptService := transcript.NewService(transcriptRepo, hub, logger, metrics)
	transcriptService.SetSummaryQueue(aiService)
	transcriptService.SetIndexer(memoryService)
	if objectStore != nil {
		transcriptService.SetObjectStore(objectStore, cfg.Storage.PresignExpiry)
	}

	// Capture sessions need a transcriber
	var recordingManager *recording.Manager
	var recordingHandler *handler.Recording
	if transcriber != nil {
		var archive recording.ChunkArchive
		if objectStore != nil {
			archive = objectStore
		}
		recordingManager = recording.NewManager(
			transcriber,
			transcriptService,
			meetingRepo,
			archive,
			func(caps recording.Capabilities) recording.IngestDevices {
				return media.NewIngestDevices(caps)
			},
			recording.ManagerConfig{
				Capture:  cfg.Capture,
				Provider: cfg.AI.TranscriptionProvider,
				Clock:    clk,
				Logger:   logger,
				Metrics:  metrics,
			},
		)
		recordingHandler = handler.NewRecordingHandler(recordingManager, logger)
	}

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	handlers := handler.Handlers{
		Auth:        handler.NewAuth(oauthService, logger),
		Meeting:     handler.NewMeetingHandler(meetingService, logger),
		Recording:   recordingHandler,
		Transcript:  handler.NewTranscriptHandler(transcriptService, clk, logger),
		AI:          handler.NewAIController(aiService, logger),
		Notes:       handler.NewNotesHandler(noteService, logger),
		Invitations: handler.NewInvitationHandler(invitationService, logger),
		Memories:    handler.NewMemoriesHandler(memoryService, logger),
	}

	// Create Echo auth middleware from existing OAuth service
	authEchoMW := httpmw.EchoAuth(oauthService)

	router := handler.NewRouter(cfg, handlers, authEchoMW, registry).WithMeetingRoles(meetingService)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	if recordingManager != nil {
		if err := recordingManager.Shutdown(ctx); err != nil {
			logger.Warn("⚠️ Recording sessions did not stop cleanly", zap.Error(err))
		}
	}
	if aiService.Enabled() {
		if err := aiService.StopWorkerPool(); err != nil {
			logger.Warn("⚠️ Summary workers did not stop cleanly", zap.Error(err))
		}
	}

	log.Println("✅ Server stopped gracefully")
}
