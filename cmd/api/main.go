package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/johnquangdev/post-meeting-agent/pkg/validator"

	"github.com/johnquangdev/post-meeting-agent/internal/adapter/handler"
	"github.com/johnquangdev/post-meeting-agent/internal/adapter/repository"
	"github.com/johnquangdev/post-meeting-agent/internal/domain/repositories"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/cache"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/database"
	httpmw "github.com/johnquangdev/post-meeting-agent/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/post-meeting-agent/internal/infrastructure/storage"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/action"
	aiuse "github.com/johnquangdev/post-meeting-agent/internal/usecase/ai"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/calendar"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/duedate"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/issue"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/owner"
	"github.com/johnquangdev/post-meeting-agent/internal/usecase/pipeline"
	pkgai "github.com/johnquangdev/post-meeting-agent/pkg/ai"
	"github.com/johnquangdev/post-meeting-agent/pkg/config"
	"github.com/johnquangdev/post-meeting-agent/pkg/idgen"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	e.HideBanner = true
	e.HidePort = false

	e.Use(httpmw.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, httpmw.HeaderRequestID},
	}))

	log.Println("🔧 Initializing dependencies...")
	ctx := context.Background()

	// Run history is optional
	var runRepo repositories.MeetingRunRepository
	if cfg.Database.Enabled {
		log.Println("📦 Connecting to database...")
		db, err := database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.CloseDB(db)

		if cfg.Database.AutoMigrate {
			if cfg.Server.Environment == "production" {
				log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run cmd/migrate instead.")
			}
			if err := database.AutoMigrate(db); err != nil {
				log.Fatalf("Failed to run AutoMigrate: %v", err)
			}
		} else {
			log.Println("🔄 Skipping AutoMigrate; run cmd/migrate for schema migrations")
		}
		runRepo = repository.NewMeetingRunRepository(db)
	} else {
		log.Println("⚠️  Database disabled; meeting runs will not be stored")
	}

	// Issue lookup cache
	var store cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		memStore := cache.NewMemoryStore()
		defer memStore.Close()
		store = memStore
	}

	// Calendar mirror
	var minioClient *storage.MinIOClient
	if cfg.Storage.Enabled {
		log.Println("🪣 Connecting to MinIO...")
		minioClient, err = storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
	}

	eventLoc, err := time.LoadLocation(cfg.Calendar.EventTimezone)
	if err != nil {
		log.Fatalf("Invalid calendar time zone: %v", err)
	}
	phraseLoc, err := time.LoadLocation(cfg.DueDate.Timezone)
	if err != nil {
		log.Fatalf("Invalid due date time zone: %v", err)
	}

	ids := idgen.New()

	emitterOpts := []calendar.Option{
		calendar.WithDuration(time.Duration(cfg.Calendar.DurationMinutes) * time.Minute),
		calendar.WithIDGenerator(ids),
	}
	if minioClient != nil {
		emitterOpts = append(emitterOpts, calendar.WithMirror(minioClient))
	}
	emitter := calendar.NewEmitter(cfg.Calendar.OutputDir, logger, emitterOpts...)

	issues := issue.NewDispatcher(cfg.GitHub, logger, issue.WithCache(store, cfg.Redis.CacheTTL))
	if issues.Configured() {
		log.Printf("✅ Issue tracker: %s", cfg.GitHub.Repo)
	} else {
		log.Println("⚠️  Issue tracker running in MOCK mode (GITHUB_TOKEN or GITHUB_REPO missing)")
	}

	owners := owner.NewResolver(cfg.Owners.Map)
	orchestrator := action.NewOrchestrator(emitter, issues, owners, duedate.NewFreeText(eventLoc), logger,
		action.WithLabels(cfg.GitHub.DefaultLabels),
	)

	log.Println("🤖 Initializing AI components...")
	transcriber := pkgai.NewAssemblyAITranscriber(&cfg.Assembly, logger)
	var completer aiuse.Completer
	if llm, err := pkgai.NewLLMClient(&cfg.LLM); err != nil {
		log.Printf("⚠️  Insight extraction disabled: %v", err)
	} else {
		completer = llm
	}
	analyzer := aiuse.NewAnalyzer(completer, aiuse.NewParser(ids), logger)

	svcOpts := []pipeline.ServiceOption{pipeline.WithIDGenerator(ids)}
	if runRepo != nil {
		svcOpts = append(svcOpts, pipeline.WithRunRepository(runRepo))
	}
	meetingService := pipeline.NewService(transcriber, analyzer, orchestrator, duedate.NewResolver(phraseLoc), logger, svcOpts...)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	var artifactsHandler *handler.Artifacts
	if minioClient != nil {
		artifactsHandler = handler.NewArtifacts(minioClient, logger)
	}
	router := handler.NewRouter(cfg,
		handler.NewMeeting(meetingService, owners, filepath.Join(cfg.Server.DataDir, "meetings"), logger),
		handler.NewAction(meetingService, emitter, logger),
		artifactsHandler,
	)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
