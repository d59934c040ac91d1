package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"tutor/ai/internal/config"
	"tutor/ai/internal/feedback"
	"tutor/ai/internal/handlers"
	"tutor/ai/internal/jobs"
	"tutor/ai/internal/llm"
	_ "tutor/ai/internal/llm/gemini"
	_ "tutor/ai/internal/llm/openai"
	"tutor/ai/internal/metrics"
	"tutor/ai/internal/prompts"
	"tutor/ai/internal/routers"
	"tutor/ai/internal/tutor"
	"tutor/ai/internal/utils"
)

func registerRoutes(router *chi.Mux, tutorHandler *handlers.TutorHandler, feedbackHandler *handlers.FeedbackHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.TutorRoutes(router, tutorHandler, feedbackHandler)
}

func newRouter(cfg *config.Config, tutorHandler *handlers.TutorHandler, feedbackHandler *handlers.FeedbackHandler, healthHandler *handlers.HealthHandler) *chi.Mux {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		ExposedHeaders:   []string{handlers.RequestIDHeader},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, metrics.Middleware, middleware.Timeout(cfg.RequestTimeout))

	registerRoutes(router, tutorHandler, feedbackHandler, healthHandler)
	return router
}

// feedbackStack is everything needed to rate replies; all fields are nil
// when feedback is disabled.
type feedbackStack struct {
	manager  *feedback.FeedbackManager
	exporter *jobs.FeedbackExporterJob
	closers  []func()
}

func (fs *feedbackStack) Close() {
	for i := len(fs.closers) - 1; i >= 0; i-- {
		fs.closers[i]()
	}
}

// initFeedback connects the feedback database and the reply context store.
func initFeedback(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*feedbackStack, error) {
	stack := &feedbackStack{}
	if !cfg.FeedbackEnabled() {
		return stack, nil
	}

	db, err := feedback.OpenDatabase(cfg.DatabaseURL)
	if err != nil {
		return stack, err
	}
	if sqlDB, err := db.DB(); err == nil {
		stack.closers = append(stack.closers, func() { _ = sqlDB.Close() })
	}

	var store feedback.ContextStore
	if cfg.RedisURL != "" {
		redisStore, err := feedback.NewRedisStore(ctx, cfg.RedisURL, cfg.Feedback.CacheTTL)
		if err != nil {
			stack.Close()
			return &feedbackStack{}, err
		}
		stack.closers = append(stack.closers, func() { _ = redisStore.Close() })
		store = redisStore
		logger.Info("Reply contexts stored in Redis")
	} else {
		cache := feedback.NewContextCache(cfg.Feedback.CacheTTL)
		stack.closers = append(stack.closers, cache.Close)
		store = cache
		logger.Info("Reply contexts stored in memory", zap.Duration("ttl", cfg.Feedback.CacheTTL))
	}

	stack.manager = feedback.NewFeedbackManager(db, store, logger)
	stack.exporter = jobs.NewFeedbackExporterJob(stack.manager, &jobs.ExporterConfig{
		Schedule:      cfg.Feedback.ExportSchedule,
		ExportDir:     cfg.Feedback.ExportDir,
		ExportEnabled: cfg.Feedback.ExportEnabled,
	}, logger)
	return stack, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	logger, err := utils.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		zap.NewExample().Fatal("Failed to build logger", zap.Error(err))
	}
	defer logger.Sync()
	utils.SetLogger(logger)

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Environment),
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.ModelName()))

	promptManager, err := prompts.NewPromptManager()
	if err != nil {
		logger.Fatal("Failed to initialize prompt manager", zap.Error(err))
	}

	provider, err := llm.NewProvider(cfg.Provider, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	fb, err := initFeedback(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize feedback storage, feedback will be disabled", zap.Error(err))
	}
	defer fb.Close()

	var opts []tutor.Option
	healthHandler := handlers.NewHealthHandler(provider, promptManager, cfg)
	if fb.manager != nil {
		opts = append(opts, tutor.WithFeedback(fb.manager))
		healthHandler.AddCheck("feedback_db", fb.manager)
		if err := fb.exporter.Start(); err != nil {
			logger.Error("Failed to start feedback exporter job", zap.Error(err))
		}
		logger.Info("Feedback system initialized successfully")
	}

	service := tutor.NewService(promptManager, provider, logger, opts...)
	tutorHandler := handlers.NewTutorHandler(service, cfg.SupportedLanguages, logger)
	feedbackHandler := handlers.NewFeedbackHandler(fb.manager, logger)

	router := newRouter(cfg, tutorHandler, feedbackHandler, healthHandler)

	serverAddr := ":" + strconv.Itoa(cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Tutor service starting", zap.String("addr", serverAddr), zap.String("provider", service.ProviderName()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Tutor service shutting down...")

	if fb.exporter != nil {
		fb.exporter.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Tutor service exited")
}
