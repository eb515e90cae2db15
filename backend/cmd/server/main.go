package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gpad1234/light-octo/backend/internal/adapter"
	"github.com/gpad1234/light-octo/backend/internal/api"
	"github.com/gpad1234/light-octo/backend/internal/auth"
	"github.com/gpad1234/light-octo/backend/internal/catalog"
	"github.com/gpad1234/light-octo/backend/internal/export"
	"github.com/gpad1234/light-octo/backend/internal/graph"
	"github.com/gpad1234/light-octo/backend/internal/metrics"
	"github.com/gpad1234/light-octo/backend/pkg/config"
	"github.com/gpad1234/light-octo/backend/pkg/logger"
)

func main() {
	cfg, cfgErr := config.Load()

	env, level := "development", ""
	if cfgErr == nil {
		env, level = cfg.Env, cfg.LogLevel
	}
	if err := logger.Init(env, level); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	if cfgErr != nil {
		log.Fatal("Failed to load configuration", zap.Error(cfgErr))
	}
	log.Info("Starting knowledge graph server...", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
	log.Info("Server exited")
}

// app is the wired dependency graph of the server
type app struct {
	router  *gin.Engine
	store   *graph.Store
	closers []func(context.Context) error
}

func (a *app) close(ctx context.Context, log *zap.Logger) {
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			log.Warn("Failed to close resource", zap.Error(err))
		}
	}
}

// newApp builds the store, optional integrations and router from cfg
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &app{store: graph.NewStore()}

	var collector *metrics.Collector
	if cfg.EnableMetrics {
		collector = metrics.NewCollector("")
		a.store.SetObserver(collector)
	}

	if cfg.SeedSampleData {
		nodes, edges := catalog.BuiltinSample()
		if _, err := a.store.Seed("", nodes, edges); err != nil {
			return nil, fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	sessions, err := auth.NewSessionManager(cfg.SecretKey, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create session manager: %w", err)
	}

	deps := api.Deps{
		Store:       a.store,
		Credentials: auth.DemoAccounts(),
		Sessions:    auth.NewMiddleware(sessions, cfg.IsProduction()),
		Metrics:     collector,
		Logger:      log,
	}
	deps.SQLOptions.LegacyNodeIDReferences = cfg.SQLLegacyFKReferences
	deps.AllowedOrigins = cfg.CORSAllowedOrigins

	if cfg.OpenAIEnabled() {
		deps.LLM = adapter.NewQueryClient(adapter.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.LLMTimeout,
		})
		log.Info("OpenAI NLP feature enabled", zap.String("model", cfg.OpenAIModel))
	} else {
		log.Info("OpenAI NLP feature disabled")
	}

	if cfg.Neo4jEnabled() {
		driver, err := export.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
		if err != nil {
			// The export is optional; the editor runs without it
			log.Warn("Neo4j export disabled", zap.Error(err))
		} else {
			runner := export.NewDriverRunner(driver, "")
			deps.Exporter = export.NewExporter(runner, cfg.WriteTimeout)
			a.closers = append(a.closers, runner.Close)
			log.Info("Neo4j export enabled", zap.String("uri", cfg.Neo4jURI))
		}
	}

	a.router = api.NewServer(deps).Router()
	return a, nil
}

// run serves HTTP until ctx is cancelled, then shuts down gracefully
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background(), log)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      a.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server started", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
