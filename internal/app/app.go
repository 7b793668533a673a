// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/AccelByte/extend-creator-nudge/internal/bootstrap"
	"github.com/AccelByte/extend-creator-nudge/internal/config"
	"github.com/AccelByte/extend-creator-nudge/internal/server"
	actionBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/action/builtin"
	"github.com/AccelByte/extend-creator-nudge/pkg/handler"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	grpcServer        *server.GRPCServer
	httpServer        *server.HTTPServer
	sweeper           *pipeline.Sweeper
	stopSweeper       context.CancelFunc
	sweeperDone       chan struct{}
	redisClient       *redis.Client
	shutdownTelemetry func(context.Context) error
}

// New creates and initializes a new application instance.
//
// Components are initialized in dependency order:
//  1. Redis (state, history, scheduler, inbox)
//  2. Pipeline config (config/nudges.yaml)
//  3. External senders (WhatsApp Cloud API)
//  4. Pipeline components (signal → engine → action → manager, sweeper)
//  5. Servers (gRPC, HTTP)
//  6. Telemetry (OpenTelemetry tracing)
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// Step 1: Redis
	if err := app.initRedis(ctx); err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	// Step 2: Pipeline configuration
	pipelineConfig, err := pipeline.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline config from %s: %w", cfg.ConfigPath, err)
	}
	logrus.Infof("loaded pipeline configuration from %s", cfg.ConfigPath)

	// Step 3: Stores and senders
	redisService, err := service.NewRedisService(app.redisClient, service.RedisServiceConfig{})
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis stores: %w", err)
	}
	deps := redisService.Dependencies()

	if cfg.WhatsAppEnabled() {
		deps.WithWhatsApp(app.initWhatsAppService())
	} else {
		n := pipelineConfig.ReplaceActionType(actionBuiltin.WhatsAppTemplateActionType, actionBuiltin.LogOnlyActionType)
		logrus.Warnf("WhatsApp credentials not set, %d whatsapp action(s) switched to %s", n, actionBuiltin.LogOnlyActionType)
	}

	// Step 4: Pipeline components
	// Signal Processor → Decision Engine → Action Executor → Pipeline Manager
	processor := bootstrap.InitSignalProcessor(deps.StateStore)

	engine, err := bootstrap.InitDecisionEngine(pipelineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init decision engine: %w", err)
	}

	actionExecutor, actionRegistry, err := bootstrap.InitActionExecutor(pipelineConfig, &actionBuiltin.Dependencies{
		Inbox:    deps.Inbox,
		WhatsApp: deps.WhatsApp,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init action executor: %w", err)
	}

	pipelineManager, err := bootstrap.InitPipeline(processor, engine, actionExecutor, actionRegistry, deps, pipelineConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to init pipeline: %w", err)
	}

	app.sweeper, err = bootstrap.InitSweeper(pipelineManager, deps.Scheduler, cfg.SweepInterval, cfg.SweepBatchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to init sweeper: %w", err)
	}

	// Step 5: Servers
	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, pipelineManager)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	registry, err := server.NewMetricsRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to setup metrics: %w", err)
	}
	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, handler.NewHTTP(engine, redisService.Inbox()), registry)
	app.httpServer.AddReadinessCheck(state.NewHealthChecker(app.redisClient))
	if err := app.httpServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	// Step 6: Telemetry
	if cfg.OtelEnabled {
		shutdownTelemetry, err := server.SetupTelemetry(ctx, cfg.ServiceName, cfg.Environment, cfg.ZipkinEndpoint, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}
		app.shutdownTelemetry = shutdownTelemetry
	} else {
		logrus.Info("telemetry disabled")
	}

	logrus.Info("application initialized successfully")

	return app, nil
}

// initRedis connects to Redis, retrying the first ping with exponential backoff.
func (a *App) initRedis(ctx context.Context) error {
	client, err := state.InitRedisClient(ctx, state.RedisOptions{
		Host:       a.cfg.RedisHost,
		Port:       a.cfg.RedisPort,
		Password:   a.cfg.RedisPassword,
		DB:         a.cfg.RedisDB,
		MaxRetries: a.cfg.RedisMaxRetries,
		RetryDelay: time.Duration(a.cfg.RedisRetryDelayMs) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	a.redisClient = client
	logrus.Info("Redis client initialized")
	return nil
}

// initWhatsAppService creates the WhatsApp Cloud API client.
func (a *App) initWhatsAppService() service.WhatsAppSender {
	return service.NewWhatsAppService(
		&http.Client{Timeout: a.cfg.WhatsAppTimeout},
		service.WhatsAppServiceConfig{
			BaseURL:       a.cfg.WhatsAppAPIURL,
			Token:         a.cfg.WhatsAppToken,
			PhoneNumberID: a.cfg.WhatsAppPhoneNumberID,
			MaxRetries:    a.cfg.WhatsAppMaxRetries,
		},
	)
}
