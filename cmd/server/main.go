package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ourlittlekingdom/asocijacije/internal/game"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/configs"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/identity"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/json"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/metrics"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/ratelimiter"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/tracing"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/ws"
	"github.com/ourlittlekingdom/asocijacije/internal/persistence/db"
	"github.com/ourlittlekingdom/asocijacije/internal/persistence/repository"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/api"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/friends"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/health"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/profile"
	"github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/rooms"
)

const serviceName = "asocijacije-api"

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	logger := logging.NewLogger(logging.NewDefaultConfig())
	logger.Init()
	json.UseLogger(logger)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	mongoClient, err := db.NewMongoClient(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal(logging.Mongo, logging.Startup, "mongo connection failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
	defer func() {
		_ = db.DisconnectMongo(context.Background(), mongoClient)
	}()
	database := db.GetDatabase(mongoClient, cfg.Mongo)

	profileRepository := repository.NewProfileRepository(database)
	roomRepository := repository.NewRoomRepository(database)
	participantRepository := repository.NewParticipantRepository(database)
	friendshipRepository := repository.NewFriendshipRepository(database)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	gameMetrics := metrics.New(promRegistry)

	registry := game.NewRegistry(game.Deps{
		Logger:       logger,
		Metrics:      gameMetrics,
		Profiles:     profileRepository,
		Rooms:        roomRepository,
		Participants: participantRepository,
		Settings: game.Settings{
			DefaultWinScore:     cfg.Game.DefaultWinScore,
			DefaultGuessSeconds: cfg.Game.DefaultGuessSeconds,
			DisconnectGrace:     cfg.Game.DisconnectGrace,
			QuizQuestionSeconds: cfg.Game.QuizQuestionSeconds,
			TestAccount:         cfg.Auth.TestAccount,
		},
	}, cfg.Game.EmptyRoomTTL)

	verifier := identity.NewVerifier(cfg.Auth.JWTSecret)

	hub := ws.NewHub(ws.HubOptions{
		Logger:   logger,
		Metrics:  gameMetrics,
		Registry: registry,
		Verifier: verifier,
		Profiles: profileRepository,
	})

	roomsHandler := rooms.NewHandler(registry, roomRepository, participantRepository)
	healthHandler := health.NewHandler(func(ctx context.Context) error {
		return mongoClient.Ping(ctx, nil)
	})
	friendsHandler := friends.NewHandler(friendshipRepository, profileRepository)
	profileHandler := profile.NewHandler(profileRepository)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	app := api.NewApplication(
		*cfg,
		roomsHandler,
		healthHandler,
		friendsHandler,
		profileHandler,
		hub,
		verifier,
		logger,
		rl,
		promRegistry,
	)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
