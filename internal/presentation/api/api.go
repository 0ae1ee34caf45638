package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/configs"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/identity"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/ratelimiter"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/ws"
	friendsHandler "github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/friends"
	healthHandler "github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/health"
	profileHandler "github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/profile"
	roomsHandler "github.com/ourlittlekingdom/asocijacije/internal/presentation/handler/rooms"
)

type Application struct {
	config         configs.Config
	roomsHandler   *roomsHandler.Handler
	healthHandler  *healthHandler.Handler
	friendsHandler *friendsHandler.Handler
	profileHandler *profileHandler.Handler
	hub            *ws.Hub
	verifier       *identity.Verifier
	logger         logging.Logger
	ratelimiter    ratelimiter.Limiter
	promRegistry   *prometheus.Registry
}

func NewApplication(
	config configs.Config,
	roomsHandler *roomsHandler.Handler,
	healthHandler *healthHandler.Handler,
	friendsHandler *friendsHandler.Handler,
	profileHandler *profileHandler.Handler,
	hub *ws.Hub,
	verifier *identity.Verifier,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
	promRegistry *prometheus.Registry,
) *Application {
	return &Application{
		config:         config,
		roomsHandler:   roomsHandler,
		healthHandler:  healthHandler,
		friendsHandler: friendsHandler,
		profileHandler: profileHandler,
		hub:            hub,
		verifier:       verifier,
		logger:         logger,
		ratelimiter:    ratelimiter,
		promRegistry:   promRegistry,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(app.rateLimiterMiddleware)
	r.Use(app.enableCors)

	r.Route("/api", func(r chi.Router) {
		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", app.roomsHandler.ListOpenHandler)
			r.Get("/{code}", app.roomsHandler.GetRoomHandler)

			r.Group(func(r chi.Router) {
				r.Use(app.requireSession)
				r.Post("/", app.roomsHandler.CreateRoomHandler)
				r.Get("/mine", app.roomsHandler.MyRoomsHandler)
				r.Delete("/{code}", app.roomsHandler.DeleteRoomHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(app.requireSession)
			r.Get("/games/mine", app.roomsHandler.MyGamesHandler)
			r.Get("/profile", app.profileHandler.MeHandler)

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", app.friendsHandler.ListHandler)
				r.Get("/pending", app.friendsHandler.PendingHandler)
				r.Post("/{friendId}", app.friendsHandler.RequestHandler)
				r.Post("/{friendId}/accept", app.friendsHandler.AcceptHandler)
				r.Delete("/{friendId}", app.friendsHandler.RemoveHandler)
			})
		})

		r.Get("/health", app.healthHandler.GetHealth)
		r.Get("/healthz", app.healthHandler.GetHealth)
		r.Get("/ready", app.healthHandler.GetHealth)
		r.Get("/live", app.healthHandler.GetHealth)
	})

	// No request timeout on this route: the connection is long-lived.
	r.Get("/ws/rooms/{code}", app.hub.Attach)

	r.Handle("/metrics", promhttp.HandlerFor(app.promRegistry, promhttp.HandlerOpts{}))

	return otelhttp.NewHandler(r, "asocijacije.http")
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			logging.ErrorMessage: s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		logging.Path: srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		logging.Path: srv.Addr,
	})

	return nil
}
