package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	sentryzerolog "github.com/getsentry/sentry-go/zerolog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"go.uber.org/fx"

	"github.com/andrasnagy-data/learning-center/internal/shared/config"
	"github.com/andrasnagy-data/learning-center/internal/shared/middleware"
)

type (
	// Server represents the HTTP server with all dependencies
	Server struct {
		server       *http.Server
		config       *config.Config
		logger       zerolog.Logger
		sentryWriter *sentryzerolog.Writer
	}

	params struct {
		fx.In

		Config        *config.Config
		Logger        zerolog.Logger
		HealthHandler http.HandlerFunc
		SentryWriter  *sentryzerolog.Writer
		Guard         *middleware.Guard
		SessionRouter chi.Router `name:"sessionRouter"`
		CourseRouter  chi.Router `name:"courseRouter"`
	}
)

func NewServer(p params) *Server {
	return &Server{
		config:       p.Config,
		logger:       p.Logger,
		sentryWriter: p.SentryWriter,
		server: &http.Server{
			Addr:              net.JoinHostPort(p.Config.Host, strconv.Itoa(p.Config.Port)),
			Handler:           NewHandler(p),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// NewHandler builds the router: shared middleware, public session pages and the guarded course pages.
func NewHandler(p params) http.Handler {
	r := chi.NewRouter()

	if p.Config.IsEnvProd() {
		// Recover only in prod
		sentryHandler := sentryhttp.New(sentryhttp.Options{Repanic: false})
		r.Use(sentryHandler.Handle)
	}

	// Middleware
	r.Use(hlog.NewHandler(p.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("url", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("HTTP request")
	}))
	r.Use(hlog.RequestIDHandler("req_id", "Request-Id"))
	// The session is process-wide: only pages served from here may call back in
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  middleware.SameOrigin,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL"},
		ExposedHeaders:   []string{"HX-Redirect", "HX-Trigger"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.RejectCrossOrigin)

	// Routes
	r.Get("/health", p.HealthHandler)

	r.With(p.Guard.Middleware).Mount("/courses", p.CourseRouter)
	r.Mount("/", p.SessionRouter)

	return r
}

func (s *Server) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: s.start,
		OnStop:  s.stop,
	})
}

// start binds the listen address before returning, so a taken port fails startup.
func (s *Server) start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.logger.Error().Err(err).Str("addr", s.server.Addr).Msg("Cannot bind listen address")
		return err
	}

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("environment", s.config.Environment).
		Str("remote", s.config.ServerBasePath).
		Bool("sentry_enabled", s.config.IsEnvProd()).
		Msg("Serving learning center client")

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server stopped unexpectedly")
		}
	}()
	return nil
}

// stop drains in-flight page requests. Sign-ins already dispatched keep running and the token
// backend is closed after this hook, so their tokens still land. Sentry is flushed last so
// shutdown errors are reported too.
func (s *Server) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	s.logger.Info().Msg("Draining page requests")
	err := s.server.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Page requests did not drain in time")
	}

	if s.config.IsEnvProd() {
		if s.sentryWriter != nil {
			s.sentryWriter.Close()
		}
		sentry.Flush(2 * time.Second)
	}

	s.logger.Info().Msg("HTTP server stopped; closing token backend next")
	return err
}
