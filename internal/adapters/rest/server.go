package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	core_ports "matjib-service/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	// запросов к модели в минуту с одного IP, 0 - без ограничения
	RecommendRateLimit int
}

type Server struct {
	httpServer *http.Server
	logger     core_ports.LoggerPort
}

func NewServer(cfg ServerConfig, listings *ListingHandlers, sessions *SessionHandlers, relay *RelayHandlers, baseLogger core_ports.LoggerPort) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           NewRouter(cfg, listings, sessions, relay, baseLogger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: baseLogger,
	}
}

// NewRouter собирает маршруты отдельно от http.Server, чтобы их можно было гонять через httptest
func NewRouter(cfg ServerConfig, listings *ListingHandlers, sessions *SessionHandlers, relay *RelayHandlers, baseLogger core_ports.LoggerPort) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP, LoggerMiddleware(baseLogger), MetricsMiddleware, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Trace-ID"},
		ExposedHeaders: []string{"X-Trace-ID"},
		MaxAge:         300,
	}))

	aiLimit := rateLimit(cfg.RecommendRateLimit)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dictionaries", listings.GetDictionaries)

		r.Route("/listings/{listingID}", func(r chi.Router) {
			r.Get("/", listings.GetListingDetails)
			r.Get("/photos", listings.GetListingPhotos)
		})
		r.Get("/tags/{tag}/listings", listings.SearchByTag)

		r.With(aiLimit).Post("/relay/recommendations", relay.Relay)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", sessions.CreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", sessions.GetSession)
				r.Post("/anchors", sessions.AddAnchors)
				r.Delete("/anchors/{name}", sessions.RemoveAnchor)
				r.Post("/search", sessions.Search)
				r.Get("/markers", sessions.Markers)
				r.With(aiLimit).Post("/recommendations", sessions.Recommend)
			})
		})
	})

	return r
}

func rateLimit(perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			WriteJSONError(w, http.StatusTooManyRequests, "Too many recommendation requests, try again later")
		}),
	)
}

// Start запускает HTTP-сервер
func (s *Server) Start() error {
	s.logger.Info("Starting REST API server", core_ports.Fields{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Error("Could not start server", err, nil)
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop корректно останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping REST API server...", nil)
	return s.httpServer.Shutdown(ctx)
}
