package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/aarambhveda/counselor/internal/ai"
	"github.com/aarambhveda/counselor/internal/catalog"
	"github.com/aarambhveda/counselor/internal/config"
	"github.com/aarambhveda/counselor/internal/functions"
	"github.com/aarambhveda/counselor/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router wires the HTTP handlers onto a chi mux
type Router struct {
	handler      *Handler
	tokenHandler *TokenHandler
	config       *config.Config
	logger       *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(catalogService *catalog.Service, provider ai.SignedURLProvider, issuances IssuanceStore, cfg *config.Config, log *logger.Logger) *Router {
	limiter := newClientLimiter(cfg.RateLimit.TokenRequestsPerMinute, cfg.RateLimit.TokenBurst, 10*time.Minute)
	return &Router{
		handler:      NewHandler(catalogService, issuances, log),
		tokenHandler: NewTokenHandler(provider, issuances, limiter, log),
		config:       cfg,
		logger:       log.Named("api-router"),
	}
}

// Routes builds the route tree
func (rt *Router) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(rt.logger))

	if origins := rt.config.Server.CORSAllowedOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "apikey", "x-client-info"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Get("/health", rt.handler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/colleges", rt.handler.ListColleges)
		r.Get("/colleges/top", rt.handler.TopColleges)
		r.Get("/colleges/{id}", rt.handler.GetCollege)
		r.Get("/compare", rt.handler.CompareColleges)
		r.Get("/courses", rt.handler.ListCourses)
		r.Get("/exams", rt.handler.ListExams)
		r.Get("/filters", rt.handler.GetFilters)

		if token := rt.config.Server.AdminToken; token != "" {
			r.Route("/admin", func(r chi.Router) {
				r.Use(requireBearer(token, rt.logger))
				r.Get("/token-issuances", rt.handler.ListTokenIssuances)
			})
		} else {
			rt.logger.Info("Admin routes disabled; no admin token configured")
		}
	})

	r.Route("/functions/v1", func(r chi.Router) {
		r.Post("/"+functions.TokenFunction, rt.tokenHandler.ServeHTTP)
		r.Get("/"+functions.TokenFunction, rt.tokenHandler.ServeHTTP)
	})

	if dir := rt.config.Server.StaticFilesDir; dir != "" {
		r.NotFound(NewStaticFileHandler(dir, rt.logger).ServeHTTP)
	}

	return r
}

// requireBearer rejects requests without the configured bearer token
func requireBearer(token string, log *logger.Logger) func(http.Handler) http.Handler {
	want := []byte("Bearer " + token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				log.Warn("Rejected admin request",
					logger.String("path", r.URL.Path),
					logger.String("remote", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("HTTP request",
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", ww.Status()),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(start)),
				logger.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
