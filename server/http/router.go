package serverhttp

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	cmpHnd "partcompare-service/internal/compare/handler"
	"partcompare-service/internal/config"
	"partcompare-service/internal/middleware"
	"partcompare-service/server/http/handlers"
)

func NewRouter(cfg config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// порядок важен: recover -> requestID -> logging -> cors -> limit
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))
	r.Use(middleware.LimitBytes(int64(cfg.MaxUploadMB) * 1024 * 1024))

	r.Get("/health", handlers.Health)

	r.With(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)).
		Post("/compare", cmpHnd.Compare(cfg, logger))

	return r
}
