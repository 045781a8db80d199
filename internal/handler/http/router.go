package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/EcommerceGo/services/review/internal/service"
	"github.com/utafrali/EcommerceGo/services/review/pkg/health"
	"github.com/utafrali/EcommerceGo/services/review/pkg/middleware"
)

// RouterConfig carries the cross-cutting settings of the HTTP surface.
type RouterConfig struct {
	ServiceName  string
	CORS         middleware.CORSConfig
	PprofCIDRs   []string
	Registerer   prometheus.Registerer
	Gatherer     prometheus.Gatherer
	RequestLimit time.Duration
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(
	reviewService *service.ReviewService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.DefaultRegisterer
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.DefaultGatherer
	}
	if cfg.RequestLimit == 0 {
		cfg.RequestLimit = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(cfg.RequestLimit))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.NewHTTPMetrics(cfg.Registerer, cfg.ServiceName).Middleware)

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	if len(cfg.PprofCIDRs) > 0 {
		middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)
	}

	// Review API endpoints
	h := NewReviewHandler(reviewService, logger)

	r.Route("/api/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/create", h.CreateReview)
		r.Put("/update/{id}", h.UpdateReview)
		r.Delete("/delete/{id}/user/{userId}", h.DeleteReview)

		r.Get("/product/{productId}", h.GetReviewsByProduct)
		r.Get("/product/{productId}/average", h.GetAverageRating)
		r.Get("/user/{userId}", h.GetReviewsByUser)
		r.Get("/user/{userId}/product/{productId}", h.GetUserReviewForProduct)
		r.Get("/{id}", h.GetReview)
	})

	return r
}
