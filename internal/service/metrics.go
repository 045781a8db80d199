package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	apperrors "github.com/utafrali/EcommerceGo/services/review/pkg/errors"
)

// operationsTotal counts service calls by operation and outcome.
var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_operations_total",
		Help: "Total number of review service operations by result",
	},
	[]string{"operation", "result"},
)

func observe(operation string, err error) {
	operationsTotal.WithLabelValues(operation, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDuplicateReview):
		return "duplicate"
	case errors.Is(err, domain.ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
