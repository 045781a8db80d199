package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	"github.com/utafrali/EcommerceGo/services/review/internal/service"
	apperrors "github.com/utafrali/EcommerceGo/services/review/pkg/errors"
	"github.com/utafrali/EcommerceGo/services/review/pkg/httputil"
	"github.com/utafrali/EcommerceGo/services/review/pkg/validator"
)

// maxBodyBytes caps create and update request bodies.
const maxBodyBytes = 1 << 20 // 1 MB

// ReviewHandler handles HTTP requests for review endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a new review HTTP handler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CreateReviewRequest is the JSON body of POST /api/reviews/create. Rating is
// range-checked by the service after the duplicate check.
type CreateReviewRequest struct {
	UserID    int64  `json:"userId" validate:"required,gt=0"`
	ProductID int64  `json:"productId" validate:"required,gt=0"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment" validate:"max=1000"`
}

// UpdateReviewRequest is the JSON body of PUT /api/reviews/update/{id}.
// Rating is range-checked by the service after the ownership check.
type UpdateReviewRequest struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=1000"`
}

// --- Handlers ---

// CreateReview handles POST /api/reviews/create.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.CreateReview(r.Context(), &service.CreateReviewInput{
		UserID:    req.UserID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusCreated, review)
}

// GetReviewsByProduct handles GET /api/reviews/product/{productId}.
func (h *ReviewHandler) GetReviewsByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, "productId", chi.URLParam(r, "productId"), http.StatusBadRequest)
	if !ok {
		return
	}

	reviews, err := h.service.GetReviewsByProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reviews)
}

// GetReviewsByUser handles GET /api/reviews/user/{userId}.
func (h *ReviewHandler) GetReviewsByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseID(w, "userId", chi.URLParam(r, "userId"), http.StatusBadRequest)
	if !ok {
		return
	}

	reviews, err := h.service.GetReviewsByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, reviews)
}

// GetReview handles GET /api/reviews/{id}.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"), http.StatusBadRequest)
	if !ok {
		return
	}

	review, err := h.service.GetReview(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// GetUserReviewForProduct handles GET /api/reviews/user/{userId}/product/{productId}.
func (h *ReviewHandler) GetUserReviewForProduct(w http.ResponseWriter, r *http.Request) {
	userID, ok := httputil.ParseID(w, "userId", chi.URLParam(r, "userId"), http.StatusBadRequest)
	if !ok {
		return
	}
	productID, ok := httputil.ParseID(w, "productId", chi.URLParam(r, "productId"), http.StatusBadRequest)
	if !ok {
		return
	}

	review, err := h.service.GetUserReviewForProduct(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// UpdateReview handles PUT /api/reviews/update/{id}. Apart from FORBIDDEN and
// server errors, every failure the service reports is rendered as 404.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"), http.StatusNotFound)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateReviewRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	review, err := h.service.UpdateReview(r.Context(), id, &service.UpdateReviewInput{
		UserID:  req.UserID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		httputil.WriteError(w, r, asNotFound(err), h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /api/reviews/delete/{id}/user/{userId}.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, "id", chi.URLParam(r, "id"), http.StatusNotFound)
	if !ok {
		return
	}
	userID, ok := httputil.ParseID(w, "userId", chi.URLParam(r, "userId"), http.StatusNotFound)
	if !ok {
		return
	}

	if err := h.service.DeleteReview(r.Context(), userID, id); err != nil {
		httputil.WriteError(w, r, asNotFound(err), h.logger)
		return
	}

	httputil.WriteNoContent(w)
}

// GetAverageRating handles GET /api/reviews/product/{productId}/average.
func (h *ReviewHandler) GetAverageRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, "productId", chi.URLParam(r, "productId"), http.StatusBadRequest)
	if !ok {
		return
	}

	avg, err := h.service.GetAverageRating(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, http.StatusOK, avg)
}

// asNotFound re-renders client errors from update and delete as 404, keeping
// their code and message. Forbidden and server errors are left alone.
func asNotFound(err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return err
	}
	if appErr.Status >= http.StatusInternalServerError || errors.Is(err, apperrors.ErrForbidden) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidRating) || errors.Is(err, apperrors.ErrInvalidInput) || errors.Is(err, apperrors.ErrNotFound) {
		return appErr.WithStatus(http.StatusNotFound)
	}
	return err
}
