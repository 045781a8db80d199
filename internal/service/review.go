package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	"github.com/utafrali/EcommerceGo/services/review/internal/repository"
	apperrors "github.com/utafrali/EcommerceGo/services/review/pkg/errors"
)

// EventPublisher emits review lifecycle events. *event.Producer implements it.
type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishReviewUpdated(ctx context.Context, review *domain.Review) error
	PublishReviewDeleted(ctx context.Context, review *domain.Review) error
}

// CreateReviewInput holds the parameters for creating a review.
type CreateReviewInput struct {
	UserID    int64
	ProductID int64
	Rating    int
	Comment   string
}

// UpdateReviewInput holds the parameters for updating a review. UserID is
// the caller and must match the review's author.
type UpdateReviewInput struct {
	UserID  int64
	Rating  int
	Comment string
}

func errDuplicateReview() error {
	return apperrors.BadRequest("DUPLICATE_REVIEW", "user has already reviewed this product", domain.ErrDuplicateReview)
}

func errInvalidRating() error {
	return apperrors.BadRequest("INVALID_RATING",
		fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating), domain.ErrInvalidRating)
}

func errCommentTooLong() error {
	return apperrors.InvalidInput(fmt.Sprintf("comment must be at most %d characters", domain.MaxCommentLength))
}

// storeFailure passes through classified store errors and wraps anything
// else as a 500 that matches domain.ErrStoreFailure.
func storeFailure(err error) error {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return err
	case errors.Is(err, domain.ErrDuplicateReview):
		return errDuplicateReview()
	default:
		return apperrors.Internal(fmt.Errorf("%w: %w", domain.ErrStoreFailure, err))
	}
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo      repository.ReviewRepository
	publisher EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a new review service. A nil publisher disables
// event publishing.
func NewReviewService(repo repository.ReviewRepository, publisher EventPublisher, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateReview stores a new review. The duplicate check runs before rating
// validation, so a repeat submission reports DUPLICATE_REVIEW whatever its
// rating.
func (s *ReviewService) CreateReview(ctx context.Context, input *CreateReviewInput) (_ *domain.Review, err error) {
	defer func() { observe("create", err) }()

	if input.UserID <= 0 {
		return nil, apperrors.InvalidInput("userId must be a positive integer")
	}
	if input.ProductID <= 0 {
		return nil, apperrors.InvalidInput("productId must be a positive integer")
	}
	if !domain.ValidComment(input.Comment) {
		return nil, errCommentTooLong()
	}

	exists, err := s.repo.ExistsByUserAndProduct(ctx, input.UserID, input.ProductID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if exists {
		return nil, errDuplicateReview()
	}
	if !domain.ValidRating(input.Rating) {
		return nil, errInvalidRating()
	}

	now := s.now()
	saved, err := s.repo.Save(ctx, &domain.Review{
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Rating:    input.Rating,
		Comment:   input.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, storeFailure(err)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.Int64("review_id", saved.ID),
		slog.Int64("product_id", saved.ProductID),
		slog.Int64("user_id", saved.UserID),
		slog.Int("rating", saved.Rating),
	)
	s.publish(ctx, "created", saved)

	return saved, nil
}

// GetReviewsByProduct returns the product's reviews, newest first.
func (s *ReviewService) GetReviewsByProduct(ctx context.Context, productID int64) (_ []domain.Review, err error) {
	defer func() { observe("list_by_product", err) }()

	reviews, err := s.repo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// GetReviewsByUser returns the user's reviews, newest first.
func (s *ReviewService) GetReviewsByUser(ctx context.Context, userID int64) (_ []domain.Review, err error) {
	defer func() { observe("list_by_user", err) }()

	reviews, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}

// GetReview returns a single review.
func (s *ReviewService) GetReview(ctx context.Context, id int64) (_ *domain.Review, err error) {
	defer func() { observe("get", err) }()

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return review, nil
}

// GetUserReviewForProduct returns the review userID wrote for productID.
func (s *ReviewService) GetUserReviewForProduct(ctx context.Context, userID, productID int64) (_ *domain.Review, err error) {
	defer func() { observe("get_by_user_and_product", err) }()

	review, err := s.repo.FindByUserAndProduct(ctx, userID, productID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return review, nil
}

// UpdateReview changes the rating and comment of a review. Ownership is
// checked before the rating, so a non-owner gets FORBIDDEN even when the
// rating is also invalid.
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID int64, input *UpdateReviewInput) (_ *domain.Review, err error) {
	defer func() { observe("update", err) }()

	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if !domain.IsOwner(review.UserID, input.UserID) {
		return nil, apperrors.Forbidden("you can only update your own reviews")
	}
	if !domain.ValidRating(input.Rating) {
		return nil, errInvalidRating()
	}
	if !domain.ValidComment(input.Comment) {
		return nil, errCommentTooLong()
	}

	review.Rating = input.Rating
	review.Comment = input.Comment
	review.UpdatedAt = s.now()

	saved, err := s.repo.Save(ctx, review)
	if err != nil {
		return nil, storeFailure(err)
	}

	s.logger.InfoContext(ctx, "review updated",
		slog.Int64("review_id", saved.ID),
		slog.Int64("product_id", saved.ProductID),
		slog.Int64("user_id", saved.UserID),
		slog.Int("rating", saved.Rating),
	)
	s.publish(ctx, "updated", saved)

	return saved, nil
}

// DeleteReview permanently removes a review owned by userID.
func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID int64) (err error) {
	defer func() { observe("delete", err) }()

	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return storeFailure(err)
	}
	if !domain.IsOwner(review.UserID, userID) {
		return apperrors.Forbidden("you can only delete your own reviews")
	}
	if err := s.repo.Delete(ctx, review); err != nil {
		return storeFailure(err)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.Int64("review_id", review.ID),
		slog.Int64("product_id", review.ProductID),
		slog.Int64("user_id", review.UserID),
	)
	s.publish(ctx, "deleted", review)

	return nil
}

// GetAverageRating returns the product's mean rating and review count. A
// product without reviews reports 0 and 0. The mean and count are read
// separately and may not reflect the same snapshot.
func (s *ReviewService) GetAverageRating(ctx context.Context, productID int64) (_ *domain.AverageRating, err error) {
	defer func() { observe("average", err) }()

	avg, err := s.repo.AverageRatingByProduct(ctx, productID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if avg == nil {
		return &domain.AverageRating{ProductID: productID}, nil
	}

	count, err := s.repo.CountByProduct(ctx, productID)
	if err != nil {
		return nil, storeFailure(err)
	}

	return &domain.AverageRating{
		ProductID:     productID,
		AverageRating: *avg,
		TotalReviews:  count,
	}, nil
}

// publish emits the lifecycle event. Failures are logged and never reach
// the caller; the review change is already committed.
func (s *ReviewService) publish(ctx context.Context, action string, review *domain.Review) {
	if s.publisher == nil {
		return
	}

	var err error
	switch action {
	case "created":
		err = s.publisher.PublishReviewCreated(ctx, review)
	case "updated":
		err = s.publisher.PublishReviewUpdated(ctx, review)
	case "deleted":
		err = s.publisher.PublishReviewDeleted(ctx, review)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review event",
			slog.String("action", action),
			slog.Int64("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}
}
