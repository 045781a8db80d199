package repository

import (
	"context"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
)

// ReviewRepository is the persistence boundary for reviews. Implementations
// enforce one review per (user, product): an insert that would break it
// returns an error matching domain.ErrDuplicateReview. Lookups of a missing
// review return an error matching apperrors.ErrNotFound.
type ReviewRepository interface {
	// FindByProduct returns the product's reviews, newest first.
	FindByProduct(ctx context.Context, productID int64) ([]domain.Review, error)

	// FindByUser returns the user's reviews, newest first.
	FindByUser(ctx context.Context, userID int64) ([]domain.Review, error)

	FindByID(ctx context.Context, id int64) (*domain.Review, error)

	FindByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.Review, error)

	ExistsByUserAndProduct(ctx context.Context, userID, productID int64) (bool, error)

	CountByProduct(ctx context.Context, productID int64) (int64, error)

	// AverageRatingByProduct returns the arithmetic mean of the product's
	// ratings, or nil when it has none.
	AverageRatingByProduct(ctx context.Context, productID int64) (*float64, error)

	// Save inserts the review when its ID is zero and otherwise updates its
	// rating, comment and updated_at. It returns the persisted state.
	Save(ctx context.Context, review *domain.Review) (*domain.Review, error)

	Delete(ctx context.Context, review *domain.Review) error
}
