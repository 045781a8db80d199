package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	"github.com/utafrali/EcommerceGo/services/review/internal/repository"
	"github.com/utafrali/EcommerceGo/services/review/pkg/database"
	apperrors "github.com/utafrali/EcommerceGo/services/review/pkg/errors"
)

const reviewColumns = `id, product_id, user_id, rating, comment, created_at, updated_at`

// UserProductConstraint is the unique constraint on (user_id, product_id).
const UserProductConstraint = "reviews_user_id_product_id_key"

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

// ReviewRepository implements repository.ReviewRepository on PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// FindByProduct returns every review of productID, newest first.
func (r *ReviewRepository) FindByProduct(ctx context.Context, productID int64) (_ []domain.Review, err error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC`

	ctx, end := database.TraceQuery(ctx, "FindReviewsByProduct", query)
	defer func() { end(err) }()

	return r.list(ctx, query, productID)
}

// FindByUser returns every review written by userID, newest first.
func (r *ReviewRepository) FindByUser(ctx context.Context, userID int64) (_ []domain.Review, err error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	ctx, end := database.TraceQuery(ctx, "FindReviewsByUser", query)
	defer func() { end(err) }()

	return r.list(ctx, query, userID)
}

// FindByID retrieves a review by its ID.
func (r *ReviewRepository) FindByID(ctx context.Context, id int64) (_ *domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "FindReviewByID", query)
	defer func() { end(err) }()

	rv, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rv, nil
}

// FindByUserAndProduct retrieves the review userID wrote for productID.
func (r *ReviewRepository) FindByUserAndProduct(ctx context.Context, userID, productID int64) (_ *domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1 AND product_id = $2`

	ctx, end := database.TraceQuery(ctx, "FindReviewByUserAndProduct", query)
	defer func() { end(err) }()

	rv, err := scanReview(r.pool.QueryRow(ctx, query, userID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundWithMessage(
				fmt.Sprintf("review by user %d for product %d not found", userID, productID))
		}
		return nil, fmt.Errorf("get review by user and product: %w", err)
	}
	return rv, nil
}

// ExistsByUserAndProduct reports whether userID has reviewed productID.
func (r *ReviewRepository) ExistsByUserAndProduct(ctx context.Context, userID, productID int64) (_ bool, err error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	ctx, end := database.TraceQuery(ctx, "ExistsReviewByUserAndProduct", query)
	defer func() { end(err) }()

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review exists: %w", err)
	}
	return exists, nil
}

// CountByProduct returns the number of reviews of productID.
func (r *ReviewRepository) CountByProduct(ctx context.Context, productID int64) (_ int64, err error) {
	query := `SELECT COUNT(*) FROM reviews WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "CountReviewsByProduct", query)
	defer func() { end(err) }()

	var count int64
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// AverageRatingByProduct returns the mean rating of productID, or nil when
// the product has no reviews.
func (r *ReviewRepository) AverageRatingByProduct(ctx context.Context, productID int64) (_ *float64, err error) {
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "AverageRatingByProduct", query)
	defer func() { end(err) }()

	var (
		avg   float64
		count int64
	)
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&avg, &count); err != nil {
		return nil, fmt.Errorf("average rating: %w", err)
	}
	if count == 0 {
		return nil, nil
	}
	return &avg, nil
}

// Save inserts a new review when review.ID is zero and otherwise updates the
// stored rating, comment and updated_at.
func (r *ReviewRepository) Save(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review.ID == 0 {
		return r.insert(ctx, review)
	}
	return r.update(ctx, review)
}

func (r *ReviewRepository) insert(ctx context.Context, review *domain.Review) (_ *domain.Review, err error) {
	query := `
		INSERT INTO reviews (product_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + reviewColumns

	ctx, end := database.TraceQuery(ctx, "InsertReview", query)
	defer func() { end(err) }()

	saved, err := scanReview(r.pool.QueryRow(ctx, query,
		review.ProductID,
		review.UserID,
		review.Rating,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	))
	if err != nil {
		if database.IsUniqueViolation(err, UserProductConstraint) {
			return nil, fmt.Errorf("insert review: %w", domain.ErrDuplicateReview)
		}
		return nil, fmt.Errorf("insert review: %w", err)
	}
	return saved, nil
}

func (r *ReviewRepository) update(ctx context.Context, review *domain.Review) (_ *domain.Review, err error) {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + reviewColumns

	ctx, end := database.TraceQuery(ctx, "UpdateReview", query)
	defer func() { end(err) }()

	saved, err := scanReview(r.pool.QueryRow(ctx, query,
		review.ID,
		review.Rating,
		review.Comment,
		review.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", review.ID)
		}
		return nil, fmt.Errorf("update review: %w", err)
	}
	return saved, nil
}

// Delete removes the review permanently.
func (r *ReviewRepository) Delete(ctx context.Context, review *domain.Review) (err error) {
	query := `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteReview", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query, review.ID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}
	return nil
}

func (r *ReviewRepository) list(ctx context.Context, query string, arg int64) ([]domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	if err := row.Scan(
		&rv.ID,
		&rv.ProductID,
		&rv.UserID,
		&rv.Rating,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rv, nil
}
