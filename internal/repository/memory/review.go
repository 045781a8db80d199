// Package memory is an in-process ReviewRepository for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	"github.com/utafrali/EcommerceGo/services/review/internal/repository"
	apperrors "github.com/utafrali/EcommerceGo/services/review/pkg/errors"
)

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

type userProduct struct {
	userID, productID int64
}

// ReviewRepository keeps reviews in a map guarded by a RWMutex. The
// (user, product) index is checked and updated under the write lock, so two
// concurrent inserts for the same pair cannot both succeed.
type ReviewRepository struct {
	mu      sync.RWMutex
	nextID  int64
	reviews map[int64]domain.Review
	byPair  map[userProduct]int64
}

// NewReviewRepository returns an empty store.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[int64]domain.Review),
		byPair:  make(map[userProduct]int64),
	}
}

func (r *ReviewRepository) FindByProduct(_ context.Context, productID int64) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool { return rv.ProductID == productID }), nil
}

func (r *ReviewRepository) FindByUser(_ context.Context, userID int64) ([]domain.Review, error) {
	return r.filter(func(rv domain.Review) bool { return rv.UserID == userID }), nil
}

func (r *ReviewRepository) FindByID(_ context.Context, id int64) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rv, ok := r.reviews[id]
	if !ok {
		return nil, apperrors.NotFound("review", id)
	}
	return &rv, nil
}

func (r *ReviewRepository) FindByUserAndProduct(_ context.Context, userID, productID int64) (*domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byPair[userProduct{userID, productID}]
	if !ok {
		return nil, apperrors.NotFoundWithMessage(
			fmt.Sprintf("review by user %d for product %d not found", userID, productID))
	}
	rv := r.reviews[id]
	return &rv, nil
}

func (r *ReviewRepository) ExistsByUserAndProduct(_ context.Context, userID, productID int64) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byPair[userProduct{userID, productID}]
	return ok, nil
}

func (r *ReviewRepository) CountByProduct(_ context.Context, productID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (r *ReviewRepository) AverageRatingByProduct(_ context.Context, productID int64) (*float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum, n int
	for _, rv := range r.reviews {
		if rv.ProductID == productID {
			sum += rv.Rating
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (r *ReviewRepository) Save(_ context.Context, review *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if review.ID == 0 {
		key := userProduct{review.UserID, review.ProductID}
		if _, exists := r.byPair[key]; exists {
			return nil, fmt.Errorf("insert review: %w", domain.ErrDuplicateReview)
		}
		r.nextID++
		stored := *review
		stored.ID = r.nextID
		r.reviews[stored.ID] = stored
		r.byPair[key] = stored.ID
		return &stored, nil
	}

	stored, ok := r.reviews[review.ID]
	if !ok {
		return nil, apperrors.NotFound("review", review.ID)
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	stored.UpdatedAt = review.UpdatedAt
	r.reviews[stored.ID] = stored
	return &stored, nil
}

func (r *ReviewRepository) Delete(_ context.Context, review *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.reviews[review.ID]
	if !ok {
		return apperrors.NotFound("review", review.ID)
	}
	delete(r.reviews, stored.ID)
	delete(r.byPair, userProduct{stored.UserID, stored.ProductID})
	return nil
}

// filter returns matching reviews ordered by created_at then id, both descending.
func (r *ReviewRepository) filter(match func(domain.Review) bool) []domain.Review {
	r.mu.RLock()
	out := []domain.Review{}
	for _, rv := range r.reviews {
		if match(rv) {
			out = append(out, rv)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
