package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	apperrors "github.com/utafrali/EcommerceGo/services/review/pkg/errors"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newReview(userID, productID int64, rating int, at time.Time) *domain.Review {
	return &domain.Review{UserID: userID, ProductID: productID, Rating: rating, CreatedAt: at, UpdatedAt: at}
}

func TestSave_AssignsIncreasingIDs(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	a, err := repo.Save(ctx, newReview(1, 7, 5, t0))
	require.NoError(t, err)
	b, err := repo.Save(ctx, newReview(2, 7, 3, t0))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
}

func TestSave_DuplicatePairRejected(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	_, err := repo.Save(ctx, newReview(1, 7, 5, t0))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newReview(1, 7, 2, t0))
	assert.ErrorIs(t, err, domain.ErrDuplicateReview)

	n, err := repo.CountByProduct(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSave_ConcurrentDuplicatesOnlyOneWins(t *testing.T) {
	repo := NewReviewRepository()
	var ok atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Save(context.Background(), newReview(1, 7, 4, t0)); err == nil {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok.Load())
}

func TestSave_UpdateOnlyMutableFields(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	stored, err := repo.Save(ctx, newReview(1, 7, 5, t0))
	require.NoError(t, err)

	change := *stored
	change.Rating, change.Comment, change.UpdatedAt = 2, "changed my mind", t0.Add(time.Hour)
	change.ProductID, change.UserID, change.CreatedAt = 99, 99, t0.Add(48*time.Hour)

	updated, err := repo.Save(ctx, &change)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "changed my mind", updated.Comment)
	assert.Equal(t, int64(7), updated.ProductID)
	assert.Equal(t, int64(1), updated.UserID)
	assert.Equal(t, t0, updated.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), updated.UpdatedAt)

	missing := *stored
	missing.ID = 42
	_, err = repo.Save(ctx, &missing)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestFind_OrderedNewestFirst(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	old, _ := repo.Save(ctx, newReview(1, 7, 5, t0))
	mid, _ := repo.Save(ctx, newReview(2, 7, 4, t0.Add(time.Minute)))
	tieA, _ := repo.Save(ctx, newReview(3, 7, 3, t0.Add(2*time.Minute)))
	tieB, _ := repo.Save(ctx, newReview(4, 7, 2, t0.Add(2*time.Minute)))
	_, _ = repo.Save(ctx, newReview(1, 8, 1, t0.Add(time.Hour)))

	got, err := repo.FindByProduct(ctx, 7)
	require.NoError(t, err)
	ids := make([]int64, 0, len(got))
	for _, rv := range got {
		ids = append(ids, rv.ID)
	}
	assert.Equal(t, []int64{tieB.ID, tieA.ID, mid.ID, old.ID}, ids)

	byUser, err := repo.FindByUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, int64(8), byUser[0].ProductID)
}

func TestFind_EmptyIsNotNil(t *testing.T) {
	repo := NewReviewRepository()
	got, err := repo.FindByProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLookups(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()
	stored, _ := repo.Save(ctx, newReview(3, 7, 4, t0))

	got, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err = repo.FindByUserAndProduct(ctx, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, got.ID)

	_, err = repo.FindByUserAndProduct(ctx, 3, 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	exists, _ := repo.ExistsByUserAndProduct(ctx, 3, 7)
	assert.True(t, exists)
	exists, _ = repo.ExistsByUserAndProduct(ctx, 7, 3)
	assert.False(t, exists)
}

func TestAverageRatingByProduct(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	avg, err := repo.AverageRatingByProduct(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, avg)

	_, _ = repo.Save(ctx, newReview(1, 7, 5, t0))
	_, _ = repo.Save(ctx, newReview(2, 7, 4, t0))
	_, _ = repo.Save(ctx, newReview(3, 7, 4, t0))

	avg, err = repo.AverageRatingByProduct(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 13.0/3.0, *avg, 1e-9)
}

func TestDelete_FreesPairAndSecondDeleteNotFound(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()
	stored, _ := repo.Save(ctx, newReview(3, 7, 4, t0))

	require.NoError(t, repo.Delete(ctx, stored))
	assert.ErrorIs(t, repo.Delete(ctx, stored), apperrors.ErrNotFound)

	again, err := repo.Save(ctx, newReview(3, 7, 5, t0))
	require.NoError(t, err)
	assert.NotEqual(t, stored.ID, again.ID)
}
