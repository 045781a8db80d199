package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidRating(t *testing.T) {
	tests := []struct {
		rating int
		want   bool
	}{
		{-1, false},
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidRating(tt.rating), "rating %d", tt.rating)
	}
}

func TestValidComment(t *testing.T) {
	assert.True(t, ValidComment(""))
	assert.True(t, ValidComment(strings.Repeat("a", MaxCommentLength)))
	assert.False(t, ValidComment(strings.Repeat("a", MaxCommentLength+1)))
	// Counted in characters, not bytes.
	assert.True(t, ValidComment(strings.Repeat("ü", MaxCommentLength)))
}

func TestIsOwner(t *testing.T) {
	assert.True(t, IsOwner(3, 3))
	assert.False(t, IsOwner(3, 4))
}

func TestReview_JSON(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	raw, err := json.Marshal(Review{ID: 1, ProductID: 7, UserID: 3, Rating: 4, Comment: "solid", CreatedAt: ts, UpdatedAt: ts})
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": 1, "productId": 7, "userId": 3, "rating": 4, "comment": "solid",
		"createdAt": "2026-01-02T03:04:05Z", "updatedAt": "2026-01-02T03:04:05Z"
	}`, string(raw))
}

func TestAverageRating_JSON(t *testing.T) {
	raw, err := json.Marshal(AverageRating{ProductID: 7, AverageRating: 4.5, TotalReviews: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productId": 7, "averageRating": 4.5, "totalReviews": 2}`, string(raw))
}
