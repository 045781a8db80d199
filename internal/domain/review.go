package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

var (
	// ErrDuplicateReview means the user already reviewed the product.
	ErrDuplicateReview = errors.New("duplicate review")
	// ErrInvalidRating means the rating is outside [MinRating, MaxRating].
	ErrInvalidRating = errors.New("invalid rating")
	// ErrStoreFailure marks an unexpected persistence error.
	ErrStoreFailure = errors.New("store failure")
)

// Review is a user's rating and comment on a product. A user has at most one
// review per product.
type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"productId"`
	UserID    int64     `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AverageRating summarises the reviews of one product.
type AverageRating struct {
	ProductID     int64   `json:"productId"`
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int64   `json:"totalReviews"`
}

// ValidRating reports whether rating is within [MinRating, MaxRating].
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// ValidComment reports whether comment fits MaxCommentLength characters.
func ValidComment(comment string) bool {
	return utf8.RuneCountInString(comment) <= MaxCommentLength
}

// IsOwner reports whether the caller authored the review.
func IsOwner(storedUserID, callerUserID int64) bool {
	return storedUserID == callerUserID
}
