package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	pkgkafka "github.com/utafrali/EcommerceGo/services/review/pkg/kafka"
	"github.com/utafrali/EcommerceGo/services/review/pkg/logger"
)

// Kafka topic constants for review domain events.
var (
	TopicReviewCreated = pkgkafka.Topic("review", "created")
	TopicReviewUpdated = pkgkafka.Topic("review", "updated")
	TopicReviewDeleted = pkgkafka.Topic("review", "deleted")
)

const (
	AggregateTypeReview = "review"
	SourceReviewService = "review-service"
)

// ReviewData is the payload of review.created and review.updated.
type ReviewData struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	UserID    int64 `json:"user_id"`
	Rating    int   `json:"rating"`
}

// ReviewDeletedData is the payload of review.deleted.
type ReviewDeletedData struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	UserID    int64 `json:"user_id"`
}

// Publisher is satisfied by *pkgkafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review domain events.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the review service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewCreated, review, reviewData(review))
}

// PublishReviewUpdated publishes a review.updated event.
func (p *Producer) PublishReviewUpdated(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewUpdated, review, reviewData(review))
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return p.publish(ctx, TopicReviewDeleted, review, ReviewDeletedData{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
	})
}

func reviewData(review *domain.Review) ReviewData {
	return ReviewData{
		ID:        review.ID,
		ProductID: review.ProductID,
		UserID:    review.UserID,
		Rating:    review.Rating,
	}
}

func (p *Producer) publish(ctx context.Context, topic string, review *domain.Review, data any) error {
	event, err := pkgkafka.NewEvent(topic, strconv.FormatInt(review.ID, 10), AggregateTypeReview, SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published review event",
		slog.String("topic", topic),
		slog.Int64("review_id", review.ID),
		slog.Int64("product_id", review.ProductID),
	)
	return nil
}
