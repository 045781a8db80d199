package event

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/services/review/internal/domain"
	pkgkafka "github.com/utafrali/EcommerceGo/services/review/pkg/kafka"
	"github.com/utafrali/EcommerceGo/services/review/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	return m.Called(ctx, topic, event).Error(0)
}

func newTestProducer(pub *mockPublisher) *Producer {
	return NewProducer(pub, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

var review = &domain.Review{ID: 42, ProductID: 7, UserID: 3, Rating: 5, Comment: "great"}

func TestTopics(t *testing.T) {
	assert.Equal(t, "ecommerce.review.created", TopicReviewCreated)
	assert.Equal(t, "ecommerce.review.updated", TopicReviewUpdated)
	assert.Equal(t, "ecommerce.review.deleted", TopicReviewDeleted)
}

func TestPublishReviewCreated(t *testing.T) {
	pub := &mockPublisher{}
	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicReviewCreated, mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, newTestProducer(pub).PublishReviewCreated(ctx, review))

	require.NotNil(t, got)
	assert.Equal(t, "42", got.AggregateID)
	assert.Equal(t, AggregateTypeReview, got.AggregateType)
	assert.Equal(t, SourceReviewService, got.Source)
	assert.Equal(t, "corr-1", got.CorrelationID)

	var data ReviewData
	require.NoError(t, got.UnmarshalData(&data))
	assert.Equal(t, ReviewData{ID: 42, ProductID: 7, UserID: 3, Rating: 5}, data)
	pub.AssertExpectations(t)
}

func TestPublishReviewUpdated(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, TopicReviewUpdated, mock.Anything).Return(nil)

	require.NoError(t, newTestProducer(pub).PublishReviewUpdated(context.Background(), review))
	pub.AssertExpectations(t)
}

func TestPublishReviewDeleted_PayloadHasNoRating(t *testing.T) {
	pub := &mockPublisher{}
	var got *pkgkafka.Event
	pub.On("Publish", mock.Anything, TopicReviewDeleted, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(2).(*pkgkafka.Event) }).
		Return(nil)

	require.NoError(t, newTestProducer(pub).PublishReviewDeleted(context.Background(), review))
	assert.JSONEq(t, `{"id":42,"product_id":7,"user_id":3}`, string(got.Data))
	assert.Empty(t, got.CorrelationID)
}

func TestPublish_Error(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, TopicReviewCreated, mock.Anything).Return(errors.New("broker down"))

	err := newTestProducer(pub).PublishReviewCreated(context.Background(), review)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish ecommerce.review.created event")
}
