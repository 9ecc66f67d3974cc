package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/worker/notification"
)

// MockStreamRepository is a mock of StreamRepository
type MockStreamRepository struct {
	mock.Mock
}

func (m *MockStreamRepository) PublishListingEvent(ctx context.Context, event domain.ListingEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockStreamRepository) ConsumeBatch(ctx context.Context, stream, group, consumer string, count int64) ([]domain.StreamMessage, error) {
	args := m.Called(ctx, stream, group, consumer, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StreamMessage), args.Error(1)
}

func (m *MockStreamRepository) AckMessages(ctx context.Context, stream, group string, messageIDs []string) error {
	args := m.Called(ctx, stream, group, messageIDs)
	return args.Error(0)
}

func (m *MockStreamRepository) CreateConsumerGroup(ctx context.Context, stream, group string) error {
	args := m.Called(ctx, stream, group)
	return args.Error(0)
}

func (m *MockStreamRepository) PublishToStream(ctx context.Context, stream string, data interface{}) error {
	args := m.Called(ctx, stream, data)
	return args.Error(0)
}

// MockTelegram is a mock of TelegramRepository
type MockTelegram struct {
	mock.Mock
}

func (m *MockTelegram) SendMessage(ctx context.Context, msg domain.OutgoingMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockTelegram) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]domain.TelegramUpdate, error) {
	args := m.Called(ctx, offset, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TelegramUpdate), args.Error(1)
}

func newWorker(stream *MockStreamRepository, tg *MockTelegram, retries int) *notification.NotificationWorker {
	return notification.NewNotificationWorker(stream, tg, nil, notification.Options{
		ConsumerGroup: "test-group",
		ConsumerName:  "test-consumer",
		AdminChatID:   100,
		MaxRetries:    retries,
		BatchSize:     20,
		RetryDelay:    time.Millisecond,
	}, zap.NewNop())
}

func eventMessage(t *testing.T, id string, e domain.ListingEvent) domain.StreamMessage {
	t.Helper()
	raw, err := json.Marshal(e)
	require.NoError(t, err)
	return domain.StreamMessage{ID: id, Data: string(raw)}
}

func TestNotificationWorker_Name(t *testing.T) {
	w := newWorker(&MockStreamRepository{}, &MockTelegram{}, 0)
	assert.Equal(t, "listing-notifications", w.Name())
}

func TestNotificationWorker_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers events and acks the whole batch", func(t *testing.T) {
		stream := &MockStreamRepository{}
		tg := &MockTelegram{}
		w := newWorker(stream, tg, 0)

		enquiry := domain.ListingEvent{
			Type:      domain.EventListingEnquiry,
			ListingID: 7,
			Enquiry:   &domain.Enquiry{FromUserID: 42, FromUsername: "buyer"},
		}
		messages := []domain.StreamMessage{
			eventMessage(t, "1-0", enquiry),
			{ID: "2-0", Data: "{broken"},
		}

		stream.On("ConsumeBatch", ctx, domain.StreamListingEvents, "test-group", "test-consumer", int64(20)).Return(messages, nil).Once()
		tg.On("SendMessage", ctx, mock.MatchedBy(func(m domain.OutgoingMessage) bool {
			return m.ChatID == 100 && m.Text == "📩 Заявка от @buyer (id 42) по объекту ID=7"
		})).Return(nil).Once()
		stream.On("AckMessages", ctx, domain.StreamListingEvents, "test-group", []string{"1-0", "2-0"}).Return(nil).Once()

		n, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		tg.AssertExpectations(t)
		stream.AssertExpectations(t)
	})

	t.Run("retries then drops", func(t *testing.T) {
		stream := &MockStreamRepository{}
		tg := &MockTelegram{}
		w := newWorker(stream, tg, 2)

		msg := eventMessage(t, "3-0", domain.ListingEvent{Type: domain.EventListingCreated, ListingID: 1})
		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.StreamMessage{msg}, nil).Once()
		tg.On("SendMessage", ctx, mock.Anything).Return(errors.New("telegram down")).Times(3)
		stream.On("AckMessages", ctx, mock.Anything, mock.Anything, []string{"3-0"}).Return(nil).Once()

		n, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, n)
		tg.AssertNumberOfCalls(t, "SendMessage", 3)
	})

	t.Run("retry succeeds", func(t *testing.T) {
		stream := &MockStreamRepository{}
		tg := &MockTelegram{}
		w := newWorker(stream, tg, 3)

		msg := eventMessage(t, "4-0", domain.ListingEvent{Type: domain.EventListingDeactivated, ListingID: 2})
		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.StreamMessage{msg}, nil).Once()
		tg.On("SendMessage", ctx, mock.Anything).Return(errors.New("429")).Once()
		tg.On("SendMessage", ctx, mock.Anything).Return(nil).Once()
		stream.On("AckMessages", ctx, mock.Anything, mock.Anything, []string{"4-0"}).Return(nil).Once()

		_, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		tg.AssertNumberOfCalls(t, "SendMessage", 2)
	})

	t.Run("empty queue", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w := newWorker(stream, &MockTelegram{}, 0)

		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Once()

		n, err := w.ProcessBatch(ctx)

		require.NoError(t, err)
		assert.Zero(t, n)
		stream.AssertNotCalled(t, "AckMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("consume error", func(t *testing.T) {
		stream := &MockStreamRepository{}
		w := newWorker(stream, &MockTelegram{}, 0)

		stream.On("ConsumeBatch", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("redis down")).Once()

		_, err := w.ProcessBatch(ctx)
		assert.Error(t, err)
	})
}

func TestNotificationWorker_StartStop(t *testing.T) {
	stream := &MockStreamRepository{}
	w := newWorker(stream, &MockTelegram{}, 0)

	stream.On("CreateConsumerGroup", mock.Anything, domain.StreamListingEvents, "test-group").Return(nil).Once()
	stream.On("ConsumeBatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]domain.StreamMessage{}, nil)

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, w.Stop())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestFormatEvent(t *testing.T) {
	text := notification.FormatEvent(domain.ListingEvent{
		Type:      domain.EventListingCreated,
		ListingID: 5,
		Listing: &domain.ListingSummary{
			City:     "Varna",
			District: "Levski",
			Type:     "apartment",
			Price:    125000,
			Currency: "EUR",
			Title:    "Sea view",
		},
	})

	assert.Equal(t, "✅ Добавлено объявление ID=5\nVarna, Levski · apartment · 125000 EUR\nSea view", text)
}
