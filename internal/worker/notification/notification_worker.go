package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/pkg/metrics"
	"github.com/listing-microservice/internal/worker"
)

const (
	defaultBatchSize = 20
	emptyQueueSleep  = 100 * time.Millisecond // пауза если очередь пуста
	errorSleep       = time.Second
)

// Options - параметры NotificationWorker
type Options struct {
	ConsumerGroup string
	ConsumerName  string
	AdminChatID   int64
	MaxRetries    int
	BatchSize     int64
	RetryDelay    time.Duration
}

// NotificationWorker пересылает события объявлений администратору в Telegram
type NotificationWorker struct {
	*worker.BaseWorker
	streamRepo   repository.StreamRepository
	telegram     repository.TelegramRepository
	metrics      *metrics.MetricsManager
	consumerName string
	adminChatID  int64
	maxRetries   int
	batchSize    int64
	retryDelay   time.Duration
}

// NewNotificationWorker создает новый NotificationWorker
func NewNotificationWorker(
	streamRepo repository.StreamRepository,
	telegram repository.TelegramRepository,
	metricsManager *metrics.MetricsManager,
	opts Options,
	logger *zap.Logger,
) *NotificationWorker {
	consumerName := opts.ConsumerName
	if consumerName == "" {
		if hostname, err := os.Hostname(); err == nil {
			consumerName = fmt.Sprintf("%s-%d", hostname, os.Getpid())
		} else {
			consumerName = uuid.New().String()
		}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}

	return &NotificationWorker{
		BaseWorker:   worker.NewBaseWorker("listing-notifications", opts.ConsumerGroup, logger),
		streamRepo:   streamRepo,
		telegram:     telegram,
		metrics:      metricsManager,
		consumerName: consumerName,
		adminChatID:  opts.AdminChatID,
		maxRetries:   opts.MaxRetries,
		batchSize:    opts.BatchSize,
		retryDelay:   opts.RetryDelay,
	}
}

// Start запускает воркер
func (w *NotificationWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting NotificationWorker",
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName),
		zap.Int64("batch_size", w.batchSize))

	if w.adminChatID == 0 {
		logger.Warn("TELEGRAM_ADMIN_CHAT_ID is not set, events will be acknowledged without delivery")
	}

	if err := w.streamRepo.CreateConsumerGroup(ctx, domain.StreamListingEvents, w.ConsumerGroup()); err != nil {
		logger.Error("Failed to create consumer group", zap.Error(err))
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		processed, err := w.ProcessBatch(ctx)
		if err != nil {
			logger.Error("Failed to process batch", zap.Error(err))
			w.Sleep(ctx, errorSleep)
			continue
		}
		if processed == 0 {
			w.Sleep(ctx, emptyQueueSleep)
		}
	}
}

// ProcessBatch reads one batch, delivers it and acknowledges every message.
// Returns the number of messages read.
func (w *NotificationWorker) ProcessBatch(ctx context.Context) (int, error) {
	logger := w.Logger()

	messages, err := w.streamRepo.ConsumeBatch(ctx, domain.StreamListingEvents, w.ConsumerGroup(), w.consumerName, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to consume batch: %w", err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)

		var event domain.ListingEvent
		if err := json.Unmarshal([]byte(msg.Data), &event); err != nil || event.Type == "" {
			// ack битое сообщение чтобы не застревало
			logger.Warn("Failed to parse message, skipping", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		w.deliver(ctx, msg.ID, event)
	}

	if err := w.streamRepo.AckMessages(ctx, domain.StreamListingEvents, w.ConsumerGroup(), ids); err != nil {
		// не критично - сообщения будут переобработаны
		logger.Error("Failed to ack messages", zap.Error(err))
	}

	logger.Debug("Batch processed", zap.Int("messages", len(messages)))
	return len(messages), nil
}

func (w *NotificationWorker) deliver(ctx context.Context, messageID string, event domain.ListingEvent) {
	if w.adminChatID == 0 {
		return
	}

	out := domain.OutgoingMessage{ChatID: w.adminChatID, Text: FormatEvent(event)}

	var err error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 && !w.Sleep(ctx, w.retryDelay*time.Duration(attempt)) {
			break
		}
		if err = w.telegram.SendMessage(ctx, out); err == nil {
			w.metrics.NotificationSent(string(event.Type), true)
			return
		}
		w.Logger().Warn("Telegram delivery failed",
			zap.String("message_id", messageID),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	w.metrics.NotificationSent(string(event.Type), false)
	w.Logger().Error("Dropping notification after retries",
		zap.String("message_id", messageID),
		zap.String("type", string(event.Type)),
		zap.Int64("listing_id", event.ListingID),
		zap.Error(err))
}
