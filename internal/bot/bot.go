package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/listing-microservice/internal/domain"
	"github.com/listing-microservice/internal/domain/repository"
	"github.com/listing-microservice/internal/infrastructure/listingapi"
	"github.com/listing-microservice/internal/usecase/dto"
	"github.com/listing-microservice/internal/worker"
	"github.com/listing-microservice/internal/worker/notification"
)

const (
	deepLinkPrefix     = "listing_"
	defaultPollTimeout = 30 * time.Second
	pollErrorSleep     = 3 * time.Second
)

// commands the bot answers; any other "/..." text is plain input while an
// /add session is open.
var commands = map[string]struct{}{
	"start": {}, "help": {}, "myid": {}, "add": {}, "cancel": {}, "del": {},
}

// ListingAPI - операции сервиса объявлений, доступные боту
type ListingAPI interface {
	CreateListing(ctx context.Context, req dto.CreateListingRequest) (int64, error)
	DeactivateListing(ctx context.Context, id int64) error
	SubmitEnquiry(ctx context.Context, id int64, req dto.EnquiryRequest) error
}

// Options - параметры бота
type Options struct {
	AdminUserID int64
	AdminChatID int64
	DefaultCity string
	WebappURL   string
	Langs       []string
	PollTimeout time.Duration
}

// Bot - Telegram front-end: каталог, заявки покупателей и админ-команды
type Bot struct {
	*worker.BaseWorker
	telegram    repository.TelegramRepository
	api         ListingAPI
	sessions    SessionStore
	flow        *AddFlow
	adminUserID int64
	adminChatID int64
	webappURL   string
	pollTimeout time.Duration
	offset      int64
}

// NewBot создает бота
func NewBot(
	telegram repository.TelegramRepository,
	api ListingAPI,
	sessions SessionStore,
	opts Options,
	logger *zap.Logger,
) *Bot {
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	if opts.AdminChatID == 0 {
		opts.AdminChatID = opts.AdminUserID
	}

	return &Bot{
		BaseWorker:  worker.NewBaseWorker("telegram-bot", "", logger),
		telegram:    telegram,
		api:         api,
		sessions:    sessions,
		flow:        NewAddFlow(opts.DefaultCity, opts.Langs),
		adminUserID: opts.AdminUserID,
		adminChatID: opts.AdminChatID,
		webappURL:   opts.WebappURL,
		pollTimeout: opts.PollTimeout,
	}
}

// Start запускает long polling
func (b *Bot) Start(ctx context.Context) error {
	logger := b.Logger()
	logger.Info("Starting bot", zap.Duration("poll_timeout", b.pollTimeout))

	if b.adminUserID == 0 {
		logger.Warn("TELEGRAM_ADMIN_ID is not set, admin commands are disabled")
	}

	for {
		select {
		case <-b.StopChan():
			logger.Info("Bot stopped")
			return nil
		case <-ctx.Done():
			logger.Info("Context cancelled")
			return ctx.Err()
		default:
		}

		updates, err := b.telegram.GetUpdates(ctx, b.offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error("Failed to get updates", zap.Error(err))
			b.Sleep(ctx, pollErrorSleep)
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			if err := b.HandleUpdate(ctx, u); err != nil {
				logger.Error("Failed to handle update",
					zap.Int64("update_id", u.UpdateID),
					zap.Error(err))
			}
		}
	}
}

// HandleUpdate обрабатывает одно входящее сообщение
func (b *Bot) HandleUpdate(ctx context.Context, u domain.TelegramUpdate) error {
	msg := u.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	isCommand := strings.HasPrefix(text, "/")
	if isCommand {
		cmd, args := parseCommand(text)
		if _, ok := commands[cmd]; ok {
			return b.handleCommand(ctx, msg, cmd, args)
		}
	}

	sess, err := b.sessions.Load(ctx, msg.Chat.ID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if sess == nil {
		if isCommand {
			return b.reply(ctx, msg.Chat.ID, "Неизвестная команда. Смотри /help", false)
		}
		return b.reply(ctx, msg.Chat.ID, "Нажми «🏠 Каталог» или /help.", true)
	}
	return b.advance(ctx, msg, sess, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *domain.TelegramMessage, cmd, args string) error {
	chatID := msg.Chat.ID

	switch cmd {
	case "start":
		if strings.HasPrefix(args, deepLinkPrefix) {
			return b.enquiry(ctx, msg, strings.TrimPrefix(args, deepLinkPrefix))
		}
		return b.reply(ctx, chatID,
			"Привет! Это каталог недвижимости.\n"+
				"Нажми кнопку «🏠 Каталог», чтобы открыть Mini App.\n\n"+
				"Админ-команды (только для владельца): /add /del /help /myid", true)

	case "help":
		if !b.isAdmin(msg.From) {
			return b.reply(ctx, chatID, "Команды:\n/start — каталог\n/myid — показать твой ID", false)
		}
		return b.reply(ctx, chatID,
			"Админ-команды:\n"+
				"/add — добавить объявление\n"+
				"/cancel — прервать добавление\n"+
				"/del <ID> — скрыть объявление\n"+
				"/myid — узнать свой id", false)

	case "myid":
		return b.reply(ctx, chatID,
			fmt.Sprintf("Твой Telegram ID: %d\nУкажи его в .env как TELEGRAM_ADMIN_ID", msg.From.ID), false)

	case "add":
		if !b.isAdmin(msg.From) {
			return b.reply(ctx, chatID, "⛔️ Нет доступа.", false)
		}
		sess, prompt := b.flow.Start()
		if err := b.sessions.Save(ctx, chatID, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return b.reply(ctx, chatID, prompt, false)

	case "cancel":
		sess, err := b.sessions.Load(ctx, chatID)
		if err != nil {
			return fmt.Errorf("failed to load session: %w", err)
		}
		if sess == nil {
			return b.reply(ctx, chatID, "Нечего отменять.", false)
		}
		if err := b.sessions.Delete(ctx, chatID); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return b.reply(ctx, chatID, "Ок, добавление отменено.", false)

	case "del":
		if !b.isAdmin(msg.From) {
			return b.reply(ctx, chatID, "⛔️ Нет доступа.", false)
		}
		if args == "" {
			return b.reply(ctx, chatID, "Используй: /del <ID>\nНапример: /del 3", false)
		}
		id, err := strconv.ParseInt(args, 10, 64)
		if err != nil || id <= 0 {
			return b.reply(ctx, chatID, "ID должен быть числом.", false)
		}
		if err := b.api.DeactivateListing(ctx, id); err != nil {
			return b.reply(ctx, chatID, fmt.Sprintf("❌ Ошибка: %v", err), false)
		}
		return b.reply(ctx, chatID, fmt.Sprintf("✅ Объявление %d скрыто (deactivate).", id), false)
	}
	return nil
}

func (b *Bot) advance(ctx context.Context, msg *domain.TelegramMessage, sess *Session, text string) error {
	chatID := msg.Chat.ID

	out := b.flow.Advance(sess, text)
	if !out.Done {
		if err := b.sessions.Save(ctx, chatID, sess); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return b.reply(ctx, chatID, out.Reply, false)
	}

	if err := b.sessions.Delete(ctx, chatID); err != nil {
		b.Logger().Warn("Failed to delete session", zap.Int64("chat_id", chatID), zap.Error(err))
	}

	req := out.Request
	if req.ContactTelegram == nil && msg.From.Username != "" {
		handle := "@" + msg.From.Username
		req.ContactTelegram = &handle
	}

	id, err := b.api.CreateListing(ctx, *req)
	if err != nil {
		return b.reply(ctx, chatID, fmt.Sprintf("❌ Ошибка добавления: %v", err), false)
	}
	return b.reply(ctx, chatID, fmt.Sprintf("✅ Добавлено! ID: %d\nОткрой каталог и нажми Show.", id), true)
}

// enquiry передаёт заявку через API. Если очередь событий недоступна,
// админ получает сообщение напрямую.
func (b *Bot) enquiry(ctx context.Context, msg *domain.TelegramMessage, rawID string) error {
	chatID := msg.Chat.ID

	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return b.reply(ctx, chatID, "Некорректная ссылка на объект.", true)
	}

	req := dto.EnquiryRequest{
		FromUserID:   msg.From.ID,
		FromUsername: msg.From.Username,
	}

	if err := b.api.SubmitEnquiry(ctx, id, req); err != nil {
		var apiErr *listingapi.APIError
		switch {
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound:
			return b.reply(ctx, chatID, fmt.Sprintf("Объект ID=%d не найден.", id), true)
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict:
			return b.reply(ctx, chatID, fmt.Sprintf("Объект ID=%d уже снят с публикации.", id), true)
		}

		b.Logger().Warn("Enquiry API failed, notifying admin directly",
			zap.Int64("listing_id", id),
			zap.Error(err))
		if err := b.notifyAdmin(ctx, id, req); err != nil {
			return err
		}
	}

	return b.reply(ctx, chatID,
		fmt.Sprintf("✅ Спасибо! Я передал запрос по объекту ID=%d.\nЯ скоро отвечу тебе здесь.", id), true)
}

func (b *Bot) notifyAdmin(ctx context.Context, listingID int64, req dto.EnquiryRequest) error {
	if b.adminChatID == 0 {
		return nil
	}
	event := domain.ListingEvent{
		Type:       domain.EventListingEnquiry,
		ListingID:  listingID,
		OccurredAt: time.Now().UTC(),
		Enquiry: &domain.Enquiry{
			FromUserID:   req.FromUserID,
			FromUsername: req.FromUsername,
		},
	}
	return b.telegram.SendMessage(ctx, domain.OutgoingMessage{
		ChatID: b.adminChatID,
		Text:   notification.FormatEvent(event),
	})
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string, withKeyboard bool) error {
	out := domain.OutgoingMessage{ChatID: chatID, Text: text}
	if withKeyboard {
		out.ReplyMarkup = b.keyboard()
	}
	return b.telegram.SendMessage(ctx, out)
}

func (b *Bot) keyboard() *domain.ReplyKeyboardMarkup {
	button := domain.KeyboardButton{Text: "⚠️ WEBAPP_URL не задан"}
	if b.webappURL != "" {
		button = domain.KeyboardButton{Text: "🏠 Каталог", WebApp: &domain.WebAppInfo{URL: b.webappURL}}
	}
	return &domain.ReplyKeyboardMarkup{
		Keyboard:       [][]domain.KeyboardButton{{button}},
		ResizeKeyboard: true,
	}
}

func (b *Bot) isAdmin(u *domain.TelegramUser) bool {
	return b.adminUserID != 0 && u != nil && u.ID == b.adminUserID
}

// parseCommand splits "/del@my_bot 3" into ("del", "3").
func parseCommand(text string) (string, string) {
	text = strings.TrimPrefix(text, "/")
	cmd, args, _ := strings.Cut(text, " ")
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
