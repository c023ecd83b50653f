package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/config"
	"equipment-booking/pkg/constants"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/telegram"
	"equipment-booking/pkg/utils"
)

// TelegramBotService обрабатывает входящие апдейты бота: привязку аккаунта,
// просмотр и отмену своих бронирований.
type TelegramBotServiceInterface interface {
	HandleUpdate(ctx context.Context, update dto.TelegramUpdate) error
}

type TelegramBotService struct {
	telegramService telegram.ServiceInterface
	userRepo        repositories.UserRepositoryInterface
	bookingRepo     repositories.BookingRepositoryInterface
	bookingService  BookingServiceInterface
	cacheRepo       repositories.CacheRepositoryInterface
	cfg             config.TelegramConfig
	logger          *zap.Logger
}

func NewTelegramBotService(
	telegramService telegram.ServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	bookingRepo repositories.BookingRepositoryInterface,
	bookingService BookingServiceInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	cfg config.TelegramConfig,
	logger *zap.Logger,
) TelegramBotServiceInterface {
	return &TelegramBotService{
		telegramService: telegramService,
		userRepo:        userRepo,
		bookingRepo:     bookingRepo,
		bookingService:  bookingService,
		cacheRepo:       cacheRepo,
		cfg:             cfg,
		logger:          logger,
	}
}

const helpText = `Доступные команды:
/start <ключ> - привязать аккаунт по персональному ключу
/mybookings - ваши активные бронирования
/cancel <id> - отменить бронирование
/help - эта справка

Ключ привязки доступен в вашем профиле в веб-интерфейсе.`

func (s *TelegramBotService) HandleUpdate(ctx context.Context, update dto.TelegramUpdate) error {
	if update.CallbackQuery != nil {
		return s.handleCallback(ctx, update.CallbackQuery)
	}
	if update.Message == nil || update.Message.Text == "" {
		return nil
	}

	chatID := update.Message.Chat.ID
	if !s.allowCommand(ctx, chatID) {
		// Антиспам: команда в период паузы молча игнорируется.
		return nil
	}

	text := strings.TrimSpace(update.Message.Text)
	command, args := splitCommand(text)

	switch command {
	case "/start":
		return s.handleStart(ctx, chatID, args)
	case "/mybookings":
		return s.handleMyBookings(ctx, chatID)
	case "/cancel":
		return s.handleCancel(ctx, chatID, args)
	case "/help":
		return s.telegramService.SendMessage(ctx, chatID, helpText)
	default:
		return s.telegramService.SendMessage(ctx, chatID,
			"Неизвестная команда. Отправьте /help для списка команд.")
	}
}

func splitCommand(text string) (string, string) {
	parts := strings.SplitN(text, " ", 2)
	command := parts[0]
	// Команды вида /start@MyBot приходят из групповых чатов.
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}
	if len(parts) == 2 {
		return command, strings.TrimSpace(parts[1])
	}
	return command, ""
}

// allowCommand ставит короткую паузу между командами одного чата.
func (s *TelegramBotService) allowCommand(ctx context.Context, chatID int64) bool {
	key := fmt.Sprintf(constants.CacheKeyBotCooldown, chatID)
	ok, err := s.cacheRepo.SetNX(ctx, key, "active", s.cfg.CommandCooldown)
	if err != nil {
		s.logger.Warn("Не удалось проверить антиспам-паузу", zap.Int64("chatID", chatID), zap.Error(err))
		return true
	}
	return ok
}

func (s *TelegramBotService) handleStart(ctx context.Context, chatID int64, key string) error {
	if key == "" {
		return s.telegramService.SendMessage(ctx, chatID,
			"Отправьте /start <ключ>. Персональный ключ привязки есть в вашем профиле.")
	}

	user, err := s.userRepo.FindByTelegramKey(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.telegramService.SendMessage(ctx, chatID,
				"Ключ не найден. Проверьте его в профиле и попробуйте еще раз.")
		}
		return err
	}

	if err := s.userRepo.LinkTelegramChat(ctx, user.ID, chatID); err != nil {
		return err
	}
	s.logger.Info("Telegram привязан к аккаунту",
		zap.Uint64("userID", user.ID), zap.Int64("chatID", chatID))
	return s.telegramService.SendMessage(ctx, chatID,
		fmt.Sprintf("✅ Аккаунт %s привязан. Теперь сюда будут приходить уведомления о бронированиях.", user.Username))
}

func (s *TelegramBotService) handleMyBookings(ctx context.Context, chatID int64) error {
	user, err := s.userRepo.FindByTelegramChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.telegramService.SendMessage(ctx, chatID,
				"Аккаунт не привязан. Отправьте /start <ключ> из вашего профиля.")
		}
		return err
	}

	bookings, err := s.bookingRepo.GetUserActiveBookings(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		return s.telegramService.SendMessage(ctx, chatID, "У вас нет активных бронирований.")
	}

	var b strings.Builder
	b.WriteString("Ваши бронирования:\n")
	buttons := make([][]telegram.InlineKeyboardButton, 0, len(bookings))
	for _, booking := range bookings {
		statusTitle := booking.Status
		if title, ok := constants.BookingStatusTitles[booking.Status]; ok {
			statusTitle = title
		}
		b.WriteString(fmt.Sprintf("\n#%d %s\n🕐 %s\n%s\n",
			booking.ID, booking.EquipmentName,
			utils.FormatTimeRange(booking.StartTime, booking.EndTime), statusTitle))
		buttons = append(buttons, []telegram.InlineKeyboardButton{{
			Text:         fmt.Sprintf("❌ Отменить #%d", booking.ID),
			CallbackData: fmt.Sprintf("cancel:%d", booking.ID),
		}})
	}
	return s.telegramService.SendMessageEx(ctx, chatID, b.String(), telegram.WithKeyboard(buttons))
}

func (s *TelegramBotService) handleCancel(ctx context.Context, chatID int64, args string) error {
	bookingID, err := strconv.ParseUint(args, 10, 64)
	if err != nil || bookingID == 0 {
		return s.telegramService.SendMessage(ctx, chatID,
			"Укажите номер бронирования: /cancel <id>. Номера видны в /mybookings.")
	}
	text := s.cancelByChat(ctx, chatID, bookingID)
	return s.telegramService.SendMessage(ctx, chatID, text)
}

func (s *TelegramBotService) handleCallback(ctx context.Context, callback *dto.TelegramCallbackQuery) error {
	if callback.Message == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID

	idStr, ok := strings.CutPrefix(callback.Data, "cancel:")
	if !ok {
		return s.telegramService.AnswerCallbackQuery(ctx, callback.ID, "")
	}
	bookingID, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return s.telegramService.AnswerCallbackQuery(ctx, callback.ID, "Некорректный номер бронирования")
	}

	text := s.cancelByChat(ctx, chatID, bookingID)
	if err := s.telegramService.AnswerCallbackQuery(ctx, callback.ID, text); err != nil {
		s.logger.Warn("Не удалось ответить на callback", zap.Error(err))
	}
	return s.telegramService.SendMessage(ctx, chatID, text)
}

// cancelByChat отменяет бронирование от имени владельца чата.
// Возвращает текст ответа для пользователя.
func (s *TelegramBotService) cancelByChat(ctx context.Context, chatID int64, bookingID uint64) string {
	user, err := s.userRepo.FindByTelegramChatID(ctx, chatID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "Аккаунт не привязан. Отправьте /start <ключ> из вашего профиля."
		}
		s.logger.Error("Ошибка поиска пользователя по чату", zap.Int64("chatID", chatID), zap.Error(err))
		return "Произошла ошибка, попробуйте позже."
	}

	_, err = s.bookingService.CancelBooking(ctx, user, bookingID)
	if err != nil {
		var httpErr *apperrors.HttpError
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return fmt.Sprintf("Бронирование #%d не найдено.", bookingID)
		case errors.As(err, &httpErr):
			return httpErr.Message
		default:
			s.logger.Error("Ошибка отмены бронирования через бота",
				zap.Uint64("bookingID", bookingID), zap.Error(err))
			return "Произошла ошибка, попробуйте позже."
		}
	}
	return fmt.Sprintf("❌ Бронирование #%d отменено.", bookingID)
}
