package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/pkg/constants"
	"equipment-booking/pkg/telegram"
	"equipment-booking/pkg/utils"
)

// BookingNotifier отправляет пользователю уведомление о событии бронирования.
// Ошибка доставки никогда не влияет на сам переход статуса: вызывающая
// сторона ее логирует и идет дальше.
type BookingNotifier interface {
	Notify(ctx context.Context, kind string, details *dto.BookingDetailsDTO) error
}

type TelegramNotifier struct {
	telegramService telegram.ServiceInterface
	logger          *zap.Logger
}

func NewTelegramNotifier(telegramService telegram.ServiceInterface, logger *zap.Logger) BookingNotifier {
	return &TelegramNotifier{telegramService: telegramService, logger: logger}
}

// ErrTelegramNotLinked - у получателя нет привязанного Telegram-чата.
var ErrTelegramNotLinked = errors.New("telegram-чат не привязан")

// Заголовки сообщений по виду события.
var notifyHeaders = map[string]string{
	constants.NotifyCreated:   "📝 Бронирование создано и ожидает подтверждения!",
	constants.NotifyApproved:  "✅ Бронирование подтверждено!",
	constants.NotifyReminder:  "⏰ Напоминание о бронировании",
	constants.NotifyCompleted: "🏁 Бронирование завершено",
	constants.NotifyCancelled: "❌ Бронирование отменено",
}

// createdApprovedHeader используется для события created, когда бронирование
// было подтверждено автоматически при создании.
const createdApprovedHeader = "✅ Бронирование создано и подтверждено!"

func messageHeader(kind string, details *dto.BookingDetailsDTO) string {
	if kind == constants.NotifyCreated && details.Status != constants.BookingStatusPending {
		return createdApprovedHeader
	}
	if header, ok := notifyHeaders[kind]; ok {
		return header
	}
	return "Бронирование #" + fmt.Sprint(details.ID)
}

func (n *TelegramNotifier) Notify(ctx context.Context, kind string, details *dto.BookingDetailsDTO) error {
	if details == nil {
		return nil
	}
	if !details.TelegramChatID.Valid || details.TelegramChatID.Int64 == 0 {
		n.logger.Info("Уведомление не отправлено: Telegram не привязан",
			zap.Uint64("userID", details.UserID),
			zap.Uint64("bookingID", details.ID),
			zap.String("kind", kind))
		return ErrTelegramNotLinked
	}

	text := FormatBookingMessage(kind, details, time.Now())
	if err := n.telegramService.SendMessage(ctx, details.TelegramChatID.Int64, text); err != nil {
		n.logger.Error("Не удалось отправить уведомление в Telegram",
			zap.Uint64("bookingID", details.ID),
			zap.String("kind", kind),
			zap.Error(err))
		return err
	}
	return nil
}

// FormatBookingMessage собирает текст уведомления: заголовок по виду события
// и блок с деталями бронирования. Для напоминаний добавляется время до начала.
func FormatBookingMessage(kind string, details *dto.BookingDetailsDTO, now time.Time) string {
	var b strings.Builder
	b.WriteString(messageHeader(kind, details))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("📦 Оборудование: %s\n", details.EquipmentName))
	b.WriteString(fmt.Sprintf("🕐 Время: %s\n", utils.FormatTimeRange(details.StartTime, details.EndTime)))
	b.WriteString(fmt.Sprintf("🏢 Подразделение: %s\n", details.DepartmentName))
	if details.Location != "" {
		b.WriteString(fmt.Sprintf("📍 Место: %s\n", details.Location))
	}
	b.WriteString(fmt.Sprintf("📝 Цель: %s", details.Purpose))

	if kind == constants.NotifyReminder {
		b.WriteString(fmt.Sprintf("\n\nБронирование начнется %s", utils.FormatTimeUntil(details.StartTime, now)))
	}
	return b.String()
}
