package constants

// --- СТАТУСЫ БРОНИРОВАНИЙ (совпадает со значениями в БД) ---
const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusRejected  = "rejected"
)

// Статусы, которые блокируют оборудование при проверке доступности.
var BlockingStatuses = []string{
	BookingStatusApproved,
	BookingStatusActive,
}

// Финальные статусы: из них нет переходов.
var FinalBookingStatuses = []string{
	BookingStatusCompleted,
	BookingStatusCancelled,
	BookingStatusRejected,
}

func IsFinalBookingStatus(status string) bool {
	for _, s := range FinalBookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Человекочитаемые названия статусов для уведомлений и бота.
var BookingStatusTitles = map[string]string{
	BookingStatusPending:   "Ожидает подтверждения",
	BookingStatusApproved:  "Подтверждено",
	BookingStatusActive:    "Активно",
	BookingStatusCompleted: "Завершено",
	BookingStatusCancelled: "Отменено",
	BookingStatusRejected:  "Отклонено",
}
