package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"equipment-booking/pkg/types"
)

// Booking никогда не удаляется - только переводится между статусами,
// история остается по status + approved_at/created_at.
type Booking struct {
	ID          uint64    `json:"id" db:"id"`
	UserID      uint64    `json:"user_id" db:"user_id"`
	EquipmentID uint64    `json:"equipment_id" db:"equipment_id"`
	StartTime   time.Time `json:"start_time" db:"start_time"`
	EndTime     time.Time `json:"end_time" db:"end_time"`
	Status      string    `json:"status" db:"status"`
	Purpose     string    `json:"purpose" db:"purpose"`
	Notes       string    `json:"notes" db:"notes"`

	ApprovedBy null.Uint64 `json:"approved_by" db:"approved_by"`
	ApprovedAt null.Time   `json:"approved_at" db:"approved_at"`

	// Время отправки напоминания. Гарантирует ровно одно напоминание
	// на бронирование независимо от частоты фоновой проверки.
	RemindedAt null.Time `json:"-" db:"reminded_at"`

	// Повторяющиеся бронирования: поля зарезервированы, логики пока нет.
	IsRecurring       bool        `json:"is_recurring" db:"is_recurring"`
	RecurrencePattern null.JSON   `json:"recurrence_pattern,omitempty" db:"recurrence_pattern"`
	ParentBookingID   null.Uint64 `json:"parent_booking_id,omitempty" db:"parent_booking_id"`

	types.BaseEntity

	// Поля для связанных данных (не колонки в таблице)
	User      *User      `json:"user,omitempty" db:"-"`
	Equipment *Equipment `json:"equipment,omitempty" db:"-"`
}

func (b *Booking) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}
