package entities

import "equipment-booking/pkg/types"

type EquipmentCategory struct {
	ID          uint64 `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	// Требуется ли подтверждение модератором при создании бронирования.
	ApprovalRequired bool `json:"approval_required" db:"approval_required"`

	// Потолок длительности одного бронирования в часах. 0 - без лимита.
	MaxBookingHours uint `json:"max_booking_hours" db:"max_booking_hours"`

	types.BaseEntity
}
