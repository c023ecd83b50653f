package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type CreateBookingDTO struct {
	EquipmentID uint64    `json:"equipment_id" validate:"required,gt=0"`
	StartTime   time.Time `json:"start_time" validate:"required"`
	EndTime     time.Time `json:"end_time" validate:"required"`
	Purpose     string    `json:"purpose" validate:"required"`
	Notes       string    `json:"notes"`
}

type BookingDTO struct {
	ID         uint64             `json:"id"`
	Status     string             `json:"status"`
	StartTime  time.Time          `json:"start_time"`
	EndTime    time.Time          `json:"end_time"`
	Purpose    string             `json:"purpose"`
	Notes      string             `json:"notes,omitempty"`
	User       ShortUserDTO       `json:"user"`
	Equipment  ShortEquipmentDTO  `json:"equipment"`
	Department ShortDepartmentDTO `json:"department"`
	ApprovedBy *ShortUserDTO      `json:"approved_by,omitempty"`
	ApprovedAt *time.Time         `json:"approved_at,omitempty"`
	CreatedAt  string             `json:"created_at"`
}

// BookingDetailsDTO - плоская выборка бронирования вместе с данными
// для уведомления: получатель, оборудование, подразделение.
type BookingDetailsDTO struct {
	ID             uint64
	Status         string
	StartTime      time.Time
	EndTime        time.Time
	Purpose        string
	UserID         uint64
	UserFio        string
	TelegramChatID null.Int64
	EquipmentName  string
	Location       string
	DepartmentName string
}
