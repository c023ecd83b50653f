package dto

type CreateEquipmentCategoryDTO struct {
	Name             string `json:"name" validate:"required"`
	Description      string `json:"description"`
	ApprovalRequired bool   `json:"approval_required"`
	MaxBookingHours  uint   `json:"max_booking_hours" validate:"omitempty,lte=720"`
}

type UpdateEquipmentCategoryDTO struct {
	Name             *string `json:"name" validate:"omitempty,min=1"`
	Description      *string `json:"description"`
	ApprovalRequired *bool   `json:"approval_required"`
	MaxBookingHours  *uint   `json:"max_booking_hours" validate:"omitempty,lte=720"`
}

type EquipmentCategoryDTO struct {
	ID               uint64 `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description,omitempty"`
	ApprovalRequired bool   `json:"approval_required"`
	MaxBookingHours  uint   `json:"max_booking_hours"`
}

type ShortEquipmentCategoryDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
