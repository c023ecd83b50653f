package dto

type CreateEquipmentDTO struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description"`
	CategoryID      uint64 `json:"category_id" validate:"required,gt=0"`
	DepartmentID    uint64 `json:"department_id" validate:"required,gt=0"`
	InventoryNumber string `json:"inventory_number" validate:"required,inventory_number"`
	Location        string `json:"location"`
	IsActive        *bool  `json:"is_active"`
}

type UpdateEquipmentDTO struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Description     *string `json:"description"`
	CategoryID      *uint64 `json:"category_id" validate:"omitempty,gt=0"`
	DepartmentID    *uint64 `json:"department_id" validate:"omitempty,gt=0"`
	InventoryNumber *string `json:"inventory_number" validate:"omitempty,inventory_number"`
	Location        *string `json:"location"`
	IsActive        *bool   `json:"is_active"`
}

type EquipmentDTO struct {
	ID              uint64                    `json:"id"`
	Name            string                    `json:"name"`
	Description     string                    `json:"description,omitempty"`
	InventoryNumber string                    `json:"inventory_number"`
	Location        string                    `json:"location,omitempty"`
	IsActive        bool                      `json:"is_active"`
	Category        ShortEquipmentCategoryDTO `json:"category"`
	Department      ShortDepartmentDTO        `json:"department"`
	CreatedAt       string                    `json:"created_at"`
}

type ShortEquipmentDTO struct {
	ID              uint64 `json:"id"`
	Name            string `json:"name"`
	InventoryNumber string `json:"inventory_number"`
}

// BusySlotDTO - занятый интервал при проверке доступности на дату.
type BusySlotDTO struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	User      string `json:"user"`
}

type AvailabilityDTO struct {
	Date      string        `json:"date"`
	Equipment string        `json:"equipment"`
	BusySlots []BusySlotDTO `json:"busy_slots"`
}
