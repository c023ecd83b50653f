package entities

import "equipment-booking/pkg/types"

type Equipment struct {
	ID              uint64 `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	Description     string `json:"description" db:"description"`
	CategoryID      uint64 `json:"category_id" db:"category_id"`
	DepartmentID    uint64 `json:"department_id" db:"department_id"`
	InventoryNumber string `json:"inventory_number" db:"inventory_number"`
	Location        string `json:"location" db:"location"`

	// Неактивное оборудование не бронируется и не показывается в списках.
	IsActive bool `json:"is_active" db:"is_active"`

	types.BaseEntity

	// Поля для связанных данных (не колонки в таблице)
	Category   *EquipmentCategory `json:"category,omitempty" db:"-"`
	Department *Department        `json:"department,omitempty" db:"-"`
}
