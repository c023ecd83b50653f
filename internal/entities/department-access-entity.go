package entities

import (
	"github.com/aarondl/null/v8"

	"equipment-booking/pkg/types"
)

// DepartmentAccess - явный грант (user, department), не более одной записи на пару.
// Отсутствие записи означает запрет: при отзыве доступа строка удаляется.
type DepartmentAccess struct {
	ID           uint64 `json:"id" db:"id"`
	UserID       uint64 `json:"user_id" db:"user_id"`
	DepartmentID uint64 `json:"department_id" db:"department_id"`

	CanView   bool `json:"can_view" db:"can_view"`
	CanBook   bool `json:"can_book" db:"can_book"`
	CanManage bool `json:"can_manage" db:"can_manage"`

	GrantedBy null.Uint64 `json:"granted_by" db:"granted_by"`

	types.BaseEntity
}
