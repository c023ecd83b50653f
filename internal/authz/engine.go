package authz

import (
	"equipment-booking/internal/entities"
	"equipment-booking/pkg/constants"
)

// Движок доступа: закрытый набор ролей, каждой роли сопоставлена чистая
// функция-решение. Отсутствующий грант — это всегда отказ (default-deny):
// при отзыве доступа запись удаляется, а не выключается флагом.

// Grant - снимок записи DepartmentAccess для пары (актор, подразделение).
// nil означает, что записи нет.
type Grant struct {
	CanView   bool
	CanBook   bool
	CanManage bool
}

func GrantFromAccess(access *entities.DepartmentAccess) *Grant {
	if access == nil {
		return nil
	}
	return &Grant{
		CanView:   access.CanView,
		CanBook:   access.CanBook,
		CanManage: access.CanManage,
	}
}

type decision func(grant *Grant) bool

func allowAlways(*Grant) bool { return true }
func denyAlways(*Grant) bool  { return false }

func grantCanView(grant *Grant) bool   { return grant != nil && grant.CanView }
func grantCanBook(grant *Grant) bool   { return grant != nil && grant.CanBook }
func grantCanManage(grant *Grant) bool { return grant != nil && grant.CanManage }

var canViewByRole = map[string]decision{
	constants.RoleAdmin:     allowAlways,
	constants.RoleModerator: grantCanView,
	constants.RoleUser:      grantCanView,
}

var canBookByRole = map[string]decision{
	constants.RoleAdmin:     allowAlways,
	constants.RoleModerator: grantCanBook,
	constants.RoleUser:      grantCanBook,
}

// Управлять подразделением может админ всегда, модератор - по гранту,
// обычный пользователь - никогда.
var canManageByRole = map[string]decision{
	constants.RoleAdmin:     allowAlways,
	constants.RoleModerator: grantCanManage,
	constants.RoleUser:      denyAlways,
}

func decide(table map[string]decision, role string, grant *Grant) bool {
	d, ok := table[role]
	if !ok {
		return false
	}
	return d(grant)
}

// CanViewDepartment - видно ли подразделение актору с данным грантом.
func CanViewDepartment(role string, grant *Grant) bool {
	return decide(canViewByRole, role, grant)
}

// CanBook - может ли актор бронировать оборудование подразделения.
func CanBook(role string, grant *Grant) bool {
	return decide(canBookByRole, role, grant)
}

// CanManage - может ли актор подтверждать/отклонять бронирования подразделения
// и управлять его оборудованием.
func CanManage(role string, grant *Grant) bool {
	return decide(canManageByRole, role, grant)
}

// CanCancelBooking - отменить бронирование может владелец, админ или
// модератор с правом управления подразделением оборудования.
func CanCancelBooking(actor *entities.User, ownerID uint64, grant *Grant) bool {
	if actor.ID == ownerID {
		return true
	}
	return CanManage(actor.Role, grant)
}
