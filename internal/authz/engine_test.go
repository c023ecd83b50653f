package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equipment-booking/internal/entities"
	"equipment-booking/pkg/constants"
)

func TestCanViewDepartment(t *testing.T) {
	fullGrant := &Grant{CanView: true, CanBook: true, CanManage: true}
	viewOnly := &Grant{CanView: true}

	testCases := []struct {
		name     string
		role     string
		grant    *Grant
		expected bool
	}{
		{"админ без гранта", constants.RoleAdmin, nil, true},
		{"модератор с грантом просмотра", constants.RoleModerator, viewOnly, true},
		{"модератор без гранта", constants.RoleModerator, nil, false},
		{"пользователь с грантом просмотра", constants.RoleUser, viewOnly, true},
		{"пользователь без гранта", constants.RoleUser, nil, false},
		{"пользователь с пустым грантом", constants.RoleUser, &Grant{}, false},
		{"неизвестная роль с полным грантом", "superuser", fullGrant, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanViewDepartment(tc.role, tc.grant))
		})
	}
}

func TestCanBook(t *testing.T) {
	bookGrant := &Grant{CanView: true, CanBook: true}
	viewOnly := &Grant{CanView: true}

	testCases := []struct {
		name     string
		role     string
		grant    *Grant
		expected bool
	}{
		{"админ без гранта", constants.RoleAdmin, nil, true},
		{"пользователь с правом бронирования", constants.RoleUser, bookGrant, true},
		{"пользователь только с просмотром", constants.RoleUser, viewOnly, false},
		{"пользователь без гранта", constants.RoleUser, nil, false},
		{"модератор с правом бронирования", constants.RoleModerator, bookGrant, true},
		{"модератор без гранта", constants.RoleModerator, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanBook(tc.role, tc.grant))
		})
	}
}

func TestCanManage(t *testing.T) {
	manageGrant := &Grant{CanView: true, CanBook: true, CanManage: true}

	testCases := []struct {
		name     string
		role     string
		grant    *Grant
		expected bool
	}{
		{"админ без гранта", constants.RoleAdmin, nil, true},
		{"модератор с правом управления", constants.RoleModerator, manageGrant, true},
		{"модератор без гранта", constants.RoleModerator, nil, false},
		{"пользователь даже с правом управления", constants.RoleUser, manageGrant, false},
		{"пользователь без гранта", constants.RoleUser, nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CanManage(tc.role, tc.grant))
		})
	}
}

func TestCanCancelBooking(t *testing.T) {
	owner := &entities.User{ID: 10, Role: constants.RoleUser}
	stranger := &entities.User{ID: 20, Role: constants.RoleUser}
	admin := &entities.User{ID: 30, Role: constants.RoleAdmin}
	moderator := &entities.User{ID: 40, Role: constants.RoleModerator}

	manageGrant := &Grant{CanManage: true}

	assert.True(t, CanCancelBooking(owner, 10, nil), "владелец отменяет свое бронирование")
	assert.False(t, CanCancelBooking(stranger, 10, nil), "чужое бронирование без прав")
	assert.True(t, CanCancelBooking(admin, 10, nil), "админ отменяет любое")
	assert.True(t, CanCancelBooking(moderator, 10, manageGrant), "модератор с правом управления")
	assert.False(t, CanCancelBooking(moderator, 10, nil), "модератор без гранта")
	assert.False(t, CanCancelBooking(stranger, 10, manageGrant), "обычный пользователь не управляет даже с грантом")
}

func TestGrantFromAccess(t *testing.T) {
	assert.Nil(t, GrantFromAccess(nil))

	access := &entities.DepartmentAccess{CanView: true, CanBook: false, CanManage: true}
	grant := GrantFromAccess(access)
	assert.True(t, grant.CanView)
	assert.False(t, grant.CanBook)
	assert.True(t, grant.CanManage)
}
