// Файл: internal/entities/user-entity.go
package entities

import (
	"github.com/aarondl/null/v8"

	"equipment-booking/pkg/types"
)

type User struct {
	ID       uint64 `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Fio      string `json:"fio" db:"fio"`
	Email    string `json:"email" db:"email"`
	Phone    string `json:"phone" db:"phone"`

	Password string `json:"-" db:"password"`

	// Роль - процессное полномочие (admin/moderator/user).
	// Основное подразделение само по себе доступа не дает.
	Role         string      `json:"role" db:"role"`
	DepartmentID null.Uint64 `json:"department_id" db:"department_id"`

	// Привязка Telegram: персональный ключ выдается при создании,
	// chat_id появляется после команды /start в боте.
	TelegramKey    string     `json:"-" db:"telegram_key"`
	TelegramChatID null.Int64 `json:"-" db:"telegram_chat_id"`

	types.BaseEntity

	// Подгружается отдельно, не колонка.
	Department *Department `json:"department,omitempty" db:"-"`
}

func (u *User) HasTelegram() bool {
	return u.TelegramChatID.Valid && u.TelegramChatID.Int64 != 0
}
