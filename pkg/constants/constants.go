// pkg/constants/constants.go
package constants

//============== РОЛИ ==============

// Роли пользователей. Закрытый набор, используется в бизнес-логике.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// KnownRoles - все допустимые роли в системе.
var KnownRoles = []string{RoleAdmin, RoleModerator, RoleUser}

func IsKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Человекочитаемые названия ролей.
var RoleTitles = map[string]string{
	RoleAdmin:     "Администратор",
	RoleModerator: "Модератор",
	RoleUser:      "Пользователь",
}

//============== ВИДЫ УВЕДОМЛЕНИЙ ==============

// Виды событий бронирования, по которым рассылаются уведомления.
const (
	NotifyCreated   = "created"
	NotifyApproved  = "approved"
	NotifyReminder  = "reminder"
	NotifyCompleted = "completed"
	NotifyCancelled = "cancelled"
)

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Антиспам-пауза между командами бота.
	// Формат: tg_cooldown:<chatID> -> "active"
	CacheKeyBotCooldown = "tg_cooldown:%d"

	// Состояние диалога привязки Telegram.
	// Формат: tg_link_state:<chatID> -> "awaiting_key"
	CacheKeyLinkState = "tg_link_state:%d"

	// Ключ для подсчета неудачных попыток входа.
	// Формат: login_attempts:<login> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"

	// Ключ, указывающий, что аккаунт заблокирован из-за неудачных попыток входа.
	// Формат: lockout:<login> -> "locked"
	CacheKeyLockout = "lockout:%s"
)
