package dto

type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type ProfileDTO struct {
	ID             uint64  `json:"id"`
	Username       string  `json:"username"`
	Fio            string  `json:"fio"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	DepartmentID   *uint64 `json:"department_id,omitempty"`
	TelegramKey    string  `json:"telegram_key"`
	TelegramLinked bool    `json:"telegram_linked"`
}
