package dto

type CreateUserDTO struct {
	Username     string  `json:"username" validate:"required,min=3"`
	Password     string  `json:"password" validate:"required,min=8"`
	Fio          string  `json:"fio" validate:"required"`
	Email        string  `json:"email" validate:"omitempty,email"`
	Phone        string  `json:"phone" validate:"omitempty,phone_number"`
	Role         string  `json:"role" validate:"required,role"`
	DepartmentID *uint64 `json:"department_id" validate:"omitempty,gt=0"`
}

type UpdateUserDTO struct {
	Fio          *string `json:"fio" validate:"omitempty,min=1"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,phone_number"`
	Role         *string `json:"role" validate:"omitempty,role"`
	DepartmentID *uint64 `json:"department_id" validate:"omitempty,gt=0"`
}

type UserDTO struct {
	ID             uint64              `json:"id"`
	Username       string              `json:"username"`
	Fio            string              `json:"fio"`
	Email          string              `json:"email,omitempty"`
	Phone          string              `json:"phone,omitempty"`
	Role           string              `json:"role"`
	Department     *ShortDepartmentDTO `json:"department,omitempty"`
	TelegramLinked bool                `json:"telegram_linked"`
	CreatedAt      string              `json:"created_at"`
}

type ShortUserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Fio      string `json:"fio"`
}
