package dto

type CreateDepartmentDTO struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required,department_code"`
	Description string `json:"description"`
}

type UpdateDepartmentDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1"`
	Code        *string `json:"code" validate:"omitempty,department_code"`
	Description *string `json:"description"`
}

type DepartmentDTO struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type ShortDepartmentDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}
