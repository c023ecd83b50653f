package dto

type CreateDepartmentAccessDTO struct {
	UserID       uint64 `json:"user_id" validate:"required,gt=0"`
	DepartmentID uint64 `json:"department_id" validate:"required,gt=0"`
	CanView      bool   `json:"can_view"`
	CanBook      bool   `json:"can_book"`
	CanManage    bool   `json:"can_manage"`
}

type UpdateDepartmentAccessDTO struct {
	CanView   *bool `json:"can_view"`
	CanBook   *bool `json:"can_book"`
	CanManage *bool `json:"can_manage"`
}

type DepartmentAccessDTO struct {
	ID         uint64             `json:"id"`
	User       ShortUserDTO       `json:"user"`
	Department ShortDepartmentDTO `json:"department"`
	CanView    bool               `json:"can_view"`
	CanBook    bool               `json:"can_book"`
	CanManage  bool               `json:"can_manage"`
	GrantedBy  *ShortUserDTO      `json:"granted_by,omitempty"`
	CreatedAt  string             `json:"created_at"`
}
