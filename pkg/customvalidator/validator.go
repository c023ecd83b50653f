// Файл: pkg/customvalidator/validator.go

package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidations регистрирует все кастомные правила валидации
// в переданном экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("phone_number", isPhoneNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("department_code", isDepartmentCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("inventory_number", isInventoryNumber); err != nil {
		return err
	}
	if err := v.RegisterValidation("role", isKnownRole); err != nil {
		return err
	}
	return nil
}

func isPhoneNumber(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^\+\d{10,15}$`)
	return re.MatchString(fl.Field().String())
}

// Код подразделения: латиница/цифры/дефис, 2-20 символов (FIZ-LAB, IT-01).
func isDepartmentCode(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,19}$`)
	return re.MatchString(fl.Field().String())
}

// Инвентарный номер: цифры и дефисы, как в бухгалтерских ведомостях.
func isInventoryNumber(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/-]{1,49}$`)
	return re.MatchString(fl.Field().String())
}

func isKnownRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "admin", "moderator", "user":
		return true
	}
	return false
}
