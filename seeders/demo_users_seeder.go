package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"equipment-booking/internal/services"
	"equipment-booking/pkg/constants"
)

type demoUserFixture struct {
	Username string
	Fio      string
	Role     string
	// Гранты: код подразделения -> флаги view/book/manage.
	Grants map[string][3]bool
}

var demoUserFixtures = []demoUserFixture{
	{
		Username: "moderator.lab",
		Fio:      "Модератор лаборатории",
		Role:     constants.RoleModerator,
		Grants:   map[string][3]bool{"LAB-EL": {true, true, true}},
	},
	{
		Username: "engineer",
		Fio:      "Инженер-испытатель",
		Role:     constants.RoleUser,
		Grants: map[string][3]bool{
			"LAB-EL": {true, true, false},
			"IT":     {true, false, false},
		},
	},
}

// seedDemoUsers создает показательных пользователей с грантами доступа.
// Пароль у всех одинаковый и подходит только для локальной разработки.
func seedDemoUsers(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание демо-пользователей и грантов...")

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, u := range demoUserFixtures {
		var userID uint64
		err := db.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", u.Username).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			err = db.QueryRow(ctx, `
				INSERT INTO users (username, fio, password, role, telegram_key)
				VALUES ($1, $2, $3, $4, $5)
				RETURNING id`,
				u.Username, u.Fio, string(hashed), u.Role, services.NewTelegramLinkKey()).Scan(&userID)
		}
		if err != nil {
			return fmt.Errorf("пользователь %q: %w", u.Username, err)
		}

		for code, flags := range u.Grants {
			var departmentID uint64
			if err := db.QueryRow(ctx, "SELECT id FROM departments WHERE code = $1", code).Scan(&departmentID); err != nil {
				return fmt.Errorf("не найдено подразделение %q: %w", code, err)
			}
			_, err := db.Exec(ctx, `
				INSERT INTO department_accesses (user_id, department_id, can_view, can_book, can_manage)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (user_id, department_id) DO NOTHING`,
				userID, departmentID, flags[0], flags[1], flags[2])
			if err != nil {
				return fmt.Errorf("грант %s/%s: %w", u.Username, code, err)
			}
		}
	}
	return nil
}
