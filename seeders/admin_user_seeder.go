package seeders

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"equipment-booking/internal/services"
	"equipment-booking/pkg/constants"
)

func seedAdmin(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание администратора...")

	username := getEnvOr("SEED_ADMIN_USERNAME", "admin")

	var existingID uint64
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE username = $1", username).Scan(&existingID)
	if err == nil {
		log.Println("    - Администратор уже существует. Пропускаем.")
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("ошибка проверки существования администратора: %w", err)
	}

	password := getEnvOr("SEED_ADMIN_PASSWORD", "ChangeMe123!")
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("не удалось захэшировать пароль администратора: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO users (username, fio, email, password, role, telegram_key)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		username, "Администратор системы", getEnvOr("SEED_ADMIN_EMAIL", "admin@example.org"),
		string(hashed), constants.RoleAdmin, services.NewTelegramLinkKey())
	if err != nil {
		return fmt.Errorf("не удалось создать администратора: %w", err)
	}
	log.Printf("    - Администратор %q создан.", username)
	return nil
}

func getEnvOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
