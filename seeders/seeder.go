package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedDictionaries наполняет справочники: подразделения, категории, оборудование.
func SeedDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочников...")

	if err := seedDepartments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения подразделений: %v", err)
	}
	if err := seedCategories(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения категорий: %v", err)
	}
	if err := seedEquipments(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения оборудования: %v", err)
	}
	log.Println("✅ Наполнение справочников завершено!")
}

// SeedAdmin создает администратора системы.
func SeedAdmin(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания администратора...")

	if err := seedAdmin(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания администратора: %v", err)
	}
	log.Println("✅ Администратор настроен!")
}

// SeedDemo создает демо-пользователей с грантами. Только для разработки.
func SeedDemo(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания демо-данных...")

	if err := seedDemoUsers(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка создания демо-пользователей: %v", err)
	}
	log.Println("✅ Демо-данные созданы!")
}
