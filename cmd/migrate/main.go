package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"equipment-booking/pkg/config"
)

// Применение миграций схемы:
//
//	go run ./cmd/migrate -command up
//	go run ./cmd/migrate -command down
//	go run ./cmd/migrate -command status
func main() {
	command := flag.String("command", "up", "команда goose: up, down, status, version")
	dir := flag.String("dir", "migrations", "каталог с миграциями")
	flag.Parse()

	cfg := config.New()

	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		log.Fatalf("не удалось открыть подключение к БД: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("не удалось установить диалект: %v", err)
	}

	if err := goose.Run(*command, db, *dir, flag.Args()...); err != nil {
		log.Fatalf("миграция завершилась с ошибкой: %v", err)
	}
}
