package main

import (
	"flag"
	"log"

	"equipment-booking/pkg/config"
	"equipment-booking/pkg/database/postgresql"
	"equipment-booking/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runDictionaries := flag.Bool("dictionaries", false, "Наполнить справочники (подразделения, категории, оборудование)")
	runAdmin := flag.Bool("admin", false, "Создать администратора")
	runDemo := flag.Bool("demo", false, "Создать демо-пользователей с грантами")
	runAll := flag.Bool("all", false, "Запустить все сидеры")
	flag.Parse()

	if !*runDictionaries && !*runAdmin && !*runDemo && !*runAll {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -dictionaries -admin")
		log.Println("  go run ./seeders/cmd/seed -all")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	db := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer db.Close()

	if *runDictionaries || *runAll {
		seeders.SeedDictionaries(db)
	}
	if *runAdmin || *runAll {
		seeders.SeedAdmin(db)
	}
	if *runDemo || *runAll {
		seeders.SeedDemo(db)
	}

	log.Println("======================================================")
	log.Println("       🏁 Сидеры отработали успешно")
	log.Println("======================================================")
}
