package main

import (
	"context"
	"log"

	"renovation-system/pkg/config"
	"renovation-system/pkg/database/postgresql"
	"renovation-system/seeders"
)

func main() {
	cfg := config.New()

	db := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer db.Close()

	if err := seeders.RunAll(context.Background(), db); err != nil {
		log.Fatalf("Ошибка выполнения сидеров: %v", err)
	}
}
