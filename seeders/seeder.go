package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunAll прогоняет все сидеры по порядку. Каждый сидер идемпотентен:
// повторный запуск ничего не дублирует.
func RunAll(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("Запуск сидеров...")

	if err := seedAdminUser(ctx, db); err != nil {
		return err
	}
	if err := seedDictionaries(ctx, db); err != nil {
		return err
	}

	log.Println("Сидеры успешно выполнены.")
	return nil
}
