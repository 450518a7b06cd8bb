package seeders

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func seedDictionaries(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Заполнение справочников...")

	dictionaries := map[string][]string{
		"regions":        {"Душанбе", "Худжанд", "Бохтар", "Куляб"},
		"socials":        {"Instagram", "Telegram", "Facebook", "Рекомендация"},
		"order_statuses": {"Новый", "Перезвонить", "Думает", "Отказ"},
	}

	for table, names := range dictionaries {
		for _, name := range names {
			var existingID uuid.UUID
			query := fmt.Sprintf("SELECT id FROM %s WHERE name = $1", table)
			if err := db.QueryRow(ctx, query, name).Scan(&existingID); err == nil {
				continue
			}

			insert := fmt.Sprintf(
				"INSERT INTO %s (id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())", table)
			if _, err := db.Exec(ctx, insert, uuid.New(), name); err != nil {
				return fmt.Errorf("не удалось заполнить %s: %w", table, err)
			}
		}
	}
	return nil
}
