package seeders

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func seedAdminUser(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Создание администратора...")

	phone := os.Getenv("ADMIN_PHONE")
	if phone == "" {
		phone = "+992000000000"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin"
	}

	var existingID uuid.UUID
	err := db.QueryRow(ctx, "SELECT id FROM users WHERE phone = $1", phone).Scan(&existingID)
	if err == nil {
		log.Println("    - Администратор уже существует. Пропускаем.")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пароль администратора: %w", err)
	}

	_, err = db.Exec(ctx, `
		INSERT INTO users (id, name, phone, password, role, created_at, updated_at)
		VALUES ($1, 'Администратор', $2, $3, 'ADMIN', NOW(), NOW())`,
		uuid.New(), phone, string(hash),
	)
	if err != nil {
		return fmt.Errorf("не удалось создать администратора: %w", err)
	}
	return nil
}
