package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renovation-system/internal/entities"
	apperrors "renovation-system/pkg/errors"
)

type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *entities.User) error
	FindUser(ctx context.Context, id uuid.UUID) (*entities.User, error)
	FindUserByPhone(ctx context.Context, phone string) (*entities.User, error)
	GetUsers(ctx context.Context, search string, limit, offset uint64) ([]entities.User, uint64, error)
	UpdateUser(ctx context.Context, user *entities.User) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type UserRepository struct {
	storage *pgxpool.Pool
}

func NewUserRepository(storage *pgxpool.Pool) UserRepositoryInterface {
	return &UserRepository{storage: storage}
}

func scanUser(row pgx.Row, user *entities.User) error {
	var name null.String
	var role string
	var createdAt, updatedAt null.Time
	if err := row.Scan(&user.ID, &name, &user.Phone, &user.Password, &role, &createdAt, &updatedAt); err != nil {
		return err
	}
	user.Name = name.Ptr()
	user.Role = entities.Role(role)
	user.CreatedAt = createdAt.Time
	user.UpdatedAt = updatedAt.Time
	return nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, name, phone, password, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := r.storage.Exec(ctx, query,
		user.ID,
		null.StringFromPtr(user.Name),
		user.Phone,
		user.Password,
		string(user.Role),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи пользователя: %w", err)
	}
	return nil
}

func (r *UserRepository) FindUser(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	query := `
		SELECT id, name, phone, password, role, created_at, updated_at
		FROM users WHERE id = $1`

	var user entities.User
	if err := scanUser(r.storage.QueryRow(ctx, query, id), &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Пользователь не найден")
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) FindUserByPhone(ctx context.Context, phone string) (*entities.User, error) {
	query := `
		SELECT id, name, phone, password, role, created_at, updated_at
		FROM users WHERE phone = $1`

	var user entities.User
	if err := scanUser(r.storage.QueryRow(ctx, query, phone), &user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Пользователь не найден")
		}
		return nil, fmt.Errorf("ошибка чтения пользователя: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetUsers(ctx context.Context, search string, limit, offset uint64) ([]entities.User, uint64, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = " WHERE name ILIKE $1 OR phone ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total uint64
	countQuery := `SELECT COUNT(*) FROM users` + where
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	if total == 0 {
		return []entities.User{}, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT id, name, phone, password, role, created_at, updated_at
		FROM users%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения пользователей: %w", err)
	}
	defer rows.Close()

	users := make([]entities.User, 0)
	for rows.Next() {
		var user entities.User
		if err := scanUser(rows, &user); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования пользователя: %w", err)
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, password = $4, role = $5, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.storage.Exec(ctx, query,
		user.ID,
		null.StringFromPtr(user.Name),
		user.Phone,
		user.Password,
		string(user.Role),
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Пользователь не найден")
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления пользователя: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Пользователь не найден")
	}
	return nil
}
