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

type RoomRepositoryInterface interface {
	CreateRoom(ctx context.Context, room *entities.RoomMeasurement) error
	FindRoom(ctx context.Context, id uuid.UUID) (*entities.RoomMeasurement, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]entities.RoomMeasurement, error)
	UpdateRoom(ctx context.Context, room *entities.RoomMeasurement) error
	DeleteRoom(ctx context.Context, id uuid.UUID) error
	DeleteByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
}

type RoomRepository struct {
	storage *pgxpool.Pool
}

func NewRoomRepository(storage *pgxpool.Pool) RoomRepositoryInterface {
	return &RoomRepository{storage: storage}
}

func scanRoom(row pgx.Row, room *entities.RoomMeasurement) error {
	var name, key, value null.String
	var createdAt, updatedAt null.Time
	if err := row.Scan(&room.ID, &room.OrderID, &name, &key, &value, &createdAt, &updatedAt); err != nil {
		return err
	}
	room.Name = name.Ptr()
	room.Key = key.Ptr()
	room.Value = value.Ptr()
	room.CreatedAt = createdAt.Time
	room.UpdatedAt = updatedAt.Time
	return nil
}

func (r *RoomRepository) CreateRoom(ctx context.Context, room *entities.RoomMeasurement) error {
	query := `
		INSERT INTO room_measurements (id, order_id, name, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := r.storage.Exec(ctx, query,
		room.ID,
		room.OrderID,
		null.StringFromPtr(room.Name),
		null.StringFromPtr(room.Key),
		null.StringFromPtr(room.Value),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи замера: %w", err)
	}
	return nil
}

func (r *RoomRepository) FindRoom(ctx context.Context, id uuid.UUID) (*entities.RoomMeasurement, error) {
	query := `
		SELECT id, order_id, name, key, value, created_at, updated_at
		FROM room_measurements WHERE id = $1`

	var room entities.RoomMeasurement
	if err := scanRoom(r.storage.QueryRow(ctx, query, id), &room); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Замер не найден")
		}
		return nil, fmt.Errorf("ошибка чтения замера: %w", err)
	}
	return &room, nil
}

func (r *RoomRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]entities.RoomMeasurement, error) {
	query := `
		SELECT id, order_id, name, key, value, created_at, updated_at
		FROM room_measurements WHERE order_id = $1
		ORDER BY created_at`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения замеров: %w", err)
	}
	defer rows.Close()

	rooms := make([]entities.RoomMeasurement, 0)
	for rows.Next() {
		var room entities.RoomMeasurement
		if err := scanRoom(rows, &room); err != nil {
			return nil, fmt.Errorf("ошибка сканирования замера: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

func (r *RoomRepository) UpdateRoom(ctx context.Context, room *entities.RoomMeasurement) error {
	query := `
		UPDATE room_measurements
		SET name = $2, key = $3, value = $4, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.storage.Exec(ctx, query,
		room.ID,
		null.StringFromPtr(room.Name),
		null.StringFromPtr(room.Key),
		null.StringFromPtr(room.Value),
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления замера: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Замер не найден")
	}
	return nil
}

func (r *RoomRepository) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM room_measurements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления замера: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Замер не найден")
	}
	return nil
}

func (r *RoomRepository) DeleteByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM room_measurements WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("ошибка удаления замеров заказа: %w", err)
	}
	return nil
}
