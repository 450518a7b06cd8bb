package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renovation-system/internal/entities"
	apperrors "renovation-system/pkg/errors"
)

// refRecord — общая форма строк справочников. Region, Social и
// OrderStatus конвертируются в неё напрямую.
type refRecord struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ReferenceRepositoryInterface[T any] interface {
	Create(ctx context.Context, item *T) error
	Find(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, search string, limit, offset uint64) ([]T, uint64, error)
	Update(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ReferenceRepository — единая реализация CRUD для справочных таблиц.
type ReferenceRepository[T any] struct {
	storage  *pgxpool.Pool
	table    string
	notFound string
	from     func(refRecord) T
	to       func(T) refRecord
}

func NewRegionRepository(storage *pgxpool.Pool) ReferenceRepositoryInterface[entities.Region] {
	return &ReferenceRepository[entities.Region]{
		storage:  storage,
		table:    "regions",
		notFound: "Регион не найден",
		from:     func(r refRecord) entities.Region { return entities.Region(r) },
		to:       func(e entities.Region) refRecord { return refRecord(e) },
	}
}

func NewSocialRepository(storage *pgxpool.Pool) ReferenceRepositoryInterface[entities.Social] {
	return &ReferenceRepository[entities.Social]{
		storage:  storage,
		table:    "socials",
		notFound: "Источник не найден",
		from:     func(r refRecord) entities.Social { return entities.Social(r) },
		to:       func(e entities.Social) refRecord { return refRecord(e) },
	}
}

func NewOrderStatusRepository(storage *pgxpool.Pool) ReferenceRepositoryInterface[entities.OrderStatus] {
	return &ReferenceRepository[entities.OrderStatus]{
		storage:  storage,
		table:    "order_statuses",
		notFound: "Статус заказа не найден",
		from:     func(r refRecord) entities.OrderStatus { return entities.OrderStatus(r) },
		to:       func(e entities.OrderStatus) refRecord { return refRecord(e) },
	}
}

func (r *ReferenceRepository[T]) Create(ctx context.Context, item *T) error {
	rec := r.to(*item)
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())`, r.table)

	if _, err := r.storage.Exec(ctx, query, rec.ID, rec.Name); err != nil {
		return fmt.Errorf("ошибка записи справочника %s: %w", r.table, err)
	}
	return nil
}

func (r *ReferenceRepository[T]) Find(ctx context.Context, id uuid.UUID) (*T, error) {
	query := fmt.Sprintf(`SELECT id, name, created_at, updated_at FROM %s WHERE id = $1`, r.table)

	var rec refRecord
	if err := r.storage.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(r.notFound)
		}
		return nil, fmt.Errorf("ошибка чтения справочника %s: %w", r.table, err)
	}

	item := r.from(rec)
	return &item, nil
}

func (r *ReferenceRepository[T]) List(ctx context.Context, search string, limit, offset uint64) ([]T, uint64, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = " WHERE name ILIKE $1"
		args = append(args, "%"+search+"%")
	}

	var total uint64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s%s`, r.table, where)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта справочника %s: %w", r.table, err)
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	query := fmt.Sprintf(`
		SELECT id, name, created_at, updated_at FROM %s%s
		ORDER BY name
		LIMIT $%d OFFSET $%d`, r.table, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения справочника %s: %w", r.table, err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var rec refRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования справочника %s: %w", r.table, err)
		}
		items = append(items, r.from(rec))
	}
	return items, total, rows.Err()
}

func (r *ReferenceRepository[T]) Update(ctx context.Context, item *T) error {
	rec := r.to(*item)
	query := fmt.Sprintf(`UPDATE %s SET name = $2, updated_at = NOW() WHERE id = $1`, r.table)

	tag, err := r.storage.Exec(ctx, query, rec.ID, rec.Name)
	if err != nil {
		return fmt.Errorf("ошибка обновления справочника %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(r.notFound)
	}
	return nil
}

func (r *ReferenceRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	tag, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления из справочника %s: %w", r.table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(r.notFound)
	}
	return nil
}
