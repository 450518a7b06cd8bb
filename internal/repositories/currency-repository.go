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

type CurrencyRepositoryInterface interface {
	CreateCurrency(ctx context.Context, currency *entities.CurrencyOrder) error
	FindCurrency(ctx context.Context, id uuid.UUID) (*entities.CurrencyOrder, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]entities.CurrencyOrder, error)
	UpdateCurrency(ctx context.Context, currency *entities.CurrencyOrder) error
	DeleteCurrency(ctx context.Context, id uuid.UUID) error
	DeleteByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
}

type CurrencyRepository struct {
	storage *pgxpool.Pool
}

func NewCurrencyRepository(storage *pgxpool.Pool) CurrencyRepositoryInterface {
	return &CurrencyRepository{storage: storage}
}

func scanCurrency(row pgx.Row, currency *entities.CurrencyOrder) error {
	var name null.String
	var createdAt, updatedAt null.Time
	if err := row.Scan(&currency.ID, &currency.OrderID, &name, &currency.Card, &currency.Cash, &createdAt, &updatedAt); err != nil {
		return err
	}
	currency.Name = name.Ptr()
	currency.CreatedAt = createdAt.Time
	currency.UpdatedAt = updatedAt.Time
	return nil
}

func (r *CurrencyRepository) CreateCurrency(ctx context.Context, currency *entities.CurrencyOrder) error {
	query := `
		INSERT INTO currency_orders (id, order_id, name, card, cash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`

	_, err := r.storage.Exec(ctx, query,
		currency.ID,
		currency.OrderID,
		null.StringFromPtr(currency.Name),
		currency.Card,
		currency.Cash,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Заказ не найден")
		}
		return fmt.Errorf("ошибка записи оплаты: %w", err)
	}
	return nil
}

func (r *CurrencyRepository) FindCurrency(ctx context.Context, id uuid.UUID) (*entities.CurrencyOrder, error) {
	query := `
		SELECT id, order_id, name, card, cash, created_at, updated_at
		FROM currency_orders WHERE id = $1`

	var currency entities.CurrencyOrder
	if err := scanCurrency(r.storage.QueryRow(ctx, query, id), &currency); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Оплата не найдена")
		}
		return nil, fmt.Errorf("ошибка чтения оплаты: %w", err)
	}
	return &currency, nil
}

func (r *CurrencyRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]entities.CurrencyOrder, error) {
	query := `
		SELECT id, order_id, name, card, cash, created_at, updated_at
		FROM currency_orders WHERE order_id = $1
		ORDER BY created_at`

	rows, err := r.storage.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оплат: %w", err)
	}
	defer rows.Close()

	currencies := make([]entities.CurrencyOrder, 0)
	for rows.Next() {
		var currency entities.CurrencyOrder
		if err := scanCurrency(rows, &currency); err != nil {
			return nil, fmt.Errorf("ошибка сканирования оплаты: %w", err)
		}
		currencies = append(currencies, currency)
	}
	return currencies, rows.Err()
}

func (r *CurrencyRepository) UpdateCurrency(ctx context.Context, currency *entities.CurrencyOrder) error {
	query := `
		UPDATE currency_orders
		SET name = $2, card = $3, cash = $4, updated_at = NOW()
		WHERE id = $1`

	tag, err := r.storage.Exec(ctx, query,
		currency.ID,
		null.StringFromPtr(currency.Name),
		currency.Card,
		currency.Cash,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления оплаты: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Оплата не найдена")
	}
	return nil
}

func (r *CurrencyRepository) DeleteCurrency(ctx context.Context, id uuid.UUID) error {
	tag, err := r.storage.Exec(ctx, `DELETE FROM currency_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления оплаты: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Оплата не найдена")
	}
	return nil
}

func (r *CurrencyRepository) DeleteByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM currency_orders WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("ошибка удаления оплат заказа: %w", err)
	}
	return nil
}
