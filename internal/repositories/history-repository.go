package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"renovation-system/internal/dto"
	"renovation-system/internal/entities"
	apperrors "renovation-system/pkg/errors"
)

const historyColumns = `h.id, h.order_id, h.name, h.phone, h.comment, h.longitude, h.latitude,
	h.region_id, h.social_id,
	h.worker_arrival_date, h.end_date_job,
	h.total, h.pre_payment, h.due_amount,
	h.status, h.get_pre_payment_date, h.get_all_payment_date,
	h.manager_name, h.manager_phone,
	h.zamir_name, h.zamir_phone,
	h.ust_name, h.ust_phone,
	h.zavod_name, h.zavod_phone,
	h.created_at, h.updated_at`

type HistoryRepositoryInterface interface {
	CreateIfAbsentInTx(ctx context.Context, tx pgx.Tx, snapshot *entities.History) (bool, error)
	FinalizeInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, attr entities.HistoryAttribution) error
	DeleteByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error
	FindHistory(ctx context.Context, id uuid.UUID) (*entities.History, error)
	GetHistories(ctx context.Context, filter dto.HistoryFilter) ([]entities.History, uint64, error)
}

type HistoryRepository struct {
	storage *pgxpool.Pool
}

func NewHistoryRepository(storage *pgxpool.Pool) HistoryRepositoryInterface {
	return &HistoryRepository{storage: storage}
}

type dbHistory struct {
	ID      uuid.UUID
	OrderID uuid.UUID

	Name      null.String
	Phone     null.String
	Comment   null.String
	Longitude null.Float64
	Latitude  null.Float64

	RegionID uuid.NullUUID
	SocialID uuid.NullUUID

	WorkerArrivalDate null.Time
	EndDateJob        null.Time

	Total      null.Float64
	PrePayment null.Float64
	DueAmount  null.Float64

	Status            string
	GetPrePaymentDate null.Time
	GetAllPaymentDate null.Time

	ManagerName  null.String
	ManagerPhone null.String
	ZamirName    null.String
	ZamirPhone   null.String
	UstName      null.String
	UstPhone     null.String
	ZavodName    null.String
	ZavodPhone   null.String

	CreatedAt null.Time
	UpdatedAt null.Time
}

func (db *dbHistory) scanDest() []interface{} {
	return []interface{}{
		&db.ID, &db.OrderID, &db.Name, &db.Phone, &db.Comment, &db.Longitude, &db.Latitude,
		&db.RegionID, &db.SocialID,
		&db.WorkerArrivalDate, &db.EndDateJob,
		&db.Total, &db.PrePayment, &db.DueAmount,
		&db.Status, &db.GetPrePaymentDate, &db.GetAllPaymentDate,
		&db.ManagerName, &db.ManagerPhone,
		&db.ZamirName, &db.ZamirPhone,
		&db.UstName, &db.UstPhone,
		&db.ZavodName, &db.ZavodPhone,
		&db.CreatedAt, &db.UpdatedAt,
	}
}

func (db *dbHistory) ToEntity() entities.History {
	return entities.History{
		ID:      db.ID,
		OrderID: db.OrderID,

		Name:      db.Name.Ptr(),
		Phone:     db.Phone.Ptr(),
		Comment:   db.Comment.Ptr(),
		Longitude: db.Longitude.Ptr(),
		Latitude:  db.Latitude.Ptr(),

		RegionID: nullUUIDToPtr(db.RegionID),
		SocialID: nullUUIDToPtr(db.SocialID),

		WorkerArrivalDate: db.WorkerArrivalDate.Ptr(),
		EndDateJob:        db.EndDateJob.Ptr(),

		Total:      db.Total.Ptr(),
		PrePayment: db.PrePayment.Ptr(),
		DueAmount:  db.DueAmount.Ptr(),

		Status:            entities.Status(db.Status),
		GetPrePaymentDate: db.GetPrePaymentDate.Ptr(),
		GetAllPaymentDate: db.GetAllPaymentDate.Ptr(),

		ManagerName:  db.ManagerName.Ptr(),
		ManagerPhone: db.ManagerPhone.Ptr(),
		ZamirName:    db.ZamirName.Ptr(),
		ZamirPhone:   db.ZamirPhone.Ptr(),
		UstName:      db.UstName.Ptr(),
		UstPhone:     db.UstPhone.Ptr(),
		ZavodName:    db.ZavodName.Ptr(),
		ZavodPhone:   db.ZavodPhone.Ptr(),

		CreatedAt: db.CreatedAt.Time,
		UpdatedAt: db.UpdatedAt.Time,
	}
}

// CreateIfAbsentInTx вставляет снимок, если для заказа его ещё нет.
// Повторные квалифицирующие переходы не плодят дубликатов: уникальный
// индекс по order_id плюс ON CONFLICT DO NOTHING.
func (r *HistoryRepository) CreateIfAbsentInTx(ctx context.Context, tx pgx.Tx, snapshot *entities.History) (bool, error) {
	query := `
		INSERT INTO histories (
			id, order_id, name, phone, comment, longitude, latitude,
			region_id, social_id,
			worker_arrival_date, end_date_job,
			total, pre_payment, due_amount, status,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,NOW(),NOW())
		ON CONFLICT (order_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		snapshot.ID,
		snapshot.OrderID,
		null.StringFromPtr(snapshot.Name),
		null.StringFromPtr(snapshot.Phone),
		null.StringFromPtr(snapshot.Comment),
		null.Float64FromPtr(snapshot.Longitude),
		null.Float64FromPtr(snapshot.Latitude),
		ptrToNullUUID(snapshot.RegionID),
		ptrToNullUUID(snapshot.SocialID),
		null.TimeFromPtr(snapshot.WorkerArrivalDate),
		null.TimeFromPtr(snapshot.EndDateJob),
		null.Float64FromPtr(snapshot.Total),
		null.Float64FromPtr(snapshot.PrePayment),
		null.Float64FromPtr(snapshot.DueAmount),
		string(snapshot.Status),
	)
	if err != nil {
		return false, fmt.Errorf("ошибка записи снимка заказа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// FinalizeInTx дописывает в снимок итоговую атрибуцию и переводит его
// в статус DONE. Если снимка нет (заказ завершили в обход обычного
// маршрута), завершение заказа не блокируется.
func (r *HistoryRepository) FinalizeInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, attr entities.HistoryAttribution) error {
	query := `
		UPDATE histories SET
			status = $2,
			manager_name = $3, manager_phone = $4,
			zamir_name = $5, zamir_phone = $6,
			ust_name = $7, ust_phone = $8,
			zavod_name = $9, zavod_phone = $10,
			get_pre_payment_date = $11, get_all_payment_date = $12,
			updated_at = NOW()
		WHERE order_id = $1`

	_, err := tx.Exec(ctx, query,
		orderID,
		string(entities.StatusDone),
		null.StringFromPtr(attr.ManagerName),
		null.StringFromPtr(attr.ManagerPhone),
		null.StringFromPtr(attr.ZamirName),
		null.StringFromPtr(attr.ZamirPhone),
		null.StringFromPtr(attr.UstName),
		null.StringFromPtr(attr.UstPhone),
		null.StringFromPtr(attr.ZavodName),
		null.StringFromPtr(attr.ZavodPhone),
		null.TimeFromPtr(attr.GetPrePaymentDate),
		null.TimeFromPtr(attr.GetAllPaymentDate),
	)
	if err != nil {
		return fmt.Errorf("ошибка финализации снимка: %w", err)
	}
	return nil
}

func (r *HistoryRepository) DeleteByOrderInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	if _, err := tx.Exec(ctx, `DELETE FROM histories WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("ошибка удаления снимка: %w", err)
	}
	return nil
}

func (r *HistoryRepository) FindHistory(ctx context.Context, id uuid.UUID) (*entities.History, error) {
	query := fmt.Sprintf(`
		SELECT %s, r.name AS region_name, s.name AS social_name
		FROM histories h
		LEFT JOIN regions r ON h.region_id = r.id
		LEFT JOIN socials s ON h.social_id = s.id
		WHERE h.id = $1`, historyColumns)

	var db dbHistory
	var regionName, socialName null.String
	dest := append(db.scanDest(), &regionName, &socialName)
	if err := r.storage.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Запись архива не найдена")
		}
		return nil, fmt.Errorf("ошибка чтения записи архива: %w", err)
	}

	history := db.ToEntity()
	if history.RegionID != nil && regionName.Valid {
		history.Region = &entities.Region{ID: *history.RegionID, Name: regionName.String}
	}
	if history.SocialID != nil && socialName.Valid {
		history.Social = &entities.Social{ID: *history.SocialID, Name: socialName.String}
	}
	if err := r.attachRooms(ctx, []*entities.History{&history}); err != nil {
		return nil, err
	}
	return &history, nil
}

func buildHistoryPredicate(filter dto.HistoryFilter) sq.And {
	where := sq.And{}

	if len([]rune(filter.Search)) > 2 {
		pattern := "%" + filter.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"h.name": pattern},
			sq.ILike{"h.phone": pattern},
			sq.ILike{"r.name": pattern},
		})
	}
	if filter.RegionName != "" {
		where = append(where, sq.ILike{"r.name": "%" + filter.RegionName + "%"})
	}
	if filter.SocialName != "" {
		where = append(where, sq.ILike{"s.name": "%" + filter.SocialName + "%"})
	}
	if filter.StartDate != nil {
		where = append(where, sq.GtOrEq{"h.created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, sq.LtOrEq{"h.created_at": *filter.EndDate})
	}
	if filter.StatusEquals != nil {
		where = append(where, sq.Eq{"h.status": *filter.StatusEquals})
	}

	return where
}

func (r *HistoryRepository) GetHistories(ctx context.Context, filter dto.HistoryFilter) ([]entities.History, uint64, error) {
	where := buildHistoryPredicate(filter)

	countBuilder := sq.Select("COUNT(*)").
		From("histories h").
		LeftJoin("regions r ON h.region_id = r.id").
		LeftJoin("socials s ON h.social_id = s.id").
		PlaceholderFormat(sq.Dollar)
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта архива: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта записей архива: %w", err)
	}
	if total == 0 {
		return []entities.History{}, 0, nil
	}

	listBuilder := sq.Select(historyColumns, "r.name AS region_name", "s.name AS social_name").
		From("histories h").
		LeftJoin("regions r ON h.region_id = r.id").
		LeftJoin("socials s ON h.social_id = s.id").
		OrderBy("h.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		PlaceholderFormat(sq.Dollar)
	if len(where) > 0 {
		listBuilder = listBuilder.Where(where)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса листинга архива: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения архива: %w", err)
	}
	defer rows.Close()

	histories := make([]entities.History, 0)
	for rows.Next() {
		var db dbHistory
		var regionName, socialName null.String

		dest := append(db.scanDest(), &regionName, &socialName)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования записи архива: %w", err)
		}

		history := db.ToEntity()
		if history.RegionID != nil && regionName.Valid {
			history.Region = &entities.Region{ID: *history.RegionID, Name: regionName.String}
		}
		if history.SocialID != nil && socialName.Valid {
			history.Social = &entities.Social{ID: *history.SocialID, Name: socialName.String}
		}
		histories = append(histories, history)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	historyPtrs := make([]*entities.History, len(histories))
	for i := range histories {
		historyPtrs[i] = &histories[i]
	}
	if err := r.attachRooms(ctx, historyPtrs); err != nil {
		return nil, 0, err
	}

	return histories, total, nil
}

// attachRooms подтягивает замеры исходного заказа: снимок собственных
// замеров не хранит, они читаются по order_id.
func (r *HistoryRepository) attachRooms(ctx context.Context, histories []*entities.History) error {
	if len(histories) == 0 {
		return nil
	}

	ids := make([]string, 0, len(histories))
	byOrderID := make(map[uuid.UUID][]*entities.History, len(histories))
	for _, h := range histories {
		ids = append(ids, h.OrderID.String())
		byOrderID[h.OrderID] = append(byOrderID[h.OrderID], h)
	}

	query := `
		SELECT id, order_id, name, key, value, created_at, updated_at
		FROM room_measurements
		WHERE order_id = ANY($1::uuid[])
		ORDER BY created_at`

	rows, err := r.storage.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("ошибка чтения замеров архива: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var room entities.RoomMeasurement
		var name, key, value null.String
		var createdAt, updatedAt null.Time
		if err := rows.Scan(&room.ID, &room.OrderID, &name, &key, &value, &createdAt, &updatedAt); err != nil {
			return fmt.Errorf("ошибка сканирования замера: %w", err)
		}
		room.Name = name.Ptr()
		room.Key = key.Ptr()
		room.Value = value.Ptr()
		room.CreatedAt = createdAt.Time
		room.UpdatedAt = updatedAt.Time

		for _, owner := range byOrderID[room.OrderID] {
			owner.Rooms = append(owner.Rooms, room)
		}
	}
	return rows.Err()
}
