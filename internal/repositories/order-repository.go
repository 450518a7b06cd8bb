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

const orderColumns = `ord.id, ord.name, ord.phone, ord.comment, ord.longitude, ord.latitude,
	ord.region_id, ord.social_id, ord.order_status_id,
	ord.worker_arrival_date, ord.end_date_job,
	ord.total, ord.pre_payment, ord.due_amount,
	ord.status, ord.get_pre_payment_date, ord.get_all_payment_date,
	ord.manager_id, ord.manager_name, ord.manager_phone,
	ord.zamir_id, ord.zamir_name, ord.zamir_phone,
	ord.ust_id, ord.ust_name, ord.ust_phone,
	ord.zavod_id, ord.zavod_name, ord.zavod_phone,
	ord.created_at, ord.updated_at`

// SlotScope — сужение листинга для рабочей роли: пул свободных
// заказов её этапа либо заказы, закреплённые за пользователем.
type SlotScope struct {
	Role   entities.Role
	UserID uuid.UUID
	Scope  dto.OrderListScope
}

type OrderRepositoryInterface interface {
	CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	FindOrder(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error)
	UpdateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error
	ClaimSlotInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, role entities.Role, slot entities.AssignmentSlot) error
	ClearSlotInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, role entities.Role) error
	DeleteOrderInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	GetOrders(ctx context.Context, filter dto.OrderFilter, scope *SlotScope) ([]entities.Order, uint64, error)
	GetDoneOrders(ctx context.Context, filter dto.StatisticsFilter) ([]entities.Order, uint64, error)
	SumAmounts(ctx context.Context, filter dto.StatisticsFilter) (dto.OrderSumsDTO, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
}

func NewOrderRepository(storage *pgxpool.Pool) OrderRepositoryInterface {
	return &OrderRepository{storage: storage}
}

type dbOrder struct {
	ID        uuid.UUID
	Name      null.String
	Phone     null.String
	Comment   null.String
	Longitude null.Float64
	Latitude  null.Float64

	RegionID      uuid.NullUUID
	SocialID      uuid.NullUUID
	OrderStatusID uuid.NullUUID

	WorkerArrivalDate null.Time
	EndDateJob        null.Time

	Total      null.Float64
	PrePayment null.Float64
	DueAmount  null.Float64

	Status            string
	GetPrePaymentDate null.Time
	GetAllPaymentDate null.Time

	ManagerID    uuid.NullUUID
	ManagerName  null.String
	ManagerPhone null.String

	ZamirID    uuid.NullUUID
	ZamirName  null.String
	ZamirPhone null.String
	UstID      uuid.NullUUID
	UstName    null.String
	UstPhone   null.String
	ZavodID    uuid.NullUUID
	ZavodName  null.String
	ZavodPhone null.String

	CreatedAt null.Time
	UpdatedAt null.Time
}

func (db *dbOrder) scanDest() []interface{} {
	return []interface{}{
		&db.ID, &db.Name, &db.Phone, &db.Comment, &db.Longitude, &db.Latitude,
		&db.RegionID, &db.SocialID, &db.OrderStatusID,
		&db.WorkerArrivalDate, &db.EndDateJob,
		&db.Total, &db.PrePayment, &db.DueAmount,
		&db.Status, &db.GetPrePaymentDate, &db.GetAllPaymentDate,
		&db.ManagerID, &db.ManagerName, &db.ManagerPhone,
		&db.ZamirID, &db.ZamirName, &db.ZamirPhone,
		&db.UstID, &db.UstName, &db.UstPhone,
		&db.ZavodID, &db.ZavodName, &db.ZavodPhone,
		&db.CreatedAt, &db.UpdatedAt,
	}
}

func (db *dbOrder) ToEntity() entities.Order {
	return entities.Order{
		ID:        db.ID,
		Name:      db.Name.Ptr(),
		Phone:     db.Phone.Ptr(),
		Comment:   db.Comment.Ptr(),
		Longitude: db.Longitude.Ptr(),
		Latitude:  db.Latitude.Ptr(),

		RegionID:      nullUUIDToPtr(db.RegionID),
		SocialID:      nullUUIDToPtr(db.SocialID),
		OrderStatusID: nullUUIDToPtr(db.OrderStatusID),

		WorkerArrivalDate: db.WorkerArrivalDate.Ptr(),
		EndDateJob:        db.EndDateJob.Ptr(),

		Total:      db.Total.Ptr(),
		PrePayment: db.PrePayment.Ptr(),
		DueAmount:  db.DueAmount.Ptr(),

		Status:            entities.Status(db.Status),
		GetPrePaymentDate: db.GetPrePaymentDate.Ptr(),
		GetAllPaymentDate: db.GetAllPaymentDate.Ptr(),

		ManagerID:    nullUUIDToPtr(db.ManagerID),
		ManagerName:  db.ManagerName.Ptr(),
		ManagerPhone: db.ManagerPhone.Ptr(),

		Zamir: entities.AssignmentSlot{UserID: nullUUIDToPtr(db.ZamirID), Name: db.ZamirName.Ptr(), Phone: db.ZamirPhone.Ptr()},
		Ust:   entities.AssignmentSlot{UserID: nullUUIDToPtr(db.UstID), Name: db.UstName.Ptr(), Phone: db.UstPhone.Ptr()},
		Zavod: entities.AssignmentSlot{UserID: nullUUIDToPtr(db.ZavodID), Name: db.ZavodName.Ptr(), Phone: db.ZavodPhone.Ptr()},

		CreatedAt: db.CreatedAt.Time,
		UpdatedAt: db.UpdatedAt.Time,
	}
}

// slotColumns — имена колонок слота назначения для рабочей роли.
func slotColumns(role entities.Role) (idCol, nameCol, phoneCol string, err error) {
	switch role {
	case entities.RoleZamir:
		return "zamir_id", "zamir_name", "zamir_phone", nil
	case entities.RoleUstanovchik:
		return "ust_id", "ust_name", "ust_phone", nil
	case entities.RoleZavod:
		return "zavod_id", "zavod_name", "zavod_phone", nil
	}
	return "", "", "", fmt.Errorf("у роли %s нет слота назначения", role)
}

func (r *OrderRepository) CreateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	query := `
		INSERT INTO orders (
			id, name, phone, comment, longitude, latitude,
			region_id, social_id, order_status_id,
			worker_arrival_date, end_date_job,
			total, pre_payment, due_amount, status,
			manager_id, manager_name, manager_phone,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW(),NOW())`

	_, err := tx.Exec(ctx, query,
		order.ID,
		null.StringFromPtr(order.Name),
		null.StringFromPtr(order.Phone),
		null.StringFromPtr(order.Comment),
		null.Float64FromPtr(order.Longitude),
		null.Float64FromPtr(order.Latitude),
		ptrToNullUUID(order.RegionID),
		ptrToNullUUID(order.SocialID),
		ptrToNullUUID(order.OrderStatusID),
		null.TimeFromPtr(order.WorkerArrivalDate),
		null.TimeFromPtr(order.EndDateJob),
		null.Float64FromPtr(order.Total),
		null.Float64FromPtr(order.PrePayment),
		null.Float64FromPtr(order.DueAmount),
		string(order.Status),
		ptrToNullUUID(order.ManagerID),
		null.StringFromPtr(order.ManagerName),
		null.StringFromPtr(order.ManagerPhone),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Указанный справочник не найден")
		}
		return fmt.Errorf("ошибка записи заказа: %w", err)
	}
	return nil
}

func (r *OrderRepository) findOne(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*entities.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders ord WHERE ord.id = $1`, orderColumns)
	if forUpdate {
		query += " FOR UPDATE OF ord"
	}

	var db dbOrder
	if err := q.QueryRow(ctx, query, id).Scan(db.scanDest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("Заказ не найден")
		}
		return nil, fmt.Errorf("ошибка чтения заказа: %w", err)
	}

	order := db.ToEntity()
	return &order, nil
}

// FindOrder возвращает заказ с подгруженными справочниками и замерами.
func (r *OrderRepository) FindOrder(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	order, err := r.findOne(ctx, r.storage, id, false)
	if err != nil {
		return nil, err
	}
	if err := r.attachReferences(ctx, order); err != nil {
		return nil, err
	}
	if err := r.attachRooms(ctx, []*entities.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// FindOrderForUpdateInTx читает строку заказа под блокировкой FOR UPDATE.
// Претендующие на один слот транзакции сериализуются на этой строке.
func (r *OrderRepository) FindOrderForUpdateInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entities.Order, error) {
	return r.findOne(ctx, tx, id, true)
}

// UpdateOrderInTx пишет все изменяемые бизнес-поля одной командой.
// Слоты назначения меняются только через ClaimSlotInTx/ClearSlotInTx.
func (r *OrderRepository) UpdateOrderInTx(ctx context.Context, tx pgx.Tx, order *entities.Order) error {
	query := `
		UPDATE orders SET
			name = $2, phone = $3, comment = $4, longitude = $5, latitude = $6,
			region_id = $7, social_id = $8, order_status_id = $9,
			worker_arrival_date = $10, end_date_job = $11,
			total = $12, pre_payment = $13, due_amount = $14,
			status = $15, get_pre_payment_date = $16, get_all_payment_date = $17,
			updated_at = NOW()
		WHERE id = $1`

	tag, err := tx.Exec(ctx, query,
		order.ID,
		null.StringFromPtr(order.Name),
		null.StringFromPtr(order.Phone),
		null.StringFromPtr(order.Comment),
		null.Float64FromPtr(order.Longitude),
		null.Float64FromPtr(order.Latitude),
		ptrToNullUUID(order.RegionID),
		ptrToNullUUID(order.SocialID),
		ptrToNullUUID(order.OrderStatusID),
		null.TimeFromPtr(order.WorkerArrivalDate),
		null.TimeFromPtr(order.EndDateJob),
		null.Float64FromPtr(order.Total),
		null.Float64FromPtr(order.PrePayment),
		null.Float64FromPtr(order.DueAmount),
		string(order.Status),
		null.TimeFromPtr(order.GetPrePaymentDate),
		null.TimeFromPtr(order.GetAllPaymentDate),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Указанный справочник не найден")
		}
		return fmt.Errorf("ошибка обновления заказа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	return nil
}

// ClaimSlotInTx занимает слот роли. Условие «слот пуст или уже мой»
// входит в сам UPDATE: проигравший гонку получает Conflict, а не
// молчаливую перезапись.
func (r *OrderRepository) ClaimSlotInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, role entities.Role, slot entities.AssignmentSlot) error {
	idCol, nameCol, phoneCol, err := slotColumns(role)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE orders SET %s = $2, %s = $3, %s = $4, updated_at = NOW()
		WHERE id = $1 AND (%s IS NULL OR %s = $2)`,
		idCol, nameCol, phoneCol, idCol, idCol)

	tag, err := tx.Exec(ctx, query,
		orderID,
		ptrToNullUUID(slot.UserID),
		null.StringFromPtr(slot.Name),
		null.StringFromPtr(slot.Phone),
	)
	if err != nil {
		return fmt.Errorf("ошибка назначения заказа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("Заказ уже назначен другому пользователю")
	}
	return nil
}

func (r *OrderRepository) ClearSlotInTx(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, role entities.Role) error {
	idCol, nameCol, phoneCol, err := slotColumns(role)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE orders SET %s = NULL, %s = NULL, %s = NULL, updated_at = NOW()
		WHERE id = $1`, idCol, nameCol, phoneCol)

	tag, err := tx.Exec(ctx, query, orderID)
	if err != nil {
		return fmt.Errorf("ошибка снятия назначения: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	return nil
}

func (r *OrderRepository) DeleteOrderInTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления заказа: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("Заказ не найден")
	}
	return nil
}

// buildOrderPredicate собирает составной предикат листинга.
func buildOrderPredicate(filter dto.OrderFilter, scope *SlotScope) (sq.And, error) {
	where := sq.And{}

	if len([]rune(filter.Search)) > 2 {
		pattern := "%" + filter.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"ord.name": pattern},
			sq.ILike{"ord.phone": pattern},
			sq.ILike{"r.name": pattern},
		})
	}

	if filter.OrderStatusID != nil {
		where = append(where, sq.Eq{"ord.order_status_id": *filter.OrderStatusID})
	}
	if filter.RegionID != nil {
		where = append(where, sq.Eq{"ord.region_id": *filter.RegionID})
	}
	if filter.SocialID != nil {
		where = append(where, sq.Eq{"ord.social_id": *filter.SocialID})
	}
	if filter.Status != nil {
		where = append(where, sq.Eq{"ord.status": *filter.Status})
	}

	if filter.StartDate != nil {
		where = append(where, sq.GtOrEq{"ord.created_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, sq.LtOrEq{"ord.created_at": *filter.EndDate})
	}
	if filter.EndDateJob != nil {
		where = append(where, sq.GtOrEq{"ord.end_date_job": *filter.EndDateJob})
	}
	if filter.WorkerArrivalDate != nil {
		where = append(where, sq.GtOrEq{"ord.worker_arrival_date": *filter.WorkerArrivalDate})
	}

	if scope != nil {
		idCol, _, _, err := slotColumns(scope.Role)
		if err != nil {
			return nil, err
		}
		switch scope.Scope {
		case dto.ScopeMine:
			where = append(where, sq.Eq{"ord." + idCol: scope.UserID})
		default:
			// Пул неразобранных: заказы этапа роли со свободным слотом.
			where = append(where, sq.Eq{"ord.status": string(scope.Role.WorkStage())})
			where = append(where, sq.Eq{"ord." + idCol: nil})
		}
	}

	return where, nil
}

func (r *OrderRepository) GetOrders(ctx context.Context, filter dto.OrderFilter, scope *SlotScope) ([]entities.Order, uint64, error) {
	where, err := buildOrderPredicate(filter, scope)
	if err != nil {
		return nil, 0, err
	}

	countBuilder := sq.Select("COUNT(*)").
		From("orders ord").
		LeftJoin("regions r ON ord.region_id = r.id").
		PlaceholderFormat(sq.Dollar)
	if len(where) > 0 {
		countBuilder = countBuilder.Where(where)
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заказов: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	listBuilder := sq.Select(orderColumns, "r.name AS region_name", "s.name AS social_name", "os.name AS order_status_name").
		From("orders ord").
		LeftJoin("regions r ON ord.region_id = r.id").
		LeftJoin("socials s ON ord.social_id = s.id").
		LeftJoin("order_statuses os ON ord.order_status_id = os.id").
		OrderBy("ord.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		PlaceholderFormat(sq.Dollar)
	if len(where) > 0 {
		listBuilder = listBuilder.Where(where)
	}

	query, args, err := listBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса листинга: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		var db dbOrder
		var regionName, socialName, orderStatusName null.String

		dest := append(db.scanDest(), &regionName, &socialName, &orderStatusName)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заказа: %w", err)
		}

		order := db.ToEntity()
		if order.RegionID != nil && regionName.Valid {
			order.Region = &entities.Region{ID: *order.RegionID, Name: regionName.String}
		}
		if order.SocialID != nil && socialName.Valid {
			order.Social = &entities.Social{ID: *order.SocialID, Name: socialName.String}
		}
		if order.OrderStatusID != nil && orderStatusName.Valid {
			order.OrderStatus = &entities.OrderStatus{ID: *order.OrderStatusID, Name: orderStatusName.String}
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	orderPtrs := make([]*entities.Order, len(orders))
	for i := range orders {
		orderPtrs[i] = &orders[i]
	}
	if err := r.attachRooms(ctx, orderPtrs); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func buildStatisticsPredicate(filter dto.StatisticsFilter) sq.And {
	status := string(entities.StatusDone)
	if filter.Status != nil {
		status = *filter.Status
	}

	where := sq.And{sq.Eq{"ord.status": status}}
	if filter.StartDate != nil {
		where = append(where, sq.GtOrEq{"ord.updated_at": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, sq.LtOrEq{"ord.updated_at": *filter.EndDate})
	}
	return where
}

func (r *OrderRepository) GetDoneOrders(ctx context.Context, filter dto.StatisticsFilter) ([]entities.Order, uint64, error) {
	// Для сводки диапазон дат применяется к updated_at, поэтому
	// предикат собирается отдельно от обычного листинга.
	where := buildStatisticsPredicate(filter)

	countQuery, countArgs, err := sq.Select("COUNT(*)").From("orders ord").Where(where).
		PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта завершённых заказов: %w", err)
	}
	if total == 0 {
		return []entities.Order{}, 0, nil
	}

	query, args, err := sq.Select(orderColumns, "r.name AS region_name", "s.name AS social_name", "os.name AS order_status_name").
		From("orders ord").
		LeftJoin("regions r ON ord.region_id = r.id").
		LeftJoin("socials s ON ord.social_id = s.id").
		LeftJoin("order_statuses os ON ord.order_status_id = os.id").
		Where(where).
		OrderBy("ord.created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения завершённых заказов: %w", err)
	}
	defer rows.Close()

	orders := make([]entities.Order, 0)
	for rows.Next() {
		var db dbOrder
		var regionName, socialName, orderStatusName null.String

		dest := append(db.scanDest(), &regionName, &socialName, &orderStatusName)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования заказа: %w", err)
		}

		order := db.ToEntity()
		if order.RegionID != nil && regionName.Valid {
			order.Region = &entities.Region{ID: *order.RegionID, Name: regionName.String}
		}
		if order.SocialID != nil && socialName.Valid {
			order.Social = &entities.Social{ID: *order.SocialID, Name: socialName.String}
		}
		if order.OrderStatusID != nil && orderStatusName.Valid {
			order.OrderStatus = &entities.OrderStatus{ID: *order.OrderStatusID, Name: orderStatusName.String}
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// SumAmounts считает агрегатные суммы по тому же предикату, что и
// листинг сводки.
func (r *OrderRepository) SumAmounts(ctx context.Context, filter dto.StatisticsFilter) (dto.OrderSumsDTO, error) {
	where := buildStatisticsPredicate(filter)

	query, args, err := sq.Select(
		"COALESCE(SUM(ord.total), 0)",
		"COALESCE(SUM(ord.pre_payment), 0)",
		"COALESCE(SUM(ord.due_amount), 0)",
	).From("orders ord").Where(where).PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return dto.OrderSumsDTO{}, err
	}

	var sums dto.OrderSumsDTO
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&sums.Total, &sums.PrePayment, &sums.DueAmount); err != nil {
		return dto.OrderSumsDTO{}, fmt.Errorf("ошибка подсчёта сумм: %w", err)
	}
	return sums, nil
}

func (r *OrderRepository) attachReferences(ctx context.Context, order *entities.Order) error {
	query := `
		SELECT r.name, s.name, os.name
		FROM orders ord
		LEFT JOIN regions r ON ord.region_id = r.id
		LEFT JOIN socials s ON ord.social_id = s.id
		LEFT JOIN order_statuses os ON ord.order_status_id = os.id
		WHERE ord.id = $1`

	var regionName, socialName, orderStatusName null.String
	if err := r.storage.QueryRow(ctx, query, order.ID).Scan(&regionName, &socialName, &orderStatusName); err != nil {
		return fmt.Errorf("ошибка чтения справочников заказа: %w", err)
	}

	if order.RegionID != nil && regionName.Valid {
		order.Region = &entities.Region{ID: *order.RegionID, Name: regionName.String}
	}
	if order.SocialID != nil && socialName.Valid {
		order.Social = &entities.Social{ID: *order.SocialID, Name: socialName.String}
	}
	if order.OrderStatusID != nil && orderStatusName.Valid {
		order.OrderStatus = &entities.OrderStatus{ID: *order.OrderStatusID, Name: orderStatusName.String}
	}
	return nil
}

func (r *OrderRepository) attachRooms(ctx context.Context, orders []*entities.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, 0, len(orders))
	byID := make(map[uuid.UUID]*entities.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID.String())
		byID[o.ID] = o
	}

	query := `
		SELECT id, order_id, name, key, value, created_at, updated_at
		FROM room_measurements
		WHERE order_id = ANY($1::uuid[])
		ORDER BY created_at`

	rows, err := r.storage.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("ошибка чтения замеров: %w", err)
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

		if owner, ok := byID[room.OrderID]; ok {
			owner.Rooms = append(owner.Rooms, room)
		}
	}
	return rows.Err()
}
