package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/pkg/constants"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/types"
)

const bookingTable = "bookings"

var bookingAllowedFilterFields = map[string]string{
	"status":       "b.status",
	"equipment_id": "b.equipment_id",
	"user_id":      "b.user_id",
}

var bookingAllowedSortFields = map[string]string{
	"id":         "b.id",
	"start_time": "b.start_time",
	"created_at": "b.created_at",
}

// BookingScope ограничивает видимость списка бронирований.
// Nil-поля означают отсутствие ограничения. Если заданы оба поля,
// они объединяются через OR: свои бронирования плюс бронирования
// управляемых подразделений.
type BookingScope struct {
	UserID        *uint64
	DepartmentIDs []uint64
}

type BookingRepositoryInterface interface {
	// CountConflicts считает пересечения с блокирующими бронированиями.
	// Интервалы открытые: стык конец-к-началу пересечением не считается.
	// q - пул или транзакция (nil - пул репозитория), excludeID исключает само
	// бронирование при переносе.
	CountConflicts(ctx context.Context, q Querier, equipmentID uint64, start, end time.Time, excludeID uint64) (uint64, error)
	// LockEquipment берет блокировку строки оборудования до конца транзакции.
	// Сериализует конкурентное создание бронирований одного оборудования.
	LockEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) error
	CreateBookingInTx(ctx context.Context, tx pgx.Tx, booking entities.Booking) (*entities.Booking, error)
	FindBooking(ctx context.Context, id uint64) (*entities.Booking, error)
	FindBookingDetails(ctx context.Context, id uint64) (*dto.BookingDetailsDTO, error)
	GetBookings(ctx context.Context, filter types.Filter, scope BookingScope) ([]dto.BookingDTO, uint64, error)
	GetUserActiveBookings(ctx context.Context, userID uint64) ([]dto.BookingDetailsDTO, error)
	GetBusySlots(ctx context.Context, equipmentID uint64, date time.Time) ([]dto.BusySlotDTO, error)
	// UpdateStatusIf переводит бронирование в новый статус только из перечисленных.
	// Возвращает apperrors.ErrNotFound, если строка не в допустимом статусе -
	// конкурентный переход проигрывает без порчи данных.
	UpdateStatusIf(ctx context.Context, id uint64, newStatus string, fromStatuses []string, approverID *uint64) (*entities.Booking, error)
	// CompleteExpired завершает блокирующие бронирования с истекшим временем
	// и возвращает детали для уведомлений. Повторный запуск - no-op.
	CompleteExpired(ctx context.Context) ([]dto.BookingDetailsDTO, error)
	// ClaimDueReminders атомарно помечает подходящие бронирования как
	// напомненные и возвращает их детали. Каждое бронирование отдается ровно
	// один раз: отметка ставится тем же UPDATE, который выбирает строки.
	ClaimDueReminders(ctx context.Context, lookahead, shortLookahead, shortLimit time.Duration) ([]dto.BookingDetailsDTO, error)
	GetBookingsForReport(ctx context.Context, from, to time.Time) ([]dto.BookingDTO, error)
}

type BookingRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewBookingRepository(storage *pgxpool.Pool, logger *zap.Logger) BookingRepositoryInterface {
	return &BookingRepository{storage: storage, logger: logger}
}

const bookingFields = `id, user_id, equipment_id, start_time, end_time, status, purpose, notes,
	approved_by, approved_at, reminded_at, is_recurring, recurrence_pattern, parent_booking_id,
	created_at, updated_at`

func scanBooking(row pgx.Row) (*entities.Booking, error) {
	var b entities.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.EquipmentID, &b.StartTime, &b.EndTime, &b.Status,
		&b.Purpose, &b.Notes, &b.ApprovedBy, &b.ApprovedAt, &b.RemindedAt,
		&b.IsRecurring, &b.RecurrencePattern, &b.ParentBookingID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования бронирования: %w", err)
	}
	return &b, nil
}

const bookingDetailsQuery = `
	SELECT b.id, b.status, b.start_time, b.end_time, b.purpose,
		u.id, u.fio, u.telegram_chat_id,
		e.name, e.location, d.name
	FROM bookings b
	JOIN users u ON u.id = b.user_id
	JOIN equipments e ON e.id = b.equipment_id
	JOIN departments d ON d.id = e.department_id`

func scanBookingDetails(row pgx.Row) (*dto.BookingDetailsDTO, error) {
	var d dto.BookingDetailsDTO
	err := row.Scan(&d.ID, &d.Status, &d.StartTime, &d.EndTime, &d.Purpose,
		&d.UserID, &d.UserFio, &d.TelegramChatID,
		&d.EquipmentName, &d.Location, &d.DepartmentName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования деталей бронирования: %w", err)
	}
	return &d, nil
}

func (r *BookingRepository) CountConflicts(ctx context.Context, q Querier, equipmentID uint64, start, end time.Time, excludeID uint64) (uint64, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE equipment_id = $1
			AND status = ANY($2)
			AND start_time < $3
			AND end_time > $4
			AND id != $5`, bookingTable)

	if q == nil {
		q = r.storage
	}
	var count uint64
	err := q.QueryRow(ctx, query, equipmentID, constants.BlockingStatuses, end, start, excludeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка проверки пересечений бронирований: %w", err)
	}
	return count, nil
}

func (r *BookingRepository) LockEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) error {
	var id uint64
	err := tx.QueryRow(ctx, `SELECT id FROM equipments WHERE id = $1 FOR UPDATE`, equipmentID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("не удалось заблокировать оборудование: %w", err)
	}
	return nil
}

func (r *BookingRepository) CreateBookingInTx(ctx context.Context, tx pgx.Tx, booking entities.Booking) (*entities.Booking, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, equipment_id, start_time, end_time, status, purpose, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, bookingTable, bookingFields)

	return scanBooking(tx.QueryRow(ctx, query,
		booking.UserID, booking.EquipmentID, booking.StartTime, booking.EndTime,
		booking.Status, booking.Purpose, booking.Notes))
}

func (r *BookingRepository) FindBooking(ctx context.Context, id uint64) (*entities.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, bookingFields, bookingTable)
	return scanBooking(r.storage.QueryRow(ctx, query, id))
}

func (r *BookingRepository) FindBookingDetails(ctx context.Context, id uint64) (*dto.BookingDetailsDTO, error) {
	query := bookingDetailsQuery + ` WHERE b.id = $1`
	return scanBookingDetails(r.storage.QueryRow(ctx, query, id))
}

func (r *BookingRepository) GetBookings(ctx context.Context, filter types.Filter, scope BookingScope) ([]dto.BookingDTO, uint64, error) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	for key, value := range filter.Filter {
		if dbColumn, ok := bookingAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}
	scopeConditions := []string{}
	if scope.UserID != nil {
		scopeConditions = append(scopeConditions, fmt.Sprintf("b.user_id = $%d", argCounter))
		args = append(args, *scope.UserID)
		argCounter++
	}
	if scope.DepartmentIDs != nil {
		scopeConditions = append(scopeConditions, fmt.Sprintf("e.department_id = ANY($%d)", argCounter))
		args = append(args, scope.DepartmentIDs)
		argCounter++
	}
	if len(scopeConditions) > 0 {
		conditions = append(conditions, "("+strings.Join(scopeConditions, " OR ")+")")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	fromClause := fmt.Sprintf(`FROM %s b
		JOIN users u ON u.id = b.user_id
		JOIN equipments e ON e.id = b.equipment_id
		JOIN departments d ON d.id = e.department_id
		LEFT JOIN users a ON a.id = b.approved_by`, bookingTable)

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", fromClause, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.BookingDTO{}, 0, nil
	}

	orderClause := "ORDER BY b.start_time DESC"
	for field, dir := range filter.Sort {
		if dbColumn, ok := bookingAllowedSortFields[field]; ok {
			direction := "ASC"
			if strings.EqualFold(dir, "desc") {
				direction = "DESC"
			}
			orderClause = fmt.Sprintf("ORDER BY %s %s", dbColumn, direction)
		}
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.status, b.start_time, b.end_time, b.purpose, b.notes, b.approved_at, b.created_at,
			u.id, u.username, u.fio,
			e.id, e.name, e.inventory_number,
			d.id, d.name,
			a.id, a.username, a.fio
		%s %s %s %s`, fromClause, whereClause, orderClause, limitClause)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	bookings := make([]dto.BookingDTO, 0)
	for rows.Next() {
		b, err := scanBookingListRow(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, total, rows.Err()
}

func scanBookingListRow(row pgx.Row) (*dto.BookingDTO, error) {
	var b dto.BookingDTO
	var approvedAt *time.Time
	var createdAt time.Time
	var approverID *uint64
	var approverUsername, approverFio *string

	err := row.Scan(&b.ID, &b.Status, &b.StartTime, &b.EndTime, &b.Purpose, &b.Notes, &approvedAt, &createdAt,
		&b.User.ID, &b.User.Username, &b.User.Fio,
		&b.Equipment.ID, &b.Equipment.Name, &b.Equipment.InventoryNumber,
		&b.Department.ID, &b.Department.Name,
		&approverID, &approverUsername, &approverFio,
	)
	if err != nil {
		return nil, err
	}
	b.ApprovedAt = approvedAt
	b.CreatedAt = createdAt.Format(time.RFC3339)
	if approverID != nil {
		b.ApprovedBy = &dto.ShortUserDTO{ID: *approverID, Username: *approverUsername, Fio: *approverFio}
	}
	return &b, nil
}

// GetUserActiveBookings отдает незавершенные бронирования пользователя
// для команды /mybookings в боте.
func (r *BookingRepository) GetUserActiveBookings(ctx context.Context, userID uint64) ([]dto.BookingDetailsDTO, error) {
	query := bookingDetailsQuery + `
	WHERE b.user_id = $1 AND b.status = ANY($2) AND b.end_time > NOW()
	ORDER BY b.start_time ASC
	LIMIT 10`

	statuses := []string{constants.BookingStatusPending, constants.BookingStatusApproved, constants.BookingStatusActive}
	rows, err := r.storage.Query(ctx, query, userID, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]dto.BookingDetailsDTO, 0)
	for rows.Next() {
		b, err := scanBookingDetails(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *BookingRepository) GetBusySlots(ctx context.Context, equipmentID uint64, date time.Time) ([]dto.BusySlotDTO, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := fmt.Sprintf(`
		SELECT b.start_time, b.end_time, u.fio
		FROM %s b
		JOIN users u ON u.id = b.user_id
		WHERE b.equipment_id = $1
			AND b.status = ANY($2)
			AND b.start_time < $3
			AND b.end_time > $4
		ORDER BY b.start_time ASC`, bookingTable)

	rows, err := r.storage.Query(ctx, query, equipmentID, constants.BlockingStatuses, dayEnd, dayStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]dto.BusySlotDTO, 0)
	for rows.Next() {
		var start, end time.Time
		var slot dto.BusySlotDTO
		if err := rows.Scan(&start, &end, &slot.User); err != nil {
			return nil, err
		}
		slot.StartTime = start.Format(time.RFC3339)
		slot.EndTime = end.Format(time.RFC3339)
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (r *BookingRepository) UpdateStatusIf(ctx context.Context, id uint64, newStatus string, fromStatuses []string, approverID *uint64) (*entities.Booking, error) {
	var query string
	args := []interface{}{newStatus, id, fromStatuses}
	if approverID != nil {
		query = fmt.Sprintf(`
			UPDATE %s SET status = $1, approved_by = $4, approved_at = NOW(), updated_at = NOW()
			WHERE id = $2 AND status = ANY($3)
			RETURNING %s`, bookingTable, bookingFields)
		args = append(args, *approverID)
	} else {
		query = fmt.Sprintf(`
			UPDATE %s SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = ANY($3)
			RETURNING %s`, bookingTable, bookingFields)
	}
	return scanBooking(r.storage.QueryRow(ctx, query, args...))
}

func (r *BookingRepository) CompleteExpired(ctx context.Context) ([]dto.BookingDetailsDTO, error) {
	query := `
		WITH expired AS (
			SELECT id FROM bookings
			WHERE status = ANY($1) AND end_time < NOW()
			FOR UPDATE SKIP LOCKED
		), claimed AS (
			UPDATE bookings b
			SET status = $2, updated_at = NOW()
			FROM expired
			WHERE b.id = expired.id
			RETURNING b.id, b.status, b.start_time, b.end_time, b.purpose, b.user_id, b.equipment_id
		)
		SELECT c.id, c.status, c.start_time, c.end_time, c.purpose,
			u.id, u.fio, u.telegram_chat_id,
			e.name, e.location, d.name
		FROM claimed c
		JOIN users u ON u.id = c.user_id
		JOIN equipments e ON e.id = c.equipment_id
		JOIN departments d ON d.id = e.department_id`

	rows, err := r.storage.Query(ctx, query, constants.BlockingStatuses, constants.BookingStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("ошибка завершения истекших бронирований: %w", err)
	}
	defer rows.Close()

	completed := make([]dto.BookingDetailsDTO, 0)
	for rows.Next() {
		b, err := scanBookingDetails(rows)
		if err != nil {
			return nil, err
		}
		completed = append(completed, *b)
	}
	return completed, rows.Err()
}

func (r *BookingRepository) ClaimDueReminders(ctx context.Context, lookahead, shortLookahead, shortLimit time.Duration) ([]dto.BookingDetailsDTO, error) {
	// Короткие бронирования напоминаются ближе к началу, чтобы напоминание
	// не приходило сильно раньше самой брони.
	query := `
		WITH due AS (
			SELECT id FROM bookings
			WHERE status = $1
				AND reminded_at IS NULL
				AND start_time > NOW()
				AND (
					(end_time - start_time >= make_interval(secs => $4) AND start_time <= NOW() + make_interval(secs => $2))
					OR
					(end_time - start_time < make_interval(secs => $4) AND start_time <= NOW() + make_interval(secs => $3))
				)
			FOR UPDATE SKIP LOCKED
		), claimed AS (
			UPDATE bookings b
			SET reminded_at = NOW(), updated_at = NOW()
			FROM due
			WHERE b.id = due.id
			RETURNING b.id, b.status, b.start_time, b.end_time, b.purpose, b.user_id, b.equipment_id
		)
		SELECT c.id, c.status, c.start_time, c.end_time, c.purpose,
			u.id, u.fio, u.telegram_chat_id,
			e.name, e.location, d.name
		FROM claimed c
		JOIN users u ON u.id = c.user_id
		JOIN equipments e ON e.id = c.equipment_id
		JOIN departments d ON d.id = e.department_id`

	rows, err := r.storage.Query(ctx, query, constants.BookingStatusApproved,
		lookahead.Seconds(), shortLookahead.Seconds(), shortLimit.Seconds())
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки бронирований для напоминаний: %w", err)
	}
	defer rows.Close()

	due := make([]dto.BookingDetailsDTO, 0)
	for rows.Next() {
		b, err := scanBookingDetails(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, *b)
	}
	return due, rows.Err()
}

func (r *BookingRepository) GetBookingsForReport(ctx context.Context, from, to time.Time) ([]dto.BookingDTO, error) {
	query := fmt.Sprintf(`
		SELECT b.id, b.status, b.start_time, b.end_time, b.purpose, b.notes, b.approved_at, b.created_at,
			u.id, u.username, u.fio,
			e.id, e.name, e.inventory_number,
			d.id, d.name,
			a.id, a.username, a.fio
		FROM %s b
		JOIN users u ON u.id = b.user_id
		JOIN equipments e ON e.id = b.equipment_id
		JOIN departments d ON d.id = e.department_id
		LEFT JOIN users a ON a.id = b.approved_by
		WHERE b.start_time >= $1 AND b.start_time < $2
		ORDER BY b.start_time ASC`, bookingTable)

	rows, err := r.storage.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]dto.BookingDTO, 0)
	for rows.Next() {
		b, err := scanBookingListRow(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
