package repositories

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-booking/internal/entities"
	"equipment-booking/pkg/constants"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/types"
)

var testPool *pgxpool.Pool

// TestMain настраивает и разрывает соединение с тестовой БД, применяет схему и запускает тесты.
// Без TEST_DATABASE_URL интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	testDbUrl := os.Getenv("TEST_DATABASE_URL")
	if testDbUrl == "" {
		log.Println("TEST_DATABASE_URL не задан, интеграционные тесты репозиториев пропущены")
		os.Exit(0)
	}
	var err error

	testPool, err = pgxpool.New(context.Background(), testDbUrl)
	if err != nil {
		log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	defer testPool.Close()

	applySchema(testPool)

	code := m.Run()
	os.Exit(code)
}

// applySchema читает и выполняет DDL-скрипт для создания таблиц в тестовой БД.
func applySchema(pool *pgxpool.Pool) {
	path, _ := filepath.Abs("../../testdata/schema.sql")
	schema, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Не удалось прочитать schema.sql: %v", err)
	}
	_, err = pool.Exec(context.Background(), string(schema))
	if err != nil {
		log.Fatalf("Не удалось применить схему БД: %v", err)
	}
}

// cleanupTables очищает таблицы для обеспечения изоляции тестов.
func cleanupTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`TRUNCATE TABLE bookings, equipments, equipment_categories, department_accesses, users, departments RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

// seedData создает подразделение, пользователя, категорию и оборудование для тестов бронирований.
func seedData(t *testing.T, pool *pgxpool.Pool) (userID, equipmentID uint64) {
	t.Helper()
	ctx := context.Background()

	var departmentID uint64
	err := pool.QueryRow(ctx,
		`INSERT INTO departments (name, code) VALUES ('Лаборатория электроники', 'LAB-EL') RETURNING id`).Scan(&departmentID)
	require.NoError(t, err)

	err = pool.QueryRow(ctx,
		`INSERT INTO users (username, fio, password, telegram_key) VALUES ('ivanov', 'Иванов И.И.', 'hash', 'key-1') RETURNING id`).Scan(&userID)
	require.NoError(t, err)

	var categoryID uint64
	err = pool.QueryRow(ctx,
		`INSERT INTO equipment_categories (name, approval_required) VALUES ('Измерительные приборы', TRUE) RETURNING id`).Scan(&categoryID)
	require.NoError(t, err)

	err = pool.QueryRow(ctx,
		`INSERT INTO equipments (name, category_id, department_id, inventory_number) VALUES ('Осциллограф', $1, $2, 'INV-001') RETURNING id`,
		categoryID, departmentID).Scan(&equipmentID)
	require.NoError(t, err)

	return
}

// insertBooking вставляет бронирование напрямую, минуя бизнес-правила.
func insertBooking(t *testing.T, userID, equipmentID uint64, start, end time.Time, status string) uint64 {
	t.Helper()
	var id uint64
	err := testPool.QueryRow(context.Background(),
		`INSERT INTO bookings (user_id, equipment_id, start_time, end_time, status, purpose)
		 VALUES ($1, $2, $3, $4, $5, 'тест') RETURNING id`,
		userID, equipmentID, start, end, status).Scan(&id)
	require.NoError(t, err)
	return id
}

func TestBookingRepository_Integration_CountConflicts(t *testing.T) {
	require.NotNil(t, testPool, "testPool не инициализирован")
	cleanupTables(t, testPool)
	userID, equipmentID := seedData(t, testPool)
	repo := NewBookingRepository(testPool, zap.NewNop())
	ctx := context.Background()

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	insertBooking(t, userID, equipmentID, base, base.Add(2*time.Hour), constants.BookingStatusApproved)

	t.Run("пересекающийся интервал", func(t *testing.T) {
		count, err := repo.CountConflicts(ctx, nil, equipmentID, base.Add(time.Hour), base.Add(3*time.Hour), 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), count)
	})

	t.Run("стык конец-к-началу пересечением не считается", func(t *testing.T) {
		count, err := repo.CountConflicts(ctx, nil, equipmentID, base.Add(2*time.Hour), base.Add(3*time.Hour), 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), count)

		count, err = repo.CountConflicts(ctx, nil, equipmentID, base.Add(-time.Hour), base, 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), count)
	})

	t.Run("pending не блокирует", func(t *testing.T) {
		pendingStart := base.Add(6 * time.Hour)
		insertBooking(t, userID, equipmentID, pendingStart, pendingStart.Add(time.Hour), constants.BookingStatusPending)

		count, err := repo.CountConflicts(ctx, nil, equipmentID, pendingStart, pendingStart.Add(time.Hour), 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), count)
	})

	t.Run("отмененное не блокирует", func(t *testing.T) {
		cancelledStart := base.Add(10 * time.Hour)
		insertBooking(t, userID, equipmentID, cancelledStart, cancelledStart.Add(time.Hour), constants.BookingStatusCancelled)

		count, err := repo.CountConflicts(ctx, nil, equipmentID, cancelledStart, cancelledStart.Add(time.Hour), 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), count)
	})

	t.Run("исключение собственного бронирования при переносе", func(t *testing.T) {
		selfStart := base.Add(14 * time.Hour)
		selfID := insertBooking(t, userID, equipmentID, selfStart, selfStart.Add(time.Hour), constants.BookingStatusApproved)

		count, err := repo.CountConflicts(ctx, nil, equipmentID, selfStart, selfStart.Add(time.Hour), selfID)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), count)
	})
}

func TestBookingRepository_Integration_CreateBookingInTx(t *testing.T) {
	cleanupTables(t, testPool)
	userID, equipmentID := seedData(t, testPool)
	repo := NewBookingRepository(testPool, zap.NewNop())
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	tx, err := testPool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	require.NoError(t, repo.LockEquipment(ctx, tx, equipmentID))

	created, err := repo.CreateBookingInTx(ctx, tx, entities.Booking{
		UserID:      userID,
		EquipmentID: equipmentID,
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Status:      constants.BookingStatusPending,
		Purpose:     "интеграционный тест",
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	found, err := repo.FindBooking(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusPending, found.Status)
	assert.Equal(t, userID, found.UserID)
	assert.True(t, found.StartTime.Equal(start))
}

func TestBookingRepository_Integration_UpdateStatusIf(t *testing.T) {
	cleanupTables(t, testPool)
	userID, equipmentID := seedData(t, testPool)
	repo := NewBookingRepository(testPool, zap.NewNop())
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	bookingID := insertBooking(t, userID, equipmentID, start, start.Add(time.Hour), constants.BookingStatusPending)

	t.Run("переход из допустимого статуса", func(t *testing.T) {
		updated, err := repo.UpdateStatusIf(ctx, bookingID, constants.BookingStatusApproved,
			[]string{constants.BookingStatusPending}, &userID)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusApproved, updated.Status)
		require.True(t, updated.ApprovedBy.Valid)
		assert.Equal(t, userID, updated.ApprovedBy.Uint64)
		assert.True(t, updated.ApprovedAt.Valid)
	})

	t.Run("повторный переход проигрывает", func(t *testing.T) {
		_, err := repo.UpdateStatusIf(ctx, bookingID, constants.BookingStatusApproved,
			[]string{constants.BookingStatusPending}, &userID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		// Статус не изменился.
		found, err := repo.FindBooking(ctx, bookingID)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusApproved, found.Status)
	})
}

func TestBookingRepository_Integration_CompleteExpired(t *testing.T) {
	cleanupTables(t, testPool)
	userID, equipmentID := seedData(t, testPool)
	repo := NewBookingRepository(testPool, zap.NewNop())
	ctx := context.Background()

	// Истекшее подтвержденное и еще идущее бронирования.
	expiredID := insertBooking(t, userID, equipmentID,
		time.Now().Add(-3*time.Hour), time.Now().Add(-time.Hour), constants.BookingStatusApproved)
	ongoingID := insertBooking(t, userID, equipmentID,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour), constants.BookingStatusActive)

	completed, err := repo.CompleteExpired(ctx)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, expiredID, completed[0].ID)

	found, err := repo.FindBooking(ctx, expiredID)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusCompleted, found.Status)

	found, err = repo.FindBooking(ctx, ongoingID)
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusActive, found.Status)

	// Повторный запуск ничего не находит.
	completed, err = repo.CompleteExpired(ctx)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestBookingRepository_Integration_ClaimDueReminders(t *testing.T) {
	cleanupTables(t, testPool)
	userID, equipmentID := seedData(t, testPool)
	repo := NewBookingRepository(testPool, zap.NewNop())
	ctx := context.Background()

	lookahead := 2 * time.Hour
	shortLookahead := 15 * time.Minute
	shortLimit := 2 * time.Hour

	// Длинное бронирование начинается через час - попадает в двухчасовое окно.
	longID := insertBooking(t, userID, equipmentID,
		time.Now().Add(time.Hour), time.Now().Add(4*time.Hour), constants.BookingStatusApproved)
	// Короткое бронирование через час - его окно всего 15 минут, еще рано.
	insertBooking(t, userID, equipmentID,
		time.Now().Add(time.Hour), time.Now().Add(90*time.Minute), constants.BookingStatusApproved)
	// Короткое бронирование через 10 минут - пора напоминать.
	shortDueID := insertBooking(t, userID, equipmentID,
		time.Now().Add(10*time.Minute), time.Now().Add(40*time.Minute), constants.BookingStatusApproved)
	// Pending напоминаний не получает.
	insertBooking(t, userID, equipmentID,
		time.Now().Add(30*time.Minute), time.Now().Add(5*time.Hour), constants.BookingStatusPending)

	due, err := repo.ClaimDueReminders(ctx, lookahead, shortLookahead, shortLimit)
	require.NoError(t, err)
	require.Len(t, due, 2)

	ids := []uint64{due[0].ID, due[1].ID}
	assert.Contains(t, ids, longID)
	assert.Contains(t, ids, shortDueID)

	// Повторный вызов уже ничего не отдает: строки помечены reminded_at.
	due, err = repo.ClaimDueReminders(ctx, lookahead, shortLookahead, shortLimit)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestBookingRepository_Integration_GetBookingsScope(t *testing.T) {
	cleanupTables(t, testPool)
	userID, equipmentID := seedData(t, testPool)
	repo := NewBookingRepository(testPool, zap.NewNop())
	ctx := context.Background()

	var otherUserID uint64
	err := testPool.QueryRow(ctx,
		`INSERT INTO users (username, fio, password, telegram_key) VALUES ('petrov', 'Петров П.П.', 'hash', 'key-2') RETURNING id`).Scan(&otherUserID)
	require.NoError(t, err)

	start := time.Now().Add(24 * time.Hour)
	insertBooking(t, userID, equipmentID, start, start.Add(time.Hour), constants.BookingStatusApproved)
	insertBooking(t, otherUserID, equipmentID, start.Add(2*time.Hour), start.Add(3*time.Hour), constants.BookingStatusApproved)

	t.Run("без ограничений видны все", func(t *testing.T) {
		bookings, total, err := repo.GetBookings(ctx, types.Filter{}, BookingScope{})
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total)
		assert.Len(t, bookings, 2)
	})

	t.Run("только свои", func(t *testing.T) {
		bookings, total, err := repo.GetBookings(ctx, types.Filter{}, BookingScope{UserID: &userID})
		require.NoError(t, err)
		assert.Equal(t, uint64(1), total)
		require.Len(t, bookings, 1)
		assert.Equal(t, userID, bookings[0].User.ID)
	})

	t.Run("свои плюс управляемое подразделение", func(t *testing.T) {
		var departmentID uint64
		err := testPool.QueryRow(ctx, `SELECT department_id FROM equipments WHERE id = $1`, equipmentID).Scan(&departmentID)
		require.NoError(t, err)

		scope := BookingScope{UserID: &otherUserID, DepartmentIDs: []uint64{departmentID}}
		_, total, err := repo.GetBookings(ctx, types.Filter{}, scope)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), total, "управляемое подразделение добавляет чужие бронирования")
	})
}
