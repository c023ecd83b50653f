package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-booking/internal/authz"
	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/config"
	"equipment-booking/pkg/constants"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/types"
)

// --- Фейки для изоляции сервиса от БД ---

type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uint64]*entities.Booking
	nextID    uint64
	conflicts uint64
	locked    []uint64

	completedDetails []dto.BookingDetailsDTO
	dueReminders     []dto.BookingDetailsDTO
	activeBookings   []dto.BookingDetailsDTO

	lastScope types.Filter
	gotScope  repositories.BookingScope
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[uint64]*entities.Booking{}, nextID: 1}
}

func (f *fakeBookingRepo) CountConflicts(ctx context.Context, q repositories.Querier, equipmentID uint64, start, end time.Time, excludeID uint64) (uint64, error) {
	return f.conflicts, nil
}

func (f *fakeBookingRepo) LockEquipment(ctx context.Context, tx pgx.Tx, equipmentID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, equipmentID)
	return nil
}

func (f *fakeBookingRepo) CreateBookingInTx(ctx context.Context, tx pgx.Tx, booking entities.Booking) (*entities.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking.ID = f.nextID
	f.nextID++
	stored := booking
	f.bookings[stored.ID] = &stored
	result := stored
	return &result, nil
}

func (f *fakeBookingRepo) FindBooking(ctx context.Context, id uint64) (*entities.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	result := *booking
	return &result, nil
}

func (f *fakeBookingRepo) FindBookingDetails(ctx context.Context, id uint64) (*dto.BookingDetailsDTO, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &dto.BookingDetailsDTO{ID: booking.ID, Status: booking.Status, UserID: booking.UserID}, nil
}

func (f *fakeBookingRepo) GetBookings(ctx context.Context, filter types.Filter, scope repositories.BookingScope) ([]dto.BookingDTO, uint64, error) {
	f.lastScope = filter
	f.gotScope = scope
	return nil, 0, nil
}

func (f *fakeBookingRepo) GetUserActiveBookings(ctx context.Context, userID uint64) ([]dto.BookingDetailsDTO, error) {
	return f.activeBookings, nil
}

func (f *fakeBookingRepo) GetBusySlots(ctx context.Context, equipmentID uint64, date time.Time) ([]dto.BusySlotDTO, error) {
	return []dto.BusySlotDTO{}, nil
}

func (f *fakeBookingRepo) UpdateStatusIf(ctx context.Context, id uint64, newStatus string, fromStatuses []string, approverID *uint64) (*entities.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	allowed := false
	for _, s := range fromStatuses {
		if booking.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperrors.ErrNotFound
	}
	booking.Status = newStatus
	if approverID != nil {
		booking.ApprovedBy.SetValid(*approverID)
	}
	result := *booking
	return &result, nil
}

func (f *fakeBookingRepo) CompleteExpired(ctx context.Context) ([]dto.BookingDetailsDTO, error) {
	return f.completedDetails, nil
}

func (f *fakeBookingRepo) ClaimDueReminders(ctx context.Context, lookahead, shortLookahead, shortLimit time.Duration) ([]dto.BookingDetailsDTO, error) {
	due := f.dueReminders
	// Повторный вызов уже ничего не возвращает.
	f.dueReminders = nil
	return due, nil
}

func (f *fakeBookingRepo) GetBookingsForReport(ctx context.Context, from, to time.Time) ([]dto.BookingDTO, error) {
	return nil, nil
}

type fakeEquipmentRepo struct {
	equipments map[uint64]*entities.Equipment
}

func (f *fakeEquipmentRepo) GetEquipments(ctx context.Context, filter types.Filter, allowedDepartmentIDs []uint64) ([]dto.EquipmentDTO, uint64, error) {
	return nil, 0, nil
}

func (f *fakeEquipmentRepo) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	equipment, ok := f.equipments[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return equipment, nil
}

func (f *fakeEquipmentRepo) FindEquipmentDetailed(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return f.FindEquipment(ctx, id)
}

func (f *fakeEquipmentRepo) CreateEquipment(ctx context.Context, equipment entities.Equipment) (*entities.Equipment, error) {
	return nil, nil
}

func (f *fakeEquipmentRepo) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	return nil, nil
}

func (f *fakeEquipmentRepo) DeleteEquipment(ctx context.Context, id uint64) error {
	return nil
}

type fakeAccessService struct {
	canBook    bool
	canManage  bool
	grant      *authz.Grant
	managed    []uint64
	accessible []uint64
}

func (f *fakeAccessService) GrantFor(ctx context.Context, userID, departmentID uint64) (*authz.Grant, error) {
	return f.grant, nil
}

func (f *fakeAccessService) CanBook(ctx context.Context, user *entities.User, departmentID uint64) (bool, error) {
	return f.canBook, nil
}

func (f *fakeAccessService) CanManage(ctx context.Context, user *entities.User, departmentID uint64) (bool, error) {
	return f.canManage, nil
}

func (f *fakeAccessService) AccessibleDepartments(ctx context.Context, user *entities.User) ([]entities.Department, error) {
	return nil, nil
}

func (f *fakeAccessService) AccessibleDepartmentIDs(ctx context.Context, user *entities.User) ([]uint64, error) {
	return f.accessible, nil
}

func (f *fakeAccessService) ManagedDepartmentIDs(ctx context.Context, user *entities.User) ([]uint64, error) {
	return f.managed, nil
}

func (f *fakeAccessService) GetAccesses(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.DepartmentAccessDTO, uint64, error) {
	return nil, 0, nil
}

func (f *fakeAccessService) GrantAccess(ctx context.Context, actor *entities.User, payload dto.CreateDepartmentAccessDTO) (*entities.DepartmentAccess, error) {
	return nil, nil
}

func (f *fakeAccessService) UpdateAccess(ctx context.Context, actor *entities.User, id uint64, payload dto.UpdateDepartmentAccessDTO) (*entities.DepartmentAccess, error) {
	return nil, nil
}

func (f *fakeAccessService) RevokeAccess(ctx context.Context, actor *entities.User, id uint64) error {
	return nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// recordingNotifier собирает отправленные уведомления; отдельные ID
// могут «падать» для проверки изоляции сбоев.
type recordingNotifier struct {
	mu      sync.Mutex
	kinds   []string
	ids     []uint64
	failIDs map[uint64]bool
}

func (n *recordingNotifier) Notify(ctx context.Context, kind string, details *dto.BookingDetailsDTO) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failIDs[details.ID] {
		return errors.New("telegram: timeout")
	}
	n.kinds = append(n.kinds, kind)
	n.ids = append(n.ids, details.ID)
	return nil
}

func (n *recordingNotifier) delivered() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.kinds)
}

func (n *recordingNotifier) sentKinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.kinds...)
}

// --- Обвязка ---

type bookingTestEnv struct {
	service       BookingServiceInterface
	bookingRepo   *fakeBookingRepo
	equipmentRepo *fakeEquipmentRepo
	access        *fakeAccessService
	notifier      *recordingNotifier
}

func newBookingTestEnv() *bookingTestEnv {
	bookingRepo := newFakeBookingRepo()
	equipmentRepo := &fakeEquipmentRepo{equipments: map[uint64]*entities.Equipment{}}
	access := &fakeAccessService{canBook: true, canManage: true}
	notifier := &recordingNotifier{failIDs: map[uint64]bool{}}

	cfg := config.BookingConfig{
		MinDuration:            30 * time.Minute,
		ReminderLookahead:      2 * time.Hour,
		ShortReminderLookahead: 15 * time.Minute,
		ShortBookingLimit:      2 * time.Hour,
	}

	service := NewBookingService(bookingRepo, equipmentRepo, access, &fakeTxManager{},
		notifier, cfg, zap.NewNop())

	return &bookingTestEnv{
		service:       service,
		bookingRepo:   bookingRepo,
		equipmentRepo: equipmentRepo,
		access:        access,
		notifier:      notifier,
	}
}

func (env *bookingTestEnv) addEquipment(id uint64, active bool, approvalRequired bool, maxHours uint) {
	env.equipmentRepo.equipments[id] = &entities.Equipment{
		ID:           id,
		Name:         "Осциллограф",
		CategoryID:   1,
		DepartmentID: 5,
		IsActive:     active,
		Category: &entities.EquipmentCategory{
			ID:               1,
			Name:             "Измерительные приборы",
			ApprovalRequired: approvalRequired,
			MaxBookingHours:  maxHours,
		},
		Department: &entities.Department{ID: 5, Name: "Лаборатория электроники"},
	}
}

func (env *bookingTestEnv) addBooking(id, userID, equipmentID uint64, status string) {
	env.bookingRepo.bookings[id] = &entities.Booking{
		ID:          id,
		UserID:      userID,
		EquipmentID: equipmentID,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		Status:      status,
		Purpose:     "тест",
	}
	if id >= env.bookingRepo.nextID {
		env.bookingRepo.nextID = id + 1
	}
}

func requireHttpError(t *testing.T, err error, code int) *apperrors.HttpError {
	t.Helper()
	require.Error(t, err)
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, code, httpErr.Code)
	return httpErr
}

func validationReason(t *testing.T, err error) string {
	t.Helper()
	httpErr := requireHttpError(t, err, 400)
	details, ok := httpErr.Details.(map[string]string)
	require.True(t, ok, "у ошибки валидации должен быть код причины")
	return details["reason"]
}

// --- Создание ---

func TestCreateBookingValidation(t *testing.T) {
	ctx := context.Background()
	actor := &entities.User{ID: 1, Role: constants.RoleUser}
	now := time.Now()

	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		maxHours uint
		reason   string
	}{
		{
			name:   "начало позже окончания",
			start:  now.Add(2 * time.Hour),
			end:    now.Add(time.Hour),
			reason: apperrors.ReasonInvalidInterval,
		},
		{
			name:   "начало равно окончанию",
			start:  now.Add(time.Hour),
			end:    now.Add(time.Hour),
			reason: apperrors.ReasonInvalidInterval,
		},
		{
			name:   "бронирование в прошлом",
			start:  now.Add(-time.Hour),
			end:    now.Add(time.Hour),
			reason: apperrors.ReasonStartInPast,
		},
		{
			name:   "короче минимальной длительности",
			start:  now.Add(time.Hour),
			end:    now.Add(time.Hour + 15*time.Minute),
			reason: apperrors.ReasonBelowMinDuration,
		},
		{
			name:     "длиннее лимита категории",
			start:    now.Add(time.Hour),
			end:      now.Add(7 * time.Hour),
			maxHours: 4,
			reason:   apperrors.ReasonOverMaxDuration,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newBookingTestEnv()
			env.addEquipment(1, true, false, tc.maxHours)

			_, err := env.service.CreateBooking(ctx, actor, dto.CreateBookingDTO{
				EquipmentID: 1,
				StartTime:   tc.start,
				EndTime:     tc.end,
				Purpose:     "эксперимент",
			})
			assert.Equal(t, tc.reason, validationReason(t, err))
			assert.Empty(t, env.bookingRepo.bookings, "невалидное бронирование не сохраняется")
		})
	}
}

func TestCreateBookingWithoutMaxHoursLimit(t *testing.T) {
	env := newBookingTestEnv()
	// max_booking_hours = 0 - лимита нет, суточное бронирование проходит.
	env.addEquipment(1, true, false, 0)
	actor := &entities.User{ID: 1, Role: constants.RoleUser}

	created, err := env.service.CreateBooking(context.Background(), actor, dto.CreateBookingDTO{
		EquipmentID: 1,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(25 * time.Hour),
		Purpose:     "длительный прогон",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.BookingStatusApproved, created.Status)
}

func TestCreateBookingEquipmentChecks(t *testing.T) {
	ctx := context.Background()
	actor := &entities.User{ID: 1, Role: constants.RoleUser}
	payload := dto.CreateBookingDTO{
		EquipmentID: 1,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		Purpose:     "эксперимент",
	}

	t.Run("несуществующее оборудование", func(t *testing.T) {
		env := newBookingTestEnv()
		_, err := env.service.CreateBooking(ctx, actor, payload)
		requireHttpError(t, err, 404)
	})

	t.Run("выведенное из эксплуатации", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, false, false, 0)
		_, err := env.service.CreateBooking(ctx, actor, payload)
		requireHttpError(t, err, 400)
	})

	t.Run("нет права бронировать", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, false, 0)
		env.access.canBook = false
		_, err := env.service.CreateBooking(ctx, actor, payload)
		requireHttpError(t, err, 403)
	})

	t.Run("пересечение с существующим бронированием", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, false, 0)
		env.bookingRepo.conflicts = 1
		_, err := env.service.CreateBooking(ctx, actor, payload)
		requireHttpError(t, err, 409)
		assert.Empty(t, env.bookingRepo.bookings)
	})
}

func TestCreateBookingInitialStatus(t *testing.T) {
	ctx := context.Background()
	actor := &entities.User{ID: 1, Role: constants.RoleUser}
	payload := dto.CreateBookingDTO{
		EquipmentID: 1,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		Purpose:     "эксперимент",
	}

	t.Run("категория без подтверждения - сразу approved", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, false, 0)

		created, err := env.service.CreateBooking(ctx, actor, payload)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusApproved, created.Status)
		assert.Equal(t, []uint64{1}, env.bookingRepo.locked, "создание идет под блокировкой оборудования")
	})

	t.Run("категория с подтверждением - pending", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, true, 0)

		created, err := env.service.CreateBooking(ctx, actor, payload)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusPending, created.Status)
	})
}

// Создание всегда порождает событие created, независимо от того,
// требует категория подтверждения или бронирование одобрено сразу.
func TestCreateBookingNotificationKind(t *testing.T) {
	ctx := context.Background()
	actor := &entities.User{ID: 1, Role: constants.RoleUser}
	payload := dto.CreateBookingDTO{
		EquipmentID: 1,
		StartTime:   time.Now().Add(time.Hour),
		EndTime:     time.Now().Add(2 * time.Hour),
		Purpose:     "эксперимент",
	}

	testCases := []struct {
		name             string
		approvalRequired bool
		wantStatus       string
	}{
		{"автоодобрение", false, constants.BookingStatusApproved},
		{"ожидает подтверждения", true, constants.BookingStatusPending},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newBookingTestEnv()
			env.addEquipment(1, true, tc.approvalRequired, 0)

			created, err := env.service.CreateBooking(ctx, actor, payload)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, created.Status)

			require.Eventually(t, func() bool { return env.notifier.delivered() == 1 },
				time.Second, 5*time.Millisecond)
			assert.Equal(t, []string{constants.NotifyCreated}, env.notifier.sentKinds())
		})
	}
}

// --- Переходы статусов ---

func TestApproveBooking(t *testing.T) {
	ctx := context.Background()
	moderator := &entities.User{ID: 2, Role: constants.RoleModerator}

	t.Run("подтверждение pending", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, true, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusPending)

		updated, err := env.service.ApproveBooking(ctx, moderator, 10)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusApproved, updated.Status)
		require.True(t, updated.ApprovedBy.Valid)
		assert.Equal(t, moderator.ID, updated.ApprovedBy.Uint64)
	})

	t.Run("без права управления", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, true, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusPending)
		env.access.canManage = false

		_, err := env.service.ApproveBooking(ctx, moderator, 10)
		requireHttpError(t, err, 403)
		assert.Equal(t, constants.BookingStatusPending, env.bookingRepo.bookings[10].Status)
	})

	t.Run("не pending", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, true, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusApproved)

		_, err := env.service.ApproveBooking(ctx, moderator, 10)
		requireHttpError(t, err, 409)
	})

	t.Run("несуществующее бронирование", func(t *testing.T) {
		env := newBookingTestEnv()
		_, err := env.service.ApproveBooking(ctx, moderator, 99)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestRejectBooking(t *testing.T) {
	ctx := context.Background()
	moderator := &entities.User{ID: 2, Role: constants.RoleModerator}

	t.Run("отклонение pending фиксирует кто отклонил", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, true, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusPending)

		updated, err := env.service.RejectBooking(ctx, moderator, 10)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusRejected, updated.Status)
		require.True(t, updated.ApprovedBy.Valid)
		assert.Equal(t, moderator.ID, updated.ApprovedBy.Uint64)
	})

	t.Run("отклонить можно только pending", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, true, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusCancelled)

		_, err := env.service.RejectBooking(ctx, moderator, 10)
		requireHttpError(t, err, 409)
	})
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("владелец отменяет свое", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, false, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusApproved)
		owner := &entities.User{ID: 1, Role: constants.RoleUser}

		updated, err := env.service.CancelBooking(ctx, owner, 10)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusCancelled, updated.Status)
	})

	t.Run("чужое бронирование без гранта", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, false, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusApproved)
		stranger := &entities.User{ID: 7, Role: constants.RoleUser}

		_, err := env.service.CancelBooking(ctx, stranger, 10)
		requireHttpError(t, err, 403)
		assert.Equal(t, constants.BookingStatusApproved, env.bookingRepo.bookings[10].Status)
	})

	t.Run("модератор с правом управления отменяет чужое", func(t *testing.T) {
		env := newBookingTestEnv()
		env.addEquipment(1, true, false, 0)
		env.addBooking(10, 1, 1, constants.BookingStatusPending)
		env.access.grant = &authz.Grant{CanView: true, CanManage: true}
		moderator := &entities.User{ID: 7, Role: constants.RoleModerator}

		updated, err := env.service.CancelBooking(ctx, moderator, 10)
		require.NoError(t, err)
		assert.Equal(t, constants.BookingStatusCancelled, updated.Status)
	})

	t.Run("финальный статус не отменяется", func(t *testing.T) {
		for _, status := range constants.FinalBookingStatuses {
			env := newBookingTestEnv()
			env.addEquipment(1, true, false, 0)
			env.addBooking(10, 1, 1, status)
			owner := &entities.User{ID: 1, Role: constants.RoleUser}

			_, err := env.service.CancelBooking(ctx, owner, 10)
			requireHttpError(t, err, 409)
			assert.Equal(t, status, env.bookingRepo.bookings[10].Status, status)
		}
	})
}

// --- Видимость ---

func TestGetBookingsScope(t *testing.T) {
	ctx := context.Background()

	t.Run("админ видит все без ограничений", func(t *testing.T) {
		env := newBookingTestEnv()
		admin := &entities.User{ID: 1, Role: constants.RoleAdmin}

		_, _, err := env.service.GetBookings(ctx, admin, types.Filter{})
		require.NoError(t, err)
		assert.Nil(t, env.bookingRepo.gotScope.UserID)
		assert.Nil(t, env.bookingRepo.gotScope.DepartmentIDs)
	})

	t.Run("пользователь видит только свои", func(t *testing.T) {
		env := newBookingTestEnv()
		env.access.managed = nil
		user := &entities.User{ID: 3, Role: constants.RoleUser}

		_, _, err := env.service.GetBookings(ctx, user, types.Filter{})
		require.NoError(t, err)
		require.NotNil(t, env.bookingRepo.gotScope.UserID)
		assert.Equal(t, uint64(3), *env.bookingRepo.gotScope.UserID)
		assert.Nil(t, env.bookingRepo.gotScope.DepartmentIDs)
	})

	t.Run("модератор видит доступные на просмотр подразделения", func(t *testing.T) {
		env := newBookingTestEnv()
		env.access.accessible = []uint64{5, 8}
		moderator := &entities.User{ID: 4, Role: constants.RoleModerator}

		_, _, err := env.service.GetBookings(ctx, moderator, types.Filter{})
		require.NoError(t, err)
		assert.Nil(t, env.bookingRepo.gotScope.UserID)
		assert.Equal(t, []uint64{5, 8}, env.bookingRepo.gotScope.DepartmentIDs)
	})

	t.Run("модератор без доступов получает пустой список", func(t *testing.T) {
		env := newBookingTestEnv()
		env.access.accessible = nil
		moderator := &entities.User{ID: 4, Role: constants.RoleModerator}

		bookings, total, err := env.service.GetBookings(ctx, moderator, types.Filter{})
		require.NoError(t, err)
		assert.Empty(t, bookings)
		assert.Zero(t, total)
	})
}

func TestGetMyBookings(t *testing.T) {
	env := newBookingTestEnv()
	// Даже управляющий модератор в «моих» видит только собственные.
	env.access.managed = []uint64{5}
	moderator := &entities.User{ID: 4, Role: constants.RoleModerator}

	_, _, err := env.service.GetMyBookings(context.Background(), moderator, types.Filter{})
	require.NoError(t, err)
	require.NotNil(t, env.bookingRepo.gotScope.UserID)
	assert.Equal(t, uint64(4), *env.bookingRepo.gotScope.UserID)
	assert.Nil(t, env.bookingRepo.gotScope.DepartmentIDs)
}

func TestGetPendingBookings(t *testing.T) {
	ctx := context.Background()

	t.Run("админ видит всю очередь", func(t *testing.T) {
		env := newBookingTestEnv()
		admin := &entities.User{ID: 1, Role: constants.RoleAdmin}

		_, _, err := env.service.GetPendingBookings(ctx, admin, types.Filter{})
		require.NoError(t, err)
		assert.Nil(t, env.bookingRepo.gotScope.DepartmentIDs)
		assert.Equal(t, constants.BookingStatusPending, env.bookingRepo.lastScope.Filter["status"])
	})

	t.Run("модератор - очередь управляемых подразделений", func(t *testing.T) {
		env := newBookingTestEnv()
		env.access.managed = []uint64{5}
		moderator := &entities.User{ID: 4, Role: constants.RoleModerator}

		_, _, err := env.service.GetPendingBookings(ctx, moderator, types.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []uint64{5}, env.bookingRepo.gotScope.DepartmentIDs)
	})

	t.Run("без управляемых подразделений очередь пуста", func(t *testing.T) {
		env := newBookingTestEnv()
		user := &entities.User{ID: 3, Role: constants.RoleUser}

		bookings, total, err := env.service.GetPendingBookings(ctx, user, types.Filter{})
		require.NoError(t, err)
		assert.Empty(t, bookings)
		assert.Zero(t, total)
	})
}

func TestFindBookingVisibility(t *testing.T) {
	ctx := context.Background()

	env := newBookingTestEnv()
	env.addEquipment(1, true, false, 0)
	env.addBooking(10, 1, 1, constants.BookingStatusApproved)

	owner := &entities.User{ID: 1, Role: constants.RoleUser}
	admin := &entities.User{ID: 2, Role: constants.RoleAdmin}
	stranger := &entities.User{ID: 3, Role: constants.RoleUser}

	_, err := env.service.FindBooking(ctx, owner, 10)
	assert.NoError(t, err)

	_, err = env.service.FindBooking(ctx, admin, 10)
	assert.NoError(t, err)

	env.access.canManage = false
	_, err = env.service.FindBooking(ctx, stranger, 10)
	requireHttpError(t, err, 403)
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	end := start.Add(time.Hour)

	env := newBookingTestEnv()
	available, err := env.service.IsAvailable(ctx, 1, start, end, 0)
	require.NoError(t, err)
	assert.True(t, available)

	env.bookingRepo.conflicts = 2
	available, err = env.service.IsAvailable(ctx, 1, start, end, 0)
	require.NoError(t, err)
	assert.False(t, available)
}

// --- Фоновые проверки ---

func TestCompleteExpired(t *testing.T) {
	ctx := context.Background()

	env := newBookingTestEnv()
	env.bookingRepo.completedDetails = []dto.BookingDetailsDTO{
		{ID: 1}, {ID: 2}, {ID: 3},
	}
	// Сбой доставки по одному бронированию не мешает остальным.
	env.notifier.failIDs[2] = true

	count, err := env.service.CompleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "счетчик считает завершенные, а не доставленные")
	assert.Equal(t, 2, env.notifier.delivered())
}

func TestSendReminders(t *testing.T) {
	ctx := context.Background()

	env := newBookingTestEnv()
	env.bookingRepo.dueReminders = []dto.BookingDetailsDTO{{ID: 5}, {ID: 6}}

	count, err := env.service.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Повторный запуск ничего не напоминает: строки уже помечены.
	count, err = env.service.SendReminders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 2, env.notifier.delivered())
}
