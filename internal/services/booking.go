package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
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

type BookingServiceInterface interface {
	CreateBooking(ctx context.Context, actor *entities.User, payload dto.CreateBookingDTO) (*entities.Booking, error)
	ApproveBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error)
	RejectBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error)
	CancelBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error)
	GetBookings(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.BookingDTO, uint64, error)
	// GetMyBookings - только собственные бронирования актора,
	// без примеси управляемых подразделений.
	GetMyBookings(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.BookingDTO, uint64, error)
	// GetPendingBookings - очередь на подтверждение: админу вся,
	// модератору по управляемым подразделениям.
	GetPendingBookings(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.BookingDTO, uint64, error)
	FindBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error)
	// IsAvailable - свободно ли оборудование в интервале. excludeBookingID
	// исключает бронирование из проверки (0 - не исключать).
	IsAvailable(ctx context.Context, equipmentID uint64, start, end time.Time, excludeBookingID uint64) (bool, error)
	GetAvailability(ctx context.Context, actor *entities.User, equipmentID uint64, date time.Time) (*dto.AvailabilityDTO, error)
	// CompleteExpired переводит истекшие блокирующие бронирования в completed.
	// Возвращает количество завершенных. Идемпотентна.
	CompleteExpired(ctx context.Context) (int, error)
	// SendReminders рассылает напоминания о скоро начинающихся бронированиях.
	// Каждое бронирование напоминается не более одного раза.
	SendReminders(ctx context.Context) (int, error)
}

type BookingService struct {
	bookingRepo   repositories.BookingRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	accessService AccessServiceInterface
	txManager     repositories.TxManagerInterface
	notifier      BookingNotifier
	cfg           config.BookingConfig
	logger        *zap.Logger
}

func NewBookingService(
	bookingRepo repositories.BookingRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	accessService AccessServiceInterface,
	txManager repositories.TxManagerInterface,
	notifier BookingNotifier,
	cfg config.BookingConfig,
	logger *zap.Logger,
) BookingServiceInterface {
	return &BookingService{
		bookingRepo:   bookingRepo,
		equipmentRepo: equipmentRepo,
		accessService: accessService,
		txManager:     txManager,
		notifier:      notifier,
		cfg:           cfg,
		logger:        logger,
	}
}

// validateInterval проверяет интервал и длительность до обращения к БД.
// Порядок проверок фиксирован: сначала форма интервала, потом прошлое,
// потом длительность.
func (s *BookingService) validateInterval(payload dto.CreateBookingDTO, maxHours uint, now time.Time) error {
	if !payload.StartTime.Before(payload.EndTime) {
		return apperrors.NewValidationError(apperrors.ReasonInvalidInterval,
			"Время начала должно быть раньше времени окончания")
	}
	if payload.StartTime.Before(now) {
		return apperrors.NewValidationError(apperrors.ReasonStartInPast,
			"Нельзя бронировать на прошедшее время")
	}
	duration := payload.EndTime.Sub(payload.StartTime)
	if duration < s.cfg.MinDuration {
		return apperrors.NewValidationError(apperrors.ReasonBelowMinDuration,
			"Минимальная длительность бронирования - 30 минут")
	}
	if maxHours > 0 && duration > time.Duration(maxHours)*time.Hour {
		return apperrors.NewValidationError(apperrors.ReasonOverMaxDuration,
			"Длительность превышает лимит категории оборудования")
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, actor *entities.User, payload dto.CreateBookingDTO) (*entities.Booking, error) {
	equipment, err := s.equipmentRepo.FindEquipmentDetailed(ctx, payload.EquipmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("Оборудование не найдено")
		}
		return nil, err
	}
	if !equipment.IsActive {
		return nil, apperrors.NewHttpError(http.StatusBadRequest,
			"Оборудование выведено из эксплуатации и не бронируется", nil, nil)
	}

	if err := s.validateInterval(payload, equipment.Category.MaxBookingHours, time.Now()); err != nil {
		return nil, err
	}

	canBook, err := s.accessService.CanBook(ctx, actor, equipment.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !canBook {
		return nil, apperrors.NewForbiddenError("Нет права бронировать оборудование этого подразделения")
	}

	// Начальный статус определяет категория: с обязательным подтверждением -
	// pending, иначе бронирование сразу блокирует оборудование.
	status := constants.BookingStatusApproved
	if equipment.Category.ApprovalRequired {
		status = constants.BookingStatusPending
	}

	var created *entities.Booking
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		// Блокировка строки оборудования сериализует конкурентные создания:
		// проверка пересечений и вставка происходят атомарно.
		if err := s.bookingRepo.LockEquipment(ctx, tx, equipment.ID); err != nil {
			return err
		}
		conflicts, err := s.bookingRepo.CountConflicts(ctx, tx, equipment.ID, payload.StartTime, payload.EndTime, 0)
		if err != nil {
			return err
		}
		if conflicts > 0 {
			return apperrors.NewConflictError("Оборудование уже забронировано на это время")
		}
		created, err = s.bookingRepo.CreateBookingInTx(ctx, tx, entities.Booking{
			UserID:      actor.ID,
			EquipmentID: equipment.ID,
			StartTime:   payload.StartTime,
			EndTime:     payload.EndTime,
			Status:      status,
			Purpose:     payload.Purpose,
			Notes:       payload.Notes,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Создано бронирование",
		zap.Uint64("bookingID", created.ID),
		zap.Uint64("equipmentID", equipment.ID),
		zap.Uint64("userID", actor.ID),
		zap.String("status", created.Status))

	// Оба пути создания дают событие created; текст уведомления
	// зависит от итогового статуса бронирования.
	s.notifyAsync(created.ID, constants.NotifyCreated)

	return created, nil
}

// notifyAsync отправляет уведомление вне запроса: сбой доставки
// не откатывает уже совершенный переход.
func (s *BookingService) notifyAsync(bookingID uint64, kind string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		details, err := s.bookingRepo.FindBookingDetails(ctx, bookingID)
		if err != nil {
			s.logger.Error("Не удалось загрузить детали для уведомления",
				zap.Uint64("bookingID", bookingID), zap.Error(err))
			return
		}
		_ = s.notifier.Notify(ctx, kind, details)
	}()
}

// ensureManage - подтверждать и отклонять может админ или модератор
// с грантом can_manage на подразделение оборудования.
func (s *BookingService) ensureManage(ctx context.Context, actor *entities.User, equipmentID uint64) error {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, equipmentID)
	if err != nil {
		return err
	}
	ok, err := s.accessService.CanManage(ctx, actor, equipment.DepartmentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("Нет прав на управление бронированиями этого подразделения")
	}
	return nil
}

func (s *BookingService) ApproveBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error) {
	booking, err := s.bookingRepo.FindBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureManage(ctx, actor, booking.EquipmentID); err != nil {
		return nil, err
	}
	if booking.Status != constants.BookingStatusPending {
		return nil, apperrors.NewHttpError(http.StatusConflict,
			"Подтвердить можно только бронирование в ожидании", nil, nil)
	}

	updated, err := s.bookingRepo.UpdateStatusIf(ctx, id, constants.BookingStatusApproved,
		[]string{constants.BookingStatusPending}, &actor.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		// Конкурентный переход успел раньше.
		return nil, apperrors.NewHttpError(http.StatusConflict,
			"Подтвердить можно только бронирование в ожидании", nil, nil)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Бронирование подтверждено",
		zap.Uint64("bookingID", id), zap.Uint64("approvedBy", actor.ID))
	s.notifyAsync(id, constants.NotifyApproved)
	return updated, nil
}

// RejectBooking переводит ожидающее бронирование в rejected.
// Уведомление при отклонении не отправляется.
func (s *BookingService) RejectBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error) {
	booking, err := s.bookingRepo.FindBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureManage(ctx, actor, booking.EquipmentID); err != nil {
		return nil, err
	}
	if booking.Status != constants.BookingStatusPending {
		return nil, apperrors.NewHttpError(http.StatusConflict,
			"Отклонить можно только бронирование в ожидании", nil, nil)
	}

	updated, err := s.bookingRepo.UpdateStatusIf(ctx, id, constants.BookingStatusRejected,
		[]string{constants.BookingStatusPending}, &actor.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewHttpError(http.StatusConflict,
			"Отклонить можно только бронирование в ожидании", nil, nil)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Бронирование отклонено",
		zap.Uint64("bookingID", id), zap.Uint64("rejectedBy", actor.ID))
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error) {
	booking, err := s.bookingRepo.FindBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	equipment, err := s.equipmentRepo.FindEquipment(ctx, booking.EquipmentID)
	if err != nil {
		return nil, err
	}
	grant, err := s.accessService.GrantFor(ctx, actor.ID, equipment.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !authz.CanCancelBooking(actor, booking.UserID, grant) {
		return nil, apperrors.NewForbiddenError("Нет права отменить это бронирование")
	}
	if constants.IsFinalBookingStatus(booking.Status) {
		return nil, apperrors.NewHttpError(http.StatusConflict,
			"Нельзя отменить завершенное или уже отмененное бронирование", nil, nil)
	}

	fromStatuses := []string{
		constants.BookingStatusPending,
		constants.BookingStatusApproved,
		constants.BookingStatusActive,
	}
	updated, err := s.bookingRepo.UpdateStatusIf(ctx, id, constants.BookingStatusCancelled, fromStatuses, nil)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewHttpError(http.StatusConflict,
			"Нельзя отменить завершенное или уже отмененное бронирование", nil, nil)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Бронирование отменено",
		zap.Uint64("bookingID", id), zap.Uint64("cancelledBy", actor.ID))
	s.notifyAsync(id, constants.NotifyCancelled)
	return updated, nil
}

func (s *BookingService) GetBookings(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.BookingDTO, uint64, error) {
	scope := repositories.BookingScope{}
	switch actor.Role {
	case constants.RoleAdmin:
		// админ видит все без ограничений
	case constants.RoleModerator:
		viewable, err := s.accessService.AccessibleDepartmentIDs(ctx, actor)
		if err != nil {
			return nil, 0, err
		}
		if len(viewable) == 0 {
			return []dto.BookingDTO{}, 0, nil
		}
		scope.DepartmentIDs = viewable
	default:
		scope.UserID = &actor.ID
	}
	return s.bookingRepo.GetBookings(ctx, filter, scope)
}

func (s *BookingService) GetMyBookings(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.BookingDTO, uint64, error) {
	return s.bookingRepo.GetBookings(ctx, filter, repositories.BookingScope{UserID: &actor.ID})
}

func (s *BookingService) GetPendingBookings(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.BookingDTO, uint64, error) {
	scope := repositories.BookingScope{}
	if actor.Role != constants.RoleAdmin {
		managed, err := s.accessService.ManagedDepartmentIDs(ctx, actor)
		if err != nil {
			return nil, 0, err
		}
		if len(managed) == 0 {
			return []dto.BookingDTO{}, 0, nil
		}
		scope.DepartmentIDs = managed
	}

	if filter.Filter == nil {
		filter.Filter = map[string]interface{}{}
	}
	filter.Filter["status"] = constants.BookingStatusPending
	return s.bookingRepo.GetBookings(ctx, filter, scope)
}

func (s *BookingService) FindBooking(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error) {
	booking, err := s.bookingRepo.FindBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == constants.RoleAdmin || booking.UserID == actor.ID {
		return booking, nil
	}
	if err := s.ensureManage(ctx, actor, booking.EquipmentID); err != nil {
		return nil, apperrors.NewForbiddenError("Нет доступа к этому бронированию")
	}
	return booking, nil
}

func (s *BookingService) IsAvailable(ctx context.Context, equipmentID uint64, start, end time.Time, excludeBookingID uint64) (bool, error) {
	conflicts, err := s.bookingRepo.CountConflicts(ctx, nil, equipmentID, start, end, excludeBookingID)
	if err != nil {
		return false, err
	}
	return conflicts == 0, nil
}

func (s *BookingService) GetAvailability(ctx context.Context, actor *entities.User, equipmentID uint64, date time.Time) (*dto.AvailabilityDTO, error) {
	equipment, err := s.equipmentRepo.FindEquipment(ctx, equipmentID)
	if err != nil {
		return nil, err
	}
	if actor.Role != constants.RoleAdmin {
		grant, err := s.accessService.GrantFor(ctx, actor.ID, equipment.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !authz.CanViewDepartment(actor.Role, grant) {
			return nil, apperrors.NewForbiddenError("Нет доступа к оборудованию этого подразделения")
		}
	}

	slots, err := s.bookingRepo.GetBusySlots(ctx, equipmentID, date)
	if err != nil {
		return nil, err
	}
	return &dto.AvailabilityDTO{
		Date:      date.Format("2006-01-02"),
		Equipment: equipment.Name,
		BusySlots: slots,
	}, nil
}

func (s *BookingService) CompleteExpired(ctx context.Context) (int, error) {
	completed, err := s.bookingRepo.CompleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	for i := range completed {
		details := completed[i]
		// Сбой одного уведомления не мешает остальным.
		if err := s.notifier.Notify(ctx, constants.NotifyCompleted, &details); err != nil {
			s.logger.Error("Уведомление о завершении не доставлено",
				zap.Uint64("bookingID", details.ID), zap.Error(err))
		}
	}
	if len(completed) > 0 {
		s.logger.Info("Завершены истекшие бронирования", zap.Int("count", len(completed)))
	}
	return len(completed), nil
}

func (s *BookingService) SendReminders(ctx context.Context) (int, error) {
	due, err := s.bookingRepo.ClaimDueReminders(ctx,
		s.cfg.ReminderLookahead, s.cfg.ShortReminderLookahead, s.cfg.ShortBookingLimit)
	if err != nil {
		return 0, err
	}
	for i := range due {
		details := due[i]
		if err := s.notifier.Notify(ctx, constants.NotifyReminder, &details); err != nil {
			s.logger.Error("Напоминание не доставлено",
				zap.Uint64("bookingID", details.ID), zap.Error(err))
		}
	}
	if len(due) > 0 {
		s.logger.Info("Отправлены напоминания о бронированиях", zap.Int("count", len(due)))
	}
	return len(due), nil
}
