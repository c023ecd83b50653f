package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/services"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/utils"
)

type BookingController struct {
	bookingService services.BookingServiceInterface
	userService    services.UserServiceInterface
	logger         *zap.Logger
}

func NewBookingController(
	bookingService services.BookingServiceInterface,
	userService services.UserServiceInterface,
	logger *zap.Logger,
) *BookingController {
	return &BookingController{
		bookingService: bookingService,
		userService:    userService,
		logger:         logger,
	}
}

func (ctrl *BookingController) GetBookings(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	bookings, total, err := ctrl.bookingService.GetBookings(ctx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, bookings, "Список бронирований", http.StatusOK, total)
}

func (ctrl *BookingController) GetMyBookings(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	bookings, total, err := ctrl.bookingService.GetMyBookings(ctx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, bookings, "Мои бронирования", http.StatusOK, total)
}

func (ctrl *BookingController) GetPendingBookings(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	bookings, total, err := ctrl.bookingService.GetPendingBookings(ctx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, bookings, "Бронирования в ожидании", http.StatusOK, total)
}

func (ctrl *BookingController) FindBooking(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	booking, err := ctrl.bookingService.FindBooking(ctx, actor, id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, booking, "Бронирование", http.StatusOK)
}

func (ctrl *BookingController) CreateBooking(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.CreateBookingDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	booking, err := ctrl.bookingService.CreateBooking(ctx, actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, booking, "Бронирование создано", http.StatusCreated)
}

func (ctrl *BookingController) ApproveBooking(c echo.Context) error {
	return ctrl.transition(c, ctrl.bookingService.ApproveBooking, "Бронирование подтверждено")
}

func (ctrl *BookingController) RejectBooking(c echo.Context) error {
	return ctrl.transition(c, ctrl.bookingService.RejectBooking, "Бронирование отклонено")
}

func (ctrl *BookingController) CancelBooking(c echo.Context) error {
	return ctrl.transition(c, ctrl.bookingService.CancelBooking, "Бронирование отменено")
}

func (ctrl *BookingController) transition(
	c echo.Context,
	fn func(ctx context.Context, actor *entities.User, id uint64) (*entities.Booking, error),
	message string,
) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	booking, err := fn(ctx, actor, id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, booking, message, http.StatusOK)
}

func (ctrl *BookingController) GetAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	date := time.Now()
	if dateStr := c.QueryParam("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(http.StatusBadRequest, "Дата должна быть в формате YYYY-MM-DD", err, nil),
				ctrl.logger)
		}
		date = parsed
	}

	availability, err := ctrl.bookingService.GetAvailability(ctx, actor, id, date)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, availability, "Занятость оборудования", http.StatusOK)
}
