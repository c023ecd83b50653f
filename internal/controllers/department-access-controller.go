package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/services"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/utils"
)

type DepartmentAccessController struct {
	accessService services.AccessServiceInterface
	userService   services.UserServiceInterface
	logger        *zap.Logger
}

func NewDepartmentAccessController(
	accessService services.AccessServiceInterface,
	userService services.UserServiceInterface,
	logger *zap.Logger,
) *DepartmentAccessController {
	return &DepartmentAccessController{
		accessService: accessService,
		userService:   userService,
		logger:        logger,
	}
}

func (ctrl *DepartmentAccessController) GetAccesses(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	accesses, total, err := ctrl.accessService.GetAccesses(ctx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, accesses, "Список грантов доступа", http.StatusOK, total)
}

func (ctrl *DepartmentAccessController) GrantAccess(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.CreateDepartmentAccessDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	access, err := ctrl.accessService.GrantAccess(ctx, actor, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, access, "Доступ выдан", http.StatusCreated)
}

func (ctrl *DepartmentAccessController) UpdateAccess(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.UpdateDepartmentAccessDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	access, err := ctrl.accessService.UpdateAccess(ctx, actor, id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, access, "Доступ обновлен", http.StatusOK)
}

func (ctrl *DepartmentAccessController) RevokeAccess(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	if err := ctrl.accessService.RevokeAccess(ctx, actor, id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Доступ отозван", http.StatusOK)
}
