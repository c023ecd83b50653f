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

type DepartmentController struct {
	departmentService services.DepartmentServiceInterface
	userService       services.UserServiceInterface
	logger            *zap.Logger
}

func NewDepartmentController(
	departmentService services.DepartmentServiceInterface,
	userService services.UserServiceInterface,
	logger *zap.Logger,
) *DepartmentController {
	return &DepartmentController{
		departmentService: departmentService,
		userService:       userService,
		logger:            logger,
	}
}

func (ctrl *DepartmentController) GetDepartments(c echo.Context) error {
	ctx := c.Request().Context()
	actor, err := currentUser(ctx, ctrl.userService)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	departments, total, err := ctrl.departmentService.GetDepartments(ctx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, departments, "Список подразделений", http.StatusOK, total)
}

func (ctrl *DepartmentController) FindDepartment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	department, err := ctrl.departmentService.FindDepartment(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, department, "Подразделение", http.StatusOK)
}

func (ctrl *DepartmentController) CreateDepartment(c echo.Context) error {
	var payload dto.CreateDepartmentDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	department, err := ctrl.departmentService.CreateDepartment(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, department, "Подразделение создано", http.StatusCreated)
}

func (ctrl *DepartmentController) UpdateDepartment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.UpdateDepartmentDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	department, err := ctrl.departmentService.UpdateDepartment(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, department, "Подразделение обновлено", http.StatusOK)
}

func (ctrl *DepartmentController) DeleteDepartment(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.departmentService.DeleteDepartment(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Подразделение удалено", http.StatusOK)
}
