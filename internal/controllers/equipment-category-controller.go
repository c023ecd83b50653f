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

type EquipmentCategoryController struct {
	categoryService services.EquipmentCategoryServiceInterface
	logger          *zap.Logger
}

func NewEquipmentCategoryController(categoryService services.EquipmentCategoryServiceInterface, logger *zap.Logger) *EquipmentCategoryController {
	return &EquipmentCategoryController{categoryService: categoryService, logger: logger}
}

func (ctrl *EquipmentCategoryController) GetCategories(c echo.Context) error {
	filter := utils.ParseFilterFromQuery(c.Request().URL.Query())
	categories, total, err := ctrl.categoryService.GetCategories(c.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, categories, "Список категорий оборудования", http.StatusOK, total)
}

func (ctrl *EquipmentCategoryController) FindCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	category, err := ctrl.categoryService.FindCategory(c.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, category, "Категория оборудования", http.StatusOK)
}

func (ctrl *EquipmentCategoryController) CreateCategory(c echo.Context) error {
	var payload dto.CreateEquipmentCategoryDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	category, err := ctrl.categoryService.CreateCategory(c.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, category, "Категория создана", http.StatusCreated)
}

func (ctrl *EquipmentCategoryController) UpdateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	var payload dto.UpdateEquipmentCategoryDTO
	if err := c.Bind(&payload); err != nil {
		return utils.ErrorResponse(c, apperrors.ErrBadRequest, ctrl.logger)
	}
	if err := c.Validate(&payload); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	category, err := ctrl.categoryService.UpdateCategory(c.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, category, "Категория обновлена", http.StatusOK)
}

func (ctrl *EquipmentCategoryController) DeleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	if err := ctrl.categoryService.DeleteCategory(c.Request().Context(), id); err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}
	return utils.SuccessResponse(c, nil, "Категория удалена", http.StatusOK)
}
