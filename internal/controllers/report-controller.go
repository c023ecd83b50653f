package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-booking/internal/services"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

// BookingsReport отдает XLSX-файл с бронированиями за период.
// Параметры from/to в формате YYYY-MM-DD, по умолчанию - текущий месяц.
func (ctrl *ReportController) BookingsReport(c echo.Context) error {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if fromStr := c.QueryParam("from"); fromStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", fromStr, time.Local)
		if err != nil {
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(http.StatusBadRequest, "Параметр from должен быть в формате YYYY-MM-DD", err, nil),
				ctrl.logger)
		}
		from = parsed
	}
	if toStr := c.QueryParam("to"); toStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", toStr, time.Local)
		if err != nil {
			return utils.ErrorResponse(c,
				apperrors.NewHttpError(http.StatusBadRequest, "Параметр to должен быть в формате YYYY-MM-DD", err, nil),
				ctrl.logger)
		}
		// Верхняя граница включает весь указанный день.
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		return utils.ErrorResponse(c,
			apperrors.NewHttpError(http.StatusBadRequest, "Период отчета задан неверно", nil, nil),
			ctrl.logger)
	}

	buf, err := ctrl.reportService.BookingsReport(c.Request().Context(), from, to)
	if err != nil {
		return utils.ErrorResponse(c, err, ctrl.logger)
	}

	filename := fmt.Sprintf("bookings_%s_%s.xlsx", from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
