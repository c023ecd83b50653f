package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/constants"
	"equipment-booking/pkg/utils"
)

type ReportServiceInterface interface {
	// BookingsReport собирает XLSX-отчет по бронированиям за период.
	BookingsReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, error)
}

type ReportService struct {
	bookingRepo repositories.BookingRepositoryInterface
	logger      *zap.Logger
}

func NewReportService(bookingRepo repositories.BookingRepositoryInterface, logger *zap.Logger) ReportServiceInterface {
	return &ReportService{bookingRepo: bookingRepo, logger: logger}
}

var reportHeaders = []string{
	"№", "Оборудование", "Инв. номер", "Подразделение", "Пользователь",
	"Время", "Статус", "Цель", "Подтвердил",
}

func (s *ReportService) BookingsReport(ctx context.Context, from, to time.Time) (*bytes.Buffer, error) {
	bookings, err := s.bookingRepo.GetBookingsForReport(ctx, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Бронирования"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось создать стиль заголовка: %w", err)
	}

	for i, header := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	_ = f.SetColWidth(sheet, "B", "F", 28)
	_ = f.SetColWidth(sheet, "H", "I", 24)

	for i, b := range bookings {
		row := i + 2
		statusTitle := b.Status
		if title, ok := constants.BookingStatusTitles[b.Status]; ok {
			statusTitle = title
		}
		approver := ""
		if b.ApprovedBy != nil {
			approver = b.ApprovedBy.Fio
		}
		values := []interface{}{
			i + 1,
			b.Equipment.Name,
			b.Equipment.InventoryNumber,
			b.Department.Name,
			b.User.Fio,
			utils.FormatTimeRange(b.StartTime, b.EndTime),
			statusTitle,
			b.Purpose,
			approver,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("не удалось сформировать отчет: %w", err)
	}
	s.logger.Info("Сформирован отчет по бронированиям",
		zap.Int("rows", len(bookings)),
		zap.Time("from", from), zap.Time("to", to))
	return buf, nil
}
