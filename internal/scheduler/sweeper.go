package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"equipment-booking/internal/services"
)

// Sweeper - фоновый цикл обслуживания бронирований: завершение истекших
// и рассылка напоминаний. Оба прохода идемпотентны, поэтому частота
// запуска влияет только на своевременность, не на корректность.
type Sweeper struct {
	bookingService services.BookingServiceInterface
	interval       time.Duration
	logger         *zap.Logger
}

func NewSweeper(bookingService services.BookingServiceInterface, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		bookingService: bookingService,
		interval:       interval,
		logger:         logger,
	}
}

// Run блокируется до отмены контекста.
func (s *Sweeper) Run(ctx context.Context) {
	s.logger.Info("Фоновая проверка бронирований запущена", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Фоновая проверка бронирований остановлена")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if _, err := s.bookingService.CompleteExpired(ctx); err != nil {
		s.logger.Error("Ошибка завершения истекших бронирований", zap.Error(err))
	}
	if _, err := s.bookingService.SendReminders(ctx); err != nil {
		s.logger.Error("Ошибка рассылки напоминаний", zap.Error(err))
	}
}
