package controllers

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/services"
)

type TelegramController struct {
	botService    services.TelegramBotServiceInterface
	webhookSecret string
	logger        *zap.Logger
}

func NewTelegramController(botService services.TelegramBotServiceInterface, webhookSecret string, logger *zap.Logger) *TelegramController {
	return &TelegramController{
		botService:    botService,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// Webhook принимает апдейты от Telegram. Подлинность проверяется секретом
// из заголовка X-Telegram-Bot-Api-Secret-Token, который задается при
// регистрации вебхука.
// Ответ всегда 200: иначе Telegram будет бесконечно повторять апдейт.
func (ctrl *TelegramController) Webhook(c echo.Context) error {
	if ctrl.webhookSecret != "" {
		got := c.Request().Header.Get("X-Telegram-Bot-Api-Secret-Token")
		if subtle.ConstantTimeCompare([]byte(got), []byte(ctrl.webhookSecret)) != 1 {
			ctrl.logger.Warn("Webhook: неверный секрет")
			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var update dto.TelegramUpdate
	if err := c.Bind(&update); err != nil {
		ctrl.logger.Warn("Webhook: не удалось разобрать апдейт", zap.Error(err))
		return c.NoContent(http.StatusOK)
	}

	if err := ctrl.botService.HandleUpdate(c.Request().Context(), update); err != nil {
		ctrl.logger.Error("Webhook: ошибка обработки апдейта",
			zap.Int64("updateID", update.UpdateID), zap.Error(err))
	}
	return c.NoContent(http.StatusOK)
}
