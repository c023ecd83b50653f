package controllers

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"equipment-booking/internal/entities"
	"equipment-booking/internal/services"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/utils"
)

// currentUser загружает актора по UserID из контекста запроса.
// Свежая запись из БД, а не клеймы токена: роль могла измениться.
func currentUser(ctx context.Context, users services.UserServiceInterface) (*entities.User, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return users.FindUser(ctx, userID)
}

func parseIDParam(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(400, "Некорректный идентификатор в пути запроса", err, nil)
	}
	return id, nil
}
