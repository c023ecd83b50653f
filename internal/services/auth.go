package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/config"
	"equipment-booking/pkg/constants"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/service"
)

type AuthServiceInterface interface {
	Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error)
	GetProfile(ctx context.Context, userID uint64) (*dto.ProfileDTO, error)
}

type AuthService struct {
	userRepo   repositories.UserRepositoryInterface
	cacheRepo  repositories.CacheRepositoryInterface
	jwtService service.JWTService
	cfg        config.AuthConfig
	logger     *zap.Logger
}

func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	jwtService service.JWTService,
	cfg config.AuthConfig,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		userRepo:   userRepo,
		cacheRepo:  cacheRepo,
		jwtService: jwtService,
		cfg:        cfg,
		logger:     logger,
	}
}

var errAccountLocked = apperrors.NewHttpError(http.StatusTooManyRequests,
	"Слишком много неудачных попыток входа, аккаунт временно заблокирован", nil, nil)

func (s *AuthService) Login(ctx context.Context, payload dto.LoginDTO) (*dto.TokenPairDTO, error) {
	lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, payload.Username)
	if _, err := s.cacheRepo.Get(ctx, lockoutKey); err == nil {
		return nil, errAccountLocked
	}

	user, err := s.userRepo.FindByUsername(ctx, payload.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewHttpError(http.StatusUnauthorized,
				"Неверный логин или пароль", apperrors.ErrInvalidCredentials, nil)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		s.registerFailedAttempt(ctx, payload.Username)
		return nil, apperrors.NewHttpError(http.StatusUnauthorized,
			"Неверный логин или пароль", apperrors.ErrInvalidCredentials, nil)
	}

	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, payload.Username)
	_ = s.cacheRepo.Del(ctx, attemptsKey)

	accessToken, refreshToken, err := s.jwtService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("не удалось сгенерировать токены: %w", err)
	}

	s.logger.Info("Успешный вход", zap.Uint64("userID", user.ID), zap.String("username", user.Username))
	return &dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) registerFailedAttempt(ctx context.Context, username string) {
	attemptsKey := fmt.Sprintf(constants.CacheKeyLoginAttempts, username)
	attempts, err := s.cacheRepo.Incr(ctx, attemptsKey)
	if err != nil {
		s.logger.Warn("Не удалось учесть неудачную попытку входа", zap.Error(err))
		return
	}
	if attempts == 1 {
		_, _ = s.cacheRepo.Expire(ctx, attemptsKey, s.cfg.LockoutDuration)
	}
	if attempts >= int64(s.cfg.MaxLoginAttempts) {
		lockoutKey := fmt.Sprintf(constants.CacheKeyLockout, username)
		_ = s.cacheRepo.Set(ctx, lockoutKey, "locked", s.cfg.LockoutDuration)
		s.logger.Warn("Аккаунт заблокирован после неудачных попыток входа",
			zap.String("username", username), zap.Int64("attempts", attempts))
	}
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenPairDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Недействительный refresh-токен", err, nil)
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized,
			"Недействительный refresh-токен", apperrors.ErrTokenIsNotRefresh, nil)
	}

	// Роль берется из БД, а не из токена: права могли измениться.
	user, err := s.userRepo.FindUser(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusUnauthorized, "Пользователь не найден", err, nil)
	}

	accessToken, newRefreshToken, err := s.jwtService.GenerateTokens(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("не удалось сгенерировать токены: %w", err)
	}
	return &dto.TokenPairDTO{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uint64) (*dto.ProfileDTO, error) {
	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileFromUser(user), nil
}

func profileFromUser(user *entities.User) *dto.ProfileDTO {
	profile := &dto.ProfileDTO{
		ID:             user.ID,
		Username:       user.Username,
		Fio:            user.Fio,
		Email:          user.Email,
		Role:           user.Role,
		TelegramKey:    user.TelegramKey,
		TelegramLinked: user.HasTelegram(),
	}
	if user.DepartmentID.Valid {
		profile.DepartmentID = &user.DepartmentID.Uint64
	}
	return profile
}
