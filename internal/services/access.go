package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"equipment-booking/internal/authz"
	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/constants"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/types"
)

type AccessServiceInterface interface {
	// GrantFor возвращает грант актора на подразделение или nil, если его нет.
	// Отсутствие гранта - не ошибка, а отказ по умолчанию.
	GrantFor(ctx context.Context, userID, departmentID uint64) (*authz.Grant, error)
	CanBook(ctx context.Context, user *entities.User, departmentID uint64) (bool, error)
	CanManage(ctx context.Context, user *entities.User, departmentID uint64) (bool, error)
	// AccessibleDepartments - подразделения, видимые актору: админу все,
	// остальным - только с грантом просмотра.
	AccessibleDepartments(ctx context.Context, user *entities.User) ([]entities.Department, error)
	// AccessibleDepartmentIDs - nil для админа (без ограничения), иначе список id.
	AccessibleDepartmentIDs(ctx context.Context, user *entities.User) ([]uint64, error)
	// ManagedDepartmentIDs - подразделения, где актор может подтверждать
	// бронирования. nil для админа.
	ManagedDepartmentIDs(ctx context.Context, user *entities.User) ([]uint64, error)
	GetAccesses(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.DepartmentAccessDTO, uint64, error)
	GrantAccess(ctx context.Context, actor *entities.User, payload dto.CreateDepartmentAccessDTO) (*entities.DepartmentAccess, error)
	UpdateAccess(ctx context.Context, actor *entities.User, id uint64, payload dto.UpdateDepartmentAccessDTO) (*entities.DepartmentAccess, error)
	RevokeAccess(ctx context.Context, actor *entities.User, id uint64) error
}

type AccessService struct {
	accessRepo     repositories.DepartmentAccessRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	logger         *zap.Logger
}

func NewAccessService(
	accessRepo repositories.DepartmentAccessRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	logger *zap.Logger,
) AccessServiceInterface {
	return &AccessService{
		accessRepo:     accessRepo,
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

func (s *AccessService) GrantFor(ctx context.Context, userID, departmentID uint64) (*authz.Grant, error) {
	access, err := s.accessRepo.FindByUserAndDepartment(ctx, userID, departmentID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки гранта доступа: %w", err)
	}
	return authz.GrantFromAccess(access), nil
}

func (s *AccessService) CanBook(ctx context.Context, user *entities.User, departmentID uint64) (bool, error) {
	if user.Role == constants.RoleAdmin {
		return true, nil
	}
	grant, err := s.GrantFor(ctx, user.ID, departmentID)
	if err != nil {
		return false, err
	}
	return authz.CanBook(user.Role, grant), nil
}

func (s *AccessService) CanManage(ctx context.Context, user *entities.User, departmentID uint64) (bool, error) {
	if user.Role == constants.RoleAdmin {
		return true, nil
	}
	grant, err := s.GrantFor(ctx, user.ID, departmentID)
	if err != nil {
		return false, err
	}
	return authz.CanManage(user.Role, grant), nil
}

func (s *AccessService) AccessibleDepartments(ctx context.Context, user *entities.User) ([]entities.Department, error) {
	if user.Role == constants.RoleAdmin {
		departments, _, err := s.departmentRepo.GetDepartments(ctx, types.Filter{})
		return departments, err
	}
	return s.departmentRepo.GetAccessibleDepartments(ctx, user.ID)
}

func (s *AccessService) AccessibleDepartmentIDs(ctx context.Context, user *entities.User) ([]uint64, error) {
	if user.Role == constants.RoleAdmin {
		return nil, nil
	}
	departments, err := s.departmentRepo.GetAccessibleDepartments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(departments))
	for _, d := range departments {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (s *AccessService) ManagedDepartmentIDs(ctx context.Context, user *entities.User) ([]uint64, error) {
	if user.Role == constants.RoleAdmin {
		return nil, nil
	}
	if user.Role != constants.RoleModerator {
		return []uint64{}, nil
	}
	departments, err := s.departmentRepo.GetManageableDepartments(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(departments))
	for _, d := range departments {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

func (s *AccessService) GetAccesses(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.DepartmentAccessDTO, uint64, error) {
	// Админ видит все гранты, модератор - только по своим подразделениям.
	var onlyDepartmentIDs []uint64
	if actor.Role != constants.RoleAdmin {
		ids, err := s.ManagedDepartmentIDs(ctx, actor)
		if err != nil {
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []dto.DepartmentAccessDTO{}, 0, nil
		}
		onlyDepartmentIDs = ids
	}
	return s.accessRepo.GetAccesses(ctx, filter, onlyDepartmentIDs)
}

func (s *AccessService) GrantAccess(ctx context.Context, actor *entities.User, payload dto.CreateDepartmentAccessDTO) (*entities.DepartmentAccess, error) {
	ok, err := s.CanManage(ctx, actor, payload.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewForbiddenError("Нет прав на управление доступом этого подразделения")
	}
	if _, err := s.departmentRepo.FindDepartment(ctx, payload.DepartmentID); err != nil {
		return nil, err
	}

	access := entities.DepartmentAccess{
		UserID:       payload.UserID,
		DepartmentID: payload.DepartmentID,
		CanView:      payload.CanView,
		CanBook:      payload.CanBook,
		CanManage:    payload.CanManage,
	}
	access.GrantedBy.SetValid(actor.ID)

	created, err := s.accessRepo.CreateAccess(ctx, access)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Выдан доступ к подразделению",
		zap.Uint64("userID", payload.UserID),
		zap.Uint64("departmentID", payload.DepartmentID),
		zap.Uint64("grantedBy", actor.ID))
	return created, nil
}

func (s *AccessService) UpdateAccess(ctx context.Context, actor *entities.User, id uint64, payload dto.UpdateDepartmentAccessDTO) (*entities.DepartmentAccess, error) {
	if err := s.ensureManageByAccessID(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.accessRepo.UpdateAccess(ctx, id, payload)
}

// RevokeAccess удаляет запись гранта целиком: отозванный доступ
// не должен оставаться в таблице выключенным флагом.
func (s *AccessService) RevokeAccess(ctx context.Context, actor *entities.User, id uint64) error {
	if err := s.ensureManageByAccessID(ctx, actor, id); err != nil {
		return err
	}
	if err := s.accessRepo.DeleteAccess(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Доступ к подразделению отозван", zap.Uint64("accessID", id), zap.Uint64("actorID", actor.ID))
	return nil
}

func (s *AccessService) ensureManageByAccessID(ctx context.Context, actor *entities.User, id uint64) error {
	access, err := s.accessRepo.FindAccess(ctx, id)
	if err != nil {
		return err
	}
	ok, err := s.CanManage(ctx, actor, access.DepartmentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewForbiddenError("Нет прав на управление доступом этого подразделения")
	}
	return nil
}
