package services

import (
	"context"

	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/types"
)

type DepartmentServiceInterface interface {
	GetDepartments(ctx context.Context, actor *entities.User, filter types.Filter) ([]entities.Department, uint64, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*entities.Department, error)
	DeleteDepartment(ctx context.Context, id uint64) error
}

type DepartmentService struct {
	departmentRepo repositories.DepartmentRepositoryInterface
	accessService  AccessServiceInterface
	logger         *zap.Logger
}

func NewDepartmentService(
	departmentRepo repositories.DepartmentRepositoryInterface,
	accessService AccessServiceInterface,
	logger *zap.Logger,
) DepartmentServiceInterface {
	return &DepartmentService{
		departmentRepo: departmentRepo,
		accessService:  accessService,
		logger:         logger,
	}
}

// GetDepartments отдает только видимые актору подразделения.
func (s *DepartmentService) GetDepartments(ctx context.Context, actor *entities.User, filter types.Filter) ([]entities.Department, uint64, error) {
	accessible, err := s.accessService.AccessibleDepartments(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	return accessible, uint64(len(accessible)), nil
}

func (s *DepartmentService) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	return s.departmentRepo.FindDepartment(ctx, id)
}

func (s *DepartmentService) CreateDepartment(ctx context.Context, payload dto.CreateDepartmentDTO) (*entities.Department, error) {
	department, err := s.departmentRepo.CreateDepartment(ctx, entities.Department{
		Name:        payload.Name,
		Code:        payload.Code,
		Description: payload.Description,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создано подразделение", zap.Uint64("id", department.ID), zap.String("code", department.Code))
	return department, nil
}

func (s *DepartmentService) UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*entities.Department, error) {
	return s.departmentRepo.UpdateDepartment(ctx, id, payload)
}

func (s *DepartmentService) DeleteDepartment(ctx context.Context, id uint64) error {
	return s.departmentRepo.DeleteDepartment(ctx, id)
}
