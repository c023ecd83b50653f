package services

import (
	"context"

	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/types"
)

type EquipmentServiceInterface interface {
	// GetEquipments - список в пределах видимых актору подразделений.
	GetEquipments(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error)
	DeleteEquipment(ctx context.Context, id uint64) error
}

type EquipmentService struct {
	equipmentRepo  repositories.EquipmentRepositoryInterface
	categoryRepo   repositories.EquipmentCategoryRepositoryInterface
	departmentRepo repositories.DepartmentRepositoryInterface
	accessService  AccessServiceInterface
	logger         *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	categoryRepo repositories.EquipmentCategoryRepositoryInterface,
	departmentRepo repositories.DepartmentRepositoryInterface,
	accessService AccessServiceInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &EquipmentService{
		equipmentRepo:  equipmentRepo,
		categoryRepo:   categoryRepo,
		departmentRepo: departmentRepo,
		accessService:  accessService,
		logger:         logger,
	}
}

func (s *EquipmentService) GetEquipments(ctx context.Context, actor *entities.User, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	allowedIDs, err := s.accessService.AccessibleDepartmentIDs(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	if allowedIDs != nil && len(allowedIDs) == 0 {
		return []dto.EquipmentDTO{}, 0, nil
	}
	return s.equipmentRepo.GetEquipments(ctx, filter, allowedIDs)
}

func (s *EquipmentService) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	return s.equipmentRepo.FindEquipmentDetailed(ctx, id)
}

func (s *EquipmentService) CreateEquipment(ctx context.Context, payload dto.CreateEquipmentDTO) (*entities.Equipment, error) {
	// Категория и подразделение должны существовать до вставки,
	// чтобы клиент получил осмысленную 404 вместо ошибки внешнего ключа.
	if _, err := s.categoryRepo.FindCategory(ctx, payload.CategoryID); err != nil {
		return nil, err
	}
	if _, err := s.departmentRepo.FindDepartment(ctx, payload.DepartmentID); err != nil {
		return nil, err
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}
	equipment, err := s.equipmentRepo.CreateEquipment(ctx, entities.Equipment{
		Name:            payload.Name,
		Description:     payload.Description,
		CategoryID:      payload.CategoryID,
		DepartmentID:    payload.DepartmentID,
		InventoryNumber: payload.InventoryNumber,
		Location:        payload.Location,
		IsActive:        isActive,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создано оборудование",
		zap.Uint64("id", equipment.ID), zap.String("inventoryNumber", equipment.InventoryNumber))
	return equipment, nil
}

func (s *EquipmentService) UpdateEquipment(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	return s.equipmentRepo.UpdateEquipment(ctx, id, payload)
}

func (s *EquipmentService) DeleteEquipment(ctx context.Context, id uint64) error {
	return s.equipmentRepo.DeleteEquipment(ctx, id)
}
