package services

import (
	"context"

	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	"equipment-booking/internal/repositories"
	"equipment-booking/pkg/types"
)

type EquipmentCategoryServiceInterface interface {
	GetCategories(ctx context.Context, filter types.Filter) ([]entities.EquipmentCategory, uint64, error)
	FindCategory(ctx context.Context, id uint64) (*entities.EquipmentCategory, error)
	CreateCategory(ctx context.Context, payload dto.CreateEquipmentCategoryDTO) (*entities.EquipmentCategory, error)
	UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateEquipmentCategoryDTO) (*entities.EquipmentCategory, error)
	DeleteCategory(ctx context.Context, id uint64) error
}

type EquipmentCategoryService struct {
	categoryRepo repositories.EquipmentCategoryRepositoryInterface
	logger       *zap.Logger
}

func NewEquipmentCategoryService(categoryRepo repositories.EquipmentCategoryRepositoryInterface, logger *zap.Logger) EquipmentCategoryServiceInterface {
	return &EquipmentCategoryService{categoryRepo: categoryRepo, logger: logger}
}

func (s *EquipmentCategoryService) GetCategories(ctx context.Context, filter types.Filter) ([]entities.EquipmentCategory, uint64, error) {
	return s.categoryRepo.GetCategories(ctx, filter)
}

func (s *EquipmentCategoryService) FindCategory(ctx context.Context, id uint64) (*entities.EquipmentCategory, error) {
	return s.categoryRepo.FindCategory(ctx, id)
}

func (s *EquipmentCategoryService) CreateCategory(ctx context.Context, payload dto.CreateEquipmentCategoryDTO) (*entities.EquipmentCategory, error) {
	category, err := s.categoryRepo.CreateCategory(ctx, entities.EquipmentCategory{
		Name:             payload.Name,
		Description:      payload.Description,
		ApprovalRequired: payload.ApprovalRequired,
		MaxBookingHours:  payload.MaxBookingHours,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Создана категория оборудования",
		zap.Uint64("id", category.ID), zap.Bool("approvalRequired", category.ApprovalRequired))
	return category, nil
}

func (s *EquipmentCategoryService) UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateEquipmentCategoryDTO) (*entities.EquipmentCategory, error) {
	return s.categoryRepo.UpdateCategory(ctx, id, payload)
}

func (s *EquipmentCategoryService) DeleteCategory(ctx context.Context, id uint64) error {
	return s.categoryRepo.DeleteCategory(ctx, id)
}
