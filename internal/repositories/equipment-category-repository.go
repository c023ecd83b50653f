package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/types"
)

const equipmentCategoryTable = "equipment_categories"

type EquipmentCategoryRepositoryInterface interface {
	GetCategories(ctx context.Context, filter types.Filter) ([]entities.EquipmentCategory, uint64, error)
	FindCategory(ctx context.Context, id uint64) (*entities.EquipmentCategory, error)
	CreateCategory(ctx context.Context, category entities.EquipmentCategory) (*entities.EquipmentCategory, error)
	UpdateCategory(ctx context.Context, id uint64, dto dto.UpdateEquipmentCategoryDTO) (*entities.EquipmentCategory, error)
	DeleteCategory(ctx context.Context, id uint64) error
}

type EquipmentCategoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentCategoryRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentCategoryRepositoryInterface {
	return &EquipmentCategoryRepository{storage: storage, logger: logger}
}

const equipmentCategoryFields = "id, name, description, approval_required, max_booking_hours, created_at, updated_at"

func scanEquipmentCategory(row pgx.Row) (*entities.EquipmentCategory, error) {
	var c entities.EquipmentCategory
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.ApprovalRequired, &c.MaxBookingHours, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования категории оборудования: %w", err)
	}
	return &c, nil
}

func (r *EquipmentCategoryRepository) GetCategories(ctx context.Context, filter types.Filter) ([]entities.EquipmentCategory, uint64, error) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", equipmentCategoryTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.EquipmentCategory{}, 0, nil
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY name ASC %s`,
		equipmentCategoryFields, equipmentCategoryTable, whereClause, limitClause)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	categories := make([]entities.EquipmentCategory, 0)
	for rows.Next() {
		category, err := scanEquipmentCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, *category)
	}
	return categories, total, rows.Err()
}

func (r *EquipmentCategoryRepository) FindCategory(ctx context.Context, id uint64) (*entities.EquipmentCategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, equipmentCategoryFields, equipmentCategoryTable)
	return scanEquipmentCategory(r.storage.QueryRow(ctx, query, id))
}

func (r *EquipmentCategoryRepository) CreateCategory(ctx context.Context, category entities.EquipmentCategory) (*entities.EquipmentCategory, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, approval_required, max_booking_hours)
		VALUES ($1, $2, $3, $4)
		RETURNING %s`, equipmentCategoryTable, equipmentCategoryFields)

	return scanEquipmentCategory(r.storage.QueryRow(ctx, query,
		category.Name, category.Description, category.ApprovalRequired, category.MaxBookingHours))
}

func (r *EquipmentCategoryRepository) UpdateCategory(ctx context.Context, id uint64, dto dto.UpdateEquipmentCategoryDTO) (*entities.EquipmentCategory, error) {
	updateBuilder := sq.Update(equipmentCategoryTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if dto.Name != nil {
		updateBuilder = updateBuilder.Set("name", *dto.Name)
		hasChanges = true
	}
	if dto.Description != nil {
		updateBuilder = updateBuilder.Set("description", *dto.Description)
		hasChanges = true
	}
	if dto.ApprovalRequired != nil {
		updateBuilder = updateBuilder.Set("approval_required", *dto.ApprovalRequired)
		hasChanges = true
	}
	if dto.MaxBookingHours != nil {
		updateBuilder = updateBuilder.Set("max_booking_hours", *dto.MaxBookingHours)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindCategory(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + equipmentCategoryFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEquipmentCategory(r.storage.QueryRow(ctx, query, args...))
}

func (r *EquipmentCategoryRepository) DeleteCategory(ctx context.Context, id uint64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, equipmentCategoryTable)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
