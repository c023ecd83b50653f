package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-booking/internal/dto"
	"equipment-booking/internal/entities"
	apperrors "equipment-booking/pkg/errors"
	"equipment-booking/pkg/types"
)

const equipmentTable = "equipments"

var equipmentAllowedFilterFields = map[string]string{
	"category_id":   "e.category_id",
	"department_id": "e.department_id",
	"is_active":     "e.is_active",
}

var equipmentAllowedSortFields = map[string]string{
	"id":         "e.id",
	"name":       "e.name",
	"created_at": "e.created_at",
}

type EquipmentRepositoryInterface interface {
	// GetEquipments возвращает только оборудование подразделений из allowedDepartmentIDs.
	// nil означает «без ограничения» (администратор).
	GetEquipments(ctx context.Context, filter types.Filter, allowedDepartmentIDs []uint64) ([]dto.EquipmentDTO, uint64, error)
	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	// FindEquipmentDetailed подгружает категорию и подразделение одним запросом.
	FindEquipmentDetailed(ctx context.Context, id uint64) (*entities.Equipment, error)
	CreateEquipment(ctx context.Context, equipment entities.Equipment) (*entities.Equipment, error)
	UpdateEquipment(ctx context.Context, id uint64, dto dto.UpdateEquipmentDTO) (*entities.Equipment, error)
	DeleteEquipment(ctx context.Context, id uint64) error
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

const equipmentFields = "id, name, description, category_id, department_id, inventory_number, location, is_active, created_at, updated_at"

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.CategoryID, &e.DepartmentID,
		&e.InventoryNumber, &e.Location, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
	}
	return &e, nil
}

func (r *EquipmentRepository) GetEquipments(ctx context.Context, filter types.Filter, allowedDepartmentIDs []uint64) ([]dto.EquipmentDTO, uint64, error) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(e.name ILIKE $%d OR e.inventory_number ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := equipmentAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}
	if allowedDepartmentIDs != nil {
		conditions = append(conditions, fmt.Sprintf("e.department_id = ANY($%d)", argCounter))
		args = append(args, allowedDepartmentIDs)
		argCounter++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s e %s", equipmentTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.EquipmentDTO{}, 0, nil
	}

	orderClause := "ORDER BY e.name ASC"
	for field, dir := range filter.Sort {
		if dbColumn, ok := equipmentAllowedSortFields[field]; ok {
			direction := "ASC"
			if strings.EqualFold(dir, "desc") {
				direction = "DESC"
			}
			orderClause = fmt.Sprintf("ORDER BY %s %s", dbColumn, direction)
		}
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.description, e.inventory_number, e.location, e.is_active, e.created_at,
			c.id, c.name,
			d.id, d.name
		FROM %s e
		JOIN equipment_categories c ON c.id = e.category_id
		JOIN departments d ON d.id = e.department_id
		%s %s %s`, equipmentTable, whereClause, orderClause, limitClause)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	equipments := make([]dto.EquipmentDTO, 0)
	for rows.Next() {
		var e dto.EquipmentDTO
		var createdAt time.Time
		err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.InventoryNumber, &e.Location, &e.IsActive, &createdAt,
			&e.Category.ID, &e.Category.Name,
			&e.Department.ID, &e.Department.Name)
		if err != nil {
			return nil, 0, err
		}
		e.CreatedAt = createdAt.Format(time.RFC3339)
		equipments = append(equipments, e)
	}
	return equipments, total, rows.Err()
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, equipmentFields, equipmentTable)
	return scanEquipment(r.storage.QueryRow(ctx, query, id))
}

func (r *EquipmentRepository) FindEquipmentDetailed(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query := fmt.Sprintf(`
		SELECT e.id, e.name, e.description, e.category_id, e.department_id,
			e.inventory_number, e.location, e.is_active, e.created_at, e.updated_at,
			c.id, c.name, c.description, c.approval_required, c.max_booking_hours,
			d.id, d.name, d.code, d.description
		FROM %s e
		JOIN equipment_categories c ON c.id = e.category_id
		JOIN departments d ON d.id = e.department_id
		WHERE e.id = $1`, equipmentTable)

	var e entities.Equipment
	var c entities.EquipmentCategory
	var d entities.Department
	err := r.storage.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Description, &e.CategoryID, &e.DepartmentID,
		&e.InventoryNumber, &e.Location, &e.IsActive, &e.CreatedAt, &e.UpdatedAt,
		&c.ID, &c.Name, &c.Description, &c.ApprovalRequired, &c.MaxBookingHours,
		&d.ID, &d.Name, &d.Code, &d.Description,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
	}
	e.Category = &c
	e.Department = &d
	return &e, nil
}

func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment entities.Equipment) (*entities.Equipment, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description, category_id, department_id, inventory_number, location, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, equipmentTable, equipmentFields)

	result, err := scanEquipment(r.storage.QueryRow(ctx, query,
		equipment.Name, equipment.Description, equipment.CategoryID, equipment.DepartmentID,
		equipment.InventoryNumber, equipment.Location, equipment.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewHttpError(http.StatusConflict,
				"Оборудование с таким инвентарным номером уже существует", err, nil)
		}
		return nil, err
	}
	return result, nil
}

func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, id uint64, dto dto.UpdateEquipmentDTO) (*entities.Equipment, error) {
	updateBuilder := sq.Update(equipmentTable).
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
	if dto.CategoryID != nil {
		updateBuilder = updateBuilder.Set("category_id", *dto.CategoryID)
		hasChanges = true
	}
	if dto.DepartmentID != nil {
		updateBuilder = updateBuilder.Set("department_id", *dto.DepartmentID)
		hasChanges = true
	}
	if dto.InventoryNumber != nil {
		updateBuilder = updateBuilder.Set("inventory_number", *dto.InventoryNumber)
		hasChanges = true
	}
	if dto.Location != nil {
		updateBuilder = updateBuilder.Set("location", *dto.Location)
		hasChanges = true
	}
	if dto.IsActive != nil {
		updateBuilder = updateBuilder.Set("is_active", *dto.IsActive)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindEquipment(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + equipmentFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEquipment(r.storage.QueryRow(ctx, query, args...))
}

func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id uint64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, equipmentTable)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
