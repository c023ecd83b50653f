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

const departmentTable = "departments"

var (
	departmentAllowedFilterFields = map[string]string{"code": "d.code"}
	departmentAllowedSortFields   = map[string]string{"id": "d.id", "name": "d.name", "created_at": "d.created_at"}
)

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error)
	// GetAccessibleDepartments возвращает подразделения, на которые у пользователя
	// есть грант просмотра. Для админа используйте GetDepartments.
	GetAccessibleDepartments(ctx context.Context, userID uint64) ([]entities.Department, error)
	// GetManageableDepartments - подразделения, где у пользователя грант can_manage.
	GetManageableDepartments(ctx context.Context, userID uint64) ([]entities.Department, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, dto dto.UpdateDepartmentDTO) (*entities.Department, error)
	DeleteDepartment(ctx context.Context, id uint64) error
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage, logger: logger}
}

func scanDepartment(row pgx.Row) (*entities.Department, error) {
	var d entities.Department
	err := row.Scan(&d.ID, &d.Name, &d.Code, &d.Description, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) buildFilterQuery(filter types.Filter, tableAlias string) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(%s.name ILIKE $%d OR %s.code ILIKE $%d)", tableAlias, argCounter, tableAlias, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := departmentAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}
	if len(conditions) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *DepartmentRepository) countDepartments(ctx context.Context, filter types.Filter, tableAlias string) (uint64, error) {
	whereClause, args := r.buildFilterQuery(filter, tableAlias)
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s AS %s %s", departmentTable, tableAlias, whereClause)
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error) {
	total, err := r.countDepartments(ctx, filter, "d")
	if err != nil || total == 0 {
		return []entities.Department{}, total, err
	}
	whereClause, args := r.buildFilterQuery(filter, "d")
	orderByClause := "ORDER BY d.name ASC"
	if len(filter.Sort) > 0 {
		sorts := []string{}
		for field, direction := range filter.Sort {
			if dbField, ok := departmentAllowedSortFields[field]; ok {
				order := "ASC"
				if strings.ToLower(direction) == "desc" {
					order = "DESC"
				}
				sorts = append(sorts, fmt.Sprintf("%s %s", dbField, order))
			}
		}
		if len(sorts) > 0 {
			orderByClause = "ORDER BY " + strings.Join(sorts, ", ")
		}
	}
	limitClause := ""
	argCounter := len(args) + 1
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}
	query := fmt.Sprintf(`SELECT d.id, d.name, d.code, d.description, d.created_at, d.updated_at FROM %s d %s %s %s`,
		departmentTable, whereClause, orderByClause, limitClause)
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	departments := make([]entities.Department, 0)
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		departments = append(departments, *dept)
	}
	return departments, total, rows.Err()
}

func (r *DepartmentRepository) GetAccessibleDepartments(ctx context.Context, userID uint64) ([]entities.Department, error) {
	// Дедупликация не нужна: на пару (user, department) не более одной записи гранта.
	query := `
		SELECT d.id, d.name, d.code, d.description, d.created_at, d.updated_at
		FROM departments d
		JOIN department_accesses da ON da.department_id = d.id
		WHERE da.user_id = $1 AND da.can_view = TRUE
		ORDER BY d.name ASC`
	rows, err := r.storage.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	departments := make([]entities.Department, 0)
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *dept)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) GetManageableDepartments(ctx context.Context, userID uint64) ([]entities.Department, error) {
	query := `
		SELECT d.id, d.name, d.code, d.description, d.created_at, d.updated_at
		FROM departments d
		JOIN department_accesses da ON da.department_id = d.id
		WHERE da.user_id = $1 AND da.can_manage = TRUE
		ORDER BY d.name ASC`
	rows, err := r.storage.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	departments := make([]entities.Department, 0)
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		departments = append(departments, *dept)
	}
	return departments, rows.Err()
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	query := `SELECT id, name, code, description, created_at, updated_at FROM departments WHERE id = $1`
	return scanDepartment(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentRepository) CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error) {
	query := `INSERT INTO departments (name, code, description) VALUES($1, $2, $3)
		RETURNING id, name, code, description, created_at, updated_at`
	return scanDepartment(r.storage.QueryRow(ctx, query, department.Name, department.Code, department.Description))
}

func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, id uint64, dto dto.UpdateDepartmentDTO) (*entities.Department, error) {
	updateBuilder := sq.Update(departmentTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if dto.Name != nil {
		updateBuilder = updateBuilder.Set("name", *dto.Name)
		hasChanges = true
	}
	if dto.Code != nil {
		updateBuilder = updateBuilder.Set("code", *dto.Code)
		hasChanges = true
	}
	if dto.Description != nil {
		updateBuilder = updateBuilder.Set("description", *dto.Description)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindDepartment(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING id, name, code, description, created_at, updated_at").ToSql()
	if err != nil {
		return nil, err
	}
	return scanDepartment(r.storage.QueryRow(ctx, query, args...))
}

func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id uint64) error {
	query := `DELETE FROM departments WHERE id = $1`
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
