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

const departmentAccessTable = "department_accesses"

var accessAllowedFilterFields = map[string]string{
	"user_id":       "da.user_id",
	"department_id": "da.department_id",
}

type DepartmentAccessRepositoryInterface interface {
	// FindByUserAndDepartment возвращает единственную запись гранта для пары
	// или apperrors.ErrNotFound, если доступ не выдан.
	FindByUserAndDepartment(ctx context.Context, userID, departmentID uint64) (*entities.DepartmentAccess, error)
	FindAccess(ctx context.Context, id uint64) (*entities.DepartmentAccess, error)
	GetAccesses(ctx context.Context, filter types.Filter, onlyDepartmentIDs []uint64) ([]dto.DepartmentAccessDTO, uint64, error)
	CreateAccess(ctx context.Context, access entities.DepartmentAccess) (*entities.DepartmentAccess, error)
	UpdateAccess(ctx context.Context, id uint64, dto dto.UpdateDepartmentAccessDTO) (*entities.DepartmentAccess, error)
	DeleteAccess(ctx context.Context, id uint64) error
}

type DepartmentAccessRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentAccessRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentAccessRepositoryInterface {
	return &DepartmentAccessRepository{storage: storage, logger: logger}
}

func scanAccess(row pgx.Row) (*entities.DepartmentAccess, error) {
	var a entities.DepartmentAccess
	err := row.Scan(&a.ID, &a.UserID, &a.DepartmentID, &a.CanView, &a.CanBook, &a.CanManage, &a.GrantedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования department_access: %w", err)
	}
	return &a, nil
}

const accessFields = "id, user_id, department_id, can_view, can_book, can_manage, granted_by, created_at, updated_at"

func (r *DepartmentAccessRepository) FindByUserAndDepartment(ctx context.Context, userID, departmentID uint64) (*entities.DepartmentAccess, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND department_id = $2`, accessFields, departmentAccessTable)
	return scanAccess(r.storage.QueryRow(ctx, query, userID, departmentID))
}

func (r *DepartmentAccessRepository) FindAccess(ctx context.Context, id uint64) (*entities.DepartmentAccess, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, accessFields, departmentAccessTable)
	return scanAccess(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentAccessRepository) GetAccesses(ctx context.Context, filter types.Filter, onlyDepartmentIDs []uint64) ([]dto.DepartmentAccessDTO, uint64, error) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	for key, value := range filter.Filter {
		if dbColumn, ok := accessAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}
	if onlyDepartmentIDs != nil {
		conditions = append(conditions, fmt.Sprintf("da.department_id = ANY($%d)", argCounter))
		args = append(args, onlyDepartmentIDs)
		argCounter++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s da %s", departmentAccessTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.DepartmentAccessDTO{}, 0, nil
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	query := fmt.Sprintf(`
		SELECT da.id, da.can_view, da.can_book, da.can_manage, da.created_at,
			u.id, u.username, u.fio,
			d.id, d.name,
			g.id, g.username, g.fio
		FROM %s da
		JOIN users u ON u.id = da.user_id
		JOIN departments d ON d.id = da.department_id
		LEFT JOIN users g ON g.id = da.granted_by
		%s
		ORDER BY u.username ASC, d.name ASC
		%s`, departmentAccessTable, whereClause, limitClause)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	accesses := make([]dto.DepartmentAccessDTO, 0)
	for rows.Next() {
		var a dto.DepartmentAccessDTO
		var createdAt time.Time
		var grantedByID *uint64
		var grantedByUsername, grantedByFio *string

		err := rows.Scan(&a.ID, &a.CanView, &a.CanBook, &a.CanManage, &createdAt,
			&a.User.ID, &a.User.Username, &a.User.Fio,
			&a.Department.ID, &a.Department.Name,
			&grantedByID, &grantedByUsername, &grantedByFio,
		)
		if err != nil {
			return nil, 0, err
		}
		a.CreatedAt = createdAt.Format(time.RFC3339)
		if grantedByID != nil {
			a.GrantedBy = &dto.ShortUserDTO{ID: *grantedByID, Username: *grantedByUsername, Fio: *grantedByFio}
		}
		accesses = append(accesses, a)
	}
	return accesses, total, rows.Err()
}

func (r *DepartmentAccessRepository) CreateAccess(ctx context.Context, access entities.DepartmentAccess) (*entities.DepartmentAccess, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, department_id, can_view, can_book, can_manage, granted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, departmentAccessTable, accessFields)

	result, err := scanAccess(r.storage.QueryRow(ctx, query,
		access.UserID, access.DepartmentID, access.CanView, access.CanBook, access.CanManage, access.GrantedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: грант для пары (user, department) уже существует
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewHttpError(http.StatusConflict,
				"Доступ для этой пары пользователь/подразделение уже выдан", err, nil)
		}
		return nil, err
	}
	return result, nil
}

func (r *DepartmentAccessRepository) UpdateAccess(ctx context.Context, id uint64, dto dto.UpdateDepartmentAccessDTO) (*entities.DepartmentAccess, error) {
	updateBuilder := sq.Update(departmentAccessTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if dto.CanView != nil {
		updateBuilder = updateBuilder.Set("can_view", *dto.CanView)
		hasChanges = true
	}
	if dto.CanBook != nil {
		updateBuilder = updateBuilder.Set("can_book", *dto.CanBook)
		hasChanges = true
	}
	if dto.CanManage != nil {
		updateBuilder = updateBuilder.Set("can_manage", *dto.CanManage)
		hasChanges = true
	}
	if !hasChanges {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, accessFields, departmentAccessTable)
		return scanAccess(r.storage.QueryRow(ctx, query, id))
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + accessFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanAccess(r.storage.QueryRow(ctx, query, args...))
}

func (r *DepartmentAccessRepository) DeleteAccess(ctx context.Context, id uint64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, departmentAccessTable)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
