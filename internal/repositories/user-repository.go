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

const userTable = "users"

var userAllowedFilterFields = map[string]string{
	"role":          "u.role",
	"department_id": "u.department_id",
}

var userAllowedSortFields = map[string]string{
	"id":         "u.id",
	"username":   "u.username",
	"fio":        "u.fio",
	"created_at": "u.created_at",
}

type UserRepositoryInterface interface {
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	FindByUsername(ctx context.Context, username string) (*entities.User, error)
	FindByTelegramKey(ctx context.Context, key string) (*entities.User, error)
	FindByTelegramChatID(ctx context.Context, chatID int64) (*entities.User, error)
	LinkTelegramChat(ctx context.Context, userID uint64, chatID int64) error
	UnlinkTelegramChat(ctx context.Context, userID uint64) error
	GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	CreateUser(ctx context.Context, user entities.User) (*entities.User, error)
	UpdateUser(ctx context.Context, id uint64, dto dto.UpdateUserDTO) (*entities.User, error)
	UpdatePassword(ctx context.Context, id uint64, hashedPassword string) error
	DeleteUser(ctx context.Context, id uint64) error
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

const userFields = `id, username, fio, email, phone, password, role, department_id,
	telegram_key, telegram_chat_id, created_at, updated_at`

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Username, &u.Fio, &u.Email, &u.Phone, &u.Password, &u.Role,
		&u.DepartmentID, &u.TelegramKey, &u.TelegramChatID, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования пользователя: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, userFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, username))
}

func (r *UserRepository) FindByTelegramKey(ctx context.Context, key string) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE telegram_key = $1`, userFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, key))
}

func (r *UserRepository) FindByTelegramChatID(ctx context.Context, chatID int64) (*entities.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE telegram_chat_id = $1`, userFields, userTable)
	return scanUser(r.storage.QueryRow(ctx, query, chatID))
}

func (r *UserRepository) LinkTelegramChat(ctx context.Context, userID uint64, chatID int64) error {
	query := fmt.Sprintf(`UPDATE %s SET telegram_chat_id = $1, updated_at = NOW() WHERE id = $2`, userTable)
	result, err := r.storage.Exec(ctx, query, chatID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UnlinkTelegramChat(ctx context.Context, userID uint64) error {
	query := fmt.Sprintf(`UPDATE %s SET telegram_chat_id = NULL, updated_at = NOW() WHERE id = $1`, userTable)
	result, err := r.storage.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetUsers(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	conditions := []string{}
	args := []interface{}{}
	argCounter := 1

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(u.username ILIKE $%d OR u.fio ILIKE $%d)", argCounter, argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := userAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s u %s", userTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []dto.UserDTO{}, 0, nil
	}

	orderClause := "ORDER BY u.id ASC"
	for field, dir := range filter.Sort {
		if dbColumn, ok := userAllowedSortFields[field]; ok {
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
		SELECT u.id, u.username, u.fio, u.email, u.phone, u.role,
			u.telegram_chat_id IS NOT NULL, u.created_at,
			d.id, d.name
		FROM %s u
		LEFT JOIN departments d ON d.id = u.department_id
		%s %s %s`, userTable, whereClause, orderClause, limitClause)

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]dto.UserDTO, 0)
	for rows.Next() {
		var u dto.UserDTO
		var createdAt time.Time
		var depID *uint64
		var depName *string
		err := rows.Scan(&u.ID, &u.Username, &u.Fio, &u.Email, &u.Phone, &u.Role,
			&u.TelegramLinked, &createdAt, &depID, &depName)
		if err != nil {
			return nil, 0, err
		}
		u.CreatedAt = createdAt.Format(time.RFC3339)
		if depID != nil {
			u.Department = &dto.ShortDepartmentDTO{ID: *depID, Name: *depName}
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) CreateUser(ctx context.Context, user entities.User) (*entities.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, fio, email, phone, password, role, department_id, telegram_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, userTable, userFields)

	result, err := scanUser(r.storage.QueryRow(ctx, query,
		user.Username, user.Fio, user.Email, user.Phone, user.Password,
		user.Role, user.DepartmentID, user.TelegramKey))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewHttpError(http.StatusConflict,
				"Пользователь с таким логином уже существует", err, nil)
		}
		return nil, err
	}
	return result, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id uint64, dto dto.UpdateUserDTO) (*entities.User, error) {
	updateBuilder := sq.Update(userTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if dto.Fio != nil {
		updateBuilder = updateBuilder.Set("fio", *dto.Fio)
		hasChanges = true
	}
	if dto.Email != nil {
		updateBuilder = updateBuilder.Set("email", *dto.Email)
		hasChanges = true
	}
	if dto.Phone != nil {
		updateBuilder = updateBuilder.Set("phone", *dto.Phone)
		hasChanges = true
	}
	if dto.Role != nil {
		updateBuilder = updateBuilder.Set("role", *dto.Role)
		hasChanges = true
	}
	if dto.DepartmentID != nil {
		updateBuilder = updateBuilder.Set("department_id", *dto.DepartmentID)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindUser(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + userFields).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.storage.QueryRow(ctx, query, args...))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint64, hashedPassword string) error {
	query := fmt.Sprintf(`UPDATE %s SET password = $1, updated_at = NOW() WHERE id = $2`, userTable)
	result, err := r.storage.Exec(ctx, query, hashedPassword, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id uint64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, userTable)
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
