package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/internal/domain/repository"
)

const userColumns = `id, email, name, password_hash, image_url, remember_token, role, must_change_password, created_at, updated_at`

// filterableUserColumns are the columns FindFirstByColumns accepts. Hidden
// columns (password_hash, remember_token) are deliberately absent.
var filterableUserColumns = map[string]struct{}{
	"id":                   {},
	"email":                {},
	"name":                 {},
	"image_url":            {},
	"role":                 {},
	"must_change_password": {},
}

type UserRepository struct {
	pool *pgxpool.Pool
	db   querier
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool, db: pool}
}

// WithinTx runs fn against a copy of the repository bound to a transaction.
// fn returning an error rolls everything back.
func (r *UserRepository) WithinTx(ctx context.Context, fn func(tx repository.UserRepository) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(&UserRepository{pool: r.pool, db: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, image_url, remember_token, role, must_change_password)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.Name, u.PasswordHash, u.ImageURL, u.RememberToken, u.Role, u.MustChangePassword)

	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $1, name = $2, password_hash = $3, image_url = $4, role = $5, must_change_password = $6, updated_at = $7
		WHERE id = $8
	`, u.Email, u.Name, u.PasswordHash, u.ImageURL, u.Role, u.MustChangePassword, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateImage(ctx context.Context, id, imageURL string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users SET image_url = $1, updated_at = now() WHERE id = $2
	`, imageURL, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetRememberToken(ctx context.Context, id, token string) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users SET remember_token = $1, updated_at = now() WHERE id = $2
	`, token, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByRememberToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE remember_token = $1`, token)
}

func (r *UserRepository) FindFirstByColumns(ctx context.Context, columns map[string]any) (*entity.User, error) {
	where := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for col, val := range columns {
		if _, ok := filterableUserColumns[col]; !ok {
			continue
		}
		args = append(args, val)
		where = append(where, col+" = $"+strconv.Itoa(len(args)))
	}
	if len(where) == 0 {
		return nil, repository.ErrNotFound
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name ASC LIMIT 1`
	return r.getOne(ctx, q, args...)
}

func (r *UserRepository) List(ctx context.Context, q repository.ListQuery) ([]*entity.User, int, error) {
	where := ""
	args := []any{}
	if q.Search != "" {
		where = ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+escapeLike(q.Search)+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q.Limit = clampLimit(q.Limit)
	args = append(args, q.Limit, q.Offset)
	sel := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sel, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	users := make([]*entity.User, 0, q.Limit)
	for rows.Next() {
		u := &entity.User{}
		if err := scanUser(rows, u); err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, q string, args ...any) (*entity.User, error) {
	u := &entity.User{}
	if err := scanUser(r.db.QueryRow(ctx, q, args...), u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanUser(row pgx.Row, u *entity.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.ImageURL,
		&u.RememberToken, &u.Role, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt)
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search terms.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

var _ repository.UserRepository = (*UserRepository)(nil)
