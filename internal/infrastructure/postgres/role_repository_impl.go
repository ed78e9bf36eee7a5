package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/internal/domain/repository"
)

type RoleRepository struct {
	db querier
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{db: pool}
}

func (r *RoleRepository) Insert(ctx context.Context, role *entity.Role) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO roles (id, slug, title)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, role.ID, role.Slug, role.Title)

	return row.Scan(&role.CreatedAt, &role.UpdatedAt)
}

func (r *RoleRepository) Update(ctx context.Context, role *entity.Role) error {
	role.UpdatedAt = time.Now()

	res, err := r.db.Exec(ctx, `
		UPDATE roles SET slug = $1, title = $2, updated_at = $3 WHERE id = $4
	`, role.Slug, role.Title, role.UpdatedAt, role.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*entity.Role, error) {
	return r.getOne(ctx, `SELECT id, slug, title, created_at, updated_at FROM roles WHERE id = $1`, id)
}

func (r *RoleRepository) GetBySlug(ctx context.Context, slug string) (*entity.Role, error) {
	return r.getOne(ctx, `SELECT id, slug, title, created_at, updated_at FROM roles WHERE slug = $1`, slug)
}

func (r *RoleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, title, created_at, updated_at FROM roles ORDER BY slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*entity.Role
	for rows.Next() {
		role := &entity.Role{}
		if err := rows.Scan(&role.ID, &role.Slug, &role.Title, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// SlugExists checks slug uniqueness with an explicit excluded id rather than
// interpolating the current record into the query.
func (r *RoleRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM roles WHERE slug = $1 AND ($2 = '' OR id::text <> $2)
		)
	`, slug, excludeID).Scan(&exists)
	return exists, err
}

func (r *RoleRepository) getOne(ctx context.Context, q string, args ...any) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.db.QueryRow(ctx, q, args...).Scan(&role.ID, &role.Slug, &role.Title, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return role, nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
