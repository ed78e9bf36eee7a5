package repository

import (
	"context"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
)

// RoleRepository defines role persistence operations.
type RoleRepository interface {
	Insert(ctx context.Context, r *entity.Role) error
	Update(ctx context.Context, r *entity.Role) error
	GetByID(ctx context.Context, id string) (*entity.Role, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)

	// SlugExists reports whether another role already uses slug. A non-empty
	// excludeID removes that record from consideration, so updates do not
	// collide with themselves.
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}
