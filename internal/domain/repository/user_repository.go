package repository

import (
	"context"
	"errors"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ListQuery describes a paginated user listing. Search, when non-empty, is a
// case-insensitive substring match against name and email. Results are always
// ordered by name ascending.
type ListQuery struct {
	Limit  int
	Offset int
	Search string
}

// UserRepository defines the interface for user-related database operations.
// WithinTx runs fn against a transactional view of the repository; if fn
// returns an error every write made inside it is rolled back.
type UserRepository interface {
	WithinTx(ctx context.Context, fn func(tx UserRepository) error) error

	Insert(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	UpdateImage(ctx context.Context, id, imageURL string) error
	SetRememberToken(ctx context.Context, id, token string) error

	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByRememberToken(ctx context.Context, token string) (*entity.User, error)

	// FindFirstByColumns returns the first user matching all column=value
	// pairs, ordered by name. Unknown and hidden columns are ignored.
	FindFirstByColumns(ctx context.Context, columns map[string]any) (*entity.User, error)

	// List returns one page of users plus the total number of matches.
	List(ctx context.Context, q ListQuery) ([]*entity.User, int, error)
}
