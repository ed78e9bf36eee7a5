package application

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	repo "github.com/rakapratama/go-admin-backend/internal/domain/repository"
	"github.com/rakapratama/go-admin-backend/pkg/validation"
)

// roleRules validates role payloads per operation. Slug uniqueness is
// checked separately against the repository with the current id
// excluded.
var roleRules = validation.OperationRules{
	"create": {
		"slug":  "required,slug,max=50",
		"title": "required,max=100",
	},
	"update": {
		"slug":  "required,slug,max=50",
		"title": "required,max=100",
	},
}

type RoleService struct {
	Repo   repo.RoleRepository
	Logger *logrus.Logger
}

func NewRoleService(r repo.RoleRepository, logger *logrus.Logger) *RoleService {
	return &RoleService{Repo: r, Logger: logger}
}

type RoleInput struct {
	Slug  string
	Title string
}

// validate runs the rule table for op, then the uniqueness check with
// excludeID removed from consideration.
func (s *RoleService) validate(ctx context.Context, op string, in RoleInput, excludeID string) error {
	details := roleRules.Check(op, map[string]string{
		"slug":  in.Slug,
		"title": in.Title,
	})
	if details == nil {
		details = make(map[string]string)
	}
	if _, ok := details["slug"]; !ok {
		taken, err := s.Repo.SlugExists(ctx, in.Slug, excludeID)
		if err != nil {
			return err
		}
		if taken {
			details["slug"] = "is already in use"
		}
	}
	if len(details) > 0 {
		return &ValidationError{Details: details}
	}
	return nil
}

func (s *RoleService) CreateRole(ctx context.Context, in RoleInput) (*entity.Role, error) {
	if err := s.validate(ctx, "create", in, ""); err != nil {
		return nil, err
	}
	r := &entity.Role{
		ID:    uuid.NewString(),
		Slug:  in.Slug,
		Title: in.Title,
	}
	if err := s.Repo.Insert(ctx, r); err != nil {
		return nil, saveFailed(err)
	}
	return r, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id string, in RoleInput) (*entity.Role, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if err := s.validate(ctx, "update", in, id); err != nil {
		return nil, err
	}
	r.Slug = in.Slug
	r.Title = in.Title
	if err := s.Repo.Update(ctx, r); err != nil {
		return nil, saveFailed(err)
	}
	return r, nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*entity.Role, error) {
	r, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return r, nil
}

func (s *RoleService) GetRoleBySlug(ctx context.Context, slug string) (*entity.Role, error) {
	r, err := s.Repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return r, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]*entity.Role, error) {
	return s.Repo.List(ctx)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
