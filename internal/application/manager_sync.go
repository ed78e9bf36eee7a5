package application

import (
	"context"
	"errors"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	repo "github.com/rakapratama/go-admin-backend/internal/domain/repository"
)

// ManagerSyncInput is the identity pushed by the external manager tool.
type ManagerSyncInput struct {
	Email    string
	Name     string
	ImageURL string
}

// LoginUserFromManager reconciles an externally managed identity into
// the user table. Existing users get a missing image backfilled. When
// separate per-identity accounts are enabled, unknown identities are
// created with a generated password and the configured default role;
// creation failures fall through to the shared manager account.
func (s *Service) LoginUserFromManager(ctx context.Context, in ManagerSyncInput) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, in.Email)
	if err == nil {
		if u.ImageURL == "" && in.ImageURL != "" {
			u.ImageURL = in.ImageURL
			if uerr := s.Repo.UpdateImage(ctx, u.ID, in.ImageURL); uerr != nil {
				s.Logger.WithError(uerr).WithField("user_id", u.ID).Warn("image backfill failed during manager sync")
			}
		}
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	if s.Cfg.ManagerSeparateUsers {
		res, cerr := s.CreateUser(ctx, CreateUserInput{
			Name:  in.Name,
			Email: in.Email,
			Role:  s.Cfg.ManagerDefaultRole,
		})
		if cerr == nil {
			if in.ImageURL != "" {
				res.User.ImageURL = in.ImageURL
				if uerr := s.Repo.UpdateImage(ctx, res.User.ID, in.ImageURL); uerr != nil {
					s.Logger.WithError(uerr).WithField("user_id", res.User.ID).Warn("image backfill failed during manager sync")
				}
			}
			return res.User, nil
		}
		s.Logger.WithError(cerr).WithField("email", in.Email).Warn("manager sync create failed, falling back to shared account")
	}

	shared, err := s.Repo.GetByEmail(ctx, s.Cfg.ManagerEmail)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return shared, nil
}
