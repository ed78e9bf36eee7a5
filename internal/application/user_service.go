package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/config"
	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	repo "github.com/rakapratama/go-admin-backend/internal/domain/repository"
	"github.com/rakapratama/go-admin-backend/pkg/helpers"
)

// ImageStore persists an uploaded image and returns its public URL.
type ImageStore interface {
	Store(ctx context.Context, userID, filename string, r io.Reader) (string, error)
}

type Service struct {
	Repo         repo.UserRepository
	Images       ImageStore
	ES           *elasticsearch.Client
	ESUsersIndex string
	Logger       *logrus.Logger
	Cfg          *config.Config
}

func NewService(r repo.UserRepository, images ImageStore, es *elasticsearch.Client, esUsersIndex string, logger *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		Repo:         r,
		Images:       images,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		Logger:       logger,
		Cfg:          cfg,
	}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string // empty means generate one
	Role     string

	Image         io.Reader // optional avatar upload
	ImageFilename string
}

type CreateUserResult struct {
	User *entity.User
	// PlainPassword is the password to embed in the welcome email. It is
	// never persisted in clear text.
	PlainPassword     string
	PasswordGenerated bool
}

// CreateUser inserts the user, attaches the uploaded image and issues a
// remember token, all inside one transaction. The image store step is
// best effort; every database write either commits together or not at
// all.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*CreateUserResult, error) {
	plain := in.Password
	generated := false
	if plain == "" {
		var err error
		plain, err = helpers.RandomPassword(16)
		if err != nil {
			return nil, saveFailed(err)
		}
		generated = true
	}

	hash, err := helpers.HashPassword(plain)
	if err != nil {
		return nil, saveFailed(err)
	}

	u := &entity.User{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Email:              in.Email,
		PasswordHash:       hash,
		Role:               in.Role,
		MustChangePassword: generated,
	}

	err = s.Repo.WithinTx(ctx, func(tx repo.UserRepository) error {
		if err := tx.Insert(ctx, u); err != nil {
			return err
		}

		if in.Image != nil && s.Images != nil {
			url, err := s.Images.Store(ctx, u.ID, in.ImageFilename, in.Image)
			if err != nil {
				s.Logger.WithError(err).WithField("user_id", u.ID).Warn("image store failed, continuing without avatar")
			} else {
				if err := tx.UpdateImage(ctx, u.ID, url); err != nil {
					return err
				}
				u.ImageURL = url
			}
		}

		token, err := helpers.RandomToken(32)
		if err != nil {
			return err
		}
		if err := tx.SetRememberToken(ctx, u.ID, token); err != nil {
			return err
		}
		u.RememberToken = token
		return nil
	})
	if err != nil {
		return nil, saveFailed(err)
	}

	s.indexUser(ctx, u)
	return &CreateUserResult{User: u, PlainPassword: plain, PasswordGenerated: generated}, nil
}

type UpdateUserInput struct {
	Name     string
	Email    string
	Role     string
	Password string // empty means keep the current one

	Image         io.Reader // new upload, replaces the current image
	ImageFilename string
	// ImageRef is the file-picker reference for the existing image. When
	// no new upload and no reference arrive, a previously set image is
	// cleared.
	ImageRef string
}

// UpdateUser applies a partial update. An empty password never
// overwrites the stored hash.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if in.Password != "" {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, saveFailed(err)
		}
		u.PasswordHash = hash
		u.MustChangePassword = false
	}

	if in.Image != nil && s.Images != nil {
		url, err := s.Images.Store(ctx, u.ID, in.ImageFilename, in.Image)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("image store failed, keeping current avatar")
		} else {
			u.ImageURL = url
		}
	} else if in.ImageRef == "" && u.ImageURL != "" {
		u.ImageURL = ""
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, saveFailed(err)
	}

	s.indexUser(ctx, u)
	return u, nil
}

// GetByEmailAndPassword authenticates by email and password, keeping
// user-not-found and wrong-password distinguishable.
func (s *Service) GetByEmailAndPassword(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapNotFound(err)
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidPassword
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return u, nil
}

func (s *Service) GetByRememberToken(ctx context.Context, token string) (*entity.User, error) {
	u, err := s.Repo.GetByRememberToken(ctx, token)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return u, nil
}

// GetByColumns returns the first user matching the given column=value
// pairs. Hidden columns are silently dropped from the filter so secrets
// can never be probed by equality.
func (s *Service) GetByColumns(ctx context.Context, columns map[string]any) (*entity.User, error) {
	filtered := make(map[string]any, len(columns))
	for col, v := range columns {
		if entity.IsHiddenUserColumn(col) {
			continue
		}
		filtered[col] = v
	}
	u, err := s.Repo.FindFirstByColumns(ctx, filtered)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return u, nil
}

// ListUsers returns one page of users ordered by name ascending, with
// an optional case-insensitive search on name and email.
func (s *Service) ListUsers(ctx context.Context, page, perPage int, search string) ([]*entity.User, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	return s.Repo.List(ctx, repo.ListQuery{
		Limit:  perPage,
		Offset: (page - 1) * perPage,
		Search: strings.TrimSpace(search),
	})
}

// EnsureRememberToken issues a remember token if the user has none yet.
func (s *Service) EnsureRememberToken(ctx context.Context, u *entity.User) (string, error) {
	if u.RememberToken != "" {
		return u.RememberToken, nil
	}
	token, err := helpers.RandomToken(32)
	if err != nil {
		return "", err
	}
	if err := s.Repo.SetRememberToken(ctx, u.ID, token); err != nil {
		return "", saveFailed(err)
	}
	u.RememberToken = token
	return token, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrEntityNotFound
	}
	return err
}

// indexUser mirrors the user into Elasticsearch, best effort.
func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"image_url":  u.ImageURL,
		"role":       u.Role,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

// SearchUsers performs a simple multi_match search on email and name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
