package application

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rakapratama/go-admin-backend/internal/domain/entity"
	"github.com/rakapratama/go-admin-backend/internal/domain/repository"
)

// fakeUserRepo is an in-memory UserRepository. WithinTx snapshots the
// store and restores it when fn fails, mirroring a rollback.
type fakeUserRepo struct {
	users map[string]*entity.User

	failInsert error
	failToken  error
	failUpdate error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) snapshot() map[string]*entity.User {
	out := make(map[string]*entity.User, len(f.users))
	for id, u := range f.users {
		cp := *u
		out[id] = &cp
	}
	return out
}

func (f *fakeUserRepo) WithinTx(_ context.Context, fn func(tx repository.UserRepository) error) error {
	before := f.snapshot()
	if err := fn(f); err != nil {
		f.users = before
		return err
	}
	return nil
}

func (f *fakeUserRepo) Insert(_ context.Context, u *entity.User) error {
	if f.failInsert != nil {
		return f.failInsert
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if _, ok := f.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateImage(_ context.Context, id, imageURL string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.ImageURL = imageURL
	return nil
}

func (f *fakeUserRepo) SetRememberToken(_ context.Context, id, token string) error {
	if f.failToken != nil {
		return f.failToken
	}
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.RememberToken = token
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	if u, ok := f.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByRememberToken(_ context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	for _, u := range f.users {
		if u.RememberToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) FindFirstByColumns(_ context.Context, columns map[string]any) (*entity.User, error) {
	if len(columns) == 0 {
		return nil, repository.ErrNotFound
	}
	var matches []*entity.User
	for _, u := range f.users {
		if matchesColumns(u, columns) {
			matches = append(matches, u)
		}
	}
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	cp := *matches[0]
	return &cp, nil
}

func matchesColumns(u *entity.User, columns map[string]any) bool {
	for col, v := range columns {
		switch col {
		case "id":
			if u.ID != v {
				return false
			}
		case "email":
			if u.Email != v {
				return false
			}
		case "name":
			if u.Name != v {
				return false
			}
		case "role":
			if u.Role != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (f *fakeUserRepo) List(_ context.Context, q repository.ListQuery) ([]*entity.User, int, error) {
	var all []*entity.User
	for _, u := range f.users {
		if u.MatchesSearch(q.Search) {
			cp := *u
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if q.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[q.Offset:]
	if q.Limit > 0 && q.Limit < len(all) {
		all = all[:q.Limit]
	}
	return all, total, nil
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeImageStore records uploads and can be told to fail.
type fakeImageStore struct {
	stored int
	err    error
}

func (f *fakeImageStore) Store(_ context.Context, userID, filename string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, _ = io.Copy(io.Discard, r)
	f.stored++
	return "https://storage.googleapis.com/test-bucket/avatars/" + userID + "/" + filename, nil
}

// fakeRoleRepo is an in-memory RoleRepository.
type fakeRoleRepo struct {
	roles map[string]*entity.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{roles: make(map[string]*entity.Role)}
}

func (f *fakeRoleRepo) Insert(_ context.Context, r *entity.Role) error {
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) Update(_ context.Context, r *entity.Role) error {
	if _, ok := f.roles[r.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id string) (*entity.Role, error) {
	if r, ok := f.roles[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRoleRepo) GetBySlug(_ context.Context, slug string) (*entity.Role, error) {
	for _, r := range f.roles {
		if r.Slug == slug {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	out := make([]*entity.Role, 0, len(f.roles))
	for _, r := range f.roles {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (f *fakeRoleRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	for _, r := range f.roles {
		if r.Slug == slug && r.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.RoleRepository = (*fakeRoleRepo)(nil)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func stringsReader(s string) io.Reader {
	return strings.NewReader(s)
}
