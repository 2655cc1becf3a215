package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn          func(context.Context, *models.User) error
	getByIDFn         func(context.Context, uint) (*models.User, error)
	getByEmailFn      func(context.Context, string) (*models.User, error)
	getAllFn          func(context.Context, int, int) ([]models.User, error)
	getByRoleFn       func(context.Context, models.Role, int, int) ([]models.User, error)
	searchFn          func(context.Context, string, int, int) ([]models.User, error)
	updateFn          func(context.Context, *models.User) error
	deleteFn          func(context.Context, uint) error
	countFn           func(context.Context) (int64, error)
	countByRoleFn     func(context.Context, models.Role) (int64, error)
	updateLastLoginFn func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetAll(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.getAllFn(ctx, limit, offset)
}
func (s *userRepoStub) GetByRole(ctx context.Context, role models.Role, limit, offset int) ([]models.User, error) {
	return s.getByRoleFn(ctx, role, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *userRepoStub) CountByRole(ctx context.Context, role models.Role) (int64, error) {
	return s.countByRoleFn(ctx, role)
}
func (s *userRepoStub) UpdateLastLogin(ctx context.Context, id uint) error {
	return s.updateLastLoginFn(ctx, id)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.User, error) { return nil, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getAllFn:     func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		getByRoleFn: func(_ context.Context, _ models.Role, _, _ int) ([]models.User, error) {
			return nil, nil
		},
		searchFn:          func(_ context.Context, _ string, _, _ int) ([]models.User, error) { return nil, nil },
		updateFn:          func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
		countFn:           func(_ context.Context) (int64, error) { return 0, nil },
		countByRoleFn:     func(_ context.Context, _ models.Role) (int64, error) { return 0, nil },
		updateLastLoginFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoWith serves the given users by ID.
func userRepoWith(users ...*models.User) *userRepoStub {
	stub := noopUserRepo()
	stub.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		for _, u := range users {
			if u.ID == id {
				return u, nil
			}
		}
		return nil, nil
	}
	stub.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		for _, u := range users {
			if u.Email == email {
				return u, nil
			}
		}
		return nil, nil
	}
	return stub
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn               func(context.Context, *models.Post) error
	getByIDFn              func(context.Context, uint) (*models.Post, error)
	getBySlugFn            func(context.Context, string) (*models.Post, error)
	getAllFn               func(context.Context, int, int) ([]*models.Post, error)
	getByStatusFn          func(context.Context, models.PostStatus, int, int) ([]*models.Post, error)
	getByUserFn            func(context.Context, uint, int, int) ([]*models.Post, error)
	getByTagFn             func(context.Context, string, models.PostStatus, int, int) ([]*models.Post, error)
	searchFn               func(context.Context, string, int, int) ([]*models.Post, error)
	updateFn               func(context.Context, *models.Post) error
	deleteFn               func(context.Context, uint) error
	countFn                func(context.Context) (int64, error)
	countByStatusFn        func(context.Context, models.PostStatus) (int64, error)
	countByUserFn          func(context.Context, uint) (int64, error)
	countByUserAndStatusFn func(context.Context, uint, models.PostStatus) (int64, error)
	incrementViewCountFn   func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) GetAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.getAllFn(ctx, limit, offset)
}
func (s *postRepoStub) GetByStatus(ctx context.Context, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	return s.getByStatusFn(ctx, status, limit, offset)
}
func (s *postRepoStub) GetByUser(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.getByUserFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) GetByTag(ctx context.Context, tag string, status models.PostStatus, limit, offset int) ([]*models.Post, error) {
	return s.getByTagFn(ctx, tag, status, limit, offset)
}
func (s *postRepoStub) Search(ctx context.Context, query string, limit, offset int) ([]*models.Post, error) {
	return s.searchFn(ctx, query, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *postRepoStub) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	return s.countByStatusFn(ctx, status)
}
func (s *postRepoStub) CountByUser(ctx context.Context, userID uint) (int64, error) {
	return s.countByUserFn(ctx, userID)
}
func (s *postRepoStub) CountByUserAndStatus(ctx context.Context, userID uint, status models.PostStatus) (int64, error) {
	return s.countByUserAndStatusFn(ctx, userID, status)
}
func (s *postRepoStub) IncrementViewCount(ctx context.Context, id uint) error {
	return s.incrementViewCountFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:    func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:   func(_ context.Context, _ uint) (*models.Post, error) { return nil, nil },
		getBySlugFn: func(_ context.Context, _ string) (*models.Post, error) { return nil, nil },
		getAllFn:    func(_ context.Context, _, _ int) ([]*models.Post, error) { return nil, nil },
		getByStatusFn: func(_ context.Context, _ models.PostStatus, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		getByUserFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		getByTagFn: func(_ context.Context, _ string, _ models.PostStatus, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		searchFn:        func(_ context.Context, _ string, _, _ int) ([]*models.Post, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		countFn:         func(_ context.Context) (int64, error) { return 0, nil },
		countByStatusFn: func(_ context.Context, _ models.PostStatus) (int64, error) { return 0, nil },
		countByUserFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		countByUserAndStatusFn: func(_ context.Context, _ uint, _ models.PostStatus) (int64, error) {
			return 0, nil
		},
		incrementViewCountFn: func(_ context.Context, _ uint) error { return nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertPermissionError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodePermission)
}

func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeConflict)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}
