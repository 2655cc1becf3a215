package service

import (
	"context"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/security"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hashed, err := security.HashPassword(password)
	require.NoError(t, err)
	return hashed
}

func TestUserService_CreateUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates user with hashed password and default role", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		repo := noopUserRepo()
		repo.createFn = func(_ context.Context, u *models.User) error {
			created = u
			return nil
		}
		svc := NewUserService(repo)

		user, err := svc.CreateUser(ctx, CreateUserInput{
			Email:     "jane@example.com",
			FirstName: "Jane",
			LastName:  "Doe",
			Password:  "TestPassword123",
		})
		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "TestPassword123", user.HashedPassword)
		assert.True(t, security.CheckPassword("TestPassword123", user.HashedPassword))
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Email: "not-an-email", FirstName: "A", LastName: "B", Password: "TestPassword123",
		})
		assertValidationError(t, err)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		t.Parallel()
		repo := userRepoWith(&models.User{ID: 1, Email: "jane@example.com"})
		svc := NewUserService(repo)
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", Password: "TestPassword123",
		})
		assertConflictError(t, err)
	})

	t.Run("rejects weak password", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		for _, password := range []string{"short1A", "alllowercase1", "ALLUPPERCASE1", "NoDigitsHere"} {
			_, err := svc.CreateUser(ctx, CreateUserInput{
				Email: "jane@example.com", FirstName: "Jane", LastName: "Doe", Password: password,
			})
			assertValidationError(t, err)
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		_, err := svc.CreateUser(ctx, CreateUserInput{
			Email: "jane@example.com", FirstName: "Jane", LastName: "Doe",
			Password: "TestPassword123", Role: "superuser",
		})
		assertValidationError(t, err)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	hash := hashFor(t, "TestPassword123")

	active := &models.User{ID: 1, Email: "jane@example.com", IsActive: true, HashedPassword: hash}
	inactive := &models.User{ID: 2, Email: "gone@example.com", IsActive: false, HashedPassword: hash}

	svc := NewUserService(userRepoWith(active, inactive))

	t.Run("succeeds for active user with correct password", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "jane@example.com", "TestPassword123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, uint(1), user.ID)
	})

	t.Run("unknown email yields nil without error", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "nobody@example.com", "TestPassword123")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("wrong password yields nil without error", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "jane@example.com", "WrongPassword123")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("inactive account yields nil without error", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "gone@example.com", "TestPassword123")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("changes password when current matches", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: 1, HashedPassword: hashFor(t, "OldPassword123")}
		repo := userRepoWith(user)
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)

		changed, err := svc.ChangePassword(ctx, 1, "OldPassword123", "NewPassword456")
		require.NoError(t, err)
		assert.True(t, changed)
		require.NotNil(t, saved)
		assert.True(t, security.CheckPassword("NewPassword456", saved.HashedPassword))
	})

	t.Run("wrong current password returns false", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: 1, HashedPassword: hashFor(t, "OldPassword123")}
		svc := NewUserService(userRepoWith(user))

		changed, err := svc.ChangePassword(ctx, 1, "Mistaken999", "NewPassword456")
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("absent user returns false", func(t *testing.T) {
		t.Parallel()
		svc := NewUserService(noopUserRepo())
		changed, err := svc.ChangePassword(ctx, 42, "whatever", "NewPassword456")
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("weak new password is a validation error", func(t *testing.T) {
		t.Parallel()
		user := &models.User{ID: 1, HashedPassword: hashFor(t, "OldPassword123")}
		svc := NewUserService(userRepoWith(user))

		_, err := svc.ChangePassword(ctx, 1, "OldPassword123", "weak")
		assertValidationError(t, err)
	})
}

func TestUserService_Deactivate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := &models.User{ID: 1, Role: models.RoleAdmin, IsActive: true}
	mod := &models.User{ID: 2, Role: models.RoleModerator, IsActive: true}
	target := &models.User{ID: 3, Role: models.RoleUser, IsActive: true}

	t.Run("admin can deactivate", func(t *testing.T) {
		repo := userRepoWith(admin, mod, target)
		var saved *models.User
		repo.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := NewUserService(repo)

		require.NoError(t, svc.Deactivate(ctx, 3, 1))
		require.NotNil(t, saved)
		assert.False(t, saved.IsActive)
	})

	t.Run("moderator cannot deactivate", func(t *testing.T) {
		svc := NewUserService(userRepoWith(admin, mod, target))
		assertPermissionError(t, svc.Deactivate(ctx, 3, 2))
	})

	t.Run("absent target is not found", func(t *testing.T) {
		svc := NewUserService(userRepoWith(admin))
		assertNotFoundError(t, svc.Deactivate(ctx, 99, 1))
	})
}

func TestUserService_VerifyAccount_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	user := &models.User{ID: 1, IsVerified: true}
	repo := userRepoWith(user)
	updates := 0
	repo.updateFn = func(_ context.Context, _ *models.User) error {
		updates++
		return nil
	}
	svc := NewUserService(repo)

	require.NoError(t, svc.VerifyAccount(ctx, 1))
	assert.Zero(t, updates, "already verified account should not be re-saved")
}

func TestUserService_GetUser_Projection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := &models.User{ID: 1, Role: models.RoleAdmin, Email: "admin@example.com"}
	viewer := &models.User{ID: 2, Role: models.RoleUser, Email: "viewer@example.com"}
	target := &models.User{ID: 3, Role: models.RoleUser, Email: "target@example.com"}

	svc := NewUserService(userRepoWith(admin, viewer, target))

	t.Run("self sees full record", func(t *testing.T) {
		user, err := svc.GetUser(ctx, 3, 3)
		require.NoError(t, err)
		assert.Equal(t, "target@example.com", user.Email)
	})

	t.Run("admin sees full record", func(t *testing.T) {
		user, err := svc.GetUser(ctx, 3, 1)
		require.NoError(t, err)
		assert.Equal(t, "target@example.com", user.Email)
	})

	t.Run("other users get the public projection", func(t *testing.T) {
		user, err := svc.GetUser(ctx, 3, 2)
		require.NoError(t, err)
		assert.Empty(t, user.Email)
	})

	t.Run("absent user is nil without error", func(t *testing.T) {
		user, err := svc.GetUser(ctx, 99, 1)
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// Shares the process-wide cache client, so no t.Parallel.
func TestUserService_GetUser_PublicProfileCached(t *testing.T) {
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	ctx := context.Background()

	target := &models.User{ID: 3, Role: models.RoleUser, Email: "target@example.com", FirstName: "Tess"}
	targetLookups := 0
	repo := noopUserRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == target.ID {
			targetLookups++
			return target, nil
		}
		return nil, nil
	}
	svc := NewUserService(repo)

	user, err := svc.GetUser(ctx, 3, 0)
	require.NoError(t, err)
	assert.Empty(t, user.Email)
	assert.Equal(t, "Tess", user.FirstName)
	assert.Equal(t, 1, targetLookups)
	assert.True(t, mr.Exists(cache.UserKey(3)))

	// A second anonymous read is served from the cache.
	user, err = svc.GetUser(ctx, 3, 0)
	require.NoError(t, err)
	assert.Empty(t, user.Email)
	assert.Equal(t, "Tess", user.FirstName)
	assert.Equal(t, 1, targetLookups)

	// Absent users are not cached.
	user, err = svc.GetUser(ctx, 99, 0)
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, mr.Exists(cache.UserKey(99)))

	// Self reads bypass the cache and see the full record.
	user, err = svc.GetUser(ctx, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, "target@example.com", user.Email)
}

func TestUserService_UpdateUser_RoleGates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	user := &models.User{ID: 2, Role: models.RoleUser, Email: "u@example.com"}

	t.Run("user cannot change own role", func(t *testing.T) {
		svc := NewUserService(userRepoWith(admin, user))
		role := models.RoleAdmin
		_, err := svc.UpdateUser(ctx, 2, UpdateUserInput{Role: &role}, 2)
		assertPermissionError(t, err)
	})

	t.Run("user cannot update someone else", func(t *testing.T) {
		svc := NewUserService(userRepoWith(admin, user))
		name := "Eve"
		_, err := svc.UpdateUser(ctx, 1, UpdateUserInput{FirstName: &name}, 2)
		assertPermissionError(t, err)
	})

	t.Run("admin can change role", func(t *testing.T) {
		repo := userRepoWith(admin, user)
		repo.updateFn = func(_ context.Context, _ *models.User) error { return nil }
		svc := NewUserService(repo)
		role := models.RoleModerator
		updated, err := svc.UpdateUser(ctx, 2, UpdateUserInput{Role: &role}, 1)
		require.NoError(t, err)
		assert.Equal(t, models.RoleModerator, updated.Role)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	other := &models.User{ID: 2, Role: models.RoleUser}

	t.Run("admin cannot delete self", func(t *testing.T) {
		svc := NewUserService(userRepoWith(admin, other))
		assertValidationError(t, svc.DeleteUser(ctx, 1, 1))
	})

	t.Run("non-admin cannot delete", func(t *testing.T) {
		svc := NewUserService(userRepoWith(admin, other))
		assertPermissionError(t, svc.DeleteUser(ctx, 1, 2))
	})

	t.Run("admin deletes another user", func(t *testing.T) {
		repo := userRepoWith(admin, other)
		deleted := uint(0)
		repo.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		svc := NewUserService(repo)
		require.NoError(t, svc.DeleteUser(ctx, 2, 1))
		assert.Equal(t, uint(2), deleted)
	})
}

func TestUserService_UserStatistics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	repo := userRepoWith(admin)
	repo.countFn = func(_ context.Context) (int64, error) { return 10, nil }
	repo.countByRoleFn = func(_ context.Context, role models.Role) (int64, error) {
		switch role {
		case models.RoleAdmin:
			return 1, nil
		case models.RoleModerator:
			return 2, nil
		default:
			return 7, nil
		}
	}
	svc := NewUserService(repo)

	stats, err := svc.UserStatistics(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats["total_users"])
	assert.Equal(t, int64(1), stats["admin_count"])
	assert.Equal(t, int64(2), stats["moderator_count"])
	assert.Equal(t, int64(7), stats["user_count"])

	_, err = svc.UserStatistics(ctx, 99)
	assertPermissionError(t, err)
}
