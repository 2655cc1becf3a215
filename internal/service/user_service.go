// Package service implements the domain logic for users and posts.
// Services own validation, authorization and lifecycle rules; persistence
// is delegated to the repository collaborators.
package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/security"
	"inkwell/internal/validation"
)

// dummyHash is compared against when authentication targets an unknown
// email, so the work done is the same for every failure cause.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// errUserAbsent signals a missing user out of a cache fetch callback so the
// absence is not written to the cache.
var errUserAbsent = errors.New("user absent")

type UserService struct {
	userRepo repository.UserRepository
}

// CreateUserInput carries the fields accepted at registration.
type CreateUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Password  string
	Role      models.Role
}

// UpdateUserInput is a patch; nil fields are left untouched.
type UpdateUserInput struct {
	Email      *string
	FirstName  *string
	LastName   *string
	Role       *models.Role
	IsActive   *bool
	IsVerified *bool
}

// NewUserService returns a UserService backed by the given repository.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// CreateUser registers a new account. The password is validated against the
// strength policy and stored only as a bcrypt hash.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateName(in.FirstName); err != nil {
		return nil, models.NewValidationError("first name: " + err.Error())
	}
	if err := validation.ValidateName(in.LastName); err != nil {
		return nil, models.NewValidationError("last name: " + err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User with this email already exists")
	}

	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Invalid role")
	}

	hashed, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:          in.Email,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Role:           role,
		IsActive:       true,
		HashedPassword: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user on a successful email/password match
// against an active account, and (nil, nil) on any failure. Unknown email,
// wrong password and inactive account are deliberately indistinguishable
// to the caller to prevent account enumeration.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		// Burn the same bcrypt work as the known-email path.
		security.CheckPassword(password, dummyHash)
		observability.AuthFailures.Inc()
		return nil, nil
	}

	if !security.CheckPassword(password, user.HashedPassword) || !user.IsActive {
		observability.AuthFailures.Inc()
		return nil, nil
	}

	return user, nil
}

// RecordLogin stamps the user's last-login timestamp.
func (s *UserService) RecordLogin(ctx context.Context, userID uint) error {
	return s.userRepo.UpdateLastLogin(ctx, userID)
}

// ChangePassword verifies the current password before setting a new one.
// A wrong current password or an absent user returns (false, nil), not an
// error; a weak new password is a ValidationError.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, newPassword string) (bool, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if user == nil || !security.CheckPassword(current, user.HashedPassword) {
		return false, nil
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return false, models.NewValidationError(err.Error())
	}

	hashed, err := security.HashPassword(newPassword)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	user.HashedPassword = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// Deactivate disables an account. Admin-only.
func (s *UserService) Deactivate(ctx context.Context, userID, byAdminID uint) error {
	actor, err := s.userRepo.GetByID(ctx, byAdminID)
	if err != nil {
		return err
	}
	if actor == nil || !actor.IsAdmin() {
		return models.NewPermissionError("Only admins can deactivate users")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", userID)
	}

	user.IsActive = false
	return s.userRepo.Update(ctx, user)
}

// VerifyAccount marks the account verified. Idempotent.
func (s *UserService) VerifyAccount(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", userID)
	}
	if user.IsVerified {
		return nil
	}
	user.IsVerified = true
	return s.userRepo.Update(ctx, user)
}

// GetUser fetches a user for viewing. The requester sees the full record
// only for their own profile or when they are an admin; everyone else gets
// the public projection. An absent target is (nil, nil).
func (s *UserService) GetUser(ctx context.Context, targetID, requesterID uint) (*models.User, error) {
	if targetID == requesterID {
		return s.userRepo.GetByID(ctx, targetID)
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester != nil && requester.IsAdmin() {
		return s.userRepo.GetByID(ctx, targetID)
	}

	// Strangers and anonymous callers only ever see the public projection,
	// so it can be served from the cache.
	var pub models.User
	err = cache.Aside(ctx, cache.UserKey(targetID), &pub, cache.UserTTL, func() error {
		user, err := s.userRepo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if user == nil {
			return errUserAbsent
		}
		pub = *user.PublicProfile()
		return nil
	})
	if errors.Is(err, errUserAbsent) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pub, nil
}

// ListUsers returns all users. Admin-only.
func (s *UserService) ListUsers(ctx context.Context, requesterID uint, limit, offset int) ([]models.User, error) {
	if err := s.requireAdmin(ctx, requesterID, "Only admins can view all users"); err != nil {
		return nil, err
	}
	return s.userRepo.GetAll(ctx, limit, offset)
}

// GetUsersByRole returns users holding a role. Moderator-only.
func (s *UserService) GetUsersByRole(ctx context.Context, role models.Role, requesterID uint, limit, offset int) ([]models.User, error) {
	if err := s.requireModerator(ctx, requesterID, "Only moderators and admins can view users by role"); err != nil {
		return nil, err
	}
	if !models.ValidRole(role) {
		return nil, models.NewValidationError("Invalid role")
	}
	return s.userRepo.GetByRole(ctx, role, limit, offset)
}

// SearchUsers matches users by email or name. Moderator-only.
func (s *UserService) SearchUsers(ctx context.Context, query string, requesterID uint, limit, offset int) ([]models.User, error) {
	if err := s.requireModerator(ctx, requesterID, "Only moderators and admins can search users"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, models.NewValidationError("Search query cannot be empty")
	}
	return s.userRepo.Search(ctx, query, limit, offset)
}

// UpdateUser applies a profile patch. Users may update their own profile;
// admins may update anyone. Role and active-status changes are admin-only.
func (s *UserService) UpdateUser(ctx context.Context, targetID uint, patch UpdateUserInput, requesterID uint) (*models.User, error) {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, models.NewPermissionError("Requester not found")
	}

	if targetID != requesterID && !requester.IsAdmin() {
		return nil, models.NewPermissionError("Users can only update their own profile")
	}
	if patch.Role != nil && !requester.IsAdmin() {
		return nil, models.NewPermissionError("Only admins can change user roles")
	}
	if patch.IsActive != nil && !requester.IsAdmin() {
		return nil, models.NewPermissionError("Only admins can change user active status")
	}
	if patch.IsVerified != nil && !requester.IsAdmin() {
		return nil, models.NewPermissionError("Only admins can change verification status")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", targetID)
	}

	if patch.Email != nil {
		if err := validation.ValidateEmail(*patch.Email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = *patch.Email
	}
	if patch.FirstName != nil {
		if err := validation.ValidateName(*patch.FirstName); err != nil {
			return nil, models.NewValidationError("first name: " + err.Error())
		}
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		if err := validation.ValidateName(*patch.LastName); err != nil {
			return nil, models.NewValidationError("last name: " + err.Error())
		}
		user.LastName = *patch.LastName
	}
	if patch.Role != nil {
		if !models.ValidRole(*patch.Role) {
			return nil, models.NewValidationError("Invalid role")
		}
		user.Role = *patch.Role
	}
	if patch.IsActive != nil {
		user.IsActive = *patch.IsActive
	}
	if patch.IsVerified != nil {
		user.IsVerified = *patch.IsVerified
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. Admin-only, and admins cannot delete
// themselves.
func (s *UserService) DeleteUser(ctx context.Context, targetID, requesterID uint) error {
	if err := s.requireAdmin(ctx, requesterID, "Only admins can delete users"); err != nil {
		return err
	}
	if targetID == requesterID {
		return models.NewValidationError("Admins cannot delete their own account")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user == nil {
		return models.NewNotFoundError("User", targetID)
	}
	return s.userRepo.Delete(ctx, targetID)
}

// UserStatistics returns total and per-role user counts. Admin-only.
func (s *UserService) UserStatistics(ctx context.Context, requesterID uint) (map[string]int64, error) {
	if err := s.requireAdmin(ctx, requesterID, "Only admins can view user statistics"); err != nil {
		return nil, err
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	stats := map[string]int64{"total_users": total}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleModerator, models.RoleUser} {
		count, err := s.userRepo.CountByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		stats[string(role)+"_count"] = count
	}
	return stats, nil
}

func (s *UserService) requireAdmin(ctx context.Context, requesterID uint, msg string) error {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if requester == nil || !requester.IsAdmin() {
		return models.NewPermissionError(msg)
	}
	return nil
}

func (s *UserService) requireModerator(ctx context.Context, requesterID uint, msg string) error {
	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if requester == nil || !requester.IsModerator() {
		return models.NewPermissionError(msg)
	}
	return nil
}
