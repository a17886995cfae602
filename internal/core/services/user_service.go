package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/google/uuid"
)

// userService implements the UserSvcFacade interface
type userService struct {
	BaseService
	repo portsrepo.DocumentRepository[domain.User]
	crud *CrudService[domain.User, *domain.User]
}

// NewUserService creates a new user service with the provided dependencies
func NewUserService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.UserSvcFacade {
	base := newBaseService(options...)
	return &userService{
		BaseService: base,
		repo:        repos.UserRepo,
		crud: NewCrudService[domain.User](repos.UserRepo, rules.NewUserRules(repos, base.Now), domain.CollectionUsers,
			CrudPolicy{Read: domain.RoleAdmin, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, options...),
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	users, err := s.repo.Find(ctx, portsrepo.Query{Limit: 1}.Where("email", portsrepo.OpEqual, email))
	if err != nil {
		s.LogError(ctx, err, "Failed to find user by email")
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	return &users[0], nil
}

// RegisterClient creates a client login account
func (s *userService) RegisterClient(ctx context.Context, req dto.RegisterClientRequest) (*domain.User, error) {
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to process password", err)
	}
	userID := uuid.NewString()
	user := domain.User{
		Document:     domain.Document{ID: userID},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		IsActive:     true,
	}
	return s.crud.Insert(ctx, "", userID, &user)
}

// UpdateUser updates the caller's own name or password
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	if userID != requestingUserID {
		return nil, fmt.Errorf("%w: users can only update their own account", apperrors.ErrForbidden)
	}
	var hash string
	if req.Password != nil {
		var err error
		if hash, err = utils.HashPassword(*req.Password); err != nil {
			s.LogError(ctx, err, "Failed to hash password", slog.String("user_id", userID))
			return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to process password", err)
		}
	}
	return s.save(ctx, userID, requestingUserID, func(u *domain.User) error {
		if req.Name != nil {
			u.Name = *req.Name
		}
		if hash != "" {
			u.PasswordHash = hash
		}
		return nil
	})
}

// UpdateRefreshToken stores the hash and expiry of the user's current refresh token
func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	_, err := s.save(ctx, userID, userID, func(u *domain.User) error {
		u.RefreshTokenHash = refreshTokenHash
		expiry := refreshTokenExpiryTime.UTC()
		u.RefreshTokenExpiryTime = &expiry
		return nil
	})
	return err
}

// ClearRefreshToken forgets the user's refresh token
func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	_, err := s.save(ctx, userID, userID, func(u *domain.User) error {
		u.RefreshTokenHash = ""
		u.RefreshTokenExpiryTime = nil
		return nil
	})
	return err
}

// CreateStaffAccount creates the login of an admin or employee profile
func (s *userService) CreateStaffAccount(ctx context.Context, user *domain.User, password, actorUserID string) (*domain.User, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to process password", err)
	}
	user.PasswordHash = hash
	return s.crud.Insert(ctx, user.EstablishmentID, actorUserID, user)
}

// RemoveAccount deletes a login account; a missing account is not an error
func (s *userService) RemoveAccount(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to remove user account", slog.String("user_id", userID))
		return err
	}
	return nil
}

// AuthenticateUser checks email and password and records the login time
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, err
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogDebug(ctx, "Password mismatch", slog.String("user_id", user.ID))
		return nil, fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", apperrors.ErrUnauthorized)
	}
	return s.touchLogin(ctx, user), nil
}

// FindOrCreateGoogleUser signs in with a verified Google identity. An existing account
// with the same email gets the Google subject linked; otherwise a client account is created.
func (s *userService) FindOrCreateGoogleUser(ctx context.Context, info *domain.GoogleUserInfo) (*domain.User, error) {
	if info == nil || info.Subject == "" {
		return nil, fmt.Errorf("%w: missing google identity", apperrors.ErrUnauthorized)
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("%w: google email is not verified", apperrors.ErrUnauthorized)
	}

	linked, err := s.repo.Find(ctx, portsrepo.Query{Limit: 1}.Where("googleSub", portsrepo.OpEqual, info.Subject))
	if err != nil {
		s.LogError(ctx, err, "Failed to find user by google subject")
		return nil, err
	}
	if len(linked) > 0 {
		return s.googleLogin(ctx, &linked[0])
	}

	user, err := s.GetUserByEmail(ctx, info.Email)
	switch {
	case err == nil:
		if user.GoogleSub != "" {
			return nil, fmt.Errorf("%w: email is linked to another google account", apperrors.ErrUnauthorized)
		}
		user, err = s.save(ctx, user.ID, user.ID, func(u *domain.User) error {
			u.GoogleSub = info.Subject
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "Google account linked", slog.String("user_id", user.ID))
		return s.googleLogin(ctx, user)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	name := strings.TrimSpace(info.Name)
	if name == "" {
		name = info.Email
	}
	userID := uuid.NewString()
	created := domain.User{
		Document:  domain.Document{ID: userID},
		Email:     info.Email,
		Name:      name,
		Role:      domain.RoleClient,
		GoogleSub: info.Subject,
		IsActive:  true,
	}
	if _, err := s.crud.Insert(ctx, "", userID, &created); err != nil {
		return nil, err
	}
	return s.googleLogin(ctx, &created)
}

func (s *userService) googleLogin(ctx context.Context, user *domain.User) (*domain.User, error) {
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is disabled", apperrors.ErrUnauthorized)
	}
	return s.touchLogin(ctx, user), nil
}

// touchLogin records the login time. Failing to record it does not fail the login.
func (s *userService) touchLogin(ctx context.Context, user *domain.User) *domain.User {
	updated, err := s.save(ctx, user.ID, user.ID, func(u *domain.User) error {
		now := s.Now()
		u.LastLoginAt = &now
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record login time", slog.String("user_id", user.ID))
		return user
	}
	return updated
}

// save applies mutate to the stored user and runs the user rules.
func (s *userService) save(ctx context.Context, userID, actorUserID string, mutate func(*domain.User) error) (*domain.User, error) {
	current, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	next, err := s.crud.PrepareUpdate(ctx, current, actorUserID, mutate)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, next); err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		}
		return nil, err
	}
	return next, nil
}
