package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/google/uuid"
)

// establishmentService implements the EstablishmentSvcFacade interface. It is also the
// authorizer every other service resolves memberships through.
type establishmentService struct {
	BaseService
	repos  portsrepo.RepositoryProvider
	crud   *CrudService[domain.Establishment, *domain.Establishment]
	users  *CrudService[domain.User, *domain.User]
	admins *CrudService[domain.Admin, *domain.Admin]
}

// NewEstablishmentService creates a new establishment service with the provided dependencies
func NewEstablishmentService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.EstablishmentSvcFacade {
	s := &establishmentService{
		BaseService: newBaseService(options...),
		repos:       repos,
	}
	s.EstablishmentAuthorizer = s
	opts := []BaseOption{WithEstablishmentAuthorizer(s), WithClock(s.Now)}

	s.crud = NewCrudService[domain.Establishment](repos.EstablishmentRepo, rules.NewEstablishmentRules(repos, s.Now),
		domain.CollectionEstablishments, CrudPolicy{Read: domain.RoleClient, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, opts...)
	s.users = NewCrudService[domain.User](repos.UserRepo, rules.NewUserRules(repos, s.Now),
		domain.CollectionUsers, CrudPolicy{Read: domain.RoleAdmin, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, opts...)
	s.admins = NewCrudService[domain.Admin](repos.AdminRepo, rules.NewAdminRules(repos, s.Now),
		domain.CollectionAdmins, CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, opts...)
	return s
}

// Ensure establishmentService implements the EstablishmentSvcFacade interface
var _ portssvc.EstablishmentSvcFacade = (*establishmentService)(nil)

// GetEstablishment retrieves an establishment the user belongs to
func (s *establishmentService) GetEstablishment(ctx context.Context, establishmentID, requestingUserID string) (*domain.Establishment, error) {
	return s.crud.Get(ctx, establishmentID, establishmentID, requestingUserID)
}

// ListUserEstablishments lists the establishment a staff user works at plus every
// establishment the user holds a client profile in.
func (s *establishmentService) ListUserEstablishments(ctx context.Context, userID string) ([]domain.Establishment, error) {
	user, err := s.repos.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []domain.Establishment{}, nil
		}
		s.LogError(ctx, err, "Failed to load user for establishment listing", slog.String("user_id", userID))
		return nil, err
	}

	ids := make(map[string]bool)
	if user.EstablishmentID != "" {
		ids[user.EstablishmentID] = true
	}
	profiles, err := s.repos.ClientRepo.Find(ctx, portsrepo.Query{}.Where("userID", portsrepo.OpEqual, userID))
	if err != nil {
		s.LogError(ctx, err, "Failed to list client profiles of user", slog.String("user_id", userID))
		return nil, err
	}
	for _, p := range profiles {
		if p.IsActive {
			ids[p.EstablishmentID] = true
		}
	}

	establishments := make([]domain.Establishment, 0, len(ids))
	for id := range ids {
		est, err := s.repos.EstablishmentRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		establishments = append(establishments, *est)
	}
	sort.Slice(establishments, func(i, j int) bool {
		if establishments[i].Name != establishments[j].Name {
			return establishments[i].Name < establishments[j].Name
		}
		return establishments[i].ID < establishments[j].ID
	})

	s.LogDebug(ctx, "Establishments listed successfully",
		slog.Int("count", len(establishments)),
		slog.String("user_id", userID))
	return establishments, nil
}

// GetUsage returns the plan limits next to the current usage
func (s *establishmentService) GetUsage(ctx context.Context, establishmentID, requestingUserID string) (*domain.UsageReport, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	est, err := s.crud.Load(ctx, establishmentID, establishmentID)
	if err != nil {
		return nil, err
	}
	limits, err := domain.LimitsFor(est.Plan)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusInternalServerError, "establishment has an unknown plan", err)
	}
	usage, err := rules.MeasureUsage(ctx, s.repos, est, s.Now)
	if err != nil {
		s.LogError(ctx, err, "Failed to measure usage", slog.String("establishment_id", establishmentID))
		return nil, err
	}
	return &domain.UsageReport{EstablishmentID: est.ID, Plan: est.Plan, Limits: limits, Usage: usage}, nil
}

// RegisterEstablishment creates the establishment, its first admin login and the matching
// admin profile. Steps that already succeeded are undone when a later one fails.
func (s *establishmentService) RegisterEstablishment(ctx context.Context, req dto.RegisterEstablishmentRequest) (*domain.Establishment, *domain.User, error) {
	establishmentID := uuid.NewString()
	userID := uuid.NewString()
	adminID := uuid.NewString()

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		s.LogError(ctx, err, "Failed to hash password")
		return nil, nil, apperrors.NewAppError(http.StatusInternalServerError, "failed to process password", err)
	}

	est := req.Establishment.ToDomain()
	est.ID = establishmentID
	est.OwnerUserID = userID
	if _, err := s.crud.Insert(ctx, establishmentID, userID, &est); err != nil {
		return nil, nil, err
	}

	user := domain.User{
		Document:     domain.Document{ID: userID},
		Email:        req.Email,
		Name:         req.AdminName,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		ProfileID:    adminID,
		IsActive:     true,
	}
	if _, err := s.users.Insert(ctx, establishmentID, userID, &user); err != nil {
		s.undo(ctx, s.repos.EstablishmentRepo.Delete, establishmentID)
		return nil, nil, err
	}

	admin := domain.Admin{
		Document: domain.Document{ID: adminID},
		UserID:   userID,
		Name:     req.AdminName,
		Email:    req.Email,
		Phone:    req.AdminPhone,
		IsActive: true,
	}
	if _, err := s.admins.Insert(ctx, establishmentID, userID, &admin); err != nil {
		s.undo(ctx, s.repos.UserRepo.Delete, userID)
		s.undo(ctx, s.repos.EstablishmentRepo.Delete, establishmentID)
		return nil, nil, err
	}

	s.LogInfo(ctx, "Establishment registered successfully",
		slog.String("establishment_id", establishmentID),
		slog.String("owner_user_id", userID))
	return &est, &user, nil
}

func (s *establishmentService) undo(ctx context.Context, del func(context.Context, string) error, id string) {
	if err := del(ctx, id); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to roll back registration step", slog.String("id", id))
	}
}

// UpdateEstablishment updates an establishment
func (s *establishmentService) UpdateEstablishment(ctx context.Context, establishmentID string, req dto.UpdateEstablishmentRequest, requestingUserID string) (*domain.Establishment, error) {
	return s.crud.Update(ctx, establishmentID, establishmentID, requestingUserID, func(e *domain.Establishment) error {
		req.Apply(e)
		return nil
	})
}

// AuthorizeUserAction checks whether the user holds at least requiredRole in the establishment
func (s *establishmentService) AuthorizeUserAction(ctx context.Context, userID, establishmentID string, requiredRole domain.Role) error {
	m, err := s.ResolveMembership(ctx, userID, establishmentID)
	if err != nil {
		return err
	}
	if !m.Role.Satisfies(requiredRole) {
		s.LogDebug(ctx, "User lacks required role",
			slog.String("user_id", userID),
			slog.String("establishment_id", establishmentID),
			slog.String("role", string(m.Role)),
			slog.String("required_role", string(requiredRole)))
		return fmt.Errorf("%w: %s role required", apperrors.ErrForbidden, requiredRole)
	}
	return nil
}

// ResolveMembership works out the user's role in the establishment. Staff accounts belong
// to exactly one establishment and need an active profile; anyone else is a client when
// an active client profile is linked to the account.
func (s *establishmentService) ResolveMembership(ctx context.Context, userID, establishmentID string) (*domain.Membership, error) {
	est, err := s.repos.EstablishmentRepo.FindByID(ctx, establishmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("establishment " + establishmentID + " not found")
		}
		return nil, err
	}

	user, err := s.repos.UserRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown user", apperrors.ErrForbidden)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: user %s is inactive", apperrors.ErrForbidden, userID)
	}

	if user.EstablishmentID == est.ID && (user.Role == domain.RoleAdmin || user.Role == domain.RoleEmployee) {
		active, err := s.staffProfileActive(ctx, user)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, fmt.Errorf("%w: profile of user %s is inactive", apperrors.ErrForbidden, userID)
		}
		if !est.IsActive && user.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: establishment %s is inactive", apperrors.ErrForbidden, est.ID)
		}
		return &domain.Membership{UserID: userID, EstablishmentID: est.ID, Role: user.Role, ProfileID: user.ProfileID}, nil
	}

	if !est.IsActive {
		return nil, fmt.Errorf("%w: establishment %s is inactive", apperrors.ErrForbidden, est.ID)
	}
	q := portsrepo.Query{EstablishmentID: est.ID, Limit: 1}.
		Where("userID", portsrepo.OpEqual, userID).
		Where("isActive", portsrepo.OpEqual, true)
	profiles, err := s.repos.ClientRepo.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: user %s is not a member of establishment %s", apperrors.ErrForbidden, userID, est.ID)
	}
	return &domain.Membership{UserID: userID, EstablishmentID: est.ID, Role: domain.RoleClient, ProfileID: profiles[0].ID}, nil
}

func (s *establishmentService) staffProfileActive(ctx context.Context, user *domain.User) (bool, error) {
	var (
		active bool
		err    error
	)
	switch user.Role {
	case domain.RoleAdmin:
		var a *domain.Admin
		if a, err = s.repos.AdminRepo.FindByID(ctx, user.ProfileID); err == nil {
			active = a.IsActive && a.EstablishmentID == user.EstablishmentID
		}
	case domain.RoleEmployee:
		var e *domain.Employee
		if e, err = s.repos.EmployeeRepo.FindByID(ctx, user.ProfileID); err == nil {
			active = e.IsActive && e.EstablishmentID == user.EstablishmentID
		}
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return active, err
}
