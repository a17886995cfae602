package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/google/uuid"
)

type adminService struct {
	*CrudService[domain.Admin, *domain.Admin]
	accounts portssvc.UserAccountSvc
}

// NewAdminService creates the administrator profile service.
func NewAdminService(repos portsrepo.RepositoryProvider, accounts portssvc.UserAccountSvc, options ...BaseOption) portssvc.AdminSvcFacade {
	base := newBaseService(options...)
	return &adminService{
		CrudService: NewCrudService[domain.Admin](repos.AdminRepo, rules.NewAdminRules(repos, base.Now), domain.CollectionAdmins,
			CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, options...),
		accounts: accounts,
	}
}

var _ portssvc.AdminSvcFacade = (*adminService)(nil)

func (s *adminService) ListAdmins(ctx context.Context, establishmentID, requestingUserID string, params dto.ListParams) ([]domain.Admin, string, error) {
	return s.List(ctx, establishmentID, requestingUserID, params, portsrepo.Query{OrderBy: "name"})
}

func (s *adminService) GetAdmin(ctx context.Context, establishmentID, adminID, requestingUserID string) (*domain.Admin, error) {
	return s.Get(ctx, establishmentID, adminID, requestingUserID)
}

// CreateAdmin creates the profile and, when a password is given, its login account.
func (s *adminService) CreateAdmin(ctx context.Context, establishmentID string, req dto.CreateAdminRequest, requestingUserID string) (*domain.Admin, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	admin := req.ToDomain()
	admin.ID = uuid.NewString()
	if req.Password != "" {
		admin.UserID = uuid.NewString()
	}
	if _, err := s.Insert(ctx, establishmentID, requestingUserID, &admin); err != nil {
		return nil, err
	}
	if req.Password == "" {
		return &admin, nil
	}

	login := &domain.User{
		Document:  domain.Document{ID: admin.UserID, EstablishmentID: establishmentID},
		Email:     admin.Email,
		Name:      admin.Name,
		Role:      domain.RoleAdmin,
		ProfileID: admin.ID,
		IsActive:  true,
	}
	if _, err := s.accounts.CreateStaffAccount(ctx, login, req.Password, requestingUserID); err != nil {
		if delErr := s.Repo().Delete(ctx, admin.ID); delErr != nil {
			s.LogError(ctx, delErr, "Failed to roll back admin profile", slog.String("admin_id", admin.ID))
		}
		return nil, err
	}
	return &admin, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, establishmentID, adminID string, req dto.UpdateAdminRequest, requestingUserID string) (*domain.Admin, error) {
	return s.Update(ctx, establishmentID, adminID, requestingUserID, func(a *domain.Admin) error {
		req.Apply(a)
		return nil
	})
}

// DeleteAdmin removes the profile and its login account.
func (s *adminService) DeleteAdmin(ctx context.Context, establishmentID, adminID, requestingUserID string) error {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return err
	}
	admin, err := s.Load(ctx, establishmentID, adminID)
	if err != nil {
		return err
	}
	if err := s.Remove(ctx, establishmentID, adminID); err != nil {
		return err
	}
	return removeLogin(ctx, &s.BaseService, s.accounts, admin.UserID)
}

// removeLogin deletes the login of a removed profile. The profile is already gone, so a
// failure is logged and not returned.
func removeLogin(ctx context.Context, base *BaseService, accounts portssvc.UserAccountSvc, userID string) error {
	if userID == "" {
		return nil
	}
	if err := accounts.RemoveAccount(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		base.LogError(ctx, err, "Failed to remove login of deleted profile", slog.String("user_id", userID))
	}
	return nil
}
