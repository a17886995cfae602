package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

type clientService struct {
	*CrudService[domain.Client, *domain.Client]
	users         portssvc.UserReaderSvc
	establishment portsrepo.DocumentReader[domain.Establishment]
}

// NewClientService creates the client record service.
func NewClientService(repos portsrepo.RepositoryProvider, users portssvc.UserReaderSvc, options ...BaseOption) portssvc.ClientSvcFacade {
	base := newBaseService(options...)
	return &clientService{
		CrudService: NewCrudService[domain.Client](repos.ClientRepo, rules.NewClientRules(repos, base.Now), domain.CollectionClients,
			CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleEmployee, Delete: domain.RoleAdmin}, options...),
		users:         users,
		establishment: repos.EstablishmentRepo,
	}
}

var _ portssvc.ClientSvcFacade = (*clientService)(nil)

func (s *clientService) ListClients(ctx context.Context, establishmentID, requestingUserID string, params dto.ListClientsParams) ([]domain.Client, string, error) {
	q := portsrepo.Query{OrderBy: "name"}
	if params.Phone != "" {
		q = q.Where("phone", portsrepo.OpEqual, rules.NormalizePhone(params.Phone))
	}
	if params.ActiveOnly {
		q = q.Where("isActive", portsrepo.OpEqual, true)
	}
	return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
}

// GetClient returns a client record. Clients may read their own record.
func (s *clientService) GetClient(ctx context.Context, establishmentID, clientID, requestingUserID string) (*domain.Client, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	if m.Role == domain.RoleClient && m.ProfileID != clientID {
		return nil, fmt.Errorf("%w: clients can only read their own record", apperrors.ErrForbidden)
	}
	return s.Load(ctx, establishmentID, clientID)
}

func (s *clientService) CreateClient(ctx context.Context, establishmentID string, req dto.CreateClientRequest, requestingUserID string) (*domain.Client, error) {
	client := req.ToDomain()
	return s.Create(ctx, establishmentID, requestingUserID, &client)
}

// UpdateClient edits a client record. Clients may edit their own contact data.
func (s *clientService) UpdateClient(ctx context.Context, establishmentID, clientID string, req dto.UpdateClientRequest, requestingUserID string) (*domain.Client, error) {
	m, err := s.Membership(ctx, requestingUserID, establishmentID, domain.RoleClient)
	if err != nil {
		return nil, err
	}
	if m.Role == domain.RoleClient {
		if m.ProfileID != clientID {
			return nil, fmt.Errorf("%w: clients can only update their own record", apperrors.ErrForbidden)
		}
		req.IsActive = nil
		req.Notes = nil
	}
	return s.Modify(ctx, establishmentID, clientID, requestingUserID, func(c *domain.Client) error {
		req.Apply(c)
		return nil
	})
}

func (s *clientService) DeleteClient(ctx context.Context, establishmentID, clientID, requestingUserID string) error {
	return s.Delete(ctx, establishmentID, clientID, requestingUserID)
}

// JoinEstablishment gives a client account a client record in the establishment. A record
// with the same phone and no account yet is linked instead of duplicated.
func (s *clientService) JoinEstablishment(ctx context.Context, establishmentID, userID string, req dto.JoinEstablishmentRequest) (*domain.Client, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user "+userID+" not found")
	}
	if user.Role != domain.RoleClient {
		return nil, fmt.Errorf("%w: only client accounts can join an establishment", apperrors.ErrForbidden)
	}
	est, err := s.establishment.FindByID(ctx, establishmentID)
	if err != nil {
		return nil, notFoundOr(err, "establishment "+establishmentID+" not found")
	}
	if !est.IsActive {
		return nil, fmt.Errorf("%w: establishment %s is inactive", apperrors.ErrForbidden, establishmentID)
	}

	existing, err := s.Repo().Find(ctx, portsrepo.Query{EstablishmentID: establishmentID, Limit: 1}.Where("userID", portsrepo.OpEqual, userID))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: already a client of establishment %s", apperrors.ErrDuplicate, establishmentID)
	}

	phone := rules.NormalizePhone(req.Phone)
	byPhone, err := s.Repo().Find(ctx, portsrepo.Query{EstablishmentID: establishmentID, Limit: 1}.Where("phone", portsrepo.OpEqual, phone))
	if err != nil {
		return nil, err
	}
	if len(byPhone) > 0 {
		if byPhone[0].UserID != "" {
			return nil, fmt.Errorf("%w: phone %s belongs to another account", apperrors.ErrDuplicate, phone)
		}
		linked, err := s.Modify(ctx, establishmentID, byPhone[0].ID, userID, func(c *domain.Client) error {
			c.UserID = userID
			c.IsActive = true
			if c.Email == "" {
				c.Email = user.Email
			}
			if c.BirthDate == nil {
				c.BirthDate = req.BirthDate
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.LogInfo(ctx, "Client account linked to existing record",
			slog.String("client_id", linked.ID),
			slog.String("user_id", userID))
		return linked, nil
	}

	client := domain.Client{
		UserID:    userID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		IsActive:  true,
	}
	return s.Insert(ctx, establishmentID, userID, &client)
}
