package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

type catalogService struct {
	*CrudService[domain.Service, *domain.Service]
}

// NewCatalogService creates the service-catalogue service.
func NewCatalogService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.CatalogSvcFacade {
	base := newBaseService(options...)
	return &catalogService{
		CrudService: NewCrudService[domain.Service](repos.ServiceRepo, rules.NewServiceRules(repos, base.Now), domain.CollectionServices,
			CrudPolicy{Read: domain.RoleClient, Write: domain.RoleAdmin, Delete: domain.RoleAdmin}, options...),
	}
}

var _ portssvc.CatalogSvcFacade = (*catalogService)(nil)

func (s *catalogService) ListServices(ctx context.Context, establishmentID, requestingUserID string, params dto.ListServicesParams) ([]domain.Service, string, error) {
	q := portsrepo.Query{OrderBy: "name"}
	if params.ActiveOnly {
		q = q.Where("isActive", portsrepo.OpEqual, true)
	}
	return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
}

func (s *catalogService) GetService(ctx context.Context, establishmentID, serviceID, requestingUserID string) (*domain.Service, error) {
	return s.Get(ctx, establishmentID, serviceID, requestingUserID)
}

func (s *catalogService) CreateService(ctx context.Context, establishmentID string, req dto.CreateServiceRequest, requestingUserID string) (*domain.Service, error) {
	svc := req.ToDomain()
	return s.Create(ctx, establishmentID, requestingUserID, &svc)
}

func (s *catalogService) UpdateService(ctx context.Context, establishmentID, serviceID string, req dto.UpdateServiceRequest, requestingUserID string) (*domain.Service, error) {
	return s.Update(ctx, establishmentID, serviceID, requestingUserID, func(svc *domain.Service) error {
		req.Apply(svc)
		return nil
	})
}

func (s *catalogService) DeleteService(ctx context.Context, establishmentID, serviceID, requestingUserID string) error {
	return s.Delete(ctx, establishmentID, serviceID, requestingUserID)
}
