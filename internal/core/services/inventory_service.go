package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

type inventoryService struct {
	*CrudService[domain.InventoryCount, *domain.InventoryCount]
	rules  *rules.InventoryCountRules
	ledger portsrepo.StockLedger
}

// NewInventoryService creates the stock count service.
func NewInventoryService(repos portsrepo.RepositoryProvider, options ...BaseOption) portssvc.InventorySvcFacade {
	base := newBaseService(options...)
	countRules := rules.NewInventoryCountRules(repos, base.Now)
	return &inventoryService{
		CrudService: NewCrudService[domain.InventoryCount](repos.InventoryCountRepo, countRules, domain.CollectionInventoryCounts,
			CrudPolicy{Read: domain.RoleEmployee, Write: domain.RoleEmployee, Delete: domain.RoleAdmin}, options...),
		rules:  countRules,
		ledger: repos.StockLedger,
	}
}

var _ portssvc.InventorySvcFacade = (*inventoryService)(nil)

func (s *inventoryService) ListInventoryCounts(ctx context.Context, establishmentID, requestingUserID string, params dto.ListInventoryCountsParams) ([]domain.InventoryCount, string, error) {
	q := portsrepo.Query{OrderBy: "countedAt", Descending: true}
	if params.Status != "" {
		q = q.Where("status", portsrepo.OpEqual, params.Status)
	}
	return s.List(ctx, establishmentID, requestingUserID, params.ListParams, q)
}

func (s *inventoryService) GetInventoryCount(ctx context.Context, establishmentID, countID, requestingUserID string) (*domain.InventoryCount, error) {
	return s.Get(ctx, establishmentID, countID, requestingUserID)
}

func (s *inventoryService) CreateInventoryCount(ctx context.Context, establishmentID string, req dto.CreateInventoryCountRequest, requestingUserID string) (*domain.InventoryCount, error) {
	count := req.ToDomain()
	return s.Create(ctx, establishmentID, requestingUserID, &count)
}

func (s *inventoryService) UpdateInventoryCount(ctx context.Context, establishmentID, countID string, req dto.UpdateInventoryCountRequest, requestingUserID string) (*domain.InventoryCount, error) {
	return s.Update(ctx, establishmentID, countID, requestingUserID, func(c *domain.InventoryCount) error {
		req.Apply(c)
		return nil
	})
}

// ApplyInventoryCount overwrites the stock of every counted product with the counted quantity.
func (s *inventoryService) ApplyInventoryCount(ctx context.Context, establishmentID, countID, requestingUserID string) (*domain.InventoryCount, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, establishmentID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	current, err := s.Load(ctx, establishmentID, countID)
	if err != nil {
		return nil, err
	}
	next, err := s.PrepareUpdate(ctx, current, requestingUserID, nil)
	if err != nil {
		return nil, err
	}
	if err := s.rules.PrepareForApply(ctx, next); err != nil {
		return nil, err
	}
	if err := s.ledger.ApplyInventoryCount(ctx, next, requestingUserID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to apply inventory count", slog.String("count_id", countID))
		return nil, err
	}
	s.LogInfo(ctx, "Inventory count applied",
		slog.String("count_id", countID),
		slog.Int("lines", len(next.Lines)))
	return next, nil
}

func (s *inventoryService) DeleteInventoryCount(ctx context.Context, establishmentID, countID, requestingUserID string) error {
	return s.Delete(ctx, establishmentID, countID, requestingUserID)
}
