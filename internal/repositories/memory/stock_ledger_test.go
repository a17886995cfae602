package memory

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type StockLedgerTestSuite struct {
	suite.Suite
	ctx   context.Context
	repos portsrepo.RepositoryProvider
}

func (s *StockLedgerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = NewRepositoryProvider(NewStore())

	p := &domain.Product{
		Document:      domain.Document{ID: "prd-1", EstablishmentID: "est-1"},
		Name:          "Shampoo",
		Price:         decimal.NewFromInt(30),
		StockQuantity: 5,
		IsActive:      true,
	}
	s.Require().NoError(s.repos.ProductRepo.Insert(s.ctx, p))
}

func (s *StockLedgerTestSuite) stock() int {
	p, err := s.repos.ProductRepo.FindByID(s.ctx, "prd-1")
	s.Require().NoError(err)
	return p.StockQuantity
}

func (s *StockLedgerTestSuite) sell(qty int) *domain.Sale {
	sale := &domain.Sale{
		Document: domain.Document{ID: "sal-1", EstablishmentID: "est-1"},
		Items:    []domain.SaleItem{{ProductID: "prd-1", Quantity: qty}},
		Status:   domain.SaleCompleted,
		SoldAt:   time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.repos.StockLedger.InsertSale(s.ctx, sale, domain.StockPlan{"prd-1": -qty}))
	return sale
}

func (s *StockLedgerTestSuite) TestInsertSaleMovesStock() {
	s.sell(2)
	s.Equal(3, s.stock())
}

func (s *StockLedgerTestSuite) TestInsertSaleInsufficientStockWritesNothing() {
	sale := &domain.Sale{
		Document: domain.Document{ID: "sal-1", EstablishmentID: "est-1"},
		Items:    []domain.SaleItem{{ProductID: "prd-1", Quantity: 6}},
		Status:   domain.SaleCompleted,
	}
	s.ErrorIs(s.repos.StockLedger.InsertSale(s.ctx, sale, domain.StockPlan{"prd-1": -6}), apperrors.ErrInsufficientStock)
	s.Equal(5, s.stock())
	_, err := s.repos.SaleRepo.FindByID(s.ctx, "sal-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StockLedgerTestSuite) TestDeleteStaleSaleDoesNotRestoreTwice() {
	s.sell(2)
	stale, err := s.repos.SaleRepo.FindByID(s.ctx, "sal-1")
	s.Require().NoError(err)

	cancelled, err := s.repos.SaleRepo.FindByID(s.ctx, "sal-1")
	s.Require().NoError(err)
	cancelled.Status = domain.SaleCancelled
	s.Require().NoError(s.repos.StockLedger.UpdateSale(s.ctx, cancelled, domain.StockPlan{"prd-1": 2}))
	s.Equal(5, s.stock())

	err = s.repos.StockLedger.DeleteSale(s.ctx, stale, domain.StockPlan{"prd-1": 2})
	s.ErrorIs(err, apperrors.ErrConflict)
	s.Equal(5, s.stock())
	_, err = s.repos.SaleRepo.FindByID(s.ctx, "sal-1")
	s.NoError(err)

	s.Require().NoError(s.repos.StockLedger.DeleteSale(s.ctx, cancelled, domain.StockPlan{}))
	s.Equal(5, s.stock())
	_, err = s.repos.SaleRepo.FindByID(s.ctx, "sal-1")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StockLedgerTestSuite) TestDeleteCompletedSaleRestoresStock() {
	sale := s.sell(2)
	s.Require().NoError(s.repos.StockLedger.DeleteSale(s.ctx, sale, domain.StockPlan{"prd-1": 2}))
	s.Equal(5, s.stock())

	s.ErrorIs(s.repos.StockLedger.DeleteSale(s.ctx, sale, domain.StockPlan{"prd-1": 2}), apperrors.ErrNotFound)
}

func TestStockLedger(t *testing.T) {
	suite.Run(t, new(StockLedgerTestSuite))
}
