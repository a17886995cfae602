package rules_test

import (
	"context"
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/SscSPs/salon_management_app/internal/core/rules"
	"github.com/SscSPs/salon_management_app/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Monday 2026-03-02 09:00 UTC
var fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type RulesTestSuite struct {
	suite.Suite
	ctx   context.Context
	repos portsrepo.RepositoryProvider
	clock domain.Clock

	est      *domain.Establishment
	client   *domain.Client
	employee *domain.Employee
	service  *domain.Service
	product  *domain.Product
}

func (s *RulesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = memory.NewRepositoryProvider(memory.NewStore())
	s.clock = func() time.Time { return fixedNow }

	s.est = &domain.Establishment{
		Document:    domain.Document{ID: "est-1", EstablishmentID: "est-1"},
		Name:        "Studio Bela",
		Plan:        domain.PlanFree,
		OpeningTime: "09:00",
		ClosingTime: "18:00",
		WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		IsActive:    true,
	}
	s.Require().NoError(s.repos.EstablishmentRepo.Insert(s.ctx, s.est))

	s.service = &domain.Service{
		Document:        domain.Document{ID: "svc-1", EstablishmentID: "est-1"},
		Name:            "Haircut",
		NormalizedName:  "haircut",
		Price:           decimal.NewFromInt(50),
		DurationMinutes: 45,
		IsActive:        true,
	}
	s.Require().NoError(s.repos.ServiceRepo.Insert(s.ctx, s.service))

	s.employee = &domain.Employee{
		Document:       domain.Document{ID: "emp-1", EstablishmentID: "est-1"},
		Name:           "Ana",
		Email:          "ana@example.com",
		Role:           domain.RoleEmployee,
		CommissionRate: decimal.NewFromInt(40),
		IsActive:       true,
	}
	s.Require().NoError(s.repos.EmployeeRepo.Insert(s.ctx, s.employee))

	s.client = &domain.Client{
		Document: domain.Document{ID: "cli-1", EstablishmentID: "est-1"},
		Name:     "Carla",
		Phone:    "+5511999990000",
		IsActive: true,
	}
	s.Require().NoError(s.repos.ClientRepo.Insert(s.ctx, s.client))

	s.product = &domain.Product{
		Document:      domain.Document{ID: "prd-1", EstablishmentID: "est-1"},
		Name:          "Shampoo",
		SKU:           "SH-01",
		Price:         decimal.NewFromInt(30),
		StockQuantity: 5,
		IsActive:      true,
	}
	s.Require().NoError(s.repos.ProductRepo.Insert(s.ctx, s.product))
}

func (s *RulesTestSuite) booking(start time.Time) *domain.Appointment {
	return &domain.Appointment{
		Document:   domain.Document{ID: "apt-new", EstablishmentID: "est-1"},
		ClientID:   s.client.ID,
		EmployeeID: s.employee.ID,
		ServiceID:  s.service.ID,
		StartTime:  start,
	}
}

func (s *RulesTestSuite) insertAppointment(id string, start time.Time, status domain.AppointmentStatus) *domain.Appointment {
	a := &domain.Appointment{
		Document:      domain.Document{ID: id, EstablishmentID: "est-1"},
		ClientID:      s.client.ID,
		EmployeeID:    s.employee.ID,
		ServiceID:     s.service.ID,
		ServiceName:   s.service.Name,
		StartTime:     start,
		EndTime:       start.Add(s.service.Duration()),
		Status:        status,
		Price:         s.service.Price,
		PaymentStatus: domain.PaymentUnpaid,
	}
	s.Require().NoError(s.repos.AppointmentRepo.Insert(s.ctx, a))
	return a
}

func TestRulesTestSuite(t *testing.T) {
	suite.Run(t, new(RulesTestSuite))
}

// --- Establishment ---

func (s *RulesTestSuite) TestEstablishment_CreateDefaultsPlan() {
	r := rules.NewEstablishmentRules(s.repos, s.clock)
	e := &domain.Establishment{Document: domain.Document{ID: "est-2"}, Name: "  Second  ", Email: " Owner@Example.com "}

	s.Require().NoError(r.PrepareForCreate(s.ctx, e))
	s.Equal(domain.PlanFree, e.Plan)
	s.Equal("Second", e.Name)
	s.Equal("owner@example.com", e.Email)
}

func (s *RulesTestSuite) TestEstablishment_RejectsInvertedHours() {
	r := rules.NewEstablishmentRules(s.repos, s.clock)
	e := &domain.Establishment{Document: domain.Document{ID: "est-2"}, Name: "Late", OpeningTime: "20:00", ClosingTime: "08:00"}

	err := r.PrepareForCreate(s.ctx, e)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestEstablishment_RejectsBadClock() {
	r := rules.NewEstablishmentRules(s.repos, s.clock)
	e := &domain.Establishment{Document: domain.Document{ID: "est-2"}, Name: "Odd", OpeningTime: "9h", ClosingTime: "18:00"}

	s.ErrorIs(r.PrepareForCreate(s.ctx, e), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestEstablishment_DuplicateTaxDocument() {
	current := *s.est
	current.TaxDocument = "12.345"
	s.Require().NoError(s.repos.EstablishmentRepo.Update(s.ctx, &current))

	r := rules.NewEstablishmentRules(s.repos, s.clock)
	e := &domain.Establishment{Document: domain.Document{ID: "est-2"}, Name: "Copy", TaxDocument: "12.345"}
	s.ErrorIs(r.PrepareForCreate(s.ctx, e), apperrors.ErrDuplicate)
}

func (s *RulesTestSuite) TestEstablishment_DowngradeBlockedByUsage() {
	r := rules.NewEstablishmentRules(s.repos, s.clock)
	current := *s.est
	current.Plan = domain.PlanBasic
	for _, id := range []string{"emp-2", "emp-3"} {
		s.Require().NoError(s.repos.EmployeeRepo.Insert(s.ctx, &domain.Employee{
			Document: domain.Document{ID: id, EstablishmentID: "est-1"}, Name: id, Email: id + "@example.com", IsActive: true,
		}))
	}

	next := current
	next.Plan = domain.PlanFree
	err := r.PrepareForUpdate(s.ctx, &current, &next)
	s.ErrorIs(err, apperrors.ErrQuotaExceeded)
	s.Contains(err.Error(), domain.CollectionEmployees)
}

func (s *RulesTestSuite) TestEstablishment_OwnerIsImmutable() {
	r := rules.NewEstablishmentRules(s.repos, s.clock)
	current := *s.est
	current.OwnerUserID = "usr-1"
	next := current
	next.OwnerUserID = "usr-2"

	s.Require().NoError(r.PrepareForUpdate(s.ctx, &current, &next))
	s.Equal("usr-1", next.OwnerUserID)
}

// --- User ---

func (s *RulesTestSuite) TestUser_StaffNeedsEstablishment() {
	r := rules.NewUserRules(s.repos, s.clock)
	u := &domain.User{Document: domain.Document{ID: "usr-1"}, Email: "a@b.com", Name: "A", Role: domain.RoleEmployee}
	s.ErrorIs(r.PrepareForCreate(s.ctx, u), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestUser_EmailUniqueCaseInsensitive() {
	s.Require().NoError(s.repos.UserRepo.Insert(s.ctx, &domain.User{
		Document: domain.Document{ID: "usr-1"}, Email: "ana@example.com", Name: "Ana", Role: domain.RoleClient,
	}))
	r := rules.NewUserRules(s.repos, s.clock)
	u := &domain.User{Document: domain.Document{ID: "usr-2"}, Email: " ANA@example.com", Name: "Ana 2", Role: domain.RoleClient}
	s.ErrorIs(r.PrepareForCreate(s.ctx, u), apperrors.ErrDuplicate)
}

func (s *RulesTestSuite) TestUser_RoleIsImmutable() {
	r := rules.NewUserRules(s.repos, s.clock)
	current := &domain.User{Document: domain.Document{ID: "usr-1"}, Email: "c@d.com", Name: "C", Role: domain.RoleClient}
	next := *current
	next.Role = domain.RoleAdmin
	s.ErrorIs(r.PrepareForUpdate(s.ctx, current, &next), apperrors.ErrImmutableField)
}

// --- Admin ---

func (s *RulesTestSuite) TestAdmin_QuotaOnFreePlan() {
	s.Require().NoError(s.repos.AdminRepo.Insert(s.ctx, &domain.Admin{
		Document: domain.Document{ID: "adm-1", EstablishmentID: "est-1"}, Name: "Owner", Email: "owner@example.com", Role: domain.RoleAdmin, IsActive: true,
	}))
	r := rules.NewAdminRules(s.repos, s.clock)
	a := &domain.Admin{Document: domain.Document{ID: "adm-2", EstablishmentID: "est-1"}, Name: "Second", Email: "second@example.com", IsActive: true}

	err := r.PrepareForCreate(s.ctx, a)
	s.ErrorIs(err, apperrors.ErrQuotaExceeded)
	s.Equal(domain.RoleAdmin, a.Role)
}

func (s *RulesTestSuite) TestAdmin_InactiveDoesNotCountTowardsQuota() {
	s.Require().NoError(s.repos.AdminRepo.Insert(s.ctx, &domain.Admin{
		Document: domain.Document{ID: "adm-1", EstablishmentID: "est-1"}, Name: "Old", Email: "old@example.com", Role: domain.RoleAdmin,
	}))
	r := rules.NewAdminRules(s.repos, s.clock)
	a := &domain.Admin{Document: domain.Document{ID: "adm-2", EstablishmentID: "est-1"}, Name: "New", Email: "new@example.com", IsActive: true}
	s.NoError(r.PrepareForCreate(s.ctx, a))
}

func (s *RulesTestSuite) TestAdmin_LastActiveAdminCannotBeDeleted() {
	admin := &domain.Admin{
		Document: domain.Document{ID: "adm-1", EstablishmentID: "est-1"}, Name: "Owner", Email: "owner@example.com", Role: domain.RoleAdmin, IsActive: true,
	}
	s.Require().NoError(s.repos.AdminRepo.Insert(s.ctx, admin))
	r := rules.NewAdminRules(s.repos, s.clock)

	s.ErrorIs(r.PrepareForDelete(s.ctx, admin), apperrors.ErrInUse)

	next := *admin
	next.IsActive = false
	s.ErrorIs(r.PrepareForUpdate(s.ctx, admin, &next), apperrors.ErrInUse)
}

// --- Employee ---

func (s *RulesTestSuite) TestEmployee_CommissionRateRange() {
	r := rules.NewEmployeeRules(s.repos, s.clock)
	e := &domain.Employee{Document: domain.Document{ID: "emp-2", EstablishmentID: "est-1"}, Name: "Bia", Email: "bia@example.com", CommissionRate: decimal.NewFromInt(120)}
	s.ErrorIs(r.PrepareForCreate(s.ctx, e), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestEmployee_CommissionRuleMustCompile() {
	r := rules.NewEmployeeRules(s.repos, s.clock)
	e := &domain.Employee{Document: domain.Document{ID: "emp-2", EstablishmentID: "est-1"}, Name: "Bia", Email: "bia@example.com", CommissionRule: "price *"}
	s.ErrorIs(r.PrepareForCreate(s.ctx, e), apperrors.ErrValidation)

	e.CommissionRule = "price * 0.5"
	s.NoError(r.PrepareForCreate(s.ctx, e))
}

func (s *RulesTestSuite) TestEmployee_ServicesMustExistAndAreDeduped() {
	r := rules.NewEmployeeRules(s.repos, s.clock)
	e := &domain.Employee{Document: domain.Document{ID: "emp-2", EstablishmentID: "est-1"}, Name: "Bia", Email: "bia@example.com",
		ServiceIDs: []string{"svc-1", "svc-1", "missing"}}
	s.ErrorIs(r.PrepareForCreate(s.ctx, e), apperrors.ErrNotFound)

	e.ServiceIDs = []string{"svc-1", " svc-1 "}
	s.Require().NoError(r.PrepareForCreate(s.ctx, e))
	s.Equal([]string{"svc-1"}, e.ServiceIDs)
}

func (s *RulesTestSuite) TestEmployee_DuplicateEmailInTenant() {
	r := rules.NewEmployeeRules(s.repos, s.clock)
	e := &domain.Employee{Document: domain.Document{ID: "emp-2", EstablishmentID: "est-1"}, Name: "Other Ana", Email: "ANA@example.com"}
	s.ErrorIs(r.PrepareForCreate(s.ctx, e), apperrors.ErrDuplicate)
}

func (s *RulesTestSuite) TestEmployee_DeleteRefusedWithUpcomingAppointments() {
	s.insertAppointment("apt-1", fixedNow.Add(26*time.Hour), domain.AppointmentScheduled)
	r := rules.NewEmployeeRules(s.repos, s.clock)
	s.ErrorIs(r.PrepareForDelete(s.ctx, s.employee), apperrors.ErrInUse)
}

func (s *RulesTestSuite) TestEmployee_DeleteAllowedWithOnlyPastAppointments() {
	s.insertAppointment("apt-1", fixedNow.Add(-48*time.Hour), domain.AppointmentCompleted)
	r := rules.NewEmployeeRules(s.repos, s.clock)
	s.NoError(r.PrepareForDelete(s.ctx, s.employee))
}

// --- Client ---

func (s *RulesTestSuite) TestClient_PhoneUniqueAfterNormalising() {
	r := rules.NewClientRules(s.repos, s.clock)
	c := &domain.Client{Document: domain.Document{ID: "cli-2", EstablishmentID: "est-1"}, Name: "Dup", Phone: "+55 (11) 99999-0000"}
	s.ErrorIs(r.PrepareForCreate(s.ctx, c), apperrors.ErrDuplicate)
}

func (s *RulesTestSuite) TestClient_SamePhoneInOtherTenantIsFine() {
	s.Require().NoError(s.repos.EstablishmentRepo.Insert(s.ctx, &domain.Establishment{
		Document: domain.Document{ID: "est-2", EstablishmentID: "est-2"}, Name: "Other", Plan: domain.PlanFree,
	}))
	r := rules.NewClientRules(s.repos, s.clock)
	c := &domain.Client{Document: domain.Document{ID: "cli-2", EstablishmentID: "est-2"}, Name: "Twin", Phone: "+5511999990000", IsActive: true}
	s.NoError(r.PrepareForCreate(s.ctx, c))
}

// --- Service ---

func (s *RulesTestSuite) TestService_NameUniqueCaseInsensitive() {
	r := rules.NewServiceRules(s.repos, s.clock)
	svc := &domain.Service{Document: domain.Document{ID: "svc-2", EstablishmentID: "est-1"}, Name: " HAIRCUT ", DurationMinutes: 30}
	s.ErrorIs(r.PrepareForCreate(s.ctx, svc), apperrors.ErrDuplicate)
}

func (s *RulesTestSuite) TestService_RenameKeepsOwnName() {
	r := rules.NewServiceRules(s.repos, s.clock)
	next := *s.service
	next.Name = "HairCut"
	s.Require().NoError(r.PrepareForUpdate(s.ctx, s.service, &next))
	s.Equal("haircut", next.NormalizedName)
}

func (s *RulesTestSuite) TestService_NegativePriceAndDuration() {
	r := rules.NewServiceRules(s.repos, s.clock)
	svc := &domain.Service{Document: domain.Document{ID: "svc-2", EstablishmentID: "est-1"}, Name: "Color", Price: decimal.NewFromInt(-1), DurationMinutes: 30}
	s.ErrorIs(r.PrepareForCreate(s.ctx, svc), apperrors.ErrValidation)

	svc.Price = decimal.Zero
	svc.DurationMinutes = 0
	s.ErrorIs(r.PrepareForCreate(s.ctx, svc), apperrors.ErrValidation)
}

// --- Appointment ---

func (s *RulesTestSuite) TestAppointment_CreateDerivesFields() {
	r := rules.NewAppointmentRules(s.repos, s.clock)
	a := s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))

	s.Require().NoError(r.PrepareForCreate(s.ctx, a))
	s.Equal(time.Date(2026, 3, 3, 10, 45, 0, 0, time.UTC), a.EndTime)
	s.Equal(domain.AppointmentScheduled, a.Status)
	s.Equal("Haircut", a.ServiceName)
	s.True(a.Price.Equal(decimal.NewFromInt(50)))
	s.Equal(domain.PaymentUnpaid, a.PaymentStatus)
}

func (s *RulesTestSuite) TestAppointment_ConflictWithSameEmployee() {
	s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentConfirmed)
	r := rules.NewAppointmentRules(s.repos, s.clock)

	a := s.booking(time.Date(2026, 3, 3, 10, 30, 0, 0, time.UTC))
	s.ErrorIs(r.PrepareForCreate(s.ctx, a), apperrors.ErrScheduleConflict)

	// back-to-back is not an overlap
	b := s.booking(time.Date(2026, 3, 3, 10, 45, 0, 0, time.UTC))
	s.NoError(r.PrepareForCreate(s.ctx, b))
}

func (s *RulesTestSuite) TestAppointment_CancelledDoesNotBlock() {
	s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentCancelled)
	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.NoError(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))))
}

func (s *RulesTestSuite) TestAppointment_NoShowStillBlocks() {
	s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentNoShow)
	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 10, 15, 0, 0, time.UTC))), apperrors.ErrScheduleConflict)
}

func (s *RulesTestSuite) TestAppointment_CompletedStillBlocks() {
	s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentCompleted)
	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))), apperrors.ErrScheduleConflict)
}

func (s *RulesTestSuite) TestAppointment_RescheduleExcludesItself() {
	current := s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentScheduled)
	r := rules.NewAppointmentRules(s.repos, s.clock)

	next := *current
	next.StartTime = current.StartTime.Add(15 * time.Minute)
	next.EndTime = time.Time{}
	s.Require().NoError(r.PrepareForUpdate(s.ctx, current, &next))
	s.Equal(time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC), next.EndTime)
}

func (s *RulesTestSuite) TestAppointment_PastStartRejected() {
	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(fixedNow.Add(-time.Hour))), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestAppointment_OutsideOpeningHours() {
	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 17, 30, 0, 0, time.UTC))), apperrors.ErrValidation)
	// Sunday
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 8, 10, 0, 0, 0, time.UTC))), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestAppointment_EmployeeMustOfferService() {
	current := *s.employee
	current.ServiceIDs = []string{"svc-other"}
	s.Require().NoError(s.repos.EmployeeRepo.Update(s.ctx, &current))

	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestAppointment_ForeignClientIsNotFound() {
	r := rules.NewAppointmentRules(s.repos, s.clock)
	a := s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))
	a.EstablishmentID = "est-2"
	s.ErrorIs(r.PrepareForCreate(s.ctx, a), apperrors.ErrNotFound)
}

func (s *RulesTestSuite) TestAppointment_TerminalIsFrozen() {
	current := s.insertAppointment("apt-1", fixedNow.Add(-3*time.Hour), domain.AppointmentCompleted)
	r := rules.NewAppointmentRules(s.repos, s.clock)
	next := *current
	next.Notes = "late edit"
	s.ErrorIs(r.PrepareForUpdate(s.ctx, current, &next), apperrors.ErrImmutableField)
}

func (s *RulesTestSuite) TestAppointment_CompleteOnlyAfterStart() {
	current := s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentConfirmed)
	r := rules.NewAppointmentRules(s.repos, s.clock)
	next := *current
	next.Status = domain.AppointmentCompleted
	s.ErrorIs(r.PrepareForUpdate(s.ctx, current, &next), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestAppointment_PaymentFieldsAreKept() {
	current := s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentScheduled)
	current.PaidAmount = decimal.NewFromInt(20)
	current.PaymentStatus = domain.PaymentPartial
	r := rules.NewAppointmentRules(s.repos, s.clock)

	next := *current
	next.PaidAmount = decimal.NewFromInt(50)
	next.PaymentStatus = domain.PaymentPaid
	next.Status = domain.AppointmentConfirmed
	s.Require().NoError(r.PrepareForUpdate(s.ctx, current, &next))
	s.True(next.PaidAmount.Equal(decimal.NewFromInt(20)))
	s.Equal(domain.PaymentPartial, next.PaymentStatus)
}

func (s *RulesTestSuite) TestAppointment_PaidCannotBeDeleted() {
	a := s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentScheduled)
	r := rules.NewAppointmentRules(s.repos, s.clock)
	s.NoError(r.PrepareForDelete(s.ctx, a))

	a.PaidAmount = decimal.NewFromInt(10)
	s.ErrorIs(r.PrepareForDelete(s.ctx, a), apperrors.ErrInUse)
}

// --- Product ---

func (s *RulesTestSuite) TestProduct_StockCannotBeEdited() {
	r := rules.NewProductRules(s.repos, s.clock)
	next := *s.product
	next.StockQuantity = 100
	s.ErrorIs(r.PrepareForUpdate(s.ctx, s.product, &next), apperrors.ErrImmutableField)
}

func (s *RulesTestSuite) TestProduct_SKUUnique() {
	r := rules.NewProductRules(s.repos, s.clock)
	p := &domain.Product{Document: domain.Document{ID: "prd-2", EstablishmentID: "est-1"}, Name: "Conditioner", SKU: "sh-01"}
	s.ErrorIs(r.PrepareForCreate(s.ctx, p), apperrors.ErrDuplicate)
}

// --- Sale ---

func (s *RulesTestSuite) TestSale_ComputesTotals() {
	r := rules.NewSaleRules(s.repos, s.clock)
	sale := &domain.Sale{
		Document:      domain.Document{ID: "sal-1", EstablishmentID: "est-1"},
		Items:         []domain.SaleItem{{ProductID: "prd-1", Quantity: 2}},
		Discount:      decimal.NewFromInt(10),
		PaymentMethod: domain.PaymentCash,
	}
	s.Require().NoError(r.PrepareForCreate(s.ctx, sale))
	s.Equal("Shampoo", sale.Items[0].ProductName)
	s.True(sale.Items[0].Subtotal.Equal(decimal.NewFromInt(60)))
	s.True(sale.Total.Equal(decimal.NewFromInt(50)))
	s.Equal(domain.SaleCompleted, sale.Status)
	s.Equal(fixedNow, sale.SoldAt)
}

func (s *RulesTestSuite) TestSale_InsufficientStock() {
	r := rules.NewSaleRules(s.repos, s.clock)
	sale := &domain.Sale{
		Document:      domain.Document{ID: "sal-1", EstablishmentID: "est-1"},
		Items:         []domain.SaleItem{{ProductID: "prd-1", Quantity: 4}, {ProductID: "prd-1", Quantity: 2}},
		PaymentMethod: domain.PaymentCard,
	}
	s.ErrorIs(r.PrepareForCreate(s.ctx, sale), apperrors.ErrInsufficientStock)
}

func (s *RulesTestSuite) TestSale_DiscountAboveTotal() {
	r := rules.NewSaleRules(s.repos, s.clock)
	sale := &domain.Sale{
		Document:      domain.Document{ID: "sal-1", EstablishmentID: "est-1"},
		Items:         []domain.SaleItem{{ProductID: "prd-1", Quantity: 1}},
		Discount:      decimal.NewFromInt(31),
		PaymentMethod: domain.PaymentPix,
	}
	s.ErrorIs(r.PrepareForCreate(s.ctx, sale), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestSale_CancelledIsFrozen() {
	r := rules.NewSaleRules(s.repos, s.clock)
	current := &domain.Sale{Document: domain.Document{ID: "sal-1", EstablishmentID: "est-1"}, Status: domain.SaleCancelled}
	next := *current
	next.Status = domain.SaleCompleted
	s.ErrorIs(r.PrepareForUpdate(s.ctx, current, &next), apperrors.ErrImmutableField)
}

func (s *RulesTestSuite) TestPlanFor() {
	sold := &domain.Sale{Status: domain.SaleCompleted, Items: []domain.SaleItem{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}}
	cancelled := &domain.Sale{Status: domain.SaleCancelled, Items: sold.Items}
	edited := &domain.Sale{Status: domain.SaleCompleted, Items: []domain.SaleItem{{ProductID: "a", Quantity: 3}, {ProductID: "b", Quantity: 1}}}

	s.Equal(domain.StockPlan{"a": -2, "b": -1}, rules.PlanFor(nil, sold))
	s.Equal(domain.StockPlan{"a": 2, "b": 1}, rules.PlanFor(sold, cancelled))
	s.Equal(domain.StockPlan{"a": 2, "b": 1}, rules.PlanFor(sold, nil))
	s.Equal(domain.StockPlan{"a": -1}, rules.PlanFor(sold, edited))
	s.True(rules.PlanFor(cancelled, nil).Empty())
}

// --- Inventory ---

func (s *RulesTestSuite) TestInventory_SnapshotsExpectedStock() {
	r := rules.NewInventoryCountRules(s.repos, s.clock)
	c := &domain.InventoryCount{
		Document: domain.Document{ID: "inv-1", EstablishmentID: "est-1"},
		Lines:    []domain.InventoryCountLine{{ProductID: "prd-1", CountedQuantity: 3, ExpectedQuantity: 99}},
	}
	s.Require().NoError(r.PrepareForCreate(s.ctx, c))
	s.Equal(domain.InventoryDraft, c.Status)
	s.Equal(5, c.Lines[0].ExpectedQuantity)
	s.Equal(-2, c.Lines[0].Difference)
}

func (s *RulesTestSuite) TestInventory_DuplicateProductLine() {
	r := rules.NewInventoryCountRules(s.repos, s.clock)
	c := &domain.InventoryCount{
		Document: domain.Document{ID: "inv-1", EstablishmentID: "est-1"},
		Lines:    []domain.InventoryCountLine{{ProductID: "prd-1", CountedQuantity: 3}, {ProductID: "prd-1", CountedQuantity: 1}},
	}
	s.ErrorIs(r.PrepareForCreate(s.ctx, c), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestInventory_AppliedIsFrozen() {
	r := rules.NewInventoryCountRules(s.repos, s.clock)
	applied := &domain.InventoryCount{Document: domain.Document{ID: "inv-1", EstablishmentID: "est-1"}, Status: domain.InventoryApplied,
		Lines: []domain.InventoryCountLine{{ProductID: "prd-1", CountedQuantity: 3}}}
	next := *applied
	s.ErrorIs(r.PrepareForUpdate(s.ctx, applied, &next), apperrors.ErrImmutableField)
	s.ErrorIs(r.PrepareForDelete(s.ctx, applied), apperrors.ErrImmutableField)
	s.ErrorIs(r.PrepareForApply(s.ctx, applied), apperrors.ErrImmutableField)
}

// --- Payment ---

func (s *RulesTestSuite) TestPayment_ExactlyOneTarget() {
	r := rules.NewPaymentRules(s.repos, s.clock)
	p := &domain.Payment{Document: domain.Document{ID: "pay-1", EstablishmentID: "est-1"}, Amount: decimal.NewFromInt(10), Method: domain.PaymentCash}
	s.ErrorIs(r.PrepareForCreate(s.ctx, p), apperrors.ErrValidation)
}

func (s *RulesTestSuite) TestPayment_CannotExceedOutstanding() {
	a := s.insertAppointment("apt-1", time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), domain.AppointmentScheduled)
	r := rules.NewPaymentRules(s.repos, s.clock)

	p := &domain.Payment{Document: domain.Document{ID: "pay-1", EstablishmentID: "est-1"}, AppointmentID: a.ID, Amount: decimal.NewFromInt(60), Method: domain.PaymentCard}
	s.ErrorIs(r.PrepareForCreate(s.ctx, p), apperrors.ErrValidation)

	p.Amount = decimal.NewFromInt(50)
	s.Require().NoError(r.PrepareForCreate(s.ctx, p))
	s.Equal(s.client.ID, p.ClientID)
	s.Equal(domain.PaymentRecordPaid, p.Status)
}

func (s *RulesTestSuite) TestPayment_OnlyNotesAndRefundChange() {
	r := rules.NewPaymentRules(s.repos, s.clock)
	current := &domain.Payment{Document: domain.Document{ID: "pay-1", EstablishmentID: "est-1"}, SaleID: "sal-1",
		Amount: decimal.NewFromInt(10), Method: domain.PaymentCash, Status: domain.PaymentRecordPaid}
	next := *current
	next.Amount = decimal.NewFromInt(1000)
	next.Status = domain.PaymentRecordRefunded
	next.Notes = "returned"

	s.Require().NoError(r.PrepareForUpdate(s.ctx, current, &next))
	s.True(next.Amount.Equal(decimal.NewFromInt(10)))
	s.Equal(domain.PaymentRecordRefunded, next.Status)
	s.Equal(fixedNow, *next.RefundedAt)
	s.Equal("returned", next.Notes)

	s.ErrorIs(r.PrepareForUpdate(s.ctx, &next, &next), apperrors.ErrImmutableField)
}

// --- Plan quotas ---

func (s *RulesTestSuite) TestQuota_PerCollectionOnFreePlan() {
	limits, err := domain.LimitsFor(domain.PlanFree)
	s.Require().NoError(err)

	tests := []struct {
		name   string
		limit  int
		fill   func(i int)
		create func(active bool) error
	}{
		{
			name:  "clients",
			limit: limits.MaxClients,
			fill: func(i int) {
				s.Require().NoError(s.repos.ClientRepo.Insert(s.ctx, &domain.Client{
					Document: domain.Document{ID: fmt.Sprintf("cli-fill-%d", i), EstablishmentID: "est-1"},
					Name:     fmt.Sprintf("Client %d", i),
					Phone:    fmt.Sprintf("+551180000%04d", i),
					IsActive: true,
				}))
			},
			create: func(active bool) error {
				return rules.NewClientRules(s.repos, s.clock).PrepareForCreate(s.ctx, &domain.Client{
					Document: domain.Document{ID: "cli-new", EstablishmentID: "est-1"},
					Name:     "Newcomer",
					Phone:    "+5521988887777",
					IsActive: active,
				})
			},
		},
		{
			name:  "employees",
			limit: limits.MaxEmployees,
			fill: func(i int) {
				s.Require().NoError(s.repos.EmployeeRepo.Insert(s.ctx, &domain.Employee{
					Document: domain.Document{ID: fmt.Sprintf("emp-fill-%d", i), EstablishmentID: "est-1"},
					Name:     fmt.Sprintf("Employee %d", i),
					Email:    fmt.Sprintf("employee%d@example.com", i),
					Role:     domain.RoleEmployee,
					IsActive: true,
				}))
			},
			create: func(active bool) error {
				return rules.NewEmployeeRules(s.repos, s.clock).PrepareForCreate(s.ctx, &domain.Employee{
					Document:       domain.Document{ID: "emp-new", EstablishmentID: "est-1"},
					Name:           "Bruno",
					Email:          "bruno@example.com",
					CommissionRate: decimal.NewFromInt(30),
					IsActive:       active,
				})
			},
		},
		{
			name:  "services",
			limit: limits.MaxServices,
			fill: func(i int) {
				s.Require().NoError(s.repos.ServiceRepo.Insert(s.ctx, &domain.Service{
					Document:        domain.Document{ID: fmt.Sprintf("svc-fill-%d", i), EstablishmentID: "est-1"},
					Name:            fmt.Sprintf("Service %d", i),
					NormalizedName:  fmt.Sprintf("service %d", i),
					Price:           decimal.NewFromInt(20),
					DurationMinutes: 30,
					IsActive:        true,
				}))
			},
			create: func(active bool) error {
				return rules.NewServiceRules(s.repos, s.clock).PrepareForCreate(s.ctx, &domain.Service{
					Document:        domain.Document{ID: "svc-new", EstablishmentID: "est-1"},
					Name:            "Manicure",
					Price:           decimal.NewFromInt(35),
					DurationMinutes: 40,
					IsActive:        active,
				})
			},
		},
		{
			name:  "products",
			limit: limits.MaxProducts,
			fill: func(i int) {
				s.Require().NoError(s.repos.ProductRepo.Insert(s.ctx, &domain.Product{
					Document: domain.Document{ID: fmt.Sprintf("prd-fill-%d", i), EstablishmentID: "est-1"},
					Name:     fmt.Sprintf("Product %d", i),
					SKU:      fmt.Sprintf("FILL-%d", i),
					Price:    decimal.NewFromInt(10),
					IsActive: true,
				}))
			},
			create: func(active bool) error {
				return rules.NewProductRules(s.repos, s.clock).PrepareForCreate(s.ctx, &domain.Product{
					Document: domain.Document{ID: "prd-new", EstablishmentID: "est-1"},
					Name:     "Conditioner",
					SKU:      "CD-01",
					Price:    decimal.NewFromInt(28),
					IsActive: active,
				})
			},
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			// SetupTest already stored one active document per collection.
			for i := 0; i < tt.limit-2; i++ {
				tt.fill(i)
			}
			s.NoError(tt.create(true), "one slot left")

			tt.fill(tt.limit - 2)
			s.ErrorIs(tt.create(true), apperrors.ErrQuotaExceeded)
			s.NoError(tt.create(false), "inactive documents do not count")
		})
	}
}

func (s *RulesTestSuite) TestQuota_ReactivationCountsAgainstPlan() {
	limits, err := domain.LimitsFor(domain.PlanFree)
	s.Require().NoError(err)
	for i := 0; i < limits.MaxServices-1; i++ {
		s.Require().NoError(s.repos.ServiceRepo.Insert(s.ctx, &domain.Service{
			Document:        domain.Document{ID: fmt.Sprintf("svc-fill-%d", i), EstablishmentID: "est-1"},
			Name:            fmt.Sprintf("Service %d", i),
			NormalizedName:  fmt.Sprintf("service %d", i),
			Price:           decimal.NewFromInt(20),
			DurationMinutes: 30,
			IsActive:        true,
		}))
	}
	retired := &domain.Service{
		Document:        domain.Document{ID: "svc-old", EstablishmentID: "est-1"},
		Name:            "Perm",
		NormalizedName:  "perm",
		Price:           decimal.NewFromInt(90),
		DurationMinutes: 60,
	}
	s.Require().NoError(s.repos.ServiceRepo.Insert(s.ctx, retired))
	r := rules.NewServiceRules(s.repos, s.clock)

	revived := *retired
	revived.IsActive = true
	s.ErrorIs(r.PrepareForUpdate(s.ctx, retired, &revived), apperrors.ErrQuotaExceeded)

	edited := *retired
	edited.Price = decimal.NewFromInt(80)
	s.NoError(r.PrepareForUpdate(s.ctx, retired, &edited), "inactive edits are free")

	repriced := *s.service
	repriced.Price = decimal.NewFromInt(55)
	s.NoError(r.PrepareForUpdate(s.ctx, s.service, &repriced), "active edits do not re-count")
}

func (s *RulesTestSuite) fillMonth(n int, start time.Time, status domain.AppointmentStatus) {
	for i := 0; i < n; i++ {
		s.Require().NoError(s.repos.AppointmentRepo.Insert(s.ctx, &domain.Appointment{
			Document:   domain.Document{ID: fmt.Sprintf("apt-fill-%s-%d", status, i), EstablishmentID: "est-1"},
			ClientID:   s.client.ID,
			EmployeeID: "emp-other",
			ServiceID:  s.service.ID,
			StartTime:  start,
			EndTime:    start.Add(s.service.Duration()),
			Status:     status,
			Price:      s.service.Price,
		}))
	}
}

func (s *RulesTestSuite) TestQuota_AppointmentsPerMonthFollowLocalMonth() {
	s.est.Timezone = "America/Sao_Paulo"
	s.Require().NoError(s.repos.EstablishmentRepo.Update(s.ctx, s.est))
	limits, err := domain.LimitsFor(domain.PlanFree)
	s.Require().NoError(err)

	s.fillMonth(limits.MaxAppointmentsPerMonth-1, time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC), domain.AppointmentScheduled)
	// 2026-03-31 22:00 in Sao Paulo, already April in UTC
	late := time.Date(2026, 4, 1, 1, 0, 0, 0, time.UTC)
	s.Require().NoError(s.repos.AppointmentRepo.Insert(s.ctx, &domain.Appointment{
		Document:   domain.Document{ID: "apt-late", EstablishmentID: "est-1"},
		ClientID:   s.client.ID,
		EmployeeID: "emp-other",
		ServiceID:  s.service.ID,
		StartTime:  late,
		EndTime:    late.Add(s.service.Duration()),
		Status:     domain.AppointmentConfirmed,
		Price:      s.service.Price,
	}))
	r := rules.NewAppointmentRules(s.repos, s.clock)

	// Tuesday 10:00 local
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 13, 0, 0, 0, time.UTC))), apperrors.ErrQuotaExceeded)
	// Tuesday 2026-04-07 10:00 local opens a fresh month
	s.NoError(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 4, 7, 13, 0, 0, 0, time.UTC))))
}

func (s *RulesTestSuite) TestQuota_CancelledAppointmentsDoNotCount() {
	limits, err := domain.LimitsFor(domain.PlanFree)
	s.Require().NoError(err)
	s.fillMonth(limits.MaxAppointmentsPerMonth-1, time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC), domain.AppointmentScheduled)
	s.fillMonth(5, time.Date(2026, 3, 21, 15, 0, 0, 0, time.UTC), domain.AppointmentCancelled)
	r := rules.NewAppointmentRules(s.repos, s.clock)

	s.NoError(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))))

	s.fillMonth(1, time.Date(2026, 3, 22, 15, 0, 0, 0, time.UTC), domain.AppointmentNoShow)
	s.ErrorIs(r.PrepareForCreate(s.ctx, s.booking(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))), apperrors.ErrQuotaExceeded)
}
