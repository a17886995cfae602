package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/core/services"
	"github.com/SscSPs/salon_management_app/internal/dto"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
	"github.com/SscSPs/salon_management_app/internal/repositories/memory"
	"github.com/SscSPs/salon_management_app/internal/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Monday 2026-03-02 09:00 UTC
var mondayMorning = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// Tuesday 2026-03-03 at the given hour, UTC.
func tuesdayAt(hour, minute int) time.Time {
	return time.Date(2026, 3, 3, hour, minute, 0, 0, time.UTC)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

type ServicesTestSuite struct {
	suite.Suite
	ctx   context.Context
	clock *testClock
	cfg   *config.Config
	repos portsrepo.RepositoryProvider
	svc   *portssvc.ServiceContainer

	est        *domain.Establishment
	owner      *domain.User
	haircut    *domain.Service
	employee   *domain.Employee
	clientUser *domain.User
	client     *domain.Client
	shampoo    *domain.Product
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

func (s *ServicesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = &testClock{now: mondayMorning}
	s.repos = memory.NewRepositoryProvider(memory.NewStore())
	s.cfg = &config.Config{
		JWTSecret:                  "test-secret",
		JWTExpiryDuration:          time.Hour,
		JWTIssuer:                  "salon-test",
		RefreshTokenExpiryDuration: 24 * time.Hour,
	}
	s.svc = services.NewServiceContainer(s.cfg, s.repos, services.WithClock(s.clock.Now))

	var err error
	s.est, s.owner, err = s.svc.Establishment.RegisterEstablishment(s.ctx, dto.RegisterEstablishmentRequest{
		Establishment: dto.CreateEstablishmentRequest{
			Name:        "Studio Bela",
			Plan:        domain.PlanPro,
			OpeningTime: "09:00",
			ClosingTime: "18:00",
			WorkingDays: []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday},
		},
		AdminName: "Olga",
		Email:     "owner@example.com",
		Password:  "password123",
	})
	s.Require().NoError(err)

	s.haircut, err = s.svc.Catalog.CreateService(s.ctx, s.est.ID, dto.CreateServiceRequest{
		Name:            "Haircut",
		Price:           decimal.NewFromInt(50),
		DurationMinutes: 45,
	}, s.owner.ID)
	s.Require().NoError(err)

	s.employee, err = s.svc.Employee.CreateEmployee(s.ctx, s.est.ID, dto.CreateEmployeeRequest{
		Name:           "Ana",
		Email:          "ana@example.com",
		Password:       "password123",
		CommissionRate: decimal.NewFromInt(40),
	}, s.owner.ID)
	s.Require().NoError(err)

	s.clientUser, err = s.svc.User.RegisterClient(s.ctx, dto.RegisterClientRequest{
		Name:     "Carla",
		Email:    "carla@example.com",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.client, err = s.svc.Client.JoinEstablishment(s.ctx, s.est.ID, s.clientUser.ID, dto.JoinEstablishmentRequest{Phone: "+55 11 99999-0000"})
	s.Require().NoError(err)

	s.shampoo, err = s.svc.Product.CreateProduct(s.ctx, s.est.ID, dto.CreateProductRequest{
		Name:          "Shampoo",
		Price:         decimal.NewFromInt(30),
		StockQuantity: 5,
		MinStock:      2,
	}, s.owner.ID)
	s.Require().NoError(err)
}

func (s *ServicesTestSuite) book(serviceID string, start time.Time) *domain.Appointment {
	a, err := s.svc.Appointment.CreateAppointment(s.ctx, s.est.ID, dto.CreateAppointmentRequest{
		ClientID:   s.client.ID,
		EmployeeID: s.employee.ID,
		ServiceID:  serviceID,
		StartTime:  start,
	}, s.owner.ID)
	s.Require().NoError(err)
	return a
}

func (s *ServicesTestSuite) appointment(id string) *domain.Appointment {
	a, err := s.repos.AppointmentRepo.FindByID(s.ctx, id)
	s.Require().NoError(err)
	return a
}

func (s *ServicesTestSuite) stock() int {
	p, err := s.repos.ProductRepo.FindByID(s.ctx, s.shampoo.ID)
	s.Require().NoError(err)
	return p.StockQuantity
}

// --- Establishment & membership ---

func (s *ServicesTestSuite) TestRegisterEstablishment_OwnerIsAdmin() {
	s.Equal(s.owner.ID, s.est.OwnerUserID)
	s.Equal(domain.RoleAdmin, s.owner.Role)
	s.Equal(s.est.ID, s.owner.EstablishmentID)

	m, err := s.svc.Establishment.ResolveMembership(s.ctx, s.owner.ID, s.est.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, m.Role)
	s.Equal(s.owner.ProfileID, m.ProfileID)

	admin, err := s.repos.AdminRepo.FindByID(s.ctx, s.owner.ProfileID)
	s.Require().NoError(err)
	s.Equal(s.owner.ID, admin.UserID)
}

func (s *ServicesTestSuite) TestRegisterEstablishment_DuplicateEmailRollsBack() {
	_, _, err := s.svc.Establishment.RegisterEstablishment(s.ctx, dto.RegisterEstablishmentRequest{
		Establishment: dto.CreateEstablishmentRequest{Name: "Second Salon"},
		AdminName:     "Other",
		Email:         "OWNER@example.com",
		Password:      "password123",
	})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	n, err := s.repos.EstablishmentRepo.Count(s.ctx, portsrepo.Query{})
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ServicesTestSuite) TestResolveMembership() {
	m, err := s.svc.Establishment.ResolveMembership(s.ctx, s.employee.UserID, s.est.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoleEmployee, m.Role)
	s.Equal(s.employee.ID, m.ProfileID)

	m, err = s.svc.Establishment.ResolveMembership(s.ctx, s.clientUser.ID, s.est.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoleClient, m.Role)
	s.Equal(s.client.ID, m.ProfileID)

	outsider, err := s.svc.User.RegisterClient(s.ctx, dto.RegisterClientRequest{Name: "Out", Email: "out@example.com", Password: "password123"})
	s.Require().NoError(err)
	_, err = s.svc.Establishment.ResolveMembership(s.ctx, outsider.ID, s.est.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.svc.Establishment.ResolveMembership(s.ctx, s.owner.ID, "missing")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ServicesTestSuite) TestInactiveEmployeeLosesAccess() {
	inactive := false
	_, err := s.svc.Employee.UpdateEmployee(s.ctx, s.est.ID, s.employee.ID, dto.UpdateEmployeeRequest{IsActive: &inactive}, s.owner.ID)
	s.Require().NoError(err)

	_, err = s.svc.Establishment.ResolveMembership(s.ctx, s.employee.UserID, s.est.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestListUserEstablishments() {
	ests, err := s.svc.Establishment.ListUserEstablishments(s.ctx, s.clientUser.ID)
	s.Require().NoError(err)
	s.Require().Len(ests, 1)
	s.Equal(s.est.ID, ests[0].ID)

	ests, err = s.svc.Establishment.ListUserEstablishments(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(ests)
}

func (s *ServicesTestSuite) TestGetUsage() {
	report, err := s.svc.Establishment.GetUsage(s.ctx, s.est.ID, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(domain.PlanPro, report.Plan)
	s.Equal(1, report.Usage.Admins)
	s.Equal(1, report.Usage.Employees)
	s.Equal(1, report.Usage.Clients)
	s.Equal(1, report.Usage.Services)
	s.Equal(1, report.Usage.Products)

	_, err = s.svc.Establishment.GetUsage(s.ctx, s.est.ID, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

// --- Users ---

func (s *ServicesTestSuite) TestAuthenticateUser() {
	u, err := s.svc.User.AuthenticateUser(s.ctx, "Owner@Example.com", "password123")
	s.Require().NoError(err)
	s.Equal(s.owner.ID, u.ID)
	s.Require().NotNil(u.LastLoginAt)
	s.True(u.LastLoginAt.Equal(mondayMorning))

	_, err = s.svc.User.AuthenticateUser(s.ctx, "owner@example.com", "wrong-password")
	s.ErrorIs(err, apperrors.ErrUnauthorized)
	_, err = s.svc.User.AuthenticateUser(s.ctx, "ghost@example.com", "password123")
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *ServicesTestSuite) TestUpdateUserOnlySelf() {
	name := "Carla S."
	u, err := s.svc.User.UpdateUser(s.ctx, s.clientUser.ID, dto.UpdateUserRequest{Name: &name}, s.clientUser.ID)
	s.Require().NoError(err)
	s.Equal("Carla S.", u.Name)

	_, err = s.svc.User.UpdateUser(s.ctx, s.clientUser.ID, dto.UpdateUserRequest{Name: &name}, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestRefreshTokenRoundTrip() {
	raw, expiry, err := s.svc.TokenService.GenerateRefreshToken(s.ctx, s.owner)
	s.Require().NoError(err)
	s.Require().NoError(s.svc.User.UpdateRefreshToken(s.ctx, s.owner.ID, utils.HashRefreshToken(raw), expiry))

	u, err := s.svc.TokenService.ValidateAndParseRefreshToken(s.ctx, s.owner.ID, raw)
	s.Require().NoError(err)
	s.Equal(s.owner.ID, u.ID)

	_, err = s.svc.TokenService.ValidateAndParseRefreshToken(s.ctx, s.owner.ID, "not-the-token")
	s.ErrorIs(err, apperrors.ErrUnauthorized)

	s.clock.now = expiry.Add(time.Minute)
	_, err = s.svc.TokenService.ValidateAndParseRefreshToken(s.ctx, s.owner.ID, raw)
	s.ErrorIs(err, apperrors.ErrRefreshTokenExpired)

	s.Require().NoError(s.svc.User.ClearRefreshToken(s.ctx, s.owner.ID))
	_, err = s.svc.TokenService.ValidateAndParseRefreshToken(s.ctx, s.owner.ID, raw)
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (s *ServicesTestSuite) TestFindOrCreateGoogleUser() {
	linked, err := s.svc.User.FindOrCreateGoogleUser(s.ctx, &domain.GoogleUserInfo{Subject: "g-1", Email: "carla@example.com", EmailVerified: true})
	s.Require().NoError(err)
	s.Equal(s.clientUser.ID, linked.ID)
	s.Equal("g-1", linked.GoogleSub)

	again, err := s.svc.User.FindOrCreateGoogleUser(s.ctx, &domain.GoogleUserInfo{Subject: "g-1", Email: "changed@example.com", EmailVerified: true})
	s.Require().NoError(err)
	s.Equal(s.clientUser.ID, again.ID)

	created, err := s.svc.User.FindOrCreateGoogleUser(s.ctx, &domain.GoogleUserInfo{Subject: "g-2", Email: "new@example.com", EmailVerified: true, Name: "New Person"})
	s.Require().NoError(err)
	s.Equal(domain.RoleClient, created.Role)
	s.Equal("New Person", created.Name)

	_, err = s.svc.User.FindOrCreateGoogleUser(s.ctx, &domain.GoogleUserInfo{Subject: "g-3", Email: "owner@example.com", EmailVerified: false})
	s.ErrorIs(err, apperrors.ErrUnauthorized)
}

// --- Staff & catalogue ---

func (s *ServicesTestSuite) TestEmployeeCannotManageCatalog() {
	_, err := s.svc.Catalog.CreateService(s.ctx, s.est.ID, dto.CreateServiceRequest{Name: "Beard", Price: decimal.NewFromInt(20), DurationMinutes: 20}, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	// clients can browse
	list, _, err := s.svc.Catalog.ListServices(s.ctx, s.est.ID, s.clientUser.ID, dto.ListServicesParams{})
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *ServicesTestSuite) TestCatalogPagination() {
	for _, name := range []string{"Manicure", "Beard", "Coloring"} {
		_, err := s.svc.Catalog.CreateService(s.ctx, s.est.ID, dto.CreateServiceRequest{Name: name, Price: decimal.NewFromInt(20), DurationMinutes: 30}, s.owner.ID)
		s.Require().NoError(err)
	}

	page, next, err := s.svc.Catalog.ListServices(s.ctx, s.est.ID, s.owner.ID, dto.ListServicesParams{ListParams: dto.ListParams{Limit: 2}})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("Beard", page[0].Name)
	s.Equal("Coloring", page[1].Name)
	s.NotEmpty(next)

	page, next, err = s.svc.Catalog.ListServices(s.ctx, s.est.ID, s.owner.ID, dto.ListServicesParams{ListParams: dto.ListParams{Limit: 2, NextToken: next}})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("Haircut", page[0].Name)
	s.Equal("Manicure", page[1].Name)
	s.Empty(next)

	_, _, err = s.svc.Catalog.ListServices(s.ctx, s.est.ID, s.owner.ID, dto.ListServicesParams{ListParams: dto.ListParams{NextToken: "garbage"}})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ServicesTestSuite) TestOtherTenantDocumentsLookMissing() {
	other, otherOwner, err := s.svc.Establishment.RegisterEstablishment(s.ctx, dto.RegisterEstablishmentRequest{
		Establishment: dto.CreateEstablishmentRequest{Name: "Other Salon"},
		AdminName:     "Bia",
		Email:         "bia@example.com",
		Password:      "password123",
	})
	s.Require().NoError(err)

	_, err = s.svc.Catalog.GetService(s.ctx, other.ID, s.haircut.ID, otherOwner.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.svc.Catalog.GetService(s.ctx, s.est.ID, s.haircut.ID, otherOwner.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestCreateAdminWithLogin() {
	admin, err := s.svc.Admin.CreateAdmin(s.ctx, s.est.ID, dto.CreateAdminRequest{Name: "Rita", Email: "rita@example.com", Password: "password123"}, s.owner.ID)
	s.Require().NoError(err)
	s.NotEmpty(admin.UserID)

	m, err := s.svc.Establishment.ResolveMembership(s.ctx, admin.UserID, s.est.ID)
	s.Require().NoError(err)
	s.Equal(domain.RoleAdmin, m.Role)

	s.Require().NoError(s.svc.Admin.DeleteAdmin(s.ctx, s.est.ID, admin.ID, s.owner.ID))
	_, err = s.repos.UserRepo.FindByID(s.ctx, admin.UserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *ServicesTestSuite) TestCreateEmployeeDuplicateEmailRollsBackProfile() {
	_, err := s.svc.Employee.CreateEmployee(s.ctx, s.est.ID, dto.CreateEmployeeRequest{
		Name:     "Copy",
		Email:    "carla@example.com",
		Password: "password123",
	}, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	n, err := s.repos.EmployeeRepo.Count(s.ctx, portsrepo.Query{EstablishmentID: s.est.ID})
	s.Require().NoError(err)
	s.Equal(1, n)
}

func (s *ServicesTestSuite) TestListEmployeesByService() {
	coloring, err := s.svc.Catalog.CreateService(s.ctx, s.est.ID, dto.CreateServiceRequest{Name: "Coloring", Price: decimal.NewFromInt(100), DurationMinutes: 90}, s.owner.ID)
	s.Require().NoError(err)
	_, err = s.svc.Employee.CreateEmployee(s.ctx, s.est.ID, dto.CreateEmployeeRequest{
		Name:       "Bruno",
		Email:      "bruno@example.com",
		ServiceIDs: []string{s.haircut.ID},
	}, s.owner.ID)
	s.Require().NoError(err)

	both, err := s.svc.Employee.ListEmployeesByService(s.ctx, s.est.ID, s.haircut.ID, s.clientUser.ID)
	s.Require().NoError(err)
	s.Len(both, 2)

	onlyAna, err := s.svc.Employee.ListEmployeesByService(s.ctx, s.est.ID, coloring.ID, s.clientUser.ID)
	s.Require().NoError(err)
	s.Require().Len(onlyAna, 1)
	s.Equal("Ana", onlyAna[0].Name)
}

// --- Clients ---

func (s *ServicesTestSuite) TestJoinEstablishmentLinksFrontDeskRecord() {
	record, err := s.svc.Client.CreateClient(s.ctx, s.est.ID, dto.CreateClientRequest{Name: "Dora", Phone: "+55 11 98888-1111"}, s.employee.UserID)
	s.Require().NoError(err)

	dora, err := s.svc.User.RegisterClient(s.ctx, dto.RegisterClientRequest{Name: "Dora", Email: "dora@example.com", Password: "password123"})
	s.Require().NoError(err)
	linked, err := s.svc.Client.JoinEstablishment(s.ctx, s.est.ID, dora.ID, dto.JoinEstablishmentRequest{Phone: "+5511988881111"})
	s.Require().NoError(err)
	s.Equal(record.ID, linked.ID)
	s.Equal(dora.ID, linked.UserID)

	_, err = s.svc.Client.JoinEstablishment(s.ctx, s.est.ID, dora.ID, dto.JoinEstablishmentRequest{Phone: "+5511977770000"})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.svc.Client.JoinEstablishment(s.ctx, s.est.ID, s.owner.ID, dto.JoinEstablishmentRequest{Phone: "+5511966660000"})
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestClientSeesOnlyOwnRecord() {
	other, err := s.svc.Client.CreateClient(s.ctx, s.est.ID, dto.CreateClientRequest{Name: "Eva", Phone: "+5511955550000"}, s.owner.ID)
	s.Require().NoError(err)

	own, err := s.svc.Client.GetClient(s.ctx, s.est.ID, s.client.ID, s.clientUser.ID)
	s.Require().NoError(err)
	s.Equal(s.client.ID, own.ID)

	_, err = s.svc.Client.GetClient(s.ctx, s.est.ID, other.ID, s.clientUser.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, _, err = s.svc.Client.ListClients(s.ctx, s.est.ID, s.clientUser.ID, dto.ListClientsParams{})
	s.ErrorIs(err, apperrors.ErrForbidden)

	notes := "VIP"
	updated, err := s.svc.Client.UpdateClient(s.ctx, s.est.ID, s.client.ID, dto.UpdateClientRequest{Notes: &notes}, s.clientUser.ID)
	s.Require().NoError(err)
	s.Empty(updated.Notes)

	byPhone, _, err := s.svc.Client.ListClients(s.ctx, s.est.ID, s.owner.ID, dto.ListClientsParams{Phone: "+55 (11) 95555-0000"})
	s.Require().NoError(err)
	s.Require().Len(byPhone, 1)
	s.Equal(other.ID, byPhone[0].ID)
}

// --- Appointments ---

func (s *ServicesTestSuite) TestClientBooksForThemselves() {
	other, err := s.svc.Client.CreateClient(s.ctx, s.est.ID, dto.CreateClientRequest{Name: "Eva", Phone: "+5511955550000"}, s.owner.ID)
	s.Require().NoError(err)
	price := decimal.NewFromInt(1)

	own, err := s.svc.Appointment.CreateAppointment(s.ctx, s.est.ID, dto.CreateAppointmentRequest{
		ClientID:   other.ID,
		EmployeeID: s.employee.ID,
		ServiceID:  s.haircut.ID,
		StartTime:  tuesdayAt(10, 0),
		Status:     domain.AppointmentConfirmed,
		Price:      &price,
	}, s.clientUser.ID)
	s.Require().NoError(err)
	s.Equal(s.client.ID, own.ClientID)
	s.Equal(domain.AppointmentScheduled, own.Status)
	s.True(own.Price.Equal(decimal.NewFromInt(50)))
	s.True(own.EndTime.Equal(tuesdayAt(10, 45)))

	foreign, err := s.svc.Appointment.CreateAppointment(s.ctx, s.est.ID, dto.CreateAppointmentRequest{
		ClientID:   other.ID,
		EmployeeID: s.employee.ID,
		ServiceID:  s.haircut.ID,
		StartTime:  tuesdayAt(11, 0),
	}, s.owner.ID)
	s.Require().NoError(err)

	list, _, err := s.svc.Appointment.ListAppointments(s.ctx, s.est.ID, s.clientUser.ID, dto.ListAppointmentsParams{})
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(own.ID, list[0].ID)

	all, _, err := s.svc.Appointment.ListAppointments(s.ctx, s.est.ID, s.owner.ID, dto.ListAppointmentsParams{Date: "2026-03-03"})
	s.Require().NoError(err)
	s.Len(all, 2)

	_, err = s.svc.Appointment.GetAppointment(s.ctx, s.est.ID, foreign.ID, s.clientUser.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
	_, err = s.svc.Appointment.CancelAppointment(s.ctx, s.est.ID, foreign.ID, "not mine", s.clientUser.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *ServicesTestSuite) TestDoubleBookingIsRejected() {
	s.book(s.haircut.ID, tuesdayAt(10, 0))

	_, err := s.svc.Appointment.CreateAppointment(s.ctx, s.est.ID, dto.CreateAppointmentRequest{
		ClientID:   s.client.ID,
		EmployeeID: s.employee.ID,
		ServiceID:  s.haircut.ID,
		StartTime:  tuesdayAt(10, 30),
	}, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrScheduleConflict)
}

func (s *ServicesTestSuite) TestAvailableSlots() {
	s.book(s.haircut.ID, tuesdayAt(10, 0))

	slots, err := s.svc.Appointment.AvailableSlots(s.ctx, s.est.ID, s.clientUser.ID, dto.AvailableSlotsParams{
		EmployeeID: s.employee.ID,
		ServiceID:  s.haircut.ID,
		Date:       "2026-03-03",
	})
	s.Require().NoError(err)
	// 34 quarter-hour starts fit a 45 minute service in 09:00-18:00; five overlap the booking
	s.Require().Len(slots, 29)
	s.True(slots[0].Start.Equal(tuesdayAt(9, 0)))
	s.True(slots[len(slots)-1].Start.Equal(tuesdayAt(17, 15)))
	for _, slot := range slots {
		s.False(slot.Start.Before(tuesdayAt(10, 45)) && slot.End.After(tuesdayAt(10, 0)), "slot %s overlaps the booking", slot.Start)
	}

	sunday, err := s.svc.Appointment.AvailableSlots(s.ctx, s.est.ID, s.clientUser.ID, dto.AvailableSlotsParams{
		EmployeeID: s.employee.ID,
		ServiceID:  s.haircut.ID,
		Date:       "2026-03-08",
	})
	s.Require().NoError(err)
	s.Empty(sunday)
}

func (s *ServicesTestSuite) TestAppointmentLifecycle() {
	a := s.book(s.haircut.ID, tuesdayAt(10, 0))

	confirmed, err := s.svc.Appointment.ConfirmAppointment(s.ctx, s.est.ID, a.ID, s.clientUser.ID)
	s.Require().NoError(err)
	s.Equal(domain.AppointmentConfirmed, confirmed.Status)

	_, err = s.svc.Appointment.ConfirmAppointment(s.ctx, s.est.ID, a.ID, s.clientUser.ID)
	s.ErrorIs(err, apperrors.ErrValidation)

	// completing before the start is refused
	_, err = s.svc.Appointment.CompleteAppointment(s.ctx, s.est.ID, a.ID, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Appointment.CompleteAppointment(s.ctx, s.est.ID, a.ID, s.clientUser.ID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	cancelled, err := s.svc.Appointment.CancelAppointment(s.ctx, s.est.ID, a.ID, "sick", s.clientUser.ID)
	s.Require().NoError(err)
	s.Equal(domain.AppointmentCancelled, cancelled.Status)
	s.Equal("sick", cancelled.CancelReason)

	_, err = s.svc.Appointment.ConfirmAppointment(s.ctx, s.est.ID, a.ID, s.clientUser.ID)
	s.ErrorIs(err, apperrors.ErrImmutableField)
}

func (s *ServicesTestSuite) TestRescheduleByClient() {
	a := s.book(s.haircut.ID, tuesdayAt(10, 0))
	start := tuesdayAt(14, 0)
	price := decimal.NewFromInt(5)

	moved, err := s.svc.Appointment.UpdateAppointment(s.ctx, s.est.ID, a.ID, dto.UpdateAppointmentRequest{StartTime: &start, Price: &price}, s.clientUser.ID)
	s.Require().NoError(err)
	s.True(moved.StartTime.Equal(start))
	s.True(moved.EndTime.Equal(tuesdayAt(14, 45)))
	s.True(moved.Price.Equal(decimal.NewFromInt(50)))
}

func (s *ServicesTestSuite) TestSweepPastAppointments() {
	scheduled := s.book(s.haircut.ID, tuesdayAt(10, 0))
	confirmed := s.book(s.haircut.ID, tuesdayAt(11, 0))
	future := s.book(s.haircut.ID, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))
	_, err := s.svc.Appointment.ConfirmAppointment(s.ctx, s.est.ID, confirmed.ID, s.owner.ID)
	s.Require().NoError(err)

	s.clock.now = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	n, err := s.svc.Appointment.SweepPastAppointments(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, n)

	s.Equal(domain.AppointmentNoShow, s.appointment(scheduled.ID).Status)
	swept := s.appointment(confirmed.ID)
	s.Equal(domain.AppointmentCompleted, swept.Status)
	s.Equal(services.SystemUserID, swept.LastUpdatedBy)
	s.Equal(domain.AppointmentScheduled, s.appointment(future.ID).Status)

	n, err = s.svc.Appointment.SweepPastAppointments(s.ctx)
	s.Require().NoError(err)
	s.Zero(n)
}

// --- Sales & inventory ---

func (s *ServicesTestSuite) TestSaleMovesStock() {
	sale, err := s.svc.Sale.CreateSale(s.ctx, s.est.ID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: s.shampoo.ID, Quantity: 2}},
		PaymentMethod: domain.PaymentCash,
	}, s.employee.UserID)
	s.Require().NoError(err)
	s.True(sale.Total.Equal(decimal.NewFromInt(60)))
	s.Equal(3, s.stock())

	items := []dto.SaleItemRequest{{ProductID: s.shampoo.ID, Quantity: 4}}
	_, err = s.svc.Sale.UpdateSale(s.ctx, s.est.ID, sale.ID, dto.UpdateSaleRequest{Items: &items}, s.employee.UserID)
	s.Require().NoError(err)
	s.Equal(1, s.stock())

	_, err = s.svc.Sale.CreateSale(s.ctx, s.est.ID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: s.shampoo.ID, Quantity: 2}},
		PaymentMethod: domain.PaymentCash,
	}, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrInsufficientStock)
	s.Equal(1, s.stock())

	cancelled, err := s.svc.Sale.CancelSale(s.ctx, s.est.ID, sale.ID, s.employee.UserID)
	s.Require().NoError(err)
	s.Equal(domain.SaleCancelled, cancelled.Status)
	s.Equal(5, s.stock())

	_, err = s.svc.Sale.CancelSale(s.ctx, s.est.ID, sale.ID, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrImmutableField)
}

func (s *ServicesTestSuite) TestDeleteSaleRestoresStock() {
	sale, err := s.svc.Sale.CreateSale(s.ctx, s.est.ID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: s.shampoo.ID, Quantity: 1}},
		PaymentMethod: domain.PaymentCard,
	}, s.employee.UserID)
	s.Require().NoError(err)
	s.Equal(4, s.stock())

	s.ErrorIs(s.svc.Sale.DeleteSale(s.ctx, s.est.ID, sale.ID, s.employee.UserID), apperrors.ErrForbidden)
	s.Require().NoError(s.svc.Sale.DeleteSale(s.ctx, s.est.ID, sale.ID, s.owner.ID))
	s.Equal(5, s.stock())
}

func (s *ServicesTestSuite) TestApplyInventoryCount() {
	count, err := s.svc.Inventory.CreateInventoryCount(s.ctx, s.est.ID, dto.CreateInventoryCountRequest{
		Lines: []dto.InventoryLineRequest{{ProductID: s.shampoo.ID, CountedQuantity: 9}},
	}, s.employee.UserID)
	s.Require().NoError(err)
	s.Equal(domain.InventoryDraft, count.Status)

	_, err = s.svc.Inventory.ApplyInventoryCount(s.ctx, s.est.ID, count.ID, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	applied, err := s.svc.Inventory.ApplyInventoryCount(s.ctx, s.est.ID, count.ID, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(domain.InventoryApplied, applied.Status)
	s.Equal(9, s.stock())

	_, err = s.svc.Inventory.ApplyInventoryCount(s.ctx, s.est.ID, count.ID, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrImmutableField)
	s.ErrorIs(s.svc.Inventory.DeleteInventoryCount(s.ctx, s.est.ID, count.ID, s.owner.ID), apperrors.ErrImmutableField)
}

// --- Payments ---

func (s *ServicesTestSuite) TestPaymentsTrackAppointmentBalance() {
	a := s.book(s.haircut.ID, tuesdayAt(10, 0))

	first, err := s.svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(20), Method: domain.PaymentCash}, s.employee.UserID)
	s.Require().NoError(err)
	s.Equal(s.client.ID, first.ClientID)
	s.Equal(domain.PaymentPartial, s.appointment(a.ID).PaymentStatus)

	_, err = s.svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(40), Method: domain.PaymentCard}, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(30), Method: domain.PaymentCard}, s.employee.UserID)
	s.Require().NoError(err)
	paid := s.appointment(a.ID)
	s.Equal(domain.PaymentPaid, paid.PaymentStatus)
	s.True(paid.PaidAmount.Equal(decimal.NewFromInt(50)))

	list, _, err := s.svc.Payment.ListPayments(s.ctx, s.est.ID, s.employee.UserID, dto.ListPaymentsParams{AppointmentID: a.ID})
	s.Require().NoError(err)
	s.Len(list, 2)

	s.ErrorIs(s.svc.Appointment.DeleteAppointment(s.ctx, s.est.ID, a.ID, s.owner.ID), apperrors.ErrInUse)

	_, err = s.svc.Payment.RefundPayment(s.ctx, s.est.ID, first.ID, dto.RefundPaymentRequest{}, s.employee.UserID)
	s.ErrorIs(err, apperrors.ErrForbidden)

	refunded, err := s.svc.Payment.RefundPayment(s.ctx, s.est.ID, first.ID, dto.RefundPaymentRequest{Notes: "duplicate charge"}, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentRecordRefunded, refunded.Status)
	s.Equal("duplicate charge", refunded.Notes)
	s.NotNil(refunded.RefundedAt)
	after := s.appointment(a.ID)
	s.Equal(domain.PaymentPartial, after.PaymentStatus)
	s.True(after.PaidAmount.Equal(decimal.NewFromInt(30)))

	_, err = s.svc.Payment.RefundPayment(s.ctx, s.est.ID, first.ID, dto.RefundPaymentRequest{}, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrImmutableField)
}

// hookedAppointments runs beforeUpdate once, ahead of the next appointment write.
type hookedAppointments struct {
	portsrepo.DocumentRepository[domain.Appointment]
	beforeUpdate func(a *domain.Appointment) error
}

func (r *hookedAppointments) Update(ctx context.Context, a *domain.Appointment) error {
	if hook := r.beforeUpdate; hook != nil {
		r.beforeUpdate = nil
		if err := hook(a); err != nil {
			return err
		}
	}
	return r.DocumentRepository.Update(ctx, a)
}

// withHookedAppointments returns a container sharing the suite's store whose appointment
// writes go through the returned hook.
func (s *ServicesTestSuite) withHookedAppointments() (*portssvc.ServiceContainer, *hookedAppointments) {
	hooked := &hookedAppointments{DocumentRepository: s.repos.AppointmentRepo}
	repos := s.repos
	repos.AppointmentRepo = hooked
	return services.NewServiceContainer(s.cfg, repos, services.WithClock(s.clock.Now)), hooked
}

func (s *ServicesTestSuite) TestPaymentRecheckedAfterConcurrentPayment() {
	a := s.book(s.haircut.ID, tuesdayAt(10, 0))
	svc, hooked := s.withHookedAppointments()

	// another payment of 30 lands between the rule check and the write
	hooked.beforeUpdate = func(*domain.Appointment) error {
		other := s.appointment(a.ID)
		other.ApplyPayment(decimal.NewFromInt(30))
		return s.repos.AppointmentRepo.Update(s.ctx, other)
	}
	_, err := svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(30), Method: domain.PaymentCash}, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrValidation)

	after := s.appointment(a.ID)
	s.True(after.PaidAmount.Equal(decimal.NewFromInt(30)), "paid %s", after.PaidAmount)
	s.Equal(domain.PaymentPartial, after.PaymentStatus)

	list, _, err := s.svc.Payment.ListPayments(s.ctx, s.est.ID, s.owner.ID, dto.ListPaymentsParams{AppointmentID: a.ID})
	s.Require().NoError(err)
	s.Empty(list, "the rejected payment is rolled back")

	_, err = svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(20), Method: domain.PaymentCash}, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentPaid, s.appointment(a.ID).PaymentStatus)
}

func (s *ServicesTestSuite) TestRefundRestoredWhenAppointmentWriteFails() {
	a := s.book(s.haircut.ID, tuesdayAt(10, 0))
	paid, err := s.svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(50), Method: domain.PaymentCard, Notes: "card"}, s.owner.ID)
	s.Require().NoError(err)
	svc, hooked := s.withHookedAppointments()

	writeErr := errors.New("connection reset")
	hooked.beforeUpdate = func(*domain.Appointment) error { return writeErr }
	_, err = svc.Payment.RefundPayment(s.ctx, s.est.ID, paid.ID, dto.RefundPaymentRequest{Notes: "chargeback"}, s.owner.ID)
	s.ErrorIs(err, writeErr)

	restored, err := s.repos.PaymentRepo.FindByID(s.ctx, paid.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentRecordPaid, restored.Status)
	s.Nil(restored.RefundedAt)
	s.Equal("card", restored.Notes)
	s.True(s.appointment(a.ID).PaidAmount.Equal(decimal.NewFromInt(50)))

	refunded, err := svc.Payment.RefundPayment(s.ctx, s.est.ID, paid.ID, dto.RefundPaymentRequest{Notes: "chargeback"}, s.owner.ID)
	s.Require().NoError(err)
	s.Equal(domain.PaymentRecordRefunded, refunded.Status)
	after := s.appointment(a.ID)
	s.True(after.PaidAmount.IsZero())
	s.Equal(domain.PaymentUnpaid, after.PaymentStatus)
}

func (s *ServicesTestSuite) TestPaymentForCancelledAppointmentIsRejected() {
	a := s.book(s.haircut.ID, tuesdayAt(10, 0))
	_, err := s.svc.Appointment.CancelAppointment(s.ctx, s.est.ID, a.ID, "", s.owner.ID)
	s.Require().NoError(err)

	_, err = s.svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: a.ID, Amount: decimal.NewFromInt(10), Method: domain.PaymentCash}, s.owner.ID)
	s.ErrorIs(err, apperrors.ErrValidation)
}

// --- Commission & reports ---

func (s *ServicesTestSuite) TestCommissionPrecedence() {
	override := decimal.NewFromInt(10)
	coloring, err := s.svc.Catalog.CreateService(s.ctx, s.est.ID, dto.CreateServiceRequest{
		Name:               "Coloring",
		Price:              decimal.NewFromInt(100),
		DurationMinutes:    60,
		CommissionOverride: &override,
	}, s.owner.ID)
	s.Require().NoError(err)
	cut := s.book(s.haircut.ID, tuesdayAt(10, 0))
	color := s.book(coloring.ID, tuesdayAt(11, 0))

	s.clock.now = tuesdayAt(13, 0)
	for _, id := range []string{cut.ID, color.ID} {
		_, err := s.svc.Appointment.CompleteAppointment(s.ctx, s.est.ID, id, s.employee.UserID)
		s.Require().NoError(err)
	}

	period := dto.PeriodParams{From: "2026-03-03", To: "2026-03-03"}
	summary, err := s.svc.Commission.EmployeeCommission(s.ctx, s.est.ID, s.employee.UserID, dto.CommissionParams{PeriodParams: period, EmployeeID: s.employee.ID})
	s.Require().NoError(err)
	s.Equal(2, summary.Appointments)
	s.True(summary.Revenue.Equal(decimal.NewFromInt(150)))
	s.True(summary.Total.Equal(decimal.NewFromInt(30)))
	s.Require().Len(summary.Lines, 2)
	s.Equal(services.CommissionSourceEmployee, summary.Lines[0].Source)
	s.True(summary.Lines[0].Commission.Equal(decimal.NewFromInt(20)))
	s.Equal(services.CommissionSourceService, summary.Lines[1].Source)
	s.True(summary.Lines[1].Commission.Equal(decimal.NewFromInt(10)))

	rule := "durationMinutes >= 60 ? price * 0.5 : price * 0.1"
	_, err = s.svc.Employee.UpdateEmployee(s.ctx, s.est.ID, s.employee.ID, dto.UpdateEmployeeRequest{CommissionRule: &rule}, s.owner.ID)
	s.Require().NoError(err)

	all, err := s.svc.Commission.EstablishmentCommissions(s.ctx, s.est.ID, s.owner.ID, period)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal(services.CommissionSourceRule, all[0].Lines[0].Source)
	s.True(all[0].Lines[0].Commission.Equal(decimal.NewFromInt(5)))
	s.True(all[0].Lines[1].Commission.Equal(decimal.NewFromInt(50)))
	s.True(all[0].Total.Equal(decimal.NewFromInt(55)))
}

func (s *ServicesTestSuite) TestCommissionAccess() {
	period := dto.PeriodParams{From: "2026-03-03", To: "2026-03-03"}
	_, err := s.svc.Commission.EmployeeCommission(s.ctx, s.est.ID, s.employee.UserID, dto.CommissionParams{PeriodParams: period, EmployeeID: "someone-else"})
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.svc.Commission.EstablishmentCommissions(s.ctx, s.est.ID, s.employee.UserID, period)
	s.ErrorIs(err, apperrors.ErrForbidden)

	_, err = s.svc.Commission.EstablishmentCommissions(s.ctx, s.est.ID, s.owner.ID, dto.PeriodParams{From: "2026-03-04", To: "2026-03-03"})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ServicesTestSuite) TestPeriodReport() {
	done := s.book(s.haircut.ID, tuesdayAt(10, 0))
	dropped := s.book(s.haircut.ID, tuesdayAt(15, 0))

	s.clock.now = tuesdayAt(12, 0)
	_, err := s.svc.Appointment.CompleteAppointment(s.ctx, s.est.ID, done.ID, s.employee.UserID)
	s.Require().NoError(err)
	_, err = s.svc.Appointment.CancelAppointment(s.ctx, s.est.ID, dropped.ID, "", s.owner.ID)
	s.Require().NoError(err)
	_, err = s.svc.Payment.RecordPayment(s.ctx, s.est.ID, dto.RecordPaymentRequest{AppointmentID: done.ID, Amount: decimal.NewFromInt(50), Method: domain.PaymentCard}, s.owner.ID)
	s.Require().NoError(err)
	_, err = s.svc.Sale.CreateSale(s.ctx, s.est.ID, dto.CreateSaleRequest{
		Items:         []dto.SaleItemRequest{{ProductID: s.shampoo.ID, Quantity: 3}},
		PaymentMethod: domain.PaymentPix,
	}, s.owner.ID)
	s.Require().NoError(err)

	report, err := s.svc.Reporting.PeriodReport(s.ctx, s.est.ID, s.owner.ID, dto.PeriodParams{From: "2026-03-03", To: "2026-03-03"})
	s.Require().NoError(err)
	s.Equal(1, report.AppointmentsByStatus[domain.AppointmentCompleted])
	s.Equal(1, report.AppointmentsByStatus[domain.AppointmentCancelled])
	s.True(report.ServiceRevenue.Equal(decimal.NewFromInt(50)))
	s.Equal(1, report.SalesCount)
	s.True(report.SalesRevenue.Equal(decimal.NewFromInt(90)))
	s.True(report.PaymentsByMethod[domain.PaymentCard].Equal(decimal.NewFromInt(50)))
	s.True(report.PaymentsTotal.Equal(decimal.NewFromInt(50)))
	s.Require().Len(report.TopServices, 1)
	s.Equal("Haircut", report.TopServices[0].ServiceName)

	low, err := s.svc.Reporting.LowStockReport(s.ctx, s.est.ID, s.owner.ID)
	s.Require().NoError(err)
	s.Require().Len(low, 1)
	s.Equal(s.shampoo.ID, low[0].ID)

	_, err = s.svc.Reporting.PeriodReport(s.ctx, s.est.ID, s.employee.UserID, dto.PeriodParams{From: "2026-03-03", To: "2026-03-03"})
	s.ErrorIs(err, apperrors.ErrForbidden)
}
