package services

import (
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, options ...BaseOption) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The establishment service is the authorizer every other service depends on
	container.Establishment = NewEstablishmentService(repos, options...)
	container.User = NewUserService(repos, options...)

	scoped := append(append([]BaseOption{}, options...), WithEstablishmentAuthorizer(container.Establishment))

	container.Admin = NewAdminService(repos, container.User, scoped...)
	container.Employee = NewEmployeeService(repos, container.User, scoped...)
	container.Client = NewClientService(repos, container.User, scoped...)
	container.Catalog = NewCatalogService(repos, scoped...)
	container.Product = NewProductService(repos, scoped...)
	container.Appointment = NewAppointmentService(repos, scoped...)
	container.Sale = NewSaleService(repos, scoped...)
	container.Inventory = NewInventoryService(repos, scoped...)
	container.Payment = NewPaymentService(repos, scoped...)
	container.Commission = NewCommissionService(repos, scoped...)
	container.Reporting = NewReportingService(repos, container.Product, scoped...)

	container.TokenService = NewTokenService(cfg, container.User, options...)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
