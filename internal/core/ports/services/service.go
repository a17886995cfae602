package services

import "context"

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Establishment      EstablishmentSvcFacade
	User               UserSvcFacade
	TokenService       TokenSvcFacade
	GoogleOAuthHandler GoogleOAuthHandlerSvcFacade
	Admin              AdminSvcFacade
	Employee           EmployeeSvcFacade
	Client             ClientSvcFacade
	Catalog            CatalogSvcFacade
	Product            ProductSvcFacade
	Appointment        AppointmentSvcFacade
	Sale               SaleSvcFacade
	Inventory          InventorySvcFacade
	Payment            PaymentSvcFacade
	Commission         CommissionSvcFacade
	Reporting          ReportingSvcFacade
}

// BusinessRules is the pre-write hook every stored entity passes through. Implementations
// may mutate the entity into its canonical form.
type BusinessRules[T any] interface {
	PrepareForCreate(ctx context.Context, doc *T) error
	PrepareForUpdate(ctx context.Context, current, next *T) error
}

// DeleteGuard is implemented by rules that can refuse a delete.
type DeleteGuard[T any] interface {
	PrepareForDelete(ctx context.Context, doc *T) error
}
