package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// AdminSvcFacade manages administrator profiles of an establishment.
type AdminSvcFacade interface {
	ListAdmins(ctx context.Context, establishmentID, requestingUserID string, params dto.ListParams) ([]domain.Admin, string, error)
	GetAdmin(ctx context.Context, establishmentID, adminID, requestingUserID string) (*domain.Admin, error)
	CreateAdmin(ctx context.Context, establishmentID string, req dto.CreateAdminRequest, requestingUserID string) (*domain.Admin, error)
	UpdateAdmin(ctx context.Context, establishmentID, adminID string, req dto.UpdateAdminRequest, requestingUserID string) (*domain.Admin, error)
	DeleteAdmin(ctx context.Context, establishmentID, adminID, requestingUserID string) error
}

// EmployeeReaderSvc defines read operations for employees
type EmployeeReaderSvc interface {
	ListEmployees(ctx context.Context, establishmentID, requestingUserID string, params dto.ListEmployeesParams) ([]domain.Employee, string, error)
	GetEmployee(ctx context.Context, establishmentID, employeeID, requestingUserID string) (*domain.Employee, error)
	// ListEmployeesByService lists the active employees able to perform a service.
	ListEmployeesByService(ctx context.Context, establishmentID, serviceID, requestingUserID string) ([]domain.Employee, error)
}

// EmployeeWriterSvc defines write operations for employees
type EmployeeWriterSvc interface {
	CreateEmployee(ctx context.Context, establishmentID string, req dto.CreateEmployeeRequest, requestingUserID string) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, establishmentID, employeeID string, req dto.UpdateEmployeeRequest, requestingUserID string) (*domain.Employee, error)
	DeleteEmployee(ctx context.Context, establishmentID, employeeID, requestingUserID string) error
}

// EmployeeSvcFacade combines all employee-related service interfaces
type EmployeeSvcFacade interface {
	EmployeeReaderSvc
	EmployeeWriterSvc
}

// ClientReaderSvc defines read operations for clients
type ClientReaderSvc interface {
	ListClients(ctx context.Context, establishmentID, requestingUserID string, params dto.ListClientsParams) ([]domain.Client, string, error)
	GetClient(ctx context.Context, establishmentID, clientID, requestingUserID string) (*domain.Client, error)
}

// ClientWriterSvc defines write operations for clients
type ClientWriterSvc interface {
	CreateClient(ctx context.Context, establishmentID string, req dto.CreateClientRequest, requestingUserID string) (*domain.Client, error)
	UpdateClient(ctx context.Context, establishmentID, clientID string, req dto.UpdateClientRequest, requestingUserID string) (*domain.Client, error)
	DeleteClient(ctx context.Context, establishmentID, clientID, requestingUserID string) error
	// JoinEstablishment creates (or links) the client profile of a client account.
	JoinEstablishment(ctx context.Context, establishmentID, userID string, req dto.JoinEstablishmentRequest) (*domain.Client, error)
}

// ClientSvcFacade combines all client-related service interfaces
type ClientSvcFacade interface {
	ClientReaderSvc
	ClientWriterSvc
}
