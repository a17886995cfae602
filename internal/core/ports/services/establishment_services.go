package services

import (
	"context"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	"github.com/SscSPs/salon_management_app/internal/dto"
)

// EstablishmentReaderSvc defines read operations for establishments
type EstablishmentReaderSvc interface {
	// GetEstablishment retrieves an establishment the user is a member of.
	GetEstablishment(ctx context.Context, establishmentID, requestingUserID string) (*domain.Establishment, error)

	// ListUserEstablishments lists the establishments the user works at or is a client of.
	ListUserEstablishments(ctx context.Context, userID string) ([]domain.Establishment, error)

	// GetUsage returns the plan limits and current usage. Admins only.
	GetUsage(ctx context.Context, establishmentID, requestingUserID string) (*domain.UsageReport, error)
}

// EstablishmentWriterSvc defines write operations for establishments
type EstablishmentWriterSvc interface {
	// RegisterEstablishment onboards a new establishment together with its first admin account.
	RegisterEstablishment(ctx context.Context, req dto.RegisterEstablishmentRequest) (*domain.Establishment, *domain.User, error)

	// UpdateEstablishment updates an establishment. Admins only.
	UpdateEstablishment(ctx context.Context, establishmentID string, req dto.UpdateEstablishmentRequest, requestingUserID string) (*domain.Establishment, error)
}

// EstablishmentAuthorizerSvc defines operations for establishment authorization
type EstablishmentAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user holds at least requiredRole in the establishment.
	AuthorizeUserAction(ctx context.Context, userID, establishmentID string, requiredRole domain.Role) error

	// ResolveMembership returns the user's role and profile inside the establishment.
	// Returns apperrors.ErrForbidden when the user does not belong to it.
	ResolveMembership(ctx context.Context, userID, establishmentID string) (*domain.Membership, error)
}

// EstablishmentSvcFacade combines all establishment-related service interfaces
type EstablishmentSvcFacade interface {
	EstablishmentReaderSvc
	EstablishmentWriterSvc
	EstablishmentAuthorizerSvc
}
