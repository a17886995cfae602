package services

import (
	"context"
	"log/slog"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/salon_management_app/internal/core/ports/services"
	"github.com/SscSPs/salon_management_app/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	EstablishmentAuthorizer portssvc.EstablishmentAuthorizerSvc
	Now                     domain.Clock
}

// BaseOption configures the BaseService embedded in every domain service.
type BaseOption func(*BaseService)

// WithEstablishmentAuthorizer sets the authorizer used for establishment-scoped operations.
func WithEstablishmentAuthorizer(authorizer portssvc.EstablishmentAuthorizerSvc) BaseOption {
	return func(s *BaseService) {
		s.EstablishmentAuthorizer = authorizer
	}
}

// WithClock overrides the wall clock, mostly for tests.
func WithClock(now domain.Clock) BaseOption {
	return func(s *BaseService) {
		s.Now = now
	}
}

func newBaseService(options ...BaseOption) BaseService {
	s := BaseService{Now: domain.SystemClock}
	for _, opt := range options {
		opt(&s)
	}
	if s.Now == nil {
		s.Now = domain.SystemClock
	}
	return s
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeUser checks if a user has the required role for an establishment
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, establishmentID string, requiredRole domain.Role) error {
	if s.EstablishmentAuthorizer != nil {
		return s.EstablishmentAuthorizer.AuthorizeUserAction(ctx, userID, establishmentID, requiredRole)
	}
	s.LogDebug(ctx, "No establishment authorizer provided, access granted by default",
		slog.String("user_id", userID),
		slog.String("establishment_id", establishmentID),
		slog.String("required_role", string(requiredRole)))
	return nil
}

// Membership authorizes the user like AuthorizeUser and returns the resolved membership,
// which carries the caller's profile id (needed to scope client access).
func (s *BaseService) Membership(ctx context.Context, userID, establishmentID string, requiredRole domain.Role) (*domain.Membership, error) {
	if s.EstablishmentAuthorizer == nil {
		s.LogDebug(ctx, "No establishment authorizer provided, membership defaults to admin",
			slog.String("user_id", userID),
			slog.String("establishment_id", establishmentID))
		return &domain.Membership{UserID: userID, EstablishmentID: establishmentID, Role: domain.RoleAdmin}, nil
	}
	if err := s.EstablishmentAuthorizer.AuthorizeUserAction(ctx, userID, establishmentID, requiredRole); err != nil {
		return nil, err
	}
	return s.EstablishmentAuthorizer.ResolveMembership(ctx, userID, establishmentID)
}
