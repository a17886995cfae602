package rules

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/salon_management_app/internal/apperrors"
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// PaymentRules guards payments recorded against an appointment or a sale.
type PaymentRules struct {
	deps
}

func NewPaymentRules(repos portsrepo.RepositoryProvider, now domain.Clock) *PaymentRules {
	return &PaymentRules{deps: newDeps(repos, now)}
}

func (r *PaymentRules) PrepareForCreate(ctx context.Context, p *domain.Payment) error {
	p.Status = domain.PaymentRecordPaid
	p.RefundedAt = nil
	p.Notes = strings.TrimSpace(p.Notes)
	if p.PaidAt.IsZero() {
		p.PaidAt = r.now()
	}
	p.PaidAt = p.PaidAt.UTC().Truncate(time.Second)
	if err := validateStruct(p); err != nil {
		return err
	}
	if (p.AppointmentID == "") == (p.SaleID == "") {
		return apperrors.Validationf("a payment refers to exactly one appointment or sale")
	}
	if !p.Amount.IsPositive() {
		return apperrors.Validationf("amount must be positive")
	}
	p.Amount = p.Amount.Round(2)

	outstanding, clientID, err := r.outstanding(ctx, p)
	if err != nil {
		return err
	}
	if p.Amount.GreaterThan(outstanding) {
		return apperrors.Validationf("amount %s exceeds the outstanding %s", p.Amount.StringFixed(2), outstanding.StringFixed(2))
	}
	p.ClientID = clientID
	return nil
}

// PrepareForUpdate lets only notes change and a paid payment become refunded.
func (r *PaymentRules) PrepareForUpdate(ctx context.Context, current, next *domain.Payment) error {
	if current.Status == domain.PaymentRecordRefunded {
		return fmt.Errorf("%w: payment %s is refunded", apperrors.ErrImmutableField, current.ID)
	}
	notes := strings.TrimSpace(next.Notes)
	status := next.Status
	refundedAt := next.RefundedAt
	doc := next.Document
	*next = *current
	next.Document = doc
	next.Notes = notes

	switch status {
	case "", domain.PaymentRecordPaid:
	case domain.PaymentRecordRefunded:
		next.Status = domain.PaymentRecordRefunded
		if refundedAt == nil {
			now := r.now()
			refundedAt = &now
		}
		next.RefundedAt = refundedAt
	default:
		return apperrors.Validationf("unknown payment status %s", status)
	}
	return validateStruct(next)
}

// outstanding returns what is still owed on the payment's target and the client it belongs to.
func (r *PaymentRules) outstanding(ctx context.Context, p *domain.Payment) (decimal.Decimal, string, error) {
	if p.AppointmentID != "" {
		a, err := loadInTenant[domain.Appointment](ctx, r.repos.AppointmentRepo, p.EstablishmentID, p.AppointmentID, "appointment")
		if err != nil {
			return decimal.Zero, "", err
		}
		if a.Status == domain.AppointmentCancelled {
			return decimal.Zero, "", apperrors.Validationf("appointment %s is cancelled", a.ID)
		}
		return a.Outstanding(), a.ClientID, nil
	}

	s, err := loadInTenant[domain.Sale](ctx, r.repos.SaleRepo, p.EstablishmentID, p.SaleID, "sale")
	if err != nil {
		return decimal.Zero, "", err
	}
	if s.Status == domain.SaleCancelled {
		return decimal.Zero, "", apperrors.Validationf("sale %s is cancelled", s.ID)
	}
	paid, err := SalePaid(ctx, r.repos.PaymentRepo, s.EstablishmentID, s.ID)
	if err != nil {
		return decimal.Zero, "", err
	}
	out := s.Total.Sub(paid)
	if out.IsNegative() {
		out = decimal.Zero
	}
	return out, s.ClientID, nil
}

// SalePaid sums the non-refunded payments of a sale.
func SalePaid(ctx context.Context, repo portsrepo.DocumentReader[domain.Payment], establishmentID, saleID string) (decimal.Decimal, error) {
	q := portsrepo.Query{EstablishmentID: establishmentID}.
		Where("saleID", portsrepo.OpEqual, saleID).
		Where("status", portsrepo.OpEqual, domain.PaymentRecordPaid)
	payments, err := repo.Find(ctx, q)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, p := range payments {
		sum = sum.Add(p.Amount)
	}
	return sum, nil
}
