package rules

import (
	"context"
	"time"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// MeasureUsage counts the quota-relevant documents of an establishment. Only active
// admins, employees, clients, services and products count; appointments count for the
// calendar month of now unless cancelled.
func MeasureUsage(ctx context.Context, repos portsrepo.RepositoryProvider, est *domain.Establishment, now domain.Clock) (domain.Usage, error) {
	if now == nil {
		now = domain.SystemClock
	}
	q := activeOnly()
	q.EstablishmentID = est.ID

	var usage domain.Usage
	counts := []struct {
		count countFunc
		into  *int
	}{
		{repos.AdminRepo.Count, &usage.Admins},
		{repos.EmployeeRepo.Count, &usage.Employees},
		{repos.ClientRepo.Count, &usage.Clients},
		{repos.ServiceRepo.Count, &usage.Services},
		{repos.ProductRepo.Count, &usage.Products},
	}
	for _, c := range counts {
		n, err := c.count(ctx, q)
		if err != nil {
			return domain.Usage{}, err
		}
		*c.into = n
	}

	from, to := monthBounds(now(), est.Location())
	n, err := repos.AppointmentRepo.Count(ctx, monthlyAppointments(est.ID, from, to))
	if err != nil {
		return domain.Usage{}, err
	}
	usage.AppointmentsThisMonth = n
	return usage, nil
}

func monthlyAppointments(establishmentID string, from, to time.Time) portsrepo.Query {
	return portsrepo.Query{EstablishmentID: establishmentID}.
		Where("startTime", portsrepo.OpGreaterEqual, from).
		Where("startTime", portsrepo.OpLess, to).
		Where("status", portsrepo.OpNotEqual, domain.AppointmentCancelled)
}
