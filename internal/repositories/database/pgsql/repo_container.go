package pgsql

import (
	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EstablishmentRepo:  newPgxDocumentRepository[domain.Establishment](dbPool, domain.CollectionEstablishments),
		UserRepo:           newPgxDocumentRepository[domain.User](dbPool, domain.CollectionUsers),
		AdminRepo:          newPgxDocumentRepository[domain.Admin](dbPool, domain.CollectionAdmins),
		EmployeeRepo:       newPgxDocumentRepository[domain.Employee](dbPool, domain.CollectionEmployees),
		ClientRepo:         newPgxDocumentRepository[domain.Client](dbPool, domain.CollectionClients),
		ServiceRepo:        newPgxDocumentRepository[domain.Service](dbPool, domain.CollectionServices),
		AppointmentRepo:    newPgxDocumentRepository[domain.Appointment](dbPool, domain.CollectionAppointments),
		ProductRepo:        newPgxDocumentRepository[domain.Product](dbPool, domain.CollectionProducts),
		SaleRepo:           newPgxDocumentRepository[domain.Sale](dbPool, domain.CollectionSales),
		InventoryCountRepo: newPgxDocumentRepository[domain.InventoryCount](dbPool, domain.CollectionInventoryCounts),
		PaymentRepo:        newPgxDocumentRepository[domain.Payment](dbPool, domain.CollectionPayments),
		StockLedger:        newPgxStockLedger(dbPool),
	}
}
