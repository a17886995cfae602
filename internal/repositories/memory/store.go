// Package memory is an in-process document store. It backs STORE_DRIVER=memory and the
// service tests, and mirrors the filtering semantics of the PostgreSQL JSONB store.
package memory

import (
	"encoding/json"
	"sync"

	"github.com/SscSPs/salon_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/salon_management_app/internal/core/ports/repositories"
)

// Store keeps every collection as JSON-encoded documents keyed by id.
type Store struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string]map[string][]byte)}
}

// caller must hold mu
func (s *Store) get(collection, id string) ([]byte, bool) {
	raw, ok := s.data[collection][id]
	return raw, ok
}

// caller must hold mu
func (s *Store) put(collection, id string, raw []byte) {
	c, ok := s.data[collection]
	if !ok {
		c = make(map[string][]byte)
		s.data[collection] = c
	}
	c[id] = raw
}

// caller must hold mu
func (s *Store) remove(collection, id string) bool {
	if _, ok := s.data[collection][id]; !ok {
		return false
	}
	delete(s.data[collection], id)
	return true
}

// NewRepositoryProvider wires every collection of the salon domain onto one store.
func NewRepositoryProvider(store *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		EstablishmentRepo:  NewDocumentRepository[domain.Establishment](store, domain.CollectionEstablishments),
		UserRepo:           NewDocumentRepository[domain.User](store, domain.CollectionUsers),
		AdminRepo:          NewDocumentRepository[domain.Admin](store, domain.CollectionAdmins),
		EmployeeRepo:       NewDocumentRepository[domain.Employee](store, domain.CollectionEmployees),
		ClientRepo:         NewDocumentRepository[domain.Client](store, domain.CollectionClients),
		ServiceRepo:        NewDocumentRepository[domain.Service](store, domain.CollectionServices),
		AppointmentRepo:    NewDocumentRepository[domain.Appointment](store, domain.CollectionAppointments),
		ProductRepo:        NewDocumentRepository[domain.Product](store, domain.CollectionProducts),
		SaleRepo:           NewDocumentRepository[domain.Sale](store, domain.CollectionSales),
		InventoryCountRepo: NewDocumentRepository[domain.InventoryCount](store, domain.CollectionInventoryCounts),
		PaymentRepo:        NewDocumentRepository[domain.Payment](store, domain.CollectionPayments),
		StockLedger:        NewStockLedger(store),
	}
}

func decode[T any](raw []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &v, nil
}
