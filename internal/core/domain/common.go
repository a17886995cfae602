package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
	Version       int64     `json:"version"`
}

// Document is embedded by every stored entity. It carries the document id, the
// owning establishment (tenant) and the audit trail.
type Document struct {
	ID              string `json:"id"`
	EstablishmentID string `json:"establishmentID"`
	AuditFields
}

// Entity is implemented by pointers to every stored entity through the embedded Document.
type Entity interface {
	DocumentID() string
	SetDocumentID(id string)
	TenantID() string
	SetTenantID(establishmentID string)
	Audit() *AuditFields
}

// EntityPtr constrains a type parameter to *T where *T is an Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}

func (d *Document) DocumentID() string { return d.ID }

func (d *Document) SetDocumentID(id string) { d.ID = id }

func (d *Document) TenantID() string { return d.EstablishmentID }

func (d *Document) SetTenantID(establishmentID string) { d.EstablishmentID = establishmentID }

func (d *Document) Audit() *AuditFields { return &d.AuditFields }

// Clock supplies the current time to services and rules.
type Clock func() time.Time

// SystemClock returns the wall clock in UTC truncated to seconds, the precision timestamps are stored with.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// StampCreated fills all audit fields for a new document.
func (a *AuditFields) StampCreated(userID string, now time.Time) {
	a.CreatedAt = now
	a.CreatedBy = userID
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
	a.Version = 1
}

// StampUpdated refreshes the last-updated audit fields.
func (a *AuditFields) StampUpdated(userID string, now time.Time) {
	a.LastUpdatedAt = now
	a.LastUpdatedBy = userID
}

// Collection names used by the document store.
const (
	CollectionEstablishments  = "establishments"
	CollectionUsers           = "users"
	CollectionAdmins          = "admins"
	CollectionEmployees       = "employees"
	CollectionClients         = "clients"
	CollectionServices        = "services"
	CollectionAppointments    = "appointments"
	CollectionProducts        = "products"
	CollectionSales           = "sales"
	CollectionInventoryCounts = "inventory_counts"
	CollectionPayments        = "payments"
)
