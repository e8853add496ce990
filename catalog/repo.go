package catalog

import "context"

// EntryRepo is the storage interface for catalog entries. Implementations
// must return errors.ErrSlugConflict for slug-uniqueness violations and
// errors.ErrNotFound for missing rows.
type EntryRepo interface {
	// List returns all entries of one collection, newest first.
	List(ctx context.Context, entity EntityType) ([]*Entry, error)

	// GetBySlug retrieves a single entry by collection and slug.
	GetBySlug(ctx context.Context, entity EntityType, slug string) (*Entry, error)

	// Create inserts a new entry.
	Create(ctx context.Context, entity EntityType, entry *Entry) error

	// Update rewrites an existing entry identified by its ID.
	Update(ctx context.Context, entity EntityType, entry *Entry) error
}

// DashboardKPIRepo manages the dashboard-to-KPI join rows.
type DashboardKPIRepo interface {
	// ListKPIs returns the KPI entries attached to a dashboard.
	ListKPIs(ctx context.Context, dashboardID string) ([]*Entry, error)

	// AddKPI attaches a KPI to a dashboard. Adding an existing pair is a
	// no-op.
	AddKPI(ctx context.Context, dashboardID, kpiID string) error
}

// AuditRepo persists mutation attribution records.
type AuditRepo interface {
	// Record appends one audit entry.
	Record(ctx context.Context, entry *AuditEntry) error

	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, limit int) ([]*AuditEntry, error)
}

// Repos bundles the storage interfaces the service needs.
type Repos struct {
	Entries    EntryRepo
	Dashboards DashboardKPIRepo
	Audit      AuditRepo
}
