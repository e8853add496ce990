// Package repofakes provides in-memory catalog repositories for tests.
package repofakes

import (
	"context"
	"sort"
	"sync"

	"github.com/openkpis/edge-service/catalog"
	"github.com/openkpis/edge-service/internal/errors"
)

type FakeEntryRepo struct {
	mu      sync.RWMutex
	entries map[catalog.EntityType]map[string]*catalog.Entry // keyed by slug
}

var _ catalog.EntryRepo = (*FakeEntryRepo)(nil)

func NewFakeEntryRepo() *FakeEntryRepo {
	return &FakeEntryRepo{entries: make(map[catalog.EntityType]map[string]*catalog.Entry)}
}

func (r *FakeEntryRepo) List(_ context.Context, entity catalog.EntityType) ([]*catalog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*catalog.Entry
	for _, entry := range r.entries[entity] {
		copied := *entry
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *FakeEntryRepo) GetBySlug(_ context.Context, entity catalog.EntityType, slug string) (*catalog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[entity][slug]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "fake entry repo: %s/%s", entity, slug)
	}
	copied := *entry
	return &copied, nil
}

func (r *FakeEntryRepo) Create(_ context.Context, entity catalog.EntityType, entry *catalog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries[entity] == nil {
		r.entries[entity] = make(map[string]*catalog.Entry)
	}
	if _, exists := r.entries[entity][entry.Slug]; exists {
		return errors.Wrapf(errors.ErrSlugConflict, "fake entry repo: %s/%s", entity, entry.Slug)
	}
	copied := *entry
	r.entries[entity][entry.Slug] = &copied
	return nil
}

func (r *FakeEntryRepo) Update(_ context.Context, entity catalog.EntityType, entry *catalog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for slug, existing := range r.entries[entity] {
		if existing.ID == entry.ID {
			delete(r.entries[entity], slug)
			copied := *entry
			r.entries[entity][entry.Slug] = &copied
			return nil
		}
	}
	return errors.Wrapf(errors.ErrNotFound, "fake entry repo: %s id %s", entity, entry.ID)
}

type FakeDashboardKPIRepo struct {
	mu      sync.RWMutex
	links   map[string][]string // dashboard ID -> KPI IDs
	entries *FakeEntryRepo
}

var _ catalog.DashboardKPIRepo = (*FakeDashboardKPIRepo)(nil)

func NewFakeDashboardKPIRepo(entries *FakeEntryRepo) *FakeDashboardKPIRepo {
	return &FakeDashboardKPIRepo{links: make(map[string][]string), entries: entries}
}

func (r *FakeDashboardKPIRepo) ListKPIs(ctx context.Context, dashboardID string) ([]*catalog.Entry, error) {
	r.mu.RLock()
	kpiIDs := append([]string(nil), r.links[dashboardID]...)
	r.mu.RUnlock()

	all, err := r.entries.List(ctx, catalog.EntityKPI)
	if err != nil {
		return nil, err
	}
	var out []*catalog.Entry
	for _, id := range kpiIDs {
		for _, kpi := range all {
			if kpi.ID == id {
				out = append(out, kpi)
			}
		}
	}
	return out, nil
}

func (r *FakeDashboardKPIRepo) AddKPI(_ context.Context, dashboardID, kpiID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.links[dashboardID] {
		if id == kpiID {
			return nil
		}
	}
	r.links[dashboardID] = append(r.links[dashboardID], kpiID)
	return nil
}

type FakeAuditRepo struct {
	mu      sync.RWMutex
	entries []*catalog.AuditEntry
}

var _ catalog.AuditRepo = (*FakeAuditRepo)(nil)

func NewFakeAuditRepo() *FakeAuditRepo {
	return &FakeAuditRepo{}
}

func (r *FakeAuditRepo) Record(_ context.Context, entry *catalog.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *entry
	r.entries = append(r.entries, &copied)
	return nil
}

func (r *FakeAuditRepo) ListRecent(_ context.Context, limit int) ([]*catalog.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*catalog.AuditEntry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *r.entries[i]
		out = append(out, &copied)
	}
	return out, nil
}
