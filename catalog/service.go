package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openkpis/edge-service/internal/errors"
)

// Service enforces the catalog's invariants over the storage layer: slug
// derivation, status transitions, actor attribution, and audit records.
type Service struct {
	repos Repos
}

func NewService(repos Repos) *Service {
	return &Service{repos: repos}
}

// Input carries the caller-editable fields of an entry. Attribution fields
// are never part of the input; they come from the authenticated session.
type Input struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Status      Status   `json:"status"`
}

func (s *Service) List(ctx context.Context, entity EntityType) ([]*Entry, error) {
	if !entity.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "catalog: unknown collection %q", entity)
	}
	return s.repos.Entries.List(ctx, entity)
}

func (s *Service) Get(ctx context.Context, entity EntityType, slug string) (*Entry, error) {
	if !entity.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "catalog: unknown collection %q", entity)
	}
	return s.repos.Entries.GetBySlug(ctx, entity, slug)
}

// Create inserts a new entry attributed to actor. The slug defaults to a
// slugified name; the status defaults to draft and may not start archived.
func (s *Service) Create(ctx context.Context, entity EntityType, in Input, actor string) (*Entry, error) {
	if !entity.Valid() {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "catalog: unknown collection %q", entity)
	}
	if in.Name == "" {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "catalog: name is required")
	}

	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() || status == StatusArchived {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "catalog: invalid initial status %q", in.Status)
	}

	slug := in.Slug
	if slug == "" {
		slug = Slugify(in.Name)
	}

	now := time.Now().UTC()
	entry := &Entry{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Tags:        in.Tags,
		Status:      status,
		CreatedBy:   actor,
		UpdatedBy:   actor,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repos.Entries.Create(ctx, entity, entry); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, entity, entry.Slug, "created", actor)
	return entry, nil
}

// Update applies the non-empty input fields to an existing entry. Status
// changes must follow the draft → published → archived ordering.
func (s *Service) Update(ctx context.Context, entity EntityType, slug string, in Input, actor string) (*Entry, error) {
	entry, err := s.Get(ctx, entity, slug)
	if err != nil {
		return nil, err
	}

	if in.Status != "" && in.Status != entry.Status {
		if !in.Status.Valid() {
			return nil, errors.Wrapf(errors.ErrInvalidRequest, "catalog: invalid status %q", in.Status)
		}
		if !entry.Status.CanTransitionTo(in.Status) {
			return nil, errors.Wrapf(errors.ErrInvalidTransition, "catalog: %s -> %s", entry.Status, in.Status)
		}
		entry.Status = in.Status
	}
	if in.Name != "" {
		entry.Name = in.Name
	}
	if in.Description != "" {
		entry.Description = in.Description
	}
	if in.Category != "" {
		entry.Category = in.Category
	}
	if in.Tags != nil {
		entry.Tags = in.Tags
	}
	entry.UpdatedBy = actor
	entry.UpdatedAt = time.Now().UTC()

	if err := s.repos.Entries.Update(ctx, entity, entry); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, entity, entry.Slug, "updated", actor)
	return entry, nil
}

// Archive soft-deletes an entry by moving it to archived. Archiving an
// already-archived entry is idempotent.
func (s *Service) Archive(ctx context.Context, entity EntityType, slug, actor string) (*Entry, error) {
	entry, err := s.Get(ctx, entity, slug)
	if err != nil {
		return nil, err
	}
	if entry.Status == StatusArchived {
		return entry, nil
	}

	entry.Status = StatusArchived
	entry.UpdatedBy = actor
	entry.UpdatedAt = time.Now().UTC()
	if err := s.repos.Entries.Update(ctx, entity, entry); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, entity, entry.Slug, "archived", actor)
	return entry, nil
}

// DashboardKPIs lists the KPIs attached to the dashboard with the given slug.
func (s *Service) DashboardKPIs(ctx context.Context, dashboardSlug string) ([]*Entry, error) {
	dashboard, err := s.Get(ctx, EntityDashboard, dashboardSlug)
	if err != nil {
		return nil, err
	}
	return s.repos.Dashboards.ListKPIs(ctx, dashboard.ID)
}

// AttachKPI links a KPI to a dashboard, both identified by slug.
func (s *Service) AttachKPI(ctx context.Context, dashboardSlug, kpiSlug, actor string) error {
	dashboard, err := s.Get(ctx, EntityDashboard, dashboardSlug)
	if err != nil {
		return err
	}
	kpi, err := s.Get(ctx, EntityKPI, kpiSlug)
	if err != nil {
		return err
	}
	if err := s.repos.Dashboards.AddKPI(ctx, dashboard.ID, kpi.ID); err != nil {
		return err
	}
	s.recordAudit(ctx, EntityDashboard, dashboard.Slug, "updated", actor)
	return nil
}

// RecentAudit returns up to limit recent audit entries, newest first.
func (s *Service) RecentAudit(ctx context.Context, limit int) ([]*AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repos.Audit.ListRecent(ctx, limit)
}

func (s *Service) recordAudit(ctx context.Context, entity EntityType, slug, action, actor string) {
	entry := &AuditEntry{
		ID:         uuid.NewString(),
		EntityType: entity,
		EntitySlug: slug,
		Action:     action,
		Actor:      actor,
		CreatedAt:  time.Now().UTC(),
	}
	// Audit writes never fail the mutation they describe.
	_ = s.repos.Audit.Record(ctx, entry)
}
