// Package postgres implements the catalog repositories over Postgres.
// Slug uniqueness and the dashboard-KPI relation are enforced by the
// schema; this layer only maps rows and constraint violations.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/openkpis/edge-service/catalog"
	"github.com/openkpis/edge-service/internal/errors"
)

const uniqueViolation = "23505"

type EntryRepo struct {
	db *sql.DB
}

var _ catalog.EntryRepo = (*EntryRepo)(nil)

func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

const entryColumns = "id, slug, name, description, category, tags, status, created_by, updated_by, created_at, updated_at"

// table validates the collection before it is interpolated into SQL.
// Collection names come from the route table, never raw user input, but
// the check keeps this layer safe on its own.
func table(entity catalog.EntityType) (string, error) {
	if !entity.Valid() {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "postgres: unknown collection %q", entity)
	}
	return string(entity), nil
}

func (r *EntryRepo) List(ctx context.Context, entity catalog.EntityType) ([]*catalog.Entry, error) {
	tbl, err := table(entity)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC", entryColumns, tbl)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres: list %s", entity)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (r *EntryRepo) GetBySlug(ctx context.Context, entity catalog.EntityType, slug string) (*catalog.Entry, error) {
	tbl, err := table(entity)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE slug = $1", entryColumns, tbl)
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "postgres: %s/%s", entity, slug)
		}
		return nil, errors.Wrapf(err, "postgres: get %s/%s", entity, slug)
	}
	return entry, nil
}

func (r *EntryRepo) Create(ctx context.Context, entity catalog.EntityType, entry *catalog.Entry) error {
	tbl, err := table(entity)
	if err != nil {
		return err
	}

	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return errors.Wrapf(err, "postgres: marshal tags")
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)",
		tbl, entryColumns,
	)
	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.Slug, entry.Name, entry.Description, entry.Category,
		tags, string(entry.Status), entry.CreatedBy, entry.UpdatedBy,
		entry.CreatedAt, entry.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrSlugConflict, "postgres: %s/%s", entity, entry.Slug)
	}
	if err != nil {
		return errors.Wrapf(err, "postgres: create %s/%s", entity, entry.Slug)
	}
	return nil
}

func (r *EntryRepo) Update(ctx context.Context, entity catalog.EntityType, entry *catalog.Entry) error {
	tbl, err := table(entity)
	if err != nil {
		return err
	}

	tags, err := json.Marshal(entry.Tags)
	if err != nil {
		return errors.Wrapf(err, "postgres: marshal tags")
	}

	query := fmt.Sprintf(
		`UPDATE %s SET slug = $2, name = $3, description = $4, category = $5,
		 tags = $6, status = $7, updated_by = $8, updated_at = $9 WHERE id = $1`,
		tbl,
	)
	result, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.Slug, entry.Name, entry.Description, entry.Category,
		tags, string(entry.Status), entry.UpdatedBy, entry.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errors.Wrapf(errors.ErrSlugConflict, "postgres: %s/%s", entity, entry.Slug)
	}
	if err != nil {
		return errors.Wrapf(err, "postgres: update %s/%s", entity, entry.Slug)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "postgres: update %s/%s", entity, entry.Slug)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "postgres: %s id %s", entity, entry.ID)
	}
	return nil
}

type DashboardKPIRepo struct {
	db *sql.DB
}

var _ catalog.DashboardKPIRepo = (*DashboardKPIRepo)(nil)

func NewDashboardKPIRepo(db *sql.DB) *DashboardKPIRepo {
	return &DashboardKPIRepo{db: db}
}

func (r *DashboardKPIRepo) ListKPIs(ctx context.Context, dashboardID string) ([]*catalog.Entry, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM kpis k
		 JOIN dashboard_kpis dk ON dk.kpi_id = k.id
		 WHERE dk.dashboard_id = $1
		 ORDER BY k.created_at DESC`,
		prefixColumns("k", entryColumns),
	)
	rows, err := r.db.QueryContext(ctx, query, dashboardID)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres: list dashboard kpis %s", dashboardID)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (r *DashboardKPIRepo) AddKPI(ctx context.Context, dashboardID, kpiID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO dashboard_kpis (dashboard_id, kpi_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		dashboardID, kpiID,
	)
	if err != nil {
		return errors.Wrapf(err, "postgres: add dashboard kpi %s/%s", dashboardID, kpiID)
	}
	return nil
}

type AuditRepo struct {
	db *sql.DB
}

var _ catalog.AuditRepo = (*AuditRepo)(nil)

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Record(ctx context.Context, entry *catalog.AuditEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_log (id, entity_type, entity_slug, action, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, string(entry.EntityType), entry.EntitySlug, entry.Action, entry.Actor, entry.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "postgres: record audit")
	}
	return nil
}

func (r *AuditRepo) ListRecent(ctx context.Context, limit int) ([]*catalog.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_type, entity_slug, action, actor, created_at
		 FROM audit_log ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "postgres: list audit")
	}
	defer rows.Close()

	var out []*catalog.AuditEntry
	for rows.Next() {
		var entry catalog.AuditEntry
		var entityType string
		if err := rows.Scan(&entry.ID, &entityType, &entry.EntitySlug, &entry.Action, &entry.Actor, &entry.CreatedAt); err != nil {
			return nil, errors.Wrapf(err, "postgres: scan audit")
		}
		entry.EntityType = catalog.EntityType(entityType)
		out = append(out, &entry)
	}
	return out, rows.Err()
}

// NewRepos wires all three repositories over one connection.
func NewRepos(db *sql.DB) catalog.Repos {
	return catalog.Repos{
		Entries:    NewEntryRepo(db),
		Dashboards: NewDashboardKPIRepo(db),
		Audit:      NewAuditRepo(db),
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*catalog.Entry, error) {
	var entry catalog.Entry
	var tags []byte
	var status string
	if err := row.Scan(
		&entry.ID, &entry.Slug, &entry.Name, &entry.Description, &entry.Category,
		&tags, &status, &entry.CreatedBy, &entry.UpdatedBy, &entry.CreatedAt, &entry.UpdatedAt,
	); err != nil {
		return nil, err
	}
	entry.Status = catalog.Status(status)
	if err := json.Unmarshal(tags, &entry.Tags); err != nil {
		return nil, err
	}
	return &entry, nil
}

func scanEntries(rows *sql.Rows) ([]*catalog.Entry, error) {
	var out []*catalog.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

func prefixColumns(alias, columns string) string {
	cols := strings.Split(columns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
