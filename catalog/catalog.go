// Package catalog holds the definition entities the OpenKPIs site
// documents: KPIs, events, dimensions, metrics, and dashboards. These are
// plain CRUD rows; uniqueness and relational integrity live in database
// constraints, with the service layer enforcing status transitions and
// attribution.
package catalog

import (
	"strings"
	"time"
	"unicode"
)

// EntityType names a catalog collection. Values double as table names.
type EntityType string

const (
	EntityKPI       EntityType = "kpis"
	EntityEvent     EntityType = "events"
	EntityDimension EntityType = "dimensions"
	EntityMetric    EntityType = "metrics"
	EntityDashboard EntityType = "dashboards"
)

// EntityTypes lists every collection, in the order the API exposes them.
var EntityTypes = []EntityType{EntityKPI, EntityEvent, EntityDimension, EntityMetric, EntityDashboard}

func (e EntityType) Valid() bool {
	for _, known := range EntityTypes {
		if e == known {
			return true
		}
	}
	return false
}

// Status is the publication state of an entry.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Drafts can be published or archived, published entries archived;
// archived is terminal. Keeping the same status is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusDraft:
		return next == StatusPublished || next == StatusArchived
	case StatusPublished:
		return next == StatusArchived
	default:
		return false
	}
}

// Entry is one catalog definition. All five collections share this shape.
type Entry struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Status      Status    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AuditEntry records one catalog mutation with its actor.
type AuditEntry struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntitySlug string     `json:"entity_slug"`
	Action     string     `json:"action"` // created, updated, archived
	Actor      string     `json:"actor"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Slugify derives a URL-safe slug from a display name: lowercase, runs of
// non-alphanumerics collapsed to single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
