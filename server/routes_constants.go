package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// OAuth flow
	RouteOAuthLogin    = "/oauth/login"
	RouteOAuthCallback = "/oauth/callback"

	// Session / proxy routes
	RouteMe      = "/me"
	RouteContent = "/content"
	RouteCommit  = "/commit"

	// Catalog API
	RouteAPICollection     = "/api/{collection}"
	RouteAPIEntry          = "/api/{collection}/{slug}"
	RouteAPIDashboardKPIs  = "/api/dashboards/{slug}/kpis"
	RouteAPIAudit          = "/api/audit"

	// Operations
	RouteHealthz = "/healthz"
)
