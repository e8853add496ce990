package server

import "net/http"

func (s *Server) initRoutes() {
	// OAuth flow
	s.RegisterRouteHandler("GET "+RouteOAuthLogin, ChainMiddleware(s.OAuthLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteOAuthCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.APIMiddleware()...))

	// Session / GitHub proxy
	s.RegisterRouteHandler("GET "+RouteMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteContent, ChainMiddleware(s.ContentHandler(), s.AuthAPIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteCommit, ChainMiddleware(s.CommitHandler(), s.AuthAPIMiddleware()...))

	if s.catalog != nil {
		s.initCatalogRoutes()
	}

	s.RegisterRouteHandler("GET "+RouteHealthz, ChainMiddleware(s.HealthzHandler(), s.APIMiddleware()...))

	// CORS preflight for every route; the CORS middleware answers and
	// never falls through to the handler.
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(s.preflightFallback(), s.APIMiddleware()...))
}

// initCatalogRoutes is skipped entirely when no database is configured.
// Reads are public, mutations need a session.
func (s *Server) initCatalogRoutes() {
	s.RegisterRouteHandler("GET "+RouteAPICollection, ChainMiddleware(s.ListEntriesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPICollection, ChainMiddleware(s.CreateEntryHandler(), s.AuthAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIEntry, ChainMiddleware(s.GetEntryHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteAPIEntry, ChainMiddleware(s.UpdateEntryHandler(), s.AuthAPIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPIEntry, ChainMiddleware(s.ArchiveEntryHandler(), s.AuthAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIDashboardKPIs, ChainMiddleware(s.DashboardKPIsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIDashboardKPIs, ChainMiddleware(s.AttachDashboardKPIHandler(), s.AuthAPIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPIAudit, ChainMiddleware(s.AuditLogHandler(), s.AuthAPIMiddleware()...))
}

// preflightFallback only runs for OPTIONS requests with no Origin header,
// which are not CORS preflights at all.
func (s *Server) preflightFallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}
