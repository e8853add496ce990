package server

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/openkpis/edge-service/catalog"
	"github.com/openkpis/edge-service/githubapi"
	"github.com/openkpis/edge-service/internal/config"
	"github.com/openkpis/edge-service/publisher"
	"github.com/openkpis/edge-service/sessions"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config

	signer    *sessions.Signer
	oauth     *githubapi.OAuth
	github    *githubapi.Client
	publisher *publisher.Publisher
	catalog   *catalog.Service
	db        *sql.DB
}

// Deps carries the wired components the server routes to.
type Deps struct {
	Signer    *sessions.Signer
	OAuth     *githubapi.OAuth
	GitHub    *githubapi.Client
	Publisher *publisher.Publisher
	Catalog   *catalog.Service
	DB        *sql.DB
}

func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		signer:    deps.Signer,
		oauth:     deps.OAuth,
		github:    deps.GitHub,
		publisher: deps.Publisher,
		catalog:   deps.Catalog,
		db:        deps.DB,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + resetColor
	} else {
		displayMethod = gray + paddedMethod + resetColor
	}
	log.Printf("[%-19s] %s\n", displayMethod, path)
}
