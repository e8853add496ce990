package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/openkpis/edge-service/catalog"
	catalogpg "github.com/openkpis/edge-service/catalog/postgres"
	"github.com/openkpis/edge-service/githubapi"
	"github.com/openkpis/edge-service/internal/config"
	"github.com/openkpis/edge-service/internal/db"
	"github.com/openkpis/edge-service/internal/db/migrate"
	"github.com/openkpis/edge-service/publisher"
	"github.com/openkpis/edge-service/server"
	"github.com/openkpis/edge-service/sessions"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	deps, closeDeps, err := wireDeps(c)
	if err != nil {
		return err
	}
	defer closeDeps()

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, deps)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func wireDeps(c config.Config) (server.Deps, func(), error) {
	github := githubapi.New(c.GetGitHubAPIBaseURL(), c.GetGitHubOwner(), c.GetGitHubRepo())

	deps := server.Deps{
		Signer:    sessions.NewSigner(c.GetSessionSigningKey()),
		OAuth:     githubapi.NewOAuth(c.GetGitHubClientID(), c.GetGitHubClientSecret(), c.GetOAuthCallbackURL(), c.GetOAuthScopes()),
		GitHub:    github,
		Publisher: publisher.New(github, c.GetGitHubBaseBranch()),
	}

	closeDeps := func() {}
	if dsn := c.GetDatabaseURL(); dsn != "" {
		if err := migrate.Run(dsn, "up"); err != nil {
			return server.Deps{}, nil, fmt.Errorf("migrate.Run: %w", err)
		}
		pool, err := db.Open(dsn)
		if err != nil {
			return server.Deps{}, nil, fmt.Errorf("db.Open: %w", err)
		}
		deps.DB = pool
		deps.Catalog = catalog.NewService(catalogpg.NewRepos(pool))
		closeDeps = func() { pool.Close() }
	} else {
		log.Printf("DATABASE_URL not set, catalog API disabled\n")
	}

	return deps, closeDeps, nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
