// Package app provides application initialization and dependency wiring.
//
// App is the container that assembles the pipeline: configuration, database
// pool, Genkit, the data.gov.in client, catalog, discovery, interpreter, and
// the question engine. Call Setup to build it and Close to release resources.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samarthdata/samarth/internal/catalog"
	"github.com/samarthdata/samarth/internal/config"
	"github.com/samarthdata/samarth/internal/datacache"
	"github.com/samarthdata/samarth/internal/datagov"
	"github.com/samarthdata/samarth/internal/discovery"
	"github.com/samarthdata/samarth/internal/interpreter"
	"github.com/samarthdata/samarth/internal/llm"
	"github.com/samarthdata/samarth/internal/log"
	"github.com/samarthdata/samarth/internal/qa"
	"github.com/samarthdata/samarth/internal/session"
)

// App is the application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit *genkit.Genkit
	DBPool *pgxpool.Pool

	DataGov     *datagov.Client
	LLM         *llm.Client
	Catalog     *catalog.Store
	Sessions    *session.Store
	Cache       *datacache.Cache
	Discovery   *discovery.Service
	Interpreter *interpreter.Interpreter
	Engine      *qa.Engine

	otelCleanup func()
}

// Close gracefully releases all resources.
func (a *App) Close() error {
	slog.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		slog.Info("database pool closed")
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
