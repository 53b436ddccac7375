/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vacation allocation engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Configure structured logging
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags, overridable via environment (environment wins when the flag is at
  its default):
    -port       HTTP server port            (env PORT, default 8080)
    -db         SQLite database path        (env DB_PATH, default vacations.db)
                Use ":memory:" for an in-memory database
    -log-level  logrus level                (env LOG_LEVEL, default info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  ./server -db="./data/vacations.db"
  PORT=3000 LOG_LEVEL=debug ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/warp/vacation-engine/api"
	"github.com/warp/vacation-engine/store/sqlite"
	"github.com/warp/vacation-engine/vacation"
)

func main() {
	// .env is optional; flags keep working without it.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "vacations.db", "SQLite database path")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	applyEnvOverrides(port, dbPath, logLevel)

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("unknown log level %q, using info", *logLevel)
	}

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, vacation.SystemClock{}, log)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": *port, "db": *dbPath}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("server stopped")
}

// applyEnvOverrides lets PORT, DB_PATH and LOG_LEVEL override flags left at
// their defaults.
func applyEnvOverrides(port *int, dbPath, logLevel *string) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if raw := os.Getenv("PORT"); raw != "" && !set["port"] {
		if parsed, err := strconv.Atoi(raw); err == nil {
			*port = parsed
		}
	}
	if raw := os.Getenv("DB_PATH"); raw != "" && !set["db"] {
		*dbPath = raw
	}
	if raw := os.Getenv("LOG_LEVEL"); raw != "" && !set["log-level"] {
		*logLevel = raw
	}
}
