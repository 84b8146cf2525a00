// exoplanet.report serves the mission inference bridge: upload a raw survey
// export (Kepler, K2 or TESS), get back the unified candidate table.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/exoscan-data/exoplanet.report/api"
	"github.com/exoscan-data/exoplanet.report/internal/config"
	"github.com/exoscan-data/exoplanet.report/internal/db"
	"github.com/exoscan-data/exoplanet.report/internal/model"
	"github.com/exoscan-data/exoplanet.report/internal/pipeline"
	"github.com/exoscan-data/exoplanet.report/internal/version"
)

var (
	listen       = flag.String("listen", ":8080", "Listen address")
	dbFile       = flag.String("db", "runs.db", "Path to the run database")
	modelsDir    = flag.String("models", "models", "Directory holding per-mission classifier artifacts")
	configFile   = flag.String("config", "", "Optional bridge config JSON (defaults compiled in)")
	processedDir = flag.String("processed", "processed", "Directory for emitted result tables")
	showVersion  = flag.Bool("version", false, "Print build information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		log.SetFlags(0)
		log.Println(version.String())
		return
	}

	cfg := config.EmptyBridgeConfig()
	if *configFile != "" {
		loaded, err := config.LoadBridgeConfig(*configFile)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		cfg = loaded
	}

	// Artifacts load once, before the listener opens. A missing model is a
	// startup failure, never a request-time one.
	router, err := model.NewRouter(*modelsDir)
	if err != nil {
		log.Fatalf("load classifier artifacts: %v", err)
	}

	database, err := db.NewDB(*dbFile)
	if err != nil {
		log.Fatalf("open run database: %v", err)
	}
	defer database.Close()

	server := api.NewServer(pipeline.New(cfg, router), database, cfg, *processedDir)
	httpServer := &http.Server{
		Addr:    *listen,
		Handler: server.ServeMux(),
	}

	go func() {
		log.Printf("exoplanet.report %s listening on %s", version.String(), *listen)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
