package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gouniverse/masterblog"
	"github.com/gouniverse/masterblog/api"
	"github.com/gouniverse/masterblog/config"
	"github.com/gouniverse/masterblog/mcp"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		addr       = flag.String("addr", "", "http listen address (overrides config)")
		configPath = flag.String("config", "./config.yaml", "path to config.yaml")
		debugSQL   = flag.Bool("debug_sql", false, "log generated SQL statements")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("config not found (%s); using defaults", *configPath)
		} else {
			logger.Fatalf("load config: %v", err)
		}
	}

	if *addr != "" {
		cfg.Addr = *addr
	}
	if *debugSQL {
		cfg.DebugSQL = true
	}

	// The post collection lives in an in-memory sqlite database, so it resets
	// to the seed state on every restart.
	db, err := sql.Open("sqlite", ":memory:?parseTime=true")
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// every pooled connection would otherwise get its own empty :memory: database
	db.SetMaxOpenConns(1)

	store, err := masterblog.NewStore(masterblog.NewStoreOptions{
		PostTableName:      cfg.PostTableName,
		DB:                 db,
		AutomigrateEnabled: true,
		SeedEnabled:        cfg.SeedEnabled,
		DebugEnabled:       cfg.DebugSQL,
	})
	if err != nil {
		logger.Fatalf("init store: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", api.NewAPI(store).Handler())

	if cfg.MCPEnabled {
		mux.HandleFunc("/mcp", mcp.NewMCP(store).Handler)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
		ErrorLog:     logger,
	}

	go func() {
		logger.Printf("listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Println("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
