package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/nodepool/internal/api"
	"github.com/edvin/nodepool/internal/api/request"
	"github.com/edvin/nodepool/internal/config"
	"github.com/edvin/nodepool/internal/core"
	"github.com/edvin/nodepool/internal/db"
	"github.com/edvin/nodepool/internal/logging"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "create-tenant" {
		createTenant(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("pool-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	srv := api.NewServer(logger, pool, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting pool API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

// createTenant bootstraps a tenant (typically the first admin) directly
// against the database, bypassing the HTTP authorization gate.
func createTenant(args []string) {
	fs := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	name := fs.String("name", "", "Name for the tenant (required)")
	admin := fs.Bool("admin", false, "Grant the tenant admin rights")
	sshKey := fs.String("ssh-key", "", "SSH public key for the tenant")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: --name is required")
		fmt.Fprintln(os.Stderr, "usage: pool-api create-tenant --name <name> [--admin] [--ssh-key <key>]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := core.NewTenantService(pool)
	bootstrap := core.Identity{IsAdmin: true}
	result, err := svc.Create(ctx, bootstrap, request.CreateTenant{
		Name:    *name,
		IsAdmin: *admin,
		SSHKey:  *sshKey,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create tenant: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Tenant created successfully.\n\n")
	fmt.Printf("  Name:    %s\n", result.Tenant.Name)
	fmt.Printf("  ID:      %s\n", result.Tenant.ID)
	fmt.Printf("  Admin:   %v\n", result.Tenant.IsAdmin)
	fmt.Printf("  API key: %s\n\n", result.APIKey)
	fmt.Printf("Save this key — it will not be shown again.\n")
}
