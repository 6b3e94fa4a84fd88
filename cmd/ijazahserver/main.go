package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanadhub/ijazahserver/internal/api"
	"github.com/sanadhub/ijazahserver/internal/config"
	"github.com/sanadhub/ijazahserver/internal/db"
	"github.com/sanadhub/ijazahserver/internal/db/repository"
	"github.com/sanadhub/ijazahserver/internal/issue"
	"github.com/sanadhub/ijazahserver/internal/pattern"
	"github.com/sanadhub/ijazahserver/internal/policy"
	"github.com/sanadhub/ijazahserver/internal/serial"
	"github.com/sanadhub/ijazahserver/internal/verify"
)

var (
	// Version information (set via ldflags)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "/etc/ijazah/config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Ijazah Certificate Server\n")
		fmt.Printf("Version:    %s\n", Version)
		fmt.Printf("Commit:     %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	log.Printf("Starting Ijazah Certificate Server %s (commit: %s)", Version, Commit)

	// Load configuration
	log.Printf("Loading configuration from %s", *configPath)
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	log.Printf("Connecting to database: %s", cfg.Database.Path)
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	log.Printf("Running database migrations...")
	if err := db.RunMigrations(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	certRepo := repository.NewCertificateRepository(database.DB)
	attemptRepo := repository.NewAttemptRepository(database.DB)
	profileRepo := repository.NewProfileRepository(database.DB)

	// Initialize services
	validator := policy.NewValidator(cfg)
	allocator := serial.NewAllocator(cfg.Serial.Prefix, certRepo)
	defaultPattern := pattern.Config{
		Family:       cfg.Pattern.Family,
		PrimaryColor: cfg.Pattern.PrimaryColor,
		Opacity:      cfg.Pattern.Opacity,
	}
	issuer := issue.NewService(certRepo, allocator, validator, cfg.Fingerprint.Secret, defaultPattern)
	verifier := verify.NewService(certRepo, attemptRepo, profileRepo, cfg.Fingerprint.Secret)

	// Create HTTP server
	server := api.NewServer(
		cfg,
		issuer,
		verifier,
		certRepo,
		attemptRepo,
		profileRepo,
	)

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("Starting HTTP server on %s", cfg.Server.ListenAddr)
		if err := server.Run(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Ijazah Certificate Server is running")
	log.Printf("Press Ctrl+C to shutdown")

	// Wait for interrupt signal
	<-quit
	log.Printf("Shutting down server...")

	// Cleanup
	database.Close()

	log.Printf("Server stopped")
}
