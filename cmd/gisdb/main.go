// Package main implements the gisdb binary, which executes a GIS command
// script against a feature database file and writes a report log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gisdb/gisdb/internal/app"
	"github.com/gisdb/gisdb/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	_ = godotenv.Load(".env")

	var (
		configFile  string
		dataDir     string
		storageType string
		manifest    bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for generated files")
	flag.StringVar(&storageType, "storage", "", "Import source storage: local, s3")
	flag.BoolVar(&manifest, "manifest", false, "Record import provenance in the manifest catalog")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gisdb - GIS feature database\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gisdb [options] <database file> <script file> <log file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gisdb db.txt script01.txt log01.txt\n")
		fmt.Fprintf(os.Stderr, "  gisdb --storage s3 --manifest db.txt script01.txt log01.txt\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  GISDB_DATA_DIR          Base directory for generated files\n")
		fmt.Fprintf(os.Stderr, "  GISDB_DATABASE_RESET    Truncate the database file on start (true, false)\n")
		fmt.Fprintf(os.Stderr, "  GISDB_STORAGE_TYPE      Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  GISDB_S3_*              S3 bucket, region, endpoint, prefix\n")
		fmt.Fprintf(os.Stderr, "  GISDB_MANIFEST_ENABLED  Record import provenance\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("gisdb version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	if flag.NArg() != 3 {
		flag.Usage()
		os.Exit(2)
	}
	dbFile, scriptFile, logFile := flag.Arg(0), flag.Arg(1), flag.Arg(2)

	cfg, err := loadConfig(configFile, dataDir, storageType, manifest, dbFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := application.Run(ctx, scriptFile, logFile); err != nil {
		log.Fatalf("Run failed: %v", err)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, dataDir, storageType string, manifest bool, dbFile string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	// Command line flags take priority.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if storageType != "" {
		cfg.Storage.Type = storageType
	}
	if manifest {
		cfg.Manifest.Enabled = true
	}
	cfg.Database.Path = dbFile

	return cfg, nil
}
