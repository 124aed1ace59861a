// Package app wires configuration, storage and the import catalog into a
// command session.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/gisdb/gisdb/internal/config"
	"github.com/gisdb/gisdb/internal/manifest"
	"github.com/gisdb/gisdb/internal/session"
	"github.com/gisdb/gisdb/internal/storage"
)

// App runs command scripts with the resources described by a Config.
type App struct {
	cfg *config.Config

	// Shared resources
	storage storage.ObjectStorage
	catalog manifest.Catalog

	mu      sync.Mutex
	running bool
}

// New creates a new App with the given configuration.
func New(cfg *config.Config) (*App, error) {
	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &App{cfg: cfg}, nil
}

// Run executes the script at scriptPath and writes the report to logPath.
// The database file comes from the configuration.
func (a *App) Run(ctx context.Context, scriptPath, logPath string) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app is already running")
	}
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	script, err := os.Open(scriptPath)
	if err != nil {
		return fmt.Errorf("failed to open script: %w", err)
	}
	defer script.Close()

	if err := a.initSharedResources(ctx); err != nil {
		a.cleanup()
		return fmt.Errorf("failed to initialize shared resources: %w", err)
	}
	defer a.cleanup()

	out, err := os.Create(logPath)
	if err != nil {
		return fmt.Errorf("failed to create log: %w", err)
	}
	defer out.Close()

	s, err := session.New(session.Options{
		DatabasePath:           a.cfg.Database.Path,
		Reset:                  a.cfg.Database.Reset,
		ScriptName:             scriptPath,
		LogName:                logPath,
		Storage:                a.storage,
		Catalog:                a.catalog,
		BloomExpectedItems:     a.cfg.Bloom.ExpectedItems,
		BloomFalsePositiveRate: a.cfg.Bloom.FalsePositiveRate,
		SeparatorWidth:         a.cfg.Report.SeparatorWidth,
	}, out)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	log.Printf("Session %s started: script=%s log=%s", s.ID(), scriptPath, logPath)

	runErr := s.Run(ctx, script)
	if err := s.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return fmt.Errorf("session %s: %w", s.ID(), runErr)
	}
	log.Printf("Session %s finished", s.ID())
	return out.Sync()
}

// initSharedResources initializes storage and, when enabled, the manifest catalog.
func (a *App) initSharedResources(ctx context.Context) error {
	var err error

	switch a.cfg.Storage.Type {
	case storage.TypeLocal:
		a.storage, err = storage.NewLocalStorage(a.cfg.Storage.Path)
	case storage.TypeS3:
		s3Cfg := storage.DefaultS3Config()
		if a.cfg.Storage.S3.Region != "" {
			s3Cfg.Region = a.cfg.Storage.S3.Region
		}
		s3Cfg.Endpoint = a.cfg.Storage.S3.Endpoint
		s3Cfg.UsePathStyle = a.cfg.Storage.S3.UsePathStyle
		s3Cfg.Prefix = a.cfg.Storage.S3.Prefix
		a.storage, err = storage.NewS3Storage(ctx, a.cfg.Storage.S3.Bucket, s3Cfg)
	default:
		return fmt.Errorf("unsupported storage type: %s", a.cfg.Storage.Type)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Printf("Storage initialized: type=%s", a.cfg.Storage.Type)
	if a.cfg.Storage.Type == storage.TypeS3 {
		log.Printf("S3 Config: Bucket=%s, Region=%s, Endpoint=%s",
			a.cfg.Storage.S3.Bucket, a.cfg.Storage.S3.Region, a.cfg.Storage.S3.Endpoint)
	}

	if a.cfg.Manifest.Enabled {
		catalog, err := manifest.NewCatalog(a.cfg.Manifest.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize manifest catalog: %w", err)
		}
		a.catalog = catalog
		log.Printf("Manifest catalog initialized: %s", a.cfg.Manifest.Path)
	}

	return nil
}

// cleanup releases all shared resources.
func (a *App) cleanup() {
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			log.Printf("Manifest catalog close error: %v", err)
		}
		a.catalog = nil
	}
}
