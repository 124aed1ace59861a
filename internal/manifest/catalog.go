package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	gisErrors "github.com/gisdb/gisdb/internal/errors"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Catalog records import provenance. It never stores index data: the indexes
// are always rebuilt from the database file.
type Catalog interface {
	// RegisterImport stores one import and returns its generated ID.
	RegisterImport(ctx context.Context, rec *ImportRecord) (string, error)

	// ListImports returns the imports of one session, oldest first. An empty
	// session ID lists every import.
	ListImports(ctx context.Context, sessionID string) ([]*ImportRecord, error)

	// ImportsForDatabase returns every import appended to the given database file.
	ImportsForDatabase(ctx context.Context, databasePath string) ([]*ImportRecord, error)

	// Display writes the imports of one session.
	Display(ctx context.Context, w io.Writer, sessionID string) error

	// Close closes the catalog database connection.
	Close() error
}

// ImportRecord describes one import command.
type ImportRecord struct {
	ImportID       string
	SessionID      string
	Source         string
	DatabasePath   string
	StartOffset    int64
	EndOffset      int64
	RecordCount    int64
	NamesAdded     int64
	LocationsAdded int64
	ImportedAt     time.Time
}

// SQLiteCatalog implements Catalog using SQLite.
type SQLiteCatalog struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex

	insertImportStmt *sql.Stmt
}

// NewCatalog opens (creating if needed) the catalog at dbPath.
func NewCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, gisErrors.NewManifestError(gisErrors.CodeRegisterFailed, "failed to open catalog", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	catalog := &SQLiteCatalog{db: db, dbPath: dbPath}

	if err := catalog.initSchema(); err != nil {
		db.Close()
		return nil, gisErrors.NewManifestError(gisErrors.CodeRegisterFailed, "failed to initialize catalog schema", err)
	}

	insertStmt, err := db.Prepare(`
		INSERT INTO imports (
			import_id, session_id, source, database_path,
			start_offset, end_offset, record_count,
			names_added, locations_added, imported_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, gisErrors.NewManifestError(gisErrors.CodeRegisterFailed, "failed to prepare insert statement", err)
	}
	catalog.insertImportStmt = insertStmt

	return catalog, nil
}

// initSchema creates all required tables and indexes and stamps the layout version.
func (c *SQLiteCatalog) initSchema() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, stmt := range AllSchemaSQL() {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	_, err := c.db.Exec(
		"INSERT OR IGNORE INTO schema_versions (version, created_at) VALUES (?, ?)",
		SchemaVersion, time.Now().Unix(),
	)
	return err
}

// Path returns the catalog file path.
func (c *SQLiteCatalog) Path() string {
	return c.dbPath
}

// RegisterImport stores rec. A missing ImportID is generated and a zero
// ImportedAt is set to now; both are written back to rec.
func (c *SQLiteCatalog) RegisterImport(ctx context.Context, rec *ImportRecord) (string, error) {
	if rec.SessionID == "" || rec.Source == "" {
		return "", gisErrors.NewManifestError(gisErrors.CodeRegisterFailed, "import record needs a session and a source", nil)
	}
	if rec.EndOffset < rec.StartOffset {
		return "", gisErrors.NewManifestError(gisErrors.CodeRegisterFailed,
			fmt.Sprintf("end offset %d precedes start offset %d", rec.EndOffset, rec.StartOffset), nil)
	}
	if rec.ImportID == "" {
		rec.ImportID = uuid.New().String()
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.insertImportStmt.ExecContext(ctx,
		rec.ImportID, rec.SessionID, rec.Source, rec.DatabasePath,
		rec.StartOffset, rec.EndOffset, rec.RecordCount,
		rec.NamesAdded, rec.LocationsAdded, rec.ImportedAt.UnixNano(),
	)
	if err != nil {
		return "", gisErrors.NewManifestError(gisErrors.CodeRegisterFailed, "failed to insert import", err)
	}

	log.Printf("manifest: registered import %s of %s (%d records)", rec.ImportID, rec.Source, rec.RecordCount)
	return rec.ImportID, nil
}

const selectImportColumns = `
	SELECT import_id, session_id, source, database_path,
		start_offset, end_offset, record_count,
		names_added, locations_added, imported_at
	FROM imports`

// ListImports returns the imports of sessionID in registration order.
func (c *SQLiteCatalog) ListImports(ctx context.Context, sessionID string) ([]*ImportRecord, error) {
	if sessionID == "" {
		return c.query(ctx, selectImportColumns+" ORDER BY imported_at, rowid")
	}
	return c.query(ctx, selectImportColumns+" WHERE session_id = ? ORDER BY imported_at, rowid", sessionID)
}

// ImportsForDatabase returns the imports into databasePath ordered by offset.
func (c *SQLiteCatalog) ImportsForDatabase(ctx context.Context, databasePath string) ([]*ImportRecord, error) {
	return c.query(ctx, selectImportColumns+" WHERE database_path = ? ORDER BY start_offset, rowid", databasePath)
}

func (c *SQLiteCatalog) query(ctx context.Context, q string, args ...interface{}) ([]*ImportRecord, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, gisErrors.NewManifestError(gisErrors.CodeCatalogQuery, "failed to query imports", err)
	}
	defer rows.Close()

	var records []*ImportRecord
	for rows.Next() {
		rec := &ImportRecord{}
		var importedAt int64
		if err := rows.Scan(
			&rec.ImportID, &rec.SessionID, &rec.Source, &rec.DatabasePath,
			&rec.StartOffset, &rec.EndOffset, &rec.RecordCount,
			&rec.NamesAdded, &rec.LocationsAdded, &importedAt,
		); err != nil {
			return nil, gisErrors.NewManifestError(gisErrors.CodeCatalogQuery, "failed to scan import", err)
		}
		rec.ImportedAt = time.Unix(0, importedAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, gisErrors.NewManifestError(gisErrors.CodeCatalogQuery, "failed to iterate imports", err)
	}
	return records, nil
}

// Display writes the imports of sessionID, one per line.
func (c *SQLiteCatalog) Display(ctx context.Context, w io.Writer, sessionID string) error {
	records, err := c.ListImports(ctx, sessionID)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Imports this session: %d\n", len(records)); err != nil {
		return err
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(w, "   %s\t%s\t[%d, %d)\trecords: %d\tnames: %d\tlocations: %d\n",
			rec.ImportID, rec.Source, rec.StartOffset, rec.EndOffset,
			rec.RecordCount, rec.NamesAdded, rec.LocationsAdded); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the catalog database connection.
func (c *SQLiteCatalog) Close() error {
	if c.insertImportStmt != nil {
		c.insertImportStmt.Close()
	}
	return c.db.Close()
}
