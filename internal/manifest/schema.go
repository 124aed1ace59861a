// Package manifest provides the import catalog recording where every batch of
// records in the database file came from.
package manifest

// CreateImportsTableSQL creates the imports table. Offsets are record file
// locators; end_offset is exclusive.
const CreateImportsTableSQL = `
CREATE TABLE IF NOT EXISTS imports (
    import_id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    source TEXT NOT NULL,
    database_path TEXT NOT NULL,
    start_offset INTEGER NOT NULL,
    end_offset INTEGER NOT NULL,
    record_count INTEGER NOT NULL,
    names_added INTEGER NOT NULL,
    locations_added INTEGER NOT NULL,
    imported_at INTEGER NOT NULL
)`

// CreateImportsIndexesSQL creates the lookup indexes on imports.
var CreateImportsIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_imports_session ON imports(session_id, imported_at)`,
	`CREATE INDEX IF NOT EXISTS idx_imports_database ON imports(database_path, start_offset)`,
}

// CreateSchemaVersionsTableSQL tracks the catalog layout version.
const CreateSchemaVersionsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_versions (
    version INTEGER PRIMARY KEY,
    created_at INTEGER NOT NULL
)`

// SchemaVersion is the catalog layout written by this package.
const SchemaVersion = 1

// AllSchemaSQL returns all SQL statements needed to initialize the catalog.
func AllSchemaSQL() []string {
	statements := []string{
		CreateImportsTableSQL,
		CreateSchemaVersionsTableSQL,
	}
	statements = append(statements, CreateImportsIndexesSQL...)
	return statements
}
