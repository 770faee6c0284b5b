package core

import (
	"context"
	"fmt"
	"os"

	"auditcore/internal/infra/persistence/memory"
	"auditcore/internal/infra/persistence/postgres"
	"auditcore/internal/infra/persistence/sheet"
	"auditcore/internal/infra/persistence/sqlite"
	"auditcore/pkg/domain"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSheet    StorageDriver = "sheet"    // spreadsheet workbook file
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// Stores bundles the roster and document tables served by one backend.
type Stores interface {
	domain.RosterStore
	domain.DocumentStore
}

// OpenStores selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	AUDITCORE_STORAGE_DRIVER: memory|sheet|sqlite|postgres (default sqlite)
//	AUDITCORE_SHEET_PATH: path to the workbook file (default ./auditcore.xlsx)
//	AUDITCORE_SQLITE_PATH: path to sqlite file (default ./auditcore.db)
//	AUDITCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStores(ctx context.Context) (Stores, error) {
	driver := os.Getenv("AUDITCORE_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSheet:
		return sheet.NewStore(os.Getenv("AUDITCORE_SHEET_PATH"))
	case StorageSQLite:
		return sqlite.NewStore(os.Getenv("AUDITCORE_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.NewStore(ctx, os.Getenv("AUDITCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
