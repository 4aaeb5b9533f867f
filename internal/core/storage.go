package core

import (
	"fmt"
	"os"
	"strings"

	"caseflow/internal/infra/persistence/memory"
	"caseflow/internal/infra/persistence/postgres"
	"caseflow/internal/infra/persistence/sqlite"
	"caseflow/pkg/domain"
)

// Storage driver selection environment variables.
const (
	EnvStorageDriver = "CASEFLOW_STORAGE_DRIVER"
	EnvSQLitePath    = "CASEFLOW_SQLITE_PATH"
	EnvPostgresDSN   = "CASEFLOW_POSTGRES_DSN"
)

// OpenPersistentStore selects a storage backend from the environment.
// Supported drivers: memory, sqlite (default), postgres.
func OpenPersistentStore(catalog Catalog, engine *RulesEngine, opts ...memory.Option) (domain.PersistentStore, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStorageDriver)))
	switch driver {
	case "memory":
		return memory.NewStore(catalog, engine, opts...), nil
	case "", "sqlite":
		return sqlite.NewStore(os.Getenv(EnvSQLitePath), catalog, engine, opts...)
	case "postgres":
		return postgres.NewStore(os.Getenv(EnvPostgresDSN), catalog, engine, opts...)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
