package store

import "strings"

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN           string
	Type          DatabaseType
	MigrationsDir string
}

// DetectType picks the backend from the DSN: postgres URLs and key=value
// strings go to PostgreSQL, anything else is a SQLite path.
func DetectType(dsn string) DatabaseType {
	if strings.HasPrefix(dsn, "postgres") || strings.Contains(dsn, "host=") {
		return DBTypePostgres
	}
	return DBTypeSQLite
}
