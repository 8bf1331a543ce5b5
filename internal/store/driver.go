package store

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var dialectors = map[string]func(dsn string) gorm.Dialector{
	DriverSQLite:   sqlite.Open,
	DriverPostgres: postgres.Open,
}

var driverAliases = map[string]string{
	"sqlite3":    DriverSQLite,
	"postgresql": DriverPostgres,
	"pgx":        DriverPostgres,
}

// NormalizeDriver maps a configured driver name to DriverSQLite or
// DriverPostgres. Unknown names are returned lower-cased.
func NormalizeDriver(driver string) string {
	driver = strings.ToLower(strings.TrimSpace(driver))
	if canonical, ok := driverAliases[driver]; ok {
		return canonical
	}
	return driver
}

// GetDialector returns the GORM dialector for driver, opened on dsn.
func GetDialector(driver, dsn string) (gorm.Dialector, error) {
	open, ok := dialectors[NormalizeDriver(driver)]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %q (must be %s or %s)",
			driver, DriverSQLite, DriverPostgres)
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN for database driver %s", driver)
	}
	return open(dsn), nil
}
