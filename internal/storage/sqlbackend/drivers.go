package sqlbackend

import (
	_ "github.com/dolthub/driver"      // registers the "dolt" database/sql driver
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" database/sql driver
)

// DriverMySQL and DriverDolt name the database/sql drivers Open accepts.
const (
	DriverMySQL = "mysql"
	DriverDolt  = "dolt"
)
