// Package database handles gorm connections for the embedded queue database
// and the optional backend database.
//
// # Connect
//
// Connect opens either an embedded SQLite file (the default for a technician
// device, WAL mode, single connection) or a MySQL server. SQLite ":memory:" is
// used by tests.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	defer database.Close(db)
package database
