package queue

import (
	"fmt"

	"fieldsync/core/database"
	"fieldsync/core/storage"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverS3     = "s3"
)

// Config holds configuration for the durable queue.
type Config struct {
	// Driver selects the store backend (sqlite, mysql, s3).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Prefix is the object key prefix used by the s3 driver.
	Prefix string `mapstructure:"prefix" default:"queue"`
	// MaxAttempts caps automatic sync attempts per item.
	MaxAttempts int `mapstructure:"max_attempts" default:"3"`
}

// Open builds the store selected by cfg.Driver. The returned close func
// releases the underlying connection.
func Open(cfg Config, dbCfg database.Config, storageCfg storage.Config) (Store, func() error, error) {
	switch cfg.Driver {
	case DriverSQLite, DriverMySQL, "":
		if cfg.Driver != "" {
			dbCfg.Driver = cfg.Driver
		}
		db, err := database.Connect(dbCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return NewGormStore(db), func() error { return database.Close(db) }, nil
	case DriverS3:
		client, err := storage.NewClient(storageCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return NewObjectStore(client, storageCfg.Bucket, storageCfg.Region, cfg.Prefix), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported queue driver %q", cfg.Driver)
	}
}
