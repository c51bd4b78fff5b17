package config

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"travelbot/internal/utils"
)

var (
	DB   *sql.DB
	dbMu sync.Mutex

	dbCfg DatabaseConfig
)

// ConnectDB initializes the shared DB connection (idempotent).
func ConnectDB(cfg DatabaseConfig) (*sql.DB, error) {
	dbMu.Lock()
	defer dbMu.Unlock()
	return connectLocked(cfg)
}

func connectLocked(cfg DatabaseConfig) (*sql.DB, error) {
	if DB != nil {
		return DB, nil
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite3" {
		// one writer keeps sqlite from returning SQLITE_BUSY under load
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	DB = db
	dbCfg = cfg
	utils.Logger().Info("database connected", zap.String("driver", cfg.Driver))
	return DB, nil
}

// Driver returns the driver name of the shared connection.
func Driver() string {
	dbMu.Lock()
	defer dbMu.Unlock()
	return dbCfg.Driver
}

// EnsureDB reconnects when the shared handle is gone and pings it otherwise.
func EnsureDB() error {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB == nil {
		if dbCfg.Driver == "" {
			return fmt.Errorf("database not configured")
		}
		_, err := connectLocked(dbCfg)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return DB.PingContext(ctx)
}

func CloseDB() {
	dbMu.Lock()
	defer dbMu.Unlock()

	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
