package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"restpki-batch/internal/config"
)

type Database struct {
	DB     *sql.DB
	logger *zap.Logger
}

// NewDatabase opens the audit database. A nil *Database is returned when
// persistence is disabled; repositories treat that as "do not store".
func NewDatabase(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (*Database, error) {
	if !cfg.Database.Enabled {
		logger.Info("Database disabled, API logs and signature records will not be stored")
		return nil, nil
	}

	// Build PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName),
	)

	database := New(db, logger)

	// Run migrations
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return database.Close()
		},
	})

	return database, nil
}

// New wraps an already opened *sql.DB
func New(db *sql.DB, logger *zap.Logger) *Database {
	return &Database{
		DB:     db,
		logger: logger,
	}
}

var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "api_logs table",
		sql: `
	CREATE TABLE IF NOT EXISTS api_logs (
		id SERIAL PRIMARY KEY,
		endpoint TEXT NOT NULL,
		method VARCHAR(10) NOT NULL,
		request_body TEXT DEFAULT '',
		response_body TEXT DEFAULT '',
		status_code INTEGER NOT NULL,
		duration_ms BIGINT NOT NULL,
		document_id VARCHAR(2) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	},
	{
		name: "api_logs index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_api_logs_created_at ON api_logs(created_at);`,
	},
	{
		name: "signature_records table",
		sql: `
	CREATE TABLE IF NOT EXISTS signature_records (
		id SERIAL PRIMARY KEY,
		document_id VARCHAR(2) NOT NULL,
		filename VARCHAR(64) NOT NULL UNIQUE,
		signer_name TEXT DEFAULT '',
		signer_email TEXT DEFAULT '',
		national_id VARCHAR(32) DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	},
	{
		name: "signature_records index",
		sql:  `CREATE INDEX IF NOT EXISTS idx_signature_records_document_id ON signature_records(document_id);`,
	},
}

// Migrate creates the tables used by the service when missing
func (d *Database) Migrate() error {
	for _, m := range migrations {
		if _, err := d.DB.Exec(m.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", m.name, err)
		}
	}

	d.logger.Info("Database migrations completed successfully")
	return nil
}

func (d *Database) Close() error {
	return d.DB.Close()
}
