package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/quadtech/invoice-extractor/internal/common"
)

type Config struct {
	URL             string // postgres://... selects pgx; anything else is a SQLite DSN
	MaxConns        int
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// Open connects to the configured database and applies migrations.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	driver := "sqlite"
	dsn := cfg.URL
	if strings.HasPrefix(cfg.URL, "postgres://") || strings.HasPrefix(cfg.URL, "postgresql://") {
		driver = "pgx"
	}
	logger.Info("repository.connecting", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}
	// A shared-cache in-memory SQLite database disappears once its last
	// connection closes; pin the pool to a single connection.
	if driver == "sqlite" && strings.Contains(dsn, "memory") {
		db.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping: %v", common.ErrDatabase, err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "migrate")
	}
	logger.Info("repository.connected", "driver", driver)
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS invoice_file (
	id          TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	filename    TEXT NOT NULL,
	file_ext    TEXT NOT NULL,
	file_size   BIGINT NOT NULL,
	uploaded_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS extract_job (
	id            TEXT PRIMARY KEY,
	file_id       TEXT NOT NULL REFERENCES invoice_file(id),
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	document_text TEXT NOT NULL DEFAULT '',
	raw_response  TEXT NOT NULL DEFAULT '',
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP
);

CREATE TABLE IF NOT EXISTS invoice_record (
	id          TEXT PRIMARY KEY,
	file_id     TEXT NOT NULL UNIQUE REFERENCES invoice_file(id),
	job_id      TEXT NOT NULL,
	status      TEXT NOT NULL,
	reviewed    INTEGER NOT NULL DEFAULT 0,
	record_json TEXT NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
`

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
