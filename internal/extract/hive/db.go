package hive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "sqlflow.org/gohive"

	"github.com/schemapilot/schemapilot/internal/extract"
	"github.com/schemapilot/schemapilot/internal/schema"
)

type DBConfig struct {
	// DSN is a gohive connection string, e.g.
	// "user:password@host:10000/warehouse?auth=PLAIN" or
	// "host:10000/warehouse?auth=NOSASL" when the server runs unauthenticated.
	DSN string
}

func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("hive dsn is required")
	}

	db, err := sql.Open("hive", cfg.DSN)
	if err != nil {
		return nil, &extract.ConnectionError{Backend: schema.BackendHive, Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &extract.ConnectionError{Backend: schema.BackendHive, Err: err}
	}

	return db, nil
}
