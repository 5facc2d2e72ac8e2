package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// timeLayout is the persisted timestamp format: local wall-clock time
// without an offset, so sqlite's date() yields the local calendar date
const timeLayout = "2006-01-02T15:04:05"

// Client represents the sqlite report store
type Client struct {
	db       *sqlx.DB
	timeout  time.Duration
	timezone *time.Location
	logger   zerolog.Logger
}

// NewClient opens (or creates) the report database and ensures the schema
// is up to date
func NewClient(path string, timeout int, timezone string, logger zerolog.Logger) (*Client, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}

	db, err := sqlx.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	c := &Client{
		db:       db,
		timeout:  time.Duration(timeout) * time.Second,
		timezone: loc,
		logger:   logger.With().Str("component", "storage").Logger(),
	}

	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return c, nil
}

// Ping checks if the database is reachable
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	c.logger.Debug().Msg("Database connection successful")
	return nil
}

// Close closes the underlying database
func (c *Client) Close() error {
	return c.db.Close()
}

// initSchema migrates a legacy database if needed and creates the reports
// table. The UNIQUE constraint is what enforces one report per
// (user_tag, report_type, day_number); writes rely on it for overwrite
// semantics.
func (c *Client) initSchema() error {
	if err := c.migrateLegacySchema(); err != nil {
		return fmt.Errorf("failed to migrate legacy schema: %w", err)
	}

	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_tag TEXT NOT NULL,
			report_type TEXT NOT NULL,
			day_number INTEGER NOT NULL,
			datetime TEXT NOT NULL,
			username TEXT,
			message_id INTEGER,
			UNIQUE(user_tag, report_type, day_number)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create reports table: %w", err)
	}

	return nil
}
