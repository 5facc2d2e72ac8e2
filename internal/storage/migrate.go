package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// migrateLegacySchema rebuilds a pre-day-number reports table.
//
// The old schema kept one row per (user_tag, report_type, report_date)
// with separate date and time columns. Old rows are carried over with
// day_number = 1, the value used before explicit day numbers existed.
// Legacy rows sharing (user_tag, report_type) across dates collapse
// onto that key; the newest submission wins, matching the store's
// last-write-wins overwrite rule.
func (c *Client) migrateLegacySchema() error {
	columns, err := c.tableColumns("reports")
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		// No table yet, nothing to migrate
		return nil
	}
	if columns["day_number"] {
		// Already on the current schema
		return nil
	}

	c.logger.Info().Msg("Migrating reports table to day-number schema")

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		CREATE TABLE reports_new (
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
		return fmt.Errorf("failed to create migration table: %w", err)
	}

	// Oldest first, so the INSERT OR REPLACE below keeps the newest row
	// when several dates collapse onto one day number
	rows, err := tx.Query(`SELECT user_tag, report_type, report_date, submission_time, username, message_id FROM reports ORDER BY report_date, submission_time`)
	if err != nil {
		return fmt.Errorf("failed to read legacy rows: %w", err)
	}
	defer rows.Close()

	migrated := 0
	for rows.Next() {
		var userTag, reportType, reportDate, submissionTime string
		var username sql.NullString
		var messageID sql.NullInt64

		if err := rows.Scan(&userTag, &reportType, &reportDate, &submissionTime, &username, &messageID); err != nil {
			return fmt.Errorf("failed to scan legacy row: %w", err)
		}

		// Join the split date and time columns into one timestamp;
		// unparseable rows fall back to the migration time
		dt, err := time.ParseInLocation(timeLayout, reportDate+"T"+submissionTime, c.timezone)
		if err != nil {
			dt = time.Now().In(c.timezone)
		}

		_, err = tx.Exec(
			`INSERT OR REPLACE INTO reports_new (user_tag, report_type, day_number, datetime, username, message_id) VALUES (?, ?, ?, ?, ?, ?)`,
			userTag, reportType, 1, dt.Format(timeLayout), username, messageID,
		)
		if err != nil {
			return fmt.Errorf("failed to migrate row for %s/%s: %w", userTag, reportType, err)
		}
		migrated++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate legacy rows: %w", err)
	}
	rows.Close()

	if _, err := tx.Exec(`DROP TABLE reports`); err != nil {
		return fmt.Errorf("failed to drop legacy table: %w", err)
	}
	if _, err := tx.Exec(`ALTER TABLE reports_new RENAME TO reports`); err != nil {
		return fmt.Errorf("failed to rename migration table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	c.logger.Info().
		Int("migrated_rows", migrated).
		Msg("Schema migration completed")

	return nil
}

// tableColumns returns the column set of a table, empty if the table
// does not exist
func (c *Client) tableColumns(table string) (map[string]bool, error) {
	rows, err := c.db.Query(fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect table %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dflt sql.NullString
		var pk int

		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table info: %w", err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate table info: %w", err)
	}

	return columns, nil
}
