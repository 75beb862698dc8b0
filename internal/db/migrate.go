package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Every statement is idempotent so the
// full list is replayed on each open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN has no IF NOT EXISTS form.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		title      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS areas (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id     INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		objective   TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0,
		deleted_at  TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS strategies (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		area_id         INTEGER NOT NULL REFERENCES areas(id) ON DELETE CASCADE,
		description     TEXT NOT NULL,
		completion_pct  REAL NOT NULL DEFAULT 0
		                CHECK(completion_pct >= 0 AND completion_pct <= 100),
		assigned_budget REAL NOT NULL DEFAULT 0 CHECK(assigned_budget >= 0),
		executed_budget REAL NOT NULL DEFAULT 0 CHECK(executed_budget >= 0),
		order_index     INTEGER NOT NULL DEFAULT 0,
		deleted_at      TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS interventions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		strategy_id INTEGER NOT NULL REFERENCES strategies(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		order_index INTEGER NOT NULL DEFAULT 0,
		deleted_at  TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_areas_plan ON areas(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_strategies_area ON strategies(area_id)`,
	`CREATE INDEX IF NOT EXISTS idx_interventions_strategy ON interventions(strategy_id)`,

	`CREATE TABLE IF NOT EXISTS events (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		plan_id         INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		intervention_id INTEGER REFERENCES interventions(id) ON DELETE SET NULL,
		name            TEXT NOT NULL,
		responsible     TEXT NOT NULL DEFAULT '',
		objective       TEXT NOT NULL DEFAULT '',
		location        TEXT NOT NULL DEFAULT '',
		start_date      TEXT NOT NULL DEFAULT '',
		end_date        TEXT NOT NULL DEFAULT '',
		total_cost      REAL NOT NULL DEFAULT 0,
		created_at      TEXT NOT NULL,
		updated_at      TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS event_financing (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id    INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		kind        TEXT NOT NULL CHECK(kind IN ('institutional','contribution')),
		source      TEXT NOT NULL,
		amount      REAL NOT NULL DEFAULT 0,
		order_index INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS event_dates (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id    INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		date        TEXT NOT NULL,
		note        TEXT NOT NULL DEFAULT '',
		order_index INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS event_attachments (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		name     TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_events_plan ON events(plan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_event_financing_event ON event_financing(event_id, kind)`,
	`CREATE INDEX IF NOT EXISTS idx_event_dates_event ON event_dates(event_id)`,

	// Attachments recorded before content types were tracked.
	`ALTER TABLE event_attachments ADD COLUMN content_type TEXT NOT NULL DEFAULT ''`,
}
