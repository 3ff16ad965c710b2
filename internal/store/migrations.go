package store

// migrations is an ordered list of SQL migration groups. Each group runs in
// one transaction. Append new groups; never edit an applied one.
// The DDL is shared by Postgres and SQLite, so timestamps are stored as
// fixed-width UTC text and civil dates as YYYY-MM-DD.
var migrations = [][]string{
	// 1: CRM mirror
	{
		`CREATE TABLE IF NOT EXISTS deals (
			id                        TEXT PRIMARY KEY,
			name                      TEXT NOT NULL DEFAULT '',
			owner_id                  TEXT NOT NULL DEFAULT '',
			pipeline                  TEXT NOT NULL DEFAULT '',
			stage_id                  TEXT NOT NULL DEFAULT '',
			stage_name                TEXT NOT NULL DEFAULT '',
			amount                    DOUBLE PRECISION,
			close_date                TEXT,
			created_at                TEXT NOT NULL,
			last_activity_at          TEXT,
			next_activity_at          TEXT,
			next_step_text            TEXT NOT NULL DEFAULT '',
			next_step_status          TEXT NOT NULL DEFAULT '',
			next_step_due_date        TEXT,
			sql_entered_at            TEXT,
			demo_scheduled_entered_at TEXT,
			demo_completed_entered_at TEXT,
			lead_source               TEXT NOT NULL DEFAULT '',
			products                  TEXT NOT NULL DEFAULT '',
			substage                  TEXT NOT NULL DEFAULT '',
			deal_type                 TEXT NOT NULL DEFAULT '',
			synced_at                 TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_pipeline ON deals (pipeline)`,
		`CREATE INDEX IF NOT EXISTS idx_deals_owner ON deals (owner_id)`,

		`CREATE TABLE IF NOT EXISTS calls (
			deal_id     TEXT NOT NULL,
			id          TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			direction   TEXT NOT NULL DEFAULT '',
			disposition TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (deal_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS emails (
			deal_id     TEXT NOT NULL,
			id          TEXT NOT NULL,
			occurred_at TEXT NOT NULL,
			direction   TEXT NOT NULL DEFAULT '',
			from_email  TEXT NOT NULL DEFAULT '',
			subject     TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (deal_id, id)
		)`,
		`CREATE TABLE IF NOT EXISTS meetings (
			deal_id    TEXT NOT NULL,
			id         TEXT NOT NULL,
			created_at TEXT NOT NULL,
			start_time TEXT,
			title      TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (deal_id, id)
		)`,
	},
	// 2: hygiene commitments
	{
		`CREATE TABLE IF NOT EXISTS hygiene_commitments (
			id              TEXT PRIMARY KEY,
			deal_id         TEXT NOT NULL,
			commitment_date TEXT NOT NULL,
			status          TEXT NOT NULL,
			created_by      TEXT NOT NULL DEFAULT '',
			created_at      TEXT NOT NULL,
			resolved_at     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_commitments_deal ON hygiene_commitments (deal_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_commitments_status ON hygiene_commitments (status)`,
	},
	// 3: manual clears on still-incomplete deals
	{
		`ALTER TABLE hygiene_commitments ADD COLUMN withdrawn INTEGER NOT NULL DEFAULT 0`,
	},
}
