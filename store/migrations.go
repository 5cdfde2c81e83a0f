package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := s.migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) migrateV1(ctx context.Context, tx *sql.Tx) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.driver == DriverPostgres {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id       ` + serial + `,
			number   TEXT NOT NULL UNIQUE,
			name     TEXT NOT NULL,
			class    INTEGER NOT NULL DEFAULT 0,
			category TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			id          ` + serial + `,
			owner_id    TEXT NOT NULL,
			date        TEXT NOT NULL,
			description TEXT NOT NULL,
			comment     TEXT NOT NULL DEFAULT '',
			ver_series  TEXT,
			ver_number  TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_owner_date ON transactions(owner_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_description ON transactions(owner_id, description)`,
		// Two imports of the same verification cannot both commit.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_verification
			ON transactions(owner_id, ver_series, ver_number) WHERE ver_series IS NOT NULL`,

		`CREATE TABLE IF NOT EXISTS postings (
			id             ` + serial + `,
			transaction_id BIGINT NOT NULL REFERENCES transactions(id),
			account_id     BIGINT NOT NULL REFERENCES accounts(id),
			debit          NUMERIC(18,2) NOT NULL DEFAULT 0,
			credit         NUMERIC(18,2) NOT NULL DEFAULT 0,
			CHECK (debit >= 0 AND credit >= 0 AND NOT (debit > 0 AND credit > 0))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_transaction ON postings(transaction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_postings_account ON postings(account_id)`,

		`CREATE TABLE IF NOT EXISTS import_logs (
			id             TEXT PRIMARY KEY,
			owner_id       TEXT NOT NULL,
			file_name      TEXT NOT NULL,
			file_size      BIGINT NOT NULL DEFAULT 0,
			encoding       TEXT NOT NULL DEFAULT '',
			source_program TEXT NOT NULL DEFAULT '',
			source_org_no  TEXT NOT NULL DEFAULT '',
			source_company TEXT NOT NULL DEFAULT '',
			date_from      TEXT NOT NULL DEFAULT '',
			date_to        TEXT NOT NULL DEFAULT '',
			counts         TEXT NOT NULL DEFAULT '{}',
			status         TEXT NOT NULL CHECK (status IN ('in-progress','completed','failed')),
			error          TEXT NOT NULL DEFAULT '',
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_import_logs_owner ON import_logs(owner_id, created_at)`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:min(len(stmt), 60)], err)
		}
	}
	return nil
}
