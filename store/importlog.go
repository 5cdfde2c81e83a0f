package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kastelo.dev/sieio/ledger"
)

func (s *Store) CreateImportLog(ctx context.Context, l *ledger.ImportLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.Must(uuid.NewV7())
	}
	now := time.Now().UTC()
	l.CreatedAt, l.UpdatedAt = now, now
	if l.Status == "" {
		l.Status = ledger.ImportInProgress
	}

	counts, err := json.Marshal(l.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	_, err = s.writer.ExecContext(ctx,
		s.rebind(`INSERT INTO import_logs (id, owner_id, file_name, file_size, encoding, source_program,
			source_org_no, source_company, date_from, date_to, counts, status, error, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		l.ID.String(), l.OwnerID, l.FileName, l.FileSize, l.Encoding, l.SourceProgram,
		l.SourceOrgNo, l.SourceCompany, l.DateFrom, l.DateTo, string(counts), string(l.Status), l.Error,
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert import log: %w", mapError(err))
	}
	return nil
}

func (s *Store) UpdateImportLog(ctx context.Context, l *ledger.ImportLog) error {
	l.UpdatedAt = time.Now().UTC()
	counts, err := json.Marshal(l.Counts)
	if err != nil {
		return fmt.Errorf("marshal counts: %w", err)
	}
	res, err := s.writer.ExecContext(ctx,
		s.rebind(`UPDATE import_logs SET counts = ?, status = ?, error = ?, updated_at = ? WHERE id = ?`),
		string(counts), string(l.Status), l.Error, l.UpdatedAt.Format(time.RFC3339Nano), l.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update import log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("import log %s: %w", l.ID, ledger.ErrNotFound)
	}
	return nil
}

const importLogColumns = `id, owner_id, file_name, file_size, encoding, source_program, source_org_no,
	source_company, date_from, date_to, counts, status, error, created_at, updated_at`

func (s *Store) GetImportLog(ctx context.Context, id uuid.UUID) (*ledger.ImportLog, error) {
	row := s.reader.QueryRowContext(ctx,
		s.rebind(`SELECT `+importLogColumns+` FROM import_logs WHERE id = ?`), id.String())
	l, err := scanImportLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import log %s: %w", id, ledger.ErrNotFound)
	}
	return l, err
}

// ListImportLogs returns the owner's import attempts, newest first.
func (s *Store) ListImportLogs(ctx context.Context, ownerID string) ([]ledger.ImportLog, error) {
	rows, err := s.reader.QueryContext(ctx,
		s.rebind(`SELECT `+importLogColumns+` FROM import_logs WHERE owner_id = ? ORDER BY created_at DESC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list import logs: %w", err)
	}
	defer rows.Close()

	var logs []ledger.ImportLog
	for rows.Next() {
		l, err := scanImportLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImportLog(row scanner) (*ledger.ImportLog, error) {
	var l ledger.ImportLog
	var id, counts, status, created, updated string
	err := row.Scan(&id, &l.OwnerID, &l.FileName, &l.FileSize, &l.Encoding, &l.SourceProgram, &l.SourceOrgNo,
		&l.SourceCompany, &l.DateFrom, &l.DateTo, &counts, &status, &l.Error, &created, &updated)
	if err != nil {
		return nil, err
	}
	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("import log id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(counts), &l.Counts); err != nil {
		return nil, fmt.Errorf("import log %s counts: %w", id, err)
	}
	l.Status = ledger.ImportStatus(status)
	l.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	l.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return &l, nil
}
