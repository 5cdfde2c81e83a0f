package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kastelo.dev/sieio/ledger"
)

// descriptionBatch bounds the number of parameters in one IN clause.
const descriptionBatch = 500

// Tx is a ledger.Tx on a database transaction.
type Tx struct {
	s  *Store
	tx *sql.Tx
}

var _ ledger.Tx = (*Tx)(nil)

func (s *Store) Begin(ctx context.Context) (ledger.Tx, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{s: s, tx: tx}, nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", mapError(err))
	}
	return nil
}

func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}

func (t *Tx) InsertTransaction(ctx context.Context, txn *ledger.Transaction) (int64, error) {
	err := t.tx.QueryRowContext(ctx,
		t.s.rebind(`INSERT INTO transactions (owner_id, date, description, comment, ver_series, ver_number)
			VALUES (?, ?, ?, ?, ?, ?) RETURNING id`),
		txn.OwnerID, txn.Date.Format(dateLayout), txn.Description, txn.Comment,
		nullString(txn.VerSeries), nullString(txn.VerNumber),
	).Scan(&txn.ID)
	if err != nil {
		return 0, fmt.Errorf("insert transaction %q: %w", txn.Description, mapError(err))
	}
	return txn.ID, nil
}

func (t *Tx) InsertPosting(ctx context.Context, p ledger.Posting) error {
	_, err := t.tx.ExecContext(ctx,
		t.s.rebind(`INSERT INTO postings (transaction_id, account_id, debit, credit) VALUES (?, ?, ?, ?)`),
		p.TransactionID, p.AccountID, p.Debit.StringFixed(2), p.Credit.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("insert posting: %w", mapError(err))
	}
	return nil
}

func (t *Tx) FindTransactionsByDescription(ctx context.Context, ownerID string, descriptions []string) ([]ledger.Transaction, error) {
	var res []ledger.Transaction
	for start := 0; start < len(descriptions); start += descriptionBatch {
		batch := descriptions[start:min(start+descriptionBatch, len(descriptions))]

		args := make([]any, 0, len(batch)+1)
		args = append(args, ownerID)
		for _, d := range batch {
			args = append(args, d)
		}

		rows, err := t.tx.QueryContext(ctx,
			t.s.rebind(`SELECT id, owner_id, date, description, comment, COALESCE(ver_series, ''), COALESCE(ver_number, '')
				FROM transactions WHERE owner_id = ? AND description IN (`+placeholders(len(batch))+`)
				ORDER BY date, id`),
			args...)
		if err != nil {
			return nil, fmt.Errorf("find transactions: %w", err)
		}
		txns, err := scanTransactions(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, txns...)
	}
	return res, nil
}

func scanTransactions(rows *sql.Rows) ([]ledger.Transaction, error) {
	defer rows.Close()
	var txns []ledger.Transaction
	for rows.Next() {
		var txn ledger.Transaction
		var date string
		if err := rows.Scan(&txn.ID, &txn.OwnerID, &date, &txn.Description, &txn.Comment, &txn.VerSeries, &txn.VerNumber); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txn.Date, _ = time.Parse(dateLayout, date)
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

func (s *Store) ListPostingRows(ctx context.Context, ownerID string, until time.Time) ([]ledger.PostingRow, error) {
	rows, err := s.reader.QueryContext(ctx,
		s.rebind(`SELECT t.id, t.date, t.description, t.comment, a.number, p.debit, p.credit
			FROM postings p
			JOIN transactions t ON t.id = p.transaction_id
			JOIN accounts a ON a.id = p.account_id
			WHERE t.owner_id = ? AND t.date <= ?
			ORDER BY t.date, t.id, p.id`),
		ownerID, until.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("list postings: %w", err)
	}
	defer rows.Close()

	var res []ledger.PostingRow
	for rows.Next() {
		var row ledger.PostingRow
		var date string
		if err := rows.Scan(&row.TransactionID, &date, &row.Description, &row.Comment, &row.AccountNumber, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		row.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", row.TransactionID, err)
		}
		res = append(res, row)
	}
	return res, rows.Err()
}
