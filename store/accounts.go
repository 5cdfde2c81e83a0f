package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"kastelo.dev/sieio/ledger"
)

func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, number, name, class, category FROM accounts ORDER BY number`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var acc ledger.Account
		if err := rows.Scan(&acc.ID, &acc.Number, &acc.Name, &acc.Class, &acc.Category); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

func (t *Tx) FindAccountID(ctx context.Context, number string) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, t.s.rebind(`SELECT id FROM accounts WHERE number = ?`), number).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("account %s: %w", number, ledger.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("find account %s: %w", number, err)
	}
	return id, nil
}

func (t *Tx) CreateAccount(ctx context.Context, acc *ledger.Account) (bool, error) {
	err := t.tx.QueryRowContext(ctx,
		t.s.rebind(`INSERT INTO accounts (number, name, class, category) VALUES (?, ?, ?, ?)
			ON CONFLICT (number) DO NOTHING RETURNING id`),
		acc.Number, acc.Name, acc.Class, acc.Category,
	).Scan(&acc.ID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("insert account %s: %w", acc.Number, mapError(err))
	}

	// Already there.
	id, err := t.FindAccountID(ctx, acc.Number)
	if err != nil {
		return false, err
	}
	acc.ID = id
	return false, nil
}
