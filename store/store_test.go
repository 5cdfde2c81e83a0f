package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kastelo.dev/sieio/ledger"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := Open(DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("mysql", "x")
	assert.Error(t, err)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	acc := &ledger.Account{Number: "1930", Name: "Bank", Class: 1, Category: "asset"}
	created, err := tx.CreateAccount(ctx, acc)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotZero(t, acc.ID)

	again := &ledger.Account{Number: "1930", Name: "Annat namn"}
	created, err = tx.CreateAccount(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, acc.ID, again.ID)

	id, err := tx.FindAccountID(ctx, "1930")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, id)

	_, err = tx.FindAccountID(ctx, "9999")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	require.NoError(t, tx.Commit())

	accs, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accs, 1)
	assert.Equal(t, "Bank", accs[0].Name)
}

func TestTransactionsAndPostings(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)

	bank := &ledger.Account{Number: "1930", Name: "Bank"}
	sales := &ledger.Account{Number: "3001", Name: "Försäljning"}
	_, err = tx.CreateAccount(ctx, bank)
	require.NoError(t, err)
	_, err = tx.CreateAccount(ctx, sales)
	require.NoError(t, err)

	insert := func(date time.Time, descr string, amount string) int64 {
		t.Helper()
		txn := &ledger.Transaction{OwnerID: "owner", Date: date, Description: descr}
		id, err := tx.InsertTransaction(ctx, txn)
		require.NoError(t, err)
		amt := decimal.RequireFromString(amount)
		require.NoError(t, tx.InsertPosting(ctx, ledger.Posting{TransactionID: id, AccountID: bank.ID, Debit: amt}))
		require.NoError(t, tx.InsertPosting(ctx, ledger.Posting{TransactionID: id, AccountID: sales.ID, Credit: amt}))
		return id
	}
	second := insert(day(2024, 5, 1), "Verification A:2", "12.50")
	first := insert(day(2024, 1, 1), "Verification A:1", "100")
	insert(day(2025, 1, 1), "Verification A:3", "1")

	found, err := tx.FindTransactionsByDescription(ctx, "owner", []string{"Verification A:1", "Verification A:2", "Verification A:9"})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, first, found[0].ID)
	assert.Equal(t, second, found[1].ID)

	found, err = tx.FindTransactionsByDescription(ctx, "someone else", []string{"Verification A:1"})
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, tx.Commit())

	rows, err := s.ListPostingRows(ctx, "owner", day(2024, 12, 31))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, first, rows[0].TransactionID)
	assert.Equal(t, "1930", rows[0].AccountNumber)
	assert.True(t, rows[0].Debit.Equal(decimal.NewFromInt(100)))
	assert.True(t, rows[1].Credit.Equal(decimal.NewFromInt(100)))
	assert.True(t, rows[2].Debit.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, day(2024, 5, 1), rows[2].Date)
}

func TestPostingConstraint(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	acc := &ledger.Account{Number: "1930", Name: "Bank"}
	_, err = tx.CreateAccount(ctx, acc)
	require.NoError(t, err)
	id, err := tx.InsertTransaction(ctx, &ledger.Transaction{OwnerID: "o", Date: day(2024, 1, 1), Description: "x"})
	require.NoError(t, err)

	err = tx.InsertPosting(ctx, ledger.Posting{TransactionID: id, AccountID: acc.ID, Debit: decimal.NewFromInt(1), Credit: decimal.NewFromInt(1)})
	assert.Error(t, err)
}

func TestVerificationUnique(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	txn := func(owner string) *ledger.Transaction {
		return &ledger.Transaction{OwnerID: owner, Date: day(2024, 1, 1), Description: "Verification A:1", VerSeries: "A", VerNumber: "1"}
	}
	_, err = tx.InsertTransaction(ctx, txn("o"))
	require.NoError(t, err)
	_, err = tx.InsertTransaction(ctx, txn("other"))
	require.NoError(t, err)
	_, err = tx.InsertTransaction(ctx, txn("o"))
	assert.ErrorIs(t, err, ledger.ErrDuplicate)

	// Transactions without a verification are not constrained.
	for i := 0; i < 2; i++ {
		_, err = tx.InsertTransaction(ctx, &ledger.Transaction{OwnerID: "o", Date: day(2024, 1, 1), Description: "Opening balances"})
		require.NoError(t, err)
	}
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.CreateAccount(ctx, &ledger.Account{Number: "1930", Name: "Bank"})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	accs, err := s.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accs)
}

func TestImportLog(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	l := &ledger.ImportLog{OwnerID: "o", FileName: "bokslut.se", FileSize: 1234, SourceProgram: "Fortnox"}
	require.NoError(t, s.CreateImportLog(ctx, l))
	assert.Equal(t, ledger.ImportInProgress, l.Status)

	l.Status = ledger.ImportCompleted
	l.Counts.Transactions = 3
	require.NoError(t, s.UpdateImportLog(ctx, l))

	got, err := s.GetImportLog(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.ImportCompleted, got.Status)
	assert.Equal(t, 3, got.Counts.Transactions)
	assert.Equal(t, "Fortnox", got.SourceProgram)

	logs, err := s.ListImportLogs(ctx, "o")
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	missing := &ledger.ImportLog{ID: l.ID}
	missing.ID[0] ^= 0xff
	assert.ErrorIs(t, s.UpdateImportLog(ctx, missing), ledger.ErrNotFound)
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT $1, $2", pg.rebind("SELECT ?, ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "SELECT ?, ?", lite.rebind("SELECT ?, ?"))
}
