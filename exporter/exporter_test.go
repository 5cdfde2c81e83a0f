package exporter

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sie "kastelo.dev/sieio"
	"kastelo.dev/sieio/importer"
	"kastelo.dev/sieio/ledger"
	"kastelo.dev/sieio/store"
)

const file2024 = `#RAR 0 20240101 20241231
#KONTO 1930 "Företagskonto"
#KONTO 3001 "Försäljning"
#KONTO 9050 "Egen"
#VER "A" "7" 20240115 "Faktura 1" 20240115
{
	#TRANS 1930 {} 1000.00
	#TRANS 3001 {} -1000.00
}
#VER "A" "9" 20240620 "Konsult \"X\"" 20240620
{
	#TRANS 1930 {} -500.00
	#TRANS 9050 {} 500.00
}
`

const file2023 = `#RAR 0 20230101 20231231
#KONTO 1930 "Företagskonto"
#KONTO 2081 "Aktiekapital"
#VER "B" "1" 20230102 "Aktiekapital" 20230102
{
	#TRANS 1930 {} 25000.00
	#TRANS 2081 {} -25000.00
}
`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setup(t *testing.T, files ...string) *store.Store {
	t.Helper()
	s, err := store.Open(store.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	im := importer.New(s, importer.WithLogger(quietLogger()))
	for _, f := range files {
		_, err := im.Import(context.Background(), sie.ParseString(f), nil,
			importer.Settings{OwnerID: "owner", ImportVerifications: true}, importer.FileInfo{Name: "test.se"})
		require.NoError(t, err)
	}
	return s
}

func newExporter(s ledger.Store) *Exporter {
	return New(s, Options{
		ProgramName: "sieio",
		OrgNo:       "556677-8899",
		CompanyName: "Kastelo AB",
		Logger:      quietLogger(),
		Now:         func() time.Time { return time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC) },
	})
}

func exportAndParse(t *testing.T, e *Exporter, year int) (*sie.Document, sie.Decoded) {
	t.Helper()
	data, err := e.Export(context.Background(), "owner", year)
	require.NoError(t, err)
	dec := sie.Decode(data)
	return sie.ParseString(dec.Text), dec
}

func TestExportRoundTrip(t *testing.T) {
	s := setup(t, file2024)
	doc, dec := exportAndParse(t, newExporter(s), 2024)

	assert.Equal(t, sie.EncodingCP850, dec.Encoding)
	assert.Equal(t, "PC8", doc.Header.Format)
	assert.Equal(t, "5566778899", doc.Header.OrgNo)
	assert.Equal(t, "20250110", doc.Header.GeneratedAt)
	require.Len(t, doc.Header.FiscalYears, DefaultYearRange+1)
	assert.Equal(t, sie.FiscalYear{Offset: -7, Start: "20170101", End: "20171231"}, doc.Header.FiscalYears[7])
	assert.Equal(t, "Företagskonto", doc.AccountName("1930"))

	require.Len(t, doc.Verifications, 2)
	assert.Equal(t, sie.Verification{
		Series: "A", Number: "1", Date: "20240115", Description: "Faktura 1",
		Postings: []sie.Posting{{Account: "1930", Amount: 1000}, {Account: "3001", Amount: -1000}},
	}, doc.Verifications[0])
	assert.Equal(t, "2", doc.Verifications[1].Number)
	assert.Equal(t, `Konsult "X"`, doc.Verifications[1].Description)

	assert.Empty(t, doc.OpeningBalances)
	assert.Equal(t, []sie.Balance{{YearOffset: 0, Account: "1930", Amount: 500}}, doc.ClosingBalances)
	assert.Equal(t, []sie.Balance{
		{YearOffset: 0, Account: "3001", Amount: -1000},
		{YearOffset: 0, Account: "9050", Amount: 500},
	}, doc.IncomeStatement)
	assert.Empty(t, doc.Warnings)
}

func TestExportOpeningBalances(t *testing.T) {
	s := setup(t, file2023, file2024)
	e := newExporter(s)

	doc, _ := exportAndParse(t, e, 2024)
	assert.Equal(t, []sie.Balance{
		{YearOffset: 0, Account: "1930", Amount: 25000},
		{YearOffset: 0, Account: "2081", Amount: -25000},
	}, doc.OpeningBalances)
	assert.Equal(t, []sie.Balance{
		{YearOffset: 0, Account: "1930", Amount: 25500},
		{YearOffset: 0, Account: "2081", Amount: -25000},
	}, doc.ClosingBalances)
	// Only the year's own verifications.
	assert.Len(t, doc.Verifications, 2)

	full, err := e.Document(context.Background(), "owner", 2024)
	require.NoError(t, err)
	var prior []sie.Balance
	for _, b := range full.ClosingBalances {
		if b.YearOffset == -1 {
			prior = append(prior, b)
		}
	}
	assert.Equal(t, []sie.Balance{
		{YearOffset: -1, Account: "1930", Amount: 25000},
		{YearOffset: -1, Account: "2081", Amount: -25000},
	}, prior)
}

func TestExportSkipsUnbalanced(t *testing.T) {
	s := setup(t, file2024)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	id, err := tx.FindAccountID(ctx, "1930")
	require.NoError(t, err)
	txnID, err := tx.InsertTransaction(ctx, &ledger.Transaction{OwnerID: "owner", Date: time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), Description: "Halv"})
	require.NoError(t, err)
	require.NoError(t, tx.InsertPosting(ctx, ledger.Posting{TransactionID: txnID, AccountID: id, Debit: decimal.NewFromInt(10)}))
	require.NoError(t, tx.Commit())

	data, err := newExporter(s).Export(ctx, "owner", 2024)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(data), "Halv"))

	doc := sie.ParseString(sie.Decode(data).Text)
	assert.Len(t, doc.Verifications, 2)
	for _, ver := range doc.Verifications {
		assert.True(t, ver.Balanced())
	}
}

func TestExportOtherOwner(t *testing.T) {
	s := setup(t, file2024)
	data, err := newExporter(s).Export(context.Background(), "nobody", 2024)
	require.NoError(t, err)
	doc := sie.ParseString(sie.Decode(data).Text)
	assert.Empty(t, doc.Verifications)
	assert.Len(t, doc.Accounts, 3, "accounts are shared between owners")
}
