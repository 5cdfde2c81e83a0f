// Package exporter renders an owner's ledger as an SIE 4 file.
package exporter

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	sie "kastelo.dev/sieio"
	"kastelo.dev/sieio/ledger"
)

const (
	DefaultYearRange = 7
	DefaultSeries    = "A"
)

type Options struct {
	ProgramName    string
	ProgramVersion string
	OrgNo          string
	CompanyName    string
	AccountPlan    string
	// YearRange is how many years before the exported year get #RAR and
	// balance records.
	YearRange int
	Series    string
	Logger    *slog.Logger
	Now       func() time.Time
}

type Exporter struct {
	store ledger.Store
	opts  Options
}

func New(store ledger.Store, opts Options) *Exporter {
	if opts.YearRange <= 0 {
		opts.YearRange = DefaultYearRange
	}
	if opts.Series == "" {
		opts.Series = DefaultSeries
	}
	if opts.ProgramName == "" {
		opts.ProgramName = "sieio"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Exporter{store: store, opts: opts}
}

// Document builds the SIE document for ownerID and calendar year.
func (e *Exporter) Document(ctx context.Context, ownerID string, year int) (*sie.Document, error) {
	accs, err := e.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	rows, err := e.store.ListPostingRows(ctx, ownerID, time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}

	ledgerRows := make([]sie.LedgerRow, len(rows))
	var current []sie.LedgerRow
	for i, row := range rows {
		ledgerRows[i] = sie.LedgerRow{
			TransactionID: row.TransactionID,
			Date:          row.Date,
			Description:   row.Description,
			Comment:       row.Comment,
			Account:       row.AccountNumber,
			Debit:         row.Debit.InexactFloat64(),
			Credit:        row.Credit.InexactFloat64(),
		}
		if row.Date.Year() == year {
			current = append(current, ledgerRows[i])
		}
	}

	accounts := make([]sie.Account, len(accs))
	for i, acc := range accs {
		accounts[i] = sie.Account{Number: acc.Number, Name: acc.Name}
	}

	// One extra year so the oldest exported year has opening balances.
	balances := sie.AccumulateBalances(ledgerRows, year, e.opts.YearRange+1)

	return sie.Build(sie.BuildInput{
		ProgramName:    e.opts.ProgramName,
		ProgramVersion: e.opts.ProgramVersion,
		OrgNo:          e.opts.OrgNo,
		CompanyName:    e.opts.CompanyName,
		AccountPlan:    e.opts.AccountPlan,
		GeneratedAt:    sie.FormatDate(e.opts.Now()),
		Year:           year,
		YearRange:      e.opts.YearRange,
		Accounts:       accounts,
		Balances:       balances,
		Verifications:  sie.GroupVerifications(current, e.opts.Series).List(),
	}), nil
}

// Export returns the SIE file in cp850.
func (e *Exporter) Export(ctx context.Context, ownerID string, year int) ([]byte, error) {
	doc, err := e.Document(ctx, ownerID, year)
	if err != nil {
		return nil, err
	}

	enc := &sie.Encoder{Logger: e.opts.Logger, Now: e.opts.Now}
	var buf bytes.Buffer
	if err := enc.Encode(&buf, doc); err != nil {
		return nil, err
	}
	if skipped := enc.Skipped(); len(skipped) > 0 {
		e.opts.Logger.Warn("SIE export left out unbalanced verifications", "owner", ownerID, "year", year, "verifications", skipped)
	}
	e.opts.Logger.Info("SIE export", "owner", ownerID, "year", year, "accounts", len(doc.Accounts), "verifications", len(doc.Verifications))
	return buf.Bytes(), nil
}
