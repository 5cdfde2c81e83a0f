package main

import (
	"encoding/csv"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kingpin"
	"github.com/shopspring/decimal"

	sie "kastelo.dev/sieio"
)

func main() {
	dir := kingpin.Flag("dir", "Output directory").Default(".").ExistingDir()
	kingpin.Parse()

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		slog.Error("Reading input", "error", err)
		os.Exit(1)
	}
	dec := sie.Decode(data)
	doc := sie.ParseString(dec.Text)
	for _, w := range doc.Warnings {
		slog.Warn("SIE parse warning", "line", w.Line, "msg", w.Message)
	}

	if err := writeFile(filepath.Join(*dir, "accounts.csv"), doc, writeAccounts); err != nil {
		slog.Error("Writing accounts", "error", err)
		os.Exit(1)
	}
	if err := writeFile(filepath.Join(*dir, "transactions.csv"), doc, writeTransactions); err != nil {
		slog.Error("Writing transactions", "error", err)
		os.Exit(1)
	}
}

func writeFile(name string, doc *sie.Document, fn func(*csv.Writer, *sie.Document)) error {
	fd, err := os.Create(name)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(fd)
	fn(cw, doc)
	cw.Flush()
	if err := cw.Error(); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

func writeAccounts(cw *csv.Writer, doc *sie.Document) {
	_ = cw.Write([]string{"AccountID", "Type", "Description"})
	for _, acc := range doc.Accounts {
		_, cat := sie.ClassifyAccount(acc.Number, sie.DefaultThresholds())
		_ = cw.Write([]string{acc.Number, string(cat), acc.Name})
	}
}

func writeTransactions(cw *csv.Writer, doc *sie.Document) {
	totals := map[string]decimal.Decimal{}
	_ = cw.Write([]string{"TransactionID", "Date", "Series", "Description", "AccountID", "Amount", "Total"})

	vers := make([]sie.Verification, len(doc.Verifications))
	copy(vers, doc.Verifications)
	sort.SliceStable(vers, func(a, b int) bool {
		return vers[a].Date < vers[b].Date
	})
	for _, ver := range vers {
		date := ver.Date
		if t, err := sie.ParseDate(ver.Date); err == nil {
			date = t.Format("2006-01-02")
		}
		for _, tr := range ver.Postings {
			amount := decimal.Zero
			if !math.IsNaN(tr.Amount) {
				amount = decimal.NewFromFloat(tr.Amount).Round(2)
			}
			tot := totals[tr.Account].Add(amount)
			totals[tr.Account] = tot
			_ = cw.Write([]string{
				ver.Number,
				date,
				ver.Series,
				ver.Description,
				tr.Account,
				amount.StringFixed(2),
				tot.StringFixed(2),
			})
		}
	}
}
