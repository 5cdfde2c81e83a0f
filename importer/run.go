package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	sie "kastelo.dev/sieio"
	"kastelo.dev/sieio/ledger"
)

const (
	openingDescription = "Ingående balans"
	closingDescription = "Utgående balans"
	resultDescription  = "Resultat"
)

// run holds the state of one import.
type run struct {
	im       *Importer
	doc      *sie.Document
	settings Settings
	counts   ledger.ImportCounts
	warnings []string
	ids      map[string]int64
}

func (r *run) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.warnings = append(r.warnings, msg)
	r.im.logger.Warn("SIE import", "owner", r.settings.OwnerID, "msg", msg)
}

func (r *run) execute(ctx context.Context, vers []sie.Verification, missing []string) error {
	tx, err := r.im.store.Begin(ctx)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if err := r.checkDuplicates(ctx, tx, vers); err != nil {
		return err
	}
	if err := r.ensureAccounts(ctx, tx, vers, missing); err != nil {
		return err
	}
	if err := r.importVerifications(ctx, tx, vers); err != nil {
		return err
	}
	if err := r.importBalances(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// checkDuplicates fails the import if any verification already exists.
func (r *run) checkDuplicates(ctx context.Context, tx ledger.Tx, vers []sie.Verification) error {
	if len(vers) == 0 {
		return nil
	}
	descrs := make([]string, len(vers))
	for i, ver := range vers {
		descrs[i] = VerificationDescription(ver)
	}
	found, err := tx.FindTransactionsByDescription(ctx, r.settings.OwnerID, descrs)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return nil
	}
	dup := &DuplicateError{}
	for _, txn := range found {
		dup.Conflicts = append(dup.Conflicts, Conflict{Description: txn.Description, Date: txn.Date})
	}
	return dup
}

// ensureAccounts creates every account the import will post to, plus the
// ones the user asked for, unless they already exist.
func (r *run) ensureAccounts(ctx context.Context, tx ledger.Tx, vers []sie.Verification, missing []string) error {
	needed := make(sie.AccountSet)
	for _, ver := range vers {
		for _, p := range ver.Postings {
			needed.Add(p.Account)
		}
	}
	for _, b := range r.balanceLines() {
		needed.Add(b.Account)
	}
	for _, num := range missing {
		needed.Add(num)
	}

	nums := make([]string, 0, len(needed))
	for num := range needed {
		if num != "" {
			nums = append(nums, num)
		}
	}
	sort.Strings(nums)

	for _, num := range nums {
		class, cat := sie.ClassifyAccount(num, r.im.thresholds)
		acc := &ledger.Account{
			Number:   num,
			Name:     r.accountName(num),
			Class:    class,
			Category: string(cat),
		}
		created, err := tx.CreateAccount(ctx, acc)
		if err != nil {
			return err
		}
		if created {
			r.counts.AccountsCreated++
		}
		r.ids[num] = acc.ID
	}
	return nil
}

func (r *run) accountName(num string) string {
	if name := r.doc.AccountName(num); name != "" {
		return name
	}
	if name, ok := sie.StandardAccountName(num); ok {
		return name
	}
	return "Konto " + num
}

func (r *run) accountID(ctx context.Context, tx ledger.Tx, num string) (int64, bool, error) {
	if id, ok := r.ids[num]; ok {
		return id, true, nil
	}
	id, err := tx.FindAccountID(ctx, num)
	if errors.Is(err, ledger.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	r.ids[num] = id
	return id, true, nil
}

func (r *run) importVerifications(ctx context.Context, tx ledger.Tx, vers []sie.Verification) error {
	for _, ver := range vers {
		date, err := sie.ParseDate(ver.Date)
		if err != nil {
			r.warn("verifikation %s har ogiltigt datum %q och hoppades över", ver.Key(), ver.Date)
			r.counts.Skipped++
			r.counts.Verifications--
			continue
		}
		if !ver.Balanced() {
			r.warn("verifikation %s balanserar inte", ver.Key())
		}

		txn := &ledger.Transaction{
			OwnerID:     r.settings.OwnerID,
			Date:        date,
			Description: VerificationDescription(ver),
			Comment:     ver.Description,
			VerSeries:   ver.Series,
			VerNumber:   ver.Number,
		}
		id, err := tx.InsertTransaction(ctx, txn)
		if errors.Is(err, ledger.ErrDuplicate) {
			// Another import got there first, or the file repeats the
			// verification number.
			return &DuplicateError{Conflicts: []Conflict{{Description: txn.Description, Date: date}}}
		}
		if err != nil {
			return err
		}
		r.counts.Transactions++

		for _, p := range ver.Postings {
			if err := r.insertPosting(ctx, tx, id, p.Account, p.Amount, ver.Key()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) insertPosting(ctx context.Context, tx ledger.Tx, txnID int64, account string, amount float64, source string) error {
	if math.IsNaN(amount) {
		r.warn("%s: ogiltigt belopp på konto %s hoppades över", source, account)
		r.counts.Skipped++
		return nil
	}
	accID, ok, err := r.accountID(ctx, tx, account)
	if err != nil {
		return err
	}
	if !ok {
		r.warn("%s: konto %s saknas, posten hoppades över", source, account)
		r.counts.Skipped++
		return nil
	}

	dc := sie.SignedToDebitCredit(amount)
	err = tx.InsertPosting(ctx, ledger.Posting{
		TransactionID: txnID,
		AccountID:     accID,
		Debit:         decimal.NewFromFloat(dc.Debit).Round(2),
		Credit:        decimal.NewFromFloat(dc.Credit).Round(2),
	})
	if err != nil {
		return err
	}
	r.counts.Postings++
	return nil
}

// balanceLines returns the balance records the import will write.
func (r *run) balanceLines() []sie.Balance {
	res := append([]sie.Balance(nil), r.doc.OpeningBalances...)
	if len(r.doc.Verifications) == 0 {
		res = append(res, r.doc.ClosingBalances...)
		res = append(res, r.doc.IncomeStatement...)
	}
	return res
}

// importBalances writes opening balances as one transaction. Closing balances
// and the income statement are only imported when the file has no
// verifications, since the verifications already add up to them.
func (r *run) importBalances(ctx context.Context, tx ledger.Tx) error {
	start, end := r.yearBounds()

	n, err := r.importBalanceSet(ctx, tx, r.doc.OpeningBalances, start, openingDescription)
	if err != nil {
		return err
	}
	r.counts.OpeningBalances = n

	if len(r.doc.Verifications) > 0 {
		return nil
	}

	n, err = r.importBalanceSet(ctx, tx, r.doc.ClosingBalances, end, closingDescription)
	if err != nil {
		return err
	}
	r.counts.ClosingBalances = n

	n, err = r.importBalanceSet(ctx, tx, r.doc.IncomeStatement, end, resultDescription)
	if err != nil {
		return err
	}
	r.counts.IncomeStatement = n
	return nil
}

func (r *run) importBalanceSet(ctx context.Context, tx ledger.Tx, bals []sie.Balance, date time.Time, descr string) (int, error) {
	var lines []sie.Balance
	for _, b := range bals {
		if math.IsNaN(b.Amount) {
			r.warn("%s: ogiltigt belopp på konto %s hoppades över", descr, b.Account)
			r.counts.Skipped++
			continue
		}
		if b.Amount == 0 {
			continue
		}
		lines = append(lines, b)
	}
	if len(lines) == 0 {
		return 0, nil
	}

	id, err := tx.InsertTransaction(ctx, &ledger.Transaction{
		OwnerID:     r.settings.OwnerID,
		Date:        date,
		Description: fmt.Sprintf("%s %s", descr, date.Format("2006")),
		Comment:     r.doc.Header.CompanyName,
	})
	if err != nil {
		return 0, err
	}
	r.counts.Transactions++

	before := r.counts.Postings
	for _, b := range lines {
		if err := r.insertPosting(ctx, tx, id, b.Account, b.Amount, descr); err != nil {
			return 0, err
		}
	}
	return r.counts.Postings - before, nil
}

// yearBounds returns the first and last day of the file's current year.
func (r *run) yearBounds() (time.Time, time.Time) {
	if fy, ok := r.doc.CurrentYear(); ok {
		start, err1 := sie.ParseDate(fy.Start)
		end, err2 := sie.ParseDate(fy.End)
		if err1 == nil && err2 == nil {
			return start, end
		}
	}
	year := r.im.now().Year()
	if first, _ := r.doc.DateRange(); first != "" {
		if d, err := sie.ParseDate(first); err == nil {
			year = d.Year()
		}
	} else if d, err := sie.ParseDate(r.doc.Header.GeneratedAt); err == nil {
		year = d.Year()
	}
	return time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
}
