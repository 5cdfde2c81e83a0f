// Package importer moves a parsed SIE document into the ledger store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	sie "kastelo.dev/sieio"
	"kastelo.dev/sieio/ledger"
)

// FileInfo describes the uploaded file.
type FileInfo struct {
	Name     string
	Size     int64
	Encoding string
}

// Settings are the user's choices for one import.
type Settings struct {
	OwnerID             string
	ImportVerifications bool
	// StartDate and EndDate limit which verifications are imported. Both are
	// inclusive, YYYYMMDD or YYYY-MM-DD, and empty means unbounded.
	StartDate string
	EndDate   string
	// Excluded holds verification keys ("A-12") the user deselected.
	Excluded []string
}

type Result struct {
	Success   bool
	Error     string
	Conflicts []Conflict
	Counts    ledger.ImportCounts
	Warnings  []string
	LogID     uuid.UUID
}

// Conflict is an already imported transaction that blocks an import.
type Conflict struct {
	Description string
	Date        time.Time
}

// DuplicateError is returned when verifications in the document have been
// imported before. It matches ledger.ErrDuplicate.
type DuplicateError struct {
	Conflicts []Conflict
}

func (e *DuplicateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Importen avbröts: %d verifikationer finns redan i bokföringen. Ta bort dem eller avmarkera dem och försök igen.", len(e.Conflicts))
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n%s (%s)", c.Description, c.Date.Format("2006-01-02"))
	}
	return b.String()
}

func (e *DuplicateError) Is(target error) bool {
	return target == ledger.ErrDuplicate
}

type Importer struct {
	store         ledger.Store
	logger        *slog.Logger
	thresholds    sie.Thresholds
	maxUploadSize int64
	now           func() time.Time
}

type Option func(*Importer)

func WithLogger(l *slog.Logger) Option {
	return func(im *Importer) {
		im.logger = l
	}
}

func WithThresholds(t sie.Thresholds) Option {
	return func(im *Importer) {
		im.thresholds = t
	}
}

func WithMaxUploadSize(n int64) Option {
	return func(im *Importer) {
		im.maxUploadSize = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(im *Importer) {
		im.now = now
	}
}

func New(store ledger.Store, opts ...Option) *Importer {
	im := &Importer{
		store:         store,
		logger:        slog.Default(),
		thresholds:    sie.DefaultThresholds(),
		maxUploadSize: sie.DefaultMaxUploadSize,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Preview is what the user reviews before confirming an import.
type Preview struct {
	Document   *sie.Document
	Encoding   string
	DecodeLog  []string
	Analysis   sie.AccountAnalysis
	Unbalanced []string
	DateFrom   string
	DateTo     string
}

// Inspect validates, decodes and parses an upload and checks its accounts
// against the store.
func (im *Importer) Inspect(ctx context.Context, data []byte, fi FileInfo) (*Preview, error) {
	size := fi.Size
	if size == 0 {
		size = int64(len(data))
	}
	if err := sie.ValidateUpload(fi.Name, size, im.maxUploadSize); err != nil {
		return nil, err
	}

	dec := sie.DecodeWith(data, sie.DecodeOptions{Logger: im.logger})
	doc := sie.ParseString(dec.Text)
	for _, w := range doc.Warnings {
		im.logger.Warn("SIE parse warning", "file", fi.Name, "line", w.Line, "msg", w.Message)
	}

	existing, err := im.existingAccounts(ctx)
	if err != nil {
		return nil, err
	}

	p := &Preview{
		Document:  doc,
		Encoding:  dec.Encoding,
		DecodeLog: dec.Log,
		Analysis:  sie.Analyzer{Thresholds: im.thresholds}.Analyze(doc, existing, sie.UsedAccounts(doc)),
	}
	p.DateFrom, p.DateTo = doc.DateRange()
	for _, ver := range doc.Verifications {
		if !ver.Balanced() {
			p.Unbalanced = append(p.Unbalanced, ver.Key())
		}
	}
	return p, nil
}

func (im *Importer) existingAccounts(ctx context.Context) ([]string, error) {
	accs, err := im.store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	nums := make([]string, len(accs))
	for i, acc := range accs {
		nums[i] = acc.Number
	}
	return nums, nil
}

// Import writes doc to the ledger in one transaction. missing lists accounts
// the user confirmed should be created; any other referenced account that
// the store lacks is created as well. The returned Result is filled in even
// when err is non-nil.
func (im *Importer) Import(ctx context.Context, doc *sie.Document, missing []string, s Settings, fi FileInfo) (Result, error) {
	vers := selectVerifications(doc, s)
	first, last := (&sie.Document{Verifications: vers}).DateRange()

	l := &ledger.ImportLog{
		OwnerID:       s.OwnerID,
		FileName:      fi.Name,
		FileSize:      fi.Size,
		Encoding:      fi.Encoding,
		SourceProgram: strings.TrimSpace(doc.Header.ProgramName + " " + doc.Header.ProgramVersion),
		SourceOrgNo:   doc.Header.OrgNo,
		SourceCompany: doc.Header.CompanyName,
		DateFrom:      first,
		DateTo:        last,
		Counts: ledger.ImportCounts{
			Accounts:      len(doc.Accounts),
			Verifications: len(vers),
		},
		Status: ledger.ImportInProgress,
	}
	if err := im.store.CreateImportLog(ctx, l); err != nil {
		return Result{Error: err.Error()}, fmt.Errorf("creating import log: %w", err)
	}

	r := &run{
		im:       im,
		doc:      doc,
		settings: s,
		counts:   l.Counts,
		ids:      make(map[string]int64),
	}
	err := r.execute(ctx, vers, missing)

	res := Result{
		Success:  err == nil,
		Counts:   r.counts,
		Warnings: r.warnings,
		LogID:    l.ID,
	}
	l.Counts = r.counts
	if err != nil {
		res.Error = err.Error()
		var dup *DuplicateError
		if errors.As(err, &dup) {
			res.Conflicts = dup.Conflicts
		}
		l.Status = ledger.ImportFailed
		l.Error = err.Error()
		im.logger.Warn("SIE import failed", "log", l.ID, "file", fi.Name, "owner", s.OwnerID, "error", err)
	} else {
		l.Status = ledger.ImportCompleted
		im.logger.Info("SIE import completed", "log", l.ID, "file", fi.Name, "owner", s.OwnerID,
			"transactions", r.counts.Transactions, "postings", r.counts.Postings, "accountsCreated", r.counts.AccountsCreated)
	}

	if uerr := im.store.UpdateImportLog(ctx, l); uerr != nil {
		im.logger.Error("Updating import log", "log", l.ID, "error", uerr)
		if err == nil {
			err = fmt.Errorf("updating import log: %w", uerr)
		}
	}
	return res, err
}

// selectVerifications applies the date filter and the user's exclusions.
func selectVerifications(doc *sie.Document, s Settings) []sie.Verification {
	if !s.ImportVerifications {
		return nil
	}
	start := compactDate(s.StartDate)
	end := compactDate(s.EndDate)
	excluded := make(map[string]bool, len(s.Excluded))
	for _, key := range s.Excluded {
		excluded[key] = true
	}

	var res []sie.Verification
	for _, ver := range doc.Verifications {
		if start != "" && ver.Date < start {
			continue
		}
		if end != "" && ver.Date > end {
			continue
		}
		if excluded[ver.Key()] {
			continue
		}
		res = append(res, ver)
	}
	return res
}

func compactDate(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "-", "")
}

// VerificationDescription is the transaction description an imported
// verification gets. It is also what duplicate detection looks for.
func VerificationDescription(ver sie.Verification) string {
	return fmt.Sprintf("Verification %s:%s", ver.Series, ver.Number)
}
