package sie // import "kastelo.dev/sieio"

import (
	"fmt"
	"time"
)

const dateLayout = "20060102"

type Document struct {
	Header          Header
	Accounts        []Account
	Verifications   []Verification
	OpeningBalances []Balance
	ClosingBalances []Balance
	IncomeStatement []Balance
	Warnings        []Warning
}

type Header struct {
	Flag           int
	ProgramName    string
	ProgramVersion string
	Format         string
	GeneratedAt    string
	Type           string
	OrgNo          string
	CompanyName    string
	AccountPlan    string
	FiscalYears    []FiscalYear
}

// FiscalYear is a #RAR record. Offset 0 is the current year, -1 the one before.
type FiscalYear struct {
	Offset int
	Start  string
	End    string
}

type Account struct {
	Number string
	Name   string
}

type Verification struct {
	Series      string
	Number      string
	Date        string
	Description string
	Postings    []Posting
}

// Key identifies a verification the way users exclude it from an import.
func (v Verification) Key() string {
	return v.Series + "-" + v.Number
}

func (v Verification) Balanced() bool {
	return IsVerificationBalanced(v.Postings, BalanceTolerance)
}

type Posting struct {
	Account string
	Amount  float64
}

type Balance struct {
	YearOffset int
	Account    string
	Amount     float64
}

type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// CurrentYear returns the #RAR record with offset 0, if any.
func (d *Document) CurrentYear() (FiscalYear, bool) {
	for _, fy := range d.Header.FiscalYears {
		if fy.Offset == 0 {
			return fy, true
		}
	}
	return FiscalYear{}, false
}

// DateRange returns the first and last verification dates.
func (d *Document) DateRange() (first, last string) {
	for _, v := range d.Verifications {
		if first == "" || v.Date < first {
			first = v.Date
		}
		if last == "" || v.Date > last {
			last = v.Date
		}
	}
	return first, last
}

// AccountName returns the #KONTO name for number, or "" when not declared.
func (d *Document) AccountName(number string) string {
	for _, acc := range d.Accounts {
		if acc.Number == number {
			return acc.Name
		}
	}
	return ""
}

// AccountSet is a set of account numbers.
type AccountSet map[string]struct{}

func (s AccountSet) Add(number string) {
	s[number] = struct{}{}
}

func (s AccountSet) Has(number string) bool {
	_, ok := s[number]
	return ok
}

// UsedAccounts returns every account referenced by postings, opening and
// closing balances and income statement lines.
func UsedAccounts(doc *Document) AccountSet {
	used := make(AccountSet)
	for _, v := range doc.Verifications {
		for _, p := range v.Postings {
			used.Add(p.Account)
		}
	}
	for _, bals := range [][]Balance{doc.OpeningBalances, doc.ClosingBalances, doc.IncomeStatement} {
		for _, b := range bals {
			used.Add(b.Account)
		}
	}
	return used
}

// ParseDate parses a SIE YYYYMMDD date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// FormatDate renders t as a SIE YYYYMMDD date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
