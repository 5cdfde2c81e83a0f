package sie

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	defaultFormat      = "PC8"
	defaultType        = "4"
	defaultAccountPlan = "BAS2014"
	emptyOrgNo         = "0000000000"
)

// Encoder writes a Document as SIE 4 text. Verifications that do not balance
// are left out and reported through Skipped.
type Encoder struct {
	Logger *slog.Logger
	Now    func() time.Time

	skipped []string
}

func (e *Encoder) Skipped() []string {
	return e.skipped
}

// Encode writes doc to w in the code page named by its #FORMAT tag.
func (e *Encoder) Encode(w io.Writer, doc *Document) error {
	text := e.Text(doc)
	var out []byte
	if strings.EqualFold(formatOf(doc), "PC8") {
		bs, err := encoding.ReplaceUnsupported(charmap.CodePage850.NewEncoder()).Bytes([]byte(text))
		if err != nil {
			return fmt.Errorf("encoding cp850: %w", err)
		}
		out = bs
	} else {
		out = []byte(text)
	}
	_, err := w.Write(out)
	return err
}

// Text renders doc as SIE text in UTF-8.
func (e *Encoder) Text(doc *Document) string {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	e.skipped = nil

	var b strings.Builder
	h := doc.Header
	version := h.ProgramVersion
	if version == "" {
		version = "1.0"
	}
	gen := h.GeneratedAt
	if gen == "" {
		gen = FormatDate(now())
	}
	typ := h.Type
	if typ == "" {
		typ = defaultType
	}
	plan := h.AccountPlan
	if plan == "" {
		plan = defaultAccountPlan
	}

	fmt.Fprintf(&b, "#FLAGGA %d\n", h.Flag)
	fmt.Fprintf(&b, "#PROGRAM %s %s\n", quote(h.ProgramName), bare(version))
	fmt.Fprintf(&b, "#FORMAT %s\n", formatOf(doc))
	fmt.Fprintf(&b, "#GEN %s\n", gen)
	fmt.Fprintf(&b, "#SIETYP %s\n", typ)
	fmt.Fprintf(&b, "#ORGNR %s\n", NormalizeOrgNo(h.OrgNo))
	fmt.Fprintf(&b, "#FNAMN %s\n", quote(h.CompanyName))
	for _, fy := range h.FiscalYears {
		fmt.Fprintf(&b, "#RAR %d %s %s\n", fy.Offset, fy.Start, fy.End)
	}
	fmt.Fprintf(&b, "#KPTYP %s\n", plan)

	for _, acc := range doc.Accounts {
		fmt.Fprintf(&b, "#KONTO %s %s\n", bare(acc.Number), quote(acc.Name))
	}

	for _, set := range []struct {
		tag  string
		bals []Balance
	}{
		{"#IB", doc.OpeningBalances},
		{"#UB", doc.ClosingBalances},
		{"#RES", doc.IncomeStatement},
	} {
		for _, bal := range set.bals {
			if math.IsNaN(bal.Amount) {
				logger.Warn("Skipping balance with invalid amount", "record", set.tag, "account", bal.Account, "offset", bal.YearOffset)
				continue
			}
			if !significant(bal.Amount) {
				continue
			}
			fmt.Fprintf(&b, "%s %d %s %s\n", set.tag, bal.YearOffset, bare(bal.Account), FormatAmount(bal.Amount))
		}
	}

	for _, ver := range doc.Verifications {
		if !ver.Balanced() {
			logger.Warn("Skipping unbalanced verification", "series", ver.Series, "number", ver.Number, "date", ver.Date)
			e.skipped = append(e.skipped, ver.Key())
			continue
		}
		fmt.Fprintf(&b, "#VER %s %s %s %s %s\n", quote(ver.Series), quote(ver.Number), ver.Date, quote(ver.Description), ver.Date)
		b.WriteString("{\n")
		for _, p := range ver.Postings {
			fmt.Fprintf(&b, "\t#TRANS %s {} %s\n", bare(p.Account), FormatAmount(p.Amount))
		}
		b.WriteString("}\n")
	}

	return b.String()
}

func formatOf(doc *Document) string {
	if doc.Header.Format == "" {
		return defaultFormat
	}
	return doc.Header.Format
}

// significant reports whether a balance is large enough to be written.
func significant(amount float64) bool {
	return math.Abs(amount) > BalanceTolerance
}

// FormatAmount renders an amount with two decimals.
func FormatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// EscapeField makes s safe inside a quoted field. The grammar has no line
// continuation so control whitespace becomes a plain space.
func EscapeField(s string) string {
	if !strings.ContainsAny(s, "\\\"\n\r\t") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n', '\r', '\t':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func quote(s string) string {
	return `"` + EscapeField(s) + `"`
}

// bare writes an unquoted token, falling back to quoting when s would not
// survive as a single word.
func bare(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\"{}\\") {
		return quote(s)
	}
	return s
}

// NormalizeOrgNo returns a bare 10 digit organisation number. A 12 digit
// personal identity number loses its century digits; anything else becomes
// ten zeros.
func NormalizeOrgNo(s string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	switch len(digits) {
	case 10:
		return digits
	case 12:
		return digits[2:]
	default:
		return emptyOrgNo
	}
}
