package sie

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type parseState int

const (
	noOpenVerification parseState = iota
	verificationOpen
)

type parser struct {
	doc      Document
	state    parseState
	cur      Verification
	line     int
	accounts map[string]int
}

// Parse reads decoded SIE text. It only fails when reading fails; malformed
// records end up as Document.Warnings. Lines have no length limit.
func Parse(r io.Reader) (*Document, error) {
	p := &parser{accounts: make(map[string]int)}
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			p.line++
			p.parseLine(line)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading SIE data: %w", err)
		}
	}
	p.flush()
	return &p.doc, nil
}

// ParseString parses already decoded text. The result is never nil.
func ParseString(text string) *Document {
	doc, err := Parse(strings.NewReader(text))
	if err != nil {
		return &Document{Warnings: []Warning{{Message: err.Error()}}}
	}
	return doc
}

func (p *parser) parseLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || line == "{" || line == "}" {
		return
	}
	words := splitWords(line)
	if len(words) == 0 {
		return
	}

	keyword := strings.ToUpper(words[0])
	if p.state == verificationOpen && !belongsToVerification(keyword) {
		p.flush()
	}

	h := &p.doc.Header
	switch keyword {
	case "#FLAGGA":
		h.Flag, _ = strconv.Atoi(wordAt(words, 1))

	case "#PROGRAM":
		h.ProgramName = wordAt(words, 1)
		h.ProgramVersion = wordAt(words, 2)

	case "#FORMAT":
		h.Format = wordAt(words, 1)

	case "#GEN":
		h.GeneratedAt = wordAt(words, 1)

	case "#SIETYP":
		h.Type = wordAt(words, 1)

	case "#ORGNR":
		h.OrgNo = wordAt(words, 1)

	case "#FNAMN":
		h.CompanyName = wordAt(words, 1)

	case "#KPTYP":
		h.AccountPlan = wordAt(words, 1)

	case "#RAR":
		offset, err := strconv.Atoi(wordAt(words, 1))
		if err != nil {
			p.warn("invalid year offset %q in #RAR", wordAt(words, 1))
			return
		}
		h.FiscalYears = append(h.FiscalYears, FiscalYear{
			Offset: offset,
			Start:  wordAt(words, 2),
			End:    wordAt(words, 3),
		})

	case "#KONTO":
		p.addAccount(wordAt(words, 1), wordAt(words, 2))

	case "#IB":
		if b, ok := p.currentYearBalance(words); ok {
			p.doc.OpeningBalances = append(p.doc.OpeningBalances, b)
		}

	case "#UB":
		if b, ok := p.currentYearBalance(words); ok {
			p.doc.ClosingBalances = append(p.doc.ClosingBalances, b)
		}

	case "#RES":
		if b, ok := p.currentYearBalance(words); ok {
			p.doc.IncomeStatement = append(p.doc.IncomeStatement, b)
		}

	case "#VER":
		p.cur = Verification{
			Series:      wordAt(words, 1),
			Number:      wordAt(words, 2),
			Date:        wordAt(words, 3),
			Description: wordAt(words, 4),
		}
		p.state = verificationOpen

	case "#TRANS":
		if p.state != verificationOpen {
			p.warn("#TRANS outside of verification ignored")
			return
		}
		p.cur.Postings = append(p.cur.Postings, Posting{
			Account: wordAt(words, 1),
			Amount:  p.amount(wordAt(words, 3)),
		})
	}
}

// belongsToVerification reports whether a record may appear between #VER and
// the end of its block without closing it.
func belongsToVerification(keyword string) bool {
	switch keyword {
	case "#TRANS", "#RTRANS", "#BTRANS":
		return true
	}
	return false
}

func (p *parser) flush() {
	if p.state != verificationOpen {
		return
	}
	p.doc.Verifications = append(p.doc.Verifications, p.cur)
	p.cur = Verification{}
	p.state = noOpenVerification
}

func (p *parser) addAccount(number, name string) {
	if idx, ok := p.accounts[number]; ok {
		p.warn("account %s declared more than once", number)
		p.doc.Accounts[idx].Name = name
		return
	}
	p.accounts[number] = len(p.doc.Accounts)
	p.doc.Accounts = append(p.doc.Accounts, Account{Number: number, Name: name})
}

// currentYearBalance parses "#IB <offset> <account> <amount>". Only records for
// the current year are returned.
func (p *parser) currentYearBalance(words []string) (Balance, bool) {
	offset, err := strconv.Atoi(wordAt(words, 1))
	if err != nil {
		p.warn("invalid year offset %q in %s", wordAt(words, 1), words[0])
		return Balance{}, false
	}
	if offset != 0 {
		return Balance{}, false
	}
	return Balance{
		YearOffset: offset,
		Account:    wordAt(words, 2),
		Amount:     p.amount(wordAt(words, 3)),
	}, true
}

// amount parses a decimal amount. Malformed values become NaN so that the
// balance checks downstream reject them.
func (p *parser) amount(s string) float64 {
	v, err := ParseAmount(s)
	if err != nil {
		p.warn("%v", err)
	}
	return v
}

func (p *parser) warn(format string, args ...any) {
	p.doc.Warnings = append(p.doc.Warnings, Warning{Line: p.line, Message: fmt.Sprintf(format, args...)})
}

// ParseAmount parses a SIE amount. On failure it returns NaN together with
// the error.
func ParseAmount(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return math.NaN(), fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
