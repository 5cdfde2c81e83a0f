package excel

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	sie "kastelo.dev/sieio"
)

// ErrNoPeriod is returned when a document has neither a current fiscal year
// nor any dated verifications to report on.
var ErrNoPeriod = errors.New("document has no reporting period")

const monthKey = "2006-01"

type section struct {
	name       string
	start, end int
}

var sections = []section{
	{"Nettoomsättning", 3000, 3799},
	{"Aktiverat arbete för egen räkning", 3800, 3899},
	{"Övriga rörelseintäkter", 3900, 3999},
	{"Varukostnader", 4000, 4999},
	{"Externa kostnader", 5000, 6999},
	{"Personalkostnader", 7000, 7699},
	{"Av- och nedskrivningar", 7700, 7899},
	{"Övriga rörelsekostnader", 7900, 7999},
	{"Finansiella poster", 8000, 8998},
}

type summary struct {
	name        string
	sectionIdxs []int
	afterIdx    int
}

var summaries = []summary{
	{"Rörelsens intäkter", []int{0, 1, 2}, 2},
	{"Rörelsens kostnader", []int{3, 4, 5}, 5},
	{"Rörelseresultat", []int{0, 1, 2, 3, 4, 5}, 5},
}

// equityAccounts make up the "Eget kapital" row.
var equityAccounts = []string{"2081", "2091"}

// monthly holds the postings of one account per calendar month.
type monthly struct {
	months map[string][]float64
	total  float64
}

func (m *monthly) add(month string, amount float64) {
	m.months[month] = append(m.months[month], amount)
	m.total += amount
}

// inverse flips the sign so that income shows as positive numbers.
func (m *monthly) inverse() *monthly {
	res := &monthly{months: make(map[string][]float64, len(m.months)), total: -m.total}
	for k, vs := range m.months {
		inv := make([]float64, len(vs))
		for i, v := range vs {
			inv[i] = -v
		}
		res.months[k] = inv
	}
	return res
}

// period is the run of months a result sheet covers.
type period struct {
	starts, ends time.Time
}

func (p period) months() int {
	sy, sm, _ := p.starts.Date()
	ey, em, _ := p.ends.Date()
	return (ey-sy)*12 + int(em) - int(sm) + 1
}

func (p period) each(fn func(t time.Time, col int)) {
	col := 3
	for t := p.starts; !t.After(p.ends); t = t.AddDate(0, 1, 0) {
		fn(t, col)
		col++
	}
}

// totalCol is the column holding row totals, one blank column after the
// last month.
func (p period) totalCol() int {
	return p.months() + 4
}

func reportPeriod(doc *sie.Document) (period, error) {
	from, to := "", ""
	if fy, ok := doc.CurrentYear(); ok {
		from, to = fy.Start, fy.End
	} else {
		from, to = doc.DateRange()
	}
	start, err := sie.ParseDate(from)
	if err != nil {
		return period{}, ErrNoPeriod
	}
	end, err := sie.ParseDate(to)
	if err != nil || end.Before(start) {
		return period{}, ErrNoPeriod
	}
	return period{
		starts: time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC),
		ends:   time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC),
	}, nil
}

// monthlyPostings sums verification postings per account and month.
func monthlyPostings(doc *sie.Document) map[string]*monthly {
	res := make(map[string]*monthly)
	for _, ver := range doc.Verifications {
		date, err := sie.ParseDate(ver.Date)
		if err != nil {
			continue
		}
		month := date.Format(monthKey)
		for _, p := range ver.Postings {
			m, ok := res[p.Account]
			if !ok {
				m = &monthly{months: make(map[string][]float64)}
				res[p.Account] = m
			}
			m.add(month, p.Amount)
		}
	}
	return res
}

func sectionOf(account string) int {
	id, err := strconv.Atoi(account)
	if err != nil {
		return -1
	}
	for i, sec := range sections {
		if sec.start <= id && id <= sec.end {
			return i
		}
	}
	return -1
}

// seriesOf lists the verification series in doc, sorted.
func seriesOf(doc *sie.Document) []string {
	var res []string
	for _, ver := range doc.Verifications {
		if !slices.Contains(res, ver.Series) {
			res = append(res, ver.Series)
		}
	}
	sort.Strings(res)
	return res
}

func forSeries(doc *sie.Document, series string) *sie.Document {
	cpy := *doc
	cpy.Verifications = nil
	for _, ver := range doc.Verifications {
		if ver.Series == series {
			cpy.Verifications = append(cpy.Verifications, ver)
		}
	}
	return &cpy
}

func sheetName(s string) string {
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, s)
	if len([]rune(s)) > 31 {
		s = string([]rune(s)[:31])
	}
	return s
}

// ResultXLSX renders the income statement of doc with one column per month
// of the current fiscal year. Documents with several verification series get
// an extra sheet per series.
func ResultXLSX(doc *sie.Document) ([]byte, error) {
	p, err := reportPeriod(doc)
	if err != nil {
		return nil, err
	}

	xlsx := newWorkbook()
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	writeResultSheet(xlsx, sheet, doc, p)
	if err := xlsx.SetSheetName(sheet, "Totalt"); err != nil {
		return nil, err
	}

	if series := seriesOf(doc); len(series) > 1 {
		for _, s := range series {
			name := sheetName("Serie " + s)
			if _, err := xlsx.NewSheet(name); err != nil {
				return nil, err
			}
			writeResultSheet(xlsx, name, forSeries(doc, s), p)
		}
	}

	xlsx.SetActiveSheet(0)
	return finish(xlsx)
}

func writeResultSheet(xlsx *excelize.File, sheet string, doc *sie.Document, p period) {
	sec := -1
	row := 1
	startRow := 1
	var sumRows []int
	numMonths := p.months()
	lastCol := p.totalCol() + 1

	_ = xlsx.SetColWidth(sheet, "B", "B", 55)
	_ = xlsx.SetColWidth(sheet, "C", colName(p.totalCol()), 10)

	// Eget kapital vid årets ingång
	var inCapital float64
	for _, b := range doc.OpeningBalances {
		if slices.Contains(equityAccounts, b.Account) {
			inCapital -= b.Amount
		}
	}

	setStyle(xlsx, sheet, cell(1, 1), cell(lastCol, 1000), defaultStyle())

	xlsxHeaderMonths(xlsx, sheet, row, "", p)
	row++

	_ = xlsx.SetPanes(sheet, &excelize.Panes{
		ActivePane:  "bottomRight",
		Freeze:      true,
		XSplit:      2,
		YSplit:      1,
		TopLeftCell: "C2",
	})

	postings := monthlyPostings(doc)
	numbers := make([]string, 0, len(postings))
	for num := range postings {
		numbers = append(numbers, num)
	}
	sort.Strings(numbers)

	summarySumRows := make(map[string][]int)
	for _, num := range numbers {
		bal := postings[num]
		if bal.total == 0 {
			continue
		}
		newSec := sectionOf(num)
		if newSec == -1 {
			continue
		}
		bal = bal.inverse()

		if newSec != sec {
			if sec != -1 {
				for _, sum := range summaries {
					if slices.Contains(sum.sectionIdxs, sec) {
						summarySumRows[sum.name] = append(summarySumRows[sum.name], row)
					}
				}

				xlsxSumMonths(xlsx, sheet, row, "", p, startRow)
				sumRows = append(sumRows, row)
				row++

				for _, sum := range summaries {
					if sum.afterIdx == sec {
						row++
						xlsxSectionSum(xlsx, sheet, row, sum.name, p, summarySumRows[sum.name])
						row++
					}
				}
			}

			row++
			xlsxHeader(xlsx, sheet, row, numMonths, sections[newSec].name)
			row++
			startRow = row
			sec = newSec
		}

		xlsxAccountMonths(xlsx, sheet, row, num, doc.AccountName(num), p, bal)
		row++
	}

	if sec != -1 {
		xlsxSumMonths(xlsx, sheet, row, "", p, startRow)
		sumRows = append(sumRows, row)
		row++
		row++
		xlsxSumSumMonths(xlsx, sheet, row, p, sumRows, postings, inCapital)
		row += 5
	}

	style, _ := xlsx.NewStyle(nil)
	_ = xlsx.SetCellStyle(sheet, cell(1, row+1), cell(lastCol, 1000), style)
}

func xlsxAccountMonths(xlsx *excelize.File, sheet string, row int, num, name string, p period, bal *monthly) {
	if id, err := strconv.Atoi(num); err == nil {
		_ = xlsx.SetCellInt(sheet, cell(1, row), id)
	}
	_ = xlsx.SetCellValue(sheet, cell(2, row), name)
	p.each(func(t time.Time, col int) {
		v := bal.months[t.Format(monthKey)]
		switch len(v) {
		case 0:
		case 1:
			_ = xlsx.SetCellValue(sheet, cell(col, row), v[0])
		default:
			_ = xlsx.SetCellFormula(sheet, cell(col, row), sumFormula(v))
		}
		if len(v) > 1 {
			setStyle(xlsx, sheet, cell(col, row), cell(col, row), defaultStyle(), customNumberFormat(), highlight())
		} else {
			setStyle(xlsx, sheet, cell(col, row), cell(col, row), defaultStyle(), customNumberFormat())
		}
	})

	col := p.totalCol()
	_ = xlsx.SetCellFormula(sheet, cell(col, row), fmt.Sprintf("SUM(%s:%s)", cell(3, row), cell(col-2, row)))
	setStyle(xlsx, sheet, cell(col, row), cell(col, row), defaultStyle(), fontItalic(), customNumberFormat())
}

func xlsxHeaderMonths(xlsx *excelize.File, sheet string, row int, hdr string, p period) {
	_ = xlsx.SetCellValue(sheet, cell(2, row), hdr)
	p.each(func(t time.Time, col int) {
		_ = xlsx.SetCellValue(sheet, cell(col, row), t.Format(monthKey))
	})
	col := p.totalCol()
	_ = xlsx.SetCellValue(sheet, cell(col, row), "Total")
	setStyle(xlsx, sheet, cell(2, row), cell(col, row), defaultStyle(), fontBold(), textAlignment("right"))
}

func xlsxHeader(xlsx *excelize.File, sheet string, row, cols int, hdr string) {
	_ = xlsx.SetCellValue(sheet, cell(2, row), hdr)
	setStyle(xlsx, sheet, cell(2, row), cell(cols+4, row), defaultStyle(), fontBold(), thinBorder("bottom"))
}

func xlsxSumMonths(xlsx *excelize.File, sheet string, row int, hdr string, p period, startRow int) {
	_ = xlsx.SetCellValue(sheet, cell(2, row), hdr)
	p.each(func(_ time.Time, col int) {
		_ = xlsx.SetCellFormula(sheet, cell(col, row), fmt.Sprintf("SUM(%s:%s)", cell(col, startRow), cell(col, row-1)))
	})
	col := p.totalCol()
	_ = xlsx.SetCellFormula(sheet, cell(col, row), fmt.Sprintf("SUM(%s:%s)", cell(col, startRow), cell(col, row-1)))

	setStyle(xlsx, sheet, cell(2, row), cell(col-1, row), defaultStyle(), fontBold(), customNumberFormat(), thickBorder("top"))
	setStyle(xlsx, sheet, cell(col, row), cell(col, row), defaultStyle(), fontBoldItalic(), customNumberFormat(), thickBorder("top"))
}

func sumcells(col int, rows []int) string {
	var b strings.Builder
	b.WriteString(cell(col, rows[0]))
	for _, row := range rows[1:] {
		b.WriteString("+")
		b.WriteString(cell(col, row))
	}
	return b.String()
}

func xlsxSumSumMonths(xlsx *excelize.File, sheet string, row int, p period, sumRows []int, postings map[string]*monthly, inCapital float64) {
	_ = xlsx.SetCellValue(sheet, cell(2, row), "Resultat")

	// sum

	p.each(func(_ time.Time, col int) {
		_ = xlsx.SetCellFormula(sheet, cell(col, row), sumcells(col, sumRows))
	})
	ecol := p.totalCol()
	_ = xlsx.SetCellFormula(sheet, cell(ecol, row), sumcells(ecol, sumRows))

	setStyle(xlsx, sheet, cell(2, row), cell(ecol-1, row), defaultStyle(), fontBold(), customNumberFormat(), thickBorder("top"))
	setStyle(xlsx, sheet, cell(ecol, row), cell(ecol, row), defaultStyle(), fontBoldItalic(), customNumberFormat(), thickBorder("top"))
	resultRow := row

	// eget kapital

	row++
	_ = xlsx.SetCellValue(sheet, cell(2, row), "Eget kapital")
	p.each(func(t time.Time, col int) {
		capital := inCapital
		for _, acc := range equityAccounts {
			if m, ok := postings[acc]; ok {
				for _, v := range m.months[t.Format(monthKey)] {
					capital -= v
				}
			}
		}
		formula := cell(col, resultRow)
		if col != 3 {
			formula += "+" + cell(col-1, row)
		}
		if capital != 0 {
			formula += fmt.Sprintf("+%v", capital)
		}
		_ = xlsx.SetCellFormula(sheet, cell(col, row), formula)
		inCapital = 0 // only add initial capital in the first month
	})
	setStyle(xlsx, sheet, cell(2, row), cell(ecol, row), defaultStyle(), fontItalic(), customNumberFormat())

	// quarterly sums

	row++
	_ = xlsx.SetCellValue(sheet, cell(2, row), "Kvartalsvis resultat")
	for m := 3; m <= p.months(); m += 3 {
		col := m + 2
		_ = xlsx.SetCellFormula(sheet, cell(col, row), fmt.Sprintf("SUM(%s:%s)", cell(col-2, resultRow), cell(col, resultRow)))
	}
	setStyle(xlsx, sheet, cell(2, row), cell(ecol-1, row), defaultStyle(), fontBold(), customNumberFormat())
	setStyle(xlsx, sheet, cell(ecol, row), cell(ecol, row), defaultStyle(), fontBoldItalic(), customNumberFormat())

	// half year sums

	row++
	_ = xlsx.SetCellValue(sheet, cell(2, row), "Halvårsvis resultat")
	for m := 6; m <= p.months(); m += 6 {
		col := m + 2
		_ = xlsx.SetCellFormula(sheet, cell(col, row), fmt.Sprintf("SUM(%s:%s)", cell(col-5, resultRow), cell(col, resultRow)))
	}
	setStyle(xlsx, sheet, cell(2, row), cell(ecol-1, row), defaultStyle(), fontBold(), customNumberFormat(), thickBorder("bottom"))
	setStyle(xlsx, sheet, cell(ecol, row), cell(ecol, row), defaultStyle(), fontBoldItalic(), customNumberFormat(), thickBorder("bottom"))
}

func xlsxSectionSum(xlsx *excelize.File, sheet string, row int, hdr string, p period, sumRows []int) {
	_ = xlsx.SetCellValue(sheet, cell(2, row), hdr)

	p.each(func(_ time.Time, col int) {
		_ = xlsx.SetCellFormula(sheet, cell(col, row), sumcells(col, sumRows))
	})
	ecol := p.totalCol()
	_ = xlsx.SetCellFormula(sheet, cell(ecol, row), sumcells(ecol, sumRows))

	setStyle(xlsx, sheet, cell(2, row), cell(ecol-1, row), defaultStyle(), verticalCenter(), fontBold(), customNumberFormat(), thickBorder("top", "bottom"))
	setStyle(xlsx, sheet, cell(ecol, row), cell(ecol, row), defaultStyle(), verticalCenter(), fontBoldItalic(), customNumberFormat(), thickBorder("top", "bottom"))
	_ = xlsx.SetRowHeight(sheet, row, 20)
}

// sumFormula writes several postings as an explicit sum so that each one
// stays visible in the cell.
func sumFormula(v []float64) string {
	var b strings.Builder
	for i, d := range v {
		switch {
		case i > 0 && d >= 0:
			b.WriteString(" + ")
		case i > 0 && d < 0:
			b.WriteString(" - ")
			d = -d
		}
		b.WriteString(strconv.FormatFloat(d, 'f', -1, 64))
	}
	return b.String()
}
