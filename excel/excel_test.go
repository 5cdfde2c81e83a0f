package excel

import (
	"bytes"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	sie "kastelo.dev/sieio"
)

const reportFile = `#FLAGGA 0
#PROGRAM "Fortnox" 3.4
#FORMAT PC8
#SIETYP 4
#FNAMN "Kastelo AB"
#RAR 0 20240101 20241231
#KONTO 1930 "Företagskonto"
#KONTO 2081 "Aktiekapital"
#KONTO 2440 "Leverantörsskulder"
#KONTO 3001 "Försäljning"
#KONTO 5010 "Lokalhyra"
#IB 0 1930 25000.00
#IB 0 2081 -25000.00
#VER A 1 20240115 "Faktura 1"
{
	#TRANS 1930 {} 1000.00
	#TRANS 3001 {} -1000.00
}
#VER A 2 20240120 "Faktura 2"
{
	#TRANS 1930 {} 500.00
	#TRANS 3001 {} -500.00
}
#VER B 1 20240305 "Hyra"
{
	#TRANS 5010 {} 300.00
	#TRANS 2440 {} -300.00
}
`

func open(t *testing.T, bs []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(bs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestBalanceXLSX(t *testing.T) {
	doc := sie.ParseString(reportFile)
	bs, err := BalanceXLSX(doc)
	require.NoError(t, err)

	f := open(t, bs)
	assert.Equal(t, []string{"Balansräkning"}, f.GetSheetList())

	rows, err := f.GetRows("Balansräkning", excelize.Options{RawCellValue: true})
	require.NoError(t, err)

	find := func(label string) []string {
		for _, r := range rows {
			if len(r) > 1 && r[1] == label {
				return r
			}
		}
		t.Fatalf("no row %q", label)
		return nil
	}

	bank := find("Företagskonto")
	assert.Equal(t, "1930", bank[0])
	assert.Equal(t, "25000", bank[2])
	assert.Equal(t, "1500", bank[3])
	assert.Equal(t, "26500", bank[4])

	find("Tillgångar")
	find("Eget kapital, skulder")
	find("Summa tillgångar")
	res := find("Beräknat resultat")
	assert.Equal(t, "1200", res[4])
}

func TestBalanceAccounts(t *testing.T) {
	doc := sie.ParseString(reportFile + "#UB 0 1930 30000.00\n")
	bals := balanceAccounts(doc)

	var nums []string
	for _, b := range bals {
		nums = append(nums, b.number)
	}
	assert.Equal(t, []string{"1930", "2081", "2440"}, nums)

	// An explicit closing balance wins over the computed one.
	assert.Equal(t, 30000.0, bals[0].out)
	assert.Equal(t, -25000.0, bals[1].out)
	assert.Equal(t, -300.0, bals[2].out)
}

func TestResultXLSX(t *testing.T) {
	doc := sie.ParseString(reportFile)
	bs, err := ResultXLSX(doc)
	require.NoError(t, err)

	f := open(t, bs)
	assert.Equal(t, []string{"Totalt", "Serie A", "Serie B"}, f.GetSheetList())

	hdr, err := f.GetCellValue("Totalt", "C1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01", hdr)
	total, err := f.GetCellValue("Totalt", "P1")
	require.NoError(t, err)
	assert.Equal(t, "Total", total)

	rows, err := f.GetRows("Totalt", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	var sales, rent int
	for i, r := range rows {
		if len(r) > 0 && r[0] == "3001" {
			sales = i + 1
		}
		if len(r) > 0 && r[0] == "5010" {
			rent = i + 1
		}
	}
	require.NotZero(t, sales)
	require.NotZero(t, rent)
	assert.Less(t, sales, rent)

	// Two postings in January become a visible sum.
	formula, err := f.GetCellFormula("Totalt", cell(3, sales))
	require.NoError(t, err)
	assert.Equal(t, "1000 + 500", formula)

	v, err := f.GetCellValue("Totalt", cell(5, rent), excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "-300", v)

	formula, err = f.GetCellFormula("Totalt", cell(16, rent))
	require.NoError(t, err)
	assert.Equal(t, "SUM(C"+strconv.Itoa(rent)+":N"+strconv.Itoa(rent)+")", formula)
}

func TestResultXLSXSingleSeries(t *testing.T) {
	doc := sie.ParseString(reportFile)
	doc.Verifications = doc.Verifications[:2]
	bs, err := ResultXLSX(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Totalt"}, open(t, bs).GetSheetList())
}

func TestResultXLSXNoPeriod(t *testing.T) {
	_, err := ResultXLSX(sie.ParseString(`#KONTO 3001 "Försäljning"`))
	assert.ErrorIs(t, err, ErrNoPeriod)
}

func TestReportPeriodFallsBackToVerifications(t *testing.T) {
	doc := sie.ParseString(`#VER A 1 20230310 "a"
#TRANS 1930 {} 1
#VER A 2 20230822 "b"
#TRANS 1930 {} 1`)
	p, err := reportPeriod(doc)
	require.NoError(t, err)
	assert.Equal(t, 6, p.months())
	assert.Equal(t, 10, p.totalCol())
}

func TestSumFormula(t *testing.T) {
	assert.Equal(t, "100", sumFormula([]float64{100}))
	assert.Equal(t, "100 - 25.5 + 3", sumFormula([]float64{100, -25.5, 3}))
	assert.Equal(t, "-1 - 2", sumFormula([]float64{-1, -2}))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Serie AB", sheetName("Serie A/B"))
	assert.Len(t, []rune(sheetName("Serie åäöåäöåäöåäöåäöåäöåäöåäöåäö")), 31)
}
