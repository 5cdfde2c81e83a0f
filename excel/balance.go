package excel

import (
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	sie "kastelo.dev/sieio"
)

// accountBalance is the current year position of one account.
type accountBalance struct {
	number string
	name   string
	in     float64
	out    float64
}

// balanceAccounts collects opening and closing balances for the balance
// sheet accounts in doc. When the file has no #UB for an account the closing
// balance is the opening balance plus the year's postings.
func balanceAccounts(doc *sie.Document) []accountBalance {
	byNumber := make(map[string]*accountBalance)
	get := func(num string) *accountBalance {
		b, ok := byNumber[num]
		if !ok {
			b = &accountBalance{number: num, name: doc.AccountName(num)}
			byNumber[num] = b
		}
		return b
	}

	moved := make(map[string]float64)
	for _, ver := range doc.Verifications {
		for _, p := range ver.Postings {
			if sie.IsBalanceAccount(p.Account) {
				moved[p.Account] += p.Amount
			}
		}
	}

	for _, b := range doc.OpeningBalances {
		if sie.IsBalanceAccount(b.Account) {
			get(b.Account).in += b.Amount
		}
	}
	hasClosing := make(sie.AccountSet)
	for _, b := range doc.ClosingBalances {
		if sie.IsBalanceAccount(b.Account) {
			get(b.Account).out += b.Amount
			hasClosing.Add(b.Account)
		}
	}
	for num, amount := range moved {
		if !hasClosing.Has(num) {
			acc := get(num)
			acc.out = acc.in + amount
		}
	}
	for num, acc := range byNumber {
		if !hasClosing.Has(num) && moved[num] == 0 {
			acc.out = acc.in
		}
	}

	res := make([]accountBalance, 0, len(byNumber))
	for _, b := range byNumber {
		res = append(res, *b)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].number < res[j].number
	})
	return res
}

func BalanceXLSX(doc *sie.Document) ([]byte, error) {
	xlsx := newWorkbook()
	sheet := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())

	// Set column widths
	_ = xlsx.SetColWidth(sheet, "A", "A", 8)
	_ = xlsx.SetColWidth(sheet, "B", "B", 50)
	_ = xlsx.SetColWidth(sheet, "C", "E", 15)

	writeBalanceSheet(xlsx, sheet, doc)
	if err := xlsx.SetSheetName(sheet, "Balansräkning"); err != nil {
		return nil, err
	}
	return finish(xlsx)
}

func writeBalanceSheet(xlsx *excelize.File, sheet string, doc *sie.Document) {
	var inSum, outSum float64
	var assets, liabilities float64
	row := 1

	header := func(title string) {
		_ = xlsx.SetCellValue(sheet, cell(2, row), title)
		_ = xlsx.SetCellValue(sheet, cell(3, row), "Ing balans")
		_ = xlsx.SetCellValue(sheet, cell(4, row), "Period")
		_ = xlsx.SetCellValue(sheet, cell(5, row), "Utg balans")
		setStyle(xlsx, sheet, cell(1, row), cell(2, row), defaultStyle(), fontBold(), thinBorder("bottom"))
		setStyle(xlsx, sheet, cell(3, row), cell(5, row), defaultStyle(), fontBold(), thinBorder("bottom"), textAlignment("right"))
		row++
	}
	sum := func(title string) {
		_ = xlsx.SetCellValue(sheet, cell(2, row), title)
		_ = xlsx.SetCellValue(sheet, cell(3, row), inSum)
		_ = xlsx.SetCellValue(sheet, cell(4, row), outSum-inSum)
		_ = xlsx.SetCellValue(sheet, cell(5, row), outSum)
		inSum, outSum = 0, 0
		setStyle(xlsx, sheet, cell(1, row), cell(5, row), defaultStyle(), fontBold(), customNumberFormat(), thickBorder("top"))
		row++
		setStyle(xlsx, sheet, cell(1, row), cell(5, row), defaultStyle())
		row++
	}

	setStyle(xlsx, sheet, cell(1, row), cell(6, row), defaultStyle(), fontBold(), thickBorder("top"))
	row++

	state := 0
	for _, acc := range balanceAccounts(doc) {
		switch {
		case state == 0 && acc.number < "2":
			header("Tillgångar")
			state = 1
		case state < 2 && acc.number >= "2":
			if state == 1 {
				sum("Summa tillgångar")
			}
			header("Eget kapital, skulder")
			state = 2
		}

		if acc.in == 0 && acc.out == 0 {
			continue
		}

		inSum += acc.in
		outSum += acc.out
		if state == 1 {
			assets += acc.out
		} else {
			liabilities += acc.out
		}

		if n, err := strconv.Atoi(acc.number); err == nil {
			_ = xlsx.SetCellInt(sheet, cell(1, row), n)
		} else {
			_ = xlsx.SetCellValue(sheet, cell(1, row), acc.number)
		}
		_ = xlsx.SetCellValue(sheet, cell(2, row), acc.name)
		_ = xlsx.SetCellValue(sheet, cell(3, row), acc.in)
		_ = xlsx.SetCellValue(sheet, cell(4, row), acc.out-acc.in)
		_ = xlsx.SetCellValue(sheet, cell(5, row), acc.out)
		setStyle(xlsx, sheet, cell(1, row), cell(2, row), defaultStyle())
		setStyle(xlsx, sheet, cell(3, row), cell(5, row), defaultStyle(), customNumberFormat())
		row++
	}
	switch state {
	case 1:
		sum("Summa tillgångar")
	case 2:
		sum("Summa eget kapital, skulder")
	}

	setStyle(xlsx, sheet, cell(1, row), cell(5, row), defaultStyle(), fontBold(), thickBorder("bottom"))
	row++

	// Assets and liabilities net to the result not yet booked against equity.
	_ = xlsx.SetCellValue(sheet, cell(2, row), "Beräknat resultat")
	_ = xlsx.SetCellValue(sheet, cell(5, row), assets+liabilities)
	setStyle(xlsx, sheet, cell(1, row), cell(5, row), defaultStyle(), fontBold(), customNumberFormat(), thickBorder("bottom"))

	setStyle(xlsx, sheet, cell(6, 1), cell(6, row), defaultStyle())
	setStyle(xlsx, sheet, cell(1, row+1), cell(6, row+1), defaultStyle())
}
