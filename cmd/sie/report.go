package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	sie "kastelo.dev/sieio"
)

// balances sums opening balances and verification postings per account.
// Opening balances land on the zero time so they stay out of every month.
func balances(doc *sie.Document) map[string]*balance {
	res := make(map[string]*balance)
	get := func(num string) *balance {
		b, ok := res[num]
		if !ok {
			b = newBalance()
			res[num] = b
		}
		return b
	}
	for _, ib := range doc.OpeningBalances {
		get(ib.Account).add(time.Time{}, ib.Amount)
	}
	for _, ver := range doc.Verifications {
		date, err := sie.ParseDate(ver.Date)
		if err != nil {
			continue
		}
		for _, p := range ver.Postings {
			get(p.Account).add(date, p.Amount)
		}
	}
	return res
}

func sortedAccounts(bals map[string]*balance) []string {
	nums := make([]string, 0, len(bals))
	for num := range bals {
		nums = append(nums, num)
	}
	sort.Strings(nums)
	return nums
}

// reportMonths returns the first day of the first and last month covered by
// the current fiscal year, or by the verifications when there is none.
func reportMonths(doc *sie.Document) (time.Time, time.Time, bool) {
	from, to := doc.DateRange()
	if fy, ok := doc.CurrentYear(); ok {
		from, to = fy.Start, fy.End
	}
	start, err := sie.ParseDate(from)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := sie.ParseDate(to)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC),
		time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC), true
}

func balanceReport(w io.Writer, doc *sie.Document) {
	accountBalance := balances(doc)
	state := 0
	var assets, liabilities decimal.Decimal

	for _, num := range sortedAccounts(accountBalance) {
		if !sie.IsBalanceAccount(num) {
			continue
		}
		switch {
		case state == 0 && strings.HasPrefix(num, "1"):
			fmt.Fprintln(w, "TILLGÅNGAR")
			state = 1

		case state < 2 && strings.HasPrefix(num, "2"):
			if state == 1 {
				fmtAccount(w, "", "Summa tillgångar", assets)
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, "EGET KAPITAL, SKULDER")
			state = 2
		}

		bal := accountBalance[num]
		if bal.total.IsZero() {
			continue
		}

		switch state {
		case 1:
			assets = assets.Add(bal.total)
		case 2:
			liabilities = liabilities.Add(bal.total)
		}
		fmtAccount(w, num, doc.AccountName(num), bal.total)
	}
	switch state {
	case 1:
		fmtAccount(w, "", "Summa tillgångar", assets)
	case 2:
		fmtAccount(w, "", "Summa eget kapital, skulder", liabilities)
	}

	fmt.Fprintln(w, "\nRESULTAT")
	fmtAccount(w, "", "Beräknat resultat", assets.Add(liabilities))
}

func vatReport(w io.Writer, doc *sie.Document) {
	accountBalance := balances(doc)
	var vat decimal.Decimal

	fmt.Fprintln(w, "MOMS")
	for _, num := range sortedAccounts(accountBalance) {
		if !strings.HasPrefix(num, "26") {
			continue
		}
		bal := accountBalance[num]
		vat = vat.Add(bal.total)
		fmtAccount(w, num, doc.AccountName(num), bal.total)
	}

	fmt.Fprintln(w, "\nSUMMA")
	fmtAccount(w, "", "Moms att betala eller få tillbaka", vat)
}

type resultGroup struct {
	prefix string
	header string
	sum    string
}

var resultGroups = []resultGroup{
	{"3", "OMSÄTTNING", "Nettoomsättning"},
	{"4", "VARUKOSTNADER", "Summa varukostnader"},
	{"5", "EXTERNA KOSTNADER", "Summa externa kostnader"},
	{"6", "EXTERNA KOSTNADER", "Summa externa kostnader"},
	{"7", "PERSONALKOSTNADER", "Summa personalkostnader"},
	{"8", "FINANSIELLA POSTER", "Summa finansiella poster"},
}

func resultReport(w io.Writer, doc *sie.Document) error {
	starts, ends, ok := reportMonths(doc)
	if !ok {
		return fmt.Errorf("document has no fiscal year or verifications")
	}
	accountBalance := balances(doc)

	group := -1
	groupSum := newBalance()
	result := newBalance()

	closeGroup := func() {
		if group == -1 {
			return
		}
		dashes(w, starts, ends)
		fmtAccountMonths(w, "", resultGroups[group].sum, starts, ends, groupSum)
		fmt.Fprintln(w)
		result.addAll(groupSum)
		groupSum = newBalance()
	}

	for _, num := range sortedAccounts(accountBalance) {
		if sie.IsBalanceAccount(num) {
			continue
		}
		bal := accountBalance[num]
		if bal.total.IsZero() {
			continue
		}

		g := -1
		for i, rg := range resultGroups {
			if strings.HasPrefix(num, rg.prefix) {
				g = i
				break
			}
		}
		if g == -1 {
			continue
		}
		if g != group && (group == -1 || resultGroups[g].header != resultGroups[group].header) {
			closeGroup()
			headerMonths(w, resultGroups[g].header, starts, ends)
			dashes(w, starts, ends)
		}
		group = g

		bal = bal.inverse()
		groupSum.addAll(bal)
		fmtAccountMonths(w, num, doc.AccountName(num), starts, ends, bal)
	}
	closeGroup()

	fmt.Fprintln(w)
	headerMonths(w, "RESULTAT", starts, ends)
	dashes(w, starts, ends)
	fmtAccountMonths(w, "", "Resultat före skatt", starts, ends, result)
	return nil
}

func fmtAccount(w io.Writer, id, descr string, val decimal.Decimal) {
	const formatStr = "  %4s %-48s %10s\n"
	fmt.Fprintf(w, formatStr, id, descr, val.StringFixed(2))
}

func fmtAccountMonths(w io.Writer, id, descr string, starts, ends time.Time, bal *balance) {
	const formatStr = "  %4s %-48s"
	fmt.Fprintf(w, formatStr, id, descr)
	for t := starts; !t.After(ends); t = t.AddDate(0, 1, 0) {
		val := "·"
		if v, ok := bal.months[t.Format("2006-01")]; ok {
			val = v.StringFixed(0)
		}
		fmt.Fprintf(w, " %8s", val)
	}
	fmt.Fprintf(w, " %8s\n", bal.total.StringFixed(0))
}

func headerMonths(w io.Writer, hdr string, starts, ends time.Time) {
	fmt.Fprintf(w, "%-55s", hdr)
	for t := starts; !t.After(ends); t = t.AddDate(0, 1, 0) {
		fmt.Fprintf(w, " %8s", t.Format("2006-01"))
	}
	fmt.Fprintf(w, " %8s\n", "Total")
}

func dashes(w io.Writer, starts, ends time.Time) {
	fmt.Fprintf(w, "%-55s", "")
	for t := starts; !t.After(ends); t = t.AddDate(0, 1, 0) {
		fmt.Fprintf(w, " %8s", "-------")
	}
	fmt.Fprintf(w, " %8s\n", "-------")
}
