package sie

import (
	"fmt"
	"sort"
)

// resultYears is the oldest offset that gets #RES lines.
const resultYears = -1

// BuildInput is what an export knows about a company and its ledger.
// Balances must cover offsets -YearRange-1..0 so that every exported year
// has a prior year to open from.
type BuildInput struct {
	ProgramName    string
	ProgramVersion string
	OrgNo          string
	CompanyName    string
	AccountPlan    string
	GeneratedAt    string

	Year      int
	YearRange int

	Accounts      []Account
	Balances      YearBalances
	Verifications []Verification
}

// Build assembles a Document for calendar year in.Year and the in.YearRange
// years before it. Balance accounts get #IB and #UB per year; result
// accounts get the year's movement as #RES for the current and previous
// year only.
func Build(in BuildInput) *Document {
	doc := &Document{
		Header: Header{
			ProgramName:    in.ProgramName,
			ProgramVersion: in.ProgramVersion,
			Format:         defaultFormat,
			GeneratedAt:    in.GeneratedAt,
			Type:           defaultType,
			OrgNo:          NormalizeOrgNo(in.OrgNo),
			CompanyName:    in.CompanyName,
			AccountPlan:    in.AccountPlan,
		},
		Verifications: in.Verifications,
	}
	if doc.Header.AccountPlan == "" {
		doc.Header.AccountPlan = defaultAccountPlan
	}

	for i := 0; i >= -in.YearRange; i-- {
		y := in.Year + i
		doc.Header.FiscalYears = append(doc.Header.FiscalYears, FiscalYear{
			Offset: i,
			Start:  fmt.Sprintf("%04d0101", y),
			End:    fmt.Sprintf("%04d1231", y),
		})
	}

	doc.Accounts = make([]Account, len(in.Accounts))
	copy(doc.Accounts, in.Accounts)
	sort.Slice(doc.Accounts, func(i, j int) bool {
		return doc.Accounts[i].Number < doc.Accounts[j].Number
	})

	numbers := balanceAccounts(in)
	for i := 0; i >= -in.YearRange; i-- {
		for _, num := range numbers {
			cur := in.Balances.Get(i, num)
			prev := in.Balances.Get(i-1, num)
			if IsBalanceAccount(num) {
				if significant(prev) {
					doc.OpeningBalances = append(doc.OpeningBalances, Balance{YearOffset: i, Account: num, Amount: prev})
				}
				if significant(cur) {
					doc.ClosingBalances = append(doc.ClosingBalances, Balance{YearOffset: i, Account: num, Amount: cur})
				}
				continue
			}
			if i < resultYears {
				continue
			}
			if res := cur - prev; significant(res) {
				doc.IncomeStatement = append(doc.IncomeStatement, Balance{YearOffset: i, Account: num, Amount: res})
			}
		}
	}

	return doc
}

// balanceAccounts lists every account number that appears in the input,
// sorted.
func balanceAccounts(in BuildInput) []string {
	set := make(AccountSet)
	for _, acc := range in.Accounts {
		set.Add(acc.Number)
	}
	for _, bals := range in.Balances {
		for num := range bals {
			set.Add(num)
		}
	}
	res := make([]string, 0, len(set))
	for num := range set {
		res = append(res, num)
	}
	sort.Strings(res)
	return res
}
