package sie

import (
	"time"
)

// LedgerRow is one posting as stored in the ledger, joined with its
// transaction.
type LedgerRow struct {
	TransactionID int64
	Date          time.Time
	Description   string
	Comment       string
	Account       string
	Debit         float64
	Credit        float64
}

// Signed returns the debit-positive amount of the row.
func (r LedgerRow) Signed() float64 {
	if r.Debit > 0 {
		return r.Debit
	}
	return -r.Credit
}

// YearBalances maps a year offset to per account balances.
type YearBalances map[int]map[string]float64

func (yb YearBalances) Get(offset int, account string) float64 {
	return yb[offset][account]
}

// AccumulateBalances computes, for each offset -yearRange..0 relative to
// baseYear, the cumulative balance of every account at the end of that year.
// Balances carry forward and are never reset between years.
func AccumulateBalances(rows []LedgerRow, baseYear, yearRange int) YearBalances {
	balances := make(YearBalances, yearRange+1)
	for i := -yearRange; i <= 0; i++ {
		balances[i] = make(map[string]float64)
	}

	for _, row := range rows {
		amount := row.Signed()
		year := row.Date.Year()
		for i := -yearRange; i <= 0; i++ {
			if year <= baseYear+i {
				balances[i][row.Account] += amount
			}
		}
	}
	return balances
}
