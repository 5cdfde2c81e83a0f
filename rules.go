package sie

import (
	"math"
	"strconv"
)

// BalanceTolerance is how far from zero a verification may sum and still be
// considered balanced.
const BalanceTolerance = 0.01

// DebitCredit holds the two non-negative sides of a signed SIE amount.
type DebitCredit struct {
	Debit  float64
	Credit float64
}

func (dc DebitCredit) Signed() float64 {
	return dc.Debit - dc.Credit
}

// SignedToDebitCredit splits a debit-positive amount into debit and credit.
func SignedToDebitCredit(amount float64) DebitCredit {
	switch {
	case amount > 0:
		return DebitCredit{Debit: amount}
	case amount < 0:
		return DebitCredit{Credit: -amount}
	default:
		return DebitCredit{}
	}
}

// IsVerificationBalanced reports whether the postings sum to zero within tol.
// A NaN amount never balances.
func IsVerificationBalanced(postings []Posting, tol float64) bool {
	var sum float64
	for _, p := range postings {
		sum += p.Amount
	}
	return !math.IsNaN(sum) && math.Abs(sum) <= tol
}

// IsBalanceAccount reports whether number is a balance sheet account
// (1000-2999). Everything else goes to the income statement.
func IsBalanceAccount(number string) bool {
	n, err := strconv.Atoi(number)
	if err != nil {
		return false
	}
	return n >= 1000 && n <= 2999
}
