package sie

import "strconv"

// VerificationGroups holds verifications keyed by ledger transaction id, in
// the order the transactions were first seen.
type VerificationGroups struct {
	IDs  []int64
	ByID map[int64]*Verification
}

// List returns the verifications in encounter order.
func (g *VerificationGroups) List() []Verification {
	res := make([]Verification, 0, len(g.IDs))
	for _, id := range g.IDs {
		res = append(res, *g.ByID[id])
	}
	return res
}

// GroupVerifications folds posting rows, ordered by date and transaction id,
// back into verifications. Numbers are assigned 1, 2, 3... in encounter order
// regardless of the transaction ids.
func GroupVerifications(rows []LedgerRow, series string) *VerificationGroups {
	g := &VerificationGroups{ByID: make(map[int64]*Verification)}
	for _, row := range rows {
		ver, ok := g.ByID[row.TransactionID]
		if !ok {
			descr := row.Comment
			if descr == "" {
				descr = row.Description
			}
			ver = &Verification{
				Series:      series,
				Number:      strconv.Itoa(len(g.IDs) + 1),
				Date:        FormatDate(row.Date),
				Description: descr,
			}
			g.ByID[row.TransactionID] = ver
			g.IDs = append(g.IDs, row.TransactionID)
		}
		ver.Postings = append(ver.Postings, Posting{Account: row.Account, Amount: row.Signed()})
	}
	return g
}
