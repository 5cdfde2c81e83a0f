package sie

import (
	"reflect"
	"testing"
)

func TestGroupVerifications(t *testing.T) {
	rows := []LedgerRow{
		{TransactionID: 42, Date: date(2024, 1, 5), Description: "Verification A:7", Comment: "Hyra", Account: "5010", Debit: 8000},
		{TransactionID: 42, Date: date(2024, 1, 5), Description: "Verification A:7", Comment: "Hyra", Account: "1930", Credit: 8000},
		{TransactionID: 17, Date: date(2024, 2, 1), Description: "Bank fee", Account: "6570", Debit: 25},
		{TransactionID: 17, Date: date(2024, 2, 1), Description: "Bank fee", Account: "1930", Credit: 25},
		{TransactionID: 99, Date: date(2024, 3, 1), Description: "Third", Account: "1930", Debit: 1},
	}

	g := GroupVerifications(rows, "A")
	if !reflect.DeepEqual(g.IDs, []int64{42, 17, 99}) {
		t.Fatalf("unexpected order %v", g.IDs)
	}

	vers := g.List()
	expected := []Verification{
		{Series: "A", Number: "1", Date: "20240105", Description: "Hyra", Postings: []Posting{{"5010", 8000}, {"1930", -8000}}},
		{Series: "A", Number: "2", Date: "20240201", Description: "Bank fee", Postings: []Posting{{"6570", 25}, {"1930", -25}}},
		{Series: "A", Number: "3", Date: "20240301", Description: "Third", Postings: []Posting{{"1930", 1}}},
	}
	if !reflect.DeepEqual(vers, expected) {
		t.Errorf("mismatch\n%+v\n%+v", vers, expected)
	}
}

func TestGroupVerificationsEmpty(t *testing.T) {
	g := GroupVerifications(nil, "A")
	if len(g.List()) != 0 {
		t.Error("expected no verifications")
	}
}
