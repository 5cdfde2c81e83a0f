package sie

import (
	"math"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		ok  bool
		out float64
	}{
		{"0", true, 0},
		{"0.00", true, 0},
		{"9.00", true, 9},
		{"9.50", true, 9.5},
		{"-9.50", true, -9.5},
		{"9.5", true, 9.5},
		{" 12 ", true, 12},
		{"banana", false, 0},
		{"1..2", false, 0},
		{"12,50", false, 0},
		{"NaN", false, 0},
		{"Inf", false, 0},
		{"", false, 0},
	}

	for _, c := range cases {
		v, err := ParseAmount(c.in)
		if c.ok && err != nil {
			t.Error("unexpected failure:", c.in)
		} else if !c.ok && err == nil {
			t.Error("unexpected success:", c.in)
		} else if !c.ok && !math.IsNaN(v) {
			t.Errorf("expected NaN for %q, got %v", c.in, v)
		} else if c.ok && v != c.out {
			t.Errorf("unexpected value %v != %v for %v", v, c.out, c.in)
		}
	}
}

func TestDocumentHelpers(t *testing.T) {
	doc := ParseString(`#RAR -1 20230101 20231231
#RAR 0 20240101 20241231
#KONTO 1930 "Bank"
#VER A 1 20240315 "a"
#TRANS 1930 {} 1
#VER A 2 20240102 "b"
#TRANS 2440 {} 1
#UB 0 2081 5`)

	fy, ok := doc.CurrentYear()
	if !ok || fy.Start != "20240101" || fy.End != "20241231" {
		t.Errorf("unexpected current year %+v", fy)
	}
	first, last := doc.DateRange()
	if first != "20240102" || last != "20240315" {
		t.Errorf("unexpected range %s..%s", first, last)
	}
	if doc.AccountName("1930") != "Bank" || doc.AccountName("9999") != "" {
		t.Error("unexpected account names")
	}

	used := UsedAccounts(doc)
	for _, num := range []string{"1930", "2440", "2081"} {
		if !used.Has(num) {
			t.Errorf("%s should be used", num)
		}
	}
	if len(used) != 3 {
		t.Errorf("unexpected used set %v", used)
	}
}

func TestDates(t *testing.T) {
	d, err := ParseDate("20240229")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", d)
	}
	if FormatDate(d) != "20240229" {
		t.Errorf("unexpected format %s", FormatDate(d))
	}
	if _, err := ParseDate("2024-02-29"); err == nil {
		t.Error("expected error for dashed date")
	}
}
