package sie

import (
	"reflect"
	"testing"
)

func TestCompanySpecific(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		in  string
		out bool
	}{
		{"1930", false},
		{"999", true},
		{"19300", true},
		{"9000", false},
		{"9001", true},
		{"9899", true},
		{"9900", false},
		{"9999", false},
		{"A100", true},
		{"ABCD", true},
		{"", true},
	}
	for _, c := range cases {
		if got := th.CompanySpecific(c.in); got != c.out {
			t.Errorf("CompanySpecific(%q) = %v, expected %v", c.in, got, c.out)
		}
	}
}

func TestAnalyzeMissingAccounts(t *testing.T) {
	doc := ParseString(`#KONTO 1930 "Bank"
#KONTO 2440 "Leverantörsskulder"
#KONTO 9050 "Eget konto"
#KONTO 4711 "Eget konto 2"
#KONTO 19301 "Underkonto"
#KONTO 2440 "Leverantörsskulder"
#VER A 1 20240101 "a"
#TRANS 2440 {} -100
#TRANS 9050 {} 100
#VER A 2 20240101 "b"
#TRANS 19301 {} 10
#TRANS 1930 {} -10`)

	res := AnalyzeMissingAccounts(doc, []string{"1930"}, UsedAccounts(doc))

	check := func(name string, got, expected []string) {
		t.Helper()
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("%s: got %v, expected %v", name, got, expected)
		}
	}
	check("all", res.AllMissing, []string{"2440", "9050", "4711", "19301"})
	check("standard", res.StandardMissing, []string{"2440"})
	check("custom", res.CustomMissing, []string{"9050", "4711", "19301"})
	check("critical", res.CriticalMissing, []string{"9050", "19301"})
	check("used", res.UsedMissing, []string{"2440", "9050", "19301"})
	check("display", res.ToDisplay, res.UsedMissing)
}

func TestAnalyzeWithoutUsage(t *testing.T) {
	doc := ParseString(`#KONTO 4711 "Eget konto"
#KONTO 9050 "Eget konto 2"`)

	res := AnalyzeMissingAccounts(doc, nil, nil)
	if !reflect.DeepEqual(res.UsedMissing, []string{"4711", "9050"}) {
		t.Errorf("nil used set should disable the filter, got %v", res.UsedMissing)
	}
	if !reflect.DeepEqual(res.CriticalMissing, []string{"9050"}) {
		t.Errorf("unexpected critical %v", res.CriticalMissing)
	}
}

func TestAnalyzeIsPure(t *testing.T) {
	// The preview and the import call the analyzer with the same inputs and
	// must see the same answer.
	doc := ParseString(`#KONTO 1930 "Bank"
#KONTO 9050 "Eget"
#VER A 1 20240101 "a"
#TRANS 9050 {} 1`)
	existing := []string{"2440"}
	used := UsedAccounts(doc)

	a := AnalyzeMissingAccounts(doc, existing, used)
	b := Analyzer{Thresholds: DefaultThresholds()}.Analyze(doc, existing, used)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("results differ:\n%+v\n%+v", a, b)
	}
	if len(doc.Accounts) != 2 || len(existing) != 1 {
		t.Error("inputs modified")
	}
}

func TestAnalyzeCustomThresholds(t *testing.T) {
	doc := ParseString(`#KONTO 4711 "Eget konto"`)
	th := DefaultThresholds()
	th.Min = 5000
	res := Analyzer{Thresholds: th}.Analyze(doc, nil, nil)
	if !reflect.DeepEqual(res.CriticalMissing, []string{"4711"}) {
		t.Errorf("unexpected critical %v", res.CriticalMissing)
	}
}

func TestClassifyAccount(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		in    string
		class int
		cat   Category
	}{
		{"1930", 1, CategoryAsset},
		{"2440", 2, CategoryLiability},
		{"3001", 3, CategoryRevenue},
		{"5010", 5, CategoryExpense},
		{"7010", 7, CategoryExpense},
		{"8410", 8, CategoryFinancial},
		{"9050", 9, CategoryCustom},
		{"19301", 1, CategoryCustom},
	}
	for _, c := range cases {
		class, cat := ClassifyAccount(c.in, th)
		if class != c.class || cat != c.cat {
			t.Errorf("ClassifyAccount(%q) = %d %s, expected %d %s", c.in, class, cat, c.class, c.cat)
		}
	}
}

func TestStandardAccounts(t *testing.T) {
	accs := StandardAccounts()
	if len(accs) == 0 {
		t.Fatal("empty reference table")
	}
	for i := 1; i < len(accs); i++ {
		if accs[i-1].Number >= accs[i].Number {
			t.Fatalf("not sorted at %d", i)
		}
	}
	if name, ok := StandardAccountName("1930"); !ok || name == "" {
		t.Error("1930 missing")
	}
	if IsStandardAccount("9050") {
		t.Error("9050 is not standard")
	}
}
