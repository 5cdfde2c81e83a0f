package sie

import "strconv"

// Thresholds bound the range heuristic that marks an account number as
// clearly company specific. The defaults follow the BAS plan, which is dense
// in 1000-8999 with reserved blocks above 9000.
type Thresholds struct {
	MaxStandardLength int
	Min               int
	ReservedFrom      int
	ReservedTo        int
	Max               int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxStandardLength: 4,
		Min:               1000,
		ReservedFrom:      9000,
		ReservedTo:        9900,
		Max:               9999,
	}
}

// CompanySpecific applies the heuristic. Non-numeric numbers such as "ABCD"
// have no place in the BAS ranges and always count as company specific.
func (t Thresholds) CompanySpecific(number string) bool {
	if len(number) > t.MaxStandardLength {
		return true
	}
	n, err := strconv.Atoi(number)
	if err != nil {
		return true
	}
	return n < t.Min || (n > t.ReservedFrom && n < t.ReservedTo) || n > t.Max
}

type AccountAnalysis struct {
	AllMissing      []string
	StandardMissing []string
	CustomMissing   []string
	CriticalMissing []string
	UsedMissing     []string
	// ToDisplay is what the user is asked to review.
	ToDisplay []string
}

type Analyzer struct {
	Thresholds Thresholds
}

// AnalyzeMissingAccounts compares the accounts declared in doc against the
// existing chart of accounts using the default thresholds. A nil used set
// disables the usage filter.
func AnalyzeMissingAccounts(doc *Document, existing []string, used AccountSet) AccountAnalysis {
	return Analyzer{Thresholds: DefaultThresholds()}.Analyze(doc, existing, used)
}

func (a Analyzer) Analyze(doc *Document, existing []string, used AccountSet) AccountAnalysis {
	have := make(AccountSet, len(existing))
	for _, num := range existing {
		have.Add(num)
	}

	var res AccountAnalysis
	seen := make(AccountSet)
	for _, acc := range doc.Accounts {
		if have.Has(acc.Number) || seen.Has(acc.Number) {
			continue
		}
		seen.Add(acc.Number)
		res.AllMissing = append(res.AllMissing, acc.Number)
	}

	isUsed := func(num string) bool {
		return used == nil || used.Has(num)
	}

	for _, num := range res.AllMissing {
		if IsStandardAccount(num) {
			res.StandardMissing = append(res.StandardMissing, num)
		} else {
			res.CustomMissing = append(res.CustomMissing, num)
			if isUsed(num) && a.Thresholds.CompanySpecific(num) {
				res.CriticalMissing = append(res.CriticalMissing, num)
			}
		}
		if isUsed(num) {
			res.UsedMissing = append(res.UsedMissing, num)
		}
	}
	res.ToDisplay = res.UsedMissing
	return res
}

type Category string

const (
	CategoryAsset     Category = "asset"
	CategoryLiability Category = "liability"
	CategoryRevenue   Category = "revenue"
	CategoryExpense   Category = "expense"
	CategoryFinancial Category = "financial"
	CategoryCustom    Category = "custom"
)

// ClassifyAccount assigns a class (the leading digit) and a category to an
// account that is about to be created.
func ClassifyAccount(number string, t Thresholds) (int, Category) {
	class := 0
	if number != "" && number[0] >= '0' && number[0] <= '9' {
		class = int(number[0] - '0')
	}
	if t.CompanySpecific(number) {
		return class, CategoryCustom
	}
	switch class {
	case 1:
		return class, CategoryAsset
	case 2:
		return class, CategoryLiability
	case 3:
		return class, CategoryRevenue
	case 4, 5, 6, 7:
		return class, CategoryExpense
	default:
		return class, CategoryFinancial
	}
}
