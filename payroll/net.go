package payroll

import (
	"github.com/warp/payroll-engine/money"
)

// =============================================================================
// LINE ITEMS
// =============================================================================

type Kind string

const (
	KindIncome    Kind = "income"
	KindDeduction Kind = "deduction"
)

// LineItem is a labeled amount on a payslip.
type LineItem struct {
	Label  string      `json:"label"`
	Amount money.Money `json:"amount"`
	Kind   Kind        `json:"kind,omitempty"`
}

// Items are the inputs of the net calculation. Zero-valued fields count as
// zero; a record missing an amount is not an error.
type Items struct {
	Salary        money.Money
	OT            money.Money
	Incentive     money.Money
	CustomIncomes []LineItem

	Deductions    money.Money // aggregate late/absence deduction
	SSO           money.Money
	Tax           money.Money
	CustomDeducts []LineItem
}

// Lines returns every item in display order, each tagged with its kind.
func (it Items) Lines() []LineItem {
	lines := []LineItem{
		{Label: "Salary", Amount: it.Salary, Kind: KindIncome},
		{Label: "Overtime", Amount: it.OT, Kind: KindIncome},
		{Label: "Incentive", Amount: it.Incentive, Kind: KindIncome},
	}
	for _, li := range it.CustomIncomes {
		li.Kind = KindIncome
		lines = append(lines, li)
	}
	lines = append(lines,
		LineItem{Label: "Deductions", Amount: it.Deductions, Kind: KindDeduction},
		LineItem{Label: "Social Security", Amount: it.SSO, Kind: KindDeduction},
		LineItem{Label: "Withholding Tax", Amount: it.Tax, Kind: KindDeduction},
	)
	for _, li := range it.CustomDeducts {
		li.Kind = KindDeduction
		lines = append(lines, li)
	}
	return lines
}

// =============================================================================
// NET AGGREGATION
// =============================================================================

const netPlaces int32 = 2

// Breakdown is the itemized result of a net calculation.
type Breakdown struct {
	Items       Items
	TotalIncome money.Money
	TotalDeduct money.Money
	Net         money.Money
}

// Net returns total income minus total deductions, rounded half-up to two
// places. Totals are kept unrounded.
func (c *Calculator) Net(items Items) (Breakdown, error) {
	incomes := []money.Money{items.Salary, items.OT, items.Incentive}
	for _, li := range items.CustomIncomes {
		incomes = append(incomes, li.Amount)
	}
	totalIncome, err := money.Sum("", incomes...)
	if err != nil {
		return Breakdown{}, err
	}

	deducts := []money.Money{items.Deductions, items.SSO, items.Tax}
	for _, li := range items.CustomDeducts {
		deducts = append(deducts, li.Amount)
	}
	totalDeduct, err := money.Sum("", deducts...)
	if err != nil {
		return Breakdown{}, err
	}

	net, err := totalIncome.Sub(totalDeduct)
	if err != nil {
		return Breakdown{}, err
	}
	cur := net.Currency
	if cur == "" {
		cur = c.policy.Currency
	}

	return Breakdown{
		Items:       items,
		TotalIncome: totalIncome.WithCurrency(cur),
		TotalDeduct: totalDeduct.WithCurrency(cur),
		Net:         net.WithCurrency(cur).Round(netPlaces),
	}, nil
}
