/*
Package factory provides JSON to Go policy conversion.

PURPOSE:
  Converts JSON policy definitions into payroll.Policy values, so a
  deployment can change contribution caps, the tax ladder or the OT
  multiplier without a code change. Used by config (policy_file) and the
  /api/policy endpoint.

JSON SCHEMA:
  {
    "id": "th-2025",
    "name": "Thailand 2025",
    "currency": "THB",
    "social_security": {"min_base": "1650", "max_base": "17500", "rate": "0.05", "places": 0},
    "proration": {"standard_divisor": 30, "places": 2},
    "tax": {
      "expense_rate": "0.5",
      "expense_cap": "100000",
      "personal_allowance": "60000",
      "months_per_year": 12,
      "places": 2,
      "applied_brackets": 0,
      "brackets": [
        {"up_to": "150000", "rate": "0"},
        {"up_to": "300000", "rate": "0.05"},
        {"rate": "0.35"}
      ]
    },
    "overtime": {"hours_per_day": "8", "multiplier": "1.5"}
  }

  Amounts are decimal strings (bare numbers are accepted too). Omitted
  sections and fields fall back to payroll.DefaultPolicy.

USAGE:
  f := factory.NewPolicyFactory()
  policy, err := f.ParsePolicy(jsonString)
  calc, err := payroll.NewCalculator(*policy)

SEE ALSO:
  - payroll/policy.go: Policy type definition
  - payroll/policies.go: Go-based presets
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// PolicyJSON is the JSON representation of a policy.
type PolicyJSON struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Preset         string              `json:"preset,omitempty"` // default, legacy
	Currency       string              `json:"currency,omitempty"`
	SocialSecurity *SocialSecurityJSON `json:"social_security,omitempty"`
	Proration      *ProrationJSON      `json:"proration,omitempty"`
	Tax            *TaxJSON            `json:"tax,omitempty"`
	Overtime       *OvertimeJSON       `json:"overtime,omitempty"`
}

type SocialSecurityJSON struct {
	MinBase *decimal.Decimal `json:"min_base,omitempty"`
	MaxBase *decimal.Decimal `json:"max_base,omitempty"`
	Rate    *decimal.Decimal `json:"rate,omitempty"`
	Places  *int32           `json:"places,omitempty"`
}

type ProrationJSON struct {
	StandardDivisor *int   `json:"standard_divisor,omitempty"`
	Places          *int32 `json:"places,omitempty"`
}

type TaxJSON struct {
	ExpenseRate       *decimal.Decimal `json:"expense_rate,omitempty"`
	ExpenseCap        *decimal.Decimal `json:"expense_cap,omitempty"`
	PersonalAllowance *decimal.Decimal `json:"personal_allowance,omitempty"`
	MonthsPerYear     *int             `json:"months_per_year,omitempty"`
	Places            *int32           `json:"places,omitempty"`
	AppliedBrackets   *int             `json:"applied_brackets,omitempty"`
	Brackets          []BracketJSON    `json:"brackets,omitempty"`
}

// BracketJSON is one ladder step. A missing up_to is unbounded.
type BracketJSON struct {
	UpTo *decimal.Decimal `json:"up_to,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

type OvertimeJSON struct {
	HoursPerDay *decimal.Decimal `json:"hours_per_day,omitempty"`
	Multiplier  *decimal.Decimal `json:"multiplier,omitempty"`
}

// =============================================================================
// POLICY FACTORY
// =============================================================================

// PolicyFactory converts JSON policies to Go structs.
type PolicyFactory struct{}

func NewPolicyFactory() *PolicyFactory {
	return &PolicyFactory{}
}

// ParsePolicy parses a JSON string into a validated Policy.
func (f *PolicyFactory) ParsePolicy(jsonStr string) (*payroll.Policy, error) {
	var pj PolicyJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse policy JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON overlays pj on its preset and validates the result.
func (f *PolicyFactory) FromJSON(pj PolicyJSON) (*payroll.Policy, error) {
	var p payroll.Policy
	switch pj.Preset {
	case "", string(payroll.DefaultPolicyID):
		p = payroll.DefaultPolicy()
	case string(payroll.LegacyPolicyID):
		p = payroll.LegacyPolicy()
	default:
		return nil, &payroll.PolicyError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", pj.Preset)}
	}

	if pj.ID != "" {
		p.ID = payroll.PolicyID(pj.ID)
	}
	if pj.Name != "" {
		p.Name = pj.Name
	}
	if pj.Currency != "" {
		p.Currency = money.Currency(pj.Currency)
	}

	if ss := pj.SocialSecurity; ss != nil {
		setDecimal(&p.SocialSecurity.MinBase, ss.MinBase)
		setDecimal(&p.SocialSecurity.MaxBase, ss.MaxBase)
		setDecimal(&p.SocialSecurity.Rate, ss.Rate)
		setInt32(&p.SocialSecurity.Places, ss.Places)
	}
	if pr := pj.Proration; pr != nil {
		setInt(&p.Proration.StandardDivisor, pr.StandardDivisor)
		setInt32(&p.Proration.Places, pr.Places)
	}
	if tx := pj.Tax; tx != nil {
		setDecimal(&p.Tax.ExpenseRate, tx.ExpenseRate)
		setDecimal(&p.Tax.ExpenseCap, tx.ExpenseCap)
		setDecimal(&p.Tax.PersonalAllowance, tx.PersonalAllowance)
		setInt(&p.Tax.MonthsPerYear, tx.MonthsPerYear)
		setInt32(&p.Tax.Places, tx.Places)
		if len(tx.Brackets) > 0 {
			p.Tax.Brackets = parseBrackets(tx.Brackets)
			p.Tax.AppliedBrackets = 0
		}
		setInt(&p.Tax.AppliedBrackets, tx.AppliedBrackets)
	}
	if ot := pj.Overtime; ot != nil {
		setDecimal(&p.Overtime.HoursPerDay, ot.HoursPerDay)
		setDecimal(&p.Overtime.Multiplier, ot.Multiplier)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ToJSON renders a Policy in the factory schema. FromJSON(ToJSON(p)) == p.
func (f *PolicyFactory) ToJSON(p payroll.Policy) PolicyJSON {
	brackets := make([]BracketJSON, len(p.Tax.Brackets))
	for i, b := range p.Tax.Brackets {
		brackets[i] = BracketJSON{UpTo: b.UpTo, Rate: b.Rate}
	}
	return PolicyJSON{
		ID:       string(p.ID),
		Name:     p.Name,
		Currency: string(p.Currency),
		SocialSecurity: &SocialSecurityJSON{
			MinBase: &p.SocialSecurity.MinBase,
			MaxBase: &p.SocialSecurity.MaxBase,
			Rate:    &p.SocialSecurity.Rate,
			Places:  &p.SocialSecurity.Places,
		},
		Proration: &ProrationJSON{
			StandardDivisor: &p.Proration.StandardDivisor,
			Places:          &p.Proration.Places,
		},
		Tax: &TaxJSON{
			ExpenseRate:       &p.Tax.ExpenseRate,
			ExpenseCap:        &p.Tax.ExpenseCap,
			PersonalAllowance: &p.Tax.PersonalAllowance,
			MonthsPerYear:     &p.Tax.MonthsPerYear,
			Places:            &p.Tax.Places,
			AppliedBrackets:   &p.Tax.AppliedBrackets,
			Brackets:          brackets,
		},
		Overtime: &OvertimeJSON{
			HoursPerDay: &p.Overtime.HoursPerDay,
			Multiplier:  &p.Overtime.Multiplier,
		},
	}
}

// DefaultPolicyJSON returns DefaultPolicy as an indented JSON document.
func DefaultPolicyJSON() string {
	b, err := json.MarshalIndent(NewPolicyFactory().ToJSON(payroll.DefaultPolicy()), "", "  ")
	if err != nil {
		panic(err)
	}
	return string(b)
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func parseBrackets(bs []BracketJSON) payroll.BracketTable {
	table := make(payroll.BracketTable, len(bs))
	for i, b := range bs {
		table[i] = payroll.Bracket{UpTo: b.UpTo, Rate: b.Rate}
	}
	return table
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setInt32(dst *int32, v *int32) {
	if v != nil {
		*dst = *v
	}
}
