package salary

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Regime string

func (r Regime) Name() string {
	switch r {
	case RegimeOld:
		return "Old Tax Regime"
	case RegimeNewCurrent:
		return "New Tax Regime (Current)"
	case RegimeNewPost2025:
		return "New Tax Regime (Post 2025-26 Budget)"
	}
	return "Unknown Regime"
}

func (r Regime) Valid() bool {
	switch r {
	case RegimeOld, RegimeNewCurrent, RegimeNewPost2025:
		return true
	}
	return false
}

// Regimes returns every supported regime in display order.
func Regimes() []Regime {
	return []Regime{RegimeOld, RegimeNewCurrent, RegimeNewPost2025}
}

// ParseRegime maps a regime identifier to a Regime. An empty value selects
// the current new regime.
func ParseRegime(value string) (Regime, error) {
	normalized := Regime(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return RegimeNewCurrent, nil
	}
	if !normalized.Valid() {
		return "", ErrUnknownRegime
	}
	return normalized, nil
}

// Components holds monthly salary figures, except BonusAnnual.
type Components struct {
	Basic            decimal.Decimal `json:"basic"`
	HRA              decimal.Decimal `json:"hra"`
	SpecialAllowance decimal.Decimal `json:"specialAllowance"`
	BonusAnnual      decimal.Decimal `json:"bonusAnnual"`
	EmployerPF       decimal.Decimal `json:"employerPf"`
	Gratuity         decimal.Decimal `json:"gratuity"`
	MedicalInsurance decimal.Decimal `json:"medicalInsurance"`
	OtherAllowances  decimal.Decimal `json:"otherAllowances"`
}

type LineItem struct {
	Name    string          `json:"name"`
	Monthly decimal.Decimal `json:"monthly"`
	Annual  decimal.Decimal `json:"annual"`
}

type Breakdown struct {
	Regime                 Regime          `json:"regime"`
	Items                  []LineItem      `json:"items"`
	MonthlyGross           decimal.Decimal `json:"monthlyGross"`
	AnnualGross            decimal.Decimal `json:"annualGross"`
	StandardDeduction      decimal.Decimal `json:"standardDeduction"`
	HRAExemption           decimal.Decimal `json:"hraExemption"`
	Section80C             decimal.Decimal `json:"section80C"`
	Section80D             decimal.Decimal `json:"section80D"`
	TaxableIncome          decimal.Decimal `json:"taxableIncome"`
	SlabTax                decimal.Decimal `json:"slabTax"`
	AnnualIncomeTax        decimal.Decimal `json:"annualIncomeTax"`
	MonthlyIncomeTax       decimal.Decimal `json:"monthlyIncomeTax"`
	MonthlyProfessionalTax decimal.Decimal `json:"monthlyProfessionalTax"`
	MonthlyInHand          decimal.Decimal `json:"monthlyInHand"`
	AnnualInHand           decimal.Decimal `json:"annualInHand"`
}

// Row is a line item rendered to two decimals.
type Row struct {
	Name    string `json:"name"`
	Monthly string `json:"monthly"`
	Annual  string `json:"annual"`
}

func (b Breakdown) Rows() []Row {
	rows := make([]Row, 0, len(b.Items))
	for _, item := range b.Items {
		rows = append(rows, Row{
			Name:    item.Name,
			Monthly: item.Monthly.StringFixed(2),
			Annual:  item.Annual.StringFixed(2),
		})
	}
	return rows
}

// Item returns the line item with the given name.
func (b Breakdown) Item(name string) (LineItem, bool) {
	for _, item := range b.Items {
		if item.Name == name {
			return item, true
		}
	}
	return LineItem{}, false
}

type Comparison struct {
	Breakdowns []Breakdown `json:"breakdowns"`
	Best       Regime      `json:"best"`
}

type Calculation struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	Label      string     `json:"label"`
	Regime     Regime     `json:"regime"`
	Components Components `json:"components"`
	CreatedAt  time.Time  `json:"createdAt"`
}
