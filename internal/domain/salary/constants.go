package salary

import "github.com/shopspring/decimal"

const (
	RegimeOld         Regime = "old"
	RegimeNewCurrent  Regime = "new"
	RegimeNewPost2025 Regime = "new_post_2025"
)

const (
	ItemBasic            = "Basic Salary"
	ItemHRA              = "HRA"
	ItemSpecialAllowance = "Special Allowance"
	ItemBonus            = "Bonus/Ex Gratia"
	ItemMedicalInsurance = "Medical Insurance"
	ItemOtherAllowances  = "Other Allowances"
	ItemEmployerPF       = "Employer PF Contribution"
	ItemGratuity         = "Gratuity"
	ItemProfessionalTax  = "Professional Tax"
	ItemIncomeTax        = "Income Tax"
	ItemInHand           = "In-Hand Salary"
)

// ItemNames is the fixed order of breakdown line items.
var ItemNames = []string{
	ItemBasic,
	ItemHRA,
	ItemSpecialAllowance,
	ItemBonus,
	ItemMedicalInsurance,
	ItemOtherAllowances,
	ItemEmployerPF,
	ItemGratuity,
	ItemProfessionalTax,
	ItemIncomeTax,
	ItemInHand,
}

var (
	monthsPerYear = decimal.NewFromInt(12)

	StandardDeduction      = decimal.NewFromInt(50000)
	ProfessionalTaxMonthly = decimal.NewFromInt(200)
	CessMultiplier         = decimal.RequireFromString("1.04")

	Section80CCap = decimal.NewFromInt(150000)
	Section80DCap = decimal.NewFromInt(25000)

	hraBasicShare    = decimal.RequireFromString("0.50")
	hraRentThreshold = decimal.RequireFromString("0.10")
)
