package salary

import "github.com/shopspring/decimal"

// MaxAmount caps every salary component. Inputs are checked against it
// before any arithmetic so oversized exponents never get expanded.
var MaxAmount = decimal.New(1, 12)

const maxAmountDigits = 13

func Validate(c Components) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"basic", c.Basic},
		{"hra", c.HRA},
		{"specialAllowance", c.SpecialAllowance},
		{"bonusAnnual", c.BonusAnnual},
		{"employerPf", c.EmployerPF},
		{"gratuity", c.Gratuity},
		{"medicalInsurance", c.MedicalInsurance},
		{"otherAllowances", c.OtherAllowances},
	}
	var issues []FieldIssue
	for _, f := range fields {
		if reason := amountIssue(f.value); reason != "" {
			issues = append(issues, FieldIssue{Field: f.name, Reason: reason})
		}
	}
	if len(issues) > 0 {
		return &InputError{Issues: issues}
	}
	return nil
}

func amountIssue(v decimal.Decimal) string {
	switch {
	case v.IsNegative():
		return "must not be negative"
	case v.IsZero():
		return ""
	case v.Exponent() < -20 || !v.Equal(v.Truncate(2)):
		return "must have at most 2 decimal places"
	case int64(v.NumDigits())+int64(v.Exponent()) > maxAmountDigits || v.GreaterThan(MaxAmount):
		return "must not exceed " + MaxAmount.String()
	}
	return ""
}

// GrossSalary returns the monthly and annual gross. Employer PF and gratuity
// are employer costs and stay out of gross.
func GrossSalary(c Components) (monthly, annual decimal.Decimal) {
	recurring := c.Basic.
		Add(c.HRA).
		Add(c.SpecialAllowance).
		Add(c.MedicalInsurance).
		Add(c.OtherAllowances)
	annual = recurring.Mul(monthsPerYear).Add(c.BonusAnnual)
	monthly = annual.Div(monthsPerYear)
	return monthly, annual
}

// HRAExemption is the least of the HRA received, rent paid over 10% of basic
// and half of basic. Rent paid is approximated by the smaller of the HRA and
// half of the non-basic gross.
func HRAExemption(annualBasic, annualHRA, annualGross decimal.Decimal) decimal.Decimal {
	rentPaid := decimal.Min(annualHRA, hraBasicShare.Mul(annualGross.Sub(annualBasic)))
	exemption := decimal.Min(
		annualHRA,
		rentPaid.Sub(hraRentThreshold.Mul(annualBasic)),
		hraBasicShare.Mul(annualBasic),
	)
	if exemption.IsNegative() {
		return decimal.Zero
	}
	return exemption
}

func Section80C(annualEmployerPF decimal.Decimal) decimal.Decimal {
	return decimal.Min(annualEmployerPF.Add(Section80CCap), Section80CCap)
}

func Section80D(annualMedical decimal.Decimal) decimal.Decimal {
	return decimal.Min(annualMedical, Section80DCap)
}

type deductions struct {
	standard decimal.Decimal
	hra      decimal.Decimal
	sec80C   decimal.Decimal
	sec80D   decimal.Decimal
}

func (d deductions) total() decimal.Decimal {
	return d.standard.Add(d.hra).Add(d.sec80C).Add(d.sec80D)
}

func regimeDeductions(c Components, regime Regime, annualGross decimal.Decimal) (deductions, error) {
	d := deductions{
		standard: StandardDeduction,
		hra:      decimal.Zero,
		sec80C:   decimal.Zero,
		sec80D:   decimal.Zero,
	}
	switch regime {
	case RegimeOld:
		annualBasic := c.Basic.Mul(monthsPerYear)
		d.hra = HRAExemption(annualBasic, c.HRA.Mul(monthsPerYear), annualGross)
		d.sec80C = Section80C(c.EmployerPF.Mul(monthsPerYear))
		d.sec80D = Section80D(c.MedicalInsurance.Mul(monthsPerYear))
	case RegimeNewCurrent, RegimeNewPost2025:
	default:
		return deductions{}, ErrUnknownRegime
	}
	return d, nil
}

// TaxableIncome can be negative; the slab schedule charges nothing for it.
func TaxableIncome(c Components, regime Regime) (decimal.Decimal, error) {
	_, annualGross := GrossSalary(c)
	d, err := regimeDeductions(c, regime, annualGross)
	if err != nil {
		return decimal.Zero, err
	}
	return annualGross.Sub(d.total()), nil
}

func ApplyCess(tax decimal.Decimal) decimal.Decimal {
	return tax.Mul(CessMultiplier)
}

// Calculate produces the full breakup for one set of components.
func Calculate(c Components, regime Regime) (Breakdown, error) {
	if err := Validate(c); err != nil {
		return Breakdown{}, err
	}
	schedule, err := ScheduleFor(regime)
	if err != nil {
		return Breakdown{}, err
	}

	monthlyGross, annualGross := GrossSalary(c)
	d, err := regimeDeductions(c, regime, annualGross)
	if err != nil {
		return Breakdown{}, err
	}
	taxable := annualGross.Sub(d.total())

	slabTax := schedule.Tax(taxable)
	annualTax := ApplyCess(slabTax)
	monthlyTax := annualTax.Div(monthsPerYear)

	monthlyInHand := monthlyGross.Sub(ProfessionalTaxMonthly.Add(monthlyTax))
	annualInHand := monthlyInHand.Mul(monthsPerYear)

	yearly := func(v decimal.Decimal) decimal.Decimal { return v.Mul(monthsPerYear) }
	items := []LineItem{
		{Name: ItemBasic, Monthly: c.Basic, Annual: yearly(c.Basic)},
		{Name: ItemHRA, Monthly: c.HRA, Annual: yearly(c.HRA)},
		{Name: ItemSpecialAllowance, Monthly: c.SpecialAllowance, Annual: yearly(c.SpecialAllowance)},
		{Name: ItemBonus, Monthly: c.BonusAnnual.Div(monthsPerYear), Annual: c.BonusAnnual},
		{Name: ItemMedicalInsurance, Monthly: c.MedicalInsurance, Annual: yearly(c.MedicalInsurance)},
		{Name: ItemOtherAllowances, Monthly: c.OtherAllowances, Annual: yearly(c.OtherAllowances)},
		{Name: ItemEmployerPF, Monthly: c.EmployerPF, Annual: yearly(c.EmployerPF)},
		{Name: ItemGratuity, Monthly: c.Gratuity, Annual: yearly(c.Gratuity)},
		{Name: ItemProfessionalTax, Monthly: ProfessionalTaxMonthly, Annual: yearly(ProfessionalTaxMonthly)},
		{Name: ItemIncomeTax, Monthly: monthlyTax, Annual: annualTax},
		{Name: ItemInHand, Monthly: monthlyInHand, Annual: annualInHand},
	}

	return Breakdown{
		Regime:                 regime,
		Items:                  items,
		MonthlyGross:           monthlyGross,
		AnnualGross:            annualGross,
		StandardDeduction:      d.standard,
		HRAExemption:           d.hra,
		Section80C:             d.sec80C,
		Section80D:             d.sec80D,
		TaxableIncome:          taxable,
		SlabTax:                slabTax,
		AnnualIncomeTax:        annualTax,
		MonthlyIncomeTax:       monthlyTax,
		MonthlyProfessionalTax: ProfessionalTaxMonthly,
		MonthlyInHand:          monthlyInHand,
		AnnualInHand:           annualInHand,
	}, nil
}

// Compare calculates every regime and picks the one leaving the most in hand.
func Compare(c Components) (Comparison, error) {
	var out Comparison
	for _, regime := range Regimes() {
		breakdown, err := Calculate(c, regime)
		if err != nil {
			return Comparison{}, err
		}
		out.Breakdowns = append(out.Breakdowns, breakdown)
		if out.Best == "" || breakdown.MonthlyInHand.GreaterThan(out.best().MonthlyInHand) {
			out.Best = regime
		}
	}
	return out, nil
}

func (c Comparison) best() Breakdown {
	for _, b := range c.Breakdowns {
		if b.Regime == c.Best {
			return b
		}
	}
	return Breakdown{}
}
