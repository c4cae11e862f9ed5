package salary

import "github.com/shopspring/decimal"

// Slab is one bracket of a progressive schedule. A nil UpTo marks the top
// bracket.
type Slab struct {
	UpTo *decimal.Decimal `json:"upTo,omitempty"`
	Rate decimal.Decimal  `json:"rate"`
}

type Schedule struct {
	Regime Regime `json:"regime"`
	Slabs  []Slab `json:"slabs"`
}

// Tax applies the schedule to an annual taxable income. Each bound belongs to
// the slab it closes; non-positive income pays nothing.
func (s Schedule) Tax(income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	lower := decimal.Zero
	for _, slab := range s.Slabs {
		if !income.GreaterThan(lower) {
			break
		}
		portion := income.Sub(lower)
		if slab.UpTo != nil && income.GreaterThan(*slab.UpTo) {
			portion = slab.UpTo.Sub(lower)
		}
		tax = tax.Add(portion.Mul(slab.Rate))
		if slab.UpTo == nil {
			break
		}
		lower = *slab.UpTo
	}
	return tax
}

// FirstBound is the income up to which the schedule charges no tax.
func (s Schedule) FirstBound() decimal.Decimal {
	if len(s.Slabs) == 0 || s.Slabs[0].UpTo == nil {
		return decimal.Zero
	}
	return *s.Slabs[0].UpTo
}

func bound(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func pct(v int64) decimal.Decimal {
	return decimal.New(v, -2)
}

// buildSchedule returns a freshly allocated slab table, so callers never
// share bounds with each other.
func buildSchedule(regime Regime) (Schedule, bool) {
	var slabs []Slab
	switch regime {
	case RegimeOld:
		slabs = []Slab{
			{UpTo: bound(250000), Rate: pct(0)},
			{UpTo: bound(500000), Rate: pct(5)},
			{UpTo: bound(1000000), Rate: pct(20)},
			{Rate: pct(30)},
		}
	case RegimeNewCurrent:
		slabs = []Slab{
			{UpTo: bound(300000), Rate: pct(0)},
			{UpTo: bound(600000), Rate: pct(5)},
			{UpTo: bound(900000), Rate: pct(10)},
			{UpTo: bound(1200000), Rate: pct(15)},
			{UpTo: bound(1500000), Rate: pct(20)},
			{Rate: pct(30)},
		}
	case RegimeNewPost2025:
		slabs = []Slab{
			{UpTo: bound(400000), Rate: pct(0)},
			{UpTo: bound(800000), Rate: pct(5)},
			{UpTo: bound(1200000), Rate: pct(10)},
			{UpTo: bound(1600000), Rate: pct(15)},
			{UpTo: bound(2000000), Rate: pct(20)},
			{Rate: pct(25)},
		}
	default:
		return Schedule{}, false
	}
	return Schedule{Regime: regime, Slabs: slabs}, true
}

func ScheduleFor(regime Regime) (Schedule, error) {
	schedule, ok := buildSchedule(regime)
	if !ok {
		return Schedule{}, ErrUnknownRegime
	}
	return schedule, nil
}

// Rules describes the fixed figures the engine applies, for display.
type Rules struct {
	Schedules              []Schedule      `json:"schedules"`
	StandardDeduction      decimal.Decimal `json:"standardDeduction"`
	ProfessionalTaxMonthly decimal.Decimal `json:"professionalTaxMonthly"`
	CessMultiplier         decimal.Decimal `json:"cessMultiplier"`
	Section80CCap          decimal.Decimal `json:"section80CCap"`
	Section80DCap          decimal.Decimal `json:"section80DCap"`
}

// Schedules returns the slab table of every regime in display order.
func Schedules() []Schedule {
	regimes := Regimes()
	out := make([]Schedule, 0, len(regimes))
	for _, regime := range regimes {
		schedule, _ := buildSchedule(regime)
		out = append(out, schedule)
	}
	return out
}

func CurrentRules() Rules {
	return Rules{
		Schedules:              Schedules(),
		StandardDeduction:      StandardDeduction,
		ProfessionalTaxMonthly: ProfessionalTaxMonthly,
		CessMultiplier:         CessMultiplier,
		Section80CCap:          Section80CCap,
		Section80DCap:          Section80DCap,
	}
}
