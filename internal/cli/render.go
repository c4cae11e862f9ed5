package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"inhand/internal/domain/salary"
)

var decimalOne = decimal.NewFromInt(1)

const (
	nameWidth   = 26
	amountWidth = 16
)

func row(name, monthly, annual string, style lipgloss.Style) string {
	cells := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(nameWidth).Render(name),
		lipgloss.NewStyle().Width(amountWidth).Align(lipgloss.Right).Render(monthly),
		lipgloss.NewStyle().Width(amountWidth).Align(lipgloss.Right).Render(annual),
	)
	return style.Render(cells)
}

// RenderBreakdown writes a styled breakup table.
func RenderBreakdown(w io.Writer, b salary.Breakdown) error {
	var sb strings.Builder
	sb.WriteString(FormatTitle(b.Regime.Name()))
	sb.WriteString("\n\n")
	sb.WriteString(row("Component", "Monthly (INR)", "Annual (INR)", HeaderStyle))
	sb.WriteString("\n")
	sb.WriteString(SubtleStyle.Render(strings.Repeat("─", nameWidth+2*amountWidth)))
	sb.WriteString("\n")
	for _, item := range b.Items {
		style := lipgloss.NewStyle()
		if item.Name == salary.ItemInHand {
			style = HighlightStyle
		}
		sb.WriteString(row(item.Name, salary.FormatAmount(item.Monthly), salary.FormatAmount(item.Annual), style))
		sb.WriteString("\n")
	}

	summary := fmt.Sprintf("Taxable income  INR %s\nIncome tax      INR %s / year\nIn-hand         INR %s / month",
		salary.FormatAmount(b.TaxableIncome),
		salary.FormatAmount(b.AnnualIncomeTax),
		salary.FormatAmount(b.MonthlyInHand),
	)
	sb.WriteString(BoxStyle.Render(summary))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func RenderComparison(w io.Writer, cmp salary.Comparison) error {
	var sb strings.Builder
	sb.WriteString(FormatTitle("Regime comparison"))
	sb.WriteString("\n\n")
	sb.WriteString(row("Regime", "Tax / year", "In-hand / month", HeaderStyle))
	sb.WriteString("\n")
	for _, b := range cmp.Breakdowns {
		style := lipgloss.NewStyle()
		name := string(b.Regime)
		if b.Regime == cmp.Best {
			style = HighlightStyle
			name += " (best)"
		}
		sb.WriteString(row(name, salary.FormatAmount(b.AnnualIncomeTax), salary.FormatAmount(b.MonthlyInHand), style))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(SuccessStyle.Render("Best: " + cmp.Best.Name()))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderRules lists every slab table and the fixed deductions.
func RenderRules(w io.Writer, rules salary.Rules) error {
	var sb strings.Builder
	for _, schedule := range rules.Schedules {
		sb.WriteString(FormatTitle(schedule.Regime.Name()))
		sb.WriteString("\n")
		lower := "0"
		for _, slab := range schedule.Slabs {
			rate := slab.Rate.Shift(2).String() + "%"
			if slab.UpTo == nil {
				fmt.Fprintf(&sb, "  above %-22s %s\n", lower, rate)
				continue
			}
			upper := salary.FormatAmount(*slab.UpTo)
			fmt.Fprintf(&sb, "  %-28s %s\n", lower+" - "+upper, rate)
			lower = upper
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Standard deduction      INR %s\n", salary.FormatAmount(rules.StandardDeduction))
	fmt.Fprintf(&sb, "Professional tax        INR %s / month\n", salary.FormatAmount(rules.ProfessionalTaxMonthly))
	fmt.Fprintf(&sb, "Health & education cess %s%%\n", rules.CessMultiplier.Sub(decimalOne).Shift(2).String())
	fmt.Fprintf(&sb, "Section 80C cap         INR %s\n", salary.FormatAmount(rules.Section80CCap))
	fmt.Fprintf(&sb, "Section 80D cap         INR %s\n", salary.FormatAmount(rules.Section80DCap))

	_, err := io.WriteString(w, sb.String())
	return err
}
