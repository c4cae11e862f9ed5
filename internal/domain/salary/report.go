package salary

import (
	"bufio"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newPrinter() *message.Printer {
	return message.NewPrinter(language.English)
}

// FormatAmount renders an amount with two decimals and thousands grouping.
func FormatAmount(value decimal.Decimal) string {
	return newPrinter().Sprintf("%.2f", value.Round(2).InexactFloat64())
}

// WriteReport writes the plain-text breakup shared with users.
func WriteReport(w io.Writer, b Breakdown) error {
	bw := bufio.NewWriter(w)
	p := newPrinter()

	p.Fprintf(bw, "Salary Breakup:\n")
	p.Fprintf(bw, "%-25s%15s%15s\n", "Component", "Monthly (INR)", "Annual (INR)")
	p.Fprintf(bw, "%s\n", strings.Repeat("-", 55))
	for _, item := range b.Items {
		p.Fprintf(bw, "%-25s%15s%15s\n",
			item.Name,
			FormatAmount(item.Monthly),
			FormatAmount(item.Annual),
		)
	}
	p.Fprintf(bw, "\n")
	p.Fprintf(bw, "Monthly In-Hand Salary: INR %s\n", FormatAmount(b.MonthlyInHand))
	p.Fprintf(bw, "Annual In-Hand Salary: INR %s\n", FormatAmount(b.AnnualInHand))
	p.Fprintf(bw, "\nTax Calculation: %s\n", b.Regime.Name())
	return bw.Flush()
}
