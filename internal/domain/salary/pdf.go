package salary

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the breakup as a single A4 page.
func WritePDF(w io.Writer, b Breakdown, title string) error {
	if title == "" {
		title = "Salary Breakup"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Tax Calculation: %s", b.Regime.Name()))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(90, 8, "Component", "B", 0, "L", false, 0, "")
	pdf.CellFormat(45, 8, "Monthly (INR)", "B", 0, "R", false, 0, "")
	pdf.CellFormat(45, 8, "Annual (INR)", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, item := range b.Items {
		if item.Name == ItemInHand {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(90, 7, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, FormatAmount(item.Monthly), "", 0, "R", false, 0, "")
		pdf.CellFormat(45, 7, FormatAmount(item.Annual), "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Monthly In-Hand Salary: INR %s", FormatAmount(b.MonthlyInHand)))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 8, fmt.Sprintf("Taxable income: INR %s", FormatAmount(b.TaxableIncome)))

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
