// Package pdf renders payslips as printable A4 documents.
package pdf

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/warp/payroll-engine/money"
	"github.com/warp/payroll-engine/payroll"
)

const (
	labelWidth  = 120.0
	amountWidth = 60.0
	rowHeight   = 7.0
)

// Options tweaks rendering. The zero value is the production layout.
type Options struct {
	CompanyName string
	// Uncompressed writes plain content streams (readable in tests).
	Uncompressed bool
}

// RenderPayslip writes p as a single-page PDF to w.
func RenderPayslip(w io.Writer, p payroll.Payslip, opts Options) error {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetCompression(!opts.Uncompressed)
	doc.SetTitle(fmt.Sprintf("Payslip %s %s", p.Employee.Name, p.Period.Key()), true)
	if !p.CreatedAt.IsZero() {
		doc.SetCreationDate(p.CreatedAt)
	}
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	title := "Payslip"
	if opts.CompanyName != "" {
		title = opts.CompanyName + " - Payslip"
	}
	doc.Cell(0, 10, title)
	doc.Ln(12)

	doc.SetFont("Helvetica", "", 11)
	doc.Cell(0, rowHeight, fmt.Sprintf("Employee: %s (%s)", p.Employee.Name, p.Employee.ID))
	doc.Ln(rowHeight)
	if p.Employee.Position != "" || p.Employee.Department != "" {
		doc.Cell(0, rowHeight, fmt.Sprintf("Position: %s  Department: %s", p.Employee.Position, p.Employee.Department))
		doc.Ln(rowHeight)
	}
	doc.Cell(0, rowHeight, fmt.Sprintf("Period: %s to %s",
		p.Period.Start().Format("2006-01-02"), p.Period.End().Format("2006-01-02")))
	doc.Ln(rowHeight)
	doc.Cell(0, rowHeight, fmt.Sprintf("Payslip: %s  Policy: %s", p.ID, p.PolicyID))
	doc.Ln(rowHeight + 3)

	var incomes, deducts []payroll.LineItem
	for _, li := range p.Items().Lines() {
		if li.Kind == payroll.KindIncome {
			incomes = append(incomes, li)
		} else {
			deducts = append(deducts, li)
		}
	}

	section(doc, "Income", incomes, p.TotalIncome)
	section(doc, "Deductions", deducts, p.TotalDeduct)

	doc.SetFont("Helvetica", "B", 13)
	doc.CellFormat(labelWidth, rowHeight+2, "Net Pay", "TB", 0, "L", false, 0, "")
	doc.CellFormat(amountWidth, rowHeight+2, amount(p.Financials.Net), "TB", 1, "R", false, 0, "")

	return doc.Output(w)
}

func section(doc *gofpdf.Fpdf, heading string, lines []payroll.LineItem, total money.Money) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(labelWidth+amountWidth, rowHeight, heading, "B", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	for _, li := range lines {
		doc.CellFormat(labelWidth, rowHeight, li.Label, "", 0, "L", false, 0, "")
		doc.CellFormat(amountWidth, rowHeight, amount(li.Amount), "", 1, "R", false, 0, "")
	}
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(labelWidth, rowHeight, "Total "+heading, "T", 0, "L", false, 0, "")
	doc.CellFormat(amountWidth, rowHeight, amount(total), "T", 1, "R", false, 0, "")
	doc.Ln(4)
}

func amount(m money.Money) string {
	if m.Currency == "" {
		return m.Amount.StringFixed(2)
	}
	return m.String()
}
