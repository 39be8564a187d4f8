// Package receipt renders the customer copy of a finalized sale as a narrow
// thermal-paper style PDF.
package receipt

import (
	"fmt"
	"io"

	"go-pdv/internal/models"

	"github.com/go-pdf/fpdf"
)

const (
	paperWidth = 80.0 // mm, common thermal roll
	margin     = 4.0
)

// Render writes the receipt of s to w.
func Render(w io.Writer, storeName string, s *models.Sale) error {
	// paper grows with the number of lines
	height := 70 + 5*float64(len(s.Items)) + 4*float64(len(s.Payments))
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: paperWidth, Ht: height},
	})
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	contentW := paperWidth - 2*margin
	col1 := contentW * 0.50 // name
	col2 := contentW * 0.18 // qty
	col3 := contentW * 0.32 // line total

	// ── Header ──
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(storeName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Cupom não fiscal"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Venda Nº %d", s.Number)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, s.SaleTime.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if s.Terminal != "" {
		pdf.CellFormat(contentW, 4, "Terminal "+s.Terminal, "", 1, "L", false, 0, "")
	}
	if s.CustomerName != "" {
		pdf.CellFormat(contentW, 4, tr("Cliente: "+s.CustomerName), "", 1, "L", false, 0, "")
	}
	separator(pdf)

	// ── Items ──
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Produto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, it := range s.Items {
		name := []rune(it.Name)
		if len(name) > 24 {
			name = append(name[:23], '.')
		}
		pdf.CellFormat(col1, 5, tr(string(name)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, it.Quantity.String()+" "+it.Unit, "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, money(it.LineTotal.StringFixed(2)), "", 1, "R", false, 0, "")
	}
	separator(pdf)

	// ── Totals ──
	row := func(label, value string) {
		pdf.CellFormat(col1+col2, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(col3, 5, value, "", 1, "R", false, 0, "")
	}
	row("Subtotal", money(s.Subtotal.StringFixed(2)))
	if disc := s.ItemsDiscount.Add(s.SaleDiscount); disc.IsPositive() {
		row("Descontos", "-"+money(disc.StringFixed(2)))
	}
	pdf.SetFont("Helvetica", "B", 9)
	row("TOTAL", money(s.TotalAmount.StringFixed(2)))

	pdf.SetFont("Helvetica", "", 7)
	pdf.Ln(1)
	for _, p := range s.Payments {
		row(p.Label, money(p.Amount.StringFixed(2)))
	}
	if s.ChangeDue.IsPositive() {
		row("Troco", money(s.ChangeDue.StringFixed(2)))
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("Obrigado pela preferência!"), "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

func separator(pdf *fpdf.Fpdf) {
	pdf.Ln(1)
	pdf.Line(margin, pdf.GetY(), paperWidth-margin, pdf.GetY())
	pdf.Ln(1)
}

func money(v string) string { return "R$ " + v }
