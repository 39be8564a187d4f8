// Package report builds the spreadsheet export of the sales report.
package report

import (
	"fmt"
	"io"

	"go-pdv/internal/models"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSales    = "Vendas"
	SheetItems    = "Itens"
	SheetPayments = "Pagamentos"
)

var (
	salesHeader    = []interface{}{"Venda", "Data", "Terminal", "Cliente", "Subtotal", "Desc. itens", "Desc. venda", "Total", "Pago", "Troco", "Status"}
	itemsHeader    = []interface{}{"Venda", "Código", "Produto", "Qtd", "Un", "Preço", "Desconto", "Total"}
	paymentsHeader = []interface{}{"Venda", "Forma", "Descrição", "Parcial", "Valor"}
)

// WriteSales writes one workbook with sales, their items and payments on
// separate sheets.
func WriteSales(w io.Writer, sales []models.Sale) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSales); err != nil {
		return err
	}
	for _, name := range []string{SheetItems, SheetPayments} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sheets := map[string][]interface{}{SheetSales: salesHeader, SheetItems: itemsHeader, SheetPayments: paymentsHeader}
	for name, header := range sheets {
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(name, "A1", last, bold); err != nil {
			return err
		}
	}

	saleRow, itemRow, payRow := 2, 2, 2
	for _, s := range sales {
		row := []interface{}{
			s.Number,
			s.SaleTime.Format("2006-01-02 15:04"),
			s.Terminal,
			s.CustomerName,
			s.Subtotal.InexactFloat64(),
			s.ItemsDiscount.InexactFloat64(),
			s.SaleDiscount.InexactFloat64(),
			s.TotalAmount.InexactFloat64(),
			s.TotalPaid.InexactFloat64(),
			s.ChangeDue.InexactFloat64(),
			s.Status,
		}
		if err := setRow(f, SheetSales, saleRow, row); err != nil {
			return err
		}
		saleRow++

		for _, it := range s.Items {
			row := []interface{}{
				s.Number,
				it.Code,
				it.Name,
				it.Quantity.InexactFloat64(),
				it.Unit,
				it.PriceAtSale.InexactFloat64(),
				it.DiscountValue.InexactFloat64(),
				it.LineTotal.InexactFloat64(),
			}
			if err := setRow(f, SheetItems, itemRow, row); err != nil {
				return err
			}
			itemRow++
		}

		for _, p := range s.Payments {
			partial := "não"
			if p.Partial {
				partial = "sim"
			}
			row := []interface{}{s.Number, p.Method, p.Label, partial, p.Amount.InexactFloat64()}
			if err := setRow(f, SheetPayments, payRow, row); err != nil {
				return err
			}
			payRow++
		}
	}

	if err := f.SetColWidth(SheetSales, "B", "D", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetItems, "B", "C", 24); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%s row %d: %w", sheet, row, err)
	}
	return nil
}
