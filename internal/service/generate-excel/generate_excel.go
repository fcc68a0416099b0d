package generate_excel

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"roxat-report/internal/service/dashboard"
	"roxat-report/internal/storage"
)

const (
	SheetSummary   = "Summary"
	SheetWaiters   = "Waiters"
	SheetProducts  = "Products"
	SheetSoldItems = "Sold items"
)

type GenerateExcelSource interface {
	View(ctx context.Context, sess storage.Session) (dashboard.View, error)
}

type GenerateExcelService struct {
	source GenerateExcelSource
	loc    *time.Location
}

func NewGenerateService(source GenerateExcelSource, loc *time.Location) *GenerateExcelService {
	if loc == nil {
		loc = time.Local
	}
	return &GenerateExcelService{source: source, loc: loc}
}

// GenerateExcel exports the session's current dashboard view, filters included.
func (g *GenerateExcelService) GenerateExcel(ctx context.Context, sess storage.Session) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	v, err := g.source.View(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := g.Workbook(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func (g *GenerateExcelService) Workbook(v dashboard.View) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetWaiters, SheetProducts, SheetSoldItems} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	// Жирная шапка с заливкой
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, err
	}

	s := v.Summary
	summary := [][]any{
		{v.Label, ""},
		{"Branch", v.Branch},
		{"Category", v.Category},
		{"Total orders", s.TotalOrders},
		{"Total income", money(s.TotalIncome)},
		{"Cash", money(s.TotalCash)},
		{"Card", money(s.TotalCard)},
		{"Click", money(s.TotalClick)},
		{"Service amount", money(s.TotalServiceAmount)},
		{"Average order", money(s.AverageOrderValue)},
		{"Growth rate, %", money(s.GrowthRate)},
	}
	writeRows(f, SheetSummary, summary)

	waiters := make([][]any, 0, len(v.Waiters)+1)
	waiters = append(waiters, []any{"Waiter", "Orders", "Total sales", "Commission", "Commission, %"})
	for _, w := range v.Waiters {
		waiters = append(waiters, []any{w.Name, w.Orders, money(w.TotalSales), money(w.TotalCommission), money(w.CommissionPercent)})
	}
	writeRows(f, SheetWaiters, waiters)

	products := make([][]any, 0, len(v.Products)+1)
	products = append(products, []any{"Item", "Category", "Quantity", "Revenue", "Average price", "Orders"})
	for _, p := range v.Products {
		products = append(products, []any{p.ItemName, p.Category, money(p.TotalQuantity), money(p.TotalRevenue), money(p.AvgPrice.Round(2)), p.OrderCount})
	}
	writeRows(f, SheetProducts, products)

	sold := make([][]any, 0, len(v.SoldItems)+1)
	sold = append(sold, []any{"Date", "Order", "Item", "Category", "Quantity", "Price", "Subtotal", "Waiter", "Table"})
	for _, it := range v.SoldItems {
		date := ""
		if !it.Date.IsZero() {
			date = it.Date.In(g.loc).Format("02.01.2006 15:04")
		}
		order := it.OrderNumber
		if order == "" {
			order = it.OrderID
		}
		sold = append(sold, []any{date, order, it.ItemName, it.Category, money(it.Quantity), money(it.Price), money(it.Subtotal), it.WaiterName, it.TableNumber})
	}
	writeRows(f, SheetSoldItems, sold)

	widths := map[string]int{
		SheetSummary:   len(summary[0]),
		SheetWaiters:   len(waiters[0]),
		SheetProducts:  len(products[0]),
		SheetSoldItems: len(sold[0]),
	}
	for _, sheet := range []string{SheetSummary, SheetWaiters, SheetProducts, SheetSoldItems} {
		_ = f.SetCellStyle(sheet, "A1", cellName(widths[sheet], 1), headerStyle)
		// Закрепляем первую строку
		_ = f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			Split:       false,
			XSplit:      0,
			YSplit:      1,
			TopLeftCell: "A2",
		})
		_ = f.SetColWidth(sheet, "A", "I", 16)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) {
	for r, row := range rows {
		for c, val := range row {
			_ = f.SetCellValue(sheet, cellName(c+1, r+1), val)
		}
	}
}

func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
