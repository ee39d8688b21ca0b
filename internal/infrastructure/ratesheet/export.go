package ratesheet

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

const quoteSheet = "Offert"

// ExportQuote renders a quote as a single-sheet workbook.
func ExportQuote(q domain.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quoteSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	for col, width := range map[string]float64{"A": 40, "B": 12, "C": 10, "D": 14, "E": 16} {
		if err := f.SetColWidth(quoteSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create style: %w", err)
	}

	w := &sheetWriter{f: f, row: 1}
	w.set(bold, sanitizeCell(q.Title))
	w.set(0, "Offert-ID", q.ID)
	w.row++

	w.set(bold, "Post", "Typ", "Antal", "Á-pris", "Summa")
	for _, item := range q.WorkItems {
		w.set(0, sanitizeCell(item.Name), "Arbete", item.Hours, item.HourlyRate, item.Subtotal)
	}
	for _, m := range q.Materials {
		w.set(0, sanitizeCell(m.Name), "Material", m.Quantity, m.PricePerUnit, m.Subtotal)
	}
	for _, e := range q.EquipmentLines {
		w.set(0, sanitizeCell(e.Name), "Utrustning", e.Quantity, e.Price, e.Subtotal)
	}
	if q.RiskMargin != nil {
		w.set(0, sanitizeCell(q.RiskMargin.Label), "Påslag", "", "", q.RiskMargin.Amount)
	}
	w.row++

	s := q.Summary
	w.set(bold, "Summa exkl. moms", "", "", "", s.TotalBeforeVAT)
	w.set(0, "Moms", "", "", "", s.VATAmount)
	w.set(bold, "Summa inkl. moms", "", "", "", s.TotalWithVAT)
	if d := s.RotRutDeduction; d != nil {
		w.set(0, strings.ToUpper(string(d.Type))+"-avdrag", "", "", "", -d.DeductionAmount)
	}
	w.set(bold, "Att betala", "", "", "", s.CustomerPays)
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f   *excelize.File
	row int
	err error
}

func (w *sheetWriter) set(style int, values ...any) {
	if w.err != nil {
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetCellValue(quoteSheet, cell, v); err != nil {
			w.err = fmt.Errorf("set %s: %w", cell, err)
			return
		}
		if style != 0 {
			if err := w.f.SetCellStyle(quoteSheet, cell, cell, style); err != nil {
				w.err = fmt.Errorf("style %s: %w", cell, err)
				return
			}
		}
	}
	w.row++
}

// sanitizeCell keeps user text from being evaluated as a formula.
func sanitizeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}
