// Package ratesheet reads per-trade hourly and equipment rates from an xlsx
// workbook and exports finished quotes to xlsx.
package ratesheet

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/quote-assistant/internal/core/domain"
)

const (
	HourlySheet    = "Timpriser"
	EquipmentSheet = "Utrustning"
)

// Sheet is a RateStore backed by one workbook. Every user sees the same rates.
type Sheet struct {
	hourly    []domain.HourlyRate
	equipment []domain.EquipmentRate
}

func Open(path string) (*Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open rate sheet: %w", err)
	}
	defer f.Close()
	return read(f)
}

func read(f *excelize.File) (*Sheet, error) {
	s := &Sheet{}
	hourlyRows, err := dataRows(f, HourlySheet)
	if err != nil {
		return nil, err
	}
	for i, row := range hourlyRows {
		if len(row) < 2 {
			continue
		}
		rate, err := parseAmount(row[1])
		if err != nil || rate <= 0 {
			return nil, fmt.Errorf("%s row %d: invalid rate %q", HourlySheet, i+2, row[1])
		}
		s.hourly = append(s.hourly, domain.HourlyRate{WorkType: strings.TrimSpace(row[0]), Rate: rate})
	}

	equipmentRows, err := dataRows(f, EquipmentSheet)
	if err != nil {
		return nil, err
	}
	for i, row := range equipmentRows {
		row = append(row, make([]string, 4-min(len(row), 4))...)
		perDay, errDay := parseAmount(row[1])
		perHour, errHour := parseAmount(row[2])
		if errDay != nil || errHour != nil {
			return nil, fmt.Errorf("%s row %d: invalid price", EquipmentSheet, i+2)
		}
		s.equipment = append(s.equipment, domain.EquipmentRate{
			Name:         strings.TrimSpace(row[0]),
			PricePerDay:  perDay,
			PricePerHour: perHour,
			IsRented:     isYes(row[3]),
		})
	}
	return s, nil
}

// dataRows skips the header row and blank names. A missing sheet has no rows.
func dataRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "kr"))
	if raw == "" {
		return 0, nil
	}
	raw = strings.ReplaceAll(strings.ReplaceAll(raw, " ", ""), ",", ".")
	return strconv.ParseFloat(raw, 64)
}

func isYes(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ja", "yes", "true", "x", "1":
		return true
	}
	return false
}

func (s *Sheet) GetHourlyRates(context.Context, string) ([]domain.HourlyRate, error) {
	return append([]domain.HourlyRate(nil), s.hourly...), nil
}

func (s *Sheet) GetEquipmentRates(context.Context, string) ([]domain.EquipmentRate, error) {
	return append([]domain.EquipmentRate(nil), s.equipment...), nil
}
