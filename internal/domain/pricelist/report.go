package pricelist

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ReportCSV — отчёт о конфликтах: одна строка на каждую конфликтующую
// строку импорта, с существующей ценой (если была) и подсказкой.
// Значения с запятыми и кавычками экранируются по правилам CSV.
func ReportCSV(conflicts []Conflict) string {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{
		"row", "model", "finish", "color", "type", "width", "height",
		"price_existing", "price_import", "resolution",
	})
	for _, c := range conflicts {
		existing := ""
		if c.Existing != nil {
			existing = c.Existing.String()
		}
		for _, r := range c.Rows {
			_ = w.Write([]string{
				strconv.Itoa(r.Index),
				c.Key.Model, c.Key.Finish, c.Key.Color, c.Key.Type,
				strconv.Itoa(c.Key.Width), strconv.Itoa(c.Key.Height),
				existing, r.Price.String(), c.Hint,
			})
		}
	}
	w.Flush()
	return buf.String()
}

// ReportXLSX собирает тот же отчёт книгой Excel — удобнее возвращать
// администратору для правки исходного файла.
func ReportXLSX(conflicts []Conflict) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"row", "model", "finish", "color", "type", "width", "height",
		"price_existing", "price_import", "resolution",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, c := range conflicts {
		existing := ""
		if c.Existing != nil {
			existing = c.Existing.String()
		}
		for _, r := range c.Rows {
			excelRow := []interface{}{
				r.Index, c.Key.Model, c.Key.Finish, c.Key.Color, c.Key.Type,
				c.Key.Width, c.Key.Height, existing, r.Price.String(), c.Hint,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
				return nil, err
			}
			row++
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
