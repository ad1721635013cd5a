package pricelist

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Колонки файла сопоставляются по заголовкам, латиница и русский равнозначны.
var headerAliases = map[string]string{
	"style":  "style",
	"стиль":  "style",
	"model":  "model",
	"модель": "model",
	"finish":    "finish",
	"покрытие":  "finish",
	"color":     "color",
	"цвет":      "color",
	"type":      "type",
	"тип":       "type",
	"width":     "width",
	"ширина":    "width",
	"height":    "height",
	"высота":    "height",
	"price":     "price",
	"rrc_price": "price",
	"цена":      "price",
	"ррц":       "price",
	"photo":       "photo",
	"model_photo": "photo",
	"фото":        "photo",
	"sku":     "sku",
	"sku_1c":  "sku",
	"артикул": "sku",
}

// ParseXLSX читает первый лист книги: первая строка — заголовки.
func ParseXLSX(data []byte) ([]Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pricelist: open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("pricelist: read xlsx: %w", err)
	}
	return fromRecords(records)
}

// ParseCSV читает CSV с заголовком; BOM и десятичная запятая допускаются.
func ParseCSV(data []byte) ([]Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	rd := csv.NewReader(bytes.NewReader(data))
	rd.FieldsPerRecord = -1
	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("pricelist: read csv: %w", err)
	}
	return fromRecords(records)
}

// ParseFile выбирает парсер по расширению имени файла.
func ParseFile(name string, data []byte) ([]Row, error) {
	low := strings.ToLower(name)
	switch {
	case strings.HasSuffix(low, ".csv"):
		return ParseCSV(data)
	case strings.HasSuffix(low, ".xlsx"), strings.HasSuffix(low, ".xlsm"), strings.HasSuffix(low, ".xls"):
		return ParseXLSX(data)
	}
	return nil, fmt.Errorf("pricelist: unsupported file type: %s", name)
}

func fromRecords(records [][]string) ([]Row, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("pricelist: file has no data rows")
	}

	// колонка -> каноническое поле
	fields := map[int]string{}
	for i, h := range records[0] {
		if f, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			fields[i] = f
		}
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("pricelist: no known columns in header")
	}

	var rows []Row
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if empty(rec) {
			continue
		}
		row := Row{Index: i}
		for col, field := range fields {
			if col >= len(rec) {
				continue
			}
			val := strings.TrimSpace(rec[col])
			switch field {
			case "style":
				row.Style = val
			case "model":
				row.Model = val
			case "finish":
				row.Finish = val
			case "color":
				row.Color = val
			case "type":
				row.Type = val
			case "width":
				row.Width = parseInt(val)
			case "height":
				row.Height = parseInt(val)
			case "price":
				row.Price = parsePrice(val)
			case "photo":
				row.Photo = val
			case "sku":
				row.SKU = val
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func empty(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseInt терпит дробную запись вида "800.0"; нечисло -> 0 (размер не задан).
func parseInt(s string) int {
	if s == "" {
		return 0
	}
	if i := strings.IndexAny(s, ".,"); i >= 0 {
		s = s[:i]
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}

func parsePrice(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero
	}
	return v
}
