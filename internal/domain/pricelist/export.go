package pricelist

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

// ExportXLSX выгружает каталог в том же формате колонок, который принимает
// импорт: файл можно поправить и загрузить обратно.
func ExportXLSX(variants []catalog.Variant) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{
		"style", "model", "finish", "color", "type", "width", "height",
		"rrc_price", "sku_1c", "model_photo",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	row := 2
	for _, v := range variants {
		excelRow := []interface{}{
			v.Style, v.Model, v.Finish, v.Color, v.Type, v.Width, v.Height,
			v.Price.String(), v.SKU, v.Photo,
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

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
