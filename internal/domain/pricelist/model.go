// Package pricelist принимает табличные прайс-листы, ищет ценовые конфликты
// и атомарно применяет чистые партии в каталог.
package pricelist

import (
	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

type Mode string

const (
	ModePreview Mode = "preview" // только проверка конфликтов, без записи
	ModePublish Mode = "publish" // проверка + запись
)

// Row — одна нормализованная строка прайс-листа.
type Row struct {
	Index  int // номер строки в исходном файле (с единицы, без заголовка)
	Style  string
	Model  string
	Finish string
	Color  string
	Type   string
	Width  int
	Height int
	Price  decimal.Decimal
	Photo  string
	SKU    string
}

// Valid — заполнены обязательные поля ключа идентичности.
// Отсутствующие ширина/высота остаются нулями и валидной строку не делают
// с точки зрения размеров, но строка импортируется (0 = размер не задан).
func (r Row) Valid() bool {
	return r.Model != "" && r.Finish != "" && r.Color != "" && r.Type != ""
}

func (r Row) Key(category string) catalog.Key {
	return catalog.Key{
		Category: category,
		Model:    r.Model,
		Finish:   r.Finish,
		Color:    r.Color,
		Type:     r.Type,
		Width:    r.Width,
		Height:   r.Height,
	}
}

// Conflict — группа строк одного ключа идентичности с расходящимися ценами.
// Живёт только в отчёте об отклонении, никуда не сохраняется.
type Conflict struct {
	Key      catalog.Key
	Existing *decimal.Decimal  // цена уже в базе, nil если строки не было
	Prices   []decimal.Decimal // различные цены импорта
	Rows     []Row
	Hint     string
}

// HintFixFile — подсказка из отчёта: выбрать одну цену и поправить файл.
const HintFixFile = "choose_one_price_and_fix_file"

// Summary — итог обработки партии.
type Summary struct {
	Total    int `json:"total"`
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
	Imported int `json:"imported"`
}

// Result — либо конфликты (партия отклонена целиком), либо чистый итог.
type Result struct {
	Summary   Summary
	Conflicts []Conflict
}

func (r *Result) Conflicted() bool { return len(r.Conflicts) > 0 }
