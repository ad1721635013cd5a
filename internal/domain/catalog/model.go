package catalog

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Attr — конфигурируемый атрибут товара.
type Attr string

const (
	AttrStyle  Attr = "style"
	AttrModel  Attr = "model"
	AttrFinish Attr = "finish"
	AttrColor  Attr = "color"
	AttrType   Attr = "type"
	AttrWidth  Attr = "width"
	AttrHeight Attr = "height"

	AttrKit    Attr = "hardware_kit"
	AttrHandle Attr = "handle"
)

// StringAttrs — строковые атрибуты в каноническом порядке.
var StringAttrs = []Attr{AttrStyle, AttrModel, AttrFinish, AttrColor, AttrType}

// IntAttrs — размерные атрибуты (мм).
var IntAttrs = []Attr{AttrWidth, AttrHeight}

// Variant — конкретная продаваемая конфигурация (строка каталога).
type Variant struct {
	ID        int64
	Category  string
	Style     string // описательный, в ключ идентичности не входит
	Model     string
	Finish    string
	Color     string
	Type      string
	Width     int
	Height    int
	Price         decimal.Decimal
	Currency      string
	SKU           string
	Photo         string
	EffectiveFrom time.Time // дата, с которой действует текущая цена
	CreatedAt     time.Time
}

// Key — ключ идентичности варианта: на один ключ в базе не больше одной цены.
type Key struct {
	Category string
	Model    string
	Finish   string
	Color    string
	Type     string
	Width    int
	Height   int
}

func (v Variant) Key() Key {
	return Key{
		Category: v.Category,
		Model:    v.Model,
		Finish:   v.Finish,
		Color:    v.Color,
		Type:     v.Type,
		Width:    v.Width,
		Height:   v.Height,
	}
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%d|%d",
		k.Category, k.Model, k.Finish, k.Color, k.Type, k.Width, k.Height)
}

// Kit — комплект фурнитуры, цена прибавляется как есть.
type Kit struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Handle — ручка. Базовая цена умножается на множитель ценовой группы
// базового товара (группа определяется покрытием/цветом двери).
type Handle struct {
	ID          int64
	Name        string
	PriceBase   decimal.Decimal
	Multipliers map[string]decimal.Decimal // ценовая группа -> множитель
}

// Multiplier возвращает множитель ручки для группы, 1 если группа не задана.
func (h Handle) Multiplier(group string) decimal.Decimal {
	if group != "" {
		if m, ok := h.Multipliers[group]; ok {
			return m
		}
	}
	return decimal.NewFromInt(1)
}

// Selection — состояние выбора клиента. Пустая строка / ноль = не выбрано.
// Живёт в рамках одного запроса, не сохраняется.
type Selection struct {
	Style  string `json:"style,omitempty"`
	Model  string `json:"model,omitempty"`
	Finish string `json:"finish,omitempty"`
	Color  string `json:"color,omitempty"`
	Type   string `json:"type,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	KitID    int64 `json:"hardware_kit_id,omitempty"`
	HandleID int64 `json:"handle_id,omitempty"`
	Qty      int   `json:"qty,omitempty"`
}

// Complete — заданы все шесть обязательных атрибутов (style не обязателен).
func (s Selection) Complete() bool {
	return s.Model != "" && s.Finish != "" && s.Color != "" && s.Type != "" &&
		s.Width > 0 && s.Height > 0
}

// Key строит ключ идентичности для текущего выбора.
func (s Selection) Key(category string) Key {
	return Key{
		Category: category,
		Model:    s.Model,
		Finish:   s.Finish,
		Color:    s.Color,
		Type:     s.Type,
		Width:    s.Width,
		Height:   s.Height,
	}
}

// Get возвращает строковое значение атрибута выбора ("" = не выбрано).
func (s Selection) Get(a Attr) string {
	switch a {
	case AttrStyle:
		return s.Style
	case AttrModel:
		return s.Model
	case AttrFinish:
		return s.Finish
	case AttrColor:
		return s.Color
	case AttrType:
		return s.Type
	}
	return ""
}

// GetInt возвращает размерное значение атрибута (0 = не выбрано).
func (s Selection) GetInt(a Attr) int {
	switch a {
	case AttrWidth:
		return s.Width
	case AttrHeight:
		return s.Height
	}
	return 0
}

// Without возвращает копию выбора со сброшенным атрибутом —
// фильтр для пересчёта домена этого атрибута.
func (s Selection) Without(a Attr) Selection {
	out := s
	switch a {
	case AttrStyle:
		out.Style = ""
	case AttrModel:
		out.Model = ""
	case AttrFinish:
		out.Finish = ""
	case AttrColor:
		out.Color = ""
	case AttrType:
		out.Type = ""
	case AttrWidth:
		out.Width = 0
	case AttrHeight:
		out.Height = 0
	}
	return out
}

// Domain — допустимые значения каждого атрибута при остальном текущем выборе.
type Domain struct {
	Style  []string `json:"style"`
	Model  []string `json:"model"`
	Finish []string `json:"finish"`
	Color  []string `json:"color"`
	Type   []string `json:"type"`
	Width  []int    `json:"width"`
	Height []int    `json:"height"`
}

// Strings возвращает домен строкового атрибута.
func (d Domain) Strings(a Attr) []string {
	switch a {
	case AttrStyle:
		return d.Style
	case AttrModel:
		return d.Model
	case AttrFinish:
		return d.Finish
	case AttrColor:
		return d.Color
	case AttrType:
		return d.Type
	}
	return nil
}

// Ints возвращает домен размерного атрибута.
func (d Domain) Ints(a Attr) []int {
	switch a {
	case AttrWidth:
		return d.Width
	case AttrHeight:
		return d.Height
	}
	return nil
}

// SetStrings записывает домен строкового атрибута.
func (d *Domain) SetStrings(a Attr, vals []string) {
	switch a {
	case AttrStyle:
		d.Style = vals
	case AttrModel:
		d.Model = vals
	case AttrFinish:
		d.Finish = vals
	case AttrColor:
		d.Color = vals
	case AttrType:
		d.Type = vals
	}
}

// SetInts записывает домен размерного атрибута.
func (d *Domain) SetInts(a Attr, vals []int) {
	switch a {
	case AttrWidth:
		d.Width = vals
	case AttrHeight:
		d.Height = vals
	}
}

// Groups — ценовые группы базовых товаров: (покрытие, цвет) -> имя группы.
// Используется движком цен для выбора множителя ручки. Явно передаётся
// в движок, а не лежит глобальным состоянием.
type Groups map[GroupKey]string

type GroupKey struct {
	Finish string
	Color  string
}

// Of возвращает группу для покрытия/цвета ("" — группа не назначена).
func (g Groups) Of(finish, color string) string {
	return g[GroupKey{Finish: finish, Color: color}]
}
