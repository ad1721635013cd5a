// Package pricing считает цену за единицу по полному выбору конфигурации.
package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

var (
	// ErrIncompleteSelection — не заданы все обязательные атрибуты.
	// Ожидаемый исход: вызывающая сторона просит пользователя дозаполнить.
	ErrIncompleteSelection = errors.New("pricing: selection is incomplete")

	// ErrVariantNotFound — выбор полный, но такой комбинации в каталоге нет.
	// Тоже ожидаемый исход («сочетание недоступно»), не сбой системы.
	ErrVariantNotFound = errors.New("pricing: no variant for selection")
)

// Store — читающая часть каталога, нужная движку цен.
type Store interface {
	FindVariant(ctx context.Context, k catalog.Key) (*catalog.Variant, error)
	GetKit(ctx context.Context, id int64) (*catalog.Kit, error)
	GetHandle(ctx context.Context, id int64) (*catalog.Handle, error)
}

// Engine собирает разбивку цены. Таблица ценовых групп передаётся явно,
// чтобы в тестах можно было подставить любую.
type Engine struct {
	store    Store
	groups   catalog.Groups
	category string
}

func New(store Store, groups catalog.Groups, category string) *Engine {
	return &Engine{store: store, groups: groups, category: category}
}

// Line — одна строка разбивки.
type Line struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Quote — цена за единицу; умножение на количество — дело вызывающей стороны.
type Quote struct {
	Currency  string          `json:"currency"`
	SKU       string          `json:"sku,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Breakdown []Line          `json:"breakdown"`
}

// Price строит разбивку: базовый вариант по точному ключу, затем комплект
// (плоская прибавка) и ручка (base * множитель группы покрытия/цвета).
// Итог всегда равен сумме строк разбивки.
func (e *Engine) Price(ctx context.Context, sel catalog.Selection) (*Quote, error) {
	if !sel.Complete() {
		return nil, ErrIncompleteSelection
	}

	v, err := e.store.FindVariant(ctx, sel.Key(e.category))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVariantNotFound
	}

	q := &Quote{Currency: v.Currency, SKU: v.SKU}
	q.Breakdown = append(q.Breakdown, Line{
		Label:  fmt.Sprintf("%s %s/%s %dx%d", v.Model, v.Finish, v.Color, v.Width, v.Height),
		Amount: v.Price,
	})
	q.Total = v.Price

	if sel.KitID != 0 {
		kit, err := e.store.GetKit(ctx, sel.KitID)
		if err != nil {
			return nil, err
		}
		if kit != nil {
			q.Breakdown = append(q.Breakdown, Line{
				Label:  "Комплект: " + kit.Name,
				Amount: kit.Price,
			})
			q.Total = q.Total.Add(kit.Price)
		}
	}

	if sel.HandleID != 0 {
		h, err := e.store.GetHandle(ctx, sel.HandleID)
		if err != nil {
			return nil, err
		}
		if h != nil {
			group := e.groups.Of(v.Finish, v.Color)
			amount := h.PriceBase.Mul(h.Multiplier(group)).Round(2)
			q.Breakdown = append(q.Breakdown, Line{
				Label:  "Ручка: " + h.Name,
				Amount: amount,
			})
			q.Total = q.Total.Add(amount)
		}
	}

	return q, nil
}
