// Package resolver сужает домены атрибутов по частичному выбору и
// автозаполняет атрибуты, у которых остался ровно один допустимый вариант.
package resolver

import (
	"context"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

// Store — читающая часть каталога, нужная резолверу.
type Store interface {
	DistinctStrings(ctx context.Context, category string, a catalog.Attr, f catalog.Selection) ([]string, error)
	DistinctInts(ctx context.Context, category string, a catalog.Attr, f catalog.Selection) ([]int, error)
	ListKits(ctx context.Context) ([]catalog.Kit, error)
	ListHandles(ctx context.Context) ([]catalog.Handle, error)
}

type Resolver struct {
	store    Store
	category string
}

func New(store Store, category string) *Resolver {
	return &Resolver{store: store, category: category}
}

// Result — согласованная пара (выбор, домены) плюс доступная фурнитура.
type Result struct {
	Selection catalog.Selection
	Domain    catalog.Domain
	Kits      []catalog.Kit
	Handles   []catalog.Handle
}

// Update пересчитывает домены после изменения одного атрибута.
//
// За один вызов выполняется ровно один проход фильтрации и один проход
// автозаполнения, без итерации до неподвижной точки: автозаполненное
// значение может дополнительно сузить другие домены только на следующем
// вызове. Это сознательное ограничение под интерактивное редактирование
// «одно поле за раз»; клиент при необходимости вызывает Update повторно.
//
// Если ранее выбранное значение выпало из своего пересчитанного домена,
// резолвер его не сбрасывает: выбор остаётся как есть, а перепроверка
// перед расчётом цены — обязанность вызывающей стороны.
func (r *Resolver) Update(ctx context.Context, sel catalog.Selection, changed catalog.Attr) (Result, error) {
	// Смена базового атрибута сбрасывает фурнитуру: её уместность и ценовая
	// группа ручки зависят от базового товара. Выбор самой фурнитуры
	// (комплекта или ручки) ничего не сбрасывает.
	if changed != catalog.AttrKit && changed != catalog.AttrHandle {
		sel.KitID = 0
		sel.HandleID = 0
	}

	var dom catalog.Domain
	for _, a := range catalog.StringAttrs {
		vals, err := r.store.DistinctStrings(ctx, r.category, a, sel.Without(a))
		if err != nil {
			return Result{}, err
		}
		dom.SetStrings(a, vals)
	}
	for _, a := range catalog.IntAttrs {
		vals, err := r.store.DistinctInts(ctx, r.category, a, sel.Without(a))
		if err != nil {
			return Result{}, err
		}
		dom.SetInts(a, vals)
	}

	sel = autoFill(sel, dom)

	kits, err := r.store.ListKits(ctx)
	if err != nil {
		return Result{}, err
	}
	handles, err := r.store.ListHandles(ctx)
	if err != nil {
		return Result{}, err
	}

	return Result{Selection: sel, Domain: dom, Kits: kits, Handles: handles}, nil
}

// autoFill — один проход: незаполненный атрибут с доменом из одного значения
// получает это значение.
func autoFill(sel catalog.Selection, dom catalog.Domain) catalog.Selection {
	set := func(a catalog.Attr, v string) {
		switch a {
		case catalog.AttrStyle:
			sel.Style = v
		case catalog.AttrModel:
			sel.Model = v
		case catalog.AttrFinish:
			sel.Finish = v
		case catalog.AttrColor:
			sel.Color = v
		case catalog.AttrType:
			sel.Type = v
		}
	}

	for _, a := range catalog.StringAttrs {
		if vals := dom.Strings(a); len(vals) == 1 && sel.Get(a) == "" {
			set(a, vals[0])
		}
	}
	if vals := dom.Ints(catalog.AttrWidth); len(vals) == 1 && sel.Width == 0 {
		sel.Width = vals[0]
	}
	if vals := dom.Ints(catalog.AttrHeight); len(vals) == 1 && sel.Height == 0 {
		sel.Height = vals[0]
	}
	return sel
}
