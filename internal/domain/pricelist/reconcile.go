package pricelist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

// ErrConcurrentConflict — цена поменялась между проверкой и записью
// (параллельный импорт того же ключа). Партию можно загрузить повторно.
var ErrConcurrentConflict = errors.New("pricelist: concurrent import touched the same key, retry")

// Store — операции каталога, нужные сверке.
type Store interface {
	FindVariant(ctx context.Context, k catalog.Key) (*catalog.Variant, error)
	UpsertVariant(ctx context.Context, v catalog.Variant, expected *decimal.Decimal) error
}

type Reconciler struct {
	store    Store
	category string
	log      *slog.Logger
}

func New(store Store, category string, log *slog.Logger) *Reconciler {
	return &Reconciler{store: store, category: category, log: log}
}

type group struct {
	key      catalog.Key
	rows     []Row
	prices   []decimal.Decimal // различные цены внутри партии, в порядке появления
	existing *catalog.Variant
}

func (g *group) addPrice(p decimal.Decimal) {
	for _, x := range g.prices {
		if x.Equal(p) {
			return
		}
	}
	g.prices = append(g.prices, p)
}

// Run прогоняет партию по машине состояний Parsed -> Grouped -> (Clean|Conflicted).
// Конфликтная партия отклоняется целиком; запись начинается только после
// полного завершения проверки, частичного применения не бывает.
// effective — дата, с которой действуют цены партии (нулевая = с сегодняшнего дня).
func (rc *Reconciler) Run(ctx context.Context, rows []Row, mode Mode, currency string, effective time.Time) (*Result, error) {
	if effective.IsZero() {
		effective = time.Now()
	}

	res := &Result{}
	res.Summary.Total = len(rows)

	// Нормализация: строки без обязательных полей молча выпадают из партии.
	valid := make([]Row, 0, len(rows))
	for _, r := range rows {
		if !r.Valid() {
			rc.log.Debug("import row dropped", "row", r.Index)
			continue
		}
		valid = append(valid, r)
	}

	// Группировка по ключу идентичности, порядок появления сохраняется.
	byKey := map[catalog.Key]*group{}
	var order []*group
	for _, r := range valid {
		k := r.Key(rc.category)
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
			order = append(order, g)
		}
		g.rows = append(g.rows, r)
		g.addPrice(r.Price)
	}

	// Конфликты внутри партии.
	for _, g := range order {
		if len(g.prices) > 1 {
			res.Conflicts = append(res.Conflicts, Conflict{
				Key: g.key, Prices: g.prices, Rows: g.rows, Hint: HintFixFile,
			})
		}
	}

	// Сверка с базой — только если внутри партии чисто (иначе смысла нет,
	// файл всё равно придётся править).
	if len(res.Conflicts) == 0 {
		for _, g := range order {
			v, err := rc.store.FindVariant(ctx, g.key)
			if err != nil {
				return nil, err
			}
			g.existing = v
			if v == nil {
				continue
			}
			// Внутри партии чисто, значит цена у группы одна.
			if !g.prices[0].Equal(v.Price) {
				existing := v.Price
				res.Conflicts = append(res.Conflicts, Conflict{
					Key: g.key, Existing: &existing, Prices: g.prices,
					Rows: g.rows, Hint: HintFixFile,
				})
			}
		}
	}

	if res.Conflicted() {
		// Вся партия отклонена, ничего не записано.
		res.Summary.Rejected = len(rows)
		rc.log.Info("price list rejected",
			"conflicts", len(res.Conflicts), "rows", len(rows))
		return res, nil
	}

	res.Summary.Accepted = len(valid)
	res.Summary.Rejected = len(rows) - len(valid)

	if mode != ModePublish {
		return res, nil
	}

	// Запись: по одному upsert на ключ. Повторная загрузка того же файла
	// ничего не меняет и в imported не попадает.
	for _, g := range order {
		merged := mergeRows(g.rows)
		if g.existing != nil && nothingNew(merged, currency, effective, g.existing) {
			continue
		}

		var expected *decimal.Decimal
		if g.existing != nil {
			p := g.existing.Price
			expected = &p
		}
		v := catalog.Variant{
			Category:      rc.category,
			Style:         merged.Style,
			Model:         merged.Model,
			Finish:        merged.Finish,
			Color:         merged.Color,
			Type:          merged.Type,
			Width:         merged.Width,
			Height:        merged.Height,
			Price:         merged.Price,
			Currency:      currency,
			SKU:           merged.SKU,
			Photo:         merged.Photo,
			EffectiveFrom: effective,
		}
		if err := rc.store.UpsertVariant(ctx, v, expected); err != nil {
			if errors.Is(err, catalog.ErrPriceChanged) {
				return nil, fmt.Errorf("%w: %s", ErrConcurrentConflict, g.key)
			}
			return nil, err
		}
		res.Summary.Imported++
	}

	rc.log.Info("price list published",
		"total", res.Summary.Total, "imported", res.Summary.Imported,
		"effective", effective.Format("2006-01-02"))
	return res, nil
}

// mergeRows сливает дубликаты одного ключа (цены у них уже одинаковые):
// первое непустое значение описательных полей выигрывает.
func mergeRows(rows []Row) Row {
	out := rows[0]
	for _, r := range rows[1:] {
		if out.Style == "" {
			out.Style = r.Style
		}
		if out.Photo == "" {
			out.Photo = r.Photo
		}
		if out.SKU == "" {
			out.SKU = r.SKU
		}
	}
	return out
}

// nothingNew — импортируемая строка не меняет ни цену, ни валюту, ни дату
// действия, ни описательные поля (пустое значение существующее не затирает).
func nothingNew(r Row, currency string, effective time.Time, v *catalog.Variant) bool {
	if !r.Price.Equal(v.Price) {
		return false
	}
	if currency != v.Currency {
		return false
	}
	if !sameDate(effective, v.EffectiveFrom) {
		return false
	}
	if r.Style != "" && r.Style != v.Style {
		return false
	}
	if r.Photo != "" && r.Photo != v.Photo {
		return false
	}
	if r.SKU != "" && r.SKU != v.SKU {
		return false
	}
	return true
}

// sameDate сравнивает только календарную дату (effective_from хранится как DATE).
func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
