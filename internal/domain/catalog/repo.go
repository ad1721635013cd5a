package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrPriceChanged — цена строки в базе изменилась между проверкой конфликтов
// и записью (конкурентный импорт). Запись не применена, можно повторить.
var ErrPriceChanged = errors.New("catalog: variant price changed concurrently")

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// filterConds собирает WHERE по заполненным полям выбора.
// Пустые значения в фильтр не попадают.
func filterConds(category string, f Selection) (string, []any) {
	args := []any{category}
	conds := []string{"category = $1"}

	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	addInt := func(col string, v int) {
		if v <= 0 {
			return
		}
		args = append(args, v)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	add("style", f.Style)
	add("model", f.Model)
	add("finish", f.Finish)
	add("color", f.Color)
	add("type", f.Type)
	addInt("width", f.Width)
	addInt("height", f.Height)

	return strings.Join(conds, " AND "), args
}

var stringCols = map[Attr]string{
	AttrStyle:  "style",
	AttrModel:  "model",
	AttrFinish: "finish",
	AttrColor:  "color",
	AttrType:   "type",
}

var intCols = map[Attr]string{
	AttrWidth:  "width",
	AttrHeight: "height",
}

// DistinctStrings — упорядоченный домен строкового атрибута при данном фильтре.
// Нет совпадений — пустой срез, не ошибка.
func (r *Repo) DistinctStrings(ctx context.Context, category string, a Attr, f Selection) ([]string, error) {
	col, ok := stringCols[a]
	if !ok {
		return nil, fmt.Errorf("catalog: not a string attribute: %s", a)
	}
	where, args := filterConds(category, f)
	q := fmt.Sprintf(`
		SELECT DISTINCT %s FROM products
		WHERE %s AND %s <> ''
		ORDER BY %s
	`, col, where, col, col)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DistinctInts — упорядоченный по возрастанию домен размерного атрибута.
func (r *Repo) DistinctInts(ctx context.Context, category string, a Attr, f Selection) ([]int, error) {
	col, ok := intCols[a]
	if !ok {
		return nil, fmt.Errorf("catalog: not an int attribute: %s", a)
	}
	where, args := filterConds(category, f)
	q := fmt.Sprintf(`
		SELECT DISTINCT %s FROM products
		WHERE %s AND %s > 0
		ORDER BY %s
	`, col, where, col, col)

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindVariant возвращает строку каталога по ключу идентичности, nil если нет.
func (r *Repo) FindVariant(ctx context.Context, k Key) (*Variant, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, category, style, model, finish, color, type, width, height,
		       price, currency, sku, photo, effective_from, created_at
		FROM products
		WHERE category=$1 AND model=$2 AND finish=$3 AND color=$4 AND type=$5
		  AND width=$6 AND height=$7
	`, k.Category, k.Model, k.Finish, k.Color, k.Type, k.Width, k.Height)

	var v Variant
	if err := row.Scan(
		&v.ID, &v.Category, &v.Style, &v.Model, &v.Finish, &v.Color, &v.Type,
		&v.Width, &v.Height, &v.Price, &v.Currency, &v.SKU, &v.Photo,
		&v.EffectiveFrom, &v.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// ListVariants — весь каталог категории для выгрузки, в порядке ключа.
func (r *Repo) ListVariants(ctx context.Context, category string) ([]Variant, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, style, model, finish, color, type, width, height,
		       price, currency, sku, photo, effective_from, created_at
		FROM products
		WHERE category=$1
		ORDER BY model, finish, color, type, width, height
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Variant
	for rows.Next() {
		var v Variant
		if err := rows.Scan(
			&v.ID, &v.Category, &v.Style, &v.Model, &v.Finish, &v.Color, &v.Type,
			&v.Width, &v.Height, &v.Price, &v.Currency, &v.SKU, &v.Photo,
			&v.EffectiveFrom, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

/* Фурнитура */

func (r *Repo) ListKits(ctx context.Context) ([]Kit, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price FROM kits ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Kit
	for rows.Next() {
		var k Kit
		if err := rows.Scan(&k.ID, &k.Name, &k.Price); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (r *Repo) GetKit(ctx context.Context, id int64) (*Kit, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, price FROM kits WHERE id=$1`, id)
	var k Kit
	if err := row.Scan(&k.ID, &k.Name, &k.Price); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &k, nil
}

func (r *Repo) ListHandles(ctx context.Context) ([]Handle, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, price_base FROM handles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Handle
	for rows.Next() {
		var h Handle
		if err := rows.Scan(&h.ID, &h.Name, &h.PriceBase); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		m, err := r.handleMultipliers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Multipliers = m
	}
	return out, nil
}

func (r *Repo) GetHandle(ctx context.Context, id int64) (*Handle, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, price_base FROM handles WHERE id=$1`, id)
	var h Handle
	if err := row.Scan(&h.ID, &h.Name, &h.PriceBase); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	m, err := r.handleMultipliers(ctx, h.ID)
	if err != nil {
		return nil, err
	}
	h.Multipliers = m
	return &h, nil
}

func (r *Repo) handleMultipliers(ctx context.Context, handleID int64) (map[string]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT price_group, multiplier FROM handle_price_multipliers WHERE handle_id=$1
	`, handleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var g string
		var m decimal.Decimal
		if err := rows.Scan(&g, &m); err != nil {
			return nil, err
		}
		out[g] = m
	}
	return out, rows.Err()
}

// LoadGroups читает таблицу ценовых групп (покрытие/цвет -> группа).
func (r *Repo) LoadGroups(ctx context.Context, category string) (Groups, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT finish, color, grp FROM price_groups WHERE category=$1
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := Groups{}
	for rows.Next() {
		var k GroupKey
		var g string
		if err := rows.Scan(&k.Finish, &k.Color, &g); err != nil {
			return nil, err
		}
		out[k] = g
	}
	return out, rows.Err()
}

// UpsertVariant применяет строку импорта по ключу идентичности.
// expected — цена, которую вызывающая сторона видела при проверке конфликтов
// (nil = строки не было). Если реальная цена к моменту записи другая,
// возвращается ErrPriceChanged и запись не применяется.
// Пустые style/sku/photo не затирают уже заполненные поля.
func (r *Repo) UpsertVariant(ctx context.Context, v Variant, expected *decimal.Decimal) error {
	const base = `
		INSERT INTO products (category, style, model, finish, color, type, width, height,
		                      price, currency, sku, photo, effective_from)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (category, model, finish, color, type, width, height)
		DO UPDATE SET
			price          = EXCLUDED.price,
			currency       = EXCLUDED.currency,
			effective_from = EXCLUDED.effective_from,
			style    = COALESCE(NULLIF(EXCLUDED.style, ''), products.style),
			sku      = COALESCE(NULLIF(EXCLUDED.sku, ''), products.sku),
			photo    = COALESCE(NULLIF(EXCLUDED.photo, ''), products.photo),
			updated_at = NOW()
	`
	args := []any{
		v.Category, v.Style, v.Model, v.Finish, v.Color, v.Type, v.Width, v.Height,
		v.Price, v.Currency, v.SKU, v.Photo, v.EffectiveFrom,
	}

	var q string
	if expected == nil {
		// Строки не должно быть; если конкурент успел вставить — применяем
		// только при совпадении цены.
		q = base + ` WHERE products.price = EXCLUDED.price RETURNING id`
	} else {
		args = append(args, *expected)
		q = base + ` WHERE products.price = $14 RETURNING id`
	}

	var id int64
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&id); err != nil {
		if err == pgx.ErrNoRows {
			return ErrPriceChanged
		}
		return err
	}
	return nil
}
