package pricelist

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

// Дата действия цен для всех публикаций в тестах.
var day = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

type memStore struct {
	variants map[catalog.Key]catalog.Variant
	upserts  int
	failKeys map[catalog.Key]bool
}

func newMemStore() *memStore {
	return &memStore{
		variants: map[catalog.Key]catalog.Variant{},
		failKeys: map[catalog.Key]bool{},
	}
}

func (m *memStore) FindVariant(_ context.Context, k catalog.Key) (*catalog.Variant, error) {
	if v, ok := m.variants[k]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *memStore) UpsertVariant(_ context.Context, v catalog.Variant, expected *decimal.Decimal) error {
	k := v.Key()
	if m.failKeys[k] {
		return catalog.ErrPriceChanged
	}
	cur, exists := m.variants[k]
	if expected == nil {
		if exists && !cur.Price.Equal(v.Price) {
			return catalog.ErrPriceChanged
		}
	} else {
		if !exists || !cur.Price.Equal(*expected) {
			return catalog.ErrPriceChanged
		}
	}
	if exists {
		// coalesce: пустое входящее значение не затирает заполненное
		if v.Style == "" {
			v.Style = cur.Style
		}
		if v.Photo == "" {
			v.Photo = cur.Photo
		}
		if v.SKU == "" {
			v.SKU = cur.SKU
		}
	}
	m.variants[k] = v
	m.upserts++
	return nil
}

func testLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func row(idx int, model string, price string) Row {
	return Row{
		Index: idx, Model: model, Finish: "Эмаль", Color: "Белый",
		Type: "Распашная", Width: 800, Height: 2000, Price: dec(price),
	}
}

func TestPreviewIntraBatchConflict(t *testing.T) {
	store := newMemStore()
	rc := New(store, "doors", testLog())

	rows := []Row{row(1, "ModelX", "15000"), row(2, "ModelX", "15500")}
	res, err := rc.Run(context.Background(), rows, ModePreview, "RUB", day)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Conflicted() {
		t.Fatal("expected a conflicted batch")
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("conflict groups = %d, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if len(c.Rows) != 2 || len(c.Prices) != 2 {
		t.Errorf("conflict group rows=%d prices=%d, want 2/2", len(c.Rows), len(c.Prices))
	}
	if c.Existing != nil {
		t.Errorf("existing price = %s, want none (nothing persisted yet)", c.Existing)
	}
	if res.Summary.Rejected != 2 || res.Summary.Accepted != 0 {
		t.Errorf("summary = %+v, want rejected=2 accepted=0", res.Summary)
	}
	if store.upserts != 0 {
		t.Errorf("preview mutated storage: %d upserts", store.upserts)
	}
}

func TestConflictWithExistingPrice(t *testing.T) {
	store := newMemStore()
	existing := catalog.Variant{
		Category: "doors", Model: "ModelX", Finish: "Эмаль", Color: "Белый",
		Type: "Распашная", Width: 800, Height: 2000, Price: dec("14000"), Currency: "RUB",
	}
	store.variants[existing.Key()] = existing

	rc := New(store, "doors", testLog())
	res, err := rc.Run(context.Background(), []Row{row(1, "ModelX", "15000")}, ModePreview, "RUB", day)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Conflicts) != 1 {
		t.Fatalf("conflict groups = %d, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Existing == nil || !c.Existing.Equal(dec("14000")) {
		t.Errorf("existing = %v, want 14000", c.Existing)
	}
}

func TestPublishCleanThenIdempotent(t *testing.T) {
	store := newMemStore()
	rc := New(store, "doors", testLog())
	rows := []Row{row(1, "ModelX", "15000"), row(2, "ModelY", "16000")}

	res, err := rc.Run(context.Background(), rows, ModePublish, "RUB", day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Conflicted() {
		t.Fatal("unexpected conflicts")
	}
	if res.Summary.Imported != 2 || res.Summary.Accepted != 2 {
		t.Errorf("first pass summary = %+v", res.Summary)
	}

	// Повторный импорт того же файла: без конфликтов и без изменённых строк.
	res, err = rc.Run(context.Background(), rows, ModePublish, "RUB", day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Conflicted() {
		t.Fatal("re-import reported conflicts")
	}
	if res.Summary.Imported != 0 {
		t.Errorf("re-import changed %d rows, want 0", res.Summary.Imported)
	}
}

func TestInvalidRowsDroppedSilently(t *testing.T) {
	store := newMemStore()
	rc := New(store, "doors", testLog())

	bad := row(2, "ModelY", "16000")
	bad.Color = "" // нет обязательного поля
	rows := []Row{row(1, "ModelX", "15000"), bad}

	res, err := rc.Run(context.Background(), rows, ModePublish, "RUB", day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Accepted != 1 || res.Summary.Rejected != 1 || res.Summary.Imported != 1 {
		t.Errorf("summary = %+v, want accepted=1 rejected=1 imported=1", res.Summary)
	}
}

func TestPublishCoalescesDescriptiveFields(t *testing.T) {
	store := newMemStore()
	existing := catalog.Variant{
		Category: "doors", Model: "ModelX", Finish: "Эмаль", Color: "Белый",
		Type: "Распашная", Width: 800, Height: 2000,
		Price: dec("15000"), Currency: "RUB", Style: "Современная", Photo: "po_base.png",
		EffectiveFrom: day,
	}
	store.variants[existing.Key()] = existing

	rc := New(store, "doors", testLog())
	r := row(1, "ModelX", "15000") // та же цена, но появился артикул
	r.SKU = "1C-000777"
	res, err := rc.Run(context.Background(), []Row{r}, ModePublish, "RUB", day)
	if err != nil {
		t.Fatal(err)
	}
	if res.Conflicted() {
		t.Fatal("unexpected conflicts")
	}
	if res.Summary.Imported != 1 {
		t.Fatalf("imported = %d, want 1", res.Summary.Imported)
	}

	got := store.variants[existing.Key()]
	if got.SKU != "1C-000777" {
		t.Errorf("sku = %q, want updated", got.SKU)
	}
	// Пустые стиль и фото из файла не затёрли заполненные поля.
	if got.Style != "Современная" || got.Photo != "po_base.png" {
		t.Errorf("style/photo = %q/%q, want preserved", got.Style, got.Photo)
	}
}

func TestRepublishNewCurrencyApplies(t *testing.T) {
	store := newMemStore()
	existing := catalog.Variant{
		Category: "doors", Model: "ModelX", Finish: "Эмаль", Color: "Белый",
		Type: "Распашная", Width: 800, Height: 2000,
		Price: dec("15000"), Currency: "RUB", EffectiveFrom: day,
	}
	store.variants[existing.Key()] = existing

	rc := New(store, "doors", testLog())
	res, err := rc.Run(context.Background(), []Row{row(1, "ModelX", "15000")}, ModePublish, "EUR", day)
	if err != nil {
		t.Fatal(err)
	}
	// Та же цена, но другая валюта: это изменение, а не повтор.
	if res.Summary.Imported != 1 {
		t.Fatalf("imported = %d, want 1", res.Summary.Imported)
	}
	if got := store.variants[existing.Key()]; got.Currency != "EUR" {
		t.Errorf("currency = %q, want EUR", got.Currency)
	}
}

func TestRepublishNewEffectiveDateApplies(t *testing.T) {
	store := newMemStore()
	existing := catalog.Variant{
		Category: "doors", Model: "ModelX", Finish: "Эмаль", Color: "Белый",
		Type: "Распашная", Width: 800, Height: 2000,
		Price: dec("15000"), Currency: "RUB", EffectiveFrom: day,
	}
	store.variants[existing.Key()] = existing

	rc := New(store, "doors", testLog())
	later := day.AddDate(0, 0, 14)
	res, err := rc.Run(context.Background(), []Row{row(1, "ModelX", "15000")}, ModePublish, "RUB", later)
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary.Imported != 1 {
		t.Fatalf("imported = %d, want 1", res.Summary.Imported)
	}
	if got := store.variants[existing.Key()]; !got.EffectiveFrom.Equal(later) {
		t.Errorf("effective_from = %s, want %s", got.EffectiveFrom, later)
	}
}

func TestConcurrentUpsertConflict(t *testing.T) {
	store := newMemStore()
	rc := New(store, "doors", testLog())

	k := row(1, "ModelX", "15000").Key("doors")
	store.failKeys[k] = true

	_, err := rc.Run(context.Background(), []Row{row(1, "ModelX", "15000")}, ModePublish, "RUB", day)
	if !errors.Is(err, ErrConcurrentConflict) {
		t.Errorf("err = %v, want ErrConcurrentConflict", err)
	}
}
