package pricelist

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func TestParseCSVRussianHeaders(t *testing.T) {
	csv := "Модель,Покрытие,Цвет,Тип,Ширина,Высота,Цена,Стиль\n" +
		"PO Base 1/1,Эмаль,Белый,Распашная,800,2000,\"28000,50\",Современная\n" +
		"PG Classic 2,Шпон,Орех,Распашная,,2100,31000,\n"

	rows, err := ParseCSV([]byte(csv))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	r := rows[0]
	if r.Model != "PO Base 1/1" || r.Finish != "Эмаль" || r.Color != "Белый" || r.Type != "Распашная" {
		t.Errorf("row 1 mapped wrong: %+v", r)
	}
	if r.Width != 800 || r.Height != 2000 {
		t.Errorf("dimensions = %dx%d", r.Width, r.Height)
	}
	// десятичная запятая
	if !r.Price.Equal(dec("28000.5")) {
		t.Errorf("price = %s, want 28000.5", r.Price)
	}
	if r.Style != "Современная" {
		t.Errorf("style = %q", r.Style)
	}

	// отсутствующая ширина остаётся нулём
	if rows[1].Width != 0 {
		t.Errorf("missing width = %d, want 0", rows[1].Width)
	}
}

func TestParseCSVLatinHeadersAndBOM(t *testing.T) {
	csv := "\xef\xbb\xbfstyle,model,finish,color,type,width,height,rrc_price,sku_1c\n" +
		",ModelX,Эмаль,Белый,Распашная,800.0,2000,15000,ABC-1\n"

	rows, err := ParseCSV([]byte(csv))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Model != "ModelX" || r.Width != 800 || r.SKU != "ABC-1" {
		t.Errorf("row mapped wrong: %+v", r)
	}
	if !r.Valid() {
		t.Error("row must be valid")
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	header := []interface{}{"model", "finish", "color", "type", "width", "height", "цена"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	line := []interface{}{"ModelX", "Эмаль", "Белый", "Распашная", 800, 2000, 15000}
	if err := f.SetSheetRow(sheet, "A2", &line); err != nil {
		t.Fatal(err)
	}
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		t.Fatal(err)
	}

	rows, err := ParseXLSX(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	r := rows[0]
	if r.Model != "ModelX" || r.Width != 800 || !r.Price.Equal(dec("15000")) {
		t.Errorf("row mapped wrong: %+v", r)
	}
}

func TestParseFileUnsupported(t *testing.T) {
	if _, err := ParseFile("prices.pdf", nil); err == nil {
		t.Error("expected error for unsupported file type")
	}
}

func TestParseNoKnownColumns(t *testing.T) {
	if _, err := ParseCSV([]byte("foo,bar\n1,2\n")); err == nil {
		t.Error("expected error when header has no known columns")
	}
}

func TestReportCSVListsEveryConflictRow(t *testing.T) {
	existing := dec("14000")
	r1 := row(1, "ModelX", "15000")
	r2 := row(2, "ModelX", "15500")
	conflicts := []Conflict{{
		Key:      r1.Key("doors"),
		Existing: &existing,
		Prices:   []decimal.Decimal{r1.Price, r2.Price},
		Rows:     []Row{r1, r2},
		Hint:     HintFixFile,
	}}

	got := ReportCSV(conflicts)
	records, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid csv: %v\n%s", err, got)
	}
	if len(records) != 3 { // заголовок + строка на каждую конфликтующую строку файла
		t.Fatalf("report records = %d, want 3:\n%s", len(records), got)
	}
	if records[1][7] != "14000" || records[1][8] != "15000" {
		t.Errorf("record 1 prices = %q/%q, want 14000/15000", records[1][7], records[1][8])
	}
	if records[2][9] != HintFixFile {
		t.Errorf("record 2 resolution = %q", records[2][9])
	}
}

func TestReportCSVQuotesCommas(t *testing.T) {
	r := row(1, `Doors, Deluxe "XL"`, "15000")
	conflicts := []Conflict{{
		Key:    r.Key("doors"),
		Prices: []decimal.Decimal{r.Price},
		Rows:   []Row{r},
		Hint:   HintFixFile,
	}}

	got := ReportCSV(conflicts)
	records, err := csv.NewReader(strings.NewReader(got)).ReadAll()
	if err != nil {
		t.Fatalf("report is not valid csv: %v\n%s", err, got)
	}
	// Запятая и кавычки в модели не ломают разбор и не сдвигают колонки.
	if records[1][1] != `Doors, Deluxe "XL"` {
		t.Errorf("model = %q, not round-tripped", records[1][1])
	}
	if records[1][9] != HintFixFile {
		t.Errorf("resolution landed in the wrong column: %q", records[1][9])
	}
}
