package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/pricelist"
)

type conflictDTO struct {
	Model    string             `json:"model"`
	Finish   string             `json:"finish"`
	Color    string             `json:"color"`
	Type     string             `json:"type"`
	Width    int                `json:"width"`
	Height   int                `json:"height"`
	Existing *decimal.Decimal   `json:"price_existing,omitempty"`
	Prices   []decimal.Decimal  `json:"prices_import"`
	Rows     []conflictRowDTO   `json:"rows"`
	Hint     string             `json:"resolution"`
}

type conflictRowDTO struct {
	Row   int             `json:"row"`
	SKU   string          `json:"sku_1c,omitempty"`
	Price decimal.Decimal `json:"price"`
}

// HandleImport принимает multipart-файл прайса (xlsx/csv), режим
// preview|publish, валюту и дату начала действия цен (effective_date,
// ГГГГ-ММ-ДД, по умолчанию сегодня). Конфликтная партия возвращается с 409
// и отчётом (json, по желанию csv или xlsx), чистая — со сводкой.
func (e *Env) HandleImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		e.writeError(w, http.StatusBadRequest, "bad_multipart")
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		e.writeError(w, http.StatusBadRequest, "file_required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		e.writeError(w, http.StatusBadRequest, "file_unreadable")
		return
	}

	mode := pricelist.Mode(r.FormValue("mode"))
	if mode != pricelist.ModePublish {
		mode = pricelist.ModePreview
	}
	currency := r.FormValue("currency")
	if currency == "" {
		currency = e.Currency
	}
	effective := time.Now()
	if v := r.FormValue("effective_date"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			e.writeError(w, http.StatusBadRequest, "bad_effective_date")
			return
		}
		effective = d
	}

	rows, err := pricelist.ParseFile(hdr.Filename, data)
	if err != nil {
		e.Metrics.ImportTotal.WithLabelValues(string(mode), "error").Inc()
		e.Log.Error("parse price list", "file", hdr.Filename, "err", err)
		e.writeError(w, http.StatusBadRequest, "file_unparsable")
		return
	}
	e.Metrics.ImportRows.Add(float64(len(rows)))

	res, err := e.Importer.Run(r.Context(), rows, mode, currency, effective)
	if err != nil {
		if errors.Is(err, pricelist.ErrConcurrentConflict) {
			e.Metrics.ImportTotal.WithLabelValues(string(mode), "conflict").Inc()
			e.writeJSON(w, http.StatusConflict, map[string]any{
				"ok": false, "error": "concurrent_import", "retryable": true,
			})
			return
		}
		e.Metrics.ImportTotal.WithLabelValues(string(mode), "error").Inc()
		e.Log.Error("reconcile price list", "err", err)
		e.writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	if res.Conflicted() {
		e.Metrics.ImportTotal.WithLabelValues(string(mode), "conflict").Inc()
		if mode == pricelist.ModePublish {
			e.Notify.ImportConflicted(len(res.Conflicts))
		}
		e.writeConflicts(w, r, res)
		return
	}

	e.Metrics.ImportTotal.WithLabelValues(string(mode), "clean").Inc()
	if mode == pricelist.ModePublish {
		e.Notify.ImportPublished(res.Summary.Total, res.Summary.Imported)
	}
	e.writeJSON(w, http.StatusOK, map[string]any{"ok": true, "summary": res.Summary})
}

func (e *Env) writeConflicts(w http.ResponseWriter, r *http.Request, res *pricelist.Result) {
	switch r.FormValue("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(pricelist.ReportCSV(res.Conflicts)))
		return
	case "xlsx":
		data, err := pricelist.ReportXLSX(res.Conflicts)
		if err != nil {
			e.Log.Error("conflict report xlsx", "err", err)
			e.writeError(w, http.StatusInternalServerError, "internal")
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="conflicts_`+time.Now().Format("20060102_150405")+`.xlsx"`)
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write(data)
		return
	}

	out := make([]conflictDTO, 0, len(res.Conflicts))
	for _, c := range res.Conflicts {
		d := conflictDTO{
			Model: c.Key.Model, Finish: c.Key.Finish, Color: c.Key.Color,
			Type: c.Key.Type, Width: c.Key.Width, Height: c.Key.Height,
			Existing: c.Existing, Prices: c.Prices, Hint: c.Hint,
		}
		for _, row := range c.Rows {
			d.Rows = append(d.Rows, conflictRowDTO{Row: row.Index, SKU: row.SKU, Price: row.Price})
		}
		out = append(out, d)
	}
	e.writeJSON(w, http.StatusConflict, map[string]any{
		"ok": false, "error": "import_conflict",
		"summary": res.Summary, "conflicts": out,
	})
}
