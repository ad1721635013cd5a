// Package httpapi — JSON-обвязка над резолвером, движком цен и импортом.
// Авторизация делается выше по стеку, сюда запросы приходят уже допущенными.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
	"github.com/Spok95/domeo-backend/internal/domain/pricelist"
	"github.com/Spok95/domeo-backend/internal/domain/pricing"
	"github.com/Spok95/domeo-backend/internal/domain/resolver"
	"github.com/Spok95/domeo-backend/internal/infra/metrics"
	"github.com/Spok95/domeo-backend/internal/infra/notify"
)

// ExportStore — чтение каталога для выгрузки прайса.
type ExportStore interface {
	ListVariants(ctx context.Context, category string) ([]catalog.Variant, error)
}

// Env хранит зависимости для хендлеров.
type Env struct {
	Resolver *resolver.Resolver
	Engine   *pricing.Engine
	Importer *pricelist.Reconciler
	Store    ExportStore
	Notify   *notify.Notifier
	Metrics  *metrics.Metrics
	Log      *slog.Logger

	Category string
	Currency string
}

// Routes собирает маршруты API.
func (e *Env) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/catalog/doors/options", e.HandleOptions)
	mux.HandleFunc("POST /api/price/doors", e.HandlePrice)
	mux.HandleFunc("POST /api/admin/import/doors", e.HandleImport)
	mux.HandleFunc("GET /api/admin/export/doors", e.HandleExport)
	return mux
}

// writeJSON — простой helper для JSON-ответов.
func (e *Env) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		e.Log.Error("write response", "err", err)
	}
}

func (e *Env) writeError(w http.ResponseWriter, status int, code string) {
	e.writeJSON(w, status, map[string]any{"ok": false, "error": code})
}
