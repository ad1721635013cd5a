package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Spok95/domeo-backend/internal/domain/pricelist"
)

// HandleExport отдаёт текущий каталог книгой Excel в формате импорта:
// файл можно поправить и загрузить обратно.
func (e *Env) HandleExport(w http.ResponseWriter, r *http.Request) {
	variants, err := e.Store.ListVariants(r.Context(), e.Category)
	if err != nil {
		e.Log.Error("export catalog", "err", err)
		e.writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	data, err := pricelist.ExportXLSX(variants)
	if err != nil {
		e.Log.Error("export xlsx", "err", err)
		e.writeError(w, http.StatusInternalServerError, "internal")
		return
	}

	name := fmt.Sprintf("prices_%s_%s.xlsx", e.Category, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
