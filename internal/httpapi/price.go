package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
	"github.com/Spok95/domeo-backend/internal/domain/pricing"
)

type priceRequest struct {
	Selection catalog.Selection `json:"selection"`
}

type priceResponse struct {
	OK        bool            `json:"ok"`
	Currency  string          `json:"currency"`
	SKU       string          `json:"sku_1c,omitempty"`
	Total     decimal.Decimal `json:"total"`
	Breakdown []pricing.Line  `json:"breakdown"`
	Qty       int             `json:"qty"`
	TotalQty  decimal.Decimal `json:"total_with_qty"`
}

// HandlePrice — цена за единицу по полному выбору. Неполный выбор и
// отсутствующая комбинация — ожидаемые исходы со своими кодами, нулевая
// цена наружу не отдаётся никогда.
func (e *Env) HandlePrice(w http.ResponseWriter, r *http.Request) {
	var req priceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		e.writeError(w, http.StatusBadRequest, "bad_request")
		return
	}

	q, err := e.Engine.Price(r.Context(), req.Selection)
	switch {
	case errors.Is(err, pricing.ErrIncompleteSelection):
		e.Metrics.PriceTotal.WithLabelValues("incomplete").Inc()
		e.writeError(w, http.StatusBadRequest, "incomplete_selection")
		return
	case errors.Is(err, pricing.ErrVariantNotFound):
		e.Metrics.PriceTotal.WithLabelValues("not_found").Inc()
		e.writeError(w, http.StatusNotFound, "combination_unavailable")
		return
	case err != nil:
		e.Metrics.PriceTotal.WithLabelValues("error").Inc()
		e.Log.Error("price", "err", err)
		e.writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	e.Metrics.PriceTotal.WithLabelValues("ok").Inc()

	qty := req.Selection.Qty
	if qty < 1 {
		qty = 1
	}

	e.writeJSON(w, http.StatusOK, priceResponse{
		OK:        true,
		Currency:  q.Currency,
		SKU:       q.SKU,
		Total:     q.Total,
		Breakdown: q.Breakdown,
		Qty:       qty,
		TotalQty:  q.Total.Mul(decimal.NewFromInt(int64(qty))),
	})
}
