package httpapi

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Spok95/domeo-backend/internal/domain/catalog"
)

type kitDTO struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type handleDTO struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	PriceBase decimal.Decimal `json:"price_base"`
}

type optionsResponse struct {
	Selection catalog.Selection `json:"selection"`
	Domain    catalog.Domain    `json:"domain"`
	Kits      []kitDTO          `json:"kits"`
	Handles   []handleDTO       `json:"handles"`
}

// HandleOptions — домены всех атрибутов по частичному выбору из query,
// плюс доступная фурнитура и (возможно дозаполненный) выбор.
func (e *Env) HandleOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sel := catalog.Selection{
		Style:  q.Get("style"),
		Model:  q.Get("model"),
		Finish: q.Get("finish"),
		Color:  q.Get("color"),
		Type:   q.Get("type"),
	}
	if v, err := strconv.Atoi(q.Get("width")); err == nil {
		sel.Width = v
	}
	if v, err := strconv.Atoi(q.Get("height")); err == nil {
		sel.Height = v
	}
	if v, err := strconv.ParseInt(q.Get("hardware_kit"), 10, 64); err == nil {
		sel.KitID = v
	}
	if v, err := strconv.ParseInt(q.Get("handle"), 10, 64); err == nil {
		sel.HandleID = v
	}
	changed := catalog.Attr(q.Get("changed"))

	res, err := e.Resolver.Update(r.Context(), sel, changed)
	if err != nil {
		e.Log.Error("resolve options", "err", err)
		e.writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	e.Metrics.ResolveTotal.Inc()

	out := optionsResponse{
		Selection: res.Selection,
		Domain:    res.Domain,
		Kits:      []kitDTO{},
		Handles:   []handleDTO{},
	}
	for _, k := range res.Kits {
		out.Kits = append(out.Kits, kitDTO{ID: k.ID, Name: k.Name, Price: k.Price})
	}
	for _, h := range res.Handles {
		out.Handles = append(out.Handles, handleDTO{ID: h.ID, Name: h.Name, PriceBase: h.PriceBase})
	}

	e.writeJSON(w, http.StatusOK, out)
}
