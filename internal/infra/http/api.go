package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/feuerlager/feuerlager/internal/domain/catalog"
	"github.com/feuerlager/feuerlager/internal/domain/locations"
	"github.com/feuerlager/feuerlager/internal/domain/stock"
	"github.com/feuerlager/feuerlager/internal/infra/activity"
	"github.com/feuerlager/feuerlager/internal/metrics"
	"github.com/feuerlager/feuerlager/internal/report"
)

// API is the JSON surface over the stock core. It validates nothing the
// engine already validates; it only translates between HTTP and the domain,
// and writes the activity journal after successful mutations.
type API struct {
	log      *slog.Logger
	engine   *stock.Engine
	articles *catalog.Repo
	places   *locations.Repo
	journal  *activity.Recorder
}

func NewAPI(log *slog.Logger, engine *stock.Engine, articles *catalog.Repo, places *locations.Repo, journal *activity.Recorder) *API {
	return &API{log: log, engine: engine, articles: articles, places: places, journal: journal}
}

func (a *API) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/stock/add", a.handleAdd)
	mux.HandleFunc("POST /api/stock/set", a.handleSet)
	mux.HandleFunc("POST /api/stock/move", a.handleMove)
	mux.HandleFunc("GET /api/stock/availability", a.handleAvailability)
	mux.HandleFunc("GET /api/stock/entries", a.handleEntries)
	mux.HandleFunc("GET /api/stock/totals", a.handleTotals)

	mux.HandleFunc("GET /api/reports/nem", a.handleNemReport)
	mux.HandleFunc("GET /api/reports/nem.xlsx", a.handleNemReportXLSX)

	mux.HandleFunc("GET /api/articles", a.handleListArticles)
	mux.HandleFunc("POST /api/articles", a.handleCreateArticle)
	mux.HandleFunc("GET /api/articles/{id}", a.handleGetArticle)
	mux.HandleFunc("PUT /api/articles/{id}", a.handleUpdateArticle)
	mux.HandleFunc("DELETE /api/articles/{id}", a.handleDeleteArticle)

	mux.HandleFunc("GET /api/locations", a.handleListLocations)
	mux.HandleFunc("POST /api/locations", a.handleCreateLocation)
	mux.HandleFunc("DELETE /api/locations/{id}", a.handleDeleteLocation)

	mux.HandleFunc("GET /api/activity", a.handleActivity)
	mux.HandleFunc("DELETE /api/activity", a.handleClearActivity)
}

/* helpers */

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch stock.KindOf(err) {
	case stock.KindNotFound:
		status = http.StatusNotFound
	case stock.KindValidation:
		status = http.StatusUnprocessableEntity
	case stock.KindConflict:
		status = http.StatusConflict
	case stock.KindConcurrency:
		status = http.StatusServiceUnavailable
	case stock.KindConstraint:
		status = http.StatusInternalServerError
	default:
		if errors.Is(err, locations.ErrInUse) {
			status = http.StatusConflict
		}
	}
	if status == http.StatusInternalServerError {
		a.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// locationQuery reads an optional location_id query parameter; absence means
// the free pool.
func locationQuery(r *http.Request) (stock.LocationRef, error) {
	raw := r.URL.Query().Get("location_id")
	if raw == "" {
		return stock.Unassigned(), nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return stock.Unassigned(), fmt.Errorf("bad location_id %q", raw)
	}
	return stock.AtLocation(id), nil
}

// locName resolves a human-readable place name for the journal.
func (a *API) locName(r *http.Request, ref stock.LocationRef) string {
	id, ok := ref.ID()
	if !ok {
		return "free"
	}
	loc, err := a.places.GetByID(r.Context(), id)
	if err != nil || loc == nil {
		return "?"
	}
	return loc.Name
}

func (a *API) articleName(r *http.Request, id int64) string {
	art, err := a.articles.GetByID(r.Context(), id)
	if err != nil || art == nil {
		return "?"
	}
	return art.Name
}

func countMutation(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(stock.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	metrics.MutationsTotal.WithLabelValues(op, outcome).Inc()
}

/* stock operations */

type mutateRequest struct {
	ArticleID   int64  `json:"article_id"`
	LocationID  *int64 `json:"location_id"`
	FullUnits   int    `json:"full_units"`
	LoosePieces int    `json:"loose_pieces"`
}

func (a *API) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	loc := stock.FromID(req.LocationID)
	err := a.engine.Add(r.Context(), req.ArticleID, loc, req.FullUnits, req.LoosePieces)
	countMutation("add", err)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.record(fmt.Sprintf("stock added: +%d units, +%d loose pieces of %s at '%s'",
		req.FullUnits, req.LoosePieces, a.articleName(r, req.ArticleID), a.locName(r, loc)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleSet(w http.ResponseWriter, r *http.Request) {
	var req mutateRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	loc := stock.FromID(req.LocationID)
	res, err := a.engine.Set(r.Context(), req.ArticleID, loc, req.FullUnits, req.LoosePieces)
	countMutation("set", err)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.record(fmt.Sprintf("stocktake: article %s, location '%s', old: %d units / %d loose, new: %d units / %d loose",
		a.articleName(r, req.ArticleID), a.locName(r, loc),
		res.Previous.FullUnits, res.Previous.LoosePieces, req.FullUnits, req.LoosePieces))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type moveRequest struct {
	ArticleID      int64  `json:"article_id"`
	FromLocationID *int64 `json:"from_location_id"`
	ToLocationID   *int64 `json:"to_location_id"`
	FullUnits      int    `json:"full_units"`
	LoosePieces    int    `json:"loose_pieces"`
}

func (a *API) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	from := stock.FromID(req.FromLocationID)
	to := stock.FromID(req.ToLocationID)
	err := a.engine.Move(r.Context(), req.ArticleID, from, to, req.FullUnits, req.LoosePieces)
	countMutation("move", err)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.record(fmt.Sprintf("booking: %d units, %d loose pieces of %s from '%s' to '%s'",
		req.FullUnits, req.LoosePieces, a.articleName(r, req.ArticleID),
		a.locName(r, from), a.locName(r, to)))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) record(message string) {
	if err := a.journal.Log(message); err != nil {
		a.log.Error("activity journal write failed", "err", err)
	}
}

/* stock reads */

func (a *API) handleAvailability(w http.ResponseWriter, r *http.Request) {
	articleID, err := strconv.ParseInt(r.URL.Query().Get("article_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad article_id"})
		return
	}
	loc, err := locationQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	pieces, err := a.engine.Availability(r.Context(), articleID, loc)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"pieces": pieces})
}

type entryResponse struct {
	ArticleID    int64    `json:"article_id"`
	ArticleName  string   `json:"article_name"`
	Company      string   `json:"company"`
	Category     string   `json:"category"`
	LocationID   *int64   `json:"location_id"`
	LocationName string   `json:"location_name,omitempty"`
	FullUnits    int      `json:"full_units"`
	LoosePieces  int      `json:"loose_pieces"`
	TotalPieces  int      `json:"total_pieces"`
	TotalNEM     *float64 `json:"total_nem,omitempty"`
}

func (a *API) handleEntries(w http.ResponseWriter, r *http.Request) {
	views, err := a.engine.Entries(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(views))
	for _, v := range views {
		e := entryResponse{
			ArticleID:    v.Entry.ArticleID,
			ArticleName:  v.Article.Name,
			Company:      v.Article.Company,
			Category:     v.Article.Category,
			LocationName: v.LocationName,
			FullUnits:    v.Entry.FullUnits,
			LoosePieces:  v.Entry.LoosePieces,
			TotalPieces:  v.TotalPieces,
			TotalNEM:     v.TotalNEM,
		}
		if id, ok := v.Entry.Location.ID(); ok {
			e.LocationID = &id
		}
		out = append(out, e)
	}
	writeJSON(w, http.StatusOK, out)
}

type totalsResponse struct {
	Positions   int     `json:"positions"`
	TotalPieces int     `json:"total_pieces"`
	TotalNEM    float64 `json:"total_nem"`
}

func (a *API) handleTotals(w http.ResponseWriter, r *http.Request) {
	loc, err := locationQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	t, err := a.engine.Totals(r.Context(), loc)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totalsResponse{Positions: t.Positions, TotalPieces: t.TotalPieces, TotalNEM: t.TotalNEM})
}

type nemRowResponse struct {
	LocationID   *int64  `json:"location_id"`
	LocationName string  `json:"location_name"`
	Positions    int     `json:"positions"`
	TotalPieces  int     `json:"total_pieces"`
	TotalNEM     float64 `json:"total_nem"`
}

func (a *API) handleNemReport(w http.ResponseWriter, r *http.Request) {
	rows, grand, err := a.engine.Overview(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := struct {
		Rows  []nemRowResponse `json:"rows"`
		Total totalsResponse   `json:"total"`
	}{
		Rows:  make([]nemRowResponse, 0, len(rows)),
		Total: totalsResponse{Positions: grand.Positions, TotalPieces: grand.TotalPieces, TotalNEM: grand.TotalNEM},
	}
	for _, row := range rows {
		nr := nemRowResponse{
			LocationName: row.LocationName,
			Positions:    row.Positions,
			TotalPieces:  row.TotalPieces,
			TotalNEM:     row.TotalNEM,
		}
		if id, ok := row.Location.ID(); ok {
			nr.LocationID = &id
		} else {
			nr.LocationName = report.FreePoolLabel
		}
		out.Rows = append(out.Rows, nr)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleNemReportXLSX(w http.ResponseWriter, r *http.Request) {
	rows, grand, err := a.engine.Overview(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	buf, err := report.NemWorkbook(rows, grand)
	if err != nil {
		a.writeError(w, err)
		return
	}
	fileName := fmt.Sprintf("nem_overview_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = w.Write(buf.Bytes())
}
