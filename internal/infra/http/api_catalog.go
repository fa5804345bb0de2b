package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/feuerlager/feuerlager/internal/domain/catalog"
	"github.com/feuerlager/feuerlager/internal/domain/locations"
)

type articleRequest struct {
	Name          string   `json:"name"`
	Company       string   `json:"company"`
	ProductNumber string   `json:"product_number"`
	Category      string   `json:"category"`
	NEM           *float64 `json:"nem"`
	IsMultiPart   bool     `json:"is_multi_part"`
	PiecesPerUnit *int     `json:"pieces_per_unit"`
	Notes         string   `json:"notes"`
}

func (req articleRequest) input() catalog.ArticleInput {
	return catalog.ArticleInput{
		Name:          req.Name,
		Company:       req.Company,
		ProductNumber: req.ProductNumber,
		Category:      req.Category,
		NEM:           req.NEM,
		IsMultiPart:   req.IsMultiPart,
		PiecesPerUnit: req.PiecesPerUnit,
		Notes:         req.Notes,
	}
}

type articleResponse struct {
	ID            int64    `json:"id"`
	Name          string   `json:"name"`
	Company       string   `json:"company"`
	ProductNumber string   `json:"product_number,omitempty"`
	Category      string   `json:"category"`
	NEM           *float64 `json:"nem,omitempty"`
	IsMultiPart   bool     `json:"is_multi_part"`
	PiecesPerUnit *int     `json:"pieces_per_unit,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

func toArticleResponse(a *catalog.Article) articleResponse {
	return articleResponse{
		ID:            a.ID,
		Name:          a.Name,
		Company:       a.Company,
		ProductNumber: a.ProductNumber,
		Category:      a.Category,
		NEM:           a.NEM,
		IsMultiPart:   a.IsMultiPart,
		PiecesPerUnit: a.PiecesPerUnit,
		Notes:         a.Notes,
	}
}

func (a *API) handleListArticles(w http.ResponseWriter, r *http.Request) {
	arts, err := a.articles.List(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]articleResponse, 0, len(arts))
	for i := range arts {
		out = append(out, toArticleResponse(&arts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	art, err := a.articles.Create(r.Context(), req.input())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	a.record(fmt.Sprintf("article created: %s (%s)", art.Name, art.Company))
	writeJSON(w, http.StatusCreated, toArticleResponse(art))
}

func (a *API) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad article id"})
		return
	}
	art, err := a.articles.GetByID(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if art == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(art))
}

func (a *API) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad article id"})
		return
	}
	var req articleRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	art, err := a.articles.Update(r.Context(), id, req.input())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if art == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}
	a.record(fmt.Sprintf("article updated: %s (%s)", art.Name, art.Company))
	writeJSON(w, http.StatusOK, toArticleResponse(art))
}

// Deleting an article drops its ledger rows along with it.
func (a *API) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad article id"})
		return
	}
	name := a.articleName(r, id)
	ok, err := a.articles.Delete(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}
	a.record(fmt.Sprintf("article deleted: %s (incl. stock entries)", name))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

/* locations */

type locationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type locationResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (a *API) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locs, err := a.places.List(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	out := make([]locationResponse, 0, len(locs))
	for _, l := range locs {
		out = append(out, locationResponse{ID: l.ID, Name: l.Name, Description: l.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	loc, err := a.places.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	a.record(fmt.Sprintf("location created: %s", loc.Name))
	writeJSON(w, http.StatusCreated, locationResponse{ID: loc.ID, Name: loc.Name, Description: loc.Description})
}

func (a *API) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad location id"})
		return
	}
	loc, err := a.places.GetByID(r.Context(), id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if loc == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "location not found"})
		return
	}
	if _, err := a.places.Delete(r.Context(), id); err != nil {
		if errors.Is(err, locations.ErrInUse) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		a.writeError(w, err)
		return
	}
	a.record(fmt.Sprintf("location deleted: %s", loc.Name))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

/* activity journal */

func (a *API) handleActivity(w http.ResponseWriter, r *http.Request) {
	lines, err := a.journal.ReadAll()
	if err != nil {
		a.writeError(w, err)
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, lines)
}

func (a *API) handleClearActivity(w http.ResponseWriter, r *http.Request) {
	if err := a.journal.Clear(); err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
