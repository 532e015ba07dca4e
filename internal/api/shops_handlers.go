package api

import (
	"net/http"

	"github.com/jbweber/homelab/storefront/internal/shops"
)

// Shops groups shop handlers for testability
type Shops struct {
	svc ShopService
	pg  Pagination
}

func NewShops(svc ShopService, pg Pagination) *Shops {
	return &Shops{svc: svc, pg: pg}
}

// ListShopsHandler handles GET /api/v1/shops.
//
// Query: page, size, sortBy, inVacations, createdAfter, createdBefore.
// Filtered results are sorted within the returned page only.
func (s *Shops) ListShopsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, s.pg)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	var sortBy *string
	if q.Has("sortBy") {
		v := q.Get("sortBy")
		sortBy = &v
	}
	result, err := s.svc.List(r.Context(), shops.ListParams{
		SortBy:        sortBy,
		InVacations:   q.Get("inVacations"),
		CreatedAfter:  q.Get("createdAfter"),
		CreatedBefore: q.Get("createdBefore"),
		Page:          page.Page,
		Size:          page.Size,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

// SearchShopsHandler handles GET /api/v1/shops/search.
//
// Query: name (substring, case-insensitive), inVacations, createdAfter,
// createdBefore. The whole result is returned as a list of summaries.
func (s *Shops) SearchShopsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := s.svc.Search(r.Context(), shops.SearchParams{
		Name:          q.Get("name"),
		InVacations:   q.Get("inVacations"),
		CreatedAfter:  q.Get("createdAfter"),
		CreatedBefore: q.Get("createdBefore"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Shops) CreateShopHandler(w http.ResponseWriter, r *http.Request) {
	var req shops.ShopInput
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Shops) GetShopHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	shop, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, shop)
}

// UpdateShopHandler handles PUT /api/v1/shops/{id}. Opening hours are
// replaced wholesale; the creation date is kept.
func (s *Shops) UpdateShopHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req shops.ShopInput
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (s *Shops) DeleteShopHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
