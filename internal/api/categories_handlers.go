package api

import (
	"net/http"

	"github.com/jbweber/homelab/storefront/internal/catalog"
)

// Categories groups category handlers for testability
type Categories struct {
	svc CategoryService
	pg  Pagination
}

func NewCategories(svc CategoryService, pg Pagination) *Categories {
	return &Categories{svc: svc, pg: pg}
}

func (c *Categories) ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, c.pg)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := c.svc.List(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (c *Categories) CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req catalog.CategoryInput
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := c.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (c *Categories) GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	category, err := c.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, category)
}

func (c *Categories) UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req catalog.CategoryInput
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := c.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

// DeleteCategoryHandler handles DELETE /api/v1/categories/{id}. Products
// filed under the category lose that link.
func (c *Categories) DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := c.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
