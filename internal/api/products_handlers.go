package api

import (
	"net/http"

	"github.com/jbweber/homelab/storefront/internal/catalog"
	"github.com/jbweber/homelab/storefront/internal/repository"
)

// Products groups product handlers for testability
type Products struct {
	svc ProductService
	pg  Pagination
}

func NewProducts(svc ProductService, pg Pagination) *Products {
	return &Products{svc: svc, pg: pg}
}

// ListProductsHandler handles GET /api/v1/products with optional shopId and
// categoryId filters.
func (p *Products) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	page, err := pageRequest(r, p.pg)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}
	shopID, err := optionalIDQuery(r, "shopId")
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}
	categoryID, err := optionalIDQuery(r, "categoryId")
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := p.svc.List(r.Context(), repository.ProductQuery{
		ShopID:      shopID,
		CategoryID:  categoryID,
		PageRequest: page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (p *Products) CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req catalog.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := p.svc.Create(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (p *Products) GetProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	product, err := p.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, product)
}

func (p *Products) UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var req catalog.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := p.svc.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, updated)
}

func (p *Products) DeleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := p.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
