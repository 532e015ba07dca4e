package api

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/jbweber/homelab/storefront/internal/logger"
	"github.com/jbweber/homelab/storefront/internal/repository"
	"github.com/jbweber/homelab/storefront/internal/shops"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.From(r.Context()).Warn("failed to encode response", logger.Err(err))
	}
}

func writeErrorMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, ErrorResponse{Error: msg})
}

// writeError maps err onto a status code. Unexpected errors are logged and
// their text is not sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		parseErr      *shops.ParseError
		validationErr *shops.ValidationError
	)
	switch {
	case errors.As(err, &parseErr):
		writeErrorMessage(w, r, http.StatusBadRequest, parseErr.Error())
	case errors.As(err, &validationErr):
		writeErrorMessage(w, r, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, repository.ErrInvalidEntity):
		writeErrorMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeErrorMessage(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrDuplicate):
		writeErrorMessage(w, r, http.StatusConflict, err.Error())
	default:
		logger.From(r.Context()).Error("request failed", logger.Err(err))
		writeErrorMessage(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func optionalIDQuery(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &id, nil
}

// pageRequest reads page and size. Sizes above the maximum are clamped.
func pageRequest(r *http.Request, pg Pagination) (repository.PageRequest, error) {
	q := r.URL.Query()
	req := repository.PageRequest{Page: 0, Size: pg.DefaultSize}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 0 {
			return repository.PageRequest{}, fmt.Errorf("invalid page %q", raw)
		}
		req.Page = page
	}
	if raw := q.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return repository.PageRequest{}, fmt.Errorf("invalid size %q", raw)
		}
		req.Size = min(size, pg.MaxSize)
	}
	if req.Size > 0 && req.Page > math.MaxInt/req.Size {
		return repository.PageRequest{}, fmt.Errorf("invalid page %q: offset out of range", q.Get("page"))
	}
	return req, nil
}

// clientIP extracts the client IP from the request, preferring X-Forwarded-For header
// over RemoteAddr.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
