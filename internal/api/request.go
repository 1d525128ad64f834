package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nerrad567/gateway-fleet-core/internal/pagination"
)

// optional tells an absent JSON field apart from an explicit null.
// Set is true whenever the field appears; Value is nil for null.
type optional[T any] struct {
	Set   bool
	Value *T
}

// UnmarshalJSON implements json.Unmarshaler. It is called for null too.
func (o *optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// decodeJSON reads the request body into dst. Unknown fields are ignored.
// On failure it writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// parseUUID returns the canonical form of value, or writes a 400 naming field.
func parseUUID(w http.ResponseWriter, field, value string) (string, bool) {
	id, err := uuid.Parse(value)
	if err != nil {
		writeValidationError(w, fmt.Sprintf("invalid %s format", field))
		return "", false
	}
	return id.String(), true
}

// pathUUID validates the named URL parameter as a UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, param, field string) (string, bool) {
	return parseUUID(w, field, chi.URLParam(r, param))
}

// parsePagination reads page and limit from the query string. Pagination
// applies when either parses as an integer; the missing half takes its
// default. It returns nil when the caller asked for the whole collection.
func parsePagination(r *http.Request) *pagination.Params {
	q := r.URL.Query()
	page, pageErr := strconv.Atoi(q.Get("page"))
	limit, limitErr := strconv.Atoi(q.Get("limit"))

	if pageErr != nil && limitErr != nil {
		return nil
	}
	if pageErr != nil {
		page = pagination.DefaultPage
	}
	if limitErr != nil {
		limit = pagination.DefaultLimit
	}
	return &pagination.Params{Page: page, Limit: limit}
}

// pageOf builds the list envelope for items. A nil p yields the unpaged form.
func pageOf[T any](items []T, total int, p *pagination.Params) pagination.Page[T] {
	if p == nil {
		return pagination.Unpaged(items, total)
	}
	return pagination.ToResponse(items, total, p.Page, p.Limit)
}
