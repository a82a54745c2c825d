package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

var errMissingRange = errors.New("from and to are required")

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes the JSON request body into v. On failure it writes the
// error response itself and returns false: 413 when the body exceeded the
// size limit, 422 for anything else.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return false
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: ErrorDetail{Code: "payload_too_large", Message: err.Error()},
		})
		return false
	}
	writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid request body: "+err.Error()))
	return false
}

// pathParam describes a required simple-style path parameter.
var pathParam = runtime.BindStyledParameterOptions{
	ParamLocation: runtime.ParamLocationPath,
	Explode:       false,
	Required:      true,
}

// pathID binds the UUID path parameter name. On failure it writes a 422
// and returns false.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	var id openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id, pathParam); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(fmt.Sprintf("invalid %s: must be a UUID", name)))
		return uuid.Nil, false
	}
	return id, true
}

// pathInt binds the integer path parameter name.
func pathInt(r *http.Request, name string) (int, error) {
	var n int
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &n, pathParam); err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	return n, nil
}

// queryString returns the query parameter name, or "" when absent.
// A repeated parameter is an error.
func queryString(r *http.Request, name string) (string, error) {
	var v *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		return "", fmt.Errorf("invalid %s: %w", name, err)
	}
	if v == nil {
		return "", nil
	}
	return *v, nil
}

// queryUUID returns the UUID query parameter name, or nil when absent.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	var id *openapi_types.UUID
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &id); err != nil {
		return nil, fmt.Errorf("invalid %s: must be a UUID", name)
	}
	return id, nil
}

// queryInt returns the integer query parameter name, or def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	var n *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &n); err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", name)
	}
	if n == nil {
		return def, nil
	}
	return *n, nil
}

// queryDate returns the YYYY-MM-DD query parameter name, or nil when absent.
func queryDate(r *http.Request, name string) (*time.Time, error) {
	var d *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &d); err != nil {
		return nil, fmt.Errorf("invalid %s: must be a date (YYYY-MM-DD)", name)
	}
	if d == nil {
		return nil, nil
	}
	return &d.Time, nil
}

// queryRange reads the from/to pair. Both must be present or both absent;
// ok reports whether they were present.
func queryRange(r *http.Request) (from, to time.Time, ok bool, err error) {
	f, err := queryDate(r, "from")
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	t, err := queryDate(r, "to")
	if err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	switch {
	case f == nil && t == nil:
		return time.Time{}, time.Time{}, false, nil
	case f == nil || t == nil:
		return time.Time{}, time.Time{}, false, errors.New("from and to must be given together")
	}
	return *f, *t, true, nil
}
