package httpx

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/target/vms-jobdist/internal/errors"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
	// maxPageOffset bounds page*limit so the offset cannot overflow.
	maxPageOffset = math.MaxInt32
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ParsePageLimit parses 1-based page and limit params and returns the
// clamped limit and the matching offset. A page whose offset would exceed
// maxPageOffset is a validation error.
func ParsePageLimit(r *http.Request) (int, int, error) {
	lim := parseIntQuery(r, "limit", defaultPageLimit)
	page := parseIntQuery(r, "page", 1)
	if lim < 1 {
		lim = 1
	}
	if lim > maxPageLimit {
		lim = maxPageLimit
	}
	if page < 1 {
		page = 1
	}
	if page-1 > maxPageOffset/lim {
		return 0, 0, apperrors.ValidationField("page", "page is too large")
	}
	return lim, (page - 1) * lim, nil
}

// optionalString returns a pointer to the trimmed query value, or nil when
// the parameter is absent or blank.
func optionalString(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// optionalInt parses an optional integer query value.
func optionalInt(r *http.Request, key string) (*int, error) {
	v := optionalString(r, key)
	if v == nil {
		return nil, nil
	}
	i, err := strconv.Atoi(*v)
	if err != nil {
		return nil, apperrors.ValidationField(key, key+" must be an integer")
	}
	return &i, nil
}

// requirePath returns the named path value or a validation error.
func requirePath(r *http.Request, name string) (string, error) {
	v := strings.TrimSpace(r.PathValue(name))
	if v == "" {
		return "", apperrors.ValidationField(name, name+" is required")
	}
	return v, nil
}
