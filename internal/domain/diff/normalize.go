package diff

import (
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// decimalPlaces is the precision numbers are rounded to before comparison.
const decimalPlaces = 8

var (
	// currencyPattern accepts values like "1200", "$1,200.50" and "-3.5".
	currencyPattern = regexp.MustCompile(`^[-+]?\s*[$€£¥₹]?\s*[-+]?\d[\d,]*(\.\d+)?$`)
	nonNumeric      = regexp.MustCompile(`[^\d.\-]`)
	dateLayouts     = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
)

// normalizeLeaf maps a scalar to its comparable form: numbers and numeric
// strings become rounded float64, dates become epoch milliseconds and blank
// strings become nil.
func normalizeLeaf(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case string:
		return normalizeString(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return round(f)
		}
		return t.String()
	case time.Time:
		return float64(t.UnixMilli())
	case *time.Time:
		if t == nil {
			return nil
		}
		return float64(t.UnixMilli())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return round(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return round(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return round(rv.Float())
	case reflect.String:
		return normalizeString(rv.String())
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalizeLeaf(rv.Elem().Interface())
	default:
		return v
	}
}

func normalizeString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return float64(ts.UnixMilli())
		}
	}
	if currencyPattern.MatchString(s) {
		if f, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(s, ""), 64); err == nil {
			return round(f)
		}
	}
	return s
}

func round(f float64) float64 {
	p := math.Pow(10, decimalPlaces)
	return math.Round(f*p) / p
}

// normalizeDeep normalizes every leaf of a nested value and drops system
// fields from nested objects so whole-value comparisons ignore audit noise.
// Empty arrays normalize to nil.
func normalizeDeep(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if IsSystemField(k) {
				continue
			}
			out[k] = normalizeDeep(child)
		}
		return out
	case []any:
		if len(t) == 0 {
			return nil
		}
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalizeDeep(child)
		}
		return out
	}

	if isSlice(v) {
		rv := reflect.ValueOf(v)
		if rv.Len() == 0 {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			out[i] = normalizeDeep(rv.Index(i).Interface())
		}
		return out
	}
	return normalizeLeaf(v)
}

var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// equalValues compares two arbitrary values after deep normalization.
func equalValues(a, b any) bool {
	return cmp.Equal(normalizeDeep(a), normalizeDeep(b), equalOpts...)
}

// leafEqual compares two scalars after normalization. Two empty values are
// equal whatever their original types.
func leafEqual(a, b any) bool {
	na, nb := normalizeLeaf(a), normalizeLeaf(b)
	if na == nil && nb == nil {
		return true
	}
	return cmp.Equal(na, nb, equalOpts...)
}
