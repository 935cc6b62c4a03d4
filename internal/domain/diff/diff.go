// Package diff compares two loosely typed entity snapshots and renders the
// differences as the structured change tree stored on history records.
package diff

import (
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// FieldChange is the old and new value of one changed path.
type FieldChange struct {
	Old any `json:"old_value"`
	New any `json:"new_value"`
}

// UpdatedFields maps a dotted path such as "rates[0].min_rate" to its change.
type UpdatedFields map[string]FieldChange

// systemFields are audit columns that never count as a change, at any depth.
var systemFields = map[string]struct{}{
	"created_by": {},
	"created_on": {},
	"updated_by": {},
	"updated_on": {},
	"is_deleted": {},
	"program_id": {},
	"job_id":     {},
}

// IsSystemField reports whether a key is excluded from comparison.
func IsSystemField(key string) bool {
	if strings.HasPrefix(key, "_") {
		return true
	}
	_, ok := systemFields[key]
	return ok
}

// Compare walks oldSnap and newSnap in parallel and returns every changed
// path. Only keys present in both snapshots are compared. Keys whose name
// contains "rate" are compared structurally, element by element. Any other
// array is compared as a whole.
func Compare(oldSnap, newSnap map[string]any) UpdatedFields {
	out := UpdatedFields{}
	walkObject("", oldSnap, newSnap, out)
	return dropNoops(out)
}

func walkObject(prefix string, oldObj, newObj map[string]any, out UpdatedFields) {
	for key, nv := range newObj {
		if IsSystemField(key) {
			continue
		}
		ov, ok := oldObj[key]
		if !ok {
			continue
		}
		walkValue(joinPath(prefix, key), key, ov, nv, out)
	}
}

func walkValue(path, key string, ov, nv any, out UpdatedFields) {
	if isRateKey(key) {
		compareRates(path, newRateNode(ov), newRateNode(nv), out)
		return
	}

	om, oldIsObj := ov.(map[string]any)
	nm, newIsObj := nv.(map[string]any)
	if oldIsObj && newIsObj {
		walkObject(path, om, nm, out)
		return
	}

	if isSlice(ov) || isSlice(nv) || oldIsObj || newIsObj {
		if !equalValues(ov, nv) {
			out[path] = FieldChange{Old: ov, New: nv}
		}
		return
	}

	if !leafEqual(ov, nv) {
		out[path] = FieldChange{Old: ov, New: nv}
	}
}

// dropNoops removes entries that normalize to equal values and entries whose
// path passes through a system field.
func dropNoops(in UpdatedFields) UpdatedFields {
	out := make(UpdatedFields, len(in))
	for path, change := range in {
		if pathHasSystemField(path) {
			continue
		}
		if equalValues(change.Old, change.New) {
			continue
		}
		out[path] = change
	}
	return out
}

// Paths returns the changed paths of u.
func (u UpdatedFields) Paths() []string {
	return slices.Sorted(maps.Keys(u))
}

func isRateKey(key string) bool {
	return strings.Contains(strings.ToLower(key), "rate")
}

func isSlice(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func indexPath(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}

// splitPath turns "rates[0].min_rate" into ["rates", "0", "min_rate"].
func splitPath(path string) []string {
	path = strings.ReplaceAll(path, "[", ".")
	path = strings.ReplaceAll(path, "]", "")
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isIndexSegment(seg string) bool {
	_, err := strconv.Atoi(seg)
	return err == nil
}

func pathHasSystemField(path string) bool {
	for _, seg := range splitPath(path) {
		if !isIndexSegment(seg) && IsSystemField(seg) {
			return true
		}
	}
	return false
}
