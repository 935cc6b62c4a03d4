package diff

import "reflect"

// rateKind tags the variant held by a rateNode.
type rateKind int

const (
	rateLeaf rateKind = iota
	rateObject
	rateArray
)

// rateNode is one position in a rate configuration document. Exactly one of
// value, fields or items is meaningful, selected by kind.
type rateNode struct {
	kind   rateKind
	value  any
	fields map[string]rateNode
	items  []rateNode
}

func newRateNode(v any) rateNode {
	if m, ok := v.(map[string]any); ok {
		fields := make(map[string]rateNode, len(m))
		for k, child := range m {
			fields[k] = newRateNode(child)
		}
		return rateNode{kind: rateObject, value: v, fields: fields}
	}
	if isSlice(v) {
		rv := reflect.ValueOf(v)
		items := make([]rateNode, rv.Len())
		for i := range rv.Len() {
			items[i] = newRateNode(rv.Index(i).Interface())
		}
		return rateNode{kind: rateArray, value: v, items: items}
	}
	return rateNode{kind: rateLeaf, value: v}
}

// itemValue returns the raw value at index i, or nil when i is out of range.
func (n rateNode) itemValue(i int) any {
	if n.kind != rateArray || i >= len(n.items) {
		return nil
	}
	return n.items[i].value
}

// compareRates descends two rate documents in lockstep. Arrays are matched by
// position; an index present on only one side is recorded as a whole-value
// change at that index. Variant mismatches are recorded at the current path.
func compareRates(path string, oldNode, newNode rateNode, out UpdatedFields) {
	switch {
	case oldNode.kind == rateObject && newNode.kind == rateObject:
		for key, nc := range newNode.fields {
			if IsSystemField(key) {
				continue
			}
			oc, ok := oldNode.fields[key]
			if !ok {
				continue
			}
			compareRates(joinPath(path, key), oc, nc, out)
		}
	case oldNode.kind == rateArray && newNode.kind == rateArray:
		for i := range max(len(oldNode.items), len(newNode.items)) {
			p := indexPath(path, i)
			if i >= len(oldNode.items) || i >= len(newNode.items) {
				out[p] = FieldChange{Old: oldNode.itemValue(i), New: newNode.itemValue(i)}
				continue
			}
			compareRates(p, oldNode.items[i], newNode.items[i], out)
		}
	case oldNode.kind == rateLeaf && newNode.kind == rateLeaf:
		if !leafEqual(oldNode.value, newNode.value) {
			out[path] = FieldChange{Old: oldNode.value, New: newNode.value}
		}
	default:
		if !equalValues(oldNode.value, newNode.value) {
			out[path] = FieldChange{Old: oldNode.value, New: newNode.value}
		}
	}
}
