package diff

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/imdario/mergo"
)

// Leaf field names of a serialized ChangeRecord.
const (
	leafKey      = "key"
	leafSlug     = "slug"
	leafNewValue = "new_value"
	leafOldValue = "old_value"
)

// ChangeRecord is a leaf of a ChangeTree.
type ChangeRecord struct {
	Key      string `json:"key"`
	Slug     string `json:"slug"`
	NewValue any    `json:"new_value"`
	OldValue any    `json:"old_value"`
}

// ChangeTree mirrors the shape of the compared entity. Inner nodes are
// map[string]any and leaves are ChangeRecords in map form, so a tree reads
// back from JSON storage unchanged.
type ChangeTree map[string]any

type treeOptions struct {
	collapseIndexes bool
}

// TreeOption configures BuildStructured.
type TreeOption func(*treeOptions)

// CollapseIndexes drops array index segments so "rates[0].min_rate" and
// "rates[1].min_rate" fold into one "rates.min_rate" leaf. The last index in
// path order wins.
func CollapseIndexes() TreeOption {
	return func(o *treeOptions) { o.collapseIndexes = true }
}

// BuildStructured turns flat changes into a ChangeTree. By default array
// indexes are kept as path segments ("rates" -> "0" -> "min_rate").
func BuildStructured(fields UpdatedFields, opts ...TreeOption) ChangeTree {
	var o treeOptions
	for _, opt := range opts {
		opt(&o)
	}

	tree := ChangeTree{}
	for _, path := range fields.Paths() {
		segments := splitPath(path)
		if o.collapseIndexes {
			segments = slices.DeleteFunc(segments, isIndexSegment)
		}
		if len(segments) == 0 {
			continue
		}
		change := fields[path]
		insertLeaf(tree, segments, NewChangeRecord(lastNamedSegment(segments), change).AsMap())
	}
	return tree
}

func insertLeaf(tree map[string]any, segments []string, leaf map[string]any) {
	node := tree
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok || IsLeaf(child) {
			child = map[string]any{}
			node[seg] = child
		}
		node = child
	}
	node[segments[len(segments)-1]] = leaf
}

// NewChangeRecord builds the leaf for a field name.
func NewChangeRecord(field string, change FieldChange) ChangeRecord {
	return ChangeRecord{
		Key:      TitleCase(field),
		Slug:     Slug(field),
		NewValue: change.New,
		OldValue: change.Old,
	}
}

// AsMap returns the record in the form stored inside a ChangeTree.
func (r ChangeRecord) AsMap() map[string]any {
	return map[string]any{
		leafKey:      r.Key,
		leafSlug:     r.Slug,
		leafNewValue: r.NewValue,
		leafOldValue: r.OldValue,
	}
}

// IsLeaf reports whether a tree node is a serialized ChangeRecord.
func IsLeaf(node map[string]any) bool {
	_, hasKey := node[leafKey]
	_, hasSlug := node[leafSlug]
	_, hasNew := node[leafNewValue]
	_, hasOld := node[leafOldValue]
	return hasKey && hasSlug && (hasNew || hasOld)
}

// LeafAt is a leaf and the segments leading to it.
type LeafAt struct {
	Path []string
	Node map[string]any
}

// Leaves returns every leaf of the tree in path order. The returned nodes
// alias the tree, so callers may rewrite leaf values in place.
func Leaves(tree map[string]any) []LeafAt {
	var out []LeafAt
	collectLeaves(tree, nil, &out)
	slices.SortFunc(out, func(a, b LeafAt) int {
		return strings.Compare(strings.Join(a.Path, "."), strings.Join(b.Path, "."))
	})
	return out
}

func collectLeaves(node map[string]any, path []string, out *[]LeafAt) {
	for k, v := range node {
		child, ok := v.(map[string]any)
		if !ok {
			continue
		}
		p := append(slices.Clone(path), k)
		if IsLeaf(child) {
			*out = append(*out, LeafAt{Path: p, Node: child})
			continue
		}
		collectLeaves(child, p, out)
	}
}

// IsEmpty reports whether a tree holds no leaves.
func IsEmpty(tree map[string]any) bool {
	return len(Leaves(tree)) == 0
}

// Merge folds src into dst. Leaves in src replace leaves at the same path.
func Merge(dst, src ChangeTree) (ChangeTree, error) {
	if dst == nil {
		dst = ChangeTree{}
	}
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("merge change trees: %w", err)
	}
	return dst, nil
}

func lastNamedSegment(segments []string) string {
	for i := len(segments) - 1; i >= 0; i-- {
		if !isIndexSegment(segments[i]) {
			return segments[i]
		}
	}
	return segments[len(segments)-1]
}

// TitleCase renders snake_case or camelCase names as "Title Case".
func TitleCase(field string) string {
	words := splitWords(field)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Slug renders a field name as snake_case without a trailing _id or _ids.
func Slug(field string) string {
	s := strings.ToLower(strings.Join(splitWords(field), "_"))
	for _, suffix := range []string{"_ids", "_id"} {
		if trimmed, ok := strings.CutSuffix(s, suffix); ok && trimmed != "" {
			return trimmed
		}
	}
	return s
}

func splitWords(field string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range field {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}
