package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/target/vms-jobdist/internal/core"
	"github.com/target/vms-jobdist/internal/domain/diff"
)

// populateConfig maps reference fields of job documents to the table row
// rendered in their place.
var populateConfig = map[string]core.LookupSpec{
	"job_manager_id":    {Table: "user", MatchColumn: "user_id", DisplayFields: []string{"first_name", "last_name"}},
	"job_template_id":   {Table: "job_templates", MatchColumn: "id", DisplayFields: []string{"template_name"}},
	"hierarchy_ids":     {Table: "hierarchies", MatchColumn: "id", DisplayFields: []string{"name"}},
	"primary_hierarchy": {Table: "hierarchies", MatchColumn: "id", DisplayFields: []string{"name"}},
	"work_location_id":  {Table: "work_locations", MatchColumn: "id", DisplayFields: []string{"name"}},
	"labor_category_id": {Table: "labour_category", MatchColumn: "id", DisplayFields: []string{"name"}},
	"rateType":          {Table: "rate_type", MatchColumn: "id", DisplayFields: []string{"name"}},
	"closed_reason":     {Table: "reason_codes", MatchColumn: "id", DisplayFields: []string{"name", "category"}},
	"foundation_data_ids": {
		Table: "master_data", MatchColumn: "id", DisplayFields: []string{"id", "name", "code"},
	},
	"foundation_data_type_id": {
		Table: "master_data_type", MatchColumn: "id", DisplayFields: []string{"id", "name"},
	},
	"currency": {
		Table: "currencies", MatchColumn: "code", DisplayFields: []string{"name", "label", "symbol", "code"},
	},
	"managed_by": {Table: "tenant", MatchColumn: "id", DisplayFields: []string{"display_name"}},
}

// PopulateFields returns the document fields the populator resolves.
func PopulateFields() []string {
	return slices.Sorted(maps.Keys(populateConfig))
}

const defaultPopulateConcurrency = 8

// PopulatorOptions bundles dependencies for NewPopulator.
type PopulatorOptions struct {
	Lookups core.LookupRepository
	// Cache is optional; an in-process cache is used when nil.
	Cache       *core.LookupCache
	Concurrency int
	Logger      *slog.Logger
}

// Populator replaces reference ids inside history documents with display
// rows. Failed lookups render as null and unknown ids as an empty object.
type Populator struct {
	lookups     core.LookupRepository
	cache       *core.LookupCache
	concurrency int
	logger      *slog.Logger
}

// NewPopulator creates a Populator.
func NewPopulator(opts PopulatorOptions) *Populator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "history_populator")
	}
	cache := opts.Cache
	if cache == nil {
		cache = core.NewLookupCache(core.LookupCacheOptions{KeyPrefix: "populate:", Logger: logger})
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultPopulateConcurrency
	}
	return &Populator{
		lookups:     opts.Lookups,
		cache:       cache,
		concurrency: concurrency,
		logger:      logger,
	}
}

// populateRef is one document slot holding a reference value.
type populateRef struct {
	container map[string]any
	key       string
	spec      core.LookupSpec
}

type lookupKey struct {
	table string
	value string
}

// Populate returns a copy of doc with reference fields resolved. Diff tree
// leaves are resolved on both their new and old values.
func (p *Populator) Populate(ctx context.Context, doc map[string]any) map[string]any {
	if doc == nil {
		return nil
	}
	out, _ := cloneValue(doc).(map[string]any)

	var refs []populateRef
	collectRefs(out, &refs)
	if len(refs) == 0 {
		return out
	}

	rows := p.fetch(ctx, refs)
	for _, ref := range refs {
		ref.container[ref.key] = renderRef(ref.spec, ref.container[ref.key], rows)
	}
	return out
}

func collectRefs(node any, refs *[]populateRef) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			spec, ok := populateConfig[k]
			if !ok {
				collectRefs(v, refs)
				continue
			}
			child, isMap := v.(map[string]any)
			switch {
			case isMap && diff.IsLeaf(child):
				for _, side := range []string{"new_value", "old_value"} {
					*refs = append(*refs, populateRef{container: child, key: side, spec: spec})
				}
			case isMap:
				collectRefs(child, refs)
			default:
				*refs = append(*refs, populateRef{container: n, key: k, spec: spec})
			}
		}
	case []any:
		for _, v := range n {
			collectRefs(v, refs)
		}
	}
}

// fetch resolves every distinct reference value. A nil row records a failed
// lookup.
func (p *Populator) fetch(ctx context.Context, refs []populateRef) map[lookupKey]map[string]any {
	specs := map[lookupKey]core.LookupSpec{}
	for _, ref := range refs {
		for _, v := range refValues(ref.container[ref.key]) {
			specs[lookupKey{table: ref.spec.Table, value: v}] = ref.spec
		}
	}

	results := make(map[lookupKey]map[string]any, len(specs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for key, spec := range specs {
		g.Go(func() error {
			row, err := p.lookupOne(gctx, spec, key.value)
			if err != nil {
				p.logger.WarnContext(gctx, "populate lookup failed",
					"table", spec.Table,
					"value", key.value,
					"error", err,
				)
				row = nil
			}
			mu.Lock()
			results[key] = row
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Populator) lookupOne(ctx context.Context, spec core.LookupSpec, value string) (map[string]any, error) {
	cacheKey := spec.Table + ":" + spec.MatchColumn + ":" + value
	return p.cache.Fetch(ctx, cacheKey, func(ctx context.Context) (map[string]any, error) {
		rows, err := p.lookups.Lookup(ctx, spec, []string{value})
		if err != nil {
			return nil, fmt.Errorf("lookup %s: %w", spec.Table, err)
		}
		return rows[value], nil
	})
}

func refValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case map[string]any:
		return nil
	default:
		return []string{fmt.Sprint(t)}
	}
}

func renderRef(spec core.LookupSpec, v any, rows map[lookupKey]map[string]any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]any, 0, len(t))
		for _, item := range t {
			out = append(out, renderRef(spec, item, rows))
		}
		return out
	case map[string]any:
		return t
	default:
		value := fmt.Sprint(t)
		row, ok := rows[lookupKey{table: spec.Table, value: value}]
		if !ok || row == nil {
			return nil
		}
		if len(row) == 0 {
			return map[string]any{}
		}
		out := maps.Clone(row)
		if _, has := out["id"]; !has && !slices.Contains(spec.DisplayFields, spec.MatchColumn) {
			out["id"] = t
		}
		return out
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = cloneValue(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = cloneValue(child)
		}
		return out
	default:
		return v
	}
}
