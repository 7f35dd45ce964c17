// Package search implements basic substring search (§4.I), the hybrid
// fusion scorer (§4.J), and the method-selecting dispatcher (§4.K).
package search

import (
	"sort"
	"strings"
	"time"

	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgtypes"
)

// DefaultMaxLimit bounds pagination when the caller omits one.
const DefaultMaxLimit = 1000

// BasicFilter parameterises a basic search (§4.I): substring plus optional
// tag/importance/type/date filters, with pagination.
type BasicFilter struct {
	Query       string
	Tags        []string // entity must carry at least one (tags-any)
	MinImp      *int
	MaxImp      *int
	EntityType  string
	After       *time.Time // createdAt or lastModified on/after
	Before      *time.Time
	Offset      int
	Limit       int
	MaxLimit    int
}

// BasicResult is a filtered set of entities plus the induced subgraph of
// relations whose endpoints both lie in the set.
type BasicResult struct {
	Entities  []*kgtypes.Entity
	Relations []*kgtypes.Relation
	Total     int
}

// Basic streams the cached view through the filter chain, then paginates.
func Basic(g *kgtypes.Graph, idx *index.Indexes, f BasicFilter) BasicResult {
	maxLimit := f.MaxLimit
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	limit := f.Limit
	if limit <= 0 || limit > maxLimit {
		limit = maxLimit
	}

	needle := strings.ToLower(strings.TrimSpace(f.Query))
	var matched []*kgtypes.Entity
	for name, e := range g.Entities {
		if !matchesQuery(idx, name, needle) {
			continue
		}
		if !matchesTags(e, f.Tags) {
			continue
		}
		if !matchesImportance(e, f.MinImp, f.MaxImp) {
			continue
		}
		if f.EntityType != "" && !strings.EqualFold(e.EntityType, f.EntityType) {
			continue
		}
		if !matchesDateRange(e, f.After, f.Before) {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := f.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	page := matched[start:end]

	names := make(map[string]struct{}, len(page))
	for _, e := range page {
		names[e.Name] = struct{}{}
	}
	var relations []*kgtypes.Relation
	for _, r := range g.Relations {
		if _, okFrom := names[r.From]; !okFrom {
			continue
		}
		if _, okTo := names[r.To]; !okTo {
			continue
		}
		relations = append(relations, r)
	}

	return BasicResult{Entities: page, Relations: relations, Total: total}
}

func matchesQuery(idx *index.Indexes, name, needle string) bool {
	if needle == "" {
		return true
	}
	lf, ok := idx.Lower[name]
	if !ok {
		return false
	}
	if strings.Contains(lf.Name, needle) || strings.Contains(lf.EntityType, needle) {
		return true
	}
	for _, o := range lf.Observations {
		if strings.Contains(o, needle) {
			return true
		}
	}
	return false
}

func matchesTags(e *kgtypes.Entity, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, t := range e.Tags {
			if strings.EqualFold(t, w) {
				return true
			}
		}
	}
	return false
}

func matchesImportance(e *kgtypes.Entity, min, max *int) bool {
	imp := e.ImportanceOrDefault()
	if min != nil && imp < *min {
		return false
	}
	if max != nil && imp > *max {
		return false
	}
	return true
}

func matchesDateRange(e *kgtypes.Entity, after, before *time.Time) bool {
	if after == nil && before == nil {
		return true
	}
	candidates := []time.Time{e.CreatedAt, e.LastModified}
	for _, t := range candidates {
		ok := true
		if after != nil && t.Before(*after) {
			ok = false
		}
		if before != nil && t.After(*before) {
			ok = false
		}
		if ok {
			return true
		}
	}
	return false
}
