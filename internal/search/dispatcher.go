package search

import (
	"context"
	"strings"
	"time"
	"unicode"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kgraph/kgcore/internal/fuzzy"
	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgtypes"
	"github.com/kgraph/kgcore/internal/obsmetrics"
	"github.com/kgraph/kgcore/internal/query"
	"github.com/kgraph/kgcore/internal/tfidf"
	"github.com/kgraph/kgcore/internal/vectorstore"
)

// dispatchMetrics holds the two otel instruments, built once in init, that
// Auto records into: elapsed wall time per chosen method, and the chosen
// method's cost estimate.
type dispatchMetrics struct {
	latency  metric.Float64Histogram
	estimate metric.Float64Histogram
}

var metricsOnce dispatchMetrics

func init() {
	meter := obsmetrics.Meter()
	metricsOnce.latency, _ = meter.Float64Histogram(
		"kgcore.search.latency",
		metric.WithDescription("Auto-dispatched search elapsed time"),
		metric.WithUnit("ms"),
	)
	metricsOnce.estimate, _ = meter.Float64Histogram(
		"kgcore.search.cost_estimate",
		metric.WithDescription("Auto dispatch's pre-execution cost estimate for the chosen method"),
	)
}

// Method identifies one of the dispatcher's entry points (§4.K).
type Method string

const (
	MethodBasic   Method = "basic"
	MethodRanked  Method = "ranked"
	MethodBoolean Method = "boolean"
	MethodFuzzy   Method = "fuzzy"
	MethodVector  Method = "vector"
	MethodHybrid  Method = "hybrid"
)

// perItemCost are relative per-entity cost constants used for the dispatcher's
// cost estimate; they are not wall-clock measurements, just a planning
// heuristic to pick between methods before anything runs.
var perItemCost = map[Method]float64{
	MethodBasic:   1.0,
	MethodRanked:  2.0,
	MethodBoolean: 1.5,
	MethodFuzzy:   4.0,
	MethodVector:  3.0,
	MethodHybrid:  6.0,
}

// CostEstimate is the dispatcher's pre-execution plan for one method.
type CostEstimate struct {
	Method        Method
	EstimatedCost float64
}

// AccessRecorder is an optional hook invoked with the entity names returned
// by an Auto dispatch, keyed by the caller's session or task identifier.
// The default recorder is a no-op.
type AccessRecorder interface {
	RecordAccess(sessionID string, names []string)
}

type noopRecorder struct{}

func (noopRecorder) RecordAccess(string, []string) {}

// AutoResult is everything Auto reports back: the method it picked and why,
// every method's cost estimate, the results, and how long execution took.
type AutoResult struct {
	Chosen    Method
	Reason    string
	Estimates []CostEstimate
	Entities  []*kgtypes.Entity
	Elapsed   time.Duration
}

// Dispatcher wires the five search methods plus hybrid fusion over one
// store's view, indexes, and optional statistics/vector store.
type Dispatcher struct {
	Graph       *kgtypes.Graph
	Indexes     *index.Indexes
	Stats       *tfidf.Statistics // optional; nil disables ranked/semantic-via-lexical
	Vectors     *vectorstore.Store
	Embed       func(query string) ([]float64, bool) // optional embedding lookup
	Recorder    AccessRecorder
	FuzzyThresh float64
}

// NewDispatcher builds a dispatcher; Recorder defaults to a no-op and
// FuzzyThresh to fuzzy.DefaultThreshold when zero.
func NewDispatcher(g *kgtypes.Graph, idx *index.Indexes) *Dispatcher {
	return &Dispatcher{
		Graph:       g,
		Indexes:     idx,
		Recorder:    noopRecorder{},
		FuzzyThresh: fuzzy.DefaultThreshold,
	}
}

func (d *Dispatcher) recorder() AccessRecorder {
	if d.Recorder == nil {
		return noopRecorder{}
	}
	return d.Recorder
}

// Basic runs the substring/filter method directly.
func (d *Dispatcher) Basic(f BasicFilter) BasicResult {
	return Basic(d.Graph, d.Indexes, f)
}

// Ranked runs BM25 scoring over the supplied query tokens.
func (d *Dispatcher) Ranked(queryTokens []string) []tfidf.Scored {
	if d.Stats == nil {
		return nil
	}
	return d.Stats.ScoreBM25(queryTokens)
}

// Boolean parses and evaluates a boolean query string.
func (d *Dispatcher) Boolean(q string) (map[string]struct{}, error) {
	node, err := query.Parse(q)
	if err != nil {
		return nil, err
	}
	corpus := make(query.Corpus, 0, len(d.Indexes.NameIndex))
	for name := range d.Indexes.NameIndex {
		corpus = append(corpus, name)
	}
	return query.Evaluate(node, d.Indexes, corpus), nil
}

// Fuzzy matches query against every indexed entity name.
func (d *Dispatcher) Fuzzy(ctx context.Context, q string) ([]fuzzy.Match, error) {
	candidates := make([]string, 0, len(d.Indexes.NameIndex))
	for name := range d.Indexes.NameIndex {
		candidates = append(candidates, name)
	}
	threshold := d.FuzzyThresh
	if threshold == 0 {
		threshold = fuzzy.DefaultThreshold
	}
	return fuzzy.FindMatches(ctx, q, candidates, threshold, 0)
}

// Vector runs cosine-similarity top-k against the optional vector store.
func (d *Dispatcher) Vector(queryVec []float64, k int, minScore float64) ([]vectorstore.Scored, error) {
	if d.Vectors == nil {
		return nil, nil
	}
	return d.Vectors.TopK(queryVec, k, minScore)
}

// Hybrid fuses precomputed per-layer scores.
func (d *Dispatcher) Hybrid(input HybridInput) []HybridMatch {
	return Hybrid(input)
}

// estimates returns the cost estimate for every method, sized by corpus.
func (d *Dispatcher) estimates() []CostEstimate {
	n := float64(len(d.Indexes.NameIndex))
	out := make([]CostEstimate, 0, len(perItemCost))
	for _, m := range []Method{MethodBasic, MethodRanked, MethodBoolean, MethodFuzzy, MethodVector, MethodHybrid} {
		out = append(out, CostEstimate{Method: m, EstimatedCost: n * perItemCost[m]})
	}
	return out
}

var reservedOperators = []string{" and ", " or ", " not ", "(", ")"}

func looksLikeBooleanQuery(q string) bool {
	lower := " " + strings.ToLower(strings.TrimSpace(q)) + " "
	for _, op := range reservedOperators {
		if strings.Contains(lower, op) {
			return true
		}
	}
	for _, field := range []string{"name:", "type:", "tag:", "observation:"} {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func tokens(q string) []string {
	var out []string
	var cur strings.Builder
	for _, r := range q {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func containsWildcard(q string) bool {
	return strings.ContainsAny(q, "*?")
}

// likelyMisspelled is a crude heuristic: a short token absent from every
// indexed name/type/observation word is treated as a probable typo.
func (d *Dispatcher) likelyMisspelled(toks []string) bool {
	for _, tok := range toks {
		if len(tok) == 0 || len(tok) > 8 {
			continue
		}
		lower := strings.ToLower(tok)
		if _, ok := d.Indexes.Words[lower]; !ok {
			return true
		}
	}
	return false
}

var comparativeWords = map[string]struct{}{
	"more": {}, "most": {}, "less": {}, "least": {}, "than": {},
	"top": {}, "best": {}, "average": {}, "similar": {}, "like": {},
}

func hasComparativeShape(toks []string) bool {
	for _, tok := range toks {
		if _, ok := comparativeWords[strings.ToLower(tok)]; ok {
			return true
		}
	}
	return false
}

// selectMethod implements §4.K's auto selection rule.
func (d *Dispatcher) selectMethod(q string) (Method, string) {
	if looksLikeBooleanQuery(q) {
		return MethodBoolean, "query contains a boolean operator or field qualifier"
	}
	toks := tokens(q)
	if containsWildcard(q) || d.likelyMisspelled(toks) {
		return MethodFuzzy, "query looks wildcarded or likely misspelled"
	}
	embeddingAvailable := d.Embed != nil
	if embeddingAvailable && (len(toks) >= 3 || hasComparativeShape(toks)) {
		return MethodHybrid, "embeddings available and query is multi-term or comparative"
	}
	if len(toks) >= 3 {
		return MethodRanked, "multi-term natural language query without operators"
	}
	return MethodBasic, "short query, no operators, no embeddings"
}

// Auto estimates, selects, executes, and times the chosen method, per §4.K.
// When hybrid is chosen, the BM25 ranked search is what runs; no semantic
// or symbolic scores are fused into that result.
func (d *Dispatcher) Auto(ctx context.Context, q string, sessionID string) (AutoResult, error) {
	ctx, span := obsmetrics.Tracer().Start(ctx, "search.Auto")
	defer span.End()

	estimates := d.estimates()
	chosen, reason := d.selectMethod(q)
	span.SetAttributes(attribute.String("method", string(chosen)))

	start := time.Now()
	var entities []*kgtypes.Entity
	var err error
	switch chosen {
	case MethodBoolean:
		var names map[string]struct{}
		names, err = d.Boolean(q)
		entities = d.entitiesFor(names)
	case MethodFuzzy:
		var matches []fuzzy.Match
		matches, err = d.Fuzzy(ctx, q)
		names := make(map[string]struct{}, len(matches))
		for _, m := range matches {
			names[m.Candidate] = struct{}{}
		}
		entities = d.entitiesFor(names)
	case MethodRanked, MethodHybrid:
		toks := tokens(q)
		scored := d.Ranked(toks)
		names := make(map[string]struct{}, len(scored))
		for _, s := range scored {
			names[s.DocID] = struct{}{}
		}
		entities = d.entitiesFor(names)
	default:
		res := d.Basic(BasicFilter{Query: q})
		entities = res.Entities
	}
	elapsed := time.Since(start)

	if err != nil {
		return AutoResult{}, err
	}

	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	d.recorder().RecordAccess(sessionID, names)
	d.recordMetrics(ctx, chosen, estimates, elapsed)

	return AutoResult{
		Chosen:    chosen,
		Reason:    reason,
		Estimates: estimates,
		Entities:  entities,
		Elapsed:   elapsed,
	}, nil
}

func (d *Dispatcher) recordMetrics(ctx context.Context, chosen Method, estimates []CostEstimate, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("method", string(chosen)))
	if metricsOnce.latency != nil {
		metricsOnce.latency.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
	}
	if metricsOnce.estimate != nil {
		for _, est := range estimates {
			if est.Method == chosen {
				metricsOnce.estimate.Record(ctx, est.EstimatedCost, attrs)
				break
			}
		}
	}
}

func (d *Dispatcher) entitiesFor(names map[string]struct{}) []*kgtypes.Entity {
	out := make([]*kgtypes.Entity, 0, len(names))
	for name := range names {
		if e, ok := d.Indexes.NameIndex[name]; ok {
			out = append(out, e)
		}
	}
	return out
}
