package search

import "sort"

// HybridWeights are the configured (not yet renormalised) per-layer weights
// (§4.J default: semantic 0.4, lexical 0.4, symbolic 0.2).
type HybridWeights struct {
	Semantic float64
	Lexical  float64
	Symbolic float64
}

// DefaultHybridWeights returns the spec's default weighting.
func DefaultHybridWeights() HybridWeights {
	return HybridWeights{Semantic: 0.4, Lexical: 0.4, Symbolic: 0.2}
}

// HybridInput is up to three per-entity raw score maps.
type HybridInput struct {
	Semantic map[string]float64
	Lexical  map[string]float64
	Symbolic map[string]float64
	Weights  HybridWeights
	MinScore float64
}

// HybridMatch is one fused result: the combined score, which layers
// contributed, and the pre-normalisation raw scores for explainability.
type HybridMatch struct {
	Name      string
	Combined  float64
	Layers    []string
	RawScores map[string]float64
}

// Hybrid fuses up to three score layers per §4.J: min-max normalise each
// non-empty layer, renormalise weights over active layers, sum, drop
// entities below MinScore or with no matching layer, sort descending.
func Hybrid(input HybridInput) []HybridMatch {
	type layer struct {
		name   string
		raw    map[string]float64
		norm   map[string]float64
		weight float64
	}
	layers := []*layer{
		{name: "semantic", raw: input.Semantic, weight: input.Weights.Semantic},
		{name: "lexical", raw: input.Lexical, weight: input.Weights.Lexical},
		{name: "symbolic", raw: input.Symbolic, weight: input.Weights.Symbolic},
	}

	var activeWeightSum float64
	var active []*layer
	for _, l := range layers {
		if len(l.raw) == 0 {
			continue
		}
		l.norm = minMaxNormalize(l.raw)
		active = append(active, l)
		activeWeightSum += l.weight
	}
	if len(active) == 0 {
		return nil
	}

	effectiveWeight := make(map[string]float64, len(active))
	for _, l := range active {
		if activeWeightSum > 0 {
			effectiveWeight[l.name] = l.weight / activeWeightSum
		} else {
			effectiveWeight[l.name] = 1.0 / float64(len(active))
		}
	}

	combined := make(map[string]float64)
	matchedLayers := make(map[string][]string)
	rawByName := make(map[string]map[string]float64)
	for _, l := range active {
		for name, normScore := range l.norm {
			combined[name] += effectiveWeight[l.name] * normScore
			matchedLayers[name] = append(matchedLayers[name], l.name)
			if rawByName[name] == nil {
				rawByName[name] = make(map[string]float64)
			}
			rawByName[name][l.name] = l.raw[name]
		}
	}

	out := make([]HybridMatch, 0, len(combined))
	for name, score := range combined {
		if score < input.MinScore {
			continue
		}
		layersFor := matchedLayers[name]
		sort.Strings(layersFor)
		out = append(out, HybridMatch{
			Name:      name,
			Combined:  score,
			Layers:    layersFor,
			RawScores: rawByName[name],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Combined != out[j].Combined {
			return out[i].Combined > out[j].Combined
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// minMaxNormalize maps scores into [0,1]. If all scores are equal and
// non-zero, every score becomes 1; if all are zero, they stay zero (§4.J
// step 1, and the §9 open question resolved toward zero).
func minMaxNormalize(scores map[string]float64) map[string]float64 {
	if len(scores) == 0 {
		return nil
	}
	min, max := minMax(scores)
	out := make(map[string]float64, len(scores))
	if min == max {
		if min == 0 {
			for k := range scores {
				out[k] = 0
			}
		} else {
			for k := range scores {
				out[k] = 1
			}
		}
		return out
	}
	span := max - min
	for k, v := range scores {
		out[k] = (v - min) / span
	}
	return out
}

func minMax(scores map[string]float64) (min, max float64) {
	first := true
	for _, v := range scores {
		if first {
			min, max = v, v
			first = false
			continue
		}
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return
}
