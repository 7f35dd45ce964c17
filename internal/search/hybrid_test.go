package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridScenarioOrderingAndCutoff(t *testing.T) {
	input := HybridInput{
		Lexical:  map[string]float64{"A": 0.8, "B": 0.2},
		Symbolic: map[string]float64{"B": 1.0, "C": 0.5},
		Weights:  DefaultHybridWeights(),
		MinScore: 0.2,
	}
	results := Hybrid(input)
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	// C's only layer (symbolic) normalises to zero and falls below MinScore.
	assert.Equal(t, []string{"A", "B"}, names)
	require.Len(t, results, 2)
	assert.Greater(t, results[0].Combined, results[1].Combined)
	assert.Equal(t, "A", results[0].Name)
}

func TestHybridCombinedScoreBounds(t *testing.T) {
	input := HybridInput{
		Semantic: map[string]float64{"A": 0.1, "B": 0.9},
		Lexical:  map[string]float64{"A": 0.5, "B": 0.5, "C": 0.3},
		Symbolic: map[string]float64{"B": 0.2, "C": 0.8},
		Weights:  DefaultHybridWeights(),
		MinScore: 0,
	}
	results := Hybrid(input)
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Combined, 0.0)
		assert.LessOrEqual(t, r.Combined, 1.0)
	}
}

func TestHybridAllZeroLayerStaysZero(t *testing.T) {
	input := HybridInput{
		Lexical:  map[string]float64{"A": 0, "B": 0},
		Weights:  DefaultHybridWeights(),
		MinScore: -1,
	}
	results := Hybrid(input)
	for _, r := range results {
		assert.Equal(t, 0.0, r.Combined)
	}
}

func TestHybridEmptyInputsYieldNoResults(t *testing.T) {
	results := Hybrid(HybridInput{Weights: DefaultHybridWeights()})
	assert.Empty(t, results)
}
