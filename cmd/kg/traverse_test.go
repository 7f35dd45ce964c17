package main

import (
	"testing"

	"github.com/kgraph/kgcore/internal/graph"
)

func TestParseDirectionDefaultsToOut(t *testing.T) {
	traverseDirection = "bogus"
	if got := parseDirection(); got != graph.DirOut {
		t.Errorf("expected DirOut for unrecognised value, got %v", got)
	}
}

func TestParseDirectionRecognisesInAndBoth(t *testing.T) {
	traverseDirection = "in"
	if got := parseDirection(); got != graph.DirIn {
		t.Errorf("expected DirIn, got %v", got)
	}
	traverseDirection = "both"
	if got := parseDirection(); got != graph.DirBoth {
		t.Errorf("expected DirBoth, got %v", got)
	}
}

func TestTopKScoredTruncatesAndOrders(t *testing.T) {
	scores := map[string]float64{
		"a": 1, "b": 5, "c": 3, "d": 4, "e": 2,
	}
	got := topKScored(scores, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("results not sorted descending: %v", got)
		}
	}
	if got[0].Name != "b" {
		t.Errorf("expected top result %q, got %q", "b", got[0].Name)
	}
}

func TestTopKScoredZeroOrOverReturnsEverything(t *testing.T) {
	scores := map[string]float64{"a": 1, "b": 2}
	if got := topKScored(scores, 0); len(got) != 2 {
		t.Errorf("k=0 should return every entry, got %d", len(got))
	}
	if got := topKScored(scores, 10); len(got) != 2 {
		t.Errorf("k>len should return every entry, got %d", len(got))
	}
}
