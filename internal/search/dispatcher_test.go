package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph/kgcore/internal/index"
	"github.com/kgraph/kgcore/internal/kgtypes"
	"github.com/kgraph/kgcore/internal/tfidf"
)

func seedDispatcher() *Dispatcher {
	g := kgtypes.NewGraph()
	g.Entities["Alice"] = &kgtypes.Entity{Name: "Alice", EntityType: "person", Observations: []string{"Senior backend developer"}, Tags: []string{"team-a"}}
	g.Entities["Bob"] = &kgtypes.Entity{Name: "Bob", EntityType: "person", Observations: []string{"Engineering manager"}, Tags: []string{"team-b"}}
	idx := index.Rebuild(g)
	d := NewDispatcher(g, idx)

	stats := tfidf.New()
	stats.AddDocument("Alice", tfidf.Tokenize(g.Entities["Alice"]))
	stats.AddDocument("Bob", tfidf.Tokenize(g.Entities["Bob"]))
	d.Stats = stats
	return d
}

func TestAutoSelectsBooleanOnOperator(t *testing.T) {
	d := seedDispatcher()
	result, err := d.Auto(context.Background(), "name:Alice AND type:person", "s1")
	require.NoError(t, err)
	assert.Equal(t, MethodBoolean, result.Chosen)
}

func TestAutoSelectsBasicOnShortQuery(t *testing.T) {
	d := seedDispatcher()
	result, err := d.Auto(context.Background(), "Alice", "s1")
	require.NoError(t, err)
	assert.Equal(t, MethodBasic, result.Chosen)
}

func TestAutoSelectsRankedOnMultiTermQuery(t *testing.T) {
	d := seedDispatcher()
	result, err := d.Auto(context.Background(), "senior backend developer", "s1")
	require.NoError(t, err)
	assert.Equal(t, MethodRanked, result.Chosen)
}

func TestAutoEstimatesCoverEveryMethod(t *testing.T) {
	d := seedDispatcher()
	result, err := d.Auto(context.Background(), "Alice", "s1")
	require.NoError(t, err)
	assert.Len(t, result.Estimates, 6)
}

func TestAutoRecordsAccess(t *testing.T) {
	d := seedDispatcher()
	rec := &fakeRecorder{}
	d.Recorder = rec
	_, err := d.Auto(context.Background(), "Alice", "session-42")
	require.NoError(t, err)
	assert.Equal(t, "session-42", rec.sessionID)
	assert.Contains(t, rec.names, "Alice")
}

type fakeRecorder struct {
	sessionID string
	names     []string
}

func (f *fakeRecorder) RecordAccess(sessionID string, names []string) {
	f.sessionID = sessionID
	f.names = names
}
