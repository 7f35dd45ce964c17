package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPutGetRoundTrip(t *testing.T) {
	f := New(4)
	key := Key("alice", struct{ Limit int }{Limit: 10})
	f.Put(KindBasic, key, []string{"Alice"})

	got, ok := f.Get(KindBasic, key)
	assert.True(t, ok)
	assert.Equal(t, []string{"Alice"}, got)
}

func TestKindsAreIsolated(t *testing.T) {
	f := New(4)
	key := Key("alice", nil)
	f.Put(KindBasic, key, "basic-result")

	_, ok := f.Get(KindBoolean, key)
	assert.False(t, ok)
}

func TestInvalidateAllClearsEveryKind(t *testing.T) {
	f := New(4)
	f.Put(KindBasic, Key("q1", nil), "r1")
	f.Put(KindFuzzy, Key("q2", nil), "r2")

	f.InvalidateAll()

	assert.Equal(t, 0, f.Len(KindBasic))
	assert.Equal(t, 0, f.Len(KindFuzzy))
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	f := New(2)
	f.Put(KindBasic, "a", 1)
	f.Put(KindBasic, "b", 2)
	f.Put(KindBasic, "c", 3) // evicts "a"

	_, ok := f.Get(KindBasic, "a")
	assert.False(t, ok)
	assert.Equal(t, 2, f.Len(KindBasic))
}

func TestKeyIsDeterministic(t *testing.T) {
	k1 := Key("query", map[string]int{"offset": 1})
	k2 := Key("query", map[string]int{"offset": 1})
	assert.Equal(t, k1, k2)
}
