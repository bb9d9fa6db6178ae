package changes

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterval_NormalizesZeroCount(t *testing.T) {
	iv := NewInterval(5, 0)
	assert.Equal(t, Interval{Start: 5, Count: 1}, iv)
	assert.True(t, iv.Contains(5))
	assert.False(t, iv.Contains(6))
}

func TestInterval_HalfOpenBoundary(t *testing.T) {
	iv := NewInterval(10, 3)
	assert.False(t, iv.Contains(9))
	assert.True(t, iv.Contains(10))
	assert.True(t, iv.Contains(11))
	assert.True(t, iv.Contains(12))
	assert.False(t, iv.Contains(13))
	assert.Equal(t, 13, iv.End())
}

func TestRanges_AddKeepsOrder(t *testing.T) {
	r := NewRanges()
	r.Add("b.cpp", Interval{Start: 30, Count: 1})
	r.Add("a.cpp", Interval{Start: 1, Count: 2})
	r.Add("b.cpp", Interval{Start: 10, Count: 0})

	assert.Equal(t, []string{"b.cpp", "a.cpp"}, r.Files())
	ivs, ok := r.Intervals("b.cpp")
	require.True(t, ok)
	assert.Equal(t, []Interval{{Start: 10, Count: 1}, {Start: 30, Count: 1}}, ivs)
	assert.Equal(t, 2, r.Len())
}

func TestRanges_Lookup(t *testing.T) {
	r := NewRanges()
	r.Add("sub/a.cpp", Interval{Start: 1, Count: 1})
	r.Add("lib", Interval{Start: 1, Count: 1})

	key, _, ok := r.Lookup("sub/a.cpp")
	assert.True(t, ok)
	assert.Equal(t, "sub/a.cpp", key)

	key, _, ok = r.Lookup("lib/x.cpp")
	assert.True(t, ok)
	assert.Equal(t, "lib", key)

	key, _, ok = r.Lookup("sub")
	assert.True(t, ok)
	assert.Equal(t, "sub/a.cpp", key)

	_, _, ok = r.Lookup("other.cpp")
	assert.False(t, ok)
}

func TestRanges_LookupFirstInsertedWins(t *testing.T) {
	r := NewRanges()
	r.Add("src", Interval{Start: 1, Count: 1})
	r.Add("src/deep", Interval{Start: 2, Count: 1})

	key, _, ok := r.Lookup("src/deep/a.cpp")
	require.True(t, ok)
	assert.Equal(t, "src", key)
}

func TestRanges_LookupEmptyPath(t *testing.T) {
	r := NewRanges()
	r.Add("a.cpp", Interval{Start: 1, Count: 5})

	_, _, ok := r.Lookup("")
	assert.False(t, ok)
}

func TestRanges_NilSafe(t *testing.T) {
	var r *Ranges
	assert.Equal(t, 0, r.Len())
	assert.Nil(t, r.Files())
	_, _, ok := r.Lookup("a")
	assert.False(t, ok)
}

func TestRanges_MarshalJSON(t *testing.T) {
	r := NewRanges()
	r.Add("a.cpp", Interval{Start: 5, Count: 2})

	data, err := json.Marshal(r)

	require.NoError(t, err)
	assert.JSONEq(t, `{"a.cpp":[{"start":5,"count":2}]}`, string(data))
}
