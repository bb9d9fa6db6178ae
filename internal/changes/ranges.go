package changes

import (
	"encoding/json"
	"sort"
	"strings"
)

// Interval is the half-open line range [Start, Start+Count).
type Interval struct {
	Start int `json:"start"`
	Count int `json:"count"`
}

// NewInterval returns an interval whose count is at least 1. A zero-line
// hunk still marks its anchor line as changed.
func NewInterval(start, count int) Interval {
	if count < 1 {
		count = 1
	}
	return Interval{Start: start, Count: count}
}

// End returns the first line past the interval.
func (iv Interval) End() int {
	return iv.Start + iv.Count
}

// Contains reports whether line lies in the interval.
func (iv Interval) Contains(line int) bool {
	return line >= iv.Start && line < iv.End()
}

// Ranges maps repository-relative file paths to ordered intervals. Paths
// keep the order in which they were first added.
type Ranges struct {
	files map[string][]Interval
	order []string
}

// NewRanges returns an empty map.
func NewRanges() *Ranges {
	return &Ranges{files: make(map[string][]Interval)}
}

// Add records iv for path, keeping the path's intervals sorted by start.
func (r *Ranges) Add(path string, iv Interval) {
	iv = NewInterval(iv.Start, iv.Count)
	ivs, ok := r.files[path]
	if !ok {
		r.order = append(r.order, path)
	}
	i := sort.Search(len(ivs), func(i int) bool { return ivs[i].Start > iv.Start })
	ivs = append(ivs, Interval{})
	copy(ivs[i+1:], ivs[i:])
	ivs[i] = iv
	r.files[path] = ivs
}

// Files returns the paths in insertion order.
func (r *Ranges) Files() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Intervals returns the intervals recorded for exactly path.
func (r *Ranges) Intervals(path string) ([]Interval, bool) {
	if r == nil {
		return nil, false
	}
	ivs, ok := r.files[path]
	return ivs, ok
}

// Len returns the number of files.
func (r *Ranges) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Lookup finds the entry for rel. When there is no exact entry it falls
// back to the first path, in insertion order, that is a string prefix of
// rel or has rel as a prefix. An empty rel names no file and never matches.
func (r *Ranges) Lookup(rel string) (key string, ivs []Interval, ok bool) {
	if r == nil || rel == "" {
		return "", nil, false
	}
	if ivs, ok := r.files[rel]; ok {
		return rel, ivs, true
	}
	for _, path := range r.order {
		if strings.HasPrefix(rel, path) || strings.HasPrefix(path, rel) {
			return path, r.files[path], true
		}
	}
	return "", nil, false
}

// MarshalJSON encodes the map as {"path": [{"start":..,"count":..}]}.
func (r *Ranges) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return json.Marshal(r.files)
}
