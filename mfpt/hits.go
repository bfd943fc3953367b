package mfpt

import "github.com/petar/GoLLRB/llrb"

type hit struct {
	state int
	count int
}

func (h1 hit) Less(than llrb.Item) bool {
	h2 := than.(hit)
	return h1.state < h2.state
}

// Hits tallies how often each neighboring state was reached.  States are
// kept in ascending order.  The zero value is not usable; call NewHits.
type Hits struct {
	tree *llrb.LLRB
}

func NewHits() *Hits { return &Hits{tree: llrb.New()} }

// Add records n more visits to state.
func (h *Hits) Add(state, n int) {
	if got := h.tree.Get(hit{state: state}); got != nil {
		n += got.(hit).count
	}
	h.tree.ReplaceOrInsert(hit{state: state, count: n})
}

func (h *Hits) Count(state int) int {
	if got := h.tree.Get(hit{state: state}); got != nil {
		return got.(hit).count
	}
	return 0
}

// Merge adds every tally of other into h.
func (h *Hits) Merge(other *Hits) {
	other.Each(func(state, count int) { h.Add(state, count) })
}

// Len is the number of distinct states hit.
func (h *Hits) Len() int { return h.tree.Len() }

func (h *Hits) Total() int {
	tot := 0
	h.Each(func(_, count int) { tot += count })
	return tot
}

// Each calls fn for every state in ascending order.
func (h *Hits) Each(fn func(state, count int)) {
	min := h.tree.Min()
	if min == nil {
		return
	}
	h.tree.AscendGreaterOrEqual(min, func(i llrb.Item) bool {
		it := i.(hit)
		fn(it.state, it.count)
		return true
	})
}

func (h *Hits) Map() map[int]int {
	m := make(map[int]int, h.Len())
	h.Each(func(state, count int) { m[state] = count })
	return m
}
