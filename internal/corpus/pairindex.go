package corpus

import "container/heap"

// PairKey identifies an adjacent pair of token IDs.
type PairKey struct {
	Left, Right int
}

// Occurrence is one place a pair currently appears: a word and the left
// position of the pair within that word's Symbols sequence.
type Occurrence struct {
	WordID int
	Pos    int
}

// heapEntry is a snapshot of a pair's frequency at the time it was pushed.
// Because Index never mutates entries already in the heap — it only pushes
// fresh snapshots and leaves stale ones in place — Top must re-validate an
// entry's freq against the authoritative map before trusting it. This is
// the lazy-deletion discipline: cheaper than keeping heap entries in sync
// on every single occurrence add/remove.
type heapEntry struct {
	key   PairKey
	freq  int
	index int
}

type pairHeap []*heapEntry

func (h pairHeap) Len() int { return len(h) }

func (h pairHeap) Less(i, j int) bool {
	if h[i].freq != h[j].freq {
		return h[i].freq > h[j].freq
	}
	if h[i].key.Left != h[j].key.Left {
		return h[i].key.Left < h[j].key.Left
	}
	return h[i].key.Right < h[j].key.Right
}

func (h pairHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *pairHeap) Push(x any) {
	e := x.(*heapEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *pairHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Index is the Pair Index (C3): for every pair of adjacent token IDs
// currently present anywhere in the corpus, it tracks the weighted
// occurrence count and the exact set of occurrences, and it can report the
// most frequent pair in amortized O(log n) via a lazily-deleted priority
// queue rather than a full rescan.
type Index struct {
	freq map[PairKey]int
	occ  map[PairKey]map[Occurrence]struct{}
	pq   pairHeap
}

// NewIndex returns an empty Pair Index.
func NewIndex() *Index {
	idx := &Index{
		freq: make(map[PairKey]int),
		occ:  make(map[PairKey]map[Occurrence]struct{}),
	}
	heap.Init(&idx.pq)
	return idx
}

// RecordPair adds one weighted occurrence of key at (wordID, pos), pushing a
// fresh heap snapshot so the pair's new rank is discoverable by Top.
func (idx *Index) RecordPair(key PairKey, wordID, pos int, weight int) {
	set, ok := idx.occ[key]
	if !ok {
		set = make(map[Occurrence]struct{})
		idx.occ[key] = set
	}
	set[Occurrence{WordID: wordID, Pos: pos}] = struct{}{}
	idx.freq[key] += weight
	heap.Push(&idx.pq, &heapEntry{key: key, freq: idx.freq[key]})
}

// ForgetPair removes one occurrence of key at (wordID, pos). When the last
// occurrence of a pair is forgotten the pair is dropped from the frequency
// map entirely; stale heap entries referencing it are discarded lazily the
// next time Top walks past them.
func (idx *Index) ForgetPair(key PairKey, wordID, pos int, weight int) {
	set, ok := idx.occ[key]
	if !ok {
		return
	}
	o := Occurrence{WordID: wordID, Pos: pos}
	if _, present := set[o]; !present {
		return
	}
	delete(set, o)
	idx.freq[key] -= weight
	if idx.freq[key] <= 0 || len(set) == 0 {
		delete(idx.freq, key)
		delete(idx.occ, key)
		return
	}
	heap.Push(&idx.pq, &heapEntry{key: key, freq: idx.freq[key]})
}

// Drop removes key from the index outright, regardless of its remaining
// occurrences, so Top never offers it again. Used when a candidate pair is
// rejected for a reason unrelated to its occurrences (e.g. the
// max-token-length cap) and must not be reconsidered this run.
func (idx *Index) Drop(key PairKey) {
	delete(idx.freq, key)
	delete(idx.occ, key)
}

// Freq returns the current weighted frequency of key, or 0 if absent.
func (idx *Index) Freq(key PairKey) int { return idx.freq[key] }

// Occurrences returns every live occurrence of key.
func (idx *Index) Occurrences(key PairKey) []Occurrence {
	set := idx.occ[key]
	out := make([]Occurrence, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	return out
}

// Top returns the most frequent pair currently in the index, breaking ties
// on (Left, Right) ascending for determinism regardless of insertion order
// or worker scheduling. Reports ok=false once the index is empty.
func (idx *Index) Top() (key PairKey, freq int, ok bool) {
	for idx.pq.Len() > 0 {
		e := idx.pq[0]
		current, live := idx.freq[e.key]
		if !live || current != e.freq {
			heap.Pop(&idx.pq)
			continue
		}
		return e.key, e.freq, true
	}
	return PairKey{}, 0, false
}

// Len returns the number of distinct pairs currently tracked.
func (idx *Index) Len() int { return len(idx.freq) }
