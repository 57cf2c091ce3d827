package corpus

import (
	"reflect"
	"testing"
)

func TestSymbolsBasics(t *testing.T) {
	s := NewSymbols([]int{10, 20, 30}, []int{1, 1, 1})

	if got := s.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []int{10, 20, 30}) {
		t.Fatalf("IDs() = %v, want [10 20 30]", got)
	}
	wantPairs := []Pair{{Left: 0, Right: 1}, {Left: 1, Right: 2}}
	if got := s.Pairs(); !reflect.DeepEqual(got, wantPairs) {
		t.Fatalf("Pairs() = %v, want %v", got, wantPairs)
	}
}

func TestSymbolsMergeAt(t *testing.T) {
	s := NewSymbols([]int{10, 20, 30}, []int{1, 1, 1})

	removed, added := s.MergeAt(0, 99, 2)

	wantRemoved := []PairDelta{
		{LeftPos: 0, RightPos: 1, LeftID: 10, RightID: 20},
		{LeftPos: 1, RightPos: 2, LeftID: 20, RightID: 30},
	}
	if !reflect.DeepEqual(removed, wantRemoved) {
		t.Fatalf("removed = %+v, want %+v", removed, wantRemoved)
	}

	wantAdded := []PairDelta{
		{LeftPos: 0, RightPos: 2, LeftID: 99, RightID: 30},
	}
	if !reflect.DeepEqual(added, wantAdded) {
		t.Fatalf("added = %+v, want %+v", added, wantAdded)
	}

	if got := s.IDs(); !reflect.DeepEqual(got, []int{99, 30}) {
		t.Fatalf("IDs() after merge = %v, want [99 30]", got)
	}
	if got := s.Len(); got != 2 {
		t.Fatalf("Len() after merge = %d, want 2", got)
	}
}

func TestSymbolsMergeThenSplitRoundTrips(t *testing.T) {
	s := NewSymbols([]int{10, 20, 30}, []int{1, 1, 1})
	s.MergeAt(0, 99, 2)

	removed, added, newRight := s.SplitAt(0, 10, 1, 20, 1)

	wantRemoved := []PairDelta{
		{LeftPos: 0, RightPos: 2, LeftID: 99, RightID: 30},
	}
	if !reflect.DeepEqual(removed, wantRemoved) {
		t.Fatalf("removed = %+v, want %+v", removed, wantRemoved)
	}
	if newRight != 3 {
		t.Fatalf("newRight = %d, want 3", newRight)
	}
	wantAdded := []PairDelta{
		{LeftPos: 0, RightPos: 3, LeftID: 10, RightID: 20},
		{LeftPos: 3, RightPos: 2, LeftID: 20, RightID: 30},
	}
	if !reflect.DeepEqual(added, wantAdded) {
		t.Fatalf("added = %+v, want %+v", added, wantAdded)
	}

	if got := s.IDs(); !reflect.DeepEqual(got, []int{10, 20, 30}) {
		t.Fatalf("IDs() after split = %v, want original [10 20 30]", got)
	}
	if got := s.Len(); got != 3 {
		t.Fatalf("Len() after split = %d, want 3", got)
	}
}

func TestSymbolsMergeAtEnd(t *testing.T) {
	s := NewSymbols([]int{1, 2, 3, 4}, []int{1, 1, 1, 1})

	// Merge the last pair (pos 2, pos 3): no afterRight, but there is a left neighbor.
	removed, added := s.MergeAt(2, 77, 2)

	wantRemoved := []PairDelta{
		{LeftPos: 1, RightPos: 2, LeftID: 2, RightID: 3},
		{LeftPos: 2, RightPos: 3, LeftID: 3, RightID: 4},
	}
	if !reflect.DeepEqual(removed, wantRemoved) {
		t.Fatalf("removed = %+v, want %+v", removed, wantRemoved)
	}
	wantAdded := []PairDelta{
		{LeftPos: 1, RightPos: 2, LeftID: 2, RightID: 77},
	}
	if !reflect.DeepEqual(added, wantAdded) {
		t.Fatalf("added = %+v, want %+v", added, wantAdded)
	}
	if got := s.IDs(); !reflect.DeepEqual(got, []int{1, 2, 77}) {
		t.Fatalf("IDs() = %v, want [1 2 77]", got)
	}
}
