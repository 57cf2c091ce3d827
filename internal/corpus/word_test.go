package corpus

import "testing"

func TestTableAddAndLookup(t *testing.T) {
	table := NewTable()

	id0 := table.Add("low", 5, []int{1, 2}, []int{1, 1})
	id1 := table.Add("wide", 3, []int{3, 4, 5}, []int{1, 1, 1})

	if id0 != 0 || id1 != 1 {
		t.Fatalf("ids = %d, %d, want 0, 1", id0, id1)
	}
	if got := table.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	w := table.Word(id0)
	if w.Text != "low" || w.Freq != 5 {
		t.Fatalf("Word(0) = %+v, want Text=low Freq=5", w)
	}
	if got := w.Symbols.IDs(); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Word(0).Symbols.IDs() = %v, want [1 2]", got)
	}

	if got := table.All(); len(got) != 2 {
		t.Fatalf("All() len = %d, want 2", len(got))
	}
}
