package pbpe

import "testing"

func TestOperationListAppendAndOrder(t *testing.T) {
	ops := NewOperationList()
	ops.Append(Merge(1, 2, 10))
	ops.Append(Split(10, 1, 2))

	if got := ops.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	m := ops.At(0)
	if m.Kind != OpMerge || m.Parts != [2]int{1, 2} || m.Result != 10 {
		t.Fatalf("At(0) = %+v, want Merge(1,2,10)", m)
	}

	s := ops.At(1)
	if s.Kind != OpSplit || s.Source != 10 || s.Parts != [2]int{1, 2} {
		t.Fatalf("At(1) = %+v, want Split(10,1,2)", s)
	}

	if got := ops.All(); len(got) != 2 {
		t.Fatalf("All() len = %d, want 2", len(got))
	}
}
