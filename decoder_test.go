package pbpe

import "testing"

// TestDecodeRoundTripSingleton is property 1 of spec.md §8: decoding a
// word's own initial-alphabet encoding reproduces it, modulo prefix/suffix
// stripping for non-initial or final subwords.
func TestDecodeRoundTripSingleton(t *testing.T) {
	model, v := newModel("##", "</w>")
	hID := v.Add("h")
	iID := v.Add("##i</w>")
	model.EndOfWordSuffix = "</w>"

	got := model.Decode([]int{hID, iID})
	if want := "hi "; got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

// TestDecodeStripsContinuationPrefixWithoutBoundary checks that a
// continuing-subword-prefixed token decodes without inserting a word
// boundary, per spec.md §4.6.
func TestDecodeStripsContinuationPrefixWithoutBoundary(t *testing.T) {
	model, v := newModel("##", "")
	heID := v.Add("he")
	llID := v.Add("##ll")
	oID := v.Add("##o")

	got := model.Decode([]int{heID, llID, oID})
	if want := "hello"; got != want {
		t.Fatalf("Decode = %q, want %q", got, want)
	}
}

// TestDecodeByteFallbackRegroupsContiguousRuns is the inverse of scenario E:
// a run of byte-fallback tokens decodes back to the original rune.
func TestDecodeByteFallbackRegroupsContiguousRuns(t *testing.T) {
	model, v := newModel("", "")
	v.ReserveByteTokens()
	model.ByteFallback = true

	enc := model.NewEncoder()
	ids, err := enc.EncodeWord("\U0001F642")
	if err != nil {
		t.Fatalf("EncodeWord: %v", err)
	}

	if got := model.Decode(ids); got != "\U0001F642" {
		t.Fatalf("Decode = %q, want the original emoji", got)
	}
}

// TestDecodeIllFormedByteRunSubstitutesReplacementChar exercises the
// fallback path when a byte-fallback run is not valid UTF-8 on its own:
// spec.md §4.6 requires substituting the Unicode replacement character
// rather than failing.
func TestDecodeIllFormedByteRunSubstitutesReplacementChar(t *testing.T) {
	model, v := newModel("", "")
	v.ReserveByteTokens()
	model.ByteFallback = true

	// 0x80 alone is a continuation byte with no leading byte: ill-formed.
	badID, ok := v.ByteTokenID(0x80)
	if !ok {
		t.Fatal("byte token for 0x80 not reserved")
	}

	got := model.Decode([]int{badID})
	if want := "�"; got != want {
		t.Fatalf("Decode = %q, want replacement character", got)
	}
}

// TestDecodeMergeSplitDuality is property 3 of spec.md §8: applying
// operations [0..j] to a word produces the same symbol sequence as applying
// [0..i-1] then [i+1..j-1], where i is a Merge(a,b)->ab and j > i is a
// later Split(ab)->(a,b) of that exact token.
func TestDecodeMergeSplitDuality(t *testing.T) {
	_, v := newModel("", "")
	aID := v.Add("a")
	bID := v.Add("b")
	abID := v.Add("ab")

	// i = 0 (the Merge), j = 1 (the Split): [0..i-1] and [i+1..j-1] are
	// both empty ranges, so the "skip both" side applies no operations at
	// all — the merge and its later split must cancel out exactly.
	withMergeAndSplit := NewOperationList()
	withMergeAndSplit.Append(Merge(aID, bID, abID)) // i
	withMergeAndSplit.Append(Split(abID, aID, bID)) // j, undoes i

	seqFull := []int{aID, bID}
	for _, op := range withMergeAndSplit.All() {
		seqFull = applyOperation(seqFull, op)
	}

	seqSkipped := []int{aID, bID}

	if len(seqFull) != len(seqSkipped) {
		t.Fatalf("sequences differ in length: %v vs %v", seqFull, seqSkipped)
	}
	for i := range seqFull {
		if seqFull[i] != seqSkipped[i] {
			t.Fatalf("sequences differ: %v vs %v", seqFull, seqSkipped)
		}
	}
}
