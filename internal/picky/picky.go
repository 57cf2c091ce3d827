// Package picky implements the Picky Selector (C6): the pure decision
// function that decides whether a candidate merge is accepted, rejected, or
// rejected-with-targeted-split, given corpus statistics. It holds no state
// of its own — every call is a function of the numbers passed in — which
// keeps it independently testable against the decision table directly.
package picky

// Stats are the corpus statistics a candidate merge (a, b) -> ab is judged
// against. FreqAB is the weighted occurrence count of the merged pair;
// FreqA/FreqB are the standalone weighted occurrence counts of the left and
// right parts across the whole corpus.
type Stats struct {
	FreqAB int
	FreqA  int
	FreqB  int
}

// intraRatio is freq(ab)/freq(x) for a part x with standalone frequency
// freqX. A part with freqX == 0 cannot be judged and is treated as if it
// never occurs standalone, i.e. ratio 1.0 — wholly inside the merge.
func intraRatio(freqAB, freqX int) float64 {
	if freqX == 0 {
		return 1.0
	}
	return float64(freqAB) / float64(freqX)
}

// Decision is the verdict for one candidate merge.
type Decision struct {
	Accept bool

	// SplitA/SplitB request a Split operation on the left/right part
	// respectively. When Accept is true, a true here means the part has
	// become wholly redundant (intra_ratio == 1.0) and every occurrence of
	// it should be split. When Accept is false, a true here means only the
	// occurrences that would have participated in this rejected merge
	// should be split — the picky part's other contexts are left alone.
	SplitA bool
	SplitB bool
}

// Decide applies the decision table of §4.3 to a candidate merge (a,b)->ab.
func Decide(stats Stats, threshold float64) Decision {
	ratioA := intraRatio(stats.FreqAB, stats.FreqA)
	ratioB := intraRatio(stats.FreqAB, stats.FreqB)

	if ratioA > threshold && ratioB > threshold {
		return Decision{
			Accept: true,
			SplitA: ratioA == 1.0,
			SplitB: ratioB == 1.0,
		}
	}

	d := Decision{Accept: false}
	if ratioA <= threshold && stats.FreqA-stats.FreqAB > 0 {
		d.SplitA = true
	}
	if ratioB <= threshold && stats.FreqB-stats.FreqAB > 0 {
		d.SplitB = true
	}
	return d
}
