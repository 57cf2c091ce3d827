package picky

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		stats     Stats
		threshold float64
		want      Decision
	}{
		{
			name:      "accept without redundant split",
			stats:     Stats{FreqAB: 8, FreqA: 10, FreqB: 10},
			threshold: 0.5,
			want:      Decision{Accept: true},
		},
		{
			name:      "accept with redundant split on A",
			stats:     Stats{FreqAB: 10, FreqA: 10, FreqB: 15},
			threshold: 0.5,
			want:      Decision{Accept: true, SplitA: true},
		},
		{
			name:      "accept with redundant split on both",
			stats:     Stats{FreqAB: 10, FreqA: 10, FreqB: 10},
			threshold: 0.5,
			want:      Decision{Accept: true, SplitA: true, SplitB: true},
		},
		{
			name:      "reject with targeted split on B only",
			stats:     Stats{FreqAB: 2, FreqA: 3, FreqB: 10},
			threshold: 0.5,
			want:      Decision{Accept: false, SplitB: true},
		},
		{
			name:      "reject with targeted split on both",
			stats:     Stats{FreqAB: 2, FreqA: 10, FreqB: 5},
			threshold: 0.5,
			want:      Decision{Accept: false, SplitA: true, SplitB: true},
		},
		{
			name:      "reject without split when part fully consumed",
			stats:     Stats{FreqAB: 5, FreqA: 5, FreqB: 5},
			threshold: 1.0,
			want:      Decision{Accept: false},
		},
		{
			name:      "a part with zero standalone frequency is treated as wholly inside",
			stats:     Stats{FreqAB: 4, FreqA: 0, FreqB: 10},
			threshold: 0.5,
			want:      Decision{Accept: false, SplitB: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.stats, tt.threshold)
			if got != tt.want {
				t.Fatalf("Decide(%+v, %v) = %+v, want %+v", tt.stats, tt.threshold, got, tt.want)
			}
		})
	}
}
