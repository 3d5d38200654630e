package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinSizeEstimate(t *testing.T) {
	cases := []struct {
		name                     string
		sizeA, sizeB             uint64
		multA, multB             float64
		want                     uint64
	}{
		{"equal unique keys", 10, 10, 1.0, 1.0, 10},
		{"floored to one", 0, 0, 1.0, 1.0, 1},
		{"non-unit multiplicities", 100, 50, 2.0, 1.0, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := JoinSizeEstimate(tc.sizeA, tc.multA, tc.sizeB, tc.multB)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJoinSizeEstimate_NonPositiveMultiplicityDefaultsToOne(t *testing.T) {
	a := JoinSizeEstimate(10, 0, 10, -1)
	b := JoinSizeEstimate(10, 1, 10, 1)
	assert.Equal(t, b, a)
}

func TestSortLocalCost(t *testing.T) {
	assert.Equal(t, uint64(0), SortLocalCost(0))
	assert.Equal(t, uint64(1), SortLocalCost(1))
	assert.Equal(t, uint64(8), SortLocalCost(4)) // 4 * log2(4) = 8
}

func TestHashJoinLocalCost(t *testing.T) {
	assert.Equal(t, uint64(30), HashJoinLocalCost(10, 20))
}

func TestSortMergeJoinLocalCost(t *testing.T) {
	assert.Equal(t, uint64(30), SortMergeJoinLocalCost(10, 20))
}

func TestScanLocalCost(t *testing.T) {
	assert.Equal(t, uint64(42), ScanLocalCost(42))
}

func TestTotalCost(t *testing.T) {
	assert.Equal(t, uint64(15), TotalCost([]uint64{5, 5}, 5))
	assert.Equal(t, uint64(5), TotalCost(nil, 5))
}
