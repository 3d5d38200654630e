package cost

import "math"

// JoinSizeEstimate implements spec.md §4.5's size formula:
//
//	size(join(a,b,col)) = size(a)*size(b)*mult(a,col)*mult(b,col) /
//	                      max(distinct(a,col), distinct(b,col))
//
// floored to 1. distinct(x,col) is derived as size(x)/mult(x,col), the
// standard relationship between cardinality and average group size.
func JoinSizeEstimate(sizeA uint64, multA float64, sizeB uint64, multB float64) uint64 {
	if multA <= 0 {
		multA = 1
	}
	if multB <= 0 {
		multB = 1
	}
	distinctA := float64(sizeA) / multA
	distinctB := float64(sizeB) / multB
	denom := math.Max(distinctA, distinctB)
	if denom <= 0 {
		return 1
	}
	size := float64(sizeA) * float64(sizeB) * multA * multB / denom
	if size < 1 {
		return 1
	}
	return uint64(size)
}

// SortLocalCost is the local cost of a Sort operator: size * log2(size),
// or size itself when size <= 1.
func SortLocalCost(size uint64) uint64 {
	if size <= 1 {
		return size
	}
	return uint64(float64(size) * math.Log2(float64(size)))
}

// HashJoinLocalCost is the local cost of a hash join: size(a) + size(b).
func HashJoinLocalCost(sizeA, sizeB uint64) uint64 { return sizeA + sizeB }

// SortMergeJoinLocalCost is the local cost of a sort-merge join itself
// (sorts, if needed, are counted as separate child operators and added
// on top by the caller): size(a) + size(b).
func SortMergeJoinLocalCost(sizeA, sizeB uint64) uint64 { return sizeA + sizeB }

// ScanLocalCost is the local cost of a leaf scan: its own size.
func ScanLocalCost(size uint64) uint64 { return size }

// TotalCost implements the invariant from spec.md §3:
//
//	costEstimate(p) >= sum(costEstimate(children)) + localCost(p)
//
// as an equality, which is the tightest estimate consistent with the
// invariant.
func TotalCost(childCosts []uint64, local uint64) uint64 {
	total := local
	for _, c := range childCosts {
		total += c
	}
	return total
}
