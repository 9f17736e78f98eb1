package rainfall

// sortingTriangle is used specifically for sorting triangles when rendering. Less data means more data fits in cache,
// which means sorting is faster.
type sortingTriangle struct {
	depth         float32
	vertexIndices [3]int
}

// sortingTriangleBucket painter-sorts triangles by distributing them into depth bins. Triangles in different bins are
// strictly ordered; triangles that share a bin keep their submission order.
type sortingTriangleBucket struct {
	bins      [][]sortingTriangle
	unsetTris []sortingTriangle
}

func newSortingTriangleBucket(binCount int) *sortingTriangleBucket {
	return &sortingTriangleBucket{
		bins: make([][]sortingTriangle, max(binCount, 1)),
	}
}

func (s *sortingTriangleBucket) AddTriangle(depth float32, a, b, c int) {
	s.unsetTris = append(s.unsetTris, sortingTriangle{depth: depth, vertexIndices: [3]int{a, b, c}})
}

// Sort distributes the added triangles into bins spanning minRange to maxRange.
func (s *sortingTriangleBucket) Sort(minRange, maxRange float32) {

	binCount := len(s.bins)
	rangeDiff := maxRange - minRange

	if rangeDiff == 0 {
		rangeDiff = 0.001
	}

	for _, tri := range s.unsetTris {
		targetBin := int((tri.depth - minRange) / rangeDiff * float32(binCount))
		targetBin = min(max(targetBin, 0), binCount-1)
		s.bins[targetBin] = append(s.bins[targetBin], tri)
	}

	s.unsetTris = s.unsetTris[:0]

}

// ForEachBackToFront calls forEach on every sorted triangle, farthest first.
func (s *sortingTriangleBucket) ForEachBackToFront(forEach func(tri sortingTriangle)) {
	for i := len(s.bins) - 1; i >= 0; i-- {
		for _, tri := range s.bins[i] {
			forEach(tri)
		}
	}
}

// Clear empties the bucket, keeping its allocations for the next frame.
func (s *sortingTriangleBucket) Clear() {
	for i := range s.bins {
		s.bins[i] = s.bins[i][:0]
	}
	s.unsetTris = s.unsetTris[:0]
}
