package tensor

// ClampMax caps every element of x to at most limit, in place.
func ClampMax(x []float32, limit float32) {
	for i := range x {
		if x[i] > limit {
			x[i] = limit
		}
	}
}

// ClampMaxRows caps each row of m to its own upper bound, in place.
// limits must have either one entry (broadcast to all rows) or exactly
// m.R entries.
func (m Mat) ClampMaxRows(limits []float32) {
	if len(limits) == 1 {
		ClampMax(m.Data, limits[0])
		return
	}
	if len(limits) != m.R {
		panic("row limit count mismatch")
	}
	for i := 0; i < m.R; i++ {
		ClampMax(m.Row(i), limits[i])
	}
}
