package tensor

// Mat represents a dense row-major matrix of float32 values.
//
// R and C are the number of rows and columns. Data holds the flattened
// values. Mat does not perform any memory safety beyond the checks
// performed by Go's slice types; out-of-range indices will panic.
type Mat struct {
	R, C int
	Data []float32
}

// NewMat allocates a zero-initialised matrix.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{R: r, C: c, Data: make([]float32, r*c)}
}

// NewMatFromData creates a matrix backed by existing data. It checks
// that the data length matches r*c.
func NewMatFromData(r, c int, data []float32) Mat {
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return Mat{R: r, C: c, Data: data}
}

// Row returns row i as a slice aliasing the matrix storage.
func (m Mat) Row(i int) []float32 {
	return m.Data[i*m.C : (i+1)*m.C]
}

// Clone returns a deep copy of the matrix.
func (m Mat) Clone() Mat {
	out := Mat{R: m.R, C: m.C, Data: make([]float32, len(m.Data))}
	copy(out.Data, m.Data)
	return out
}
