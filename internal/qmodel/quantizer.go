// Package qmodel models the quantization-wrapped module tree that runs
// parallel to the traced graph: quantizer parameters, per-module input
// and output quantizer slots, and dotted-name lookup.
package qmodel

// Encoding distinguishes the quantizer families. Only affine
// quantizers participate in symmetric weight clipping.
type Encoding int

const (
	EncodingAffine Encoding = iota
	EncodingFloat
)

func (e Encoding) String() string {
	if e == EncodingFloat {
		return "float"
	}
	return "affine"
}

// Quantizer holds the encoding parameters attached to one quantizer
// slot: bitwidth, symmetry and sign flags, and, once calibrated, a
// per-channel scale.
type Quantizer struct {
	Bitwidth  int
	Symmetric bool
	Signed    bool
	Encoding  Encoding

	scale []float32
}

// Calibrate records the derived scale and marks the quantizer
// initialized. scale has one entry per output channel, or a single
// entry broadcast to all channels.
func (q *Quantizer) Calibrate(scale []float32) {
	q.scale = scale
}

// Initialized reports whether the quantizer has a calibrated scale.
func (q *Quantizer) Initialized() bool {
	return q.scale != nil
}

// Scale returns the calibrated per-channel scale, nil if the quantizer
// is not initialized.
func (q *Quantizer) Scale() []float32 {
	return q.scale
}
