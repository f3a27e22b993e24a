package passes

import (
	"github.com/quantforge/qpost/internal/logger"
	"github.com/quantforge/qpost/internal/qmodel"
)

// maxSymmetric16BitCode is the largest quantized code a clipped 16-bit
// symmetric weight may reach.
const maxSymmetric16BitCode = 0x7f7f

// ClipWeights16BitSymmetric clamps the weights of every module whose
// weight quantizer is present, 16-bit, affine, symmetric and
// calibrated to at most scale * 0x7f7f per output channel, in place.
// Modules failing any precondition are left untouched.
func ClipWeights16BitSymmetric(m *qmodel.Model, log logger.Logger) {
	var affected []string
	for _, qm := range m.Modules() {
		wq := qm.WeightQuantizer()
		if wq == nil || qm.Weight == nil {
			continue
		}
		if wq.Bitwidth != 16 || wq.Encoding != qmodel.EncodingAffine || !wq.Symmetric || !wq.Initialized() {
			continue
		}

		scale := wq.Scale()
		limits := make([]float32, len(scale))
		for i, s := range scale {
			limits[i] = s * maxSymmetric16BitCode
		}
		qm.Weight.ClampMaxRows(limits)
		affected = append(affected, qm.Name)
	}
	log.Debug("clipped weights to the 0x7f7f max quantized value", "layers", affected)
}
