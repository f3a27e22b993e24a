// Package passes implements the graph post-processing passes run
// against a quantization simulator after tracing: backward output
// encoding propagation, the matmul second-operand 8-bit exception,
// and 16-bit symmetric weight clipping.
package passes

import (
	"fmt"

	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/qmodel"
)

// qmoduleOf resolves the quantized module wrapping op's original
// module: strip the root model-name prefix from the dotted name, then
// look the remainder up in the wrapped model tree. Synthetic ops have
// no module and resolve to nil.
func qmoduleOf(g *graph.Graph, m *qmodel.Model, op *graph.Op) *qmodel.QModule {
	name, ok := g.ModuleName(op)
	if !ok {
		return nil
	}
	qm, ok := m.Submodule(name)
	if !ok {
		return nil
	}
	return qm
}

// Propagate pushes the output quantizer of every module selected by
// sel backward onto its producing chain: producer output slots are
// overwritten where already active, math-invariant producers (reshape,
// permute, cast, ...) are skipped through, and root inputs land on the
// consumer's input slot.
//
// Ops are visited in reverse topological order, so chains feeding a
// later selected module are finalized before earlier ops are
// considered; propagation from a later match may overwrite quantizers
// of earlier non-matching modules, which is the intended precedence.
func Propagate(g *graph.Graph, m *qmodel.Model, sel Selector) error {
	if g == nil || len(g.Ops) == 0 {
		return newConfigurationError(
			"no traced graph found: encoding propagation is only supported when a traced graph is present")
	}

	for i := len(g.Ops) - 1; i >= 0; i-- {
		op := g.Ops[i]
		qm := qmoduleOf(g, m, op)
		if qm == nil || !sel(qm) {
			continue
		}

		if n := len(qm.OutputQuantizers); n != 1 {
			return newUnsupportedConfiguration(fmt.Sprintf(
				"encoding propagation is only supported for modules with exactly 1 output quantizer, but %q has %d", qm.Name, n))
		}
		q := qm.OutputQuantizers[0]
		if q == nil {
			return newUnsupportedConfiguration(fmt.Sprintf(
				"encoding propagation is only supported for modules with exactly 1 output quantizer, but %q has output quantizer 0 unset", qm.Name))
		}

		for _, in := range op.Inputs {
			setSourceQuantizer(g, m, in, op, q)
		}
	}
	return nil
}

// setSourceQuantizer makes q the effective source encoding of tensor t
// as seen from consumer.
func setSourceQuantizer(g *graph.Graph, m *qmodel.Model, t *graph.Product, consumer *graph.Op, q *qmodel.Quantizer) {
	producer := t.Producer

	if producer == nil {
		if t.Shape == nil {
			// t is a non-tensor root input.
			return
		}

		// t is a root input: set the consumer's input quantizer.
		qm := qmoduleOf(g, m, consumer)
		if qm == nil {
			return
		}
		i := graph.IndexOf(consumer.Inputs, t)
		if qm.Kind.VariadicInput() {
			// Concat takes a statically unknown number of inputs and
			// owns a single input quantizer applied to all of them.
			i = 0
		}
		qm.InputQuantizers[i] = q
		return
	}

	qm := qmoduleOf(g, m, producer)

	if qm != nil {
		i := graph.IndexOf(producer.Outputs, t)
		if qm.Kind.VariadicOutput() {
			// Split mirrors concat on the output side: one output
			// quantizer shared by all output tensors.
			i = 0
		}
		if qm.OutputQuantizers[i] != nil {
			qm.OutputQuantizers[i] = q
		}
	}

	if qm == nil || qm.Kind.MathInvariant() {
		// No quantized module for the producer, or the producer does
		// not alter numeric values. Either way the encoding belongs
		// further up: propagate into every input of the producer.
		for _, in := range producer.Inputs {
			setSourceQuantizer(g, m, in, producer, q)
		}
	}
}
