package passes

import (
	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/logger"
	"github.com/quantforge/qpost/internal/qmodel"
)

// ApplyMatMulSecondInputRule applies the matmul exception: the second
// operand of every matmul must be quantized 8-bit symmetric signed.
//
// For each matmul module with two input quantizer slots, the target
// quantizer is the second input slot if already assigned; otherwise
// the output quantizer of the closest upstream producer whose output
// quantization is active, found by walking the graph backward. Every
// resolved target is coerced to bitwidth 8, symmetric, signed, whether
// it was pre-existing or newly bound. Resolution failures are warnings
// and leave that matmul's second operand unassigned.
func ApplyMatMulSecondInputRule(g *graph.Graph, m *qmodel.Model, log logger.Logger) {
	opsByName := make(map[string]*graph.Op, len(g.Ops))
	for _, op := range g.Ops {
		if op.HasModule {
			opsByName[op.DottedName] = op
		}
	}

	for _, qm := range m.Modules() {
		if qm.Kind != graph.KindMatMul || len(qm.InputQuantizers) != 2 {
			continue
		}

		target := qm.InputQuantizers[1]
		if target == nil {
			op, ok := opsByName[g.ModelName+"."+qm.Name]
			if !ok || len(op.Inputs) < 2 {
				log.Warn("matmul op not found in traced graph, exception rule not applied", "module", qm.Name)
				continue
			}
			producer := op.Inputs[1].Producer
			if producer == nil {
				log.Warn("matmul second operand has no producer, exception rule not applied", "module", qm.Name)
				continue
			}
			closest := closestProducer(g, m, producer, log)
			if closest == nil {
				log.Warn("no closest producer with active output quantization found, exception rule not applied", "module", qm.Name)
				continue
			}
			target = closest.OutputQuantizers[0]
			qm.InputQuantizers[1] = target
		}

		target.Bitwidth = 8
		target.Symmetric = true
		target.Signed = true
	}
}

// closestProducer walks backward from op to the nearest quantized
// module whose output quantizer 0 is active.
//
// A module whose output quantization is disabled is only crossed when
// it has exactly one input op; zero or multiple inputs make the search
// ambiguous and abort it. A module-less op with multiple inputs is
// crossed through its first input, a heuristic rather than a
// guarantee, so it logs a warning.
func closestProducer(g *graph.Graph, m *qmodel.Model, op *graph.Op, log logger.Logger) *qmodel.QModule {
	inputs := op.InputOps()

	if qm := qmoduleOf(g, m, op); qm != nil {
		if len(qm.OutputQuantizers) > 0 && qm.OutputQuantizers[0] != nil {
			return qm
		}
		if len(inputs) == 1 {
			return closestProducer(g, m, inputs[0], log)
		}
		log.Warn("module has output quantization disabled and no input or more than one input exists, nearest producer is ambiguous",
			"op", op.DottedName)
		return nil
	}

	if len(inputs) == 0 {
		log.Warn("no input exists for traversal, aborting", "op", op.DottedName)
		return nil
	}
	if len(inputs) > 1 {
		log.Warn("multiple input ops exist, traversal continues through the first input", "op", op.DottedName)
	}
	return closestProducer(g, m, inputs[0], log)
}
