package passes

import (
	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/qmodel"
)

// Selector decides which quantized modules a propagation pass targets.
// Any predicate works; ByKind and ByModule cover the common cases.
type Selector func(*qmodel.QModule) bool

// ByKind selects every quantized module of the given op kind.
func ByKind(kind graph.Kind) Selector {
	return func(qm *qmodel.QModule) bool {
		return qm.Kind == kind
	}
}

// ByModule selects exactly one quantized module instance.
func ByModule(target *qmodel.QModule) Selector {
	return func(qm *qmodel.QModule) bool {
		return qm == target
	}
}
