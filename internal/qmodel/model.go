package qmodel

import (
	"fmt"

	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/tensor"
)

// WeightParam is the parameter-quantizer key for layer weights.
const WeightParam = "weight"

// QModule is the quantization wrapper around one original module. The
// slot slices are fixed length; a nil entry is an empty slot. Variadic
// modules (concat, split) declare a single slot on their variadic
// side.
type QModule struct {
	Name string
	Kind graph.Kind

	InputQuantizers  []*Quantizer
	OutputQuantizers []*Quantizer
	ParamQuantizers  map[string]*Quantizer

	// Weight is the wrapped layer's weight parameter, if it has one.
	Weight *tensor.Mat
}

// WeightQuantizer returns the weight parameter quantizer, nil if the
// module has none.
func (qm *QModule) WeightQuantizer() *Quantizer {
	return qm.ParamQuantizers[WeightParam]
}

// Model is the wrapped model tree: quantized modules addressable by
// dotted name relative to the root (the root model-name prefix is
// already stripped).
type Model struct {
	Name string

	modules map[string]*QModule
	order   []string
}

// NewModel returns an empty wrapped model with the given root name.
func NewModel(name string) *Model {
	return &Model{
		Name:    name,
		modules: make(map[string]*QModule),
	}
}

// Add registers a quantized module under its dotted name.
func (m *Model) Add(qm *QModule) error {
	if qm.Name == "" {
		return fmt.Errorf("quantized module with empty name")
	}
	if _, ok := m.modules[qm.Name]; ok {
		return fmt.Errorf("duplicate quantized module %q", qm.Name)
	}
	m.modules[qm.Name] = qm
	m.order = append(m.order, qm.Name)
	return nil
}

// Submodule looks up a quantized module by dotted name.
func (m *Model) Submodule(name string) (*QModule, bool) {
	qm, ok := m.modules[name]
	return qm, ok
}

// Modules returns all quantized modules in registration order.
func (m *Model) Modules() []*QModule {
	out := make([]*QModule, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.modules[name])
	}
	return out
}
