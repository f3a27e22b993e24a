// Package graph holds the connected-graph representation a traced model
// is post-processed against: ops (nodes) joined by products (tensor
// edges), kept in topological order.
package graph

import (
	"fmt"
	"strings"
)

// Product is a tensor edge between ops. A nil Producer marks a root
// input; a nil Shape marks a non-tensor value (an attribute or shape
// argument captured by tracing).
type Product struct {
	Name      string
	Shape     []int
	Producer  *Op
	Consumers []*Op
}

// Op is a node in the connected graph.
//
// DottedName is the qualified module path including the root model
// name ("model.encoder.fc1"). Synthetic ops introduced by tracing have
// HasModule false and never resolve to a quantized module.
type Op struct {
	Kind       Kind
	DottedName string
	HasModule  bool
	Inputs     []*Product
	Outputs    []*Product
}

// InputOps returns the producers of op's inputs, order preserving and
// deduplicated. Root inputs contribute nothing.
func (op *Op) InputOps() []*Op {
	var ops []*Op
	seen := make(map[*Op]bool)
	for _, in := range op.Inputs {
		p := in.Producer
		if p == nil || seen[p] {
			continue
		}
		seen[p] = true
		ops = append(ops, p)
	}
	return ops
}

// Graph is a traced model: ops in topological order plus the product
// registry. It is immutable once built; the passes only mutate
// quantizer state on the parallel module tree.
type Graph struct {
	ModelName string
	Ops       []*Op

	products map[string]*Product
}

// New returns an empty graph for the named root model.
func New(modelName string) *Graph {
	return &Graph{
		ModelName: modelName,
		products:  make(map[string]*Product),
	}
}

// AddProduct registers a tensor edge. A nil shape marks a non-tensor
// value.
func (g *Graph) AddProduct(name string, shape []int) (*Product, error) {
	if _, ok := g.products[name]; ok {
		return nil, fmt.Errorf("duplicate product %q", name)
	}
	p := &Product{Name: name, Shape: shape}
	g.products[name] = p
	return p, nil
}

// Product looks up a registered product by name.
func (g *Graph) Product(name string) (*Product, bool) {
	p, ok := g.products[name]
	return p, ok
}

// AddOp appends an op in topological position. Input products must
// already exist; output products must exist and not yet have a
// producer. Producer/consumer links are wired here.
func (g *Graph) AddOp(kind Kind, dottedName string, hasModule bool, inputs, outputs []string) (*Op, error) {
	op := &Op{
		Kind:       kind,
		DottedName: dottedName,
		HasModule:  hasModule,
	}
	for _, name := range inputs {
		p, ok := g.products[name]
		if !ok {
			return nil, fmt.Errorf("op %q: unknown input product %q", dottedName, name)
		}
		op.Inputs = append(op.Inputs, p)
		p.Consumers = append(p.Consumers, op)
	}
	for _, name := range outputs {
		p, ok := g.products[name]
		if !ok {
			return nil, fmt.Errorf("op %q: unknown output product %q", dottedName, name)
		}
		if p.Producer != nil {
			return nil, fmt.Errorf("op %q: product %q already has producer %q", dottedName, name, p.Producer.DottedName)
		}
		p.Producer = op
		op.Outputs = append(op.Outputs, p)
	}
	g.Ops = append(g.Ops, op)
	return op, nil
}

// ModuleName strips the root model-name prefix from op's dotted name,
// yielding the module path used for module-tree lookup. It returns
// false for synthetic ops and for the root itself.
func (g *Graph) ModuleName(op *Op) (string, bool) {
	if !op.HasModule {
		return "", false
	}
	rest, ok := strings.CutPrefix(op.DottedName, g.ModelName+".")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// IndexOf returns the position of p within products, or -1.
func IndexOf(products []*Product, p *Product) int {
	for i, q := range products {
		if q == p {
			return i
		}
	}
	return -1
}
