package simfile

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/quantforge/qpost/internal/graph"
	"github.com/quantforge/qpost/internal/qmodel"
	"github.com/quantforge/qpost/internal/tensor"
)

// Load reads and materializes a simfile document from disk.
func Load(path string) (*graph.Graph, *qmodel.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a simfile document and materializes the connected
// graph and the quantized-module tree.
func Decode(r io.Reader) (*graph.Graph, *qmodel.Model, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}
	return doc.Build()
}

// Build materializes the document. Validation failures wrap
// ErrBadDocument.
func (doc *Document) Build() (*graph.Graph, *qmodel.Model, error) {
	if doc.Model == "" {
		return nil, nil, fmt.Errorf("%w: missing model name", ErrBadDocument)
	}

	g := graph.New(doc.Model)
	for _, p := range doc.Products {
		if p.Name == "" {
			return nil, nil, fmt.Errorf("%w: product with empty name", ErrBadDocument)
		}
		if _, err := g.AddProduct(p.Name, p.Shape); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
	}
	for _, o := range doc.Ops {
		kind, err := graph.ParseKind(o.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: op %q: %v", ErrBadDocument, o.Name, err)
		}
		if _, err := g.AddOp(kind, o.Name, !o.Virtual, o.Inputs, o.Outputs); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
	}

	m := qmodel.NewModel(doc.Model)
	for _, ms := range doc.Modules {
		qm, err := ms.build()
		if err != nil {
			return nil, nil, err
		}
		if err := m.Add(qm); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
	}
	if err := checkSlotCounts(g, m); err != nil {
		return nil, nil, err
	}
	return g, m, nil
}

// checkSlotCounts cross-checks each module's quantizer slot counts
// against the arity of its traced op. The passes index slots by tensor
// position, so a mismatch would be an out-of-range access at traversal
// time. Variadic kinds declare a single shared slot on their variadic
// side regardless of arity.
func checkSlotCounts(g *graph.Graph, m *qmodel.Model) error {
	for _, op := range g.Ops {
		name, ok := g.ModuleName(op)
		if !ok {
			continue
		}
		qm, ok := m.Submodule(name)
		if !ok {
			continue
		}
		wantIn := len(op.Inputs)
		if qm.Kind.VariadicInput() {
			wantIn = 1
		}
		if len(qm.InputQuantizers) != wantIn {
			return fmt.Errorf("%w: module %q declares %d input quantizer slots but op %q needs %d",
				ErrBadDocument, name, len(qm.InputQuantizers), op.DottedName, wantIn)
		}
		wantOut := len(op.Outputs)
		if qm.Kind.VariadicOutput() {
			wantOut = 1
		}
		if len(qm.OutputQuantizers) != wantOut {
			return fmt.Errorf("%w: module %q declares %d output quantizer slots but op %q needs %d",
				ErrBadDocument, name, len(qm.OutputQuantizers), op.DottedName, wantOut)
		}
	}
	return nil
}

func (ms *ModuleSpec) build() (*qmodel.QModule, error) {
	kind, err := graph.ParseKind(ms.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: module %q: %v", ErrBadDocument, ms.Name, err)
	}
	qm := &qmodel.QModule{
		Name:             ms.Name,
		Kind:             kind,
		InputQuantizers:  make([]*qmodel.Quantizer, len(ms.InputQuantizers)),
		OutputQuantizers: make([]*qmodel.Quantizer, len(ms.OutputQuantizers)),
	}
	for i, qs := range ms.InputQuantizers {
		qm.InputQuantizers[i] = qs.build()
	}
	for i, qs := range ms.OutputQuantizers {
		qm.OutputQuantizers[i] = qs.build()
	}
	if len(ms.ParamQuantizers) > 0 {
		qm.ParamQuantizers = make(map[string]*qmodel.Quantizer, len(ms.ParamQuantizers))
		for name, qs := range ms.ParamQuantizers {
			qm.ParamQuantizers[name] = qs.build()
		}
	}
	if ms.Weight != nil {
		if ms.Weight.Rows*ms.Weight.Cols != len(ms.Weight.Data) {
			return nil, fmt.Errorf("%w: module %q: weight is %dx%d but has %d values",
				ErrBadDocument, ms.Name, ms.Weight.Rows, ms.Weight.Cols, len(ms.Weight.Data))
		}
		// A calibrated weight scale is per output channel: one entry
		// per weight row, or a single broadcast entry.
		if wq := qm.WeightQuantizer(); wq != nil {
			if n := len(wq.Scale()); n > 1 && n != ms.Weight.Rows {
				return nil, fmt.Errorf("%w: module %q: weight scale has %d entries for %d rows",
					ErrBadDocument, ms.Name, n, ms.Weight.Rows)
			}
		}
		w := tensor.NewMatFromData(ms.Weight.Rows, ms.Weight.Cols, ms.Weight.Data)
		qm.Weight = &w
	}
	return qm, nil
}

func (qs *QuantizerSpec) build() *qmodel.Quantizer {
	if qs == nil {
		return nil
	}
	q := &qmodel.Quantizer{
		Bitwidth:  qs.Bitwidth,
		Symmetric: qs.Symmetric,
		Signed:    qs.Signed,
	}
	if qs.Encoding == "float" {
		q.Encoding = qmodel.EncodingFloat
	}
	if len(qs.Scale) > 0 {
		q.Calibrate(qs.Scale)
	}
	return q
}
