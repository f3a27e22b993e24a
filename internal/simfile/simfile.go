// Package simfile reads and writes the JSON interchange format for
// traced quantsim state: the connected graph, the quantized-module
// tree and the resulting encodings. The passes themselves are
// format-free; this package is the boundary used by the CLI and the
// HTTP service.
package simfile

import "errors"

// ErrBadDocument marks structurally invalid interchange documents.
var ErrBadDocument = errors.New("invalid simfile document")

// Document is a traced quantization simulator snapshot.
type Document struct {
	Model    string        `json:"model"`
	Products []ProductSpec `json:"products"`
	Ops      []OpSpec      `json:"ops"`
	Modules  []ModuleSpec  `json:"modules"`
}

// ProductSpec describes a tensor edge. A missing shape marks a
// non-tensor value captured by tracing.
type ProductSpec struct {
	Name  string `json:"name"`
	Shape []int  `json:"shape,omitempty"`
}

// OpSpec describes a graph node. Ops appear in topological order.
// Virtual ops have no backing module.
type OpSpec struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Virtual bool     `json:"virtual,omitempty"`
	Inputs  []string `json:"inputs"`
	Outputs []string `json:"outputs"`
}

// ModuleSpec describes one quantized module. Quantizer slots are
// positional; a null entry is an empty slot. Module names are relative
// to the model root.
type ModuleSpec struct {
	Name             string                    `json:"name"`
	Kind             string                    `json:"kind"`
	InputQuantizers  []*QuantizerSpec          `json:"input_quantizers"`
	OutputQuantizers []*QuantizerSpec          `json:"output_quantizers"`
	ParamQuantizers  map[string]*QuantizerSpec `json:"param_quantizers,omitempty"`
	Weight           *WeightSpec               `json:"weight,omitempty"`
}

// QuantizerSpec carries quantizer parameters. A non-empty scale means
// the quantizer is calibrated.
type QuantizerSpec struct {
	Bitwidth  int       `json:"bitwidth"`
	Symmetric bool      `json:"symmetric,omitempty"`
	Signed    bool      `json:"signed,omitempty"`
	Encoding  string    `json:"encoding,omitempty"`
	Scale     []float32 `json:"scale,omitempty"`
}

// WeightSpec is a dense row-major weight matrix.
type WeightSpec struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float32 `json:"data"`
}
