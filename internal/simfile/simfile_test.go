package simfile

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/quantforge/qpost/internal/graph"
)

const sampleDoc = `{
  "model": "model",
  "products": [
    {"name": "x", "shape": [1, 8]},
    {"name": "t1", "shape": [1, 8]},
    {"name": "t2", "shape": [8, 1]}
  ],
  "ops": [
    {"name": "model.fc1", "kind": "linear", "inputs": ["x"], "outputs": ["t1"]},
    {"name": "model.reshape_1", "kind": "reshape", "virtual": true, "inputs": ["t1"], "outputs": ["t2"]}
  ],
  "modules": [
    {
      "name": "fc1",
      "kind": "linear",
      "input_quantizers": [null],
      "output_quantizers": [{"bitwidth": 16, "symmetric": true, "scale": [0.5]}],
      "param_quantizers": {
        "weight": {"bitwidth": 16, "symmetric": true, "scale": [0.001]}
      },
      "weight": {"rows": 2, "cols": 2, "data": [1, 2, 3, 4]}
    }
  ]
}`

func TestDecodeSampleDocument(t *testing.T) {
	t.Parallel()

	g, m, err := Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	if len(g.Ops) != 2 {
		t.Fatalf("got %d ops, want 2", len(g.Ops))
	}
	if g.Ops[0].Kind != graph.KindLinear || !g.Ops[0].HasModule {
		t.Errorf("fc1 op decoded wrong: %+v", g.Ops[0])
	}
	if g.Ops[1].HasModule {
		t.Error("virtual op decoded with a backing module")
	}

	fc1, ok := m.Submodule("fc1")
	if !ok {
		t.Fatal("fc1 module missing")
	}
	if fc1.InputQuantizers[0] != nil {
		t.Error("null slot decoded as a quantizer")
	}
	out := fc1.OutputQuantizers[0]
	if out == nil || out.Bitwidth != 16 || !out.Symmetric || !out.Initialized() {
		t.Errorf("output quantizer decoded wrong: %+v", out)
	}
	wq := fc1.WeightQuantizer()
	if wq == nil || wq.Scale()[0] != 0.001 {
		t.Error("weight param quantizer decoded wrong")
	}
	if fc1.Weight == nil || fc1.Weight.R != 2 || fc1.Weight.Data[3] != 4 {
		t.Errorf("weight matrix decoded wrong: %+v", fc1.Weight)
	}
}

func TestBuildRejectsBadDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  Document
	}{
		{"missing model name", Document{}},
		{"unknown op kind", Document{
			Model: "model",
			Ops:   []OpSpec{{Name: "model.fc", Kind: "frobnicate"}},
		}},
		{"dangling tensor ref", Document{
			Model: "model",
			Ops:   []OpSpec{{Name: "model.fc", Kind: "linear", Inputs: []string{"ghost"}}},
		}},
		{"duplicate product", Document{
			Model:    "model",
			Products: []ProductSpec{{Name: "x"}, {Name: "x"}},
		}},
		{"weight size mismatch", Document{
			Model: "model",
			Modules: []ModuleSpec{{
				Name: "fc", Kind: "linear",
				Weight: &WeightSpec{Rows: 2, Cols: 2, Data: []float32{1}},
			}},
		}},
		{"duplicate module", Document{
			Model: "model",
			Modules: []ModuleSpec{
				{Name: "fc", Kind: "linear"},
				{Name: "fc", Kind: "linear"},
			},
		}},
		{"weight scale length mismatch", Document{
			Model: "model",
			Modules: []ModuleSpec{{
				Name: "fc", Kind: "linear",
				ParamQuantizers: map[string]*QuantizerSpec{
					"weight": {Bitwidth: 16, Symmetric: true, Scale: []float32{0.1, 0.2, 0.3}},
				},
				Weight: &WeightSpec{Rows: 2, Cols: 2, Data: []float32{1, 2, 3, 4}},
			}},
		}},
		{"output slot count mismatch", Document{
			Model: "model",
			Products: []ProductSpec{
				{Name: "x", Shape: []int{1, 4}},
				{Name: "t1", Shape: []int{1, 4}},
				{Name: "t2", Shape: []int{1, 4}},
			},
			Ops: []OpSpec{{
				Name: "model.fc", Kind: "linear",
				Inputs: []string{"x"}, Outputs: []string{"t1", "t2"},
			}},
			Modules: []ModuleSpec{{
				Name: "fc", Kind: "linear",
				InputQuantizers:  []*QuantizerSpec{nil},
				OutputQuantizers: []*QuantizerSpec{{Bitwidth: 16}},
			}},
		}},
		{"input slot count mismatch", Document{
			Model: "model",
			Products: []ProductSpec{
				{Name: "x", Shape: []int{1, 4}},
				{Name: "y", Shape: []int{1, 4}},
				{Name: "t1", Shape: []int{1, 4}},
			},
			Ops: []OpSpec{{
				Name: "model.add1", Kind: "add",
				Inputs: []string{"x", "y"}, Outputs: []string{"t1"},
			}},
			Modules: []ModuleSpec{{
				Name: "add1", Kind: "add",
				InputQuantizers:  []*QuantizerSpec{nil},
				OutputQuantizers: []*QuantizerSpec{nil},
			}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := tt.doc.Build(); !errors.Is(err, ErrBadDocument) {
				t.Errorf("Build() error = %v, want ErrBadDocument", err)
			}
		})
	}
}

func TestBuildAcceptsVariadicSlotCollapse(t *testing.T) {
	t.Parallel()

	// Concat takes two tensors through one shared input slot; split
	// mirrors it on the output side. Arity checks must honor the
	// collapsed slot, not the tensor count.
	doc := Document{
		Model: "model",
		Products: []ProductSpec{
			{Name: "x1", Shape: []int{1, 4}},
			{Name: "x2", Shape: []int{1, 4}},
			{Name: "t1", Shape: []int{1, 8}},
			{Name: "s1", Shape: []int{1, 4}},
			{Name: "s2", Shape: []int{1, 4}},
		},
		Ops: []OpSpec{
			{Name: "model.cat", Kind: "concat", Inputs: []string{"x1", "x2"}, Outputs: []string{"t1"}},
			{Name: "model.split1", Kind: "split", Inputs: []string{"t1"}, Outputs: []string{"s1", "s2"}},
		},
		Modules: []ModuleSpec{
			{
				Name: "cat", Kind: "concat",
				InputQuantizers:  []*QuantizerSpec{nil},
				OutputQuantizers: []*QuantizerSpec{{Bitwidth: 8}},
			},
			{
				Name: "split1", Kind: "split",
				InputQuantizers:  []*QuantizerSpec{nil},
				OutputQuantizers: []*QuantizerSpec{{Bitwidth: 8}},
			},
		},
	}
	if _, _, err := doc.Build(); err != nil {
		t.Fatalf("Build() rejected a valid variadic layout: %v", err)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	if _, _, err := Decode(strings.NewReader("{")); !errors.Is(err, ErrBadDocument) {
		t.Errorf("Decode error = %v, want ErrBadDocument", err)
	}
}

func TestEncodingsReport(t *testing.T) {
	t.Parallel()

	_, m, err := Decode(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}

	report := Encodings(m)
	if len(report) != 1 {
		t.Fatalf("got %d module reports, want 1", len(report))
	}
	me := report[0]
	if me.Name != "fc1" || me.Kind != "linear" {
		t.Errorf("module report header wrong: %+v", me)
	}
	if me.Inputs[0] != nil {
		t.Error("empty slot not reported as null")
	}
	if me.Outputs[0] == nil || !me.Outputs[0].Calibrated || me.Outputs[0].Scale[0] != 0.5 {
		t.Errorf("output encoding state wrong: %+v", me.Outputs[0])
	}
	if me.Params["weight"] == nil || me.Params["weight"].Bitwidth != 16 {
		t.Error("weight param encoding state wrong")
	}

	var buf bytes.Buffer
	if err := WriteEncodings(&buf, m); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"name": "fc1"`) {
		t.Errorf("encodings JSON missing module entry: %s", buf.String())
	}
}
