package simfile

import (
	"io"
	"os"

	json "github.com/goccy/go-json"

	"github.com/quantforge/qpost/internal/qmodel"
)

// EncodingState is the exported view of one quantizer slot.
type EncodingState struct {
	Bitwidth   int       `json:"bitwidth"`
	Symmetric  bool      `json:"symmetric"`
	Signed     bool      `json:"signed"`
	Encoding   string    `json:"encoding"`
	Calibrated bool      `json:"calibrated"`
	Scale      []float32 `json:"scale,omitempty"`
}

// ModuleEncodings is the encodings report for one quantized module.
// Empty slots export as null so positions stay aligned with the
// module's slot layout.
type ModuleEncodings struct {
	Name    string                    `json:"name"`
	Kind    string                    `json:"kind"`
	Inputs  []*EncodingState          `json:"input_quantizers"`
	Outputs []*EncodingState          `json:"output_quantizers"`
	Params  map[string]*EncodingState `json:"param_quantizers,omitempty"`
}

// Encodings captures the current quantizer state of every module, in
// registration order.
func Encodings(m *qmodel.Model) []ModuleEncodings {
	mods := m.Modules()
	out := make([]ModuleEncodings, 0, len(mods))
	for _, qm := range mods {
		me := ModuleEncodings{
			Name:    qm.Name,
			Kind:    qm.Kind.String(),
			Inputs:  encodingStates(qm.InputQuantizers),
			Outputs: encodingStates(qm.OutputQuantizers),
		}
		if len(qm.ParamQuantizers) > 0 {
			me.Params = make(map[string]*EncodingState, len(qm.ParamQuantizers))
			for name, q := range qm.ParamQuantizers {
				me.Params[name] = encodingState(q)
			}
		}
		out = append(out, me)
	}
	return out
}

// WriteEncodings writes the encodings report as indented JSON.
func WriteEncodings(w io.Writer, m *qmodel.Model) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Encodings(m))
}

// SaveEncodings writes the encodings report to a file.
func SaveEncodings(path string, m *qmodel.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteEncodings(f, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodingStates(qs []*qmodel.Quantizer) []*EncodingState {
	out := make([]*EncodingState, len(qs))
	for i, q := range qs {
		out[i] = encodingState(q)
	}
	return out
}

func encodingState(q *qmodel.Quantizer) *EncodingState {
	if q == nil {
		return nil
	}
	return &EncodingState{
		Bitwidth:   q.Bitwidth,
		Symmetric:  q.Symmetric,
		Signed:     q.Signed,
		Encoding:   q.Encoding.String(),
		Calibrated: q.Initialized(),
		Scale:      q.Scale(),
	}
}
