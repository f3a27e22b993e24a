package graph

import "fmt"

// Kind identifies the operation type of a graph node.
type Kind int

const (
	KindUnknown Kind = iota
	KindInput
	KindLinear
	KindConv
	KindMatMul
	KindAdd
	KindMul
	KindReLU
	KindSigmoid
	KindSoftmax
	KindLayerNorm
	KindEmbedding
	KindPool
	KindConcat
	KindSplit
	KindReshape
	KindPermute
	KindShape
	KindCast
	KindChannelShuffle
	KindIdentity
)

// kindInfo carries the per-kind capabilities. They are fixed here, at
// table-definition time, so traversals test a flag instead of matching
// type sets.
type kindInfo struct {
	name string

	// mathInvariant ops pass values through unchanged and only alter
	// layout or metadata; encoding propagation skips through them.
	mathInvariant bool

	// variadicInput/variadicOutput ops take or produce a statically
	// unknown number of tensors and expose a single quantizer slot
	// shared by all of them.
	variadicInput  bool
	variadicOutput bool
}

var kinds = map[Kind]kindInfo{
	KindUnknown:        {name: "unknown"},
	KindInput:          {name: "input"},
	KindLinear:         {name: "linear"},
	KindConv:           {name: "conv"},
	KindMatMul:         {name: "matmul"},
	KindAdd:            {name: "add"},
	KindMul:            {name: "mul"},
	KindReLU:           {name: "relu"},
	KindSigmoid:        {name: "sigmoid"},
	KindSoftmax:        {name: "softmax"},
	KindLayerNorm:      {name: "layernorm"},
	KindEmbedding:      {name: "embedding"},
	KindPool:           {name: "pool"},
	KindConcat:         {name: "concat", variadicInput: true},
	KindSplit:          {name: "split", variadicOutput: true},
	KindReshape:        {name: "reshape", mathInvariant: true},
	KindPermute:        {name: "permute", mathInvariant: true},
	KindShape:          {name: "shape", mathInvariant: true},
	KindCast:           {name: "cast", mathInvariant: true},
	KindChannelShuffle: {name: "channelshuffle", mathInvariant: true},
	KindIdentity:       {name: "identity", mathInvariant: true},
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kinds))
	for k, info := range kinds {
		m[info.name] = k
	}
	return m
}()

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// MathInvariant reports whether ops of this kind preserve numeric
// values (reshape, permute, shape, cast, channel shuffle, identity).
func (k Kind) MathInvariant() bool {
	return kinds[k].mathInvariant
}

// VariadicInput reports whether ops of this kind share one input
// quantizer slot across all input tensors (concat).
func (k Kind) VariadicInput() bool {
	return kinds[k].variadicInput
}

// VariadicOutput reports whether ops of this kind share one output
// quantizer slot across all output tensors (split).
func (k Kind) VariadicOutput() bool {
	return kinds[k].variadicOutput
}

// ParseKind resolves a kind from its interchange-format name.
func ParseKind(name string) (Kind, error) {
	k, ok := kindsByName[name]
	if !ok {
		return KindUnknown, fmt.Errorf("unknown op kind %q", name)
	}
	return k, nil
}
