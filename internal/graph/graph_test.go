package graph

import "testing"

func TestKindCapabilities(t *testing.T) {
	tests := []struct {
		kind          Kind
		mathInvariant bool
		varIn         bool
		varOut        bool
	}{
		{KindReshape, true, false, false},
		{KindPermute, true, false, false},
		{KindShape, true, false, false},
		{KindCast, true, false, false},
		{KindChannelShuffle, true, false, false},
		{KindIdentity, true, false, false},
		{KindConcat, false, true, false},
		{KindSplit, false, false, true},
		{KindLinear, false, false, false},
		{KindMatMul, false, false, false},
	}
	for _, tt := range tests {
		if got := tt.kind.MathInvariant(); got != tt.mathInvariant {
			t.Errorf("%s.MathInvariant() = %v, want %v", tt.kind, got, tt.mathInvariant)
		}
		if got := tt.kind.VariadicInput(); got != tt.varIn {
			t.Errorf("%s.VariadicInput() = %v, want %v", tt.kind, got, tt.varIn)
		}
		if got := tt.kind.VariadicOutput(); got != tt.varOut {
			t.Errorf("%s.VariadicOutput() = %v, want %v", tt.kind, got, tt.varOut)
		}
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for k, info := range kinds {
		parsed, err := ParseKind(info.name)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", info.name, err)
		}
		if parsed != k {
			t.Errorf("ParseKind(%q) = %v, want %v", info.name, parsed, k)
		}
	}
	if _, err := ParseKind("definitely-not-a-kind"); err == nil {
		t.Error("ParseKind accepted an unknown kind name")
	}
}

func TestGraphWiring(t *testing.T) {
	g := New("model")
	mustProduct(t, g, "x", []int{1, 8})
	mustProduct(t, g, "t1", []int{1, 8})
	mustProduct(t, g, "t2", []int{1, 8})

	fc1, err := g.AddOp(KindLinear, "model.fc1", true, []string{"x"}, []string{"t1"})
	if err != nil {
		t.Fatal(err)
	}
	fc2, err := g.AddOp(KindLinear, "model.fc2", true, []string{"t1"}, []string{"t2"})
	if err != nil {
		t.Fatal(err)
	}

	t1, _ := g.Product("t1")
	if t1.Producer != fc1 {
		t.Errorf("t1 producer = %v, want fc1", t1.Producer)
	}
	if len(t1.Consumers) != 1 || t1.Consumers[0] != fc2 {
		t.Errorf("t1 consumers = %v, want [fc2]", t1.Consumers)
	}

	ops := fc2.InputOps()
	if len(ops) != 1 || ops[0] != fc1 {
		t.Errorf("fc2.InputOps() = %v, want [fc1]", ops)
	}
	if got := fc1.InputOps(); len(got) != 0 {
		t.Errorf("fc1.InputOps() = %v, want none (root input)", got)
	}
}

func TestGraphWiringErrors(t *testing.T) {
	g := New("model")
	mustProduct(t, g, "x", []int{4})
	mustProduct(t, g, "y", []int{4})

	if _, err := g.AddProduct("x", nil); err == nil {
		t.Error("duplicate product accepted")
	}
	if _, err := g.AddOp(KindLinear, "model.fc", true, []string{"missing"}, []string{"y"}); err == nil {
		t.Error("unknown input product accepted")
	}
	if _, err := g.AddOp(KindLinear, "model.fc", true, []string{"x"}, []string{"y"}); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddOp(KindLinear, "model.fc2", true, []string{"x"}, []string{"y"}); err == nil {
		t.Error("second producer for a product accepted")
	}
}

func TestModuleName(t *testing.T) {
	g := New("model")

	tests := []struct {
		name      string
		op        *Op
		want      string
		wantFound bool
	}{
		{"regular", &Op{DottedName: "model.encoder.fc1", HasModule: true}, "encoder.fc1", true},
		{"synthetic", &Op{DottedName: "model.add_1", HasModule: false}, "", false},
		{"root only", &Op{DottedName: "model", HasModule: true}, "", false},
		{"foreign prefix", &Op{DottedName: "other.fc1", HasModule: true}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := g.ModuleName(tt.op)
			if got != tt.want || found != tt.wantFound {
				t.Errorf("ModuleName() = (%q, %v), want (%q, %v)", got, found, tt.want, tt.wantFound)
			}
		})
	}
}

func mustProduct(t *testing.T, g *Graph, name string, shape []int) *Product {
	t.Helper()
	p, err := g.AddProduct(name, shape)
	if err != nil {
		t.Fatal(err)
	}
	return p
}
