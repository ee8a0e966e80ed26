package lit

import "testing"

func TestConstants(t *testing.T) {
	if ConstFalse != 0 {
		t.Errorf("ConstFalse = %d, want 0", ConstFalse)
	}
	if ConstTrue != 1 {
		t.Errorf("ConstTrue = %d, want 1", ConstTrue)
	}
	if Unassigned != 0xFFFFFFFF {
		t.Errorf("Unassigned = %#x, want 0xFFFFFFFF", uint32(Unassigned))
	}
}

func TestIsConstantVariableUnassigned(t *testing.T) {
	v0 := FromVariable(0)
	cases := []struct {
		l                               ID
		wantConst, wantVar, wantUnassgn bool
	}{
		{ConstFalse, true, false, false},
		{ConstTrue, true, false, false},
		{Unassigned, false, false, true},
		{v0, false, true, false},
		{Negate(v0), false, true, false},
	}
	for _, c := range cases {
		if got := IsConstant(c.l); got != c.wantConst {
			t.Errorf("IsConstant(%v) = %v, want %v", c.l, got, c.wantConst)
		}
		if got := IsVariable(c.l); got != c.wantVar {
			t.Errorf("IsVariable(%v) = %v, want %v", c.l, got, c.wantVar)
		}
		if got := IsUnassigned(c.l); got != c.wantUnassgn {
			t.Errorf("IsUnassigned(%v) = %v, want %v", c.l, got, c.wantUnassgn)
		}
	}
}

func TestFromVariableRoundTrip(t *testing.T) {
	for v := Variable(0); v < 10; v++ {
		l := FromVariable(v)
		if IsNegated(l) {
			t.Fatalf("FromVariable(%d) should be direct", v)
		}
		if got := VariableID(l); got != v {
			t.Errorf("VariableID(FromVariable(%d)) = %d", v, got)
		}
	}
}

func TestNegate(t *testing.T) {
	if Negate(ConstFalse) != ConstTrue {
		t.Error("Negate(false) != true")
	}
	if Negate(ConstTrue) != ConstFalse {
		t.Error("Negate(true) != false")
	}
	if Negate(Unassigned) != Unassigned {
		t.Error("Negate(unassigned) should be a no-op")
	}
	v := FromVariable(5)
	nv := Negate(v)
	if !IsNegated(nv) {
		t.Error("Negate(direct variable) should be negated")
	}
	if Negate(nv) != v {
		t.Error("double negation should restore original")
	}
}

func TestSubstitutePreservesSign(t *testing.T) {
	v := FromVariable(3)
	nv := Negate(v)
	if Substitute(v, 1) != ConstTrue {
		t.Error("substitute(direct, 1) should be true")
	}
	if Substitute(v, 0) != ConstFalse {
		t.Error("substitute(direct, 0) should be false")
	}
	if Substitute(nv, 1) != ConstFalse {
		t.Error("substitute(negated, 1) should be false")
	}
	if Substitute(nv, 0) != ConstTrue {
		t.Error("substitute(negated, 0) should be true")
	}
}

func TestResolveChasesTransitivelyWithSign(t *testing.T) {
	// v0 := v1, v1 := ~v2, v2 self-loops.
	assign := []ID{
		FromVariable(1),
		Negate(FromVariable(2)),
		FromVariable(2),
	}
	got := Resolve(FromVariable(0), assign)
	want := Negate(FromVariable(2))
	if got != want {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
	// Negated probe flips through the chain too.
	got = Resolve(Negate(FromVariable(0)), assign)
	want = FromVariable(2)
	if got != want {
		t.Errorf("Resolve(negated) = %v, want %v", got, want)
	}
}

func TestResolveStopsAtConstant(t *testing.T) {
	assign := []ID{ConstTrue}
	if got := Resolve(FromVariable(0), assign); got != ConstTrue {
		t.Errorf("Resolve = %v, want ConstTrue", got)
	}
	if got := Resolve(Negate(FromVariable(0)), assign); got != ConstFalse {
		t.Errorf("Resolve(negated) = %v, want ConstFalse", got)
	}
}

func TestGeneratorMonotonic(t *testing.T) {
	g := NewGenerator()
	var prev ID = Unassigned
	for i := 0; i < 5; i++ {
		l := g.Next()
		if i > 0 && VariableID(l) != VariableID(prev)+1 {
			t.Fatalf("Generator.Next() not monotonic at step %d", i)
		}
		prev = l
	}
	if g.Count() != 5 {
		t.Errorf("Count() = %d, want 5", g.Count())
	}
}

func TestGeneratorReset(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 10; i++ {
		g.Next()
	}
	g.Reset(3)
	if g.Count() != 3 {
		t.Errorf("Count() after Reset(3) = %d, want 3", g.Count())
	}
	// Reset never raises the bound.
	g.Reset(100)
	if g.Count() != 3 {
		t.Errorf("Reset should never raise the bound, got %d", g.Count())
	}
}
