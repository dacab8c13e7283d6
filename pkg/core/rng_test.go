package core

import "testing"

func TestStreamDeterministic(t *testing.T) {
	a := NewStream(42, 7, 123)
	b := NewStream(42, 7, 123)
	for i := 0; i < 16; i++ {
		if x, y := a.Float64(), b.Float64(); x != y {
			t.Fatalf("draw %d differs: %f vs %f", i, x, y)
		}
	}
}

func TestStreamsDifferAcrossCells(t *testing.T) {
	a := NewStream(42, 7, 123)
	b := NewStream(42, 7, 124)
	same := 0
	for i := 0; i < 16; i++ {
		if a.Float64() == b.Float64() {
			same++
		}
	}
	if same == 16 {
		t.Fatal("neighbouring cells produced identical streams")
	}
}

func TestBernoulliBounds(t *testing.T) {
	r := NewRNG(1)
	for i := 0; i < 100; i++ {
		if r.Bernoulli(0) {
			t.Fatal("p=0 must never fire")
		}
		if !r.Bernoulli(1) {
			t.Fatal("p=1 must always fire")
		}
	}
}

func TestUniformRange(t *testing.T) {
	r := NewRNG(9)
	for i := 0; i < 1000; i++ {
		v := r.Uniform(-0.2, 0.2)
		if v < -0.2 || v >= 0.2 {
			t.Fatalf("value %f outside [-0.2, 0.2)", v)
		}
	}
}
