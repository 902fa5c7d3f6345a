package lzma

import "testing"

func TestProbUpdateBounds(t *testing.T) {
	p := probInit
	for i := 0; i < 1000; i++ {
		p.inc()
		if p >= 1<<probbits {
			t.Fatalf("after %d increments: prob %d >= %d", i+1, p, 1<<probbits)
		}
	}
	if p <= probInit {
		t.Fatalf("increments did not raise the probability: got %d", p)
	}
	p = probInit
	for i := 0; i < 1000; i++ {
		p.dec()
		if p == 0 {
			t.Fatalf("after %d decrements: prob dropped to zero", i+1)
		}
	}
	if p >= probInit {
		t.Fatalf("decrements did not lower the probability: got %d", p)
	}
}

func TestProbBound(t *testing.T) {
	p := probInit
	r := uint32(0xFFFFFFFF)
	bound := p.bound(r)
	if bound == 0 || bound >= r {
		t.Fatalf("bound(%#x) = %#x; want a proper split", r, bound)
	}
}

func TestPriceSymmetry(t *testing.T) {
	// price0 and price1 must agree with price.
	for v := prob(1); v < 1<<probbits; v += 37 {
		if got, want := price(v, 0), price0(v); got != want {
			t.Fatalf("price(%d, 0) = %d; price0 = %d", v, got, want)
		}
		if got, want := price(v, 1), price1(v); got != want {
			t.Fatalf("price(%d, 1) = %d; price1 = %d", v, got, want)
		}
	}
}

func TestPriceMonotonic(t *testing.T) {
	// The more probable a 0 bit gets, the cheaper it must be to code.
	last := price0(prob(64))
	for v := prob(128); v < 1<<probbits; v += 64 {
		cur := price0(v)
		if cur > last {
			t.Fatalf("price0(%d) = %d > price0(%d) = %d", v, cur, v-64, last)
		}
		last = cur
	}
}

func TestNewProbs(t *testing.T) {
	probs := newProbs(0x300)
	if len(probs) != 0x300 {
		t.Fatalf("len(probs) = %d; want %d", len(probs), 0x300)
	}
	for i, p := range probs {
		if p != probInit {
			t.Fatalf("probs[%d] = %d; want %d", i, p, probInit)
		}
	}
}
