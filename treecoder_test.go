package lzma

import (
	"bytes"
	"testing"
)

func TestTreeCoderRoundtrip(t *testing.T) {
	const numBits = 6
	var buf bytes.Buffer
	e := newRangeEncoder(&buf)
	c := newTreeCoder(numBits)
	for sym := uint32(0); sym < 1<<numBits; sym++ {
		c.encode(e, sym)
	}
	e.flush()

	d, err := newRangeDecoder(&buf)
	if err != nil {
		t.Fatalf("newRangeDecoder error %s", err)
	}
	c = newTreeCoder(numBits)
	for want := uint32(0); want < 1<<numBits; want++ {
		got := c.decode(d)
		if got != want {
			t.Fatalf("decode: got %d; want %d", got, want)
		}
	}
}

func TestTreeCoderReverseRoundtrip(t *testing.T) {
	const numBits = 4
	var buf bytes.Buffer
	e := newRangeEncoder(&buf)
	c := newTreeCoder(numBits)
	for sym := uint32(0); sym < 1<<numBits; sym++ {
		c.reverseEncode(e, sym)
	}
	e.flush()

	d, err := newRangeDecoder(&buf)
	if err != nil {
		t.Fatalf("newRangeDecoder error %s", err)
	}
	c = newTreeCoder(numBits)
	for want := uint32(0); want < 1<<numBits; want++ {
		got := c.reverseDecode(d)
		if got != want {
			t.Fatalf("reverseDecode: got %d; want %d", got, want)
		}
	}
}

func TestReverseIndexRoundtrip(t *testing.T) {
	// several small trees at offsets inside one bank, as the distance
	// model lays them out
	probs := newProbs(128)
	type coded struct {
		start   uint32
		numBits uint32
		symbol  uint32
	}
	values := []coded{
		{1, 2, 3},
		{10, 3, 5},
		{30, 5, 17},
		{70, 4, 9},
	}

	var buf bytes.Buffer
	e := newRangeEncoder(&buf)
	for _, x := range values {
		reverseEncodeIndex(e, probs, x.start, x.numBits, x.symbol)
	}
	e.flush()

	probs = newProbs(128)
	d, err := newRangeDecoder(&buf)
	if err != nil {
		t.Fatalf("newRangeDecoder error %s", err)
	}
	for i, x := range values {
		got := reverseDecodeIndex(d, probs, x.start, x.numBits)
		if got != x.symbol {
			t.Fatalf("value %d: got %d; want %d", i, got, x.symbol)
		}
	}
}

func TestLitSubCoderRoundtrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	var buf bytes.Buffer
	e := newRangeEncoder(&buf)
	c := newLitSubCoder()
	for _, b := range data {
		c.encode(e, b)
	}
	e.flush()

	d, err := newRangeDecoder(&buf)
	if err != nil {
		t.Fatalf("newRangeDecoder error %s", err)
	}
	c = newLitSubCoder()
	for i, want := range data {
		got := c.decode(d)
		if got != want {
			t.Fatalf("byte %d: got %q; want %q", i, got, want)
		}
	}
}

func TestLitSubCoderMatchedRoundtrip(t *testing.T) {
	symbols := []byte{0x00, 0x41, 0x41, 0x42, 0xFF, 0x80}
	matches := []byte{0x00, 0x41, 0x40, 0x42, 0x7F, 0x80}

	var buf bytes.Buffer
	e := newRangeEncoder(&buf)
	c := newLitSubCoder()
	for i := range symbols {
		c.encodeMatched(e, matches[i], symbols[i])
	}
	e.flush()

	d, err := newRangeDecoder(&buf)
	if err != nil {
		t.Fatalf("newRangeDecoder error %s", err)
	}
	c = newLitSubCoder()
	for i, want := range symbols {
		got := c.decodeMatched(d, matches[i])
		if got != want {
			t.Fatalf("byte %d: got %#x; want %#x", i, got, want)
		}
	}
}

func TestLitCoderSubCoderSelection(t *testing.T) {
	// lc=3, lp=0: the sub-coder depends on the three top bits of the
	// previous byte only.
	c := newLitCoder(0, 3)
	if got, want := len(c.coders), 8; got != want {
		t.Fatalf("len(coders) = %d; want %d", got, want)
	}
	a := c.subCoder(5, 0xE0)
	b := c.subCoder(99, 0xFF)
	if &a.probs[0] != &b.probs[0] {
		t.Fatalf("sub-coders for prev bytes 0xE0 and 0xFF differ")
	}
	x := c.subCoder(5, 0x00)
	if &a.probs[0] == &x.probs[0] {
		t.Fatalf("sub-coders for prev bytes 0xE0 and 0x00 are the same")
	}
}
