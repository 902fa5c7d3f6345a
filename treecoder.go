package lzma

// treeCoder codes a fixed-width integer as a path of range-coded bits
// through a binary tree of probabilities. Normal order consumes the
// symbol most significant bit first; reverse order least significant bit
// first. Reverse order is used for the low bits of large match distances.
type treeCoder struct {
	probs   []prob
	numBits uint32
}

func newTreeCoder(numBits uint32) *treeCoder {
	return &treeCoder{
		probs:   newProbs(1 << numBits),
		numBits: numBits,
	}
}

func (c *treeCoder) encode(e *rangeEncoder, symbol uint32) {
	m := uint32(1)
	for i := c.numBits; i != 0; {
		i--
		bit := (symbol >> i) & 1
		e.encodeBit(c.probs, m, bit)
		m = m<<1 | bit
	}
}

func (c *treeCoder) decode(d *rangeDecoder) uint32 {
	m := uint32(1)
	for i := c.numBits; i != 0; i-- {
		m = m<<1 + d.decodeBit(c.probs, m)
	}
	return m - 1<<c.numBits
}

func (c *treeCoder) reverseEncode(e *rangeEncoder, symbol uint32) {
	reverseEncodeIndex(e, c.probs, 0, c.numBits, symbol)
}

func (c *treeCoder) reverseDecode(d *rangeDecoder) uint32 {
	return reverseDecodeIndex(d, c.probs, 0, c.numBits)
}

func (c *treeCoder) getPrice(symbol uint32) uint32 {
	res := uint32(0)
	m := uint32(1)
	for i := c.numBits; i != 0; {
		i--
		bit := (symbol >> i) & 1
		res += price(c.probs[m], bit)
		m = m<<1 + bit
	}
	return res
}

func (c *treeCoder) reverseGetPrice(symbol uint32) uint32 {
	return reverseGetPriceIndex(c.probs, 0, c.numBits, symbol)
}

// The index variants below walk a tree that lives at an offset inside a
// larger probability bank. The distance model stores all its short
// reverse trees in one slice.

func reverseEncodeIndex(e *rangeEncoder, probs []prob, startIndex, numBits, symbol uint32) {
	m := uint32(1)
	for i := uint32(0); i < numBits; i++ {
		bit := symbol & 1
		e.encodeBit(probs, startIndex+m, bit)
		m = m<<1 | bit
		symbol >>= 1
	}
}

func reverseDecodeIndex(d *rangeDecoder, probs []prob, startIndex, numBits uint32) uint32 {
	m := uint32(1)
	res := uint32(0)
	for i := uint32(0); i < numBits; i++ {
		bit := d.decodeBit(probs, startIndex+m)
		m = m<<1 + bit
		res |= bit << i
	}
	return res
}

func reverseGetPriceIndex(probs []prob, startIndex, numBits, symbol uint32) uint32 {
	res := uint32(0)
	m := uint32(1)
	for i := numBits; i != 0; i-- {
		bit := symbol & 1
		symbol >>= 1
		res += price(probs[startIndex+m], bit)
		m = m<<1 | bit
	}
	return res
}
