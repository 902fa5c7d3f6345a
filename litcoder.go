package lzma

// litSubCoder codes one literal byte as eight tree-context bits. When the
// previous symbol was a match, decoding runs in matched mode: the bits
// are coded against the byte found at the rep0 distance until the first
// divergence, then plain coding takes over.
type litSubCoder struct {
	probs []prob
}

func newLitSubCoder() litSubCoder {
	return litSubCoder{probs: newProbs(0x300)}
}

func (c litSubCoder) encode(e *rangeEncoder, symbol byte) {
	sym := uint32(symbol)
	ctx := uint32(1)
	for i := uint32(7); int32(i) >= 0; i-- {
		bit := (sym >> i) & 1
		e.encodeBit(c.probs, ctx, bit)
		ctx = ctx<<1 | bit
	}
}

func (c litSubCoder) encodeMatched(e *rangeEncoder, matchByte, symbol byte) {
	match := uint32(matchByte)
	sym := uint32(symbol)
	ctx := uint32(1)
	same := true
	for i := uint32(7); int32(i) >= 0; i-- {
		bit := (sym >> i) & 1
		index := ctx
		if same {
			matchBit := (match >> i) & 1
			index += (1 + matchBit) << 8
			same = matchBit == bit
		}
		e.encodeBit(c.probs, index, bit)
		ctx = ctx<<1 | bit
	}
}

func (c litSubCoder) decode(d *rangeDecoder) byte {
	sym := uint32(1)
	for sym < 0x100 {
		sym = sym<<1 | d.decodeBit(c.probs, sym)
	}
	return byte(sym)
}

func (c litSubCoder) decodeMatched(d *rangeDecoder, matchByte byte) byte {
	match := uint32(matchByte)
	sym := uint32(1)
	for sym < 0x100 {
		matchBit := (match >> 7) & 1
		match <<= 1
		bit := d.decodeBit(c.probs, (1+matchBit)<<8+sym)
		sym = sym<<1 | bit
		if matchBit != bit {
			for sym < 0x100 {
				sym = sym<<1 | d.decodeBit(c.probs, sym)
			}
			break
		}
	}
	return byte(sym)
}

func (c litSubCoder) getPrice(matchMode bool, matchByte, symbol byte) uint32 {
	match := uint32(matchByte)
	sym := uint32(symbol)
	res := uint32(0)
	ctx := uint32(1)
	i := uint32(7)
	if matchMode {
		for ; int32(i) >= 0; i-- {
			matchBit := (match >> i) & 1
			bit := (sym >> i) & 1
			res += price(c.probs[(1+matchBit)<<8+ctx], bit)
			ctx = ctx<<1 | bit
			if matchBit != bit {
				i--
				break
			}
		}
	}
	for ; int32(i) >= 0; i-- {
		bit := (sym >> i) & 1
		res += price(c.probs[ctx], bit)
		ctx = ctx<<1 | bit
	}
	return res
}

// litCoder selects a literal sub-coder by stream position and the
// previous byte, controlled by the lp and lc properties.
type litCoder struct {
	coders  []litSubCoder
	lcBits  uint32
	posMask uint32
}

func newLitCoder(lp, lc uint32) *litCoder {
	n := uint32(1) << (lc + lp)
	c := &litCoder{
		coders:  make([]litSubCoder, n),
		lcBits:  lc,
		posMask: 1<<lp - 1,
	}
	for i := uint32(0); i < n; i++ {
		c.coders[i] = newLitSubCoder()
	}
	return c
}

func (c *litCoder) subCoder(pos uint32, prevByte byte) litSubCoder {
	return c.coders[(pos&c.posMask)<<c.lcBits+uint32(prevByte)>>(8-c.lcBits)]
}
