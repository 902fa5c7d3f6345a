package lzma

// lenCoder codes match lengths. Two choice bits select between a low
// (2..9), mid (10..17) and high (18..273) bit tree; low and mid trees are
// banked by position state.
type lenCoder struct {
	choice []prob
	low    []*treeCoder
	mid    []*treeCoder
	high   *treeCoder
}

func newLenCoder(numPosStates uint32) *lenCoder {
	c := &lenCoder{
		choice: newProbs(2),
		low:    make([]*treeCoder, numPosStatesMax),
		mid:    make([]*treeCoder, numPosStatesMax),
		high:   newTreeCoder(highLenBits),
	}
	for i := uint32(0); i < numPosStates; i++ {
		c.low[i] = newTreeCoder(lowLenBits)
		c.mid[i] = newTreeCoder(midLenBits)
	}
	return c
}

// encode codes symbol = length - matchMinLen.
func (c *lenCoder) encode(e *rangeEncoder, symbol, posState uint32) {
	if symbol < lowLenSymbols {
		e.encodeBit(c.choice, 0, 0)
		c.low[posState].encode(e, symbol)
		return
	}
	symbol -= lowLenSymbols
	e.encodeBit(c.choice, 0, 1)
	if symbol < midLenSymbols {
		e.encodeBit(c.choice, 1, 0)
		c.mid[posState].encode(e, symbol)
	} else {
		e.encodeBit(c.choice, 1, 1)
		c.high.encode(e, symbol-midLenSymbols)
	}
}

func (c *lenCoder) decode(d *rangeDecoder, posState uint32) uint32 {
	if d.decodeBit(c.choice, 0) == 0 {
		return c.low[posState].decode(d)
	}
	if d.decodeBit(c.choice, 1) == 0 {
		return lowLenSymbols + c.mid[posState].decode(d)
	}
	return lowLenSymbols + midLenSymbols + c.high.decode(d)
}

// setPrices fills prices[st:st+numSymbols] with the cost of each length
// symbol for the given position state.
func (c *lenCoder) setPrices(prices []uint32, posState, numSymbols, st uint32) {
	a0 := price0(c.choice[0])
	a1 := price1(c.choice[0])
	b0 := a1 + price0(c.choice[1])
	b1 := a1 + price1(c.choice[1])

	var i uint32
	for i = 0; i < lowLenSymbols; i++ {
		if i >= numSymbols {
			return
		}
		prices[st+i] = a0 + c.low[posState].getPrice(i)
	}
	for ; i < lowLenSymbols+midLenSymbols; i++ {
		if i >= numSymbols {
			return
		}
		prices[st+i] = b0 + c.mid[posState].getPrice(i-lowLenSymbols)
	}
	for ; i < numSymbols; i++ {
		prices[st+i] = b1 + c.high.getPrice(i-lowLenSymbols-midLenSymbols)
	}
}

// lenPriceTableCoder caches length prices for the optimal parse. The
// table drifts as probabilities adapt and is refreshed after tableSize
// encodes per position state.
type lenPriceTableCoder struct {
	lc        *lenCoder
	prices    []uint32
	counters  []uint32
	tableSize uint32
}

func newLenPriceTableCoder(tableSize, numPosStates uint32) *lenPriceTableCoder {
	c := &lenPriceTableCoder{
		lc:        newLenCoder(numPosStates),
		prices:    make([]uint32, lenSymbols<<numPosStatesBitsMax),
		counters:  make([]uint32, numPosStatesMax),
		tableSize: tableSize,
	}
	for posState := uint32(0); posState < numPosStates; posState++ {
		c.updateTable(posState)
	}
	return c
}

func (c *lenPriceTableCoder) updateTable(posState uint32) {
	c.lc.setPrices(c.prices, posState, c.tableSize, posState*lenSymbols)
	c.counters[posState] = c.tableSize
}

func (c *lenPriceTableCoder) getPrice(symbol, posState uint32) uint32 {
	return c.prices[posState*lenSymbols+symbol]
}

func (c *lenPriceTableCoder) encode(e *rangeEncoder, symbol, posState uint32) {
	c.lc.encode(e, symbol, posState)
	c.counters[posState]--
	if c.counters[posState] == 0 {
		c.updateTable(posState)
	}
}
