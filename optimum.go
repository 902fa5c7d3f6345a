package lzma

const (
	infinityPrice = 0x0FFFFFFF
	numOpts       = 1 << 12
)

// optNode is one position in the optimal-parse graph. price is the
// cheapest known cost to reach the position; posPrev and backPrev
// describe the edge that achieved it. prev1IsChar and prev2 encode the
// combined literal+rep edges the parser also considers. backs caches the
// rep distances valid at the node.
type optNode struct {
	state     uint32
	posPrev2  uint32
	backPrev2 uint32
	price     uint32
	posPrev   uint32
	backPrev  uint32
	backs     [numRepDistances]uint32

	prev1IsChar bool
	prev2       bool
}

func (o *optNode) makeAsChar() {
	o.backPrev = 0xFFFFFFFF
	o.prev1IsChar = false
}

func (o *optNode) makeAsShortRep() {
	o.backPrev = 0
	o.prev1IsChar = false
}

func (o *optNode) isShortRep() bool {
	return o.backPrev == 0
}

// backward walks the cheapest path found by getOptimum back to the
// start, reversing the posPrev links so the symbols can be emitted in
// stream order.
func (z *encoder) backward(cur uint32) uint32 {
	z.optimumEndIndex = cur
	posMem := z.optimum[cur].posPrev
	backMem := z.optimum[cur].backPrev
	for {
		if z.optimum[cur].prev1IsChar {
			z.optimum[posMem].makeAsChar()
			z.optimum[posMem].posPrev = posMem - 1
			if z.optimum[cur].prev2 {
				z.optimum[posMem-1].prev1IsChar = false
				z.optimum[posMem-1].posPrev = z.optimum[cur].posPrev2
				z.optimum[posMem-1].backPrev = z.optimum[cur].backPrev2
			}
		}
		posPrev := posMem
		backCur := backMem
		backMem = z.optimum[posPrev].backPrev
		posMem = z.optimum[posPrev].posPrev
		z.optimum[posPrev].backPrev = backCur
		z.optimum[posPrev].posPrev = cur
		cur = posPrev
		if cur == 0 {
			break
		}
	}
	z.backRes = z.optimum[0].backPrev
	z.optimumCurrentIndex = z.optimum[0].posPrev
	return z.optimumCurrentIndex
}

// getOptimum returns the length of the next symbol to emit at the given
// stream position and leaves its distance in backRes. A returned length
// of 1 with backRes 0xFFFFFFFF means a literal; backRes below
// numRepDistances selects a rep match; anything larger is a simple
// match at distance backRes-numRepDistances.
//
// The parser builds a shortest-path table over the next positions,
// bounded by the number of fast bytes: matches at least that long are
// taken greedily.
func (z *encoder) getOptimum(position uint32) uint32 {
	if z.optimumEndIndex != z.optimumCurrentIndex {
		lenRes := z.optimum[z.optimumCurrentIndex].posPrev - z.optimumCurrentIndex
		z.backRes = z.optimum[z.optimumCurrentIndex].backPrev
		z.optimumCurrentIndex = z.optimum[z.optimumCurrentIndex].posPrev
		return lenRes
	}

	z.optimumEndIndex = 0
	z.optimumCurrentIndex = 0
	var lenMain uint32
	if !z.longestMatchFound {
		lenMain = z.readMatchDistances()
	} else {
		lenMain = z.longestMatchLen
		z.longestMatchFound = false
	}
	numDistPairs := z.numDistPairs

	availableBytes := z.mf.win.available() + 1
	if availableBytes < 2 {
		z.backRes = 0xFFFFFFFF
		return 1
	}
	if availableBytes > matchMaxLen {
		availableBytes = matchMaxLen
	}

	repMaxIndex := uint32(0)
	for i := uint32(0); i < numRepDistances; i++ {
		z.reps[i] = z.repDistances[i]
		z.repLens[i] = z.mf.win.getMatchLen(-1, z.reps[i], matchMaxLen)
		if z.repLens[i] > z.repLens[repMaxIndex] {
			repMaxIndex = i
		}
	}
	if z.repLens[repMaxIndex] >= z.cfg.FastBytes {
		z.backRes = repMaxIndex
		lenRes := z.repLens[repMaxIndex]
		z.movePos(lenRes - 1)
		return lenRes
	}

	if lenMain >= z.cfg.FastBytes {
		z.backRes = z.matchDists[numDistPairs-1] + numRepDistances
		z.movePos(lenMain - 1)
		return lenMain
	}

	curByte := z.mf.win.getIndexByte(-1)
	matchByte := z.mf.win.getIndexByte(-int32(z.repDistances[0]) - 2)
	if lenMain < 2 && curByte != matchByte && z.repLens[repMaxIndex] < 2 {
		z.backRes = 0xFFFFFFFF
		return 1
	}

	z.optimum[0].state = z.state
	posState := position & z.posStateMask
	z.optimum[1].price = price0(z.isMatch[z.state<<numPosStatesBitsMax+posState]) +
		z.litCoder.subCoder(position, z.prevByte).getPrice(!stateIsLit(z.state), matchByte, curByte)
	z.optimum[1].makeAsChar()

	matchPrice := price1(z.isMatch[z.state<<numPosStatesBitsMax+posState])
	repMatchPrice := matchPrice + price1(z.isRep[z.state])
	if matchByte == curByte {
		shortRepPrice := repMatchPrice + z.getRepLen1Price(z.state, posState)
		if shortRepPrice < z.optimum[1].price {
			z.optimum[1].price = shortRepPrice
			z.optimum[1].makeAsShortRep()
		}
	}

	lenEnd := maxUint32(lenMain, z.repLens[repMaxIndex])
	if lenEnd < 2 {
		z.backRes = z.optimum[1].backPrev
		return 1
	}

	z.optimum[1].posPrev = 0
	z.optimum[0].backs = z.reps

	for l := lenEnd; l >= 2; l-- {
		z.optimum[l].price = infinityPrice
	}

	for i := uint32(0); i < numRepDistances; i++ {
		repLen := z.repLens[i]
		if repLen < 2 {
			continue
		}
		price := repMatchPrice + z.getPureRepPrice(i, z.state, posState)
		for ; repLen >= 2; repLen-- {
			curAndLenPrice := price + z.repLenCoder.getPrice(repLen-2, posState)
			opt := &z.optimum[repLen]
			if curAndLenPrice < opt.price {
				opt.price = curAndLenPrice
				opt.posPrev = 0
				opt.backPrev = i
				opt.prev1IsChar = false
			}
		}
	}

	normalMatchPrice := matchPrice + price0(z.isRep[z.state])
	length := uint32(2)
	if z.repLens[0] >= 2 {
		length = z.repLens[0] + 1
	}
	if length <= lenMain {
		offs := uint32(0)
		for length > z.matchDists[offs] {
			offs += 2
		}
		for ; ; length++ {
			distance := z.matchDists[offs+1]
			curAndLenPrice := normalMatchPrice + z.getPosLenPrice(distance, length, posState)
			opt := &z.optimum[length]
			if curAndLenPrice < opt.price {
				opt.price = curAndLenPrice
				opt.posPrev = 0
				opt.backPrev = distance + numRepDistances
				opt.prev1IsChar = false
			}
			if length == z.matchDists[offs] {
				offs += 2
				if offs == numDistPairs {
					break
				}
			}
		}
	}

	cur := uint32(0)
	for {
		cur++
		if cur == lenEnd {
			return z.backward(cur)
		}

		newLen := z.readMatchDistances()
		numDistPairs = z.numDistPairs
		if newLen >= z.cfg.FastBytes {
			z.longestMatchLen = newLen
			z.longestMatchFound = true
			return z.backward(cur)
		}

		position++
		posPrev := z.optimum[cur].posPrev
		var state uint32
		if z.optimum[cur].prev1IsChar {
			posPrev--
			if z.optimum[cur].prev2 {
				state = z.optimum[z.optimum[cur].posPrev2].state
				if z.optimum[cur].backPrev2 < numRepDistances {
					state = stateAfterRep(state)
				} else {
					state = stateAfterMatch(state)
				}
			} else {
				state = z.optimum[posPrev].state
			}
			state = stateAfterLit(state)
		} else {
			state = z.optimum[posPrev].state
		}
		if posPrev == cur-1 {
			if z.optimum[cur].isShortRep() {
				state = stateAfterShortRep(state)
			} else {
				state = stateAfterLit(state)
			}
		} else {
			var pos uint32
			if z.optimum[cur].prev1IsChar && z.optimum[cur].prev2 {
				posPrev = z.optimum[cur].posPrev2
				pos = z.optimum[cur].backPrev2
				state = stateAfterRep(state)
			} else {
				pos = z.optimum[cur].backPrev
				if pos < numRepDistances {
					state = stateAfterRep(state)
				} else {
					state = stateAfterMatch(state)
				}
			}
			opt := &z.optimum[posPrev]
			if pos < numRepDistances {
				z.reps[0] = opt.backs[pos]
				k := 1
				for i := uint32(0); i < numRepDistances; i++ {
					if i != pos {
						z.reps[k] = opt.backs[i]
						k++
					}
				}
			} else {
				z.reps[0] = pos - numRepDistances
				z.reps[1] = opt.backs[0]
				z.reps[2] = opt.backs[1]
				z.reps[3] = opt.backs[2]
			}
		}
		z.optimum[cur].state = state
		z.optimum[cur].backs = z.reps

		curPrice := z.optimum[cur].price
		curByte = z.mf.win.getIndexByte(-1)
		matchByte = z.mf.win.getIndexByte(-int32(z.reps[0]) - 2)
		posState = position & z.posStateMask
		curAnd1Price := curPrice + price0(z.isMatch[state<<numPosStatesBitsMax+posState]) +
			z.litCoder.subCoder(position, z.mf.win.getIndexByte(-2)).
				getPrice(!stateIsLit(state), matchByte, curByte)

		nextOptimum := &z.optimum[cur+1]
		nextIsChar := false
		if curAnd1Price < nextOptimum.price {
			nextOptimum.price = curAnd1Price
			nextOptimum.posPrev = cur
			nextOptimum.makeAsChar()
			nextIsChar = true
		}

		matchPrice = curPrice + price1(z.isMatch[state<<numPosStatesBitsMax+posState])
		repMatchPrice = matchPrice + price1(z.isRep[state])
		if matchByte == curByte && !(nextOptimum.posPrev < cur && nextOptimum.backPrev == 0) {
			shortRepPrice := repMatchPrice + z.getRepLen1Price(state, posState)
			if shortRepPrice <= nextOptimum.price {
				nextOptimum.price = shortRepPrice
				nextOptimum.posPrev = cur
				nextOptimum.makeAsShortRep()
				nextIsChar = true
			}
		}

		availableBytesFull := z.mf.win.available() + 1
		availableBytesFull = minUint32(numOpts-1-cur, availableBytesFull)
		availableBytes = availableBytesFull
		if availableBytes < 2 {
			continue
		}
		if availableBytes > z.cfg.FastBytes {
			availableBytes = z.cfg.FastBytes
		}

		// literal followed by a rep0 match
		if !nextIsChar && matchByte != curByte {
			t := minUint32(availableBytesFull-1, z.cfg.FastBytes)
			lenTest2 := z.mf.win.getMatchLen(0, z.reps[0], t)
			if lenTest2 >= 2 {
				state2 := stateAfterLit(state)
				posStateNext := (position + 1) & z.posStateMask
				nextRepMatchPrice := curAnd1Price +
					price1(z.isMatch[state2<<numPosStatesBitsMax+posStateNext]) +
					price1(z.isRep[state2])
				offset := cur + 1 + lenTest2
				for lenEnd < offset {
					lenEnd++
					z.optimum[lenEnd].price = infinityPrice
				}
				curAndLenPrice := nextRepMatchPrice + z.getRepPrice(0, lenTest2, state2, posStateNext)
				opt := &z.optimum[offset]
				if curAndLenPrice < opt.price {
					opt.price = curAndLenPrice
					opt.posPrev = cur + 1
					opt.backPrev = 0
					opt.prev1IsChar = true
					opt.prev2 = false
				}
			}
		}

		startLen := uint32(2)
		for repIndex := uint32(0); repIndex < numRepDistances; repIndex++ {
			lenTest := z.mf.win.getMatchLen(-1, z.reps[repIndex], availableBytes)
			if lenTest < 2 {
				continue
			}
			lenTestTemp := lenTest
			for lenEnd < cur+lenTest {
				lenEnd++
				z.optimum[lenEnd].price = infinityPrice
			}
			for ; lenTest >= 2; lenTest-- {
				curAndLenPrice := repMatchPrice + z.getRepPrice(repIndex, lenTest, state, posState)
				opt := &z.optimum[cur+lenTest]
				if curAndLenPrice < opt.price {
					opt.price = curAndLenPrice
					opt.posPrev = cur
					opt.backPrev = repIndex
					opt.prev1IsChar = false
				}
			}
			lenTest = lenTestTemp
			if repIndex == 0 {
				startLen = lenTest + 1
			}

			// rep match, literal, rep0 match
			if lenTest < availableBytesFull {
				t := minUint32(availableBytesFull-1-lenTest, z.cfg.FastBytes)
				lenTest2 := z.mf.win.getMatchLen(int32(lenTest), z.reps[repIndex], t)
				if lenTest2 >= 2 {
					state2 := stateAfterRep(state)
					posStateNext := (position + lenTest) & z.posStateMask
					curAndLenCharPrice := repMatchPrice +
						z.getRepPrice(repIndex, lenTest, state, posState) +
						price0(z.isMatch[state2<<numPosStatesBitsMax+posStateNext]) +
						z.litCoder.subCoder(position+lenTest, z.mf.win.getIndexByte(int32(lenTest)-2)).getPrice(
							true,
							z.mf.win.getIndexByte(int32(lenTest)-1-int32(z.reps[repIndex]+1)),
							z.mf.win.getIndexByte(int32(lenTest)-1))
					state2 = stateAfterLit(state2)
					posStateNext = (position + lenTest + 1) & z.posStateMask
					nextMatchPrice := curAndLenCharPrice +
						price1(z.isMatch[state2<<numPosStatesBitsMax+posStateNext])
					nextRepMatchPrice := nextMatchPrice + price1(z.isRep[state2])

					offset := lenTest + 1 + lenTest2
					for lenEnd < cur+offset {
						lenEnd++
						z.optimum[lenEnd].price = infinityPrice
					}
					curAndLenPrice := nextRepMatchPrice + z.getRepPrice(0, lenTest2, state2, posStateNext)
					opt := &z.optimum[cur+offset]
					if curAndLenPrice < opt.price {
						opt.price = curAndLenPrice
						opt.posPrev = cur + lenTest + 1
						opt.backPrev = 0
						opt.prev1IsChar = true
						opt.prev2 = true
						opt.posPrev2 = cur
						opt.backPrev2 = repIndex
					}
				}
			}
		}

		if newLen > availableBytes {
			newLen = availableBytes
			for numDistPairs = 0; newLen > z.matchDists[numDistPairs]; numDistPairs += 2 {
			}
			z.matchDists[numDistPairs] = newLen
			numDistPairs += 2
		}
		if newLen >= startLen {
			normalMatchPrice = matchPrice + price0(z.isRep[state])
			for lenEnd < cur+newLen {
				lenEnd++
				z.optimum[lenEnd].price = infinityPrice
			}
			offs := uint32(0)
			for startLen > z.matchDists[offs] {
				offs += 2
			}

			for lenTest := startLen; ; lenTest++ {
				curBack := z.matchDists[offs+1]
				curAndLenPrice := normalMatchPrice + z.getPosLenPrice(curBack, lenTest, posState)
				opt := &z.optimum[cur+lenTest]
				if curAndLenPrice < opt.price {
					opt.price = curAndLenPrice
					opt.posPrev = cur
					opt.backPrev = curBack + numRepDistances
					opt.prev1IsChar = false
				}
				if lenTest == z.matchDists[offs] {
					// match, literal, rep0 match
					if lenTest < availableBytesFull {
						t := minUint32(availableBytesFull-1-lenTest, z.cfg.FastBytes)
						lenTest2 := z.mf.win.getMatchLen(int32(lenTest), curBack, t)
						if lenTest2 >= 2 {
							state2 := stateAfterMatch(state)
							posStateNext := (position + lenTest) & z.posStateMask
							curAndLenCharPrice := curAndLenPrice +
								price0(z.isMatch[state2<<numPosStatesBitsMax+posStateNext]) +
								z.litCoder.subCoder(position+lenTest, z.mf.win.getIndexByte(int32(lenTest)-2)).getPrice(
									true,
									z.mf.win.getIndexByte(int32(lenTest)-int32(curBack+1)-1),
									z.mf.win.getIndexByte(int32(lenTest)-1))

							state2 = stateAfterLit(state2)
							posStateNext = (position + lenTest + 1) & z.posStateMask
							nextMatchPrice := curAndLenCharPrice +
								price1(z.isMatch[state2<<numPosStatesBitsMax+posStateNext])
							nextRepMatchPrice := nextMatchPrice + price1(z.isRep[state2])
							offset := lenTest + 1 + lenTest2
							for lenEnd < cur+offset {
								lenEnd++
								z.optimum[lenEnd].price = infinityPrice
							}
							curAndLenPrice = nextRepMatchPrice + z.getRepPrice(0, lenTest2, state2, posStateNext)
							opt = &z.optimum[cur+offset]
							if curAndLenPrice < opt.price {
								opt.price = curAndLenPrice
								opt.posPrev = cur + lenTest + 1
								opt.backPrev = 0
								opt.prev1IsChar = true
								opt.prev2 = true
								opt.posPrev2 = cur
								opt.backPrev2 = curBack + numRepDistances
							}
						}
					}
					offs += 2
					if offs == numDistPairs {
						break
					}
				}
			}
		}
	}
}
