package lzma

import "io"

// encoder drives a compression session: the match finder feeds the
// optimal parser, whose decisions are coded by the range encoder.
type encoder struct {
	re *rangeEncoder
	mf *binTree

	cfg WriterConfig

	optimum []optNode

	isMatch    []prob
	isRep      []prob
	isRepG0    []prob
	isRepG1    []prob
	isRepG2    []prob
	isRep0Long []prob

	posSlotCoders [lenToPosStates]*treeCoder
	posEncoders   []prob
	posAlignCoder *treeCoder

	lenCoder    *lenPriceTableCoder
	repLenCoder *lenPriceTableCoder

	litCoder *litCoder

	matchDists []uint32

	longestMatchLen   uint32
	numDistPairs      uint32
	longestMatchFound bool

	// bytes the match finder is ahead of the coding position
	additionalOffset uint32

	optimumEndIndex     uint32
	optimumCurrentIndex uint32

	posSlotPrices   []uint32
	distancesPrices []uint32
	alignPrices     []uint32
	tempPrices      []uint32
	alignPriceCount uint32
	matchPriceCount uint32

	distTableSize uint32
	posStateMask  uint32

	nowPos   int64
	finished bool

	state        uint32
	prevByte     byte
	repDistances [numRepDistances]uint32

	reps    [numRepDistances]uint32
	repLens [numRepDistances]uint32
	backRes uint32

	progress Progress
}

// newEncoder assumes cfg has been filled and verified and the stream
// header already written.
func newEncoder(w io.Writer, r io.Reader, cfg WriterConfig) *encoder {
	z := &encoder{
		cfg:           cfg,
		re:            newRangeEncoder(w),
		optimum:       make([]optNode, numOpts),
		isMatch:       newProbs(numStates << numPosStatesBitsMax),
		isRep:         newProbs(numStates),
		isRepG0:       newProbs(numStates),
		isRepG1:       newProbs(numStates),
		isRepG2:       newProbs(numStates),
		isRep0Long:    newProbs(numStates << numPosStatesBitsMax),
		posEncoders:   newProbs(numFullDistances - endPosModelIndex),
		posAlignCoder: newTreeCoder(alignBits),
		lenCoder: newLenPriceTableCoder(
			cfg.FastBytes+1-matchMinLen, uint32(1)<<uint(cfg.PB)),
		repLenCoder: newLenPriceTableCoder(
			cfg.FastBytes+1-matchMinLen, uint32(1)<<uint(cfg.PB)),
		litCoder:        newLitCoder(uint32(cfg.LP), uint32(cfg.LC)),
		matchDists:      make([]uint32, matchMaxLen*2+2),
		posSlotPrices:   make([]uint32, 1<<(posSlotBits+lenToPosStatesBits)),
		distancesPrices: make([]uint32, numFullDistances<<lenToPosStatesBits),
		alignPrices:     make([]uint32, alignTableSize),
		tempPrices:      make([]uint32, numFullDistances),
		distTableSize:   cfg.dictLog() * 2,
		posStateMask:    uint32(1)<<uint(cfg.PB) - 1,
		progress:        cfg.Progress,
	}
	for i := range z.posSlotCoders {
		z.posSlotCoders[i] = newTreeCoder(posSlotBits)
	}
	hashBytes := uint32(4)
	if cfg.MatchFinder == MFBT2 {
		hashBytes = 2
	}
	z.mf = newBinTree(r, cfg.DictSize, numOpts, cfg.FastBytes, matchMaxLen+1, hashBytes)

	z.fillDistancesPrices()
	z.fillAlignPrices()
	return z
}

// readMatchDistances pulls the match candidates at the current position
// and returns the longest length found. A candidate already at the fast
// bytes limit is extended as far as the window allows.
func (z *encoder) readMatchDistances() uint32 {
	var lenRes uint32
	z.numDistPairs = z.mf.getMatches(z.matchDists)
	if z.numDistPairs > 0 {
		lenRes = z.matchDists[z.numDistPairs-2]
		if lenRes == z.cfg.FastBytes {
			lenRes += z.mf.win.getMatchLen(int32(lenRes)-1,
				z.matchDists[z.numDistPairs-1], matchMaxLen-lenRes)
		}
	}
	z.additionalOffset++
	return lenRes
}

func (z *encoder) movePos(num uint32) {
	if num > 0 {
		z.additionalOffset += num
		z.mf.skip(num)
	}
}

func (z *encoder) getPureRepPrice(repIndex, state, posState uint32) uint32 {
	var p uint32
	if repIndex == 0 {
		p = price0(z.isRepG0[state])
		p += price1(z.isRep0Long[state<<numPosStatesBitsMax+posState])
	} else {
		p = price1(z.isRepG0[state])
		if repIndex == 1 {
			p += price0(z.isRepG1[state])
		} else {
			p += price1(z.isRepG1[state])
			p += price(z.isRepG2[state], repIndex-2)
		}
	}
	return p
}

func (z *encoder) getRepPrice(repIndex, length, state, posState uint32) uint32 {
	return z.repLenCoder.getPrice(length-matchMinLen, posState) +
		z.getPureRepPrice(repIndex, state, posState)
}

func (z *encoder) getPosLenPrice(pos, length, posState uint32) uint32 {
	var p uint32
	lps := lenToPosState(length)
	if pos < numFullDistances {
		p = z.distancesPrices[lps*numFullDistances+pos]
	} else {
		p = z.posSlotPrices[lps<<posSlotBits+posSlot2(pos)] +
			z.alignPrices[pos&alignMask]
	}
	return p + z.lenCoder.getPrice(length-matchMinLen, posState)
}

func (z *encoder) getRepLen1Price(state, posState uint32) uint32 {
	return price0(z.isRepG0[state]) +
		price0(z.isRep0Long[state<<numPosStatesBitsMax+posState])
}

// fillDistancesPrices recomputes the cached prices of small distances
// and position slots. It runs after every 128 coded simple matches.
func (z *encoder) fillDistancesPrices() {
	for i := uint32(startPosModelIndex); i < numFullDistances; i++ {
		slot := posSlot(i)
		footerBits := slot>>1 - 1
		baseVal := (2 | slot&1) << footerBits
		z.tempPrices[i] = reverseGetPriceIndex(z.posEncoders,
			baseVal-slot-1, footerBits, i-baseVal)
	}
	for lps := uint32(0); lps < lenToPosStates; lps++ {
		st := lps << posSlotBits
		for slot := uint32(0); slot < z.distTableSize; slot++ {
			z.posSlotPrices[st+slot] = z.posSlotCoders[lps].getPrice(slot)
		}
		for slot := uint32(endPosModelIndex); slot < z.distTableSize; slot++ {
			z.posSlotPrices[st+slot] += (slot>>1 - 1 - alignBits) << bitPriceShiftBits
		}
		st2 := lps * numFullDistances
		var i uint32
		for i = 0; i < startPosModelIndex; i++ {
			z.distancesPrices[st2+i] = z.posSlotPrices[st+i]
		}
		for ; i < numFullDistances; i++ {
			z.distancesPrices[st2+i] = z.posSlotPrices[st+posSlot(i)] + z.tempPrices[i]
		}
	}
	z.matchPriceCount = 0
}

// fillAlignPrices recomputes the cached prices of the 16 align values.
func (z *encoder) fillAlignPrices() {
	for i := uint32(0); i < alignTableSize; i++ {
		z.alignPrices[i] = z.posAlignCoder.reverseGetPrice(i)
	}
	z.alignPriceCount = 0
}

// writeEndMarker codes the end-of-stream marker: a simple match whose
// decoded distance is 0xFFFFFFFF.
func (z *encoder) writeEndMarker(posState uint32) {
	if !z.cfg.EOS {
		return
	}
	z.re.encodeBit(z.isMatch, z.state<<numPosStatesBitsMax+posState, 1)
	z.re.encodeBit(z.isRep, z.state, 0)
	z.state = stateAfterMatch(z.state)
	z.lenCoder.encode(z.re, 0, posState)
	slot := uint32(1)<<posSlotBits - 1
	z.posSlotCoders[lenToPosState(matchMinLen)].encode(z.re, slot)
	footerBits := uint32(30)
	posReduced := uint32(1)<<footerBits - 1
	z.re.encodeDirectBits(posReduced>>alignBits, footerBits-alignBits)
	z.posAlignCoder.reverseEncode(z.re, posReduced&alignMask)
}

func (z *encoder) flush(nowPos uint32) {
	z.writeEndMarker(nowPos & z.posStateMask)
	z.re.flush()
}

// codeOneBlock emits symbols until roughly 4 KiB of input has been
// coded, then returns with finished false so the caller can report
// progress. finished is left true when the input is exhausted.
func (z *encoder) codeOneBlock() {
	z.finished = true
	progressPosValuePrev := z.nowPos
	if z.nowPos == 0 {
		if z.mf.win.available() == 0 {
			z.flush(uint32(z.nowPos))
			return
		}
		// The first symbol is always coded as a literal.
		z.readMatchDistances()
		z.re.encodeBit(z.isMatch,
			z.state<<numPosStatesBitsMax+uint32(z.nowPos)&z.posStateMask, 0)
		z.state = stateAfterLit(z.state)
		curByte := z.mf.win.getIndexByte(-int32(z.additionalOffset))
		z.litCoder.subCoder(uint32(z.nowPos), z.prevByte).encode(z.re, curByte)
		z.prevByte = curByte
		z.additionalOffset--
		z.nowPos++
	}
	if z.mf.win.available() == 0 {
		z.flush(uint32(z.nowPos))
		return
	}
	for {
		length := z.getOptimum(uint32(z.nowPos))
		pos := z.backRes
		posState := uint32(z.nowPos) & z.posStateMask
		complexState := z.state<<numPosStatesBitsMax + posState

		if length == 1 && pos == 0xFFFFFFFF {
			z.re.encodeBit(z.isMatch, complexState, 0)
			curByte := z.mf.win.getIndexByte(-int32(z.additionalOffset))
			sc := z.litCoder.subCoder(uint32(z.nowPos), z.prevByte)
			if !stateIsLit(z.state) {
				matchByte := z.mf.win.getIndexByte(
					-int32(z.repDistances[0]) - 1 - int32(z.additionalOffset))
				sc.encodeMatched(z.re, matchByte, curByte)
			} else {
				sc.encode(z.re, curByte)
			}
			z.prevByte = curByte
			z.state = stateAfterLit(z.state)
		} else {
			z.re.encodeBit(z.isMatch, complexState, 1)
			if pos < numRepDistances {
				z.re.encodeBit(z.isRep, z.state, 1)
				if pos == 0 {
					z.re.encodeBit(z.isRepG0, z.state, 0)
					if length == 1 {
						z.re.encodeBit(z.isRep0Long, complexState, 0)
					} else {
						z.re.encodeBit(z.isRep0Long, complexState, 1)
					}
				} else {
					z.re.encodeBit(z.isRepG0, z.state, 1)
					if pos == 1 {
						z.re.encodeBit(z.isRepG1, z.state, 0)
					} else {
						z.re.encodeBit(z.isRepG1, z.state, 1)
						z.re.encodeBit(z.isRepG2, z.state, pos-2)
					}
				}
				if length == 1 {
					z.state = stateAfterShortRep(z.state)
				} else {
					z.repLenCoder.encode(z.re, length-matchMinLen, posState)
					z.state = stateAfterRep(z.state)
				}
				distance := z.repDistances[pos]
				if pos != 0 {
					for i := pos; i >= 1; i-- {
						z.repDistances[i] = z.repDistances[i-1]
					}
					z.repDistances[0] = distance
				}
			} else {
				z.re.encodeBit(z.isRep, z.state, 0)
				z.state = stateAfterMatch(z.state)
				z.lenCoder.encode(z.re, length-matchMinLen, posState)
				pos -= numRepDistances
				slot := posSlot(pos)
				z.posSlotCoders[lenToPosState(length)].encode(z.re, slot)
				if slot >= startPosModelIndex {
					footerBits := slot>>1 - 1
					baseVal := (2 | slot&1) << footerBits
					posReduced := pos - baseVal
					if slot < endPosModelIndex {
						reverseEncodeIndex(z.re, z.posEncoders,
							baseVal-slot-1, footerBits, posReduced)
					} else {
						z.re.encodeDirectBits(posReduced>>alignBits, footerBits-alignBits)
						z.posAlignCoder.reverseEncode(z.re, posReduced&alignMask)
						z.alignPriceCount++
					}
				}
				for i := uint32(numRepDistances - 1); i >= 1; i-- {
					z.repDistances[i] = z.repDistances[i-1]
				}
				z.repDistances[0] = pos
				z.matchPriceCount++
			}
			z.prevByte = z.mf.win.getIndexByte(
				int32(length) - 1 - int32(z.additionalOffset))
		}
		z.additionalOffset -= length
		z.nowPos += int64(length)
		if z.additionalOffset == 0 {
			if z.matchPriceCount >= 1<<7 {
				z.fillDistancesPrices()
			}
			if z.alignPriceCount >= alignTableSize {
				z.fillAlignPrices()
			}
			if z.mf.win.available() == 0 {
				z.flush(uint32(z.nowPos))
				return
			}
			if z.nowPos-progressPosValuePrev >= 1<<12 {
				z.finished = false
				return
			}
		}
	}
}

func (z *encoder) encodeBody() {
	for {
		z.codeOneBlock()
		if z.progress != nil {
			z.progress(z.nowPos, int64(z.re.processed()))
		}
		if z.finished {
			return
		}
	}
}

// Encode compresses the data read from r into an LZMA stream written to
// w. The stream starts with the 13-byte header derived from cfg.
// Without cfg.SizeInHeader the header announces an unknown size and the
// stream is terminated with an end marker.
func Encode(w io.Writer, r io.Reader, cfg WriterConfig) (err error) {
	defer recoverFailure(&err)
	cfg.fill()
	if err = cfg.Verify(); err != nil {
		return err
	}
	size := int64(-1)
	if cfg.SizeInHeader {
		size = cfg.Size
	}
	h := header{props: cfg.Properties, dictSize: cfg.DictSize, size: size}
	if err = writeHeader(w, h); err != nil {
		return err
	}
	z := newEncoder(w, r, cfg)
	z.encodeBody()
	return nil
}
