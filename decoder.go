package lzma

import "io"

// decoder holds the probability model and the dictionary window of a
// decompression session.
type decoder struct {
	rd  *rangeDecoder
	win *outWindow

	isMatch    []prob
	isRep      []prob
	isRepG0    []prob
	isRepG1    []prob
	isRepG2    []prob
	isRep0Long []prob

	posSlotCoders [lenToPosStates]*treeCoder
	posDecoders   []prob
	posAlignCoder *treeCoder

	lenCoder    *lenCoder
	repLenCoder *lenCoder
	litCoder    *litCoder

	size          int64
	dictSizeCheck uint32
	posStateMask  uint32

	progress Progress
}

func newDecoder(w io.Writer, h header) *decoder {
	z := &decoder{
		isMatch:       newProbs(numStates << numPosStatesBitsMax),
		isRep:         newProbs(numStates),
		isRepG0:       newProbs(numStates),
		isRepG1:       newProbs(numStates),
		isRepG2:       newProbs(numStates),
		isRep0Long:    newProbs(numStates << numPosStatesBitsMax),
		posDecoders:   newProbs(numFullDistances - endPosModelIndex),
		posAlignCoder: newTreeCoder(alignBits),
		lenCoder:      newLenCoder(uint32(1) << uint(h.props.PB)),
		repLenCoder:   newLenCoder(uint32(1) << uint(h.props.PB)),
		litCoder:      newLitCoder(uint32(h.props.LP), uint32(h.props.LC)),
		size:          h.size,
		dictSizeCheck: maxUint32(h.dictSize, 1),
		posStateMask:  uint32(1)<<uint(h.props.PB) - 1,
	}
	for i := range z.posSlotCoders {
		z.posSlotCoders[i] = newTreeCoder(posSlotBits)
	}
	z.win = newOutWindow(w, maxUint32(z.dictSizeCheck, 1<<12))
	return z
}

// decodeBody runs the decompression loop until the announced size is
// reached or the end marker is found. Model errors surface as thrown
// failures handled by the caller.
func (z *decoder) decodeBody() {
	var state uint32
	var rep0, rep1, rep2, rep3 uint32
	var nowPos int64
	var prevByte byte
	eos := false

	for !eos && (z.size < 0 || nowPos < z.size) {
		posState := uint32(nowPos) & z.posStateMask
		if z.rd.decodeBit(z.isMatch, state<<numPosStatesBitsMax+posState) == 0 {
			sc := z.litCoder.subCoder(uint32(nowPos), prevByte)
			if stateIsLit(state) {
				prevByte = sc.decode(z.rd)
			} else {
				prevByte = sc.decodeMatched(z.rd, z.win.getByte(rep0))
			}
			z.win.putByte(prevByte)
			state = stateAfterLit(state)
			nowPos++
		} else {
			var length uint32
			if z.rd.decodeBit(z.isRep, state) == 1 {
				if z.rd.decodeBit(z.isRepG0, state) == 0 {
					if z.rd.decodeBit(z.isRep0Long,
						state<<numPosStatesBitsMax+posState) == 0 {
						state = stateAfterShortRep(state)
						length = 1
					}
				} else {
					var distance uint32
					if z.rd.decodeBit(z.isRepG1, state) == 0 {
						distance = rep1
					} else {
						if z.rd.decodeBit(z.isRepG2, state) == 0 {
							distance = rep2
						} else {
							distance = rep3
							rep3 = rep2
						}
						rep2 = rep1
					}
					rep1 = rep0
					rep0 = distance
				}
				if length == 0 {
					length = z.repLenCoder.decode(z.rd, posState) + matchMinLen
					state = stateAfterRep(state)
				}
			} else {
				rep3, rep2, rep1 = rep2, rep1, rep0
				length = matchMinLen + z.lenCoder.decode(z.rd, posState)
				state = stateAfterMatch(state)
				slot := z.posSlotCoders[lenToPosState(length)].decode(z.rd)
				if slot >= startPosModelIndex {
					numDirectBits := slot>>1 - 1
					rep0 = (2 | slot&1) << numDirectBits
					if slot < endPosModelIndex {
						rep0 += reverseDecodeIndex(z.rd, z.posDecoders,
							rep0-slot-1, numDirectBits)
					} else {
						rep0 += z.rd.decodeDirectBits(
							numDirectBits-alignBits) << alignBits
						rep0 += z.posAlignCoder.reverseDecode(z.rd)
						if int32(rep0) < 0 {
							if rep0 != 0xFFFFFFFF {
								throw(ErrCorrupt)
							}
							// end marker
							eos = true
							continue
						}
					}
				} else {
					rep0 = slot
				}
			}
			if int64(rep0) >= nowPos || rep0 >= z.dictSizeCheck {
				throw(ErrCorrupt)
			}
			z.win.copyBlock(rep0, length)
			nowPos += int64(length)
			prevByte = z.win.getByte(0)
		}
		if z.progress != nil && nowPos&(1<<12-1) == 0 {
			z.progress(z.rd.processed, nowPos)
		}
	}
	z.win.flush()
	if z.progress != nil {
		z.progress(z.rd.processed, nowPos)
	}
}

// ReaderConfig parametrizes a decompression session.
type ReaderConfig struct {
	// optional progress callback; in counts compressed bytes read, out
	// uncompressed bytes produced
	Progress Progress
}

// Decode reads an LZMA stream from r and writes the uncompressed data
// to w. It consumes the stream header, the coded body and, if the
// header announces an unknown size, the end marker.
func Decode(w io.Writer, r io.Reader, cfg ReaderConfig) (err error) {
	defer recoverFailure(&err)
	h, err := readHeader(r)
	if err != nil {
		return err
	}
	z := newDecoder(w, h)
	z.progress = cfg.Progress
	if z.rd, err = newRangeDecoder(r); err != nil {
		return err
	}
	z.decodeBody()
	return nil
}
