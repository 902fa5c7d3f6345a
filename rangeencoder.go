package lzma

import (
	"bufio"
	"io"
)

// top is the renormalization threshold of the range coder. Whenever the
// range falls below it, a byte is shifted out.
const top = 1 << 24

// flushWriter is the write interface needed by the range encoder. If the
// caller's io.Writer doesn't provide it, a bufio.Writer is introduced.
type flushWriter interface {
	io.Writer
	io.ByteWriter
	Flush() error
}

func makeFlushWriter(w io.Writer) flushWriter {
	if fw, ok := w.(flushWriter); ok {
		return fw
	}
	return bufio.NewWriter(w)
}

// rangeEncoder encodes single bits against adaptive probabilities. Low is
// kept in a uint64 because it can overflow 32 bits; the overflow carries
// through cache and cacheSize.
type rangeEncoder struct {
	w         flushWriter
	low       uint64
	rrange    uint32
	cacheSize uint32
	cache     uint32
	pos       uint64
}

func newRangeEncoder(w io.Writer) *rangeEncoder {
	return &rangeEncoder{
		w:         makeFlushWriter(w),
		rrange:    0xFFFFFFFF,
		cacheSize: 1,
	}
}

// shiftLow shifts the low value one byte out. Pending 0xFF bytes are held
// back in cacheSize until the carry is known; the arithmetic must mirror
// the decoder exactly.
func (e *rangeEncoder) shiftLow() {
	lowHi := uint32(e.low >> 32)
	if lowHi != 0 || e.low < 0xFF000000 {
		e.pos += uint64(e.cacheSize)
		temp := e.cache
		for {
			if err := e.w.WriteByte(byte(temp + lowHi)); err != nil {
				throw(err)
			}
			temp = 0xFF
			e.cacheSize--
			if e.cacheSize == 0 {
				break
			}
		}
		e.cache = uint32(e.low) >> 24
	}
	e.cacheSize++
	e.low = uint64(uint32(e.low) << 8)
}

// encodeBit encodes bit under probs[index] and updates the probability.
func (e *rangeEncoder) encodeBit(probs []prob, index, bit uint32) {
	p := &probs[index]
	bound := p.bound(e.rrange)
	if bit == 0 {
		e.rrange = bound
		p.inc()
	} else {
		e.low += uint64(bound)
		e.rrange -= bound
		p.dec()
	}
	if e.rrange < top {
		e.rrange <<= 8
		e.shiftLow()
	}
}

// encodeDirectBits encodes the low numBits of v without a probability
// model, most significant bit first.
func (e *rangeEncoder) encodeDirectBits(v, numBits uint32) {
	for i := numBits - 1; int32(i) >= 0; i-- {
		e.rrange >>= 1
		if (v>>i)&1 == 1 {
			e.low += uint64(e.rrange)
		}
		if e.rrange < top {
			e.rrange <<= 8
			e.shiftLow()
		}
	}
}

// processed returns the number of bytes the encoder has produced,
// including bytes still pending in low.
func (e *rangeEncoder) processed() uint64 {
	return e.pos + uint64(e.cacheSize) + 4
}

// flush writes the remaining 5 bytes of low and flushes the underlying
// writer.
func (e *rangeEncoder) flush() {
	for i := 0; i < 5; i++ {
		e.shiftLow()
	}
	if err := e.w.Flush(); err != nil {
		throw(err)
	}
}
