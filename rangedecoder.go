package lzma

import (
	"bufio"
	"io"
)

// byteReader is the read interface needed by the range decoder. If the
// caller's io.Reader doesn't provide it, a bufio.Reader is introduced.
type byteReader interface {
	io.Reader
	io.ByteReader
}

func makeByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

// rangeDecoder mirrors the range encoder. It must apply byte-identical
// probability updates or the stream becomes undecodable.
type rangeDecoder struct {
	r         byteReader
	rrange    uint32
	code      uint32
	processed int64
}

// newRangeDecoder reads the 5 initialization bytes of the stream body. A
// short read means the body is truncated.
func newRangeDecoder(r io.Reader) (*rangeDecoder, error) {
	d := &rangeDecoder{r: makeByteReader(r), rrange: 0xFFFFFFFF}
	buf := make([]byte, 5)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrCorrupt
		}
		return nil, err
	}
	for _, b := range buf {
		d.code = d.code<<8 | uint32(b)
	}
	d.processed = 5
	return d, nil
}

// readByte pulls the next stream byte during renormalization. Running out
// of input mid-stream is corruption, not EOF.
func (d *rangeDecoder) readByte() uint32 {
	b, err := d.r.ReadByte()
	if err != nil {
		if err == io.EOF {
			throw(ErrCorrupt)
		}
		throw(err)
	}
	d.processed++
	return uint32(b)
}

// decodeBit decodes one bit under probs[index] and updates the
// probability.
func (d *rangeDecoder) decodeBit(probs []prob, index uint32) uint32 {
	p := &probs[index]
	bound := p.bound(d.rrange)
	var bit uint32
	if d.code < bound {
		d.rrange = bound
		p.inc()
		bit = 0
	} else {
		d.code -= bound
		d.rrange -= bound
		p.dec()
		bit = 1
	}
	if d.rrange < top {
		d.code = d.code<<8 | d.readByte()
		d.rrange <<= 8
	}
	return bit
}

// decodeDirectBits decodes numBits coded without a probability model.
func (d *rangeDecoder) decodeDirectBits(numBits uint32) uint32 {
	var res uint32
	for i := numBits; i != 0; i-- {
		d.rrange >>= 1
		t := (d.code - d.rrange) >> 31
		d.code -= d.rrange & (t - 1)
		res = res<<1 | (1 - t)
		if d.rrange < top {
			d.code = d.code<<8 | d.readByte()
			d.rrange <<= 8
		}
	}
	return res
}
