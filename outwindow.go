package lzma

import "io"

// outWindow is the decoder's circular output buffer. It keeps the last
// windowSize bytes addressable for back-references and writes completed
// stretches to the output stream when the buffer wraps.
type outWindow struct {
	w         io.Writer
	buf       []byte
	winSize   uint32
	pos       uint32
	streamPos uint32
}

func newOutWindow(w io.Writer, windowSize uint32) *outWindow {
	return &outWindow{
		w:       w,
		buf:     make([]byte, windowSize),
		winSize: windowSize,
	}
}

// flush writes the bytes produced since the last flush to the output
// stream.
func (ow *outWindow) flush() {
	size := ow.pos - ow.streamPos
	if size == 0 {
		return
	}
	n, err := ow.w.Write(ow.buf[ow.streamPos : ow.streamPos+size])
	if err != nil {
		throw(err)
	}
	if uint32(n) != size {
		throw(errUnexpectedWrite)
	}
	if ow.pos >= ow.winSize {
		ow.pos = 0
	}
	ow.streamPos = ow.pos
}

// copyBlock copies length bytes starting distance+1 positions back.
// Byte-by-byte copying is required: source and destination overlap
// whenever length > distance.
func (ow *outWindow) copyBlock(distance, length uint32) {
	pos := ow.pos - distance - 1
	if int32(pos) < 0 {
		pos += ow.winSize
	}
	for ; length != 0; length-- {
		if pos >= ow.winSize {
			pos = 0
		}
		ow.buf[ow.pos] = ow.buf[pos]
		ow.pos++
		pos++
		if ow.pos >= ow.winSize {
			ow.flush()
		}
	}
}

func (ow *outWindow) putByte(b byte) {
	ow.buf[ow.pos] = b
	ow.pos++
	if ow.pos >= ow.winSize {
		ow.flush()
	}
}

// getByte returns the byte written distance+1 positions back.
func (ow *outWindow) getByte(distance uint32) byte {
	pos := ow.pos - distance - 1
	if int32(pos) < 0 {
		pos += ow.winSize
	}
	return ow.buf[pos]
}
