package lzma

import "io"

// inWindow buffers a moving slice of the input stream for the encoder.
// Bytes in [pos-keepSizeBefore, pos+keepSizeAfter) stay addressable
// without re-reading the stream. All offsets are uint32 and rely on
// wrap-around arithmetic: the match finder rebases bufOffset to
// 0xFFFFFFFF via reduceOffsets so that stream positions are numbered
// from 1, keeping 0 free as its empty-hash sentinel.
type inWindow struct {
	r              io.Reader
	buf            []byte
	bufOffset      uint32
	blockSize      uint32
	pos            uint32
	posLimit       uint32
	lastSafePos    uint32
	keepSizeBefore uint32
	keepSizeAfter  uint32
	streamPos      uint32
	streamEnd      bool
}

func newInWindow(r io.Reader, keepSizeBefore, keepSizeAfter, reserve uint32) *inWindow {
	blockSize := keepSizeBefore + keepSizeAfter + reserve
	w := &inWindow{
		r:              r,
		buf:            make([]byte, blockSize),
		blockSize:      blockSize,
		keepSizeBefore: keepSizeBefore,
		keepSizeAfter:  keepSizeAfter,
		lastSafePos:    blockSize - keepSizeAfter,
	}
	w.readBlock()
	return w
}

// readBlock fills the buffer behind streamPos from the stream. Reaching
// the end of input clamps posLimit to the last safe position.
func (w *inWindow) readBlock() {
	if w.streamEnd {
		return
	}
	for {
		size := 0 - w.bufOffset + w.blockSize - w.streamPos
		if size == 0 {
			return
		}
		off := w.bufOffset + w.streamPos
		n, err := w.r.Read(w.buf[off : off+size])
		if n > 0 {
			w.streamPos += uint32(n)
			if w.streamPos >= w.pos+w.keepSizeAfter {
				w.posLimit = w.streamPos - w.keepSizeAfter
			}
		}
		if err == nil {
			// a Read may legally return zero bytes without an error;
			// only io.EOF ends the stream
			continue
		}
		if err != io.EOF {
			throw(err)
		}
		w.posLimit = w.streamPos
		if w.bufOffset+w.posLimit > w.lastSafePos {
			w.posLimit = w.lastSafePos - w.bufOffset
		}
		w.streamEnd = true
		return
	}
}

// moveBlock shifts the live window to the start of the buffer, dropping
// bytes older than keepSizeBefore.
func (w *inWindow) moveBlock() {
	offset := w.bufOffset + w.pos - w.keepSizeBefore
	if offset > 0 {
		offset--
	}
	numBytes := w.bufOffset + w.streamPos - offset
	copy(w.buf[:numBytes], w.buf[offset:offset+numBytes])
	w.bufOffset -= offset
}

// movePos advances the window position by one byte, shifting and
// refilling the buffer when the position nears the safe boundary.
func (w *inWindow) movePos() {
	w.pos++
	if w.pos > w.posLimit {
		if w.bufOffset+w.pos > w.lastSafePos {
			w.moveBlock()
		}
		w.readBlock()
	}
}

// getIndexByte returns the byte at pos+index. Negative indices look
// backward.
func (w *inWindow) getIndexByte(index int32) byte {
	return w.buf[w.bufOffset+w.pos+uint32(index)]
}

// getMatchLen counts how many bytes starting at pos+index equal the
// bytes distance+1 positions earlier, capped at limit and stream end.
func (w *inWindow) getMatchLen(index int32, distance, limit uint32) uint32 {
	if w.streamEnd {
		if w.pos+uint32(index)+limit > w.streamPos {
			limit = w.streamPos - (w.pos + uint32(index))
		}
	}
	distance++
	pby := w.bufOffset + w.pos + uint32(index)
	var i uint32
	for i = 0; i < limit && w.buf[pby+i] == w.buf[pby+i-distance]; i++ {
	}
	return i
}

// available returns the number of buffered bytes not yet consumed.
func (w *inWindow) available() uint32 {
	return w.streamPos - w.pos
}

// reduceOffsets rebases the stream positions by subValue. The match
// finder calls it when positions approach the 30-bit normalization
// limit.
func (w *inWindow) reduceOffsets(subValue uint32) {
	w.bufOffset += subValue
	w.posLimit -= subValue
	w.pos -= subValue
	w.streamPos -= subValue
}
