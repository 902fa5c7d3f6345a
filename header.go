package lzma

import "io"

const (
	propSize   = 5
	headerSize = propSize + 8
)

// noHeaderSize is the uncompressed-size sentinel meaning "unknown,
// stream ends with an end marker".
const noHeaderSize uint64 = 1<<64 - 1

// header holds the information of the classic 13-byte .lzma header.
type header struct {
	props    Properties
	dictSize uint32
	// uncompressed size; -1 if unknown
	size int64
}

func getUint32LE(b []byte) uint32 {
	x := uint32(b[3]) << 24
	x |= uint32(b[2]) << 16
	x |= uint32(b[1]) << 8
	x |= uint32(b[0])
	return x
}

func getUint64LE(b []byte) uint64 {
	x := uint64(b[7]) << 56
	x |= uint64(b[6]) << 48
	x |= uint64(b[5]) << 40
	x |= uint64(b[4]) << 32
	x |= uint64(b[3]) << 24
	x |= uint64(b[2]) << 16
	x |= uint64(b[1]) << 8
	x |= uint64(b[0])
	return x
}

func putUint32LE(b []byte, x uint32) {
	b[0] = byte(x)
	b[1] = byte(x >> 8)
	b[2] = byte(x >> 16)
	b[3] = byte(x >> 24)
}

func putUint64LE(b []byte, x uint64) {
	putUint32LE(b, uint32(x))
	putUint32LE(b[4:], uint32(x>>32))
}

// readHeader reads and validates the stream header.
func readHeader(r io.Reader) (h header, err error) {
	b := make([]byte, headerSize)
	if _, err = io.ReadFull(r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return h, ErrHeader
		}
		return h, err
	}
	if h.props, err = PropertiesForCode(b[0]); err != nil {
		return h, err
	}
	h.dictSize = getUint32LE(b[1:])
	u := getUint64LE(b[propSize:])
	if u == noHeaderSize {
		h.size = -1
	} else {
		h.size = int64(u)
		if h.size < 0 {
			return h, ErrHeader
		}
	}
	return h, nil
}

// writeHeader writes the stream header.
func writeHeader(w io.Writer, h header) error {
	b := make([]byte, headerSize)
	b[0] = h.props.Code()
	putUint32LE(b[1:], h.dictSize)
	u := noHeaderSize
	if h.size >= 0 {
		u = uint64(h.size)
	}
	putUint64LE(b[propSize:], u)
	n, err := w.Write(b)
	if err != nil {
		return err
	}
	if n != headerSize {
		return errUnexpectedWrite
	}
	return nil
}
