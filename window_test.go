package lzma

import (
	"bytes"
	"io"
	"testing"
)

func TestInWindowStreaming(t *testing.T) {
	data := []byte("abcabcabcxyzxyzxyz")
	w := newInWindow(bytes.NewReader(data), 8, 4, 4)

	if got, want := w.getIndexByte(0), data[0]; got != want {
		t.Fatalf("getIndexByte(0) = %q; want %q", got, want)
	}
	for i := 1; i < len(data); i++ {
		w.movePos()
		if got, want := w.getIndexByte(0), data[i]; got != want {
			t.Fatalf("pos %d: getIndexByte(0) = %q; want %q", i, got, want)
		}
	}
	w.movePos()
	if got := w.available(); got != 0 {
		t.Fatalf("available() after end = %d; want 0", got)
	}
}

// stutterReader delivers one byte per call and returns (0, nil) between
// deliveries, as the io.Reader contract permits.
type stutterReader struct {
	data []byte
	skip bool
}

func (r *stutterReader) Read(p []byte) (int, error) {
	r.skip = !r.skip
	if r.skip {
		return 0, nil
	}
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := copy(p[:1], r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestInWindowZeroByteReads(t *testing.T) {
	data := []byte("abcabcabcxyzxyzxyz")
	w := newInWindow(&stutterReader{data: data}, 8, 4, 4)

	for i := 0; i < len(data); i++ {
		if got, want := w.getIndexByte(0), data[i]; got != want {
			t.Fatalf("pos %d: getIndexByte(0) = %q; want %q", i, got, want)
		}
		w.movePos()
	}
	if got := w.available(); got != 0 {
		t.Fatalf("available() after end = %d; want 0", got)
	}
	if !w.streamEnd {
		t.Fatalf("streamEnd = false; want true")
	}
}

func TestInWindowGetMatchLen(t *testing.T) {
	data := []byte("abcabcabd")
	w := newInWindow(bytes.NewReader(data), 16, 8, 8)
	// stand on the second "abc"
	for i := 0; i < 3; i++ {
		w.movePos()
	}
	// distance 2 means 3 positions back
	if got, want := w.getMatchLen(0, 2, 6), uint32(5); got != want {
		t.Fatalf("getMatchLen = %d; want %d", got, want)
	}
	// the limit caps the match
	if got, want := w.getMatchLen(0, 2, 3), uint32(3); got != want {
		t.Fatalf("getMatchLen limited = %d; want %d", got, want)
	}
}

func TestInWindowMoveBlock(t *testing.T) {
	// window small enough that the buffer must shift while streaming
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 31)
	}
	w := newInWindow(bytes.NewReader(data), 64, 16, 16)
	for i := 0; i < len(data); i++ {
		if got, want := w.getIndexByte(0), data[i]; got != want {
			t.Fatalf("pos %d: getIndexByte(0) = %#x; want %#x", i, got, want)
		}
		if i >= 10 {
			if got, want := w.getIndexByte(-10), data[i-10]; got != want {
				t.Fatalf("pos %d: getIndexByte(-10) = %#x; want %#x",
					i, got, want)
			}
		}
		w.movePos()
	}
}

func TestOutWindowPutAndGet(t *testing.T) {
	var buf bytes.Buffer
	ow := newOutWindow(&buf, 16)
	for _, b := range []byte("hello") {
		ow.putByte(b)
	}
	if got, want := ow.getByte(0), byte('o'); got != want {
		t.Fatalf("getByte(0) = %q; want %q", got, want)
	}
	if got, want := ow.getByte(4), byte('h'); got != want {
		t.Fatalf("getByte(4) = %q; want %q", got, want)
	}
	ow.flush()
	if got, want := buf.String(), "hello"; got != want {
		t.Fatalf("flushed %q; want %q", got, want)
	}
}

func TestOutWindowOverlappingCopy(t *testing.T) {
	// length > distance: the copy reads bytes it has just written
	var buf bytes.Buffer
	ow := newOutWindow(&buf, 32)
	ow.putByte('a')
	ow.putByte('b')
	ow.copyBlock(1, 8)
	ow.flush()
	if got, want := buf.String(), "ababababab"; got != want {
		t.Fatalf("got %q; want %q", got, want)
	}
}

func TestOutWindowWrapAround(t *testing.T) {
	// the window is smaller than the output; it must flush on wrap and
	// keep back-references valid
	var buf bytes.Buffer
	ow := newOutWindow(&buf, 8)
	for i := 0; i < 4; i++ {
		ow.putByte(byte('a' + i))
	}
	for i := 0; i < 5; i++ {
		ow.copyBlock(3, 4)
	}
	ow.flush()
	want := "abcd" + "abcdabcdabcdabcdabcd"
	if got := buf.String(); got != want {
		t.Fatalf("got %q; want %q", got, want)
	}
}
