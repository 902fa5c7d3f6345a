package lzma

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/kr/pretty"
)

func roundtrip(t *testing.T, data []byte, cfg WriterConfig) []byte {
	t.Helper()
	var compressed bytes.Buffer
	if err := Encode(&compressed, bytes.NewReader(data), cfg); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	var out bytes.Buffer
	if err := Decode(&out, bytes.NewReader(compressed.Bytes()),
		ReaderConfig{}); err != nil {
		t.Fatalf("Decode error %s", err)
	}
	got := out.Bytes()
	if !bytes.Equal(got, data) {
		i := 0
		for i < len(got) && i < len(data) && got[i] == data[i] {
			i++
		}
		t.Fatalf("roundtrip mismatch: got %d bytes, want %d bytes, first difference at %d",
			len(got), len(data), i)
	}
	return compressed.Bytes()
}

func TestRoundtripEmpty(t *testing.T) {
	c := roundtrip(t, nil, WriterConfig{})
	// header, range coder tail and end marker only
	if len(c) > headerSize+16 {
		t.Fatalf("empty input compressed to %d bytes", len(c))
	}
}

func TestRoundtripSingleByte(t *testing.T) {
	roundtrip(t, []byte{0x41}, WriterConfig{})
}

func TestRoundtripRepDistances(t *testing.T) {
	// alternating runs at the same two distances exercise the rep cache
	var data []byte
	for i := 0; i < 300; i++ {
		data = append(data, "0123456789"...)
		data = append(data, "abcdefgh"...)
	}
	roundtrip(t, data, WriterConfig{})
}

func TestRoundtripRepeated(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 10000)
	c := roundtrip(t, data, WriterConfig{})
	if len(c) > 100 {
		t.Fatalf("10000 repeated bytes compressed to %d bytes; want far less",
			len(c))
	}
}

func TestRoundtripText(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 200)
	c := roundtrip(t, data, WriterConfig{})
	if len(c) >= len(data) {
		t.Fatalf("repetitive text did not compress: %d >= %d",
			len(c), len(data))
	}
}

func TestRoundtripRandom(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	data := make([]byte, 1<<16)
	for i := range data {
		data[i] = byte(rnd.Intn(256))
	}
	roundtrip(t, data, WriterConfig{})
}

func TestRoundtripKnownSize(t *testing.T) {
	data := bytes.Repeat([]byte("abcdefgh"), 1000)
	cfg := WriterConfig{Size: int64(len(data))}
	c := roundtrip(t, data, cfg)

	h, err := readHeader(bytes.NewReader(c))
	if err != nil {
		t.Fatalf("readHeader error %s", err)
	}
	if h.size != int64(len(data)) {
		t.Fatalf("header size %d; want %d", h.size, len(data))
	}
}

func TestZeroSizeInHeader(t *testing.T) {
	// a stream known to be empty records 0 in the header instead of
	// the unknown-size sentinel
	var buf bytes.Buffer
	cfg := WriterConfig{SizeInHeader: true}
	if err := Encode(&buf, bytes.NewReader(nil), cfg); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	h, err := readHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("readHeader error %s", err)
	}
	if h.size != 0 {
		t.Fatalf("header size %d; want 0", h.size)
	}
	var out bytes.Buffer
	if err := Decode(&out, bytes.NewReader(buf.Bytes()), ReaderConfig{}); err != nil {
		t.Fatalf("Decode error %s", err)
	}
	if out.Len() != 0 {
		t.Fatalf("decoded %d bytes; want 0", out.Len())
	}
}

func TestRoundtripMatchFinders(t *testing.T) {
	data := testInput(1<<15, 3)
	for _, mf := range []string{MFBT2, MFBT4} {
		t.Run(mf, func(t *testing.T) {
			roundtrip(t, data, WriterConfig{MatchFinder: mf})
		})
	}
}

func TestRoundtripProperties(t *testing.T) {
	data := bytes.Repeat([]byte("na na na na batman "), 500)
	configs := []Properties{
		{0, 2, 0},
		{3, 0, 2},
		{8, 4, 4},
	}
	for _, p := range configs {
		cfg := WriterConfig{Properties: p, DictSize: 1 << 16,
			FastBytes: 32, MatchFinder: MFBT4}
		roundtrip(t, data, cfg)
	}
}

func TestRoundtripPresets(t *testing.T) {
	data := testInput(1<<14, 11)
	for level := BestSpeed; level <= BestCompression; level++ {
		cfg := Preset(level)
		roundtrip(t, data, cfg)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	data := testInput(1<<14, 5)
	var a, b bytes.Buffer
	if err := Encode(&a, bytes.NewReader(data), WriterConfig{}); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	if err := Encode(&b, bytes.NewReader(data), WriterConfig{}); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Fatalf("same input produced different streams: %d vs %d bytes",
			a.Len(), b.Len())
	}
}

func TestPresetTable(t *testing.T) {
	want := WriterConfig{
		Properties:  Properties{LC: 3, LP: 0, PB: 2},
		DictSize:    1 << 23,
		FastBytes:   128,
		MatchFinder: MFBT4,
		EOS:         true,
	}
	got := Preset(DefaultCompression)
	if diff := pretty.Diff(got, want); len(diff) > 0 {
		t.Fatalf("Preset(%d) differs:\n%s", DefaultCompression,
			pretty.Sprint(diff))
	}
	// out of range levels fall back to the default
	for _, level := range []int{-1, 0, 10} {
		got := Preset(level)
		if diff := pretty.Diff(got, want); len(diff) > 0 {
			t.Fatalf("Preset(%d) differs from default:\n%s", level,
				pretty.Sprint(diff))
		}
	}
}

func TestWriterConfigVerify(t *testing.T) {
	tests := []struct {
		name string
		cfg  WriterConfig
		ok   bool
	}{
		{"default", Preset(DefaultCompression), true},
		{"small dict", WriterConfig{Properties: Properties{3, 0, 2},
			DictSize: 1, FastBytes: 5, MatchFinder: MFBT2}, true},
		{"dict too large", WriterConfig{Properties: Properties{3, 0, 2},
			DictSize: 1<<29 + 1, FastBytes: 64, MatchFinder: MFBT4}, false},
		{"fast bytes too small", WriterConfig{Properties: Properties{3, 0, 2},
			DictSize: 1 << 16, FastBytes: 4, MatchFinder: MFBT4}, false},
		{"fast bytes too large", WriterConfig{Properties: Properties{3, 0, 2},
			DictSize: 1 << 16, FastBytes: 274, MatchFinder: MFBT4}, false},
		{"bad match finder", WriterConfig{Properties: Properties{3, 0, 2},
			DictSize: 1 << 16, FastBytes: 64, MatchFinder: "hc4"}, false},
		{"bad properties", WriterConfig{Properties: Properties{9, 0, 2},
			DictSize: 1 << 16, FastBytes: 64, MatchFinder: MFBT4}, false},
		{"bad size", WriterConfig{Properties: Properties{3, 0, 2},
			DictSize: 1 << 16, FastBytes: 64, MatchFinder: MFBT4, Size: -2}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Verify()
			if tc.ok && err != nil {
				t.Fatalf("Verify error %s; want nil", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("Verify = nil; want error")
			}
		})
	}
}

func TestDecodeBadHeader(t *testing.T) {
	if err := Decode(io.Discard, bytes.NewReader([]byte{0x5D, 0, 0}),
		ReaderConfig{}); err != ErrHeader {
		t.Fatalf("short header: got %v; want %v", err, ErrHeader)
	}
	b := make([]byte, headerSize+5)
	b[0] = 0xFF
	if err := Decode(io.Discard, bytes.NewReader(b),
		ReaderConfig{}); err != ErrHeader {
		t.Fatalf("bad properties byte: got %v; want %v", err, ErrHeader)
	}
}

func TestDecodeTruncated(t *testing.T) {
	data := testInput(1<<14, 23)
	var buf bytes.Buffer
	if err := Encode(&buf, bytes.NewReader(data), WriterConfig{}); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	c := buf.Bytes()
	err := Decode(io.Discard, bytes.NewReader(c[:len(c)/2]), ReaderConfig{})
	if err != ErrCorrupt {
		t.Fatalf("truncated stream: got %v; want %v", err, ErrCorrupt)
	}
}

func TestDecodeBadDistance(t *testing.T) {
	// shrink the dictionary size announced in the header so that the
	// stream's match distances become invalid
	data := bytes.Repeat([]byte("abcdefgh"), 1000)
	var buf bytes.Buffer
	if err := Encode(&buf, bytes.NewReader(data), WriterConfig{}); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	c := buf.Bytes()
	putUint32LE(c[1:], 1)
	err := Decode(io.Discard, bytes.NewReader(c), ReaderConfig{})
	if err != ErrCorrupt {
		t.Fatalf("patched dictionary size: got %v; want %v", err, ErrCorrupt)
	}
}

func TestReaderWriterPipe(t *testing.T) {
	data := testInput(1<<15, 29)

	var compressed bytes.Buffer
	w := NewWriter(&compressed)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("Write error %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}

	r := NewReader(&compressed)
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error %s", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("pipe roundtrip mismatch: got %d bytes; want %d",
			len(got), len(data))
	}
}

// errorWriter fails every write after budget bytes have been accepted.
type errorWriter struct {
	budget int
	err    error
}

func (w *errorWriter) Write(p []byte) (int, error) {
	if len(p) <= w.budget {
		w.budget -= len(p)
		return len(p), nil
	}
	n := w.budget
	w.budget = 0
	return n, w.err
}

func TestWriterCloseReportsError(t *testing.T) {
	errDisk := errors.New("disk full")
	// fail during the header write and during the final flush, which
	// Close itself triggers
	for _, budget := range []int{0, headerSize} {
		w := NewWriter(&errorWriter{budget: budget, err: errDisk})
		if _, err := w.Write([]byte("data worth compressing")); err != nil &&
			err != errDisk {
			t.Fatalf("budget %d: Write error %v; want nil or %v",
				budget, err, errDisk)
		}
		if err := w.Close(); err != errDisk {
			t.Fatalf("budget %d: Close error %v; want %v",
				budget, err, errDisk)
		}
	}
}

func TestWriterSizeLevel(t *testing.T) {
	data := testInput(1<<14, 31)
	var compressed bytes.Buffer
	w := NewWriterSizeLevel(&compressed, int64(len(data)), BestSpeed)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		t.Fatalf("Copy error %s", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error %s", err)
	}

	h, err := readHeader(bytes.NewReader(compressed.Bytes()))
	if err != nil {
		t.Fatalf("readHeader error %s", err)
	}
	if h.size != int64(len(data)) {
		t.Fatalf("header size %d; want %d", h.size, len(data))
	}

	r := NewReader(&compressed)
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll error %s", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("roundtrip mismatch")
	}
}

func TestProgressCallbacks(t *testing.T) {
	data := testInput(1<<16, 37)

	var calls int
	var lastIn int64
	cfg := WriterConfig{
		Progress: func(in, out int64) {
			calls++
			lastIn = in
		},
	}
	var compressed bytes.Buffer
	if err := Encode(&compressed, bytes.NewReader(data), cfg); err != nil {
		t.Fatalf("Encode error %s", err)
	}
	if calls == 0 {
		t.Fatalf("encode progress was never called")
	}
	if lastIn != int64(len(data)) {
		t.Fatalf("final progress in = %d; want %d", lastIn, len(data))
	}

	calls = 0
	var lastOut int64
	rcfg := ReaderConfig{
		Progress: func(in, out int64) {
			calls++
			lastOut = out
		},
	}
	if err := Decode(io.Discard, bytes.NewReader(compressed.Bytes()),
		rcfg); err != nil {
		t.Fatalf("Decode error %s", err)
	}
	if calls == 0 {
		t.Fatalf("decode progress was never called")
	}
	if lastOut != int64(len(data)) {
		t.Fatalf("final progress out = %d; want %d", lastOut, len(data))
	}
}

func BenchmarkEncode(b *testing.B) {
	data := testInput(1<<18, 51)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Encode(io.Discard, bytes.NewReader(data),
			WriterConfig{}); err != nil {
			b.Fatalf("Encode error %s", err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	data := testInput(1<<18, 53)
	var buf bytes.Buffer
	if err := Encode(&buf, bytes.NewReader(data), WriterConfig{}); err != nil {
		b.Fatalf("Encode error %s", err)
	}
	c := buf.Bytes()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Decode(io.Discard, bytes.NewReader(c),
			ReaderConfig{}); err != nil {
			b.Fatalf("Decode error %s", err)
		}
	}
}
