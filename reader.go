package lzma

import "io"

// NewReader returns a ReadCloser that decompresses the LZMA stream read
// from r. Reads from the returned reader deliver the uncompressed data.
// It is the caller's responsibility to call Close when done.
func NewReader(r io.Reader) io.ReadCloser {
	return NewReaderConfig(r, ReaderConfig{})
}

// NewReaderConfig is NewReader with an explicit configuration.
func NewReaderConfig(r io.Reader, cfg ReaderConfig) io.ReadCloser {
	pr, pw := io.Pipe()
	go func() {
		err := Decode(pw, r, cfg)
		pw.CloseWithError(err)
	}()
	return pr
}
