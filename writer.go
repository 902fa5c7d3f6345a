package lzma

import "io"

// The write side runs the encoder in a goroutine fed through a pipe. A
// plain io.Pipe is not enough: Close on the writer must not return
// before the encoder has flushed the end marker and the range coder
// tail, so the two ends are coupled with a channel that also carries
// the encoder's error back to Close.

type syncPipeReader struct {
	*io.PipeReader
	closeChan chan error
}

func (sr *syncPipeReader) CloseWithError(err error) error {
	retErr := sr.PipeReader.CloseWithError(err)
	sr.closeChan <- err
	return retErr
}

type syncPipeWriter struct {
	*io.PipeWriter
	closeChan chan error
}

// Close waits for the encoder to finish and reports its error, if any.
func (sw *syncPipeWriter) Close() error {
	err := sw.PipeWriter.Close()
	if cerr := <-sw.closeChan; cerr != nil {
		err = cerr
	}
	return err
}

func syncPipe() (*syncPipeReader, *syncPipeWriter) {
	r, w := io.Pipe()
	sr := &syncPipeReader{r, make(chan error, 1)}
	sw := &syncPipeWriter{w, sr.closeChan}
	return sr, sw
}

// NewWriterConfig returns a WriteCloser that compresses data written to
// it into an LZMA stream written to w. The stream header derived from
// cfg is written before any compressed data. Close must be called to
// terminate the stream; its error is the first error of the session.
//
// Unlike gzip, LZMA stores the uncompressed size in the leading header,
// so a known size must be passed in via cfg.Size and cfg.SizeInHeader
// before compression starts; SizeInHeader is set automatically for
// positive sizes. Without it the stream is terminated by an end marker,
// growing the output by 5 or 6 bytes.
func NewWriterConfig(w io.Writer, cfg WriterConfig) io.WriteCloser {
	pr, pw := syncPipe()
	go func() {
		err := Encode(w, pr, cfg)
		pr.CloseWithError(err)
	}()
	return pw
}

// NewWriterSizeLevel compresses with the given compression level for a
// stream of the given uncompressed size; a negative size means unknown.
func NewWriterSizeLevel(w io.Writer, size int64, level int) io.WriteCloser {
	cfg := Preset(level)
	if size >= 0 {
		cfg.Size = size
		cfg.SizeInHeader = true
		cfg.EOS = false
	}
	return NewWriterConfig(w, cfg)
}

// NewWriterLevel is NewWriterSizeLevel with an unknown size.
func NewWriterLevel(w io.Writer, level int) io.WriteCloser {
	return NewWriterSizeLevel(w, -1, level)
}

// NewWriterSize is NewWriterSizeLevel at DefaultCompression.
func NewWriterSize(w io.Writer, size int64) io.WriteCloser {
	return NewWriterSizeLevel(w, size, DefaultCompression)
}

// NewWriter is NewWriterSizeLevel with an unknown size at
// DefaultCompression.
func NewWriter(w io.Writer) io.WriteCloser {
	return NewWriterSizeLevel(w, -1, DefaultCompression)
}
