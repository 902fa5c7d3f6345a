package lzma

import "fmt"

// Compression levels understood by Preset and NewWriterLevel.
const (
	BestSpeed          = 1
	BestCompression    = 9
	DefaultCompression = 5
)

// Match finder variants.
const (
	// MFBT2 hashes two-byte prefixes, binary tree over the rest.
	MFBT2 = "bt2"
	// MFBT4 hashes two-, three- and four-byte prefixes.
	MFBT4 = "bt4"
)

// Dictionary size limits for the compressor.
const (
	MinDictSize = 1
	MaxDictSize = 1 << 29
)

// Number of fast bytes limits.
const (
	MinFastBytes = 5
	MaxFastBytes = 273
)

// Progress is called with the number of uncompressed and compressed
// bytes handled so far. The codec invokes it between bounded chunks of
// work; it must not retain its arguments.
type Progress func(in, out int64)

// WriterConfig parametrizes a compression session.
type WriterConfig struct {
	Properties

	// dictionary size in bytes
	DictSize uint32

	// number of fast bytes; match candidates at least this long stop
	// the optimal parse
	FastBytes uint32

	// match finder variant, MFBT2 or MFBT4
	MatchFinder string

	// uncompressed size; written to the stream header when
	// SizeInHeader is set
	Size int64

	// record the uncompressed size in the stream header; without it
	// the header announces an unknown size and the stream is
	// terminated by an end marker. Set automatically for positive
	// sizes.
	SizeInHeader bool

	// force the end marker even when the size is in the header
	EOS bool

	// optional progress callback
	Progress Progress
}

// fill replaces zero values by defaults. A zero WriterConfig compresses
// with DefaultCompression parameters and unknown size.
func (c *WriterConfig) fill() {
	def := Preset(DefaultCompression)
	if c.DictSize == 0 {
		c.DictSize = def.DictSize
	}
	if c.FastBytes == 0 {
		c.FastBytes = def.FastBytes
	}
	if c.LC == 0 && c.LP == 0 && c.PB == 0 {
		c.Properties = def.Properties
	}
	if c.MatchFinder == "" {
		c.MatchFinder = def.MatchFinder
	}
	if c.Size < 0 {
		c.Size = 0
		c.SizeInHeader = false
	}
	if c.Size > 0 {
		c.SizeInHeader = true
	}
	if !c.SizeInHeader {
		c.EOS = true
	}
}

// Verify rejects configurations outside the supported ranges. It is
// called before any stream I/O happens.
func (c *WriterConfig) Verify() error {
	if c == nil {
		return fmt.Errorf("lzma: writer configuration is nil")
	}
	if err := c.Properties.Verify(); err != nil {
		return err
	}
	if !(MinDictSize <= c.DictSize && c.DictSize <= MaxDictSize) {
		return fmt.Errorf("lzma: dictionary size %d out of range [%d,%d]",
			c.DictSize, MinDictSize, MaxDictSize)
	}
	if !(MinFastBytes <= c.FastBytes && c.FastBytes <= MaxFastBytes) {
		return fmt.Errorf("lzma: fast bytes %d out of range [%d,%d]",
			c.FastBytes, MinFastBytes, MaxFastBytes)
	}
	if c.MatchFinder != MFBT2 && c.MatchFinder != MFBT4 {
		return fmt.Errorf("lzma: unsupported match finder %q", c.MatchFinder)
	}
	if c.Size < 0 {
		return fmt.Errorf("lzma: illegal size %d", c.Size)
	}
	return nil
}

// dictLog returns the smallest n with 1<<n >= DictSize. It sizes the
// position-slot price table.
func (c *WriterConfig) dictLog() uint32 {
	n := uint32(0)
	for uint32(1)<<n < c.DictSize {
		n++
	}
	return n
}

// presets maps compression levels to parameters. The dictionary grows
// and the parse gets more thorough with the level; lc/lp/pb stay at the
// (3,0,2) default throughout.
var presets = []WriterConfig{
	{},
	{DictSize: 1 << 16, FastBytes: 64, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 18, FastBytes: 64, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 20, FastBytes: 64, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 22, FastBytes: 128, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 23, FastBytes: 128, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 24, FastBytes: 128, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 25, FastBytes: 256, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 26, FastBytes: 256, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
	{DictSize: 1 << 27, FastBytes: 256, Properties: Properties{3, 0, 2}, MatchFinder: MFBT4},
}

// Preset returns the configuration for a compression level between
// BestSpeed and BestCompression. The size is left unknown.
func Preset(level int) WriterConfig {
	if level < BestSpeed || level > BestCompression {
		level = DefaultCompression
	}
	cfg := presets[level]
	cfg.EOS = true
	return cfg
}
