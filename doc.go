// Package lzma implements reading and writing of raw LZMA streams in the
// classic .lzma layout: one properties byte, the little-endian dictionary
// size, the little-endian uncompressed size and the range-coded stream.
//
// Usage:
//
//	r := lzma.NewReader(f)
//
//	w := lzma.NewWriter(f)
//
// The compressor is the optimal-parsing variant of the reference
// implementation in the LZMA SDK by Igor Pavlov, available at
// http://www.7-zip.org/sdk.html. For a given configuration the output is
// byte-exact with that codec.
package lzma
