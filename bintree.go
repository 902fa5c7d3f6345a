package lzma

import (
	"hash/crc32"
	"io"
)

const (
	hash2Size          = 1 << 10
	hash3Size          = 1 << 16
	hash3Offset        = hash2Size
	bt2HashSize        = 1 << 16
	startMaxLen        = 1
	emptyHashValue     = 0
	maxValForNormalize = (1 << 30) - 1
)

// crcTable feeds the rolling prefix hashes of the bt4 match finder. The
// reference codec builds the same reflected IEEE table by hand.
var crcTable = crc32.MakeTable(crc32.IEEE)

// binTree finds back-references for the encoder. For every window
// position it keeps two child links in son, forming a binary search tree
// over the suffixes starting there, ordered by the forthcoming bytes.
// Hash buckets over 2-, 3- and 4-byte prefixes hold the most recent
// position with that prefix and act as tree roots. The tree is an
// arena of uint32 indices; positions older than the cyclic buffer are
// never followed.
type binTree struct {
	win *inWindow

	son  []uint32
	hash []uint32

	cyclicPos  uint32
	cyclicSize uint32

	matchMaxLen uint32
	cutValue    uint32

	hashMask    uint32
	hashSizeSum uint32

	// bt4 hashes 2/3/4-byte prefixes; bt2 uses the two leading bytes
	// directly and reports them as guaranteed match bytes.
	hash4           bool
	hashDirectBytes uint32
	minMatchCheck   uint32
	fixHashSize     uint32
}

// newBinTree creates a match finder over the given stream. matchMaxLen
// is the number of fast bytes; lookahead is the extra buffer kept before
// the position for the optimal parse and keepAfter the slack beyond the
// longest match.
func newBinTree(r io.Reader, historySize, lookahead, matchMaxLen, keepAfter, hashBytes uint32) *binTree {
	t := &binTree{
		son:         make([]uint32, (historySize+1)*2),
		cyclicSize:  historySize + 1,
		matchMaxLen: matchMaxLen,
		cutValue:    16 + matchMaxLen>>1,
	}

	reserve := (historySize+lookahead+matchMaxLen+keepAfter)/2 + 256
	t.win = newInWindow(r, historySize+lookahead, matchMaxLen+keepAfter, reserve)

	if hashBytes > 2 {
		t.hash4 = true
		t.hashDirectBytes = 0
		t.minMatchCheck = 4
		t.fixHashSize = hash2Size + hash3Size
	} else {
		t.hash4 = false
		t.hashDirectBytes = 2
		t.minMatchCheck = 3
		t.fixHashSize = 0
	}

	hs := uint32(bt2HashSize)
	if t.hash4 {
		hs = historySize - 1
		hs |= hs >> 1
		hs |= hs >> 2
		hs |= hs >> 4
		hs |= hs >> 8
		hs >>= 1
		hs |= 0xFFFF
		if hs > 1<<24 {
			hs >>= 1
		}
		t.hashMask = hs
		hs++
		hs += t.fixHashSize
	}
	t.hashSizeSum = hs
	t.hash = make([]uint32, t.hashSizeSum)

	// Rebase so positions start at 1; 0 stays the empty-hash sentinel.
	t.win.reduceOffsets(0xFFFFFFFF)
	return t
}

// hashes computes the bucket indices for the current position.
func (t *binTree) hashes(cur uint32) (hashValue, hash2Value, hash3Value uint32) {
	if t.hash4 {
		tmp := crcTable[t.win.buf[cur]] ^ uint32(t.win.buf[cur+1])
		hash2Value = tmp & (hash2Size - 1)
		tmp ^= uint32(t.win.buf[cur+2]) << 8
		hash3Value = tmp & (hash3Size - 1)
		hashValue = (tmp ^ crcTable[t.win.buf[cur+3]]<<5) & t.hashMask
	} else {
		hashValue = uint32(t.win.buf[cur]) ^ uint32(t.win.buf[cur+1])<<8
	}
	return
}

func normalizeLinks(items []uint32, numItems, subValue uint32) {
	for i := uint32(0); i < numItems; i++ {
		value := items[i]
		if value <= subValue {
			value = emptyHashValue
		} else {
			value -= subValue
		}
		items[i] = value
	}
}

// normalize rebases all stored positions before the absolute position
// can reach the 30-bit wrap-around limit.
func (t *binTree) normalize() {
	subValue := t.win.pos - t.cyclicSize
	normalizeLinks(t.son, t.cyclicSize*2, subValue)
	normalizeLinks(t.hash, t.hashSizeSum, subValue)
	t.win.reduceOffsets(subValue)
}

func (t *binTree) movePos() {
	t.cyclicPos++
	if t.cyclicPos >= t.cyclicSize {
		t.cyclicPos = 0
	}
	t.win.movePos()
	if t.win.pos == maxValForNormalize {
		t.normalize()
	}
}

// getMatches reports the candidate back-references at the current
// position as (length, distance) pairs of increasing length in dists,
// returns the number of slots used and advances the position. Every
// reported pair references bytes identical to the lookahead.
func (t *binTree) getMatches(dists []uint32) uint32 {
	var lenLimit uint32
	if t.win.pos+t.matchMaxLen <= t.win.streamPos {
		lenLimit = t.matchMaxLen
	} else {
		lenLimit = t.win.streamPos - t.win.pos
		if lenLimit < t.minMatchCheck {
			t.movePos()
			return 0
		}
	}

	offset := uint32(0)
	matchMinPos := uint32(0)
	if t.win.pos > t.cyclicSize {
		matchMinPos = t.win.pos - t.cyclicSize
	}
	cur := t.win.bufOffset + t.win.pos
	maxLen := uint32(startMaxLen)

	hashValue, hash2Value, hash3Value := t.hashes(cur)

	curMatch := t.hash[t.fixHashSize+hashValue]
	if t.hash4 {
		curMatch2 := t.hash[hash2Value]
		curMatch3 := t.hash[hash3Offset+hash3Value]
		t.hash[hash2Value] = t.win.pos
		t.hash[hash3Offset+hash3Value] = t.win.pos
		if curMatch2 > matchMinPos {
			if t.win.buf[t.win.bufOffset+curMatch2] == t.win.buf[cur] {
				maxLen = 2
				dists[offset] = maxLen
				dists[offset+1] = t.win.pos - curMatch2 - 1
				offset += 2
			}
		}
		if curMatch3 > matchMinPos {
			if t.win.buf[t.win.bufOffset+curMatch3] == t.win.buf[cur] {
				if curMatch3 == curMatch2 {
					offset -= 2
				}
				maxLen = 3
				dists[offset] = maxLen
				dists[offset+1] = t.win.pos - curMatch3 - 1
				offset += 2
				curMatch2 = curMatch3
			}
		}
		if offset != 0 && curMatch2 == curMatch {
			offset -= 2
			maxLen = startMaxLen
		}
	}

	t.hash[t.fixHashSize+hashValue] = t.win.pos

	if t.hashDirectBytes != 0 {
		if curMatch > matchMinPos {
			if t.win.buf[t.win.bufOffset+curMatch+t.hashDirectBytes] !=
				t.win.buf[cur+t.hashDirectBytes] {
				maxLen = t.hashDirectBytes
				dists[offset] = maxLen
				dists[offset+1] = t.win.pos - curMatch - 1
				offset += 2
			}
		}
	}

	ptr0 := t.cyclicPos<<1 + 1
	ptr1 := t.cyclicPos << 1
	len0 := t.hashDirectBytes
	len1 := t.hashDirectBytes
	count := t.cutValue

	for {
		if curMatch <= matchMinPos || count == 0 {
			t.son[ptr1] = emptyHashValue
			t.son[ptr0] = emptyHashValue
			break
		}
		count--

		delta := t.win.pos - curMatch
		var cyclicPos uint32
		if delta <= t.cyclicPos {
			cyclicPos = (t.cyclicPos - delta) << 1
		} else {
			cyclicPos = (t.cyclicPos - delta + t.cyclicSize) << 1
		}
		pby1 := t.win.bufOffset + curMatch
		length := minUint32(len0, len1)
		if t.win.buf[pby1+length] == t.win.buf[cur+length] {
			for length++; length != lenLimit; length++ {
				if t.win.buf[pby1+length] != t.win.buf[cur+length] {
					break
				}
			}
			if maxLen < length {
				maxLen = length
				dists[offset] = maxLen
				dists[offset+1] = delta - 1
				offset += 2
				if length == lenLimit {
					// The candidate's suffix equals the full
					// lookahead; reuse its subtree instead of
					// comparing further.
					t.son[ptr1] = t.son[cyclicPos]
					t.son[ptr0] = t.son[cyclicPos+1]
					break
				}
			}
		}

		if t.win.buf[pby1+length] < t.win.buf[cur+length] {
			t.son[ptr1] = curMatch
			ptr1 = cyclicPos + 1
			curMatch = t.son[ptr1]
			len1 = length
		} else {
			t.son[ptr0] = curMatch
			ptr0 = cyclicPos
			curMatch = t.son[ptr0]
			len0 = length
		}
	}
	t.movePos()
	return offset
}

// skip advances the match finder by num positions, inserting each into
// the tree without recording matches.
func (t *binTree) skip(num uint32) {
	for i := uint32(0); i < num; i++ {
		var lenLimit uint32
		if t.win.pos+t.matchMaxLen <= t.win.streamPos {
			lenLimit = t.matchMaxLen
		} else {
			lenLimit = t.win.streamPos - t.win.pos
			if lenLimit < t.minMatchCheck {
				t.movePos()
				continue
			}
		}

		matchMinPos := uint32(0)
		if t.win.pos > t.cyclicSize {
			matchMinPos = t.win.pos - t.cyclicSize
		}
		cur := t.win.bufOffset + t.win.pos

		hashValue, hash2Value, hash3Value := t.hashes(cur)
		if t.hash4 {
			t.hash[hash2Value] = t.win.pos
			t.hash[hash3Offset+hash3Value] = t.win.pos
		}

		curMatch := t.hash[t.fixHashSize+hashValue]
		t.hash[t.fixHashSize+hashValue] = t.win.pos

		ptr0 := t.cyclicPos<<1 + 1
		ptr1 := t.cyclicPos << 1
		len0 := t.hashDirectBytes
		len1 := t.hashDirectBytes
		count := t.cutValue
		for {
			if curMatch <= matchMinPos || count == 0 {
				t.son[ptr1] = emptyHashValue
				t.son[ptr0] = emptyHashValue
				break
			}
			count--

			delta := t.win.pos - curMatch
			var cyclicPos uint32
			if delta <= t.cyclicPos {
				cyclicPos = (t.cyclicPos - delta) << 1
			} else {
				cyclicPos = (t.cyclicPos - delta + t.cyclicSize) << 1
			}
			pby1 := t.win.bufOffset + curMatch
			length := minUint32(len0, len1)
			if t.win.buf[pby1+length] == t.win.buf[cur+length] {
				for length++; length != lenLimit; length++ {
					if t.win.buf[pby1+length] != t.win.buf[cur+length] {
						break
					}
				}
				if length == lenLimit {
					t.son[ptr1] = t.son[cyclicPos]
					t.son[ptr0] = t.son[cyclicPos+1]
					break
				}
			}

			if t.win.buf[pby1+length] < t.win.buf[cur+length] {
				t.son[ptr1] = curMatch
				ptr1 = cyclicPos + 1
				curMatch = t.son[ptr1]
				len1 = length
			} else {
				t.son[ptr0] = curMatch
				ptr0 = cyclicPos
				curMatch = t.son[ptr0]
				len0 = length
			}
		}
		t.movePos()
	}
}
