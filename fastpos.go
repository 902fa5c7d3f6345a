package lzma

// fastPos maps small distances to position slots. Larger distances are
// reduced by shifting before the lookup.
var fastPos = makeFastPos()

func makeFastPos() [1 << 11]byte {
	var t [1 << 11]byte
	const fastSlots = 22
	c := 2
	t[0] = 0
	t[1] = 1
	for slot := 2; slot < fastSlots; slot++ {
		k := 1 << uint(slot>>1-1)
		for j := 0; j < k; j++ {
			t[c] = byte(slot)
			c++
		}
	}
	return t
}

// posSlot returns the position slot for a match distance.
func posSlot(pos uint32) uint32 {
	if pos < 1<<11 {
		return uint32(fastPos[pos])
	}
	if pos < 1<<21 {
		return uint32(fastPos[pos>>10]) + 20
	}
	return uint32(fastPos[pos>>20]) + 40
}

// posSlot2 is posSlot for distances known to be at least numFullDistances.
func posSlot2(pos uint32) uint32 {
	if pos < 1<<17 {
		return uint32(fastPos[pos>>6]) + 12
	}
	if pos < 1<<27 {
		return uint32(fastPos[pos>>16]) + 32
	}
	return uint32(fastPos[pos>>26]) + 52
}
