package lzma

// Constants of the coding model. They are shared by the encoder and the
// decoder; changing any of them changes the bit stream.
const (
	numRepDistances = 4
	numStates       = 12

	posSlotBits        = 6
	lenToPosStatesBits = 2
	lenToPosStates     = 1 << lenToPosStatesBits

	matchMinLen = 2

	alignBits      = 4
	alignTableSize = 1 << alignBits
	alignMask      = alignTableSize - 1

	startPosModelIndex = 4
	endPosModelIndex   = 14
	numFullDistances   = 1 << (endPosModelIndex / 2)

	numLitContextBitsMax = 8
	numLitPosBitsMax     = 4

	numPosStatesBitsMax = 4
	numPosStatesMax     = 1 << numPosStatesBitsMax

	lowLenBits    = 3
	midLenBits    = 3
	highLenBits   = 8
	lowLenSymbols = 1 << lowLenBits
	midLenSymbols = 1 << midLenBits
	lenSymbols    = lowLenSymbols + midLenSymbols + (1 << highLenBits)

	matchMaxLen = matchMinLen + lenSymbols - 1
)

// The coder state is a value in [0,12) tracking the classes of the last
// one or two emitted symbols. States below 7 mean the last symbol was a
// literal. The transition tables below are a shared contract between
// encoder and decoder.

// stateAfterLit returns the state after emitting a literal.
func stateAfterLit(s uint32) uint32 {
	if s < 4 {
		return 0
	}
	if s < 10 {
		return s - 3
	}
	return s - 6
}

// stateAfterMatch returns the state after emitting a simple match.
func stateAfterMatch(s uint32) uint32 {
	if s < 7 {
		return 7
	}
	return 10
}

// stateAfterRep returns the state after emitting a repeated match.
func stateAfterRep(s uint32) uint32 {
	if s < 7 {
		return 8
	}
	return 11
}

// stateAfterShortRep returns the state after a one-byte rep0 match.
func stateAfterShortRep(s uint32) uint32 {
	if s < 7 {
		return 9
	}
	return 11
}

// stateIsLit tells whether the last symbol was a literal. It selects
// between plain and matched literal coding.
func stateIsLit(s uint32) bool {
	return s < 7
}

// lenToPosState maps a match length to one of four position-slot
// probability banks.
func lenToPosState(length uint32) uint32 {
	length -= matchMinLen
	if length < lenToPosStates {
		return length
	}
	return lenToPosStates - 1
}

func minUint32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
