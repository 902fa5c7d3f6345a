package lzma

// movebits defines the number of bits used for the updates of probability
// values.
const movebits = 5

// probbits defines the number of bits of a probability value.
const probbits = 11

// probInit defines 0.5 as initial value for prob values.
const probInit prob = 1 << (probbits - 1)

// Type prob represents probabilities. The value is the probability of bit
// 0 in units of 2^-11.
type prob uint16

// inc increases the probability. The increase is proportional to the
// difference of 1 and the probability value.
func (p *prob) inc() {
	*p += ((1 << probbits) - *p) >> movebits
}

// dec decreases the probability. The decrease is proportional to the
// probability value.
func (p *prob) dec() {
	*p -= *p >> movebits
}

// bound computes the new bound for a given range using the probability
// value.
func (p prob) bound(r uint32) uint32 {
	return (r >> probbits) * uint32(p)
}

// newProbs allocates a probability bank with all values at 0.5.
func newProbs(n uint32) []prob {
	probs := make([]prob, n)
	for i := range probs {
		probs[i] = probInit
	}
	return probs
}

// Price estimation. Prices approximate the number of bits the range coder
// will spend on a decision, scaled by 64. They steer the optimal parse
// and never affect correctness of the stream.
const (
	moveReducingBits  = 2
	bitPriceShiftBits = 6
)

// probPrices is an immutable lookup table from reduced probability values
// to bit prices.
var probPrices = makeProbPrices()

func makeProbPrices() [1 << (probbits - moveReducingBits)]uint32 {
	var prices [1 << (probbits - moveReducingBits)]uint32
	const numBits = probbits - moveReducingBits
	for i := numBits - 1; i >= 0; i-- {
		start := uint32(1) << (numBits - i - 1)
		end := uint32(1) << (numBits - i)
		for j := start; j < end; j++ {
			prices[j] = uint32(i)<<bitPriceShiftBits +
				((end-j)<<bitPriceShiftBits)>>(numBits-i-1)
		}
	}
	return prices
}

// price returns the cost estimate for coding the given bit under p.
func price(p prob, bit uint32) uint32 {
	return probPrices[(((uint32(p)-bit)^(-bit))&((1<<probbits)-1))>>moveReducingBits]
}

// price0 returns the cost estimate for coding a 0 bit under p.
func price0(p prob) uint32 {
	return probPrices[p>>moveReducingBits]
}

// price1 returns the cost estimate for coding a 1 bit under p.
func price1(p prob) uint32 {
	return probPrices[((1<<probbits)-uint32(p))>>moveReducingBits]
}
