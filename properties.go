package lzma

import "fmt"

// Maximum and minimum values for the individual properties.
const (
	MinLC = 0
	MaxLC = 8
	MinLP = 0
	MaxLP = 4
	MinPB = 0
	MaxPB = 4
)

// Properties are the lc/lp/pb parameters of an LZMA stream.
type Properties struct {
	// number of literal context bits
	LC int
	// number of literal position bits
	LP int
	// number of position bits
	PB int
}

// Verify checks that all properties are within their ranges.
func (p Properties) Verify() error {
	if !(MinLC <= p.LC && p.LC <= MaxLC) {
		return fmt.Errorf("lzma: LC %d out of range [%d,%d]", p.LC, MinLC, MaxLC)
	}
	if !(MinLP <= p.LP && p.LP <= MaxLP) {
		return fmt.Errorf("lzma: LP %d out of range [%d,%d]", p.LP, MinLP, MaxLP)
	}
	if !(MinPB <= p.PB && p.PB <= MaxPB) {
		return fmt.Errorf("lzma: PB %d out of range [%d,%d]", p.PB, MinPB, MaxPB)
	}
	return nil
}

// Code returns the single-byte encoding (pb*5+lp)*9+lc used in the
// stream header.
func (p Properties) Code() byte {
	return byte((p.PB*5+p.LP)*9 + p.LC)
}

// PropertiesForCode decodes the header properties byte.
func PropertiesForCode(c byte) (p Properties, err error) {
	if c >= 9*5*5 {
		return Properties{}, ErrHeader
	}
	x := int(c)
	p.LC = x % 9
	x /= 9
	p.LP = x % 5
	p.PB = x / 5
	if err = p.Verify(); err != nil {
		return Properties{}, ErrHeader
	}
	return p, nil
}
