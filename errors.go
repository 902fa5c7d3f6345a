package lzma

import "errors"

// ErrCorrupt reports compressed data that cannot be a valid LZMA stream:
// a match distance pointing before the start of the output, a truncated
// range-coder tail or a broken end marker.
var ErrCorrupt = errors.New("lzma: data is corrupt")

// ErrHeader reports a short stream header or one that decodes to
// properties outside the supported ranges.
var ErrHeader = errors.New("lzma: invalid header")

// errUnexpectedWrite reports a Writer that accepted fewer bytes than
// given without returning an error.
var errUnexpectedWrite = errors.New("lzma: short write")

// failure wraps errors raised deep inside the coding loops. The loops are
// not written with error returns on every bit operation; instead I/O and
// corruption failures unwind by panic and are converted back to plain
// errors at the package boundary.
type failure struct {
	err error
}

// throw aborts the current coding session with err.
func throw(err error) {
	panic(&failure{err})
}

// recoverFailure converts a failure panic into an error return. Any other
// panic is genuine and resumes.
func recoverFailure(errp *error) {
	if v := recover(); v != nil {
		f, ok := v.(*failure)
		if !ok {
			panic(v)
		}
		*errp = f.err
	}
}
