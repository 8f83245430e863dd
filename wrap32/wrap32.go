// Package wrap32 implements wrapping 32-bit sequence-number arithmetic
// with a checkpoint-based unwrap, as used by TCP sequence numbers.
package wrap32

// Wrap32 holds a 32-bit residue of an absolute 64-bit sequence index,
// offset from some agreed-upon zero point (e.g. the ISN).
type Wrap32 struct {
	raw uint32
}

// New constructs a Wrap32 directly from a raw 32-bit value.
func New(raw uint32) Wrap32 { return Wrap32{raw: raw} }

// Raw returns the underlying 32-bit residue.
func (w Wrap32) Raw() uint32 { return w.raw }

// Wrap returns the Wrap32 for absolute index n relative to zero, i.e.
// wrap(n, zero) = (low32(n) + zero) mod 2^32.
func Wrap(n uint64, zero Wrap32) Wrap32 {
	return Wrap32{raw: uint32(n) + zero.raw}
}

// Unwrap returns the absolute 64-bit index whose Wrap(zero) equals w and
// that lies nearest to checkpoint (ties resolve toward the smaller value).
// Negative candidates are discarded. For checkpoint >= 2^31 the result
// satisfies |Unwrap(zero,checkpoint) - checkpoint| <= 2^31; below that it
// can be further away, as the smallest non-negative index with this residue.
func (w Wrap32) Unwrap(zero Wrap32, checkpoint uint64) uint64 {
	offset := uint64(w.raw - zero.raw) // (raw-zero) mod 2^32, computed in uint32 arithmetic.
	const wrapSize = uint64(1) << 32
	high := checkpoint &^ (wrapSize - 1) // checkpoint with its low 32 bits cleared.
	cand := offset + high

	best := cand
	bestDelta := delta(cand, checkpoint)
	// A tie is resolved toward the smaller absolute value, so try the
	// lower candidate (cand-wrapSize) before the higher one (cand+wrapSize).
	if cand >= wrapSize {
		if lower := cand - wrapSize; delta(lower, checkpoint) <= bestDelta {
			best, bestDelta = lower, delta(lower, checkpoint)
		}
	}
	if upper := cand + wrapSize; delta(upper, checkpoint) < bestDelta {
		best = upper
	}
	return best
}

func delta(x, y uint64) uint64 {
	if x > y {
		return x - y
	}
	return y - x
}

// Add returns the Wrap32 shifted forward by n. Wraps at 2^32 as expected.
func (w Wrap32) Add(n uint32) Wrap32 { return Wrap32{raw: w.raw + n} }

// Equal reports whether two Wrap32 values hold the same 32-bit residue.
func (w Wrap32) Equal(o Wrap32) bool { return w.raw == o.raw }
