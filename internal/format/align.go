package format

// Alignment utilities for the block and segment layout.
// Every block size is a multiple of the 16-byte quantum, and raw-memory
// extents are a multiple of the provider's page size.

const (
	// Quantum is the alignment quantum for block sizes and payload offsets.
	Quantum = 16

	// HeaderSize is the size of a block header: one size word plus one
	// state word. A segment's trailing guard is a bare header.
	HeaderSize = 16

	// BodyMin is the smallest block body. A zero-byte request still
	// produces a BodyMin body, so the returned handle is distinct.
	BodyMin = 32

	quantumMask = Quantum - 1
)

// AlignUp returns n rounded up to the next multiple of the quantum.
//
// Example:
//
//	AlignUp(1)  = 16
//	AlignUp(16) = 16
//	AlignUp(17) = 32
func AlignUp(n int64) int64 {
	return (n + quantumMask) &^ quantumMask
}

// RoundBody normalizes a requested body size: at least BodyMin, rounded
// up to the quantum.
func RoundBody(n int64) int64 {
	if n <= BodyMin {
		return BodyMin
	}
	return AlignUp(n)
}

// RoundTo returns n rounded up to the next multiple of unit.
// unit must be positive; it need not be a power of two.
func RoundTo(n, unit int64) int64 {
	if r := n % unit; r != 0 {
		return n + unit - r
	}
	return n
}

// MultipleOf returns n rounded up to a multiple of the quantum, used to
// normalize caller-supplied alignments.
func MultipleOf(n int64) int64 {
	return RoundTo(n, Quantum)
}
