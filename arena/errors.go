package arena

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found and
	// the raw-memory provider could not supply more.
	ErrNoSpace = errors.New("arena: no free block large enough")

	// ErrBadRef indicates an invalid, freed, or out-of-range block handle.
	ErrBadRef = errors.New("arena: bad block reference")

	// ErrBadSize indicates a non-positive size or alignment where a
	// positive one is required.
	ErrBadSize = errors.New("arena: size and alignment must be positive")
)
