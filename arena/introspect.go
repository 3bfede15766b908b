package arena

// UsableSize reports the full body size of the live block headed by ref,
// which is at least what was requested and exactly what Bytes returns.
func (a *Arena) UsableSize(ref Ref) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, off, ok := a.validBusy(ref)
	if !ok {
		return 0, ErrBadRef
	}
	return s.bsize(off), nil
}

// Offset resolves an interior position: given any handle landing inside a
// live block's payload, it returns that block's own handle and the byte
// offset of the position within the payload. A position outside every
// live block is ErrBadRef.
func (a *Arena) Offset(ref Ref) (Ref, int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.byID[ref.segID()]
	pos := ref.payOff()
	if s == nil || pos < headerSize || pos >= s.guardOff() {
		return NilRef, 0, ErrBadRef
	}

	// walk the segment's block tiling to the block covering pos
	for off := int64(0); off < s.guardOff(); {
		body := s.bsize(off)
		end := off + headerSize + body
		if pos < end {
			st := s.state(off)
			if pos < off+headerSize || st&stBusy == 0 || st&stJunk != 0 {
				return NilRef, 0, ErrBadRef
			}
			return s.refAt(off + headerSize), pos - off - headerSize, nil
		}
		off = end
	}
	return NilRef, 0, ErrBadRef
}
