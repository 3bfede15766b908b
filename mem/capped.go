package mem

// RoundPages rounds size up to a whole number of pages.
func RoundPages(size, pagesize int64) int64 {
	if r := size % pagesize; r != 0 {
		return size + pagesize - r
	}
	return size
}

// Capped bounds the total bytes outstanding from an inner provider.
// Acquire and Extend fail with ErrExhausted once the quota would be
// exceeded; Shrink returns quota. Arena tests use it to drive the
// allocator into controlled exhaustion.
type Capped struct {
	inner Provider
	limit int64
	used  int64
}

// NewCapped wraps inner with a total-bytes quota.
func NewCapped(inner Provider, limit int64) *Capped {
	return &Capped{inner: inner, limit: limit}
}

func (c *Capped) Acquire(size int64) ([]byte, error) {
	if c.used+size > c.limit {
		return nil, ErrExhausted
	}
	buf, err := c.inner.Acquire(size)
	if err != nil {
		return nil, err
	}
	c.used += size
	return buf, nil
}

func (c *Capped) Extend(buf []byte, size int64) ([]byte, error) {
	delta := size - int64(len(buf))
	if delta <= 0 {
		return buf, nil
	}
	if c.used+delta > c.limit {
		return nil, ErrExhausted
	}
	grown, err := c.inner.Extend(buf, size)
	if err != nil {
		return nil, err
	}
	c.used += delta
	return grown, nil
}

func (c *Capped) Shrink(buf []byte, size int64) ([]byte, error) {
	kept, err := c.inner.Shrink(buf, size)
	if err != nil {
		return nil, err
	}
	c.used -= int64(len(buf)) - size
	return kept, nil
}

func (c *Capped) Pagesize() int64 { return c.inner.Pagesize() }

// Used reports the bytes currently drawn against the quota.
func (c *Capped) Used() int64 { return c.used }
