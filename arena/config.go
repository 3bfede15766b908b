package arena

// Config carries the tunable thresholds of an arena. The numeric defaults
// are empirically tuned carry-overs; they have no derivation beyond
// matching observed behavior, which is why they are configuration rather
// than constants.
type Config struct {
	// Name labels the arena in trace events and stats output.
	Name string

	// GrowIncrement is the initial growth hint: segment extensions are
	// rounded up to the current increment. The increment is raised when
	// oversized requests arrive and halved back by compaction when the
	// wilderness dwarfs it.
	GrowIncrement int64

	// CompactFactor decides when compaction surrenders the wilderness:
	// only when it exceeds CompactFactor times both the growth increment
	// and the recent-free-size average.
	CompactFactor int64

	// PoolDecay is the divisor of the recent-free-size moving average:
	// on every free, pool = (pool + size) / PoolDecay.
	PoolDecay int64
}

// DefaultConfig returns the stock thresholds: 64 KiB growth increment,
// 8x compaction factor, 50% average decay.
func DefaultConfig() Config {
	return Config{
		Name:          "arena",
		GrowIncrement: 64 << 10,
		CompactFactor: 8,
		PoolDecay:     2,
	}
}

func (c *Config) sanitize() {
	d := DefaultConfig()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.GrowIncrement <= 0 {
		c.GrowIncrement = d.GrowIncrement
	}
	if c.CompactFactor <= 0 {
		c.CompactFactor = d.CompactFactor
	}
	if c.PoolDecay <= 1 {
		c.PoolDecay = d.PoolDecay
	}
}
