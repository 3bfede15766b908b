package arena

import "sync"

var (
	defaultOnce  sync.Once
	defaultArena *Arena
)

// Default returns the process-wide arena, created on first use with the
// default configuration over the heap provider.
func Default() *Arena {
	defaultOnce.Do(func() {
		cfg := DefaultConfig()
		cfg.Name = "default"
		defaultArena = New(cfg, nil)
	})
	return defaultArena
}

// Alloc allocates from the default arena.
func Alloc(size int64) (Ref, []byte, error) { return Default().Alloc(size) }

// Free releases a block of the default arena.
func Free(ref Ref) error { return Default().Free(ref) }

// Resize resizes a block of the default arena.
func Resize(ref Ref, size int64, mode ResizeMode) (Ref, []byte, error) {
	return Default().Resize(ref, size, mode)
}
