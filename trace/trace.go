// Package trace defines the optional tracing collaborator for arenas.
//
// An arena emits one Event per successful front-end operation. The arena
// never interprets events; sinks decide what to keep. The zap-backed
// sink is the usual choice outside tests.
package trace

import "go.uber.org/zap"

// Op identifies the front-end operation that produced an event.
type Op uint8

const (
	OpAlloc Op = iota + 1
	OpFree
	OpResize
	OpAlign
	OpCompact
)

func (op Op) String() string {
	switch op {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	case OpResize:
		return "resize"
	case OpAlign:
		return "align"
	case OpCompact:
		return "compact"
	}
	return "unknown"
}

// Event describes one successful operation on an arena.
// Old and New are block handles; either may be zero depending on Op.
type Event struct {
	Arena string
	Op    Op
	Old   uint64
	New   uint64
	Size  int64
	Align int64
}

// Tracer receives events from an arena. Implementations must be safe for
// concurrent use; arenas call Emit while holding no locks of their own
// beyond the per-arena mutex.
type Tracer interface {
	Emit(Event)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Emit(Event) {}

// LogTracer writes events to a zap logger at debug level.
type LogTracer struct {
	log *zap.Logger
}

// NewLogTracer returns a tracer logging to lg.
func NewLogTracer(lg *zap.Logger) *LogTracer {
	return &LogTracer{log: lg}
}

func (t *LogTracer) Emit(ev Event) {
	t.log.Debug("arena op",
		zap.String("arena", ev.Arena),
		zap.Stringer("op", ev.Op),
		zap.Uint64("old", ev.Old),
		zap.Uint64("new", ev.New),
		zap.Int64("size", ev.Size),
		zap.Int64("align", ev.Align),
	)
}
