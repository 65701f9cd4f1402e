// Package report defines the pluggable reporting sink every synthesis
// and construction stage emits snapshots to. The core never performs
// I/O itself. sinks/dot and sinks/gocode render the encoded output.DFA
// record; they do not implement Sink.
package report

import "github.com/corelang/lexgen/fa"

// Stage tags identify which pipeline step produced a snapshot.
const (
	StageChar     = "char"
	StageSet      = "set"
	StageRange    = "range"
	StageConcat   = "concat"
	StageAlt      = "alt"
	StageClosure  = "closure"
	StageMerge    = "merge"
	StageSubset   = "subset"
	StageHopcroft = "hopcroft"
	StageError    = "error"
)

// Sink receives a snapshot of an FA at a named stage, keyed by an
// implementation-defined string (typically a rule name or an internal
// step counter). Implementations must not retain snapshot after Emit
// returns if they intend to mutate it further upstream — sinks that
// need to keep it should copy what they need out during the call.
type Sink interface {
	Emit(stage string, snapshot *fa.FA, key string)
}

// Discard is the zero-cost no-op sink used when the caller passes a nil
// sink to pipeline.Run or the thompson entry points.
type Discard struct{}

func (Discard) Emit(stage string, snapshot *fa.FA, key string) {}
