package report

import (
	"testing"

	"github.com/corelang/lexgen/fa"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	calls []string
}

func (r *recordingSink) Emit(stage string, snapshot *fa.FA, key string) {
	r.calls = append(r.calls, stage+":"+key)
}

func TestDiscardIgnoresEmit(t *testing.T) {
	var s Sink = Discard{}
	require.NotPanics(t, func() {
		s.Emit(StageChar, fa.New(), "r0")
	})
}

func TestSinkInterfaceIsSatisfiedByCustomImplementations(t *testing.T) {
	rec := &recordingSink{}
	var s Sink = rec

	s.Emit(StageAlt, fa.New(), "r0")
	s.Emit(StageMerge, fa.New(), "r1")

	require.Equal(t, []string{"alt:r0", "merge:r1"}, rec.calls)
}
