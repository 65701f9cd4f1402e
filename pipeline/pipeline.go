// Package pipeline orchestrates thompson -> subset -> hopcroft in two
// modes: flatten (combine first, determinize and minimize once) and
// structured (determinize and minimize each rule independently, then
// combine and re-run determinization/minimization once more).
package pipeline

import (
	"context"

	"github.com/corelang/lexgen/ast"
	"github.com/corelang/lexgen/errs"
	"github.com/corelang/lexgen/fa"
	"github.com/corelang/lexgen/hopcroft"
	"github.com/corelang/lexgen/report"
	"github.com/corelang/lexgen/subset"
	"github.com/corelang/lexgen/thompson"
	"golang.org/x/sync/errgroup"
)

// Options is the pipeline's configuration surface. No file/env surface
// exists at this layer; cmd/lexgen sources its own defaults without the
// core knowing about it.
type Options struct {
	// EmitSteps invokes the sink at every intermediate stage.
	EmitSteps bool
	// PropagateLabels keeps each rule's original provenance across
	// merge; when false, merged nodes carry no provenance.
	PropagateLabels bool
	// CombineGraphs is a hint consumed by multi-stage sinks that want
	// to aggregate every emission into one artefact; the driver itself
	// does not branch on it.
	CombineGraphs bool
	// Structured selects the structured pipeline (determinize and
	// minimize each rule, then Alt-combine and re-run once more) over
	// flatten.
	Structured bool
}

// errorOnlySink forwards only StageError emissions, used when
// opts.EmitSteps is false to suppress intermediate progress snapshots
// while still surfacing errors to the caller's sink.
type errorOnlySink struct {
	inner report.Sink
}

func (s errorOnlySink) Emit(stage string, snapshot *fa.FA, key string) {
	if stage == report.StageError {
		s.inner.Emit(stage, snapshot, key)
	}
}

// Result is the outcome of a pipeline run: the minimal DFA and the
// rule names in declaration order (Result.RuleTags[i] names the rule a
// Node.RuleTag of i in output.Encode's record refers to).
type Result struct {
	MinDFA   *fa.FA
	RuleTags []string
}

// Run synthesizes, determinizes and minimizes desc according to opts.
// ctx is threaded through every stage and checked at each boundary:
// after each AST visit, after each DFA state dequeued, after each
// Hopcroft split.
func Run(ctx context.Context, desc *ast.LexerDescription, opts Options, sink report.Sink) (*Result, error) {
	if sink == nil {
		sink = report.Discard{}
	}
	if !opts.EmitSteps {
		// Error snapshots are never gated by emit-steps — no error is
		// silently swallowed; only the intermediate per-template/
		// per-stage progress snapshots are.
		sink = errorOnlySink{inner: sink}
	}

	var minDFA *fa.FA
	var err error
	if opts.Structured {
		minDFA, err = runStructured(ctx, desc, opts, sink)
	} else {
		minDFA, err = runFlatten(ctx, desc, opts, sink)
	}
	if err != nil {
		return nil, err
	}

	tags := make([]string, len(desc.Rules))
	for i, r := range desc.Rules {
		tags[i] = r.Name
	}
	return &Result{MinDFA: minDFA, RuleTags: tags}, nil
}

func runFlatten(ctx context.Context, desc *ast.LexerDescription, opts Options, sink report.Sink) (*fa.FA, error) {
	nfa, err := thompson.Synthesize(ctx, desc, opts.PropagateLabels, sink)
	if err != nil {
		return nil, err
	}

	dfa, err := subset.Build(ctx, nfa)
	if err != nil {
		return nil, err
	}
	sink.Emit(report.StageSubset, dfa, "flatten")

	min, err := hopcroft.Minimize(ctx, dfa)
	if err != nil {
		return nil, err
	}
	sink.Emit(report.StageHopcroft, min, "flatten")

	return min, nil
}

// perRuleResult carries one rule's independently minimized automaton
// (or the reason it was skipped) back to the combining goroutine.
type perRuleResult struct {
	ruleID int
	minDFA *fa.FA
	skip   bool
}

// runStructured runs synthesis, determinization and minimization for
// each rule concurrently (each goroutine owns a disjoint *fa.FA until
// the Alt-combine step, since per-rule stages touch disjoint data),
// then welds the per-rule minimal DFAs under a fresh epsilon root and
// determinizes/minimizes once more on the calling goroutine.
func runStructured(ctx context.Context, desc *ast.LexerDescription, opts Options, sink report.Sink) (*fa.FA, error) {
	results := make([]perRuleResult, len(desc.Rules))

	group, gctx := errgroup.WithContext(ctx)
	for ruleID, stmt := range desc.Rules {
		ruleID, stmt := ruleID, stmt
		group.Go(func() error {
			nfa, err := thompson.SynthesizeRule(gctx, stmt, ruleID, sink)
			if err != nil {
				if errs.As(err, errs.EmptyLanguage) {
					results[ruleID] = perRuleResult{ruleID: ruleID, skip: true}
					return nil
				}
				return err
			}

			dfa, err := subset.Build(gctx, nfa)
			if err != nil {
				return err
			}
			sink.Emit(report.StageSubset, dfa, stmt.Name)

			min, err := hopcroft.Minimize(gctx, dfa)
			if err != nil {
				return err
			}
			sink.Emit(report.StageHopcroft, min, stmt.Name)

			results[ruleID] = perRuleResult{ruleID: ruleID, minDFA: min}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	combined := fa.New()
	root := combined.CreateNode()
	combined.SetInitial(root)

	for _, r := range results {
		if r.skip {
			continue
		}
		ruleInit := r.minDFA.Initial()
		remap := combined.Merge(r.minDFA, fa.MergeOptions{PreserveLabels: opts.PropagateLabels})
		combined.AddEdge(root, remap[ruleInit], fa.EpsilonLabel())
	}
	sink.Emit(report.StageMerge, combined, "structured")

	dfa, err := subset.Build(ctx, combined)
	if err != nil {
		return nil, err
	}
	sink.Emit(report.StageSubset, dfa, "structured")

	min, err := hopcroft.Minimize(ctx, dfa)
	if err != nil {
		return nil, err
	}
	sink.Emit(report.StageHopcroft, min, "structured")

	return min, nil
}
