// Command lexgen drives the automaton pipeline end to end: read a
// lexer description, run Thompson/subset/Hopcroft, and emit a minimal
// DFA as DOT, a Go source table, or both. It is a thin flag-driven
// shell around package pipeline; no algorithmic logic lives here.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/corelang/lexgen/fa"
	"github.com/corelang/lexgen/output"
	"github.com/corelang/lexgen/pipeline"
	"github.com/corelang/lexgen/report"
	"github.com/corelang/lexgen/sinks/dot"
	"github.com/corelang/lexgen/sinks/gocode"
)

var log = logrus.New()

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed loading .env")
	}

	var (
		inFilename      string
		dotFilename     string
		goFilename      string
		goPackage       string
		structured      bool
		emitSteps       bool
		propagateLabels bool
		loglevel        string
	)

	flag.StringVar(&inFilename, "i", envy.Get("LEXGEN_INPUT", ""), "input lexer description (JSON)")
	flag.StringVar(&dotFilename, "dot", envy.Get("LEXGEN_DOT_OUT", ""), "write the minimal DFA as a DOT graph")
	flag.StringVar(&goFilename, "o", envy.Get("LEXGEN_GO_OUT", ""), "write the minimal DFA as a Go source table")
	flag.StringVar(&goPackage, "package", envy.Get("LEXGEN_GO_PACKAGE", "lexer"), "package name for -o output")
	flag.BoolVar(&structured, "structured", false, "use the structured pipeline (minimize each rule, then combine)")
	flag.BoolVar(&emitSteps, "emit-steps", false, "invoke the reporting sink at every intermediate stage")
	flag.BoolVar(&propagateLabels, "propagate-labels", true, "preserve per-rule provenance across merges")
	flag.StringVar(&loglevel, "loglevel", envy.Get("LEXGEN_LOGLEVEL", "info"), "logrus level (debug, info, warn, error)")
	flag.Parse()

	if lvl, err := logrus.ParseLevel(loglevel); err == nil {
		log.SetLevel(lvl)
	} else {
		log.WithError(err).Warn("unrecognized -loglevel, defaulting to info")
	}

	if err := run(inFilename, dotFilename, goFilename, goPackage, pipeline.Options{
		Structured:      structured,
		EmitSteps:       emitSteps,
		PropagateLabels: propagateLabels,
	}); err != nil {
		log.WithError(err).Fatal("lexgen failed")
	}
}

// logrusSink reports every stage transition through logrus with
// structured fields.
type logrusSink struct {
	log *logrus.Logger
}

func (s *logrusSink) Emit(stage string, snapshot *fa.FA, key string) {
	fields := logrus.Fields{"stage": stage, "rule": key}
	if snapshot != nil {
		fields["states"] = len(snapshot.Nodes())
	}
	if stage == report.StageError {
		s.log.WithFields(fields).Error("stage failed")
		return
	}
	s.log.WithFields(fields).Debug("stage complete")
}

func run(inFilename, dotFilename, goFilename, goPackage string, opts pipeline.Options) error {
	if inFilename == "" {
		return fmt.Errorf("no input lexer description given (-i or LEXGEN_INPUT)")
	}

	data, err := os.ReadFile(inFilename)
	if err != nil {
		return fmt.Errorf("read %s: %w", inFilename, err)
	}

	desc, err := decodeDescription(data)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"rules": len(desc.Rules), "structured": opts.Structured}).Info("synthesizing")

	sink := &logrusSink{log: log}
	res, err := pipeline.Run(context.Background(), desc, opts, sink)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"states": len(res.MinDFA.Nodes())}).Info("minimized")

	encoded := output.Encode(res.MinDFA, res.RuleTags)

	if dotFilename != "" {
		f, err := os.Create(dotFilename)
		if err != nil {
			return fmt.Errorf("create %s: %w", dotFilename, err)
		}
		defer f.Close()
		dot.Write(f, encoded, "lexgen")
	}

	if goFilename != "" {
		src, err := gocode.Generate(encoded, gocode.Options{Package: goPackage})
		if err != nil {
			return fmt.Errorf("generate go source: %w", err)
		}
		if err := os.WriteFile(goFilename, src, 0o666); err != nil {
			return fmt.Errorf("write %s: %w", goFilename, err)
		}
	}

	if dotFilename == "" && goFilename == "" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(encoded)
	}
	return nil
}
