// SPDX-License-Identifier: MIT

// Package synth runs one phase-table synthesis end to end:
//
//	config → buffer + table → exhaustive → meet-in-the-middle → verify → write
//
// The buffer and table live for exactly one Run. Nothing is written until
// both search stages returned, so an invalid configuration or a cancelled
// run leaves no artifacts behind. Running out of the configured timeout is
// not a cancellation: the run writes whatever the search found.
package synth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/phasegate/config"
	"github.com/katalvlaran/phasegate/matbuf"
	"github.com/katalvlaran/phasegate/output"
	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/search"
	"github.com/katalvlaran/phasegate/verify"
)

// ErrConfig wraps every configuration failure returned by Run.
var ErrConfig = errors.New("synth: invalid configuration")

// Result summarizes a finished run.
type Result struct {
	Config config.Config

	Exhaustive      search.Stats
	MeetInTheMiddle search.Stats
	RanMITM         bool

	// TimedOut is set when cfg.Timeout ran out; the run still expands,
	// verifies and writes what was found.
	TimedOut bool

	Table *phasetable.Table
	Full  []string

	Canonical verify.Report
	Expanded  verify.Report

	BufferBytes int64
	Elapsed     time.Duration

	// Gatherer exposes the run's metrics.
	Gatherer prometheus.Gatherer
}

// Complete reports whether every canonical bucket was found.
func (r *Result) Complete() bool { return r.Table != nil && r.Table.Complete() }

// Mismatches counts verification failures over both passes.
func (r *Result) Mismatches() int {
	return len(r.Canonical.Mismatches) + len(r.Expanded.Mismatches)
}

// Run executes one synthesis with cfg. Errors wrapping ErrConfig mean no
// work was done. When cfg.Timeout runs out the search stops where it is and
// the run finishes normally with Result.TimedOut set. Any other context
// error (the caller cancelled ctx) returns the partial Result and writes no
// artifact.
func Run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) (*Result, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	prec, err := cfg.ParsedPrecision()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	tab, err := phasetable.New(cfg.Points)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	buf, err := matbuf.New(cfg.Depth, matbuf.WithPrecision(prec))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	parent := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	m := newMetrics()
	m.bufferBytes.Set(float64(buf.Bytes()))
	res := &Result{Config: cfg, Table: tab, BufferBytes: buf.Bytes(), Gatherer: m.registry}

	log.WithFields(logrus.Fields{
		"points":    cfg.Points,
		"buckets":   tab.PhaseCount(),
		"epsilon":   cfg.Epsilon,
		"depth":     cfg.Depth,
		"precision": prec,
		"capacity":  buf.Capacity(),
		"bytes":     buf.Bytes(),
	}).Info("synthesis started")

	opts := []search.Option{
		search.WithEpsilon(cfg.Epsilon),
		search.WithProgressEvery(int64(cfg.ProgressEvery)),
		search.WithProgress(progressLogger(log, tab)),
	}

	t0 := time.Now()
	res.Exhaustive, err = search.Exhaustive(ctx, buf, tab, opts...)
	m.observeStage(res.Exhaustive, time.Since(t0))
	if err != nil {
		if !budgetSpent(parent, err) {
			return res, fmt.Errorf("synth: exhaustive: %w", err)
		}
		res.TimedOut = true
		log.WithFields(stageFields(res.Exhaustive, tab)).WithField("timeout", cfg.Timeout).Warn("search budget exhausted")
	} else {
		log.WithFields(stageFields(res.Exhaustive, tab)).Info("exhaustive stage finished")
	}

	switch {
	case res.Exhaustive.Complete, res.TimedOut:
	case cfg.SkipMITM:
		log.Info("meet-in-the-middle skipped")
	default:
		res.RanMITM = true
		t0 = time.Now()
		res.MeetInTheMiddle, err = search.MeetInTheMiddle(ctx, buf, tab, opts...)
		m.observeStage(res.MeetInTheMiddle, time.Since(t0))
		switch {
		case err == nil:
			log.WithFields(stageFields(res.MeetInTheMiddle, tab)).Info("meet-in-the-middle stage finished")
		case budgetSpent(parent, err):
			res.TimedOut = true
			log.WithFields(stageFields(res.MeetInTheMiddle, tab)).WithField("timeout", cfg.Timeout).Warn("search budget exhausted")
		default:
			return res, fmt.Errorf("synth: meet-in-the-middle: %w", err)
		}
	}
	m.observeTable(tab)

	if !tab.Complete() {
		log.WithFields(logrus.Fields{
			"found":   tab.Found(),
			"missing": tab.Missing(),
			"degrees": tab.MissingAngles(),
		}).Warn("phase table incomplete")
	}

	res.Full = tab.Expand()
	res.Canonical = verify.Canonical(tab, cfg.Epsilon)
	res.Expanded = verify.Expanded(tab, res.Full, cfg.Epsilon)
	logMismatches(log, "canonical", res.Canonical)
	logMismatches(log, "expanded", res.Expanded)
	m.mismatches.WithLabelValues("canonical").Set(float64(len(res.Canonical.Mismatches)))
	m.mismatches.WithLabelValues("expanded").Set(float64(len(res.Expanded.Mismatches)))

	if err = writeArtifacts(cfg, res, log); err != nil {
		return res, err
	}
	res.Elapsed = time.Since(start)
	log.WithFields(logrus.Fields{
		"found":      tab.Found(),
		"buckets":    tab.PhaseCount(),
		"mismatches": res.Mismatches(),
		"timed_out":  res.TimedOut,
		"elapsed":    res.Elapsed.Round(time.Millisecond),
	}).Info("synthesis finished")

	return res, nil
}

// budgetSpent reports whether err comes from the run's own timeout rather
// than from the caller cancelling parent.
func budgetSpent(parent context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil
}

func writeArtifacts(cfg config.Config, res *Result, log logrus.FieldLogger) error {
	if cfg.DiagnosticsPath != "" {
		if err := output.WriteDiagnostics(cfg.DiagnosticsPath, res.Table); err != nil {
			return fmt.Errorf("synth: %w", err)
		}
		log.WithField("path", cfg.DiagnosticsPath).Info("diagnostic record written")
	}
	if cfg.TablePath != "" {
		if err := output.WriteTable(cfg.TablePath, res.Full); err != nil {
			return fmt.Errorf("synth: %w", err)
		}
		log.WithField("path", cfg.TablePath).Info("phase table written")
	}
	if cfg.MetricsPath != "" {
		if err := output.WriteMetrics(cfg.MetricsPath, res.Gatherer); err != nil {
			return fmt.Errorf("synth: %w", err)
		}
		log.WithField("path", cfg.MetricsPath).Debug("metrics written")
	}

	return nil
}

func progressLogger(log logrus.FieldLogger, tab *phasetable.Table) search.ProgressFunc {
	return func(p search.Progress) {
		f := stageFields(p.Stats, tab)
		f["done"] = p.Done
		f["total"] = p.Total
		if p.Total > 0 {
			f["percent"] = fmt.Sprintf("%.1f", 100*float64(p.Done)/float64(p.Total))
		}
		log.WithFields(f).Debug("search progress")
	}
}

func stageFields(st search.Stats, tab *phasetable.Table) logrus.Fields {
	return logrus.Fields{
		"stage":    st.Stage,
		"visited":  st.Visited,
		"products": st.Products,
		"hits":     st.Hits,
		"found":    tab.Found(),
		"complete": st.Complete,
	}
}

func logMismatches(log logrus.FieldLogger, pass string, rep verify.Report) {
	for _, mm := range rep.Mismatches {
		f := logrus.Fields{
			"pass":     pass,
			"bucket":   mm.Bucket,
			"gates":    mm.Gates,
			"expected": mm.Expected,
			"actual":   mm.Actual,
			"residual": mm.Residual,
		}
		if mm.Slot >= 0 {
			f["slot"] = mm.Slot
		}
		if mm.Err != nil {
			f[logrus.ErrorKey] = mm.Err
		}
		log.WithFields(f).Warn(string(mm.Reason))
	}
}
