// SPDX-License-Identifier: MIT

package synth_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/katalvlaran/phasegate/config"
	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/synth"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// smallConfig writes into dir and finishes in milliseconds.
func smallConfig(dir string) config.Config {
	c := config.Default()
	c.Points = 64
	c.Depth = 10
	c.Epsilon = 0.05
	c.Precision = "double"
	c.DiagnosticsPath = filepath.Join(dir, "diag.json")
	c.TablePath = filepath.Join(dir, "table.yaml")
	c.MetricsPath = filepath.Join(dir, "metrics", "run.prom")
	c.ProgressEvery = 256

	return c
}

func TestRun_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	res, err := synth.Run(context.Background(), smallConfig(dir), log)
	require.NoError(t, err)
	assert.Len(t, res.Full, 64)
	assert.Equal(t, 8, res.Table.PhaseCount())
	assert.Zero(t, res.Mismatches(), "%+v %+v", res.Canonical.Mismatches, res.Expanded.Mismatches)
	assert.Equal(t, 8, res.Canonical.Checked+len(res.Table.Missing()))
	assert.Equal(t, 64, res.Expanded.Checked)
	assert.Positive(t, res.BufferBytes)

	for _, p := range []string{"diag.json", "table.yaml", filepath.Join("metrics", "run.prom")} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.NoError(t, err, p)
	}
	prom, err := os.ReadFile(filepath.Join(dir, "metrics", "run.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(prom), "phasegate_buckets_expected 8")
	assert.Contains(t, string(prom), `phasegate_completions_tested_total{stage="exhaustive"}`)

	var progress int
	for _, e := range hook.AllEntries() {
		if e.Message == "search progress" {
			progress++
		}
	}
	assert.Positive(t, progress)
	assert.Equal(t, "synthesis finished", hook.LastEntry().Message)
}

// TestRun_Deterministic: two runs with identical parameters produce
// byte-identical artifacts.
func TestRun_Deterministic(t *testing.T) {
	log, _ := test.NewNullLogger()
	a, b := t.TempDir(), t.TempDir()
	_, err := synth.Run(context.Background(), smallConfig(a), log)
	require.NoError(t, err)
	_, err = synth.Run(context.Background(), smallConfig(b), log)
	require.NoError(t, err)

	for _, name := range []string{"diag.json", "table.yaml"} {
		da, err := os.ReadFile(filepath.Join(a, name))
		require.NoError(t, err)
		db, err := os.ReadFile(filepath.Join(b, name))
		require.NoError(t, err)
		assert.Equal(t, da, db, name)
	}
}

// TestRun_InvalidPointsWritesNothing: points=10 fails before any output.
func TestRun_InvalidPointsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	cfg.Points = 10
	log, _ := test.NewNullLogger()

	res, err := synth.Run(context.Background(), cfg, log)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, synth.ErrConfig)
	assert.ErrorIs(t, err, config.ErrPoints)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestRun_IncompleteIsNotFatal: a shallow search with a tight tolerance
// still writes a table, with sentinels and a warning.
func TestRun_IncompleteIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	cfg.Points = 256
	cfg.Depth = 2
	cfg.Epsilon = 1e-6
	log, hook := test.NewNullLogger()

	res, err := synth.Run(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.False(t, res.Complete())
	assert.True(t, res.RanMITM)
	assert.Contains(t, res.Full, phasetable.NotFound)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "phase table incomplete" {
			warned = true
			assert.Equal(t, res.Table.Missing(), e.Data["missing"])
		}
	}
	assert.True(t, warned)
	_, err = os.Stat(cfg.TablePath)
	assert.NoError(t, err)
}

func TestRun_SkipMITM(t *testing.T) {
	cfg := smallConfig(t.TempDir())
	cfg.Points = 256
	cfg.Depth = 3
	cfg.Epsilon = 1e-6
	cfg.SkipMITM = true
	log, _ := test.NewNullLogger()

	res, err := synth.Run(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.False(t, res.RanMITM)
	assert.Zero(t, res.MeetInTheMiddle.Products)
}

func TestRun_CancelledWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	cfg.Points = 256
	cfg.Depth = 14
	cfg.Epsilon = 1e-9
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log, _ := test.NewNullLogger()

	res, err := synth.Run(ctx, cfg, log)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.False(t, res.Complete())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestRun_TimeoutWritesIncomplete: running out of the configured timeout is
// an exhausted search, not a cancellation. What was found is expanded,
// verified and written, and the gaps are reported.
func TestRun_TimeoutWritesIncomplete(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	cfg.Points = 1024
	cfg.Depth = 16
	cfg.Epsilon = 1e-4
	cfg.Timeout = 50 * time.Millisecond
	log, hook := test.NewNullLogger()

	res, err := synth.Run(context.Background(), cfg, log)
	require.NoError(t, err)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Complete())
	require.Len(t, res.Full, 1024)
	assert.Contains(t, res.Full, phasetable.NotFound)
	assert.Zero(t, res.Mismatches())

	for _, p := range []string{"diag.json", "table.yaml", filepath.Join("metrics", "run.prom")} {
		_, err := os.Stat(filepath.Join(dir, p))
		assert.NoError(t, err, p)
	}

	var budget, incomplete bool
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "search budget exhausted":
			budget = e.Level == logrus.WarnLevel
		case "phase table incomplete":
			incomplete = e.Level == logrus.WarnLevel
		}
	}
	assert.True(t, budget)
	assert.True(t, incomplete)
	assert.Equal(t, "synthesis finished", hook.LastEntry().Message)
}

// TestRun_CancelledAfterTimeoutSetWritesNothing: a caller cancel still wins
// over a configured timeout.
func TestRun_CancelledAfterTimeoutSetWritesNothing(t *testing.T) {
	dir := t.TempDir()
	cfg := smallConfig(dir)
	cfg.Points = 256
	cfg.Depth = 14
	cfg.Epsilon = 1e-9
	cfg.Timeout = time.Minute
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	log, _ := test.NewNullLogger()

	res, err := synth.Run(ctx, cfg, log)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, res)
	assert.False(t, res.TimedOut)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
