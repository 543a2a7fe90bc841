// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/katalvlaran/phasegate/phasetable"
	"github.com/katalvlaran/phasegate/synth"
	"github.com/katalvlaran/phasegate/verify"
)

// maxListed caps how many missing buckets are printed inline.
const maxListed = 16

func renderSummary(w io.Writer, runID string, res *synth.Result) {
	tab := res.Table
	rows := [][]string{
		{"run", runID},
		{"points", strconv.Itoa(tab.Points())},
		{"buckets found", fmt.Sprintf("%d / %d", tab.Found(), tab.PhaseCount())},
		{"exhaustive", fmt.Sprintf("visited %d, hits %d", res.Exhaustive.Visited, res.Exhaustive.Hits)},
	}
	if res.RanMITM {
		rows = append(rows, []string{"meet-in-the-middle",
			fmt.Sprintf("products %d, hits %d", res.MeetInTheMiddle.Products, res.MeetInTheMiddle.Hits)})
	}
	rows = append(rows,
		[]string{"replacements", strconv.FormatInt(tab.Replacements(), 10)},
		[]string{"mismatches", strconv.Itoa(res.Mismatches())},
		[]string{"buffer", fmt.Sprintf("%.1f MiB", float64(res.BufferBytes)/(1<<20))},
		[]string{"elapsed", res.Elapsed.Round(time.Millisecond).String()},
	)
	if res.TimedOut {
		rows = append(rows, []string{"timed out", fmt.Sprintf("after %s", res.Config.Timeout)})
	}
	rows = append(rows, missingRows(tab)...)
	rows = append(rows, artifactRows(res)...)
	render(w, rows)
}

// artifactRows lists the files the run wrote; empty paths are skipped.
func artifactRows(res *synth.Result) [][]string {
	var rows [][]string
	for _, a := range []struct{ name, path string }{
		{"diagnostics", res.Config.DiagnosticsPath},
		{"table", res.Config.TablePath},
		{"metrics", res.Config.MetricsPath},
	} {
		if a.path != "" {
			rows = append(rows, []string{a.name, a.path})
		}
	}

	return rows
}

func renderExpandSummary(w io.Writer, tab *phasetable.Table, canonical, expanded verify.Report) {
	rows := [][]string{
		{"points", strconv.Itoa(tab.Points())},
		{"buckets found", fmt.Sprintf("%d / %d", tab.Found(), tab.PhaseCount())},
		{"canonical checked", strconv.Itoa(canonical.Checked)},
		{"slots checked", strconv.Itoa(expanded.Checked)},
		{"mismatches", strconv.Itoa(len(canonical.Mismatches) + len(expanded.Mismatches))},
	}
	rows = append(rows, missingRows(tab)...)
	render(w, rows)
}

func missingRows(tab *phasetable.Table) [][]string {
	missing := tab.Missing()
	if len(missing) == 0 {
		return nil
	}
	angles := tab.MissingAngles()
	parts := make([]string, 0, maxListed+1)
	for i, b := range missing {
		if i == maxListed {
			parts = append(parts, fmt.Sprintf("… %d more", len(missing)-maxListed))
			break
		}
		parts = append(parts, fmt.Sprintf("%d (%.3f°)", b, angles[i]))
	}

	return [][]string{{"missing", strings.Join(parts, ", ")}}
}

func render(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}
