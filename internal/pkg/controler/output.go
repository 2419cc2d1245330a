package controler

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
)

// PrintPlan writes the pending transfers and the plan totals to w
func PrintPlan(w io.Writer, plan *Plan, dryRun bool) {
	if len(plan.Pending) > 0 {
		table := uitable.New()
		table.MaxColWidth = 80
		table.Wrap = true
		table.AddRow("COURSE", "FILE", "SIZE", "UPDATED")

		for _, item := range plan.Pending {
			name := filepath.Base(item.TargetPath)
			if item.Container != "" {
				name = item.Container + "/" + name
			}

			size, updated := "-", "-"
			if item.Size > 0 {
				size = humanize.Bytes(uint64(item.Size))
			}
			if !item.UpdatedAt.IsZero() {
				updated = humanize.Time(item.UpdatedAt)
			}

			table.AddRow(item.Course, name, size, updated)
		}

		fmt.Fprintln(w, table.String())
	}

	if dryRun {
		fmt.Fprintf(w, "[DRY RUN] Would download %d files (%s)\n", len(plan.Pending), humanize.Bytes(uint64(plan.Bytes)))
	} else {
		fmt.Fprintf(w, "%d files to download (%s)\n", len(plan.Pending), humanize.Bytes(uint64(plan.Bytes)))
	}

	if plan.Ignored > 0 || plan.UpToDate > 0 {
		fmt.Fprintf(w, "%d ignored, %d up to date\n", plan.Ignored, plan.UpToDate)
	}
}

// PrintSummary writes the outcome counts of a run and its failures to w
func PrintSummary(w io.Writer, report *Report) {
	table := uitable.New()
	table.AddRow("Run:", report.RunID)
	table.AddRow("Items:", report.Summary.Total())
	table.AddRow("Downloaded:", fmt.Sprintf("%d (%s)", report.Summary.Downloaded, humanize.Bytes(uint64(report.Summary.Bytes))))
	table.AddRow("Skipped (ignored):", report.Summary.SkippedIgnored)
	table.AddRow("Skipped (up to date):", report.Summary.SkippedUpToDate)

	failures := report.Failures()
	table.AddRow("Failed:", len(failures))

	fmt.Fprintln(w, table.String())

	if len(failures) == 0 {
		return
	}

	failed := uitable.New()
	failed.MaxColWidth = 100
	failed.Wrap = true
	failed.AddRow("PATH", "REASON")
	for _, failure := range failures {
		failed.AddRow(failure.Path, strings.TrimSpace(failure.Reason))
	}

	fmt.Fprintln(w, failed.String())
}
