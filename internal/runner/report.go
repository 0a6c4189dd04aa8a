package runner

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

var statusColors = map[Status]*color.Color{
	StatusChanged:   color.New(color.FgYellow),
	StatusUnchanged: color.New(color.FgGreen),
	StatusSkipped:   color.New(color.FgCyan),
	StatusError:     color.New(color.FgRed),
}

// WriteTable renders the per-file outcome table followed by a totals footer.
func WriteTable(w io.Writer, report *Report) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "Size", "Status", "Injected", "Rewrites", "Time", "Detail"})

	var totalSize int64

	for idx := range report.Files {
		fr := &report.Files[idx]
		totalSize += fr.Size

		tbl.AppendRow(table.Row{
			fr.Path,
			humanize.Bytes(uint64(max(fr.Size, 0))),
			colorStatus(fr.Status),
			len(fr.Result.Injected),
			fr.Result.Changes() - len(fr.Result.Injected),
			fr.Duration.Round(time.Microsecond),
			detail(fr),
		})
	}

	tbl.AppendFooter(table.Row{
		"Total: " + strconv.Itoa(len(report.Files)) + " files",
		humanize.Bytes(uint64(max(totalSize, 0))),
		fmt.Sprintf("%d changed", report.Count(StatusChanged)),
		"", "",
		report.Elapsed.Round(time.Millisecond),
		fmt.Sprintf("%d failed", report.Count(StatusError)),
	})

	tbl.Render()
}

// WriteDiffs writes a unified diff for every changed file.
func WriteDiffs(w io.Writer, report *Report) error {
	for idx := range report.Files {
		fr := &report.Files[idx]
		if fr.Status != StatusChanged {
			continue
		}

		if _, err := io.WriteString(w, UnifiedDiff(fr.Path, fr.Original, fr.Output)); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	return nil
}

func colorStatus(status Status) string {
	if c, ok := statusColors[status]; ok {
		return c.Sprint(string(status))
	}

	return string(status)
}

func detail(fr *FileReport) string {
	switch {
	case fr.Err != nil:
		return fr.Err.Error()
	case fr.Reason != "":
		return fr.Reason
	case fr.Written:
		return "written"
	default:
		return ""
	}
}
