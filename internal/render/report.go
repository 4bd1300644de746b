package render

import (
	"fmt"
	"strings"

	humanize "github.com/dustin/go-humanize"

	"github.com/classvault/classvault/internal/restore"
	"github.com/classvault/classvault/internal/snapshot"
)

// RenderValidation renders a dry-run summary of a validated archive.
func RenderValidation(v *restore.ValidationResult) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Snapshot %s (format %s)\n", v.Metadata.SnapshotID, v.Metadata.FormatVersion)
	fmt.Fprintf(&buf, "Taken %s from environment %q\n",
		v.Metadata.CreatedAt.Format("2006-01-02 15:04:05 MST"), v.Metadata.Environment)
	buf.WriteString("\n")

	headers := []string{"Table", "Rows"}
	rows := make([][]string, 0, len(v.TableCounts))
	for _, tc := range v.TableCounts {
		rows = append(rows, []string{tc.Name, humanize.Comma(int64(tc.Count))})
	}
	buf.WriteString(renderPlainTable(headers, rows))
	fmt.Fprintf(&buf, "\n\nTotal: %s records", humanize.Comma(int64(v.TotalRecords)))

	if len(v.Unregistered) > 0 {
		fmt.Fprintf(&buf, "\nUnregistered tables (will be skipped): %s", strings.Join(v.Unregistered, ", "))
	}

	return buf.String()
}

// RenderRestoreReport renders the outcome of a live restore, including
// per-table skipped-row counts so duplicate collisions are visible.
func RenderRestoreReport(r *restore.Report) string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Wiped %d tables", len(r.Wiped))
	if len(r.WipeSkipped) > 0 {
		fmt.Fprintf(&buf, " (%d skipped: %s)", len(r.WipeSkipped), strings.Join(r.WipeSkipped, ", "))
	}
	buf.WriteString("\n\n")

	headers := []string{"Table", "Inserted", "Skipped"}
	rows := make([][]string, 0, len(r.Tables))
	for _, tr := range r.Tables {
		rows = append(rows, []string{
			tr.Name,
			humanize.Comma(int64(tr.Inserted)),
			humanize.Comma(int64(tr.Skipped)),
		})
	}
	buf.WriteString(renderPlainTable(headers, rows))
	fmt.Fprintf(&buf, "\n\nRestored %s records (%s skipped as duplicates)",
		humanize.Comma(int64(r.Inserted)), humanize.Comma(int64(r.Skipped)))

	if len(r.Unregistered) > 0 {
		fmt.Fprintf(&buf, "\nSkipped unregistered tables: %s", strings.Join(r.Unregistered, ", "))
	}

	return buf.String()
}

// RenderTableCounts renders export counts for the snapshot command summary.
func RenderTableCounts(counts []snapshot.TableCount) string {
	headers := []string{"Table", "Rows"}
	rows := make([][]string, 0, len(counts))
	for _, tc := range counts {
		rows = append(rows, []string{tc.Name, humanize.Comma(int64(tc.Count))})
	}
	return renderPlainTable(headers, rows)
}
