package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mrlokans/calibre-zotero-sync/internal/entities"
	"github.com/mrlokans/calibre-zotero-sync/internal/reconciler"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const maxTextWidth = 60

func renderTable(headers []string, rows [][]string, aligns []columnAlignment, widthMax map[int]int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    widthMax[i],
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSummary prints one row per processed book followed by run totals.
func renderSummary(report *reconciler.Report) string {
	if report == nil || len(report.Outcomes) == 0 {
		return "No books processed"
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{
			filepath.Base(o.Path),
			o.Title,
			string(o.Status),
			strconv.Itoa(o.Annotations),
			notesCell(o),
			o.Reason,
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(
		[]string{"File", "Title", "Status", "Annotations", "Notes", "Reason"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		map[int]int{1: maxTextWidth},
	))
	fmt.Fprintf(&b, "\n%d synced, %d skipped, %d failed; %d notes created, %d failed",
		report.Synced, report.Skipped, report.Failed, report.NotesCreated, report.NotesFailed)
	if report.Aborted {
		b.WriteString(" (run aborted)")
	}
	return b.String()
}

func notesCell(o entities.BookOutcome) string {
	if o.NotesFailed == 0 {
		return strconv.Itoa(o.NotesCreated)
	}
	return fmt.Sprintf("%d/%d", o.NotesCreated, o.NotesCreated+o.NotesFailed)
}

func renderAnnotations(annotations []entities.Annotation) string {
	rows := make([][]string, 0, len(annotations))
	for i, a := range annotations {
		rows = append(rows, []string{strconv.Itoa(i + 1), a.Text, a.Link})
	}
	return renderTable(
		[]string{"#", "Text", "Link"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
		map[int]int{1: maxTextWidth},
	)
}

func renderRuns(runs []entities.SyncProgress) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.RunID,
			string(r.Status),
			r.StartedAt.Local().Format(time.DateTime),
			fmt.Sprintf("%d/%d", r.Processed, r.TotalItems),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			r.Error,
		})
	}
	return renderTable(
		[]string{"Run", "Status", "Started", "Processed", "Synced", "Skipped", "Failed", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
		map[int]int{7: maxTextWidth},
	)
}

func renderBookRecords(records []entities.BookSyncRecord) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			filepath.Base(r.Path),
			r.Title,
			string(r.Status),
			r.ParentKey,
			fmt.Sprintf("%d/%d", r.NotesCreated, r.Annotations),
			r.Reason,
		})
	}
	return renderTable(
		[]string{"File", "Title", "Status", "Parent", "Notes", "Reason"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
		map[int]int{1: maxTextWidth},
	)
}
