// Package export writes a user's program as an xlsx workbook.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"coach-backend/internal/models"
	"coach-backend/internal/program"
)

const (
	SheetProgram = "Programme"
	SheetStats   = "Progression"
)

var programColumns = []struct {
	title string
	width float64
}{
	{"#", 5},
	{"Séance", 40},
	{"Sections", 36},
	{"Produits", 24},
	{"Statut", 12},
	{"Ressenti", 12},
	{"Terminée le", 16},
	{"Durée (min)", 12},
}

type styles struct {
	header, text, done, pending int
}

// WriteProgram writes the program sheet and a progress sheet computed at now.
func WriteProgram(w io.Writer, sessions []models.ProgramSession, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProgram); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	st, err := createStyles(f)
	if err != nil {
		return fmt.Errorf("create styles: %w", err)
	}

	if err := writeSessions(f, st, sessions, now.Location()); err != nil {
		return err
	}
	if err := writeStats(f, st, program.ComputeStats(sessions, now)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSessions(f *excelize.File, st styles, sessions []models.ProgramSession, loc *time.Location) error {
	for i, col := range programColumns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(SheetProgram, name, name, col.width)
		f.SetCellValue(SheetProgram, name+"1", col.title)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(programColumns))
	f.SetCellStyle(SheetProgram, "A1", lastCol+"1", st.header)

	for i, s := range sessions {
		row := i + 2
		status, statusStyle := "À faire", st.pending
		completed := ""
		if s.Done {
			status, statusStyle = "Faite", st.done
			if s.CompletedAt != nil {
				completed = s.CompletedAt.In(loc).Format("02/01/2006")
			}
		}

		values := []interface{}{
			i + 1,
			s.Title,
			sectionList(s.Sections),
			strings.Join(s.Products, ", "),
			status,
			s.Feedback.French(),
			completed,
			program.DurationMinutes(s.Title, s.Content),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(SheetProgram, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		rowEnd, _ := excelize.CoordinatesToCellName(len(programColumns), row)
		f.SetCellStyle(SheetProgram, cell, rowEnd, st.text)
		statusCell, _ := excelize.CoordinatesToCellName(5, row)
		f.SetCellStyle(SheetProgram, statusCell, statusCell, statusStyle)
	}
	return nil
}

func writeStats(f *excelize.File, st styles, stats program.Stats) error {
	if _, err := f.NewSheet(SheetStats); err != nil {
		return fmt.Errorf("create stats sheet: %w", err)
	}
	f.SetColWidth(SheetStats, "A", "A", 28)
	f.SetColWidth(SheetStats, "B", "B", 14)

	rows := [][]interface{}{
		{"Indicateur", "Valeur"},
		{"Séances au programme", stats.Total},
		{"Séances faites", stats.Done},
		{"Séances à faire", stats.Pending},
		{"Complétion (%)", stats.CompletionPercent},
		{"Minutes cumulées", stats.TotalMinutes},
		{"Série (jours)", stats.Streak},
		{"Cette semaine", fmt.Sprintf("%d/%d", stats.DoneThisWeek, stats.WeeklyGoal)},
	}
	for _, wk := range stats.Weeks {
		rows = append(rows, []interface{}{wk.Label + " (" + wk.Start.Format("02/01") + ")", wk.Count})
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetStats, cell, &r); err != nil {
			return fmt.Errorf("write stats row %d: %w", i+1, err)
		}
	}
	f.SetCellStyle(SheetStats, "A1", "B1", st.header)
	return nil
}

func sectionList(sections []models.Section) string {
	labels := make([]string, 0, len(sections))
	for _, s := range sections {
		labels = append(labels, fmt.Sprintf("%s (%d)", s.Label, len(s.Items)))
	}
	return strings.Join(labels, ", ")
}

func createStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	border := []excelize.Border{
		{Type: "left", Color: "#D9D9D9", Style: 1},
		{Type: "right", Color: "#D9D9D9", Style: 1},
		{Type: "top", Color: "#D9D9D9", Style: 1},
		{Type: "bottom", Color: "#D9D9D9", Style: 1},
	}

	st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#3C46B8"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return st, err
	}

	st.text, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return st, err
	}

	st.done, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Color: "#006100"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return st, err
	}

	st.pending, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10, Color: "#9C5700"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#FFEB9C"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	return st, err
}
