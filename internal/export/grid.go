// Package export renders week grids as spreadsheets for planners who work offline.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/sugukuru-dev/dispatch-manager/backend/internal/domain"
	"github.com/sugukuru-dev/dispatch-manager/backend/internal/fulfillment"
	"github.com/xuri/excelize/v2"
)

const (
	GridSheet    = "Week"
	SummarySheet = "Summary"
)

var statusColors = map[domain.SlotStatus]string{
	domain.SlotFulfilled: "#C6EFCE",
	domain.SlotPartial:   "#FFEB9C",
	domain.SlotShortage:  "#FFC7CE",
}

// CellText is what a day cell shows: confirmed/required, tentative count, then worker names with
// tentative ones marked by a trailing "?".
func CellText(cell fulfillment.DayCell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d", cell.Confirmed, cell.Required)
	if cell.Tentative > 0 {
		fmt.Fprintf(&b, " (+%d)", cell.Tentative)
	}
	names := make([]string, 0, len(cell.Workers))
	for _, w := range cell.Workers {
		if w.Status == domain.AssignmentTentative {
			names = append(names, w.Name+"?")
			continue
		}
		names = append(names, w.Name)
	}
	if len(names) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(names, ", "))
	}
	return b.String()
}

func WeekGrid(grid fulfillment.Grid) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", GridSheet); err != nil {
		return nil, err
	}

	headers := []any{"Client", "Region", "Division"}
	for _, day := range grid.Days {
		headers = append(headers, day.String())
	}
	if err := f.SetSheetRow(GridSheet, "A1", &headers); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetRowStyle(GridSheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}

	statusStyles := make(map[domain.SlotStatus]int, len(statusColors))
	for status, color := range statusColors {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return nil, err
		}
		statusStyles[status] = style
	}

	for i, client := range grid.Clients {
		row := i + 2
		for col, v := range []any{client.Name, client.Region, string(client.Division)} {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(GridSheet, cell, v); err != nil {
				return nil, err
			}
		}
		for j, day := range grid.Days {
			cell, _ := excelize.CoordinatesToCellName(j+4, row)
			dc := client.Days[day]
			if err := f.SetCellValue(GridSheet, cell, CellText(dc)); err != nil {
				return nil, err
			}
			if style, ok := statusStyles[dc.Status]; ok {
				if err := f.SetCellStyle(GridSheet, cell, cell, style); err != nil {
					return nil, err
				}
			}
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(3 + len(grid.Days))
	if err := f.SetColWidth(GridSheet, "A", "A", 28); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(GridSheet, "B", "C", 14); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(GridSheet, "D", lastCol, 22); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, err
	}
	s := grid.Summary
	rows := [][]any{
		{"Metric", "Value"},
		{"Week", fmt.Sprintf("%s - %s", grid.WeekStart, grid.WeekEnd)},
		{"Total required", s.TotalRequired},
		{"Total confirmed", s.TotalConfirmed},
		{"Total tentative", s.TotalTentative},
		{"Fill rate", fmt.Sprintf("%.1f%%", s.FillRate*100)},
		{"Vacant positions", s.VacantSlots},
		{"Distinct workers", s.DistinctWorkers},
		{"Fulfilled slots", s.Fulfilled},
		{"Partial slots", s.Partial},
		{"Shortage slots", s.Shortage},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return nil, err
		}
	}
	if err := f.SetRowStyle(SummarySheet, 1, 1, headerStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 20); err != nil {
		return nil, err
	}

	return f, nil
}

// WriteWeekGrid streams the workbook as xlsx.
func WriteWeekGrid(w io.Writer, grid fulfillment.Grid) error {
	f, err := WeekGrid(grid)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
