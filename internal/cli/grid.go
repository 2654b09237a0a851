package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/IvanTulaev/yet-another-bpmn-auto-layout/pkg/layouter"
)

var (
	gridHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	gridCellStyle   = lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	gridEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)
)

// gridTable renders a process grid as a table with one column per grid
// column. A cell holding several nodes lists them comma-separated.
func gridTable(g layouter.ProcessGrid) string {
	headers := make([]string, g.Cols+1)
	headers[0] = ""
	for col := range g.Cols {
		headers[col+1] = strconv.Itoa(col)
	}

	rows := make([][]string, g.Rows)
	for row := range g.Rows {
		r := make([]string, g.Cols+1)
		r[0] = strconv.Itoa(row)
		for col := range g.Cols {
			if cell := g.Cells[row][col]; len(cell) > 0 {
				r[col+1] = strings.Join(cell, ",")
			} else {
				r[col+1] = "·"
			}
		}
		rows[row] = r
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 || col == 0 {
				return gridHeaderStyle
			}
			if rows[row][col] == "·" {
				return gridEmptyStyle
			}
			return gridCellStyle
		})

	title := StyleTitle.Render(g.Process) + StyleDim.Render(fmt.Sprintf("  %dx%d", g.Rows, g.Cols))
	if len(g.Lanes) > 0 {
		title += StyleDim.Render("  lanes: " + strings.Join(g.Lanes, ", "))
	}
	return title + "\n" + t.Render()
}
