package cmd

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	sepStyle    = lipgloss.NewStyle().Faint(true)
)

// renderTable lays the records out under the file's column names.
func renderTable(list []types.Student) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			s.ID,
			s.Name,
			string(s.Gender),
			s.Department,
			strconv.Itoa(s.Term),
			codec.FormatGPA(s.GPA),
		})
	}

	widths := make([]int, len(codec.Header))
	for i, h := range codec.Header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	// Width includes the padding.
	total := len(widths) - 1
	for i := range widths {
		widths[i] += 2
		total += widths[i]
	}

	var sb strings.Builder
	writeRow(&sb, codec.Header, widths, headerStyle)
	sb.WriteString(sepStyle.Render(strings.Repeat("-", total)) + "\n")
	for _, row := range rows {
		writeRow(&sb, row, widths, cellStyle)
	}
	return sb.String()
}

func writeRow(sb *strings.Builder, cells []string, widths []int, style lipgloss.Style) {
	for i, cell := range cells {
		sb.WriteString(style.Width(widths[i]).Render(cell))
		if i < len(cells)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")
}
