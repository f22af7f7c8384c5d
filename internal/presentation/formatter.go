package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zjrosen/finder/internal/finder"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#BBBBBB", Dark: "#555555"})
	statusStyle = map[string]lipgloss.Style{
		"active":   cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#73F59F"}),
		"inactive": cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FECA57"}),
		"archived": cellStyle.Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#BBBBBB"}),
	}
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// childColumns are the table headers; statusColumn indexes Status.
var childColumns = []string{"ID", "PARENT", "NAME", "STATUS", "CREATED", "UPDATED"}

const statusColumn = 3

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{writer: writer}
}

func (f *Formatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatChildrenJSON writes children as an indented JSON array.
func (f *Formatter) FormatChildrenJSON(children []ChildDTO) error {
	return f.encode(children)
}

// FormatChildrenTable writes children as a bordered table followed by a
// row count.
func (f *Formatter) FormatChildrenTable(children []ChildDTO) error {
	rows := make([][]string, len(children))
	for i, c := range children {
		rows[i] = []string{
			strconv.FormatInt(c.ID, 10),
			strconv.FormatInt(c.ParentID, 10),
			c.Name,
			c.Status,
			c.CreatedAt,
			c.UpdatedAt,
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(childColumns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == statusColumn && row >= 0 && row < len(rows) {
				if s, ok := statusStyle[rows[row][col]]; ok {
					return s
				}
			}
			return cellStyle
		})

	_, err := fmt.Fprintf(f.writer, "%s\n%s\n", t.Render(), pluralize(len(children), "child", "children"))
	return err
}

// FormatCount writes n on its own line.
func (f *Formatter) FormatCount(n int) error {
	_, err := fmt.Fprintln(f.writer, n)
	return err
}

// FormatExplainJSON writes an explanation as JSON.
func (f *Formatter) FormatExplainJSON(e ExplainDTO) error {
	if e.Params == nil {
		e.Params = []any{}
	}
	return f.encode(e)
}

// FormatExplain writes the highlighted operation, SQL and parameters.
func (f *Formatter) FormatExplain(e ExplainDTO) error {
	text := e.Operation
	if e.OrderBy != "" {
		text += " order by " + e.OrderBy
	}
	_, err := fmt.Fprintf(f.writer, "%s %s\n%s %s\n%s %v\n",
		labelStyle.Render("operation:"), finder.Highlight(text),
		labelStyle.Render("sql:      "), e.SQL,
		labelStyle.Render("params:   "), e.Params,
	)
	return err
}

// FormatDeleted reports how many children a delete removed.
func (f *Formatter) FormatDeleted(n int) error {
	_, err := fmt.Fprintf(f.writer, "deleted %s\n", pluralize(n, "child", "children"))
	return err
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
