package finder

import "github.com/charmbracelet/lipgloss"

// Token highlight styles for operation syntax highlighting.
var (
	// KeywordStyle for logical operators: and, or, not, in, all, order, by, asc, desc
	KeywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}).
			Bold(true)

	// OperatorStyle for comparison operators: =, !=, <, >, <=, >=, ~, !~
	OperatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"})

	// FieldStyle for attribute names
	FieldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#38BDF8"})

	// StringStyle for quoted string values
	StringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"})

	// LiteralStyle for boolean, numeric and date values
	LiteralStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#BE185D", Dark: "#F472B6"})

	ParenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}).
			Bold(true)

	CommaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})

	DefaultStyle = lipgloss.NewStyle()
)
