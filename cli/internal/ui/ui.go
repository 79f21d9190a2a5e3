// Package ui renders drogon-orm CLI output.
package ui

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Output receives regular output.
	Output io.Writer = os.Stdout
	// ErrOutput receives error messages.
	ErrOutput io.Writer = os.Stderr
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

func terminalWidth() int {
	if w := pterm.GetTerminalWidth(); w > 0 && w < 120 {
		return w
	}
	return 80
}

// PrintHeader prints a boxed title
func PrintHeader(title string, subtitle string) {
	header := lipgloss.NewStyle().
		Width(terminalWidth()-2).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 2).
		Render(
			lipgloss.JoinVertical(
				lipgloss.Center,
				TitleStyle.Render(title),
				SecondaryStyle.Render(subtitle),
			),
		)

	fmt.Fprintln(Output, header)
}

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	fmt.Fprintln(Output, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	fmt.Fprintln(ErrOutput, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	fmt.Fprintln(Output, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	fmt.Fprintln(Output, InfoStyle.Render("ℹ "+fmt.Sprintf(format, args...)))
}

// PrintStep prints a step indicator
func PrintStep(step int, total int, message string) {
	stepStyle := SecondaryStyle.Render(fmt.Sprintf("[%d/%d]", step, total))
	fmt.Fprintf(Output, "%s %s\n", stepStyle, message)
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(Output, out)
	return nil
}

// PrintMarkdown renders markdown content
func PrintMarkdown(content string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(terminalWidth()),
	)
	if err != nil {
		return err
	}

	out, err := r.Render(content)
	if err != nil {
		return err
	}

	fmt.Fprint(Output, out)
	return nil
}

// Statement is one labelled SQL statement.
type Statement struct {
	Title string
	SQL   string
	Args  []interface{}
}

// StatementsMarkdown renders statements as markdown sections with SQL code
// blocks.
func StatementsMarkdown(heading string, statements []Statement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", heading)
	for _, st := range statements {
		fmt.Fprintf(&b, "## %s\n\n```sql\n%s\n```\n\n", st.Title, st.SQL)
		if len(st.Args) > 0 {
			fmt.Fprintf(&b, "args: `%s`\n\n", FormatArgs(st.Args))
		}
	}
	return b.String()
}

// FormatArgs renders bound values as a bracketed list.
func FormatArgs(args []interface{}) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprint(a)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

var keywords = regexp.MustCompile(`(?i)\b(select|insert|into|values|update|set|delete|from|where|and|or|order|by|asc|desc|limit|offset|for|returning|count|is|null|not|in|like)\b`)

var (
	keywordColor = color.New(color.FgCyan, color.Bold)
	argColor     = color.New(color.FgYellow)
	labelColor   = color.New(color.FgHiBlack)
)

// HighlightSQL colors SQL keywords. Color is dropped when the output is not
// a terminal.
func HighlightSQL(sql string) string {
	return keywords.ReplaceAllStringFunc(sql, func(kw string) string {
		return keywordColor.Sprint(kw)
	})
}

// PrintStatements prints statements one per line with color highlighting.
func PrintStatements(statements []Statement) {
	for _, st := range statements {
		fmt.Fprintf(Output, "%s%s", labelColor.Sprintf("-- %s\n", st.Title), HighlightSQL(st.SQL))
		if len(st.Args) > 0 {
			fmt.Fprintf(Output, "  %s", argColor.Sprint(FormatArgs(st.Args)))
		}
		fmt.Fprintln(Output)
	}
}
