package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/banktags/pkg/grid"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
	colorCell   = lipgloss.Color("236") // Near black - empty cells
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCurrent = lipgloss.NewStyle().Foreground(colorGreen)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// Grid cell styles. Every cell renders at cellWidth columns.
var (
	styleCellEmpty    = lipgloss.NewStyle().Width(cellWidth).Foreground(colorCell)
	styleCellItem     = lipgloss.NewStyle().Width(cellWidth).Foreground(colorWhite)
	styleCellCursor   = lipgloss.NewStyle().Width(cellWidth).Reverse(true)
	styleCellSelected = lipgloss.NewStyle().Width(cellWidth).Foreground(colorYellow).Bold(true)
	styleRowLabel     = lipgloss.NewStyle().Width(4).Foreground(colorDim).Align(lipgloss.Right)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCurrent = "●"
	iconEmpty   = "·"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Layout Display
// =============================================================================

// layoutStats summarises a layout on a single line, e.g.
// "12 items · 8×10 · persisted".
func layoutStats(l *grid.Layout, origin string) string {
	parts := []string{
		fmt.Sprintf("%d items", len(l.Items)),
		fmt.Sprintf("%d×%d", l.Width, l.Height),
	}
	if len(l.Tags) > 0 {
		parts = append(parts, strings.Join(l.Tags, ", "))
	}
	if origin != "" {
		parts = append(parts, origin)
	}
	return strings.Join(parts, " · ")
}

// printLayoutStats prints layout statistics on a single line.
func printLayoutStats(l *grid.Layout, origin string) {
	fmt.Println("  " + StyleDim.Render(layoutStats(l, origin)))
}

// printLayoutLine prints one row of `layout list`, marking the current layout.
func printLayoutLine(l *grid.Layout, current bool) {
	mark := " "
	if current {
		mark = styleCurrent.Render(iconCurrent)
	}
	id := StyleNumber.Render(fmt.Sprintf("%3d", l.ID))
	fmt.Println(mark + " " + id + "  " + StyleValue.Render(l.Title) + "  " + StyleDim.Render(layoutStats(l, "")))
}

// cellWidth is the rendered width of one grid cell.
const cellWidth = 10

// gridView describes how to draw a layout. Label maps an internal item id
// to the text shown in its cell; Cursor and Selected are optional.
type gridView struct {
	Label    func(itemID int) string
	Cursor   *grid.Pos
	Selected *grid.Pos
}

// renderGrid draws the layout as rows of fixed-width cells with a column
// header and row numbers.
func renderGrid(l *grid.Layout, v gridView) string {
	label := v.Label
	if label == nil {
		label = strconv.Itoa
	}

	var b strings.Builder
	b.WriteString(styleRowLabel.Render(""))
	for x := range grid.Columns {
		b.WriteString(StyleDim.Width(cellWidth).Render(" " + strconv.Itoa(x)))
	}
	b.WriteByte('\n')

	for y, row := range l.Cells() {
		b.WriteString(styleRowLabel.Render(strconv.Itoa(y) + " "))
		for x, cell := range row {
			pos := grid.Pos{X: x, Y: y}
			text := iconEmpty
			style := styleCellEmpty
			if cell != nil {
				text = label(cell.ItemID)
				if cell.Quantity > 1 {
					text = fmt.Sprintf("%s×%d", text, cell.Quantity)
				}
				style = styleCellItem
			}
			switch {
			case v.Cursor != nil && *v.Cursor == pos:
				style = styleCellCursor
			case v.Selected != nil && *v.Selected == pos:
				style = styleCellSelected
			}
			b.WriteString(style.Render(" " + truncate(text, cellWidth-2)))
		}
		if y < l.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printInline prints a dim message without a trailing newline.
func printInline(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Print(StyleDim.Render(msg))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
