package cli

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/tapestry/pkg/art"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// uiOut receives all status output. Tests swap it for a buffer.
var uiOut io.Writer = os.Stdout

func emit(s string) { fmt.Fprintln(uiOut, s) }

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	emit(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	emit(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	emit(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	emit(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	emit("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written-file line.
func printFile(path string) {
	emit("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	emit(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints plan statistics on a single line.
func printStats(cells, draws int, cached bool) {
	var parts []string
	if cells > 0 {
		parts = append(parts, fmt.Sprintf("%d cells", cells))
	}
	if draws > 0 {
		parts = append(parts, fmt.Sprintf("%d draws", draws))
	}

	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	var line strings.Builder
	line.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			line.WriteString(StyleDim.Render(" · "))
		}
		line.WriteString(StyleDim.Render(part))
	}
	emit(line.String())
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	emit(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	emit("")
}

// =============================================================================
// Colors
// =============================================================================

// swatch renders a short block in c followed by its hex code.
func swatch(c color.NRGBA) string {
	hex := art.Hex(c)
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("  ") + " " + hex
}

// palette renders every color of p as swatches on one line.
func palette(p []color.NRGBA) string {
	parts := make([]string, len(p))
	for i, c := range p {
		parts[i] = swatch(c)
	}
	return strings.Join(parts, "  ")
}
