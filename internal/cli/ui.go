package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/libmirror/pkg/mirror"
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
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

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

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
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

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}

// =============================================================================
// Run Summary
// =============================================================================

// maxListedFailures caps the failures echoed in the summary; all of them are
// in the log already.
const maxListedFailures = 10

// printSummary prints the outcome of a mirror run.
func printSummary(r *mirror.Result, dest string) {
	printNewline()
	switch {
	case r.Failed() == 0:
		printSuccess("Mirror complete in %s", r.Duration.Round(time.Millisecond))
	default:
		printWarning("Mirror complete in %s with %d failed versions", r.Duration.Round(time.Millisecond), r.Failed())
	}

	printKeyValue("Destination", dest)
	printKeyValue("Run", r.RunID)
	printKeyValue("Groups", statLine(
		fmt.Sprintf("%d groups", r.Groups),
		fmt.Sprintf("%d libraries", r.Libraries),
	))
	printKeyValue("Versions", statLine(
		fmt.Sprintf("%d accepted", r.VersionsAccepted),
		fmt.Sprintf("%d excluded", r.VersionsExcluded),
		fmt.Sprintf("%d mirrored", r.Mirrored),
		fmt.Sprintf("%d up to date", r.Skipped),
	))
	printKeyValue("Artifacts", statLine(
		fmt.Sprintf("%d downloaded (%s)", r.Downloaded, humanize.Bytes(uint64(r.Bytes))),
		fmt.Sprintf("%d present", r.ArtifactsSkipped),
	))
	printKeyValue("Descriptors", statLine(
		fmt.Sprintf("%d written", r.DescriptorsWritten),
		fmt.Sprintf("%d kept", r.DescriptorsSkipped),
	))

	if r.Failed() > 0 {
		printNewline()
		for i, f := range r.Failures {
			if i == maxListedFailures {
				printDetail("... and %d more", r.Failed()-maxListedFailures)
				break
			}
			printError("%s", f.Coordinate.String())
			printDetail("%s", f.Err)
		}
	}
}

// statLine joins parts with a dim separator.
func statLine(parts ...string) string {
	return strings.Join(parts, StyleDim.Render(" · "))
}
