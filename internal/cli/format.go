package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Color functions - fatih/color disables them off-TTY automatically
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	valueColor   = color.New(color.FgHiBlack)
	dimColor     = color.New(color.FgHiBlack)
)

// PrintSection prints a section header
func PrintSection(title string) {
	fmt.Println()
	_, _ = headerColor.Printf("▸ %s\n", title)
	fmt.Println()
}

// PrintSuccess prints a success message with a checkmark
func PrintSuccess(msg string) {
	_, _ = successColor.Printf("✓ %s\n", msg)
}

// PrintWarning prints a warning message with a warning symbol
func PrintWarning(msg string) {
	_, _ = warningColor.Printf("⚠ %s\n", msg)
}

// PrintError prints an error message to stderr
func PrintError(msg string) {
	_, _ = errorColor.Fprintf(os.Stderr, "✗ %s\n", msg)
}

// PrintInfo prints an informational message
func PrintInfo(msg string) {
	fmt.Println(msg)
}

// PrintLabelValue prints a label-value pair with proper formatting
func PrintLabelValue(label, value string) {
	_, _ = labelColor.Printf("  %s: ", label)
	_, _ = valueColor.Println(value)
}

// PrintList prints a list of items with bullet points
func PrintList(items []string, indent int) {
	indentStr := strings.Repeat("  ", indent)
	for _, item := range items {
		_, _ = infoColor.Printf("%s• %s\n", indentStr, item)
	}
}

// PrintNumberedList prints a numbered list
func PrintNumberedList(items []string, indent int) {
	indentStr := strings.Repeat("  ", indent)
	for i, item := range items {
		_, _ = infoColor.Printf("%s%d. %s\n", indentStr, i+1, item)
	}
}

// PrintEmptyState prints a message when there's no data to show
func PrintEmptyState(msg string) {
	_, _ = dimColor.Printf("  %s\n", msg)
}
