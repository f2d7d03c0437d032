package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("37"))  // dark green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // red
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))  // yellow
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))  // cyan
	debugStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250")) // light grey
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))  // purple
)

var StyleSymbols = map[string]string{
	"pass":    "✓",
	"fail":    "✗",
	"warning": "!",
	"info":    "ℹ",
	"arrow":   "→",
}

// Out is where the Print helpers write; tests swap it for a buffer.
var Out io.Writer = os.Stdout

func PrintSuccess(text string) {
	fmt.Fprintln(Out, successStyle.Render(StyleSymbols["pass"]+" "+text))
}
func PrintError(text string) {
	fmt.Fprintln(Out, errorStyle.Render(StyleSymbols["fail"]+" "+text))
}
func PrintWarning(text string) {
	fmt.Fprintln(Out, warningStyle.Render(StyleSymbols["warning"]+" "+text))
}
func PrintInfo(text string) {
	fmt.Fprintln(Out, infoStyle.Render(StyleSymbols["info"]+" "+text))
}
func PrintDetail(text string) {
	fmt.Fprintln(Out, detailStyle.Render("  "+StyleSymbols["arrow"]+" "+text))
}
func FDebug(text string) string {
	return debugStyle.Render(text)
}
