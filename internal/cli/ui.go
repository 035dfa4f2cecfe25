package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pkggraph/pkg/graph"
)

// uiOut receives status lines. Command results go to the command's stdout,
// so status stays out of piped output.
var uiOut io.Writer = os.Stderr

// Palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("36")
	colorOK     = lipgloss.Color("35")
	colorWarn   = lipgloss.Color("220")
	colorFail   = lipgloss.Color("167")
	colorBright = lipgloss.Color("255")
	colorMuted  = lipgloss.Color("245")
	colorFaint  = lipgloss.Color("240")
)

// Styles shared by the commands.
var (
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorBright)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
)

// statusKind is the leading marker of a status line.
type statusKind struct {
	icon  string
	style lipgloss.Style
	body  *lipgloss.Style // nil leaves the message unstyled
}

var (
	statusSuccess = statusKind{icon: "✓", style: lipgloss.NewStyle().Foreground(colorOK)}
	statusError   = statusKind{icon: "✗", style: lipgloss.NewStyle().Foreground(colorFail)}
	statusWarning = statusKind{icon: "!", style: StyleWarning, body: &StyleWarning}
	statusInfo    = statusKind{icon: "›", style: lipgloss.NewStyle().Foreground(colorMuted)}
)

func (k statusKind) print(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if k.body != nil {
		msg = k.body.Render(msg)
	}
	fmt.Fprintf(uiOut, "%s %s\n", k.style.Render(k.icon), msg)
}

func printSuccess(format string, args ...any) { statusSuccess.print(format, args...) }
func printError(format string, args ...any)   { statusError.print(format, args...) }
func printWarning(format string, args ...any) { statusWarning.print(format, args...) }
func printInfo(format string, args ...any)    { statusInfo.print(format, args...) }

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	fmt.Fprintf(uiOut, "  %s\n", StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile announces a written file.
func printFile(path string) {
	fmt.Fprintf(uiOut, "  %s %s\n", StyleDim.Render("→"), StyleValue.Render(path))
}

// printStats prints the report counts on one line, followed by whether the
// report came from the cache.
func printStats(stats graph.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d packages", stats.Nodes),
		fmt.Sprintf("%d edges", stats.Edges),
	}
	if beyond := stats.External - stats.Unresolved; beyond > 0 {
		parts = append(parts, fmt.Sprintf("%d beyond depth", beyond))
	}
	if stats.Unresolved > 0 {
		parts = append(parts, fmt.Sprintf("%d unresolved", stats.Unresolved))
	}

	source := lipgloss.NewStyle().Foreground(colorMuted).Render("fresh")
	if cached {
		source = lipgloss.NewStyle().Foreground(colorOK).Render("cached")
	}

	sep := StyleDim.Render(" · ")
	fmt.Fprintf(uiOut, "  %s%s%s\n", StyleDim.Render(strings.Join(parts, " · ")), sep, source)
}
