package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Renderer formats diagnostics for a terminal. It lives outside the
// checker proper (§5: the checker never logs or renders) — cmd/vulpityc
// and internal/repl are its callers, mirroring the teacher's cmd/typecheck banner style
// built on fatih/color.
type Renderer struct {
	Color bool
	// SourceLines, keyed by file path, backs caret-underline rendering.
	// Nil or missing entries degrade gracefully to span-only output.
	SourceLines map[string][]string
}

func NewRenderer(useColor bool) *Renderer {
	return &Renderer{Color: useColor}
}

var (
	errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()
	codeLabel  = color.New(color.Faint).SprintFunc()
	spanLabel  = color.New(color.FgCyan).SprintFunc()
	caretMark  = color.New(color.FgYellow, color.Bold).SprintFunc()
)

// Render writes one diagnostic, including a column-accurate caret
// underline when the source line is available. Column math accounts
// for East-Asian wide runes via golang.org/x/text/width so the caret
// lines up under multi-width source spans.
func (r *Renderer) Render(w io.Writer, d *Diagnostic) {
	if r.Color {
		fmt.Fprintf(w, "%s %s %s: %s\n", errorLabel("error"), codeLabel("["+string(d.Code)+"]"), spanLabel(d.Span.String()), d.Message)
	} else {
		fmt.Fprintf(w, "error [%s] %s: %s\n", d.Code, d.Span.String(), d.Message)
	}

	if line, ok := r.sourceLine(d.Span); ok {
		fmt.Fprintf(w, "    %s\n", line)
		prefix := visualWidth(line, d.Span.StartCol-1)
		underline := strings.Repeat(" ", prefix) + strings.Repeat("^", underlineWidth(d.Span))
		if r.Color {
			fmt.Fprintf(w, "    %s\n", caretMark(underline))
		} else {
			fmt.Fprintf(w, "    %s\n", underline)
		}
	}

	if d.Fix != "" {
		fmt.Fprintf(w, "  fix: %s\n", d.Fix)
	}
}

// RenderAll renders every diagnostic in a sink, in report order.
func (r *Renderer) RenderAll(w io.Writer, diags []*Diagnostic) {
	for _, d := range diags {
		r.Render(w, d)
	}
}

func (r *Renderer) sourceLine(s Span) (string, bool) {
	lines, ok := r.SourceLines[s.File]
	if !ok || s.StartLine < 1 || s.StartLine > len(lines) {
		return "", false
	}
	return norm.NFC.String(lines[s.StartLine-1]), true
}

// visualWidth sums the display width of the first n runes of line,
// since a caret must skip as many terminal columns as wide runes
// occupy, not as many bytes or code points.
func visualWidth(line string, n int) int {
	w, seen := 0, 0
	for _, r := range line {
		if seen >= n {
			break
		}
		seen++
		if width.LookupRune(r).Kind() == width.EastAsianWide {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func underlineWidth(s Span) int {
	if s.EndCol > s.StartCol {
		return s.EndCol - s.StartCol
	}
	return 1
}
