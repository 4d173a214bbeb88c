// Package repl is an interactive read-eval-print loop for probing
// inference over the toy expression surface, grounded on the teacher's
// internal/repl/repl.go (liner-based history, command completer,
// colored prompt), rewired here to internal/check's Infer instead of
// an evaluator.
package repl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/vulpine-lang/vulpityc/internal/check"
	"github.com/vulpine-lang/vulpityc/internal/diag"
	"github.com/vulpine-lang/vulpityc/internal/tenv"
	"github.com/vulpine-lang/vulpityc/internal/toy"
	"github.com/vulpine-lang/vulpityc/internal/types"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	dim   = color.New(color.Faint).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

var commands = []string{":help", ":quit", ":type", ":history", ":clear"}

// REPL holds the state carried between lines: the in-memory history and
// the renderer. No tenv.Context is kept (inference is re-run from a
// fresh context each line — §4 has no notion of a persistent module
// under interactive construction).
type REPL struct {
	Version  string
	history  []string
	renderer *diag.Renderer
}

func New(version string, useColor bool) *REPL {
	if version == "" {
		version = "dev"
	}
	return &REPL{Version: version, renderer: diag.NewRenderer(useColor)}
}

func historyPath() string {
	return filepath.Join(os.TempDir(), ".vulpityc_history")
}

// Start runs the loop until EOF or :quit.
func (r *REPL) Start(out io.Writer) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(true)

	if f, err := os.Open(historyPath()); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(in string) (c []string) {
		if strings.HasPrefix(in, ":") {
			for _, cmd := range commands {
				if strings.HasPrefix(cmd, in) {
					c = append(c, cmd)
				}
			}
		}
		return
	})

	fmt.Fprintf(out, "%s %s\n", bold("vulpityc"), bold(r.Version))
	fmt.Fprintln(out, dim("Type :help for help, :quit to exit"))
	fmt.Fprintln(out)

	for {
		input, err := line.Prompt("λ> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("\nGoodbye!"))
			break
		}
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", red("error"), err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)
		r.history = append(r.history, input)

		if strings.HasPrefix(input, ":") {
			if strings.HasPrefix(input, ":quit") || strings.HasPrefix(input, ":q") {
				fmt.Fprintln(out, green("Goodbye!"))
				break
			}
			r.handleCommand(input, out)
			continue
		}

		r.evalLine(input, out)
	}

	if f, err := os.Create(historyPath()); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) handleCommand(input string, out io.Writer) {
	switch {
	case strings.HasPrefix(input, ":help"):
		fmt.Fprintln(out, "commands: :help :quit :type <expr> :history :clear")
	case strings.HasPrefix(input, ":type"):
		r.evalLine(strings.TrimSpace(strings.TrimPrefix(input, ":type")), out)
	case strings.HasPrefix(input, ":history"):
		for i, h := range r.history {
			fmt.Fprintf(out, "%3d  %s\n", i+1, h)
		}
	case strings.HasPrefix(input, ":clear"):
		r.history = nil
	default:
		fmt.Fprintf(out, "%s: unknown command %q\n", red("error"), input)
	}
}

func (r *REPL) evalLine(input string, out io.Writer) {
	expr, err := toy.Parse(input)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", red("parse error"), err)
		return
	}

	sink := diag.NewCollectingSink()
	ctx := tenv.New(sink)
	env := types.NewEnv()

	inferred, _ := check.Infer(ctx, env, expr)

	r.renderer.RenderAll(out, sink.Diagnostics)
	if !sink.HasErrors() {
		fmt.Fprintf(out, "%s %s\n", green(":"), types.Print(types.Quote(inferred, env.Level)))
	}
}
