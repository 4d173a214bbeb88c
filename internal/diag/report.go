package diag

import "fmt"

// Span is a source range, independent of internal/ast so this package
// has no dependency on the surface syntax it reports about.
type Span struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.StartLine, s.StartCol)
}

// Diagnostic is a single reported error: a stable code, a span, a
// human message, and optional structured extras. Construction is via
// New + With* builder methods so call sites read as a short pipeline,
// matching the teacher's Encoded/Report builder style.
type Diagnostic struct {
	Code    Code
	Span    Span
	Message string
	Fix     string
	Meta    map[string]any
}

// New starts a diagnostic with its code and message; call sites attach
// the rest via With* before handing it to a Sink.
func New(code Code, message string) *Diagnostic {
	return &Diagnostic{Code: code, Message: message}
}

func (d *Diagnostic) WithSpan(s Span) *Diagnostic {
	d.Span = s
	return d
}

func (d *Diagnostic) WithFix(fix string) *Diagnostic {
	d.Fix = fix
	return d
}

func (d *Diagnostic) WithMeta(key string, value any) *Diagnostic {
	if d.Meta == nil {
		d.Meta = map[string]any{}
	}
	d.Meta[key] = value
	return d
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: [%s] %s", d.Span, d.Code, d.Message)
}

// Sink is where the checker reports diagnostics. internal/tenv.Context
// holds one. CollectingSink below is the implementation in use; it only
// collects, and Renderer formats what it collected.
type Sink interface {
	Report(d *Diagnostic)
}

// CollectingSink accumulates diagnostics in report order, which is
// deterministic across runs on the same input even though emission
// order within a pass is not otherwise specified (spec.md 6).
type CollectingSink struct {
	Diagnostics []*Diagnostic
}

func NewCollectingSink() *CollectingSink {
	return &CollectingSink{}
}

func (s *CollectingSink) Report(d *Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
}

func (s *CollectingSink) HasErrors() bool {
	return len(s.Diagnostics) > 0
}
