package diag

import "github.com/vulpine-lang/vulpityc/internal/schema"

// EncodedDiagnostic is the deterministic wire shape for a Diagnostic,
// tagged with the schema version so downstream tools can diff two
// checker runs byte-for-byte.
type EncodedDiagnostic struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Span    string         `json:"span"`
	Message string         `json:"message"`
	Fix     string         `json:"fix,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Encode converts a Diagnostic into its wire shape.
func Encode(d *Diagnostic) EncodedDiagnostic {
	return EncodedDiagnostic{
		Schema:  schema.ErrorV1,
		Code:    string(d.Code),
		Span:    d.Span.String(),
		Message: d.Message,
		Fix:     d.Fix,
		Meta:    d.Meta,
	}
}

// ToJSON renders a diagnostic as deterministic JSON (sorted keys, no
// HTML escaping), matching the teacher's internal/schema marshaling
// convention so golden files are stable.
func ToJSON(d *Diagnostic) ([]byte, error) {
	return schema.MarshalDeterministic(Encode(d))
}

// EncodeAll renders every diagnostic a sink collected, in report order.
func EncodeAll(sink *CollectingSink) ([]EncodedDiagnostic, error) {
	out := make([]EncodedDiagnostic, len(sink.Diagnostics))
	for i, d := range sink.Diagnostics {
		out[i] = Encode(d)
	}
	return out, nil
}
