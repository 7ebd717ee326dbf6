// Package diag holds the diagnostics stream and the error taxonomy shared by
// every conversion stage.
package diag

import (
	"errors"
	"fmt"
	"sort"
)

type Severity string

const (
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Codes reported by the conversion stages.
const (
	CodeUnresolved       = "unresolved-connection"
	CodeDefaultMetadata  = "default-metadata"
	CodeMissingMetadata  = "missing-metadata"
	CodeMissingElement   = "missing-svg-element"
	CodeMissingView      = "missing-view"
	CodeDuplicateID      = "duplicate-connector"
	CodeUnmappedLayer    = "unmapped-layer"
	CodePinRotation      = "pin-rotation"
	CodeBadNumber        = "bad-number"
	CodeEmptyDeviceSet   = "empty-deviceset"
	CodeMissingPackage   = "missing-package"
	CodeMissingSymbol    = "missing-symbol"
	CodeMissingSubpart   = "missing-subpart"
	CodeMissingOutline   = "missing-outline"
	CodeUnsupportedCurve = "unsupported-curve"
	CodeCatalog          = "catalog"
	CodeTransientIORetry = "io-retry"
)

// Diagnostic is one structured, non-fatal finding.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Context  string   `json:"context,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Context == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s [%s] %s (%s)", d.Severity, d.Code, d.Message, d.Context)
}

func Warn(code, context, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: Warning, Code: code, Message: fmt.Sprintf(format, args...), Context: context}
}

func Errorf(code, context, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: Error, Code: code, Message: fmt.Sprintf(format, args...), Context: context}
}

// FromError turns a non-fatal error into a diagnostic. Unresolved connections
// keep their own code; anything else is reported under fallback.
func FromError(err error, fallback string) Diagnostic {
	var unresolved *UnresolvedConnectionError
	if errors.As(err, &unresolved) {
		return Diagnostic{
			Severity: Error,
			Code:     CodeUnresolved,
			Message:  unresolved.Error(),
			Context:  unresolved.Context(),
		}
	}
	return Diagnostic{Severity: Error, Code: fallback, Message: err.Error()}
}

// List accumulates diagnostics for one stage.
type List []Diagnostic

func (l *List) Add(d Diagnostic) { *l = append(*l, d) }

func (l *List) Warn(code, context, format string, args ...interface{}) {
	l.Add(Warn(code, context, format, args...))
}

func (l *List) Unresolved(err *UnresolvedConnectionError) {
	l.Add(FromError(err, CodeUnresolved))
}

// Count returns the number of diagnostics carrying code.
func (l List) Count(code string) int {
	n := 0
	for _, d := range l {
		if d.Code == code {
			n++
		}
	}
	return n
}

func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == Error {
			return true
		}
	}
	return false
}

// Sorted returns a copy ordered by severity, code, context and message so
// reports are stable across runs.
func (l List) Sorted() List {
	out := append(List(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity != b.Severity {
			return a.Severity == Error
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		if a.Context != b.Context {
			return a.Context < b.Context
		}
		return a.Message < b.Message
	})
	return out
}
