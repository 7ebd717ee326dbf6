package diag

import (
	"errors"
	"fmt"
	"strings"
)

// ParseError reports malformed or unreadable input XML.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports well-formed XML that lacks a required EAGLE construct.
type SchemaError struct {
	Path    string
	Subtree string
	Reason  string
}

func (e *SchemaError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("schema %s: %s: %s", e.Path, e.Subtree, e.Reason)
	}
	return fmt.Sprintf("schema %s: missing required subtree %s", e.Path, e.Subtree)
}

// UnresolvedConnectionError is a pin without a pad or a pad without a pin.
// It never aborts mapping; the mapper records it as a Diagnostic.
type UnresolvedConnectionError struct {
	DeviceSet string
	Device    string
	Gate      string
	Pin       string
	Pad       string
	Reason    string
}

func (e *UnresolvedConnectionError) Error() string {
	switch {
	case e.Pin != "" && e.Pad != "":
		return fmt.Sprintf("pin %s/%s and pad %s: %s", e.Gate, e.Pin, e.Pad, e.Reason)
	case e.Pin != "":
		return fmt.Sprintf("pin %s/%s: %s", e.Gate, e.Pin, e.Reason)
	default:
		return fmt.Sprintf("pad %s: %s", e.Pad, e.Reason)
	}
}

// Context names the deviceset and device the connection belongs to.
func (e *UnresolvedConnectionError) Context() string {
	parts := []string{"deviceset " + e.DeviceSet}
	if e.Device != "" {
		parts = append(parts, "device "+e.Device)
	}
	return strings.Join(parts, ", ")
}

// IOError is a write failure that survived the emitter's retry.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsFatal reports whether err aborts a single file's pipeline.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var unresolved *UnresolvedConnectionError
	return !errors.As(err, &unresolved)
}
