package skemaref

import (
	"errors"
	"fmt"
	"strings"
)

// Resolution error codes (exported consts for IDE completion and matching).
const (
	CodeLocalUnresolvable  = "local_unresolvable"
	CodeCycleDetected      = "cycle_detected"
	CodeDepthExceeded      = "depth_exceeded"
	CodeBadContentType     = "bad_content_type"
	CodeTransportFailure   = "transport_failure"
	CodeRemoteUnresolvable = "remote_unresolvable"
	CodeInvalidReference   = "invalid_reference"
	CodeInvalidDocument    = "invalid_document"
)

// Sentinels for errors.Is. A *ResolutionError matches the sentinel that
// carries its Code.
var (
	ErrLocalUnresolvable  = &ResolutionError{Code: CodeLocalUnresolvable}
	ErrCycleDetected      = &ResolutionError{Code: CodeCycleDetected}
	ErrDepthExceeded      = &ResolutionError{Code: CodeDepthExceeded}
	ErrBadContentType     = &ResolutionError{Code: CodeBadContentType}
	ErrTransportFailure   = &ResolutionError{Code: CodeTransportFailure}
	ErrRemoteUnresolvable = &ResolutionError{Code: CodeRemoteUnresolvable}
	ErrInvalidReference   = &ResolutionError{Code: CodeInvalidReference}
	ErrInvalidDocument    = &ResolutionError{Code: CodeInvalidDocument}
)

// ResolutionError is returned when a reference cannot be turned into a
// schema node.
type ResolutionError struct {
	Code  string   // One of the Code* constants.
	Ref   string   // Reference as requested.
	URL   string   // Canonical URL (host+path) involved, if any.
	Chain []string // Canonical URLs visited before the failure.
	Cause error    // Optional: underlying error.
}

func (e *ResolutionError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "skemaref: %s", strings.ReplaceAll(e.Code, "_", " "))
	if e.Ref != "" {
		fmt.Fprintf(b, " for %q", e.Ref)
	}
	if e.URL != "" && e.URL != e.Ref {
		fmt.Fprintf(b, " (%s)", e.URL)
	}
	if len(e.Chain) > 0 {
		fmt.Fprintf(b, " via %s", strings.Join(e.Chain, " -> "))
	}
	if e.Cause != nil {
		fmt.Fprintf(b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ResolutionError) Unwrap() error { return e.Cause }

// Is matches any *ResolutionError with the same Code.
func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	return ok && t.Code == e.Code
}

// CompilationError wraps the ResolutionError hit while expanding a nested
// $ref. Path is the JSON Pointer fragment of the referencing node.
type CompilationError struct {
	Ref  string
	Path string
	Err  *ResolutionError
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("skemaref: compiling $ref %q at %s: %v", e.Ref, e.Path, e.Err)
}

func (e *CompilationError) Unwrap() error { return e.Err }

// AsResolutionError extracts a *ResolutionError from err using errors.As.
func AsResolutionError(err error) (*ResolutionError, bool) {
	if err == nil {
		return nil, false
	}
	var re *ResolutionError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

func newResolutionError(code string, ref reference, chain []string, cause error) *ResolutionError {
	e := &ResolutionError{Code: code, Ref: ref.raw, Cause: cause}
	if !ref.isLocal() {
		e.URL = ref.canonical()
	}
	if len(chain) > 0 {
		e.Chain = append([]string(nil), chain...)
	}
	return e
}
