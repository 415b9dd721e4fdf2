// Package syncerr defines the error kinds surfaced by upstream synchronization.
//
// Every error produced by the accessors, the record store and the orchestrator
// wraps exactly one kind sentinel, so callers can branch with errors.Is:
//
//	if errors.Is(err, syncerr.ErrUpstreamUnavailable) {
//	    // abort this resource type, continue with the next
//	}
package syncerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind sentinels.
var (
	// ErrUpstreamUnavailable means the remote content source could not be reached
	// or answered with a non-2xx status.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrDownloadFailed means a single file fetch failed after listing succeeded.
	ErrDownloadFailed = errors.New("download failed")

	// ErrLocalIO means a filesystem write or delete failed.
	ErrLocalIO = errors.New("local io error")

	// ErrMetadataCorrupt means the sync record could not be parsed.
	ErrMetadataCorrupt = errors.New("metadata corrupt")

	// ErrConfigurationInvalid means a source or resource definition is malformed.
	ErrConfigurationInvalid = errors.New("configuration invalid")
)

var kinds = []error{
	ErrUpstreamUnavailable,
	ErrDownloadFailed,
	ErrLocalIO,
	ErrMetadataCorrupt,
	ErrConfigurationInvalid,
}

// Error carries a kind together with the operation and target that failed.
type Error struct {
	// Kind is one of the package sentinels.
	Kind error
	// Op names the operation, e.g. "list", "fetch", "write".
	Op string
	// Target is the URL or path the operation acted on.
	Target string
	// Status is the HTTP status text, if any.
	Status string
	// Err is the underlying cause (may be nil).
	Err error
}

// Error returns a message including the target and status so that HTTP
// failures can be traced to the resolved URL.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Op != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Op)
	}
	if e.Target != "" {
		fmt.Fprintf(&sb, " %s", e.Target)
	}
	if e.Status != "" {
		fmt.Fprintf(&sb, ": %s", e.Status)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New builds an *Error of the given kind.
func New(kind error, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

// Upstream builds an ErrUpstreamUnavailable error for an HTTP exchange.
func Upstream(op, url, status string, err error) *Error {
	return &Error{Kind: ErrUpstreamUnavailable, Op: op, Target: url, Status: status, Err: err}
}

// LocalIO builds an ErrLocalIO error for a filesystem path.
func LocalIO(op, path string, err error) *Error {
	return New(ErrLocalIO, op, path, err)
}

// Invalid builds an ErrConfigurationInvalid error.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: ErrConfigurationInvalid, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind sentinel wrapped by err, or nil if err carries none.
// The outermost *Error wins when kinds are nested.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
