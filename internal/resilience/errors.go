// Package resilience provides the retry policy and the error taxonomy the
// reconciliation jobs share. Three kinds of failure matter here: transient
// faults worth retrying (locked workbooks, network hiccups), row-scoped
// faults that skip one record and let the batch continue, and fatal faults
// that abort the job.
package resilience

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// TransientError wraps an error that is safe to retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps an error as transient.
func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err}
}

// RowError marks a recoverable, row-scoped failure: the offending row is
// logged and skipped, and the batch moves on.
type RowError struct {
	Ref    string // "file!sheet:row" or similar locator
	Reason string
	Err    error
}

func (e *RowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("row %s: %s: %v", e.Ref, e.Reason, e.Err)
	}
	return fmt.Sprintf("row %s: %s", e.Ref, e.Reason)
}

func (e *RowError) Unwrap() error { return e.Err }

// NewRowError builds a RowError for the row at ref.
func NewRowError(ref, reason string, err error) *RowError {
	return &RowError{Ref: ref, Reason: reason, Err: err}
}

// FatalError marks a failure the job cannot continue past, such as missing
// credentials or an unreadable source workbook.
type FatalError struct {
	Reason string
	Err    error
}

func (e *FatalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err as a FatalError.
func Fatal(reason string, err error) *FatalError {
	return &FatalError{Reason: reason, Err: err}
}

// IsFatal reports whether the error chain contains a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// IsTransient returns true if the error (or any error in its chain) is a
// TransientError, or matches common transient network failure patterns.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"i/o timeout",
		"temporary failure in name resolution",
		"tls handshake timeout",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
