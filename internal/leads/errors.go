package leads

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	// ErrRateLimited is returned when a submission arrives inside the cooldown window.
	ErrRateLimited = errors.New("leads: submitted too recently, try again later")

	// ErrSubmissionInProgress is returned while an earlier submission is still in flight.
	ErrSubmissionInProgress = errors.New("leads: submission already in progress")

	// ErrHoneypot is returned when the hidden honeypot field was filled in.
	ErrHoneypot = errors.New("leads: honeypot field populated")
)

// ValidationErrors maps a form field to a human readable message.
type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field])
	}
	return "leads: invalid submission: " + strings.Join(parts, "; ")
}

// Fields returns the failing field names in sorted order.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// RateLimitError carries how long the caller should wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (retry in %s)", ErrRateLimited.Error(), e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// TransportError wraps a failed delivery to the remote endpoint. It is never retried.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "leads: delivery failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }
