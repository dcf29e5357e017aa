package leads

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle of one contact form instance.
type State string

const (
	StateIdle       State = "idle"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Form drives a single contact form through idle -> submitting -> success|error.
// While a submission is in flight further Submit calls are refused, the same way
// the page disables its submit button.
type Form struct {
	svc       *Service
	clientKey string

	mu      sync.Mutex
	busy    bool
	values  FormValues
	state   State
	errors  ValidationErrors
	lastErr error
}

// NewForm returns an idle form bound to the guard service.
func NewForm(svc *Service, clientKey string) *Form {
	return &Form{svc: svc, clientKey: clientKey, state: StateIdle}
}

// Edit mutates the field values. A finished form drops back to idle.
// Fields are locked while a submission is in flight.
func (f *Form) Edit(fn func(*FormValues)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrSubmissionInProgress
	}
	fn(&f.values)
	if f.state == StateSuccess || f.state == StateError {
		f.toIdle()
	}
	return nil
}

// Reset clears every field and returns to idle unless a submission is in flight.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return
	}
	f.values = FormValues{}
	f.toIdle()
}

func (f *Form) toIdle() {
	f.state = StateIdle
	f.errors = nil
	f.lastErr = nil
}

// Values returns a copy of the current field values.
func (f *Form) Values() FormValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// State returns the current lifecycle state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Errors returns per-field messages from the last failed validation.
func (f *Form) Errors() ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(ValidationErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Err returns the error that moved the form into StateError.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Submit validates, checks the cooldown, and forwards the form.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrSubmissionInProgress
	}
	f.busy = true
	values := f.values
	f.mu.Unlock()

	lead, err := f.svc.Prepare(ctx, f.clientKey, values)
	switch {
	case errors.Is(err, ErrHoneypot):
		f.finish(StateSuccess, nil)
		return nil
	case err != nil:
		f.finish(StateError, err)
		return err
	}

	f.mu.Lock()
	f.state = StateSubmitting
	f.errors = nil
	f.mu.Unlock()

	if err := f.svc.Submit(ctx, f.clientKey, lead); err != nil {
		f.finish(StateError, err)
		return err
	}
	f.finish(StateSuccess, nil)
	return nil
}

func (f *Form) finish(state State, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.state = state
	f.lastErr = err
	f.errors = nil
	if state == StateSuccess {
		f.values = FormValues{}
		return
	}
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		f.errors = verrs
	}
}
