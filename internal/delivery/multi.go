package delivery

import (
	"context"
	"errors"

	"github.com/geovantage/lead-intake/internal/leads"
)

// ErrNoForwarders is returned by an empty Multi.
var ErrNoForwarders = errors.New("delivery: no forwarders configured")

// Multi forwards to each target in order and stops at the first failure.
// The first target is the system of record; later ones are notifications.
type Multi []leads.Transport

func (m Multi) Forward(ctx context.Context, lead *leads.Lead) error {
	if len(m) == 0 {
		return ErrNoForwarders
	}
	for _, t := range m {
		if err := t.Forward(ctx, lead); err != nil {
			return err
		}
	}
	return nil
}

var _ leads.Transport = Multi(nil)
