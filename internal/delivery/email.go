package delivery

import (
	"context"
	"fmt"

	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/internal/notify"
)

// EmailForwarder notifies the sales inbox about the lead.
type EmailForwarder struct {
	sender notify.EmailSender
	to     string
	toName string
}

func NewEmailForwarder(sender notify.EmailSender, to, toName string) *EmailForwarder {
	if sender == nil {
		panic("delivery: email sender required")
	}
	if to == "" {
		panic("delivery: recipient required")
	}
	return &EmailForwarder{sender: sender, to: to, toName: toName}
}

func (f *EmailForwarder) Forward(ctx context.Context, lead *leads.Lead) error {
	if err := f.sender.Send(ctx, notify.BuildLeadEmail(lead, f.to, f.toName)); err != nil {
		return fmt.Errorf("delivery: notify sales inbox: %w", err)
	}
	return nil
}

var _ leads.Transport = (*EmailForwarder)(nil)
