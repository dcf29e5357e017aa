package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/pkg/logging"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "",
		FromEmail: "test@example.com",
	}, nil)

	if sender != nil {
		t.Error("expected nil sender when API key is empty")
	}
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{
		APIKey:    "test-key",
		FromEmail: "test@example.com",
	}, nil)

	if sender == nil {
		t.Fatal("expected non-nil sender")
	}
	if sender.fromName != DefaultFromName {
		t.Errorf("expected default from name %q, got %q", DefaultFromName, sender.fromName)
	}
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test",
		Body:    "Test body",
	})

	if err == nil {
		t.Error("expected error when client is nil")
	}
}

func TestStubEmailSender_RecordsMessages(t *testing.T) {
	sender := NewStubEmailSender(logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "recipient@example.com",
		Subject: "Test Subject",
		Body:    "Test body",
	})
	if err != nil {
		t.Fatalf("stub sender should not return error, got: %v", err)
	}
	sent := sender.Sent()
	if len(sent) != 1 || sent[0].Subject != "Test Subject" {
		t.Fatalf("unexpected sent messages: %#v", sent)
	}
}

type stubSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (s *stubSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.input = in
	if s.err != nil {
		return nil, s.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &stubSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "leads@example.com"}, logging.Discard())

	err := sender.Send(context.Background(), EmailMessage{
		To:      "sales@example.com",
		ReplyTo: "prospect@example.org",
		Subject: "New lead",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in := client.input
	if got := aws.ToString(in.FromEmailAddress); got != "Lead Intake <leads@example.com>" {
		t.Errorf("unexpected from address %q", got)
	}
	if len(in.ReplyToAddresses) != 1 || in.ReplyToAddresses[0] != "prospect@example.org" {
		t.Errorf("unexpected reply-to %v", in.ReplyToAddresses)
	}
	if aws.ToString(in.Content.Simple.Body.Html.Data) != "<p>html</p>" {
		t.Error("expected html body")
	}
}

func TestSESSender_SendError(t *testing.T) {
	sender := NewSESSender(&stubSES{err: errors.New("throttled")}, SESConfig{FromEmail: "leads@example.com"}, logging.Discard())
	if err := sender.Send(context.Background(), EmailMessage{To: "sales@example.com", Body: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBuildLeadEmail(t *testing.T) {
	lead := &leads.Lead{
		ID:             "lead-123",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		Email:          "ada@example.org",
		Phone:          "555-123-4567",
		Organization:   "Analytical Engines",
		Title:          "Director",
		ClearanceLevel: leads.ClearanceSecret,
		Message:        "Need <imagery> for\nthe north sector",
		SubmittedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	msg := BuildLeadEmail(lead, "sales@example.com", "Sales")

	if msg.Subject != "New lead: Ada Lovelace (Analytical Engines)" {
		t.Errorf("unexpected subject %q", msg.Subject)
	}
	if msg.ReplyTo != "ada@example.org" {
		t.Errorf("expected reply-to prospect, got %q", msg.ReplyTo)
	}
	if !strings.Contains(msg.Body, "Clearance: secret") {
		t.Errorf("expected clearance in body: %s", msg.Body)
	}
	if strings.Contains(msg.Body, "Project type") {
		t.Errorf("did not expect empty project type row: %s", msg.Body)
	}
	if !strings.Contains(msg.HTML, "Need &lt;imagery&gt; for<br>the north sector") {
		t.Errorf("expected escaped html message: %s", msg.HTML)
	}
}
