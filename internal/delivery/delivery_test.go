package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/geovantage/lead-intake/internal/leads"
	"github.com/geovantage/lead-intake/internal/notify"
	"github.com/geovantage/lead-intake/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLead() *leads.Lead {
	return &leads.Lead{
		ID:           "sub-1",
		FirstName:    "A",
		LastName:     "Smith",
		Email:        "a@b.com",
		Phone:        "5551234567",
		Organization: "Acme",
		Title:        "Eng",
		ProjectType:  leads.ProjectMissionPlanning,
		Message:      "Need a demo of the platform for our team",
		Consent:      true,
		SubmittedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHTTPForwarder_PostsJSON(t *testing.T) {
	var got leads.Lead
	var auth, submissionID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		submissionID = r.Header.Get("X-Submission-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	f := NewHTTPForwarder(HTTPConfig{Endpoint: srv.URL, Token: "secret"}, logging.Discard())
	require.NoError(t, f.Forward(context.Background(), sampleLead()))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "sub-1", submissionID)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, leads.ProjectMissionPlanning, got.ProjectType)
}

func TestHTTPForwarder_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewHTTPForwarder(HTTPConfig{Endpoint: srv.URL}, logging.Discard())
	err := f.Forward(context.Background(), sampleLead())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestHTTPForwarder_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := NewHTTPForwarder(HTTPConfig{Endpoint: url, Timeout: time.Second}, logging.Discard()).
		WithClient(&http.Client{Timeout: time.Second})
	assert.Error(t, f.Forward(context.Background(), sampleLead()))
}

func TestNewHTTPForwarder_RequiresEndpoint(t *testing.T) {
	assert.Panics(t, func() { NewHTTPForwarder(HTTPConfig{}, nil) })
}

type stubSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (s *stubSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	s.input = in
	if s.err != nil {
		return nil, s.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestSQSForwarder_SendsMessage(t *testing.T) {
	client := &stubSQS{}
	f := NewSQSForwarder(client, "https://sqs.us-east-1.amazonaws.com/123/leads")

	require.NoError(t, f.Forward(context.Background(), sampleLead()))

	require.NotNil(t, client.input)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/leads", aws.ToString(client.input.QueueUrl))
	assert.Equal(t, "mission-planning", aws.ToString(client.input.MessageAttributes["category"].StringValue))

	var body leads.Lead
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &body))
	assert.Equal(t, "sub-1", body.ID)
}

func TestSQSForwarder_Error(t *testing.T) {
	f := NewSQSForwarder(&stubSQS{err: errors.New("access denied")}, "queue")
	assert.ErrorContains(t, f.Forward(context.Background(), sampleLead()), "access denied")
}

func TestEmailForwarder(t *testing.T) {
	sender := notify.NewStubEmailSender(logging.Discard())
	f := NewEmailForwarder(sender, "sales@example.com", "Sales")

	require.NoError(t, f.Forward(context.Background(), sampleLead()))
	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "sales@example.com", sent[0].To)
	assert.Equal(t, "a@b.com", sent[0].ReplyTo)
}

type recordingTransport struct {
	name  string
	calls *[]string
	err   error
}

func (r recordingTransport) Forward(context.Context, *leads.Lead) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestMulti_StopsAtFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	m := Multi{
		recordingTransport{name: "crm", calls: &calls},
		recordingTransport{name: "queue", calls: &calls, err: boom},
		recordingTransport{name: "email", calls: &calls},
	}

	err := m.Forward(context.Background(), sampleLead())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"crm", "queue"}, calls)
}

func TestMulti_Empty(t *testing.T) {
	assert.ErrorIs(t, Multi(nil).Forward(context.Background(), sampleLead()), ErrNoForwarders)
}
