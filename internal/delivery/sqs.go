package delivery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/geovantage/lead-intake/internal/leads"
)

type sqsAPI interface {
	SendMessage(context.Context, *sqs.SendMessageInput, ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSForwarder drops the lead onto the CRM ingestion queue.
type SQSForwarder struct {
	client   sqsAPI
	queueURL string
}

func NewSQSForwarder(client sqsAPI, queueURL string) *SQSForwarder {
	if client == nil {
		panic("delivery: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("delivery: SQS queueURL cannot be empty")
	}
	return &SQSForwarder{client: client, queueURL: queueURL}
}

func (f *SQSForwarder) Forward(ctx context.Context, lead *leads.Lead) error {
	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("delivery: marshal lead: %w", err)
	}
	_, err = f.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(f.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"submission_id": {DataType: aws.String("String"), StringValue: aws.String(lead.ID)},
			"category":      {DataType: aws.String("String"), StringValue: aws.String(lead.Category())},
		},
	})
	if err != nil {
		return fmt.Errorf("delivery: failed to send SQS message: %w", err)
	}
	return nil
}

var _ leads.Transport = (*SQSForwarder)(nil)
