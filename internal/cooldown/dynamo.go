package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// cooldownRecord is the item layout; expiresAt is the table's TTL attribute.
type cooldownRecord struct {
	Key             string `dynamodbav:"cooldownKey"`
	LastSubmittedMs int64  `dynamodbav:"lastSubmittedMs"`
	ExpiresAt       int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoStore persists timestamps in a DynamoDB table keyed by cooldownKey.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
}

func NewDynamoStore(client dynamoAPI, tableName string, ttl time.Duration) *DynamoStore {
	if client == nil {
		panic("cooldown: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("cooldown: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName, ttl: ttl}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (time.Time, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            map[string]types.AttributeValue{"cooldownKey": &types.AttributeValueMemberS{Value: key}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("cooldown: dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return time.Time{}, false, nil
	}
	var rec cooldownRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return time.Time{}, false, fmt.Errorf("cooldown: decode item: %w", err)
	}
	return time.UnixMilli(rec.LastSubmittedMs), true, nil
}

func (s *DynamoStore) Set(ctx context.Context, key string, at time.Time) error {
	rec := cooldownRecord{Key: key, LastSubmittedMs: at.UnixMilli()}
	if s.ttl > 0 {
		rec.ExpiresAt = at.Add(s.ttl).Unix()
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("cooldown: encode item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("cooldown: dynamodb put: %w", err)
	}
	return nil
}

var _ Store = (*DynamoStore)(nil)
