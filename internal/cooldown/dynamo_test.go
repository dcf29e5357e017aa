package cooldown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	items    map[string]map[string]types.AttributeValue
	putInput *dynamodb.PutItemInput
	getErr   error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	key := in.Key["cooldownKey"].(*types.AttributeValueMemberS).Value
	return &dynamodb.GetItemOutput{Item: m.items[key]}, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInput = in
	key := in.Item["cooldownKey"].(*types.AttributeValueMemberS).Value
	m.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestDynamoStore_SetThenGet(t *testing.T) {
	ctx := context.Background()
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "lead_cooldowns", time.Hour)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Set(ctx, Key("client"), at))

	require.NotNil(t, mock.putInput)
	assert.Equal(t, "lead_cooldowns", *mock.putInput.TableName)

	var rec cooldownRecord
	require.NoError(t, attributevalue.UnmarshalMap(mock.putInput.Item, &rec))
	assert.Equal(t, at.Add(time.Hour).Unix(), rec.ExpiresAt)

	got, ok, err := store.Get(ctx, Key("client"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Equal(at))
}

func TestDynamoStore_MissingItem(t *testing.T) {
	store := NewDynamoStore(newMockDynamo(), "lead_cooldowns", 0)
	_, ok, err := store.Get(context.Background(), Key("nobody"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDynamoStore_GetError(t *testing.T) {
	mock := newMockDynamo()
	mock.getErr = errors.New("throttled")
	store := NewDynamoStore(mock, "lead_cooldowns", 0)

	_, _, err := store.Get(context.Background(), Key("client"))
	assert.ErrorContains(t, err, "throttled")
}

func TestNewDynamoStore_RequiresTable(t *testing.T) {
	assert.Panics(t, func() { NewDynamoStore(newMockDynamo(), "", 0) })
}
