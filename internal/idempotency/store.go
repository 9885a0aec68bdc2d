package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-order-pricing/internal/aws"
)

// ClaimCondition guards claim writes so a key is only ever claimed once.
const ClaimCondition = "attribute_not_exists(idempotency_key)"

// completeCondition keeps Complete from upserting a record for a key that was never claimed.
const completeCondition = "attribute_exists(idempotency_key)"

// ErrNotClaimed is returned by Complete when no claim exists for the key.
var ErrNotClaimed = errors.New("idempotency key was not claimed")

// Store reads and completes idempotency records in DynamoDB. Claims are written by the
// orders store in the same transaction as the order.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func (s *Store) TableName() string { return s.tableName }

// Claim returns the IN_PROGRESS record for key, stamped with the store's clock and TTL.
func (s *Store) Claim(key, orderID string) Record {
	return NewClaim(key, orderID, s.nowFunc().UTC(), s.ttlWindow)
}

// Get retrieves a record by key. If not found, returns (nil, nil).
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}
	return &rec, nil
}

// Complete marks key DONE and stores the receipt returned to the client so replays get the same answer.
func (s *Store) Complete(ctx context.Context, key string, receipt []byte, status int) error {
	now := s.nowFunc().UTC()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		ConditionExpression: sdkaws.String(completeCondition),
		UpdateExpression:    sdkaws.String("SET #s = :done, receipt_body = :rb, receipt_status = :rs, updated_at = :ua"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberS{Value: StatusDone},
			":rb":   &types.AttributeValueMemberS{Value: string(receipt)},
			":rs":   &types.AttributeValueMemberN{Value: strconv.Itoa(status)},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrNotClaimed
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrNotClaimed
		}
		return fmt.Errorf("update item (complete): %w", err)
	}
	return nil
}
