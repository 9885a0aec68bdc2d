package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/go-order-pricing/internal/aws"
	"github.com/imrishuroy/go-order-pricing/internal/idempotency"
	"github.com/imrishuroy/go-order-pricing/internal/pricing"
)

var (
	// ErrAlreadyArchived is returned when an order id is already in the table. The first write wins,
	// matching Ledger.Find.
	ErrAlreadyArchived = errors.New("order already archived")
	// ErrKeyClaimed is returned when the idempotency key was claimed by an earlier request.
	ErrKeyClaimed = errors.New("idempotency key already claimed")
)

const orderNotExists = "attribute_not_exists(order_id)"

// Store archives priced orders in DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates a new orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Save writes o unless its id is already archived.
func (s *Store) Save(ctx context.Context, o pricing.PricedOrder) error {
	item, err := attributevalue.MarshalMap(toRecord(o, s.nowFunc().UTC()))
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: sdkaws.String(orderNotExists),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAlreadyArchived
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrAlreadyArchived
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// SaveWithClaim atomically writes the idempotency claim and the order. The cancellation reasons
// decide the error: a failed claim condition returns ErrKeyClaimed, a failed order condition
// returns ErrAlreadyArchived.
func (s *Store) SaveWithClaim(ctx context.Context, idempotencyTable string, claim idempotency.Record, o pricing.PricedOrder) error {
	claimMap, err := attributevalue.MarshalMap(claim)
	if err != nil {
		return fmt.Errorf("marshal idempotency item: %w", err)
	}
	orderMap, err := attributevalue.MarshalMap(toRecord(o, s.nowFunc().UTC()))
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &idempotencyTable,
					Item:                claimMap,
					ConditionExpression: sdkaws.String(idempotency.ClaimCondition),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                orderMap,
					ConditionExpression: sdkaws.String(orderNotExists),
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			switch {
			case conditionFailed(tce, 0):
				return fmt.Errorf("%w: %v", ErrKeyClaimed, err)
			case conditionFailed(tce, 1):
				return fmt.Errorf("%w: %v", ErrAlreadyArchived, err)
			}
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// conditionFailed reports whether the i-th transaction item was cancelled by its condition.
func conditionFailed(tce *types.TransactionCanceledException, i int) bool {
	if i >= len(tce.CancellationReasons) {
		return false
	}
	code := tce.CancellationReasons[i].Code
	return code != nil && *code == "ConditionalCheckFailed"
}

// Get fetches an archived order. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*pricing.PricedOrder, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var r Record
	if err := attributevalue.UnmarshalMap(out.Item, &r); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	o, err := r.toOrder()
	if err != nil {
		return nil, fmt.Errorf("decode order amounts: %w", err)
	}
	return &o, nil
}
