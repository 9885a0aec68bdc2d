package idempotency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// simpleMock is a small in-memory table keyed by idempotency_key.
type simpleMock struct {
	mu          sync.Mutex
	table       map[string]map[string]types.AttributeValue
	updateCalls int
	lastUpdate  *dyn.UpdateItemInput
}

func newSimpleMock() *simpleMock {
	return &simpleMock{table: map[string]map[string]types.AttributeValue{}}
}

func keyOf(key map[string]types.AttributeValue) (string, error) {
	attr, ok := key["idempotency_key"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("missing key")
	}
	return attr.Value, nil
}

func (m *simpleMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(params.Item)
	if err != nil {
		return nil, err
	}
	m.table[k] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *simpleMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.table[k]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *simpleMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	m.lastUpdate = params
	k, err := keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	// UpdateItem upserts unless a condition says otherwise.
	item, ok := m.table[k]
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_exists(idempotency_key)" && !ok {
		return nil, &types.ConditionalCheckFailedException{Message: sdkaws.String("The conditional request failed")}
	}
	if !ok {
		item = map[string]types.AttributeValue{"idempotency_key": &types.AttributeValueMemberS{Value: k}}
		m.table[k] = item
	}
	if v, ok := params.ExpressionAttributeValues[":done"]; ok {
		item["status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":rb"]; ok {
		item["receipt_body"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":rs"]; ok {
		item["receipt_status"] = v
	}
	if v, ok := params.ExpressionAttributeValues[":ua"]; ok {
		item["updated_at"] = v
	}
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *simpleMock) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return &dyn.TransactWriteItemsOutput{}, nil
}

func TestGet_Missing(t *testing.T) {
	s := NewStore(newSimpleMock(), "idempotency", 48*time.Hour)
	rec, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected nil record, got %+v", rec)
	}
}

func TestClaim_Get_Complete(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency", 48*time.Hour)
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return now }

	claim := s.Claim("key-1", "order-1")
	if claim.Status != StatusInProgress {
		t.Fatalf("expected IN_PROGRESS, got %s", claim.Status)
	}
	if claim.ExpiresAt != now.Add(48*time.Hour).Unix() {
		t.Fatalf("ttl not applied")
	}

	item, err := attributevalue.MarshalMap(claim)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.table["key-1"] = item

	rec, err := s.Get(context.Background(), "key-1")
	if err != nil || rec == nil {
		t.Fatalf("expected record, got %v / %v", rec, err)
	}
	if rec.OrderID != "order-1" {
		t.Fatalf("order id mismatch")
	}

	if err := s.Complete(context.Background(), "key-1", []byte(`{"order_id":"order-1"}`), 201); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	rec, err = s.Get(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Status != StatusDone {
		t.Fatalf("expected DONE, got %s", rec.Status)
	}
	if rec.ReceiptBody != `{"order_id":"order-1"}` || rec.ReceiptStatus != 201 {
		t.Fatalf("receipt not stored: %+v", rec)
	}
}

func TestComplete_UnknownKey(t *testing.T) {
	mock := newSimpleMock()
	s := NewStore(mock, "idempotency", time.Hour)
	err := s.Complete(context.Background(), "never-claimed", []byte(`{}`), 201)
	if !errors.Is(err, ErrNotClaimed) {
		t.Fatalf("expected ErrNotClaimed, got %v", err)
	}
	if mock.lastUpdate == nil || mock.lastUpdate.ConditionExpression == nil {
		t.Fatalf("expected a condition on the complete write")
	}
	if _, ok := mock.table["never-claimed"]; ok {
		t.Fatalf("complete must not create a record for an unclaimed key")
	}
}
