package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
)

var (
	// ErrStatusMismatch is returned when a conditional status update finds another status.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
	// ErrInvalidTransition is returned for a status change the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicate is returned when the idempotency key of a create already exists.
	ErrDuplicate = errors.New("idempotency key already used")
	ErrNotFound  = errors.New("order not found")
	// ErrOverpayment is returned when a payment exceeds the remaining balance.
	ErrOverpayment = errors.New("payment exceeds remaining balance")
)

// Store encapsulates operations on the orders table.
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

// CreateWithIdempotency writes the order together with the guarded
// idempotency Put in one TransactWriteItems call. ErrDuplicate means the
// idempotency key already exists and nothing was written.
func (s *Store) CreateWithIdempotency(ctx context.Context, idempotencyPut types.TransactWriteItem, order Order) error {
	now := s.nowFunc().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	orderMap, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order item: %w", err)
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			idempotencyPut,
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                orderMap,
					ConditionExpression: awsString("attribute_not_exists(order_id)"),
				},
			},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches an order by order_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
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
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// List scans the table, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Order, error) {
	input := &dyn.ScanInput{TableName: &s.tableName}

	var conds []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if f.CustomerID != "" {
		conds = append(conds, "customer_id = :cid")
		values[":cid"] = &types.AttributeValueMemberS{Value: f.CustomerID}
	}
	if f.Status != "" {
		conds = append(conds, "#s = :st")
		names["#s"] = "status"
		values[":st"] = &types.AttributeValueMemberS{Value: f.Status}
	}
	if len(conds) > 0 {
		input.FilterExpression = awsString(strings.Join(conds, " AND "))
		input.ExpressionAttributeValues = values
		if len(names) > 0 {
			input.ExpressionAttributeNames = names
		}
	}

	var out []Order
	for {
		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan orders: %w", err)
		}
		var batch []Order
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal orders: %w", err)
		}
		out = append(out, batch...)
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// UpdateStatus conditionally updates the order status from expected -> newStatus.
// Returns ErrInvalidTransition for a move the lifecycle forbids and
// ErrStatusMismatch if the stored status is not expectedStatus.
func (s *Store) UpdateStatus(ctx context.Context, orderID, expectedStatus, newStatus string) error {
	if !CanTransition(expectedStatus, newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, expectedStatus, newStatus)
	}
	now := s.nowFunc().UTC()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:         awsString("SET #s = :new, updated_at = :ua"),
		ConditionExpression:      awsString("#s = :expected"),
		ExpressionAttributeNames: map[string]string{"#s": "status"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new":      &types.AttributeValueMemberS{Value: newStatus},
			":expected": &types.AttributeValueMemberS{Value: expectedStatus},
			":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var sc *types.ConditionalCheckFailedException
		if errors.As(err, &sc) {
			return ErrStatusMismatch
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// ApplyPayment adds p to the order's paid amount and appends it to the
// payment history in a single conditional update. The condition keeps the
// balance from going negative.
func (s *Store) ApplyPayment(ctx context.Context, orderID string, p Payment) (*Order, error) {
	if p.RecordedAt.IsZero() {
		p.RecordedAt = s.nowFunc().UTC()
	}
	pm, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payment: %w", err)
	}
	amount := &types.AttributeValueMemberN{Value: strconv.FormatFloat(p.Amount, 'f', -1, 64)}

	out, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression: awsString("SET paid_amount = paid_amount + :amt, balance_amount = balance_amount - :amt, " +
			"payments = list_append(if_not_exists(payments, :empty), :p), updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(order_id) AND balance_amount >= :amt"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":amt":   amount,
			":p":     &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberM{Value: pm}}},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":ua":    &types.AttributeValueMemberS{Value: p.RecordedAt.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var sc *types.ConditionalCheckFailedException
		if !errors.As(err, &sc) {
			return nil, fmt.Errorf("apply payment: %w", err)
		}
		existing, gerr := s.Get(ctx, orderID)
		if gerr != nil {
			return nil, gerr
		}
		if existing == nil {
			return nil, ErrNotFound
		}
		return nil, ErrOverpayment
	}

	var o Order
	if err := attributevalue.UnmarshalMap(out.Attributes, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

func awsString(s string) *string { return &s }
