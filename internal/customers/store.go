package customers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/go-tailor-orderflow/internal/aws"
)

var (
	ErrNotFound      = errors.New("customer not found")
	ErrPhoneTaken    = errors.New("customer with this phone already exists")
	ErrAlreadyExists = errors.New("customer id already exists")
	// ErrStatsCancelled is returned when a transactional stats update is cancelled.
	ErrStatsCancelled = errors.New("stats update cancelled")
)

// Store encapsulates operations on the customers table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{client: client, tableName: tableName, nowFunc: time.Now}
}

// Create stores c after checking the phone is not used by another customer.
// The phone check is a scan and is not atomic with the put.
func (s *Store) Create(ctx context.Context, c Customer) (*Customer, error) {
	taken, err := s.PhoneExists(ctx, c.Phone)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrPhoneTaken
	}

	now := s.nowFunc().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal customer: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(customer_id)"),
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("put customer: %w", err)
	}
	return &c, nil
}

// Get returns (nil, nil) when the customer does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Customer, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"customer_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var c Customer
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	return &c, nil
}

// List returns all customers sorted by name.
func (s *Store) List(ctx context.Context) ([]Customer, error) {
	return s.scan(ctx, &dyn.ScanInput{TableName: &s.tableName})
}

func (s *Store) PhoneExists(ctx context.Context, phone string) (bool, error) {
	found, err := s.scan(ctx, &dyn.ScanInput{
		TableName:        &s.tableName,
		FilterExpression: awsString("phone = :phone"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":phone": &types.AttributeValueMemberS{Value: phone},
		},
	})
	if err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

func (s *Store) scan(ctx context.Context, input *dyn.ScanInput) ([]Customer, error) {
	var out []Customer
	for {
		page, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan customers: %w", err)
		}
		var batch []Customer
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal customers: %w", err)
		}
		out = append(out, batch...)
		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = page.LastEvaluatedKey
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// AddStats increments the lifetime order count and amount spent.
func (s *Store) AddStats(ctx context.Context, id string, orders int, amount float64) error {
	u := s.statsUpdate(id, orders, amount)
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 u.TableName,
		Key:                       u.Key,
		UpdateExpression:          u.UpdateExpression,
		ConditionExpression:       u.ConditionExpression,
		ExpressionAttributeValues: u.ExpressionAttributeValues,
	})
	if err != nil {
		var cc *types.ConditionalCheckFailedException
		if errors.As(err, &cc) {
			return ErrNotFound
		}
		return fmt.Errorf("add stats: %w", err)
	}
	return nil
}

// AddStatsWithIdempotency applies the stats increment together with the
// guarded idempotency Put in one transaction. ErrStatsCancelled means one of
// the conditions failed (key already used or customer missing) and nothing
// was written.
func (s *Store) AddStatsWithIdempotency(ctx context.Context, idempotencyPut types.TransactWriteItem, id string, orders int, amount float64) error {
	_, err := s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			idempotencyPut,
			{Update: s.statsUpdate(id, orders, amount)},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("%w: %v", ErrStatsCancelled, err)
		}
		return fmt.Errorf("transact stats: %w", err)
	}
	return nil
}

func (s *Store) statsUpdate(id string, orders int, amount float64) *types.Update {
	now := s.nowFunc().UTC()
	return &types.Update{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"customer_id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:    awsString("ADD order_count :o, amount_spent :a SET updated_at = :ua"),
		ConditionExpression: awsString("attribute_exists(customer_id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":o":  &types.AttributeValueMemberN{Value: strconv.Itoa(orders)},
			":a":  &types.AttributeValueMemberN{Value: strconv.FormatFloat(amount, 'f', -1, 64)},
			":ua": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	}
}

func awsString(s string) *string { return &s }
