package customers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

const (
	partitionPrefix = "CUSTOMER#"
	metaSortKey     = "META"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type customerItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	Customer
}

// Repository persists customer profiles to DynamoDB.
type Repository struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

func NewRepository(client dynamoAPI, table string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("customers: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("customers: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, table: table, logger: logger}
}

func (r *Repository) Create(ctx context.Context, c *Customer) (*Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now
	c.UpdatedAt = now

	item, err := attributevalue.MarshalMap(customerItem{PK: partitionPrefix + c.ID, SK: metaSortKey, Customer: *c})
	if err != nil {
		return nil, fmt.Errorf("customers: marshal customer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, fmt.Errorf("customers: create customer: %w", err)
	}
	return c, nil
}

// CreateProfile provisions the profile backing a newly registered user. The
// profile id is the user id so session subjects address the profile directly.
func (r *Repository) CreateProfile(ctx context.Context, id, name, email string) error {
	_, err := r.Create(ctx, &Customer{ID: id, Name: name, Email: email})
	return err
}

func (r *Repository) Update(ctx context.Context, c *Customer) (*Customer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(customerItem{PK: partitionPrefix + c.ID, SK: metaSortKey, Customer: *c})
	if err != nil {
		return nil, fmt.Errorf("customers: marshal customer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("customers: update customer %s: %w", c.ID, err)
	}
	return c, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Customer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("customers: get customer %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var item customerItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("customers: unmarshal customer %s: %w", id, err)
	}
	return &item.Customer, nil
}

func (r *Repository) List(ctx context.Context) ([]Customer, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("begins_with(PK, :prefix) AND SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: partitionPrefix},
			":meta":   &types.AttributeValueMemberS{Value: metaSortKey},
		},
	}

	var customers []Customer
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("customers: list customers: %w", err)
		}
		for _, raw := range out.Items {
			var item customerItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("customers: unmarshal customer item: %w", err)
			}
			customers = append(customers, item.Customer)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}
