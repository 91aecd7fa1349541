package catalog

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

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

const (
	partitionPrefix = "SERVICE#"
	metaSortKey     = "META"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type serviceItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	Service
}

// Repository persists the service catalog to DynamoDB.
type Repository struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

func NewRepository(client dynamoAPI, table string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("catalog: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("catalog: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, table: table, logger: logger}
}

// Create validates and stores a new service under a fresh identifier.
func (r *Repository) Create(ctx context.Context, svc *Service) (*Service, error) {
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	svc.ID = uuid.NewString()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	item, err := attributevalue.MarshalMap(serviceItem{PK: partitionPrefix + svc.ID, SK: metaSortKey, Service: *svc})
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal service: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: create service: %w", err)
	}
	return svc, nil
}

// Update overwrites an existing service's attributes.
func (r *Repository) Update(ctx context.Context, svc *Service) (*Service, error) {
	if err := svc.Validate(); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, svc.ID)
	if err != nil {
		return nil, err
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(serviceItem{PK: partitionPrefix + svc.ID, SK: metaSortKey, Service: *svc})
	if err != nil {
		return nil, fmt.Errorf("catalog: marshal service: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: update service %s: %w", svc.ID, err)
	}
	return svc, nil
}

// Get loads one service by id.
func (r *Repository) Get(ctx context.Context, id string) (*Service, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: get service %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var item serviceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal service %s: %w", id, err)
	}
	return &item.Service, nil
}

// Delete removes a service. Appointments that already reference it keep their
// snapshotted name and price.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return fmt.Errorf("catalog: delete service %s: %w", id, err)
	}
	return nil
}

// List returns every service, name-sorted for stable pagination-free output.
func (r *Repository) List(ctx context.Context) ([]Service, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("begins_with(PK, :prefix) AND SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: partitionPrefix},
			":meta":   &types.AttributeValueMemberS{Value: metaSortKey},
		},
	}

	var services []Service
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("catalog: list services: %w", err)
		}
		for _, raw := range out.Items {
			var item serviceItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("catalog: unmarshal service item: %w", err)
			}
			services = append(services, item.Service)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })
	return services, nil
}

// BookingLookup adapts the catalog to the booking coordinator's view of a
// service.
type BookingLookup struct {
	repo *Repository
}

func NewBookingLookup(repo *Repository) *BookingLookup {
	return &BookingLookup{repo: repo}
}

func (l *BookingLookup) ServiceInfo(ctx context.Context, id string) (*booking.ServiceInfo, error) {
	svc, err := l.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &booking.ServiceInfo{
		ID:          svc.ID,
		Name:        svc.Name,
		DurationMin: svc.DurationMin,
		PriceCents:  svc.PriceCents,
	}, nil
}

var _ booking.ServiceLookup = (*BookingLookup)(nil)
