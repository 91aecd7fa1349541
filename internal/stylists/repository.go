package stylists

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
	partitionPrefix = "STYLIST#"
	metaSortKey     = "META"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type stylistItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	Stylist
}

// Repository persists stylist profiles to DynamoDB. Stylist appointments live
// under the same partition with APPT# sort keys, so the META sort key keeps
// the profile separate from the booking mirror.
type Repository struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

func NewRepository(client dynamoAPI, table string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("stylists: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("stylists: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, table: table, logger: logger}
}

func (r *Repository) Create(ctx context.Context, st *Stylist) (*Stylist, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	st.ID = uuid.NewString()
	st.CreatedAt = now
	st.UpdatedAt = now

	item, err := attributevalue.MarshalMap(stylistItem{PK: partitionPrefix + st.ID, SK: metaSortKey, Stylist: *st})
	if err != nil {
		return nil, fmt.Errorf("stylists: marshal stylist: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, fmt.Errorf("stylists: create stylist: %w", err)
	}
	return st, nil
}

func (r *Repository) Update(ctx context.Context, st *Stylist) (*Stylist, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	existing, err := r.Get(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(stylistItem{PK: partitionPrefix + st.ID, SK: metaSortKey, Stylist: *st})
	if err != nil {
		return nil, fmt.Errorf("stylists: marshal stylist: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return nil, fmt.Errorf("stylists: update stylist %s: %w", st.ID, err)
	}
	return st, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Stylist, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("stylists: get stylist %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var item stylistItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("stylists: unmarshal stylist %s: %w", id, err)
	}
	return &item.Stylist, nil
}

// Delete removes the stylist profile. Appointments mirrored under the same
// partition are left in place for history.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return fmt.Errorf("stylists: delete stylist %s: %w", id, err)
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]Stylist, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("begins_with(PK, :prefix) AND SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: partitionPrefix},
			":meta":   &types.AttributeValueMemberS{Value: metaSortKey},
		},
	}

	var stylists []Stylist
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("stylists: list stylists: %w", err)
		}
		for _, raw := range out.Items {
			var item stylistItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("stylists: unmarshal stylist item: %w", err)
			}
			stylists = append(stylists, item.Stylist)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	sort.Slice(stylists, func(i, j int) bool { return stylists[i].Name < stylists[j].Name })
	return stylists, nil
}

// BookingLookup adapts the stylist roster to the booking coordinator's
// availability view.
type BookingLookup struct {
	repo *Repository
}

func NewBookingLookup(repo *Repository) *BookingLookup {
	return &BookingLookup{repo: repo}
}

func (l *BookingLookup) DayWindows(ctx context.Context, stylistID, weekday string) ([]booking.Interval, error) {
	st, err := l.repo.Get(ctx, stylistID)
	if err != nil {
		return nil, err
	}
	return st.Availability[weekday], nil
}

var _ booking.AvailabilityLookup = (*BookingLookup)(nil)
