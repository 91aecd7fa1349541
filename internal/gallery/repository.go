package gallery

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
	partitionPrefix = "GALLERY#"
	metaSortKey     = "META"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(context.Context, *dynamodb.ScanInput, ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type imageItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	Image
}

// Repository persists gallery image records to DynamoDB.
type Repository struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

func NewRepository(client dynamoAPI, table string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("gallery: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("gallery: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, table: table, logger: logger}
}

func (r *Repository) Create(ctx context.Context, img *Image) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	img.ID = uuid.NewString()
	img.ObjectKey = fmt.Sprintf("gallery/%s", img.ID)
	img.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	item, err := attributevalue.MarshalMap(imageItem{PK: partitionPrefix + img.ID, SK: metaSortKey, Image: *img})
	if err != nil {
		return nil, fmt.Errorf("gallery: marshal image: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		return nil, fmt.Errorf("gallery: create image: %w", err)
	}
	return img, nil
}

func (r *Repository) Get(ctx context.Context, id string) (*Image, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gallery: get image %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var item imageItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("gallery: unmarshal image %s: %w", id, err)
	}
	return &item.Image, nil
}

func (r *Repository) Delete(ctx context.Context, id string) (*Image, error) {
	img, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: partitionPrefix + id},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("gallery: delete image %s: %w", id, err)
	}
	return img, nil
}

func (r *Repository) List(ctx context.Context) ([]Image, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("begins_with(PK, :prefix) AND SK = :meta"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: partitionPrefix},
			":meta":   &types.AttributeValueMemberS{Value: metaSortKey},
		},
	}

	var images []Image
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("gallery: list images: %w", err)
		}
		for _, raw := range out.Items {
			var item imageItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("gallery: unmarshal image item: %w", err)
			}
			images = append(images, item.Image)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	// Newest first.
	sort.Slice(images, func(i, j int) bool { return images[i].CreatedAt > images[j].CreatedAt })
	return images, nil
}
