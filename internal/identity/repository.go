package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

const (
	userPrefix     = "USER#"
	metaSortKey    = "META"
	adminPartition = "ROLE#ADMIN"
)

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type userItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	User
}

type roleMarker struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	UserID    string `dynamodbav:"userId"`
	GrantedAt string `dynamodbav:"grantedAt"`
}

// Repository persists users and role markers. Users are keyed by email so
// login is a single GetItem; admin status is a marker document under the
// ROLE#ADMIN partition keyed by user id.
type Repository struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

func NewRepository(client dynamoAPI, table string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("identity: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("identity: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, table: table, logger: logger}
}

// CreateUser stores a new user record, failing with ErrEmailTaken when the
// email is already registered.
func (r *Repository) CreateUser(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	item, err := attributevalue.MarshalMap(userItem{PK: userPrefix + u.Email, SK: metaSortKey, User: *u})
	if err != nil {
		return fmt.Errorf("identity: marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return ErrEmailTaken
		}
		return fmt.Errorf("identity: create user: %w", err)
	}
	return nil
}

// GetUserByEmail loads a user record for login.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPrefix + email},
			"SK": &types.AttributeValueMemberS{Value: metaSortKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("identity: get user: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrUserNotFound
	}
	var item userItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("identity: unmarshal user: %w", err)
	}
	return &item.User, nil
}

// HasAdminMarker reports whether the admin marker document exists for a user
// id. Existence of the marker is the role; there is nothing to read off it.
func (r *Repository) HasAdminMarker(ctx context.Context, userID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: adminPartition},
			"SK": &types.AttributeValueMemberS{Value: userPrefix + userID},
		},
	})
	if err != nil {
		return false, fmt.Errorf("identity: check admin marker: %w", err)
	}
	return len(out.Item) > 0, nil
}

// ProvisionAdmin creates a user record and its admin marker in one
// transaction. Used by the implicit first-login signup path for admins: both
// documents appear together or not at all.
func (r *Repository) ProvisionAdmin(ctx context.Context, u *User) error {
	u.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	user, err := attributevalue.MarshalMap(userItem{PK: userPrefix + u.Email, SK: metaSortKey, User: *u})
	if err != nil {
		return fmt.Errorf("identity: marshal user: %w", err)
	}
	marker, err := attributevalue.MarshalMap(roleMarker{
		PK:        adminPartition,
		SK:        userPrefix + u.ID,
		UserID:    u.ID,
		GrantedAt: u.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("identity: marshal admin marker: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.table),
				Item:                user,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(r.table),
				Item:      marker,
			}},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrEmailTaken
				}
			}
		}
		return fmt.Errorf("identity: provision admin: %w", err)
	}
	return nil
}

// GrantAdmin writes the admin marker for an existing user.
func (r *Repository) GrantAdmin(ctx context.Context, userID string) error {
	marker, err := attributevalue.MarshalMap(roleMarker{
		PK:        adminPartition,
		SK:        userPrefix + userID,
		UserID:    userID,
		GrantedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("identity: marshal admin marker: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      marker,
	})
	if err != nil {
		return fmt.Errorf("identity: grant admin: %w", err)
	}
	return nil
}
