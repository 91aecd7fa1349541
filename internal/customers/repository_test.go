package customers

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/salon-platform/pkg/logging"
)

type mockDynamo struct {
	getOut  *dynamodb.GetItemOutput
	putIn   *dynamodb.PutItemInput
	scanOut []*dynamodb.ScanOutput
}

func (m *mockDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOut, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putIn = in
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	out := m.scanOut[0]
	m.scanOut = m.scanOut[1:]
	return out, nil
}

func marshalCustomer(t *testing.T, c Customer) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(customerItem{PK: partitionPrefix + c.ID, SK: metaSortKey, Customer: c})
	require.NoError(t, err)
	return item
}

func TestCreateGeneratesID(t *testing.T) {
	db := &mockDynamo{}
	repo := NewRepository(db, "salon_test", logging.Default())

	created, err := repo.Create(context.Background(), &Customer{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "attribute_not_exists(PK)", *db.putIn.ConditionExpression)
}

func TestCreateProfileKeepsCallerID(t *testing.T) {
	db := &mockDynamo{}
	repo := NewRepository(db, "salon_test", logging.Default())

	require.NoError(t, repo.CreateProfile(context.Background(), "user-7", "Ada", "ada@example.com"))

	pk := db.putIn.Item["PK"].(*types.AttributeValueMemberS).Value
	assert.Equal(t, partitionPrefix+"user-7", pk)
}

func TestCreateRejectsInvalid(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())
	ctx := context.Background()

	_, err := repo.Create(ctx, &Customer{Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = repo.Create(ctx, &Customer{Name: "Ada"})
	assert.ErrorIs(t, err, ErrMissingEmail)

	_, err = repo.Create(ctx, &Customer{Name: "Ada", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrBadEmail)
}

func TestGetNotFound(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRoundTrip(t *testing.T) {
	c := Customer{ID: "cust-1", Name: "Ada", Email: "ada@example.com", Phone: "555-0100"}
	db := &mockDynamo{getOut: &dynamodb.GetItemOutput{Item: marshalCustomer(t, c)}}
	repo := NewRepository(db, "salon_test", logging.Default())

	got, err := repo.Get(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, c, *got)
}

func TestListSortsByName(t *testing.T) {
	db := &mockDynamo{scanOut: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{
			marshalCustomer(t, Customer{ID: "c2", Name: "Zoe", Email: "z@example.com"}),
			marshalCustomer(t, Customer{ID: "c1", Name: "Ada", Email: "a@example.com"}),
		}},
	}}
	repo := NewRepository(db, "salon_test", logging.Default())

	customers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "Ada", customers[0].Name)
}
