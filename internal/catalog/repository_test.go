package catalog

import (
	"context"
	"errors"
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
	getErr  error
	putIn   *dynamodb.PutItemInput
	putErr  error
	delIn   *dynamodb.DeleteItemInput
	scanOut []*dynamodb.ScanOutput
	scanErr error
	scanIn  []*dynamodb.ScanInput
}

func (m *mockDynamo) GetItem(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.getOut == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return m.getOut, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putIn = in
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	m.delIn = in
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanIn = append(m.scanIn, in)
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	out := m.scanOut[0]
	m.scanOut = m.scanOut[1:]
	return out, nil
}

func marshalService(t *testing.T, svc Service) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(serviceItem{PK: partitionPrefix + svc.ID, SK: metaSortKey, Service: svc})
	require.NoError(t, err)
	return item
}

func TestRepositoryCreate(t *testing.T) {
	db := &mockDynamo{}
	repo := NewRepository(db, "salon_test", logging.Default())

	created, err := repo.Create(context.Background(), &Service{
		Name:        "Haircut",
		PriceCents:  6500,
		DurationMin: 60,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.CreatedAt)

	require.NotNil(t, db.putIn)
	assert.Equal(t, "salon_test", *db.putIn.TableName)
	assert.Equal(t, "attribute_not_exists(PK)", *db.putIn.ConditionExpression)

	pk := db.putIn.Item["PK"].(*types.AttributeValueMemberS).Value
	assert.Equal(t, partitionPrefix+created.ID, pk)
	sk := db.putIn.Item["SK"].(*types.AttributeValueMemberS).Value
	assert.Equal(t, metaSortKey, sk)
}

func TestRepositoryCreateRejectsInvalid(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Create(context.Background(), &Service{Name: "", DurationMin: 30})
	assert.ErrorIs(t, err, ErrMissingName)

	_, err = repo.Create(context.Background(), &Service{Name: "Haircut", DurationMin: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = repo.Create(context.Background(), &Service{Name: "Haircut", PriceCents: -1, DurationMin: 30})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestRepositoryGetNotFound(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryGetRoundTrip(t *testing.T) {
	svc := Service{ID: "svc-1", Name: "Balayage", PriceCents: 18000, DurationMin: 120}
	db := &mockDynamo{getOut: &dynamodb.GetItemOutput{Item: marshalService(t, svc)}}
	repo := NewRepository(db, "salon_test", logging.Default())

	got, err := repo.Get(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, svc, *got)
}

func TestRepositoryUpdatePreservesCreatedAt(t *testing.T) {
	existing := Service{ID: "svc-1", Name: "Balayage", PriceCents: 18000, DurationMin: 120, CreatedAt: "2026-01-01T00:00:00Z"}
	db := &mockDynamo{getOut: &dynamodb.GetItemOutput{Item: marshalService(t, existing)}}
	repo := NewRepository(db, "salon_test", logging.Default())

	updated, err := repo.Update(context.Background(), &Service{ID: "svc-1", Name: "Balayage", PriceCents: 19000, DurationMin: 120})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T00:00:00Z", updated.CreatedAt)
	assert.NotEqual(t, existing.UpdatedAt, updated.UpdatedAt)
}

func TestRepositoryUpdateMissingService(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Update(context.Background(), &Service{ID: "ghost", Name: "Trim", PriceCents: 3000, DurationMin: 30})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryDelete(t *testing.T) {
	db := &mockDynamo{}
	repo := NewRepository(db, "salon_test", logging.Default())

	require.NoError(t, repo.Delete(context.Background(), "svc-1"))
	require.NotNil(t, db.delIn)
	assert.Equal(t, partitionPrefix+"svc-1", db.delIn.Key["PK"].(*types.AttributeValueMemberS).Value)
}

func TestRepositoryListPaginatesAndSorts(t *testing.T) {
	page1 := &dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			marshalService(t, Service{ID: "svc-2", Name: "Perm", DurationMin: 90}),
		},
		LastEvaluatedKey: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "SERVICE#svc-2"},
		},
	}
	page2 := &dynamodb.ScanOutput{
		Items: []map[string]types.AttributeValue{
			marshalService(t, Service{ID: "svc-1", Name: "Haircut", DurationMin: 60}),
		},
	}
	db := &mockDynamo{scanOut: []*dynamodb.ScanOutput{page1, page2}}
	repo := NewRepository(db, "salon_test", logging.Default())

	services, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "Haircut", services[0].Name)
	assert.Equal(t, "Perm", services[1].Name)
	assert.Len(t, db.scanIn, 2)
	assert.NotNil(t, db.scanIn[1].ExclusiveStartKey)
}

func TestRepositoryListWrapsError(t *testing.T) {
	db := &mockDynamo{scanErr: errors.New("throttled")}
	repo := NewRepository(db, "salon_test", logging.Default())

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog: list services")
}

func TestBookingLookup(t *testing.T) {
	svc := Service{ID: "svc-1", Name: "Haircut", PriceCents: 6500, DurationMin: 60}
	db := &mockDynamo{getOut: &dynamodb.GetItemOutput{Item: marshalService(t, svc)}}
	lookup := NewBookingLookup(NewRepository(db, "salon_test", logging.Default()))

	info, err := lookup.ServiceInfo(context.Background(), "svc-1")
	require.NoError(t, err)
	assert.Equal(t, "Haircut", info.Name)
	assert.Equal(t, 60, info.DurationMin)
	assert.Equal(t, int64(6500), info.PriceCents)
}
