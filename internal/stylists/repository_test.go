package stylists

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

type mockDynamo struct {
	getOut  *dynamodb.GetItemOutput
	putIn   *dynamodb.PutItemInput
	scanOut []*dynamodb.ScanOutput
	scanIn  []*dynamodb.ScanInput
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

func (m *mockDynamo) DeleteItem(_ context.Context, _ *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDynamo) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.scanIn = append(m.scanIn, in)
	out := m.scanOut[0]
	m.scanOut = m.scanOut[1:]
	return out, nil
}

func marshalStylist(t *testing.T, st Stylist) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(stylistItem{PK: partitionPrefix + st.ID, SK: metaSortKey, Stylist: st})
	require.NoError(t, err)
	return item
}

func weekdaySchedule() map[string][]booking.Interval {
	return map[string][]booking.Interval{
		"monday":    {{Start: "09:00", End: "13:00"}, {Start: "14:00", End: "18:00"}},
		"wednesday": {{Start: "10:00", End: "16:00"}},
	}
}

func TestRepositoryCreate(t *testing.T) {
	db := &mockDynamo{}
	repo := NewRepository(db, "salon_test", logging.Default())

	created, err := repo.Create(context.Background(), &Stylist{
		Name:         "Maya",
		Availability: weekdaySchedule(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	require.NotNil(t, db.putIn)
	assert.Equal(t, "attribute_not_exists(PK)", *db.putIn.ConditionExpression)
	pk := db.putIn.Item["PK"].(*types.AttributeValueMemberS).Value
	assert.Equal(t, partitionPrefix+created.ID, pk)
}

func TestCreateRejectsOverlappingAvailability(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Create(context.Background(), &Stylist{
		Name: "Maya",
		Availability: map[string][]booking.Interval{
			"monday": {{Start: "09:00", End: "13:00"}, {Start: "12:00", End: "17:00"}},
		},
	})
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestCreateRejectsBadWeekday(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Create(context.Background(), &Stylist{
		Name: "Maya",
		Availability: map[string][]booking.Interval{
			"Monday": {{Start: "09:00", End: "13:00"}},
		},
	})
	assert.ErrorIs(t, err, ErrBadWeekday)
}

func TestCreateRejectsMalformedClock(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Create(context.Background(), &Stylist{
		Name: "Maya",
		Availability: map[string][]booking.Interval{
			"monday": {{Start: "9am", End: "13:00"}},
		},
	})
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Create(context.Background(), &Stylist{
		Name: "Maya",
		Availability: map[string][]booking.Interval{
			"friday": {{Start: "15:00", End: "11:00"}},
		},
	})
	assert.ErrorIs(t, err, ErrBadSchedule)
}

func TestGetNotFound(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_test", logging.Default())

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetRoundTrip(t *testing.T) {
	st := Stylist{ID: "sty-1", Name: "Maya", Availability: weekdaySchedule()}
	db := &mockDynamo{getOut: &dynamodb.GetItemOutput{Item: marshalStylist(t, st)}}
	repo := NewRepository(db, "salon_test", logging.Default())

	got, err := repo.Get(context.Background(), "sty-1")
	require.NoError(t, err)
	assert.Equal(t, st.Name, got.Name)
	assert.Equal(t, st.Availability["monday"], got.Availability["monday"])
}

func TestListSortsByName(t *testing.T) {
	db := &mockDynamo{scanOut: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{
			marshalStylist(t, Stylist{ID: "sty-2", Name: "Zoe"}),
			marshalStylist(t, Stylist{ID: "sty-1", Name: "Maya"}),
		}},
	}}
	repo := NewRepository(db, "salon_test", logging.Default())

	stylists, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stylists, 2)
	assert.Equal(t, "Maya", stylists[0].Name)
}

func TestBookingLookupDayWindows(t *testing.T) {
	st := Stylist{ID: "sty-1", Name: "Maya", Availability: weekdaySchedule()}
	db := &mockDynamo{getOut: &dynamodb.GetItemOutput{Item: marshalStylist(t, st)}}
	lookup := NewBookingLookup(NewRepository(db, "salon_test", logging.Default()))

	windows, err := lookup.DayWindows(context.Background(), "sty-1", "monday")
	require.NoError(t, err)
	require.Len(t, windows, 2)
	assert.Equal(t, "09:00", windows[0].Start)

	// A day off yields no windows, not an error.
	windows, err = lookup.DayWindows(context.Background(), "sty-1", "sunday")
	require.NoError(t, err)
	assert.Empty(t, windows)
}
