package stylists

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/salon-platform/internal/booking"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

func TestRosterForDaySkipsDaysOff(t *testing.T) {
	db := &mockDynamo{scanOut: []*dynamodb.ScanOutput{
		{Items: []map[string]types.AttributeValue{
			marshalStylist(t, Stylist{ID: "sty-1", Name: "Maya", Availability: map[string][]booking.Interval{
				"monday": {{Start: "09:00", End: "17:00"}},
			}}),
			marshalStylist(t, Stylist{ID: "sty-2", Name: "Zoe", Availability: map[string][]booking.Interval{
				"tuesday": {{Start: "10:00", End: "14:00"}},
			}}),
		}},
	}}
	roster := NewSuggestRoster(NewRepository(db, "salon_test", logging.Default()))

	got, err := roster.RosterForDay(context.Background(), "monday")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sty-1", got[0].StylistID)
	assert.Equal(t, "09:00", got[0].AvailableTimes[0].Start)
}
