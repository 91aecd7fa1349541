package booking

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

// Key layout. One logical appointment lives under up to three partitions; the
// admin location is canonically flat (single ADMIN#APPT partition).
const adminPartition = "ADMIN#APPT"

func customerPK(id string) string { return "CUSTOMER#" + id }
func stylistPK(id string) string  { return "STYLIST#" + id }
func apptSK(id string) string     { return "APPT#" + id }
func slotPK(stylistID string) string {
	return "SLOT#" + stylistID
}
func slotSK(date, start string) string {
	return date + "T" + start
}

type dynamoAPI interface {
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(context.Context, *dynamodb.UpdateItemInput, ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type apptItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	Appointment
}

type slotLockItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	AppointmentID string `dynamodbav:"appointmentId"`
}

// Repository persists appointment mirrors and slot locks to DynamoDB. Every
// multi-location mutation goes through one TransactWriteItems call so no
// mirror can be updated without the others.
type Repository struct {
	client dynamoAPI
	table  string
	logger *logging.Logger
}

// NewRepository builds a repository backed by the provided DynamoDB client.
func NewRepository(client dynamoAPI, table string, logger *logging.Logger) *Repository {
	if client == nil {
		panic("booking: dynamodb client cannot be nil")
	}
	if table == "" {
		panic("booking: table name cannot be empty")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Repository{client: client, table: table, logger: logger}
}

func (r *Repository) marshalAppt(pk string, appt *Appointment) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(apptItem{PK: pk, SK: apptSK(appt.ID), Appointment: *appt})
	if err != nil {
		return nil, fmt.Errorf("booking: marshal appointment %s: %w", appt.ID, err)
	}
	return item, nil
}

// PutScheduled writes a customer-initiated pending request. It exists only in
// the customer-scoped location until an administrator confirms it.
func (r *Repository) PutScheduled(ctx context.Context, appt *Appointment) error {
	item, err := r.marshalAppt(customerPK(appt.CustomerID), appt)
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("booking: put scheduled appointment: %w", err)
	}
	return nil
}

// CreateFanOut commits one confirmed appointment to all three locations plus
// the (stylist, start) slot lock in a single transaction. Either every write
// lands or none is visible. A pre-existing slot lock aborts the whole batch.
func (r *Repository) CreateFanOut(ctx context.Context, appt *Appointment) error {
	items, err := r.fanOutPuts(appt)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		// Item order: three mirror puts, then the conditional slot lock.
		return r.mapTransactErr(err, "create fan-out", len(items)-1, -1)
	}
	return nil
}

// ConfirmRotate promotes a pending customer request under a fresh identifier:
// the confirmed record (new id) is written to all three locations, the slot
// lock is taken, and the old pending record is deleted, atomically. After it
// returns the old id exists nowhere.
func (r *Repository) ConfirmRotate(ctx context.Context, pendingID string, confirmed *Appointment) error {
	items, err := r.fanOutPuts(confirmed)
	if err != nil {
		return err
	}
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.table),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: customerPK(confirmed.CustomerID)},
				"SK": &types.AttributeValueMemberS{Value: apptSK(pendingID)},
			},
			ConditionExpression: aws.String("attribute_exists(SK)"),
		},
	})
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		// Item order: three puts, slot lock, then the pending delete.
		return r.mapTransactErr(err, "confirm rotate", len(items)-2, len(items)-1)
	}
	return nil
}

func (r *Repository) fanOutPuts(appt *Appointment) ([]types.TransactWriteItem, error) {
	partitions := []string{adminPartition, stylistPK(appt.StylistID), customerPK(appt.CustomerID)}
	items := make([]types.TransactWriteItem, 0, len(partitions)+1)
	for _, pk := range partitions {
		item, err := r.marshalAppt(pk, appt)
		if err != nil {
			return nil, err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.table),
				Item:      item,
			},
		})
	}

	lock, err := attributevalue.MarshalMap(slotLockItem{
		PK:            slotPK(appt.StylistID),
		SK:            slotSK(appt.Date, appt.Start),
		AppointmentID: appt.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("booking: marshal slot lock: %w", err)
	}
	items = append(items, types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(r.table),
			Item:                lock,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		},
	})
	return items, nil
}

// CancelFanOut flips status to cancelled at the same id in every location the
// record exists in and releases the slot lock, in one transaction.
func (r *Repository) CancelFanOut(ctx context.Context, appt *Appointment) error {
	now := time.Now().UTC().Format(time.RFC3339)
	partitions := []string{adminPartition, stylistPK(appt.StylistID), customerPK(appt.CustomerID)}
	items := make([]types.TransactWriteItem, 0, len(partitions)+1)
	for _, pk := range partitions {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(r.table),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: pk},
					"SK": &types.AttributeValueMemberS{Value: apptSK(appt.ID)},
				},
				UpdateExpression: aws.String("SET #status = :cancelled, updatedAt = :now"),
				ExpressionAttributeNames: map[string]string{
					"#status": "status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":cancelled": &types.AttributeValueMemberS{Value: string(StatusCancelled)},
					":now":       &types.AttributeValueMemberS{Value: now},
				},
				ConditionExpression: aws.String("attribute_exists(SK)"),
			},
		})
	}
	items = append(items, types.TransactWriteItem{
		Delete: &types.Delete{
			TableName: aws.String(r.table),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: slotPK(appt.StylistID)},
				"SK": &types.AttributeValueMemberS{Value: slotSK(appt.Date, appt.Start)},
			},
		},
	})
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return r.mapTransactErr(err, "cancel fan-out", -1, -1)
	}
	return nil
}

// CancelScheduled cancels a never-confirmed request. It exists only in the
// customer-scoped location so this is a single-document status write.
func (r *Repository) CancelScheduled(ctx context.Context, customerID, apptID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: customerPK(customerID)},
			"SK": &types.AttributeValueMemberS{Value: apptSK(apptID)},
		},
		UpdateExpression: aws.String("SET #status = :cancelled, updatedAt = :now"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled": &types.AttributeValueMemberS{Value: string(StatusCancelled)},
			":now":       &types.AttributeValueMemberS{Value: now},
		},
		ConditionExpression: aws.String("attribute_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("booking: cancel scheduled appointment: %w", err)
	}
	return nil
}

// GetCustomerAppointment loads an appointment from the customer-scoped
// location, the one mirror that exists for every lifecycle state.
func (r *Repository) GetCustomerAppointment(ctx context.Context, customerID, apptID string) (*Appointment, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: customerPK(customerID)},
			"SK": &types.AttributeValueMemberS{Value: apptSK(apptID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("booking: get appointment %s: %w", apptID, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var item apptItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("booking: unmarshal appointment %s: %w", apptID, err)
	}
	return &item.Appointment, nil
}

// ListByStylistDate returns the stylist's appointments on a given date.
func (r *Repository) ListByStylistDate(ctx context.Context, stylistID, date string) ([]Appointment, error) {
	return r.queryAppointments(ctx, stylistPK(stylistID), date)
}

// ListByCustomer returns every appointment in the customer's mirror.
func (r *Repository) ListByCustomer(ctx context.Context, customerID string) ([]Appointment, error) {
	return r.queryAppointments(ctx, customerPK(customerID), "")
}

// ListAdmin returns the admin-wide appointment list, optionally filtered by
// date.
func (r *Repository) ListAdmin(ctx context.Context, date string) ([]Appointment, error) {
	return r.queryAppointments(ctx, adminPartition, date)
}

func (r *Repository) queryAppointments(ctx context.Context, pk, date string) ([]Appointment, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: pk},
			":prefix": &types.AttributeValueMemberS{Value: "APPT#"},
		},
	}
	if date != "" {
		input.FilterExpression = aws.String("#date = :date")
		input.ExpressionAttributeNames = map[string]string{"#date": "date"}
		input.ExpressionAttributeValues[":date"] = &types.AttributeValueMemberS{Value: date}
	}

	var appts []Appointment
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("booking: query appointments: %w", err)
		}
		for _, raw := range out.Items {
			var item apptItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("booking: unmarshal appointment item: %w", err)
			}
			appts = append(appts, item.Appointment)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return appts, nil
}

// mapTransactErr translates transaction cancellation reasons into domain
// errors. CancellationReasons are positional, matching the TransactItems
// order, so the caller names which indexes carry the slot-lock and
// pending-delete conditions.
func (r *Repository) mapTransactErr(err error, op string, lockIdx, pendingIdx int) error {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for i, reason := range canceled.CancellationReasons {
			if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
				continue
			}
			switch i {
			case lockIdx:
				return ErrSlotTaken
			case pendingIdx:
				return ErrNotFound
			default:
				return ErrNotFound
			}
		}
	}
	return fmt.Errorf("booking: %s transaction: %w", op, err)
}
