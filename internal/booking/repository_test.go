package booking

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/glowdesk/salon-platform/pkg/logging"
)

type mockDynamo struct {
	putInputs      []*dynamodb.PutItemInput
	updateInputs   []*dynamodb.UpdateItemInput
	transactInputs []*dynamodb.TransactWriteItemsInput
	queryInputs    []*dynamodb.QueryInput

	getOutput      *dynamodb.GetItemOutput
	queryOutputs   []*dynamodb.QueryOutput
	transactErr    error
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getOutput != nil {
		return m.getOutput, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.putInputs = append(m.putInputs, in)
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	m.updateInputs = append(m.updateInputs, in)
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *mockDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	m.queryInputs = append(m.queryInputs, in)
	if len(m.queryOutputs) == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	out := m.queryOutputs[0]
	m.queryOutputs = m.queryOutputs[1:]
	return out, nil
}

func (m *mockDynamo) TransactWriteItems(_ context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	m.transactInputs = append(m.transactInputs, in)
	if m.transactErr != nil {
		return nil, m.transactErr
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func testAppointment() *Appointment {
	return &Appointment{
		ID:           "appt-1",
		CustomerID:   "cust1",
		CustomerName: "Dana",
		ServiceID:    "svc-cut",
		ServiceName:  "Cut & Finish",
		StylistID:    "sty1",
		Date:         "2026-09-07",
		Start:        "10:00",
		End:          "11:00",
		PriceCents:   6500,
		Status:       StatusConfirmed,
	}
}

func TestCreateFanOut_SingleTransactionCoversAllMirrors(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	if err := repo.CreateFanOut(context.Background(), testAppointment()); err != nil {
		t.Fatalf("CreateFanOut: %v", err)
	}

	if len(mock.transactInputs) != 1 {
		t.Fatalf("expected exactly one transaction, got %d", len(mock.transactInputs))
	}
	if len(mock.putInputs) != 0 || len(mock.updateInputs) != 0 {
		t.Fatal("fan-out must not issue writes outside the transaction")
	}

	items := mock.transactInputs[0].TransactItems
	if len(items) != 4 {
		t.Fatalf("expected 3 mirror puts + slot lock, got %d items", len(items))
	}

	wantPKs := map[string]bool{
		"ADMIN#APPT":     false,
		"STYLIST#sty1":   false,
		"CUSTOMER#cust1": false,
	}
	for _, item := range items[:3] {
		if item.Put == nil {
			t.Fatal("mirror writes must be puts")
		}
		pk := item.Put.Item["PK"].(*types.AttributeValueMemberS).Value
		if _, ok := wantPKs[pk]; !ok {
			t.Fatalf("unexpected partition %s", pk)
		}
		wantPKs[pk] = true
		sk := item.Put.Item["SK"].(*types.AttributeValueMemberS).Value
		if sk != "APPT#appt-1" {
			t.Fatalf("unexpected sort key %s", sk)
		}
	}
	for pk, seen := range wantPKs {
		if !seen {
			t.Errorf("partition %s missing from fan-out", pk)
		}
	}

	lock := items[3].Put
	if lock == nil {
		t.Fatal("fourth item should be the slot lock put")
	}
	if got := lock.Item["PK"].(*types.AttributeValueMemberS).Value; got != "SLOT#sty1" {
		t.Errorf("lock PK = %s", got)
	}
	if got := lock.Item["SK"].(*types.AttributeValueMemberS).Value; got != "2026-09-07T10:00" {
		t.Errorf("lock SK = %s", got)
	}
	if expr := aws.ToString(lock.ConditionExpression); expr != "attribute_not_exists(PK)" {
		t.Errorf("lock must be conditional on non-existence, got %q", expr)
	}
}

func TestCreateFanOut_SlotRaceMapsToErrSlotTaken(t *testing.T) {
	mock := &mockDynamo{
		transactErr: &types.TransactionCanceledException{
			CancellationReasons: []types.CancellationReason{
				{Code: aws.String("None")},
				{Code: aws.String("None")},
				{Code: aws.String("None")},
				{Code: aws.String("ConditionalCheckFailed")},
			},
		},
	}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	err := repo.CreateFanOut(context.Background(), testAppointment())
	if !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if len(mock.putInputs) != 0 || len(mock.updateInputs) != 0 {
		t.Fatal("a lost slot race must leave no mirror updated")
	}
}

func TestCreateFanOut_OtherErrorsAreWrapped(t *testing.T) {
	mock := &mockDynamo{transactErr: errors.New("throttled")}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	err := repo.CreateFanOut(context.Background(), testAppointment())
	if err == nil || errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "booking:") {
		t.Errorf("error should carry package context: %v", err)
	}
}

func TestConfirmRotate_DeletesPendingInSameTransaction(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	confirmed := testAppointment()
	confirmed.ID = "appt-new"

	if err := repo.ConfirmRotate(context.Background(), "appt-old", confirmed); err != nil {
		t.Fatalf("ConfirmRotate: %v", err)
	}

	if len(mock.transactInputs) != 1 {
		t.Fatalf("expected one transaction, got %d", len(mock.transactInputs))
	}
	items := mock.transactInputs[0].TransactItems
	if len(items) != 5 {
		t.Fatalf("expected 3 puts + lock + pending delete, got %d", len(items))
	}

	del := items[4].Delete
	if del == nil {
		t.Fatal("last item should delete the pending record")
	}
	if got := del.Key["PK"].(*types.AttributeValueMemberS).Value; got != "CUSTOMER#cust1" {
		t.Errorf("delete PK = %s", got)
	}
	if got := del.Key["SK"].(*types.AttributeValueMemberS).Value; got != "APPT#appt-old" {
		t.Errorf("delete SK = %s", got)
	}

	for _, item := range items[:3] {
		sk := item.Put.Item["SK"].(*types.AttributeValueMemberS).Value
		if sk != "APPT#appt-new" {
			t.Fatalf("confirmed mirrors must use the new id, got %s", sk)
		}
	}
}

func TestCancelFanOut_UpdatesEveryMirrorAndReleasesLock(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	if err := repo.CancelFanOut(context.Background(), testAppointment()); err != nil {
		t.Fatalf("CancelFanOut: %v", err)
	}

	items := mock.transactInputs[0].TransactItems
	if len(items) != 4 {
		t.Fatalf("expected 3 updates + lock delete, got %d", len(items))
	}
	for _, item := range items[:3] {
		if item.Update == nil {
			t.Fatal("mirror cancellation must be an update, not a rewrite")
		}
		expr := aws.ToString(item.Update.UpdateExpression)
		if !strings.Contains(expr, ":cancelled") {
			t.Errorf("update should set cancelled status: %s", expr)
		}
	}
	if items[3].Delete == nil {
		t.Fatal("slot lock should be deleted with the cancellation")
	}
}

func TestCancelScheduled_SingleDocumentWrite(t *testing.T) {
	mock := &mockDynamo{}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	if err := repo.CancelScheduled(context.Background(), "cust1", "appt-1"); err != nil {
		t.Fatalf("CancelScheduled: %v", err)
	}

	if len(mock.transactInputs) != 0 {
		t.Error("scheduled cancellation must not fan out")
	}
	if len(mock.updateInputs) != 1 {
		t.Fatalf("expected one update, got %d", len(mock.updateInputs))
	}
	update := mock.updateInputs[0]
	if got := update.Key["PK"].(*types.AttributeValueMemberS).Value; got != "CUSTOMER#cust1" {
		t.Errorf("update PK = %s", got)
	}
}

func TestGetCustomerAppointment_NotFound(t *testing.T) {
	repo := NewRepository(&mockDynamo{}, "salon_platform", logging.Default())

	_, err := repo.GetCustomerAppointment(context.Background(), "cust1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetCustomerAppointment_RoundTrip(t *testing.T) {
	appt := testAppointment()
	raw, err := attributevalue.MarshalMap(apptItem{PK: customerPK(appt.CustomerID), SK: apptSK(appt.ID), Appointment: *appt})
	if err != nil {
		t.Fatal(err)
	}
	mock := &mockDynamo{getOutput: &dynamodb.GetItemOutput{Item: raw}}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	got, err := repo.GetCustomerAppointment(context.Background(), "cust1", "appt-1")
	if err != nil {
		t.Fatalf("GetCustomerAppointment: %v", err)
	}
	if got.ID != appt.ID || got.Start != appt.Start || got.PriceCents != appt.PriceCents {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestListByStylistDate_FollowsPagination(t *testing.T) {
	appt := testAppointment()
	raw, err := attributevalue.MarshalMap(apptItem{PK: stylistPK(appt.StylistID), SK: apptSK(appt.ID), Appointment: *appt})
	if err != nil {
		t.Fatal(err)
	}
	mock := &mockDynamo{
		queryOutputs: []*dynamodb.QueryOutput{
			{
				Items:            []map[string]types.AttributeValue{raw},
				LastEvaluatedKey: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "x"}},
			},
			{Items: []map[string]types.AttributeValue{raw}},
		},
	}
	repo := NewRepository(mock, "salon_platform", logging.Default())

	appts, err := repo.ListByStylistDate(context.Background(), "sty1", "2026-09-07")
	if err != nil {
		t.Fatalf("ListByStylistDate: %v", err)
	}
	if len(appts) != 2 {
		t.Fatalf("expected 2 results across pages, got %d", len(appts))
	}
	if len(mock.queryInputs) != 2 {
		t.Fatalf("expected 2 query calls, got %d", len(mock.queryInputs))
	}
	if aws.ToString(mock.queryInputs[0].FilterExpression) != "#date = :date" {
		t.Errorf("date filter missing: %v", mock.queryInputs[0].FilterExpression)
	}
}
