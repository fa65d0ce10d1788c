package dynamodb_service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/villagehq/api/functions/gateway/helpers"
	"github.com/villagehq/api/functions/gateway/test_helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

// seriesMockDB serves GetItem and the parentEventIdGsi query from an in-memory
// set of event rows, and records writes.
func seriesMockDB(t *testing.T, events map[string]internal_types.Event) (*test_helpers.MockDynamoDBClient, *[]dynamodb.PutItemInput, *[]dynamodb.BatchWriteItemInput) {
	t.Helper()

	puts := &[]dynamodb.PutItemInput{}
	batches := &[]dynamodb.BatchWriteItemInput{}

	mockDB := &test_helpers.MockDynamoDBClient{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			idAttr, ok := params.Key["id"]
			if !ok {
				// rsvp table lookup by composite key
				return &dynamodb.GetItemOutput{}, nil
			}
			event, ok := events[idAttr.(*dynamodb_types.AttributeValueMemberS).Value]
			if !ok {
				return &dynamodb.GetItemOutput{}, nil
			}
			item, err := attributevalue.MarshalMap(&event)
			if err != nil {
				t.Fatalf("failed to marshal event: %v", err)
			}
			return &dynamodb.GetItemOutput{Item: item}, nil
		},
		QueryFunc: func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			if params.IndexName == nil || *params.IndexName != parentEventIdGsi {
				return &dynamodb.QueryOutput{}, nil
			}
			parentId := params.ExpressionAttributeValues[":parentEventId"].(*dynamodb_types.AttributeValueMemberS).Value
			items := []map[string]dynamodb_types.AttributeValue{}
			for _, event := range events {
				if event.ParentEventId != parentId {
					continue
				}
				item, err := attributevalue.MarshalMap(&event)
				if err != nil {
					t.Fatalf("failed to marshal event: %v", err)
				}
				items = append(items, item)
			}
			return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
		},
		PutItemFunc: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			*puts = append(*puts, *params)
			return &dynamodb.PutItemOutput{}, nil
		},
		BatchWriteItemFunc: func(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
			*batches = append(*batches, *params)
			return &dynamodb.BatchWriteItemOutput{}, nil
		},
	}

	return mockDB, puts, batches
}

func TestRsvpToEventSingleOccurrence(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, puts, batches := seriesMockDB(t, map[string]internal_types.Event{
		"event-1": {Id: "event-1", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10"},
	})

	err := service.RsvpToEvent(context.Background(), mockDB, "event-1", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeThis)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(*puts) != 1 {
		t.Fatalf("expected one upsert, got %d", len(*puts))
	}
	if len(*batches) != 0 {
		t.Errorf("expected no batch writes for scope this, got %d", len(*batches))
	}

	item := (*puts)[0].Item
	if got := item["eventId"].(*dynamodb_types.AttributeValueMemberS).Value; got != "event-1" {
		t.Errorf("expected rsvp for event-1, got %s", got)
	}
	if got := item["status"].(*dynamodb_types.AttributeValueMemberS).Value; got != helpers.RsvpStatusGoing {
		t.Errorf("expected status going, got %s", got)
	}
}

func TestRsvpToEventSeriesBatchesOneWrite(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, puts, batches := seriesMockDB(t, map[string]internal_types.Event{
		"series-root": {Id: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10"},
		"child-1":     {Id: "child-1", ParentEventId: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-17"},
	})

	err := service.RsvpToEvent(context.Background(), mockDB, "series-root", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeSeries)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(*puts) != 0 {
		t.Errorf("expected no single-row puts for scope series, got %d", len(*puts))
	}
	if len(*batches) != 1 {
		t.Fatalf("expected exactly one batch write, got %d", len(*batches))
	}

	requests := (*batches)[0].RequestItems[eventRsvpsTableName]
	if len(requests) != 2 {
		t.Fatalf("expected 2 rsvp rows in the batch, got %d", len(requests))
	}

	seen := map[string]bool{}
	for _, request := range requests {
		item := request.PutRequest.Item
		seen[item["eventId"].(*dynamodb_types.AttributeValueMemberS).Value] = true
		if got := item["userId"].(*dynamodb_types.AttributeValueMemberS).Value; got != "user-123" {
			t.Errorf("expected rsvp keyed by user-123, got %s", got)
		}
	}
	if !seen["series-root"] || !seen["child-1"] {
		t.Errorf("expected rsvps for both occurrences, got %v", seen)
	}
}

func TestRsvpToEventSeriesFromMiddleSkipsEarlier(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, _, batches := seriesMockDB(t, map[string]internal_types.Event{
		"series-root": {Id: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-03"},
		"child-1":     {Id: "child-1", ParentEventId: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10"},
		"child-2":     {Id: "child-2", ParentEventId: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-17"},
	})

	// rsvp from the middle of the series: the root occurrence is earlier than
	// the target and must not receive a row
	err := service.RsvpToEvent(context.Background(), mockDB, "child-1", "tenant-123", "user-123", helpers.RsvpStatusInterested, helpers.RsvpScopeSeries)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(*batches) != 1 {
		t.Fatalf("expected one batch write, got %d", len(*batches))
	}
	requests := (*batches)[0].RequestItems[eventRsvpsTableName]
	if len(requests) != 2 {
		t.Fatalf("expected 2 rsvp rows, got %d", len(requests))
	}
	for _, request := range requests {
		id := request.PutRequest.Item["eventId"].(*dynamodb_types.AttributeValueMemberS).Value
		if id == "series-root" {
			t.Error("expected no rsvp for the occurrence before the target")
		}
	}
}

func TestRsvpToEventSeriesSkipsCancelledSibling(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, _, batches := seriesMockDB(t, map[string]internal_types.Event{
		"series-root": {Id: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10"},
		"child-1":     {Id: "child-1", ParentEventId: "series-root", TenantId: "tenant-123", Status: "cancelled", StartDate: "2026-09-17"},
		"child-2":     {Id: "child-2", ParentEventId: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-24"},
	})

	err := service.RsvpToEvent(context.Background(), mockDB, "series-root", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeSeries)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	requests := (*batches)[0].RequestItems[eventRsvpsTableName]
	if len(requests) != 2 {
		t.Fatalf("expected cancelled sibling to be skipped, got %d rows", len(requests))
	}
	for _, request := range requests {
		id := request.PutRequest.Item["eventId"].(*dynamodb_types.AttributeValueMemberS).Value
		if id == "child-1" {
			t.Error("expected no rsvp for a cancelled occurrence")
		}
	}
}

func TestRsvpToEventRejectsCancelledTarget(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, puts, _ := seriesMockDB(t, map[string]internal_types.Event{
		"event-1": {Id: "event-1", TenantId: "tenant-123", Status: "cancelled", StartDate: "2026-09-10"},
	})

	err := service.RsvpToEvent(context.Background(), mockDB, "event-1", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeThis)
	if err == nil || !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("expected cancelled-event error, got %v", err)
	}
	if len(*puts) != 0 {
		t.Errorf("expected no writes, got %d", len(*puts))
	}
}

func TestRsvpToEventDeadlinePassed(t *testing.T) {
	service := NewEventRsvpService()

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	mockDB, puts, _ := seriesMockDB(t, map[string]internal_types.Event{
		"event-1": {Id: "event-1", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10", RequiresRsvp: true, RsvpDeadline: past},
	})

	err := service.RsvpToEvent(context.Background(), mockDB, "event-1", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeThis)
	if err == nil || !strings.Contains(err.Error(), "deadline") {
		t.Errorf("expected deadline error, got %v", err)
	}
	if len(*puts) != 0 {
		t.Errorf("expected no writes, got %d", len(*puts))
	}
}

func TestRsvpToEventWithdrawIgnoresDeadline(t *testing.T) {
	service := NewEventRsvpService()

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	mockDB, puts, _ := seriesMockDB(t, map[string]internal_types.Event{
		"event-1": {Id: "event-1", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10", RequiresRsvp: true, RsvpDeadline: past},
	})

	err := service.RsvpToEvent(context.Background(), mockDB, "event-1", "tenant-123", "user-123", helpers.RsvpStatusNotGoing, helpers.RsvpScopeThis)
	if err != nil {
		t.Fatalf("expected withdrawal to bypass the deadline, got %v", err)
	}
	if len(*puts) != 1 {
		t.Errorf("expected one upsert, got %d", len(*puts))
	}
}

func TestRsvpToEventFullEvent(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, puts, _ := seriesMockDB(t, map[string]internal_types.Event{
		"event-1": {Id: "event-1", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10", RequiresRsvp: true, MaxAttendees: 1},
	})

	// the capacity check queries the rsvp table by eventId partition key
	otherRsvp, err := attributevalue.MarshalMap(&internal_types.EventRsvp{
		EventId: "event-1", UserId: "someone-else", TenantId: "tenant-123", Status: helpers.RsvpStatusGoing,
	})
	if err != nil {
		t.Fatalf("failed to marshal rsvp: %v", err)
	}
	baseQuery := mockDB.QueryFunc
	mockDB.QueryFunc = func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
		if params.IndexName == nil && strings.Contains(*params.KeyConditionExpression, "eventId") {
			return &dynamodb.QueryOutput{Items: []map[string]dynamodb_types.AttributeValue{otherRsvp}, Count: 1}, nil
		}
		return baseQuery(ctx, params, optFns...)
	}

	err = service.RsvpToEvent(context.Background(), mockDB, "event-1", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeThis)
	if err == nil || !strings.Contains(err.Error(), "full") {
		t.Errorf("expected event-full error, got %v", err)
	}
	if len(*puts) != 0 {
		t.Errorf("expected no writes, got %d", len(*puts))
	}
}

func TestRsvpToEventInvalidStatus(t *testing.T) {
	service := NewEventRsvpService()
	mockDB := &test_helpers.MockDynamoDBClient{}

	err := service.RsvpToEvent(context.Background(), mockDB, "event-1", "tenant-123", "user-123", "definitely", helpers.RsvpScopeThis)
	if err == nil || !strings.Contains(err.Error(), "invalid rsvp status") {
		t.Errorf("expected invalid status error, got %v", err)
	}
}

func TestRsvpToEventNotFound(t *testing.T) {
	service := NewEventRsvpService()
	mockDB, _, _ := seriesMockDB(t, map[string]internal_types.Event{})

	err := service.RsvpToEvent(context.Background(), mockDB, "missing", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeThis)
	if err == nil || err.Error() != "event not found" {
		t.Errorf("expected event not found, got %v", err)
	}
}

func TestRsvpToEventSurfacesBatchError(t *testing.T) {
	service := NewEventRsvpService()

	mockDB, _, _ := seriesMockDB(t, map[string]internal_types.Event{
		"series-root": {Id: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-10"},
		"child-1":     {Id: "child-1", ParentEventId: "series-root", TenantId: "tenant-123", Status: "published", StartDate: "2026-09-17"},
	})
	mockDB.BatchWriteItemFunc = func(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
		return nil, fmt.Errorf("InternalServerError")
	}

	err := service.RsvpToEvent(context.Background(), mockDB, "series-root", "tenant-123", "user-123", helpers.RsvpStatusGoing, helpers.RsvpScopeSeries)
	if err == nil || !strings.Contains(err.Error(), "InternalServerError") {
		t.Errorf("expected verbatim store error, got %v", err)
	}
}

func TestUpsertEventRsvpValidation(t *testing.T) {
	service := NewEventRsvpService()
	mockDB := &test_helpers.MockDynamoDBClient{}

	_, err := service.UpsertEventRsvp(context.Background(), mockDB, internal_types.EventRsvpInsert{
		EventId:  "event-1",
		UserId:   "user-123",
		TenantId: "tenant-123",
		Status:   "definitely",
	})
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestGetEventRsvpCounts(t *testing.T) {
	service := NewEventRsvpService()

	rows := []internal_types.EventRsvp{
		{EventId: "event-1", UserId: "u1", Status: helpers.RsvpStatusGoing},
		{EventId: "event-1", UserId: "u2", Status: helpers.RsvpStatusGoing},
		{EventId: "event-1", UserId: "u3", Status: helpers.RsvpStatusInterested},
		{EventId: "event-1", UserId: "u4", Status: helpers.RsvpStatusNotGoing},
	}
	items := make([]map[string]dynamodb_types.AttributeValue, 0, len(rows))
	for _, row := range rows {
		item, err := attributevalue.MarshalMap(&row)
		if err != nil {
			t.Fatalf("failed to marshal rsvp: %v", err)
		}
		items = append(items, item)
	}

	mockDB := &test_helpers.MockDynamoDBClient{
		QueryFunc: func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: items, Count: int32(len(items))}, nil
		},
	}

	counts, err := service.GetEventRsvpCounts(context.Background(), mockDB, "event-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if counts.Going != 2 || counts.Interested != 1 || counts.NotGoing != 1 {
		t.Errorf("unexpected counts: %+v", counts)
	}
}
