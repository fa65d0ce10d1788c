package dynamodb_service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/villagehq/api/functions/gateway/helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var eventRsvpsTableName = helpers.GetDbTableName(helpers.EventRsvpsTablePrefix)

func init() {
	eventRsvpsTableName = helpers.GetDbTableName(helpers.EventRsvpsTablePrefix)
}

const userIdGsi = "userIdGsi"

// DynamoDB caps BatchWriteItem at 25 requests per call.
const batchWriteChunkSize = 25

type EventRsvpService struct{}

func NewEventRsvpService() internal_types.EventRsvpServiceInterface {
	return &EventRsvpService{}
}

func (s *EventRsvpService) UpsertEventRsvp(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventRsvp internal_types.EventRsvpInsert) (*internal_types.EventRsvp, error) {
	if err := validate.Struct(eventRsvp); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	if eventRsvp.CreatedAt.IsZero() {
		eventRsvp.CreatedAt = now
	}
	eventRsvp.UpdatedAt = now

	item, err := attributevalue.MarshalMap(&eventRsvp)
	if err != nil {
		return nil, err
	}

	// full-row put on the composite key, so re-applying the same response
	// overwrites instead of duplicating
	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(eventRsvpsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &internal_types.EventRsvp{
		EventId:   eventRsvp.EventId,
		UserId:    eventRsvp.UserId,
		TenantId:  eventRsvp.TenantId,
		Status:    eventRsvp.Status,
		CreatedAt: eventRsvp.CreatedAt,
		UpdatedAt: eventRsvp.UpdatedAt,
	}, nil
}

func (s *EventRsvpService) GetEventRsvpByPk(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, userId string) (*internal_types.EventRsvp, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(eventRsvpsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"eventId": &dynamodb_types.AttributeValueMemberS{Value: eventId},
			"userId":  &dynamodb_types.AttributeValueMemberS{Value: userId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var rsvp internal_types.EventRsvp
	err = attributevalue.UnmarshalMap(result.Item, &rsvp)
	if err != nil {
		return nil, err
	}

	return &rsvp, nil
}

func (s *EventRsvpService) GetEventRsvpsByEventID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId string) ([]internal_types.EventRsvp, error) {
	rsvps := make([]internal_types.EventRsvp, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(eventRsvpsTableName),
			KeyConditionExpression: aws.String("eventId = :eventId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":eventId": &dynamodb_types.AttributeValueMemberS{Value: eventId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.EventRsvp
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		rsvps = append(rsvps, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return rsvps, nil
}

func (s *EventRsvpService) GetEventRsvpsByUserID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) ([]internal_types.EventRsvp, error) {
	rsvps := make([]internal_types.EventRsvp, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(eventRsvpsTableName),
			IndexName:              aws.String(userIdGsi),
			KeyConditionExpression: aws.String("userId = :userId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":userId": &dynamodb_types.AttributeValueMemberS{Value: userId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.EventRsvp
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		rsvps = append(rsvps, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return rsvps, nil
}

func (s *EventRsvpService) GetEventRsvpCounts(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId string) (*internal_types.RsvpCounts, error) {
	rsvps, err := s.GetEventRsvpsByEventID(ctx, dynamodbClient, eventId)
	if err != nil {
		return nil, err
	}

	counts := internal_types.RsvpCounts{}
	for _, rsvp := range rsvps {
		switch rsvp.Status {
		case helpers.RsvpStatusGoing:
			counts.Going++
		case helpers.RsvpStatusInterested:
			counts.Interested++
		case helpers.RsvpStatusNotGoing:
			counts.NotGoing++
		}
	}

	return &counts, nil
}

// RsvpToEvent records a user's response to an event. Scope "this" touches the
// single occurrence; scope "series" resolves the series root and applies the
// response to the targeted occurrence and everything after it, in one batched
// write. Occurrences that individually reject the response (full, past
// deadline) are skipped rather than failing the whole batch, unless the
// targeted occurrence itself is the one rejecting.
func (s *EventRsvpService) RsvpToEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, userId, status, scope string) error {
	switch status {
	case helpers.RsvpStatusGoing, helpers.RsvpStatusInterested, helpers.RsvpStatusNotGoing, helpers.RsvpStatusCancelled:
	default:
		return fmt.Errorf("invalid rsvp status: %s", status)
	}
	if scope == "" {
		scope = helpers.RsvpScopeThis
	}

	eventService := &EventService{}
	event, err := eventService.GetEventById(ctx, dynamodbClient, eventId, tenantId)
	if err != nil {
		return err
	}
	if event == nil {
		return fmt.Errorf("event not found")
	}

	if err := s.checkRsvpEligibility(ctx, dynamodbClient, event, userId, status); err != nil {
		return err
	}

	if scope == helpers.RsvpScopeThis {
		_, err := s.UpsertEventRsvp(ctx, dynamodbClient, internal_types.EventRsvpInsert{
			EventId:  event.Id,
			UserId:   userId,
			TenantId: tenantId,
			Status:   status,
		})
		return err
	}

	if scope != helpers.RsvpScopeSeries {
		return fmt.Errorf("invalid rsvp scope: %s", scope)
	}

	occurrences, err := s.getSeriesOccurrences(ctx, dynamodbClient, event, tenantId)
	if err != nil {
		return err
	}

	now := time.Now()
	rsvps := make([]internal_types.EventRsvpInsert, 0, len(occurrences))
	for _, occurrence := range occurrences {
		// the targeted occurrence was already vetted above; siblings that
		// reject the response are skipped, not fatal
		if occurrence.Id != event.Id {
			if err := s.checkRsvpEligibility(ctx, dynamodbClient, &occurrence, userId, status); err != nil {
				log.Printf("skipping rsvp for occurrence %s: %v", occurrence.Id, err)
				continue
			}
		}
		rsvps = append(rsvps, internal_types.EventRsvpInsert{
			EventId:   occurrence.Id,
			UserId:    userId,
			TenantId:  tenantId,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}

	if len(rsvps) == 0 {
		return nil
	}

	return s.batchUpsertRsvps(ctx, dynamodbClient, rsvps)
}

// checkRsvpEligibility enforces per-occurrence guards. Withdrawing (not_going
// or cancelled) is always allowed; only positive responses hit the deadline
// and capacity checks.
func (s *EventRsvpService) checkRsvpEligibility(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event *internal_types.Event, userId, status string) error {
	if event.Status == helpers.EventStatusCancelled {
		return fmt.Errorf("event is cancelled")
	}

	if status == helpers.RsvpStatusNotGoing || status == helpers.RsvpStatusCancelled {
		return nil
	}

	if event.RsvpDeadline != "" {
		deadline, err := time.Parse(time.RFC3339, event.RsvpDeadline)
		if err == nil && time.Now().After(deadline) {
			return fmt.Errorf("rsvp deadline has passed")
		}
	}

	if status == helpers.RsvpStatusGoing && event.MaxAttendees > 0 {
		existing, err := s.GetEventRsvpByPk(ctx, dynamodbClient, event.Id, userId)
		if err != nil {
			return err
		}
		if existing != nil && existing.Status == helpers.RsvpStatusGoing {
			return nil
		}

		counts, err := s.GetEventRsvpCounts(ctx, dynamodbClient, event.Id)
		if err != nil {
			return err
		}
		if counts.Going >= event.MaxAttendees {
			return fmt.Errorf("event is full")
		}
	}

	return nil
}

// getSeriesOccurrences returns the targeted occurrence and every occurrence of
// its series starting on or after it, ordered by start date.
func (s *EventRsvpService) getSeriesOccurrences(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event *internal_types.Event, tenantId string) ([]internal_types.Event, error) {
	rootId := event.ParentEventId
	if rootId == "" {
		rootId = event.Id
	}

	occurrences := make([]internal_types.Event, 0)

	eventService := &EventService{}
	root, err := eventService.GetEventById(ctx, dynamodbClient, rootId, tenantId)
	if err != nil {
		return nil, err
	}
	if root != nil {
		occurrences = append(occurrences, *root)
	}

	var token map[string]dynamodb_types.AttributeValue
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(eventsTableName),
			IndexName:              aws.String(parentEventIdGsi),
			KeyConditionExpression: aws.String("parentEventId = :parentEventId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":parentEventId": &dynamodb_types.AttributeValueMemberS{Value: rootId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.Event
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		occurrences = append(occurrences, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	filtered := make([]internal_types.Event, 0, len(occurrences))
	for _, occurrence := range occurrences {
		if occurrence.TenantId != tenantId {
			continue
		}
		if occurrence.StartDate < event.StartDate {
			continue
		}
		filtered = append(filtered, occurrence)
	}

	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].StartDate < filtered[j].StartDate
	})

	return filtered, nil
}

func (s *EventRsvpService) batchUpsertRsvps(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, rsvps []internal_types.EventRsvpInsert) error {
	for start := 0; start < len(rsvps); start += batchWriteChunkSize {
		end := start + batchWriteChunkSize
		if end > len(rsvps) {
			end = len(rsvps)
		}

		writeRequests := make([]dynamodb_types.WriteRequest, 0, end-start)
		for _, rsvp := range rsvps[start:end] {
			item, err := attributevalue.MarshalMap(&rsvp)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, dynamodb_types.WriteRequest{
				PutRequest: &dynamodb_types.PutRequest{Item: item},
			})
		}

		requestItems := map[string][]dynamodb_types.WriteRequest{
			eventRsvpsTableName: writeRequests,
		}

		// one retry pass for throttled writes before giving up
		for attempt := 0; len(requestItems) > 0; attempt++ {
			result, err := dynamodbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: requestItems,
			})
			if err != nil {
				return err
			}
			if len(result.UnprocessedItems) == 0 {
				break
			}
			if attempt >= 1 {
				return fmt.Errorf("failed to write %d rsvps after retry", len(result.UnprocessedItems[eventRsvpsTableName]))
			}
			requestItems = result.UnprocessedItems
		}
	}

	return nil
}

func (s *EventRsvpService) DeleteEventRsvp(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, userId string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(eventRsvpsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"eventId": &dynamodb_types.AttributeValueMemberS{Value: eventId},
			"userId":  &dynamodb_types.AttributeValueMemberS{Value: userId},
		},
	}

	_, err := dynamodbClient.DeleteItem(ctx, input)
	return err
}

type MockEventRsvpService struct {
	UpsertEventRsvpFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventRsvp internal_types.EventRsvpInsert) (*internal_types.EventRsvp, error)
	GetEventRsvpByPkFunc       func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, userId string) (*internal_types.EventRsvp, error)
	GetEventRsvpsByEventIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId string) ([]internal_types.EventRsvp, error)
	GetEventRsvpsByUserIDFunc  func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) ([]internal_types.EventRsvp, error)
	GetEventRsvpCountsFunc     func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId string) (*internal_types.RsvpCounts, error)
	RsvpToEventFunc            func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, userId, status, scope string) error
	DeleteEventRsvpFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, userId string) error
}

func (m *MockEventRsvpService) UpsertEventRsvp(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventRsvp internal_types.EventRsvpInsert) (*internal_types.EventRsvp, error) {
	return m.UpsertEventRsvpFunc(ctx, dynamodbClient, eventRsvp)
}

func (m *MockEventRsvpService) GetEventRsvpByPk(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, userId string) (*internal_types.EventRsvp, error) {
	return m.GetEventRsvpByPkFunc(ctx, dynamodbClient, eventId, userId)
}

func (m *MockEventRsvpService) GetEventRsvpsByEventID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId string) ([]internal_types.EventRsvp, error) {
	return m.GetEventRsvpsByEventIDFunc(ctx, dynamodbClient, eventId)
}

func (m *MockEventRsvpService) GetEventRsvpsByUserID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) ([]internal_types.EventRsvp, error) {
	return m.GetEventRsvpsByUserIDFunc(ctx, dynamodbClient, userId)
}

func (m *MockEventRsvpService) GetEventRsvpCounts(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId string) (*internal_types.RsvpCounts, error) {
	return m.GetEventRsvpCountsFunc(ctx, dynamodbClient, eventId)
}

func (m *MockEventRsvpService) RsvpToEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, userId, status, scope string) error {
	return m.RsvpToEventFunc(ctx, dynamodbClient, eventId, tenantId, userId, status, scope)
}

func (m *MockEventRsvpService) DeleteEventRsvp(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, userId string) error {
	return m.DeleteEventRsvpFunc(ctx, dynamodbClient, eventId, userId)
}
