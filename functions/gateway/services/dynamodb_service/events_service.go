package dynamodb_service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/villagehq/api/functions/gateway/helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var validate *validator.Validate = validator.New()

var eventsTableName = helpers.GetDbTableName(helpers.EventsTablePrefix)
var eventFlagsTableName = helpers.GetDbTableName(helpers.EventFlagsTablePrefix)
var eventCategoriesTableName = helpers.GetDbTableName(helpers.EventCategoriesTablePrefix)

func init() {
	eventsTableName = helpers.GetDbTableName(helpers.EventsTablePrefix)
	eventFlagsTableName = helpers.GetDbTableName(helpers.EventFlagsTablePrefix)
	eventCategoriesTableName = helpers.GetDbTableName(helpers.EventCategoriesTablePrefix)
}

const (
	tenantIdGsi      = "tenantIdGsi"
	locationIdGsi    = "locationIdGsi"
	parentEventIdGsi = "parentEventIdGsi"
)

type EventService struct{}

func NewEventService() internal_types.EventServiceInterface {
	return &EventService{}
}

func (s *EventService) InsertEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event internal_types.EventInsert) (*internal_types.Event, error) {
	if err := validate.Struct(event); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if eventsTableName == "" {
		return nil, fmt.Errorf("ERR: eventsTableName is empty")
	}

	startDate, err := helpers.NormalizeDate(event.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	event.StartDate = startDate

	// single-day events store their start date as the end date so the
	// availability range test never has to special-case a missing bound
	if event.EndDate == "" {
		event.EndDate = event.StartDate
	} else {
		endDate, err := helpers.NormalizeDate(event.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid end date: %w", err)
		}
		event.EndDate = endDate
	}
	if event.LocationType == "" {
		event.LocationType = "none"
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	newEvent := internal_types.Event{
		Id:                 uuid.NewString(),
		TenantId:           event.TenantId,
		Title:              event.Title,
		Description:        event.Description,
		StartDate:          event.StartDate,
		StartTime:          event.StartTime,
		EndDate:            event.EndDate,
		EndTime:            event.EndTime,
		Timezone:           event.Timezone,
		IsAllDay:           event.IsAllDay,
		Status:             event.Status,
		CategoryId:         event.CategoryId,
		LocationType:       event.LocationType,
		LocationId:         event.LocationId,
		CustomLocationName: event.CustomLocationName,
		RequiresRsvp:       event.RequiresRsvp,
		MaxAttendees:       event.MaxAttendees,
		RsvpDeadline:       event.RsvpDeadline,
		ParentEventId:      event.ParentEventId,
		CreatedBy:          event.CreatedBy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	item, err := attributevalue.MarshalMap(&newEvent)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(eventsTableName),
		Item:      item,
	}

	_, err = dynamodbClient.PutItem(ctx, input)
	if err != nil {
		return nil, err
	}

	return &newEvent, nil
}

func (s *EventService) GetEventById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(eventsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: eventId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var event internal_types.Event
	err = attributevalue.UnmarshalMap(result.Item, &event)
	if err != nil {
		return nil, err
	}

	// rows from another tenant are invisible, not forbidden
	if event.TenantId != tenantId {
		return nil, nil
	}

	return &event, nil
}

func (s *EventService) GetEventsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Event, error) {
	keyCond := expression.Key("tenantId").Equal(expression.Value(tenantId))
	builder := expression.NewBuilder().WithKeyCondition(keyCond)

	if len(statuses) > 0 {
		operands := make([]expression.OperandBuilder, len(statuses))
		for i, status := range statuses {
			operands[i] = expression.Value(status)
		}
		builder = builder.WithFilter(expression.Name("status").In(operands[0], operands[1:]...))
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	events := make([]internal_types.Event, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(eventsTableName),
			IndexName:                 aws.String(tenantIdGsi),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         token,
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

		events = append(events, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return events, nil
}

func (s *EventService) GetUpcomingEvents(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, limit int32) ([]internal_types.Event, error) {
	today := time.Now().Format(helpers.DateLayout)

	keyCond := expression.Key("tenantId").Equal(expression.Value(tenantId)).
		And(expression.Key("startDate").GreaterThanEqual(expression.Value(today)))
	filt := expression.Name("status").Equal(expression.Value(helpers.EventStatusPublished))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(eventsTableName),
		IndexName:                 aws.String(tenantIdGsi),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := dynamodbClient.Query(ctx, input)
	if err != nil {
		return nil, err
	}

	var events []internal_types.Event
	err = attributevalue.UnmarshalListOfMaps(result.Items, &events)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *EventService) GetEventsByLocationID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) ([]internal_types.Event, error) {
	today := time.Now().Format(helpers.DateLayout)

	keyCond := expression.Key("locationId").Equal(expression.Value(locationId)).
		And(expression.Key("startDate").GreaterThanEqual(expression.Value(today)))
	filt := expression.Name("tenantId").Equal(expression.Value(tenantId)).
		And(expression.Name("status").Equal(expression.Value(helpers.EventStatusPublished)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(eventsTableName),
		IndexName:                 aws.String(locationIdGsi),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	result, err := dynamodbClient.Query(ctx, input)
	if err != nil {
		return nil, err
	}

	var events []internal_types.Event
	err = attributevalue.UnmarshalListOfMaps(result.Items, &events)
	if err != nil {
		return nil, err
	}

	return events, nil
}

func (s *EventService) GetLocationEventCount(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) (int32, error) {
	today := time.Now().Format(helpers.DateLayout)

	keyCond := expression.Key("locationId").Equal(expression.Value(locationId)).
		And(expression.Key("startDate").GreaterThanEqual(expression.Value(today)))
	filt := expression.Name("tenantId").Equal(expression.Value(tenantId)).
		And(expression.Name("status").Equal(expression.Value(helpers.EventStatusPublished)))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filt).Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build query expression: %w", err)
	}

	var count int32
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(eventsTableName),
			IndexName:                 aws.String(locationIdGsi),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Select:                    dynamodb_types.SelectCount,
			ExclusiveStartKey:         token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return 0, err
		}

		count += result.Count
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return count, nil
}

// CheckLocationAvailability reports whether a candidate booking at a location
// collides with any existing event there. The index prunes on
// existing.startDate <= candidate.endDate; the exact predicate runs here
// through helpers.DateRangesOverlap and helpers.TimeRangesOverlap. Date
// bounds are inclusive; the optional HH:MM bounds use the strict overlap
// test, and an existing event with no start time (all-day) always conflicts.
func (s *EventService) CheckLocationAvailability(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, query internal_types.AvailabilityQuery) (*internal_types.AvailabilityResult, error) {
	if err := validate.Struct(query); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	keyCondition := "locationId = :locationId AND startDate <= :endDate"
	filterParts := []string{
		"tenantId = :tenantId",
		"#status <> :cancelled",
	}
	names := map[string]string{"#status": "status"}
	values := map[string]dynamodb_types.AttributeValue{
		":locationId": &dynamodb_types.AttributeValueMemberS{Value: query.LocationId},
		":endDate":    &dynamodb_types.AttributeValueMemberS{Value: query.EndDate},
		":tenantId":   &dynamodb_types.AttributeValueMemberS{Value: query.TenantId},
		":cancelled":  &dynamodb_types.AttributeValueMemberS{Value: helpers.EventStatusCancelled},
	}

	if query.ExcludeEventId != "" {
		filterParts = append(filterParts, "id <> :excludeEventId")
		values[":excludeEventId"] = &dynamodb_types.AttributeValueMemberS{Value: query.ExcludeEventId}
	}

	var count int32
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(eventsTableName),
			IndexName:                 aws.String(locationIdGsi),
			KeyConditionExpression:    aws.String(keyCondition),
			FilterExpression:          aws.String(strings.Join(filterParts, " AND ")),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			var existing internal_types.Event
			if err := attributevalue.UnmarshalMap(item, &existing); err != nil {
				return nil, err
			}
			if eventConflictsWith(existing, query) {
				count++
			}
		}

		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return &internal_types.AvailabilityResult{
		HasConflict:   count > 0,
		ConflictCount: count,
	}, nil
}

func eventConflictsWith(existing internal_types.Event, query internal_types.AvailabilityQuery) bool {
	if !helpers.DateRangesOverlap(query.StartDate, query.EndDate, existing.StartDate, existing.EndDate) {
		return false
	}
	if query.StartTime == "" || query.EndTime == "" {
		return true
	}
	// all-day rows conflict regardless of the candidate's time bounds
	if existing.StartTime == "" {
		return true
	}
	return helpers.TimeRangesOverlap(query.StartTime, query.EndTime, existing.StartTime, existing.EndTime)
}

// UpdateEvent applies a partial update to one event row. When the row is a
// series parent and the payload touches any RSVP-relevant field, that subset
// (and only that subset) is fanned out to every child occurrence. There is no
// cross-row transaction: a child fan-out failure leaves the parent committed.
func (s *EventService) UpdateEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error {
	existing, err := s.GetEventById(ctx, dynamodbClient, eventId, tenantId)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("event not found")
	}

	setParts, names, values := buildEventUpdateParts(update)
	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(eventsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: eventId},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(setParts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	_, err = dynamodbClient.UpdateItem(ctx, input)
	if err != nil {
		return err
	}

	patch := update.RsvpSettings()
	if patch.IsEmpty() {
		return nil
	}

	return s.propagateRsvpSettings(ctx, dynamodbClient, eventId, patch)
}

// propagateRsvpSettings cascades the RSVP-relevant fields of a parent update
// to every child occurrence of the series.
func (s *EventService) propagateRsvpSettings(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, parentEventId string, patch internal_types.RsvpSettingsPatch) error {
	childIds, err := s.getChildEventIds(ctx, dynamodbClient, parentEventId)
	if err != nil {
		return err
	}

	setParts := []string{}
	names := map[string]string{}
	values := map[string]dynamodb_types.AttributeValue{}

	if patch.RequiresRsvp != nil {
		setParts = append(setParts, "#requiresRsvp = :requiresRsvp")
		names["#requiresRsvp"] = "requiresRsvp"
		values[":requiresRsvp"] = &dynamodb_types.AttributeValueMemberBOOL{Value: *patch.RequiresRsvp}
	}
	if patch.MaxAttendees != nil {
		setParts = append(setParts, "#maxAttendees = :maxAttendees")
		names["#maxAttendees"] = "maxAttendees"
		values[":maxAttendees"] = &dynamodb_types.AttributeValueMemberN{Value: strconv.FormatInt(int64(*patch.MaxAttendees), 10)}
	}
	if patch.RsvpDeadline != nil {
		setParts = append(setParts, "#rsvpDeadline = :rsvpDeadline")
		names["#rsvpDeadline"] = "rsvpDeadline"
		values[":rsvpDeadline"] = &dynamodb_types.AttributeValueMemberS{Value: *patch.RsvpDeadline}
	}

	setParts = append(setParts, "#updatedAt = :updatedAt")
	names["#updatedAt"] = "updatedAt"
	updatedAt, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return err
	}
	values[":updatedAt"] = updatedAt

	for _, childId := range childIds {
		input := &dynamodb.UpdateItemInput{
			TableName: aws.String(eventsTableName),
			Key: map[string]dynamodb_types.AttributeValue{
				"id": &dynamodb_types.AttributeValueMemberS{Value: childId},
			},
			UpdateExpression:          aws.String("SET " + strings.Join(setParts, ", ")),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		}

		if _, err := dynamodbClient.UpdateItem(ctx, input); err != nil {
			return fmt.Errorf("failed to propagate rsvp settings to event %s: %w", childId, err)
		}
	}

	return nil
}

func (s *EventService) getChildEventIds(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, parentEventId string) ([]string, error) {
	childIds := make([]string, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(eventsTableName),
			IndexName:              aws.String(parentEventIdGsi),
			KeyConditionExpression: aws.String("parentEventId = :parentEventId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":parentEventId": &dynamodb_types.AttributeValueMemberS{Value: parentEventId},
			},
			ProjectionExpression: aws.String("id"),
			ExclusiveStartKey:    token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, item := range result.Items {
			var row struct {
				Id string `dynamodbav:"id"`
			}
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				return nil, err
			}
			childIds = append(childIds, row.Id)
		}

		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return childIds, nil
}

func buildEventUpdateParts(update internal_types.EventUpdate) ([]string, map[string]string, map[string]dynamodb_types.AttributeValue) {
	setParts := []string{}
	names := map[string]string{}
	values := map[string]dynamodb_types.AttributeValue{}

	addString := func(attr string, value *string) {
		if value == nil {
			return
		}
		setParts = append(setParts, "#"+attr+" = :"+attr)
		names["#"+attr] = attr
		values[":"+attr] = &dynamodb_types.AttributeValueMemberS{Value: *value}
	}
	addBool := func(attr string, value *bool) {
		if value == nil {
			return
		}
		setParts = append(setParts, "#"+attr+" = :"+attr)
		names["#"+attr] = attr
		values[":"+attr] = &dynamodb_types.AttributeValueMemberBOOL{Value: *value}
	}

	addString("title", update.Title)
	addString("description", update.Description)
	addString("startDate", update.StartDate)
	addString("startTime", update.StartTime)
	addString("endDate", update.EndDate)
	addString("endTime", update.EndTime)
	addString("timezone", update.Timezone)
	addBool("isAllDay", update.IsAllDay)
	addString("status", update.Status)
	addString("categoryId", update.CategoryId)
	addString("locationType", update.LocationType)
	addString("locationId", update.LocationId)
	addString("customLocationName", update.CustomLocationName)
	addBool("requiresRsvp", update.RequiresRsvp)
	addString("rsvpDeadline", update.RsvpDeadline)

	if update.MaxAttendees != nil {
		setParts = append(setParts, "#maxAttendees = :maxAttendees")
		names["#maxAttendees"] = "maxAttendees"
		values[":maxAttendees"] = &dynamodb_types.AttributeValueMemberN{Value: strconv.FormatInt(int64(*update.MaxAttendees), 10)}
	}

	if len(setParts) > 0 {
		setParts = append(setParts, "#updatedAt = :updatedAt")
		names["#updatedAt"] = "updatedAt"
		values[":updatedAt"] = &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)}
	}

	return setParts, names, values
}

func (s *EventService) CancelEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reason, cancelledBy string, uncancel bool) error {
	existing, err := s.GetEventById(ctx, dynamodbClient, eventId, tenantId)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("event not found")
	}

	status := helpers.EventStatusCancelled
	cancelledAt := time.Now().Format(time.RFC3339)
	if uncancel {
		status = helpers.EventStatusPublished
		reason = ""
		cancelledAt = ""
		cancelledBy = ""
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(eventsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: eventId},
		},
		UpdateExpression: aws.String("SET #status = :status, #cancellationReason = :cancellationReason, #cancelledAt = :cancelledAt, #cancelledBy = :cancelledBy, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#status":             "status",
			"#cancellationReason": "cancellationReason",
			"#cancelledAt":        "cancelledAt",
			"#cancelledBy":        "cancelledBy",
			"#updatedAt":          "updatedAt",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":status":             &dynamodb_types.AttributeValueMemberS{Value: status},
			":cancellationReason": &dynamodb_types.AttributeValueMemberS{Value: reason},
			":cancelledAt":        &dynamodb_types.AttributeValueMemberS{Value: cancelledAt},
			":cancelledBy":        &dynamodb_types.AttributeValueMemberS{Value: cancelledBy},
			":updatedAt":          &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	}

	_, err = dynamodbClient.UpdateItem(ctx, input)
	return err
}

func (s *EventService) DeleteEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) error {
	existing, err := s.GetEventById(ctx, dynamodbClient, eventId, tenantId)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("event not found")
	}

	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(eventsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: eventId},
		},
	}

	_, err = dynamodbClient.DeleteItem(ctx, input)
	if err != nil {
		return err
	}

	log.Printf("event %s deleted", eventId)
	return nil
}

func (s *EventService) FlagEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reportedBy, reason string) error {
	getInput := &dynamodb.GetItemInput{
		TableName: aws.String(eventFlagsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"eventId":    &dynamodb_types.AttributeValueMemberS{Value: eventId},
			"reportedBy": &dynamodb_types.AttributeValueMemberS{Value: reportedBy},
		},
	}

	existing, err := dynamodbClient.GetItem(ctx, getInput)
	if err != nil {
		return err
	}
	if len(existing.Item) > 0 {
		return fmt.Errorf("You have already flagged this event")
	}

	flag := internal_types.EventFlag{
		EventId:    eventId,
		ReportedBy: reportedBy,
		TenantId:   tenantId,
		Reason:     reason,
		Status:     "pending",
		CreatedAt:  time.Now(),
	}

	item, err := attributevalue.MarshalMap(&flag)
	if err != nil {
		return err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(eventFlagsTableName),
		Item:      item,
	})
	return err
}

func (s *EventService) DismissEventFlag(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, reportedBy string) error {
	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(eventFlagsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"eventId":    &dynamodb_types.AttributeValueMemberS{Value: eventId},
			"reportedBy": &dynamodb_types.AttributeValueMemberS{Value: reportedBy},
		},
		UpdateExpression: aws.String("SET #status = :status"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":status": &dynamodb_types.AttributeValueMemberS{Value: "dismissed"},
		},
	}

	_, err := dynamodbClient.UpdateItem(ctx, input)
	return err
}

func (s *EventService) InsertEventCategory(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, category internal_types.EventCategoryInsert) (*internal_types.EventCategory, error) {
	if err := validate.Struct(category); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	color := category.Color
	if color != "" {
		normalized, err := helpers.NormalizeHexColor(color)
		if err != nil {
			return nil, err
		}
		color = normalized
	}

	newCategory := internal_types.EventCategory{
		Id:       uuid.NewString(),
		TenantId: category.TenantId,
		Name:     category.Name,
		Color:    color,
		Icon:     category.Icon,
	}

	item, err := attributevalue.MarshalMap(&newCategory)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(eventCategoriesTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newCategory, nil
}

func (s *EventService) GetEventCategoriesByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.EventCategory, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(eventCategoriesTableName),
		IndexName:              aws.String(tenantIdGsi),
		KeyConditionExpression: aws.String("tenantId = :tenantId"),
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":tenantId": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
		},
	}

	result, err := dynamodbClient.Query(ctx, input)
	if err != nil {
		return nil, err
	}

	var categories []internal_types.EventCategory
	err = attributevalue.UnmarshalListOfMaps(result.Items, &categories)
	if err != nil {
		return nil, err
	}

	return categories, nil
}

type MockEventService struct {
	InsertEventFunc                  func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event internal_types.EventInsert) (*internal_types.Event, error)
	GetEventByIdFunc                 func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error)
	GetEventsByTenantIDFunc          func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Event, error)
	GetUpcomingEventsFunc            func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, limit int32) ([]internal_types.Event, error)
	GetEventsByLocationIDFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) ([]internal_types.Event, error)
	GetLocationEventCountFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) (int32, error)
	CheckLocationAvailabilityFunc    func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, query internal_types.AvailabilityQuery) (*internal_types.AvailabilityResult, error)
	UpdateEventFunc                  func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error
	CancelEventFunc                  func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reason, cancelledBy string, uncancel bool) error
	DeleteEventFunc                  func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) error
	FlagEventFunc                    func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reportedBy, reason string) error
	DismissEventFlagFunc             func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, reportedBy string) error
	InsertEventCategoryFunc          func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, category internal_types.EventCategoryInsert) (*internal_types.EventCategory, error)
	GetEventCategoriesByTenantIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.EventCategory, error)
}

func (m *MockEventService) InsertEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event internal_types.EventInsert) (*internal_types.Event, error) {
	return m.InsertEventFunc(ctx, dynamodbClient, event)
}

func (m *MockEventService) GetEventById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
	return m.GetEventByIdFunc(ctx, dynamodbClient, eventId, tenantId)
}

func (m *MockEventService) GetEventsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Event, error) {
	return m.GetEventsByTenantIDFunc(ctx, dynamodbClient, tenantId, statuses)
}

func (m *MockEventService) GetUpcomingEvents(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, limit int32) ([]internal_types.Event, error) {
	return m.GetUpcomingEventsFunc(ctx, dynamodbClient, tenantId, limit)
}

func (m *MockEventService) GetEventsByLocationID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) ([]internal_types.Event, error) {
	return m.GetEventsByLocationIDFunc(ctx, dynamodbClient, locationId, tenantId)
}

func (m *MockEventService) GetLocationEventCount(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) (int32, error) {
	return m.GetLocationEventCountFunc(ctx, dynamodbClient, locationId, tenantId)
}

func (m *MockEventService) CheckLocationAvailability(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, query internal_types.AvailabilityQuery) (*internal_types.AvailabilityResult, error) {
	return m.CheckLocationAvailabilityFunc(ctx, dynamodbClient, query)
}

func (m *MockEventService) UpdateEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error {
	return m.UpdateEventFunc(ctx, dynamodbClient, eventId, tenantId, update)
}

func (m *MockEventService) CancelEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reason, cancelledBy string, uncancel bool) error {
	return m.CancelEventFunc(ctx, dynamodbClient, eventId, tenantId, reason, cancelledBy, uncancel)
}

func (m *MockEventService) DeleteEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) error {
	return m.DeleteEventFunc(ctx, dynamodbClient, eventId, tenantId)
}

func (m *MockEventService) FlagEvent(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reportedBy, reason string) error {
	return m.FlagEventFunc(ctx, dynamodbClient, eventId, tenantId, reportedBy, reason)
}

func (m *MockEventService) DismissEventFlag(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, reportedBy string) error {
	return m.DismissEventFlagFunc(ctx, dynamodbClient, eventId, reportedBy)
}

func (m *MockEventService) InsertEventCategory(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, category internal_types.EventCategoryInsert) (*internal_types.EventCategory, error) {
	return m.InsertEventCategoryFunc(ctx, dynamodbClient, category)
}

func (m *MockEventService) GetEventCategoriesByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.EventCategory, error) {
	return m.GetEventCategoriesByTenantIDFunc(ctx, dynamodbClient, tenantId)
}
