package dynamodb_service

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/villagehq/api/functions/gateway/helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var reservationsTableName = helpers.GetDbTableName(helpers.ReservationsTablePrefix)

func init() {
	reservationsTableName = helpers.GetDbTableName(helpers.ReservationsTablePrefix)
}

type ReservationService struct{}

func NewReservationService() internal_types.ReservationServiceInterface {
	return &ReservationService{}
}

// CreateReservation books a reservable facility for a resident. The guard
// chain runs in order: community toggle, facility reservability, time bounds,
// per-user quota, then the strict overlap check against confirmed bookings.
func (s *ReservationService) CreateReservation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservation internal_types.ReservationInsert) (*internal_types.Reservation, error) {
	if err := validate.Struct(reservation); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	tenantService := &TenantService{}
	tenant, err := tenantService.GetTenantById(ctx, dynamodbClient, reservation.TenantId)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, fmt.Errorf("tenant not found")
	}
	if !tenant.ReservationsEnabled {
		return nil, fmt.Errorf("reservations are disabled for this community")
	}

	locationService := &LocationService{}
	location, err := locationService.GetLocationById(ctx, dynamodbClient, reservation.LocationId, reservation.TenantId)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, fmt.Errorf("location not found")
	}
	if !location.IsReservable {
		return nil, fmt.Errorf("location is not reservable")
	}

	startTime, err := helpers.NormalizeDateTime(reservation.StartTime)
	if err != nil {
		return nil, err
	}
	endTime, err := helpers.NormalizeDateTime(reservation.EndTime)
	if err != nil {
		return nil, err
	}

	start, _ := time.Parse(time.RFC3339, startTime)
	end, _ := time.Parse(time.RFC3339, endTime)

	if start.Before(time.Now()) {
		return nil, fmt.Errorf("reservation cannot start in the past")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("reservation must end after it starts")
	}
	if end.Sub(start) > helpers.MaxReservationHours*time.Hour {
		return nil, fmt.Errorf("reservation cannot exceed %d hours", helpers.MaxReservationHours)
	}

	active, err := s.countActiveReservations(ctx, dynamodbClient, reservation.UserId)
	if err != nil {
		return nil, err
	}
	if active >= helpers.MaxActiveReservationsPerUser {
		return nil, fmt.Errorf("you already have %d active reservations", helpers.MaxActiveReservationsPerUser)
	}

	conflicts, err := s.countOverlappingReservations(ctx, dynamodbClient, reservation.LocationId, reservation.TenantId, startTime, endTime)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, fmt.Errorf("location is already reserved for that time")
	}

	now := time.Now()
	newReservation := internal_types.Reservation{
		Id:         uuid.NewString(),
		TenantId:   reservation.TenantId,
		LocationId: reservation.LocationId,
		UserId:     reservation.UserId,
		Title:      reservation.Title,
		Notes:      reservation.Notes,
		StartTime:  startTime,
		EndTime:    endTime,
		Status:     helpers.ReservationStatusConfirmed,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	item, err := attributevalue.MarshalMap(&newReservation)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(reservationsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newReservation, nil
}

// countActiveReservations counts a user's confirmed bookings that have not
// ended yet.
func (s *ReservationService) countActiveReservations(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (int32, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var count int32
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(reservationsTableName),
			IndexName:              aws.String(userIdGsi),
			KeyConditionExpression: aws.String("userId = :userId"),
			FilterExpression:       aws.String("#status = :confirmed AND endTime > :now"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":userId":    &dynamodb_types.AttributeValueMemberS{Value: userId},
				":confirmed": &dynamodb_types.AttributeValueMemberS{Value: helpers.ReservationStatusConfirmed},
				":now":       &dynamodb_types.AttributeValueMemberS{Value: now},
			},
			Select:            dynamodb_types.SelectCount,
			ExclusiveStartKey: token,
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

// countOverlappingReservations applies the strict overlap test against
// confirmed bookings at a location. Touching endpoints do not conflict.
func (s *ReservationService) countOverlappingReservations(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId, startTime, endTime string) (int32, error) {
	var count int32
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(reservationsTableName),
			IndexName:              aws.String(locationIdGsi),
			KeyConditionExpression: aws.String("locationId = :locationId AND startTime < :endTime"),
			FilterExpression:       aws.String("tenantId = :tenantId AND #status = :confirmed AND endTime > :startTime"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":locationId": &dynamodb_types.AttributeValueMemberS{Value: locationId},
				":tenantId":   &dynamodb_types.AttributeValueMemberS{Value: tenantId},
				":confirmed":  &dynamodb_types.AttributeValueMemberS{Value: helpers.ReservationStatusConfirmed},
				":startTime":  &dynamodb_types.AttributeValueMemberS{Value: startTime},
				":endTime":    &dynamodb_types.AttributeValueMemberS{Value: endTime},
			},
			Select:            dynamodb_types.SelectCount,
			ExclusiveStartKey: token,
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

func (s *ReservationService) GetReservationById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservationId, tenantId string) (*internal_types.Reservation, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(reservationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: reservationId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var reservation internal_types.Reservation
	err = attributevalue.UnmarshalMap(result.Item, &reservation)
	if err != nil {
		return nil, err
	}

	if reservation.TenantId != tenantId {
		return nil, nil
	}

	return &reservation, nil
}

func (s *ReservationService) GetReservationsByLocationID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) ([]internal_types.Reservation, error) {
	reservations := make([]internal_types.Reservation, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(reservationsTableName),
			IndexName:              aws.String(locationIdGsi),
			KeyConditionExpression: aws.String("locationId = :locationId"),
			FilterExpression:       aws.String("tenantId = :tenantId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":locationId": &dynamodb_types.AttributeValueMemberS{Value: locationId},
				":tenantId":   &dynamodb_types.AttributeValueMemberS{Value: tenantId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.Reservation
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return reservations, nil
}

func (s *ReservationService) GetUserReservations(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) ([]internal_types.Reservation, error) {
	reservations := make([]internal_types.Reservation, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(reservationsTableName),
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

		var fetched []internal_types.Reservation
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return reservations, nil
}

// CancelReservation lets the owner or a community admin cancel a confirmed
// booking.
func (s *ReservationService) CancelReservation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservationId, tenantId, cancelledBy, reason string, isAdmin bool) (*internal_types.Reservation, error) {
	reservation, err := s.GetReservationById(ctx, dynamodbClient, reservationId, tenantId)
	if err != nil {
		return nil, err
	}
	if reservation == nil {
		return nil, fmt.Errorf("reservation not found")
	}
	if reservation.UserId != cancelledBy && !isAdmin {
		return nil, fmt.Errorf("you can only cancel your own reservations")
	}
	if reservation.Status == helpers.ReservationStatusCancelled {
		return reservation, nil
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(reservationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: reservationId},
		},
		UpdateExpression: aws.String("SET #status = :status, #cancellationReason = :reason, #cancelledBy = :cancelledBy, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#status":             "status",
			"#cancellationReason": "cancellationReason",
			"#cancelledBy":        "cancelledBy",
			"#updatedAt":          "updatedAt",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":status":      &dynamodb_types.AttributeValueMemberS{Value: helpers.ReservationStatusCancelled},
			":reason":      &dynamodb_types.AttributeValueMemberS{Value: reason},
			":cancelledBy": &dynamodb_types.AttributeValueMemberS{Value: cancelledBy},
			":updatedAt":   &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
		ReturnValues: dynamodb_types.ReturnValueAllNew,
	}

	result, err := dynamodbClient.UpdateItem(ctx, input)
	if err != nil {
		return nil, err
	}

	var cancelled internal_types.Reservation
	err = attributevalue.UnmarshalMap(result.Attributes, &cancelled)
	if err != nil {
		return nil, err
	}

	return &cancelled, nil
}

type MockReservationService struct {
	CreateReservationFunc           func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservation internal_types.ReservationInsert) (*internal_types.Reservation, error)
	GetReservationByIdFunc          func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservationId, tenantId string) (*internal_types.Reservation, error)
	GetReservationsByLocationIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) ([]internal_types.Reservation, error)
	GetUserReservationsFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) ([]internal_types.Reservation, error)
	CancelReservationFunc           func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservationId, tenantId, cancelledBy, reason string, isAdmin bool) (*internal_types.Reservation, error)
}

func (m *MockReservationService) CreateReservation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservation internal_types.ReservationInsert) (*internal_types.Reservation, error) {
	return m.CreateReservationFunc(ctx, dynamodbClient, reservation)
}

func (m *MockReservationService) GetReservationById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservationId, tenantId string) (*internal_types.Reservation, error) {
	return m.GetReservationByIdFunc(ctx, dynamodbClient, reservationId, tenantId)
}

func (m *MockReservationService) GetReservationsByLocationID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) ([]internal_types.Reservation, error) {
	return m.GetReservationsByLocationIDFunc(ctx, dynamodbClient, locationId, tenantId)
}

func (m *MockReservationService) GetUserReservations(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) ([]internal_types.Reservation, error) {
	return m.GetUserReservationsFunc(ctx, dynamodbClient, userId)
}

func (m *MockReservationService) CancelReservation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, reservationId, tenantId, cancelledBy, reason string, isAdmin bool) (*internal_types.Reservation, error) {
	return m.CancelReservationFunc(ctx, dynamodbClient, reservationId, tenantId, cancelledBy, reason, isAdmin)
}
