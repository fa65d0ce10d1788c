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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/villagehq/api/functions/gateway/helpers"
	"github.com/villagehq/api/functions/gateway/services"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var locationsTableName = helpers.GetDbTableName(helpers.LocationsTablePrefix)

func init() {
	locationsTableName = helpers.GetDbTableName(helpers.LocationsTablePrefix)
}

type LocationService struct{}

func NewLocationService() internal_types.LocationServiceInterface {
	return &LocationService{}
}

func (s *LocationService) InsertLocation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, location internal_types.LocationInsert) (*internal_types.Location, error) {
	if err := validate.Struct(location); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	newLocation := internal_types.Location{
		Id:           uuid.NewString(),
		TenantId:     location.TenantId,
		Name:         location.Name,
		Type:         location.Type,
		Description:  location.Description,
		IsReservable: location.IsReservable,
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
		Amenities:    location.Amenities,
		HeroPhoto:    location.HeroPhoto,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if location.Latitude != 0 || location.Longitude != 0 {
		timezone, err := services.GetTimezone(location.Latitude, location.Longitude)
		if err != nil {
			log.Printf("could not resolve timezone for location %s: %v", newLocation.Id, err)
		} else {
			newLocation.Timezone = timezone
		}
	}

	item, err := attributevalue.MarshalMap(&newLocation)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(locationsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newLocation, nil
}

func (s *LocationService) GetLocationById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) (*internal_types.Location, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(locationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: locationId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var location internal_types.Location
	err = attributevalue.UnmarshalMap(result.Item, &location)
	if err != nil {
		return nil, err
	}

	if location.TenantId != tenantId {
		return nil, nil
	}

	return &location, nil
}

func (s *LocationService) GetLocationsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.Location, error) {
	locations := make([]internal_types.Location, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(locationsTableName),
			IndexName:              aws.String(tenantIdGsi),
			KeyConditionExpression: aws.String("tenantId = :tenantId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":tenantId": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.Location
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		locations = append(locations, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return locations, nil
}

func (s *LocationService) UpdateLocation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string, update internal_types.LocationUpdate) (*internal_types.Location, error) {
	existing, err := s.GetLocationById(ctx, dynamodbClient, locationId, tenantId)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, fmt.Errorf("location not found")
	}

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

	addString("name", update.Name)
	addString("type", update.Type)
	addString("description", update.Description)
	addString("heroPhoto", update.HeroPhoto)

	if update.IsReservable != nil {
		setParts = append(setParts, "#isReservable = :isReservable")
		names["#isReservable"] = "isReservable"
		values[":isReservable"] = &dynamodb_types.AttributeValueMemberBOOL{Value: *update.IsReservable}
	}

	movedCoords := false
	if update.Latitude != nil {
		setParts = append(setParts, "#latitude = :latitude")
		names["#latitude"] = "latitude"
		values[":latitude"] = &dynamodb_types.AttributeValueMemberN{Value: strconv.FormatFloat(*update.Latitude, 'f', -1, 64)}
		movedCoords = true
	}
	if update.Longitude != nil {
		setParts = append(setParts, "#longitude = :longitude")
		names["#longitude"] = "longitude"
		values[":longitude"] = &dynamodb_types.AttributeValueMemberN{Value: strconv.FormatFloat(*update.Longitude, 'f', -1, 64)}
		movedCoords = true
	}

	// a coordinate change can move the location into another timezone
	if movedCoords {
		lat, lng := existing.Latitude, existing.Longitude
		if update.Latitude != nil {
			lat = *update.Latitude
		}
		if update.Longitude != nil {
			lng = *update.Longitude
		}
		if timezone, err := services.GetTimezone(lat, lng); err == nil {
			setParts = append(setParts, "#timezone = :timezone")
			names["#timezone"] = "timezone"
			values[":timezone"] = &dynamodb_types.AttributeValueMemberS{Value: timezone}
		}
	}

	if len(setParts) == 0 {
		return existing, nil
	}

	setParts = append(setParts, "#updatedAt = :updatedAt")
	names["#updatedAt"] = "updatedAt"
	values[":updatedAt"] = &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(locationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: locationId},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(setParts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              dynamodb_types.ReturnValueAllNew,
	}

	result, err := dynamodbClient.UpdateItem(ctx, input)
	if err != nil {
		return nil, err
	}

	var updated internal_types.Location
	err = attributevalue.UnmarshalMap(result.Attributes, &updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *LocationService) DeleteLocation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) error {
	existing, err := s.GetLocationById(ctx, dynamodbClient, locationId, tenantId)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("location not found")
	}

	_, err = dynamodbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(locationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: locationId},
		},
	})
	return err
}

type MockLocationService struct {
	InsertLocationFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, location internal_types.LocationInsert) (*internal_types.Location, error)
	GetLocationByIdFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) (*internal_types.Location, error)
	GetLocationsByTenantIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.Location, error)
	UpdateLocationFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string, update internal_types.LocationUpdate) (*internal_types.Location, error)
	DeleteLocationFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) error
}

func (m *MockLocationService) InsertLocation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, location internal_types.LocationInsert) (*internal_types.Location, error) {
	return m.InsertLocationFunc(ctx, dynamodbClient, location)
}

func (m *MockLocationService) GetLocationById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) (*internal_types.Location, error) {
	return m.GetLocationByIdFunc(ctx, dynamodbClient, locationId, tenantId)
}

func (m *MockLocationService) GetLocationsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.Location, error) {
	return m.GetLocationsByTenantIDFunc(ctx, dynamodbClient, tenantId)
}

func (m *MockLocationService) UpdateLocation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string, update internal_types.LocationUpdate) (*internal_types.Location, error) {
	return m.UpdateLocationFunc(ctx, dynamodbClient, locationId, tenantId, update)
}

func (m *MockLocationService) DeleteLocation(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, locationId, tenantId string) error {
	return m.DeleteLocationFunc(ctx, dynamodbClient, locationId, tenantId)
}
