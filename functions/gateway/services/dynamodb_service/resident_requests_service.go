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

var residentRequestsTableName = helpers.GetDbTableName(helpers.ResidentRequestsTablePrefix)

func init() {
	residentRequestsTableName = helpers.GetDbTableName(helpers.ResidentRequestsTablePrefix)
}

const (
	RequestStatusOpen       = "open"
	RequestStatusInProgress = "in_progress"
	RequestStatusResolved   = "resolved"
	RequestStatusClosed     = "closed"
)

// requestStatusTransitions is the allowed forward edge set; resolved and
// closed are terminal.
var requestStatusTransitions = map[string][]string{
	RequestStatusOpen:       {RequestStatusInProgress, RequestStatusResolved, RequestStatusClosed},
	RequestStatusInProgress: {RequestStatusResolved, RequestStatusClosed},
}

type ResidentRequestService struct{}

func NewResidentRequestService() internal_types.ResidentRequestServiceInterface {
	return &ResidentRequestService{}
}

func (s *ResidentRequestService) InsertResidentRequest(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, request internal_types.ResidentRequestInsert) (*internal_types.ResidentRequest, error) {
	if err := validate.Struct(request); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if request.Visibility == "" {
		request.Visibility = "private"
	}

	now := time.Now()
	newRequest := internal_types.ResidentRequest{
		Id:          uuid.NewString(),
		TenantId:    request.TenantId,
		UserId:      request.UserId,
		Title:       request.Title,
		Description: request.Description,
		Category:    request.Category,
		Visibility:  request.Visibility,
		Status:      RequestStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	item, err := attributevalue.MarshalMap(&newRequest)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(residentRequestsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newRequest, nil
}

func (s *ResidentRequestService) GetRequestById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId string) (*internal_types.ResidentRequest, error) {
	result, err := dynamodbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(residentRequestsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: requestId},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var request internal_types.ResidentRequest
	err = attributevalue.UnmarshalMap(result.Item, &request)
	if err != nil {
		return nil, err
	}

	if request.TenantId != tenantId {
		return nil, nil
	}

	return &request, nil
}

func (s *ResidentRequestService) GetRequestsByUserID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ResidentRequest, error) {
	requests := make([]internal_types.ResidentRequest, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(residentRequestsTableName),
			IndexName:              aws.String(userIdGsi),
			KeyConditionExpression: aws.String("userId = :userId"),
			FilterExpression:       aws.String("tenantId = :tenantId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":userId":   &dynamodb_types.AttributeValueMemberS{Value: userId},
				":tenantId": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.ResidentRequest
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		requests = append(requests, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return requests, nil
}

func (s *ResidentRequestService) GetRequestsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error) {
	return s.queryByTenant(ctx, dynamodbClient, tenantId, "")
}

// GetCommunityRequests returns only the requests residents chose to share with
// the whole community.
func (s *ResidentRequestService) GetCommunityRequests(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error) {
	return s.queryByTenant(ctx, dynamodbClient, tenantId, "community")
}

func (s *ResidentRequestService) queryByTenant(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId, visibility string) ([]internal_types.ResidentRequest, error) {
	requests := make([]internal_types.ResidentRequest, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(residentRequestsTableName),
			IndexName:              aws.String(tenantIdGsi),
			KeyConditionExpression: aws.String("tenantId = :tenantId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":tenantId": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: token,
		}
		if visibility != "" {
			input.FilterExpression = aws.String("visibility = :visibility")
			input.ExpressionAttributeValues[":visibility"] = &dynamodb_types.AttributeValueMemberS{Value: visibility}
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.ResidentRequest
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		requests = append(requests, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return requests, nil
}

func (s *ResidentRequestService) UpdateRequestStatus(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, status string) (*internal_types.ResidentRequest, error) {
	request, err := s.GetRequestById(ctx, dynamodbClient, requestId, tenantId)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request not found")
	}

	allowed := false
	for _, next := range requestStatusTransitions[request.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("cannot move a %s request to %s", request.Status, status)
	}

	result, err := dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(residentRequestsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: requestId},
		},
		UpdateExpression: aws.String("SET #status = :status, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#status":    "status",
			"#updatedAt": "updatedAt",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":status":    &dynamodb_types.AttributeValueMemberS{Value: status},
			":updatedAt": &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
		ReturnValues: dynamodb_types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}

	var updated internal_types.ResidentRequest
	err = attributevalue.UnmarshalMap(result.Attributes, &updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *ResidentRequestService) AddAdminReply(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, reply, repliedBy string) (*internal_types.ResidentRequest, error) {
	request, err := s.GetRequestById(ctx, dynamodbClient, requestId, tenantId)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, fmt.Errorf("request not found")
	}

	result, err := dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(residentRequestsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: requestId},
		},
		UpdateExpression: aws.String("SET #adminReply = :adminReply, #repliedBy = :repliedBy, #repliedAt = :repliedAt, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#adminReply": "adminReply",
			"#repliedBy":  "repliedBy",
			"#repliedAt":  "repliedAt",
			"#updatedAt":  "updatedAt",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":adminReply": &dynamodb_types.AttributeValueMemberS{Value: reply},
			":repliedBy":  &dynamodb_types.AttributeValueMemberS{Value: repliedBy},
			":repliedAt":  &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
			":updatedAt":  &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
		ReturnValues: dynamodb_types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}

	var updated internal_types.ResidentRequest
	err = attributevalue.UnmarshalMap(result.Attributes, &updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

type MockResidentRequestService struct {
	InsertResidentRequestFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, request internal_types.ResidentRequestInsert) (*internal_types.ResidentRequest, error)
	GetRequestByIdFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId string) (*internal_types.ResidentRequest, error)
	GetRequestsByUserIDFunc   func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ResidentRequest, error)
	GetRequestsByTenantIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error)
	GetCommunityRequestsFunc  func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error)
	UpdateRequestStatusFunc   func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, status string) (*internal_types.ResidentRequest, error)
	AddAdminReplyFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, reply, repliedBy string) (*internal_types.ResidentRequest, error)
}

func (m *MockResidentRequestService) InsertResidentRequest(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, request internal_types.ResidentRequestInsert) (*internal_types.ResidentRequest, error) {
	return m.InsertResidentRequestFunc(ctx, dynamodbClient, request)
}

func (m *MockResidentRequestService) GetRequestById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId string) (*internal_types.ResidentRequest, error) {
	return m.GetRequestByIdFunc(ctx, dynamodbClient, requestId, tenantId)
}

func (m *MockResidentRequestService) GetRequestsByUserID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ResidentRequest, error) {
	return m.GetRequestsByUserIDFunc(ctx, dynamodbClient, userId, tenantId)
}

func (m *MockResidentRequestService) GetRequestsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error) {
	return m.GetRequestsByTenantIDFunc(ctx, dynamodbClient, tenantId)
}

func (m *MockResidentRequestService) GetCommunityRequests(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error) {
	return m.GetCommunityRequestsFunc(ctx, dynamodbClient, tenantId)
}

func (m *MockResidentRequestService) UpdateRequestStatus(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, status string) (*internal_types.ResidentRequest, error) {
	return m.UpdateRequestStatusFunc(ctx, dynamodbClient, requestId, tenantId, status)
}

func (m *MockResidentRequestService) AddAdminReply(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, reply, repliedBy string) (*internal_types.ResidentRequest, error) {
	return m.AddAdminReplyFunc(ctx, dynamodbClient, requestId, tenantId, reply, repliedBy)
}
