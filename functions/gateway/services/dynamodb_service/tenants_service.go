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

var tenantsTableName = helpers.GetDbTableName(helpers.TenantsTablePrefix)

func init() {
	tenantsTableName = helpers.GetDbTableName(helpers.TenantsTablePrefix)
}

const slugGsi = "slugGsi"

type TenantService struct{}

func NewTenantService() internal_types.TenantServiceInterface {
	return &TenantService{}
}

func (s *TenantService) InsertTenant(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenant internal_types.TenantInsert) (*internal_types.Tenant, error) {
	if err := validate.Struct(tenant); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	existing, err := s.GetTenantBySlug(ctx, dynamodbClient, tenant.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("slug %s is already taken", tenant.Slug)
	}

	newTenant := internal_types.Tenant{
		Id:                  uuid.NewString(),
		Slug:                tenant.Slug,
		Name:                tenant.Name,
		ReservationsEnabled: tenant.ReservationsEnabled,
		ExchangeEnabled:     tenant.ExchangeEnabled,
		CreatedAt:           time.Now(),
	}

	item, err := attributevalue.MarshalMap(&newTenant)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tenantsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newTenant, nil
}

func (s *TenantService) GetTenantById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) (*internal_types.Tenant, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(tenantsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var tenant internal_types.Tenant
	err = attributevalue.UnmarshalMap(result.Item, &tenant)
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

func (s *TenantService) GetTenantBySlug(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, slug string) (*internal_types.Tenant, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(tenantsTableName),
		IndexName:              aws.String(slugGsi),
		KeyConditionExpression: aws.String("slug = :slug"),
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":slug": &dynamodb_types.AttributeValueMemberS{Value: slug},
		},
		Limit: aws.Int32(1),
	}

	result, err := dynamodbClient.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	var tenant internal_types.Tenant
	err = attributevalue.UnmarshalMap(result.Items[0], &tenant)
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

type MockTenantService struct {
	InsertTenantFunc    func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenant internal_types.TenantInsert) (*internal_types.Tenant, error)
	GetTenantByIdFunc   func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) (*internal_types.Tenant, error)
	GetTenantBySlugFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, slug string) (*internal_types.Tenant, error)
}

func (m *MockTenantService) InsertTenant(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenant internal_types.TenantInsert) (*internal_types.Tenant, error) {
	return m.InsertTenantFunc(ctx, dynamodbClient, tenant)
}

func (m *MockTenantService) GetTenantById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) (*internal_types.Tenant, error) {
	return m.GetTenantByIdFunc(ctx, dynamodbClient, tenantId)
}

func (m *MockTenantService) GetTenantBySlug(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, slug string) (*internal_types.Tenant, error) {
	return m.GetTenantBySlugFunc(ctx, dynamodbClient, slug)
}
