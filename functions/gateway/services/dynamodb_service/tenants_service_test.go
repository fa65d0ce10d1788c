package dynamodb_service

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/villagehq/api/functions/gateway/test_helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

func TestInsertTenantRejectsTakenSlug(t *testing.T) {
	service := NewTenantService()

	existing := internal_types.Tenant{Id: "tenant-1", Slug: "maple-grove", Name: "Maple Grove"}
	item, err := attributevalue.MarshalMap(&existing)
	if err != nil {
		t.Fatalf("failed to marshal tenant: %v", err)
	}

	mockDB := &test_helpers.MockDynamoDBClient{
		QueryFunc: func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			if *params.IndexName != slugGsi {
				t.Errorf("expected slug lookup on %s, got %s", slugGsi, *params.IndexName)
			}
			return &dynamodb.QueryOutput{Items: []map[string]dynamodb_types.AttributeValue{item}, Count: 1}, nil
		},
		PutItemFunc: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			t.Error("expected no write for a taken slug")
			return &dynamodb.PutItemOutput{}, nil
		},
	}

	_, err = service.InsertTenant(context.Background(), mockDB, internal_types.TenantInsert{
		Slug: "maple-grove",
		Name: "Another Maple Grove",
	})
	if err == nil || !strings.Contains(err.Error(), "already taken") {
		t.Errorf("expected slug conflict error, got %v", err)
	}
}

func TestGetTenantBySlugNotFound(t *testing.T) {
	service := NewTenantService()

	mockDB := &test_helpers.MockDynamoDBClient{
		QueryFunc: func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{}, nil
		},
	}

	tenant, err := service.GetTenantBySlug(context.Background(), mockDB, "nowhere")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tenant != nil {
		t.Errorf("expected nil for an unknown slug, got %+v", tenant)
	}
}

func TestInsertTenant(t *testing.T) {
	service := NewTenantService()

	var putItem map[string]dynamodb_types.AttributeValue
	mockDB := &test_helpers.MockDynamoDBClient{
		PutItemFunc: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			putItem = params.Item
			return &dynamodb.PutItemOutput{}, nil
		},
	}

	tenant, err := service.InsertTenant(context.Background(), mockDB, internal_types.TenantInsert{
		Slug:                "maple-grove",
		Name:                "Maple Grove",
		ReservationsEnabled: true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tenant.Id == "" {
		t.Error("expected a generated id")
	}
	if !tenant.ReservationsEnabled {
		t.Error("expected reservations enabled")
	}
	if putItem == nil {
		t.Fatal("expected a write")
	}
}
