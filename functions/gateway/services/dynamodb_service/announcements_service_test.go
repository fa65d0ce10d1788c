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

func TestInsertAnnouncementStampsPublishedAt(t *testing.T) {
	service := NewAnnouncementService()
	mockDB := &test_helpers.MockDynamoDBClient{}

	announcement, err := service.InsertAnnouncement(context.Background(), mockDB, internal_types.AnnouncementInsert{
		TenantId: "tenant-123",
		Title:    "Pool closure",
		Body:     "The pool closes Friday for maintenance.",
		Status:   "published",
		AuthorId: "admin-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if announcement.PublishedAt == "" {
		t.Error("expected publishedAt to be stamped on publish")
	}
	if announcement.Priority != "normal" {
		t.Errorf("expected default priority normal, got %s", announcement.Priority)
	}

	draft, err := service.InsertAnnouncement(context.Background(), mockDB, internal_types.AnnouncementInsert{
		TenantId: "tenant-123",
		Title:    "Draft",
		Body:     "Not yet.",
		Status:   "draft",
		AuthorId: "admin-1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if draft.PublishedAt != "" {
		t.Errorf("expected no publishedAt on a draft, got %s", draft.PublishedAt)
	}
}

func TestSetAnnouncementsStatusAbortsOnForeignRow(t *testing.T) {
	service := NewAnnouncementService()

	rows := map[string]internal_types.Announcement{
		"a1": {Id: "a1", TenantId: "tenant-123", Status: "draft"},
		"a2": {Id: "a2", TenantId: "tenant-other", Status: "draft"},
	}
	updates := 0
	mockDB := &test_helpers.MockDynamoDBClient{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			id := params.Key["id"].(*dynamodb_types.AttributeValueMemberS).Value
			row, ok := rows[id]
			if !ok {
				return &dynamodb.GetItemOutput{}, nil
			}
			item, err := attributevalue.MarshalMap(&row)
			if err != nil {
				t.Fatalf("failed to marshal announcement: %v", err)
			}
			return &dynamodb.GetItemOutput{Item: item}, nil
		},
		UpdateItemFunc: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			updates++
			return &dynamodb.UpdateItemOutput{}, nil
		},
	}

	err := service.SetAnnouncementsStatus(context.Background(), mockDB, []string{"a1", "a2"}, "tenant-123", "published")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected tenant check to fail for the foreign row, got %v", err)
	}
	if updates != 0 {
		t.Errorf("expected no writes when the tenant check fails, got %d", updates)
	}
}

func TestSetAnnouncementsStatusPublishesBatch(t *testing.T) {
	service := NewAnnouncementService()

	rows := map[string]internal_types.Announcement{
		"a1": {Id: "a1", TenantId: "tenant-123", Status: "draft"},
		"a2": {Id: "a2", TenantId: "tenant-123", Status: "draft"},
	}
	var updated []*dynamodb.UpdateItemInput
	mockDB := &test_helpers.MockDynamoDBClient{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			id := params.Key["id"].(*dynamodb_types.AttributeValueMemberS).Value
			row := rows[id]
			item, err := attributevalue.MarshalMap(&row)
			if err != nil {
				t.Fatalf("failed to marshal announcement: %v", err)
			}
			return &dynamodb.GetItemOutput{Item: item}, nil
		},
		UpdateItemFunc: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			updated = append(updated, params)
			return &dynamodb.UpdateItemOutput{}, nil
		},
	}

	err := service.SetAnnouncementsStatus(context.Background(), mockDB, []string{"a1", "a2"}, "tenant-123", "published")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(updated) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updated))
	}
	for _, update := range updated {
		if !strings.Contains(*update.UpdateExpression, ":publishedAt") {
			t.Errorf("expected publishedAt stamped on publish, got %s", *update.UpdateExpression)
		}
	}
}

func TestDeleteAnnouncementsBatches(t *testing.T) {
	service := NewAnnouncementService()

	row := internal_types.Announcement{Id: "a1", TenantId: "tenant-123"}
	var batch *dynamodb.BatchWriteItemInput
	mockDB := &test_helpers.MockDynamoDBClient{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			item, err := attributevalue.MarshalMap(&row)
			if err != nil {
				t.Fatalf("failed to marshal announcement: %v", err)
			}
			return &dynamodb.GetItemOutput{Item: item}, nil
		},
		BatchWriteItemFunc: func(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
			batch = params
			return &dynamodb.BatchWriteItemOutput{}, nil
		},
	}

	if err := service.DeleteAnnouncements(context.Background(), mockDB, []string{"a1"}, "tenant-123"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if batch == nil {
		t.Fatal("expected a batch delete")
	}
	requests := batch.RequestItems[announcementsTableName]
	if len(requests) != 1 || requests[0].DeleteRequest == nil {
		t.Errorf("expected one delete request, got %+v", requests)
	}
}

func TestMarkAnnouncementRead(t *testing.T) {
	service := NewAnnouncementService()

	var putItem map[string]dynamodb_types.AttributeValue
	mockDB := &test_helpers.MockDynamoDBClient{
		PutItemFunc: func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			putItem = params.Item
			return &dynamodb.PutItemOutput{}, nil
		},
	}

	err := service.MarkAnnouncementRead(context.Background(), mockDB, internal_types.AnnouncementRead{
		AnnouncementId: "a1",
		UserId:         "user-123",
		TenantId:       "tenant-123",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if putItem == nil {
		t.Fatal("expected a write")
	}
	if got := putItem["announcementId"].(*dynamodb_types.AttributeValueMemberS).Value; got != "a1" {
		t.Errorf("expected read receipt for a1, got %s", got)
	}
}
