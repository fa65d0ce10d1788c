package dynamodb_service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/villagehq/api/functions/gateway/helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var announcementsTableName = helpers.GetDbTableName(helpers.AnnouncementsTablePrefix)
var announcementReadsTableName = helpers.GetDbTableName(helpers.AnnouncementReadsTablePrefix)

func init() {
	announcementsTableName = helpers.GetDbTableName(helpers.AnnouncementsTablePrefix)
	announcementReadsTableName = helpers.GetDbTableName(helpers.AnnouncementReadsTablePrefix)
}

type AnnouncementService struct{}

func NewAnnouncementService() internal_types.AnnouncementServiceInterface {
	return &AnnouncementService{}
}

func (s *AnnouncementService) InsertAnnouncement(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcement internal_types.AnnouncementInsert) (*internal_types.Announcement, error) {
	if err := validate.Struct(announcement); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if announcement.Priority == "" {
		announcement.Priority = "normal"
	}

	now := time.Now()
	newAnnouncement := internal_types.Announcement{
		Id:        uuid.NewString(),
		TenantId:  announcement.TenantId,
		Title:     announcement.Title,
		Body:      announcement.Body,
		Priority:  announcement.Priority,
		Status:    announcement.Status,
		AuthorId:  announcement.AuthorId,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if announcement.Status == "published" {
		newAnnouncement.PublishedAt = now.Format(time.RFC3339)
	}

	item, err := attributevalue.MarshalMap(&newAnnouncement)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(announcementsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newAnnouncement, nil
}

func (s *AnnouncementService) GetAnnouncementById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementId, tenantId string) (*internal_types.Announcement, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(announcementsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: announcementId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var announcement internal_types.Announcement
	err = attributevalue.UnmarshalMap(result.Item, &announcement)
	if err != nil {
		return nil, err
	}

	if announcement.TenantId != tenantId {
		return nil, nil
	}

	return &announcement, nil
}

func (s *AnnouncementService) GetAnnouncementsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Announcement, error) {
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

	announcements := make([]internal_types.Announcement, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:                 aws.String(announcementsTableName),
			IndexName:                 aws.String(tenantIdGsi),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(false),
			ExclusiveStartKey:         token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.Announcement
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		announcements = append(announcements, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return announcements, nil
}

func (s *AnnouncementService) UpdateAnnouncement(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementId, tenantId string, update internal_types.AnnouncementUpdate) error {
	existing, err := s.GetAnnouncementById(ctx, dynamodbClient, announcementId, tenantId)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("announcement not found")
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

	addString("title", update.Title)
	addString("body", update.Body)
	addString("priority", update.Priority)

	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	setParts = append(setParts, "#updatedAt = :updatedAt")
	names["#updatedAt"] = "updatedAt"
	values[":updatedAt"] = &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)}

	_, err = dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(announcementsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: announcementId},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(setParts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

// SetAnnouncementsStatus publishes or archives a batch of announcements in one
// call from the admin dashboard. Rows that fail the tenant check abort the
// whole operation before any write happens.
func (s *AnnouncementService) SetAnnouncementsStatus(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementIds []string, tenantId, status string) error {
	if status != "published" && status != "archived" && status != "draft" {
		return fmt.Errorf("invalid announcement status: %s", status)
	}

	for _, announcementId := range announcementIds {
		existing, err := s.GetAnnouncementById(ctx, dynamodbClient, announcementId, tenantId)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("announcement %s not found", announcementId)
		}
	}

	now := time.Now().Format(time.RFC3339)
	for _, announcementId := range announcementIds {
		setExpr := "SET #status = :status, #updatedAt = :updatedAt"
		names := map[string]string{
			"#status":    "status",
			"#updatedAt": "updatedAt",
		}
		values := map[string]dynamodb_types.AttributeValue{
			":status":    &dynamodb_types.AttributeValueMemberS{Value: status},
			":updatedAt": &dynamodb_types.AttributeValueMemberS{Value: now},
		}
		if status == "published" {
			setExpr += ", #publishedAt = :publishedAt"
			names["#publishedAt"] = "publishedAt"
			values[":publishedAt"] = &dynamodb_types.AttributeValueMemberS{Value: now}
		}

		_, err := dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(announcementsTableName),
			Key: map[string]dynamodb_types.AttributeValue{
				"id": &dynamodb_types.AttributeValueMemberS{Value: announcementId},
			},
			UpdateExpression:          aws.String(setExpr),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
		if err != nil {
			return fmt.Errorf("failed to update announcement %s: %w", announcementId, err)
		}
	}

	return nil
}

func (s *AnnouncementService) DeleteAnnouncements(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementIds []string, tenantId string) error {
	for _, announcementId := range announcementIds {
		existing, err := s.GetAnnouncementById(ctx, dynamodbClient, announcementId, tenantId)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("announcement %s not found", announcementId)
		}
	}

	for start := 0; start < len(announcementIds); start += batchWriteChunkSize {
		end := start + batchWriteChunkSize
		if end > len(announcementIds) {
			end = len(announcementIds)
		}

		writeRequests := make([]dynamodb_types.WriteRequest, 0, end-start)
		for _, announcementId := range announcementIds[start:end] {
			writeRequests = append(writeRequests, dynamodb_types.WriteRequest{
				DeleteRequest: &dynamodb_types.DeleteRequest{
					Key: map[string]dynamodb_types.AttributeValue{
						"id": &dynamodb_types.AttributeValueMemberS{Value: announcementId},
					},
				},
			})
		}

		_, err := dynamodbClient.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]dynamodb_types.WriteRequest{
				announcementsTableName: writeRequests,
			},
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *AnnouncementService) MarkAnnouncementRead(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, read internal_types.AnnouncementRead) error {
	if read.ReadAt.IsZero() {
		read.ReadAt = time.Now()
	}

	item, err := attributevalue.MarshalMap(&read)
	if err != nil {
		return err
	}

	// keyed by (announcementId, userId), so re-reading is a no-op overwrite
	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(announcementReadsTableName),
		Item:      item,
	})
	return err
}

type MockAnnouncementService struct {
	InsertAnnouncementFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcement internal_types.AnnouncementInsert) (*internal_types.Announcement, error)
	GetAnnouncementByIdFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementId, tenantId string) (*internal_types.Announcement, error)
	GetAnnouncementsByTenantIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Announcement, error)
	UpdateAnnouncementFunc         func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementId, tenantId string, update internal_types.AnnouncementUpdate) error
	SetAnnouncementsStatusFunc     func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementIds []string, tenantId, status string) error
	DeleteAnnouncementsFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementIds []string, tenantId string) error
	MarkAnnouncementReadFunc       func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, read internal_types.AnnouncementRead) error
}

func (m *MockAnnouncementService) InsertAnnouncement(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcement internal_types.AnnouncementInsert) (*internal_types.Announcement, error) {
	return m.InsertAnnouncementFunc(ctx, dynamodbClient, announcement)
}

func (m *MockAnnouncementService) GetAnnouncementById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementId, tenantId string) (*internal_types.Announcement, error) {
	return m.GetAnnouncementByIdFunc(ctx, dynamodbClient, announcementId, tenantId)
}

func (m *MockAnnouncementService) GetAnnouncementsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Announcement, error) {
	return m.GetAnnouncementsByTenantIDFunc(ctx, dynamodbClient, tenantId, statuses)
}

func (m *MockAnnouncementService) UpdateAnnouncement(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementId, tenantId string, update internal_types.AnnouncementUpdate) error {
	return m.UpdateAnnouncementFunc(ctx, dynamodbClient, announcementId, tenantId, update)
}

func (m *MockAnnouncementService) SetAnnouncementsStatus(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementIds []string, tenantId, status string) error {
	return m.SetAnnouncementsStatusFunc(ctx, dynamodbClient, announcementIds, tenantId, status)
}

func (m *MockAnnouncementService) DeleteAnnouncements(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, announcementIds []string, tenantId string) error {
	return m.DeleteAnnouncementsFunc(ctx, dynamodbClient, announcementIds, tenantId)
}

func (m *MockAnnouncementService) MarkAnnouncementRead(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, read internal_types.AnnouncementRead) error {
	return m.MarkAnnouncementReadFunc(ctx, dynamodbClient, read)
}
