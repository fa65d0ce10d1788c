package dynamodb_service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
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

var notificationsTableName = helpers.GetDbTableName(helpers.NotificationsTablePrefix)

func init() {
	notificationsTableName = helpers.GetDbTableName(helpers.NotificationsTablePrefix)
}

const recipientIdGsi = "recipientIdGsi"

type NotificationService struct {
	publisher services.NotificationPublisherInterface
}

// NewNotificationService takes an optional publisher; delivery fan-out (email,
// push) is consumed downstream off the stream. A nil publisher means rows are
// written without a delivery signal, which is what tests and local dev want.
func NewNotificationService(publisher services.NotificationPublisherInterface) internal_types.NotificationServiceInterface {
	return &NotificationService{publisher: publisher}
}

func (s *NotificationService) InsertNotification(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notification internal_types.NotificationInsert) (*internal_types.Notification, error) {
	if err := validate.Struct(notification); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	newNotification := internal_types.Notification{
		Id:             uuid.NewString(),
		TenantId:       notification.TenantId,
		RecipientId:    notification.RecipientId,
		ActorId:        notification.ActorId,
		Type:           notification.Type,
		Title:          notification.Title,
		Message:        notification.Message,
		EventId:        notification.EventId,
		ListingId:      notification.ListingId,
		TransactionId:  notification.TransactionId,
		AnnouncementId: notification.AnnouncementId,
		ActionRequired: notification.ActionRequired,
		CreatedAt:      time.Now(),
	}

	item, err := attributevalue.MarshalMap(&newNotification)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(notificationsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	// the row is committed; a failed publish only delays delivery
	if s.publisher != nil {
		payload, err := json.Marshal(newNotification)
		if err == nil {
			subject := os.Getenv("NATS_NOTIFICATIONS_SUBJECT_PREFIX") + "." + notification.Type
			if err := s.publisher.Publish(ctx, subject, payload); err != nil {
				log.Printf("failed to publish notification %s: %v", newNotification.Id, err)
			}
		}
	}

	return &newNotification, nil
}

func (s *NotificationService) GetNotificationsByRecipientID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, recipientId, tenantId string, filters internal_types.NotificationFilters) ([]internal_types.Notification, error) {
	notifications := make([]internal_types.Notification, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(notificationsTableName),
			IndexName:              aws.String(recipientIdGsi),
			KeyConditionExpression: aws.String("recipientId = :recipientId"),
			FilterExpression:       aws.String("tenantId = :tenantId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":recipientId": &dynamodb_types.AttributeValueMemberS{Value: recipientId},
				":tenantId":    &dynamodb_types.AttributeValueMemberS{Value: tenantId},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.Notification
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		notifications = append(notifications, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return applyNotificationFilters(notifications, filters), nil
}

func applyNotificationFilters(notifications []internal_types.Notification, filters internal_types.NotificationFilters) []internal_types.Notification {
	typeAllowed := map[string]bool{}
	for _, t := range filters.Types {
		typeAllowed[t] = true
	}

	filtered := make([]internal_types.Notification, 0, len(notifications))
	for _, notification := range notifications {
		if len(typeAllowed) > 0 && !typeAllowed[notification.Type] {
			continue
		}
		if filters.IsRead != nil && notification.IsRead != *filters.IsRead {
			continue
		}
		if filters.IsArchived != nil && notification.IsArchived != *filters.IsArchived {
			continue
		}
		if filters.ActionRequired != nil && notification.ActionRequired != *filters.ActionRequired {
			continue
		}
		filtered = append(filtered, notification)
	}

	return filtered
}

func (s *NotificationService) MarkNotificationRead(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId string) error {
	return s.setFlag(ctx, dynamodbClient, notificationId, recipientId, "isRead")
}

func (s *NotificationService) ArchiveNotification(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId string) error {
	return s.setFlag(ctx, dynamodbClient, notificationId, recipientId, "isArchived")
}

func (s *NotificationService) setFlag(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId, attr string) error {
	result, err := dynamodbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(notificationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: notificationId},
		},
	})
	if err != nil {
		return err
	}
	if len(result.Item) == 0 {
		return fmt.Errorf("notification not found")
	}

	var notification internal_types.Notification
	if err := attributevalue.UnmarshalMap(result.Item, &notification); err != nil {
		return err
	}
	if notification.RecipientId != recipientId {
		return fmt.Errorf("notification not found")
	}

	_, err = dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(notificationsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: notificationId},
		},
		UpdateExpression: aws.String("SET #flag = :flag"),
		ExpressionAttributeNames: map[string]string{
			"#flag": attr,
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":flag": &dynamodb_types.AttributeValueMemberBOOL{Value: true},
		},
	})
	return err
}

type MockNotificationService struct {
	InsertNotificationFunc            func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notification internal_types.NotificationInsert) (*internal_types.Notification, error)
	GetNotificationsByRecipientIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, recipientId, tenantId string, filters internal_types.NotificationFilters) ([]internal_types.Notification, error)
	MarkNotificationReadFunc          func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId string) error
	ArchiveNotificationFunc           func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId string) error
}

func (m *MockNotificationService) InsertNotification(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notification internal_types.NotificationInsert) (*internal_types.Notification, error) {
	return m.InsertNotificationFunc(ctx, dynamodbClient, notification)
}

func (m *MockNotificationService) GetNotificationsByRecipientID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, recipientId, tenantId string, filters internal_types.NotificationFilters) ([]internal_types.Notification, error) {
	return m.GetNotificationsByRecipientIDFunc(ctx, dynamodbClient, recipientId, tenantId, filters)
}

func (m *MockNotificationService) MarkNotificationRead(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId string) error {
	return m.MarkNotificationReadFunc(ctx, dynamodbClient, notificationId, recipientId)
}

func (m *MockNotificationService) ArchiveNotification(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, notificationId, recipientId string) error {
	return m.ArchiveNotificationFunc(ctx, dynamodbClient, notificationId, recipientId)
}
