package types

import (
	"context"
	"time"
)

type Notification struct {
	Id             string    `json:"id" dynamodbav:"id"`
	TenantId       string    `json:"tenant_id" dynamodbav:"tenantId"`
	RecipientId    string    `json:"recipient_id" dynamodbav:"recipientId"`
	ActorId        string    `json:"actor_id" dynamodbav:"actorId"`
	Type           string    `json:"type" dynamodbav:"type"`
	Title          string    `json:"title" dynamodbav:"title"`
	Message        string    `json:"message" dynamodbav:"message"`
	EventId        string    `json:"event_id" dynamodbav:"eventId"`
	ListingId      string    `json:"listing_id" dynamodbav:"listingId"`
	TransactionId  string    `json:"transaction_id" dynamodbav:"transactionId"`
	AnnouncementId string    `json:"announcement_id" dynamodbav:"announcementId"`
	IsRead         bool      `json:"is_read" dynamodbav:"isRead"`
	IsArchived     bool      `json:"is_archived" dynamodbav:"isArchived"`
	ActionRequired bool      `json:"action_required" dynamodbav:"actionRequired"`
	ActionTaken    bool      `json:"action_taken" dynamodbav:"actionTaken"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"createdAt"`
}

type NotificationInsert struct {
	TenantId       string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	RecipientId    string `json:"recipient_id" validate:"required" dynamodbav:"recipientId"`
	ActorId        string `json:"actor_id" dynamodbav:"actorId"`
	Type           string `json:"type" validate:"required" dynamodbav:"type"`
	Title          string `json:"title" validate:"required" dynamodbav:"title"`
	Message        string `json:"message" dynamodbav:"message"`
	EventId        string `json:"event_id" dynamodbav:"eventId"`
	ListingId      string `json:"listing_id" dynamodbav:"listingId"`
	TransactionId  string `json:"transaction_id" dynamodbav:"transactionId"`
	AnnouncementId string `json:"announcement_id" dynamodbav:"announcementId"`
	ActionRequired bool   `json:"action_required" dynamodbav:"actionRequired"`
}

// NotificationFilters narrows a recipient's notification list. Pointer fields
// are tri-state: nil means "don't filter on this".
type NotificationFilters struct {
	Types          []string `json:"types,omitempty"`
	IsRead         *bool    `json:"is_read,omitempty"`
	IsArchived     *bool    `json:"is_archived,omitempty"`
	ActionRequired *bool    `json:"action_required,omitempty"`
}

type NotificationServiceInterface interface {
	InsertNotification(ctx context.Context, dynamodbClient DynamoDBAPI, notification NotificationInsert) (*Notification, error)
	GetNotificationsByRecipientID(ctx context.Context, dynamodbClient DynamoDBAPI, recipientId, tenantId string, filters NotificationFilters) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, dynamodbClient DynamoDBAPI, notificationId, recipientId string) error
	ArchiveNotification(ctx context.Context, dynamodbClient DynamoDBAPI, notificationId, recipientId string) error
}
