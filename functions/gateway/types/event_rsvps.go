package types

import (
	"context"
	"time"
)

// EventRsvp is one user's response to one occurrence. The (eventId, userId)
// composite key makes repeated application idempotent.
type EventRsvp struct {
	EventId   string    `json:"event_id" dynamodbav:"eventId"`
	UserId    string    `json:"user_id" dynamodbav:"userId"`
	TenantId  string    `json:"tenant_id" dynamodbav:"tenantId"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type EventRsvpInsert struct {
	EventId   string    `json:"event_id" validate:"required" dynamodbav:"eventId"`
	UserId    string    `json:"user_id" validate:"required" dynamodbav:"userId"`
	TenantId  string    `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	Status    string    `json:"status" validate:"required,oneof=going interested not_going cancelled" dynamodbav:"status"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type RsvpCounts struct {
	Going      int32 `json:"going"`
	Interested int32 `json:"interested"`
	NotGoing   int32 `json:"not_going"`
}

type EventRsvpServiceInterface interface {
	UpsertEventRsvp(ctx context.Context, dynamodbClient DynamoDBAPI, eventRsvp EventRsvpInsert) (*EventRsvp, error)
	GetEventRsvpByPk(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, userId string) (*EventRsvp, error)
	GetEventRsvpsByEventID(ctx context.Context, dynamodbClient DynamoDBAPI, eventId string) ([]EventRsvp, error)
	GetEventRsvpsByUserID(ctx context.Context, dynamodbClient DynamoDBAPI, userId string) ([]EventRsvp, error)
	GetEventRsvpCounts(ctx context.Context, dynamodbClient DynamoDBAPI, eventId string) (*RsvpCounts, error)
	RsvpToEvent(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, tenantId, userId, status, scope string) error
	DeleteEventRsvp(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, userId string) error
}
