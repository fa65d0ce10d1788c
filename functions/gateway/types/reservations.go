package types

import (
	"context"
	"time"
)

// Reservation is a resident's booking of a reservable facility. Times are
// RFC3339 instants, unlike events which carry separate date and time parts.
type Reservation struct {
	Id                 string    `json:"id" dynamodbav:"id"`
	TenantId           string    `json:"tenant_id" dynamodbav:"tenantId"`
	LocationId         string    `json:"location_id" dynamodbav:"locationId"`
	UserId             string    `json:"user_id" dynamodbav:"userId"`
	Title              string    `json:"title" dynamodbav:"title"`
	Notes              string    `json:"notes" dynamodbav:"notes"`
	StartTime          string    `json:"start_time" dynamodbav:"startTime"`
	EndTime            string    `json:"end_time" dynamodbav:"endTime"`
	Status             string    `json:"status" dynamodbav:"status"`
	CancellationReason string    `json:"cancellation_reason" dynamodbav:"cancellationReason"`
	CancelledBy        string    `json:"cancelled_by" dynamodbav:"cancelledBy"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type ReservationInsert struct {
	TenantId   string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	LocationId string `json:"location_id" validate:"required" dynamodbav:"locationId"`
	UserId     string `json:"user_id" validate:"required" dynamodbav:"userId"`
	Title      string `json:"title" validate:"required,max=50" dynamodbav:"title"`
	Notes      string `json:"notes" dynamodbav:"notes"`
	StartTime  string `json:"start_time" validate:"required" dynamodbav:"startTime"`
	EndTime    string `json:"end_time" validate:"required" dynamodbav:"endTime"`
}

type ReservationServiceInterface interface {
	CreateReservation(ctx context.Context, dynamodbClient DynamoDBAPI, reservation ReservationInsert) (*Reservation, error)
	GetReservationById(ctx context.Context, dynamodbClient DynamoDBAPI, reservationId, tenantId string) (*Reservation, error)
	GetReservationsByLocationID(ctx context.Context, dynamodbClient DynamoDBAPI, locationId, tenantId string) ([]Reservation, error)
	GetUserReservations(ctx context.Context, dynamodbClient DynamoDBAPI, userId string) ([]Reservation, error)
	CancelReservation(ctx context.Context, dynamodbClient DynamoDBAPI, reservationId, tenantId, cancelledBy, reason string, isAdmin bool) (*Reservation, error)
}
