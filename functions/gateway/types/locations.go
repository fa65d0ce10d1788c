package types

import (
	"context"
	"time"
)

type Location struct {
	Id           string    `json:"id" dynamodbav:"id"`
	TenantId     string    `json:"tenant_id" dynamodbav:"tenantId"`
	Name         string    `json:"name" dynamodbav:"name"`
	Type         string    `json:"type" dynamodbav:"type"`
	Description  string    `json:"description" dynamodbav:"description"`
	IsReservable bool      `json:"is_reservable" dynamodbav:"isReservable"`
	Latitude     float64   `json:"latitude" dynamodbav:"latitude"`
	Longitude    float64   `json:"longitude" dynamodbav:"longitude"`
	Timezone     string    `json:"timezone" dynamodbav:"timezone"`
	Amenities    []string  `json:"amenities" dynamodbav:"amenities"`
	HeroPhoto    string    `json:"hero_photo" dynamodbav:"heroPhoto"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type LocationInsert struct {
	TenantId     string   `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	Name         string   `json:"name" validate:"required" dynamodbav:"name"`
	Type         string   `json:"type" validate:"required,oneof=facility lot common_area" dynamodbav:"type"`
	Description  string   `json:"description" dynamodbav:"description"`
	IsReservable bool     `json:"is_reservable" dynamodbav:"isReservable"`
	Latitude     float64  `json:"latitude" dynamodbav:"latitude"`
	Longitude    float64  `json:"longitude" dynamodbav:"longitude"`
	Amenities    []string `json:"amenities" dynamodbav:"amenities"`
	HeroPhoto    string   `json:"hero_photo" dynamodbav:"heroPhoto"`
}

type LocationUpdate struct {
	Name         *string  `json:"name,omitempty"`
	Type         *string  `json:"type,omitempty"`
	Description  *string  `json:"description,omitempty"`
	IsReservable *bool    `json:"is_reservable,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	HeroPhoto    *string  `json:"hero_photo,omitempty"`
}

// LocationWithDistance decorates a location with the distance in meters from
// a caller-supplied point, for nearby-facility ordering.
type LocationWithDistance struct {
	Location
	DistanceMeters float64 `json:"distance_meters"`
}

type LocationServiceInterface interface {
	InsertLocation(ctx context.Context, dynamodbClient DynamoDBAPI, location LocationInsert) (*Location, error)
	GetLocationById(ctx context.Context, dynamodbClient DynamoDBAPI, locationId, tenantId string) (*Location, error)
	GetLocationsByTenantID(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string) ([]Location, error)
	UpdateLocation(ctx context.Context, dynamodbClient DynamoDBAPI, locationId, tenantId string, update LocationUpdate) (*Location, error)
	DeleteLocation(ctx context.Context, dynamodbClient DynamoDBAPI, locationId, tenantId string) error
}
