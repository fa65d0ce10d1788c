package types

import (
	"context"
	"time"
)

// Tenant is one isolated community. Nearly every row in the system carries a
// tenantId scoping key that must match the caller's tenant.
type Tenant struct {
	Id                  string    `json:"id" dynamodbav:"id"`
	Slug                string    `json:"slug" dynamodbav:"slug"`
	Name                string    `json:"name" dynamodbav:"name"`
	ReservationsEnabled bool      `json:"reservations_enabled" dynamodbav:"reservationsEnabled"`
	ExchangeEnabled     bool      `json:"exchange_enabled" dynamodbav:"exchangeEnabled"`
	CreatedAt           time.Time `json:"created_at" dynamodbav:"createdAt"`
}

type TenantInsert struct {
	Slug                string `json:"slug" validate:"required" dynamodbav:"slug"`
	Name                string `json:"name" validate:"required" dynamodbav:"name"`
	ReservationsEnabled bool   `json:"reservations_enabled" dynamodbav:"reservationsEnabled"`
	ExchangeEnabled     bool   `json:"exchange_enabled" dynamodbav:"exchangeEnabled"`
}

type TenantServiceInterface interface {
	InsertTenant(ctx context.Context, dynamodbClient DynamoDBAPI, tenant TenantInsert) (*Tenant, error)
	GetTenantById(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string) (*Tenant, error)
	GetTenantBySlug(ctx context.Context, dynamodbClient DynamoDBAPI, slug string) (*Tenant, error)
}
