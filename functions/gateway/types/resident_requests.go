package types

import (
	"context"
	"time"
)

type ResidentRequest struct {
	Id          string    `json:"id" dynamodbav:"id"`
	TenantId    string    `json:"tenant_id" dynamodbav:"tenantId"`
	UserId      string    `json:"user_id" dynamodbav:"userId"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Category    string    `json:"category" dynamodbav:"category"`
	Visibility  string    `json:"visibility" dynamodbav:"visibility"`
	Status      string    `json:"status" dynamodbav:"status"`
	AdminReply  string    `json:"admin_reply" dynamodbav:"adminReply"`
	RepliedBy   string    `json:"replied_by" dynamodbav:"repliedBy"`
	RepliedAt   string    `json:"replied_at" dynamodbav:"repliedAt"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type ResidentRequestInsert struct {
	TenantId    string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	UserId      string `json:"user_id" validate:"required" dynamodbav:"userId"`
	Title       string `json:"title" validate:"required" dynamodbav:"title"`
	Description string `json:"description" validate:"required" dynamodbav:"description"`
	Category    string `json:"category" dynamodbav:"category"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=private community" dynamodbav:"visibility"`
}

type ResidentRequestServiceInterface interface {
	InsertResidentRequest(ctx context.Context, dynamodbClient DynamoDBAPI, request ResidentRequestInsert) (*ResidentRequest, error)
	GetRequestById(ctx context.Context, dynamodbClient DynamoDBAPI, requestId, tenantId string) (*ResidentRequest, error)
	GetRequestsByUserID(ctx context.Context, dynamodbClient DynamoDBAPI, userId, tenantId string) ([]ResidentRequest, error)
	GetRequestsByTenantID(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string) ([]ResidentRequest, error)
	GetCommunityRequests(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string) ([]ResidentRequest, error)
	UpdateRequestStatus(ctx context.Context, dynamodbClient DynamoDBAPI, requestId, tenantId, status string) (*ResidentRequest, error)
	AddAdminReply(ctx context.Context, dynamodbClient DynamoDBAPI, requestId, tenantId, reply, repliedBy string) (*ResidentRequest, error)
}
