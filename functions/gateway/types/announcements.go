package types

import (
	"context"
	"time"
)

type Announcement struct {
	Id          string    `json:"id" dynamodbav:"id"`
	TenantId    string    `json:"tenant_id" dynamodbav:"tenantId"`
	Title       string    `json:"title" dynamodbav:"title"`
	Body        string    `json:"body" dynamodbav:"body"`
	Priority    string    `json:"priority" dynamodbav:"priority"`
	Status      string    `json:"status" dynamodbav:"status"`
	AuthorId    string    `json:"author_id" dynamodbav:"authorId"`
	PublishedAt string    `json:"published_at" dynamodbav:"publishedAt"`
	CreatedAt   time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type AnnouncementInsert struct {
	TenantId string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	Title    string `json:"title" validate:"required" dynamodbav:"title"`
	Body     string `json:"body" validate:"required" dynamodbav:"body"`
	Priority string `json:"priority" validate:"omitempty,oneof=normal important urgent" dynamodbav:"priority"`
	Status   string `json:"status" validate:"required,oneof=draft published archived" dynamodbav:"status"`
	AuthorId string `json:"author_id" validate:"required" dynamodbav:"authorId"`
}

type AnnouncementUpdate struct {
	Title    *string `json:"title,omitempty"`
	Body     *string `json:"body,omitempty"`
	Priority *string `json:"priority,omitempty"`
}

type AnnouncementRead struct {
	AnnouncementId string    `json:"announcement_id" dynamodbav:"announcementId"`
	UserId         string    `json:"user_id" dynamodbav:"userId"`
	TenantId       string    `json:"tenant_id" dynamodbav:"tenantId"`
	ReadAt         time.Time `json:"read_at" dynamodbav:"readAt"`
}

type AnnouncementServiceInterface interface {
	InsertAnnouncement(ctx context.Context, dynamodbClient DynamoDBAPI, announcement AnnouncementInsert) (*Announcement, error)
	GetAnnouncementById(ctx context.Context, dynamodbClient DynamoDBAPI, announcementId, tenantId string) (*Announcement, error)
	GetAnnouncementsByTenantID(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string, statuses []string) ([]Announcement, error)
	UpdateAnnouncement(ctx context.Context, dynamodbClient DynamoDBAPI, announcementId, tenantId string, update AnnouncementUpdate) error
	SetAnnouncementsStatus(ctx context.Context, dynamodbClient DynamoDBAPI, announcementIds []string, tenantId, status string) error
	DeleteAnnouncements(ctx context.Context, dynamodbClient DynamoDBAPI, announcementIds []string, tenantId string) error
	MarkAnnouncementRead(ctx context.Context, dynamodbClient DynamoDBAPI, read AnnouncementRead) error
}
