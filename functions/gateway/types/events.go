package types

import (
	"context"
	"time"
)

// Event is a single occurrence. A recurring series is one parent row plus
// child rows pointing back via parentEventId; a child's parentEventId is the
// id of the series root.
type Event struct {
	Id                 string    `json:"id" dynamodbav:"id"`
	TenantId           string    `json:"tenant_id" dynamodbav:"tenantId"`
	Title              string    `json:"title" dynamodbav:"title"`
	Description        string    `json:"description" dynamodbav:"description"`
	StartDate          string    `json:"start_date" dynamodbav:"startDate"`
	StartTime          string    `json:"start_time" dynamodbav:"startTime"`
	EndDate            string    `json:"end_date" dynamodbav:"endDate"`
	EndTime            string    `json:"end_time" dynamodbav:"endTime"`
	Timezone           string    `json:"timezone" dynamodbav:"timezone"`
	IsAllDay           bool      `json:"is_all_day" dynamodbav:"isAllDay"`
	Status             string    `json:"status" dynamodbav:"status"`
	CategoryId         string    `json:"category_id" dynamodbav:"categoryId"`
	LocationType       string    `json:"location_type" dynamodbav:"locationType"`
	LocationId         string    `json:"location_id" dynamodbav:"locationId"`
	CustomLocationName string    `json:"custom_location_name" dynamodbav:"customLocationName"`
	RequiresRsvp       bool      `json:"requires_rsvp" dynamodbav:"requiresRsvp"`
	MaxAttendees       int32     `json:"max_attendees" dynamodbav:"maxAttendees"`
	RsvpDeadline       string    `json:"rsvp_deadline" dynamodbav:"rsvpDeadline"`
	ParentEventId      string    `json:"parent_event_id" dynamodbav:"parentEventId"`
	CreatedBy          string    `json:"created_by" dynamodbav:"createdBy"`
	CancellationReason string    `json:"cancellation_reason" dynamodbav:"cancellationReason"`
	CancelledAt        string    `json:"cancelled_at" dynamodbav:"cancelledAt"`
	CancelledBy        string    `json:"cancelled_by" dynamodbav:"cancelledBy"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type EventInsert struct {
	TenantId           string    `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	Title              string    `json:"title" validate:"required" dynamodbav:"title"`
	Description        string    `json:"description" dynamodbav:"description"`
	StartDate          string    `json:"start_date" validate:"required" dynamodbav:"startDate"`
	StartTime          string    `json:"start_time" dynamodbav:"startTime"`
	EndDate            string    `json:"end_date" dynamodbav:"endDate"`
	EndTime            string    `json:"end_time" dynamodbav:"endTime"`
	Timezone           string    `json:"timezone" dynamodbav:"timezone"`
	IsAllDay           bool      `json:"is_all_day" dynamodbav:"isAllDay"`
	Status             string    `json:"status" validate:"required,oneof=draft published cancelled" dynamodbav:"status"`
	CategoryId         string    `json:"category_id" dynamodbav:"categoryId"`
	LocationType       string    `json:"location_type" validate:"omitempty,oneof=community custom none" dynamodbav:"locationType"`
	LocationId         string    `json:"location_id" dynamodbav:"locationId"`
	CustomLocationName string    `json:"custom_location_name" dynamodbav:"customLocationName"`
	RequiresRsvp       bool      `json:"requires_rsvp" dynamodbav:"requiresRsvp"`
	MaxAttendees       int32     `json:"max_attendees" dynamodbav:"maxAttendees"`
	RsvpDeadline       string    `json:"rsvp_deadline" dynamodbav:"rsvpDeadline"`
	ParentEventId      string    `json:"parent_event_id" dynamodbav:"parentEventId"`
	CreatedBy          string    `json:"created_by" validate:"required" dynamodbav:"createdBy"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

// EventUpdate is a partial update. Pointer fields distinguish "absent" from
// zero values so series propagation can tell which fields were actually sent.
type EventUpdate struct {
	Title              *string `json:"title,omitempty"`
	Description        *string `json:"description,omitempty"`
	StartDate          *string `json:"start_date,omitempty"`
	StartTime          *string `json:"start_time,omitempty"`
	EndDate            *string `json:"end_date,omitempty"`
	EndTime            *string `json:"end_time,omitempty"`
	Timezone           *string `json:"timezone,omitempty"`
	IsAllDay           *bool   `json:"is_all_day,omitempty"`
	Status             *string `json:"status,omitempty"`
	CategoryId         *string `json:"category_id,omitempty"`
	LocationType       *string `json:"location_type,omitempty"`
	LocationId         *string `json:"location_id,omitempty"`
	CustomLocationName *string `json:"custom_location_name,omitempty"`
	RequiresRsvp       *bool   `json:"requires_rsvp,omitempty"`
	MaxAttendees       *int32  `json:"max_attendees,omitempty"`
	RsvpDeadline       *string `json:"rsvp_deadline,omitempty"`
}

// RsvpSettingsPatch is the subset of an event update that cascades to child
// occurrences of a series. Title, description and dates never propagate.
type RsvpSettingsPatch struct {
	RequiresRsvp *bool
	MaxAttendees *int32
	RsvpDeadline *string
}

func (p RsvpSettingsPatch) IsEmpty() bool {
	return p.RequiresRsvp == nil && p.MaxAttendees == nil && p.RsvpDeadline == nil
}

// RsvpSettings extracts the RSVP-relevant subset of the update payload.
func (u EventUpdate) RsvpSettings() RsvpSettingsPatch {
	return RsvpSettingsPatch{
		RequiresRsvp: u.RequiresRsvp,
		MaxAttendees: u.MaxAttendees,
		RsvpDeadline: u.RsvpDeadline,
	}
}

// AvailabilityQuery is a candidate booking at a location. StartTime/EndTime
// are optional "HH:MM" bounds; when absent the booking is treated as all-day.
type AvailabilityQuery struct {
	LocationId     string `json:"location_id" validate:"required"`
	TenantId       string `json:"tenant_id" validate:"required"`
	StartDate      string `json:"start_date" validate:"required"`
	EndDate        string `json:"end_date" validate:"required"`
	ExcludeEventId string `json:"exclude_event_id"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
}

type AvailabilityResult struct {
	HasConflict   bool  `json:"has_conflict"`
	ConflictCount int32 `json:"conflict_count"`
}

type EventFlag struct {
	EventId    string    `json:"event_id" dynamodbav:"eventId"`
	ReportedBy string    `json:"reported_by" dynamodbav:"reportedBy"`
	TenantId   string    `json:"tenant_id" dynamodbav:"tenantId"`
	Reason     string    `json:"reason" dynamodbav:"reason"`
	Status     string    `json:"status" dynamodbav:"status"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"createdAt"`
}

type EventCategory struct {
	Id       string `json:"id" dynamodbav:"id"`
	TenantId string `json:"tenant_id" dynamodbav:"tenantId"`
	Name     string `json:"name" dynamodbav:"name"`
	Color    string `json:"color" dynamodbav:"color"`
	Icon     string `json:"icon" dynamodbav:"icon"`
}

type EventCategoryInsert struct {
	TenantId string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	Name     string `json:"name" validate:"required" dynamodbav:"name"`
	Color    string `json:"color" dynamodbav:"color"`
	Icon     string `json:"icon" dynamodbav:"icon"`
}

type EventServiceInterface interface {
	InsertEvent(ctx context.Context, dynamodbClient DynamoDBAPI, event EventInsert) (*Event, error)
	GetEventById(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, tenantId string) (*Event, error)
	GetEventsByTenantID(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string, statuses []string) ([]Event, error)
	GetUpcomingEvents(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string, limit int32) ([]Event, error)
	GetEventsByLocationID(ctx context.Context, dynamodbClient DynamoDBAPI, locationId, tenantId string) ([]Event, error)
	GetLocationEventCount(ctx context.Context, dynamodbClient DynamoDBAPI, locationId, tenantId string) (int32, error)
	CheckLocationAvailability(ctx context.Context, dynamodbClient DynamoDBAPI, query AvailabilityQuery) (*AvailabilityResult, error)
	UpdateEvent(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, tenantId string, update EventUpdate) error
	CancelEvent(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, tenantId, reason, cancelledBy string, uncancel bool) error
	DeleteEvent(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, tenantId string) error
	FlagEvent(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, tenantId, reportedBy, reason string) error
	DismissEventFlag(ctx context.Context, dynamodbClient DynamoDBAPI, eventId, reportedBy string) error
	InsertEventCategory(ctx context.Context, dynamodbClient DynamoDBAPI, category EventCategoryInsert) (*EventCategory, error)
	GetEventCategoriesByTenantID(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string) ([]EventCategory, error)
}
