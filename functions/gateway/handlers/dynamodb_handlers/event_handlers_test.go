package dynamodb_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/helpers"
	"github.com/villagehq/api/functions/gateway/services"
	dynamodb_service "github.com/villagehq/api/functions/gateway/services/dynamodb_service"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")
	os.Exit(m.Run())
}

func requestWithUser(r *http.Request, userInfo helpers.UserInfo) *http.Request {
	return r.WithContext(services.WithUserInfo(r.Context(), userInfo))
}

func residentUser() helpers.UserInfo {
	return helpers.UserInfo{Sub: "user-123", TenantId: "tenant-123", Role: helpers.RoleResident}
}

func adminUser() helpers.UserInfo {
	return helpers.UserInfo{Sub: "admin-123", TenantId: "tenant-123", Role: helpers.RoleTenantAdmin}
}

func TestCreateEventRejectsAnonymous(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		InsertEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event internal_types.EventInsert) (*internal_types.Event, error) {
			t.Error("expected no service call for an anonymous request")
			return nil, nil
		},
	}
	handler := NewEventHandler(mockService)

	req := httptest.NewRequest("POST", "/api/events", bytes.NewBufferString(`{"title":"Yoga"}`))
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if w.Body.String() != "Unauthorized" {
		t.Errorf("expected Unauthorized body, got %s", w.Body.String())
	}
}

func TestCreateEventStampsCallerIdentity(t *testing.T) {
	var inserted internal_types.EventInsert
	mockService := &dynamodb_service.MockEventService{
		InsertEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, event internal_types.EventInsert) (*internal_types.Event, error) {
			inserted = event
			return &internal_types.Event{Id: "event-1", Title: event.Title, TenantId: event.TenantId}, nil
		},
	}
	handler := NewEventHandler(mockService)

	payload := `{"title":"Yoga in the Park","start_date":"2026-09-12","tenant_id":"spoofed","created_by":"spoofed"}`
	req := requestWithUser(httptest.NewRequest("POST", "/api/events", bytes.NewBufferString(payload)), residentUser())
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if inserted.TenantId != "tenant-123" {
		t.Errorf("expected tenant from the token, got %s", inserted.TenantId)
	}
	if inserted.CreatedBy != "user-123" {
		t.Errorf("expected createdBy from the token, got %s", inserted.CreatedBy)
	}
	if inserted.Status != "published" {
		t.Errorf("expected default status published, got %s", inserted.Status)
	}
}

func TestCreateEventRejectsInvalidBody(t *testing.T) {
	handler := NewEventHandler(&dynamodb_service.MockEventService{})

	req := requestWithUser(httptest.NewRequest("POST", "/api/events", bytes.NewBufferString(`{"title":"No date"}`)), residentUser())
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing start date, got %d", w.Code)
	}
}

func TestGetEventNotFound(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return nil, nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/events/missing", nil), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "missing"})
	w := httptest.NewRecorder()
	handler.GetEvent(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetEventsForcesResidentStatuses(t *testing.T) {
	var requested []string
	mockService := &dynamodb_service.MockEventService{
		GetEventsByTenantIDFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Event, error) {
			requested = statuses
			return []internal_types.Event{}, nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/events?status=draft", nil), residentUser())
	w := httptest.NewRecorder()
	handler.GetEvents(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(requested) != 2 || requested[0] != "published" || requested[1] != "cancelled" {
		t.Errorf("expected residents to be pinned to published+cancelled, got %v", requested)
	}
}

func TestGetEventsAdminStatusFilter(t *testing.T) {
	var requested []string
	mockService := &dynamodb_service.MockEventService{
		GetEventsByTenantIDFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, statuses []string) ([]internal_types.Event, error) {
			requested = statuses
			return []internal_types.Event{}, nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/events?status=draft,published", nil), adminUser())
	w := httptest.NewRecorder()
	handler.GetEvents(w, req)

	if len(requested) != 2 || requested[0] != "draft" {
		t.Errorf("expected the admin's filter to pass through, got %v", requested)
	}
}

func TestUpdateEventNotFound(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return nil, nil
		},
		UpdateEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error {
			t.Error("expected no update for a missing event")
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("PUT", "/api/events/missing", bytes.NewBufferString(`{"title":"New"}`)), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "missing"})
	w := httptest.NewRecorder()
	handler.UpdateEvent(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestUpdateEventPassesRsvpSettings(t *testing.T) {
	var received internal_types.EventUpdate
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return &internal_types.Event{Id: eventId, TenantId: tenantId, CreatedBy: "user-999"}, nil
		},
		UpdateEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error {
			received = update
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	payload := `{"requires_rsvp":true,"max_attendees":20}`
	req := requestWithUser(httptest.NewRequest("PUT", "/api/events/event-1", bytes.NewBufferString(payload)), adminUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.UpdateEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	patch := received.RsvpSettings()
	if patch.IsEmpty() {
		t.Fatal("expected an rsvp settings patch")
	}
	if patch.MaxAttendees == nil || *patch.MaxAttendees != 20 {
		t.Errorf("expected maxAttendees 20, got %v", patch.MaxAttendees)
	}
	if received.Title != nil {
		t.Errorf("expected no title in the patch, got %v", *received.Title)
	}
}

func TestUpdateEventForbiddenForNonCreator(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return &internal_types.Event{Id: eventId, TenantId: tenantId, CreatedBy: "admin-123"}, nil
		},
		UpdateEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error {
			t.Error("expected no update for a non-creator resident")
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("PUT", "/api/events/event-1", bytes.NewBufferString(`{"max_attendees":1}`)), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.UpdateEvent(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateEventAllowsCreator(t *testing.T) {
	updated := false
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return &internal_types.Event{Id: eventId, TenantId: tenantId, CreatedBy: "user-123"}, nil
		},
		UpdateEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string, update internal_types.EventUpdate) error {
			updated = true
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("PUT", "/api/events/event-1", bytes.NewBufferString(`{"title":"New title"}`)), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.UpdateEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !updated {
		t.Error("expected the creator's update to go through")
	}
}

func TestCancelEventForbiddenForNonCreator(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return &internal_types.Event{Id: eventId, TenantId: tenantId, CreatedBy: "admin-123"}, nil
		},
		CancelEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reason, cancelledBy string, uncancel bool) error {
			t.Error("expected no cancel for a non-creator resident")
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("POST", "/api/events/event-1/cancel", bytes.NewBufferString(`{"reason":"rain"}`)), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.CancelEvent(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteEventRequiresAdmin(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		DeleteEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) error {
			t.Error("expected no delete for a resident")
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("DELETE", "/api/events/event-1", nil), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.DeleteEvent(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestFlagEventDuplicateConflict(t *testing.T) {
	mockService := &dynamodb_service.MockEventService{
		FlagEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reportedBy, reason string) error {
			return fmt.Errorf("You have already flagged this event")
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("POST", "/api/events/event-1/flag", bytes.NewBufferString(`{"reason":"spam"}`)), residentUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.FlagEvent(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "already flagged") {
		t.Errorf("expected the duplicate message, got %s", w.Body.String())
	}
}

func TestCancelEventEmptyBody(t *testing.T) {
	var gotReason string
	var gotUncancel bool
	mockService := &dynamodb_service.MockEventService{
		GetEventByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId string) (*internal_types.Event, error) {
			return &internal_types.Event{Id: eventId, TenantId: tenantId, CreatedBy: "user-999"}, nil
		},
		CancelEventFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, eventId, tenantId, reason, cancelledBy string, uncancel bool) error {
			gotReason = reason
			gotUncancel = uncancel
			return nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("POST", "/api/events/event-1/cancel", nil), adminUser())
	req = mux.SetURLVars(req, map[string]string{"event_id": "event-1"})
	w := httptest.NewRecorder()
	handler.CancelEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotReason != "" || gotUncancel {
		t.Errorf("expected zero-value payload, got reason=%q uncancel=%v", gotReason, gotUncancel)
	}
}

func TestGetUpcomingEventsLimit(t *testing.T) {
	var gotLimit int32
	mockService := &dynamodb_service.MockEventService{
		GetUpcomingEventsFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string, limit int32) ([]internal_types.Event, error) {
			gotLimit = limit
			return []internal_types.Event{{Id: "event-1"}}, nil
		},
	}
	handler := NewEventHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/events/upcoming?limit=5", nil), residentUser())
	w := httptest.NewRecorder()
	handler.GetUpcomingEvents(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotLimit != 5 {
		t.Errorf("expected limit 5, got %d", gotLimit)
	}

	var events []internal_types.Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("expected one event, got %d", len(events))
	}
}
