package dynamodb_handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	dynamodb_service "github.com/villagehq/api/functions/gateway/services/dynamodb_service"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

func TestGetRequestHidesPrivateFromStrangers(t *testing.T) {
	mockService := &dynamodb_service.MockResidentRequestService{
		GetRequestByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId string) (*internal_types.ResidentRequest, error) {
			return &internal_types.ResidentRequest{Id: requestId, TenantId: tenantId, UserId: "someone-else", Visibility: "private"}, nil
		},
	}
	handler := NewResidentRequestHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/requests/req-1", nil), residentUser())
	req = mux.SetURLVars(req, map[string]string{"request_id": "req-1"})
	w := httptest.NewRecorder()
	handler.GetRequest(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for another resident's private request, got %d", w.Code)
	}
}

func TestGetRequestAdminSeesPrivate(t *testing.T) {
	mockService := &dynamodb_service.MockResidentRequestService{
		GetRequestByIdFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId string) (*internal_types.ResidentRequest, error) {
			return &internal_types.ResidentRequest{Id: requestId, TenantId: tenantId, UserId: "someone-else", Visibility: "private"}, nil
		},
	}
	handler := NewResidentRequestHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/requests/req-1", nil), adminUser())
	req = mux.SetURLVars(req, map[string]string{"request_id": "req-1"})
	w := httptest.NewRecorder()
	handler.GetRequest(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for an admin, got %d", w.Code)
	}
}

func TestGetRequestsMergesMineAndCommunity(t *testing.T) {
	mockService := &dynamodb_service.MockResidentRequestService{
		GetRequestsByUserIDFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ResidentRequest, error) {
			return []internal_types.ResidentRequest{
				{Id: "req-1", UserId: "user-123", Visibility: "community"},
				{Id: "req-2", UserId: "user-123", Visibility: "private"},
			}, nil
		},
		GetCommunityRequestsFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error) {
			return []internal_types.ResidentRequest{
				{Id: "req-1", UserId: "user-123", Visibility: "community"},
				{Id: "req-3", UserId: "neighbor", Visibility: "community"},
			}, nil
		},
	}
	handler := NewResidentRequestHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/requests", nil), residentUser())
	w := httptest.NewRecorder()
	handler.GetRequests(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var requests []internal_types.ResidentRequest
	if err := json.Unmarshal(w.Body.Bytes(), &requests); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(requests) != 3 {
		t.Errorf("expected 3 deduplicated requests, got %d", len(requests))
	}
}

func TestGetRequestsAdminSeesAll(t *testing.T) {
	called := false
	mockService := &dynamodb_service.MockResidentRequestService{
		GetRequestsByTenantIDFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ResidentRequest, error) {
			called = true
			return []internal_types.ResidentRequest{}, nil
		},
	}
	handler := NewResidentRequestHandler(mockService)

	req := requestWithUser(httptest.NewRequest("GET", "/api/requests", nil), adminUser())
	w := httptest.NewRecorder()
	handler.GetRequests(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !called {
		t.Error("expected the tenant-wide listing for an admin")
	}
}

func TestUpdateRequestStatusInvalidTransition(t *testing.T) {
	mockService := &dynamodb_service.MockResidentRequestService{
		UpdateRequestStatusFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, status string) (*internal_types.ResidentRequest, error) {
			return nil, fmt.Errorf("cannot move a resolved request to open")
		},
	}
	handler := NewResidentRequestHandler(mockService)

	req := requestWithUser(httptest.NewRequest("PUT", "/api/requests/req-1/status", bytes.NewBufferString(`{"status":"open"}`)), adminUser())
	req = mux.SetURLVars(req, map[string]string{"request_id": "req-1"})
	w := httptest.NewRecorder()
	handler.UpdateRequestStatus(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestUpdateRequestStatusRequiresAdmin(t *testing.T) {
	mockService := &dynamodb_service.MockResidentRequestService{
		UpdateRequestStatusFunc: func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, requestId, tenantId, status string) (*internal_types.ResidentRequest, error) {
			t.Error("expected no status change for a resident")
			return nil, nil
		},
	}
	handler := NewResidentRequestHandler(mockService)

	req := requestWithUser(httptest.NewRequest("PUT", "/api/requests/req-1/status", bytes.NewBufferString(`{"status":"resolved"}`)), residentUser())
	req = mux.SetURLVars(req, map[string]string{"request_id": "req-1"})
	w := httptest.NewRecorder()
	handler.UpdateRequestStatus(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestAddAdminReplyMissingReply(t *testing.T) {
	handler := NewResidentRequestHandler(&dynamodb_service.MockResidentRequestService{})

	req := requestWithUser(httptest.NewRequest("POST", "/api/requests/req-1/reply", bytes.NewBufferString(`{}`)), adminUser())
	req = mux.SetURLVars(req, map[string]string{"request_id": "req-1"})
	w := httptest.NewRecorder()
	handler.AddAdminReply(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
