package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var validate *validator.Validate = validator.New()

type EventHandler struct {
	EventService internal_types.EventServiceInterface
}

func NewEventHandler(eventService internal_types.EventServiceInterface) *EventHandler {
	return &EventHandler{EventService: eventService}
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var createEvent internal_types.EventInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createEvent)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createEvent.TenantId = userInfo.TenantId
	createEvent.CreatedBy = userInfo.Sub
	if createEvent.Status == "" {
		createEvent.Status = "published"
	}

	err = validate.Struct(&createEvent)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	db := transport.GetDB()
	res, err := h.EventService.InsertEvent(r.Context(), db, createEvent)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to create event: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(res)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	if eventId == "" {
		transport.SendServerRes(w, []byte("Missing event ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	event, err := h.EventService.GetEventById(r.Context(), db, eventId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get event: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if event == nil {
		transport.SendServerRes(w, []byte("Event not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(event)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *EventHandler) GetEvents(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var statuses []string
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		statuses = strings.Split(statusParam, ",")
	}
	// residents never see drafts; admins may filter however they like
	if !userInfo.IsAdmin() {
		statuses = []string{"published", "cancelled"}
	}

	db := transport.GetDB()
	events, err := h.EventService.GetEventsByTenantID(r.Context(), db, userInfo.TenantId, statuses)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get events: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(events)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *EventHandler) GetUpcomingEvents(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var limit int64
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.ParseInt(limitParam, 10, 32)
		if err != nil {
			transport.SendServerRes(w, []byte("Invalid limit: "+err.Error()), http.StatusBadRequest, err)
			return
		}
		limit = parsed
	}

	db := transport.GetDB()
	events, err := h.EventService.GetUpcomingEvents(r.Context(), db, userInfo.TenantId, int32(limit))
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get upcoming events: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(events)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	if eventId == "" {
		transport.SendServerRes(w, []byte("Missing event ID"), http.StatusBadRequest, nil)
		return
	}

	var update internal_types.EventUpdate
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &update)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	db := transport.GetDB()
	event, err := h.EventService.GetEventById(r.Context(), db, eventId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get event: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if event == nil {
		transport.SendServerRes(w, []byte("Event not found"), http.StatusNotFound, nil)
		return
	}
	// only the creator may edit their event; admins may edit any
	if event.CreatedBy != userInfo.Sub && !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	err = h.EventService.UpdateEvent(r.Context(), db, eventId, userInfo.TenantId, update)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "event not found" {
			status = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to update event: "+err.Error()), status, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"updated"}`), http.StatusOK, nil)
}

type cancelEventPayload struct {
	Reason   string `json:"reason"`
	Uncancel bool   `json:"uncancel"`
}

func (h *EventHandler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	if eventId == "" {
		transport.SendServerRes(w, []byte("Missing event ID"), http.StatusBadRequest, nil)
		return
	}

	var payload cancelEventPayload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
			return
		}
	}

	db := transport.GetDB()
	event, err := h.EventService.GetEventById(r.Context(), db, eventId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get event: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if event == nil {
		transport.SendServerRes(w, []byte("Event not found"), http.StatusNotFound, nil)
		return
	}
	if event.CreatedBy != userInfo.Sub && !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	err = h.EventService.CancelEvent(r.Context(), db, eventId, userInfo.TenantId, payload.Reason, userInfo.Sub, payload.Uncancel)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "event not found" {
			status = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to cancel event: "+err.Error()), status, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"ok"}`), http.StatusOK, nil)
}

func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	if eventId == "" {
		transport.SendServerRes(w, []byte("Missing event ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err := h.EventService.DeleteEvent(r.Context(), db, eventId, userInfo.TenantId)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "event not found" {
			status = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to delete event: "+err.Error()), status, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"deleted"}`), http.StatusOK, nil)
}

type flagEventPayload struct {
	Reason string `json:"reason"`
}

func (h *EventHandler) FlagEvent(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	if eventId == "" {
		transport.SendServerRes(w, []byte("Missing event ID"), http.StatusBadRequest, nil)
		return
	}

	var payload flagEventPayload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
			return
		}
	}

	db := transport.GetDB()
	err = h.EventService.FlagEvent(r.Context(), db, eventId, userInfo.TenantId, userInfo.Sub, payload.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "already flagged") {
			status = http.StatusConflict
		}
		transport.SendServerRes(w, []byte("Failed to flag event: "+err.Error()), status, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"flagged"}`), http.StatusCreated, nil)
}

func (h *EventHandler) DismissEventFlag(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	vars := mux.Vars(r)
	eventId := vars["event_id"]
	reportedBy := vars["user_id"]
	if eventId == "" || reportedBy == "" {
		transport.SendServerRes(w, []byte("Missing event ID or user ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err := h.EventService.DismissEventFlag(r.Context(), db, eventId, reportedBy)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to dismiss flag: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"dismissed"}`), http.StatusOK, nil)
}

func (h *EventHandler) CreateEventCategory(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	var createCategory internal_types.EventCategoryInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createCategory)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createCategory.TenantId = userInfo.TenantId

	db := transport.GetDB()
	category, err := h.EventService.InsertEventCategory(r.Context(), db, createCategory)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to create category: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(category)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *EventHandler) GetEventCategories(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	categories, err := h.EventService.GetEventCategoriesByTenantID(r.Context(), db, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get categories: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(categories)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}
