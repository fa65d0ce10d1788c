package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/helpers"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type EventRsvpHandler struct {
	EventRsvpService internal_types.EventRsvpServiceInterface
}

func NewEventRsvpHandler(eventRsvpService internal_types.EventRsvpServiceInterface) *EventRsvpHandler {
	return &EventRsvpHandler{EventRsvpService: eventRsvpService}
}

type rsvpPayload struct {
	Status string `json:"status"`
	Scope  string `json:"scope"`
}

// RsvpToEvent records the caller's response to an event. The body carries the
// status (canonical or legacy yes/maybe/no vocabulary) and an optional scope
// of "this" or "series".
func (h *EventRsvpHandler) RsvpToEvent(w http.ResponseWriter, r *http.Request) {
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

	var payload rsvpPayload
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &payload)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	// legacy clients say yes/maybe/no
	status := helpers.CanonicalRsvpStatus(payload.Status)

	db := transport.GetDB()
	err = h.EventRsvpService.RsvpToEvent(r.Context(), db, eventId, userInfo.TenantId, userInfo.Sub, status, payload.Scope)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err.Error() {
		case "event not found":
			statusCode = http.StatusNotFound
		case "event is full", "rsvp deadline has passed", "event is cancelled":
			statusCode = http.StatusConflict
		}
		transport.SendServerRes(w, []byte("Failed to rsvp: "+err.Error()), statusCode, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"ok"}`), http.StatusOK, nil)
}

func (h *EventRsvpHandler) GetEventRsvps(w http.ResponseWriter, r *http.Request) {
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
	rsvps, err := h.EventRsvpService.GetEventRsvpsByEventID(r.Context(), db, eventId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get rsvps: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(rsvps)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *EventRsvpHandler) GetEventRsvpCounts(w http.ResponseWriter, r *http.Request) {
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
	counts, err := h.EventRsvpService.GetEventRsvpCounts(r.Context(), db, eventId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get rsvp counts: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(counts)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *EventRsvpHandler) GetMyRsvps(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	rsvps, err := h.EventRsvpService.GetEventRsvpsByUserID(r.Context(), db, userInfo.Sub)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get rsvps: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(rsvps)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *EventRsvpHandler) DeleteEventRsvp(w http.ResponseWriter, r *http.Request) {
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
	err := h.EventRsvpService.DeleteEventRsvp(r.Context(), db, eventId, userInfo.Sub)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to delete rsvp: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"deleted"}`), http.StatusOK, nil)
}
