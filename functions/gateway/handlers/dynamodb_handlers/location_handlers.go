package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type LocationHandler struct {
	LocationService internal_types.LocationServiceInterface
	EventService    internal_types.EventServiceInterface
}

func NewLocationHandler(locationService internal_types.LocationServiceInterface, eventService internal_types.EventServiceInterface) *LocationHandler {
	return &LocationHandler{LocationService: locationService, EventService: eventService}
}

func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	var createLocation internal_types.LocationInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createLocation)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createLocation.TenantId = userInfo.TenantId

	err = validate.Struct(&createLocation)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	db := transport.GetDB()
	location, err := h.LocationService.InsertLocation(r.Context(), db, createLocation)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to create location: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(location)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	locationId := vars["location_id"]
	if locationId == "" {
		transport.SendServerRes(w, []byte("Missing location ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	location, err := h.LocationService.GetLocationById(r.Context(), db, locationId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get location: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if location == nil {
		transport.SendServerRes(w, []byte("Location not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(location)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// GetLocations lists a community's locations; with lat/lng query params the
// list comes back ordered by distance from the caller.
func (h *LocationHandler) GetLocations(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	locations, err := h.LocationService.GetLocationsByTenantID(r.Context(), db, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get locations: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	latParam := r.URL.Query().Get("lat")
	lngParam := r.URL.Query().Get("lng")
	if latParam != "" && lngParam != "" {
		lat, latErr := strconv.ParseFloat(latParam, 64)
		lng, lngErr := strconv.ParseFloat(lngParam, 64)
		if latErr != nil || lngErr != nil {
			transport.SendServerRes(w, []byte("Invalid lat/lng"), http.StatusBadRequest, nil)
			return
		}

		sorted := services.SortLocationsByDistance(locations, lat, lng)
		response, err := json.Marshal(sorted)
		if err != nil {
			transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
			return
		}
		transport.SendServerRes(w, response, http.StatusOK, nil)
		return
	}

	response, err := json.Marshal(locations)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
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
	locationId := vars["location_id"]
	if locationId == "" {
		transport.SendServerRes(w, []byte("Missing location ID"), http.StatusBadRequest, nil)
		return
	}

	var update internal_types.LocationUpdate
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
	location, err := h.LocationService.UpdateLocation(r.Context(), db, locationId, userInfo.TenantId, update)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "location not found" {
			status = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to update location: "+err.Error()), status, err)
		return
	}

	response, err := json.Marshal(location)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
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
	locationId := vars["location_id"]
	if locationId == "" {
		transport.SendServerRes(w, []byte("Missing location ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err := h.LocationService.DeleteLocation(r.Context(), db, locationId, userInfo.TenantId)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "location not found" {
			status = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to delete location: "+err.Error()), status, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"deleted"}`), http.StatusOK, nil)
}

func (h *LocationHandler) GetLocationEvents(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	locationId := vars["location_id"]
	if locationId == "" {
		transport.SendServerRes(w, []byte("Missing location ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	events, err := h.EventService.GetEventsByLocationID(r.Context(), db, locationId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get location events: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(events)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// GetLocationEventCount returns how many events are scheduled at a location,
// which the booking UI shows before offering a slot.
func (h *LocationHandler) GetLocationEventCount(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	locationId := vars["location_id"]
	if locationId == "" {
		transport.SendServerRes(w, []byte("Missing location ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	count, err := h.EventService.GetLocationEventCount(r.Context(), db, locationId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to count location events: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(map[string]int32{"count": count})
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// CheckLocationAvailability answers whether a candidate booking at a location
// collides with existing events. Query params: start_date and end_date
// (required), start_time, end_time, exclude_event_id.
func (h *LocationHandler) CheckLocationAvailability(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	locationId := vars["location_id"]
	if locationId == "" {
		transport.SendServerRes(w, []byte("Missing location ID"), http.StatusBadRequest, nil)
		return
	}

	query := internal_types.AvailabilityQuery{
		LocationId:     locationId,
		TenantId:       userInfo.TenantId,
		StartDate:      r.URL.Query().Get("start_date"),
		EndDate:        r.URL.Query().Get("end_date"),
		StartTime:      r.URL.Query().Get("start_time"),
		EndTime:        r.URL.Query().Get("end_time"),
		ExcludeEventId: r.URL.Query().Get("exclude_event_id"),
	}
	if query.EndDate == "" {
		query.EndDate = query.StartDate
	}

	err := validate.Struct(&query)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid query: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	db := transport.GetDB()
	result, err := h.EventService.CheckLocationAvailability(r.Context(), db, query)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to check availability: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(result)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}
