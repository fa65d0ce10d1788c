package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type ReservationHandler struct {
	ReservationService  internal_types.ReservationServiceInterface
	NotificationService internal_types.NotificationServiceInterface
}

func NewReservationHandler(reservationService internal_types.ReservationServiceInterface, notificationService internal_types.NotificationServiceInterface) *ReservationHandler {
	return &ReservationHandler{ReservationService: reservationService, NotificationService: notificationService}
}

// CreateReservation books a facility for the caller. The service enforces the
// tenant flag, location reservability, duration and quota limits, and overlap.
func (h *ReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var createReservation internal_types.ReservationInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createReservation)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createReservation.TenantId = userInfo.TenantId
	createReservation.UserId = userInfo.Sub

	db := transport.GetDB()
	reservation, err := h.ReservationService.CreateReservation(r.Context(), db, createReservation)
	if err != nil {
		statusCode := http.StatusInternalServerError
		msg := err.Error()
		switch {
		case strings.Contains(msg, "already reserved"):
			statusCode = http.StatusConflict
		case strings.Contains(msg, "active reservations"),
			strings.Contains(msg, "not reservable"),
			strings.Contains(msg, "disabled for this community"),
			strings.Contains(msg, "in the past"),
			strings.Contains(msg, "must end after"),
			strings.Contains(msg, "cannot exceed"):
			statusCode = http.StatusBadRequest
		case msg == "location not found":
			statusCode = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to create reservation: "+msg), statusCode, err)
		return
	}

	response, err := json.Marshal(reservation)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *ReservationHandler) GetReservation(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	reservationId := vars["reservation_id"]
	if reservationId == "" {
		transport.SendServerRes(w, []byte("Missing reservation ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	reservation, err := h.ReservationService.GetReservationById(r.Context(), db, reservationId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get reservation: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if reservation == nil {
		transport.SendServerRes(w, []byte("Reservation not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(reservation)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *ReservationHandler) GetLocationReservations(w http.ResponseWriter, r *http.Request) {
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
	reservations, err := h.ReservationService.GetReservationsByLocationID(r.Context(), db, locationId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get reservations: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(reservations)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *ReservationHandler) GetMyReservations(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	reservations, err := h.ReservationService.GetUserReservations(r.Context(), db, userInfo.Sub)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get reservations: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(reservations)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

type cancelReservationPayload struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	reservationId := vars["reservation_id"]
	if reservationId == "" {
		transport.SendServerRes(w, []byte("Missing reservation ID"), http.StatusBadRequest, nil)
		return
	}

	var payload cancelReservationPayload
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
			return
		}
	}

	db := transport.GetDB()
	reservation, err := h.ReservationService.CancelReservation(r.Context(), db, reservationId, userInfo.TenantId, userInfo.Sub, payload.Reason, userInfo.IsAdmin())
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err.Error() {
		case "reservation not found":
			statusCode = http.StatusNotFound
		case "you can only cancel your own reservations":
			statusCode = http.StatusForbidden
		}
		transport.SendServerRes(w, []byte("Failed to cancel reservation: "+err.Error()), statusCode, err)
		return
	}

	// owners already know they cancelled; only admin overrides notify
	if h.NotificationService != nil && reservation.UserId != userInfo.Sub {
		_, notifyErr := h.NotificationService.InsertNotification(r.Context(), db, internal_types.NotificationInsert{
			TenantId:    reservation.TenantId,
			RecipientId: reservation.UserId,
			ActorId:     userInfo.Sub,
			Type:        "reservation_cancelled",
			Title:       "Your reservation was cancelled",
			Message:     payload.Reason,
		})
		if notifyErr != nil {
			log.Printf("ERR: failed to notify reservation owner %s: %v", reservation.UserId, notifyErr)
		}
	}

	response, err := json.Marshal(reservation)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}
