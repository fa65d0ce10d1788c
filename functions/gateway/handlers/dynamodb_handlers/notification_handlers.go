package dynamodb_handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type NotificationHandler struct {
	NotificationService internal_types.NotificationServiceInterface
}

func NewNotificationHandler(notificationService internal_types.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{NotificationService: notificationService}
}

// GetMyNotifications lists the caller's notifications. Query params: types
// (CSV), is_read, is_archived, action_required.
func (h *NotificationHandler) GetMyNotifications(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var filters internal_types.NotificationFilters
	query := r.URL.Query()
	if typesParam := query.Get("types"); typesParam != "" {
		filters.Types = strings.Split(typesParam, ",")
	}
	filters.IsRead = parseBoolParam(query.Get("is_read"))
	filters.IsArchived = parseBoolParam(query.Get("is_archived"))
	filters.ActionRequired = parseBoolParam(query.Get("action_required"))

	db := transport.GetDB()
	notifications, err := h.NotificationService.GetNotificationsByRecipientID(r.Context(), db, userInfo.Sub, userInfo.TenantId, filters)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get notifications: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(notifications)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *NotificationHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, func(notificationId, recipientId string) error {
		db := transport.GetDB()
		return h.NotificationService.MarkNotificationRead(r.Context(), db, notificationId, recipientId)
	})
}

func (h *NotificationHandler) ArchiveNotification(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, func(notificationId, recipientId string) error {
		db := transport.GetDB()
		return h.NotificationService.ArchiveNotification(r.Context(), db, notificationId, recipientId)
	})
}

func (h *NotificationHandler) setFlag(w http.ResponseWriter, r *http.Request, apply func(notificationId, recipientId string) error) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	notificationId := vars["notification_id"]
	if notificationId == "" {
		transport.SendServerRes(w, []byte("Missing notification ID"), http.StatusBadRequest, nil)
		return
	}

	err := apply(notificationId, userInfo.Sub)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "notification not found" {
			statusCode = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to update notification: "+err.Error()), statusCode, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"updated"}`), http.StatusOK, nil)
}

func parseBoolParam(value string) *bool {
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil
	}
	return &parsed
}
