package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type AnnouncementHandler struct {
	AnnouncementService internal_types.AnnouncementServiceInterface
	Publisher           services.NotificationPublisherInterface
}

func NewAnnouncementHandler(announcementService internal_types.AnnouncementServiceInterface, publisher services.NotificationPublisherInterface) *AnnouncementHandler {
	return &AnnouncementHandler{AnnouncementService: announcementService, Publisher: publisher}
}

// signalPublished hands the published announcement ids to the delivery
// pipeline on the stream; per-resident fan-out happens downstream.
func (h *AnnouncementHandler) signalPublished(r *http.Request, tenantId string, announcementIds []string) {
	if h.Publisher == nil {
		return
	}

	payload, err := json.Marshal(map[string]interface{}{
		"tenant_id":        tenantId,
		"announcement_ids": announcementIds,
	})
	if err != nil {
		return
	}

	subject := os.Getenv("NATS_NOTIFICATIONS_SUBJECT_PREFIX") + ".announcement_published"
	if err := h.Publisher.Publish(r.Context(), subject, payload); err != nil {
		log.Printf("ERR: failed to publish announcement signal for tenant %s: %v", tenantId, err)
	}
}

func (h *AnnouncementHandler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	var createAnnouncement internal_types.AnnouncementInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createAnnouncement)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createAnnouncement.TenantId = userInfo.TenantId
	createAnnouncement.AuthorId = userInfo.Sub
	if createAnnouncement.Status == "" {
		createAnnouncement.Status = "draft"
	}

	db := transport.GetDB()
	announcement, err := h.AnnouncementService.InsertAnnouncement(r.Context(), db, createAnnouncement)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to create announcement: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	if announcement.Status == "published" {
		h.signalPublished(r, userInfo.TenantId, []string{announcement.Id})
	}

	response, err := json.Marshal(announcement)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *AnnouncementHandler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	announcementId := vars["announcement_id"]
	if announcementId == "" {
		transport.SendServerRes(w, []byte("Missing announcement ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	announcement, err := h.AnnouncementService.GetAnnouncementById(r.Context(), db, announcementId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get announcement: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if announcement == nil {
		transport.SendServerRes(w, []byte("Announcement not found"), http.StatusNotFound, nil)
		return
	}
	if announcement.Status != "published" && !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Announcement not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(announcement)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// GetAnnouncements lists a community's announcements, newest first. Residents
// only ever see published rows; admins can ask for drafts or archived ones via
// ?status=.
func (h *AnnouncementHandler) GetAnnouncements(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	statuses := []string{"published"}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" && userInfo.IsAdmin() {
		statuses = strings.Split(statusParam, ",")
	}

	db := transport.GetDB()
	announcements, err := h.AnnouncementService.GetAnnouncementsByTenantID(r.Context(), db, userInfo.TenantId, statuses)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get announcements: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(announcements)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *AnnouncementHandler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
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
	announcementId := vars["announcement_id"]
	if announcementId == "" {
		transport.SendServerRes(w, []byte("Missing announcement ID"), http.StatusBadRequest, nil)
		return
	}

	var update internal_types.AnnouncementUpdate
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
	err = h.AnnouncementService.UpdateAnnouncement(r.Context(), db, announcementId, userInfo.TenantId, update)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to update announcement: "+err.Error()), statusCode, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"updated"}`), http.StatusOK, nil)
}

type announcementBatchPayload struct {
	Ids    []string `json:"ids"`
	Status string   `json:"status"`
}

// SetAnnouncementsStatus publishes, archives, or re-drafts a batch of
// announcements in one call.
func (h *AnnouncementHandler) SetAnnouncementsStatus(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	var payload announcementBatchPayload
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
	if len(payload.Ids) == 0 {
		transport.SendServerRes(w, []byte("Missing announcement IDs"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err = h.AnnouncementService.SetAnnouncementsStatus(r.Context(), db, payload.Ids, userInfo.TenantId, payload.Status)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to update announcements: "+err.Error()), statusCode, err)
		return
	}

	if payload.Status == "published" {
		h.signalPublished(r, userInfo.TenantId, payload.Ids)
	}

	transport.SendServerRes(w, []byte(`{"status":"updated"}`), http.StatusOK, nil)
}

type announcementDeletePayload struct {
	Ids []string `json:"ids"`
}

func (h *AnnouncementHandler) DeleteAnnouncements(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	var payload announcementDeletePayload
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
	if len(payload.Ids) == 0 {
		transport.SendServerRes(w, []byte("Missing announcement IDs"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err = h.AnnouncementService.DeleteAnnouncements(r.Context(), db, payload.Ids, userInfo.TenantId)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			statusCode = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to delete announcements: "+err.Error()), statusCode, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"deleted"}`), http.StatusOK, nil)
}

func (h *AnnouncementHandler) MarkAnnouncementRead(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	announcementId := vars["announcement_id"]
	if announcementId == "" {
		transport.SendServerRes(w, []byte("Missing announcement ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err := h.AnnouncementService.MarkAnnouncementRead(r.Context(), db, internal_types.AnnouncementRead{
		AnnouncementId: announcementId,
		UserId:         userInfo.Sub,
		TenantId:       userInfo.TenantId,
		ReadAt:         time.Now().UTC(),
	})
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to mark announcement read: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"read"}`), http.StatusOK, nil)
}
