package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type ResidentRequestHandler struct {
	ResidentRequestService internal_types.ResidentRequestServiceInterface
}

func NewResidentRequestHandler(residentRequestService internal_types.ResidentRequestServiceInterface) *ResidentRequestHandler {
	return &ResidentRequestHandler{ResidentRequestService: residentRequestService}
}

func (h *ResidentRequestHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var createRequest internal_types.ResidentRequestInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createRequest)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createRequest.TenantId = userInfo.TenantId
	createRequest.UserId = userInfo.Sub

	db := transport.GetDB()
	request, err := h.ResidentRequestService.InsertResidentRequest(r.Context(), db, createRequest)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to create request: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(request)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *ResidentRequestHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	requestId := vars["request_id"]
	if requestId == "" {
		transport.SendServerRes(w, []byte("Missing request ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	request, err := h.ResidentRequestService.GetRequestById(r.Context(), db, requestId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get request: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if request == nil {
		transport.SendServerRes(w, []byte("Request not found"), http.StatusNotFound, nil)
		return
	}

	// private requests are visible to their author and admins only
	if request.Visibility != "community" && request.UserId != userInfo.Sub && !userInfo.IsAdmin() {
		transport.SendServerRes(w, []byte("Request not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(request)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// GetRequests lists requests for the caller: admins see every request in the
// community, residents see their own plus community-visible ones from others.
func (h *ResidentRequestHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()

	if userInfo.IsAdmin() {
		requests, err := h.ResidentRequestService.GetRequestsByTenantID(r.Context(), db, userInfo.TenantId)
		if err != nil {
			transport.SendServerRes(w, []byte("Failed to get requests: "+err.Error()), http.StatusInternalServerError, err)
			return
		}
		response, err := json.Marshal(requests)
		if err != nil {
			transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
			return
		}
		transport.SendServerRes(w, response, http.StatusOK, nil)
		return
	}

	mine, err := h.ResidentRequestService.GetRequestsByUserID(r.Context(), db, userInfo.Sub, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get requests: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	community, err := h.ResidentRequestService.GetCommunityRequests(r.Context(), db, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get requests: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	seen := make(map[string]bool, len(mine))
	requests := make([]internal_types.ResidentRequest, 0, len(mine)+len(community))
	for _, request := range mine {
		seen[request.Id] = true
		requests = append(requests, request)
	}
	for _, request := range community {
		if !seen[request.Id] {
			requests = append(requests, request)
		}
	}

	response, err := json.Marshal(requests)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

type requestStatusPayload struct {
	Status string `json:"status"`
}

func (h *ResidentRequestHandler) UpdateRequestStatus(w http.ResponseWriter, r *http.Request) {
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
	requestId := vars["request_id"]
	if requestId == "" {
		transport.SendServerRes(w, []byte("Missing request ID"), http.StatusBadRequest, nil)
		return
	}

	var payload requestStatusPayload
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

	db := transport.GetDB()
	request, err := h.ResidentRequestService.UpdateRequestStatus(r.Context(), db, requestId, userInfo.TenantId, payload.Status)
	if err != nil {
		statusCode := http.StatusInternalServerError
		msg := err.Error()
		switch {
		case msg == "request not found":
			statusCode = http.StatusNotFound
		case strings.HasPrefix(msg, "cannot move"):
			statusCode = http.StatusConflict
		}
		transport.SendServerRes(w, []byte("Failed to update request: "+msg), statusCode, err)
		return
	}

	response, err := json.Marshal(request)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

type adminReplyPayload struct {
	Reply string `json:"reply"`
}

func (h *ResidentRequestHandler) AddAdminReply(w http.ResponseWriter, r *http.Request) {
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
	requestId := vars["request_id"]
	if requestId == "" {
		transport.SendServerRes(w, []byte("Missing request ID"), http.StatusBadRequest, nil)
		return
	}

	var payload adminReplyPayload
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
	if payload.Reply == "" {
		transport.SendServerRes(w, []byte("Missing reply"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	request, err := h.ResidentRequestService.AddAdminReply(r.Context(), db, requestId, userInfo.TenantId, payload.Reply, userInfo.Sub)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "request not found" {
			statusCode = http.StatusNotFound
		}
		transport.SendServerRes(w, []byte("Failed to add reply: "+err.Error()), statusCode, err)
		return
	}

	response, err := json.Marshal(request)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}
