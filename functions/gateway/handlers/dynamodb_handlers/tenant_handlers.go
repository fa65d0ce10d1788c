package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/helpers"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type TenantHandler struct {
	TenantService internal_types.TenantServiceInterface
}

func NewTenantHandler(tenantService internal_types.TenantServiceInterface) *TenantHandler {
	return &TenantHandler{TenantService: tenantService}
}

// CreateTenant provisions a new community. Restricted to super admins.
func (h *TenantHandler) CreateTenant(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}
	if userInfo.Role != helpers.RoleSuperAdmin {
		transport.SendServerRes(w, []byte("Forbidden"), http.StatusForbidden, nil)
		return
	}

	var createTenant internal_types.TenantInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createTenant)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	db := transport.GetDB()
	tenant, err := h.TenantService.InsertTenant(r.Context(), db, createTenant)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if strings.Contains(err.Error(), "already taken") {
			statusCode = http.StatusConflict
		}
		transport.SendServerRes(w, []byte("Failed to create tenant: "+err.Error()), statusCode, err)
		return
	}

	response, err := json.Marshal(tenant)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *TenantHandler) GetMyTenant(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	tenant, err := h.TenantService.GetTenantById(r.Context(), db, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get tenant: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if tenant == nil {
		transport.SendServerRes(w, []byte("Tenant not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(tenant)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// GetTenantBySlug resolves a community by its public slug. This route backs
// the community picker, so it does not require auth.
func (h *TenantHandler) GetTenantBySlug(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	slug := vars["slug"]
	if slug == "" {
		transport.SendServerRes(w, []byte("Missing slug"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	tenant, err := h.TenantService.GetTenantBySlug(r.Context(), db, slug)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get tenant: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if tenant == nil {
		transport.SendServerRes(w, []byte("Tenant not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(tenant)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}
