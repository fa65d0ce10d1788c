package dynamodb_handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type UserProfileHandler struct {
	UserProfileService internal_types.UserProfileServiceInterface
}

func NewUserProfileHandler(userProfileService internal_types.UserProfileServiceInterface) *UserProfileHandler {
	return &UserProfileHandler{UserProfileService: userProfileService}
}

// GetMyProfile returns the caller's profile. A user who has never saved
// anything gets an empty profile rather than a 404 so the onboarding flow
// has something to render.
func (h *UserProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	profile, err := h.UserProfileService.GetUserProfile(r.Context(), db, userInfo.Sub)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get profile: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if profile == nil {
		profile = &internal_types.UserProfile{
			UserId:   userInfo.Sub,
			TenantId: userInfo.TenantId,
			Email:    userInfo.Email,
		}
	}

	response, err := json.Marshal(profile)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *UserProfileHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var update internal_types.UserProfileUpdate
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
	err = h.UserProfileService.UpdateUserProfile(r.Context(), db, userInfo.Sub, userInfo.TenantId, update)
	if err != nil {
		status := http.StatusInternalServerError
		if err.Error() == "no fields to update" {
			status = http.StatusBadRequest
		}
		transport.SendServerRes(w, []byte("Failed to update profile: "+err.Error()), status, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"updated"}`), http.StatusOK, nil)
}

func (h *UserProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	err := h.UserProfileService.CompleteOnboarding(r.Context(), db, userInfo.Sub)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to complete onboarding: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"completed"}`), http.StatusOK, nil)
}

func (h *UserProfileHandler) GetMyPrivacySettings(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	settings, err := h.UserProfileService.GetPrivacySettings(r.Context(), db, userInfo.Sub)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get privacy settings: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(settings)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

// UpdateMyPrivacySettings replaces the caller's full toggle set. The user id
// always comes from the token, never from the payload.
func (h *UserProfileHandler) UpdateMyPrivacySettings(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var settings internal_types.PrivacySettings
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &settings)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	settings.UserId = userInfo.Sub

	db := transport.GetDB()
	err = h.UserProfileService.UpsertPrivacySettings(r.Context(), db, settings)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to update privacy settings: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"updated"}`), http.StatusOK, nil)
}
