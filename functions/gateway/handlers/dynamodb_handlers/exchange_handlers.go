package dynamodb_handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/villagehq/api/functions/gateway/helpers"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/transport"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

type ExchangeHandler struct {
	ExchangeService     internal_types.ExchangeServiceInterface
	NotificationService internal_types.NotificationServiceInterface
}

func NewExchangeHandler(exchangeService internal_types.ExchangeServiceInterface, notificationService internal_types.NotificationServiceInterface) *ExchangeHandler {
	return &ExchangeHandler{ExchangeService: exchangeService, NotificationService: notificationService}
}

// notifyCounterparty tells the other side of a transaction about a state
// change. Failures are logged, not surfaced; the transition itself already
// committed.
func (h *ExchangeHandler) notifyCounterparty(ctx context.Context, transaction *internal_types.ExchangeTransaction, actorId, notifType, title, message string, actionRequired bool) {
	if h.NotificationService == nil || transaction == nil {
		return
	}
	recipientId := transaction.LenderId
	if actorId == transaction.LenderId {
		recipientId = transaction.BorrowerId
	}

	db := transport.GetDB()
	_, err := h.NotificationService.InsertNotification(ctx, db, internal_types.NotificationInsert{
		TenantId:       transaction.TenantId,
		RecipientId:    recipientId,
		ActorId:        actorId,
		Type:           notifType,
		Title:          title,
		Message:        message,
		ListingId:      transaction.ListingId,
		TransactionId:  transaction.Id,
		ActionRequired: actionRequired,
	})
	if err != nil {
		log.Printf("ERR: failed to notify %s about transaction %s: %v", recipientId, transaction.Id, err)
	}
}

func (h *ExchangeHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	var createListing internal_types.ExchangeListingInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createListing)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createListing.TenantId = userInfo.TenantId
	createListing.OwnerId = userInfo.Sub

	db := transport.GetDB()
	listing, err := h.ExchangeService.InsertListing(r.Context(), db, createListing)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to create listing: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(listing)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *ExchangeHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	listingId := vars["listing_id"]
	if listingId == "" {
		transport.SendServerRes(w, []byte("Missing listing ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	listing, err := h.ExchangeService.GetListingById(r.Context(), db, listingId, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get listing: "+err.Error()), http.StatusInternalServerError, err)
		return
	}
	if listing == nil {
		transport.SendServerRes(w, []byte("Listing not found"), http.StatusNotFound, nil)
		return
	}

	response, err := json.Marshal(listing)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *ExchangeHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	listings, err := h.ExchangeService.GetListingsByTenantID(r.Context(), db, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get listings: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(listings)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *ExchangeHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	listingId := vars["listing_id"]
	if listingId == "" {
		transport.SendServerRes(w, []byte("Missing listing ID"), http.StatusBadRequest, nil)
		return
	}

	db := transport.GetDB()
	err := h.ExchangeService.DeleteListing(r.Context(), db, listingId, userInfo.TenantId, userInfo.Sub)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err.Error() {
		case "listing not found":
			statusCode = http.StatusNotFound
		case "you can only delete your own listings":
			statusCode = http.StatusForbidden
		}
		transport.SendServerRes(w, []byte("Failed to delete listing: "+err.Error()), statusCode, err)
		return
	}

	transport.SendServerRes(w, []byte(`{"status":"deleted"}`), http.StatusOK, nil)
}

// RequestItem opens a transaction against a listing with the caller as
// borrower.
func (h *ExchangeHandler) RequestItem(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	listingId := vars["listing_id"]
	if listingId == "" {
		transport.SendServerRes(w, []byte("Missing listing ID"), http.StatusBadRequest, nil)
		return
	}

	var createTransaction internal_types.ExchangeTransactionInsert
	body, err := io.ReadAll(r.Body)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to read request body: "+err.Error()), http.StatusBadRequest, err)
		return
	}

	err = json.Unmarshal(body, &createTransaction)
	if err != nil {
		transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
		return
	}

	createTransaction.TenantId = userInfo.TenantId
	createTransaction.ListingId = listingId
	createTransaction.BorrowerId = userInfo.Sub

	db := transport.GetDB()
	transaction, err := h.ExchangeService.RequestTransaction(r.Context(), db, createTransaction)
	if err != nil {
		statusCode := http.StatusInternalServerError
		msg := err.Error()
		switch {
		case msg == "listing not found":
			statusCode = http.StatusNotFound
		case msg == "you cannot request your own listing":
			statusCode = http.StatusBadRequest
		case msg == "listing is not available", strings.Contains(msg, "available"):
			statusCode = http.StatusConflict
		}
		transport.SendServerRes(w, []byte("Failed to request item: "+msg), statusCode, err)
		return
	}

	h.notifyCounterparty(r.Context(), transaction, userInfo.Sub, "exchange_request", "New item request", "Someone wants to borrow your listing", true)

	response, err := json.Marshal(transaction)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusCreated, nil)
}

func (h *ExchangeHandler) ConfirmTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "exchange_confirmed", "Request confirmed", func(transactionId string, userInfo helpers.UserInfo) (*internal_types.ExchangeTransaction, error) {
		db := transport.GetDB()
		return h.ExchangeService.ConfirmTransaction(r.Context(), db, transactionId, userInfo.TenantId, userInfo.Sub)
	})
}

func (h *ExchangeHandler) MarkItemPickedUp(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "exchange_picked_up", "Item picked up", func(transactionId string, userInfo helpers.UserInfo) (*internal_types.ExchangeTransaction, error) {
		db := transport.GetDB()
		return h.ExchangeService.MarkItemPickedUp(r.Context(), db, transactionId, userInfo.TenantId, userInfo.Sub)
	})
}

func (h *ExchangeHandler) MarkItemReturned(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	transactionId := vars["transaction_id"]
	if transactionId == "" {
		transport.SendServerRes(w, []byte("Missing transaction ID"), http.StatusBadRequest, nil)
		return
	}

	var details internal_types.ReturnDetails
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &details); err != nil {
			transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
			return
		}
	}

	db := transport.GetDB()
	transaction, err := h.ExchangeService.MarkItemReturned(r.Context(), db, transactionId, userInfo.TenantId, userInfo.Sub, details)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to mark returned: "+err.Error()), transactionErrorStatus(err), err)
		return
	}

	h.notifyCounterparty(r.Context(), transaction, userInfo.Sub, "exchange_returned", "Item returned", details.Notes, false)

	response, err := json.Marshal(transaction)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

type cancelTransactionPayload struct {
	Reason string `json:"reason"`
}

func (h *ExchangeHandler) CancelTransaction(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	transactionId := vars["transaction_id"]
	if transactionId == "" {
		transport.SendServerRes(w, []byte("Missing transaction ID"), http.StatusBadRequest, nil)
		return
	}

	var payload cancelTransactionPayload
	body, err := io.ReadAll(r.Body)
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err != nil {
			transport.SendServerRes(w, []byte("Invalid JSON payload: "+err.Error()), http.StatusUnprocessableEntity, err)
			return
		}
	}

	db := transport.GetDB()
	transaction, err := h.ExchangeService.CancelTransaction(r.Context(), db, transactionId, userInfo.TenantId, userInfo.Sub, payload.Reason)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to cancel transaction: "+err.Error()), transactionErrorStatus(err), err)
		return
	}

	h.notifyCounterparty(r.Context(), transaction, userInfo.Sub, "exchange_cancelled", "Request cancelled", payload.Reason, false)

	response, err := json.Marshal(transaction)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *ExchangeHandler) GetMyTransactions(w http.ResponseWriter, r *http.Request) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	db := transport.GetDB()
	transactions, err := h.ExchangeService.GetTransactionsByUserID(r.Context(), db, userInfo.Sub, userInfo.TenantId)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to get transactions: "+err.Error()), http.StatusInternalServerError, err)
		return
	}

	response, err := json.Marshal(transactions)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func (h *ExchangeHandler) transition(w http.ResponseWriter, r *http.Request, notifType, notifTitle string, apply func(transactionId string, userInfo helpers.UserInfo) (*internal_types.ExchangeTransaction, error)) {
	userInfo := services.GetUserInfo(r.Context())
	if userInfo.Sub == "" {
		transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, nil)
		return
	}

	vars := mux.Vars(r)
	transactionId := vars["transaction_id"]
	if transactionId == "" {
		transport.SendServerRes(w, []byte("Missing transaction ID"), http.StatusBadRequest, nil)
		return
	}

	transaction, err := apply(transactionId, userInfo)
	if err != nil {
		transport.SendServerRes(w, []byte("Failed to update transaction: "+err.Error()), transactionErrorStatus(err), err)
		return
	}

	h.notifyCounterparty(r.Context(), transaction, userInfo.Sub, notifType, notifTitle, "", false)

	response, err := json.Marshal(transaction)
	if err != nil {
		transport.SendServerRes(w, []byte("Error marshaling JSON"), http.StatusInternalServerError, err)
		return
	}

	transport.SendServerRes(w, response, http.StatusOK, nil)
}

func transactionErrorStatus(err error) int {
	msg := err.Error()
	switch {
	case msg == "transaction not found", msg == "listing not found":
		return http.StatusNotFound
	case msg == "transaction does not involve you",
		strings.HasPrefix(msg, "only the lender"):
		return http.StatusForbidden
	case strings.HasPrefix(msg, "cannot"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
