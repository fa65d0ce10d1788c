package types

import (
	"context"
	"time"
)

type ExchangeListing struct {
	Id                string    `json:"id" dynamodbav:"id"`
	TenantId          string    `json:"tenant_id" dynamodbav:"tenantId"`
	OwnerId           string    `json:"owner_id" dynamodbav:"ownerId"`
	Title             string    `json:"title" dynamodbav:"title"`
	Description       string    `json:"description" dynamodbav:"description"`
	CategoryName      string    `json:"category_name" dynamodbav:"categoryName"`
	AvailableQuantity int32     `json:"available_quantity" dynamodbav:"availableQuantity"`
	IsAvailable       bool      `json:"is_available" dynamodbav:"isAvailable"`
	HeroPhoto         string    `json:"hero_photo" dynamodbav:"heroPhoto"`
	CreatedAt         time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt         time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type ExchangeListingInsert struct {
	TenantId          string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	OwnerId           string `json:"owner_id" validate:"required" dynamodbav:"ownerId"`
	Title             string `json:"title" validate:"required" dynamodbav:"title"`
	Description       string `json:"description" dynamodbav:"description"`
	CategoryName      string `json:"category_name" validate:"required" dynamodbav:"categoryName"`
	AvailableQuantity int32  `json:"available_quantity" validate:"min=1" dynamodbav:"availableQuantity"`
	HeroPhoto         string `json:"hero_photo" dynamodbav:"heroPhoto"`
}

// ExchangeTransaction tracks one borrow/give flow against a listing:
// requested -> confirmed -> picked_up -> returned, or completed at pickup for
// categories that never come back. Either party may cancel before pickup.
type ExchangeTransaction struct {
	Id                 string    `json:"id" dynamodbav:"id"`
	TenantId           string    `json:"tenant_id" dynamodbav:"tenantId"`
	ListingId          string    `json:"listing_id" dynamodbav:"listingId"`
	BorrowerId         string    `json:"borrower_id" dynamodbav:"borrowerId"`
	LenderId           string    `json:"lender_id" dynamodbav:"lenderId"`
	Quantity           int32     `json:"quantity" dynamodbav:"quantity"`
	Status             string    `json:"status" dynamodbav:"status"`
	ProposedPickupDate string    `json:"proposed_pickup_date" dynamodbav:"proposedPickupDate"`
	ActualPickupDate   string    `json:"actual_pickup_date" dynamodbav:"actualPickupDate"`
	ExpectedReturnDate string    `json:"expected_return_date" dynamodbav:"expectedReturnDate"`
	ActualReturnDate   string    `json:"actual_return_date" dynamodbav:"actualReturnDate"`
	ReturnCondition    string    `json:"return_condition" dynamodbav:"returnCondition"`
	ReturnNotes        string    `json:"return_notes" dynamodbav:"returnNotes"`
	CompletedAt        string    `json:"completed_at" dynamodbav:"completedAt"`
	CancelledBy        string    `json:"cancelled_by" dynamodbav:"cancelledBy"`
	CancellationReason string    `json:"cancellation_reason" dynamodbav:"cancellationReason"`
	CreatedAt          time.Time `json:"created_at" dynamodbav:"createdAt"`
	UpdatedAt          time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type ExchangeTransactionInsert struct {
	TenantId           string `json:"tenant_id" validate:"required" dynamodbav:"tenantId"`
	ListingId          string `json:"listing_id" validate:"required" dynamodbav:"listingId"`
	BorrowerId         string `json:"borrower_id" validate:"required" dynamodbav:"borrowerId"`
	Quantity           int32  `json:"quantity" validate:"min=1" dynamodbav:"quantity"`
	ProposedPickupDate string `json:"proposed_pickup_date" dynamodbav:"proposedPickupDate"`
	ExpectedReturnDate string `json:"expected_return_date" dynamodbav:"expectedReturnDate"`
}

type ReturnDetails struct {
	Condition string `json:"condition"`
	Notes     string `json:"notes"`
}

type ExchangeServiceInterface interface {
	InsertListing(ctx context.Context, dynamodbClient DynamoDBAPI, listing ExchangeListingInsert) (*ExchangeListing, error)
	GetListingById(ctx context.Context, dynamodbClient DynamoDBAPI, listingId, tenantId string) (*ExchangeListing, error)
	GetListingsByTenantID(ctx context.Context, dynamodbClient DynamoDBAPI, tenantId string) ([]ExchangeListing, error)
	DeleteListing(ctx context.Context, dynamodbClient DynamoDBAPI, listingId, tenantId, ownerId string) error
	RequestTransaction(ctx context.Context, dynamodbClient DynamoDBAPI, transaction ExchangeTransactionInsert) (*ExchangeTransaction, error)
	ConfirmTransaction(ctx context.Context, dynamodbClient DynamoDBAPI, transactionId, tenantId, userId string) (*ExchangeTransaction, error)
	MarkItemPickedUp(ctx context.Context, dynamodbClient DynamoDBAPI, transactionId, tenantId, userId string) (*ExchangeTransaction, error)
	MarkItemReturned(ctx context.Context, dynamodbClient DynamoDBAPI, transactionId, tenantId, userId string, details ReturnDetails) (*ExchangeTransaction, error)
	CancelTransaction(ctx context.Context, dynamodbClient DynamoDBAPI, transactionId, tenantId, userId, reason string) (*ExchangeTransaction, error)
	GetTransactionsByUserID(ctx context.Context, dynamodbClient DynamoDBAPI, userId, tenantId string) ([]ExchangeTransaction, error)
}
