package dynamodb_service

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/villagehq/api/functions/gateway/test_helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

// exchangeMockDB serves the listing and transaction rows and applies
// UpdateItem expressions naively by recording them.
type exchangeFixture struct {
	listing        internal_types.ExchangeListing
	transaction    internal_types.ExchangeTransaction
	listingUpdates []*dynamodb.UpdateItemInput
}

func (f *exchangeFixture) mockDB(t *testing.T) *test_helpers.MockDynamoDBClient {
	t.Helper()

	return &test_helpers.MockDynamoDBClient{
		GetItemFunc: func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			switch *params.TableName {
			case exchangeListingsTableName:
				item, err := attributevalue.MarshalMap(&f.listing)
				if err != nil {
					t.Fatalf("failed to marshal listing: %v", err)
				}
				return &dynamodb.GetItemOutput{Item: item}, nil
			case exchangeTransactionsTableName:
				item, err := attributevalue.MarshalMap(&f.transaction)
				if err != nil {
					t.Fatalf("failed to marshal transaction: %v", err)
				}
				return &dynamodb.GetItemOutput{Item: item}, nil
			}
			return &dynamodb.GetItemOutput{}, nil
		},
		UpdateItemFunc: func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			if *params.TableName == exchangeListingsTableName {
				f.listingUpdates = append(f.listingUpdates, params)
				return &dynamodb.UpdateItemOutput{}, nil
			}
			updated := f.transaction
			if status, ok := params.ExpressionAttributeValues[":status"]; ok {
				updated.Status = status.(*dynamodb_types.AttributeValueMemberS).Value
			}
			item, err := attributevalue.MarshalMap(&updated)
			if err != nil {
				t.Fatalf("failed to marshal transaction: %v", err)
			}
			return &dynamodb.UpdateItemOutput{Attributes: item}, nil
		},
	}
}

func TestRequestTransaction(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "lender-1",
			CategoryName: "Tools & Equipment", AvailableQuantity: 3, IsAvailable: true,
		},
	}
	mockDB := fixture.mockDB(t)

	var putItem map[string]dynamodb_types.AttributeValue
	mockDB.PutItemFunc = func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
		putItem = params.Item
		return &dynamodb.PutItemOutput{}, nil
	}

	transaction, err := service.RequestTransaction(context.Background(), mockDB, internal_types.ExchangeTransactionInsert{
		TenantId: "tenant-123", ListingId: "listing-1", BorrowerId: "borrower-1", Quantity: 2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if transaction.Status != TransactionStatusRequested {
		t.Errorf("expected requested status, got %s", transaction.Status)
	}
	if transaction.LenderId != "lender-1" {
		t.Errorf("expected lender resolved from the listing, got %s", transaction.LenderId)
	}
	if putItem == nil {
		t.Fatal("expected a write")
	}
}

func TestRequestTransactionOwnListing(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "owner-1",
			CategoryName: "Tools & Equipment", AvailableQuantity: 3, IsAvailable: true,
		},
	}

	_, err := service.RequestTransaction(context.Background(), fixture.mockDB(t), internal_types.ExchangeTransactionInsert{
		TenantId: "tenant-123", ListingId: "listing-1", BorrowerId: "owner-1", Quantity: 1,
	})
	if err == nil || !strings.Contains(err.Error(), "your own listing") {
		t.Errorf("expected own-listing error, got %v", err)
	}
}

func TestRequestTransactionInsufficientQuantity(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "lender-1",
			CategoryName: "Tools & Equipment", AvailableQuantity: 1, IsAvailable: true,
		},
	}

	_, err := service.RequestTransaction(context.Background(), fixture.mockDB(t), internal_types.ExchangeTransactionInsert{
		TenantId: "tenant-123", ListingId: "listing-1", BorrowerId: "borrower-1", Quantity: 2,
	})
	if err == nil || !strings.Contains(err.Error(), "available") {
		t.Errorf("expected quantity error, got %v", err)
	}
}

func TestConfirmTransactionLenderOnly(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 1,
			Status: TransactionStatusRequested,
		},
	}

	if _, err := service.ConfirmTransaction(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "borrower-1"); err == nil {
		t.Error("expected the borrower to be unable to confirm")
	}

	confirmed, err := service.ConfirmTransaction(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "lender-1")
	if err != nil {
		t.Fatalf("expected lender confirm to succeed, got %v", err)
	}
	if confirmed.Status != TransactionStatusConfirmed {
		t.Errorf("expected confirmed, got %s", confirmed.Status)
	}
}

func TestMarkItemPickedUpDecrementsStock(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "lender-1",
			CategoryName: "Tools & Equipment", AvailableQuantity: 2, IsAvailable: true,
		},
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 2,
			Status: TransactionStatusConfirmed,
		},
	}

	pickedUp, err := service.MarkItemPickedUp(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "lender-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if pickedUp.Status != TransactionStatusPickedUp {
		t.Errorf("expected picked_up, got %s", pickedUp.Status)
	}

	if len(fixture.listingUpdates) != 1 {
		t.Fatalf("expected one stock adjustment, got %d", len(fixture.listingUpdates))
	}
	update := fixture.listingUpdates[0]
	if got := update.ExpressionAttributeValues[":availableQuantity"].(*dynamodb_types.AttributeValueMemberN).Value; got != "0" {
		t.Errorf("expected remaining quantity 0, got %s", got)
	}
	if got := update.ExpressionAttributeValues[":isAvailable"].(*dynamodb_types.AttributeValueMemberBOOL).Value; got != false {
		t.Error("expected listing to become unavailable at zero stock")
	}
}

func TestMarkItemPickedUpFoodCompletes(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "lender-1",
			CategoryName: "Food & Produce", AvailableQuantity: 5, IsAvailable: true,
		},
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 2,
			Status: TransactionStatusConfirmed,
		},
	}

	completed, err := service.MarkItemPickedUp(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "borrower-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completed.Status != TransactionStatusCompleted {
		t.Errorf("expected food pickup to complete immediately, got %s", completed.Status)
	}
	if len(fixture.listingUpdates) != 1 {
		t.Fatalf("expected stock consumed, got %d adjustments", len(fixture.listingUpdates))
	}
	if got := fixture.listingUpdates[0].ExpressionAttributeValues[":availableQuantity"].(*dynamodb_types.AttributeValueMemberN).Value; got != "3" {
		t.Errorf("expected remaining quantity 3, got %s", got)
	}
}

func TestMarkItemPickedUpServiceKeepsStock(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "lender-1",
			CategoryName: "Services & Skills", AvailableQuantity: 1, IsAvailable: true,
		},
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 1,
			Status: TransactionStatusConfirmed,
		},
	}

	completed, err := service.MarkItemPickedUp(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "lender-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if completed.Status != TransactionStatusCompleted {
		t.Errorf("expected a service to complete at pickup, got %s", completed.Status)
	}
	if len(fixture.listingUpdates) != 0 {
		t.Errorf("expected no stock adjustment for a service, got %d", len(fixture.listingUpdates))
	}
}

func TestMarkItemReturnedRestoresStock(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		listing: internal_types.ExchangeListing{
			Id: "listing-1", TenantId: "tenant-123", OwnerId: "lender-1",
			CategoryName: "Tools & Equipment", AvailableQuantity: 0, IsAvailable: false,
		},
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 2,
			Status: TransactionStatusPickedUp,
		},
	}

	returned, err := service.MarkItemReturned(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "lender-1", internal_types.ReturnDetails{
		Condition: "good", Notes: "thanks",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if returned.Status != TransactionStatusReturned {
		t.Errorf("expected returned, got %s", returned.Status)
	}

	if len(fixture.listingUpdates) != 1 {
		t.Fatalf("expected one stock restore, got %d", len(fixture.listingUpdates))
	}
	update := fixture.listingUpdates[0]
	if got := update.ExpressionAttributeValues[":availableQuantity"].(*dynamodb_types.AttributeValueMemberN).Value; got != "2" {
		t.Errorf("expected restored quantity 2, got %s", got)
	}
	if got := update.ExpressionAttributeValues[":isAvailable"].(*dynamodb_types.AttributeValueMemberBOOL).Value; got != true {
		t.Error("expected listing to become available again")
	}
}

func TestMarkItemReturnedBorrowerCannotConfirm(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 1,
			Status: TransactionStatusPickedUp,
		},
	}

	_, err := service.MarkItemReturned(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "borrower-1", internal_types.ReturnDetails{})
	if err == nil || !strings.Contains(err.Error(), "lender") {
		t.Errorf("expected lender-only error, got %v", err)
	}
}

func TestCancelTransactionAfterPickup(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 1,
			Status: TransactionStatusPickedUp,
		},
	}

	_, err := service.CancelTransaction(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "borrower-1", "changed my mind")
	if err == nil || !strings.Contains(err.Error(), "cannot cancel") {
		t.Errorf("expected cancel to be rejected after pickup, got %v", err)
	}
}

func TestCancelTransactionStranger(t *testing.T) {
	service := NewExchangeService()

	fixture := &exchangeFixture{
		transaction: internal_types.ExchangeTransaction{
			Id: "txn-1", TenantId: "tenant-123", ListingId: "listing-1",
			BorrowerId: "borrower-1", LenderId: "lender-1", Quantity: 1,
			Status: TransactionStatusRequested,
		},
	}

	_, err := service.CancelTransaction(context.Background(), fixture.mockDB(t), "txn-1", "tenant-123", "stranger", "nope")
	if err == nil || !strings.Contains(err.Error(), "does not involve you") {
		t.Errorf("expected involvement error, got %v", err)
	}
}
