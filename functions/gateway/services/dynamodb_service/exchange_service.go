package dynamodb_service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/villagehq/api/functions/gateway/helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var exchangeListingsTableName = helpers.GetDbTableName(helpers.ExchangeListingsTablePrefix)
var exchangeTransactionsTableName = helpers.GetDbTableName(helpers.ExchangeTransactionsTablePrefix)

func init() {
	exchangeListingsTableName = helpers.GetDbTableName(helpers.ExchangeListingsTablePrefix)
	exchangeTransactionsTableName = helpers.GetDbTableName(helpers.ExchangeTransactionsTablePrefix)
}

const (
	borrowerIdGsi = "borrowerIdGsi"
	lenderIdGsi   = "lenderIdGsi"
)

const (
	TransactionStatusRequested = "requested"
	TransactionStatusConfirmed = "confirmed"
	TransactionStatusPickedUp  = "picked_up"
	TransactionStatusReturned  = "returned"
	TransactionStatusCompleted = "completed"
	TransactionStatusCancelled = "cancelled"
)

type ExchangeService struct{}

func NewExchangeService() internal_types.ExchangeServiceInterface {
	return &ExchangeService{}
}

func (s *ExchangeService) InsertListing(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listing internal_types.ExchangeListingInsert) (*internal_types.ExchangeListing, error) {
	if err := validate.Struct(listing); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	newListing := internal_types.ExchangeListing{
		Id:                uuid.NewString(),
		TenantId:          listing.TenantId,
		OwnerId:           listing.OwnerId,
		Title:             listing.Title,
		Description:       listing.Description,
		CategoryName:      listing.CategoryName,
		AvailableQuantity: listing.AvailableQuantity,
		IsAvailable:       true,
		HeroPhoto:         listing.HeroPhoto,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	item, err := attributevalue.MarshalMap(&newListing)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(exchangeListingsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newListing, nil
}

func (s *ExchangeService) GetListingById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listingId, tenantId string) (*internal_types.ExchangeListing, error) {
	result, err := dynamodbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(exchangeListingsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: listingId},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var listing internal_types.ExchangeListing
	err = attributevalue.UnmarshalMap(result.Item, &listing)
	if err != nil {
		return nil, err
	}

	if listing.TenantId != tenantId {
		return nil, nil
	}

	return &listing, nil
}

func (s *ExchangeService) GetListingsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ExchangeListing, error) {
	listings := make([]internal_types.ExchangeListing, 0)
	var token map[string]dynamodb_types.AttributeValue

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(exchangeListingsTableName),
			IndexName:              aws.String(tenantIdGsi),
			KeyConditionExpression: aws.String("tenantId = :tenantId"),
			ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
				":tenantId": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
			},
			ExclusiveStartKey: token,
		}

		result, err := dynamodbClient.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		var fetched []internal_types.ExchangeListing
		err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
		if err != nil {
			return nil, err
		}

		listings = append(listings, fetched...)
		token = result.LastEvaluatedKey
		if token == nil {
			break
		}
	}

	return listings, nil
}

func (s *ExchangeService) DeleteListing(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listingId, tenantId, ownerId string) error {
	listing, err := s.GetListingById(ctx, dynamodbClient, listingId, tenantId)
	if err != nil {
		return err
	}
	if listing == nil {
		return fmt.Errorf("listing not found")
	}
	if listing.OwnerId != ownerId {
		return fmt.Errorf("you can only delete your own listings")
	}

	_, err = dynamodbClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(exchangeListingsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: listingId},
		},
	})
	return err
}

// RequestTransaction opens a borrow/give flow against a listing. The lender is
// resolved from the listing, never from the caller.
func (s *ExchangeService) RequestTransaction(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transaction internal_types.ExchangeTransactionInsert) (*internal_types.ExchangeTransaction, error) {
	if err := validate.Struct(transaction); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	listing, err := s.GetListingById(ctx, dynamodbClient, transaction.ListingId, transaction.TenantId)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("listing not found")
	}
	if listing.OwnerId == transaction.BorrowerId {
		return nil, fmt.Errorf("you cannot request your own listing")
	}
	if !listing.IsAvailable {
		return nil, fmt.Errorf("listing is not available")
	}
	if transaction.Quantity > listing.AvailableQuantity {
		return nil, fmt.Errorf("only %d available", listing.AvailableQuantity)
	}

	now := time.Now()
	newTransaction := internal_types.ExchangeTransaction{
		Id:                 uuid.NewString(),
		TenantId:           transaction.TenantId,
		ListingId:          transaction.ListingId,
		BorrowerId:         transaction.BorrowerId,
		LenderId:           listing.OwnerId,
		Quantity:           transaction.Quantity,
		Status:             TransactionStatusRequested,
		ProposedPickupDate: transaction.ProposedPickupDate,
		ExpectedReturnDate: transaction.ExpectedReturnDate,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	item, err := attributevalue.MarshalMap(&newTransaction)
	if err != nil {
		return nil, err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(exchangeTransactionsTableName),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}

	return &newTransaction, nil
}

func (s *ExchangeService) getTransactionById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId string) (*internal_types.ExchangeTransaction, error) {
	result, err := dynamodbClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(exchangeTransactionsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: transactionId},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var transaction internal_types.ExchangeTransaction
	err = attributevalue.UnmarshalMap(result.Item, &transaction)
	if err != nil {
		return nil, err
	}

	if transaction.TenantId != tenantId {
		return nil, nil
	}

	return &transaction, nil
}

func (s *ExchangeService) ConfirmTransaction(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string) (*internal_types.ExchangeTransaction, error) {
	transaction, err := s.getTransactionById(ctx, dynamodbClient, transactionId, tenantId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("transaction not found")
	}
	if transaction.LenderId != userId {
		return nil, fmt.Errorf("only the lender can confirm a request")
	}
	if transaction.Status != TransactionStatusRequested {
		return nil, fmt.Errorf("cannot confirm a %s transaction", transaction.Status)
	}

	return s.setTransactionFields(ctx, dynamodbClient, transactionId, map[string]dynamodb_types.AttributeValue{
		":status": &dynamodb_types.AttributeValueMemberS{Value: TransactionStatusConfirmed},
	}, "SET #status = :status, #updatedAt = :updatedAt", map[string]string{
		"#status":    "status",
		"#updatedAt": "updatedAt",
	})
}

// MarkItemPickedUp moves a confirmed transaction to picked_up and adjusts the
// listing's stock. Consumables and services complete immediately: there is
// nothing to hand back. Food quantity stays consumed; a service listing keeps
// its quantity since no physical item left the owner.
func (s *ExchangeService) MarkItemPickedUp(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string) (*internal_types.ExchangeTransaction, error) {
	transaction, err := s.getTransactionById(ctx, dynamodbClient, transactionId, tenantId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("transaction not found")
	}
	if transaction.LenderId != userId && transaction.BorrowerId != userId {
		return nil, fmt.Errorf("transaction does not involve you")
	}
	if transaction.Status != TransactionStatusConfirmed {
		return nil, fmt.Errorf("cannot mark a %s transaction as picked up", transaction.Status)
	}

	listing, err := s.GetListingById(ctx, dynamodbClient, transaction.ListingId, tenantId)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, fmt.Errorf("listing not found")
	}

	now := time.Now().Format(time.RFC3339)
	status := TransactionStatusPickedUp
	setExpr := "SET #status = :status, #actualPickupDate = :actualPickupDate, #updatedAt = :updatedAt"
	names := map[string]string{
		"#status":           "status",
		"#actualPickupDate": "actualPickupDate",
		"#updatedAt":        "updatedAt",
	}
	values := map[string]dynamodb_types.AttributeValue{
		":status":           &dynamodb_types.AttributeValueMemberS{Value: status},
		":actualPickupDate": &dynamodb_types.AttributeValueMemberS{Value: now},
	}

	if slices.Contains(helpers.NonReturnableExchangeCategories, listing.CategoryName) {
		status = TransactionStatusCompleted
		values[":status"] = &dynamodb_types.AttributeValueMemberS{Value: status}
		setExpr += ", #completedAt = :completedAt"
		names["#completedAt"] = "completedAt"
		values[":completedAt"] = &dynamodb_types.AttributeValueMemberS{Value: now}
	}

	// services never deplete stock; everything else leaves the owner's hands
	if listing.CategoryName != "Services & Skills" {
		if err := s.adjustListingQuantity(ctx, dynamodbClient, listing, -transaction.Quantity); err != nil {
			return nil, err
		}
	}

	return s.setTransactionFields(ctx, dynamodbClient, transactionId, values, setExpr, names)
}

// MarkItemReturned closes out a borrow: the item is back, stock is restored,
// and the transaction completes.
func (s *ExchangeService) MarkItemReturned(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string, details internal_types.ReturnDetails) (*internal_types.ExchangeTransaction, error) {
	transaction, err := s.getTransactionById(ctx, dynamodbClient, transactionId, tenantId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("transaction not found")
	}
	if transaction.LenderId != userId {
		return nil, fmt.Errorf("only the lender can confirm a return")
	}
	if transaction.Status != TransactionStatusPickedUp {
		return nil, fmt.Errorf("cannot return a %s transaction", transaction.Status)
	}

	listing, err := s.GetListingById(ctx, dynamodbClient, transaction.ListingId, tenantId)
	if err != nil {
		return nil, err
	}
	if listing != nil {
		if err := s.adjustListingQuantity(ctx, dynamodbClient, listing, transaction.Quantity); err != nil {
			return nil, err
		}
	}

	now := time.Now().Format(time.RFC3339)
	return s.setTransactionFields(ctx, dynamodbClient, transactionId, map[string]dynamodb_types.AttributeValue{
		":status":           &dynamodb_types.AttributeValueMemberS{Value: TransactionStatusReturned},
		":actualReturnDate": &dynamodb_types.AttributeValueMemberS{Value: now},
		":returnCondition":  &dynamodb_types.AttributeValueMemberS{Value: details.Condition},
		":returnNotes":      &dynamodb_types.AttributeValueMemberS{Value: details.Notes},
		":completedAt":      &dynamodb_types.AttributeValueMemberS{Value: now},
	}, "SET #status = :status, #actualReturnDate = :actualReturnDate, #returnCondition = :returnCondition, #returnNotes = :returnNotes, #completedAt = :completedAt, #updatedAt = :updatedAt", map[string]string{
		"#status":           "status",
		"#actualReturnDate": "actualReturnDate",
		"#returnCondition":  "returnCondition",
		"#returnNotes":      "returnNotes",
		"#completedAt":      "completedAt",
		"#updatedAt":        "updatedAt",
	})
}

// CancelTransaction aborts a flow before pickup. Stock was not yet adjusted at
// this point, so nothing needs restoring.
func (s *ExchangeService) CancelTransaction(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId, reason string) (*internal_types.ExchangeTransaction, error) {
	transaction, err := s.getTransactionById(ctx, dynamodbClient, transactionId, tenantId)
	if err != nil {
		return nil, err
	}
	if transaction == nil {
		return nil, fmt.Errorf("transaction not found")
	}
	if transaction.LenderId != userId && transaction.BorrowerId != userId {
		return nil, fmt.Errorf("transaction does not involve you")
	}
	if transaction.Status != TransactionStatusRequested && transaction.Status != TransactionStatusConfirmed {
		return nil, fmt.Errorf("cannot cancel a %s transaction", transaction.Status)
	}

	return s.setTransactionFields(ctx, dynamodbClient, transactionId, map[string]dynamodb_types.AttributeValue{
		":status":             &dynamodb_types.AttributeValueMemberS{Value: TransactionStatusCancelled},
		":cancelledBy":        &dynamodb_types.AttributeValueMemberS{Value: userId},
		":cancellationReason": &dynamodb_types.AttributeValueMemberS{Value: reason},
	}, "SET #status = :status, #cancelledBy = :cancelledBy, #cancellationReason = :cancellationReason, #updatedAt = :updatedAt", map[string]string{
		"#status":             "status",
		"#cancelledBy":        "cancelledBy",
		"#cancellationReason": "cancellationReason",
		"#updatedAt":          "updatedAt",
	})
}

func (s *ExchangeService) setTransactionFields(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId string, values map[string]dynamodb_types.AttributeValue, setExpr string, names map[string]string) (*internal_types.ExchangeTransaction, error) {
	values[":updatedAt"] = &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)}

	result, err := dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(exchangeTransactionsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: transactionId},
		},
		UpdateExpression:          aws.String(setExpr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              dynamodb_types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}

	var updated internal_types.ExchangeTransaction
	err = attributevalue.UnmarshalMap(result.Attributes, &updated)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *ExchangeService) adjustListingQuantity(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listing *internal_types.ExchangeListing, delta int32) error {
	newQuantity := listing.AvailableQuantity + delta
	if newQuantity < 0 {
		newQuantity = 0
	}

	_, err := dynamodbClient.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(exchangeListingsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"id": &dynamodb_types.AttributeValueMemberS{Value: listing.Id},
		},
		UpdateExpression: aws.String("SET #availableQuantity = :availableQuantity, #isAvailable = :isAvailable, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#availableQuantity": "availableQuantity",
			"#isAvailable":       "isAvailable",
			"#updatedAt":         "updatedAt",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":availableQuantity": &dynamodb_types.AttributeValueMemberN{Value: strconv.FormatInt(int64(newQuantity), 10)},
			":isAvailable":       &dynamodb_types.AttributeValueMemberBOOL{Value: newQuantity > 0},
			":updatedAt":         &dynamodb_types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339)},
		},
	})
	return err
}

func (s *ExchangeService) GetTransactionsByUserID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ExchangeTransaction, error) {
	transactions := make([]internal_types.ExchangeTransaction, 0)

	// a user sees both sides of the exchange: rows where they borrow and rows
	// where they lend
	for _, index := range []struct {
		name string
		key  string
	}{
		{borrowerIdGsi, "borrowerId"},
		{lenderIdGsi, "lenderId"},
	} {
		var token map[string]dynamodb_types.AttributeValue
		for {
			input := &dynamodb.QueryInput{
				TableName:              aws.String(exchangeTransactionsTableName),
				IndexName:              aws.String(index.name),
				KeyConditionExpression: aws.String(index.key + " = :userId"),
				FilterExpression:       aws.String("tenantId = :tenantId"),
				ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
					":userId":   &dynamodb_types.AttributeValueMemberS{Value: userId},
					":tenantId": &dynamodb_types.AttributeValueMemberS{Value: tenantId},
				},
				ExclusiveStartKey: token,
			}

			result, err := dynamodbClient.Query(ctx, input)
			if err != nil {
				return nil, err
			}

			var fetched []internal_types.ExchangeTransaction
			err = attributevalue.UnmarshalListOfMaps(result.Items, &fetched)
			if err != nil {
				return nil, err
			}

			transactions = append(transactions, fetched...)
			token = result.LastEvaluatedKey
			if token == nil {
				break
			}
		}
	}

	return transactions, nil
}

type MockExchangeService struct {
	InsertListingFunc           func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listing internal_types.ExchangeListingInsert) (*internal_types.ExchangeListing, error)
	GetListingByIdFunc          func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listingId, tenantId string) (*internal_types.ExchangeListing, error)
	GetListingsByTenantIDFunc   func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ExchangeListing, error)
	DeleteListingFunc           func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listingId, tenantId, ownerId string) error
	RequestTransactionFunc      func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transaction internal_types.ExchangeTransactionInsert) (*internal_types.ExchangeTransaction, error)
	ConfirmTransactionFunc      func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string) (*internal_types.ExchangeTransaction, error)
	MarkItemPickedUpFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string) (*internal_types.ExchangeTransaction, error)
	MarkItemReturnedFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string, details internal_types.ReturnDetails) (*internal_types.ExchangeTransaction, error)
	CancelTransactionFunc       func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId, reason string) (*internal_types.ExchangeTransaction, error)
	GetTransactionsByUserIDFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ExchangeTransaction, error)
}

func (m *MockExchangeService) InsertListing(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listing internal_types.ExchangeListingInsert) (*internal_types.ExchangeListing, error) {
	return m.InsertListingFunc(ctx, dynamodbClient, listing)
}

func (m *MockExchangeService) GetListingById(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listingId, tenantId string) (*internal_types.ExchangeListing, error) {
	return m.GetListingByIdFunc(ctx, dynamodbClient, listingId, tenantId)
}

func (m *MockExchangeService) GetListingsByTenantID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, tenantId string) ([]internal_types.ExchangeListing, error) {
	return m.GetListingsByTenantIDFunc(ctx, dynamodbClient, tenantId)
}

func (m *MockExchangeService) DeleteListing(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, listingId, tenantId, ownerId string) error {
	return m.DeleteListingFunc(ctx, dynamodbClient, listingId, tenantId, ownerId)
}

func (m *MockExchangeService) RequestTransaction(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transaction internal_types.ExchangeTransactionInsert) (*internal_types.ExchangeTransaction, error) {
	return m.RequestTransactionFunc(ctx, dynamodbClient, transaction)
}

func (m *MockExchangeService) ConfirmTransaction(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string) (*internal_types.ExchangeTransaction, error) {
	return m.ConfirmTransactionFunc(ctx, dynamodbClient, transactionId, tenantId, userId)
}

func (m *MockExchangeService) MarkItemPickedUp(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string) (*internal_types.ExchangeTransaction, error) {
	return m.MarkItemPickedUpFunc(ctx, dynamodbClient, transactionId, tenantId, userId)
}

func (m *MockExchangeService) MarkItemReturned(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId string, details internal_types.ReturnDetails) (*internal_types.ExchangeTransaction, error) {
	return m.MarkItemReturnedFunc(ctx, dynamodbClient, transactionId, tenantId, userId, details)
}

func (m *MockExchangeService) CancelTransaction(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, transactionId, tenantId, userId, reason string) (*internal_types.ExchangeTransaction, error) {
	return m.CancelTransactionFunc(ctx, dynamodbClient, transactionId, tenantId, userId, reason)
}

func (m *MockExchangeService) GetTransactionsByUserID(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string) ([]internal_types.ExchangeTransaction, error) {
	return m.GetTransactionsByUserIDFunc(ctx, dynamodbClient, userId, tenantId)
}
