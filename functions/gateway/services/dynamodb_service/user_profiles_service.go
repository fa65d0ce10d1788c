package dynamodb_service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodb_types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/villagehq/api/functions/gateway/helpers"
	internal_types "github.com/villagehq/api/functions/gateway/types"
)

var userProfilesTableName = helpers.GetDbTableName(helpers.UserProfilesTablePrefix)
var userPrivacySettingsTableName = helpers.GetDbTableName(helpers.UserPrivacySettingsTablePrefix)

func init() {
	userProfilesTableName = helpers.GetDbTableName(helpers.UserProfilesTablePrefix)
	userPrivacySettingsTableName = helpers.GetDbTableName(helpers.UserPrivacySettingsTablePrefix)
}

type UserProfileService struct{}

func NewUserProfileService() internal_types.UserProfileServiceInterface {
	return &UserProfileService{}
}

func (s *UserProfileService) GetUserProfile(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (*internal_types.UserProfile, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(userProfilesTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"userId": &dynamodb_types.AttributeValueMemberS{Value: userId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return nil, nil
	}

	var profile internal_types.UserProfile
	err = attributevalue.UnmarshalMap(result.Item, &profile)
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// UpdateUserProfile applies a partial update to the caller's profile row,
// creating it on first write. Each onboarding step saves its own field
// subset through this single call.
func (s *UserProfileService) UpdateUserProfile(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string, update internal_types.UserProfileUpdate) error {
	if err := validate.Struct(update); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if update.Birthday != nil && *update.Birthday != "" {
		normalized, err := helpers.NormalizeDate(*update.Birthday)
		if err != nil {
			return fmt.Errorf("invalid birthday: %w", err)
		}
		update.Birthday = &normalized
	}
	if update.EstimatedMoveInDate != nil && *update.EstimatedMoveInDate != "" {
		normalized, err := helpers.NormalizeDate(*update.EstimatedMoveInDate)
		if err != nil {
			return fmt.Errorf("invalid estimated move-in date: %w", err)
		}
		update.EstimatedMoveInDate = &normalized
	}

	setParts, names, values := buildProfileUpdateParts(update)
	if len(setParts) == 0 {
		return fmt.Errorf("no fields to update")
	}

	// the row is created on first write, so the tenant scope rides along
	setParts = append(setParts, "#tenantId = :tenantId", "#updatedAt = :updatedAt")
	names["#tenantId"] = "tenantId"
	names["#updatedAt"] = "updatedAt"
	values[":tenantId"] = &dynamodb_types.AttributeValueMemberS{Value: tenantId}
	updatedAt, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return err
	}
	values[":updatedAt"] = updatedAt

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(userProfilesTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"userId": &dynamodb_types.AttributeValueMemberS{Value: userId},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(setParts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	_, err = dynamodbClient.UpdateItem(ctx, input)
	return err
}

func (s *UserProfileService) CompleteOnboarding(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) error {
	updatedAt, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return err
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(userProfilesTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"userId": &dynamodb_types.AttributeValueMemberS{Value: userId},
		},
		UpdateExpression: aws.String("SET #onboardingCompleted = :completed, #updatedAt = :updatedAt"),
		ExpressionAttributeNames: map[string]string{
			"#onboardingCompleted": "onboardingCompleted",
			"#updatedAt":           "updatedAt",
		},
		ExpressionAttributeValues: map[string]dynamodb_types.AttributeValue{
			":completed": &dynamodb_types.AttributeValueMemberBOOL{Value: true},
			":updatedAt": updatedAt,
		},
	}

	_, err = dynamodbClient.UpdateItem(ctx, input)
	return err
}

// GetPrivacySettings returns the stored toggles, or the zero-value set (all
// hidden) when the user has never saved any.
func (s *UserProfileService) GetPrivacySettings(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (*internal_types.PrivacySettings, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(userPrivacySettingsTableName),
		Key: map[string]dynamodb_types.AttributeValue{
			"userId": &dynamodb_types.AttributeValueMemberS{Value: userId},
		},
	}

	result, err := dynamodbClient.GetItem(ctx, input)
	if err != nil {
		return nil, err
	}
	if len(result.Item) == 0 {
		return &internal_types.PrivacySettings{UserId: userId}, nil
	}

	var settings internal_types.PrivacySettings
	err = attributevalue.UnmarshalMap(result.Item, &settings)
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

// UpsertPrivacySettings replaces the full toggle set. The payload is always
// the complete form, so PutItem keeps insert and update one code path.
func (s *UserProfileService) UpsertPrivacySettings(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, settings internal_types.PrivacySettings) error {
	if settings.UserId == "" {
		return fmt.Errorf("missing user id")
	}
	settings.UpdatedAt = time.Now()

	item, err := attributevalue.MarshalMap(&settings)
	if err != nil {
		return err
	}

	_, err = dynamodbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(userPrivacySettingsTableName),
		Item:      item,
	})
	return err
}

func buildProfileUpdateParts(update internal_types.UserProfileUpdate) ([]string, map[string]string, map[string]dynamodb_types.AttributeValue) {
	setParts := []string{}
	names := map[string]string{}
	values := map[string]dynamodb_types.AttributeValue{}

	addString := func(attr string, value *string) {
		if value == nil {
			return
		}
		setParts = append(setParts, "#"+attr+" = :"+attr)
		names["#"+attr] = attr
		values[":"+attr] = &dynamodb_types.AttributeValueMemberS{Value: *value}
	}
	addMarshalled := func(attr string, value interface{}) {
		av, err := attributevalue.Marshal(value)
		if err != nil {
			return
		}
		setParts = append(setParts, "#"+attr+" = :"+attr)
		names["#"+attr] = attr
		values[":"+attr] = av
	}

	addString("firstName", update.FirstName)
	addString("lastName", update.LastName)
	addString("avatarUrl", update.AvatarUrl)
	addString("about", update.About)
	addString("birthday", update.Birthday)
	addString("birthCountry", update.BirthCountry)
	addString("currentCountry", update.CurrentCountry)
	addString("email", update.Email)
	addString("phone", update.Phone)
	addString("preferredLanguage", update.PreferredLanguage)
	addString("journeyStage", update.JourneyStage)
	addString("estimatedMoveInDate", update.EstimatedMoveInDate)

	if update.Languages != nil {
		addMarshalled("languages", *update.Languages)
	}
	if update.Interests != nil {
		addMarshalled("interests", *update.Interests)
	}
	if update.Skills != nil {
		addMarshalled("skills", *update.Skills)
	}

	return setParts, names, values
}

type MockUserProfileService struct {
	GetUserProfileFunc        func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (*internal_types.UserProfile, error)
	UpdateUserProfileFunc     func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string, update internal_types.UserProfileUpdate) error
	CompleteOnboardingFunc    func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) error
	GetPrivacySettingsFunc    func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (*internal_types.PrivacySettings, error)
	UpsertPrivacySettingsFunc func(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, settings internal_types.PrivacySettings) error
}

func (m *MockUserProfileService) GetUserProfile(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (*internal_types.UserProfile, error) {
	return m.GetUserProfileFunc(ctx, dynamodbClient, userId)
}

func (m *MockUserProfileService) UpdateUserProfile(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId, tenantId string, update internal_types.UserProfileUpdate) error {
	return m.UpdateUserProfileFunc(ctx, dynamodbClient, userId, tenantId, update)
}

func (m *MockUserProfileService) CompleteOnboarding(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) error {
	return m.CompleteOnboardingFunc(ctx, dynamodbClient, userId)
}

func (m *MockUserProfileService) GetPrivacySettings(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, userId string) (*internal_types.PrivacySettings, error) {
	return m.GetPrivacySettingsFunc(ctx, dynamodbClient, userId)
}

func (m *MockUserProfileService) UpsertPrivacySettings(ctx context.Context, dynamodbClient internal_types.DynamoDBAPI, settings internal_types.PrivacySettings) error {
	return m.UpsertPrivacySettingsFunc(ctx, dynamodbClient, settings)
}
