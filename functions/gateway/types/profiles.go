package types

import (
	"context"
	"time"
)

// UserProfile is the resident-facing directory entry for one user, keyed by
// the identity provider's subject. The row doubles as the onboarding record:
// the dashboard gates on OnboardingCompleted.
type UserProfile struct {
	UserId              string         `json:"user_id" dynamodbav:"userId"`
	TenantId            string         `json:"tenant_id" dynamodbav:"tenantId"`
	FirstName           string         `json:"first_name" dynamodbav:"firstName"`
	LastName            string         `json:"last_name" dynamodbav:"lastName"`
	AvatarUrl           string         `json:"avatar_url" dynamodbav:"avatarUrl"`
	About               string         `json:"about" dynamodbav:"about"`
	Birthday            string         `json:"birthday" dynamodbav:"birthday"`
	BirthCountry        string         `json:"birth_country" dynamodbav:"birthCountry"`
	CurrentCountry      string         `json:"current_country" dynamodbav:"currentCountry"`
	Email               string         `json:"email" dynamodbav:"email"`
	Phone               string         `json:"phone" dynamodbav:"phone"`
	Languages           []string       `json:"languages" dynamodbav:"languages"`
	PreferredLanguage   string         `json:"preferred_language" dynamodbav:"preferredLanguage"`
	JourneyStage        string         `json:"journey_stage" dynamodbav:"journeyStage"`
	EstimatedMoveInDate string         `json:"estimated_move_in_date" dynamodbav:"estimatedMoveInDate"`
	Interests           []string       `json:"interests" dynamodbav:"interests"`
	Skills              []ProfileSkill `json:"skills" dynamodbav:"skills"`
	OnboardingCompleted bool           `json:"onboarding_completed" dynamodbav:"onboardingCompleted"`
	UpdatedAt           time.Time      `json:"updated_at" dynamodbav:"updatedAt"`
}

type ProfileSkill struct {
	Name           string `json:"name" dynamodbav:"name"`
	OpenToRequests bool   `json:"open_to_requests" dynamodbav:"openToRequests"`
}

// UserProfileUpdate is a partial update covering the onboarding steps (basic
// info, contact, journey, interests, skills). Pointer fields distinguish
// "absent" from cleared.
type UserProfileUpdate struct {
	FirstName           *string         `json:"first_name,omitempty"`
	LastName            *string         `json:"last_name,omitempty"`
	AvatarUrl           *string         `json:"avatar_url,omitempty"`
	About               *string         `json:"about,omitempty"`
	Birthday            *string         `json:"birthday,omitempty"`
	BirthCountry        *string         `json:"birth_country,omitempty"`
	CurrentCountry      *string         `json:"current_country,omitempty"`
	Email               *string         `json:"email,omitempty" validate:"omitempty,email"`
	Phone               *string         `json:"phone,omitempty"`
	Languages           *[]string       `json:"languages,omitempty"`
	PreferredLanguage   *string         `json:"preferred_language,omitempty"`
	JourneyStage        *string         `json:"journey_stage,omitempty"`
	EstimatedMoveInDate *string         `json:"estimated_move_in_date,omitempty"`
	Interests           *[]string       `json:"interests,omitempty"`
	Skills              *[]ProfileSkill `json:"skills,omitempty"`
}

// PrivacySettings is the per-user visibility toggle set applied when other
// residents view the profile. Missing rows read as everything hidden.
type PrivacySettings struct {
	UserId                  string    `json:"user_id" dynamodbav:"userId"`
	ShowEmail               bool      `json:"show_email" dynamodbav:"showEmail"`
	ShowPhone               bool      `json:"show_phone" dynamodbav:"showPhone"`
	ShowBirthday            bool      `json:"show_birthday" dynamodbav:"showBirthday"`
	ShowBirthCountry        bool      `json:"show_birth_country" dynamodbav:"showBirthCountry"`
	ShowCurrentCountry      bool      `json:"show_current_country" dynamodbav:"showCurrentCountry"`
	ShowLanguages           bool      `json:"show_languages" dynamodbav:"showLanguages"`
	ShowPreferredLanguage   bool      `json:"show_preferred_language" dynamodbav:"showPreferredLanguage"`
	ShowJourneyStage        bool      `json:"show_journey_stage" dynamodbav:"showJourneyStage"`
	ShowEstimatedMoveInDate bool      `json:"show_estimated_move_in_date" dynamodbav:"showEstimatedMoveInDate"`
	ShowInterests           bool      `json:"show_interests" dynamodbav:"showInterests"`
	ShowSkills              bool      `json:"show_skills" dynamodbav:"showSkills"`
	ShowOpenToRequests      bool      `json:"show_open_to_requests" dynamodbav:"showOpenToRequests"`
	UpdatedAt               time.Time `json:"updated_at" dynamodbav:"updatedAt"`
}

type UserProfileServiceInterface interface {
	GetUserProfile(ctx context.Context, dynamodbClient DynamoDBAPI, userId string) (*UserProfile, error)
	UpdateUserProfile(ctx context.Context, dynamodbClient DynamoDBAPI, userId, tenantId string, update UserProfileUpdate) error
	CompleteOnboarding(ctx context.Context, dynamodbClient DynamoDBAPI, userId string) error
	GetPrivacySettings(ctx context.Context, dynamodbClient DynamoDBAPI, userId string) (*PrivacySettings, error)
	UpsertPrivacySettings(ctx context.Context, dynamodbClient DynamoDBAPI, settings PrivacySettings) error
}
