package helpers

type ContextKey string

const UserInfoKey ContextKey = "userInfo"
const ApiGwV2ReqKey ContextKey = "ApiGwV2Req"

const EventsTablePrefix = "Events"
const EventRsvpsTablePrefix = "EventRsvps"
const EventFlagsTablePrefix = "EventFlags"
const EventCategoriesTablePrefix = "EventCategories"
const LocationsTablePrefix = "Locations"
const ReservationsTablePrefix = "Reservations"
const AnnouncementsTablePrefix = "Announcements"
const AnnouncementReadsTablePrefix = "AnnouncementReads"
const ExchangeListingsTablePrefix = "ExchangeListings"
const ExchangeTransactionsTablePrefix = "ExchangeTransactions"
const ResidentRequestsTablePrefix = "ResidentRequests"
const NotificationsTablePrefix = "Notifications"
const TenantsTablePrefix = "Tenants"
const UserProfilesTablePrefix = "UserProfiles"
const UserPrivacySettingsTablePrefix = "UserPrivacySettings"

const EVENT_ID_KEY = "event_id"
const TENANT_ID_KEY = "tenant_id"
const LOCATION_ID_KEY = "location_id"
const USER_ID_KEY = "user_id"

// Roles carried in the identity provider's token.
const RoleResident = "resident"
const RoleTenantAdmin = "tenant_admin"
const RoleSuperAdmin = "super_admin"

// Canonical RSVP statuses. Older clients still send yes/maybe/no; those are
// mapped at the HTTP boundary via CanonicalRsvpStatus.
const RsvpStatusGoing = "going"
const RsvpStatusInterested = "interested"
const RsvpStatusNotGoing = "not_going"
const RsvpStatusCancelled = "cancelled"

const RsvpScopeThis = "this"
const RsvpScopeSeries = "series"

const EventStatusDraft = "draft"
const EventStatusPublished = "published"
const EventStatusCancelled = "cancelled"

const ReservationStatusConfirmed = "confirmed"
const ReservationStatusCancelled = "cancelled"

// Residents may hold at most this many confirmed future reservations, and a
// single reservation may not exceed this duration.
const MaxActiveReservationsPerUser = 2
const MaxReservationHours = 2

// Exchange categories whose transactions complete at pickup instead of going
// through the return flow. Food is consumed outright; services have no item
// to hand back.
var NonReturnableExchangeCategories = []string{"Services & Skills", "Food & Produce"}

const ExchangeCategoryFood = "Food & Produce"

type UserInfo struct {
	Sub      string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	TenantId string `json:"tenant_id"`
}

func (u UserInfo) IsAdmin() bool {
	return u.Role == RoleTenantAdmin || u.Role == RoleSuperAdmin
}

// CanonicalRsvpStatus maps the legacy yes/maybe/no vocabulary onto the
// canonical one. Unknown values pass through untouched so the validator can
// reject them with a useful message.
func CanonicalRsvpStatus(status string) string {
	switch status {
	case "yes":
		return RsvpStatusGoing
	case "maybe":
		return RsvpStatusInterested
	case "no":
		return RsvpStatusNotGoing
	}
	return status
}
