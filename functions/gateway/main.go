package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/gorillamux"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/villagehq/api/functions/gateway/handlers/dynamodb_handlers"
	"github.com/villagehq/api/functions/gateway/services"
	"github.com/villagehq/api/functions/gateway/services/dynamodb_service"
	"github.com/villagehq/api/functions/gateway/transport"
)

type AuthType string

const (
	None    AuthType = "none"
	Check   AuthType = "check"
	Require AuthType = "require"
)

type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
	Auth    AuthType
}

// BuildRoutes wires services, handlers and the notification publisher into
// the route table. Called from main after the environment is loaded so a
// local .env can point NATS_URL at a broker.
func BuildRoutes() []Route {
	var publisher services.NotificationPublisherInterface
	if os.Getenv("NATS_URL") != "" {
		conn, err := services.GetNatsClient()
		if err != nil {
			log.Printf("NATS unavailable, notifications will not be published: %v", err)
		} else {
			natsService, err := services.NewNatsService(context.Background(), conn)
			if err != nil {
				log.Printf("JetStream unavailable, notifications will not be published: %v", err)
			} else {
				publisher = natsService
			}
		}
	}

	notificationService := dynamodb_service.NewNotificationService(publisher)

	eventHandler := dynamodb_handlers.NewEventHandler(dynamodb_service.NewEventService())
	rsvpHandler := dynamodb_handlers.NewEventRsvpHandler(dynamodb_service.NewEventRsvpService())
	locationHandler := dynamodb_handlers.NewLocationHandler(dynamodb_service.NewLocationService(), dynamodb_service.NewEventService())
	reservationHandler := dynamodb_handlers.NewReservationHandler(dynamodb_service.NewReservationService(), notificationService)
	announcementHandler := dynamodb_handlers.NewAnnouncementHandler(dynamodb_service.NewAnnouncementService(), publisher)
	exchangeHandler := dynamodb_handlers.NewExchangeHandler(dynamodb_service.NewExchangeService(), notificationService)
	requestHandler := dynamodb_handlers.NewResidentRequestHandler(dynamodb_service.NewResidentRequestService())
	notificationHandler := dynamodb_handlers.NewNotificationHandler(notificationService)
	tenantHandler := dynamodb_handlers.NewTenantHandler(dynamodb_service.NewTenantService())
	profileHandler := dynamodb_handlers.NewUserProfileHandler(dynamodb_service.NewUserProfileService())

	return []Route{
		{"/api/tenants", "POST", tenantHandler.CreateTenant, Require},
		{"/api/tenants/mine", "GET", tenantHandler.GetMyTenant, Require},
		{"/api/tenants/by-slug/{slug}", "GET", tenantHandler.GetTenantBySlug, None},

		{"/api/events", "POST", eventHandler.CreateEvent, Require},
		{"/api/events", "GET", eventHandler.GetEvents, Require},
		{"/api/events/upcoming", "GET", eventHandler.GetUpcomingEvents, Require},
		{"/api/events/{event_id}", "GET", eventHandler.GetEvent, Require},
		{"/api/events/{event_id}", "PUT", eventHandler.UpdateEvent, Require},
		{"/api/events/{event_id}", "DELETE", eventHandler.DeleteEvent, Require},
		{"/api/events/{event_id}/cancel", "POST", eventHandler.CancelEvent, Require},
		{"/api/events/{event_id}/flag", "POST", eventHandler.FlagEvent, Require},
		{"/api/events/{event_id}/flags/{user_id}/dismiss", "POST", eventHandler.DismissEventFlag, Require},
		{"/api/event-categories", "POST", eventHandler.CreateEventCategory, Require},
		{"/api/event-categories", "GET", eventHandler.GetEventCategories, Require},

		{"/api/events/{event_id}/rsvp", "POST", rsvpHandler.RsvpToEvent, Require},
		{"/api/events/{event_id}/rsvp", "DELETE", rsvpHandler.DeleteEventRsvp, Require},
		{"/api/events/{event_id}/rsvps", "GET", rsvpHandler.GetEventRsvps, Require},
		{"/api/events/{event_id}/rsvps/counts", "GET", rsvpHandler.GetEventRsvpCounts, Require},
		{"/api/rsvps/mine", "GET", rsvpHandler.GetMyRsvps, Require},

		{"/api/locations", "POST", locationHandler.CreateLocation, Require},
		{"/api/locations", "GET", locationHandler.GetLocations, Require},
		{"/api/locations/{location_id}", "GET", locationHandler.GetLocation, Require},
		{"/api/locations/{location_id}", "PUT", locationHandler.UpdateLocation, Require},
		{"/api/locations/{location_id}", "DELETE", locationHandler.DeleteLocation, Require},
		{"/api/locations/{location_id}/events", "GET", locationHandler.GetLocationEvents, Require},
		{"/api/locations/{location_id}/events/count", "GET", locationHandler.GetLocationEventCount, Require},
		{"/api/locations/{location_id}/availability", "GET", locationHandler.CheckLocationAvailability, Require},
		{"/api/locations/{location_id}/reservations", "GET", reservationHandler.GetLocationReservations, Require},

		{"/api/reservations", "POST", reservationHandler.CreateReservation, Require},
		{"/api/reservations/mine", "GET", reservationHandler.GetMyReservations, Require},
		{"/api/reservations/{reservation_id}", "GET", reservationHandler.GetReservation, Require},
		{"/api/reservations/{reservation_id}/cancel", "POST", reservationHandler.CancelReservation, Require},

		{"/api/announcements", "POST", announcementHandler.CreateAnnouncement, Require},
		{"/api/announcements", "GET", announcementHandler.GetAnnouncements, Require},
		{"/api/announcements/status", "POST", announcementHandler.SetAnnouncementsStatus, Require},
		{"/api/announcements/delete", "POST", announcementHandler.DeleteAnnouncements, Require},
		{"/api/announcements/{announcement_id}", "GET", announcementHandler.GetAnnouncement, Require},
		{"/api/announcements/{announcement_id}", "PUT", announcementHandler.UpdateAnnouncement, Require},
		{"/api/announcements/{announcement_id}/read", "POST", announcementHandler.MarkAnnouncementRead, Require},

		{"/api/exchange/listings", "POST", exchangeHandler.CreateListing, Require},
		{"/api/exchange/listings", "GET", exchangeHandler.GetListings, Require},
		{"/api/exchange/listings/{listing_id}", "GET", exchangeHandler.GetListing, Require},
		{"/api/exchange/listings/{listing_id}", "DELETE", exchangeHandler.DeleteListing, Require},
		{"/api/exchange/listings/{listing_id}/request", "POST", exchangeHandler.RequestItem, Require},
		{"/api/exchange/transactions/mine", "GET", exchangeHandler.GetMyTransactions, Require},
		{"/api/exchange/transactions/{transaction_id}/confirm", "POST", exchangeHandler.ConfirmTransaction, Require},
		{"/api/exchange/transactions/{transaction_id}/pickup", "POST", exchangeHandler.MarkItemPickedUp, Require},
		{"/api/exchange/transactions/{transaction_id}/return", "POST", exchangeHandler.MarkItemReturned, Require},
		{"/api/exchange/transactions/{transaction_id}/cancel", "POST", exchangeHandler.CancelTransaction, Require},

		{"/api/requests", "POST", requestHandler.CreateRequest, Require},
		{"/api/requests", "GET", requestHandler.GetRequests, Require},
		{"/api/requests/{request_id}", "GET", requestHandler.GetRequest, Require},
		{"/api/requests/{request_id}/status", "PUT", requestHandler.UpdateRequestStatus, Require},
		{"/api/requests/{request_id}/reply", "POST", requestHandler.AddAdminReply, Require},

		{"/api/notifications", "GET", notificationHandler.GetMyNotifications, Require},
		{"/api/notifications/{notification_id}/read", "POST", notificationHandler.MarkNotificationRead, Require},
		{"/api/notifications/{notification_id}/archive", "POST", notificationHandler.ArchiveNotification, Require},

		{"/api/profile", "GET", profileHandler.GetMyProfile, Require},
		{"/api/profile", "PUT", profileHandler.UpdateMyProfile, Require},
		{"/api/profile/onboarding/complete", "POST", profileHandler.CompleteOnboarding, Require},
		{"/api/profile/privacy", "GET", profileHandler.GetMyPrivacySettings, Require},
		{"/api/profile/privacy", "PUT", profileHandler.UpdateMyPrivacySettings, Require},
	}
}

type App struct {
	Router *mux.Router
}

func NewApp() *App {
	return &App{
		Router: mux.NewRouter(),
	}
}

func (app *App) SetupRoutes(routes []Route) {
	for _, route := range routes {
		app.addRoute(route)
	}
}

func (app *App) addRoute(route Route) {
	var handler http.HandlerFunc
	switch route.Auth {
	case Require:
		handler = func(w http.ResponseWriter, r *http.Request) {
			userInfo, err := services.ParseBearerToken(r)
			if err != nil {
				transport.SendServerRes(w, []byte("Unauthorized"), http.StatusUnauthorized, err)
				return
			}
			route.Handler(w, r.WithContext(services.WithUserInfo(r.Context(), *userInfo)))
		}
	case Check:
		handler = func(w http.ResponseWriter, r *http.Request) {
			if userInfo, err := services.ParseBearerToken(r); err == nil {
				r = r.WithContext(services.WithUserInfo(r.Context(), *userInfo))
			}
			route.Handler(w, r)
		}
	default:
		handler = route.Handler
	}

	app.Router.HandleFunc(route.Path, handler).Methods(route.Method).Name(route.Method + " " + route.Path)
}

func (app *App) SetupNotFoundHandler() {
	app.Router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Println("Not found", r.RequestURI)
		http.Error(w, fmt.Sprintf("Not found: %s", r.RequestURI), http.StatusNotFound)
	})
}

func main() {
	flag.Parse()

	// Outside Lambda the env comes from a .env file, which must be loaded
	// before BuildRoutes reads NATS_URL.
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if !inLambda {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file loaded: %v", err)
		}
	}

	app := NewApp()
	app.SetupNotFoundHandler()
	app.SetupRoutes(BuildRoutes())

	// This is the package level instance of Db in handlers
	_ = transport.GetDB()

	// Outside Lambda, serve plain HTTP for local development.
	if !inLambda {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8000"
		}
		log.Printf("Listening on :%s", port)
		log.Fatal(http.ListenAndServe(":"+port, app.Router))
		return
	}

	adapter := gorillamux.NewV2(app.Router)

	lambda.Start(func(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		return adapter.ProxyWithContext(ctx, request)
	})
}
