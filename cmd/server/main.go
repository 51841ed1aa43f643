package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/steel/backend/internal/config"
	"github.com/steel/backend/internal/handlers"
	appMiddleware "github.com/steel/backend/internal/middleware"
	"github.com/steel/backend/internal/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Firebase Auth (server-side verification of ID tokens). When it is not
	// configured the protected routes fall back to HMAC JWT auth.
	authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProjectID,
		CredentialsJSON: cfg.FirebaseCredentialsJSON,
	})
	if err != nil {
		log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
	}
	authMiddleware := appMiddleware.FirebaseAuth(authClient)
	if authClient == nil {
		log.Printf("Warning: Firebase Auth unavailable, using JWT auth")
		authMiddleware = appMiddleware.JWTAuth(cfg.JWTSecret)
	}

	// SMS collaborator for PIN dispatch.
	var sms services.SMSSender
	if cfg.TwilioAccountSID != "" {
		sms = services.NewTwilioSMS(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	} else {
		log.Printf("Warning: Twilio not configured, PINs will not be dispatched")
	}

	// Services: Mongo when MONGO_URI is set, in-memory otherwise.
	var (
		profileService      services.ProfileService
		shareService        services.ShareService
		connectionService   services.ConnectionService
		verificationService services.VerificationService
		waitlistService     services.WaitlistService
	)
	if cfg.MongoURI != "" {
		mongoProfiles, err := services.NewMongoProfileService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect profile store: %v", err)
		}
		defer mongoProfiles.Close(ctx)

		mongoShares, err := services.NewMongoShareService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect share store: %v", err)
		}
		defer mongoShares.Close(ctx)

		mongoConnections, err := services.NewMongoConnectionService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect connection store: %v", err)
		}
		defer mongoConnections.Close(ctx)

		mongoVerification, err := services.NewMongoVerificationService(ctx, cfg.MongoURI, cfg.MongoDB, sms)
		if err != nil {
			log.Fatalf("Failed to connect verification store: %v", err)
		}
		defer mongoVerification.Close(ctx)

		mongoWaitlist, err := services.NewMongoWaitlistService(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect waitlist store: %v", err)
		}
		defer mongoWaitlist.Close(ctx)

		profileService = mongoProfiles
		shareService = mongoShares
		connectionService = mongoConnections
		verificationService = mongoVerification
		waitlistService = mongoWaitlist
	} else {
		log.Printf("Warning: MONGO_URI not set, using in-memory storage")
		profileService = services.NewMemoryProfileService()
		shareService = services.NewMemoryShareService()
		connectionService = services.NewMemoryConnectionService()
		verificationService = services.NewMemoryVerificationService(sms)
		waitlistService = services.NewMemoryWaitlistService()
	}

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(profileService)
	shareHandler := handlers.NewShareHandler(shareService)
	connectionHandler := handlers.NewConnectionHandler(connectionService)
	verificationHandler := handlers.NewVerificationHandler(verificationService)
	waitlistHandler := handlers.NewWaitlistHandler(waitlistService)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public routes: profile page lookup, tap resolution, waitlist signup
		r.Get("/profiles/slug/{slug}", profileHandler.GetBySlug)
		r.Get("/profiles/tag/{tagId}", profileHandler.GetByNfcTag)
		r.Post("/waitlist", waitlistHandler.Join)
		r.Get("/waitlist/check", waitlistHandler.CheckEmail)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/profiles", func(r chi.Router) {
				r.Post("/", profileHandler.Create)
				r.Get("/auth/{authId}", profileHandler.GetByAuthID)

				r.Route("/{profileId}", func(r chi.Router) {
					r.Get("/", profileHandler.Get)
					r.Patch("/", profileHandler.Update)
					r.Post("/tag", profileHandler.BindNfcTag)
					r.Get("/shares", shareHandler.GetBySharer)
					r.Get("/connections", connectionHandler.GetForProfile)
				})
			})

			r.Route("/shares", func(r chi.Router) {
				r.Post("/", shareHandler.LogShare)
				r.Get("/recent", shareHandler.GetRecent)
				r.Post("/{shareId}/joined", shareHandler.MarkRecipientJoined)
				r.Post("/{shareId}/connect-back", shareHandler.MarkConnectBack)
			})

			r.Route("/connections", func(r chi.Router) {
				r.Post("/request", connectionHandler.Request)
				r.Post("/{connectionId}/accept", connectionHandler.Accept)
				r.Post("/{connectionId}/block", connectionHandler.Block)
			})

			r.Route("/verification", func(r chi.Router) {
				r.Post("/session", verificationHandler.CreateSession)
				r.Post("/verify", verificationHandler.VerifyPin)
				r.Get("/status/{profileId}", verificationHandler.GetStatus)
			})

			r.Get("/waitlist", waitlistHandler.GetAll)
		})
	})

	log.Printf("Steel API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
