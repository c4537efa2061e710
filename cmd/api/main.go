package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"github.com/teikkkkk/store-chat/internal/adapter/api"
	"github.com/teikkkkk/store-chat/internal/adapter/api/handler"
	apimiddleware "github.com/teikkkkk/store-chat/internal/adapter/api/middleware"
	"github.com/teikkkkk/store-chat/internal/adapter/api/router"
	"github.com/teikkkkk/store-chat/internal/adapter/repository"
	"github.com/teikkkkk/store-chat/internal/infrastructure/firebase"
	"github.com/teikkkkk/store-chat/internal/infrastructure/realtime"
	"github.com/teikkkkk/store-chat/internal/infrastructure/websocket"
	"github.com/teikkkkk/store-chat/internal/usecase"
	"github.com/teikkkkk/store-chat/pkg/config"
	"github.com/teikkkkk/store-chat/pkg/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption

	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}

		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}

		log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{
		ProjectID:   cfg.FirebaseProject,
		DatabaseURL: cfg.FirebaseDatabaseURL,
	}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	userRepo := repository.NewFirestoreUserRepository(firestoreClient)
	roomRepo := repository.NewFirestoreChatRoomRepository(firestoreClient)

	firebaseAuthClient := firebase.NewAuthClient(authClient, cfg.FirebaseApiKey)

	var store realtime.Store
	if cfg.FirebaseDatabaseURL != "" {
		dbClient, err := firebaseApp.Database(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Realtime Database: %v", err)
		}
		// the server streams rooms under the admin identity; room-level
		// access control lives in the store's own rules
		adminTokens := func(ctx context.Context) (string, error) {
			customToken, err := firebaseAuthClient.CustomToken(ctx, cfg.AdminSenderID)
			if err != nil {
				return "", err
			}
			return firebaseAuthClient.ExchangeCustomToken(ctx, customToken)
		}
		store = realtime.NewRTDBStore(dbClient, cfg.FirebaseDatabaseURL, adminTokens)
	} else {
		log.Printf("FIREBASE_DATABASE_URL not set, using in-memory message store")
		store = realtime.NewMemoryStore()
	}

	tokenManager := token.NewManager(cfg.JWTSecret, cfg.JWTExpiry)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	chatUseCase := usecase.NewChatUseCase(roomRepo, userRepo, firebaseAuthClient, store, cfg.AdminSenderID)
	userUseCase := usecase.NewUserUseCase(userRepo)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(tokenManager)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	chatHandler := handler.NewChatHandler(chatUseCase)
	userHandler := handler.NewUserHandler(userUseCase)
	wsHandler := handler.NewWebSocketHandler(wsManager, authMiddleware, chatUseCase)
	devTokenHandler := handler.NewDevTokenHandler(tokenManager)

	router.Setup(e, userHandler, authMiddleware)
	router.SetupChatRouter(e, chatHandler, authMiddleware, adminMiddleware)
	router.SetupWebSocketRouter(e, wsHandler)
	router.SetupDevRouter(e, devTokenHandler, cfg.Environment)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
