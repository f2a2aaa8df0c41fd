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

	"campusmarket/internal/adapter/api"
	"campusmarket/internal/adapter/api/handler"
	apimiddleware "campusmarket/internal/adapter/api/middleware"
	"campusmarket/internal/adapter/api/router"
	"campusmarket/internal/adapter/repository"
	domainrepo "campusmarket/internal/domain/repository"
	"campusmarket/internal/domain/service"
	"campusmarket/internal/infrastructure/eventbus"
	"campusmarket/internal/infrastructure/firebase"
	"campusmarket/internal/infrastructure/jwt"
	"campusmarket/internal/infrastructure/ratelimit"
	"campusmarket/internal/infrastructure/websocket"
	"campusmarket/internal/usecase"
	"campusmarket/pkg/config"
	"campusmarket/pkg/logger"
)

type stores struct {
	users    domainrepo.UserRepository
	products domainrepo.ProductRepository
	kiosk    domainrepo.KioskTransactionRepository
	cabinets domainrepo.CabinetRepository
	remote   domainrepo.RemoteTradeRepository
	messages domainrepo.MessageRepository
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var firebaseApp *fbapp.App
	var opt option.ClientOption
	if cfg.NeedsFirebase() {
		opt = firebaseCredentials(cfg)
		firebaseApp, err = fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	repos := openStores(ctx, cfg, opt)
	defer repos.close()

	var verifier usecase.TokenVerifier
	switch cfg.AuthProvider {
	case config.AuthFirebase:
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}
		verifier = firebase.NewAuthClient(authClient)
	default:
		verifier = jwt.NewVerifier(cfg.JWTSecret)
	}

	bus := eventbus.NewBus()
	wsManager := websocket.NewManager()

	limiter := ratelimit.NewRateLimiter()
	limiter.SetRule(ratelimit.ActionKioskTerminal, ratelimit.Rule{
		PerMinute: cfg.KioskRatePerMinute,
		Burst:     max(cfg.KioskRatePerMinute/3, 1),
	})
	limiter.StartCleanupRoutine(ctx)

	identityUseCase := usecase.NewIdentityUseCase(verifier, repos.users)
	kioskUseCase := usecase.NewKioskUseCase(
		repos.kiosk,
		repos.cabinets,
		repos.products,
		repos.users,
		service.NewRandomSerialGenerator(),
		bus,
		cfg.KioskSerialTTL,
	)
	remoteTradeUseCase := usecase.NewRemoteTradeUseCase(repos.remote, repos.products, bus)
	chatUseCase := usecase.NewChatUseCase(repos.messages, wsManager, limiter, cfg.ChatHistoryLimit)
	notificationUseCase := usecase.NewNotificationUseCase(bus, wsManager)

	// Trade events reach connected sellers and buyers as TRADE frames
	notificationUseCase.Start(ctx)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(identityUseCase)

	router.Setup(e, router.Handlers{
		Kiosk:       handler.NewKioskHandler(kioskUseCase),
		RemoteTrade: handler.NewRemoteTradeHandler(remoteTradeUseCase),
		Chat:        handler.NewChatHandler(chatUseCase),
		WebSocket:   handler.NewWebSocketHandler(chatUseCase, identityUseCase),
		Health:      handler.NewHealthHandler(wsManager, cfg.StoreDriver),
	}, authMiddleware, limiter)
	router.SetupDevRouter(e, cfg.Environment, handler.NewDevSeedHandler(repos.users, repos.products))

	logger.Info("Starting server on port %s (store=%s, auth=%s)...", cfg.ServerPort, cfg.StoreDriver, cfg.AuthProvider)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}

func firebaseCredentials(cfg *config.Config) option.ClientOption {
	// Production passes the service account inline
	if cfg.FirebaseServiceAccountJSON != "" {
		log.Printf("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON))
	}

	path := cfg.FirebaseServiceAccountPath
	if path == "" {
		path = "./firebase-service-account.json"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Fatalf("Service account file does not exist: %s", path)
	}

	log.Printf("Using Firebase service account from file: %s", path)
	return option.WithCredentialsFile(path)
}

func openStores(ctx context.Context, cfg *config.Config, opt option.ClientOption) stores {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		return stores{
			users:    repository.NewFirestoreUserRepository(client),
			products: repository.NewFirestoreProductRepository(client),
			kiosk:    repository.NewFirestoreKioskTransactionRepository(client),
			cabinets: repository.NewFirestoreCabinetRepository(client, cfg.KioskCabinetCount),
			remote:   repository.NewFirestoreRemoteTradeRepository(client),
			messages: repository.NewFirestoreMessageRepository(client),
			close:    func() { client.Close() },
		}

	case config.StorePostgres:
		pool, err := repository.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		if err := repository.EnsureSchema(ctx, pool, cfg.KioskCabinetCount); err != nil {
			log.Fatalf("Failed to prepare Postgres schema: %v", err)
		}
		return stores{
			users:    repository.NewPostgresUserRepository(pool),
			products: repository.NewPostgresProductRepository(pool),
			kiosk:    repository.NewPostgresKioskTransactionRepository(pool),
			cabinets: repository.NewPostgresCabinetRepository(pool),
			remote:   repository.NewPostgresRemoteTradeRepository(pool),
			messages: repository.NewPostgresMessageRepository(pool),
			close:    pool.Close,
		}

	default:
		logger.Warn("Using in-memory store; data is lost on restart")
		return stores{
			users:    repository.NewMemoryUserRepository(),
			products: repository.NewMemoryProductRepository(),
			kiosk:    repository.NewMemoryKioskTransactionRepository(),
			cabinets: repository.NewMemoryCabinetRepository(cfg.KioskCabinetCount),
			remote:   repository.NewMemoryRemoteTradeRepository(),
			messages: repository.NewMemoryMessageRepository(),
			close:    func() {},
		}
	}
}
