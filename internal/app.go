// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "bidflow/internal/api"
	"bidflow/internal/api/handler"
	"bidflow/internal/config"
	"bidflow/internal/notify"
	"bidflow/internal/repository"
	"bidflow/internal/repository/postgres"
	"bidflow/internal/service"
	"bidflow/internal/util"
	"bidflow/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	WalletRepository      repository.WalletRepository
	TransactionRepository repository.TransactionRepository
	ListingRepository     repository.ListingRepository
	HoldRepository        repository.HoldRepository
	OrderRepository       repository.OrderRepository

	// Notification transport
	Notifier notify.Notifier

	// Services
	EscrowService     service.EscrowService
	AuctionService    service.AuctionService
	SettlementService service.SettlementService
	Sweeper           *service.Sweeper

	// HTTP API
	HTTPHandler http.Handler

	asynqNotifier *notify.AsynqNotifier
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()

	// 2. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.ListingRepository = postgres.NewListingRepository(app.DB)
	app.HoldRepository = postgres.NewHoldRepository(app.DB)
	app.OrderRepository = postgres.NewOrderRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize the Notifier
	switch app.Config.NotifierBackend {
	case "asynq":
		asynqNotifier := notify.NewAsynqNotifier(app.Config.RedisAddr, app.Logger)
		app.asynqNotifier = asynqNotifier
		app.Notifier = asynqNotifier
	default:
		app.Notifier = notify.NewSlogNotifier(app.Logger)
	}
	app.Logger.Info("Notifier initialized.", "backend", app.Config.NotifierBackend)

	// 6. Initialize Services
	// Pass the concrete db.BeginTx, db.CommitTx, db.RollbackTx functions from pkg/db
	app.EscrowService = service.NewEscrowService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.WalletRepository,
		app.HoldRepository,
		app.TransactionRepository,
		app.Notifier,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.AuctionService = service.NewAuctionService(
		app.DB,
		app.DB,
		app.ListingRepository,
		app.EscrowService,
		app.Notifier,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.SettlementService = service.NewSettlementService(
		app.DB,
		app.DB,
		app.ListingRepository,
		app.WalletRepository,
		app.HoldRepository,
		app.TransactionRepository,
		app.OrderRepository,
		app.EscrowService,
		app.Notifier,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	app.Sweeper = service.NewSweeper(
		app.DB,
		app.ListingRepository,
		app.SettlementService,
		app.Config.StaleThreshold,
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	auctionHandler := handler.NewAuctionHandler(
		app.AuctionService,
		app.SettlementService,
		app.Sweeper,
		app.ListingRepository,
		app.DB,
		app.Logger,
	)
	walletHandler := handler.NewWalletHandler(
		app.DB,
		app.DB,
		app.WalletRepository,
		app.TransactionRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
		app.Logger,
	)
	sellerHandler := handler.NewSellerHandler(
		app.OrderRepository,
		app.DB,
		app.Config.Tiers,
		app.Logger,
	)
	app.HTTPHandler = router.NewRouter(auctionHandler, walletHandler, sellerHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.asynqNotifier != nil {
		if err := app.asynqNotifier.Close(); err != nil {
			app.Logger.Error("Failed to close notifier client", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
