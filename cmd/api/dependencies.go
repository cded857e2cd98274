package api

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/kharcha/internal/ai"
	"github.com/FACorreiaa/kharcha/internal/domain/analysis"
	"github.com/FACorreiaa/kharcha/internal/domain/categorization"
	"github.com/FACorreiaa/kharcha/internal/domain/chat"
	"github.com/FACorreiaa/kharcha/internal/domain/coaching"
	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/internal/domain/faq"
	"github.com/FACorreiaa/kharcha/internal/domain/importer"
	"github.com/FACorreiaa/kharcha/internal/domain/routing"
	"github.com/FACorreiaa/kharcha/internal/notify"
	"github.com/FACorreiaa/kharcha/pkg/config"
	"github.com/FACorreiaa/kharcha/pkg/cron"
	"github.com/FACorreiaa/kharcha/pkg/db"
	"github.com/FACorreiaa/kharcha/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Storage
	Store    expense.Store
	Sessions coaching.SessionStore

	// Services
	Categories      *categorization.Engine
	Router          *routing.Router
	ExpenseService  *expense.Service
	Corrector       *expense.Corrector
	AnalysisService *analysis.Service
	CoachingService *coaching.Service
	FAQ             *faq.Index
	AIAdapter       ai.Adapter
	Notifier        *notify.Service
	ChatService     *chat.Service
	FileStorage     storage.Storage
	ImportService   *importer.Service
	Scheduler       *cron.Scheduler
	Location        *time.Location

	// Handlers
	ChatHandler   *chat.Handler
	ImportHandler *importer.Handler
	ExportHandler *analysis.Handler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initStorage connects to Postgres and runs migrations, or falls back to the
// in-memory store when the database is disabled.
func (d *Dependencies) initStorage() error {
	if d.Config.Database.Disabled {
		d.Store = expense.NewMemoryStore()
		d.Sessions = coaching.NewMemorySessionStore()
		d.Logger.Warn("database disabled, using in-memory storage")
		return nil
	}

	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}
	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Store = expense.NewPostgresStore(d.DB.Pool)
	d.Sessions = coaching.NewPostgresSessionStore(d.DB.Pool)

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.Categories = categorization.DefaultEngine()
	d.Router = routing.New(d.Config.Routing.RouterConfig(d.Logger), d.Categories)

	d.ExpenseService = expense.NewService(d.Store, d.Categories, d.Logger)
	d.Corrector = expense.NewCorrector(d.Store, d.Categories, d.Logger)
	d.AnalysisService = analysis.NewService(d.Store, d.Logger)

	faqIndex, err := faq.NewDefaultIndex()
	if err != nil {
		return fmt.Errorf("failed to build faq index: %w", err)
	}
	d.FAQ = faqIndex

	if d.Config.AI.Enabled {
		claude, err := ai.NewClaude(d.Config.AI.APIKey, d.Config.AI.Model)
		if err != nil {
			return fmt.Errorf("failed to init AI adapter: %w", err)
		}
		d.AIAdapter = claude
		d.Logger.Info("AI adapter enabled", slog.String("model", d.Config.AI.Model))
	}

	// The coaching advisor is the same adapter; nil keeps rule-based tips.
	d.CoachingService = coaching.NewService(d.Sessions, d.AnalysisService, d.AIAdapter, d.Logger)

	d.Notifier = notify.NewService(
		d.Config.Notify.ResendAPIKey,
		d.Config.Notify.DigestFrom,
		d.Config.Notify.DigestTo,
		d.Logger,
	)
	d.Scheduler = cron.NewScheduler(d.Store, d.Notifier, d.Config.Notify.DigestCron, d.Logger)

	loc, err := time.LoadLocation(d.Config.Server.Timezone)
	if err != nil {
		d.Logger.Warn("unknown timezone, using UTC", slog.String("tz", d.Config.Server.Timezone))
		loc = time.UTC
	}
	d.Location = loc

	d.ChatService = chat.NewService(chat.Dependencies{
		Router:     d.Router,
		Categories: d.Categories,
		Expenses:   d.ExpenseService,
		Corrector:  d.Corrector,
		Analysis:   d.AnalysisService,
		Coaching:   d.CoachingService,
		FAQ:        d.FAQ,
		AI:         d.AIAdapter,
		Location:   loc,
		Logger:     d.Logger,
	})

	fileStorage, err := storage.New(&storage.Config{LocalPath: d.Config.Server.UploadsPath})
	if err != nil {
		return fmt.Errorf("failed to init file storage: %w", err)
	}
	d.FileStorage = fileStorage
	d.ImportService = importer.NewService(d.Store, d.Categories, d.FileStorage, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ChatHandler = chat.NewHandler(d.ChatService, d.Config.Server.WebhookSecret, d.Logger)
	d.ImportHandler = importer.NewHandler(d.ImportService, d.Logger)
	d.ExportHandler = analysis.NewHandler(d.AnalysisService, chat.HashUserID, d.Location, d.Logger)
	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.FAQ != nil {
		if err := d.FAQ.Close(); err != nil {
			d.Logger.Warn("closing faq index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
