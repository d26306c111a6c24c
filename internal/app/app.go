package app

import (
	"context"
	"errors"
	"fmt"
	"syscall"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/andy/invoicedesk/internal/config"
	"github.com/andy/invoicedesk/internal/crypto"
	"github.com/andy/invoicedesk/internal/db"
	"github.com/andy/invoicedesk/internal/export"
	"github.com/andy/invoicedesk/internal/logging"
	"github.com/andy/invoicedesk/internal/render"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/andy/invoicedesk/internal/store"
	"github.com/andy/invoicedesk/internal/templates"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Store  store.Store

	// Repositories
	InvoiceRepo  repository.InvoiceRepository
	ExpenseRepo  repository.ExpenseRepository
	CustomerRepo repository.CustomerRepository
	ProductRepo  repository.ProductRepository
	CompanyRepo  repository.CompanyRepository

	// Services
	InvoiceService service.InvoiceService
	ExpenseService service.ExpenseService
	ReportService  service.ReportService

	// Rendering and export
	Templates *templates.Registry
	Renderer  *render.Renderer
	Exporter  *export.Exporter
}

// New creates a new App instance from the default config path
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App with a provided config (useful for testing)
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	logger.Debug("record store opened", zap.String("driver", cfg.Store.Driver))

	a, err := NewWithStore(ctx, cfg, st, logger)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore wires every component over an already opened store
func NewWithStore(ctx context.Context, cfg *config.Config, st store.Store, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	registry := templates.NewRegistry(st, logger.Named("templates"))
	if err := registry.Load(ctx); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// Create repositories
	invoiceRepo := repository.NewInvoiceRepo(st)
	expenseRepo := repository.NewExpenseRepo(st)
	customerRepo := repository.NewCustomerRepo(st)
	productRepo := repository.NewProductRepo(st)
	companyRepo := repository.NewCompanyRepo(st)

	// Create services with their dependencies
	invoiceService := service.NewInvoiceService(invoiceRepo, customerRepo, productRepo, companyRepo,
		service.InvoiceSettings{
			NumberPrefix:   cfg.Invoice.NumberPrefix,
			NumberWidth:    cfg.Invoice.NumberWidth,
			TaxRate:        decimal.NewFromFloat(cfg.Invoice.TaxRate),
			DefaultDueDays: cfg.Invoice.DefaultDueDays,
		},
		logger.Named("invoices"),
	)
	expenseService := service.NewExpenseService(expenseRepo, logger.Named("expenses"))
	reportService := service.NewReportService(invoiceRepo, expenseRepo)

	renderer := render.NewRenderer()
	exporter := export.NewExporter(registry, renderer, render.NewTextRasterizer(nil),
		export.Options{
			Geometry: export.PageGeometry{
				WidthMM:        cfg.Export.PageWidthMM,
				HeightMM:       cfg.Export.PageHeightMM,
				MarginTopMM:    cfg.Export.MarginTopMM,
				MarginBottomMM: cfg.Export.MarginBottomMM,
			},
			Raster: render.RasterOptions{
				Scale:             cfg.Export.Scale,
				CrossOriginImages: cfg.Export.CrossOriginImages,
			},
		},
		logger.Named("export"),
	)

	return &App{
		Config:         cfg,
		Logger:         logger,
		Store:          st,
		InvoiceRepo:    invoiceRepo,
		ExpenseRepo:    expenseRepo,
		CustomerRepo:   customerRepo,
		ProductRepo:    productRepo,
		CompanyRepo:    companyRepo,
		InvoiceService: invoiceService,
		ExpenseService: expenseService,
		ReportService:  reportService,
		Templates:      registry,
		Renderer:       renderer,
		Exporter:       exporter,
	}, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemoryStore(), nil

	case config.DriverRedis:
		client, err := store.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return store.NewRedisStore(client, cfg.RedisPrefix), nil

	default:
		password, err := encryptionKey()
		if err != nil {
			return nil, err
		}

		database, err := db.Open(cfg.Path, password)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		// Run migrations to ensure schema is up to date
		if err := database.RunMigrations(); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store.NewSQLStore(database), nil
	}
}

// encryptionKey returns the stored database key, prompting on first run
func encryptionKey() (string, error) {
	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err == nil {
		return password, nil
	}
	if !errors.Is(err, crypto.ErrKeyNotFound) {
		return "", err
	}

	fmt.Println("Setting up database encryption for the first time...")
	password, err = promptForPassword()
	if err != nil {
		return "", fmt.Errorf("failed to set password: %w", err)
	}

	if err := keyring.SetKey(password); err != nil {
		return "", fmt.Errorf("failed to store encryption key: %w", err)
	}
	return password, nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	_ = a.Logger.Sync()
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

// promptForPassword prompts user for a new database password (first run)
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your invoices and expenses will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for database encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Database encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to disk
func (a *App) SaveConfig() error {
	return a.Config.Save(config.DefaultConfigPath())
}
