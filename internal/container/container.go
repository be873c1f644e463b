// Package container provides dependency injection and lifecycle management
// for the voucher back-office following Clean Architecture principles.
package container

import (
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/learnhub/backoffice/internal/application/port"
	"github.com/learnhub/backoffice/internal/application/service"
	"github.com/learnhub/backoffice/internal/config"
	"github.com/learnhub/backoffice/internal/infrastructure/email"
	"github.com/learnhub/backoffice/internal/infrastructure/export"
	"github.com/learnhub/backoffice/internal/infrastructure/pdf"
	"github.com/learnhub/backoffice/internal/infrastructure/persistence/repository"
	"github.com/learnhub/backoffice/internal/infrastructure/persistence/sqlite"
	"github.com/learnhub/backoffice/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in
// reverse order.
type Container struct {
	config *config.Config
	logger *zap.Logger

	// Infrastructure
	sqlDB    *sql.DB
	db       *sqlite.DB
	repo     port.VoucherRepository
	mailer   port.Mailer
	renderer port.VoucherRenderer
	exporter port.VoucherExporter

	// Application
	voucherService service.VoucherService
	bulkIssuer     service.BulkIssuer

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database, migrations, repository
// 2. Email transport and document renderers
// 3. Application services
func (c *Container) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	if err := c.initDelivery(); err != nil {
		return fmt.Errorf("failed to initialize delivery components: %w", err)
	}
	c.logger.Info("Delivery components initialized")

	c.initServices()
	c.logger.Info("Application services initialized")

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error
	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		} else {
			c.logger.Info("Database closed")
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// initDatabase opens sqlite, runs pending migrations and builds the
// voucher repository.
func (c *Container) initDatabase() error {
	db, err := database.New(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}

	if c.config.Database.MigrationsDir != "" {
		migrator := database.NewMigrator(db, c.logger)
		if err := migrator.RunMigrations(c.config.Database.MigrationsDir); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	c.sqlDB = db.DB
	c.db = sqlite.NewDB(db.DB, c.logger)
	c.repo = repository.NewVoucherRepository(db.DB, c.logger)
	return nil
}

// initDelivery builds the mailer, the PDF renderer and the Excel
// exporter. Without an SMTP host the mailer is disabled: batches are
// still created, every send is reported as failed.
func (c *Container) initDelivery() error {
	c.renderer = pdf.NewRenderer(c.config.Voucher.CompanyName, c.logger)
	c.exporter = export.NewExcelExporter(c.logger)

	if c.config.Email.Host == "" {
		c.logger.Info("No SMTP host configured, email delivery disabled")
		c.mailer = email.DisabledMailer{}
		return nil
	}

	links := email.NewLinkCache(c.linkLoader(), 0)
	transports := email.NewDialerMap(
		c.config.Email.Sender,
		c.config.Email.Host,
		c.config.Email.Port,
		c.config.Email.Username,
		c.config.Email.Password,
	)

	mailer, err := email.NewSMTPMailer(email.Config{
		Sender:     c.config.Email.Sender,
		SenderName: c.config.Email.SenderName,
	}, transports, links, c.logger)
	if err != nil {
		return err
	}

	c.mailer = mailer
	return nil
}

// linkLoader serves footer links from configuration. The cache layer
// stays in place so a settings-store loader can replace this without
// touching the mailer.
func (c *Container) linkLoader() email.LinkLoader {
	cfg := c.config.Email.Links
	return func() (email.SocialLinks, error) {
		return email.SocialLinks{
			Facebook:  cfg.Facebook,
			Instagram: cfg.Instagram,
			Twitter:   cfg.Twitter,
			YouTube:   cfg.YouTube,
		}, nil
	}
}

// initServices wires the application services.
func (c *Container) initServices() {
	serviceLogger := &zapLoggerAdapter{logger: c.logger}

	c.voucherService = service.NewVoucherService(c.repo, serviceLogger)
	c.bulkIssuer = service.NewBulkIssuer(
		c.repo,
		c.db,
		c.mailer,
		c.renderer,
		c.config.Email.SendTimeout,
		serviceLogger,
	)
}

// Getters for accessing container components

// DB returns the transaction manager.
func (c *Container) DB() port.TransactionManager {
	return c.db
}

// VoucherRepository returns the voucher repository.
func (c *Container) VoucherRepository() port.VoucherRepository {
	return c.repo
}

// Mailer returns the configured mailer.
func (c *Container) Mailer() port.Mailer {
	return c.mailer
}

// VoucherService returns the voucher lifecycle service.
func (c *Container) VoucherService() service.VoucherService {
	return c.voucherService
}

// BulkIssuer returns the bulk issuance engine.
func (c *Container) BulkIssuer() service.BulkIssuer {
	return c.bulkIssuer
}

// Exporter returns the Excel exporter.
func (c *Container) Exporter() port.VoucherExporter {
	return c.exporter
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// ServiceLogger returns the logger adapted to the narrow interface the
// application and HTTP layers depend on.
func (c *Container) ServiceLogger() service.Logger {
	return &zapLoggerAdapter{logger: c.logger}
}

// zapLoggerAdapter adapts zap.Logger to the service.Logger interface.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
