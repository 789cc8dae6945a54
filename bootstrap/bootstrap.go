// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/cardbill/cardbill/adapters/clock"
	apihttp "github.com/cardbill/cardbill/adapters/http"
	"github.com/cardbill/cardbill/adapters/idgen"
	"github.com/cardbill/cardbill/adapters/metrics"
	"github.com/cardbill/cardbill/adapters/render"
	"github.com/cardbill/cardbill/adapters/sqlite"
	"github.com/cardbill/cardbill/app"
	"github.com/cardbill/cardbill/config"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	Config     *config.Config
	DB         *sqlite.DB
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Billing    *app.BillingService

	holder *config.Holder
}

// New creates and initializes the application from a config file path.
// A missing file falls back to environment-only configuration.
func New(configPath string) (*App, error) {
	cfg, holder, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing cardbill")

	a := &App{
		Logger: logger,
		Config: cfg,
		holder: holder,
	}

	if err := a.initDatabase(); err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	a.Metrics = metrics.New()
	if cfg.Metrics.Enabled {
		logger.Info().Str("path", cfg.Metrics.Path).Msg("prometheus metrics enabled")
	}

	if err := a.initHTTPServer(); err != nil {
		a.DB.Close()
		return nil, fmt.Errorf("init http server: %w", err)
	}

	if a.holder != nil {
		a.holder.SetMetrics(a.Metrics)
		a.holder.OnChange(func(c *config.Config) {
			applyLogLevel(c.Logging.Level)
		})
		if err := a.holder.WatchFile(); err != nil {
			logger.Warn().Err(err).Msg("config file watch unavailable")
		}
		a.holder.WatchSignals()
	}

	return a, nil
}

func loadConfig(path string) (*config.Config, *config.Holder, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			holder, err := config.NewHolder(path, zerolog.New(os.Stdout).With().Timestamp().Logger())
			if err != nil {
				return nil, nil, fmt.Errorf("load config: %w", err)
			}
			return holder.Get(), holder, nil
		}
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil, nil
}

func (a *App) initDatabase() error {
	db, err := sqlite.Open(a.Config.Database.DSN)
	if err != nil {
		return err
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}

	a.DB = db
	a.Logger.Info().Str("dsn", a.Config.Database.DSN).Msg("database initialized")
	return nil
}

func (a *App) initHTTPServer() error {
	cfg := a.Config

	billers := sqlite.NewBillerStore(a.DB)
	issuers := sqlite.NewIssuerStore(a.DB)
	clients := sqlite.NewClientStore(a.DB)
	products := sqlite.NewProductStore(a.DB)
	fees := sqlite.NewFeeStore(a.DB)
	mappings := sqlite.NewMappingStore(a.DB)
	history := sqlite.NewHistoryStore(a.DB)
	interchange := sqlite.NewInterchangeStore(a.DB)
	invoices := sqlite.NewInvoiceStore(a.DB)

	renderer, err := render.New(render.Options{
		ChromePath: cfg.Render.ChromePath,
		Timeout:    cfg.Render.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	clk := clock.Real{}
	ids := idgen.NewDated(clk)

	a.Billing = app.NewBillingService(app.BillingDeps{
		Billers:     billers,
		Clients:     clients,
		Issuers:     issuers,
		Fees:        fees,
		Mappings:    mappings,
		History:     history,
		Interchange: interchange,
		Invoices:    invoices,
		Renderer:    renderer,
		IDGen:       ids,
		Clock:       clk,
		Metrics:     a.Metrics,
		Logger:      a.Logger,
	})

	handler := apihttp.NewHandler(apihttp.Deps{
		Billing:     a.Billing,
		Billers:     billers,
		Issuers:     issuers,
		Clients:     clients,
		Products:    products,
		Fees:        fees,
		Mappings:    mappings,
		History:     history,
		Interchange: interchange,
		Invoices:    invoices,
		IDGen:       ids,
		Clock:       clk,
		APIToken:    cfg.API.Token,
		Logger:      a.Logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	a.HTTPServer = &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	a.Logger.Info().Str("addr", addr).Msg("http server configured")
	return nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	applyLogLevel(cfg.Level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func applyLogLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
