package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/ev-reimbursement/internal/pkg/config"
	"github.com/anicoll/ev-reimbursement/internal/pkg/contxt"
	"github.com/anicoll/ev-reimbursement/internal/pkg/database"
	"github.com/anicoll/ev-reimbursement/internal/pkg/database/migration"
	"github.com/anicoll/ev-reimbursement/internal/pkg/metrics"
	"github.com/anicoll/ev-reimbursement/internal/pkg/model"
	"github.com/anicoll/ev-reimbursement/internal/pkg/mqtt"
	"github.com/anicoll/ev-reimbursement/internal/pkg/pricing"
	"github.com/anicoll/ev-reimbursement/internal/pkg/publisher"
	"github.com/anicoll/ev-reimbursement/internal/pkg/reimbursement"
	"github.com/anicoll/ev-reimbursement/internal/pkg/server"
	"github.com/anicoll/ev-reimbursement/internal/pkg/spotprice"
	"github.com/anicoll/ev-reimbursement/internal/pkg/tou"
)

var (
	errCron        = errors.New("cron error")
	errNoJWTSecret = errors.New("AUTH_JWT_SECRET must be set")
)

const cleanupSchedule = "CRON_TZ=Europe/Oslo 30 3 * * *"

// loadConfig reads the environment and applies flags given on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("timezone") {
		cfg.Timezone = c.String("timezone")
	}
	if c.IsSet("database-url") {
		cfg.DatabaseURL = c.String("database-url")
	}
	if c.IsSet("migrations-folder") {
		cfg.MigrationsFolder = c.String("migrations-folder")
	}
	if c.IsSet("http-addr") {
		cfg.HTTP.Addr = c.String("http-addr")
	}
	return cfg, nil
}

func setupLogger(level string) (*zap.Logger, error) {
	var err error
	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// ServeCommand starts the HTTP API, the publishers and the scheduled jobs.
func ServeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	if cfg.Auth.JWTSecret == "" {
		return errNoJWTSecret
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	if cfg.MigrationsFolder != "" {
		if err := migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder); err != nil {
			return err
		}
	}

	ctx := c.Context
	db, err := database.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := publisher.RegisterPublisher("postgres", db); err != nil {
		return err
	}
	if cfg.MqttEnabled() {
		mqttSvc := mqtt.New(mqtt.NewClient(cfg.Mqtt.Host, cfg.Mqtt.Username, cfg.Mqtt.Password), cfg.Mqtt.TopicPrefix)
		if err := mqttSvc.Connect(); err != nil {
			return fmt.Errorf("connecting to mqtt: %w", err)
		}
		defer mqttSvc.Close()
		if err := publisher.RegisterPublisher("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	prices, err := spotprice.New(cfg.SpotPrice.Host, cfg.SpotPrice.Timeout, spotprice.WithLocation(loc))
	if err != nil {
		return err
	}
	calc := newCalculator(cfg, loc, cfg.Tariff.DefaultRateOre)
	svc := reimbursement.New(db, prices, calc, reimbursement.WithPublisher(publisher.Default()))

	errorChan := make(chan error, 100)
	return run(ctx, cfg, svc, db, errorChan, logger)
}

func newCalculator(cfg *config.Config, loc *time.Location, defaultRateOre float64) *pricing.Calculator {
	matcher := tou.NewMatcher(loc, defaultRateOre, tou.WithFallbackTax(cfg.Tariff.FallbackApplyTax))
	return pricing.New(matcher, pricing.WithWorkers(cfg.Pricing.Workers))
}

func run(ctx context.Context, cfg *config.Config, svc ReimbursementService, db Store, errorChan chan error, logger *zap.Logger) error {
	areas, err := priceAreas(cfg.SpotPrice.Areas)
	if err != nil {
		return err
	}
	metrics.Init()

	api, err := server.New(svc, db, []byte(cfg.Auth.JWTSecret), server.WithPublishTimeout(cfg.HTTP.WriteTimeout))
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return runScheduler(ctx, cfg, svc, db, areas, errorChan)
	})

	srv := &http.Server{
		Handler:      api.Handler(),
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	eg.Go(func() error {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := contxt.NewContext(10 * time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		// handle any async errors from the scheduled jobs
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errCron) {
					logger.Error("cron error", zap.Error(err))
					return err
				}
				logger.Warn("async error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

func priceAreas(names []string) ([]model.PriceArea, error) {
	areas := make([]model.PriceArea, 0, len(names))
	for _, n := range names {
		a, err := model.ParsePriceArea(n)
		if err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}
	return lo.Uniq(areas), nil
}

// runScheduler fetches the next day's spot prices once they are published and prunes old ones.
// Failed fetches are retried on demand when prices are read. A failed cleanup stops the service.
func runScheduler(ctx context.Context, cfg *config.Config, svc ReimbursementService, db Store, areas []model.PriceArea, errChan chan error) error {
	logger := zap.L()
	loc := svc.Location()

	fetch := func(date model.Date) {
		fetchCtx, cancel := contxt.NewContext(2 * time.Minute)
		defer cancel()
		if err := svc.FetchDay(fetchCtx, areas, date); err != nil {
			logger.Error("error fetching spot prices", zap.Stringer("date", date), zap.Error(err))
			notify(errChan, err)
			return
		}
		logger.Info("spot prices stored", zap.Stringer("date", date), zap.Int("areas", len(areas)))
	}
	cleanup := func() error {
		cleanupCtx, cancel := contxt.NewContext(time.Minute)
		defer cancel()
		return db.Cleanup(cleanupCtx, cfg.SpotPrice.RetentionDays)
	}

	if err := cleanup(); err != nil {
		return err
	}
	go fetch(model.DateOf(time.Now().In(loc)))

	c := cron.New()
	if _, err := c.AddFunc(cfg.SpotPrice.FetchCron, func() {
		fetch(model.DateOf(time.Now().In(loc)).AddDays(1))
	}); err != nil {
		return fmt.Errorf("scheduling spot price fetch: %w", err)
	}
	if _, err := c.AddFunc(cleanupSchedule, func() {
		if err := cleanup(); err != nil {
			logger.Error("error cleaning up database", zap.Error(err))
			notify(errChan, fmt.Errorf("%w: %w", errCron, err))
		}
	}); err != nil {
		return fmt.Errorf("scheduling cleanup: %w", err)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

func notify(errChan chan error, err error) {
	select {
	case errChan <- err:
	default:
		zap.L().Warn("error channel full, dropping error", zap.Error(err))
	}
}

// MigrateCommand applies the database migrations and exits.
func MigrateCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	if cfg.DatabaseURL == "" || cfg.MigrationsFolder == "" {
		return errors.New("DATABASE_URL and MIGRATIONS_FOLDER must be set")
	}
	return migration.Migrate(cfg.DatabaseURL, cfg.MigrationsFolder)
}
