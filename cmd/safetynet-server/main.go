package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/safetynet/safetynet/internal/config"
	"github.com/safetynet/safetynet/internal/domain/alert"
	"github.com/safetynet/safetynet/internal/domain/firestation"
	"github.com/safetynet/safetynet/internal/domain/medicalrecord"
	"github.com/safetynet/safetynet/internal/domain/person"
	"github.com/safetynet/safetynet/internal/platform/agecalc"
	"github.com/safetynet/safetynet/internal/platform/apierror"
	"github.com/safetynet/safetynet/internal/platform/datasource"
	"github.com/safetynet/safetynet/internal/platform/middleware"
	"github.com/safetynet/safetynet/internal/platform/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "safetynet-server",
		Short:         "SafetyNet dispatch information API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkDataCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load the bulk data and start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func checkDataCmd() *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "check-data",
		Short: "Decode the bulk data source and report rejected records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if source != "" {
				cfg.DataSource = source
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return checkData(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "data source to check (defaults to DATA_SOURCE)")
	return cmd
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
}

func sourceConfig(cfg *config.Config) datasource.Config {
	return datasource.Config{
		Location: cfg.DataSource,
		S3: datasource.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		},
		DBMaxConns: cfg.DBMaxConns,
		DBMinConns: cfg.DBMinConns,
	}
}

// app holds the wired stores and HTTP server.
type app struct {
	echo   *echo.Echo
	stores datasource.Stores
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	ages, err := agecalc.New(cfg.BirthdateFormat, time.Now)
	if err != nil {
		return nil, fmt.Errorf("birthdate format: %w", err)
	}

	stores := datasource.Stores{
		Persons:        person.NewMemoryRepo(),
		FireStations:   firestation.NewMemoryRepo(),
		MedicalRecords: medicalrecord.NewMemoryRepo(),
	}

	tp := telemetry.NewProvider(telemetry.Config{
		ServiceName:    "safetynet-server",
		ServiceVersion: version,
		Environment:    cfg.Env,
		MetricsEnabled: telemetry.BoolPtr(cfg.MetricsEnabled),
	})
	for name, size := range map[string]telemetry.CollectionSize{
		datasource.CollectionPersons:        stores.Persons.Count,
		datasource.CollectionFireStations:   stores.FireStations.Count,
		datasource.CollectionMedicalRecords: stores.MedicalRecords.Count,
	} {
		if err := tp.RegisterCollection(name, size); err != nil {
			return nil, fmt.Errorf("register %s gauge: %w", name, err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apierror.ErrorHandler(logger)

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(tp.MetricsMiddleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))

	api := e.Group("")
	api.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	api.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	person.NewHandler(person.NewService(stores.Persons)).RegisterRoutes(api)
	firestation.NewHandler(firestation.NewService(stores.FireStations)).RegisterRoutes(api)
	medicalrecord.NewHandler(medicalrecord.NewService(stores.MedicalRecords, ages)).RegisterRoutes(api)
	alertSvc := alert.NewService(stores.Persons, stores.FireStations, stores.MedicalRecords, ages, cfg.AdultAgeThreshold, logger)
	alert.NewHandler(alertSvc).RegisterRoutes(api)

	e.GET("/health", healthHandler(stores))
	if cfg.MetricsEnabled {
		e.GET("/metrics", tp.PrometheusHandler())
	}

	return &app{echo: e, stores: stores}, nil
}

// healthHandler reports liveness together with the collection sizes.
func healthHandler(stores datasource.Stores) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		persons, err := stores.Persons.Count(ctx)
		if err != nil {
			return err
		}
		stations, err := stores.FireStations.Count(ctx)
		if err != nil {
			return err
		}
		records, err := stores.MedicalRecords.Count(ctx)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":         "healthy",
			"version":        version,
			"persons":        persons,
			"fireStations":   stations,
			"medicalRecords": records,
		})
	}
}

// loadData bootstraps stores from the configured source. It only fails
// when the source location itself is unusable; an unreadable source leaves
// the stores empty.
func loadData(ctx context.Context, cfg *config.Config, stores datasource.Stores, logger zerolog.Logger) *datasource.LoadReport {
	src, err := datasource.Open(ctx, sourceConfig(cfg))
	if err != nil {
		logger.Error().Err(err).Str("source", cfg.DataSource).Msg("cannot open data source, starting empty")
		return &datasource.LoadReport{Source: cfg.DataSource, SourceErr: err}
	}
	if pg, ok := src.(*datasource.PostgresSource); ok {
		defer pg.Close()
	}
	return datasource.Bootstrap(ctx, src, stores, logger)
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := newLogger(cfg, os.Stdout)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	loadData(loadCtx, cfg, a.stores, logger)
	cancelLoad()

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("tls", cfg.TLSEnabled).Msg("starting server")
		var err error
		if cfg.TLSEnabled {
			err = a.echo.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = a.echo.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// checkData decodes the source, writes one line per rejected record and
// per unreadable birthdate, and fails when there was any.
func checkData(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ages, err := agecalc.New(cfg.BirthdateFormat, time.Now)
	if err != nil {
		return err
	}
	src, err := datasource.Open(ctx, sourceConfig(cfg))
	if err != nil {
		return err
	}
	if pg, ok := src.(*datasource.PostgresSource); ok {
		defer pg.Close()
	}

	stores := datasource.Stores{
		Persons:        person.NewMemoryRepo(),
		FireStations:   firestation.NewMemoryRepo(),
		MedicalRecords: medicalrecord.NewMemoryRepo(),
	}
	report := datasource.Bootstrap(ctx, src, stores, zerolog.Nop())
	if report.SourceErr != nil {
		return report.SourceErr
	}

	problems := len(report.Skipped)
	for _, rec := range report.Skipped {
		fmt.Fprintf(out, "skipped %s\n", rec.Error())
	}
	records, err := stores.MedicalRecords.List(ctx)
	if err != nil {
		return err
	}
	for _, m := range records {
		if err := ages.Validate(m.Birthdate); err != nil {
			problems++
			fmt.Fprintf(out, "medical record %s %s: %v\n", m.FirstName, m.LastName, err)
		}
	}

	fmt.Fprintf(out, "%s: %d persons, %d fire stations, %d medical records, %d problems\n",
		report.Source, report.Persons, report.FireStations, report.MedicalRecords, problems)
	if problems > 0 {
		return fmt.Errorf("%d problems in %s", problems, report.Source)
	}
	return nil
}
