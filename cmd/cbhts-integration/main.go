package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abt/cbhts-integration/internal/config"
	"github.com/abt/cbhts-integration/internal/domain/catalog"
	"github.com/abt/cbhts-integration/internal/domain/cbhts"
	"github.com/abt/cbhts-integration/internal/domain/verification"
	"github.com/abt/cbhts-integration/internal/platform/auth"
	"github.com/abt/cbhts-integration/internal/platform/db"
	"github.com/abt/cbhts-integration/internal/platform/middleware"
	"github.com/abt/cbhts-integration/internal/platform/opensrp"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cbhts-integration",
		Short: "CTC2 to HTS integration service",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the integration API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Reference catalog utilities",
	}

	var opts catalog.LoadOptions
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Load the code dictionary and form definitions and print counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(opts)
			if err != nil {
				return err
			}
			writeStats(cmd.OutOrStdout(), cat)
			return nil
		},
	}
	checkCmd.Flags().StringVar(&opts.DictionaryPath, "dictionary", "", "path to a CSV or XLSX code dictionary (default: embedded)")
	checkCmd.Flags().StringVar(&opts.FormsDir, "forms", "", "directory of JSON form definitions (default: embedded)")

	cmd.AddCommand(checkCmd)
	return cmd
}

func writeStats(w io.Writer, cat *catalog.Catalog) {
	st := cat.Stats()
	for _, name := range cat.Sections() {
		fmt.Fprintf(w, "%-40s %d\n", name, st.Entries[name])
	}
	fmt.Fprintf(w, "%-40s %d\n", "form fields", st.Fields)
	fmt.Fprintf(w, "%-40s %d\n", "form options", st.Options)
}

func newLogger(cfg *config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if cfg.IsDev() {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	// Reference data
	cat, err := catalog.Load(catalog.LoadOptions{
		DictionaryPath: cfg.CatalogDictionaryPath,
		FormsDir:       cfg.CatalogFormsDir,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load reference catalog")
	}
	logger.Info().Strs("sections", cat.Sections()).Msg("reference catalog loaded")

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	sqlDB := db.OpenDB(pool)
	defer sqlDB.Close()
	logger.Info().Str("schema", cfg.DBSchema).Msg("connected to database")

	// CBHTS
	repo, err := cbhts.NewRepoPG(cfg.DBSchema)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid schema")
	}
	mapper := cbhts.NewMapper(cat, cbhts.WithPlatformIDFallback(cfg.PlatformIDFallback))
	cbhtsSvc := cbhts.NewService(sqlDB, repo, mapper, logger,
		cbhts.WithParallelThreshold(cfg.ParallelThreshold))

	// Verification results
	dest := verification.Destination{
		URL:      verification.ResolveEventURL(cfg.OpenSRPEventURL, cfg.OpenSRPServerURL),
		Username: cfg.OpenSRPUsername,
		Password: cfg.OpenSRPPassword,
	}
	if dest.URL == "" {
		logger.Warn().Msg("no OpenSRP destination configured, verification results will be rejected")
	}
	client := opensrp.NewClient(cfg.OpenSRPTimeout, logger)
	verificationSvc := verification.NewService(cbhtsSvc, client, dest, logger)

	e := newRouter(cfg, logger, db.HealthHandler(pool),
		cbhts.NewHandler(cbhtsSvc, logger),
		verification.NewHandler(verificationSvc, logger))

	// Graceful shutdown
	go func() {
		addr := cfg.Addr()
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

type routeRegistrar interface {
	RegisterRoutes(g *echo.Group)
}

func newRouter(cfg *config.Config, logger zerolog.Logger, dbHealth echo.HandlerFunc, handlers ...routeRegistrar) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	if cfg.AuthEnabled {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Secret:  []byte(cfg.AuthSecret),
			Skipper: auth.AuthSkipper,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", dbHealth)

	g := e.Group("/integration")
	for _, h := range handlers {
		h.RegisterRoutes(g)
	}
	return e
}
