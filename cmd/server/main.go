package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jo-hoe/goimagine/internal/backend"
	"github.com/jo-hoe/goimagine/internal/common"
	"github.com/jo-hoe/goimagine/internal/core"
	frontend "github.com/jo-hoe/goimagine/internal/frontend"
)

const shutdownTimeout = 10 * time.Second

func getConfigPath() string {
	// First check if config path is provided via environment variable
	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		return configPath
	}

	// Default to config.yaml in current working directory
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return filepath.Join(cwd, "config.yaml")
}

func main() {
	configPath := getConfigPath()
	config, err := core.LoadConfig(configPath)
	if err != nil {
		slog.Error("failed to load config", "path", configPath, "error", err)
		os.Exit(1)
	}
	common.SetDefaultLogger(os.Stderr, config.LogLevel)

	if err := run(config); err != nil {
		slog.Error("shutting down due to error", "error", err)
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func run(config *core.ServiceConfig) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coreService, err := core.NewCoreService(ctx, config)
	if err != nil {
		return err
	}

	server := defineServer()
	backend.NewAPIService(config, coreService).SetRoutes(server)
	frontend.NewFrontendService(config, coreService).SetRoutes(server)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		portString := fmt.Sprintf(":%d", config.Port)
		slog.Info("starting server", "address", portString)
		if err := server.Start(portString); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var result error
		if err := server.Shutdown(shutdownCtx); err != nil {
			result = multierror.Append(result, fmt.Errorf("server shutdown: %w", err))
		}
		if err := coreService.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("core service close: %w", err))
		}
		return result
	})

	return group.Wait()
}

func defineServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Configure request logger to skip the health check probe
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/probe"
		},
		LogStatus:    true,
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRoutePath: true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"route", v.RoutePath,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				slog.Error("request failed", append(attrs, "error", v.Error)...)
			} else {
				slog.Info("request", attrs...)
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())
	e.Pre(middleware.RemoveTrailingSlash())

	e.Validator = &common.GenericEchoValidator{}

	return e
}
