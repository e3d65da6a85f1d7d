package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/metrics"
	"github.com/any-hub/cellbay/internal/network"
)

// DefaultCommandTimeout bounds how long a request waits for the owner loop.
const DefaultCommandTimeout = 5 * time.Second

// AppOptions controls the dependencies injected into the Fiber application.
type AppOptions struct {
	Logger         *logrus.Logger
	Grid           *network.Grid
	Metrics        *metrics.Recorder
	Mirrors        *network.MirrorSet
	CommandTimeout time.Duration
}

// App bundles the Fiber application with the grid it controls so route
// registration can reach both.
type App struct {
	*fiber.App

	Logger  *logrus.Logger
	Grid    *network.Grid
	Metrics *metrics.Recorder
	Mirrors *network.MirrorSet

	timeout time.Duration
}

const contextKeyRequestID = "_cellbay_request_id"

// NewApp builds a Fiber application with request ID, recover and JSON
// not-found handling. Routes are attached by the routes package.
func NewApp(opts AppOptions) (*App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Grid == nil {
		return nil, errors.New("grid is required")
	}
	timeout := opts.CommandTimeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ErrorHandler:  errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestIDMiddleware())

	return &App{
		App:     app,
		Logger:  opts.Logger,
		Grid:    opts.Grid,
		Metrics: opts.Metrics,
		Mirrors: opts.Mirrors,
		timeout: timeout,
	}, nil
}

// Finalize 注册兜底 404，需在所有路由之后调用。
func (a *App) Finalize() {
	a.Use(notFoundHandler())
}

func notFoundHandler() fiber.Handler {
	return func(c fiber.Ctx) error {
		return Fail(c, fiber.StatusNotFound, "route_not_found")
	}
}

// Do 在网格所有者循环上执行 fn；超时或网格停止时返回 503。
func (a *App) Do(c fiber.Ctx, fn func()) error {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.Grid.Do(ctx, fn); err != nil {
		a.Logger.WithFields(logrus.Fields{
			"action":     "grid_command",
			"request_id": RequestID(c),
			"path":       c.Path(),
		}).Warnf("owner loop unavailable: %v", err)
		return fiber.NewError(fiber.StatusServiceUnavailable, "grid_busy")
	}
	return nil
}

// Fail renders the JSON error envelope used by every route.
func Fail(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}

// errorHandler 将 fiber.Error 统一渲染为 {"error": code}。
func errorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	code := "internal_error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		code = fe.Message
	}
	return Fail(c, status, code)
}

// requestIDMiddleware 为每个请求生成请求 ID，并回写到 X-Request-ID。
func requestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}
