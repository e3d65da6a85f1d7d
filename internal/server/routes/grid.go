package routes

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/server"
	"github.com/any-hub/cellbay/internal/storage"
)

// RegisterGridRoutes 暴露网格级接口：供电、路由插入/取出、元件类型与指标。
func RegisterGridRoutes(app *server.App) {
	if app == nil {
		return
	}

	app.Get("/-/cells", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"cells": cellhandler.Keys()})
	})

	app.Get("/-/grid", func(c fiber.Ctx) error {
		var payload fiber.Map
		err := app.Do(c, func() {
			payload = fiber.Map{
				"powered":          app.Grid.Powered(),
				"generation":       app.Grid.Generation(),
				"total_idle_power": app.Grid.TotalIdlePower(),
				"hosts":            len(app.Grid.Hosts()),
			}
		})
		if err != nil {
			return err
		}
		return c.JSON(payload)
	})

	app.Put("/-/grid/power", func(c fiber.Ctx) error {
		var req struct {
			Powered bool `json:"powered"`
		}
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		if err := app.Do(c, func() { app.Grid.SetPowered(req.Powered) }); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"powered": req.Powered})
	})

	app.Post("/-/grid/:channel/insert", func(c fiber.Ctx) error {
		ch, stack, mode, err := transferRequest(c)
		if err != nil {
			return err
		}
		var remainder *storage.Stack
		if err := app.Do(c, func() { remainder = app.Grid.Insert(ch, stack, mode) }); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"kind":      stack.Kind,
			"requested": stack.Amount,
			"remainder": amountOf(remainder),
		})
	})

	app.Post("/-/grid/:channel/extract", func(c fiber.Ctx) error {
		ch, stack, mode, err := transferRequest(c)
		if err != nil {
			return err
		}
		var extracted *storage.Stack
		if err := app.Do(c, func() { extracted = app.Grid.Extract(ch, stack, mode) }); err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"kind":      stack.Kind,
			"requested": stack.Amount,
			"extracted": amountOf(extracted),
		})
	})

	if app.Metrics != nil {
		app.Get("/-/metrics", adaptor.HTTPHandler(app.Metrics.Handler()))
	}
}

func transferRequest(c fiber.Ctx) (storage.Channel, *storage.Stack, storage.Mode, error) {
	ch, err := parseChannel(c)
	if err != nil {
		return 0, nil, 0, err
	}
	var req stackPayload
	if err := decodeBody(c, &req); err != nil {
		return 0, nil, 0, err
	}
	stack, mode, err := req.stack()
	if err != nil {
		return 0, nil, 0, err
	}
	return ch, stack, mode, nil
}

func amountOf(s *storage.Stack) int64 {
	if s.Empty() {
		return 0
	}
	return s.Amount
}
