package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/logging"
	"github.com/any-hub/cellbay/internal/network"
	"github.com/any-hub/cellbay/internal/server"
	"github.com/any-hub/cellbay/internal/storage"
)

// RegisterHostRoutes 暴露 /-/hosts 系列接口：宿主摘要、状态字、优先级、槽位与频道。
func RegisterHostRoutes(app *server.App) {
	if app == nil {
		return
	}

	app.Get("/-/hosts", func(c fiber.Ctx) error {
		var payload []hostPayload
		err := app.Do(c, func() {
			for _, h := range app.Grid.Hosts() {
				payload = append(payload, encodeHost(h, app.Grid.IsHostActive(h)))
			}
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"hosts": payload})
	})

	app.Get("/-/hosts/:name", func(c fiber.Ctx) error {
		var payload hostPayload
		err := withHost(app, c, func(h *drive.Host) {
			payload = encodeHost(h, app.Grid.IsHostActive(h))
		})
		if err != nil {
			return err
		}
		return c.JSON(payload)
	})

	// 移出网格并删除持久化的优先级记录。
	app.Delete("/-/hosts/:name", func(c fiber.Ctx) error {
		name := c.Params("name")
		ctx := c.Context()
		var detachErr error
		if err := app.Do(c, func() {
			detachErr = app.Grid.DetachHost(ctx, name)
		}); err != nil {
			return err
		}
		if errors.Is(detachErr, network.ErrHostNotFound) {
			return server.Fail(c, fiber.StatusNotFound, "host_not_found")
		}
		if detachErr != nil {
			return detachErr
		}
		return c.JSON(fiber.Map{"detached": name})
	})

	// 优先由订阅状态流的镜像作答，与远端观察者看到的一致；从未发布过时现场计算。
	app.Get("/-/hosts/:name/status", func(c fiber.Ctx) error {
		name := c.Params("name")
		if app.Mirrors != nil {
			if w, state, ok := app.Mirrors.State(name); ok {
				return c.JSON(encodeState(name, w, state))
			}
		} else if w, ok := app.Grid.Feed().Latest(name); ok {
			return c.JSON(encodeStatus(name, w))
		}
		var payload statusPayload
		err := withHost(app, c, func(h *drive.Host) {
			payload = encodeStatus(h.Name(), h.StatusWord())
		})
		if err != nil {
			return err
		}
		return c.JSON(payload)
	})

	app.Put("/-/hosts/:name/priority", func(c fiber.Ctx) error {
		var req struct {
			Priority *int `json:"priority"`
		}
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		if req.Priority == nil {
			return server.Fail(c, fiber.StatusBadRequest, "priority_required")
		}
		err := withHost(app, c, func(h *drive.Host) {
			h.SetPriority(*req.Priority)
		})
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"priority": *req.Priority})
	})

	app.Put("/-/hosts/:name/slots/:slot", func(c fiber.Ctx) error {
		slot, err := parseSlot(c)
		if err != nil {
			return err
		}
		var req struct {
			Type     string `json:"type"`
			Capacity int64  `json:"capacity"`
		}
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		req.Type = strings.ToLower(strings.TrimSpace(req.Type))
		if req.Type == "" || req.Capacity < 0 {
			return server.Fail(c, fiber.StatusBadRequest, "invalid_medium")
		}
		if handler, ok := cellhandler.Lookup(req.Type); ok && !cellhandler.CapacityFits(handler, req.Capacity) {
			return server.Fail(c, fiber.StatusBadRequest, "invalid_capacity")
		}

		m := storage.NewMedium(req.Type, req.Capacity)
		var (
			accepted bool
			previous *storage.Medium
		)
		err = withHost(app, c, func(h *drive.Host) {
			accepted = h.Accepts(m)
			previous = h.SetMedium(slot, m)
			app.Logger.WithFields(logging.SlotFields(h.Name(), slot, m)).Info("medium inserted")
		})
		if err != nil {
			return err
		}
		resp := fiber.Map{"slot": slot, "serial": m.Serial, "accepted": accepted}
		if previous != nil {
			resp["previous"] = previous.Type
		}
		return c.JSON(resp)
	})

	app.Delete("/-/hosts/:name/slots/:slot", func(c fiber.Ctx) error {
		slot, err := parseSlot(c)
		if err != nil {
			return err
		}
		var removed *storage.Medium
		err = withHost(app, c, func(h *drive.Host) {
			removed = h.RemoveMedium(slot)
		})
		if err != nil {
			return err
		}
		if removed == nil {
			return server.Fail(c, fiber.StatusNotFound, "slot_empty")
		}
		return c.JSON(fiber.Map{"slot": slot, "removed": removed.Type, "serial": removed.Serial})
	})

	app.Put("/-/hosts/:name/channel", func(c fiber.Ctx) error {
		var req struct {
			Assigned bool `json:"assigned"`
		}
		if err := decodeBody(c, &req); err != nil {
			return err
		}
		name := c.Params("name")
		var setErr error
		if err := app.Do(c, func() {
			setErr = app.Grid.SetChannel(name, req.Assigned)
		}); err != nil {
			return err
		}
		if errors.Is(setErr, network.ErrHostNotFound) {
			return server.Fail(c, fiber.StatusNotFound, "host_not_found")
		}
		if setErr != nil {
			return setErr
		}
		return c.JSON(fiber.Map{"assigned": req.Assigned})
	})
}

// withHost 在所有者循环内按 :name 查找宿主并执行 fn。
func withHost(app *server.App, c fiber.Ctx, fn func(*drive.Host)) error {
	name := c.Params("name")
	var lookupErr error
	err := app.Do(c, func() {
		h, err := app.Grid.Host(name)
		if err != nil {
			lookupErr = err
			return
		}
		fn(h)
	})
	if err != nil {
		return err
	}
	if errors.Is(lookupErr, network.ErrHostNotFound) {
		return server.Fail(c, fiber.StatusNotFound, "host_not_found")
	}
	return lookupErr
}
