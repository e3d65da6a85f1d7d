package config

import (
	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/storage"
	"github.com/any-hub/cellbay/internal/tick"
)

// DriveOptions 将全局与宿主配置合并为构造宿主所需的参数。
// Grid/Power 由 network.Grid.AddHost 注入。
func (c *Config) DriveOptions(h HostConfig, clock tick.Clock, logger *logrus.Logger) drive.Options {
	return drive.Options{
		Name:          h.Name,
		Clock:         clock,
		Logger:        logger,
		BaseIdlePower: c.Global.BaseIdlePower,
		BlinkGrace:    uint64(c.Global.BlinkGraceTicks),
		Priority:      h.Priority,
	}
}

// Media 为宿主配置中的每个槽位创建介质，按槽位下标索引。
func (h HostConfig) Media() map[int]*storage.Medium {
	if len(h.Slots) == 0 {
		return nil
	}
	out := make(map[int]*storage.Medium, len(h.Slots))
	for _, slot := range h.Slots {
		out[slot.Index] = storage.NewMedium(slot.Type, slot.Capacity)
	}
	return out
}
