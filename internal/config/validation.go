package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/persist"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	switch g.StorageDriver {
	case persist.DriverFS, persist.DriverSQLite:
	default:
		return newFieldError("Global.StorageDriver", "仅支持 fs/sqlite")
	}
	if g.TickInterval.DurationValue() <= 0 {
		return newFieldError("Global.TickInterval", "必须大于 0")
	}
	if g.BlinkGraceTicks <= 0 {
		return newFieldError("Global.BlinkGraceTicks", "必须大于 0")
	}
	if g.BaseIdlePower < 0 {
		return newFieldError("Global.BaseIdlePower", "不能为负数")
	}

	if len(c.Hosts) == 0 {
		return errors.New("至少需要配置一个 Host")
	}

	seenNames := map[string]struct{}{}
	for i := range c.Hosts {
		host := &c.Hosts[i]
		if host.Name == "" {
			return newFieldError("Host[].Name", "不能为空")
		}
		if strings.ContainsAny(host.Name, `/\ `) {
			return newFieldError(hostField(host.Name, "Name"), "不允许包含路径分隔符或空格")
		}
		if _, exists := seenNames[host.Name]; exists {
			return newFieldError(hostField(host.Name, "Name"), "重复")
		}
		seenNames[host.Name] = struct{}{}

		if err := validateSlots(host); err != nil {
			return err
		}
	}

	return nil
}

func validateSlots(host *HostConfig) error {
	seen := map[int]struct{}{}
	for _, slot := range host.Slots {
		field := hostField(host.Name, fmt.Sprintf("Slot[%d]", slot.Index))
		if slot.Index < 0 || slot.Index >= drive.SlotCount {
			return newFieldError(field, fmt.Sprintf("Index 必须在 0-%d", drive.SlotCount-1))
		}
		if _, exists := seen[slot.Index]; exists {
			return newFieldError(field, "重复")
		}
		seen[slot.Index] = struct{}{}

		if slot.Type == "" {
			return newFieldError(field, "Type 不能为空")
		}
		handler, ok := cellhandler.Lookup(slot.Type)
		if !ok {
			return newFieldError(field, fmt.Sprintf("未注册元件类型: %s", slot.Type))
		}
		if slot.Capacity < 0 {
			return newFieldError(field, "Capacity 不能为负数")
		}
		if !cellhandler.CapacityFits(handler, slot.Capacity) {
			return newFieldError(field, "Capacity 超出元件可计量范围")
		}
	}
	return nil
}
