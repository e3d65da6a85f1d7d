package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/storage"
)

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// HostFields 描述单个宿主的关键状态，供启动与控制面日志复用。
func HostFields(host string, priority int, slots int) logrus.Fields {
	return logrus.Fields{
		"host":     host,
		"priority": priority,
		"slots":    slots,
	}
}

// SlotFields 在宿主字段基础上附加槽位与介质信息。
func SlotFields(host string, slot int, m *storage.Medium) logrus.Fields {
	fields := logrus.Fields{
		"host": host,
		"slot": slot,
	}
	if m != nil {
		fields["cell_type"] = m.Type
		fields["serial"] = m.Serial
	}
	return fields
}
