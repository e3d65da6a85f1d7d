package drive

import (
	"github.com/any-hub/cellbay/internal/storage"
)

// Grid 是宿主所在的网络，负责激活状态判定与处理器列表变更通知。
type Grid interface {
	// IsHostActive 报告宿主当前是否参与网络路由。
	IsHostActive(h *Host) bool
	// PostHandlerListChanged 通知网络处理器列表的组成发生了变化。
	// 网络暂时不可达时返回错误，宿主会吞掉该错误。
	PostHandlerListChanged(h *Host) error
	// PostContentsChanged 投递介质换入换出造成的库存增减，语义同上。
	PostContentsChanged(h *Host, removed, added []storage.Stack) error
}

// PowerSink 接收宿主的待机功耗总量。
type PowerSink interface {
	ReportIdlePower(h *Host, total float64)
}

// EventKind 枚举宿主会响应的网络事件。
type EventKind int

const (
	PowerStatusChanged EventKind = iota + 1
	ChannelStatusChanged
)

func (k EventKind) String() string {
	switch k {
	case PowerStatusChanged:
		return "power_status_changed"
	case ChannelStatusChanged:
		return "channel_status_changed"
	default:
		return "unknown"
	}
}

// Event 是投递给宿主的一条网络消息。
type Event struct {
	Kind EventKind
}

type nopPowerSink struct{}

func (nopPowerSink) ReportIdlePower(*Host, float64) {}

// ChannelList 是按通道划分的处理器列表。
type ChannelList [storage.ChannelCount][]*Watcher
