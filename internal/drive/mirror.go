package drive

import (
	"github.com/any-hub/cellbay/internal/statusword"
	"github.com/any-hub/cellbay/internal/storage"
	"github.com/any-hub/cellbay/internal/tick"
)

// Mirror 是远端观察者持有的只读宿主镜像，只解码收到的状态字，从不做元件发现。
type Mirror struct {
	clock           tick.Clock
	grace           uint64
	word            statusword.Word
	lastStateChange uint64
}

// NewMirror 创建镜像；grace 为 0 时使用 DefaultBlinkGrace。
func NewMirror(clock tick.Clock, grace uint64) *Mirror {
	if grace == 0 {
		grace = DefaultBlinkGrace
	}
	return &Mirror{clock: clock, grace: grace}
}

// Apply 接收一个状态字，返回远端关心的位是否发生变化。
func (m *Mirror) Apply(w statusword.Word) bool {
	old := m.word
	m.word = w
	m.lastStateChange = m.clock.Now()
	return statusword.Changed(old, w)
}

// Word 返回最近收到的状态字。
func (m *Mirror) Word() statusword.Word {
	return m.word
}

// CellStatus 直接从状态字读取槽位状态。
func (m *Mirror) CellStatus(slot int) storage.CellStatus {
	return m.word.Status(slot)
}

// IsBlinking 在宽限窗口内读取闪烁位。
func (m *Mirror) IsBlinking(slot int) bool {
	if m.clock.Now()-m.lastStateChange > m.grace {
		return false
	}
	return m.word.Blinking(slot)
}

// IsPowered 读取供电位。
func (m *Mirror) IsPowered() bool {
	return m.word.Powered()
}

// State 返回完整解码结果。
func (m *Mirror) State() statusword.State {
	return statusword.Decode(m.word)
}
