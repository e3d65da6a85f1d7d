package network

import (
	"sync"

	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/statusword"
	"github.com/any-hub/cellbay/internal/tick"
)

// MirrorSet 为每个发布过状态字的宿主维护一个远端镜像，可并发读取。
type MirrorSet struct {
	mu      sync.Mutex
	clock   tick.Clock
	grace   uint64
	mirrors map[string]*drive.Mirror
}

// NewMirrorSet 创建空镜像集；grace 为 0 时沿用镜像默认宽限窗口。
func NewMirrorSet(clock tick.Clock, grace uint64) *MirrorSet {
	return &MirrorSet{
		clock:   clock,
		grace:   grace,
		mirrors: make(map[string]*drive.Mirror),
	}
}

// Attach 订阅状态流：发布即应用到对应镜像，宿主被移除时丢弃镜像。
func (s *MirrorSet) Attach(feed *StatusFeed) {
	feed.Subscribe(func(host string, w statusword.Word) {
		s.Apply(host, w)
	})
	feed.OnForget(s.Forget)
}

// Apply 将状态字交给宿主的镜像，返回远端关心的位是否变化。
func (s *MirrorSet) Apply(host string, w statusword.Word) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mirrors[host]
	if !ok {
		m = drive.NewMirror(s.clock, s.grace)
		s.mirrors[host] = m
	}
	return m.Apply(w)
}

// Forget 丢弃宿主的镜像。
func (s *MirrorSet) Forget(host string) {
	s.mu.Lock()
	delete(s.mirrors, host)
	s.mu.Unlock()
}

// State 返回镜像看到的状态字与解码结果；闪烁位按宽限窗口过滤。
func (s *MirrorSet) State(host string) (statusword.Word, statusword.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mirrors[host]
	if !ok {
		return 0, statusword.State{}, false
	}
	state := m.State()
	for k := range state.Blinks {
		state.Blinks[k] = m.IsBlinking(k)
	}
	return m.Word(), state, true
}
