package network

import (
	"sort"
	"sync"

	"github.com/any-hub/cellbay/internal/statusword"
)

// StatusFeed 保存每个宿主最近发布的状态字，并转发给订阅者。可并发读取。
type StatusFeed struct {
	mu     sync.RWMutex
	latest map[string]statusword.Word
	subs   []func(host string, w statusword.Word)
	gone   []func(host string)
}

// NewStatusFeed 返回空的状态流。
func NewStatusFeed() *StatusFeed {
	return &StatusFeed{latest: make(map[string]statusword.Word)}
}

// Subscribe 注册订阅者，之后发布的状态字都会同步回调。
func (f *StatusFeed) Subscribe(fn func(host string, w statusword.Word)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
}

// Publish 记录并转发一个状态字。
func (f *StatusFeed) Publish(host string, w statusword.Word) {
	f.mu.Lock()
	f.latest[host] = w
	subs := make([]func(string, statusword.Word), len(f.subs))
	copy(subs, f.subs)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(host, w)
	}
}

// OnForget 注册宿主被移除时的回调。
func (f *StatusFeed) OnForget(fn func(host string)) {
	if fn == nil {
		return
	}
	f.mu.Lock()
	f.gone = append(f.gone, fn)
	f.mu.Unlock()
}

// Forget 丢弃宿主最近的状态字并通知 OnForget 回调。
func (f *StatusFeed) Forget(host string) {
	f.mu.Lock()
	delete(f.latest, host)
	gone := make([]func(string), len(f.gone))
	copy(gone, f.gone)
	f.mu.Unlock()

	for _, fn := range gone {
		fn(host)
	}
}

// Latest 返回宿主最近发布的状态字。
func (f *StatusFeed) Latest(host string) (statusword.Word, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	w, ok := f.latest[host]
	return w, ok
}

// Hosts 返回已发布过状态字的宿主名，按名称排序。
func (f *StatusFeed) Hosts() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.latest))
	for name := range f.latest {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
