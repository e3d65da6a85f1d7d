package cellhandler

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/any-hub/cellbay/internal/storage"
)

var globalRegistry = NewRegistry()

// Registry 将介质类型键映射到 Handler，并发安全。
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry 返回空注册表，测试或嵌入方可以独立使用。
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Default 返回进程级注册表，元件包在 init() 中向它注册。
func Default() *Registry {
	return globalRegistry
}

// Register 将 Handler 加入全局注册表，重复键会返回错误。
func Register(key string, h Handler) error {
	return globalRegistry.Register(key, h)
}

// MustRegister 在注册失败时 panic，适合元件 init() 中调用。
func MustRegister(key string, h Handler) {
	globalRegistry.MustRegister(key, h)
}

// Resolve 在全局注册表中查找愿意处理介质的 Handler。
func Resolve(m *storage.Medium) (Handler, bool) {
	return globalRegistry.Resolve(m)
}

// IsHandled 报告全局注册表中是否有 Handler 接受该介质。
func IsHandled(m *storage.Medium) bool {
	return globalRegistry.IsHandled(m)
}

// Lookup 在全局注册表中按类型键查找 Handler。
func Lookup(key string) (Handler, bool) {
	return globalRegistry.Lookup(key)
}

// Keys 返回全局注册表中已注册的介质类型键，供诊断使用。
func Keys() []string {
	return globalRegistry.Keys()
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Register 注册一个介质类型键。
func (r *Registry) Register(key string, h Handler) error {
	normalized := normalizeKey(key)
	if normalized == "" {
		return fmt.Errorf("cell type key is required")
	}
	if h == nil {
		return fmt.Errorf("cell handler for %s is nil", normalized)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[normalized]; exists {
		return fmt.Errorf("cell type %s already registered", normalized)
	}
	r.handlers[normalized] = h
	return nil
}

// MustRegister 在注册失败时 panic。
func (r *Registry) MustRegister(key string, h Handler) {
	if err := r.Register(key, h); err != nil {
		panic(err)
	}
}

// Resolve 先按介质类型查找，再询问 Handler 是否愿意处理。
func (r *Registry) Resolve(m *storage.Medium) (Handler, bool) {
	if m == nil {
		return nil, false
	}
	key := normalizeKey(m.Type)
	if key == "" {
		return nil, false
	}

	r.mu.RLock()
	h, ok := r.handlers[key]
	r.mu.RUnlock()

	if !ok || !h.CanHandle(m) {
		return nil, false
	}
	return h, true
}

// Lookup 只按类型键查找 Handler，不询问 CanHandle。
func (r *Registry) Lookup(key string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[normalizeKey(key)]
	return h, ok
}

// IsHandled 报告是否存在愿意处理该介质的 Handler。
func (r *Registry) IsHandled(m *storage.Medium) bool {
	_, ok := r.Resolve(m)
	return ok
}

// Keys 返回排序后的介质类型键。
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.handlers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(r.handlers))
	for key := range r.handlers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
