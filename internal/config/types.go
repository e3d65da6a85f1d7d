package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "50ms"、"1s" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为，所有宿主共享同一份参数。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	StoragePath     string   `mapstructure:"StoragePath"`
	StorageDriver   string   `mapstructure:"StorageDriver"`
	TickInterval    Duration `mapstructure:"TickInterval"`
	BlinkGraceTicks int      `mapstructure:"BlinkGraceTicks"`
	BaseIdlePower   float64  `mapstructure:"BaseIdlePower"`
}

// SlotConfig 描述启动时预先放入槽位的介质。
type SlotConfig struct {
	Index    int    `mapstructure:"Index"`
	Type     string `mapstructure:"Type"`
	Capacity int64  `mapstructure:"Capacity"`
}

// HostConfig 描述单个存储宿主。Detached 为 true 时宿主启动时不持有频道。
type HostConfig struct {
	Name     string       `mapstructure:"Name"`
	Priority int          `mapstructure:"Priority"`
	Detached bool         `mapstructure:"Detached"`
	Slots    []SlotConfig `mapstructure:"Slot"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Hosts  []HostConfig `mapstructure:"Host"`
}

// HostNames 返回所有宿主名称摘要，供日志字段使用。
func HostNames(hosts []HostConfig) []string {
	if len(hosts) == 0 {
		return nil
	}
	result := make([]string, len(hosts))
	for i, host := range hosts {
		result[i] = fmt.Sprintf("%s:%d", host.Name, host.Priority)
	}
	return result
}
