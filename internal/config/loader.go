package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/persist"
	"github.com/any-hub/cellbay/internal/tick"
)

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectSlotCount(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Hosts {
		applyHostDefaults(&cfg.Hosts[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析存储目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("StorageDriver", persist.DriverFS)
	v.SetDefault("TickInterval", "50ms")
	v.SetDefault("BlinkGraceTicks", int(drive.DefaultBlinkGrace))
	v.SetDefault("BaseIdlePower", drive.DefaultBaseIdlePower)
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.TickInterval.DurationValue() == 0 {
		g.TickInterval = Duration(tick.DefaultInterval)
	}
	if g.BlinkGraceTicks == 0 {
		g.BlinkGraceTicks = int(drive.DefaultBlinkGrace)
	}
	g.StorageDriver = strings.ToLower(strings.TrimSpace(g.StorageDriver))
	if g.StorageDriver == "" {
		g.StorageDriver = persist.DriverFS
	}
}

func applyHostDefaults(h *HostConfig) {
	h.Name = strings.TrimSpace(h.Name)
	for i := range h.Slots {
		h.Slots[i].Type = strings.ToLower(strings.TrimSpace(h.Slots[i].Type))
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectSlotCount 拒绝宿主级 SlotCount 字段：槽位数由状态字位宽固定。
func rejectSlotCount(v *viper.Viper) error {
	raw := v.Get("Host")
	hosts, ok := raw.([]interface{})
	if !ok {
		return nil
	}

	for idx, entry := range hosts {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		for key := range m {
			if !strings.EqualFold(key, "SlotCount") {
				continue
			}
			name := fmt.Sprintf("#%d", idx)
			for nameKey, rawName := range m {
				if s, ok := rawName.(string); ok && strings.EqualFold(nameKey, "Name") && s != "" {
					name = s
				}
			}
			return newFieldError(hostField(name, "SlotCount"), fmt.Sprintf("槽位数固定为 %d，请移除该字段", drive.SlotCount))
		}
	}

	return nil
}
