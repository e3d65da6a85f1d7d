package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
TickInterval = "boom"

[[Host]]
Name = "drive-a"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadParsesDurationForms(t *testing.T) {
	cfg := `
TickInterval = "100ms"
StorageDriver = "SQLite"
` + hostBlock("drive-a", SlotConfig{Index: 1, Type: "Fluid-Cell-4k"})
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.TickInterval.DurationValue() != 100*time.Millisecond {
		t.Fatalf("TickInterval 解析错误: %v", loaded.Global.TickInterval.DurationValue())
	}
	if loaded.Global.StorageDriver != "sqlite" {
		t.Fatalf("StorageDriver 应被规范化: %s", loaded.Global.StorageDriver)
	}
	if slot := loaded.Hosts[0].Slots[0]; slot.Type != "fluid-cell-4k" {
		t.Fatalf("Slot Type 应被规范化: %s", slot.Type)
	}
}

func TestLoadRejectsOverflowingCapacity(t *testing.T) {
	path := writeTempConfig(t, hostBlock("drive-a", SlotConfig{Index: 0, Type: "item-cell-1k", Capacity: 1 << 61}))
	_, err := Load(path)
	var fe FieldError
	if !errors.As(err, &fe) || fe.Field != "Host[drive-a].Slot[0]" {
		t.Fatalf("超大容量应返回槽位 FieldError, got %v", err)
	}
}

func TestLoadRejectsSlotCount(t *testing.T) {
	cfg := `

[[Host]]
Name = "drive-a"
SlotCount = 12
`
	path := writeTempConfig(t, cfg)
	_, err := Load(path)
	var fe FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("SlotCount 应返回 FieldError, got %v", err)
	}
	if fe.Field != "Host[drive-a].SlotCount" {
		t.Fatalf("字段路径错误: %s", fe.Field)
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("30")); err != nil {
		t.Fatalf("纯秒值应可解析: %v", err)
	}
	if d.DurationValue() != 30*time.Second {
		t.Fatalf("解析结果错误: %v", d.DurationValue())
	}
	if err := d.UnmarshalText([]byte("abc")); err == nil {
		t.Fatalf("非法值应失败")
	}
}
