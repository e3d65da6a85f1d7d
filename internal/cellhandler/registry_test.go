package cellhandler

import (
	"testing"

	"github.com/any-hub/cellbay/internal/storage"
)

type stubHandler struct {
	accept bool
}

func (s stubHandler) CanHandle(*storage.Medium) bool { return s.accept }

func (stubHandler) Inventory(*storage.Medium, Owner, storage.Channel) storage.Inventory {
	return nil
}

func (stubHandler) IdleDrain(*storage.Medium, storage.Inventory) float64 { return 0 }

func (stubHandler) Status(*storage.Medium, storage.Inventory) storage.CellStatus {
	return storage.StatusEmpty
}

func replaceRegistry(t *testing.T) {
	t.Helper()
	prev := globalRegistry
	globalRegistry = NewRegistry()
	t.Cleanup(func() { globalRegistry = prev })
}

func TestRegisterResolveAndKeys(t *testing.T) {
	replaceRegistry(t)

	if err := Register("item-cell-1k", stubHandler{accept: true}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := Register("Fluid-Cell-1k", stubHandler{accept: true}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, ok := Resolve(&storage.Medium{Type: "ITEM-CELL-1K"}); !ok {
		t.Fatalf("resolve should be case-insensitive")
	}
	if _, ok := Resolve(&storage.Medium{Type: "unknown"}); ok {
		t.Fatalf("unknown type should not resolve")
	}
	if _, ok := Resolve(nil); ok {
		t.Fatalf("nil medium should not resolve")
	}

	keys := Keys()
	if len(keys) != 2 || keys[0] != "fluid-cell-1k" || keys[1] != "item-cell-1k" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestResolveHonoursCanHandle(t *testing.T) {
	replaceRegistry(t)
	MustRegister("picky", stubHandler{accept: false})

	if IsHandled(&storage.Medium{Type: "picky"}) {
		t.Fatalf("handler declining the medium should not resolve")
	}
}

func TestRegisterRejectsDuplicatesAndEmptyKeys(t *testing.T) {
	r := NewRegistry()
	if err := r.Register("a", stubHandler{}); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := r.Register(" A ", stubHandler{}); err == nil {
		t.Fatalf("duplicate registration should fail")
	}
	if err := r.Register("  ", stubHandler{}); err == nil {
		t.Fatalf("empty key should fail")
	}
	if err := r.Register("b", nil); err == nil {
		t.Fatalf("nil handler should fail")
	}
}

func TestMustRegisterPanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("dup", stubHandler{})
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	r.MustRegister("dup", stubHandler{})
}
