package drive

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/cellbay/internal/cellhandler"
	"github.com/any-hub/cellbay/internal/storage"
	"github.com/any-hub/cellbay/internal/tick"
)

type fakeGrid struct {
	active      bool
	unreachable bool
	posts       int
	removed     []storage.Stack
	added       []storage.Stack
	contents    int
}

func (g *fakeGrid) IsHostActive(*Host) bool { return g.active }

func (g *fakeGrid) PostHandlerListChanged(*Host) error {
	if g.unreachable {
		return errors.New("grid unreachable")
	}
	g.posts++
	return nil
}

func (g *fakeGrid) PostContentsChanged(_ *Host, removed, added []storage.Stack) error {
	if g.unreachable {
		return errors.New("grid unreachable")
	}
	g.contents++
	g.removed = append(g.removed, removed...)
	g.added = append(g.added, added...)
	return nil
}

type powerLog struct {
	reports []float64
}

func (p *powerLog) ReportIdlePower(_ *Host, total float64) {
	p.reports = append(p.reports, total)
}

func (p *powerLog) last() float64 {
	if len(p.reports) == 0 {
		return -1
	}
	return p.reports[len(p.reports)-1]
}

// mockHandler 只在固定通道上提供一个以 map 存储的视图。
type mockHandler struct {
	channel storage.Channel
	status  storage.CellStatus
	drain   float64
	decline bool
}

func (m *mockHandler) CanHandle(*storage.Medium) bool { return true }

func (m *mockHandler) Inventory(med *storage.Medium, owner cellhandler.Owner, ch storage.Channel) storage.Inventory {
	if m.decline || ch != m.channel {
		return nil
	}
	return &mockInventory{medium: med, channel: ch, owner: owner}
}

func (m *mockHandler) IdleDrain(*storage.Medium, storage.Inventory) float64 { return m.drain }

func (m *mockHandler) Status(_ *storage.Medium, inv storage.Inventory) storage.CellStatus {
	if inv == nil {
		return storage.StatusEmpty
	}
	return m.status
}

type mockInventory struct {
	medium  *storage.Medium
	channel storage.Channel
	owner   cellhandler.Owner
}

func (i *mockInventory) Channel() storage.Channel { return i.channel }

func (i *mockInventory) Insert(s *storage.Stack, mode storage.Mode) *storage.Stack {
	if mode == storage.Modulate {
		i.medium.Add(s.Kind, s.Amount)
		i.owner.SaveChanges(i)
	}
	return nil
}

func (i *mockInventory) Extract(r *storage.Stack, mode storage.Mode) *storage.Stack {
	have := i.medium.Amount(r.Kind)
	if have > r.Amount {
		have = r.Amount
	}
	if have == 0 {
		return nil
	}
	if mode == storage.Modulate {
		i.medium.Add(r.Kind, -have)
		i.owner.SaveChanges(i)
	}
	return r.WithAmount(have)
}

func (i *mockInventory) Available() []storage.Stack { return i.medium.Snapshot() }

type fixture struct {
	host  *Host
	grid  *fakeGrid
	power *powerLog
	clock *tick.Manual
	reg   *cellhandler.Registry
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		grid:  &fakeGrid{},
		power: &powerLog{},
		clock: tick.NewManual(100),
		reg:   cellhandler.NewRegistry(),
	}
	f.reg.MustRegister("mock-items", &mockHandler{channel: storage.ChannelItems, status: storage.StatusAvailable, drain: 4})
	f.reg.MustRegister("mock-fluids", &mockHandler{channel: storage.ChannelFluids, status: storage.StatusFull, drain: 1})
	f.reg.MustRegister("mock-declines", &mockHandler{decline: true, drain: 9})

	host, err := New(Options{
		Name:          "drive-a",
		Resolver:      f.reg,
		Grid:          f.grid,
		Power:         f.power,
		Clock:         f.clock,
		Logger:        quietLogger(),
		BaseIdlePower: DefaultBaseIdlePower,
	})
	if err != nil {
		t.Fatalf("new host: %v", err)
	}
	f.host = host
	return f
}
