package routes

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/cellbay/internal/drive"
	"github.com/any-hub/cellbay/internal/statusword"
	"github.com/any-hub/cellbay/internal/storage"
)

type slotPayload struct {
	Index    int    `json:"index"`
	Type     string `json:"type,omitempty"`
	Serial   string `json:"serial,omitempty"`
	Status   string `json:"status"`
	Blinking bool   `json:"blinking"`
}

type hostPayload struct {
	Name      string        `json:"name"`
	Priority  int           `json:"priority"`
	Active    bool          `json:"active"`
	IdlePower float64       `json:"idle_power"`
	Word      string        `json:"word"`
	Slots     []slotPayload `json:"slots"`
}

type statusPayload struct {
	Host    string        `json:"host"`
	Word    string        `json:"word"`
	Powered bool          `json:"powered"`
	Slots   []slotPayload `json:"slots"`
}

type stackPayload struct {
	Kind     string `json:"kind"`
	Amount   int64  `json:"amount"`
	Simulate bool   `json:"simulate"`
}

func encodeWord(w statusword.Word) string {
	return "0x" + strconv.FormatUint(uint64(w), 16)
}

// encodeStatus 只依赖状态字本身，与远端镜像看到的内容一致。
func encodeStatus(host string, w statusword.Word) statusPayload {
	return encodeState(host, w, statusword.Decode(w))
}

// encodeState 使用镜像给出的解码结果，闪烁位已按宽限窗口过滤。
func encodeState(host string, w statusword.Word, state statusword.State) statusPayload {
	slots := make([]slotPayload, statusword.Slots)
	for k := range slots {
		slots[k] = slotPayload{
			Index:    k,
			Status:   state.Statuses[k].String(),
			Blinking: state.Blinks[k],
		}
	}
	return statusPayload{
		Host:    host,
		Word:    encodeWord(w),
		Powered: state.Powered,
		Slots:   slots,
	}
}

// encodeHost 需在网格所有者循环内调用。
func encodeHost(h *drive.Host, active bool) hostPayload {
	w := h.StatusWord()
	slots := make([]slotPayload, 0, drive.SlotCount)
	for k := 0; k < drive.SlotCount; k++ {
		m := h.Medium(k)
		if m == nil {
			continue
		}
		slots = append(slots, slotPayload{
			Index:    k,
			Type:     m.Type,
			Serial:   m.Serial,
			Status:   h.CellStatus(k).String(),
			Blinking: h.IsBlinking(k),
		})
	}
	return hostPayload{
		Name:      h.Name(),
		Priority:  h.Priority(),
		Active:    active,
		IdlePower: h.IdlePower(),
		Word:      encodeWord(w),
		Slots:     slots,
	}
}

func decodeBody(c fiber.Ctx, out any) error {
	if err := json.Unmarshal(c.Body(), out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid_body")
	}
	return nil
}

func parseSlot(c fiber.Ctx) (int, error) {
	slot, err := strconv.Atoi(c.Params("slot"))
	if err != nil || slot < 0 || slot >= drive.SlotCount {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid_slot")
	}
	return slot, nil
}

func parseChannel(c fiber.Ctx) (storage.Channel, error) {
	ch, ok := storage.ParseChannel(c.Params("channel"))
	if !ok {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid_channel")
	}
	return ch, nil
}

func (s stackPayload) stack() (*storage.Stack, storage.Mode, error) {
	st := storage.NewStack(s.Kind, s.Amount)
	if st == nil {
		return nil, 0, fiber.NewError(fiber.StatusBadRequest, "invalid_stack")
	}
	mode := storage.Modulate
	if s.Simulate {
		mode = storage.Simulate
	}
	return st, mode, nil
}
