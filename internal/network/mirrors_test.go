package network

import (
	"testing"

	"github.com/any-hub/cellbay/internal/statusword"
	"github.com/any-hub/cellbay/internal/storage"
	"github.com/any-hub/cellbay/internal/tick"
)

func TestMirrorSetFollowsFeed(t *testing.T) {
	clock := tick.NewManual(10)
	feed := NewStatusFeed()
	mirrors := NewMirrorSet(clock, 4)
	mirrors.Attach(feed)

	if _, _, ok := mirrors.State("a"); ok {
		t.Fatalf("no mirror before the first publish")
	}

	var s statusword.State
	s.Powered = true
	s.Statuses[1] = storage.StatusFull
	s.Blinks[1] = true
	feed.Publish("a", statusword.Encode(s))

	w, state, ok := mirrors.State("a")
	if !ok || w != statusword.Encode(s) {
		t.Fatalf("mirror should hold the published word, got %#x %v", uint32(w), ok)
	}
	if !state.Powered || state.Statuses[1] != storage.StatusFull || !state.Blinks[1] {
		t.Fatalf("unexpected decoded state %+v", state)
	}

	clock.Advance(5)
	if _, state, _ = mirrors.State("a"); state.Blinks[1] {
		t.Fatalf("blink should expire after the grace window")
	}

	feed.Forget("a")
	if _, _, ok := mirrors.State("a"); ok {
		t.Fatalf("forgotten host should drop its mirror")
	}
}

func TestMirrorSetReportsRelevantChanges(t *testing.T) {
	mirrors := NewMirrorSet(tick.NewManual(0), 0)
	var s statusword.State
	s.Statuses[0] = storage.StatusAvailable
	if !mirrors.Apply("a", statusword.Encode(s)) {
		t.Fatalf("first status should count as a change")
	}
	if mirrors.Apply("a", statusword.Encode(s)) {
		t.Fatalf("identical word is not a change")
	}
}
