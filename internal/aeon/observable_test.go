package aeon

import (
	"testing"
)

func TestObservableDecodeAndFanOut(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	o := NewObservable[int](b, []string{"tab_bar", "active"})

	var first, second []int
	cbA := func(v int) { first = append(first, v) }
	cbB := func(v int) { second = append(second, v) }
	if !o.AddEventListener(cbA) {
		t.Fatalf("first subscription rejected")
	}
	if !o.AddEventListener(cbB) {
		t.Fatalf("second subscription rejected")
	}

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "3")})
	if len(first) != 1 || first[0] != 3 {
		t.Fatalf("first subscriber: got=%v want=[3]", first)
	}
	if len(second) != 1 || second[0] != 3 {
		t.Fatalf("second subscriber: got=%v want=[3]", second)
	}
}

func TestObservableNoReplayForNewSubscribers(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	o := NewObservable[int](b, []string{"tab_bar", "active"})

	var got []int
	o.AddEventListener(func(v int) { got = append(got, v) })
	if len(got) != 0 {
		t.Fatalf("plain observable replayed on subscribe: %v", got)
	}
}

func TestObservableIdempotentSubscription(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	o := NewObservable[int](b, []string{"tab_bar", "active"})

	var calls int
	cb := func(int) { calls++ }
	if !o.AddEventListener(cb) {
		t.Fatalf("initial subscription rejected")
	}
	if o.AddEventListener(cb) {
		t.Fatalf("duplicate subscription accepted")
	}

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "1")})
	if calls != 1 {
		t.Fatalf("callback invocations per event: got=%d want=1", calls)
	}

	if !o.RemoveEventListener(cb) {
		t.Fatalf("removal of subscribed callback failed")
	}
	if o.RemoveEventListener(cb) {
		t.Fatalf("removal of absent callback succeeded")
	}
	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "2")})
	if calls != 1 {
		t.Fatalf("removed callback was invoked")
	}
}

func TestObservableNullPayloadDecodesAsJSONNull(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	o := NewObservable[*int](b, []string{"slot"})

	var got []*int
	o.AddEventListener(func(v *int) { got = append(got, v) })
	tr.push(Event{Path: []string{"slot"}, Payload: nil})
	if len(got) != 1 {
		t.Fatalf("nil payload not delivered")
	}
	if got[0] != nil {
		t.Fatalf("nil payload decoded to %v", *got[0])
	}
}

func TestObservableDecodeFailureIsolated(t *testing.T) {
	rep := &recordingReporter{}
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", rep)
	o := NewObservable[int](b, []string{"tab_bar", "active"})

	var got []int
	o.AddEventListener(func(v int) { got = append(got, v) })

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "not json")})
	if len(got) != 0 {
		t.Fatalf("subscriber notified despite decode failure: %v", got)
	}
	if len(rep.reports) != 1 {
		t.Fatalf("decode failure reports: got=%d want=1", len(rep.reports))
	}

	// The registration stays functional for the next well-formed event.
	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "5")})
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("recovery after decode failure: got=%v want=[5]", got)
	}
}

func TestObservablePanickingSubscriberDoesNotStarveSiblings(t *testing.T) {
	rep := &recordingReporter{}
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", rep)
	o := NewObservable[int](b, []string{"tab_bar", "active"})

	var after []int
	o.AddEventListener(func(int) { panic("listener broke") })
	o.AddEventListener(func(v int) { after = append(after, v) })

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "4")})
	if len(after) != 1 || after[0] != 4 {
		t.Fatalf("sibling subscriber: got=%v want=[4]", after)
	}
	if len(rep.reports) != 1 {
		t.Fatalf("panic reports: got=%d want=1", len(rep.reports))
	}
}

func TestObservableStateReplayOnSubscribe(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	s := NewObservableState(b, []string{"tab_bar", "active"}, 0)

	var got []int
	if !s.AddEventListener(func(v int) { got = append(got, v) }, true) {
		t.Fatalf("subscription rejected")
	}
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("replay of initial value: got=%v want=[0]", got)
	}

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "3")})
	if len(got) != 2 || got[1] != 3 {
		t.Fatalf("update after replay: got=%v want=[0 3]", got)
	}
	if s.Value() != 3 {
		t.Fatalf("Value: got=%d want=3", s.Value())
	}
}

func TestObservableStateNoReplayOptOut(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	s := NewObservableState(b, []string{"tab_bar", "active"}, 7)

	var got []int
	s.AddEventListener(func(v int) { got = append(got, v) }, false)
	if len(got) != 0 {
		t.Fatalf("opt-out still replayed: %v", got)
	}

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "9")})
	if len(got) != 1 || got[0] != 9 {
		t.Fatalf("first notification: got=%v want=[9]", got)
	}
}

func TestObservableStateDuplicateSubscribeDoesNotReplay(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	s := NewObservableState(b, []string{"tab_bar", "active"}, 1)

	var calls int
	cb := func(int) { calls++ }
	s.AddEventListener(cb, true)
	if s.AddEventListener(cb, true) {
		t.Fatalf("duplicate subscription accepted")
	}
	if calls != 1 {
		t.Fatalf("duplicate subscribe replayed again: calls=%d", calls)
	}
}

func TestObservableStateDecodeFailureKeepsValue(t *testing.T) {
	rep := &recordingReporter{}
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", rep)
	s := NewObservableState(b, []string{"tab_bar", "active"}, 2)

	var got []int
	s.AddEventListener(func(v int) { got = append(got, v) }, false)

	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "{broken")})
	if s.Value() != 2 {
		t.Fatalf("lastValue changed on decode failure: %d", s.Value())
	}
	if len(got) != 0 {
		t.Fatalf("subscriber notified on decode failure: %v", got)
	}
	if len(rep.reports) != 1 {
		t.Fatalf("reports: got=%d want=1", len(rep.reports))
	}
}

func TestObservableStateValueUpdatedBeforeFanOut(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	s := NewObservableState(b, []string{"tab_bar", "active"}, 0)

	var seen int
	s.AddEventListener(func(int) { seen = s.Value() }, false)
	tr.push(Event{Path: []string{"tab_bar", "active"}, Payload: jsonPayload(t, "11")})
	if seen != 11 {
		t.Fatalf("reentrant Value during fan-out: got=%d want=11", seen)
	}
}

func TestObservableStateRefreshDelegatesToBridge(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	s := NewObservableState(b, []string{"tab_bar", "pinned"}, []int(nil))

	s.Refresh()
	if len(tr.refreshes) != 1 {
		t.Fatalf("refreshes: got=%d want=1", len(tr.refreshes))
	}
	if PathString(tr.refreshes[0].Path) != "tab_bar/pinned" {
		t.Fatalf("refresh path: got=%s", PathString(tr.refreshes[0].Path))
	}
}

func TestMutableObservableStateSetIsPure(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	m := NewMutableObservableState(b, []string{"tab_bar", "active"}, 0)

	event := m.Set(5)
	if PathString(event.Path) != "tab_bar/active" {
		t.Fatalf("event path: got=%s", PathString(event.Path))
	}
	if event.Payload == nil || *event.Payload != "5" {
		t.Fatalf("event payload: got=%v want=5", event.Payload)
	}
	if len(tr.actions) != 0 {
		t.Fatalf("Set sent %d actions", len(tr.actions))
	}
	if m.Value() != 0 {
		t.Fatalf("Set changed local value to %d", m.Value())
	}
}

func TestMutableObservableStateEmitValue(t *testing.T) {
	tr := &fakeTransport{}
	b := NewBridge(tr, "s1", nil)
	m := NewMutableObservableState(b, []string{"tab_bar", "pinned"}, []int(nil))

	m.EmitValue([]int{2, 5})
	if len(tr.actions) != 1 {
		t.Fatalf("sends: got=%d want=1", len(tr.actions))
	}
	action := tr.actions[0]
	if len(action.Events) != 1 {
		t.Fatalf("events in action: got=%d want=1", len(action.Events))
	}
	event := action.Events[0]
	if PathString(event.Path) != "tab_bar/pinned" {
		t.Fatalf("event path: got=%s", PathString(event.Path))
	}
	if event.Payload == nil || *event.Payload != "[2,5]" {
		t.Fatalf("event payload: got=%v want=[2,5]", event.Payload)
	}
	// Fire-and-forget: the local value changes only on the echoed event.
	if len(m.Value()) != 0 {
		t.Fatalf("EmitValue applied optimistically: %v", m.Value())
	}
	tr.push(event)
	if len(m.Value()) != 2 || m.Value()[0] != 2 || m.Value()[1] != 5 {
		t.Fatalf("echoed value: got=%v want=[2 5]", m.Value())
	}
}
