package session

import (
	"strings"
	"testing"

	"sketchbook/internal/aeon"
)

func entryEvents(path string, payload string) []aeon.Event {
	return []aeon.Event{{Path: strings.Split(path, "/"), Payload: &payload}}
}

func TestUndoStackPushUndoRedo(t *testing.T) {
	s := NewUndoStack(defaultEventLimit, defaultPayloadLimit)
	if s.CanUndo() || s.CanRedo() {
		t.Fatalf("fresh stack claims history")
	}

	if !s.Push(entryEvents("a", "1"), entryEvents("a", "0")) {
		t.Fatalf("push rejected")
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Fatalf("after push: canUndo=%v canRedo=%v", s.CanUndo(), s.CanRedo())
	}

	reverse, ok := s.Undo()
	if !ok {
		t.Fatalf("undo failed")
	}
	if *reverse[0].Payload != "0" {
		t.Fatalf("undo returned %q, want the reverse action", *reverse[0].Payload)
	}
	if s.CanUndo() || !s.CanRedo() {
		t.Fatalf("after undo: canUndo=%v canRedo=%v", s.CanUndo(), s.CanRedo())
	}

	perform, ok := s.Redo()
	if !ok {
		t.Fatalf("redo failed")
	}
	if *perform[0].Payload != "1" {
		t.Fatalf("redo returned %q, want the original action", *perform[0].Payload)
	}
	if !s.CanUndo() || s.CanRedo() {
		t.Fatalf("after redo: canUndo=%v canRedo=%v", s.CanUndo(), s.CanRedo())
	}
}

func TestUndoStackPushErasesRedo(t *testing.T) {
	s := NewUndoStack(defaultEventLimit, defaultPayloadLimit)
	s.Push(entryEvents("a", "1"), entryEvents("a", "0"))
	s.Undo()
	if !s.CanRedo() {
		t.Fatalf("redo missing after undo")
	}
	s.Push(entryEvents("b", "1"), entryEvents("b", "0"))
	if s.CanRedo() {
		t.Fatalf("redo survived a new push")
	}
}

func TestUndoStackEventLimitDropsOldest(t *testing.T) {
	s := NewUndoStack(2, defaultPayloadLimit)
	s.Push(entryEvents("a", "1"), entryEvents("a", "0"))
	s.Push(entryEvents("b", "1"), entryEvents("b", "0"))
	s.Push(entryEvents("c", "1"), entryEvents("c", "0"))
	if s.UndoLen() != 2 {
		t.Fatalf("undo length: got=%d want=2", s.UndoLen())
	}
	// The oldest entry (a) is gone; undoing twice ends at b.
	s.Undo()
	reverse, _ := s.Undo()
	if got := aeon.PathString(reverse[0].Path); got != "b" {
		t.Fatalf("deepest surviving entry: got=%s want=b", got)
	}
	if s.CanUndo() {
		t.Fatalf("entry a survived the limit")
	}
}

func TestUndoStackPayloadLimit(t *testing.T) {
	s := NewUndoStack(defaultEventLimit, 64)
	big := strings.Repeat("x", 100)
	if s.Push(entryEvents("a", big), entryEvents("a", big)) {
		t.Fatalf("oversized entry was stored")
	}
	if s.CanUndo() {
		t.Fatalf("stack not empty after rejected push")
	}

	small := "123"
	if !s.Push(entryEvents("a", small), entryEvents("a", small)) {
		t.Fatalf("small entry rejected")
	}
}

func TestUndoStackClear(t *testing.T) {
	s := NewUndoStack(defaultEventLimit, defaultPayloadLimit)
	s.Push(entryEvents("a", "1"), entryEvents("a", "0"))
	s.Push(entryEvents("b", "1"), entryEvents("b", "0"))
	s.Undo()
	s.Clear()
	if s.CanUndo() || s.CanRedo() {
		t.Fatalf("clear left history behind")
	}
	if s.payloadSize != 0 {
		t.Fatalf("payload accounting after clear: %d", s.payloadSize)
	}
}
