package session

import (
	"log"

	"sketchbook/internal/aeon"
)

// Limits for the undo stack. Beyond these the stack drops its oldest
// entries rather than failing the action.
const (
	defaultEventLimit   = 1 << 16
	defaultPayloadLimit = 1 << 28 // bytes
)

// undoEntry pairs one recorded user action with the action that reverses it.
type undoEntry struct {
	perform []aeon.Event
	reverse []aeon.Event
}

func (e undoEntry) byteSize() int {
	size := 0
	for _, ev := range e.perform {
		size += ev.ByteSize()
	}
	for _, ev := range e.reverse {
		size += ev.ByteSize()
	}
	return size
}

// UndoStack tracks reversible actions of one session. Irreversible actions
// (imports, sketch resets) bypass the stack and clear it instead.
//
// The payload accounting covers the undo side only: entries move to the redo
// side after the size check, and pushing erases the redo side, so tracking
// the undo side bounds both.
type UndoStack struct {
	eventLimit   int
	payloadLimit int
	payloadSize  int
	undo         []undoEntry
	redo         []undoEntry
}

func NewUndoStack(eventLimit, payloadLimit int) *UndoStack {
	return &UndoStack{eventLimit: eventLimit, payloadLimit: payloadLimit}
}

func (s *UndoStack) CanUndo() bool { return len(s.undo) > 0 }
func (s *UndoStack) CanRedo() bool { return len(s.redo) > 0 }
func (s *UndoStack) UndoLen() int  { return len(s.undo) }
func (s *UndoStack) RedoLen() int  { return len(s.redo) }

// Clear drops everything, including the redo side.
func (s *UndoStack) Clear() {
	s.payloadSize = 0
	s.undo = nil
	s.redo = nil
}

// Push records a performed action together with its reversal. Recording a
// new action erases the redo side. Returns false when the entry cannot be
// stored at all, e.g. when its payload alone exceeds the limit.
func (s *UndoStack) Push(perform, reverse []aeon.Event) bool {
	s.redo = nil

	entry := undoEntry{perform: perform, reverse: reverse}
	additional := entry.byteSize()

	for len(s.undo) >= s.eventLimit {
		if !s.dropOldest() {
			break
		}
	}
	for s.payloadSize+additional >= s.payloadLimit {
		if !s.dropOldest() {
			break
		}
	}

	if len(s.undo) >= s.eventLimit {
		log.Printf("session: undo entry dropped, event limit is zero")
		return false
	}
	if s.payloadSize+additional >= s.payloadLimit {
		log.Printf("session: undo entry dropped, payload too large (%d bytes)", additional)
		return false
	}

	s.undo = append(s.undo, entry)
	s.payloadSize += additional
	return true
}

// Undo pops the newest entry and moves it to the redo side. The caller is
// expected to apply the entry's reverse action without recording it.
func (s *UndoStack) Undo() ([]aeon.Event, bool) {
	if len(s.undo) == 0 {
		return nil, false
	}
	entry := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.payloadSize -= entry.byteSize()
	s.redo = append(s.redo, entry)
	return entry.reverse, true
}

// Redo pops the newest undone entry and moves it back to the undo side. The
// caller applies the entry's perform action without recording it.
func (s *UndoStack) Redo() ([]aeon.Event, bool) {
	if len(s.redo) == 0 {
		return nil, false
	}
	entry := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.payloadSize += entry.byteSize()
	s.undo = append(s.undo, entry)
	return entry.perform, true
}

func (s *UndoStack) dropOldest() bool {
	if len(s.undo) == 0 {
		return false
	}
	dropped := s.undo[0]
	s.undo = s.undo[1:]
	s.payloadSize -= dropped.byteSize()
	log.Printf("session: undo stack full, dropping action with %d event(s)", len(dropped.perform))
	return true
}
