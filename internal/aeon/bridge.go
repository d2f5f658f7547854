package aeon

import (
	"fmt"
	"log"
)

// errorDialogTitle is the title shown by reporters that surface failures to
// the user. Matches the dialog the desktop shell opens for internal errors.
const errorDialogTitle = "Internal app error"

// Transport is the narrow contract between the bridge and whatever carries
// its messages: a websocket connection to a backend daemon, or an in-process
// loopback. Send failures are returned synchronously; delivery of inbound
// state changes happens through the single Subscribe callback.
type Transport interface {
	// SendAction forwards one user action to the backend.
	SendAction(action UserAction) error
	// SendRefresh asks the backend to re-emit state under a path.
	SendRefresh(refresh RefreshRequest) error
	// Subscribe installs the receiver for inbound state-change batches.
	// The bridge calls this exactly once, at construction.
	Subscribe(receive func(events []Event))
}

// ErrorReporter surfaces bridge failures to the user out-of-band. Nothing in
// the bridge returns errors to its callers; every failure terminates at a
// Report call and the bridge keeps running.
type ErrorReporter interface {
	Report(title, message string)
}

// LogReporter writes reports to the process log. It is the default reporter
// and the fallback wherever no dialog shell is attached.
type LogReporter struct{}

func (LogReporter) Report(title, message string) {
	log.Printf("%s: %s", title, message)
}

// Bridge is the single point of contact with the backend transport. It owns
// the path->listener registry and the one transport subscription, and it is
// the only component that sends user actions and refresh requests.
//
// One bridge is constructed per process, bound to the session identifier
// obtained from the transport handshake. All methods must be called from the
// goroutine that owns the UI state; the bridge takes no locks.
type Bridge struct {
	session   string
	transport Transport
	reporter  ErrorReporter
	registry  *listenerRegistry
}

// NewBridge wires a bridge to its transport and installs the inbound
// subscription. A nil reporter falls back to LogReporter.
func NewBridge(transport Transport, session string, reporter ErrorReporter) *Bridge {
	if reporter == nil {
		reporter = LogReporter{}
	}
	b := &Bridge{
		session:   session,
		transport: transport,
		reporter:  reporter,
		registry:  newListenerRegistry(),
	}
	transport.Subscribe(b.dispatch)
	return b
}

// Session returns the session identifier attached to every outbound message.
func (b *Bridge) Session() string {
	return b.session
}

// Reporter returns the error reporter the bridge was constructed with.
func (b *Bridge) Reporter() ErrorReporter {
	return b.reporter
}

// SetEventListener registers listener as the sole receiver for events at
// path, replacing any listener previously registered at the exact same path.
// Callers that need more than one subscriber per path use Observable or
// ObservableState, which fan out internally behind a single registration.
func (b *Bridge) SetEventListener(path []string, listener Listener) {
	b.registry.set(path, listener)
}

// EmitAction sends the given events to the backend as one atomic user
// action. The backend records the whole batch as a single undo/redo unit.
// The send is fire-and-forget: a transport failure is reported to the user
// and the action is lost, but no error reaches the caller.
func (b *Bridge) EmitAction(events ...Event) {
	if len(events) == 0 {
		return
	}
	action := UserAction{Session: b.session, Events: events}
	if err := b.transport.SendAction(action); err != nil {
		b.reporter.Report(errorDialogTitle, fmt.Sprintf(
			"Failed to send action with %d event(s): %v", len(events), err))
	}
}

// Refresh asks the backend to re-emit its current state under path. Used on
// initial load and whenever local state may be stale.
func (b *Bridge) Refresh(path []string) {
	refresh := RefreshRequest{Session: b.session, Path: path}
	if err := b.transport.SendRefresh(refresh); err != nil {
		b.reporter.Report(errorDialogTitle, fmt.Sprintf(
			"Failed to request refresh of %s: %v", PathString(path), err))
	}
}

// dispatch routes one inbound batch. Events are handled strictly in array
// order; an event whose path resolves to no listener is logged and skipped.
func (b *Bridge) dispatch(events []Event) {
	for _, event := range events {
		listener := b.registry.resolve(event.Path)
		if listener == nil {
			log.Printf("aeon: event at %s ignored, nobody is listening", PathString(event.Path))
			continue
		}
		listener(event.Payload)
	}
}
