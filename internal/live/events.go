package live

// Event is one normalized downstream event produced by a session. The
// concrete type carries the payload; EventType returns the wire tag used
// when forwarding to clients.
//
// Audio output is deliberately not an Event: inbound audio invokes the
// session's audio callback so playback never waits behind event consumers.
type Event interface {
	EventType() string
}

// TextOutputEvent is a text part of a model turn.
type TextOutputEvent struct {
	Text string
}

func (e *TextOutputEvent) EventType() string { return "text_output" }

// ToolCallEvent reports a successfully executed tool invocation.
type ToolCallEvent struct {
	Name   string
	Args   map[string]any
	Result map[string]any
}

func (e *ToolCallEvent) EventType() string { return "tool_call" }

// ToolErrorEvent reports a tool invocation whose handler failed. The failure
// was already answered upstream with an error response; this event exists
// for observers.
type ToolErrorEvent struct {
	Name string
	Err  string
}

func (e *ToolErrorEvent) EventType() string { return "tool_error" }

// TurnCompleteEvent marks the end of a model turn.
type TurnCompleteEvent struct{}

func (e *TurnCompleteEvent) EventType() string { return "turn_complete" }

// InterruptedEvent reports that the user barged in over model output. The
// session's interrupt callback has already run when this event is observed.
type InterruptedEvent struct{}

func (e *InterruptedEvent) EventType() string { return "interrupted" }

// ToolCallCancelledEvent reports that the server withdrew earlier tool calls.
type ToolCallCancelledEvent struct {
	IDs []string
}

func (e *ToolCallCancelledEvent) EventType() string { return "tool_call_cancelled" }

// SetupCompleteEvent signals that the live connection finished its handshake.
type SetupCompleteEvent struct{}

func (e *SetupCompleteEvent) EventType() string { return "setup_complete" }

// ErrorEvent is terminal: the session is tearing down after emitting it.
type ErrorEvent struct {
	Err string
}

func (e *ErrorEvent) EventType() string { return "error" }
