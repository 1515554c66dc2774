package live

import (
	"context"

	"github.com/homescan/live-gateway/internal/tools"
)

// FunctionCall is one server-invoked tool call.
type FunctionCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResponse answers one FunctionCall. Responses for a batch of calls are
// sent together in a single SendToolResponses.
type ToolResponse struct {
	ID       string
	Name     string
	Response map[string]any
}

// ServerPart is one piece of model-turn content; a part carries text, audio,
// or both.
type ServerPart struct {
	Text  string
	Audio []byte
}

// ServerMessage is one normalized inbound message from the live connection.
// A single message may carry several of these fields at once; the session
// handles every field present.
type ServerMessage struct {
	SetupComplete    bool
	TurnComplete     bool
	Interrupted      bool
	Parts            []ServerPart
	ToolCalls        []FunctionCall
	CancelledToolIDs []string
}

// Conn is a bidirectional live connection to the remote model.
//
// Send methods must be safe for concurrent use: the session's pumps and its
// receive loop all send. Receive is called from a single goroutine and must
// unblock when ctx is cancelled or the connection is closed; it returns
// io.EOF when the stream ends cleanly.
type Conn interface {
	SendAudio(ctx context.Context, data []byte, mimeType string) error
	SendVideo(ctx context.Context, data []byte, mimeType string) error
	SendText(ctx context.Context, text string, endOfTurn bool) error
	SendActivityStart(ctx context.Context) error
	SendActivityEnd(ctx context.Context) error
	SendToolResponses(ctx context.Context, responses []ToolResponse) error
	Receive(ctx context.Context) (*ServerMessage, error)
	Close() error
}

// Dialer opens one live connection per session, declaring the session's
// tools to the remote side.
type Dialer interface {
	Dial(ctx context.Context, cfg Config, defs []tools.Definition) (Conn, error)
}
