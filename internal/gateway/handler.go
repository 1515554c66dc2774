// Package gateway bridges browser WebSocket connections to live model
// sessions: inbound frames are routed onto the session's input queues,
// session events are translated to the client JSON protocol.
package gateway

import (
	"context"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/homescan/live-gateway/internal/config"
	"github.com/homescan/live-gateway/internal/inventory"
	"github.com/homescan/live-gateway/internal/live"
	"github.com/homescan/live-gateway/internal/observability"
	"github.com/homescan/live-gateway/internal/tools"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate origin against the serving domain.
		// For now, allow all origins (development only)
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// defaultSystemInstruction is the built-in persona used when the config
// leaves SYSTEM_INSTRUCTION empty.
const defaultSystemInstruction = "You are a friendly home appliance assistant.\n\n" +
	"Speak naturally and conversationally. Never describe what you're about to say or think out loud.\n\n" +
	"You help users catalog their home appliances by watching their video feed and asking questions to collect make and model information."

// greetingPrompt is queued as the first text turn so the model speaks first.
const greetingPrompt = "Greet the user warmly and let them know you can help catalog their home appliances."

// ClientSession holds the state of a single connected client: the WebSocket,
// the live model session behind it, and the per-session inventory workflow
// state. The shared appliance store is injected; everything else is owned by
// the session and dies with it.
type ClientSession struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	sessionID string
	cfg       *config.Config

	inputs  *live.Inputs
	session *live.Session
	state   *inventory.State
	frames  *inventory.FrameRing

	metrics *observability.Metrics
	logger  zerolog.Logger
}

// NewClientSession wires a fresh live session behind the given WebSocket:
// per-session workflow state and frame buffer, the appliance toolset
// registered against them, and callbacks that push model audio straight back
// to the client.
func NewClientSession(conn *websocket.Conn, cfg *config.Config, store *inventory.Store, dialer live.Dialer) *ClientSession {
	sessionID := observability.NewSessionID()
	logger := observability.WithSessionID(sessionID)
	metrics := observability.NewSessionMetrics(sessionID)

	state := inventory.NewState()
	frames := inventory.NewFrameRing(cfg.FrameBufferSize)
	toolset := inventory.NewToolset(store, state, frames)

	registry := tools.NewRegistry()
	registry.MustRegister(toolset.Definitions()...)

	instruction := cfg.SystemInstruction
	if instruction == "" {
		instruction = defaultSystemInstruction
	}

	liveCfg := live.Config{
		Model:             cfg.GeminiModel,
		Voice:             cfg.GeminiVoice,
		SystemInstruction: instruction,
		InputSampleRate:   cfg.InputSampleRate,
		ManualActivity:    cfg.ManualActivity,
		ToolTimeout:       time.Duration(cfg.ToolTimeout) * time.Second,
		AudioQueueSize:    cfg.AudioQueueSize,
		VideoQueueSize:    cfg.VideoQueueSize,
		TextQueueSize:     cfg.TextQueueSize,
	}
	inputs := live.NewInputs(liveCfg, logger, metrics)

	cs := &ClientSession{
		conn:      conn,
		sessionID: sessionID,
		cfg:       cfg,
		inputs:    inputs,
		state:     state,
		frames:    frames,
		metrics:   metrics,
		logger:    logger,
	}

	callbacks := live.Callbacks{
		OnAudioOutput: cs.sendAudioOutput,
		OnInterrupt: func() {
			cs.logger.Info().Msg("Model output interrupted by user")
		},
	}
	cs.session = live.NewSession(sessionID, liveCfg, inputs, registry, dialer, callbacks)
	return cs
}

// Handler is the entry point for client WebSocket connections.
func Handler(cfg *config.Config, store *inventory.Store, dialer live.Dialer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			observability.GetLogger().Error().Err(err).Msg("Failed to upgrade connection to WebSocket")
			return
		}
		defer conn.Close()

		cs := NewClientSession(conn, cfg, store, dialer)
		cs.logger.Info().Msg("Client connected")

		if err := cs.Run(r.Context()); err != nil {
			cs.logger.Error().Err(err).Msg("Session ended with error")
			return
		}
		cs.logger.Info().Msg("Session ended")
	}
}

// Run drives the session until the client disconnects or the live
// connection terminates. It returns the session's terminal error, if any.
func (cs *ClientSession) Run(ctx context.Context) error {
	events, err := cs.session.Start(ctx)
	if err != nil {
		cs.writeJSON(errorMessage{Type: "error", Error: "failed to start live session"})
		return err
	}

	// The model speaks first.
	cs.inputs.PushText(greetingPrompt)

	go func() {
		cs.readLoop()
		// Client gone: close the queues so queued input drains as the
		// session shuts down, then drive the teardown.
		cs.inputs.Close()
		cs.session.Close()
	}()

	for ev := range events {
		cs.forwardEvent(ev)
	}
	return cs.session.Close()
}

// readLoop routes inbound WebSocket frames until the connection drops.
func (cs *ClientSession) readLoop() {
	for {
		msgType, data, err := cs.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				cs.logger.Warn().Err(err).Msg("WebSocket read error")
			} else {
				cs.logger.Info().Msg("Client disconnected")
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			cs.inputs.PushAudio(data)
		case websocket.TextMessage:
			cs.handleClientMessage(data)
		}
	}
}

// handleClientMessage dispatches one JSON text frame from the client.
func (cs *ClientSession) handleClientMessage(raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		cs.logger.Error().Err(err).Msg("Failed to parse client message")
		return
	}

	switch msg.Type {
	case "activity_start":
		cs.logger.Debug().Msg("User started talking")
		cs.inputs.PushActivityStart()

	case "activity_end":
		cs.logger.Debug().Msg("User stopped talking")
		// The first completed utterance unlocks the appliance tools.
		cs.state.MarkUserSpoken()
		cs.inputs.PushActivityEnd()
		// An empty text message becomes the end-of-turn signal upstream.
		cs.inputs.PushText("")

	case "image":
		cs.handleImage(msg)

	default:
		cs.logger.Warn().Str("type", msg.Type).Msg("Ignoring unknown client message type")
	}
}

// handleImage decodes a base64 video frame, records it for the video tools
// and queues it for the model.
func (cs *ClientSession) handleImage(msg clientMessage) {
	data, err := base64.StdEncoding.DecodeString(msg.Data)
	if err != nil {
		cs.logger.Error().Err(err).Msg("Failed to decode image payload")
		return
	}
	mimeType := msg.MIMEType
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	cs.frames.Add(data, mimeType)
	cs.inputs.PushVideo(live.VideoFrame{Data: data, MIMEType: mimeType})
}

// forwardEvent translates one session event into the client JSON protocol.
// Tool errors and cancellations are logged but not forwarded; the client
// protocol has no message for them.
func (cs *ClientSession) forwardEvent(ev live.Event) {
	switch e := ev.(type) {
	case *live.TextOutputEvent:
		cs.writeJSON(textOutputMessage{Type: "text_output", Text: e.Text})

	case *live.ToolCallEvent:
		cs.writeJSON(toolCallMessage{Type: "tool_call", FunctionName: e.Name, Args: e.Args})
		// Completing an appliance changes the catalog; notify the client.
		if e.Name == "update_appliance_details" && e.Result["status"] == "completed" {
			if total, ok := e.Result["total_appliances"].(int); ok {
				cs.writeJSON(inventoryUpdatedMessage{Type: "inventory_updated", Total: total})
			}
		}

	case *live.ToolErrorEvent:
		cs.logger.Warn().Str("tool", e.Name).Str("error", e.Err).Msg("Tool call failed")

	case *live.ToolCallCancelledEvent:
		cs.logger.Info().Strs("ids", e.IDs).Msg("Server cancelled tool calls")

	case *live.TurnCompleteEvent:
		cs.writeJSON(signalMessage{Type: "turn_complete"})

	case *live.InterruptedEvent:
		cs.writeJSON(signalMessage{Type: "interrupted"})

	case *live.SetupCompleteEvent:
		cs.writeJSON(signalMessage{Type: "setup_complete"})

	case *live.ErrorEvent:
		cs.writeJSON(errorMessage{Type: "error", Error: e.Err})
	}
}

// sendAudioOutput pushes one chunk of model speech to the client. Runs on
// the session's receive goroutine, so it must not block on slow consumers
// longer than the WebSocket write itself.
func (cs *ClientSession) sendAudioOutput(data []byte) {
	cs.writeJSON(audioOutputMessage{
		Type: "audio_output",
		Data: base64.StdEncoding.EncodeToString(data),
	})
}

// writeJSON marshals and writes one message. The mutex serializes writes
// from the event loop and the audio callback; gorilla connections do not
// allow concurrent writers.
func (cs *ClientSession) writeJSON(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		cs.logger.Error().Err(err).Msg("Failed to marshal client message")
		return
	}

	cs.writeMu.Lock()
	defer cs.writeMu.Unlock()
	if err := cs.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		cs.logger.Warn().Err(err).Msg("WebSocket write failed")
	}
}
