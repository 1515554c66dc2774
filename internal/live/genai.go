package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/homescan/live-gateway/internal/observability"
	"github.com/homescan/live-gateway/internal/tools"
)

// GeminiDialer opens Gemini Live sessions. One dialer (and one underlying
// API client) serves the whole process; each Dial opens one live connection.
type GeminiDialer struct {
	client *genai.Client
	logger zerolog.Logger
}

// NewGeminiDialer builds the process-wide Gemini client.
func NewGeminiDialer(ctx context.Context, apiKey string) (*GeminiDialer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiDialer{
		client: client,
		logger: observability.WithComponent("genai"),
	}, nil
}

// Dial connects one live session with the session's voice, system
// instruction and tool declarations. When the session forwards explicit
// push-to-talk boundaries, automatic voice activity detection is disabled
// so the two mechanisms never fight.
func (d *GeminiDialer) Dial(ctx context.Context, cfg Config, defs []tools.Definition) (Conn, error) {
	lcc := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
	}
	if cfg.Voice != "" {
		lcc.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: cfg.Voice},
			},
		}
	}
	if cfg.SystemInstruction != "" {
		lcc.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: cfg.SystemInstruction}},
		}
	}
	if decls := functionDeclarations(defs); len(decls) > 0 {
		lcc.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	if cfg.ManualActivity {
		lcc.RealtimeInputConfig = &genai.RealtimeInputConfig{
			AutomaticActivityDetection: &genai.AutomaticActivityDetection{Disabled: true},
		}
	}

	sess, err := d.client.Live.Connect(ctx, cfg.Model, lcc)
	if err != nil {
		return nil, fmt.Errorf("connect live session: %w", err)
	}
	d.logger.Info().Str("model", cfg.Model).Int("tools", len(defs)).Msg("Live connection established")

	conn := &geminiConn{
		sess:   sess,
		recv:   make(chan receiveResult, 16),
		closed: make(chan struct{}),
		logger: d.logger,
	}
	go conn.readLoop()
	return conn, nil
}

func functionDeclarations(defs []tools.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		decl := &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
		}
		if len(def.Params) > 0 {
			properties := make(map[string]*genai.Schema, len(def.Params))
			for name, param := range def.Params {
				properties[name] = &genai.Schema{
					Type:        schemaType(param.Type),
					Description: param.Description,
				}
			}
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   def.Required,
			}
		}
		decls = append(decls, decl)
	}
	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "boolean":
		return genai.TypeBoolean
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}

type receiveResult struct {
	msg *ServerMessage
	err error
}

// geminiConn adapts one SDK live session to the Conn interface. The SDK's
// Receive blocks on the socket with no context, so a dedicated reader
// goroutine feeds a channel and Receive selects on it; Close unblocks the
// reader by closing the socket.
type geminiConn struct {
	sess   *genai.Session
	sendMu sync.Mutex

	recv      chan receiveResult
	closed    chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger
}

func (c *geminiConn) readLoop() {
	defer close(c.recv)
	for {
		msg, err := c.sess.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-c.closed:
				// Local close tearing the socket down; not a stream error.
				return
			default:
			}
			select {
			case c.recv <- receiveResult{err: err}:
			case <-c.closed:
			}
			return
		}
		select {
		case c.recv <- receiveResult{msg: normalizeServerMessage(msg)}:
		case <-c.closed:
			return
		}
	}
}

func normalizeServerMessage(msg *genai.LiveServerMessage) *ServerMessage {
	out := &ServerMessage{}

	if msg.SetupComplete != nil {
		out.SetupComplete = true
	}

	if sc := msg.ServerContent; sc != nil {
		if sc.ModelTurn != nil {
			for _, part := range sc.ModelTurn.Parts {
				sp := ServerPart{Text: part.Text}
				if part.InlineData != nil {
					sp.Audio = part.InlineData.Data
				}
				if sp.Text != "" || len(sp.Audio) > 0 {
					out.Parts = append(out.Parts, sp)
				}
			}
		}
		if sc.TurnComplete {
			out.TurnComplete = true
		}
		if sc.Interrupted {
			out.Interrupted = true
		}
	}

	if tc := msg.ToolCall; tc != nil {
		for _, fc := range tc.FunctionCalls {
			out.ToolCalls = append(out.ToolCalls, FunctionCall{
				ID:   fc.ID,
				Name: fc.Name,
				Args: fc.Args,
			})
		}
	}

	if cc := msg.ToolCallCancellation; cc != nil {
		out.CancelledToolIDs = cc.IDs
	}

	return out
}

func (c *geminiConn) SendAudio(ctx context.Context, data []byte, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Audio: &genai.Blob{Data: data, MIMEType: mimeType},
	})
}

func (c *geminiConn) SendVideo(ctx context.Context, data []byte, mimeType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		Video: &genai.Blob{Data: data, MIMEType: mimeType},
	})
}

func (c *geminiConn) SendText(ctx context.Context, text string, endOfTurn bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendClientContent(genai.LiveClientContentInput{
		Turns: []*genai.Content{
			{Role: "user", Parts: []*genai.Part{{Text: text}}},
		},
		TurnComplete: endOfTurn,
	})
}

func (c *geminiConn) SendActivityStart(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		ActivityStart: &genai.ActivityStart{},
	})
}

func (c *geminiConn) SendActivityEnd(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendRealtimeInput(genai.LiveRealtimeInput{
		ActivityEnd: &genai.ActivityEnd{},
	})
}

func (c *geminiConn) SendToolResponses(ctx context.Context, responses []ToolResponse) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frs := make([]*genai.FunctionResponse, 0, len(responses))
	for _, r := range responses {
		frs = append(frs, &genai.FunctionResponse{
			ID:       r.ID,
			Name:     r.Name,
			Response: r.Response,
		})
	}
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return c.sess.SendToolResponse(genai.LiveToolResponseInput{FunctionResponses: frs})
}

func (c *geminiConn) Receive(ctx context.Context) (*ServerMessage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r, ok := <-c.recv:
		if !ok {
			return nil, io.EOF
		}
		if r.err != nil {
			return nil, r.err
		}
		return r.msg, nil
	}
}

func (c *geminiConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.sess.Close()
	})
	return err
}
