package live

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/homescan/live-gateway/internal/tools"
)

// receiveLoop normalizes inbound messages in arrival order. A clean end of
// stream or cancellation stops it silently; any other failure emits a
// terminal error event before returning.
func (s *Session) receiveLoop(ctx context.Context) error {
	for {
		msg, err := s.conn.Receive(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debug().Msg("Live stream ended")
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			s.metrics.RecordError("receive", "live")
			s.emit(ctx, &ErrorEvent{Err: err.Error()})
			return fmt.Errorf("receive: %w", err)
		}
		if err := s.handleServerMessage(ctx, msg); err != nil {
			return err
		}
	}
}

// handleServerMessage processes every field present on one inbound message,
// in a fixed order: model-turn parts, turn completion, interruption, tool
// calls, tool-call cancellation, setup completion.
func (s *Session) handleServerMessage(ctx context.Context, msg *ServerMessage) error {
	for _, part := range msg.Parts {
		if len(part.Audio) > 0 {
			if s.callbacks.OnAudioOutput != nil {
				s.callbacks.OnAudioOutput(part.Audio)
			}
			s.metrics.RecordAudioBytes("out", int64(len(part.Audio)))
		}
		if part.Text != "" {
			s.emit(ctx, &TextOutputEvent{Text: part.Text})
		}
	}

	if msg.TurnComplete {
		s.emit(ctx, &TurnCompleteEvent{})
	}

	if msg.Interrupted {
		// The callback must run before consumers observe the event so
		// playback flushing is already underway.
		if s.callbacks.OnInterrupt != nil {
			s.callbacks.OnInterrupt()
		}
		s.emit(ctx, &InterruptedEvent{})
	}

	if len(msg.ToolCalls) > 0 {
		if err := s.dispatchToolCalls(ctx, msg.ToolCalls); err != nil {
			return err
		}
	}

	if len(msg.CancelledToolIDs) > 0 {
		s.emit(ctx, &ToolCallCancelledEvent{IDs: msg.CancelledToolIDs})
	}

	if msg.SetupComplete {
		s.emit(ctx, &SetupCompleteEvent{})
	}

	return nil
}

// dispatchToolCalls executes a batch of tool calls in order and answers them
// with a single tool-response send. A failing handler produces an error
// response for its call and never affects the rest of the batch. Calls to
// names with no registered tool are skipped entirely.
func (s *Session) dispatchToolCalls(ctx context.Context, calls []FunctionCall) error {
	responses := make([]ToolResponse, 0, len(calls))

	for _, call := range calls {
		result, err := s.invokeTool(ctx, call)
		if err != nil {
			if errors.Is(err, tools.ErrUnknownTool) {
				s.logger.Warn().Str("tool", call.Name).Msg("Ignoring call to unregistered tool")
				continue
			}
			s.logger.Error().Err(err).Str("tool", call.Name).Msg("Tool execution failed")
			responses = append(responses, ToolResponse{
				ID:       call.ID,
				Name:     call.Name,
				Response: map[string]any{"error": err.Error()},
			})
			s.emit(ctx, &ToolErrorEvent{Name: call.Name, Err: err.Error()})
			continue
		}

		s.logger.Debug().Str("tool", call.Name).Msg("Tool executed")
		responses = append(responses, ToolResponse{
			ID:       call.ID,
			Name:     call.Name,
			Response: result,
		})
		s.emit(ctx, &ToolCallEvent{Name: call.Name, Args: call.Args, Result: result})
	}

	if len(responses) == 0 {
		return nil
	}

	if err := s.conn.SendToolResponses(ctx, responses); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.metrics.RecordError("send_tool_responses", "live")
		s.emit(ctx, &ErrorEvent{Err: err.Error()})
		return fmt.Errorf("send tool responses: %w", err)
	}
	return nil
}

// invokeTool runs one handler under the configured per-call timeout.
func (s *Session) invokeTool(ctx context.Context, call FunctionCall) (map[string]any, error) {
	tctx := ctx
	if s.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, s.cfg.ToolTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.registry.Invoke(tctx, call.Name, call.Args)
	if !errors.Is(err, tools.ErrUnknownTool) {
		s.metrics.RecordToolCall(call.Name, err == nil, time.Since(start))
	}
	return result, err
}
